package formulas

import "math"

// TradingDaysPerYear is the annualization base for daily series.
const TradingDaysPerYear = 252

// Sharpe calculates the annualized Sharpe ratio from daily returns.
//
// Sharpe Formula:
//
//	Sharpe = (Mean Daily Return - RiskFree/252) / Std Dev of Daily Returns × sqrt(252)
//
// Args:
//
//	returns: Array of daily returns
//	riskFree: Annual risk-free rate as decimal (e.g. 0.02 for 2%)
//
// Returns:
//
//	Annualized Sharpe ratio; 0 when there are no returns or the standard
//	deviation is 0.
func Sharpe(returns []float64, riskFree float64) float64 {
	if len(returns) == 0 {
		return 0
	}

	mean := Mean(returns)
	std := StdDev(returns)
	if std == 0 {
		return 0
	}

	return (mean - riskFree/TradingDaysPerYear) / std * math.Sqrt(TradingDaysPerYear)
}
