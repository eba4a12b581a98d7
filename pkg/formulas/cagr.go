package formulas

import "math"

// CAGR calculates the compound annual growth rate of a daily value series.
//
// Formula: CAGR = (Ending Value / Beginning Value)^(252/n_days) - 1
//
// Args:
//
//	start: Beginning value
//	end: Ending value
//	days: Number of trading days spanned by the series
//
// Returns:
//
//	CAGR as decimal (e.g. 0.11 = 11%); 0 when inputs are unusable.
func CAGR(start, end float64, days int) float64 {
	if days <= 0 || start <= 0 || end <= 0 {
		return 0
	}
	return math.Pow(end/start, TradingDaysPerYear/float64(days)) - 1
}
