package backtest

import "strconv"

// RebalanceDates returns the scheduled rebalance dates over a trading
// calendar: the first calendar day encountered in each (year, quarter)
// pair. Dates must be ISO YYYY-MM-DD in ascending order.
func RebalanceDates(calendar []string) map[string]struct{} {
	type yearQuarter struct {
		year    string
		quarter int
	}
	seen := make(map[yearQuarter]struct{})
	dates := make(map[string]struct{})
	for _, date := range calendar {
		if len(date) < 7 {
			continue
		}
		month, err := strconv.Atoi(date[5:7])
		if err != nil || month < 1 || month > 12 {
			continue
		}
		key := yearQuarter{year: date[:4], quarter: (month-1)/3 + 1}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		dates[date] = struct{}{}
	}
	return dates
}
