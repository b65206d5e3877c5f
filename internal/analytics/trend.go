package analytics

import "forefunds/internal/core"

// TrendPoint is one day of the cumulative spending chart.
// Actual is nil for days after today.
type TrendPoint struct {
	Day       int
	Actual    *core.Money
	Projected core.Money
}

// Trend builds the cumulative expense series for today's month. Days up to
// today carry the running total; later days extend it by the month-to-date
// daily average.
func Trend(txs []core.Transaction, today core.Date) []TrendPoint {
	year, month := today.Year(), today.Month()
	days := core.DaysInMonth(year, month)
	dayOfMonth := today.Day()

	daily := make([]int64, days+1)
	for _, tx := range txs {
		if tx.Type != core.Expense || !tx.Date.SameMonth(year, month) {
			continue
		}
		daily[tx.Date.Day()] += tx.Amount.Cents
	}

	var monthToDate int64
	for d := 1; d <= dayOfMonth; d++ {
		monthToDate += daily[d]
	}
	// Only expenses up to today feed the average, matching the actual line.
	// Entries dated after today are not averaged in, unlike a whole-month sum.
	var avgDaily float64
	if dayOfMonth > 0 && monthToDate > 0 {
		avgDaily = float64(monthToDate) / float64(dayOfMonth)
	}

	points := make([]TrendPoint, 0, days)
	var cumulative int64
	for d := 1; d <= days; d++ {
		p := TrendPoint{Day: d}
		if d <= dayOfMonth {
			cumulative += daily[d]
			actual := core.Money{Cents: cumulative}
			p.Actual = &actual
			p.Projected = actual
		} else {
			ahead := avgDaily * float64(d-dayOfMonth)
			p.Projected = core.Money{Cents: monthToDate + int64(ahead+0.5)}
		}
		points = append(points, p)
	}
	return points
}
