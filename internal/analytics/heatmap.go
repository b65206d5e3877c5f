package analytics

import (
	"time"

	"forefunds/internal/core"
)

// Tone tells whether a heatmap cell leans towards income or spending.
type Tone string

const (
	ToneNone    Tone = "none"
	ToneIncome  Tone = "income"
	ToneExpense Tone = "expense"
)

type HeatmapCell struct {
	Day     int
	Income  core.Money
	Expense core.Money
	Tone    Tone
	Level   int // 0 for ToneNone, otherwise 1..4
}

type Heatmap struct {
	Year         int
	Month        time.Month
	LeadingBlank int // weekday of the 1st, Sunday = 0
	DaysInMonth  int
	Max          core.Money
	Cells        []HeatmapCell
}

// heatmapFloor keeps the normalizer at one rupee for empty months.
const heatmapFloor = 100

// BuildHeatmap sums each day of the month. Anything not typed income counts
// as spending. Cells are scaled against the largest daily income or expense.
func BuildHeatmap(txs []core.Transaction, year int, month time.Month) Heatmap {
	days := core.DaysInMonth(year, month)
	income := make([]int64, days+1)
	expense := make([]int64, days+1)

	var max int64 = heatmapFloor
	for _, tx := range txs {
		if !tx.Date.SameMonth(year, month) {
			continue
		}
		d := tx.Date.Day()
		if tx.Type == core.Income {
			income[d] += tx.Amount.Cents
		} else {
			expense[d] += tx.Amount.Cents
		}
		if income[d] > max {
			max = income[d]
		}
		if expense[d] > max {
			max = expense[d]
		}
	}

	h := Heatmap{
		Year:         year,
		Month:        month,
		LeadingBlank: int(time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).Weekday()),
		DaysInMonth:  days,
		Max:          core.Money{Cents: max},
		Cells:        make([]HeatmapCell, 0, days),
	}
	for d := 1; d <= days; d++ {
		cell := HeatmapCell{
			Day:     d,
			Income:  core.Money{Cents: income[d]},
			Expense: core.Money{Cents: expense[d]},
			Tone:    ToneNone,
		}
		switch {
		case income[d] == 0 && expense[d] == 0:
		case income[d] > expense[d]:
			cell.Tone = ToneIncome
			cell.Level = intensity(income[d], max)
		default:
			cell.Tone = ToneExpense
			cell.Level = intensity(expense[d], max)
		}
		h.Cells = append(h.Cells, cell)
	}
	return h
}

func intensity(v, max int64) int {
	ratio := float64(v) / float64(max)
	switch {
	case ratio > 0.75:
		return 4
	case ratio > 0.5:
		return 3
	case ratio > 0.25:
		return 2
	default:
		return 1
	}
}
