// Package calc implements the tip calculator and the bill splitter.
//
// All arithmetic runs on shopspring/decimal and results are rounded to paise
// only when they leave the package.
package calc

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

type Method string

const (
	Evenly     Method = "evenly"
	Percentage Method = "percentage"
	Amount     Method = "amount"
	Shares     Method = "shares"
)

// MinPeople is the smallest party the splitter works with.
const MinPeople = 2

// TipPresets are the one-tap tip percentages.
var TipPresets = []int{10, 15, 20, 25}

var (
	ErrNegative      = errors.New("values must not be negative")
	ErrTooFewPeople  = fmt.Errorf("at least %d people are required", MinPeople)
	ErrUnknownMethod = errors.New("unknown split method")
	ErrBadIndex      = errors.New("person index out of range")
)

var (
	hundred   = decimal.NewFromInt(100)
	tolerance = decimal.RequireFromString("0.001")
)

type TipResult struct {
	Bill    decimal.Decimal
	Percent decimal.Decimal
	Tip     decimal.Decimal
	Total   decimal.Decimal
}

// Tip computes tip = bill × percent / 100 and total = bill + tip.
func Tip(bill, percent decimal.Decimal) (TipResult, error) {
	if bill.IsNegative() || percent.IsNegative() {
		return TipResult{}, ErrNegative
	}
	tip := bill.Mul(percent).Div(hundred)
	return TipResult{
		Bill:    bill,
		Percent: percent,
		Tip:     tip.Round(2),
		Total:   bill.Add(tip).Round(2),
	}, nil
}

// Person is one participant of a split. Value means a head count for evenly,
// a percentage, an amount or a number of shares depending on the method.
type Person struct {
	Value  decimal.Decimal `json:"value"`
	Locked bool            `json:"locked"`
}

type Share struct {
	Person
	Amount  decimal.Decimal `json:"amount"`
	Display string          `json:"display"`
}

type Summary struct {
	Label   string `json:"label"`
	Value   string `json:"value"`
	Warning bool   `json:"warning"`
}

type SplitResult struct {
	Breakdown []Share  `json:"breakdown"`
	Summary   *Summary `json:"summary,omitempty"`
}

// DefaultValue is what a freshly added person starts with.
func DefaultValue(m Method) decimal.Decimal {
	if m == Evenly || m == Shares {
		return decimal.NewFromInt(1)
	}
	return decimal.Zero
}

// NewParty returns n people with the method's default value.
func NewParty(m Method, n int) []Person {
	if n < MinPeople {
		n = MinPeople
	}
	people := make([]Person, n)
	for i := range people {
		people[i] = Person{Value: DefaultValue(m)}
	}
	return people
}

func validMethod(m Method) bool {
	switch m {
	case Evenly, Percentage, Amount, Shares:
		return true
	}
	return false
}

func sum(people []Person) decimal.Decimal {
	total := decimal.Zero
	for _, p := range people {
		total = total.Add(p.Value)
	}
	return total
}

// Split divides total among people. A zero total yields an empty result.
func Split(total decimal.Decimal, method Method, people []Person) (SplitResult, error) {
	if !validMethod(method) {
		return SplitResult{}, ErrUnknownMethod
	}
	if len(people) < MinPeople {
		return SplitResult{}, ErrTooFewPeople
	}
	if total.IsNegative() {
		return SplitResult{}, ErrNegative
	}
	for _, p := range people {
		if p.Value.IsNegative() {
			return SplitResult{}, ErrNegative
		}
	}
	res := SplitResult{Breakdown: []Share{}}
	if total.IsZero() {
		return res, nil
	}

	switch method {
	case Evenly:
		each := total.Div(decimal.NewFromInt(int64(len(people))))
		for _, p := range people {
			res.Breakdown = append(res.Breakdown, Share{Person: p, Amount: each.Round(2), Display: fmt.Sprintf("%d People", len(people))})
		}
		res.Summary = &Summary{Label: "Each Person Pays", Value: each.StringFixed(2)}

	case Percentage:
		pct := sum(people)
		for _, p := range people {
			res.Breakdown = append(res.Breakdown, Share{
				Person:  p,
				Amount:  total.Mul(p.Value).Div(hundred).Round(2),
				Display: p.Value.String() + "%",
			})
		}
		res.Summary = &Summary{Label: "Total Percentage", Value: pct.StringFixed(0) + "%", Warning: !pct.Equal(hundred)}

	case Amount:
		remaining := total.Sub(sum(people))
		for _, p := range people {
			res.Breakdown = append(res.Breakdown, Share{Person: p, Amount: p.Value.Round(2), Display: "₹" + p.Value.StringFixed(2)})
		}
		res.Summary = &Summary{Label: "Remaining Balance", Value: "₹" + remaining.StringFixed(2), Warning: remaining.Abs().GreaterThan(tolerance)}

	case Shares:
		shares := sum(people)
		if shares.IsZero() {
			for _, p := range people {
				res.Breakdown = append(res.Breakdown, Share{Person: p, Amount: decimal.Zero, Display: p.Value.String() + " Shares"})
			}
			res.Summary = &Summary{Label: "Total Shares", Value: "0", Warning: true}
			break
		}
		perShare := total.Div(shares)
		for _, p := range people {
			unit := "Shares"
			if p.Value.Equal(decimal.NewFromInt(1)) {
				unit = "Share"
			}
			res.Breakdown = append(res.Breakdown, Share{Person: p, Amount: perShare.Mul(p.Value).Round(2), Display: p.Value.String() + " " + unit})
		}
		res.Summary = &Summary{Label: "Price Per Share", Value: "₹" + perShare.StringFixed(2)}
	}
	return res, nil
}

// Rebalance commits a new value for people[index] and locks that person.
//
// For percentage and amount splits the value is capped at what the other
// locked people leave over, and the remainder is spread evenly across the
// unlocked people (never below zero). The input slice is not modified.
func Rebalance(total decimal.Decimal, method Method, people []Person, index int, value decimal.Decimal) ([]Person, error) {
	if !validMethod(method) {
		return nil, ErrUnknownMethod
	}
	if index < 0 || index >= len(people) {
		return nil, ErrBadIndex
	}
	value = value.Abs()
	redistribute := method == Percentage || method == Amount

	ceiling := total
	if method == Percentage {
		ceiling = hundred
	}

	if redistribute {
		otherLocked := decimal.Zero
		for i, p := range people {
			if p.Locked && i != index {
				otherLocked = otherLocked.Add(p.Value)
			}
		}
		value = decimal.Min(value, ceiling.Sub(otherLocked))
	}

	out := make([]Person, len(people))
	copy(out, people)
	out[index] = Person{Value: value, Locked: true}
	if !redistribute {
		return out, nil
	}

	locked := decimal.Zero
	unlocked := 0
	for _, p := range out {
		if p.Locked {
			locked = locked.Add(p.Value)
		} else {
			unlocked++
		}
	}
	if unlocked == 0 {
		return out, nil
	}
	each := decimal.Max(decimal.Zero, ceiling.Sub(locked).Div(decimal.NewFromInt(int64(unlocked))))
	for i := range out {
		if !out[i].Locked {
			out[i].Value = each
		}
	}
	return out, nil
}
