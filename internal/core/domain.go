package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	Income  TxType = "income"
	Expense TxType = "expense"
)

const (
	Food          Category = "Food"
	Transport     Category = "Transport"
	Shopping      Category = "Shopping"
	Utilities     Category = "Utilities"
	Entertainment Category = "Entertainment"
	IncomeCat     Category = "Income"
	Other         Category = "Other"
)

const (
	SourceManual Source = "manual"
	SourceScan   Source = "scan"
)

// DateLayout is the wire and storage format of a calendar day.
const DateLayout = "2006-01-02"

// Categories lists every category a transaction may carry, in display order.
var Categories = []Category{Food, Transport, Shopping, Utilities, Entertainment, IncomeCat, Other}

type (
	TxType   string
	Category string
	Source   string

	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	Transaction struct {
		ID          string
		UserID      string
		Amount      Money
		Description string
		Date        Date
		Type        TxType
		Category    Category
		Source      Source
		CreatedAt   time.Time
	}

	// Goal is the single savings goal a user may hold at a time.
	Goal struct {
		UserID      string
		Description string
		Amount      Money
		Reward      string
		SetAt       time.Time
	}

	AwardedAchievement struct {
		ID        string
		AwardedAt time.Time
	}

	Profile struct {
		ID              string
		Email           string
		Name            string
		PhotoURL        string
		Points          int64
		Achievements    []AwardedAchievement
		StreakCount     int
		LastStreakCheck Date  // zero when the streak was never checked
		DailyGoal       Money // zero when unset
		CreatedAt       time.Time
	}
)

var (
	ErrInvalidDate        = errors.New("invalid date")
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrEmptyDescription   = errors.New("empty description")
	ErrDescriptionTooLong = errors.New("description too long (max 200 characters)")
	ErrInvalidType        = errors.New("invalid transaction type")
	ErrInvalidCategory    = errors.New("invalid category")
	ErrRewardTooLong      = errors.New("reward too long (max 200 characters)")
	ErrMissingUser        = errors.New("missing user id")
	ErrInvalidDailyGoal   = errors.New("invalid daily goal")
)

const maxTextLen = 200

// NewDate creates a Date at midnight UTC.
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar day in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, m, d)
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return Date{Time: t}, nil
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

// AddDays returns the date n days later (or earlier for negative n).
func (d Date) AddDays(n int) Date {
	return Date{Time: d.Time.AddDate(0, 0, n)}
}

func (d Date) SameDay(o Date) bool {
	return !d.IsZero() && d.String() == o.String()
}

func (d Date) SameMonth(year int, month time.Month) bool {
	return d.Year() == year && d.Month() == month
}

// DaysInMonth returns the number of days of the given month.
func DaysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (m Money) IsZero() bool { return m.Cents == 0 }

// ParseTxType accepts income/expense and the credit/debit wording of bank
// statements.
func ParseTxType(s string) (TxType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "income", "credit", "cr":
		return Income, nil
	case "expense", "debit", "dr":
		return Expense, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidType, s)
}

// ParseCategory matches case-insensitively; unknown names become Other.
func ParseCategory(s string) Category {
	s = strings.TrimSpace(s)
	for _, c := range Categories {
		if strings.EqualFold(string(c), s) {
			return c
		}
	}
	return Other
}

func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

func (t Transaction) Validate() error {
	if strings.TrimSpace(t.UserID) == "" {
		return ErrMissingUser
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(t.Description) == "" {
		return ErrEmptyDescription
	}
	if utf8.RuneCountInString(t.Description) > maxTextLen {
		return ErrDescriptionTooLong
	}
	if t.Date.IsZero() {
		return ErrInvalidDate
	}
	if t.Type != Income && t.Type != Expense {
		return ErrInvalidType
	}
	if !t.Category.Valid() {
		return ErrInvalidCategory
	}
	return nil
}

func (g Goal) Validate() error {
	if strings.TrimSpace(g.UserID) == "" {
		return ErrMissingUser
	}
	if strings.TrimSpace(g.Description) == "" {
		return ErrEmptyDescription
	}
	if utf8.RuneCountInString(g.Description) > maxTextLen {
		return ErrDescriptionTooLong
	}
	if utf8.RuneCountInString(g.Reward) > maxTextLen {
		return ErrRewardTooLong
	}
	return g.Amount.Validate()
}

// HasAchievement reports whether id was already awarded.
func (p Profile) HasAchievement(id string) bool {
	for _, a := range p.Achievements {
		if a.ID == id {
			return true
		}
	}
	return false
}
