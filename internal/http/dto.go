package http

import (
	"time"

	"github.com/shopspring/decimal"

	"forefunds/internal/analytics"
	"forefunds/internal/calc"
	"forefunds/internal/core"
	"forefunds/internal/rewards"
	"forefunds/internal/services"
)

// Money leaves the API as rupees; it is integer paise everywhere else.

type transactionDTO struct {
	ID          string    `json:"id"`
	Amount      float64   `json:"amount"`
	Description string    `json:"description"`
	Date        string    `json:"date"`
	Type        string    `json:"type"`
	Category    string    `json:"category"`
	Source      string    `json:"source"`
	CreatedAt   time.Time `json:"created_at"`
}

func toTransactionDTO(t core.Transaction) transactionDTO {
	return transactionDTO{
		ID:          t.ID,
		Amount:      t.Amount.Rupees(),
		Description: t.Description,
		Date:        t.Date.String(),
		Type:        string(t.Type),
		Category:    string(t.Category),
		Source:      string(t.Source),
		CreatedAt:   t.CreatedAt,
	}
}

func toTransactionDTOs(txs []core.Transaction) []transactionDTO {
	out := make([]transactionDTO, len(txs))
	for i, t := range txs {
		out[i] = toTransactionDTO(t)
	}
	return out
}

type goalDTO struct {
	Description string    `json:"description"`
	Amount      float64   `json:"amount"`
	Reward      string    `json:"reward,omitempty"`
	SetAt       time.Time `json:"set_at"`
}

func toGoalDTO(g core.Goal) *goalDTO {
	return &goalDTO{
		Description: g.Description,
		Amount:      g.Amount.Rupees(),
		Reward:      g.Reward,
		SetAt:       g.SetAt,
	}
}

type awardedDTO struct {
	ID        string    `json:"id"`
	AwardedAt time.Time `json:"awarded_at"`
}

type profileDTO struct {
	ID              string       `json:"id"`
	Email           string       `json:"email"`
	Name            string       `json:"name"`
	PhotoURL        string       `json:"photo_url,omitempty"`
	Points          int64        `json:"points"`
	StreakCount     int          `json:"streak_count"`
	LastStreakCheck string       `json:"last_streak_check,omitempty"`
	DailyGoal       float64      `json:"daily_goal"`
	Achievements    []awardedDTO `json:"achievements"`
	CreatedAt       time.Time    `json:"created_at"`
}

func toProfileDTO(p core.Profile) profileDTO {
	achievements := make([]awardedDTO, len(p.Achievements))
	for i, a := range p.Achievements {
		achievements[i] = awardedDTO{ID: a.ID, AwardedAt: a.AwardedAt}
	}
	return profileDTO{
		ID:              p.ID,
		Email:           p.Email,
		Name:            p.Name,
		PhotoURL:        p.PhotoURL,
		Points:          p.Points,
		StreakCount:     p.StreakCount,
		LastStreakCheck: p.LastStreakCheck.String(),
		DailyGoal:       p.DailyGoal.Rupees(),
		Achievements:    achievements,
		CreatedAt:       p.CreatedAt,
	}
}

// leaderEntryDTO leaves out the email address on purpose.
type leaderEntryDTO struct {
	Rank     int    `json:"rank"`
	ID       string `json:"id"`
	Name     string `json:"name"`
	PhotoURL string `json:"photo_url,omitempty"`
	Points   int64  `json:"points"`
}

type achievementDTO struct {
	rewards.Achievement
	Unlocked  bool       `json:"unlocked"`
	AwardedAt *time.Time `json:"awarded_at,omitempty"`
}

func toAchievementDTOs(p core.Profile) []achievementDTO {
	awarded := make(map[string]time.Time, len(p.Achievements))
	for _, a := range p.Achievements {
		awarded[a.ID] = a.AwardedAt
	}
	out := make([]achievementDTO, len(rewards.Catalog))
	for i, a := range rewards.Catalog {
		out[i] = achievementDTO{Achievement: a}
		if at, ok := awarded[a.ID]; ok {
			at := at
			out[i].Unlocked = true
			out[i].AwardedAt = &at
		}
	}
	return out
}

type totalsDTO struct {
	Income   float64 `json:"income"`
	Expenses float64 `json:"expenses"`
	Balance  float64 `json:"balance"`
	Count    int     `json:"count"`
}

func toTotalsDTO(t analytics.Totals) totalsDTO {
	return totalsDTO{
		Income:   t.Income.Rupees(),
		Expenses: t.Expenses.Rupees(),
		Balance:  t.Balance().Rupees(),
		Count:    t.Count,
	}
}

type dashboardDTO struct {
	Today             string           `json:"today"`
	Month             totalsDTO        `json:"month"`
	AllTime           totalsDTO        `json:"all_time"`
	ProjectedSpending float64          `json:"projected_spending"`
	Goal              *goalDTO         `json:"goal,omitempty"`
	GoalProgress      float64          `json:"goal_progress"`
	GoalAchieved      bool             `json:"goal_achieved"`
	Recent            []transactionDTO `json:"recent"`
}

func toDashboardDTO(d services.Dashboard) dashboardDTO {
	out := dashboardDTO{
		Today:             d.Today.String(),
		Month:             toTotalsDTO(d.Month),
		AllTime:           toTotalsDTO(d.AllTime),
		ProjectedSpending: d.Projected.Rupees(),
		GoalProgress:      d.GoalPercent,
		GoalAchieved:      d.GoalAchieved,
		Recent:            toTransactionDTOs(d.Recent),
	}
	if d.Goal != nil {
		out.Goal = toGoalDTO(*d.Goal)
	}
	return out
}

type trendPointDTO struct {
	Day       int      `json:"day"`
	Actual    *float64 `json:"actual"`
	Projected float64  `json:"projected"`
}

func toTrendDTOs(points []analytics.TrendPoint) []trendPointDTO {
	out := make([]trendPointDTO, len(points))
	for i, p := range points {
		out[i] = trendPointDTO{Day: p.Day, Projected: p.Projected.Rupees()}
		if p.Actual != nil {
			v := p.Actual.Rupees()
			out[i].Actual = &v
		}
	}
	return out
}

type heatmapCellDTO struct {
	Day     int     `json:"day"`
	Income  float64 `json:"income"`
	Expense float64 `json:"expense"`
	Tone    string  `json:"tone"`
	Level   int     `json:"level"`
}

type heatmapDTO struct {
	Year         int              `json:"year"`
	Month        int              `json:"month"`
	LeadingBlank int              `json:"leading_blank"`
	DaysInMonth  int              `json:"days_in_month"`
	Max          float64          `json:"max"`
	Cells        []heatmapCellDTO `json:"cells"`
}

func toHeatmapDTO(h analytics.Heatmap) heatmapDTO {
	cells := make([]heatmapCellDTO, len(h.Cells))
	for i, c := range h.Cells {
		cells[i] = heatmapCellDTO{
			Day:     c.Day,
			Income:  c.Income.Rupees(),
			Expense: c.Expense.Rupees(),
			Tone:    string(c.Tone),
			Level:   c.Level,
		}
	}
	return heatmapDTO{
		Year:         h.Year,
		Month:        int(h.Month),
		LeadingBlank: h.LeadingBlank,
		DaysInMonth:  h.DaysInMonth,
		Max:          h.Max.Rupees(),
		Cells:        cells,
	}
}

type foreScoreDTO struct {
	Score   int    `json:"score"`
	Tier    int    `json:"tier"`
	Message string `json:"message"`
}

type scanDTO struct {
	Transactions []transactionDTO `json:"transactions"`
	Skipped      int              `json:"skipped"`
}

type insightDTO struct {
	HTML     string `json:"html"`
	Markdown string `json:"markdown"`
}

type signInDTO struct {
	Token     string     `json:"token"`
	ExpiresAt time.Time  `json:"expires_at"`
	Created   bool       `json:"created"`
	Profile   profileDTO `json:"profile"`
}

// Calculator requests accept numbers or numeric strings.

type tipRequest struct {
	Bill    decimal.Decimal `json:"bill"`
	Percent decimal.Decimal `json:"percent"`
}

type tipDTO struct {
	Bill    float64 `json:"bill"`
	Percent float64 `json:"percent"`
	Tip     float64 `json:"tip"`
	Total   float64 `json:"total"`
	Presets []int   `json:"presets"`
}

type personRequest struct {
	Value  decimal.Decimal `json:"value"`
	Locked bool            `json:"locked"`
}

type splitRequest struct {
	Total  decimal.Decimal `json:"total"`
	Method string          `json:"method"`
	People []personRequest `json:"people"`
}

type rebalanceRequest struct {
	splitRequest
	Index int             `json:"index"`
	Value decimal.Decimal `json:"value"`
}

func (r splitRequest) party() []calc.Person {
	people := make([]calc.Person, len(r.People))
	for i, p := range r.People {
		people[i] = calc.Person{Value: p.Value, Locked: p.Locked}
	}
	return people
}

type personDTO struct {
	Value  float64 `json:"value"`
	Locked bool    `json:"locked"`
}

type shareDTO struct {
	personDTO
	Amount  float64 `json:"amount"`
	Display string  `json:"display"`
}

type splitDTO struct {
	Breakdown []shareDTO    `json:"breakdown"`
	Summary   *calc.Summary `json:"summary,omitempty"`
	People    []personDTO   `json:"people,omitempty"`
}

func toPersonDTOs(people []calc.Person) []personDTO {
	out := make([]personDTO, len(people))
	for i, p := range people {
		out[i] = personDTO{Value: p.Value.InexactFloat64(), Locked: p.Locked}
	}
	return out
}

func toSplitDTO(res calc.SplitResult) splitDTO {
	out := splitDTO{Breakdown: make([]shareDTO, len(res.Breakdown)), Summary: res.Summary}
	for i, s := range res.Breakdown {
		out.Breakdown[i] = shareDTO{
			personDTO: personDTO{Value: s.Value.InexactFloat64(), Locked: s.Locked},
			Amount:    s.Amount.InexactFloat64(),
			Display:   s.Display,
		}
	}
	return out
}
