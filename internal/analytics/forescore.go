package analytics

import "math"

// ForeScore is the 0..100 monthly health score and the world it maps to.
type ForeScore struct {
	Score   int
	Tier    int // 0 desert .. 4 dense forest
	Message string
}

var tierMessages = [...]string{
	"Your world is a desert 🌵. Start saving and track your goals to bring it to life!",
	"Some sprouts are appearing 🌱. Keep saving and spending wisely to grow more green.",
	"Your world is thriving 🌿. Stay consistent to reach a lush forest!",
	"Your world is healthy 🌳. You're on track — keep building your savings and goals.",
	"Your world is lush and vibrant 🌴🎉. You're mastering your financial health!",
}

// ScoreMonth computes the ForeScore of a month.
//
// Up to 50 points come from the savings ratio, 30 from progress towards the
// goal (a flat 10 without one) and 20 from logging activity.
func ScoreMonth(month Totals, goalCents int64) ForeScore {
	var score float64
	income := float64(month.Income.Cents)
	expenses := float64(month.Expenses.Cents)

	if income > 0 {
		score += math.Max(0, (income-expenses)/income) * 50
	}
	if goalCents > 0 {
		progress := math.Max(0, income-expenses) / float64(goalCents)
		score += math.Min(1, progress) * 30
	} else {
		score += 10
	}
	score += math.Min(20, float64(month.Count))

	s := int(math.Floor(math.Max(0, math.Min(100, score)) + 0.5))
	return ForeScore{Score: s, Tier: WorldTier(s), Message: ScoreMessage(s)}
}

// WorldTier buckets a score into five worlds with inclusive upper bounds.
func WorldTier(score int) int {
	switch {
	case score <= 20:
		return 0
	case score <= 40:
		return 1
	case score <= 60:
		return 2
	case score <= 80:
		return 3
	default:
		return 4
	}
}

// ScoreMessage uses exclusive upper bounds, so a score of exactly 20 shows
// the desert world with the sprouts message.
func ScoreMessage(score int) string {
	switch {
	case score < 20:
		return tierMessages[0]
	case score < 40:
		return tierMessages[1]
	case score < 60:
		return tierMessages[2]
	case score < 80:
		return tierMessages[3]
	default:
		return tierMessages[4]
	}
}
