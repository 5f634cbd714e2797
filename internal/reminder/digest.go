package reminder

import (
	"fmt"
	"strings"
	"time"
)

// Digest tone thresholds. Each bucket is inclusive at its lower edge.
const (
	celebrateAt = 80.0
	encourageAt = 50.0
)

// Digest summarizes one user's completion rate for a single day.
type Digest struct {
	Day             time.Time `json:"day"`
	TotalHabits     int       `json:"total_habits"`
	CompletedHabits int       `json:"completed_habits"`
	Percentage      float64   `json:"percentage"`
	Message         string    `json:"message"`
}

// ComposeDigest builds the digest for a day given the user's habit count
// and the number of distinct habits completed that day. With no habits
// the percentage is zero; there is no division by zero case.
func ComposeDigest(day time.Time, totalHabits, completedHabits int) Digest {
	pct := 0.0
	if totalHabits > 0 {
		pct = float64(completedHabits) / float64(totalHabits) * 100
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📊 *Your results for %s*\n\n", day.Format("02.01.2006"))
	fmt.Fprintf(&b, "Total habits: %d\n", totalHabits)
	fmt.Fprintf(&b, "Completed: %d\n", completedHabits)
	fmt.Fprintf(&b, "Completion rate: %.1f%%\n\n", pct)
	b.WriteString(toneLine(pct))

	return Digest{
		Day:             day,
		TotalHabits:     totalHabits,
		CompletedHabits: completedHabits,
		Percentage:      pct,
		Message:         b.String(),
	}
}

// toneLine picks the closing line for a completion percentage: 80% and
// above celebrates, 50% and above encourages, anything lower motivates.
func toneLine(pct float64) string {
	switch {
	case pct >= celebrateAt:
		return "🎉 Great work! Keep it up!"
	case pct >= encourageAt:
		return "👍 Good result! Aim higher!"
	default:
		return "💪 Don't give up! Small steps lead to big results!"
	}
}
