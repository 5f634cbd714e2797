// Package reminder implements the habit reminder pipeline: selecting
// habits that are due soon, composing reminder and digest messages, and
// dispatching them to each user's notification destination.
package reminder

import (
	"context"
	"fmt"
	"time"

	"github.com/gvriil/habit-tracker/internal/model"
)

const secondsPerDay = 24 * 60 * 60

// HabitStore is the slice of habit persistence the reminder pipeline
// needs. *repository.HabitRepo satisfies it.
type HabitStore interface {
	GetByID(ctx context.Context, id uint64) (*model.Habit, error)
	ListActive(ctx context.Context) ([]*model.Habit, error)
	CountByOwner(ctx context.Context, userID uint64) (int, error)
}

// CompletionStore is the slice of completion persistence the reminder
// pipeline needs. *repository.CompletionRepo satisfies it.
type CompletionStore interface {
	HabitIDsCompletedSince(ctx context.Context, since time.Time) (map[uint64]bool, error)
	CountByHabit(ctx context.Context, habitID uint64) (int, error)
	CountDistinctHabitsCompletedBetween(ctx context.Context, userID uint64, from, to time.Time) (int, error)
}

// Selector computes which active habits fall inside the upcoming
// reminder window and have not been completed yet today. It performs no
// mutation and is safe to call repeatedly within the same tick.
type Selector struct {
	Habits      HabitStore
	Completions CompletionStore
}

// SelectDue returns the habits whose scheduled time of day lies in
// [now, now+lookahead], with the window wrapping past midnight, minus
// any habit already completed since local midnight. Both window bounds
// are inclusive, so a habit scheduled exactly at now is due.
func (s *Selector) SelectDue(ctx context.Context, now time.Time, lookahead time.Duration) ([]*model.Habit, error) {
	habits, err := s.Habits.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	windowStart := SecondOfDay(now)
	windowEnd := (windowStart + int(lookahead/time.Second)) % secondsPerDay

	var due []*model.Habit
	for _, h := range habits {
		t, err := ParseTimeOfDay(h.TimeToComplete)
		if err != nil {
			continue // malformed schedule, never due
		}
		if inWindow(t, windowStart, windowEnd) {
			due = append(due, h)
		}
	}
	if len(due) == 0 {
		return nil, nil
	}

	completedToday, err := s.Completions.HabitIDsCompletedSince(ctx, StartOfDay(now))
	if err != nil {
		return nil, err
	}
	out := due[:0]
	for _, h := range due {
		if !completedToday[h.ID] {
			out = append(out, h)
		}
	}
	return out, nil
}

// inWindow reports whether second-of-day t falls inside the inclusive
// window [start, end]. When end < start the window crosses midnight and
// splits into [start, 24h) OR [0, end].
func inWindow(t, start, end int) bool {
	if end < start {
		return t >= start || t <= end
	}
	return t >= start && t <= end
}

// ParseTimeOfDay converts a "HH:MM" or "HH:MM:SS" string into seconds
// since midnight.
func ParseTimeOfDay(s string) (int, error) {
	var h, m, sec int
	// Seconds are optional: Sscanf reports two parsed items for "HH:MM".
	if n, _ := fmt.Sscanf(s, "%d:%d:%d", &h, &m, &sec); n < 2 {
		return 0, fmt.Errorf("invalid time of day %q", s)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 || sec < 0 || sec > 59 {
		return 0, fmt.Errorf("invalid time of day %q", s)
	}
	return h*3600 + m*60 + sec, nil
}

// SecondOfDay returns how many seconds of t's day have elapsed.
func SecondOfDay(t time.Time) int {
	return t.Hour()*3600 + t.Minute()*60 + t.Second()
}

// StartOfDay returns midnight of t's day in t's location.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
