package reminder

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/gvriil/habit-tracker/internal/model"
)

func habitAt(id uint64, clock string) *model.Habit {
	return &model.Habit{
		ID:             id,
		UserID:         1,
		Name:           "habit-" + clock,
		TimeToComplete: clock,
		Periodicity:    1,
		IsActive:       true,
	}
}

func at(clock string) time.Time {
	t, err := time.Parse("2006-01-02 15:04", "2025-06-10 "+clock)
	if err != nil {
		panic(err)
	}
	return t
}

func dueIDs(t *testing.T, habits []*model.Habit, now time.Time, lookahead time.Duration, completed map[uint64]bool) []uint64 {
	t.Helper()
	sel := &Selector{
		Habits:      newFakeHabits(habits...),
		Completions: &fakeCompletions{completedToday: completed},
	}
	due, err := sel.SelectDue(context.Background(), now, lookahead)
	assert.NoError(t, err)

	ids := make([]uint64, 0, len(due))
	for _, h := range due {
		ids = append(ids, h.ID)
	}
	return ids
}

func TestSelectDue_MorningWindow(t *testing.T) {
	habits := []*model.Habit{
		habitAt(1, "08:00:00"),
		habitAt(2, "08:15:00"),
		habitAt(3, "08:45:00"),
		habitAt(4, "23:50:00"),
	}
	ids := dueIDs(t, habits, at("08:00"), 30*time.Minute, nil)
	assert.ElementsMatch(t, []uint64{1, 2}, ids)
}

func TestSelectDue_MidnightWrap(t *testing.T) {
	habits := []*model.Habit{
		habitAt(1, "23:55:00"),
		habitAt(2, "00:10:00"),
		habitAt(3, "00:20:00"),
		habitAt(4, "12:00:00"),
	}
	ids := dueIDs(t, habits, at("23:50"), 30*time.Minute, nil)
	assert.ElementsMatch(t, []uint64{1, 2}, ids)
}

func TestSelectDue_LowerBoundInclusive(t *testing.T) {
	ids := dueIDs(t, []*model.Habit{habitAt(1, "08:00:00")}, at("08:00"), 30*time.Minute, nil)
	assert.Equal(t, []uint64{1}, ids)
}

func TestSelectDue_ZeroLookahead(t *testing.T) {
	habits := []*model.Habit{
		habitAt(1, "08:00:00"),
		habitAt(2, "08:01:00"),
	}
	ids := dueIDs(t, habits, at("08:00"), 0, nil)
	assert.Equal(t, []uint64{1}, ids)
}

func TestSelectDue_ExcludesCompletedToday(t *testing.T) {
	habits := []*model.Habit{
		habitAt(1, "08:00:00"),
		habitAt(2, "08:15:00"),
	}
	ids := dueIDs(t, habits, at("08:00"), 30*time.Minute, map[uint64]bool{1: true})
	assert.Equal(t, []uint64{2}, ids)
}

func TestSelectDue_IgnoresInactive(t *testing.T) {
	active := habitAt(1, "08:00:00")
	inactive := habitAt(2, "08:05:00")
	inactive.IsActive = false

	ids := dueIDs(t, []*model.Habit{active, inactive}, at("08:00"), 30*time.Minute, nil)
	assert.Equal(t, []uint64{1}, ids)
}

func TestSelectDue_Idempotent(t *testing.T) {
	sel := &Selector{
		Habits:      newFakeHabits(habitAt(1, "08:10:00")),
		Completions: &fakeCompletions{},
	}
	first, err := sel.SelectDue(context.Background(), at("08:00"), 30*time.Minute)
	assert.NoError(t, err)
	second, err := sel.SelectDue(context.Background(), at("08:00"), 30*time.Minute)
	assert.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestParseTimeOfDay(t *testing.T) {
	cases := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"00:00:00", 0, false},
		{"08:15", 8*3600 + 15*60, false},
		{"23:59:59", 23*3600 + 59*60 + 59, false},
		{"24:00", 0, true},
		{"12:60", 0, true},
		{"noon", 0, true},
		{"", 0, true},
	}
	for _, tc := range cases {
		got, err := ParseTimeOfDay(tc.in)
		if tc.wantErr {
			assert.Error(t, err, tc.in)
			continue
		}
		assert.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}
}
