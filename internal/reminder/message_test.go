package reminder

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gvriil/habit-tracker/internal/model"
)

func strPtr(s string) *string { return &s }
func idPtr(n uint64) *uint64  { return &n }

func fullHabit() *model.Habit {
	return &model.Habit{
		ID:                1,
		UserID:            1,
		Name:              "Morning run",
		Place:             strPtr("the park"),
		Action:            strPtr("run one lap"),
		TimeToComplete:    "08:00:00",
		EstimatedDuration: 90,
		Periodicity:       1,
		Reward:            strPtr("a smoothie"),
		IsActive:          true,
	}
}

// assertOrder checks that the substrings appear in the text in the given order.
func assertOrder(t *testing.T, text string, parts ...string) {
	t.Helper()
	pos := 0
	for _, p := range parts {
		idx := strings.Index(text[pos:], p)
		if idx < 0 {
			t.Fatalf("expected %q after position %d in:\n%s", p, pos, text)
		}
		pos += idx + len(p)
	}
}

func TestFormatReminder_FieldOrder(t *testing.T) {
	text := FormatReminder(fullHabit(), nil, 5)
	assertOrder(t, text,
		"REMINDER",
		"Morning run",
		"Time: 08:00",
		"Place: the park",
		"Action: run one lap",
		"Duration: 90 seconds",
		"Your reward: _a smoothie_",
		"completed this habit 5 times",
		"/complete",
	)
}

func TestFormatReminder_RelatedHabitWinsOverReward(t *testing.T) {
	h := fullHabit()
	h.RelatedHabitID = idPtr(2)
	related := &model.Habit{ID: 2, Name: "Bubble bath", IsPleasant: true}

	text := FormatReminder(h, related, 0)
	assert.Contains(t, text, "After finishing you may: _Bubble bath_")
	assert.NotContains(t, text, "Your reward")
}

func TestFormatReminder_OmitsOptionalFields(t *testing.T) {
	h := &model.Habit{
		ID:                1,
		Name:              "Stretch",
		TimeToComplete:    "07:30:00",
		EstimatedDuration: 60,
	}
	text := FormatReminder(h, nil, 0)
	assert.NotContains(t, text, "Place:")
	assert.NotContains(t, text, "Action:")
	assert.NotContains(t, text, "reward")
	assert.NotContains(t, text, "completed this habit")
}

func TestFormatReminder_ZeroCompletionsHidden(t *testing.T) {
	assert.NotContains(t, FormatReminder(fullHabit(), nil, 0), "completed this habit")
	assert.Contains(t, FormatReminder(fullHabit(), nil, 1), "completed this habit 1 times")
}
