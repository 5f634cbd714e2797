package reminder

import (
	"fmt"
	"strings"

	"github.com/gvriil/habit-tracker/internal/model"
)

// FormatReminder builds the Markdown reminder text for one habit. The
// field order is fixed: header, habit name, scheduled time, place,
// action, duration, then the related habit or reward if present, the
// cumulative completion count when positive, and a closing call to
// action. Optional fields are omitted, never left blank.
func FormatReminder(h *model.Habit, related *model.Habit, completions int) string {
	var b strings.Builder

	b.WriteString("⏰ *REMINDER*\n\n")
	fmt.Fprintf(&b, "Time to do your habit: *%s*\n", h.Name)

	if clock := formatClock(h.TimeToComplete); clock != "" {
		fmt.Fprintf(&b, "Time: %s\n", clock)
	}
	if h.Place != nil && *h.Place != "" {
		fmt.Fprintf(&b, "Place: %s\n", *h.Place)
	}
	if h.Action != nil && *h.Action != "" {
		fmt.Fprintf(&b, "Action: %s\n", *h.Action)
	}
	fmt.Fprintf(&b, "Duration: %d seconds\n\n", h.EstimatedDuration)

	if related != nil {
		fmt.Fprintf(&b, "After finishing you may: _%s_\n", related.Name)
	} else if h.HasReward() {
		fmt.Fprintf(&b, "Your reward: _%s_\n", *h.Reward)
	}

	if completions > 0 {
		fmt.Fprintf(&b, "\nYou have completed this habit %d times!\n", completions)
	}

	b.WriteString("\nDon't forget to mark it done with /complete")
	return b.String()
}

// formatClock shortens a "HH:MM:SS" time-of-day to "HH:MM". Malformed
// values yield "" and the time line is skipped.
func formatClock(t string) string {
	sec, err := ParseTimeOfDay(t)
	if err != nil {
		return ""
	}
	return fmt.Sprintf("%02d:%02d", sec/3600, sec%3600/60)
}
