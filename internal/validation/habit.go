// Package validation holds the authoritative habit consistency rules.
// Every write path, HTTP handlers and the Telegram dialogue alike, runs
// ValidateHabit before anything is persisted.  The rules never coerce or
// drop data; a failed check surfaces a Violation naming the rule and the
// offending field so the caller can reject the write.
package validation

import (
	"fmt"

	"github.com/gvriil/habit-tracker/internal/model"
)

// Rule limits shared by all habits.
const (
	MaxPeriodicityDays  = 7   // a habit must repeat at least once a week
	MaxDurationSeconds  = 120 // estimated duration is capped at two minutes
	DefaultPeriodicity  = 1
)

// Rule identifiers reported in violations.
const (
	RulePeriodicity          = "periodicity"
	RuleDuration             = "duration"
	RuleRewardExclusivity    = "reward_exclusivity"
	RuleRelatedIsPleasant    = "related_habit_is_pleasant"
	RulePleasantNoMotivation = "pleasant_has_no_motivation"
)

// Violation describes a single failed rule.  Rule identifies which check
// failed, Field names the offending field and Message is a human-readable
// explanation suitable for API responses.
type Violation struct {
	Rule    string `json:"rule"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error implements the error interface so a single violation can be
// returned where an error is expected.
func (v Violation) Error() string {
	return fmt.Sprintf("%s: %s", v.Rule, v.Message)
}

// ValidatePeriodicity fails when the habit would repeat less often than
// once every seven days.
func ValidatePeriodicity(days int) *Violation {
	if days > MaxPeriodicityDays {
		return &Violation{
			Rule:    RulePeriodicity,
			Field:   "periodicity",
			Message: fmt.Sprintf("a habit cannot be performed less often than once every %d days", MaxPeriodicityDays),
		}
	}
	return nil
}

// ValidateDuration fails when the estimated duration exceeds the cap.
func ValidateDuration(seconds int) *Violation {
	if seconds > MaxDurationSeconds {
		return &Violation{
			Rule:    RuleDuration,
			Field:   "estimated_duration",
			Message: fmt.Sprintf("estimated duration cannot exceed %d seconds", MaxDurationSeconds),
		}
	}
	return nil
}

// ValidateRewardExclusivity fails when both a reward and a related habit
// are present.  A habit is motivated by at most one of the two.
func ValidateRewardExclusivity(reward *string, relatedHabitID *uint64) *Violation {
	if hasText(reward) && hasRef(relatedHabitID) {
		return &Violation{
			Rule:    RuleRewardExclusivity,
			Field:   "reward",
			Message: "a habit cannot have both a reward and a related habit",
		}
	}
	return nil
}

// ValidateRelatedHabitIsPleasant fails when a related habit is set but the
// referenced habit is not pleasant.  Only pleasant habits may serve as
// rewards for other habits.
func ValidateRelatedHabitIsPleasant(related *model.Habit) *Violation {
	if related != nil && !related.IsPleasant {
		return &Violation{
			Rule:    RuleRelatedIsPleasant,
			Field:   "related_habit",
			Message: "a related habit must be a pleasant habit",
		}
	}
	return nil
}

// ValidatePleasantHasNoMotivation fails when a pleasant habit carries a
// reward or a related habit.  A pleasant habit is a terminal reward itself.
func ValidatePleasantHasNoMotivation(isPleasant bool, reward *string, relatedHabitID *uint64) *Violation {
	if isPleasant && (hasText(reward) || hasRef(relatedHabitID)) {
		return &Violation{
			Rule:    RulePleasantNoMotivation,
			Field:   "is_pleasant",
			Message: "a pleasant habit cannot have a reward or a related habit",
		}
	}
	return nil
}

// ValidateHabit is the save-time gate: the logical AND of all five rules.
// The related argument is the habit referenced by h.RelatedHabitID, loaded
// by the caller, or nil when no reference is set.  It returns every
// violation found, not just the first, so the caller can report them all.
func ValidateHabit(h model.Habit, related *model.Habit) []Violation {
	var out []Violation
	if v := ValidatePeriodicity(h.Periodicity); v != nil {
		out = append(out, *v)
	}
	if v := ValidateDuration(h.EstimatedDuration); v != nil {
		out = append(out, *v)
	}
	if v := ValidateRewardExclusivity(h.Reward, h.RelatedHabitID); v != nil {
		out = append(out, *v)
	}
	if h.HasRelatedHabit() {
		if v := ValidateRelatedHabitIsPleasant(related); v != nil {
			out = append(out, *v)
		}
	}
	if v := ValidatePleasantHasNoMotivation(h.IsPleasant, h.Reward, h.RelatedHabitID); v != nil {
		out = append(out, *v)
	}
	return out
}

func hasText(s *string) bool    { return s != nil && *s != "" }
func hasRef(id *uint64) bool    { return id != nil && *id != 0 }
