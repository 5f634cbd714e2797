package model

import "time"

// Habit represents a recurring action a user wants to build.  Each habit
// belongs to one user and corresponds to a row in the `habits` table.
// A habit is motivated either by a free-text reward or by a related
// pleasant habit, never both.  Pleasant habits are terminal rewards and
// carry no motivation fields of their own.
//
// Fields:
//  ID                – primary key identifier.
//  UserID            – user ID of the habit owner.
//  Name              – short label for the habit (required).
//  Description       – optional free text.
//  Place             – optional location where the habit is performed.
//  Action            – optional description of the concrete action.
//  Periodicity       – how often the habit repeats, in days (1..7).
//  TimeToComplete    – time of day the habit should be performed, "HH:MM:SS".
//  EstimatedDuration – expected duration in seconds (max 120).
//  IsPleasant        – true when the habit is itself a reward.
//  IsPublic          – true when the habit is visible to other users.
//  IsActive          – whether the habit participates in reminders.
//  RelatedHabitID    – pleasant habit performed as a reward (nullable).
//  Reward            – free-text reward (nullable).
//  CreatedAt         – creation timestamp.
//  UpdatedAt         – timestamp of last update.
type Habit struct {
	ID                uint64    `json:"id"`                 // habits.id
	UserID            uint64    `json:"user_id"`            // habits.user_id
	Name              string    `json:"name"`               // habits.name
	Description       *string   `json:"description"`        // habits.description (nullable)
	Place             *string   `json:"place"`              // habits.place (nullable)
	Action            *string   `json:"action"`             // habits.action (nullable)
	Periodicity       int       `json:"periodicity"`        // habits.periodicity (days)
	TimeToComplete    string    `json:"time_to_complete"`   // habits.time_to_complete (TIME column)
	EstimatedDuration int       `json:"estimated_duration"` // habits.estimated_duration (seconds)
	IsPleasant        bool      `json:"is_pleasant"`        // habits.is_pleasant
	IsPublic          bool      `json:"is_public"`          // habits.is_public
	IsActive          bool      `json:"is_active"`          // habits.is_active
	RelatedHabitID    *uint64   `json:"related_habit"`      // habits.related_habit_id (nullable)
	Reward            *string   `json:"reward"`             // habits.reward (nullable)
	CreatedAt         time.Time `json:"created_at"`         // habits.created_at
	UpdatedAt         time.Time `json:"updated_at"`         // habits.updated_at
}

// HasReward reports whether the habit carries a non-empty free-text reward.
func (h Habit) HasReward() bool {
	return h.Reward != nil && *h.Reward != ""
}

// HasRelatedHabit reports whether the habit references a related habit.
func (h Habit) HasRelatedHabit() bool {
	return h.RelatedHabitID != nil && *h.RelatedHabitID != 0
}
