package model

import "time"

// HabitCompletion records one instance of a habit being performed.  Each
// completion references exactly one habit and the user who performed it,
// normally the habit's owner.  Completions are created and deleted but
// never updated.  A habit may have many completions; nothing at this
// layer limits them to one per day.
//
// Fields:
//  ID           – primary key identifier.
//  HabitID      – habit that was performed.
//  UserID       – user who performed it.
//  CompletedAt  – when the habit was performed; defaults to creation time.
//  IsSuccessful – whether the attempt counted as a success.
//  Notes        – optional free-text notes.
type HabitCompletion struct {
	ID           uint64    `json:"id"`            // habit_completions.id
	HabitID      uint64    `json:"habit"`         // habit_completions.habit_id
	UserID       uint64    `json:"user_id"`       // habit_completions.user_id
	CompletedAt  time.Time `json:"completed_at"`  // habit_completions.completed_at
	IsSuccessful bool      `json:"is_successful"` // habit_completions.is_successful
	Notes        *string   `json:"notes"`         // habit_completions.notes (nullable)
}
