// Package queue defines message payloads exchanged over the message
// broker and the publisher/consumer pair that moves them.
package queue

// ReminderDueEvent asks the worker to deliver the reminder for one
// habit. The habit is re-read at delivery time, so an event can outlive
// edits or deletion of its habit; the dispatcher skips habits that no
// longer exist.
type ReminderDueEvent struct {
	MessageID   string `json:"message_id"`
	HabitID     uint64 `json:"habit_id"`
	ScheduledAt string `json:"scheduled_at"`
	DeliverAt   string `json:"deliver_at"`
}
