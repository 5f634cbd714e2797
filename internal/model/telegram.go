package model

import (
	"encoding/json"
	"time"
)

// TelegramProfile links a user to a Telegram chat.  It is the single
// authoritative destination store for reminders: resolving a user's
// notification destination is a lookup against this table, never an
// in-process map.
//
// Fields:
//  ID        – primary key identifier.
//  UserID    – owner of the profile (unique, one profile per user).
//  ChatID    – Telegram chat identifier (unique).
//  CreatedAt – when the link was established.
type TelegramProfile struct {
	ID        uint64    // telegram_profiles.id
	UserID    uint64    // telegram_profiles.user_id
	ChatID    string    // telegram_profiles.chat_id
	CreatedAt time.Time // telegram_profiles.created_at
}

// DialogState persists the bot conversation state for a chat.  The habit
// creation dialogue is a finite-state machine; the current state name and
// the partially collected habit fields live in this row so the dialogue
// survives process restarts.
//
// Fields:
//  ID        – primary key identifier.
//  ChatID    – Telegram chat the dialogue belongs to (unique).
//  UserID    – authenticated user, nil until the auth step succeeds.
//  State     – current FSM state name.
//  Context   – JSON blob with fields collected so far.
//  UpdatedAt – last transition timestamp.
type DialogState struct {
	ID        uint64          // telegram_states.id
	ChatID    string          // telegram_states.chat_id
	UserID    *uint64         // telegram_states.user_id (nullable)
	State     string          // telegram_states.state
	Context   json.RawMessage // telegram_states.context
	UpdatedAt time.Time       // telegram_states.updated_at
}

// NotificationLog records one reminder or digest delivery attempt.
//
// Fields:
//  ID          – primary key identifier.
//  UserID      – recipient user.
//  HabitID     – habit the message was about (nil for digests).
//  Message     – full text that was sent or attempted.
//  IsDelivered – whether the transport accepted the message.
//  SentAt      – when the attempt was made.
type NotificationLog struct {
	ID          uint64    // notification_logs.id
	UserID      uint64    // notification_logs.user_id
	HabitID     *uint64   // notification_logs.habit_id (nullable)
	Message     string    // notification_logs.message
	IsDelivered bool      // notification_logs.is_delivered
	SentAt      time.Time // notification_logs.sent_at
}
