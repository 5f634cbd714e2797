package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/gvriil/habit-tracker/internal/model"
)

// ErrDialogNotFound is returned when no dialogue state exists for a chat.
var ErrDialogNotFound = errors.New("dialog state not found")

// DialogRepo persists the bot conversation state machine per chat in the
// 'telegram_states' table. The current state name and the partially
// collected habit fields survive process restarts.
type DialogRepo struct {
	db *sql.DB
}

// NewDialogRepo constructs a DialogRepo with the given DB handle.
func NewDialogRepo(db *sql.DB) *DialogRepo {
	return &DialogRepo{db: db}
}

// Get returns the dialogue state for a chat, or ErrDialogNotFound.
func (r *DialogRepo) Get(ctx context.Context, chatID string) (*model.DialogState, error) {
	const q = "SELECT id, chat_id, user_id, state, context, updated_at FROM telegram_states WHERE chat_id = ?"
	s := new(model.DialogState)
	var raw []byte
	err := r.db.QueryRowContext(ctx, q, chatID).Scan(&s.ID, &s.ChatID, &s.UserID, &s.State, &raw, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDialogNotFound
		}
		return nil, err
	}
	if len(raw) == 0 {
		raw = []byte("{}")
	}
	s.Context = json.RawMessage(raw)
	return s, nil
}

// Save upserts the dialogue state for a chat.
func (r *DialogRepo) Save(ctx context.Context, s *model.DialogState) error {
	if len(s.Context) == 0 {
		s.Context = json.RawMessage("{}")
	}
	const q = `INSERT INTO telegram_states (chat_id, user_id, state, context)
	           VALUES (?, ?, ?, ?)
	           ON DUPLICATE KEY UPDATE user_id = VALUES(user_id), state = VALUES(state), context = VALUES(context)`
	_, err := r.db.ExecContext(ctx, q, s.ChatID, s.UserID, s.State, []byte(s.Context))
	return err
}

// Delete removes the dialogue state for a chat. Missing rows are not an
// error; a finished or cancelled dialogue simply has no row.
func (r *DialogRepo) Delete(ctx context.Context, chatID string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM telegram_states WHERE chat_id = ?", chatID)
	return err
}
