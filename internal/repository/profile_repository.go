package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/gvriil/habit-tracker/internal/model"
)

// ErrProfileNotFound is returned when no Telegram profile exists for a user.
var ErrProfileNotFound = errors.New("telegram profile not found")

// ProfileRepo provides access to the 'telegram_profiles' table, the
// durable destination store for reminders. One profile per user, one
// user per chat.
type ProfileRepo struct {
	db *sql.DB
}

// NewProfileRepo constructs a ProfileRepo with the given DB handle.
func NewProfileRepo(db *sql.DB) *ProfileRepo {
	return &ProfileRepo{db: db}
}

// Link binds a chat id to a user, replacing the user's previous chat if
// any. Returns ErrConflict when the chat id is already bound to a
// different user. An ON DUPLICATE KEY upsert cannot be used here: it
// fires on the chat_id unique index too, silently no-op'ing against the
// other user's row instead of surfacing the conflict.
func (r *ProfileRepo) Link(ctx context.Context, userID uint64, chatID string) error {
	var owner uint64
	err := r.db.QueryRowContext(ctx,
		"SELECT user_id FROM telegram_profiles WHERE chat_id = ?", chatID).Scan(&owner)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		// Chat is unclaimed.
	case err != nil:
		return err
	case owner != userID:
		return ErrConflict
	default:
		return nil // already linked to this user
	}

	// Re-linking moves the user to the new chat; only a user with no row
	// yet needs the insert.
	res, err := r.db.ExecContext(ctx,
		"UPDATE telegram_profiles SET chat_id = ? WHERE user_id = ?", chatID, userID)
	if err != nil {
		return linkErr(err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		return nil
	}
	_, err = r.db.ExecContext(ctx,
		"INSERT INTO telegram_profiles (user_id, chat_id) VALUES (?, ?)", userID, chatID)
	if err != nil {
		return linkErr(err)
	}
	return nil
}

// linkErr maps a duplicate-key error from a concurrent link of the same
// chat to ErrConflict.
func linkErr(err error) error {
	if strings.Contains(strings.ToLower(err.Error()), "1062") {
		return ErrConflict
	}
	return err
}

// GetByUser returns the profile for a user, or ErrProfileNotFound.
func (r *ProfileRepo) GetByUser(ctx context.Context, userID uint64) (*model.TelegramProfile, error) {
	const q = "SELECT id, user_id, chat_id, created_at FROM telegram_profiles WHERE user_id = ?"
	p := new(model.TelegramProfile)
	err := r.db.QueryRowContext(ctx, q, userID).Scan(&p.ID, &p.UserID, &p.ChatID, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	return p, nil
}

// GetByChat returns the profile bound to a chat id, or ErrProfileNotFound.
func (r *ProfileRepo) GetByChat(ctx context.Context, chatID string) (*model.TelegramProfile, error) {
	const q = "SELECT id, user_id, chat_id, created_at FROM telegram_profiles WHERE chat_id = ?"
	p := new(model.TelegramProfile)
	err := r.db.QueryRowContext(ctx, q, chatID).Scan(&p.ID, &p.UserID, &p.ChatID, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	return p, nil
}

// Unlink removes a user's Telegram profile. Missing rows are not an error.
func (r *ProfileRepo) Unlink(ctx context.Context, userID uint64) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM telegram_profiles WHERE user_id = ?", userID)
	return err
}
