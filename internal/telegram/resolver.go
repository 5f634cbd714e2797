package telegram

import (
	"context"
	"errors"

	"github.com/gvriil/habit-tracker/internal/model"
	"github.com/gvriil/habit-tracker/internal/reminder"
	"github.com/gvriil/habit-tracker/internal/repository"
)

// ProfileStore is the slice of profile persistence the resolver needs.
// *repository.ProfileRepo satisfies it.
type ProfileStore interface {
	GetByUser(ctx context.Context, userID uint64) (*model.TelegramProfile, error)
}

// Resolver resolves a user's notification destination from the durable
// profile store. There is no in-process destination cache: a single
// authoritative lookup keeps reminders and profile edits consistent.
type Resolver struct {
	Profiles ProfileStore
}

// Resolve returns the chat id linked to a user, or
// reminder.ErrNoDestination when the user has no Telegram profile.
func (r *Resolver) Resolve(ctx context.Context, userID uint64) (string, error) {
	p, err := r.Profiles.GetByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrProfileNotFound) {
			return "", reminder.ErrNoDestination
		}
		return "", err
	}
	return p.ChatID, nil
}
