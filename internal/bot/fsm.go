// Package bot implements the Telegram dialogue state machine. The habit
// creation conversation is an explicit FSM whose current state and
// collected fields are persisted per chat id, so a dialogue survives
// process restarts and /cancel works from any state.
package bot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/gvriil/habit-tracker/internal/model"
	"github.com/gvriil/habit-tracker/internal/reminder"
	"github.com/gvriil/habit-tracker/internal/repository"
	"github.com/gvriil/habit-tracker/internal/utils"
	"github.com/gvriil/habit-tracker/internal/validation"
)

// Dialogue states. Done has no row: a finished or cancelled dialogue is
// simply deleted.
const (
	StateAwaitingAuth     = "awaiting_auth"
	StateAwaitingName     = "awaiting_name"
	StateAwaitingPlace    = "awaiting_place"
	StateAwaitingAction   = "awaiting_action"
	StateAwaitingDuration = "awaiting_duration"
	StateAwaitingTime     = "awaiting_time"
)

// skipToken lets the user leave an optional field empty.
const skipToken = "-"

// UserStore authenticates bot users. *repository.UserRepo satisfies it.
type UserStore interface {
	GetByEmail(ctx context.Context, email string) (model.User, error)
}

// ProfileStore links chats to users. *repository.ProfileRepo satisfies it.
type ProfileStore interface {
	Link(ctx context.Context, userID uint64, chatID string) error
	GetByChat(ctx context.Context, chatID string) (*model.TelegramProfile, error)
}

// DialogStore persists conversation state. *repository.DialogRepo
// satisfies it.
type DialogStore interface {
	Get(ctx context.Context, chatID string) (*model.DialogState, error)
	Save(ctx context.Context, s *model.DialogState) error
	Delete(ctx context.Context, chatID string) error
}

// HabitStore is the habit persistence the bot needs.
// *repository.HabitRepo satisfies it.
type HabitStore interface {
	Create(ctx context.Context, h *model.Habit) error
	GetByIDAndOwner(ctx context.Context, id, ownerID uint64) (*model.Habit, error)
	ListByOwner(ctx context.Context, userID uint64, f repository.HabitFilter) ([]*model.Habit, int64, error)
}

// CompletionStore records completions. *repository.CompletionRepo
// satisfies it.
type CompletionStore interface {
	Create(ctx context.Context, c *model.HabitCompletion) error
}

// dialogContext is the JSON blob persisted alongside the state name: the
// habit fields collected so far.
type dialogContext struct {
	Name     string `json:"name,omitempty"`
	Place    string `json:"place,omitempty"`
	Action   string `json:"action,omitempty"`
	Duration int    `json:"duration,omitempty"`
}

// Machine processes incoming bot messages and advances the dialogue.
type Machine struct {
	Users       UserStore
	Profiles    ProfileStore
	Dialogs     DialogStore
	Habits      HabitStore
	Completions CompletionStore
}

const helpText = "Available commands:\n" +
	"/start - link your account\n" +
	"/list - list your habits\n" +
	"/create - create a new habit\n" +
	"/complete <id> - mark a habit done\n" +
	"/cancel - abort the current dialogue\n" +
	"/help - this message"

// Handle processes one incoming message for a chat and returns the
// reply text. Storage errors are returned to the caller; everything
// else becomes a conversational reply.
func (m *Machine) Handle(ctx context.Context, chatID, text string) (string, error) {
	text = strings.TrimSpace(text)

	// /cancel transitions to Done from any state.
	if text == "/cancel" {
		if err := m.Dialogs.Delete(ctx, chatID); err != nil {
			return "", err
		}
		return "Cancelled.", nil
	}
	if text == "/help" {
		return helpText, nil
	}

	// A pending dialogue consumes the message before command routing, so
	// an answer like "/run 5k" is treated as input, not as a command.
	state, err := m.Dialogs.Get(ctx, chatID)
	if err != nil && !errors.Is(err, repository.ErrDialogNotFound) {
		return "", err
	}
	if state != nil && !strings.HasPrefix(text, "/") {
		return m.advance(ctx, state, text)
	}

	switch {
	case text == "/start":
		return m.startAuth(ctx, chatID)
	case text == "/list":
		return m.listHabits(ctx, chatID)
	case text == "/create":
		return m.startCreate(ctx, chatID)
	case strings.HasPrefix(text, "/complete"):
		return m.complete(ctx, chatID, strings.TrimSpace(strings.TrimPrefix(text, "/complete")))
	case state != nil:
		// Mid-dialogue slash input that is not a known command.
		return m.advance(ctx, state, text)
	default:
		return "Unknown command. " + helpText, nil
	}
}

func (m *Machine) startAuth(ctx context.Context, chatID string) (string, error) {
	if p, err := m.Profiles.GetByChat(ctx, chatID); err == nil && p != nil {
		return "This chat is already linked. Use /help to see what I can do.", nil
	} else if err != nil && !errors.Is(err, repository.ErrProfileNotFound) {
		return "", err
	}
	if err := m.saveState(ctx, chatID, nil, StateAwaitingAuth, dialogContext{}); err != nil {
		return "", err
	}
	return "Hi! To link your account, send your email and password separated by a space.", nil
}

func (m *Machine) startCreate(ctx context.Context, chatID string) (string, error) {
	p, err := m.requireProfile(ctx, chatID)
	if err != nil {
		return "", err
	}
	if p == nil {
		return "Please link your account first with /start.", nil
	}
	if err := m.saveState(ctx, chatID, &p.UserID, StateAwaitingName, dialogContext{}); err != nil {
		return "", err
	}
	return "Let's create a habit. What is it called?", nil
}

// advance feeds one answer into the pending dialogue and moves to the
// next state.
func (m *Machine) advance(ctx context.Context, s *model.DialogState, text string) (string, error) {
	var dc dialogContext
	if len(s.Context) > 0 {
		if err := json.Unmarshal(s.Context, &dc); err != nil {
			dc = dialogContext{}
		}
	}

	switch s.State {
	case StateAwaitingAuth:
		return m.authenticate(ctx, s, text)

	case StateAwaitingName:
		if text == "" {
			return "A habit needs a name. What is it called?", nil
		}
		dc.Name = text
		if err := m.saveState(ctx, s.ChatID, s.UserID, StateAwaitingPlace, dc); err != nil {
			return "", err
		}
		return fmt.Sprintf("Where will you do %q? (send %s to skip)", dc.Name, skipToken), nil

	case StateAwaitingPlace:
		if text != skipToken {
			dc.Place = text
		}
		if err := m.saveState(ctx, s.ChatID, s.UserID, StateAwaitingAction, dc); err != nil {
			return "", err
		}
		return fmt.Sprintf("What exactly will you do? (send %s to skip)", skipToken), nil

	case StateAwaitingAction:
		if text != skipToken {
			dc.Action = text
		}
		if err := m.saveState(ctx, s.ChatID, s.UserID, StateAwaitingDuration, dc); err != nil {
			return "", err
		}
		return fmt.Sprintf("How many seconds will it take? (max %d)", validation.MaxDurationSeconds), nil

	case StateAwaitingDuration:
		n, err := strconv.Atoi(text)
		if err != nil || n <= 0 {
			return "Please send the duration as a whole number of seconds.", nil
		}
		if v := validation.ValidateDuration(n); v != nil {
			return v.Message + " Try again.", nil
		}
		dc.Duration = n
		if err := m.saveState(ctx, s.ChatID, s.UserID, StateAwaitingTime, dc); err != nil {
			return "", err
		}
		return "At what time of day? (HH:MM)", nil

	case StateAwaitingTime:
		if _, err := reminder.ParseTimeOfDay(text); err != nil {
			return "That doesn't look like a time. Please use HH:MM.", nil
		}
		return m.finishCreate(ctx, s, dc, text)

	default:
		return "Unknown command. " + helpText, nil
	}
}

func (m *Machine) authenticate(ctx context.Context, s *model.DialogState, text string) (string, error) {
	parts := strings.Fields(text)
	if len(parts) != 2 {
		return "Please send your email and password separated by a space.", nil
	}
	u, err := m.Users.GetByEmail(ctx, parts[0])
	if err != nil || !utils.VerifyPassword(u.PasswordHash, parts[1]) {
		return "Invalid email or password. Try again.", nil
	}
	if err := m.Profiles.Link(ctx, u.ID, s.ChatID); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return "This chat is already linked to another account.", nil
		}
		return "", err
	}
	if err := m.Dialogs.Delete(ctx, s.ChatID); err != nil {
		return "", err
	}
	return "You're linked! Use /help to see what I can do.", nil
}

func (m *Machine) finishCreate(ctx context.Context, s *model.DialogState, dc dialogContext, clock string) (string, error) {
	if s.UserID == nil {
		_ = m.Dialogs.Delete(ctx, s.ChatID)
		return "Please link your account first with /start.", nil
	}

	h := model.Habit{
		UserID:            *s.UserID,
		Name:              dc.Name,
		Periodicity:       validation.DefaultPeriodicity,
		TimeToComplete:    clock + ":00",
		EstimatedDuration: dc.Duration,
	}
	if dc.Place != "" {
		h.Place = &dc.Place
	}
	if dc.Action != "" {
		h.Action = &dc.Action
	}

	if vs := validation.ValidateHabit(h, nil); len(vs) > 0 {
		_ = m.Dialogs.Delete(ctx, s.ChatID)
		msgs := make([]string, len(vs))
		for i, v := range vs {
			msgs[i] = v.Message
		}
		return "I couldn't create that habit: " + strings.Join(msgs, "; "), nil
	}

	if err := m.Habits.Create(ctx, &h); err != nil {
		return "", err
	}
	if err := m.Dialogs.Delete(ctx, s.ChatID); err != nil {
		return "", err
	}
	return fmt.Sprintf("Habit %q created! I'll remind you at %s.", h.Name, clock), nil
}

func (m *Machine) listHabits(ctx context.Context, chatID string) (string, error) {
	p, err := m.requireProfile(ctx, chatID)
	if err != nil {
		return "", err
	}
	if p == nil {
		return "Please link your account first with /start.", nil
	}

	habits, _, err := m.Habits.ListByOwner(ctx, p.UserID, repository.HabitFilter{PageSize: 100})
	if err != nil {
		return "", err
	}
	if len(habits) == 0 {
		return "You have no habits yet. Create one with /create.", nil
	}

	var b strings.Builder
	b.WriteString("Your habits:\n")
	for _, h := range habits {
		fmt.Fprintf(&b, "%d. %s", h.ID, h.Name)
		if h.Place != nil && *h.Place != "" {
			fmt.Fprintf(&b, " at %s", *h.Place)
		}
		fmt.Fprintf(&b, " (%d sec)\n", h.EstimatedDuration)
	}
	return b.String(), nil
}

func (m *Machine) complete(ctx context.Context, chatID, arg string) (string, error) {
	p, err := m.requireProfile(ctx, chatID)
	if err != nil {
		return "", err
	}
	if p == nil {
		return "Please link your account first with /start.", nil
	}
	if arg == "" {
		listing, err := m.listHabits(ctx, chatID)
		if err != nil {
			return "", err
		}
		return "Which one? Send /complete <id>.\n" + listing, nil
	}

	id, err := strconv.ParseUint(arg, 10, 64)
	if err != nil {
		return "Send the habit id as a number, e.g. /complete 3.", nil
	}
	h, err := m.Habits.GetByIDAndOwner(ctx, id, p.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrHabitNotFound) {
			return "You have no habit with that id. /list shows yours.", nil
		}
		return "", err
	}

	c := model.HabitCompletion{HabitID: h.ID, UserID: p.UserID, IsSuccessful: true}
	if err := m.Completions.Create(ctx, &c); err != nil {
		return "", err
	}
	return fmt.Sprintf("Marked %q as done. Keep it up!", h.Name), nil
}

// requireProfile returns the linked profile for a chat, or nil when the
// chat is not linked yet.
func (m *Machine) requireProfile(ctx context.Context, chatID string) (*model.TelegramProfile, error) {
	p, err := m.Profiles.GetByChat(ctx, chatID)
	if err != nil {
		if errors.Is(err, repository.ErrProfileNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return p, nil
}

func (m *Machine) saveState(ctx context.Context, chatID string, userID *uint64, state string, dc dialogContext) error {
	raw, err := json.Marshal(dc)
	if err != nil {
		return err
	}
	return m.Dialogs.Save(ctx, &model.DialogState{
		ChatID:  chatID,
		UserID:  userID,
		State:   state,
		Context: raw,
	})
}
