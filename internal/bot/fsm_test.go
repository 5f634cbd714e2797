package bot

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/bcrypt"

	"github.com/gvriil/habit-tracker/internal/model"
	"github.com/gvriil/habit-tracker/internal/repository"
)

type fakeUsers struct {
	users map[string]model.User
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (model.User, error) {
	u, ok := f.users[email]
	if !ok {
		return model.User{}, repository.ErrHabitNotFound // any non-nil error
	}
	return u, nil
}

type fakeProfiles struct {
	byChat map[string]*model.TelegramProfile
}

func (f *fakeProfiles) Link(_ context.Context, userID uint64, chatID string) error {
	if f.byChat == nil {
		f.byChat = map[string]*model.TelegramProfile{}
	}
	if p, ok := f.byChat[chatID]; ok && p.UserID != userID {
		return repository.ErrConflict
	}
	f.byChat[chatID] = &model.TelegramProfile{UserID: userID, ChatID: chatID}
	return nil
}

func (f *fakeProfiles) GetByChat(_ context.Context, chatID string) (*model.TelegramProfile, error) {
	p, ok := f.byChat[chatID]
	if !ok {
		return nil, repository.ErrProfileNotFound
	}
	return p, nil
}

type fakeDialogs struct {
	states map[string]*model.DialogState
}

func (f *fakeDialogs) Get(_ context.Context, chatID string) (*model.DialogState, error) {
	s, ok := f.states[chatID]
	if !ok {
		return nil, repository.ErrDialogNotFound
	}
	return s, nil
}

func (f *fakeDialogs) Save(_ context.Context, s *model.DialogState) error {
	if f.states == nil {
		f.states = map[string]*model.DialogState{}
	}
	f.states[s.ChatID] = s
	return nil
}

func (f *fakeDialogs) Delete(_ context.Context, chatID string) error {
	delete(f.states, chatID)
	return nil
}

type fakeBotHabits struct {
	created []*model.Habit
	nextID  uint64
}

func (f *fakeBotHabits) Create(_ context.Context, h *model.Habit) error {
	f.nextID++
	h.ID = f.nextID
	f.created = append(f.created, h)
	return nil
}

func (f *fakeBotHabits) GetByIDAndOwner(_ context.Context, id, ownerID uint64) (*model.Habit, error) {
	for _, h := range f.created {
		if h.ID == id && h.UserID == ownerID {
			return h, nil
		}
	}
	return nil, repository.ErrHabitNotFound
}

func (f *fakeBotHabits) ListByOwner(_ context.Context, userID uint64, _ repository.HabitFilter) ([]*model.Habit, int64, error) {
	var out []*model.Habit
	for _, h := range f.created {
		if h.UserID == userID {
			out = append(out, h)
		}
	}
	return out, int64(len(out)), nil
}

type fakeBotCompletions struct {
	created []*model.HabitCompletion
}

func (f *fakeBotCompletions) Create(_ context.Context, c *model.HabitCompletion) error {
	f.created = append(f.created, c)
	return nil
}

func newMachine(t *testing.T) (*Machine, *fakeBotHabits, *fakeBotCompletions) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("secret"), bcrypt.MinCost)
	assert.NoError(t, err)

	habits := &fakeBotHabits{}
	completions := &fakeBotCompletions{}
	m := &Machine{
		Users:       &fakeUsers{users: map[string]model.User{"alex@example.com": {ID: 7, Email: "alex@example.com", PasswordHash: string(hash)}}},
		Profiles:    &fakeProfiles{},
		Dialogs:     &fakeDialogs{},
		Habits:      habits,
		Completions: completions,
	}
	return m, habits, completions
}

// say sends one message and asserts no storage error.
func say(t *testing.T, m *Machine, chat, text string) string {
	t.Helper()
	reply, err := m.Handle(context.Background(), chat, text)
	assert.NoError(t, err)
	return reply
}

func link(t *testing.T, m *Machine, chat string) {
	t.Helper()
	say(t, m, chat, "/start")
	reply := say(t, m, chat, "alex@example.com secret")
	assert.Contains(t, reply, "linked")
}

func TestMachine_AuthFlow(t *testing.T) {
	m, _, _ := newMachine(t)

	reply := say(t, m, "chat-1", "/start")
	assert.Contains(t, reply, "email and password")

	reply = say(t, m, "chat-1", "alex@example.com wrong")
	assert.Contains(t, reply, "Invalid email or password")

	reply = say(t, m, "chat-1", "alex@example.com secret")
	assert.Contains(t, reply, "linked")
}

func TestMachine_AuthConflict(t *testing.T) {
	m, _, _ := newMachine(t)
	say(t, m, "chat-1", "/start")

	// The chat gets claimed by another account mid-dialogue.
	profiles := m.Profiles.(*fakeProfiles)
	profiles.byChat = map[string]*model.TelegramProfile{"chat-1": {UserID: 99, ChatID: "chat-1"}}

	reply := say(t, m, "chat-1", "alex@example.com secret")
	assert.Contains(t, reply, "already linked to another account")
}

func TestMachine_CreateHabitFlow(t *testing.T) {
	m, habits, _ := newMachine(t)
	link(t, m, "chat-1")

	say(t, m, "chat-1", "/create")
	say(t, m, "chat-1", "Morning run")
	say(t, m, "chat-1", "the park")
	say(t, m, "chat-1", "-") // skip action
	say(t, m, "chat-1", "90")
	reply := say(t, m, "chat-1", "08:00")
	assert.Contains(t, reply, "created")

	if assert.Len(t, habits.created, 1) {
		h := habits.created[0]
		assert.Equal(t, uint64(7), h.UserID)
		assert.Equal(t, "Morning run", h.Name)
		assert.Equal(t, "the park", *h.Place)
		assert.Nil(t, h.Action)
		assert.Equal(t, 90, h.EstimatedDuration)
		assert.Equal(t, "08:00:00", h.TimeToComplete)
		assert.Equal(t, 1, h.Periodicity)
	}
}

func TestMachine_DurationRevalidated(t *testing.T) {
	m, habits, _ := newMachine(t)
	link(t, m, "chat-1")

	say(t, m, "chat-1", "/create")
	say(t, m, "chat-1", "Pushups")
	say(t, m, "chat-1", "-")
	say(t, m, "chat-1", "-")

	reply := say(t, m, "chat-1", "600")
	assert.Contains(t, reply, "cannot exceed 120")
	assert.Empty(t, habits.created)

	// The dialogue stays in the duration step and accepts a valid value.
	say(t, m, "chat-1", "100")
	reply = say(t, m, "chat-1", "07:30")
	assert.Contains(t, reply, "created")
	assert.Len(t, habits.created, 1)
}

func TestMachine_CancelFromAnyState(t *testing.T) {
	m, habits, _ := newMachine(t)
	link(t, m, "chat-1")

	say(t, m, "chat-1", "/create")
	say(t, m, "chat-1", "Half-made habit")

	reply := say(t, m, "chat-1", "/cancel")
	assert.Contains(t, reply, "Cancelled")
	assert.Empty(t, habits.created)

	// After cancelling, plain text is no longer dialogue input.
	reply = say(t, m, "chat-1", "hello?")
	assert.Contains(t, reply, "Unknown command")
}

func TestMachine_CompleteHabit(t *testing.T) {
	m, habits, completions := newMachine(t)
	link(t, m, "chat-1")
	habits.created = append(habits.created, &model.Habit{ID: 1, UserID: 7, Name: "Stretch"})
	habits.nextID = 1

	reply := say(t, m, "chat-1", "/complete 1")
	assert.Contains(t, reply, "Stretch")
	if assert.Len(t, completions.created, 1) {
		assert.Equal(t, uint64(1), completions.created[0].HabitID)
		assert.Equal(t, uint64(7), completions.created[0].UserID)
		assert.True(t, completions.created[0].IsSuccessful)
	}
}

func TestMachine_CompleteUnknownHabit(t *testing.T) {
	m, _, completions := newMachine(t)
	link(t, m, "chat-1")

	reply := say(t, m, "chat-1", "/complete 99")
	assert.Contains(t, reply, "no habit with that id")
	assert.Empty(t, completions.created)
}

func TestMachine_RequiresLink(t *testing.T) {
	m, _, _ := newMachine(t)

	assert.Contains(t, say(t, m, "chat-9", "/create"), "/start")
	assert.Contains(t, say(t, m, "chat-9", "/list"), "/start")
	assert.Contains(t, say(t, m, "chat-9", "/complete 1"), "/start")
}
