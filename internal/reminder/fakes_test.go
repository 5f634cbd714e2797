package reminder

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/gvriil/habit-tracker/internal/model"
	"github.com/gvriil/habit-tracker/internal/repository"
)

// fakeHabits is an in-memory HabitStore.
type fakeHabits struct {
	habits map[uint64]*model.Habit
}

func newFakeHabits(hs ...*model.Habit) *fakeHabits {
	f := &fakeHabits{habits: make(map[uint64]*model.Habit)}
	for _, h := range hs {
		f.habits[h.ID] = h
	}
	return f
}

func (f *fakeHabits) GetByID(_ context.Context, id uint64) (*model.Habit, error) {
	h, ok := f.habits[id]
	if !ok {
		return nil, repository.ErrHabitNotFound
	}
	return h, nil
}

func (f *fakeHabits) ListActive(_ context.Context) ([]*model.Habit, error) {
	var out []*model.Habit
	for _, h := range f.habits {
		if h.IsActive {
			out = append(out, h)
		}
	}
	return out, nil
}

func (f *fakeHabits) CountByOwner(_ context.Context, userID uint64) (int, error) {
	n := 0
	for _, h := range f.habits {
		if h.UserID == userID {
			n++
		}
	}
	return n, nil
}

// fakeCompletions is an in-memory CompletionStore. The window of the
// last distinct-count query is recorded so tests can pin which day a
// digest covered.
type fakeCompletions struct {
	completedToday map[uint64]bool
	counts         map[uint64]int
	distinct       int
	distinctFrom   time.Time
	distinctTo     time.Time
}

func (f *fakeCompletions) HabitIDsCompletedSince(_ context.Context, _ time.Time) (map[uint64]bool, error) {
	if f.completedToday == nil {
		return map[uint64]bool{}, nil
	}
	return f.completedToday, nil
}

func (f *fakeCompletions) CountByHabit(_ context.Context, habitID uint64) (int, error) {
	return f.counts[habitID], nil
}

func (f *fakeCompletions) CountDistinctHabitsCompletedBetween(_ context.Context, _ uint64, from, to time.Time) (int, error) {
	f.distinctFrom, f.distinctTo = from, to
	return f.distinct, nil
}

// fakeResolver resolves destinations from a fixed map; absent users get
// ErrNoDestination.
type fakeResolver struct {
	destinations map[uint64]string
}

func (f *fakeResolver) Resolve(_ context.Context, userID uint64) (string, error) {
	d, ok := f.destinations[userID]
	if !ok {
		return "", ErrNoDestination
	}
	return d, nil
}

// fakeTransport records sent messages and can be told to fail for
// specific destinations.
type fakeTransport struct {
	mu      sync.Mutex
	sent    []sentMessage
	failFor map[string]bool
}

type sentMessage struct {
	destination string
	text        string
}

func (f *fakeTransport) Send(_ context.Context, destination, text string) error {
	if f.failFor[destination] {
		return errors.New("transport unavailable")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentMessage{destination: destination, text: text})
	return nil
}

// fakeSink collects notification log rows.
type fakeSink struct {
	rows []*model.NotificationLog
}

func (f *fakeSink) Log(_ context.Context, n *model.NotificationLog) error {
	f.rows = append(f.rows, n)
	return nil
}

// fakeQueue records scheduled reminders and can fail for chosen habits.
type fakeQueue struct {
	scheduled []uint64
	failFor   map[uint64]bool
}

func (f *fakeQueue) ScheduleReminder(_ context.Context, habitID uint64, _ time.Duration) error {
	if f.failFor[habitID] {
		return errors.New("broker unavailable")
	}
	f.scheduled = append(f.scheduled, habitID)
	return nil
}
