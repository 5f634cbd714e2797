package reminder

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/gvriil/habit-tracker/internal/model"
)

func TestDispatchAllDue_SkipsUserWithoutDestination(t *testing.T) {
	// Five due habits for five users; user 3 has no linked chat.
	var habits []*model.Habit
	destinations := map[uint64]string{}
	for i := uint64(1); i <= 5; i++ {
		h := habitAt(i, "08:10:00")
		h.UserID = i
		habits = append(habits, h)
		if i != 3 {
			destinations[i] = fmt.Sprintf("chat-%d", i)
		}
	}

	transport := &fakeTransport{}
	sink := &fakeSink{}
	d := &Dispatcher{
		Habits:      newFakeHabits(habits...),
		Completions: &fakeCompletions{},
		Resolver:    &fakeResolver{destinations: destinations},
		Transport:   transport,
		Log:         sink,
	}

	rep, err := d.DispatchAllDue(context.Background(), at("08:00"), 30*time.Minute)
	assert.NoError(t, err)
	assert.Equal(t, 4, rep.Sent)
	assert.Equal(t, 1, rep.SkippedNoDestination)
	assert.Equal(t, 0, rep.Failed)
	assert.Len(t, transport.sent, 4)
	assert.Len(t, sink.rows, 4)
}

func TestDispatchAllDue_TransportFailureIsolated(t *testing.T) {
	h1 := habitAt(1, "08:05:00")
	h2 := habitAt(2, "08:10:00")
	h2.UserID = 2

	transport := &fakeTransport{failFor: map[string]bool{"chat-1": true}}
	sink := &fakeSink{}
	d := &Dispatcher{
		Habits:      newFakeHabits(h1, h2),
		Completions: &fakeCompletions{},
		Resolver:    &fakeResolver{destinations: map[uint64]string{1: "chat-1", 2: "chat-2"}},
		Transport:   transport,
		Log:         sink,
	}

	rep, err := d.DispatchAllDue(context.Background(), at("08:00"), 30*time.Minute)
	assert.NoError(t, err)
	assert.Equal(t, 1, rep.Sent)
	assert.Equal(t, 1, rep.Failed)

	// Both attempts are logged, with the failed one marked undelivered.
	assert.Len(t, sink.rows, 2)
	delivered := 0
	for _, row := range sink.rows {
		if row.IsDelivered {
			delivered++
		}
	}
	assert.Equal(t, 1, delivered)
}

func TestDispatch_HabitNotFound(t *testing.T) {
	d := &Dispatcher{
		Habits:      newFakeHabits(),
		Completions: &fakeCompletions{},
		Resolver:    &fakeResolver{},
		Transport:   &fakeTransport{},
	}
	assert.Equal(t, OutcomeSkippedNotFound, d.Dispatch(context.Background(), 404))
}

func TestDispatch_IncludesRelatedHabitAndCount(t *testing.T) {
	pleasant := &model.Habit{ID: 2, UserID: 1, Name: "Bubble bath", IsPleasant: true, IsActive: true, TimeToComplete: "21:00:00"}
	h := habitAt(1, "08:10:00")
	h.RelatedHabitID = idPtr(2)

	transport := &fakeTransport{}
	d := &Dispatcher{
		Habits:      newFakeHabits(h, pleasant),
		Completions: &fakeCompletions{counts: map[uint64]int{1: 7}},
		Resolver:    &fakeResolver{destinations: map[uint64]string{1: "chat-1"}},
		Transport:   transport,
	}

	assert.Equal(t, OutcomeSent, d.Dispatch(context.Background(), 1))
	if assert.Len(t, transport.sent, 1) {
		assert.Contains(t, transport.sent[0].text, "Bubble bath")
		assert.Contains(t, transport.sent[0].text, "7 times")
	}
}

func TestSendDigest(t *testing.T) {
	h1 := habitAt(1, "08:00:00")
	h2 := habitAt(2, "09:00:00")
	transport := &fakeTransport{}
	sink := &fakeSink{}
	d := &Dispatcher{
		Habits:      newFakeHabits(h1, h2),
		Completions: &fakeCompletions{distinct: 1},
		Resolver:    &fakeResolver{destinations: map[uint64]string{1: "chat-1"}},
		Transport:   transport,
		Log:         sink,
	}

	assert.Equal(t, OutcomeSent, d.SendDigest(context.Background(), 1, digestDay))
	if assert.Len(t, transport.sent, 1) {
		assert.Contains(t, transport.sent[0].text, "Total habits: 2")
		assert.Contains(t, transport.sent[0].text, "Completed: 1")
	}
	if assert.Len(t, sink.rows, 1) {
		assert.Nil(t, sink.rows[0].HabitID)
	}
}

func TestSendDigest_NoDestination(t *testing.T) {
	d := &Dispatcher{
		Habits:      newFakeHabits(),
		Completions: &fakeCompletions{},
		Resolver:    &fakeResolver{},
		Transport:   &fakeTransport{},
	}
	assert.Equal(t, OutcomeSkippedNoDestination, d.SendDigest(context.Background(), 9, digestDay))
}

// The morning digest covers yesterday, not the day it is sent: at 09:00
// the current day has barely started, so counting today's completions
// would report close to zero every time.
func TestSendDailyDigest_CoversPreviousDay(t *testing.T) {
	completions := &fakeCompletions{distinct: 1}
	transport := &fakeTransport{}
	d := &Dispatcher{
		Habits:      newFakeHabits(habitAt(1, "08:00:00")),
		Completions: completions,
		Resolver:    &fakeResolver{destinations: map[uint64]string{1: "chat-1"}},
		Transport:   transport,
	}

	now := time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)
	assert.Equal(t, OutcomeSent, d.SendDailyDigest(context.Background(), 1, now))

	// Counting window is yesterday's full calendar day.
	assert.Equal(t, time.Date(2025, 6, 9, 0, 0, 0, 0, time.UTC), completions.distinctFrom)
	assert.Equal(t, time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC), completions.distinctTo)
	// A completion from yesterday evening lies inside that window.
	yesterdayEvening := time.Date(2025, 6, 9, 20, 0, 0, 0, time.UTC)
	assert.True(t, !yesterdayEvening.Before(completions.distinctFrom) && yesterdayEvening.Before(completions.distinctTo))

	if assert.Len(t, transport.sent, 1) {
		assert.Contains(t, transport.sent[0].text, "09.06.2025")
		assert.Contains(t, transport.sent[0].text, "Completed: 1")
	}
}

func TestFanOut_FailureIsolated(t *testing.T) {
	h1 := habitAt(1, "08:00:00")
	h2 := habitAt(2, "09:00:00")
	h3 := habitAt(3, "10:00:00")
	q := &fakeQueue{failFor: map[uint64]bool{2: true}}

	f := &FanOut{Habits: newFakeHabits(h1, h2, h3), Queue: q}
	n, err := f.ScheduleAll(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.ElementsMatch(t, []uint64{1, 3}, q.scheduled)
}

func TestFanOut_SkipsInactive(t *testing.T) {
	h1 := habitAt(1, "08:00:00")
	h2 := habitAt(2, "09:00:00")
	h2.IsActive = false
	q := &fakeQueue{}

	f := &FanOut{Habits: newFakeHabits(h1, h2), Queue: q}
	n, err := f.ScheduleAll(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, []uint64{1}, q.scheduled)
}
