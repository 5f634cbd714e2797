package reminder

import (
	"context"
	"log"
	"time"
)

// DefaultFanOutOffset is how far in the future fan-out reminders are
// scheduled when no offset is configured.
const DefaultFanOutOffset = 30 * time.Minute

// DelayScheduler schedules a reminder for later delivery.
// *queue.Publisher satisfies it.
type DelayScheduler interface {
	ScheduleReminder(ctx context.Context, habitID uint64, delay time.Duration) error
}

// FanOut schedules one delayed reminder for every active habit. A single
// habit's scheduling failure is logged and counted but does not abort
// the rest of the batch.
type FanOut struct {
	Habits HabitStore
	Queue  DelayScheduler
	Offset time.Duration
}

// ScheduleAll enqueues a reminder per active habit at now+offset and
// returns how many were scheduled successfully.
func (f *FanOut) ScheduleAll(ctx context.Context) (int, error) {
	habits, err := f.Habits.ListActive(ctx)
	if err != nil {
		return 0, err
	}
	offset := f.Offset
	if offset <= 0 {
		offset = DefaultFanOutOffset
	}

	scheduled := 0
	for _, h := range habits {
		if err := f.Queue.ScheduleReminder(ctx, h.ID, offset); err != nil {
			log.Printf("fanout: schedule reminder for habit %d: %v", h.ID, err)
			continue
		}
		scheduled++
	}
	log.Printf("fanout: scheduled %d of %d reminders", scheduled, len(habits))
	return scheduled, nil
}
