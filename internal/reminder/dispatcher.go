package reminder

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/gvriil/habit-tracker/internal/model"
	"github.com/gvriil/habit-tracker/internal/repository"
)

// ErrNoDestination is returned by a DestinationResolver when the user
// has no linked notification channel. The dispatcher treats it as a
// skip, never as a batch failure.
var ErrNoDestination = errors.New("no notification destination")

// DestinationResolver looks up where a user's notifications should go.
// *telegram.Resolver satisfies it.
type DestinationResolver interface {
	Resolve(ctx context.Context, userID uint64) (string, error)
}

// Transport delivers a composed message to a destination.
// *telegram.Client satisfies it.
type Transport interface {
	Send(ctx context.Context, destination, text string) error
}

// NotificationSink records delivery attempts. *repository.NotificationRepo
// satisfies it.
type NotificationSink interface {
	Log(ctx context.Context, n *model.NotificationLog) error
}

// Outcome classifies the result of dispatching a single habit reminder.
type Outcome string

const (
	OutcomeSent                 Outcome = "SENT"
	OutcomeSkippedNoDestination Outcome = "SKIPPED_NO_DESTINATION"
	OutcomeSkippedNotFound      Outcome = "SKIPPED_NOT_FOUND"
	OutcomeFailed               Outcome = "FAILED"
)

// Report aggregates outcomes over one dispatch batch.
type Report struct {
	Sent                 int
	SkippedNoDestination int
	SkippedNotFound      int
	Failed               int
}

func (r *Report) add(o Outcome) {
	switch o {
	case OutcomeSent:
		r.Sent++
	case OutcomeSkippedNoDestination:
		r.SkippedNoDestination++
	case OutcomeSkippedNotFound:
		r.SkippedNotFound++
	case OutcomeFailed:
		r.Failed++
	}
}

// Dispatcher sends reminder and digest messages. Each habit is handled
// independently: an unresolvable destination or a transport failure for
// one habit never aborts the rest of the batch, and no retry happens at
// this layer; the invoking scheduler decides whether to redeliver.
type Dispatcher struct {
	Habits      HabitStore
	Completions CompletionStore
	Resolver    DestinationResolver
	Transport   Transport
	Log         NotificationSink
}

// Dispatch loads a habit by id and sends its reminder. A habit deleted
// after its reminder was queued resolves to OutcomeSkippedNotFound.
func (d *Dispatcher) Dispatch(ctx context.Context, habitID uint64) Outcome {
	h, err := d.Habits.GetByID(ctx, habitID)
	if err != nil {
		if errors.Is(err, repository.ErrHabitNotFound) {
			log.Printf("dispatcher: habit %d no longer exists, skipping", habitID)
			return OutcomeSkippedNotFound
		}
		log.Printf("dispatcher: load habit %d: %v", habitID, err)
		return OutcomeFailed
	}
	return d.dispatchHabit(ctx, h)
}

// DispatchAllDue selects due habits for the window and dispatches each
// one, returning per-outcome counts.
func (d *Dispatcher) DispatchAllDue(ctx context.Context, now time.Time, lookahead time.Duration) (Report, error) {
	sel := &Selector{Habits: d.Habits, Completions: d.Completions}
	due, err := sel.SelectDue(ctx, now, lookahead)
	if err != nil {
		return Report{}, err
	}

	var rep Report
	for _, h := range due {
		rep.add(d.dispatchHabit(ctx, h))
	}
	log.Printf("dispatcher: %d due habits: sent=%d no_destination=%d not_found=%d failed=%d",
		len(due), rep.Sent, rep.SkippedNoDestination, rep.SkippedNotFound, rep.Failed)
	return rep, nil
}

func (d *Dispatcher) dispatchHabit(ctx context.Context, h *model.Habit) Outcome {
	dest, err := d.Resolver.Resolve(ctx, h.UserID)
	if err != nil {
		if errors.Is(err, ErrNoDestination) {
			log.Printf("dispatcher: no destination for user %d (habit %d)", h.UserID, h.ID)
			return OutcomeSkippedNoDestination
		}
		log.Printf("dispatcher: resolve destination for user %d: %v", h.UserID, err)
		return OutcomeFailed
	}

	// Related habit and completion count enrich the message; on lookup
	// failure the reminder still goes out without them.
	var related *model.Habit
	if h.HasRelatedHabit() {
		if rel, err := d.Habits.GetByID(ctx, *h.RelatedHabitID); err == nil {
			related = rel
		}
	}
	completions := 0
	if n, err := d.Completions.CountByHabit(ctx, h.ID); err == nil {
		completions = n
	}

	text := FormatReminder(h, related, completions)
	sendErr := d.Transport.Send(ctx, dest, text)
	d.record(ctx, h.UserID, &h.ID, text, sendErr == nil)
	if sendErr != nil {
		log.Printf("dispatcher: send reminder for habit %d: %v", h.ID, sendErr)
		return OutcomeFailed
	}
	return OutcomeSent
}

// SendDailyDigest delivers the scheduled morning digest. The digest
// goes out at 09:00 and covers the previous calendar day, since the
// current day has barely started.
func (d *Dispatcher) SendDailyDigest(ctx context.Context, userID uint64, now time.Time) Outcome {
	return d.SendDigest(ctx, userID, now.AddDate(0, 0, -1))
}

// SendDigest composes and delivers the digest covering the given day to
// one user.
func (d *Dispatcher) SendDigest(ctx context.Context, userID uint64, day time.Time) Outcome {
	total, err := d.Habits.CountByOwner(ctx, userID)
	if err != nil {
		log.Printf("dispatcher: count habits for user %d: %v", userID, err)
		return OutcomeFailed
	}
	from := StartOfDay(day)
	completed, err := d.Completions.CountDistinctHabitsCompletedBetween(ctx, userID, from, from.Add(24*time.Hour))
	if err != nil {
		log.Printf("dispatcher: count completions for user %d: %v", userID, err)
		return OutcomeFailed
	}

	dest, err := d.Resolver.Resolve(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNoDestination) {
			return OutcomeSkippedNoDestination
		}
		log.Printf("dispatcher: resolve destination for user %d: %v", userID, err)
		return OutcomeFailed
	}

	dig := ComposeDigest(day, total, completed)
	sendErr := d.Transport.Send(ctx, dest, dig.Message)
	d.record(ctx, userID, nil, dig.Message, sendErr == nil)
	if sendErr != nil {
		log.Printf("dispatcher: send digest to user %d: %v", userID, sendErr)
		return OutcomeFailed
	}
	return OutcomeSent
}

// record appends to the notification log; logging failures are reported
// but never change the dispatch outcome.
func (d *Dispatcher) record(ctx context.Context, userID uint64, habitID *uint64, text string, delivered bool) {
	if d.Log == nil {
		return
	}
	err := d.Log.Log(ctx, &model.NotificationLog{
		UserID:      userID,
		HabitID:     habitID,
		Message:     text,
		IsDelivered: delivered,
	})
	if err != nil {
		log.Printf("dispatcher: write notification log: %v", err)
	}
}
