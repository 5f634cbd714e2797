package main // Worker entry point: queue consumer plus the periodic schedulers

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"

	"github.com/gvriil/habit-tracker/internal/config"
	"github.com/gvriil/habit-tracker/internal/database"
	"github.com/gvriil/habit-tracker/internal/queue"
	"github.com/gvriil/habit-tracker/internal/reminder"
	"github.com/gvriil/habit-tracker/internal/repository"
	"github.com/gvriil/habit-tracker/internal/telegram"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	if cfg.TelegramBotToken == "" {
		log.Fatal("worker: TELEGRAM_BOT_TOKEN is required")
	}

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("worker: open database: %v", err)
	}
	defer db.Close()

	users := repository.NewUserRepo(db)
	habits := repository.NewHabitRepo(db)
	completions := repository.NewCompletionRepo(db)
	profiles := repository.NewProfileRepo(db)
	notifications := repository.NewNotificationRepo(db)

	dispatcher := &reminder.Dispatcher{
		Habits:      habits,
		Completions: completions,
		Resolver:    &telegram.Resolver{Profiles: profiles},
		Transport:   telegram.NewClient(cfg.TelegramBotToken),
		Log:         notifications,
	}

	// The consumer owns its own reconnect loop and only returns on a
	// fatal broker error.
	go func() {
		if err := queue.StartReminderConsumer(dispatcher); err != nil {
			log.Fatalf("worker: reminder consumer: %v", err)
		}
	}()

	fanOut := &reminder.FanOut{
		Habits: habits,
		Queue:  &queue.Publisher{URL: queue.BrokerURL()},
		Offset: cfg.FanOutOffset,
	}

	go runReminderTicks(dispatcher, cfg.ReminderTick, cfg.ReminderLookahead)
	runClock(dispatcher, users, fanOut, cfg.DigestHour)
}

// runReminderTicks scans for due habits on a fixed interval and sends
// their reminders immediately.
func runReminderTicks(d *reminder.Dispatcher, tick, lookahead time.Duration) {
	t := time.NewTicker(tick)
	defer t.Stop()
	for now := range t.C {
		ctx, cancel := context.WithTimeout(context.Background(), tick)
		report, err := d.DispatchAllDue(ctx, now, lookahead)
		cancel()
		if err != nil {
			log.Printf("worker: due-soon scan: %v", err)
			continue
		}
		log.Printf("worker: due-soon scan sent=%d skipped_no_destination=%d skipped_not_found=%d failed=%d",
			report.Sent, report.SkippedNoDestination, report.SkippedNotFound, report.Failed)
	}
}

// runClock fires the wall-clock jobs: the daily digest at digestHour:00
// and the weekly fan-out on Monday 00:00. It checks once per minute so a
// job fires exactly once in its minute.
func runClock(d *reminder.Dispatcher, users *repository.UserRepo, fanOut *reminder.FanOut, digestHour int) {
	t := time.NewTicker(time.Minute)
	defer t.Stop()
	for now := range t.C {
		if now.Hour() == digestHour && now.Minute() == 0 {
			sendDigests(d, users, now)
		}
		if now.Weekday() == time.Monday && now.Hour() == 0 && now.Minute() == 0 {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
			scheduled, err := fanOut.ScheduleAll(ctx)
			cancel()
			if err != nil {
				log.Printf("worker: weekly fan-out: %v", err)
			} else {
				log.Printf("worker: weekly fan-out scheduled %d reminders", scheduled)
			}
		}
	}
}

// sendDigests fans the daily digest out to every user with a linked
// Telegram chat. One user's failure never blocks the rest.
func sendDigests(d *reminder.Dispatcher, users *repository.UserRepo, now time.Time) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	ids, err := users.ListWithTelegramProfile(ctx)
	if err != nil {
		log.Printf("worker: list digest recipients: %v", err)
		return
	}
	sent := 0
	for _, id := range ids {
		if d.SendDailyDigest(ctx, id, now) == reminder.OutcomeSent {
			sent++
		}
	}
	log.Printf("worker: daily digest sent to %d/%d users", sent, len(ids))
}
