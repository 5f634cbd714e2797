package main // Entry point package

import (
	"log" // Logging library

	"github.com/joho/godotenv"    // .env loader for local development
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/gvriil/habit-tracker/internal/bot"
	"github.com/gvriil/habit-tracker/internal/config"
	"github.com/gvriil/habit-tracker/internal/database"
	"github.com/gvriil/habit-tracker/internal/handler"
	"github.com/gvriil/habit-tracker/internal/repository"
	"github.com/gvriil/habit-tracker/internal/router"
	"github.com/gvriil/habit-tracker/internal/telegram"
)

func main() {
	// Load .env when present; real deployments set the environment directly.
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("server: open database: %v", err)
	}
	defer db.Close()

	// Redis backs the public-habits cache and rate limiter. A nil client
	// disables both rather than failing startup.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("server: redis unavailable, cache and rate limiting disabled")
	}

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	habits := repository.NewHabitRepo(db)
	completions := repository.NewCompletionRepo(db)
	profiles := repository.NewProfileRepo(db)
	dialogs := repository.NewDialogRepo(db)
	notifications := repository.NewNotificationRepo(db)

	machine := &bot.Machine{
		Users:       users,
		Profiles:    profiles,
		Dialogs:     dialogs,
		Habits:      habits,
		Completions: completions,
	}
	var tg *telegram.Client
	if cfg.TelegramBotToken != "" {
		tg = telegram.NewClient(cfg.TelegramBotToken)
	} else {
		log.Println("server: TELEGRAM_BOT_TOKEN not set, webhook replies disabled")
	}

	e := echo.New()
	router.RegisterRoutes(e)
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, users, tokens), cfg.JWTSecret)

	habitHandler := handler.NewHabitHandler(habits)
	router.RegisterHabits(e,
		habitHandler,
		handler.NewCompletionHandler(habits, completions),
		handler.NewDigestHandler(habits, completions),
		handler.NewProfileHandler(profiles, notifications),
		cfg.JWTSecret)
	router.RegisterPublic(e, habitHandler, rdb)
	router.RegisterWebhook(e, handler.NewWebhookHandler(machine, tg, cfg.TelegramWebhookSecret))

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
