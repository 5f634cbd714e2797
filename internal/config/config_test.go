package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("APP_ENV", "test")
	t.Setenv("APP_PORT", "8080")
	t.Setenv("DB_USER", "habit")
	t.Setenv("DB_HOST", "localhost")
	t.Setenv("DB_PORT", "3306")
	t.Setenv("DB_NAME", "habit_tracker")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("ACCESS_TOKEN_TTL_MIN", "15")
	t.Setenv("REFRESH_TOKEN_TTL_DAYS", "7")
	t.Setenv("BCRYPT_COST", "10")
}

func TestLoad_SchedulerDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg := Load()
	// Reminders scan 30 minutes ahead so a habit is announced up to half
	// an hour before its scheduled time.
	assert.Equal(t, 30*time.Minute, cfg.ReminderLookahead)
	assert.Equal(t, 10*time.Minute, cfg.ReminderTick)
	assert.Equal(t, 9, cfg.DigestHour)
	assert.Equal(t, 30*time.Minute, cfg.FanOutOffset)
}

func TestLoad_SchedulerOverrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("REMINDER_LOOKAHEAD", "5m")
	t.Setenv("DIGEST_HOUR", "7")

	cfg := Load()
	assert.Equal(t, 5*time.Minute, cfg.ReminderLookahead)
	assert.Equal(t, 7, cfg.DigestHour)
}
