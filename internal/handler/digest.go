package handler

import (
    "context"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/gvriil/habit-tracker/internal/reminder"
    "github.com/gvriil/habit-tracker/internal/repository"
)

// DigestHandler composes on-demand daily digests over the same counters
// the worker's scheduled digest job uses.
type DigestHandler struct {
    Habits      *repository.HabitRepo
    Completions *repository.CompletionRepo
}

func NewDigestHandler(h *repository.HabitRepo, c *repository.CompletionRepo) *DigestHandler {
    if h == nil || c == nil {
        panic("nil repository passed to NewDigestHandler")
    }
    return &DigestHandler{Habits: h, Completions: c}
}

// Get handles GET /v1/digest?day=YYYY-MM-DD. A missing day defaults to
// today.
func (h *DigestHandler) Get(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }

    day := time.Now()
    if v := c.QueryParam("day"); v != "" {
        day, err = time.Parse("2006-01-02", v)
        if err != nil {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "day must be YYYY-MM-DD"})
        }
    }
    from := reminder.StartOfDay(day)
    to := from.Add(24 * time.Hour)

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    total, err := h.Habits.CountByOwner(ctx, userID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
    }
    completed, err := h.Completions.CountDistinctHabitsCompletedBetween(ctx, userID, from, to)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
    }
    return c.JSON(http.StatusOK, reminder.ComposeDigest(from, total, completed))
}
