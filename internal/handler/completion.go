package handler

import (
    "context"
    "errors"
    "net/http"
    "strconv"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/gvriil/habit-tracker/internal/model"
    "github.com/gvriil/habit-tracker/internal/repository"
)

// CompletionHandler bundles the repositories completion endpoints need.
type CompletionHandler struct {
    Habits      *repository.HabitRepo
    Completions *repository.CompletionRepo
}

func NewCompletionHandler(h *repository.HabitRepo, c *repository.CompletionRepo) *CompletionHandler {
    if h == nil || c == nil {
        panic("nil repository passed to NewCompletionHandler")
    }
    return &CompletionHandler{Habits: h, Completions: c}
}

type completionReq struct {
    CompletedAt  *time.Time `json:"completed_at"`
    IsSuccessful *bool      `json:"is_successful"`
    Notes        *string    `json:"notes"`
}

// Create handles POST /v1/habits/:id/completions. The habit must belong to
// the authenticated user; a missing completed_at defaults to now.
func (h *CompletionHandler) Create(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    habitID, err := strconv.ParseUint(c.Param("id"), 10, 64)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
    }
    var req completionReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    if _, err := h.Habits.GetByIDAndOwner(ctx, habitID, userID); err != nil {
        if errors.Is(err, repository.ErrHabitNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "habit not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
    }

    completion := model.HabitCompletion{HabitID: habitID, UserID: userID, IsSuccessful: true, Notes: req.Notes}
    if req.CompletedAt != nil {
        completion.CompletedAt = *req.CompletedAt
    }
    if req.IsSuccessful != nil {
        completion.IsSuccessful = *req.IsSuccessful
    }
    if err := h.Completions.Create(ctx, &completion); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not record completion"})
    }
    return c.JSON(http.StatusCreated, completion)
}

// ListByHabit handles GET /v1/habits/:id/completions.
func (h *CompletionHandler) ListByHabit(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    habitID, err := strconv.ParseUint(c.Param("id"), 10, 64)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
    }
    page, size := pageParams(c)

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    if _, err := h.Habits.GetByIDAndOwner(ctx, habitID, userID); err != nil {
        if errors.Is(err, repository.ErrHabitNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "habit not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
    }
    items, total, err := h.Completions.ListByHabit(ctx, habitID, page, size)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
    }
    return c.JSON(http.StatusOK, echo.Map{"items": items, "total": total, "page": page, "page_size": size})
}

// ListMine handles GET /v1/completions and returns the user's completions
// across all habits.
func (h *CompletionHandler) ListMine(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    page, size := pageParams(c)

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    items, total, err := h.Completions.ListByUser(ctx, userID, page, size)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
    }
    return c.JSON(http.StatusOK, echo.Map{"items": items, "total": total, "page": page, "page_size": size})
}

// Delete handles DELETE /v1/completions/:id.
func (h *CompletionHandler) Delete(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    id, err := strconv.ParseUint(c.Param("id"), 10, 64)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    if err := h.Completions.DeleteByIDAndUser(ctx, id, userID); err != nil {
        if errors.Is(err, repository.ErrCompletionNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "completion not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
    }
    return c.NoContent(http.StatusNoContent)
}
