package handler

import (
    "context"
    "errors"
    "fmt"
    "net/http"
    "strconv"
    "strings"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/gvriil/habit-tracker/internal/model"
    "github.com/gvriil/habit-tracker/internal/reminder"
    "github.com/gvriil/habit-tracker/internal/repository"
    "github.com/gvriil/habit-tracker/internal/validation"
)

// HabitHandler bundles the repositories habit endpoints need.
type HabitHandler struct {
    Habits *repository.HabitRepo
}

func NewHabitHandler(h *repository.HabitRepo) *HabitHandler {
    if h == nil {
        panic("nil repository passed to NewHabitHandler")
    }
    return &HabitHandler{Habits: h}
}

// habitReq is the JSON body for create and update.
type habitReq struct {
    Name              string  `json:"name"`
    Description       *string `json:"description"`
    Place             *string `json:"place"`
    Action            *string `json:"action"`
    Periodicity       int     `json:"periodicity"`
    TimeToComplete    string  `json:"time_to_complete"`
    EstimatedDuration int     `json:"estimated_duration"`
    IsPleasant        bool    `json:"is_pleasant"`
    IsPublic          bool    `json:"is_public"`
    IsActive          *bool   `json:"is_active"`
    RelatedHabitID    *uint64 `json:"related_habit"`
    Reward            *string `json:"reward"`
}

// toModel normalizes the request into a Habit owned by userID. The clock is
// canonicalized to HH:MM:SS; a zero periodicity falls back to the daily
// default.
func (r habitReq) toModel(userID uint64) (model.Habit, error) {
    name := strings.TrimSpace(r.Name)
    if name == "" {
        return model.Habit{}, errors.New("name is required")
    }
    sec, err := reminder.ParseTimeOfDay(r.TimeToComplete)
    if err != nil {
        return model.Habit{}, fmt.Errorf("time_to_complete: %w", err)
    }
    periodicity := r.Periodicity
    if periodicity == 0 {
        periodicity = validation.DefaultPeriodicity
    }
    active := true
    if r.IsActive != nil {
        active = *r.IsActive
    }
    return model.Habit{
        UserID:            userID,
        Name:              name,
        Description:       r.Description,
        Place:             r.Place,
        Action:            r.Action,
        Periodicity:       periodicity,
        TimeToComplete:    fmt.Sprintf("%02d:%02d:%02d", sec/3600, sec/60%60, sec%60),
        EstimatedDuration: r.EstimatedDuration,
        IsPleasant:        r.IsPleasant,
        IsPublic:          r.IsPublic,
        IsActive:          active,
        RelatedHabitID:    r.RelatedHabitID,
        Reward:            r.Reward,
    }, nil
}

// validate runs the single validation gate over the habit. The related habit
// is loaded here so the gate can check that it is pleasant; it must belong to
// the same user.
func (h *HabitHandler) validate(ctx context.Context, habit model.Habit) ([]validation.Violation, error) {
    var related *model.Habit
    if habit.HasRelatedHabit() {
        var err error
        related, err = h.Habits.GetByIDAndOwner(ctx, *habit.RelatedHabitID, habit.UserID)
        if err != nil {
            if errors.Is(err, repository.ErrHabitNotFound) {
                return []validation.Violation{{
                    Rule:    validation.RuleRelatedIsPleasant,
                    Field:   "related_habit",
                    Message: "related habit not found",
                }}, nil
            }
            return nil, err
        }
    }
    return validation.ValidateHabit(habit, related), nil
}

// Create handles POST /v1/habits.
func (h *HabitHandler) Create(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    var req habitReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    habit, err := req.toModel(userID)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    violations, err := h.validate(ctx, habit)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
    }
    if len(violations) > 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "validation failed", "violations": violations})
    }

    if err := h.Habits.Create(ctx, &habit); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create habit"})
    }
    return c.JSON(http.StatusCreated, habit)
}

// Get handles GET /v1/habits/:id. Owners see their own habits; everyone else
// only sees public ones.
func (h *HabitHandler) Get(c echo.Context) error {
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

    habit, err := h.Habits.GetByID(ctx, id)
    if err != nil {
        if errors.Is(err, repository.ErrHabitNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "habit not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
    }
    if habit.UserID != userID && !habit.IsPublic {
        // A foreign private habit is indistinguishable from a missing one.
        return c.JSON(http.StatusNotFound, echo.Map{"error": "habit not found"})
    }
    return c.JSON(http.StatusOK, habit)
}

// List handles GET /v1/habits and returns the user's own habits together
// with other users' public ones. Pass ?mine=true to restrict the listing
// to habits the caller owns.
func (h *HabitHandler) List(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    f := habitFilter(c)

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    list := h.Habits.ListVisible
    if v := c.QueryParam("mine"); v == "true" || v == "1" {
        list = h.Habits.ListByOwner
    }
    items, total, err := list(ctx, userID, f)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
    }
    return c.JSON(http.StatusOK, echo.Map{
        "items": items, "total": total, "page": f.Page, "page_size": f.PageSize,
    })
}

// ListPublic handles GET /v1/public/habits. No authentication required; the
// route sits behind the response cache and rate limiter.
func (h *HabitHandler) ListPublic(c echo.Context) error {
    f := habitFilter(c)

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    items, total, err := h.Habits.ListPublic(ctx, f)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
    }
    return c.JSON(http.StatusOK, echo.Map{
        "items": items, "total": total, "page": f.Page, "page_size": f.PageSize,
    })
}

// Update handles PUT /v1/habits/:id. The full body is re-validated through
// the same gate used on create.
func (h *HabitHandler) Update(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    id, err := strconv.ParseUint(c.Param("id"), 10, 64)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
    }
    var req habitReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    habit, err := req.toModel(userID)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
    }
    habit.ID = id

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    if habit.HasRelatedHabit() && *habit.RelatedHabitID == id {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "a habit cannot be related to itself"})
    }
    violations, err := h.validate(ctx, habit)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
    }
    if len(violations) > 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "validation failed", "violations": violations})
    }

    if err := h.Habits.UpdateByIDAndOwner(ctx, &habit); err != nil {
        if errors.Is(err, repository.ErrHabitNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "habit not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
    }
    updated, err := h.Habits.GetByID(ctx, id)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
    }
    return c.JSON(http.StatusOK, updated)
}

// Delete handles DELETE /v1/habits/:id. Completions go with the habit and
// habits that referenced it as a reward lose the reference.
func (h *HabitHandler) Delete(c echo.Context) error {
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

    if err := h.Habits.DeleteByIDAndOwner(ctx, id, userID); err != nil {
        if errors.Is(err, repository.ErrHabitNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "habit not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
    }
    return c.NoContent(http.StatusNoContent)
}

// habitFilter builds a repository filter from query parameters.
func habitFilter(c echo.Context) repository.HabitFilter {
    page, size := pageParams(c)
    f := repository.HabitFilter{Page: page, PageSize: size, Query: strings.TrimSpace(c.QueryParam("q"))}
    if v := c.QueryParam("is_pleasant"); v != "" {
        b := v == "true" || v == "1"
        f.IsPleasant = &b
    }
    if v := c.QueryParam("periodicity"); v != "" {
        if n, err := strconv.Atoi(v); err == nil {
            f.Periodicity = &n
        }
    }
    return f
}
