package handler

import (
    "context"
    "errors"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/gvriil/habit-tracker/internal/repository"
)

// ProfileHandler exposes the user's Telegram link and notification history.
type ProfileHandler struct {
    Profiles      *repository.ProfileRepo
    Notifications *repository.NotificationRepo
}

func NewProfileHandler(p *repository.ProfileRepo, n *repository.NotificationRepo) *ProfileHandler {
    if p == nil || n == nil {
        panic("nil repository passed to NewProfileHandler")
    }
    return &ProfileHandler{Profiles: p, Notifications: n}
}

// LinkTelegram handles POST /v1/profile/telegram. Most users link through
// the bot's /start dialogue; this endpoint covers clients that already
// know their chat id.
func (h *ProfileHandler) LinkTelegram(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    var body struct {
        ChatID string `json:"chat_id"`
    }
    if err := c.Bind(&body); err != nil || body.ChatID == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "chat_id required"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    if err := h.Profiles.Link(ctx, userID, body.ChatID); err != nil {
        if errors.Is(err, repository.ErrConflict) {
            return c.JSON(http.StatusConflict, echo.Map{"error": "chat already linked to another account"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "link failed"})
    }
    return c.JSON(http.StatusCreated, echo.Map{"linked": true, "chat_id": body.ChatID})
}

// GetTelegram handles GET /v1/me/telegram and reports the link status.
func (h *ProfileHandler) GetTelegram(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    p, err := h.Profiles.GetByUser(ctx, userID)
    if err != nil {
        if errors.Is(err, repository.ErrProfileNotFound) {
            return c.JSON(http.StatusOK, echo.Map{"linked": false})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
    }
    return c.JSON(http.StatusOK, echo.Map{"linked": true, "chat_id": p.ChatID, "linked_at": p.CreatedAt})
}

// UnlinkTelegram handles DELETE /v1/me/telegram.
func (h *ProfileHandler) UnlinkTelegram(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    if err := h.Profiles.Unlink(ctx, userID); err != nil {
        if errors.Is(err, repository.ErrProfileNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "no telegram profile linked"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "unlink failed"})
    }
    return c.NoContent(http.StatusNoContent)
}

// ListNotifications handles GET /v1/me/notifications and returns the
// delivery log, newest first.
func (h *ProfileHandler) ListNotifications(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    page, size := pageParams(c)

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    items, err := h.Notifications.ListByUser(ctx, userID, page, size)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
    }
    return c.JSON(http.StatusOK, echo.Map{"items": items, "page": page, "page_size": size})
}
