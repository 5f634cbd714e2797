package handler

import (
    "context"
    "log"
    "net/http"
    "strconv"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/gvriil/habit-tracker/internal/bot"
    "github.com/gvriil/habit-tracker/internal/telegram"
)

// WebhookHandler receives Telegram updates and feeds them to the dialogue
// state machine. Replies go back out through the Bot API client rather
// than the webhook response, so a slow send never blocks Telegram's
// delivery loop retries.
type WebhookHandler struct {
    Machine *bot.Machine
    Client  *telegram.Client
    Secret  string // expected X-Telegram-Bot-Api-Secret-Token, empty disables the check
}

func NewWebhookHandler(m *bot.Machine, cl *telegram.Client, secret string) *WebhookHandler {
    if m == nil {
        panic("nil machine passed to NewWebhookHandler")
    }
    return &WebhookHandler{Machine: m, Client: cl, Secret: secret}
}

// update mirrors the subset of the Bot API Update object we consume.
type update struct {
    UpdateID int64 `json:"update_id"`
    Message  *struct {
        Text string `json:"text"`
        Chat struct {
            ID int64 `json:"id"`
        } `json:"chat"`
    } `json:"message"`
}

// Receive handles POST /v1/telegram/webhook. Telegram retries on any
// non-2xx status, so processing failures are logged and acknowledged
// rather than surfaced.
func (h *WebhookHandler) Receive(c echo.Context) error {
    if h.Secret != "" && c.Request().Header.Get("X-Telegram-Bot-Api-Secret-Token") != h.Secret {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    var u update
    if err := c.Bind(&u); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid update"})
    }
    if u.Message == nil || u.Message.Text == "" {
        // Edited messages, stickers and the like are acknowledged and ignored.
        return c.NoContent(http.StatusOK)
    }

    chatID := strconv.FormatInt(u.Message.Chat.ID, 10)

    ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
    defer cancel()

    reply, err := h.Machine.Handle(ctx, chatID, u.Message.Text)
    if err != nil {
        log.Printf("telegram-webhook: handle update %d: %v", u.UpdateID, err)
        return c.NoContent(http.StatusOK)
    }
    if reply != "" && h.Client != nil {
        if err := h.Client.Send(ctx, chatID, reply); err != nil {
            log.Printf("telegram-webhook: send reply to chat %s: %v", chatID, err)
        }
    }
    return c.NoContent(http.StatusOK)
}
