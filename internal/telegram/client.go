// Package telegram wraps the Telegram Bot API surface this service
// needs: sending Markdown messages and resolving a user's chat
// destination from the durable profile store.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultAPIBase = "https://api.telegram.org"

// Client sends messages through the Bot API. The zero value is not
// usable; construct with NewClient.
type Client struct {
	token   string
	apiBase string
	http    *http.Client
}

// NewClient builds a Client for the given bot token.
func NewClient(token string) *Client {
	return &Client{
		token:   token,
		apiBase: defaultAPIBase,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

// sendMessageReq mirrors the Bot API sendMessage payload.
type sendMessageReq struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode"`
}

type apiResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

// Send delivers a Markdown message to a chat. A non-OK API response or
// transport error is returned to the caller; the dispatcher decides how
// to classify it.
func (c *Client) Send(ctx context.Context, destination, text string) error {
	body, err := json.Marshal(sendMessageReq{
		ChatID:    destination,
		Text:      text,
		ParseMode: "Markdown",
	})
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", c.apiBase, c.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	defer resp.Body.Close()

	var out apiResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<16)).Decode(&out); err != nil {
		return fmt.Errorf("telegram send: decode response: %w", err)
	}
	if !out.OK {
		return fmt.Errorf("telegram send: api error: %s", out.Description)
	}
	return nil
}
