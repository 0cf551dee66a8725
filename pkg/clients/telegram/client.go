package telegram

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/tanush1852/stockwatch/internal/config"
)

const baseURL = "https://api.telegram.org"

// Client exposes the Telegram Bot API operations used by the application.
type Client interface {
	SendMessage(ctx context.Context, text string) error
}

// APIClient is a resty-backed implementation of Client bound to one chat.
type APIClient struct {
	httpClient *resty.Client
	botToken   string
	chatID     string
}

// NewClient builds a Telegram Bot API client using the provided configuration values.
func NewClient(cfg config.TelegramConfig) *APIClient {
	restyClient := resty.New()
	restyClient.
		SetBaseURL(baseURL).
		SetHeader("Content-Type", "application/json").
		SetTimeout(15 * time.Second)

	return &APIClient{
		httpClient: restyClient,
		botToken:   cfg.BotToken,
		chatID:     cfg.ChatID,
	}
}

// apiError mirrors the Bot API error payload.
type apiError struct {
	OK          bool   `json:"ok"`
	ErrorCode   int    `json:"error_code"`
	Description string `json:"description"`
}

// Update is one entry of a getUpdates result.
type Update struct {
	UpdateID int64    `json:"update_id"`
	Message  *Message `json:"message"`
}

// Message is the inbound chat message carried by an Update.
type Message struct {
	Text string `json:"text"`
	Chat Chat   `json:"chat"`
}

// Chat identifies the conversation a message belongs to.
type Chat struct {
	ID int64 `json:"id"`
}

type updatesResponse struct {
	OK     bool     `json:"ok"`
	Result []Update `json:"result"`
}

// SendMessage posts a plain text message to the configured chat.
func (c *APIClient) SendMessage(ctx context.Context, text string) error {
	payload := map[string]any{
		"chat_id": c.chatID,
		"text":    text,
	}

	apiErr := new(apiError)

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(payload).
		SetError(apiErr).
		Post(fmt.Sprintf("/bot%s/sendMessage", c.botToken))
	if err != nil {
		return fmt.Errorf("send telegram message: %w", err)
	}

	if resp.StatusCode() >= http.StatusBadRequest {
		return fmt.Errorf("telegram api error: code=%d, description=%s", apiErr.ErrorCode, apiErr.Description)
	}

	return nil
}

// GetUpdates fetches chat updates with update_id greater than or equal to
// offset. Passing the last seen update_id plus one acknowledges everything
// before it.
func (c *APIClient) GetUpdates(ctx context.Context, offset int64) ([]Update, error) {
	result := new(updatesResponse)
	apiErr := new(apiError)

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetQueryParam("offset", fmt.Sprintf("%d", offset)).
		SetResult(result).
		SetError(apiErr).
		Get(fmt.Sprintf("/bot%s/getUpdates", c.botToken))
	if err != nil {
		return nil, fmt.Errorf("fetch telegram updates: %w", err)
	}

	if resp.StatusCode() >= http.StatusBadRequest {
		return nil, fmt.Errorf("telegram api error: code=%d, description=%s", apiErr.ErrorCode, apiErr.Description)
	}

	return result.Result, nil
}
