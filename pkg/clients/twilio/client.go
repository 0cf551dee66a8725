package twilio

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/tanush1852/stockwatch/internal/config"
)

const baseURL = "https://api.twilio.com/2010-04-01"

// Client exposes the Twilio messaging operations used by the application.
// Messages go out over the WhatsApp transport configured in From/To.
type Client interface {
	SendMessage(ctx context.Context, body string) error
}

// APIClient is a resty-backed implementation of Client.
type APIClient struct {
	httpClient *resty.Client
	accountSID string
	from       string
	to         string
}

// NewClient builds a Twilio API client using the provided configuration values.
func NewClient(cfg config.TwilioConfig) *APIClient {
	restyClient := resty.New()
	restyClient.
		SetBaseURL(baseURL).
		SetBasicAuth(cfg.AccountSID, cfg.AuthToken).
		SetTimeout(15 * time.Second)

	return &APIClient{
		httpClient: restyClient,
		accountSID: cfg.AccountSID,
		from:       cfg.From,
		to:         cfg.To,
	}
}

// apiError mirrors the Twilio REST error payload.
type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
}

// SendMessage sends a message body from the configured sender to the
// configured recipient.
func (c *APIClient) SendMessage(ctx context.Context, body string) error {
	apiErr := new(apiError)

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"From": c.from,
			"To":   c.to,
			"Body": body,
		}).
		SetError(apiErr).
		Post(fmt.Sprintf("/Accounts/%s/Messages.json", c.accountSID))
	if err != nil {
		return fmt.Errorf("send twilio message: %w", err)
	}

	if resp.StatusCode() >= http.StatusBadRequest {
		code := resp.StatusCode()
		if apiErr.Code != 0 {
			code = apiErr.Code
		}
		return fmt.Errorf("twilio api error: code=%d, message=%s", code, apiErr.Message)
	}

	return nil
}
