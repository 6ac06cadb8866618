// Package notify delivers review reminders.
package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/avast/retry-go"
	"github.com/go-resty/resty/v2"

	"github.com/Tlatoani315/estudiar-ipn/internal/config"
)

// Notifier sends a text message to the user.
type Notifier interface {
	Send(ctx context.Context, text string) error
}

type sendMessageRequest struct {
	ChatID string `json:"chat_id"`
	Text   string `json:"text"`
}

type sendMessageResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

// APIError is a non-2xx answer of the Bot API.
type APIError struct {
	StatusCode  int
	Description string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("telegram api: status code %d: %s", e.StatusCode, e.Description)
}

func (e *APIError) retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= http.StatusInternalServerError
}

// TelegramNotifier sends messages through the Telegram Bot API sendMessage method.
type TelegramNotifier struct {
	client           *resty.Client
	token            string
	chatID           string
	maxRetryAttempts uint
	retryDelay       time.Duration
}

// TelegramOption configures a TelegramNotifier.
type TelegramOption func(*TelegramNotifier)

func WithMaxRetryAttempts(n uint) TelegramOption {
	return func(notifier *TelegramNotifier) {
		notifier.maxRetryAttempts = n
	}
}

func WithRetryDelay(d time.Duration) TelegramOption {
	return func(notifier *TelegramNotifier) {
		notifier.retryDelay = d
	}
}

func NewTelegramNotifier(cfg config.TelegramConfig, opts ...TelegramOption) (*TelegramNotifier, error) {
	if !cfg.Enabled() {
		return nil, errors.New("telegram token and chat_id are required; set TELEGRAM_TOKEN and TELEGRAM_CHAT_ID")
	}
	notifier := &TelegramNotifier{
		client: resty.New().
			SetBaseURL(cfg.APIURL).
			SetTimeout(30 * time.Second),
		token:            cfg.Token,
		chatID:           cfg.ChatID,
		maxRetryAttempts: 2,
		retryDelay:       time.Second,
	}
	for _, opt := range opts {
		opt(notifier)
	}
	return notifier, nil
}

// Send posts text to the configured chat. Rate limits, server errors and transport
// errors are retried with back-off; other API errors fail immediately.
func (notifier *TelegramNotifier) Send(ctx context.Context, text string) error {
	return retry.Do(
		func() error {
			err := notifier.sendMessage(ctx, text)
			var apiErr *APIError
			if errors.As(err, &apiErr) && !apiErr.retryable() {
				return retry.Unrecoverable(err)
			}
			return err
		},
		retry.Context(ctx),
		retry.Attempts(notifier.maxRetryAttempts+1),
		retry.Delay(notifier.retryDelay),
		retry.DelayType(func(n uint, err error, config *retry.Config) time.Duration {
			return retry.BackOffDelay(n, err, config)
		}),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(attempt uint, err error) {
			slog.Default().Info("retrying telegram sendMessage",
				"attempt", attempt+1,
				"error", err,
			)
		}),
	)
}

func (notifier *TelegramNotifier) sendMessage(ctx context.Context, text string) error {
	var result sendMessageResponse
	res, err := notifier.client.R().
		SetContext(ctx).
		SetBody(sendMessageRequest{ChatID: notifier.chatID, Text: text}).
		SetResult(&result).
		SetError(&result).
		Post(fmt.Sprintf("/bot%s/sendMessage", notifier.token))
	if err != nil {
		return fmt.Errorf("client.R.Post > %w", err)
	}
	if res.IsError() || !result.OK {
		return &APIError{StatusCode: res.StatusCode(), Description: result.Description}
	}
	return nil
}
