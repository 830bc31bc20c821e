// Package telegram delivers lead notifications through the Telegram
// bot API.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/NexaProfitLabs/platform/internal/invest"
	"go.uber.org/zap"
)

const (
	// DefaultBaseURL is the production Telegram bot API endpoint.
	DefaultBaseURL = "https://api.telegram.org"

	// DefaultTimeout bounds a single notification attempt.
	DefaultTimeout = 10 * time.Second

	maximumErrorBodyBytes = 4 << 10
)

// ErrMissingLogger indicates the notifier was constructed without a logger.
var ErrMissingLogger = errors.New("telegram: logger is required")

// Notifier posts lead summaries to a Telegram chat using the bot
// credentials stored alongside the lead pipeline.
type Notifier struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
	logger     *zap.Logger
}

// Option adjusts notifier construction.
type Option func(notifier *Notifier)

// WithBaseURL overrides the API endpoint.
func WithBaseURL(baseURL string) Option {
	return func(notifier *Notifier) {
		notifier.baseURL = baseURL
	}
}

// WithHTTPClient overrides the HTTP client used for delivery.
func WithHTTPClient(client *http.Client) Option {
	return func(notifier *Notifier) {
		notifier.httpClient = client
	}
}

// WithTimeout overrides the per-attempt timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(notifier *Notifier) {
		notifier.timeout = timeout
	}
}

// NewNotifier builds a notifier with the given logger.
func NewNotifier(logger *zap.Logger, options ...Option) (*Notifier, error) {
	if logger == nil {
		return nil, ErrMissingLogger
	}
	notifier := &Notifier{
		baseURL:    DefaultBaseURL,
		httpClient: http.DefaultClient,
		timeout:    DefaultTimeout,
		logger:     logger,
	}
	for _, option := range options {
		option(notifier)
	}
	return notifier, nil
}

type sendMessageRequest struct {
	ChatID string `json:"chat_id"`
	Text   string `json:"text"`
}

// NotifyLead sends a formatted lead summary to the configured chat.
func (notifier *Notifier) NotifyLead(ctx context.Context, config invest.TelegramBotConfig, lead invest.Lead) error {
	if err := config.Validate(); err != nil {
		return err
	}
	if !config.Active {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, notifier.timeout)
	defer cancel()

	payload, err := json.Marshal(sendMessageRequest{
		ChatID: config.ChatID,
		Text:   formatLeadMessage(lead),
	})
	if err != nil {
		return fmt.Errorf("telegram: encode message: %w", err)
	}

	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", notifier.baseURL, config.BotToken)
	request, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("telegram: build request: %w", err)
	}
	request.Header.Set("Content-Type", "application/json")

	response, err := notifier.httpClient.Do(request)
	if err != nil {
		return fmt.Errorf("telegram: send message: %w", err)
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(response.Body, maximumErrorBodyBytes))
		notifier.logger.Warn("telegram send rejected",
			zap.Int("status", response.StatusCode),
			zap.ByteString("body", body))
		return fmt.Errorf("telegram: send message: unexpected status %d", response.StatusCode)
	}
	return nil
}

func formatLeadMessage(lead invest.Lead) string {
	return fmt.Sprintf("New lead received\nName: %s\nEmail: %s\nMessage: %s", lead.Name, lead.Email, lead.Message)
}
