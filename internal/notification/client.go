package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	sourceName = "asset-management-api"
	userAgent  = "asset-management-api/1.0"

	maxMessageLength = 1000
	maxAssetIDs      = 500
	maxErrorBody     = 4096
)

// NotificationLevel is the severity the receiving service routes on.
type NotificationLevel string

const (
	LevelInfo     NotificationLevel = "info"
	LevelWarning  NotificationLevel = "warning"
	LevelError    NotificationLevel = "error"
	LevelCritical NotificationLevel = "critical"
)

// Notifier delivers notifications to the external notification service.
type Notifier interface {
	Send(ctx context.Context, notification Notification) error
	IsHealthy(ctx context.Context) bool
}

// NotificationConfig holds configuration for the notification client
type NotificationConfig struct {
	URL            string
	Timeout        time.Duration
	RetryAttempts  int
	RetryDelay     time.Duration
	MaxPayloadSize int64
}

// Notification is the JSON body posted to the notification service.
type Notification struct {
	Level      NotificationLevel `json:"level"`
	Event      string            `json:"event,omitempty"`
	EmployeeID string            `json:"employeeId,omitempty"`
	AssetIDs   []string          `json:"assetIds,omitempty"`
	Message    string            `json:"message"`
	Timestamp  time.Time         `json:"timestamp,omitempty"`
	Source     string            `json:"source,omitempty"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

// Validate rejects payloads the notification service would refuse.
func (n *Notification) Validate() error {
	switch {
	case n.Level == "":
		return errors.New("notification level is required")
	case n.Message == "":
		return errors.New("notification message is required")
	case len(n.Message) > maxMessageLength:
		return fmt.Errorf("notification message too long (max %d characters)", maxMessageLength)
	case len(n.AssetIDs) > maxAssetIDs:
		return fmt.Errorf("too many asset ids (max %d)", maxAssetIDs)
	}

	switch n.Level {
	case LevelInfo, LevelWarning, LevelError, LevelCritical:
		return nil
	default:
		return fmt.Errorf("invalid notification level: %s", n.Level)
	}
}

// permanentError marks a failure that retrying cannot fix.
type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

func permanent(err error) error {
	return &permanentError{err: err}
}

func isPermanent(err error) bool {
	var perm *permanentError
	return errors.As(err, &perm)
}

type client struct {
	config NotificationConfig
	http   *http.Client
	logger *logrus.Logger
}

// NewClient returns a Notifier posting to config.URL. An empty URL yields a
// notifier that drops everything and always reports healthy.
func NewClient(config NotificationConfig, logger *logrus.Logger) Notifier {
	if config.URL == "" {
		return disabled{}
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &client{
		config: config,
		http:   &http.Client{Timeout: config.Timeout},
		logger: logger,
	}
}

// Send posts the notification. Transport errors, 5xx and 429 are retried
// up to RetryAttempts times with a linearly growing delay; other 4xx and
// oversize payloads fail at once.
func (c *client) Send(ctx context.Context, notification Notification) error {
	if err := notification.Validate(); err != nil {
		return fmt.Errorf("invalid notification: %w", err)
	}
	if notification.Timestamp.IsZero() {
		notification.Timestamp = time.Now()
	}
	if notification.Source == "" {
		notification.Source = sourceName
	}

	payload, err := json.Marshal(notification)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}
	if int64(len(payload)) > c.config.MaxPayloadSize {
		return fmt.Errorf("notification payload too large: %d bytes (max %d)", len(payload), c.config.MaxPayloadSize)
	}

	log := c.logger.WithField("event", notification.Event)
	var lastErr error
	for attempt := 1; attempt <= c.config.RetryAttempts+1; attempt++ {
		if attempt > 1 {
			if err := c.wait(ctx, attempt-1); err != nil {
				return err
			}
		}

		lastErr = c.post(ctx, payload)
		if lastErr == nil {
			return nil
		}
		log.WithError(lastErr).WithField("attempt", attempt).Warn("notification send attempt failed")
		if isPermanent(lastErr) {
			return lastErr
		}
	}

	return fmt.Errorf("failed to send notification after %d attempts: %w", c.config.RetryAttempts+1, lastErr)
}

func (c *client) wait(ctx context.Context, retry int) error {
	timer := time.NewTimer(c.config.RetryDelay * time.Duration(retry))
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (c *client) post(ctx context.Context, payload []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.URL, bytes.NewReader(payload))
	if err != nil {
		return permanent(fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 400 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBody))
		return nil
	}

	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	err = fmt.Errorf("notification service returned error status %d: %s", resp.StatusCode, string(body))
	if resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
		return permanent(err)
	}
	return err
}

// IsHealthy probes URL/health; anything below 500 counts as up.
func (c *client) IsHealthy(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.URL+"/health", nil)
	if err != nil {
		return false
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode < 500
}

// disabled is used when no notification endpoint is configured.
type disabled struct{}

func (disabled) Send(context.Context, Notification) error { return nil }

func (disabled) IsHealthy(context.Context) bool { return true }
