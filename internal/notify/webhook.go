package notify

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/spendlog/spendlog/internal/model"
)

// Webhook request headers.
const (
	HeaderSignature  = "X-Spendlog-Signature"
	HeaderTimestamp  = "X-Spendlog-Timestamp"
	HeaderDeliveryID = "X-Spendlog-Delivery-Id"
)

const (
	webhookClientTimeout = 10 * time.Second
	webhookDialTimeout   = 5 * time.Second
	webhookUserAgent     = "Spendlog-Webhook/1.0"

	// DefaultReplayWindow bounds how old a signed timestamp may be.
	DefaultReplayWindow = 5 * time.Minute

	// jitterFactor is the ± fraction applied to each retry delay.
	jitterFactor = 0.2
)

// Alerts are delivered inside the create request, so retries are short.
var webhookRetryDelays = []time.Duration{
	200 * time.Millisecond,
	1 * time.Second,
}

var (
	// ErrReplayWindowExceeded is returned when a signed timestamp is too old or too far ahead.
	ErrReplayWindowExceeded = errors.New("timestamp outside replay window")
	// ErrInvalidSignature is returned when signature verification fails.
	ErrInvalidSignature = errors.New("invalid signature")
)

// Sign returns the hex HMAC-SHA256 of "{timestamp}.{body}".
func Sign(secret string, timestamp int64, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(strconv.FormatInt(timestamp, 10)))
	mac.Write([]byte{'.'})
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature checks a received webhook. Receivers should call it with
// the raw request body and the two signature headers.
func VerifySignature(secret, signature string, timestamp int64, body []byte, now time.Time, window time.Duration) error {
	age := now.Unix() - timestamp
	if age < 0 {
		age = -age
	}
	if age > int64(window.Seconds()) {
		return ErrReplayWindowExceeded
	}
	if !hmac.Equal([]byte(Sign(secret, timestamp, body)), []byte(signature)) {
		return ErrInvalidSignature
	}
	return nil
}

// statusError is a non-2xx webhook response.
type statusError struct {
	code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("webhook responded with status %d", e.code)
}

// retryable reports whether another attempt may succeed.
// Client errors other than 408 and 429 are final.
func retryable(err error) bool {
	var se *statusError
	if !errors.As(err, &se) {
		return true
	}
	switch {
	case se.code == http.StatusRequestTimeout, se.code == http.StatusTooManyRequests:
		return true
	case se.code >= 400 && se.code < 500:
		return false
	default:
		return true
	}
}

// WebhookNotifier POSTs signed alert JSON to a fixed URL.
type WebhookNotifier struct {
	url    string
	secret string
	client *http.Client
	logger *slog.Logger
	now    func() time.Time
	sleep  func(ctx context.Context, d time.Duration) error
	delays []time.Duration
}

// NewWebhookNotifier creates a notifier for url signed with secret.
func NewWebhookNotifier(url, secret string, logger *slog.Logger) *WebhookNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &WebhookNotifier{
		url:    url,
		secret: secret,
		client: newWebhookClient(),
		logger: logger,
		now:    time.Now,
		sleep:  sleepContext,
		delays: webhookRetryDelays,
	}
}

// newWebhookClient returns a client with bounded timeouts that does not follow redirects.
func newWebhookClient() *http.Client {
	return &http.Client{
		Timeout: webhookClientTimeout,
		Transport: &http.Transport{
			DialContext: (&net.Dialer{
				Timeout:   webhookDialTimeout,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			TLSHandshakeTimeout:   webhookDialTimeout,
			ResponseHeaderTimeout: webhookClientTimeout,
			MaxIdleConnsPerHost:   2,
			IdleConnTimeout:       90 * time.Second,
		},
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

// Notify delivers the alert, retrying transient failures.
// Every attempt of one alert carries the same delivery ID.
func (n *WebhookNotifier) Notify(ctx context.Context, a *model.ExpenseAlert) error {
	body, err := json.Marshal(NewAlertMessage(a))
	if err != nil {
		return fmt.Errorf("encode alert: %w", err)
	}
	deliveryID := uuid.NewString()

	var lastErr error
	for attempt := 0; ; attempt++ {
		lastErr = n.deliver(ctx, deliveryID, body)
		if lastErr == nil {
			n.logger.DebugContext(ctx, "webhook delivered",
				slog.String("delivery_id", deliveryID),
				slog.String("expense_id", a.ExpenseID),
				slog.Int("attempts", attempt+1),
			)
			return nil
		}
		if !retryable(lastErr) || attempt >= len(n.delays) {
			break
		}

		n.logger.WarnContext(ctx, "webhook delivery failed, retrying",
			slog.String("delivery_id", deliveryID),
			slog.Int("attempt", attempt+1),
			slog.String("error", lastErr.Error()),
		)
		if err := n.sleep(ctx, jitter(n.delays[attempt])); err != nil {
			return fmt.Errorf("deliver alert %s: %w", a.ExpenseID, err)
		}
	}
	return fmt.Errorf("deliver alert %s: %w", a.ExpenseID, lastErr)
}

func (n *WebhookNotifier) deliver(ctx context.Context, deliveryID string, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	ts := n.now().Unix()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", webhookUserAgent)
	req.Header.Set(HeaderSignature, Sign(n.secret, ts, body))
	req.Header.Set(HeaderTimestamp, strconv.FormatInt(ts, 10))
	req.Header.Set(HeaderDeliveryID, deliveryID)

	resp, err := n.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &statusError{code: resp.StatusCode}
	}
	return nil
}

// jitter applies ±20% to d.
func jitter(d time.Duration) time.Duration {
	spread := float64(d) * jitterFactor
	return time.Duration(float64(d) + (rand.Float64()*2-1)*spread)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
