// Package qmib is the client for the AspenTech system:inmation QMIB gateway.
// It translates the four logical EBR operations — equipment state fetch,
// batch publish, template fetch, and event acknowledge — into authenticated
// request/response exchanges with bounded exponential-backoff retry.
package qmib

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/elinasafina23/EBR/batch"
	"github.com/elinasafina23/EBR/config"
	"github.com/elinasafina23/EBR/errors"
	"github.com/elinasafina23/EBR/internal/httpclient"
	"github.com/elinasafina23/EBR/logger"
)

// Client executes typed operations against the QMIB REST endpoints.
//
// Transient transport failures (connection errors, timeouts, non-2xx
// responses) are retried with exponential backoff up to the attempt budget.
// Credential rejection will not self-resolve: a 401 is classified as
// errors.ErrUnauthorized and fails fast so operators can tell
// misconfiguration from outage.
type Client struct {
	baseURL     string
	username    string
	password    string
	httpClient  *httpclient.Client
	limiter     *rate.Limiter // nil = unthrottled
	maxAttempts int
	backoffBase time.Duration
	backoffMax  time.Duration
	logger      *zap.SugaredLogger
}

// NewClient creates a QMIB client from connection settings
func NewClient(cfg config.QMIBConfig, log *zap.SugaredLogger) *Client {
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	maxAttempts := cfg.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 3
	}
	timeout := cfg.Timeout()
	if timeout <= 0 {
		// An unset timeout must never mean an unbounded attempt
		timeout = 30 * time.Second
	}
	backoffBase := cfg.BackoffBase()
	if backoffBase <= 0 {
		backoffBase = time.Second
	}
	backoffMax := cfg.BackoffMax()
	if backoffMax <= 0 {
		backoffMax = 8 * time.Second
	}

	var limiter *rate.Limiter
	if cfg.RequestsPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Limit(float64(cfg.RequestsPerMinute)/60.0), 1)
	}

	return &Client{
		baseURL:  strings.TrimSuffix(cfg.BaseURL, "/"),
		username: cfg.Username,
		password: cfg.Password,
		httpClient: httpclient.New(timeout, httpclient.Options{
			InsecureSkipVerify: !cfg.VerifySSL,
		}),
		limiter:     limiter,
		maxAttempts: maxAttempts,
		backoffBase: backoffBase,
		backoffMax:  backoffMax,
		logger:      log,
	}
}

// Close releases the underlying transport. Safe to call once the client's
// unit of work is done; pairs with NewClient on all exit paths.
func (c *Client) Close() {
	c.httpClient.Close()
}

// FetchEquipmentState retrieves live state for a specific equipment item
func (c *Client) FetchEquipmentState(ctx context.Context, equipmentID string) (*batch.EquipmentState, error) {
	body, err := c.request(ctx, http.MethodGet, "/equipment/"+url.PathEscape(equipmentID), nil)
	if err != nil {
		return nil, err
	}

	raw, err := json.Marshal(body)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to re-encode equipment state for %s", equipmentID)
	}
	var state batch.EquipmentState
	if err := json.Unmarshal(raw, &state); err != nil {
		return nil, errors.Wrapf(err, "malformed equipment state payload for %s", equipmentID)
	}
	return &state, nil
}

// PublishBatchRecord sends a batch execution record to QMIB for archival
func (c *Client) PublishBatchRecord(ctx context.Context, payload map[string]any) (map[string]any, error) {
	return c.request(ctx, http.MethodPost, "/batches", payload)
}

// FetchBatchTemplate requests a batch template definition from QMIB
func (c *Client) FetchBatchTemplate(ctx context.Context, templateID string) (map[string]any, error) {
	return c.request(ctx, http.MethodGet, "/templates/"+url.PathEscape(templateID), nil)
}

// AcknowledgeEvent acknowledges an event or alarm in QMIB
func (c *Client) AcknowledgeEvent(ctx context.Context, eventID string, acknowledgement map[string]any) (map[string]any, error) {
	return c.request(ctx, http.MethodPost, "/events/"+url.PathEscape(eventID)+"/acknowledge", acknowledgement)
}

// request executes a REST call against QMIB with retry semantics.
//
// The bounded loop is the entire retry policy: classification happens on
// every attempt before deciding to continue. A nil error exits immediately;
// ErrUnauthorized is terminal; anything else is transport-class and retried
// until the budget runs out.
func (c *Client) request(ctx context.Context, method, endpoint string, payload map[string]any) (map[string]any, error) {
	var body map[string]any
	var err error

	for attempt := 0; attempt < c.maxAttempts; attempt++ {
		if attempt > 0 {
			delay := c.backoffDelay(attempt)
			c.logger.Debugw("Retrying QMIB request",
				"method", method,
				"endpoint", endpoint,
				logger.FieldAttempt, attempt+1,
				logger.FieldMaxAttempts, c.maxAttempts,
				"delay", delay)
			if err := sleepContext(ctx, delay); err != nil {
				return nil, err
			}
		}

		body, err = c.doRequest(ctx, method, endpoint, payload)
		if err == nil {
			if attempt > 0 {
				c.logger.Infow("QMIB request succeeded after retries",
					"method", method,
					"endpoint", endpoint,
					"attempts", attempt+1)
			}
			return body, nil
		}

		// Credential rejection is terminal regardless of remaining budget
		if errors.IsUnauthorized(err) {
			c.logger.Errorw("QMIB rejected credentials",
				"method", method,
				"endpoint", endpoint,
				logger.FieldError, err)
			return nil, err
		}

		if ctx.Err() != nil {
			return nil, errors.Wrapf(ctx.Err(), "QMIB %s %s cancelled", method, endpoint)
		}

		c.logger.Warnw("QMIB request failed",
			"method", method,
			"endpoint", endpoint,
			logger.FieldAttempt, attempt+1,
			logger.FieldMaxAttempts, c.maxAttempts,
			logger.FieldError, err)
	}

	// Exhausted budget: surface the last attempt's failure, marked so the
	// boundary can classify it without losing the original error
	return nil, errors.Mark(
		errors.Wrapf(err, "QMIB %s %s failed after %d attempts", method, endpoint, c.maxAttempts),
		errors.ErrServiceUnavailable)
}

// doRequest performs a single authenticated exchange and classifies the outcome
func (c *Client) doRequest(ctx context.Context, method, endpoint string, payload map[string]any) (map[string]any, error) {
	var reqBody io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, errors.Wrap(err, "failed to marshal request payload")
		}
		reqBody = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, reqBody)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.username, c.password)

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, errors.Wrap(err, "rate limit wait cancelled")
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to send %s %s", method, endpoint)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read response for %s %s", method, endpoint)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, errors.WithHint(
			errors.WrapUnauthorized(
				errors.Newf("QMIB returned status %d", resp.StatusCode),
				fmt.Sprintf("%s %s", method, endpoint)),
			"check the QMIB service account credentials")
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, errors.Newf("QMIB %s %s returned status %d: %s",
			method, endpoint, resp.StatusCode, truncate(string(respBody), 256))
	}

	if len(bytes.TrimSpace(respBody)) == 0 {
		return map[string]any{}, nil
	}

	var body map[string]any
	if err := json.Unmarshal(respBody, &body); err != nil {
		return nil, errors.Wrapf(err, "malformed JSON response for %s %s", method, endpoint)
	}
	return body, nil
}

// backoffDelay returns the wait before the given attempt (1-indexed retries):
// base, 2*base, 4*base, ... capped at backoffMax.
func (c *Client) backoffDelay(attempt int) time.Duration {
	delay := c.backoffBase
	for i := 1; i < attempt; i++ {
		delay *= 2
		if delay >= c.backoffMax {
			return c.backoffMax
		}
	}
	if delay > c.backoffMax {
		return c.backoffMax
	}
	return delay
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return errors.Wrap(ctx.Err(), "retry wait cancelled")
	case <-timer.C:
		return nil
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
