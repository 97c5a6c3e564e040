package qmib

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elinasafina23/EBR/config"
	"github.com/elinasafina23/EBR/errors"
)

// testConfig returns client settings pointed at a test server, with
// near-zero backoff so retry tests run fast.
func testConfig(baseURL string) config.QMIBConfig {
	return config.QMIBConfig{
		BaseURL:            baseURL,
		Username:           "svc-ebr",
		Password:           "secret",
		VerifySSL:          true,
		TimeoutSeconds:     5,
		MaxAttempts:        3,
		BackoffBaseSeconds: 0.001,
		BackoffMaxSeconds:  0.008,
	}
}

func TestRetryThenSuccess(t *testing.T) {
	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) <= 2 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"id": "T1", "defaultData": map[string]any{}})
	}))
	defer srv.Close()

	client := NewClient(testConfig(srv.URL), nil)
	defer client.Close()

	template, err := client.FetchBatchTemplate(context.Background(), "T1")
	require.NoError(t, err)
	assert.Equal(t, int32(3), attempts.Load(), "2 failures + 1 success = exactly 3 attempts")
	assert.Equal(t, "T1", template["id"])
}

func TestRetryBudgetExhausted(t *testing.T) {
	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewClient(testConfig(srv.URL), nil)
	defer client.Close()

	_, err := client.FetchBatchTemplate(context.Background(), "T1")
	require.Error(t, err)
	assert.Equal(t, int32(3), attempts.Load(), "no 4th attempt after the budget is spent")
	assert.True(t, errors.IsServiceUnavailable(err))
	assert.False(t, errors.IsUnauthorized(err))
	assert.Contains(t, err.Error(), "after 3 attempts")
	assert.Contains(t, err.Error(), "502", "last attempt's failure must be surfaced")
}

func TestUnauthorizedIsTerminal(t *testing.T) {
	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	client := NewClient(testConfig(srv.URL), nil)
	defer client.Close()

	_, err := client.FetchBatchTemplate(context.Background(), "T1")
	require.Error(t, err)
	assert.True(t, errors.IsUnauthorized(err))
	assert.Equal(t, int32(1), attempts.Load(), "credential rejection must not be retried")
}

func TestConnectionErrorIsRetried(t *testing.T) {
	// Server closed before the call: every attempt fails at the dial
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	client := NewClient(testConfig(url), nil)
	defer client.Close()

	_, err := client.FetchBatchTemplate(context.Background(), "T1")
	require.Error(t, err)
	assert.True(t, errors.IsServiceUnavailable(err))
	assert.Contains(t, err.Error(), "after 3 attempts")
}

func TestPublishSendsAuthAndPayload(t *testing.T) {
	var gotAuth bool
	var gotPayload map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		gotAuth = ok && user == "svc-ebr" && pass == "secret"
		json.NewDecoder(r.Body).Decode(&gotPayload)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"result": "archived"})
	}))
	defer srv.Close()

	client := NewClient(testConfig(srv.URL), nil)
	defer client.Close()

	payload := map[string]any{
		"batch_id":  "B1",
		"equipment": []any{"E1", "E2"},
	}
	resp, err := client.PublishBatchRecord(context.Background(), payload)
	require.NoError(t, err)

	assert.True(t, gotAuth, "basic auth credentials must be sent")
	assert.Equal(t, "B1", gotPayload["batch_id"])
	assert.Equal(t, []any{"E1", "E2"}, gotPayload["equipment"])
	assert.Equal(t, "archived", resp["result"])
}

func TestEmptyResponseBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	client := NewClient(testConfig(srv.URL), nil)
	defer client.Close()

	resp, err := client.AcknowledgeEvent(context.Background(), "EV-1", map[string]any{"acknowledged_by": "op"})
	require.NoError(t, err)
	assert.Empty(t, resp)
	assert.NotNil(t, resp)
}

func TestFetchEquipmentState(t *testing.T) {
	measured := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/equipment/E1", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"equipment_id": "E1",
			"status":       "running",
			"measured_at":  measured.Format(time.RFC3339),
			"attributes":   map[string]any{"rpm": 1200.0},
		})
	}))
	defer srv.Close()

	client := NewClient(testConfig(srv.URL), nil)
	defer client.Close()

	state, err := client.FetchEquipmentState(context.Background(), "E1")
	require.NoError(t, err)
	assert.Equal(t, "E1", state.EquipmentID)
	assert.Equal(t, "running", state.Status)
	assert.True(t, state.MeasuredAt.Equal(measured))

	rpm, ok := state.Attributes["rpm"].NumberValue()
	require.True(t, ok)
	assert.Equal(t, 1200.0, rpm)
}

func TestBackoffDelaySequence(t *testing.T) {
	client := NewClient(config.QMIBConfig{
		BaseURL:            "http://qmib.test",
		Username:           "u",
		Password:           "p",
		MaxAttempts:        5,
		BackoffBaseSeconds: 1,
		BackoffMaxSeconds:  8,
	}, nil)
	defer client.Close()

	// 1, 2, 4 then capped at 8 for any further attempt
	assert.Equal(t, 1*time.Second, client.backoffDelay(1))
	assert.Equal(t, 2*time.Second, client.backoffDelay(2))
	assert.Equal(t, 4*time.Second, client.backoffDelay(3))
	assert.Equal(t, 8*time.Second, client.backoffDelay(4))
	assert.Equal(t, 8*time.Second, client.backoffDelay(5))
}

func TestContextCancellationStopsRetries(t *testing.T) {
	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.BackoffBaseSeconds = 10 // long enough that cancellation wins
	client := NewClient(cfg, nil)
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := client.FetchBatchTemplate(ctx, "T1")
	require.Error(t, err)
	assert.Equal(t, int32(1), attempts.Load())
}

func TestNewClientDefaultsUnsetTunables(t *testing.T) {
	client := NewClient(config.QMIBConfig{
		BaseURL:  "https://gateway/api/qmib",
		Username: "svc-ebr",
		Password: "secret",
	}, nil)
	defer client.Close()

	assert.Equal(t, 3, client.maxAttempts)
	assert.Equal(t, time.Second, client.backoffBase)
	assert.Equal(t, 8*time.Second, client.backoffMax)
	assert.Equal(t, 30*time.Second, client.httpClient.Timeout,
		"an unset timeout must not leave attempts unbounded")
}

func TestNewClientHonorsConfiguredTimeout(t *testing.T) {
	cfg := testConfig("https://gateway/api/qmib")
	client := NewClient(cfg, nil)
	defer client.Close()

	assert.Equal(t, 5*time.Second, client.httpClient.Timeout)
}
