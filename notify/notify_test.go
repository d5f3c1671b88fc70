package notify

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
)

func TestNotifyDeliversPayload(t *testing.T) {
	var got payload
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
	}))
	defer server.Close()

	n := NewWebhookNotifier(server.URL, WithRetry(1, time.Millisecond))
	n.Notify(context.Background(), "alice", "report.pdf", StatusReady)

	assert.Equal(t, "alice", got.PreferredUsername)
	assert.Equal(t, "report.pdf", got.BlobName)
	assert.Equal(t, StatusReady, got.Status)
	assert.Zero(t, got.DepartmentID)
}

func TestNotifyRetriesThenSucceeds(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 2 {
			w.WriteHeader(http.StatusBadGateway)
		}
	}))
	defer server.Close()

	n := NewWebhookNotifier(server.URL, WithRetry(3, time.Millisecond))
	n.Notify(context.Background(), "alice", "report.pdf", StatusInProgress)

	assert.Equal(t, int32(2), calls.Load())
}

func TestNotifyGivesUpSilently(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	n := NewWebhookNotifier(server.URL, WithRetry(2, time.Millisecond))

	// Must not panic or block; failures are logged and dropped.
	n.Notify(context.Background(), "alice", "report.pdf", StatusFailed)
	assert.Equal(t, int32(2), calls.Load())
}

func TestNotifySkipsWhenUnconfigured(t *testing.T) {
	n := NewWebhookNotifier("")
	n.Notify(context.Background(), "alice", "report.pdf", StatusReady)
}
