// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package notify delivers per-file processing status to a webhook.
// Delivery is best effort: failures are retried, logged and dropped, so a
// broken webhook never fails a processing job.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/poiesic/indexit/retry"
)

// Processing statuses reported to the webhook.
const (
	StatusInProgress = "in_progress"
	StatusReady      = "ready"
	StatusFailed     = "failed"
)

const (
	defaultMaxAttempts = 3
	defaultBaseDelay   = time.Second
)

// Notifier reports file processing status.
type Notifier interface {
	// Notify reports the status of one file on behalf of a recipient.
	// Best effort: implementations never return an error.
	Notify(ctx context.Context, recipient, fileName, status string)
}

// payload is the webhook wire format.
type payload struct {
	PreferredUsername string `json:"preferredUsername"`
	BlobName          string `json:"blobName"`
	Status            string `json:"status"`
	DepartmentID      int    `json:"departmentId"`
}

// WebhookNotifier PUTs status payloads to a fixed URL. An empty URL
// disables delivery.
type WebhookNotifier struct {
	url         string
	client      *http.Client
	maxAttempts int
	baseDelay   time.Duration
	logger      *slog.Logger
}

var _ Notifier = (*WebhookNotifier)(nil)

// Option configures a WebhookNotifier.
type Option func(*WebhookNotifier)

// WithHTTPClient sets the HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(n *WebhookNotifier) {
		n.client = client
	}
}

// WithRetry overrides the retry policy.
func WithRetry(maxAttempts int, baseDelay time.Duration) Option {
	return func(n *WebhookNotifier) {
		n.maxAttempts = maxAttempts
		n.baseDelay = baseDelay
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(n *WebhookNotifier) {
		n.logger = logger.With("component", "notifier")
	}
}

// NewWebhookNotifier creates a notifier for the given webhook URL.
func NewWebhookNotifier(url string, opts ...Option) *WebhookNotifier {
	n := &WebhookNotifier{
		url:         url,
		client:      http.DefaultClient,
		maxAttempts: defaultMaxAttempts,
		baseDelay:   defaultBaseDelay,
		logger:      slog.Default().With("component", "notifier"),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Notify delivers one status payload. Failures after all retries are
// logged and dropped.
func (n *WebhookNotifier) Notify(ctx context.Context, recipient, fileName, status string) {
	if n.url == "" {
		n.logger.Warn("webhook URL not configured, skipping notification", "file", fileName)
		return
	}

	body, err := json.Marshal(payload{
		PreferredUsername: recipient,
		BlobName:          fileName,
		Status:            status,
	})
	if err != nil {
		n.logger.Error("encoding notification", "file", fileName, "error", err)
		return
	}

	err = retry.WithBackoff(ctx, func() error {
		return n.send(ctx, body)
	}, n.maxAttempts, n.baseDelay)
	if err != nil {
		n.logger.Error("notification delivery failed",
			"file", fileName, "status", status, "error", err)
		return
	}

	n.logger.Debug("notification delivered", "file", fileName, "status", status)
}

func (n *WebhookNotifier) send(ctx context.Context, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, n.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}
