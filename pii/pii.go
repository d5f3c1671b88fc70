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

// Package pii provides a client for an external sensitive-information
// scanning service. The pipeline submits chunk texts before indexing and
// aborts the file when any entity is reported.
package pii

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/poiesic/indexit/retry"
)

const (
	defaultMaxAttempts = 3
	defaultBaseDelay   = 500 * time.Millisecond
)

// ErrEndpointRequired indicates a scanner constructed without an endpoint.
var ErrEndpointRequired = errors.New("scan endpoint is required")

// Document is one text submitted for scanning.
type Document struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// Entity is one piece of sensitive information found by the service.
type Entity struct {
	Text     string `json:"text"`
	Category string `json:"category"`
}

// scanResponse mirrors the service's reply: one entry per submitted
// document, each carrying the entities found in it.
type scanResponse struct {
	Data []struct {
		PIIResult struct {
			Entities []Entity `json:"entities"`
		} `json:"pii_result"`
	} `json:"data"`
}

// Scanner submits documents to the scanning service over HTTP.
type Scanner struct {
	endpoint    string
	client      *http.Client
	maxAttempts int
	baseDelay   time.Duration
	logger      *slog.Logger
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithHTTPClient sets the HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(s *Scanner) {
		s.client = client
	}
}

// WithRetry overrides the retry policy.
func WithRetry(maxAttempts int, baseDelay time.Duration) Option {
	return func(s *Scanner) {
		s.maxAttempts = maxAttempts
		s.baseDelay = baseDelay
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scanner) {
		s.logger = logger.With("component", "pii-scanner")
	}
}

// NewScanner creates a scanner for the given service endpoint.
func NewScanner(endpoint string, opts ...Option) (*Scanner, error) {
	if endpoint == "" {
		return nil, ErrEndpointRequired
	}

	s := &Scanner{
		endpoint:    endpoint,
		client:      http.DefaultClient,
		maxAttempts: defaultMaxAttempts,
		baseDelay:   defaultBaseDelay,
		logger:      slog.Default().With("component", "pii-scanner"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Scan submits documents and returns every entity found across them.
// An empty result means the documents are clean. Transport and server
// errors are retried with exponential backoff; the last error propagates
// once attempts are exhausted.
func (s *Scanner) Scan(ctx context.Context, documents []Document) ([]Entity, error) {
	if len(documents) == 0 {
		return nil, nil
	}

	body, err := json.Marshal(documents)
	if err != nil {
		return nil, fmt.Errorf("encoding scan request: %w", err)
	}

	var entities []Entity
	err = retry.WithBackoff(ctx, func() error {
		found, err := s.scanOnce(ctx, body)
		if err != nil {
			return err
		}
		entities = found
		return nil
	}, s.maxAttempts, s.baseDelay)
	if err != nil {
		return nil, fmt.Errorf("scanning %d documents: %w", len(documents), err)
	}

	s.logger.Debug("scan complete", "documents", len(documents), "entities", len(entities))
	return entities, nil
}

func (s *Scanner) scanOnce(ctx context.Context, body []byte) ([]Entity, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("scan service returned status %d", resp.StatusCode)
	}

	var result scanResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decoding scan response: %w", err)
	}

	var entities []Entity
	for _, entry := range result.Data {
		entities = append(entities, entry.PIIResult.Entities...)
	}
	return entities, nil
}
