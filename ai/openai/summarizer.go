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


package openai

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/poiesic/indexit/ai"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

const (
	// maxSummaryInputChars bounds the sampled text sent to the model.
	maxSummaryInputChars = 24000

	// maxSummaryImages bounds the images attached to the summary request.
	maxSummaryImages = 8
)

// Summarizer implements ai.Summarizer using OpenAI-compatible multimodal
// chat APIs.
type Summarizer struct {
	client llms.Model
	logger *slog.Logger
}

// newSummarizer is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newSummarizer(config *ai.Config) (*Summarizer, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	client, err := openai.New(
		openai.WithBaseURL(config.ChatHost),
		openai.WithToken(config.Token),
		openai.WithModel(config.ChatModel),
	)
	if err != nil {
		return nil, err
	}

	return &Summarizer{
		client: client,
		logger: slog.Default().With("component", "openai-summarizer"),
	}, nil
}

// NewSummarizer creates a new summarizer using the provided configuration.
//
// Returns ai.Summarizer interface to enforce abstraction.
func NewSummarizer(config *ai.Config) (ai.Summarizer, error) {
	return newSummarizer(config)
}

// Summarize generates a document summary from sampled texts and images.
func (s *Summarizer) Summarize(ctx context.Context, texts []string, images [][]byte) (string, error) {
	if len(texts) == 0 && len(images) == 0 {
		return "", errors.New("nothing to summarize")
	}

	parts := []llms.ContentPart{llms.TextPart(sampleTexts(texts))}
	for i, img := range images {
		if i >= maxSummaryImages {
			break
		}
		parts = append(parts, llms.BinaryPart(imageMIMEType(img), img))
	}

	content := []llms.MessageContent{
		{
			Role:  llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{llms.TextPart(summaryPrompt)},
		},
		{
			Role:  llms.ChatMessageTypeHuman,
			Parts: parts,
		},
	}

	response, err := s.client.GenerateContent(ctx, content, llms.WithTemperature(0.0))
	if err != nil {
		s.logger.Error("failed to generate summary", "err", err)
		return "", err
	}
	if len(response.Choices) < 1 {
		s.logger.Warn("no choices returned from model")
		return "", errors.New("empty summarization response")
	}

	summary := strings.TrimSpace(response.Choices[0].Content)
	s.logger.Debug("generated summary", "length", len(summary))
	return summary, nil
}

// sampleTexts joins page texts up to the input budget.
func sampleTexts(texts []string) string {
	var b strings.Builder
	for _, text := range texts {
		if b.Len() >= maxSummaryInputChars {
			break
		}
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString(truncateAtRune(text, maxSummaryInputChars-b.Len()))
	}
	return b.String()
}

// truncateAtRune cuts s to at most n bytes without splitting a UTF-8
// sequence.
func truncateAtRune(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

// imageMIMEType sniffs the payload's content type; extracted images are
// JPEG or PNG.
func imageMIMEType(payload []byte) string {
	t := http.DetectContentType(payload)
	if strings.HasPrefix(t, "image/") {
		return t
	}
	return "image/jpeg"
}
