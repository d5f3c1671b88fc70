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
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/poiesic/indexit/ai"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// ImageDescriber implements ai.ImageDescriber using OpenAI-compatible
// multimodal chat APIs.
type ImageDescriber struct {
	client llms.Model
	logger *slog.Logger
}

// description is an internal type used for JSON unmarshaling.
// It matches the structure expected from the LLM.
type description struct {
	ImageType        string `json:"image_type"`
	ImageDescription string `json:"image_description"`
}

// newImageDescriber is an internal constructor that returns the concrete
// type. Used by Provider to manage the instance.
func newImageDescriber(config *ai.Config) (*ImageDescriber, error) {
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

	return &ImageDescriber{
		client: client,
		logger: slog.Default().With("component", "openai-describer"),
	}, nil
}

// NewImageDescriber creates a new image describer using the provided
// configuration.
//
// Returns ai.ImageDescriber interface to enforce abstraction.
func NewImageDescriber(config *ai.Config) (ai.ImageDescriber, error) {
	return newImageDescriber(config)
}

// Describe classifies the image and transcribes or describes its content.
// Model failures return the fallback description rather than an error, so
// one unreadable image never fails a whole document.
func (d *ImageDescriber) Describe(ctx context.Context, image []byte, summaryContext string) (ai.ImageDescription, error) {
	parts := []llms.ContentPart{
		llms.TextPart(buildDescriptionPrompt()),
		llms.BinaryPart(imageMIMEType(image), image),
	}
	if summaryContext != "" {
		parts = append(parts, llms.TextPart(fmt.Sprintf(
			"For context, the image above is extracted from a document having description as follows: %s",
			summaryContext)))
	}

	content := []llms.MessageContent{
		{
			Role:  llms.ChatMessageTypeHuman,
			Parts: parts,
		},
	}

	// Try up to 3 times in case of malformed JSON
	var result description
	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		response, err := d.client.GenerateContent(ctx, content, llms.WithTemperature(0.0), llms.WithJSONMode())
		if err != nil {
			d.logger.Error("failed to generate description", "attempt", attempt+1, "err", err)
			return ai.FallbackDescription(), nil
		}

		if len(response.Choices) < 1 {
			d.logger.Debug("no choices returned from model")
			return ai.FallbackDescription(), nil
		}

		// Strip markdown code fences if present
		responseText := strings.TrimSpace(response.Choices[0].Content)
		responseText = strings.TrimPrefix(responseText, "```json")
		responseText = strings.TrimPrefix(responseText, "```")
		responseText = strings.TrimSuffix(responseText, "```")
		responseText = strings.TrimSpace(responseText)

		// Try to repair common JSON issues
		responseText = repairJSON(responseText)

		if err := json.Unmarshal([]byte(responseText), &result); err != nil {
			lastErr = err
			d.logger.Warn("error parsing describer response",
				"attempt", attempt+1,
				"response", responseText,
				"err", err)
			continue
		}

		lastErr = nil
		break
	}

	if lastErr != nil {
		d.logger.Error("failed to parse describer response after retries", "err", lastErr)
		return ai.FallbackDescription(), nil
	}

	return ai.ImageDescription{
		Class:       ai.ParseImageClass(result.ImageType),
		Description: strings.TrimSpace(result.ImageDescription),
	}, nil
}
