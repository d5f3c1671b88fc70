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


package ai

import "context"

// Embedder generates vector embeddings from text for semantic similarity search.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in a
	// batch. The returned slice contains embeddings in input order.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// Summarizer produces a retrieval-oriented summary of a document from its
// extracted texts and images.
// Implementations must be thread-safe for concurrent use.
type Summarizer interface {
	// Summarize generates a summary from sampled document content. images
	// carry raw encoded image bytes (JPEG or PNG).
	Summarize(ctx context.Context, texts []string, images [][]byte) (string, error)
}

// ImageDescriber classifies an image and transcribes or describes its
// content.
// Implementations must be thread-safe for concurrent use.
type ImageDescriber interface {
	// Describe classifies the image and produces its textual rendition.
	// summaryContext is the document summary, passed along to disambiguate
	// what the image belongs to; it may be empty.
	// Implementations return FallbackDescription rather than an error when
	// the upstream model fails, so one bad image never stalls a document.
	Describe(ctx context.Context, image []byte, summaryContext string) (ImageDescription, error)
}

// Provider aggregates the AI services for convenient initialization and
// lifecycle management.
type Provider interface {
	// Embedder returns the text embedding service.
	Embedder() Embedder

	// Summarizer returns the document summarization service.
	Summarizer() Summarizer

	// ImageDescriber returns the image description service.
	ImageDescriber() ImageDescriber

	// Close releases resources held by the provider and its services.
	Close() error
}
