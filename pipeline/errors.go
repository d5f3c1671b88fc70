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


package pipeline

import "errors"

var (
	// ErrTextIndexRequired is returned when a text index is not provided.
	ErrTextIndexRequired = errors.New("text index required")

	// ErrImageIndexRequired is returned when an image index is not provided.
	ErrImageIndexRequired = errors.New("image index required")

	// ErrSummaryIndexRequired is returned when a summary index is not provided.
	ErrSummaryIndexRequired = errors.New("summary index required")

	// ErrBlobStoreRequired is returned when a blob store is not provided.
	ErrBlobStoreRequired = errors.New("blob store required")

	// ErrEmbedderRequired is returned when an embedder is not provided.
	ErrEmbedderRequired = errors.New("embedder required")

	// ErrSummarizerRequired is returned when a summarizer is not provided.
	ErrSummarizerRequired = errors.New("summarizer required")

	// ErrDescriberRequired is returned when an image describer is not provided.
	ErrDescriberRequired = errors.New("image describer required")

	// ErrSplitterRequired is returned when a text splitter is not provided.
	ErrSplitterRequired = errors.New("text splitter required")

	// ErrScannerRequired is returned when PII scanning is requested but no
	// scanner is configured.
	ErrScannerRequired = errors.New("PII scanner required when scanning is requested")

	// ErrJobActive is returned when a bulk job is rejected because another
	// one is still running.
	ErrJobActive = errors.New("a bulk job is already active")
)
