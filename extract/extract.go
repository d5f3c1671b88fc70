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


// Package extract turns raw document bytes into a uniform extraction
// result: page texts, page images, table texts and a page count.
//
// One Extractor exists per supported format; the Registry maps a detected
// file type to its extractor, so adding a format means adding one extractor
// plus one detection rule.
package extract

import (
	"context"

	"github.com/poiesic/indexit/core"
	"github.com/poiesic/indexit/detect"
)

// Result is the uniform output of every format extractor.
type Result struct {
	Texts     []core.PageText
	Images    []core.PageImage
	Tables    []core.TableText
	PageCount int
}

// Empty reports whether extraction yielded no content at all.
func (r *Result) Empty() bool {
	return len(r.Texts) == 0 && len(r.Images) == 0 && len(r.Tables) == 0
}

// Extractor extracts content from one document format.
// Implementations must be safe for concurrent use across distinct files.
type Extractor interface {
	// Extract parses content and returns the extraction result.
	// Failures that make the whole file unusable return an error.
	Extract(ctx context.Context, content []byte) (*Result, error)
}

// Registry maps detected file types to their extractors.
type Registry struct {
	extractors map[detect.FileType]Extractor
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{extractors: make(map[detect.FileType]Extractor)}
}

// Register binds an extractor to a file type, replacing any previous binding.
func (r *Registry) Register(t detect.FileType, e Extractor) {
	r.extractors[t] = e
}

// Lookup returns the extractor for a file type.
func (r *Registry) Lookup(t detect.FileType) (Extractor, bool) {
	e, ok := r.extractors[t]
	return e, ok
}
