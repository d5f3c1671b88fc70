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


package extract

import (
	"context"

	"github.com/poiesic/indexit/core"
)

// ImageExtractor handles raster image files (JPEG, PNG): the file itself
// becomes a single PageImage at page 0, image 0, with no text.
type ImageExtractor struct{}

// NewImageExtractor creates a raster-image extractor.
func NewImageExtractor() *ImageExtractor {
	return &ImageExtractor{}
}

// Extract wraps the raw bytes as the document's only image.
func (e *ImageExtractor) Extract(_ context.Context, content []byte) (*Result, error) {
	if len(content) == 0 {
		return nil, ErrEmptyDocument
	}
	return &Result{
		Images:    []core.PageImage{{PageNo: 0, ImageNo: 0, Payload: content}},
		PageCount: 1,
	}, nil
}
