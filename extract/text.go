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
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	textencoding "golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/poiesic/indexit/core"
)

// TextExtractor handles plain text and CSV files: the whole document
// becomes a single PageText at page 0.
type TextExtractor struct {
	encoding encoding.Encoding
}

// NewTextExtractor creates a plain-text extractor. When enc is nil the
// content is decoded as UTF-8, honoring a UTF-8/UTF-16 BOM when present.
func NewTextExtractor(enc encoding.Encoding) *TextExtractor {
	return &TextExtractor{encoding: enc}
}

// Extract decodes the content. A decode failure is fatal for the file.
func (e *TextExtractor) Extract(_ context.Context, content []byte) (*Result, error) {
	var decoder transform.Transformer
	if e.encoding != nil {
		decoder = e.encoding.NewDecoder()
	} else {
		decoder = textencoding.BOMOverride(textencoding.UTF8.NewDecoder())
	}

	decoded, _, err := transform.Bytes(decoder, content)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecodeFailed, err)
	}
	if !utf8.Valid(decoded) {
		return nil, ErrDecodeFailed
	}

	return &Result{
		Texts:     []core.PageText{{PageNo: 0, Text: string(decoded)}},
		PageCount: 1,
	}, nil
}
