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


package office

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/poiesic/indexit/extract"
)

// Converter turns a legacy binary Word document into its modern ZIP-based
// equivalent.
type Converter interface {
	Convert(ctx context.Context, doc []byte) ([]byte, error)
}

// LegacyDocExtractor handles .doc files by converting them to .docx and
// delegating to the modern extractor.
type LegacyDocExtractor struct {
	converter Converter
	docx      *DocxExtractor
}

// NewLegacyDocExtractor creates an extractor for legacy binary documents.
func NewLegacyDocExtractor(converter Converter) *LegacyDocExtractor {
	return &LegacyDocExtractor{
		converter: converter,
		docx:      NewDocxExtractor(),
	}
}

func (e *LegacyDocExtractor) Extract(ctx context.Context, content []byte) (*extract.Result, error) {
	converted, err := e.converter.Convert(ctx, content)
	if err != nil {
		return nil, fmt.Errorf("convert legacy document: %w", err)
	}
	return e.docx.Extract(ctx, converted)
}

// CommandConverter shells out to an office suite binary (soffice by default)
// to convert documents. Each conversion runs in its own scratch directory
// which is removed afterwards.
type CommandConverter struct {
	binary string
}

// NewCommandConverter creates a converter backed by the given binary. An
// empty binary selects "soffice".
func NewCommandConverter(binary string) *CommandConverter {
	if binary == "" {
		binary = "soffice"
	}
	return &CommandConverter{binary: binary}
}

func (c *CommandConverter) Convert(ctx context.Context, doc []byte) ([]byte, error) {
	dir, err := os.MkdirTemp("", "indexit-doc-*")
	if err != nil {
		return nil, fmt.Errorf("create scratch dir: %w", err)
	}
	defer os.RemoveAll(dir)

	in := filepath.Join(dir, "input.doc")
	if err := os.WriteFile(in, doc, 0o600); err != nil {
		return nil, fmt.Errorf("write scratch input: %w", err)
	}

	cmd := exec.CommandContext(ctx, c.binary,
		"--headless", "--convert-to", "docx", "--outdir", dir, in)
	if output, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("run %s: %w: %s", c.binary, err, output)
	}

	out := filepath.Join(dir, "input.docx")
	converted, err := os.ReadFile(out)
	if err != nil {
		return nil, fmt.Errorf("read converted document: %w", err)
	}
	return converted, nil
}
