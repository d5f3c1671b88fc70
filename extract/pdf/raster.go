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


package pdf

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
)

// Rasterizer renders a single PDF page to an image.
type Rasterizer interface {
	RenderPage(ctx context.Context, pdf []byte, pageNo int, scale float64) ([]byte, error)
}

// CommandRasterizer renders pages through an external renderer binary
// (pdftoppm by default). Each render runs in its own scratch directory
// which is removed afterwards.
type CommandRasterizer struct {
	binary string
}

// NewCommandRasterizer creates a rasterizer backed by the given binary. An
// empty binary selects "pdftoppm".
func NewCommandRasterizer(binary string) *CommandRasterizer {
	if binary == "" {
		binary = "pdftoppm"
	}
	return &CommandRasterizer{binary: binary}
}

func (r *CommandRasterizer) RenderPage(ctx context.Context, pdf []byte, pageNo int, scale float64) ([]byte, error) {
	dir, err := os.MkdirTemp("", "indexit-raster-*")
	if err != nil {
		return nil, fmt.Errorf("create scratch dir: %w", err)
	}
	defer os.RemoveAll(dir)

	in := filepath.Join(dir, "input.pdf")
	if err := os.WriteFile(in, pdf, 0o600); err != nil {
		return nil, fmt.Errorf("write scratch input: %w", err)
	}

	// Page numbers are zero-based internally, one-based for the renderer.
	page := strconv.Itoa(pageNo + 1)
	dpi := strconv.Itoa(int(72 * scale))
	out := filepath.Join(dir, "page")

	cmd := exec.CommandContext(ctx, r.binary,
		"-png", "-r", dpi, "-f", page, "-l", page, "-singlefile", in, out)
	if output, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("run %s: %w: %s", r.binary, err, output)
	}

	rendered, err := os.ReadFile(out + ".png")
	if err != nil {
		return nil, fmt.Errorf("read rendered page: %w", err)
	}
	return rendered, nil
}

// StubRasterizer returns a fixed payload for every page. Used in tests and
// when no renderer is available.
type StubRasterizer struct {
	Payload []byte
	Err     error
}

func (s *StubRasterizer) RenderPage(_ context.Context, _ []byte, _ int, _ float64) ([]byte, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	return s.Payload, nil
}
