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


// Package pdf extracts content from PDF documents.
//
// Each page is classified before extraction: pages that are effectively
// pictures (slide exports, infographics, landscape layouts, image-only
// pages) are rendered to a raster image for downstream description, while
// ordinary pages yield text, ruled tables and embedded images parsed from
// the content stream. Large documents can be consumed in page batches to
// bound memory.
package pdf

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"github.com/poiesic/indexit/core"
	"github.com/poiesic/indexit/extract"
)

const (
	// defaultInfographicThreshold is the combined count of curve operators,
	// vertical ruling lines and raster XObjects above which a page is
	// treated as an infographic.
	defaultInfographicThreshold = 9

	// defaultLandscapeRatio flags pages wider than height times this ratio.
	defaultLandscapeRatio = 1.2

	// defaultMinImageDim filters out degenerate embedded images; both
	// decoded dimensions must exceed it.
	defaultMinImageDim = 1

	// renderScale is the rasterization scale for infographic, landscape and
	// image-only pages.
	renderScale = 2.0

	// slideScale is the lower rasterization scale for slide-deck exports,
	// where every page is rendered.
	slideScale = 1.5
)

// Extractor extracts classified content from PDF documents.
type Extractor struct {
	raster               Rasterizer
	logger               *slog.Logger
	infographicThreshold int
	landscapeRatio       float64
	minImageDim          int
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithLogger sets the logger used for page classification diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Extractor) { e.logger = logger }
}

// WithInfographicThreshold overrides the infographic element threshold.
func WithInfographicThreshold(n int) Option {
	return func(e *Extractor) { e.infographicThreshold = n }
}

// WithLandscapeRatio overrides the landscape width/height ratio.
func WithLandscapeRatio(r float64) Option {
	return func(e *Extractor) { e.landscapeRatio = r }
}

// WithMinImageDimension overrides the embedded image dimension filter.
func WithMinImageDimension(d int) Option {
	return func(e *Extractor) { e.minImageDim = d }
}

// New creates a PDF extractor. Pages selected for rasterization are
// rendered through raster.
func New(raster Rasterizer, opts ...Option) *Extractor {
	e := &Extractor{
		raster:               raster,
		logger:               slog.Default(),
		infographicThreshold: defaultInfographicThreshold,
		landscapeRatio:       defaultLandscapeRatio,
		minImageDim:          defaultMinImageDim,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// document is a parsed PDF plus the per-document facts classification
// needs.
type document struct {
	ctx       *model.Context
	dims      []types.Dim
	raw       []byte
	slideDeck bool
}

func readDocument(content []byte) (*document, error) {
	pdfCtx, err := api.ReadValidateAndOptimize(bytes.NewReader(content), model.NewDefaultConfiguration())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	dims, err := pdfCtx.PageDims()
	if err != nil {
		return nil, fmt.Errorf("read page dimensions: %w", err)
	}
	return &document{
		ctx:       pdfCtx,
		dims:      dims,
		raw:       content,
		slideDeck: isSlideExport(pdfCtx),
	}, nil
}

// isSlideExport reports whether the document was exported from a
// presentation tool; such documents are rasterized page by page.
func isSlideExport(ctx *model.Context) bool {
	return strings.Contains(ctx.Creator, "PowerPoint") ||
		strings.Contains(ctx.Producer, "PowerPoint")
}

// PageCount parses just enough of the document to report its page count.
func PageCount(content []byte) (int, error) {
	pdfCtx, err := api.ReadValidateAndOptimize(bytes.NewReader(content), model.NewDefaultConfiguration())
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	return pdfCtx.PageCount, nil
}

// Extract classifies and extracts every page of the document.
func (e *Extractor) Extract(ctx context.Context, content []byte) (*extract.Result, error) {
	doc, err := readDocument(content)
	if err != nil {
		return nil, err
	}

	result := &extract.Result{PageCount: doc.ctx.PageCount}
	var stats core.PageStats
	for pageNo := 0; pageNo < doc.ctx.PageCount; pageNo++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		e.extractPage(ctx, doc, pageNo, result, &stats)
	}
	stats.LogSummary(e.logger)
	return result, nil
}

// extractPage classifies one page and appends its content to result.
func (e *Extractor) extractPage(ctx context.Context, doc *document, pageNo int, result *extract.Result, stats *core.PageStats) {
	if doc.slideDeck {
		e.renderPage(ctx, doc, pageNo, slideScale, result, stats)
		return
	}

	page := readPageContent(doc.ctx, pageNo+1)
	imgCount := imageObjectCount(doc.ctx, pageNo+1)
	elements := page.Curves + page.VerticalLineCount() + imgCount
	if elements >= e.infographicThreshold {
		e.logger.Debug("page classified as infographic", "page", pageNo, "elements", elements)
		e.renderPage(ctx, doc, pageNo, renderScale, result, stats)
		return
	}
	if pageNo < len(doc.dims) {
		dim := doc.dims[pageNo]
		if dim.Width > dim.Height*e.landscapeRatio {
			e.logger.Debug("page classified as landscape", "page", pageNo)
			e.renderPage(ctx, doc, pageNo, renderScale, result, stats)
			return
		}
	}

	text := assembleText(page.Runs)
	table := detectTable(page)
	images := pageImages(doc.ctx, pageNo+1, e.minImageDim)

	if text == "" && table == "" {
		if imgCount > 0 {
			e.renderPage(ctx, doc, pageNo, renderScale, result, stats)
		} else {
			stats.Update(false, false)
		}
		return
	}

	if text != "" {
		result.Texts = append(result.Texts, core.PageText{PageNo: pageNo, Text: text})
	}
	if table != "" {
		result.Tables = append(result.Tables, core.TableText{PageNo: pageNo, Text: table})
	}
	for i, img := range images {
		result.Images = append(result.Images, core.PageImage{
			PageNo:  pageNo,
			ImageNo: i,
			Payload: img.Payload,
		})
	}
	stats.Update(text != "" || table != "", len(images) > 0)
}

// renderPage rasterizes the page and records it as a single page image.
// Render failures degrade to whatever text the content stream yields.
func (e *Extractor) renderPage(ctx context.Context, doc *document, pageNo int, scale float64, result *extract.Result, stats *core.PageStats) {
	rendered, err := e.raster.RenderPage(ctx, doc.raw, pageNo, scale)
	if err != nil {
		e.logger.Warn("page rasterization failed", "page", pageNo, "error", err)
		page := readPageContent(doc.ctx, pageNo+1)
		text := assembleText(page.Runs)
		if text != "" {
			result.Texts = append(result.Texts, core.PageText{PageNo: pageNo, Text: text})
		}
		stats.Update(text != "", false)
		return
	}
	result.Images = append(result.Images, core.PageImage{
		PageNo:  pageNo,
		ImageNo: 0,
		Payload: rendered,
	})
	stats.Update(false, true)
}

// readPageContent pulls and parses the page's content stream. Unreadable
// streams parse as empty pages.
func readPageContent(ctx *model.Context, pageNr int) *pageContent {
	r, err := pdfcpu.ExtractPageContent(ctx, pageNr)
	if err != nil {
		return &pageContent{}
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return &pageContent{}
	}
	return parseContent(data)
}
