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

import (
	"context"
	"log/slog"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/indexit/ai"
	"github.com/poiesic/indexit/blob"
	"github.com/poiesic/indexit/detect"
	"github.com/poiesic/indexit/extract"
	"github.com/poiesic/indexit/extract/office"
	"github.com/poiesic/indexit/extract/pdf"
	"github.com/poiesic/indexit/index"
	"github.com/poiesic/indexit/notify"
	"github.com/poiesic/indexit/pii"
	"github.com/poiesic/indexit/splitter"
)

const (
	// DefaultDescribeConcurrency bounds simultaneously in-flight image
	// description calls.
	DefaultDescribeConcurrency = 20

	// DefaultStreamPageThreshold is the page count above which PDFs are
	// processed in batches instead of as a single extraction result.
	DefaultStreamPageThreshold = 100

	// DefaultStreamBatchSize is the number of pages per streamed batch.
	DefaultStreamBatchSize = 20

	// DefaultImageContainer receives extracted image payloads.
	DefaultImageContainer = "extracted-images"

	// minDescriptionLength drops image descriptions too short to be
	// retrievable.
	minDescriptionLength = 10
)

// Scanner is the sensitive-information gate the pipeline consults before
// index writes.
type Scanner interface {
	Scan(ctx context.Context, documents []pii.Document) ([]pii.Entity, error)
}

// Pipeline processes files into index documents and stored image payloads.
// Safe for concurrent Process calls on distinct files.
type Pipeline struct {
	textIndex    index.SearchIndex
	imageIndex   index.SearchIndex
	summaryIndex index.SearchIndex
	blobs        blob.Store
	embedder     ai.Embedder
	summarizer   ai.Summarizer
	describer    ai.ImageDescriber
	splitter     *splitter.Splitter
	scanner      Scanner
	notifier     notify.Notifier

	registry     *extract.Registry
	pdfExtractor *pdf.Extractor

	describePool    *ants.Pool
	gate            admissionGate
	imageContainer  string
	streamThreshold int
	streamBatchSize int
	logger          *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger.With("component", "pipeline")
		return nil
	}
}

// WithScanner sets the sensitive-information scanner. Required for
// Process calls with scanning enabled.
func WithScanner(scanner Scanner) Option {
	return func(p *Pipeline) error {
		p.scanner = scanner
		return nil
	}
}

// WithNotifier sets the status notifier used by ProcessContainer.
// Default is an unconfigured webhook notifier that only logs.
func WithNotifier(notifier notify.Notifier) Option {
	return func(p *Pipeline) error {
		p.notifier = notifier
		return nil
	}
}

// WithImageContainer sets the blob container for extracted image payloads.
func WithImageContainer(container string) Option {
	return func(p *Pipeline) error {
		p.imageContainer = container
		return nil
	}
}

// WithStreaming overrides the PDF streaming policy: documents above
// pageThreshold pages are processed in batches of batchSize pages.
func WithStreaming(pageThreshold, batchSize int) Option {
	return func(p *Pipeline) error {
		if pageThreshold > 0 {
			p.streamThreshold = pageThreshold
		}
		if batchSize > 0 {
			p.streamBatchSize = batchSize
		}
		return nil
	}
}

// WithDescribeConcurrency sets the maximum in-flight image description
// calls. Default is DefaultDescribeConcurrency.
func WithDescribeConcurrency(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}
		if p.describePool != nil {
			p.describePool.Release()
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		p.describePool = pool
		return nil
	}
}

// WithExtractor overrides the extractor for one file type.
func WithExtractor(t detect.FileType, e extract.Extractor) Option {
	return func(p *Pipeline) error {
		p.registry.Register(t, e)
		return nil
	}
}

// WithPDFExtractor replaces the PDF extractor, both for ordinary
// extraction and for batch streaming.
func WithPDFExtractor(e *pdf.Extractor) Option {
	return func(p *Pipeline) error {
		p.pdfExtractor = e
		p.registry.Register(detect.FileTypePDF, e)
		return nil
	}
}

// New creates a processing pipeline. The three indexes keep text, image
// and summary chunks apart; the blob store receives raw image payloads.
func New(
	textIndex, imageIndex, summaryIndex index.SearchIndex,
	blobs blob.Store,
	embedder ai.Embedder,
	summarizer ai.Summarizer,
	describer ai.ImageDescriber,
	textSplitter *splitter.Splitter,
	opts ...Option,
) (*Pipeline, error) {
	if textIndex == nil {
		return nil, ErrTextIndexRequired
	}
	if imageIndex == nil {
		return nil, ErrImageIndexRequired
	}
	if summaryIndex == nil {
		return nil, ErrSummaryIndexRequired
	}
	if blobs == nil {
		return nil, ErrBlobStoreRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	if summarizer == nil {
		return nil, ErrSummarizerRequired
	}
	if describer == nil {
		return nil, ErrDescriberRequired
	}
	if textSplitter == nil {
		return nil, ErrSplitterRequired
	}

	describePool, err := ants.NewPool(DefaultDescribeConcurrency)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		textIndex:       textIndex,
		imageIndex:      imageIndex,
		summaryIndex:    summaryIndex,
		blobs:           blobs,
		embedder:        embedder,
		summarizer:      summarizer,
		describer:       describer,
		splitter:        textSplitter,
		notifier:        notify.NewWebhookNotifier(""),
		describePool:    describePool,
		imageContainer:  DefaultImageContainer,
		streamThreshold: DefaultStreamPageThreshold,
		streamBatchSize: DefaultStreamBatchSize,
		logger:          slog.Default().With("component", "pipeline"),
	}
	p.registry, p.pdfExtractor = defaultRegistry()

	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}

	return p, nil
}

// defaultRegistry wires the stock extractors: external tools for PDF
// rasterization and legacy DOC conversion, UTF-8 text, pass-through images.
func defaultRegistry() (*extract.Registry, *pdf.Extractor) {
	registry := extract.NewRegistry()

	pdfExtractor := pdf.New(pdf.NewCommandRasterizer(""))
	registry.Register(detect.FileTypePDF, pdfExtractor)

	docx := office.NewDocxExtractor()
	registry.Register(detect.FileTypeDocx, docx)
	registry.Register(detect.FileTypeDoc, office.NewLegacyDocExtractor(office.NewCommandConverter("")))
	registry.Register(detect.FileTypeXlsx, office.NewXlsxExtractor())

	text := extract.NewTextExtractor(nil)
	registry.Register(detect.FileTypeTxt, text)
	registry.Register(detect.FileTypeCSV, text)

	image := extract.NewImageExtractor()
	registry.Register(detect.FileTypeJPG, image)
	registry.Register(detect.FileTypePNG, image)

	return registry, pdfExtractor
}

// Release frees the worker pool. The pipeline must not be used after
// calling Release.
func (p *Pipeline) Release() {
	if p.describePool != nil {
		p.describePool.Release()
	}
}
