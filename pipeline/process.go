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
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"sync"

	"github.com/poiesic/indexit/ai"
	"github.com/poiesic/indexit/blob"
	"github.com/poiesic/indexit/core"
	"github.com/poiesic/indexit/detect"
	"github.com/poiesic/indexit/extract"
	"github.com/poiesic/indexit/extract/pdf"
	"github.com/poiesic/indexit/index"
	"github.com/poiesic/indexit/pii"
	"github.com/poiesic/indexit/splitter"
)

// Process runs one file through the stage graph and returns the terminal
// result. With piiScanning enabled, every batch of extracted text must
// pass the scanner before anything from that batch reaches an index.
func (p *Pipeline) Process(ctx context.Context, file core.RawFile, piiScanning bool) core.ProcessingResult {
	logger := p.logger.With("file", file.Name)

	if err := core.ValidateRawFile(file); err != nil {
		logger.Error("rejecting invalid file", "error", err)
		return core.FatalResult(file.Name, &core.FatalError{Type: core.FatalUnclassified, Data: err.Error()})
	}
	if piiScanning && p.scanner == nil {
		logger.Error("PII scanning requested without a scanner")
		return core.FatalResult(file.Name, &core.FatalError{Type: core.FatalUnclassified, Data: ErrScannerRequired.Error()})
	}

	meta := core.NewFileMetadata(file)
	logger.Info("processing file", "hash", meta.ContentHash, "size", len(file.Content))

	fileType := detect.Detect(file.Content)
	extractor, ok := p.registry.Lookup(fileType)
	if !ok {
		logger.Error("unsupported file type", "type", fileType)
		return core.FatalResult(file.Name, &core.FatalError{
			Type: core.FatalUnclassified,
			Data: fmt.Sprintf("unsupported file type %q", fileType),
		})
	}

	r := &run{
		p:      p,
		file:   file,
		meta:   meta,
		scan:   piiScanning,
		logger: logger,
	}

	if fileType == detect.FileTypePDF {
		if pageCount, err := pdf.PageCount(file.Content); err == nil && pageCount > p.streamThreshold {
			return r.processStreamed(ctx, pageCount)
		}
	}

	result, err := extractor.Extract(ctx, file.Content)
	if err != nil {
		logger.Error("extraction failed", "error", err)
		return core.FatalResult(file.Name, &core.FatalError{Type: core.FatalUnclassified, Data: err.Error()})
	}

	r.pages = result.PageCount
	if fatal := r.processBatch(ctx, result); fatal != nil {
		return core.FatalResult(file.Name, fatal)
	}
	return r.result()
}

// run is the per-fileState confined to one Process call. Chunk ordinals
// persist across streamed batches so chunk IDs stay unique per file.
type run struct {
	p      *Pipeline
	file   core.RawFile
	meta   core.FileMetadata
	scan   bool
	logger *slog.Logger

	pages  int
	texts  int
	images int

	textOrdinal  int
	tableOrdinal int
	batchNo      int

	mu     sync.Mutex
	errors []string
}

func (r *run) addError(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	r.logger.Error(msg)
	r.mu.Lock()
	r.errors = append(r.errors, msg)
	r.mu.Unlock()
}

func (r *run) result() core.ProcessingResult {
	return core.ProcessingResult{
		FileName:   r.file.Name,
		PageCount:  r.pages,
		TextCount:  r.texts,
		ImageCount: r.images,
		Metadata:   r.meta,
		Errors:     r.errors,
	}
}

// processStreamed drives large PDFs through the stage graph one page
// batch at a time. Batches run strictly sequentially.
func (r *run) processStreamed(ctx context.Context, pageCount int) core.ProcessingResult {
	r.pages = pageCount
	r.logger.Info("streaming extraction", "pages", pageCount, "batchSize", r.p.streamBatchSize)

	for batch, err := range r.p.pdfExtractor.Stream(ctx, r.file.Content, r.p.streamBatchSize) {
		if err != nil {
			return core.FatalResult(r.file.Name, &core.FatalError{Type: core.FatalUnclassified, Data: err.Error()})
		}
		if fatal := r.processBatch(ctx, batch); fatal != nil {
			return core.FatalResult(r.file.Name, fatal)
		}
	}
	return r.result()
}

// processBatch runs one extraction result through the PII gate,
// summarization, text/table indexing, image description and uploads.
// A non-nil return aborts the whole file.
func (r *run) processBatch(ctx context.Context, batch *extract.Result) *core.FatalError {
	defer func() { r.batchNo++ }()

	if batch.Empty() {
		return nil
	}

	if r.scan {
		if fatal := r.gateBatch(ctx, batch); fatal != nil {
			return fatal
		}
	}

	// Summarization and text indexing have no ordering dependency and run
	// concurrently; image description waits for the summary it uses as
	// context.
	var (
		stageWG sync.WaitGroup
		summary string
	)
	if len(batch.Texts) > 0 || len(batch.Images) > 0 {
		stageWG.Add(1)
		go func() {
			defer stageWG.Done()
			s, err := r.p.summarizer.Summarize(ctx, pageTexts(batch.Texts), imagePayloads(batch.Images))
			if err != nil {
				r.addError("Summarization error: %v", err)
				return
			}
			summary = s
		}()
	}

	var indexWG sync.WaitGroup
	indexWG.Add(1)
	go func() {
		defer indexWG.Done()
		r.indexTexts(ctx, batch)
	}()

	stageWG.Wait()

	if summary != "" {
		indexWG.Add(1)
		go func() {
			defer indexWG.Done()
			r.indexSummary(ctx, summary)
		}()
	}

	if len(batch.Images) > 0 {
		r.processImages(ctx, batch.Images, summary)
	}

	indexWG.Wait()

	r.texts += len(batch.Texts)
	r.images += len(batch.Images)
	return nil
}

// gateBatch submits the batch's page texts to the scanner. Any reported
// entity aborts the file before a single index write.
func (r *run) gateBatch(ctx context.Context, batch *extract.Result) *core.FatalError {
	docs := make([]pii.Document, 0, len(batch.Texts)+len(batch.Tables))
	for i, text := range batch.Texts {
		docs = append(docs, pii.Document{
			ID:   fmt.Sprintf("%s_page_%d_%d", r.meta.ContentHash, text.PageNo, i),
			Text: text.Text,
		})
	}
	for i, table := range batch.Tables {
		docs = append(docs, pii.Document{
			ID:   fmt.Sprintf("%s_table_%d_%d", r.meta.ContentHash, table.PageNo, i),
			Text: table.Text,
		})
	}

	entities, err := r.p.scanner.Scan(ctx, docs)
	if err != nil {
		// Unscanned content must not be indexed when scanning was requested.
		return &core.FatalError{Type: core.FatalUnclassified, Data: fmt.Sprintf("PII scan error: %v", err)}
	}
	if len(entities) > 0 {
		r.logger.Warn("sensitive information detected", "entities", len(entities))
		return &core.FatalError{Type: core.FatalSensitiveInformation, Data: entities}
	}
	return nil
}

// indexTexts chunks page texts, wraps tables as single chunks and writes
// both to the text index.
func (r *run) indexTexts(ctx context.Context, batch *extract.Result) {
	chunks := r.p.splitter.Split(batch.Texts)
	for i := range chunks {
		chunks[i].ChunkNo = strconv.Itoa(r.textOrdinal)
		r.textOrdinal++
	}

	tableChunks := splitter.TableChunks(batch.Tables)
	for i := range tableChunks {
		tableChunks[i].ChunkNo = "whole" + strconv.Itoa(r.tableOrdinal)
		r.tableOrdinal++
	}
	chunks = append(chunks, tableChunks...)

	if len(chunks) == 0 {
		return
	}
	if err := r.indexChunks(ctx, r.p.textIndex, core.PrefixText, chunks); err != nil {
		r.addError("Text indexing error: %v", err)
	}
}

// indexSummary writes the batch summary as a single chunk. The chunk
// ordinal is the batch number so streamed batches do not collide.
func (r *run) indexSummary(ctx context.Context, summary string) {
	chunk := core.Chunk{
		ChunkNo: strconv.Itoa(r.batchNo),
		Text:    summary,
		Pages:   core.PageRange{StartPage: 0, EndPage: 0},
	}
	if err := r.indexChunks(ctx, r.p.summaryIndex, core.PrefixSummary, []core.Chunk{chunk}); err != nil {
		r.addError("Summary indexing error: %v", err)
	}
}

// processImages describes images concurrently, drops non-retrievable
// classes and short descriptions, indexes the rest and uploads their
// payloads keyed by chunk ID.
func (r *run) processImages(ctx context.Context, images []core.PageImage, summary string) {
	descriptions := r.describeAll(ctx, images, summary)

	var (
		chunks   []core.Chunk
		payloads []core.PageImage
	)
	for i, img := range images {
		desc := descriptions[i]
		if !desc.Class.Retrievable() {
			continue
		}
		if len(desc.Description) < minDescriptionLength {
			continue
		}
		chunks = append(chunks, core.Chunk{
			ChunkNo: fmt.Sprintf("%d_%d", img.PageNo, img.ImageNo),
			Text:    desc.Description,
			Pages:   core.PageRange{StartPage: img.PageNo, EndPage: img.PageNo},
		})
		payloads = append(payloads, img)
	}
	if len(chunks) == 0 {
		return
	}

	if err := r.indexChunks(ctx, r.p.imageIndex, core.PrefixImage, chunks); err != nil {
		r.addError("Image indexing error: %v", err)
		return
	}
	r.uploadImages(ctx, chunks, payloads)
}

// describeAll fans description calls out on the bounded pool. Results are
// paired with their image by position; a failed call degrades to the safe
// fallback description.
func (r *run) describeAll(ctx context.Context, images []core.PageImage, summary string) []ai.ImageDescription {
	descriptions := make([]ai.ImageDescription, len(images))

	var wg sync.WaitGroup
	for i := range images {
		wg.Add(1)
		img := images[i].Payload
		slot := i
		err := r.p.describePool.Submit(func() {
			defer wg.Done()
			desc, err := r.p.describer.Describe(ctx, img, summary)
			if err != nil {
				r.addError("Image description error: %v", err)
				desc = ai.FallbackDescription()
			}
			descriptions[slot] = desc
		})
		if err != nil {
			wg.Done()
			r.addError("Image description error: %v", err)
			descriptions[slot] = ai.FallbackDescription()
		}
	}
	wg.Wait()
	return descriptions
}

// uploadImages stores raw payloads keyed by the chunk ID of their indexed
// description, tagged with the file metadata. chunks and payloads are
// parallel slices.
func (r *run) uploadImages(ctx context.Context, chunks []core.Chunk, payloads []core.PageImage) {
	if err := r.p.blobs.Create(ctx, r.p.imageContainer); err != nil && !errors.Is(err, blob.ErrContainerExists) {
		r.addError("Image upload error: %v", err)
		return
	}

	for i, chunk := range chunks {
		payload := payloads[i].Payload
		object := &core.BlobObject{
			Name:        core.ChunkID(core.PrefixImage, r.meta.ContentHash, chunk.ChunkNo),
			ContentType: http.DetectContentType(payload),
			Tags:        r.meta.Tags(),
			Payload:     payload,
		}
		if err := r.p.blobs.Upload(ctx, r.p.imageContainer, object); err != nil {
			r.addError("Image upload error: %v", err)
		}
	}
}

// indexChunks embeds chunk texts in one batch and upserts the documents.
func (r *run) indexChunks(ctx context.Context, idx index.SearchIndex, prefix string, chunks []core.Chunk) error {
	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Text
	}

	vectors, err := r.p.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		return fmt.Errorf("embedding %d chunks: %w", len(chunks), err)
	}
	if len(vectors) != len(chunks) {
		return fmt.Errorf("embedder returned %d vectors for %d chunks", len(vectors), len(chunks))
	}

	docs := make([]index.Document, len(chunks))
	for i, chunk := range chunks {
		docs[i] = index.Document{
			ChunkID:    core.ChunkID(prefix, r.meta.ContentHash, chunk.ChunkNo),
			Text:       chunk.Text,
			Vector:     vectors[i],
			Title:      r.meta.Title,
			Uploader:   r.meta.Uploader,
			Department: r.meta.Department,
			ParentID:   r.meta.ContentHash,
			Metadata:   r.meta.Tags(),
		}
	}

	_, err = idx.Upsert(ctx, docs)
	return err
}

func pageTexts(texts []core.PageText) []string {
	out := make([]string, len(texts))
	for i, t := range texts {
		out[i] = t.Text
	}
	return out
}

func imagePayloads(images []core.PageImage) [][]byte {
	out := make([][]byte, len(images))
	for i, img := range images {
		out[i] = img.Payload
	}
	return out
}
