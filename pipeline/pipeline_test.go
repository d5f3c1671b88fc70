package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/indexit/ai"
	"github.com/poiesic/indexit/ai/mock"
	"github.com/poiesic/indexit/blob"
	"github.com/poiesic/indexit/blob/badgerblob"
	"github.com/poiesic/indexit/core"
	"github.com/poiesic/indexit/detect"
	"github.com/poiesic/indexit/extract"
	"github.com/poiesic/indexit/index"
	"github.com/poiesic/indexit/notify"
	"github.com/poiesic/indexit/pii"
	"github.com/poiesic/indexit/splitter"
)

// fakeIndex records upserts, deletions and searches in memory.
type fakeIndex struct {
	mu          sync.Mutex
	docs        []index.Document
	upsertErr   error
	searchDocs  []index.Document
	searchErr   error
	deleteCount int
	deleteErr   error
	filters     []index.Filter
}

func (f *fakeIndex) EnsureIndex(ctx context.Context) error { return nil }

func (f *fakeIndex) Upsert(ctx context.Context, docs []index.Document) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.upsertErr != nil {
		return 0, f.upsertErr
	}
	f.docs = append(f.docs, docs...)
	return len(docs), nil
}

func (f *fakeIndex) DeleteByFilter(ctx context.Context, filter index.Filter) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return 0, f.deleteErr
	}
	f.filters = append(f.filters, filter)
	return f.deleteCount, nil
}

func (f *fakeIndex) Search(ctx context.Context, query index.Query) ([]index.Document, error) {
	return f.searchDocs, f.searchErr
}

func (f *fakeIndex) documents() []index.Document {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]index.Document(nil), f.docs...)
}

// scannerFunc adapts a function to the Scanner interface.
type scannerFunc func(ctx context.Context, docs []pii.Document) ([]pii.Entity, error)

func (f scannerFunc) Scan(ctx context.Context, docs []pii.Document) ([]pii.Entity, error) {
	return f(ctx, docs)
}

// stubExtractor returns a fixed extraction result for any content.
type stubExtractor struct {
	result *extract.Result
	err    error
}

func (e *stubExtractor) Extract(ctx context.Context, content []byte) (*extract.Result, error) {
	return e.result, e.err
}

type notifyEvent struct {
	recipient string
	fileName  string
	status    string
}

// recordingNotifier captures the notification sequence.
type recordingNotifier struct {
	mu     sync.Mutex
	events []notifyEvent
}

func (n *recordingNotifier) Notify(ctx context.Context, recipient, fileName, status string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, notifyEvent{recipient, fileName, status})
}

func (n *recordingNotifier) recorded() []notifyEvent {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]notifyEvent(nil), n.events...)
}

type testFixture struct {
	pipeline   *Pipeline
	textIndex  *fakeIndex
	imageIndex *fakeIndex
	summary    *fakeIndex
	blobs      blob.Store
	embedder   *mock.MockEmbedder
	summarizer *mock.MockSummarizer
	describer  *mock.MockImageDescriber
	notifier   *recordingNotifier
}

func newTestPipeline(t *testing.T, opts ...Option) *testFixture {
	t.Helper()

	blobs, err := badgerblob.NewMemoryStore()
	require.NoError(t, err)
	t.Cleanup(func() { blobs.Close() })

	f := &testFixture{
		textIndex:  &fakeIndex{},
		imageIndex: &fakeIndex{},
		summary:    &fakeIndex{},
		blobs:      blobs,
		embedder:   mock.NewMockEmbedder(),
		summarizer: mock.NewMockSummarizer(),
		describer:  mock.NewMockImageDescriber(),
		notifier:   &recordingNotifier{},
	}

	opts = append([]Option{WithNotifier(f.notifier)}, opts...)
	p, err := New(
		f.textIndex, f.imageIndex, f.summary,
		blobs,
		f.embedder, f.summarizer, f.describer,
		splitter.New(1000, 100),
		opts...,
	)
	require.NoError(t, err)
	t.Cleanup(p.Release)

	f.pipeline = p
	return f
}

const sampleText = "Project onboarding notes for the data platform team.\n" +
	"New hires should request cluster access during their first week."

func textFile(name string) core.RawFile {
	return core.RawFile{
		Name:       name,
		Content:    []byte(sampleText),
		Uploader:   "alice",
		Department: "engineering",
	}
}

// pngFile is a payload that detects as PNG. Only the signature matters;
// the image extractor passes bytes through untouched.
func pngFile(name string) core.RawFile {
	payload := append([]byte("\x89PNG\r\n\x1a\n"), []byte("fake image body")...)
	return core.RawFile{
		Name:       name,
		Content:    payload,
		Uploader:   "bob",
		Department: "design",
	}
}

func TestNewRequiresDependencies(t *testing.T) {
	blobs, err := badgerblob.NewMemoryStore()
	require.NoError(t, err)
	defer blobs.Close()

	idx := &fakeIndex{}
	embedder := mock.NewMockEmbedder()
	summarizer := mock.NewMockSummarizer()
	describer := mock.NewMockImageDescriber()
	split := splitter.New(1000, 100)

	t.Run("text index", func(t *testing.T) {
		_, err := New(nil, idx, idx, blobs, embedder, summarizer, describer, split)
		assert.ErrorIs(t, err, ErrTextIndexRequired)
	})
	t.Run("image index", func(t *testing.T) {
		_, err := New(idx, nil, idx, blobs, embedder, summarizer, describer, split)
		assert.ErrorIs(t, err, ErrImageIndexRequired)
	})
	t.Run("summary index", func(t *testing.T) {
		_, err := New(idx, idx, nil, blobs, embedder, summarizer, describer, split)
		assert.ErrorIs(t, err, ErrSummaryIndexRequired)
	})
	t.Run("blob store", func(t *testing.T) {
		_, err := New(idx, idx, idx, nil, embedder, summarizer, describer, split)
		assert.ErrorIs(t, err, ErrBlobStoreRequired)
	})
	t.Run("embedder", func(t *testing.T) {
		_, err := New(idx, idx, idx, blobs, nil, summarizer, describer, split)
		assert.ErrorIs(t, err, ErrEmbedderRequired)
	})
	t.Run("summarizer", func(t *testing.T) {
		_, err := New(idx, idx, idx, blobs, embedder, nil, describer, split)
		assert.ErrorIs(t, err, ErrSummarizerRequired)
	})
	t.Run("describer", func(t *testing.T) {
		_, err := New(idx, idx, idx, blobs, embedder, summarizer, nil, split)
		assert.ErrorIs(t, err, ErrDescriberRequired)
	})
	t.Run("splitter", func(t *testing.T) {
		_, err := New(idx, idx, idx, blobs, embedder, summarizer, describer, nil)
		assert.ErrorIs(t, err, ErrSplitterRequired)
	})
}

func TestProcessTextFile(t *testing.T) {
	f := newTestPipeline(t)
	file := textFile("onboarding.txt")
	hash := core.ContentHash(file.Content)

	result := f.pipeline.Process(context.Background(), file, false)

	require.False(t, result.Failed(), "text file should process cleanly")
	assert.Empty(t, result.Errors)
	assert.Equal(t, "onboarding.txt", result.FileName)
	assert.Equal(t, 1, result.PageCount)
	assert.Equal(t, 1, result.TextCount)
	assert.Zero(t, result.ImageCount)
	assert.Equal(t, hash, result.Metadata.ContentHash)

	textDocs := f.textIndex.documents()
	require.Len(t, textDocs, 1)
	doc := textDocs[0]
	assert.Equal(t, core.ChunkID(core.PrefixText, hash, "0"), doc.ChunkID)
	assert.Contains(t, doc.Text, "onboarding notes")
	assert.NotEmpty(t, doc.Vector)
	assert.Equal(t, "onboarding", doc.Title)
	assert.Equal(t, "alice", doc.Uploader)
	assert.Equal(t, "engineering", doc.Department)
	assert.Equal(t, hash, doc.ParentID)
	assert.Equal(t, hash, doc.Metadata["content_hash"])

	summaryDocs := f.summary.documents()
	require.Len(t, summaryDocs, 1)
	assert.Equal(t, core.ChunkID(core.PrefixSummary, hash, "0"), summaryDocs[0].ChunkID)
	assert.NotEmpty(t, summaryDocs[0].Text)

	assert.Empty(t, f.imageIndex.documents())
}

func TestProcessImageFile(t *testing.T) {
	f := newTestPipeline(t)
	file := pngFile("diagram.png")
	hash := core.ContentHash(file.Content)
	ctx := context.Background()

	result := f.pipeline.Process(ctx, file, false)

	require.False(t, result.Failed())
	assert.Empty(t, result.Errors)
	assert.Equal(t, 1, result.ImageCount)
	assert.Zero(t, result.TextCount)

	imageDocs := f.imageIndex.documents()
	require.Len(t, imageDocs, 1)
	chunkID := core.ChunkID(core.PrefixImage, hash, "0_0")
	assert.Equal(t, chunkID, imageDocs[0].ChunkID)
	assert.Contains(t, imageDocs[0].Text, "mock description")

	object, err := f.blobs.Download(ctx, DefaultImageContainer, chunkID)
	require.NoError(t, err, "indexed image payload should be stored")
	assert.Equal(t, "image/png", object.ContentType)
	assert.Equal(t, file.Content, object.Payload)
	assert.Equal(t, "diagram", object.Tags["title"])
	assert.Equal(t, "bob", object.Tags["uploader"])

	// A pure image batch is still summarized.
	assert.Len(t, f.summary.documents(), 1)
}

func TestProcessRejectsInvalidFiles(t *testing.T) {
	f := newTestPipeline(t)
	ctx := context.Background()

	t.Run("empty name", func(t *testing.T) {
		result := f.pipeline.Process(ctx, core.RawFile{Content: []byte("x")}, false)
		require.True(t, result.Failed())
		assert.Equal(t, core.FatalUnclassified, result.Fatal.Type)
	})

	t.Run("empty content", func(t *testing.T) {
		result := f.pipeline.Process(ctx, core.RawFile{Name: "empty.txt"}, false)
		require.True(t, result.Failed())
	})

	t.Run("unsupported type", func(t *testing.T) {
		junk := core.RawFile{Name: "blob.bin", Content: []byte{0x00, 0x01, 0x02, 0xfe, 0xff, 0x00}}
		result := f.pipeline.Process(ctx, junk, false)
		require.True(t, result.Failed())
		assert.Contains(t, fmt.Sprint(result.Fatal.Data), "unsupported file type")
	})
}

func TestProcessScanningRequiresScanner(t *testing.T) {
	f := newTestPipeline(t)

	result := f.pipeline.Process(context.Background(), textFile("notes.txt"), true)

	require.True(t, result.Failed())
	assert.Contains(t, fmt.Sprint(result.Fatal.Data), ErrScannerRequired.Error())
}

func TestProcessSensitiveInformationAbortsFile(t *testing.T) {
	var scanned []pii.Document
	scanner := scannerFunc(func(ctx context.Context, docs []pii.Document) ([]pii.Entity, error) {
		scanned = docs
		return []pii.Entity{{Text: "123-45-6789", Category: "SSN"}}, nil
	})
	f := newTestPipeline(t, WithScanner(scanner))

	result := f.pipeline.Process(context.Background(), textFile("payroll.txt"), true)

	require.True(t, result.Failed())
	assert.Equal(t, core.FatalSensitiveInformation, result.Fatal.Type)
	assert.Zero(t, result.TextCount)
	assert.Zero(t, result.ImageCount)
	assert.NotEmpty(t, scanned, "extracted text should reach the scanner")

	assert.Empty(t, f.textIndex.documents(), "gated content must not be indexed")
	assert.Empty(t, f.summary.documents())
	assert.Empty(t, f.imageIndex.documents())
	assert.Zero(t, f.summarizer.CallCount())
}

func TestProcessScanErrorIsFatal(t *testing.T) {
	scanner := scannerFunc(func(ctx context.Context, docs []pii.Document) ([]pii.Entity, error) {
		return nil, errors.New("endpoint unreachable")
	})
	f := newTestPipeline(t, WithScanner(scanner))

	result := f.pipeline.Process(context.Background(), textFile("notes.txt"), true)

	require.True(t, result.Failed())
	assert.Equal(t, core.FatalUnclassified, result.Fatal.Type)
	assert.Contains(t, fmt.Sprint(result.Fatal.Data), "PII scan error")
	assert.Empty(t, f.textIndex.documents())
}

func TestProcessCleanScanProceeds(t *testing.T) {
	scanner := scannerFunc(func(ctx context.Context, docs []pii.Document) ([]pii.Entity, error) {
		return nil, nil
	})
	f := newTestPipeline(t, WithScanner(scanner))

	result := f.pipeline.Process(context.Background(), textFile("notes.txt"), true)

	require.False(t, result.Failed())
	assert.Len(t, f.textIndex.documents(), 1)
}

func TestProcessSummarizationFailureIsNonFatal(t *testing.T) {
	f := newTestPipeline(t)
	f.summarizer.SummarizeFunc = func(ctx context.Context, texts []string, images [][]byte) (string, error) {
		return "", errors.New("model overloaded")
	}

	result := f.pipeline.Process(context.Background(), textFile("notes.txt"), false)

	require.False(t, result.Failed(), "summarization failure must not abort the file")
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "Summarization error")
	assert.Equal(t, 1, result.TextCount)
	assert.Len(t, f.textIndex.documents(), 1)
	assert.Empty(t, f.summary.documents(), "no summary chunk without a summary")
}

func TestProcessDescriptionUsesSummaryContext(t *testing.T) {
	var gotContext string
	f := newTestPipeline(t)
	f.describer.DescribeFunc = func(ctx context.Context, image []byte, summaryContext string) (ai.ImageDescription, error) {
		gotContext = summaryContext
		return ai.ImageDescription{Class: core.ImageClassPicture, Description: "a network diagram"}, nil
	}

	result := f.pipeline.Process(context.Background(), pngFile("diagram.png"), false)

	require.False(t, result.Failed())
	assert.Contains(t, gotContext, "summary of", "describer should receive the batch summary")
}

func TestProcessDescriptionFailureDegradesToFallback(t *testing.T) {
	images := []core.PageImage{
		{PageNo: 1, ImageNo: 0, Payload: []byte("first")},
		{PageNo: 1, ImageNo: 1, Payload: []byte("second")},
		{PageNo: 2, ImageNo: 0, Payload: []byte("third")},
	}
	ext := &stubExtractor{result: &extract.Result{Images: images, PageCount: 2}}
	f := newTestPipeline(t, WithExtractor(detect.FileTypeTxt, ext))
	f.describer.DescribeFunc = func(ctx context.Context, image []byte, summaryContext string) (ai.ImageDescription, error) {
		if string(image) == "second" {
			return ai.ImageDescription{}, errors.New("vision model timeout")
		}
		return ai.ImageDescription{Class: core.ImageClassPicture, Description: "a detailed chart"}, nil
	}

	result := f.pipeline.Process(context.Background(), textFile("slides.txt"), false)

	require.False(t, result.Failed())
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "Image description error")
	assert.Equal(t, 3, result.ImageCount)

	// The failed image keeps its fallback description and stays indexed.
	docs := f.imageIndex.documents()
	require.Len(t, docs, 3)
	texts := make([]string, len(docs))
	for i, doc := range docs {
		texts[i] = doc.Text
	}
	assert.Contains(t, texts, ai.FallbackDescription().Description)
}

func TestProcessDropsNonRetrievableImages(t *testing.T) {
	f := newTestPipeline(t)
	f.describer.DescribeFunc = func(ctx context.Context, image []byte, summaryContext string) (ai.ImageDescription, error) {
		return ai.ImageDescription{Class: core.ImageClassIcon, Description: "a small settings icon"}, nil
	}
	ctx := context.Background()

	result := f.pipeline.Process(ctx, pngFile("icon.png"), false)

	require.False(t, result.Failed())
	assert.Empty(t, result.Errors, "dropping an icon is not an error")
	assert.Empty(t, f.imageIndex.documents())

	exists, err := f.blobs.Exists(ctx, DefaultImageContainer, core.ChunkID(core.PrefixImage, core.ContentHash(pngFile("icon.png").Content), "0_0"))
	require.NoError(t, err)
	assert.False(t, exists, "dropped images must not be uploaded")
}

func TestProcessDropsShortDescriptions(t *testing.T) {
	f := newTestPipeline(t)
	f.describer.DescribeFunc = func(ctx context.Context, image []byte, summaryContext string) (ai.ImageDescription, error) {
		return ai.ImageDescription{Class: core.ImageClassPicture, Description: "blurry"}, nil
	}

	result := f.pipeline.Process(context.Background(), pngFile("photo.png"), false)

	require.False(t, result.Failed())
	assert.Empty(t, f.imageIndex.documents())
}

func TestProcessImageIndexingErrorSkipsUpload(t *testing.T) {
	f := newTestPipeline(t)
	f.imageIndex.upsertErr = errors.New("index unavailable")
	ctx := context.Background()
	file := pngFile("photo.png")

	result := f.pipeline.Process(ctx, file, false)

	require.False(t, result.Failed())
	require.NotEmpty(t, result.Errors)
	assert.Contains(t, strings.Join(result.Errors, "; "), "Image indexing error")

	chunkID := core.ChunkID(core.PrefixImage, core.ContentHash(file.Content), "0_0")
	_, err := f.blobs.Download(ctx, DefaultImageContainer, chunkID)
	assert.Error(t, err, "payload must not be stored when its description was not indexed")
}

func TestProcessTextIndexingErrorIsIsolated(t *testing.T) {
	f := newTestPipeline(t)
	f.textIndex.upsertErr = errors.New("connection refused")

	result := f.pipeline.Process(context.Background(), textFile("notes.txt"), false)

	require.False(t, result.Failed())
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "Text indexing error")
	assert.Len(t, f.summary.documents(), 1, "summary indexing proceeds despite text failure")
}

func TestBatchOrdinalsPersistAcrossBatches(t *testing.T) {
	f := newTestPipeline(t)
	file := textFile("large.txt")
	hash := core.ContentHash(file.Content)

	r := &run{
		p:      f.pipeline,
		file:   file,
		meta:   core.NewFileMetadata(file),
		logger: f.pipeline.logger,
	}

	batch1 := &extract.Result{
		Texts:  []core.PageText{{PageNo: 1, Text: "first batch page text"}},
		Tables: []core.TableText{{PageNo: 1, Text: "| a | b |"}},
	}
	batch2 := &extract.Result{
		Texts:  []core.PageText{{PageNo: 21, Text: "second batch page text"}},
		Tables: []core.TableText{{PageNo: 21, Text: "| c | d |"}},
	}

	require.Nil(t, r.processBatch(context.Background(), batch1))
	require.Nil(t, r.processBatch(context.Background(), batch2))

	var ids []string
	for _, doc := range f.textIndex.documents() {
		ids = append(ids, doc.ChunkID)
	}
	assert.Contains(t, ids, core.ChunkID(core.PrefixText, hash, "0"))
	assert.Contains(t, ids, core.ChunkID(core.PrefixText, hash, "1"))
	assert.Contains(t, ids, core.ChunkID(core.PrefixText, hash, "whole0"))
	assert.Contains(t, ids, core.ChunkID(core.PrefixText, hash, "whole1"))
	assert.Len(t, ids, len(unique(ids)), "chunk IDs must stay unique across batches")

	var summaryIDs []string
	for _, doc := range f.summary.documents() {
		summaryIDs = append(summaryIDs, doc.ChunkID)
	}
	assert.ElementsMatch(t, []string{
		core.ChunkID(core.PrefixSummary, hash, "0"),
		core.ChunkID(core.PrefixSummary, hash, "1"),
	}, summaryIDs)
}

func unique(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	var out []string
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

func TestProcessContainer(t *testing.T) {
	f := newTestPipeline(t)
	ctx := context.Background()

	require.NoError(t, f.blobs.Create(ctx, "inbox"))
	for _, name := range []string{"a.txt", "b.txt"} {
		require.NoError(t, f.blobs.Upload(ctx, "inbox", &core.BlobObject{
			Name:        name,
			ContentType: "text/plain",
			Tags:        map[string]string{"uploader": "carol", "department": "legal"},
			Payload:     []byte(sampleText),
		}))
	}

	results, err := f.pipeline.ProcessContainer(ctx, "inbox", false)
	require.NoError(t, err)
	require.Len(t, results, 2)
	for _, result := range results {
		assert.False(t, result.Failed())
		assert.Equal(t, "carol", result.Metadata.Uploader)
		assert.Equal(t, "legal", result.Metadata.Department)
	}

	assert.Equal(t, []notifyEvent{
		{"carol", "a.txt", notify.StatusInProgress},
		{"carol", "a.txt", notify.StatusReady},
		{"carol", "b.txt", notify.StatusInProgress},
		{"carol", "b.txt", notify.StatusReady},
	}, f.notifier.recorded())
}

func TestProcessContainerNotifiesFailure(t *testing.T) {
	f := newTestPipeline(t)
	ctx := context.Background()

	require.NoError(t, f.blobs.Create(ctx, "inbox"))
	require.NoError(t, f.blobs.Upload(ctx, "inbox", &core.BlobObject{
		Name:    "junk.bin",
		Payload: []byte{0x00, 0x01, 0xfe, 0xff, 0x00},
	}))

	results, err := f.pipeline.ProcessContainer(ctx, "inbox", false)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.True(t, results[0].Failed())

	events := f.notifier.recorded()
	require.Len(t, events, 2)
	assert.Equal(t, notify.StatusInProgress, events[0].status)
	assert.Equal(t, notify.StatusFailed, events[1].status)
}

// failingDownloadStore lists names normally but refuses every download.
type failingDownloadStore struct {
	blob.Store
	err error
}

func (s *failingDownloadStore) Download(ctx context.Context, container, name string) (*core.BlobObject, error) {
	return nil, s.err
}

func TestProcessContainerDownloadFailureNotifiesDefaultUser(t *testing.T) {
	f := newTestPipeline(t)
	ctx := context.Background()

	require.NoError(t, f.blobs.Create(ctx, "inbox"))
	require.NoError(t, f.blobs.Upload(ctx, "inbox", &core.BlobObject{
		Name:    "notes.txt",
		Payload: []byte(sampleText),
	}))
	f.pipeline.blobs = &failingDownloadStore{Store: f.blobs, err: errors.New("checksum mismatch")}

	results, err := f.pipeline.ProcessContainer(ctx, "inbox", false)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.True(t, results[0].Failed())
	assert.Contains(t, results[0].Fatal.Error(), "download error")

	// The uploader tag never arrived, so the notification falls back to
	// the same default user file metadata uses.
	events := f.notifier.recorded()
	require.Len(t, events, 1)
	assert.Equal(t, "default", events[0].recipient)
	assert.Equal(t, "notes.txt", events[0].fileName)
	assert.Equal(t, notify.StatusFailed, events[0].status)
}

func TestProcessContainerMissingContainer(t *testing.T) {
	f := newTestPipeline(t)

	_, err := f.pipeline.ProcessContainer(context.Background(), "nowhere", false)

	require.Error(t, err)
	assert.ErrorIs(t, err, blob.ErrContainerNotFound)
}

// blockingNotifier parks the first notification until released, keeping a
// bulk job provably in flight.
type blockingNotifier struct {
	once    sync.Once
	started chan struct{}
	release chan struct{}
}

func (n *blockingNotifier) Notify(ctx context.Context, recipient, fileName, status string) {
	n.once.Do(func() {
		close(n.started)
		<-n.release
	})
}

func TestProcessContainerRejectsConcurrentJobs(t *testing.T) {
	blocker := &blockingNotifier{
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	f := newTestPipeline(t, WithNotifier(blocker))
	ctx := context.Background()

	require.NoError(t, f.blobs.Create(ctx, "inbox"))
	require.NoError(t, f.blobs.Upload(ctx, "inbox", &core.BlobObject{
		Name:    "a.txt",
		Payload: []byte(sampleText),
	}))

	done := make(chan error, 1)
	go func() {
		_, err := f.pipeline.ProcessContainer(ctx, "inbox", false)
		done <- err
	}()

	<-blocker.started
	_, err := f.pipeline.ProcessContainer(ctx, "inbox", false)
	assert.ErrorIs(t, err, ErrJobActive)

	close(blocker.release)
	require.NoError(t, <-done)

	// The gate is released once the job finishes.
	_, err = f.pipeline.ProcessContainer(ctx, "inbox", false)
	assert.NoError(t, err)
}

func TestRemove(t *testing.T) {
	f := newTestPipeline(t)
	ctx := context.Background()

	f.textIndex.deleteCount = 3
	f.imageIndex.deleteCount = 2
	f.summary.deleteCount = 1
	f.imageIndex.searchDocs = []index.Document{
		{ChunkID: "image_abc_chunk_1_0"},
		{ChunkID: "image_abc_chunk_2_0"},
	}

	require.NoError(t, f.blobs.Create(ctx, DefaultImageContainer))
	for _, doc := range f.imageIndex.searchDocs {
		require.NoError(t, f.blobs.Upload(ctx, DefaultImageContainer, &core.BlobObject{
			Name:    doc.ChunkID,
			Payload: []byte("image bytes"),
		}))
	}

	result, err := f.pipeline.Remove(ctx, "report.pdf")
	require.NoError(t, err)

	assert.Equal(t, RemovalResult{TextCount: 3, ImageCount: 2, SummaryCount: 1, BlobCount: 2}, result)

	require.Len(t, f.textIndex.filters, 1)
	assert.Equal(t, index.Filter{Title: "report"}, f.textIndex.filters[0])

	exists, err := f.blobs.Exists(ctx, DefaultImageContainer, "image_abc_chunk_1_0")
	require.NoError(t, err)
	assert.False(t, exists, "image payloads are deleted with their chunks")
}

func TestRemoveToleratesMissingBlobs(t *testing.T) {
	f := newTestPipeline(t)
	f.imageIndex.searchDocs = []index.Document{{ChunkID: "image_abc_chunk_1_0"}}

	result, err := f.pipeline.Remove(context.Background(), "report.pdf")

	require.NoError(t, err, "a chunk without a stored payload is not an error")
	assert.Zero(t, result.BlobCount)
}

func TestAdmissionGate(t *testing.T) {
	var g admissionGate
	assert.True(t, g.tryAcquire())
	assert.False(t, g.tryAcquire(), "second acquire while held must fail")
	g.release()
	assert.True(t, g.tryAcquire())
}
