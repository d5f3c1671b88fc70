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


package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/poiesic/indexit/ai"
	"github.com/poiesic/indexit/ai/openai"
	"github.com/poiesic/indexit/blob/badgerblob"
	"github.com/poiesic/indexit/core"
	"github.com/poiesic/indexit/detect"
	"github.com/poiesic/indexit/extract/office"
	"github.com/poiesic/indexit/extract/pdf"
	"github.com/poiesic/indexit/index"
	"github.com/poiesic/indexit/index/pgvector"
	"github.com/poiesic/indexit/notify"
	"github.com/poiesic/indexit/pii"
	"github.com/poiesic/indexit/pipeline"
	"github.com/poiesic/indexit/splitter"
)

func main() {
	// A .env file is optional; variables already in the environment win.
	_ = godotenv.Load()

	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "indexit",
		Usage: "Document ingestion pipeline for retrieval indexes",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
				EnvVars: []string{"INDEXIT_LOG_LEVEL"},
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:      "process",
				Usage:     "Process a single file into the indexes",
				ArgsUsage: "<file>",
				Action:    processCommand,
				Flags: append(storeFlags(), append(aiFlags(),
					&cli.StringFlag{
						Name:  "uploader",
						Usage: "Uploader recorded in chunk metadata",
					},
					&cli.StringFlag{
						Name:  "department",
						Usage: "Department recorded in chunk metadata",
					},
					&cli.BoolFlag{
						Name:    "pii",
						Usage:   "Gate the file on the sensitive-information scanner",
						EnvVars: []string{"INDEXIT_PII"},
					},
				)...),
			},
			{
				Name:      "process-container",
				Usage:     "Process every file in a blob container",
				ArgsUsage: "<container>",
				Action:    processContainerCommand,
				Flags: append(storeFlags(), append(aiFlags(),
					&cli.BoolFlag{
						Name:    "pii",
						Usage:   "Gate every file on the sensitive-information scanner",
						EnvVars: []string{"INDEXIT_PII"},
					},
				)...),
			},
			{
				Name:      "remove",
				Usage:     "Remove a processed file from the indexes and blob store",
				ArgsUsage: "<file-name>",
				Action:    removeCommand,
				Flags:     append(storeFlags(), aiFlags()...),
			},
		},
	}
}

// storeFlags configures the vector indexes and the blob store.
func storeFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "postgres-url",
			Usage:    "Postgres connection string for the vector indexes",
			Required: true,
			EnvVars:  []string{"INDEXIT_POSTGRES_URL"},
		},
		&cli.StringFlag{
			Name:    "text-table",
			Usage:   "Table name for text chunks",
			Value:   "text_chunks",
			EnvVars: []string{"INDEXIT_TEXT_TABLE"},
		},
		&cli.StringFlag{
			Name:    "image-table",
			Usage:   "Table name for image description chunks",
			Value:   "image_chunks",
			EnvVars: []string{"INDEXIT_IMAGE_TABLE"},
		},
		&cli.StringFlag{
			Name:    "summary-table",
			Usage:   "Table name for summary chunks",
			Value:   "summary_chunks",
			EnvVars: []string{"INDEXIT_SUMMARY_TABLE"},
		},
		&cli.IntFlag{
			Name:    "embedding-dims",
			Usage:   "Dimensionality of the embedding vectors",
			Value:   768,
			EnvVars: []string{"INDEXIT_EMBEDDING_DIMS"},
		},
		&cli.StringFlag{
			Name:    "blob-path",
			Usage:   "Path to the BadgerDB blob store directory",
			Value:   "./indexit-blobs",
			EnvVars: []string{"INDEXIT_BLOB_PATH"},
		},
		&cli.StringFlag{
			Name:    "image-container",
			Usage:   "Blob container that receives extracted image payloads",
			Value:   pipeline.DefaultImageContainer,
			EnvVars: []string{"INDEXIT_IMAGE_CONTAINER"},
		},
	}
}

// aiFlags configures the model services and the optional collaborators.
func aiFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "embedding-host",
			Usage:   "Embedding service host URL",
			Value:   "http://localhost:11434/v1",
			EnvVars: []string{"INDEXIT_EMBEDDING_HOST"},
		},
		&cli.StringFlag{
			Name:     "embedding-model",
			Usage:    "Embedding model name",
			Required: true,
			EnvVars:  []string{"INDEXIT_EMBEDDING_MODEL"},
		},
		&cli.StringFlag{
			Name:    "chat-host",
			Usage:   "Chat/vision service host URL (defaults to embedding-host)",
			EnvVars: []string{"INDEXIT_CHAT_HOST"},
		},
		&cli.StringFlag{
			Name:     "chat-model",
			Usage:    "Multimodal model for summarization and image description",
			Required: true,
			EnvVars:  []string{"INDEXIT_CHAT_MODEL"},
		},
		&cli.StringFlag{
			Name:    "token",
			Usage:   "API token for the model services",
			EnvVars: []string{"INDEXIT_TOKEN"},
		},
		&cli.IntFlag{
			Name:    "chunk-size",
			Usage:   "Maximum chunk length for the text splitter",
			Value:   1000,
			EnvVars: []string{"INDEXIT_CHUNK_SIZE"},
		},
		&cli.IntFlag{
			Name:    "chunk-overlap",
			Usage:   "Overlap between adjacent chunks of one page",
			Value:   100,
			EnvVars: []string{"INDEXIT_CHUNK_OVERLAP"},
		},
		&cli.StringFlag{
			Name:    "token-model",
			Usage:   "Measure chunk length in tokens of this model instead of runes",
			EnvVars: []string{"INDEXIT_TOKEN_MODEL"},
		},
		&cli.StringFlag{
			Name:    "pii-endpoint",
			Usage:   "Sensitive-information scanning service URL",
			EnvVars: []string{"INDEXIT_PII_ENDPOINT"},
		},
		&cli.StringFlag{
			Name:    "webhook-url",
			Usage:   "Status webhook URL for bulk jobs",
			EnvVars: []string{"INDEXIT_WEBHOOK_URL"},
		},
		&cli.StringFlag{
			Name:    "rasterizer-bin",
			Usage:   "Path to the PDF page rasterizer binary",
			EnvVars: []string{"INDEXIT_RASTERIZER_BIN"},
		},
		&cli.StringFlag{
			Name:    "converter-bin",
			Usage:   "Path to the legacy DOC converter binary",
			EnvVars: []string{"INDEXIT_CONVERTER_BIN"},
		},
		&cli.IntFlag{
			Name:    "describe-concurrency",
			Usage:   "Maximum in-flight image description calls",
			Value:   pipeline.DefaultDescribeConcurrency,
			EnvVars: []string{"INDEXIT_DESCRIBE_CONCURRENCY"},
		},
		&cli.IntFlag{
			Name:    "stream-page-threshold",
			Usage:   "Page count above which PDFs are processed in batches",
			Value:   pipeline.DefaultStreamPageThreshold,
			EnvVars: []string{"INDEXIT_STREAM_PAGE_THRESHOLD"},
		},
		&cli.IntFlag{
			Name:    "stream-batch-size",
			Usage:   "Pages per streamed PDF batch",
			Value:   pipeline.DefaultStreamBatchSize,
			EnvVars: []string{"INDEXIT_STREAM_BATCH_SIZE"},
		},
		&cli.IntFlag{
			Name:    "retry-attempts",
			Usage:   "Maximum attempts for scanner and webhook calls",
			Value:   3,
			EnvVars: []string{"INDEXIT_RETRY_ATTEMPTS"},
		},
		&cli.DurationFlag{
			Name:    "retry-delay",
			Usage:   "Base delay for exponential backoff",
			Value:   time.Second,
			EnvVars: []string{"INDEXIT_RETRY_DELAY"},
		},
	}
}

func processCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("expected exactly one file argument")
	}
	path := c.Args().First()

	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	ctx := context.Background()
	p, cleanup, err := buildPipeline(ctx, c)
	if err != nil {
		return err
	}
	defer cleanup()

	file := core.RawFile{
		Name:       path,
		Content:    content,
		Uploader:   c.String("uploader"),
		Department: c.String("department"),
	}

	result := p.Process(ctx, file, c.Bool("pii"))
	printResult(result)
	if result.Failed() {
		return fmt.Errorf("processing failed: %v", result.Fatal)
	}
	return nil
}

func processContainerCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("expected exactly one container argument")
	}
	container := c.Args().First()

	ctx := context.Background()
	p, cleanup, err := buildPipeline(ctx, c)
	if err != nil {
		return err
	}
	defer cleanup()

	results, err := p.ProcessContainer(ctx, container, c.Bool("pii"))
	if err != nil {
		return fmt.Errorf("container job failed: %w", err)
	}

	failed := 0
	for _, result := range results {
		printResult(result)
		if result.Failed() {
			failed++
		}
	}
	fmt.Fprintf(os.Stderr, "Processed %d files, %d failed\n", len(results), failed)
	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(results))
	}
	return nil
}

func removeCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("expected exactly one file-name argument")
	}
	name := c.Args().First()

	ctx := context.Background()
	p, cleanup, err := buildPipeline(ctx, c)
	if err != nil {
		return err
	}
	defer cleanup()

	result, err := p.Remove(ctx, name)
	if err != nil {
		return fmt.Errorf("removing %s: %w", name, err)
	}
	fmt.Fprintf(os.Stderr, "Removed %d text, %d image, %d summary chunks and %d blobs\n",
		result.TextCount, result.ImageCount, result.SummaryCount, result.BlobCount)
	return nil
}

// buildPipeline wires the indexes, blob store, model services and optional
// collaborators from the command flags. The returned cleanup closes
// everything in reverse order.
func buildPipeline(ctx context.Context, c *cli.Context) (*pipeline.Pipeline, func(), error) {
	pool, err := pgvector.Connect(ctx, c.String("postgres-url"))
	if err != nil {
		return nil, nil, fmt.Errorf("connecting to Postgres: %w", err)
	}

	dims := c.Int("embedding-dims")
	indexes := make([]index.SearchIndex, 0, 3)
	for _, table := range []string{c.String("text-table"), c.String("image-table"), c.String("summary-table")} {
		idx, err := pgvector.New(pool, table, dims)
		if err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("creating index %s: %w", table, err)
		}
		if err := idx.EnsureIndex(ctx); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("ensuring index %s: %w", table, err)
		}
		indexes = append(indexes, idx)
	}

	blobs, err := badgerblob.Open(c.String("blob-path"))
	if err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("opening blob store: %w", err)
	}

	chatHost := c.String("chat-host")
	if chatHost == "" {
		chatHost = c.String("embedding-host")
	}
	aiConfig := ai.NewConfig(
		ai.WithEmbeddingHost(c.String("embedding-host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
		ai.WithChatHost(chatHost),
		ai.WithChatModel(c.String("chat-model")),
		ai.WithToken(c.String("token")),
	)
	if err := aiConfig.Validate(); err != nil {
		blobs.Close()
		pool.Close()
		return nil, nil, fmt.Errorf("invalid AI configuration: %w", err)
	}
	provider, err := openai.NewProvider(aiConfig)
	if err != nil {
		blobs.Close()
		pool.Close()
		return nil, nil, fmt.Errorf("creating AI provider: %w", err)
	}

	var splitterOpts []splitter.Option
	if model := c.String("token-model"); model != "" {
		lengthFn, err := splitter.TokenLength(model)
		if err != nil {
			blobs.Close()
			pool.Close()
			return nil, nil, err
		}
		splitterOpts = append(splitterOpts, splitter.WithLengthFunc(lengthFn))
	}
	textSplitter := splitter.New(c.Int("chunk-size"), c.Int("chunk-overlap"), splitterOpts...)

	retryAttempts := c.Int("retry-attempts")
	retryDelay := c.Duration("retry-delay")

	opts := []pipeline.Option{
		pipeline.WithImageContainer(c.String("image-container")),
		pipeline.WithDescribeConcurrency(c.Int("describe-concurrency")),
		pipeline.WithStreaming(c.Int("stream-page-threshold"), c.Int("stream-batch-size")),
		pipeline.WithNotifier(notify.NewWebhookNotifier(c.String("webhook-url"),
			notify.WithRetry(retryAttempts, retryDelay))),
	}
	if endpoint := c.String("pii-endpoint"); endpoint != "" {
		scanner, err := pii.NewScanner(endpoint, pii.WithRetry(retryAttempts, retryDelay))
		if err != nil {
			blobs.Close()
			pool.Close()
			return nil, nil, fmt.Errorf("creating PII scanner: %w", err)
		}
		opts = append(opts, pipeline.WithScanner(scanner))
	}
	if bin := c.String("rasterizer-bin"); bin != "" {
		opts = append(opts, pipeline.WithPDFExtractor(pdf.New(pdf.NewCommandRasterizer(bin))))
	}
	if bin := c.String("converter-bin"); bin != "" {
		opts = append(opts, pipeline.WithExtractor(detect.FileTypeDoc,
			office.NewLegacyDocExtractor(office.NewCommandConverter(bin))))
	}

	p, err := pipeline.New(
		indexes[0], indexes[1], indexes[2],
		blobs,
		provider.Embedder(),
		provider.Summarizer(),
		provider.ImageDescriber(),
		textSplitter,
		opts...,
	)
	if err != nil {
		blobs.Close()
		pool.Close()
		return nil, nil, fmt.Errorf("creating pipeline: %w", err)
	}

	cleanup := func() {
		p.Release()
		if err := blobs.Close(); err != nil {
			slog.Error("closing blob store", "error", err)
		}
		pool.Close()
	}
	return p, cleanup, nil
}

func printResult(result core.ProcessingResult) {
	if result.Failed() {
		fmt.Fprintf(os.Stderr, "%s: FAILED (%v)\n", result.FileName, result.Fatal)
		return
	}
	fmt.Fprintf(os.Stderr, "%s: %d pages, %d texts, %d images",
		result.FileName, result.PageCount, result.TextCount, result.ImageCount)
	if len(result.Errors) > 0 {
		fmt.Fprintf(os.Stderr, ", %d stage errors", len(result.Errors))
	}
	fmt.Fprintln(os.Stderr)
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
