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

// Package pgvector implements index.SearchIndex on PostgreSQL with the
// pgvector extension. Each index is one table keyed by chunk ID; several
// indexes may share one connection pool.
package pgvector

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgvec "github.com/pgvector/pgvector-go"
	"github.com/poiesic/indexit/index"
)

const (
	// DefaultUpsertBatchSize bounds how many documents go into one
	// round-trip batch.
	DefaultUpsertBatchSize = 500

	defaultSearchLimit = 100
)

// ErrInvalidTableName indicates a table name unsafe for SQL interpolation.
var ErrInvalidTableName = errors.New("invalid table name")

var tableNamePattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// Index is a SearchIndex backed by one PostgreSQL table.
type Index struct {
	pool      *pgxpool.Pool
	table     string
	dims      int
	batchSize int
	logger    *slog.Logger
}

var _ index.SearchIndex = (*Index)(nil)

// Option configures an Index.
type Option func(*Index)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(i *Index) {
		i.logger = logger.With("component", "pgvector-index")
	}
}

// WithUpsertBatchSize overrides the upsert batch size.
func WithUpsertBatchSize(size int) Option {
	return func(i *Index) {
		if size > 0 {
			i.batchSize = size
		}
	}
}

// Connect opens a connection pool and verifies connectivity.
func Connect(ctx context.Context, connStr string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

// New creates an index over the given table with embeddings of the given
// dimensionality. The table name becomes part of SQL statements, so only
// plain lowercase identifiers are accepted.
func New(pool *pgxpool.Pool, table string, dims int, opts ...Option) (*Index, error) {
	if !tableNamePattern.MatchString(table) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTableName, table)
	}
	if dims <= 0 {
		return nil, fmt.Errorf("embedding dimensionality must be positive, got %d", dims)
	}

	idx := &Index{
		pool:      pool,
		table:     table,
		dims:      dims,
		batchSize: DefaultUpsertBatchSize,
		logger:    slog.Default().With("component", "pgvector-index", "table", table),
	}
	for _, opt := range opts {
		opt(idx)
	}
	return idx, nil
}

// EnsureIndex creates the vector extension, the table and its indexes if
// they do not exist.
func (i *Index) EnsureIndex(ctx context.Context) error {
	schema := fmt.Sprintf(`
	CREATE EXTENSION IF NOT EXISTS vector;

	CREATE TABLE IF NOT EXISTS %[1]s (
		chunk_id   TEXT PRIMARY KEY,
		text       TEXT NOT NULL,
		embedding  vector(%[2]d) NOT NULL,
		title      TEXT NOT NULL DEFAULT '',
		uploader   TEXT NOT NULL DEFAULT '',
		department TEXT NOT NULL DEFAULT '',
		parent_id  TEXT NOT NULL DEFAULT '',
		metadata   JSONB
	);

	CREATE INDEX IF NOT EXISTS idx_%[1]s_title ON %[1]s(title);
	CREATE INDEX IF NOT EXISTS idx_%[1]s_parent_id ON %[1]s(parent_id);
	CREATE INDEX IF NOT EXISTS idx_%[1]s_embedding ON %[1]s
		USING ivfflat (embedding vector_cosine_ops) WITH (lists = 100);
	`, i.table, i.dims)

	if _, err := i.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensuring index %s: %w", i.table, err)
	}
	return nil
}

// Upsert writes documents in batches, overwriting rows with the same
// chunk ID. Validates every document before writing anything.
func (i *Index) Upsert(ctx context.Context, docs []index.Document) (int, error) {
	for _, doc := range docs {
		if doc.ChunkID == "" {
			return 0, index.ErrChunkIDRequired
		}
		if len(doc.Vector) == 0 {
			return 0, fmt.Errorf("%w: chunk %s", index.ErrVectorRequired, doc.ChunkID)
		}
	}

	query := fmt.Sprintf(`
	INSERT INTO %s (chunk_id, text, embedding, title, uploader, department, parent_id, metadata)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8::jsonb)
	ON CONFLICT (chunk_id) DO UPDATE SET
		text       = EXCLUDED.text,
		embedding  = EXCLUDED.embedding,
		title      = EXCLUDED.title,
		uploader   = EXCLUDED.uploader,
		department = EXCLUDED.department,
		parent_id  = EXCLUDED.parent_id,
		metadata   = EXCLUDED.metadata
	`, i.table)

	written := 0
	for start := 0; start < len(docs); start += i.batchSize {
		end := min(start+i.batchSize, len(docs))

		batch := &pgx.Batch{}
		for _, doc := range docs[start:end] {
			meta, err := json.Marshal(doc.Metadata)
			if err != nil {
				return written, fmt.Errorf("encoding metadata for chunk %s: %w", doc.ChunkID, err)
			}
			batch.Queue(query,
				doc.ChunkID,
				doc.Text,
				pgvec.NewVector(doc.Vector),
				doc.Title,
				doc.Uploader,
				doc.Department,
				doc.ParentID,
				meta,
			)
		}

		if err := i.sendBatch(ctx, batch); err != nil {
			return written, err
		}
		written = end
		i.logger.Debug("upserted batch", "count", end-start, "total", written)
	}
	return written, nil
}

func (i *Index) sendBatch(ctx context.Context, batch *pgx.Batch) error {
	results := i.pool.SendBatch(ctx, batch)
	defer results.Close()

	for n := 0; n < batch.Len(); n++ {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("upserting into %s: %w", i.table, err)
		}
	}
	return results.Close()
}

// DeleteByFilter removes all documents matching the filter.
func (i *Index) DeleteByFilter(ctx context.Context, filter index.Filter) (int, error) {
	if filter.IsZero() {
		return 0, index.ErrEmptyFilter
	}

	where, args := filterClause(filter, nil)
	tag, err := i.pool.Exec(ctx, fmt.Sprintf("DELETE FROM %s%s", i.table, where), args...)
	if err != nil {
		return 0, fmt.Errorf("deleting from %s: %w", i.table, err)
	}
	return int(tag.RowsAffected()), nil
}

// Search returns documents matching the query, ordered by vector distance
// when a query vector is set and by chunk ID otherwise.
func (i *Index) Search(ctx context.Context, query index.Query) ([]index.Document, error) {
	limit := query.Limit
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	where, args := filterClause(query.Filter, nil)
	order := "chunk_id"
	if len(query.Vector) > 0 {
		args = append(args, pgvec.NewVector(query.Vector))
		order = fmt.Sprintf("embedding <=> $%d", len(args))
	}
	args = append(args, limit)

	sql := fmt.Sprintf(
		"SELECT chunk_id, text, embedding, title, uploader, department, parent_id, metadata FROM %s%s ORDER BY %s LIMIT $%d",
		i.table, where, order, len(args),
	)

	rows, err := i.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("searching %s: %w", i.table, err)
	}
	defer rows.Close()

	var docs []index.Document
	for rows.Next() {
		var (
			doc  index.Document
			vec  pgvec.Vector
			meta []byte
		)
		if err := rows.Scan(&doc.ChunkID, &doc.Text, &vec, &doc.Title, &doc.Uploader,
			&doc.Department, &doc.ParentID, &meta); err != nil {
			return nil, err
		}
		doc.Vector = vec.Slice()
		if len(meta) > 0 {
			if err := json.Unmarshal(meta, &doc.Metadata); err != nil {
				return nil, fmt.Errorf("decoding metadata for chunk %s: %w", doc.ChunkID, err)
			}
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// filterClause renders the filter as a WHERE clause, appending bind
// arguments to args. Returns an empty clause for an empty filter.
func filterClause(f index.Filter, args []any) (string, []any) {
	var conds []string
	if f.Title != "" {
		args = append(args, f.Title)
		conds = append(conds, fmt.Sprintf("title = $%d", len(args)))
	}
	if f.ParentID != "" {
		args = append(args, f.ParentID)
		conds = append(conds, fmt.Sprintf("parent_id = $%d", len(args)))
	}
	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}
