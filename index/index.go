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


package index

import "context"

// Document is one indexed chunk together with its embedding and the
// identity of the parent file it was extracted from. ChunkID is the
// stable primary key; re-indexing the same file overwrites in place.
type Document struct {
	ChunkID    string
	Text       string
	Vector     []float32
	Title      string
	Uploader   string
	Department string
	ParentID   string
	Metadata   map[string]string
}

// Filter selects documents by parent-file identity. Zero-valued fields
// are not applied; at least one field must be set for deletes.
type Filter struct {
	Title    string
	ParentID string
}

// IsZero reports whether no criteria are set.
func (f Filter) IsZero() bool {
	return f.Title == "" && f.ParentID == ""
}

// Query describes a search. When Vector is set, results are ordered by
// vector distance; otherwise by chunk ID. A non-positive Limit applies
// the implementation default.
type Query struct {
	Vector []float32
	Filter Filter
	Limit  int
}

// SearchIndex is a vector-searchable store of chunk documents.
// Implementations must be safe for concurrent use.
type SearchIndex interface {
	// EnsureIndex creates the index schema if it does not exist.
	EnsureIndex(ctx context.Context) error

	// Upsert writes documents, overwriting existing documents with the
	// same chunk ID. Returns the number of documents written.
	Upsert(ctx context.Context, docs []Document) (int, error)

	// DeleteByFilter removes all documents matching the filter and
	// returns the number removed. Returns ErrEmptyFilter for an empty
	// filter.
	DeleteByFilter(ctx context.Context, filter Filter) (int, error)

	// Search returns documents matching the query.
	Search(ctx context.Context, query Query) ([]Document, error)
}
