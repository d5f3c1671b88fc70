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


package core

//go:generate go run ../cmd/musgen

import (
	"path/filepath"
	"strings"
	"time"
)

// RawFile is a document as received from a caller or a blob container.
// It is immutable once received; its content bytes are the source of the
// content hash used as the file's stable identity.
type RawFile struct {
	Name       string
	Content    []byte
	Uploader   string
	Department string
}

// FileMetadata identifies the parent document for every chunk produced
// from it. Two files with identical bytes produce identical ContentHash
// regardless of name.
type FileMetadata struct {
	ContentHash string
	Title       string
	Uploader    string
	Department  string
	CreatedAt   time.Time
}

// NewFileMetadata derives metadata from a raw file. The title is the file
// name without its extension.
func NewFileMetadata(file RawFile) FileMetadata {
	name := filepath.Base(file.Name)
	title := strings.TrimSuffix(name, filepath.Ext(name))

	uploader := file.Uploader
	if uploader == "" {
		uploader = "default"
	}
	department := file.Department
	if department == "" {
		department = "default"
	}

	return FileMetadata{
		ContentHash: ContentHash(file.Content),
		Title:       title,
		Uploader:    uploader,
		Department:  department,
		CreatedAt:   time.Now().UTC(),
	}
}

// Tags returns the metadata as string tags suitable for blob-level tagging.
func (m FileMetadata) Tags() map[string]string {
	return map[string]string{
		"content_hash": m.ContentHash,
		"title":        m.Title,
		"uploader":     m.Uploader,
		"department":   m.Department,
		"created_at":   m.CreatedAt.Format(time.RFC3339),
	}
}

// PageText is the extractable text of one page. Non-paginated formats emit
// a single synthetic entry at page 0.
type PageText struct {
	PageNo int
	Text   string
}

// ImageClass categorizes an extracted image. It is populated asynchronously
// by the image-description stage; until then it is ImageClassUnset.
type ImageClass string

const (
	ImageClassUnset       ImageClass = ""
	ImageClassIcon        ImageClass = "icon"
	ImageClassShape       ImageClass = "shape"
	ImageClassLogo        ImageClass = "logo"
	ImageClassPicture     ImageClass = "picture"
	ImageClassInformation ImageClass = "information"
)

// Retrievable reports whether an image of this class carries information
// worth indexing. Icons, shapes and logos do not.
func (c ImageClass) Retrievable() bool {
	switch c {
	case ImageClassIcon, ImageClassShape, ImageClassLogo:
		return false
	}
	return true
}

// PageImage is an image extracted from a page, or a whole page rasterized
// as an image. ImageNo is unique within a page.
type PageImage struct {
	PageNo      int
	ImageNo     int
	Payload     []byte
	Class       ImageClass
	Description string
}

// TableText is text originating from a tabular region. It is always indexed
// as a single unsplit chunk and never passes through the text splitter.
type TableText struct {
	PageNo int
	Text   string
}

// PageRange records the page provenance of a chunk.
// StartPage == EndPage when the chunk lies wholly within one page.
type PageRange struct {
	StartPage int
	EndPage   int
}

// Chunk is a bounded unit of text handed to the search index.
// ChunkNo is unique within a {parent document, prefix} pair.
type Chunk struct {
	ChunkNo string
	Text    string
	Pages   PageRange
}

// Chunk prefixes namespace chunk identity by content type within one
// parent document.
const (
	PrefixText    = "text"
	PrefixImage   = "image"
	PrefixSummary = "summary"
)

// ChunkID builds the globally unique, stable identifier for a chunk:
// <prefix>_<contentHash>_chunk_<chunkNo>. Stability across reprocessing is
// what makes re-indexing and removal by filter possible.
func ChunkID(prefix, contentHash, chunkNo string) string {
	return prefix + "_" + contentHash + "_chunk_" + chunkNo
}

// BlobObject is an object persisted in the blob store, together with its
// content type and blob-level tags.
type BlobObject struct {
	Name        string
	ContentType string
	Tags        map[string]string
	Payload     []byte
	StoredAt    time.Time
}
