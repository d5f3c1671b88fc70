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
	"path/filepath"
	"strings"

	"github.com/poiesic/indexit/blob"
	"github.com/poiesic/indexit/index"
)

// removeSearchLimit bounds the image-document lookup used to find blob
// keys before the index rows are deleted.
const removeSearchLimit = 10000

// RemovalResult reports what Remove deleted, per index and from the blob
// store.
type RemovalResult struct {
	TextCount    int
	ImageCount   int
	SummaryCount int
	BlobCount    int
}

// Remove deletes every indexed chunk and stored image payload belonging
// to a previously processed file, identified by its title (the file name
// without extension).
func (p *Pipeline) Remove(ctx context.Context, fileName string) (RemovalResult, error) {
	name := filepath.Base(fileName)
	title := strings.TrimSuffix(name, filepath.Ext(name))
	filter := index.Filter{Title: title}
	logger := p.logger.With("file", fileName, "title", title)

	var result RemovalResult

	// Image chunk IDs double as blob keys, so collect them before the
	// index rows disappear.
	imageDocs, err := p.imageIndex.Search(ctx, index.Query{Filter: filter, Limit: removeSearchLimit})
	if err != nil {
		return result, fmt.Errorf("finding image chunks: %w", err)
	}
	for _, doc := range imageDocs {
		err := p.blobs.Delete(ctx, p.imageContainer, doc.ChunkID)
		if err != nil {
			if errors.Is(err, blob.ErrNotFound) || errors.Is(err, blob.ErrContainerNotFound) {
				continue
			}
			return result, fmt.Errorf("deleting blob %s: %w", doc.ChunkID, err)
		}
		result.BlobCount++
	}

	if result.TextCount, err = p.textIndex.DeleteByFilter(ctx, filter); err != nil {
		return result, fmt.Errorf("deleting text chunks: %w", err)
	}
	if result.ImageCount, err = p.imageIndex.DeleteByFilter(ctx, filter); err != nil {
		return result, fmt.Errorf("deleting image chunks: %w", err)
	}
	if result.SummaryCount, err = p.summaryIndex.DeleteByFilter(ctx, filter); err != nil {
		return result, fmt.Errorf("deleting summary chunks: %w", err)
	}

	logger.Info("file removed",
		"texts", result.TextCount,
		"images", result.ImageCount,
		"summaries", result.SummaryCount,
		"blobs", result.BlobCount)
	return result, nil
}
