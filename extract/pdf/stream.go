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
	"iter"
	"sync/atomic"

	"github.com/poiesic/indexit/core"
	"github.com/poiesic/indexit/extract"
)

// Stream yields the document's pages in batches of batchSize consecutive
// pages (the last batch may be short). Classification runs lazily as
// batches are consumed, so only one batch of extracted content is resident
// at a time. The sequence is single-use; ranging over it twice yields
// ErrStreamConsumed.
func (e *Extractor) Stream(ctx context.Context, content []byte, batchSize int) iter.Seq2[*extract.Result, error] {
	var consumed atomic.Bool
	return func(yield func(*extract.Result, error) bool) {
		if batchSize <= 0 {
			yield(nil, ErrInvalidBatchSize)
			return
		}
		if consumed.Swap(true) {
			yield(nil, ErrStreamConsumed)
			return
		}

		doc, err := readDocument(content)
		if err != nil {
			yield(nil, err)
			return
		}

		var stats core.PageStats
		for start := 0; start < doc.ctx.PageCount; start += batchSize {
			if err := ctx.Err(); err != nil {
				yield(nil, err)
				return
			}

			end := start + batchSize
			if end > doc.ctx.PageCount {
				end = doc.ctx.PageCount
			}

			batch := &extract.Result{PageCount: end - start}
			for pageNo := start; pageNo < end; pageNo++ {
				e.extractPage(ctx, doc, pageNo, batch, &stats)
			}
			if !yield(batch, nil) {
				return
			}
		}
		stats.LogSummary(e.logger)
	}
}
