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

// Package pipeline orchestrates document processing: detection, extraction,
// an optional sensitive-information gate, summarization, chunking, index
// writes, image description and blob uploads.
//
// Per file the pipeline runs a small stage graph: metadata → extraction →
// {summary, text indexing} → {image description → image indexing/upload} →
// summary indexing. Large PDFs stream through the graph in page batches to
// bound memory. Stage failures are isolated and collected in the result;
// only unsupported input and a tripped PII gate abort a file.
//
// Bulk container jobs are serialized by an admission gate: a second job is
// rejected while one runs, never queued.
package pipeline
