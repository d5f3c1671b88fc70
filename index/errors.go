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

import "errors"

var (
	// ErrVectorRequired indicates an upsert of a document without an embedding.
	ErrVectorRequired = errors.New("document vector is required")

	// ErrChunkIDRequired indicates an upsert of a document without a chunk ID.
	ErrChunkIDRequired = errors.New("document chunk ID is required")

	// ErrEmptyFilter indicates a delete with no filter criteria, which would
	// affect every document in the index.
	ErrEmptyFilter = errors.New("filter must not be empty")
)
