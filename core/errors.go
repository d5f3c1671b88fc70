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

import "errors"

// Domain validation errors
var (
	// ErrEmptyContent indicates a file with no content bytes.
	ErrEmptyContent = errors.New("file content cannot be empty")

	// ErrEmptyFileName indicates a file with no name.
	ErrEmptyFileName = errors.New("file name cannot be empty")

	// ErrInvalidPageRange indicates a page range with start > end.
	ErrInvalidPageRange = errors.New("invalid page range")

	// ErrNegativePageNo indicates a page number below zero.
	ErrNegativePageNo = errors.New("page number cannot be negative")
)
