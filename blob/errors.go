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


package blob

import "errors"

var (
	// ErrNotFound indicates that the requested object was not found.
	ErrNotFound = errors.New("object not found")

	// ErrContainerNotFound indicates that the container does not exist.
	ErrContainerNotFound = errors.New("container not found")

	// ErrContainerExists indicates an attempt to create an existing container.
	ErrContainerExists = errors.New("container already exists")

	// ErrInvalidName indicates an empty or malformed container or object name.
	ErrInvalidName = errors.New("invalid container or object name")
)
