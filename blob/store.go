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

import (
	"context"

	"github.com/poiesic/indexit/core"
)

// Store provides access to named containers of tagged binary objects.
// Implementations must be safe for concurrent use.
type Store interface {
	// Create creates a new container.
	// Returns ErrContainerExists if the container already exists.
	Create(ctx context.Context, container string) error

	// Exists reports whether an object with the given name exists in the
	// container. A missing container reports false without error.
	Exists(ctx context.Context, container, name string) (bool, error)

	// ListNames returns the names of all objects in the container in
	// lexicographic order. Returns ErrContainerNotFound if the container
	// does not exist.
	ListNames(ctx context.Context, container string) ([]string, error)

	// Download retrieves an object by name.
	// Returns ErrNotFound if the object does not exist.
	Download(ctx context.Context, container, name string) (*core.BlobObject, error)

	// Upload stores an object with its content type and tags, overwriting
	// any object with the same name. Sets the object's StoredAt timestamp
	// if unset. Returns ErrContainerNotFound if the container does not
	// exist.
	Upload(ctx context.Context, container string, object *core.BlobObject) error

	// Delete removes an object by name.
	// Returns ErrNotFound if the object does not exist.
	Delete(ctx context.Context, container, name string) error

	// Close closes the store and releases resources.
	Close() error
}
