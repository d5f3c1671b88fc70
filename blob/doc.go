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

// Package blob defines the object-store contract used by the ingestion
// pipeline: named containers holding tagged binary objects. The pipeline
// reads source documents from containers and writes extracted image
// payloads back, keyed by chunk identifier.
//
// The badgerblob subpackage provides an embedded implementation backed
// by BadgerDB.
package blob
