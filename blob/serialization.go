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
	"github.com/poiesic/indexit/core"
)

// MarshalObject serializes a BlobObject to bytes.
func MarshalObject(object *core.BlobObject) []byte {
	buf := make([]byte, core.BlobObjectMUS.Size(*object))
	core.BlobObjectMUS.Marshal(*object, buf)
	return buf
}

// UnmarshalObject deserializes a BlobObject from bytes.
func UnmarshalObject(data []byte) (*core.BlobObject, error) {
	object, _, err := core.BlobObjectMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &object, nil
}
