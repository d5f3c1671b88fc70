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

import "fmt"

// ValidateRawFile checks that a raw file is processable.
func ValidateRawFile(file RawFile) error {
	if file.Name == "" {
		return ErrEmptyFileName
	}
	if len(file.Content) == 0 {
		return fmt.Errorf("%w: %s", ErrEmptyContent, file.Name)
	}
	return nil
}

// ValidatePageRange checks the start <= end invariant.
func ValidatePageRange(r PageRange) error {
	if r.StartPage < 0 || r.EndPage < 0 {
		return ErrNegativePageNo
	}
	if r.StartPage > r.EndPage {
		return fmt.Errorf("%w: start %d > end %d", ErrInvalidPageRange, r.StartPage, r.EndPage)
	}
	return nil
}
