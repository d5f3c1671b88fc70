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

// FatalErrorType classifies a failure that aborts an entire file.
type FatalErrorType string

const (
	// FatalSensitiveInformation indicates the PII gate tripped; nothing
	// from the file reaches the index.
	FatalSensitiveInformation FatalErrorType = "sensitive_information_detected"

	// FatalUnclassified carries the raw description of any other fatal
	// failure (unsupported format, decode failure, extraction error).
	FatalUnclassified FatalErrorType = "unclassified"
)

// FatalError aborts processing of a whole file. Data carries the
// type-specific payload: the detected entity list for
// FatalSensitiveInformation, the failure description for FatalUnclassified.
type FatalError struct {
	Type FatalErrorType
	Data any
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("%s: %v", e.Type, e.Data)
}

// ProcessingResult is the terminal outcome of processing one file.
//
// Errors lists non-fatal per-stage failures; a result with a non-empty
// Errors list but populated counts indicates partial success. Fatal is set
// instead when the whole file was aborted, with zero counts.
type ProcessingResult struct {
	FileName   string
	PageCount  int
	TextCount  int
	ImageCount int
	Metadata   FileMetadata
	Errors     []string
	Fatal      *FatalError
}

// Failed reports whether the file was aborted by a fatal error.
func (r ProcessingResult) Failed() bool {
	return r.Fatal != nil
}

// FatalResult builds a ProcessingResult for a file that was aborted before
// (or instead of) producing any indexed content.
func FatalResult(fileName string, fatal *FatalError) ProcessingResult {
	return ProcessingResult{
		FileName: fileName,
		Fatal:    fatal,
	}
}
