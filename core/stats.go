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

import "log/slog"

// PageStats counts pages of a document grouped by whether they yielded any
// text or images. Each page contributes to exactly one bucket. The counter
// is diagnostic only and is never persisted.
type PageStats struct {
	TextYesImageYes int
	TextYesImageNo  int
	TextNoImageYes  int
	TextNoImageNo   int
}

// Update records one page's classification outcome.
func (s *PageStats) Update(hasText, hasImages bool) {
	switch {
	case hasText && hasImages:
		s.TextYesImageYes++
	case hasText:
		s.TextYesImageNo++
	case hasImages:
		s.TextNoImageYes++
	default:
		s.TextNoImageNo++
	}
}

// Total returns the number of pages recorded.
func (s *PageStats) Total() int {
	return s.TextYesImageYes + s.TextYesImageNo + s.TextNoImageYes + s.TextNoImageNo
}

// LogSummary emits the 2x2 page matrix as an end-of-document diagnostic.
func (s *PageStats) LogSummary(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("page extraction summary",
		"text_yes_image_yes", s.TextYesImageYes,
		"text_yes_image_no", s.TextYesImageNo,
		"text_no_image_yes", s.TextNoImageYes,
		"text_no_image_no", s.TextNoImageNo,
		"total", s.Total())
}
