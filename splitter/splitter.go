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


// Package splitter partitions page text into bounded, overlapping chunks
// while preserving page provenance.
//
// Splitting descends a separator cascade: the first separator present in
// the text whose parts fit the size budget wins; oversized parts recurse
// onto narrower separators, down to a character-level hard split. Adjacent
// chunks drawn from the same page overlap so retrieval keeps
// cross-boundary context. Small fragments from adjacent pages pack into a
// single chunk spanning both pages.
package splitter

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/poiesic/indexit/core"
)

const (
	// DefaultChunkSize is the target chunk length.
	DefaultChunkSize = 1000

	// DefaultOverlap is the overlap between adjacent chunks of one page.
	DefaultOverlap = 200
)

// DefaultSeparators orders separators widest scope first: fenced-code
// markers, paragraph breaks, sentence terminators (Latin and CJK), quote
// brackets, then spaces and newlines. The empty string hard-splits at
// character level when nothing else fits.
var DefaultSeparators = []string{
	"```Markdown",
	"```",
	"\n\n",
	".\n",
	". ",
	", ",
	"。",
	"、",
	"！",
	"？",
	"「",
	"」",
	"『",
	"』",
	" ",
	"\n",
	"",
}

// LengthFunc measures text against the chunk size budget.
type LengthFunc func(string) int

// Splitter chunks page texts.
type Splitter struct {
	chunkSize  int
	overlap    int
	separators []string
	length     LengthFunc
}

// Option configures a Splitter.
type Option func(*Splitter)

// WithSeparators replaces the separator cascade.
func WithSeparators(separators []string) Option {
	return func(s *Splitter) { s.separators = separators }
}

// WithLengthFunc replaces the rune-count length function, e.g. with a
// token counter.
func WithLengthFunc(fn LengthFunc) Option {
	return func(s *Splitter) { s.length = fn }
}

// New creates a splitter. Non-positive chunkSize or overlap select the
// defaults; overlap is clamped below chunkSize.
func New(chunkSize, overlap int, opts ...Option) *Splitter {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if overlap < 0 {
		overlap = DefaultOverlap
	}
	if overlap >= chunkSize {
		overlap = chunkSize / 2
	}
	s := &Splitter{
		chunkSize:  chunkSize,
		overlap:    overlap,
		separators: DefaultSeparators,
		length:     utf8.RuneCountInString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// fragment is a chunk-sized piece of one page's text.
type fragment struct {
	pageNo int
	text   string
}

// Split chunks the pages in order. ChunkNo is the running ordinal across
// the whole call.
func (s *Splitter) Split(pages []core.PageText) []core.Chunk {
	var fragments []fragment
	for _, page := range pages {
		for _, piece := range s.splitText(page.Text, s.separators) {
			// Whitespace-only pieces carry nothing worth indexing, but
			// pieces with content keep their original spacing.
			if strings.TrimSpace(piece) == "" {
				continue
			}
			fragments = append(fragments, fragment{pageNo: page.PageNo, text: piece})
		}
	}
	return s.pack(fragments)
}

// pack merges consecutive small fragments into one chunk when their
// combined length still fits the budget, letting short page tails ride
// along with the next page.
func (s *Splitter) pack(fragments []fragment) []core.Chunk {
	var chunks []core.Chunk

	var text string
	var start, end int
	flush := func() {
		if text == "" {
			return
		}
		chunks = append(chunks, core.Chunk{
			ChunkNo: strconv.Itoa(len(chunks)),
			Text:    text,
			Pages:   core.PageRange{StartPage: start, EndPage: end},
		})
		text = ""
	}

	for _, f := range fragments {
		if text != "" && s.length(text)+1+s.length(f.text) <= s.chunkSize {
			text += "\n" + f.text
			end = f.pageNo
			continue
		}
		flush()
		text = f.text
		start, end = f.pageNo, f.pageNo
	}
	flush()
	return chunks
}

// TableChunks wraps each table as exactly one chunk; tables never pass
// through the separator cascade.
func TableChunks(tables []core.TableText) []core.Chunk {
	chunks := make([]core.Chunk, 0, len(tables))
	for i, table := range tables {
		chunks = append(chunks, core.Chunk{
			ChunkNo: "whole" + strconv.Itoa(i),
			Text:    table.Text,
			Pages:   core.PageRange{StartPage: table.PageNo, EndPage: table.PageNo},
		})
	}
	return chunks
}

// splitText recursively splits text on the given separator cascade.
func (s *Splitter) splitText(text string, separators []string) []string {
	if s.length(text) <= s.chunkSize {
		return []string{text}
	}

	sep, rest := pickSeparator(text, separators)
	parts := splitOn(text, sep)

	var final []string
	var pending []string
	flush := func() {
		if len(pending) > 0 {
			final = append(final, s.merge(pending, sep)...)
			pending = nil
		}
	}

	for _, part := range parts {
		if s.length(part) <= s.chunkSize {
			pending = append(pending, part)
			continue
		}
		flush()
		if len(rest) == 0 {
			// Character-level split exhausted; keep the oversized piece.
			final = append(final, part)
			continue
		}
		final = append(final, s.splitText(part, rest)...)
	}
	flush()
	return final
}

// pickSeparator returns the first separator present in the text and the
// cascade remaining below it.
func pickSeparator(text string, separators []string) (string, []string) {
	for i, sep := range separators {
		if sep == "" || strings.Contains(text, sep) {
			return sep, separators[i+1:]
		}
	}
	return "", nil
}

// splitOn splits text on sep, keeping the separator attached to the
// preceding part so merged chunks reconstruct the original text. The empty
// separator splits into individual runes.
func splitOn(text, sep string) []string {
	if sep == "" {
		runes := []rune(text)
		parts := make([]string, len(runes))
		for i, r := range runes {
			parts[i] = string(r)
		}
		return parts
	}
	raw := strings.SplitAfter(text, sep)
	parts := raw[:0]
	for _, p := range raw {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}

// merge packs parts into chunks up to chunkSize, carrying overlap from the
// tail of each emitted chunk into the next.
func (s *Splitter) merge(parts []string, _ string) []string {
	var out []string
	var window []string
	total := 0

	for _, part := range parts {
		plen := s.length(part)
		if total+plen > s.chunkSize && total > 0 {
			out = append(out, strings.Join(window, ""))
			// Drop from the front until the retained tail fits the overlap.
			for total > s.overlap || (total+plen > s.chunkSize && total > 0) {
				total -= s.length(window[0])
				window = window[1:]
			}
		}
		window = append(window, part)
		total += plen
	}
	if len(window) > 0 {
		out = append(out, strings.Join(window, ""))
	}
	return out
}
