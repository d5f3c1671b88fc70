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


// Package detect classifies raw file content into a format tag using byte
// signatures, ZIP container inspection and text heuristics, in that order.
// Detection never fails: content that matches no check is FileTypeUnknown.
package detect

import (
	"archive/zip"
	"bytes"
	"strings"
	"unicode"
	"unicode/utf8"

	textencoding "golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// FileType is a detected document format.
type FileType string

const (
	FileTypePDF     FileType = "pdf"
	FileTypeDoc     FileType = "doc"
	FileTypeDocx    FileType = "docx"
	FileTypeXlsx    FileType = "xlsx"
	FileTypeJPG     FileType = "jpg"
	FileTypePNG     FileType = "png"
	FileTypeCSV     FileType = "csv"
	FileTypeTxt     FileType = "txt"
	FileTypeUnknown FileType = "unknown"
)

// minSignatureLen is the shortest buffer any check can classify.
const minSignatureLen = 4

var (
	sigPDF  = []byte("%PDF-")
	sigJPEG = []byte{0xFF, 0xD8, 0xFF}
	sigPNG  = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}
	sigOLE  = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}
	sigZIP  = []byte("PK\x03\x04")
)

// printableThreshold is the minimum ratio of printable runes for content to
// be treated as text.
const printableThreshold = 0.85

// Detect classifies content. Checks run cheapest and least ambiguous first:
// fixed binary signatures, then container inspection, then text heuristics.
// Any check that fails to decode degrades to the next one.
func Detect(content []byte) FileType {
	if len(content) < minSignatureLen {
		return FileTypeUnknown
	}

	switch {
	case bytes.HasPrefix(content, sigPDF):
		return FileTypePDF
	case bytes.HasPrefix(content, sigJPEG):
		return FileTypeJPG
	case bytes.HasPrefix(content, sigPNG):
		return FileTypePNG
	case bytes.HasPrefix(content, sigOLE):
		return FileTypeDoc
	case bytes.HasPrefix(content, sigZIP):
		if t := detectZipContainer(content); t != FileTypeUnknown {
			return t
		}
	}

	return detectText(content)
}

// detectZipContainer lists a ZIP archive and identifies Office formats by
// their internal manifest path.
func detectZipContainer(content []byte) FileType {
	r, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return FileTypeUnknown
	}
	for _, f := range r.File {
		switch f.Name {
		case "word/document.xml":
			return FileTypeDocx
		case "xl/workbook.xml":
			return FileTypeXlsx
		}
	}
	return FileTypeUnknown
}

// detectText decodes content as text (honoring a UTF-8/UTF-16 BOM when
// present) and applies printable-ratio and delimiter heuristics. This is the
// most speculative check and therefore runs last.
func detectText(content []byte) FileType {
	decoder := textencoding.BOMOverride(textencoding.UTF8.NewDecoder())
	decoded, _, err := transform.Bytes(decoder, content)
	if err != nil || !utf8.Valid(decoded) {
		return FileTypeUnknown
	}

	text := string(decoded)
	if printableRatio(text) < printableThreshold {
		return FileTypeUnknown
	}

	if looksLikeCSV(text) {
		return FileTypeCSV
	}
	return FileTypeTxt
}

// printableRatio returns the fraction of runes that are printable or
// ordinary whitespace.
func printableRatio(text string) float64 {
	if text == "" {
		return 0
	}
	total, printable := 0, 0
	for _, r := range text {
		total++
		if r == 0xFFFD {
			continue
		}
		if unicode.IsPrint(r) || r == '\n' || r == '\r' || r == '\t' {
			printable++
		}
	}
	return float64(printable) / float64(total)
}

// looksLikeCSV reports whether the first few lines share a consistent,
// non-zero comma count.
func looksLikeCSV(text string) bool {
	lines := strings.Split(text, "\n")
	sampled := 0
	commas := -1
	for _, line := range lines {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		n := strings.Count(line, ",")
		if n == 0 {
			return false
		}
		if commas == -1 {
			commas = n
		} else if n != commas {
			return false
		}
		sampled++
		if sampled == 10 {
			break
		}
	}
	return sampled >= 2
}
