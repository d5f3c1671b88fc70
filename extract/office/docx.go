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


// Package office extracts content from Word documents and workbooks.
//
// Modern documents (.docx) are ZIP archives parsed directly; legacy binary
// documents (.doc) are converted to the modern format by an external
// converter and then run through the same path. Word documents have no
// native pagination, so every text entry carries page 0.
package office

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/poiesic/indexit/core"
	"github.com/poiesic/indexit/extract"
)

// DocxExtractor extracts text, tables and embedded media from .docx files.
type DocxExtractor struct{}

// NewDocxExtractor creates a modern Word document extractor.
func NewDocxExtractor() *DocxExtractor {
	return &DocxExtractor{}
}

// Extract walks the document body preserving paragraph/table order. Tables
// are rendered to Markdown and both appended inline to the running text and
// emitted as standalone table entries. Embedded media relationships become
// images in encounter order.
func (e *DocxExtractor) Extract(_ context.Context, content []byte) (*extract.Result, error) {
	r, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, fmt.Errorf("open docx archive: %w", err)
	}

	body, err := readZipEntry(r, "word/document.xml")
	if err != nil {
		return nil, err
	}

	text, tables, err := parseDocumentBody(body)
	if err != nil {
		return nil, fmt.Errorf("parse word/document.xml: %w", err)
	}

	images, err := extractMedia(r)
	if err != nil {
		return nil, err
	}

	result := &extract.Result{
		Images:    images,
		PageCount: 1,
	}
	if text != "" {
		result.Texts = []core.PageText{{PageNo: 0, Text: text}}
	}
	for _, table := range tables {
		result.Tables = append(result.Tables, core.TableText{PageNo: 0, Text: table})
	}
	return result, nil
}

func readZipEntry(r *zip.Reader, name string) ([]byte, error) {
	for _, f := range r.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", name, err)
		}
		defer rc.Close()
		return io.ReadAll(rc)
	}
	return nil, fmt.Errorf("%s not found in archive", name)
}

// parseDocumentBody streams the body XML, accumulating paragraph text and
// converting tables to Markdown in the order they appear.
func parseDocumentBody(body []byte) (string, []string, error) {
	decoder := xml.NewDecoder(bytes.NewReader(body))

	var content strings.Builder
	var tables []string
	var paragraph strings.Builder
	inParagraph := false
	tableDepth := 0
	var tableRows [][]string
	var currentRow []string
	var currentCell strings.Builder

	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "tbl":
				tableDepth++
				if tableDepth == 1 {
					tableRows = nil
				}
			case "tr":
				if tableDepth == 1 {
					currentRow = nil
				}
			case "tc":
				if tableDepth == 1 {
					currentCell.Reset()
				}
			case "p":
				if tableDepth == 0 {
					inParagraph = true
					paragraph.Reset()
				}
			}

		case xml.CharData:
			switch {
			case tableDepth == 1:
				currentCell.Write(t)
			case inParagraph:
				paragraph.Write(t)
			}

		case xml.EndElement:
			switch t.Name.Local {
			case "tc":
				if tableDepth == 1 {
					currentRow = append(currentRow, normalizeCell(currentCell.String()))
				}
			case "tr":
				if tableDepth == 1 && len(currentRow) > 0 {
					tableRows = append(tableRows, currentRow)
				}
			case "tbl":
				tableDepth--
				if tableDepth == 0 && len(tableRows) > 0 {
					md := extract.MarkdownTable(tableRows)
					tables = append(tables, md)
					content.WriteString("\n")
					content.WriteString(md)
				}
			case "p":
				if tableDepth == 0 && inParagraph {
					inParagraph = false
					text := strings.TrimSpace(paragraph.String())
					if text != "" {
						content.WriteString("\n")
						content.WriteString(text)
					}
				}
			}
		}
	}

	return strings.TrimSpace(content.String()), tables, nil
}

// relationships mirrors word/_rels/document.xml.rels.
type relationships struct {
	Relationship []struct {
		Type   string `xml:"Type,attr"`
		Target string `xml:"Target,attr"`
	} `xml:"Relationship"`
}

// extractMedia returns embedded images in relationship encounter order.
func extractMedia(r *zip.Reader) ([]core.PageImage, error) {
	rels, err := readZipEntry(r, "word/_rels/document.xml.rels")
	if err != nil {
		// A document without relationships simply has no media.
		return nil, nil
	}

	var parsed relationships
	if err := xml.Unmarshal(rels, &parsed); err != nil {
		return nil, fmt.Errorf("parse document relationships: %w", err)
	}

	var images []core.PageImage
	for _, rel := range parsed.Relationship {
		if !strings.Contains(rel.Type, "/image") {
			continue
		}
		target := path.Join("word", rel.Target)
		payload, err := readZipEntry(r, target)
		if err != nil {
			continue
		}
		images = append(images, core.PageImage{
			PageNo:  0,
			ImageNo: len(images),
			Payload: payload,
		})
	}
	return images, nil
}

// normalizeCell collapses cell line breaks so each table row stays on one
// Markdown line.
func normalizeCell(cell string) string {
	lines := strings.Split(cell, "\n")
	var parts []string
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			parts = append(parts, line)
		}
	}
	return strings.Join(parts, " ")
}
