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


package office

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/poiesic/indexit/core"
	"github.com/poiesic/indexit/extract"
)

// XlsxExtractor extracts worksheet content from .xlsx workbooks. Each sheet
// becomes one Markdown table entry; the sheet title is prepended so chunks
// keep their worksheet context.
type XlsxExtractor struct{}

// NewXlsxExtractor creates a workbook extractor.
func NewXlsxExtractor() *XlsxExtractor {
	return &XlsxExtractor{}
}

type workbook struct {
	Sheets []struct {
		Name string `xml:"name,attr"`
		RID  string `xml:"http://schemas.openxmlformats.org/officeDocument/2006/relationships id,attr"`
	} `xml:"sheets>sheet"`
}

type sharedStrings struct {
	Items []struct {
		Text string   `xml:"t"`
		Runs []string `xml:"r>t"`
	} `xml:"si"`
}

type worksheet struct {
	Rows []struct {
		Cells []struct {
			Ref    string `xml:"r,attr"`
			Type   string `xml:"t,attr"`
			Value  string `xml:"v"`
			Inline string `xml:"is>t"`
		} `xml:"c"`
	} `xml:"sheetData>row"`
}

func (e *XlsxExtractor) Extract(_ context.Context, content []byte) (*extract.Result, error) {
	r, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, fmt.Errorf("open xlsx archive: %w", err)
	}

	wbData, err := readZipEntry(r, "xl/workbook.xml")
	if err != nil {
		return nil, err
	}
	var wb workbook
	if err := xml.Unmarshal(wbData, &wb); err != nil {
		return nil, fmt.Errorf("parse xl/workbook.xml: %w", err)
	}

	targets, err := sheetTargets(r)
	if err != nil {
		return nil, err
	}
	strs := loadSharedStrings(r)

	result := &extract.Result{PageCount: len(wb.Sheets)}
	for i, sheet := range wb.Sheets {
		target, ok := targets[sheet.RID]
		if !ok {
			continue
		}
		rows, err := readSheet(r, target, strs)
		if err != nil {
			return nil, fmt.Errorf("read sheet %q: %w", sheet.Name, err)
		}
		if len(rows) == 0 {
			continue
		}
		text := "## " + sheet.Name + "\n" + extract.MarkdownTable(rows)
		result.Tables = append(result.Tables, core.TableText{PageNo: i, Text: text})
	}
	return result, nil
}

func sheetTargets(r *zip.Reader) (map[string]string, error) {
	rels, err := readZipEntry(r, "xl/_rels/workbook.xml.rels")
	if err != nil {
		return nil, err
	}
	var parsed struct {
		Relationship []struct {
			ID     string `xml:"Id,attr"`
			Target string `xml:"Target,attr"`
		} `xml:"Relationship"`
	}
	if err := xml.Unmarshal(rels, &parsed); err != nil {
		return nil, fmt.Errorf("parse workbook relationships: %w", err)
	}
	targets := make(map[string]string, len(parsed.Relationship))
	for _, rel := range parsed.Relationship {
		targets[rel.ID] = "xl/" + strings.TrimPrefix(rel.Target, "/xl/")
	}
	return targets, nil
}

func loadSharedStrings(r *zip.Reader) []string {
	data, err := readZipEntry(r, "xl/sharedStrings.xml")
	if err != nil {
		return nil
	}
	var parsed sharedStrings
	if err := xml.Unmarshal(data, &parsed); err != nil {
		return nil
	}
	strs := make([]string, len(parsed.Items))
	for i, item := range parsed.Items {
		if item.Text != "" {
			strs[i] = item.Text
			continue
		}
		strs[i] = strings.Join(item.Runs, "")
	}
	return strs
}

func readSheet(r *zip.Reader, target string, strs []string) ([][]string, error) {
	data, err := readZipEntry(r, target)
	if err != nil {
		return nil, err
	}
	var ws worksheet
	if err := xml.Unmarshal(data, &ws); err != nil {
		return nil, err
	}

	var rows [][]string
	for _, row := range ws.Rows {
		var cells []string
		for _, cell := range row.Cells {
			// Preserve column position for sparse rows.
			col := columnIndex(cell.Ref)
			for len(cells) < col {
				cells = append(cells, "")
			}
			cells = append(cells, cellValue(cell.Type, cell.Value, cell.Inline, strs))
		}
		if rowHasContent(cells) {
			rows = append(rows, cells)
		}
	}
	return rows, nil
}

func cellValue(typ, value, inline string, strs []string) string {
	switch typ {
	case "s":
		idx := 0
		for _, c := range value {
			if c < '0' || c > '9' {
				return value
			}
			idx = idx*10 + int(c-'0')
		}
		if idx < len(strs) {
			return strs[idx]
		}
		return ""
	case "inlineStr":
		return inline
	default:
		return value
	}
}

// columnIndex decodes the column letters of a cell reference like "BC12"
// into a zero-based index.
func columnIndex(ref string) int {
	col := 0
	for _, c := range ref {
		if c < 'A' || c > 'Z' {
			break
		}
		col = col*26 + int(c-'A') + 1
	}
	if col == 0 {
		return 0
	}
	return col - 1
}

func rowHasContent(cells []string) bool {
	for _, cell := range cells {
		if strings.TrimSpace(cell) != "" {
			return true
		}
	}
	return false
}
