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


package pdf

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"unicode/utf16"
)

// axisTolerance is the coordinate slack used when classifying path
// segments as horizontal or vertical and when grouping text runs into
// lines.
const axisTolerance = 2.0

// textRun is a positioned piece of shown text.
type textRun struct {
	X, Y float64
	Text string
}

// segment is a straight path segment in page space.
type segment struct {
	X0, Y0, X1, Y1 float64
}

// pageContent holds everything the classifier and the table detector need
// from a single page's content stream.
type pageContent struct {
	Runs   []textRun
	Curves int
	HLines []segment
	VLines []segment
}

// VerticalLineCount reports distinct vertical segments, the signal the
// infographic heuristic combines with curves and raster images.
func (p *pageContent) VerticalLineCount() int {
	return len(p.VLines)
}

// parseContent walks the content stream operator by operator, tracking the
// text position and the current path point. Operands are accumulated until
// an operator consumes them.
func parseContent(data []byte) *pageContent {
	page := &pageContent{}
	s := scanner{data: data}

	var nums []float64
	var strs []string
	reset := func() {
		nums = nums[:0]
		strs = strs[:0]
	}

	// Text state. Show operators do not advance the position; runs at the
	// same line origin are merged during assembly.
	var tx, ty, lineX, lineY, leading float64

	// Current path point.
	var px, py float64
	havePoint := false

	num := func(i int) float64 {
		if i < 0 || i >= len(nums) {
			return 0
		}
		return nums[i]
	}

	show := func() {
		text := strings.Join(strs, "")
		if text != "" {
			page.Runs = append(page.Runs, textRun{X: tx, Y: ty, Text: text})
		}
	}

	nextLine := func() {
		lineY -= leading
		tx, ty = lineX, lineY
	}

	for {
		tok, ok := s.next()
		if !ok {
			break
		}
		switch tok.kind {
		case tokNumber:
			nums = append(nums, tok.num)
			continue
		case tokString:
			strs = append(strs, tok.str)
			continue
		case tokName, tokArrayOpen, tokArrayClose:
			continue
		}

		// Operator.
		switch tok.str {
		case "BT":
			tx, ty, lineX, lineY, leading = 0, 0, 0, 0, 0
		case "Tm":
			tx, ty = num(len(nums)-2), num(len(nums)-1)
			lineX, lineY = tx, ty
		case "Td":
			lineX += num(len(nums) - 2)
			lineY += num(len(nums) - 1)
			tx, ty = lineX, lineY
		case "TD":
			leading = -num(len(nums) - 1)
			lineX += num(len(nums) - 2)
			lineY += num(len(nums) - 1)
			tx, ty = lineX, lineY
		case "TL":
			leading = num(len(nums) - 1)
		case "T*":
			nextLine()
		case "Tj", "TJ":
			show()
		case "'":
			nextLine()
			show()
		case "\"":
			nextLine()
			show()
		case "m":
			px, py = num(len(nums)-2), num(len(nums)-1)
			havePoint = true
		case "l":
			x, y := num(len(nums)-2), num(len(nums)-1)
			if havePoint {
				seg := segment{X0: px, Y0: py, X1: x, Y1: y}
				switch {
				case math.Abs(x-px) < axisTolerance:
					page.VLines = append(page.VLines, seg)
				case math.Abs(y-py) < axisTolerance:
					page.HLines = append(page.HLines, seg)
				}
			}
			px, py = x, y
			havePoint = true
		case "c", "v", "y":
			page.Curves++
			px, py = num(len(nums)-2), num(len(nums)-1)
			havePoint = true
		case "re":
			x, y := num(len(nums)-4), num(len(nums)-3)
			w, h := num(len(nums)-2), num(len(nums)-1)
			page.HLines = append(page.HLines,
				segment{X0: x, Y0: y, X1: x + w, Y1: y},
				segment{X0: x, Y0: y + h, X1: x + w, Y1: y + h})
			page.VLines = append(page.VLines,
				segment{X0: x, Y0: y, X1: x, Y1: y + h},
				segment{X0: x + w, Y0: y, X1: x + w, Y1: y + h})
		case "BI":
			s.skipInlineImage()
		}
		reset()
	}
	return page
}

// assembleText orders runs top-to-bottom, left-to-right, grouping runs at
// the same vertical position into one line.
func assembleText(runs []textRun) string {
	if len(runs) == 0 {
		return ""
	}
	sorted := make([]textRun, len(runs))
	copy(sorted, runs)
	sort.SliceStable(sorted, func(i, j int) bool {
		if math.Abs(sorted[i].Y-sorted[j].Y) >= axisTolerance {
			return sorted[i].Y > sorted[j].Y
		}
		return sorted[i].X < sorted[j].X
	})

	var b strings.Builder
	lineY := sorted[0].Y
	for i, run := range sorted {
		text := strings.TrimSpace(run.Text)
		if text == "" {
			continue
		}
		switch {
		case i == 0:
		case math.Abs(run.Y-lineY) < axisTolerance:
			b.WriteByte(' ')
		default:
			b.WriteByte('\n')
			lineY = run.Y
		}
		b.WriteString(text)
	}
	return strings.TrimSpace(b.String())
}

type tokenKind int

const (
	tokNumber tokenKind = iota
	tokString
	tokName
	tokOperator
	tokArrayOpen
	tokArrayClose
)

type token struct {
	kind tokenKind
	num  float64
	str  string
}

type scanner struct {
	data []byte
	pos  int
}

func isDelim(c byte) bool {
	switch c {
	case '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return true
	}
	return false
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\r', '\n', '\f', 0:
		return true
	}
	return false
}

func (s *scanner) next() (token, bool) {
	for s.pos < len(s.data) {
		c := s.data[s.pos]
		switch {
		case isSpace(c):
			s.pos++
		case c == '%':
			s.skipComment()
		case c == '(':
			s.pos++
			return token{kind: tokString, str: s.literalString()}, true
		case c == '<':
			if s.pos+1 < len(s.data) && s.data[s.pos+1] == '<' {
				s.skipDict()
				continue
			}
			s.pos++
			return token{kind: tokString, str: s.hexString()}, true
		case c == '[':
			s.pos++
			return token{kind: tokArrayOpen}, true
		case c == ']':
			s.pos++
			return token{kind: tokArrayClose}, true
		case c == '/':
			s.pos++
			return token{kind: tokName, str: s.regular()}, true
		case c == '+' || c == '-' || c == '.' || (c >= '0' && c <= '9'):
			word := s.regular()
			if n, err := strconv.ParseFloat(word, 64); err == nil {
				return token{kind: tokNumber, num: n}, true
			}
			return token{kind: tokOperator, str: word}, true
		case c == '{' || c == '}' || c == ')' || c == '>':
			s.pos++
		default:
			return token{kind: tokOperator, str: s.regular()}, true
		}
	}
	return token{}, false
}

func (s *scanner) skipComment() {
	for s.pos < len(s.data) && s.data[s.pos] != '\n' {
		s.pos++
	}
}

// regular consumes a run of non-delimiter, non-space bytes.
func (s *scanner) regular() string {
	start := s.pos
	for s.pos < len(s.data) && !isSpace(s.data[s.pos]) && !isDelim(s.data[s.pos]) {
		s.pos++
	}
	if s.pos == start {
		s.pos++
		return string(s.data[start:s.pos])
	}
	return string(s.data[start:s.pos])
}

// literalString consumes a ( ... ) string, honoring nesting and escapes.
// The opening parenthesis is already consumed.
func (s *scanner) literalString() string {
	var raw []byte
	depth := 1
	for s.pos < len(s.data) {
		c := s.data[s.pos]
		s.pos++
		switch c {
		case '\\':
			if s.pos < len(s.data) {
				raw = append(raw, c, s.data[s.pos])
				s.pos++
			}
		case '(':
			depth++
			raw = append(raw, c)
		case ')':
			depth--
			if depth == 0 {
				return decodeString(raw)
			}
			raw = append(raw, c)
		default:
			raw = append(raw, c)
		}
	}
	return decodeString(raw)
}

// hexString consumes a < ... > string. The opening bracket is already
// consumed.
func (s *scanner) hexString() string {
	var digits []byte
	for s.pos < len(s.data) {
		c := s.data[s.pos]
		s.pos++
		if c == '>' {
			break
		}
		if isHexDigit(c) {
			digits = append(digits, c)
		}
	}
	if len(digits)%2 == 1 {
		digits = append(digits, '0')
	}
	raw := make([]byte, 0, len(digits)/2)
	for i := 0; i+1 < len(digits); i += 2 {
		raw = append(raw, hexVal(digits[i])<<4|hexVal(digits[i+1]))
	}
	return decodeBytes(raw)
}

func (s *scanner) skipDict() {
	depth := 0
	for s.pos+1 < len(s.data) {
		if s.data[s.pos] == '<' && s.data[s.pos+1] == '<' {
			depth++
			s.pos += 2
			continue
		}
		if s.data[s.pos] == '>' && s.data[s.pos+1] == '>' {
			depth--
			s.pos += 2
			if depth == 0 {
				return
			}
			continue
		}
		s.pos++
	}
	s.pos = len(s.data)
}

// skipInlineImage advances past BI ... ID <binary> EI.
func (s *scanner) skipInlineImage() {
	for s.pos+1 < len(s.data) {
		if s.data[s.pos] == 'E' && s.data[s.pos+1] == 'I' &&
			(s.pos+2 == len(s.data) || isSpace(s.data[s.pos+2])) {
			s.pos += 2
			return
		}
		s.pos++
	}
	s.pos = len(s.data)
}

func isHexDigit(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func hexVal(c byte) byte {
	switch {
	case c >= '0' && c <= '9':
		return c - '0'
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10
	default:
		return c - 'A' + 10
	}
}

// decodeString resolves literal-string escape sequences, including octal
// escapes like \040.
func decodeString(raw []byte) string {
	var out []byte
	for i := 0; i < len(raw); i++ {
		if raw[i] != '\\' || i+1 >= len(raw) {
			out = append(out, raw[i])
			continue
		}
		i++
		switch raw[i] {
		case 'n':
			out = append(out, '\n')
		case 'r':
			out = append(out, '\r')
		case 't':
			out = append(out, '\t')
		case 'b':
			out = append(out, '\b')
		case 'f':
			out = append(out, '\f')
		case '\\', '(', ')':
			out = append(out, raw[i])
		default:
			if raw[i] >= '0' && raw[i] <= '7' {
				val := int(raw[i] - '0')
				for n := 0; n < 2 && i+1 < len(raw) && raw[i+1] >= '0' && raw[i+1] <= '7'; n++ {
					i++
					val = val*8 + int(raw[i]-'0')
				}
				out = append(out, byte(val))
			} else {
				out = append(out, raw[i])
			}
		}
	}
	return decodeBytes(out)
}

// decodeBytes interprets string bytes, unpacking UTF-16BE when the byte
// order mark is present.
func decodeBytes(raw []byte) string {
	if len(raw) >= 2 && raw[0] == 0xFE && raw[1] == 0xFF {
		raw = raw[2:]
		units := make([]uint16, 0, len(raw)/2)
		for i := 0; i+1 < len(raw); i += 2 {
			units = append(units, uint16(raw[i])<<8|uint16(raw[i+1]))
		}
		return string(utf16.Decode(units))
	}
	return string(raw)
}
