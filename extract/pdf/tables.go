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
	"strings"

	"github.com/poiesic/indexit/extract"
)

// gridTolerance merges ruling lines whose coordinates differ by less than
// this many points into a single boundary.
const gridTolerance = 3.0

// detectTable looks for a ruled grid on the page and reconstructs it as a
// Markdown table. Returns "" when no grid with at least two data rows is
// found; single-row grids are usually decorative boxes, not tables.
func detectTable(page *pageContent) string {
	xs := clusterCoords(vlineXs(page.VLines))
	ys := clusterCoords(hlineYs(page.HLines))

	cols := len(xs) - 1
	rows := len(ys) - 1
	if cols < 1 || rows < 2 {
		return ""
	}

	// ys ascending; rows are numbered top-to-bottom.
	cells := make([][][]textRun, rows)
	for r := range cells {
		cells[r] = make([][]textRun, cols)
	}

	assigned := false
	for _, run := range page.Runs {
		col := boundaryIndex(xs, run.X)
		row := boundaryIndex(ys, run.Y)
		if col < 0 || row < 0 {
			continue
		}
		r := rows - 1 - row
		cells[r][col] = append(cells[r][col], run)
		assigned = true
	}
	if !assigned {
		return ""
	}

	table := make([][]string, rows)
	for r := range cells {
		table[r] = make([]string, cols)
		for c := range cells[r] {
			table[r][c] = cellText(cells[r][c])
		}
	}
	return extract.MarkdownTable(table)
}

func vlineXs(segs []segment) []float64 {
	xs := make([]float64, 0, len(segs))
	for _, s := range segs {
		xs = append(xs, (s.X0+s.X1)/2)
	}
	return xs
}

func hlineYs(segs []segment) []float64 {
	ys := make([]float64, 0, len(segs))
	for _, s := range segs {
		ys = append(ys, (s.Y0+s.Y1)/2)
	}
	return ys
}

// clusterCoords sorts coordinates and merges near-equal ones, returning
// ascending cluster centers.
func clusterCoords(coords []float64) []float64 {
	if len(coords) == 0 {
		return nil
	}
	sort.Float64s(coords)

	var centers []float64
	start := 0
	for i := 1; i <= len(coords); i++ {
		if i < len(coords) && coords[i]-coords[i-1] < gridTolerance {
			continue
		}
		sum := 0.0
		for _, c := range coords[start:i] {
			sum += c
		}
		centers = append(centers, sum/float64(i-start))
		start = i
	}
	return centers
}

// boundaryIndex returns the interval index of v within ascending
// boundaries, or -1 when v lies outside the grid.
func boundaryIndex(boundaries []float64, v float64) int {
	for i := 0; i+1 < len(boundaries); i++ {
		if v >= boundaries[i] && v < boundaries[i+1] {
			return i
		}
	}
	return -1
}

func cellText(runs []textRun) string {
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
	parts := make([]string, 0, len(sorted))
	for _, run := range sorted {
		text := strings.TrimSpace(run.Text)
		if text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, " ")
}
