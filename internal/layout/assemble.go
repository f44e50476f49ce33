// Package layout groups the layout backend's raw word tokens into ordered
// text lines, and exposes explicit table grids when the backend supplied one.
package layout

import (
	"sort"
	"strings"

	"github.com/insightdelivered/statement-extractor/internal/models"
)

// VerticalTolerance is how far a word's vertical midpoint may sit from the
// running cluster midpoint and still join the same line.
const VerticalTolerance = 3.0

// Line is an ordered run of words sharing a vertical band.
type Line struct {
	Words []models.WordToken
}

// Text joins the line's word texts with single spaces.
func (l Line) Text() string {
	parts := make([]string, len(l.Words))
	for i, w := range l.Words {
		parts[i] = w.Text
	}
	return strings.Join(parts, " ")
}

// Lines clusters words into text lines. Words are grouped while their
// vertical midpoints stay within VerticalTolerance of the cluster midpoint,
// which is updated incrementally as the average of itself and each joining
// word. Lines come out top-to-bottom, words left-to-right. A blank page
// yields no lines.
func Lines(words []models.WordToken) []Line {
	if len(words) == 0 {
		return nil
	}

	sorted := make([]models.WordToken, len(words))
	copy(sorted, words)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].YCenter() != sorted[j].YCenter() {
			return sorted[i].YCenter() < sorted[j].YCenter()
		}
		return sorted[i].Left < sorted[j].Left
	})

	var lines []Line
	var current []models.WordToken
	var mid float64

	for _, w := range sorted {
		wm := w.YCenter()
		if current == nil {
			current = []models.WordToken{w}
			mid = wm
			continue
		}
		if abs(wm-mid) <= VerticalTolerance {
			current = append(current, w)
			mid = (mid + wm) / 2
			continue
		}
		lines = append(lines, finishLine(current))
		current = []models.WordToken{w}
		mid = wm
	}
	if current != nil {
		lines = append(lines, finishLine(current))
	}

	return lines
}

func finishLine(words []models.WordToken) Line {
	sort.SliceStable(words, func(i, j int) bool {
		return words[i].Left < words[j].Left
	})
	return Line{Words: words}
}

// TableRows flattens the page's explicit table grids into one row sequence,
// grid order preserved. Nil when the backend supplied no grid.
func TableRows(page models.Page) [][]string {
	var rows [][]string
	for _, table := range page.Tables {
		rows = append(rows, table...)
	}
	return rows
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
