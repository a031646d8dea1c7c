// SPDX-License-Identifier: Apache-2.0

package convert

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
)

const (
	// rowTolerance is the vertical distance, in points, within which glyphs
	// belong to the same rendered line.
	rowTolerance = 2.0
	// wordGapFactor times the font size is the horizontal gap that
	// separates two words.
	wordGapFactor = 0.2
)

// extractPDF reads every page and rebuilds rendered lines from glyph
// positions, keeping the largest font size seen on each line.
func extractPDF(ctx context.Context, path string) ([]Line, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		if f != nil {
			f.Close()
		}
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	var lines []Line
	for i := 1; i <= r.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		lines = append(lines, pageLines(page.Content().Text)...)
	}
	return lines, nil
}

// pageLines groups glyphs into rows, top of the page first, and joins each
// row left to right.
func pageLines(texts []pdf.Text) []Line {
	glyphs := make([]pdf.Text, 0, len(texts))
	for _, t := range texts {
		if t.S != "" && t.S != "\n" {
			glyphs = append(glyphs, t)
		}
	}
	if len(glyphs) == 0 {
		return nil
	}

	sort.SliceStable(glyphs, func(i, j int) bool { return glyphs[i].Y > glyphs[j].Y })

	var out []Line
	start := 0
	for i := 1; i <= len(glyphs); i++ {
		if i < len(glyphs) && math.Abs(glyphs[i].Y-glyphs[start].Y) <= rowTolerance {
			continue
		}
		out = append(out, rowLine(glyphs[start:i]))
		start = i
	}
	return out
}

func rowLine(row []pdf.Text) Line {
	sort.SliceStable(row, func(i, j int) bool { return row[i].X < row[j].X })

	var sb strings.Builder
	size := 0.0
	for i, t := range row {
		if i > 0 {
			prev := row[i-1]
			gap := t.X - (prev.X + prev.W)
			if gap > wordGapFactor*math.Max(t.FontSize, 1) && !strings.HasSuffix(prev.S, " ") && !strings.HasPrefix(t.S, " ") {
				sb.WriteByte(' ')
			}
		}
		sb.WriteString(t.S)
		size = math.Max(size, t.FontSize)
	}
	return Line{Text: sb.String(), FontSize: size}
}
