package report

import (
	"fmt"
	"strings"

	"github.com/sotoblanco/nftscope/internal/models"
)

const barWidth = 40

// RenderHistogram draws a horizontal bar per band, scaled to the largest
// count. Bands stay in ascending price order.
func RenderHistogram(summary *models.BandSummary, title string) string {
	if summary == nil || summary.Total == 0 {
		return "No sales to chart."
	}

	max := summary.MaxCount()

	var b strings.Builder
	b.WriteString("┌──────────────────────────────────────────────────────────────┐\n")
	fmt.Fprintf(&b, "│ %-60s │\n", title)
	b.WriteString("├──────────────────────────────────────────────────────────────┤\n")

	for _, band := range summary.Bands {
		width := 0
		if max > 0 {
			width = band.Count * barWidth / max
		}
		if band.Count > 0 && width == 0 {
			width = 1
		}
		bar := strings.Repeat("█", width)
		fmt.Fprintf(&b, "│ %-10s %-40s %4d (%5.1f%%) │\n", band.Label, bar, band.Count, band.Percent)
	}

	b.WriteString("├──────────────────────────────────────────────────────────────┤\n")
	fmt.Fprintf(&b, "│ %-60s │\n", fmt.Sprintf("Total: %d sales", summary.Total))
	b.WriteString("└──────────────────────────────────────────────────────────────┘")

	return b.String()
}

var waffleGlyphs = []rune{'■', '▣', '▨', '▧', '▦', '□', '▥', '▤'}

// RenderWaffle draws a 10x10 cell grid where each cell is one percent of
// the batch, with one glyph per band. Bands are laid out from the most
// expensive down, a display choice only: the summary itself stays ascending.
func RenderWaffle(summary *models.BandSummary, title string) string {
	if summary == nil || summary.Total == 0 {
		return "No sales to chart."
	}

	cells := waffleCells(summary)

	// Descending price order for display.
	order := make([]int, len(summary.Bands))
	for i := range order {
		order[i] = len(summary.Bands) - 1 - i
	}

	var glyphs []rune
	for _, idx := range order {
		g := waffleGlyphs[idx%len(waffleGlyphs)]
		for range cells[idx] {
			glyphs = append(glyphs, g)
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", title)
	for row := 0; row < 10; row++ {
		for col := 0; col < 10; col++ {
			i := row*10 + col
			if i < len(glyphs) {
				b.WriteRune(glyphs[i])
			} else {
				b.WriteRune('·')
			}
			b.WriteRune(' ')
		}
		b.WriteRune('\n')
	}

	b.WriteString("\nLegend (1 cell = 1%):\n")
	for _, idx := range order {
		band := summary.Bands[idx]
		if band.Count == 0 {
			continue
		}
		fmt.Fprintf(&b, "  %c  $%-12s %d sales (%.1f%%)\n",
			waffleGlyphs[idx%len(waffleGlyphs)], band.Label, band.Count, band.Percent)
	}

	return b.String()
}

// waffleCells apportions 100 cells across bands by largest remainder so the
// grid always fills exactly.
func waffleCells(summary *models.BandSummary) []int {
	n := len(summary.Bands)
	cells := make([]int, n)
	remainders := make([]float64, n)
	used := 0

	for i, band := range summary.Bands {
		exact := band.Percent
		cells[i] = int(exact)
		remainders[i] = exact - float64(cells[i])
		used += cells[i]
	}

	for used < 100 {
		best := -1
		for i := range remainders {
			if best == -1 || remainders[i] > remainders[best] {
				best = i
			}
		}
		cells[best]++
		remainders[best] = -1
		used++
	}

	return cells
}

// RenderSummaryLine is the one-line form used for webhook notifications.
func RenderSummaryLine(run *models.AnalysisRun) string {
	median := "n/a"
	if run.MedianUSD != nil {
		median = fmt.Sprintf("$%.2f", *run.MedianUSD)
	}
	top := topBand(run.Summary)
	return fmt.Sprintf("%s: %d sales bucketed (skipped %d, invalid %d, outliers %d) | median %s | most common band %s",
		run.Source, run.Summary.Total, run.Skipped, run.Invalid, run.Outliers, median, top)
}

func topBand(summary *models.BandSummary) string {
	if summary == nil || len(summary.Bands) == 0 {
		return "n/a"
	}
	best := summary.Bands[0]
	for _, b := range summary.Bands[1:] {
		if b.Count > best.Count {
			best = b
		}
	}
	return fmt.Sprintf("$%s (%d)", best.Label, best.Count)
}
