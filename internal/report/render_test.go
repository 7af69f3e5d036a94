package report

import (
	"strings"
	"testing"
	"time"

	"github.com/sotoblanco/nftscope/internal/models"
	"github.com/sotoblanco/nftscope/internal/pipeline"
)

func sampleSummary(t *testing.T) *models.BandSummary {
	t.Helper()
	ts := time.Now()
	var batch []models.PricedSale
	for _, p := range []float64{5, 5, 50, 500, 500, 500, 5000, 85000} {
		batch = append(batch, models.PricedSale{PriceUSD: p, Timestamp: ts})
	}
	summary, err := pipeline.Bucket(batch, pipeline.DefaultBandEdges)
	if err != nil {
		t.Fatalf("Bucket: %v", err)
	}
	return summary
}

func TestRenderHistogram(t *testing.T) {
	out := RenderHistogram(sampleSummary(t), "Sale price distribution (USD)")
	if out == "" {
		t.Fatal("expected non-empty histogram")
	}
	if !strings.Contains(out, "Total: 8 sales") {
		t.Fatalf("missing total line:\n%s", out)
	}
	if !strings.Contains(out, "█") {
		t.Fatal("expected at least one bar")
	}
	t.Logf("\n%s", out)
}

func TestRenderHistogram_Empty(t *testing.T) {
	if out := RenderHistogram(nil, "x"); out != "No sales to chart." {
		t.Fatalf("unexpected empty rendering: %s", out)
	}
}

func TestRenderWaffle(t *testing.T) {
	out := RenderWaffle(sampleSummary(t), "Price bands")
	if out == "" {
		t.Fatal("expected non-empty waffle")
	}

	// 10 grid rows plus title and legend.
	lines := strings.Split(out, "\n")
	if len(lines) < 12 {
		t.Fatalf("expected title + 10 rows + legend, got %d lines", len(lines))
	}

	// Exactly 100 cells, no filler left over for a full summary.
	filled := strings.Count(out, "■") + strings.Count(out, "▣") +
		strings.Count(out, "▨") + strings.Count(out, "▧") +
		strings.Count(out, "▦") + strings.Count(out, "□")
	legendGlyphs := 5 // five non-empty bands appear once each in the legend
	if filled-legendGlyphs != 100 {
		t.Fatalf("expected 100 grid cells, got %d", filled-legendGlyphs)
	}
	t.Logf("\n%s", out)
}

func TestWaffleCells_SumTo100(t *testing.T) {
	cells := waffleCells(sampleSummary(t))
	sum := 0
	for _, c := range cells {
		sum += c
	}
	if sum != 100 {
		t.Fatalf("cells sum to %d, want 100", sum)
	}
}

func TestRenderSummaryLine(t *testing.T) {
	median := 500.0
	run := &models.AnalysisRun{
		Source:    "opensea",
		Skipped:   2,
		Invalid:   1,
		Outliers:  1,
		MedianUSD: &median,
		Summary:   sampleSummary(t),
	}

	line := RenderSummaryLine(run)
	if !strings.Contains(line, "opensea") || !strings.Contains(line, "$500.00") {
		t.Fatalf("unexpected summary line: %s", line)
	}
	if !strings.Contains(line, "8 sales") {
		t.Fatalf("missing total: %s", line)
	}
	t.Logf("%s", line)
}
