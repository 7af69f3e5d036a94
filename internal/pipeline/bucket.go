package pipeline

import (
	"fmt"

	"github.com/sotoblanco/nftscope/internal/models"
)

// DefaultBandEdges are the fixed USD boundaries used when no edges are
// configured: [0,10], (10,100], (100,1000], ... (100000,1000000].
var DefaultBandEdges = []float64{0, 10, 100, 1000, 10000, 100000, 1000000}

// ValidateEdges checks that edges describe at least one band and ascend.
func ValidateEdges(edges []float64) error {
	if len(edges) < 2 {
		return &InvalidRecordError{Field: "bandEdges", Reason: "need at least two edges"}
	}
	for i := 1; i < len(edges); i++ {
		if edges[i] <= edges[i-1] {
			return &InvalidRecordError{
				Field:  "bandEdges",
				Reason: fmt.Sprintf("not ascending at index %d (%g <= %g)", i, edges[i], edges[i-1]),
			}
		}
	}
	return nil
}

// FilterInRange splits priced sales into those inside [edges[0], edges[last]]
// and counts the rest. Out-of-domain prices never silently land in an edge
// band; callers log the outlier count and bucket the remainder.
func FilterInRange(priced []models.PricedSale, edges []float64) (inRange []models.PricedSale, outliers int) {
	if len(edges) < 2 {
		return nil, len(priced)
	}
	lo, hi := edges[0], edges[len(edges)-1]
	inRange = make([]models.PricedSale, 0, len(priced))
	for _, p := range priced {
		if p.PriceUSD < lo || p.PriceUSD > hi {
			outliers++
			continue
		}
		inRange = append(inRange, p)
	}
	return inRange, outliers
}

// Bucket classifies priced sales into the bands defined by edges and
// computes per-band counts and percentages.
//
// The first band includes both of its bounds; every later band is
// (lower, upper], so a price exactly on an interior edge belongs to the
// band below it (price 10 lands in "0-10", not "10-100").
//
// An empty batch fails with ErrEmptyInput. Prices outside
// [edges[0], edges[last]] must be removed first (FilterInRange): finding one
// here is a contract violation, reported as an InvalidRecordError.
func Bucket(priced []models.PricedSale, edges []float64) (*models.BandSummary, error) {
	if err := ValidateEdges(edges); err != nil {
		return nil, err
	}
	if len(priced) == 0 {
		return nil, ErrEmptyInput
	}

	bands := make([]models.Band, len(edges)-1)
	for i := range bands {
		bands[i] = models.Band{
			Label:    bandLabel(edges[i], edges[i+1]),
			LowerUSD: edges[i],
			UpperUSD: edges[i+1],
		}
	}

	for _, p := range priced {
		idx := bandIndex(p.PriceUSD, edges)
		if idx < 0 {
			return nil, &InvalidRecordError{
				Field:  "priceUsd",
				Reason: fmt.Sprintf("%g outside band domain [%g, %g]", p.PriceUSD, edges[0], edges[len(edges)-1]),
			}
		}
		bands[idx].Count++
	}

	total := len(priced)
	for i := range bands {
		bands[i].Percent = float64(bands[i].Count) / float64(total) * 100
	}

	return &models.BandSummary{Bands: bands, Total: total}, nil
}

// bandIndex returns the band a price falls in, or -1 when out of domain.
// Lowest boundary inclusive; interior edges belong to the lower band.
func bandIndex(price float64, edges []float64) int {
	if price < edges[0] || price > edges[len(edges)-1] {
		return -1
	}
	if price <= edges[1] {
		return 0
	}
	for i := 1; i < len(edges)-1; i++ {
		if price > edges[i] && price <= edges[i+1] {
			return i
		}
	}
	return -1
}

func bandLabel(lower, upper float64) string {
	return fmt.Sprintf("%s-%s", formatEdge(lower), formatEdge(upper))
}

// formatEdge renders band boundaries the way the reports label them:
// whole numbers compact, with k/M shorthand above 1000.
func formatEdge(v float64) string {
	switch {
	case v >= 1_000_000 && v == float64(int64(v)) && int64(v)%1_000_000 == 0:
		return fmt.Sprintf("%dM", int64(v)/1_000_000)
	case v >= 1_000 && v == float64(int64(v)) && int64(v)%1_000 == 0:
		return fmt.Sprintf("%dk", int64(v)/1_000)
	case v == float64(int64(v)):
		return fmt.Sprintf("%d", int64(v))
	default:
		return fmt.Sprintf("%g", v)
	}
}
