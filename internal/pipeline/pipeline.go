package pipeline

import (
	"fmt"

	"github.com/sotoblanco/nftscope/internal/models"
)

// Result is the outcome of running one raw batch through the full
// adapt -> normalize -> filter -> bucket path.
type Result struct {
	Priced   []models.PricedSale
	Summary  *models.BandSummary
	Skipped  int
	Invalid  int
	Outliers int
}

// Run maps a raw batch through the adapter, normalizes the survivors,
// drops out-of-domain prices, and buckets the rest. Skipped and invalid
// records are counted, never fatal: a single bad record does not abort the
// batch. Run fails only on empty surviving input or bad edges.
func Run(adapter Adapter, raws []RawRecord, ctx *Context, edges []float64) (*Result, error) {
	if err := ValidateEdges(edges); err != nil {
		return nil, err
	}

	res := &Result{Priced: make([]models.PricedSale, 0, len(raws))}

	for _, raw := range raws {
		sale, err := adapter.Adapt(raw, ctx)
		if err != nil {
			if IsSkipped(err) {
				res.Skipped++
				continue
			}
			res.Invalid++
			continue
		}

		priced, err := Normalize(sale)
		if err != nil {
			res.Invalid++
			continue
		}
		res.Priced = append(res.Priced, *priced)
	}

	inRange, outliers := FilterInRange(res.Priced, edges)
	res.Outliers = outliers
	res.Priced = inRange

	summary, err := Bucket(res.Priced, edges)
	if err != nil {
		// Skip/invalid counts are still meaningful to the caller.
		return res, fmt.Errorf("bucket %s batch: %w", adapter.Name(), err)
	}
	res.Summary = summary

	return res, nil
}
