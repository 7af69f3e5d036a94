package models

// Band is one USD price interval of a distribution summary. The first band
// of a summary includes both bounds; every later band is (Lower, Upper].
type Band struct {
	Label    string  `json:"label"`
	LowerUSD float64 `json:"lowerUsd"`
	UpperUSD float64 `json:"upperUsd"`
	Count    int     `json:"count"`
	Percent  float64 `json:"percent"`
}

// BandSummary is the bucketed distribution of a batch of priced sales.
// Bands are always in ascending price order; display reordering is a
// renderer concern.
type BandSummary struct {
	Bands []Band `json:"bands"`
	Total int    `json:"total"`
}

// MaxCount returns the largest band count, used for scaling bar charts.
func (s *BandSummary) MaxCount() int {
	max := 0
	for _, b := range s.Bands {
		if b.Count > max {
			max = b.Count
		}
	}
	return max
}
