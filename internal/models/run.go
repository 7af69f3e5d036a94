package models

import "time"

// AnalysisRun is one persisted pipeline execution over a single source.
type AnalysisRun struct {
	ID           int64        `json:"id"`
	Timestamp    time.Time    `json:"timestamp"`
	AnalysisDay  string       `json:"analysisDay"`
	Source       string       `json:"source"` // "opensea" or "etherscan"
	Currency     string       `json:"currency"`
	SpotPriceUSD float64      `json:"spotPriceUsd"`
	Fetched      int          `json:"fetched"`
	Skipped      int          `json:"skipped"`
	Invalid      int          `json:"invalid"`
	Outliers     int          `json:"outliers"`
	MedianUSD    *float64     `json:"medianUsd,omitempty"`
	Summary      *BandSummary `json:"summary"`
	CreatedAt    time.Time    `json:"createdAt"`
}

// HasShiftedSignificantly reports whether the median sale price moved more
// than thresholdPercent relative to a previous run.
func (r *AnalysisRun) HasShiftedSignificantly(previous *AnalysisRun, thresholdPercent float64) bool {
	if previous == nil || previous.MedianUSD == nil || *previous.MedianUSD == 0 {
		return true
	}
	if r.MedianUSD == nil {
		return false
	}
	change := (*r.MedianUSD - *previous.MedianUSD) / *previous.MedianUSD * 100
	if change < 0 {
		change = -change
	}
	return change >= thresholdPercent
}
