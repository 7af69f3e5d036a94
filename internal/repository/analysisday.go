package repository

import "time"

// AnalysisDay returns the UTC calendar day (YYYY-MM-DD) for a timestamp.
// Runs are grouped by plain UTC date; sale markets have no session cutoff.
func AnalysisDay(ts time.Time) string {
	return ts.UTC().Format("2006-01-02")
}

// AnalysisDayNow returns the analysis day for the current moment.
func AnalysisDayNow() string {
	return AnalysisDay(time.Now())
}
