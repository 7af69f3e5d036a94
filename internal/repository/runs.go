package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sotoblanco/nftscope/internal/models"
)

type RunRepo struct {
	pool *pgxpool.Pool
}

func NewRunRepo(pool *pgxpool.Pool) *RunRepo {
	return &RunRepo{pool: pool}
}

func (r *RunRepo) Record(ctx context.Context, run *models.AnalysisRun) (*models.AnalysisRun, error) {
	ts := run.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	summaryJSON, err := json.Marshal(run.Summary)
	if err != nil {
		return nil, fmt.Errorf("marshal summary: %w", err)
	}

	row := r.pool.QueryRow(ctx,
		`INSERT INTO analysis_runs
		 (timestamp, analysis_day, source, currency, spot_price_usd,
		  fetched, skipped, invalid, outliers, median_usd, summary)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		 RETURNING *`,
		ts, AnalysisDay(ts), run.Source, run.Currency, run.SpotPriceUSD,
		run.Fetched, run.Skipped, run.Invalid, run.Outliers, run.MedianUSD, summaryJSON,
	)
	return scanRun(row)
}

// GetLatest returns the newest run, optionally filtered by source.
func (r *RunRepo) GetLatest(ctx context.Context, source string) (*models.AnalysisRun, error) {
	query := `SELECT * FROM analysis_runs WHERE 1=1`
	var args []any
	if source != "" {
		args = append(args, source)
		query += fmt.Sprintf(" AND source = $%d", len(args))
	}
	query += ` ORDER BY timestamp DESC LIMIT 1`

	run, err := scanRun(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if err.Error() == "no rows in result set" {
			return nil, nil
		}
		return nil, err
	}
	return run, nil
}

func (r *RunRepo) GetHistory(ctx context.Context, limit int) ([]models.AnalysisRun, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT * FROM analysis_runs ORDER BY timestamp DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRuns(rows)
}

func (r *RunRepo) NeedsRefresh(ctx context.Context, refreshHours int) (bool, error) {
	latest, err := r.GetLatest(ctx, "")
	if err != nil {
		return false, err
	}
	if latest == nil {
		return true, nil
	}
	return time.Since(latest.Timestamp) >= time.Duration(refreshHours)*time.Hour, nil
}

type ShiftAnalysis struct {
	HasShifted    bool                `json:"hasShifted"`
	ChangePercent *float64            `json:"changePercent"`
	Previous      *models.AnalysisRun `json:"previous"`
	Reason        string              `json:"reason"`
}

// CheckSignificantShift compares a new run's median price against the
// previous run for the same source.
func (r *RunRepo) CheckSignificantShift(ctx context.Context, newRun *models.AnalysisRun, thresholdPercent float64) (*ShiftAnalysis, error) {
	previous, err := r.GetLatest(ctx, newRun.Source)
	if err != nil {
		return nil, err
	}
	if previous == nil {
		return &ShiftAnalysis{HasShifted: true, Reason: "First analysis run"}, nil
	}
	if previous.MedianUSD == nil || *previous.MedianUSD == 0 || newRun.MedianUSD == nil {
		return &ShiftAnalysis{HasShifted: false, Previous: previous, Reason: "No median to compare"}, nil
	}

	pct := math.Abs((*newRun.MedianUSD - *previous.MedianUSD) / *previous.MedianUSD * 100)
	shifted := pct >= thresholdPercent

	reason := "Distribution stable"
	if shifted {
		reason = fmt.Sprintf("Median price moved %.2f%%", pct)
	}

	return &ShiftAnalysis{
		HasShifted:    shifted,
		ChangePercent: &pct,
		Previous:      previous,
		Reason:        reason,
	}, nil
}

// --- scan helpers ---

func scanRun(row scannable) (*models.AnalysisRun, error) {
	var run models.AnalysisRun
	var day time.Time
	var summaryJSON []byte
	err := row.Scan(
		&run.ID, &run.Timestamp, &day, &run.Source, &run.Currency, &run.SpotPriceUSD,
		&run.Fetched, &run.Skipped, &run.Invalid, &run.Outliers, &run.MedianUSD,
		&summaryJSON, &run.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	run.AnalysisDay = day.Format("2006-01-02")
	if len(summaryJSON) > 0 {
		if err := json.Unmarshal(summaryJSON, &run.Summary); err != nil {
			return nil, fmt.Errorf("unmarshal summary: %w", err)
		}
	}
	return &run, nil
}

func collectRuns(rows rowsIter) ([]models.AnalysisRun, error) {
	var out []models.AnalysisRun
	for rows.Next() {
		var run models.AnalysisRun
		var day time.Time
		var summaryJSON []byte
		if err := rows.Scan(
			&run.ID, &run.Timestamp, &day, &run.Source, &run.Currency, &run.SpotPriceUSD,
			&run.Fetched, &run.Skipped, &run.Invalid, &run.Outliers, &run.MedianUSD,
			&summaryJSON, &run.CreatedAt,
		); err != nil {
			return nil, err
		}
		run.AnalysisDay = day.Format("2006-01-02")
		if len(summaryJSON) > 0 {
			if err := json.Unmarshal(summaryJSON, &run.Summary); err != nil {
				return nil, fmt.Errorf("unmarshal summary: %w", err)
			}
		}
		out = append(out, run)
	}
	return out, rows.Err()
}
