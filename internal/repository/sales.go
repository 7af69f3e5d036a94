package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sotoblanco/nftscope/internal/models"
)

// SaleRecord is one persisted normalized sale price.
type SaleRecord struct {
	ID          int64     `json:"id"`
	Timestamp   time.Time `json:"timestamp"`
	AnalysisDay string    `json:"analysisDay"`
	Source      string    `json:"source"`
	PriceUSD    float64   `json:"priceUsd"`
	CreatedAt   time.Time `json:"createdAt"`
}

type SaleRepo struct {
	pool *pgxpool.Pool
}

func NewSaleRepo(pool *pgxpool.Pool) *SaleRepo {
	return &SaleRepo{pool: pool}
}

// RecordBatch bulk-inserts one run's priced sales via COPY.
func (r *SaleRepo) RecordBatch(ctx context.Context, source string, sales []models.PricedSale) (int64, error) {
	if len(sales) == 0 {
		return 0, nil
	}
	rows := make([][]any, len(sales))
	for i, s := range sales {
		rows[i] = []any{s.Timestamp, AnalysisDay(s.Timestamp), source, s.PriceUSD}
	}
	return r.pool.CopyFrom(ctx,
		pgx.Identifier{"sale_history"},
		[]string{"timestamp", "analysis_day", "source", "price_usd"},
		pgx.CopyFromRows(rows),
	)
}

// GetByDay returns sales for one analysis day.
// If source is non-empty, filters to that provider.
func (r *SaleRepo) GetByDay(ctx context.Context, day, source string) ([]SaleRecord, error) {
	query := `SELECT * FROM sale_history WHERE analysis_day = $1`
	args := []any{day}
	if source != "" {
		query += ` AND source = $2`
		args = append(args, source)
	}
	query += ` ORDER BY timestamp ASC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectSales(rows)
}

func (r *SaleRepo) GetAvailableDays(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT DISTINCT analysis_day FROM sale_history ORDER BY analysis_day DESC LIMIT 60`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var days []string
	for rows.Next() {
		var d time.Time
		if err := rows.Scan(&d); err != nil {
			return nil, err
		}
		days = append(days, d.Format("2006-01-02"))
	}
	return days, rows.Err()
}

func (r *SaleRepo) GetLatest(ctx context.Context) (*SaleRecord, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT * FROM sale_history ORDER BY timestamp DESC LIMIT 1`,
	)
	s, err := scanSale(row)
	if err != nil {
		if err.Error() == "no rows in result set" {
			return nil, nil
		}
		return nil, err
	}
	return s, nil
}

// --- scan helpers ---

type scannable interface {
	Scan(dest ...any) error
}

type rowsIter interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanSale(row scannable) (*SaleRecord, error) {
	var s SaleRecord
	var day time.Time
	err := row.Scan(&s.ID, &s.Timestamp, &day, &s.Source, &s.PriceUSD, &s.CreatedAt)
	if err != nil {
		return nil, err
	}
	s.AnalysisDay = day.Format("2006-01-02")
	return &s, nil
}

func collectSales(rows rowsIter) ([]SaleRecord, error) {
	var out []SaleRecord
	for rows.Next() {
		var s SaleRecord
		var day time.Time
		if err := rows.Scan(&s.ID, &s.Timestamp, &day, &s.Source, &s.PriceUSD, &s.CreatedAt); err != nil {
			return nil, err
		}
		s.AnalysisDay = day.Format("2006-01-02")
		out = append(out, s)
	}
	return out, rows.Err()
}
