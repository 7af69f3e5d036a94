package analysis

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/sotoblanco/nftscope/internal/config"
	"github.com/sotoblanco/nftscope/internal/models"
	"github.com/sotoblanco/nftscope/internal/pipeline"
	"github.com/sotoblanco/nftscope/internal/repository"
)

// EventSource supplies raw OpenSea sale events.
type EventSource interface {
	FetchSaleEvents(ctx context.Context, contract string, limit int) ([]pipeline.RawRecord, error)
}

// TxSource supplies raw Etherscan transactions.
type TxSource interface {
	FetchTransactions(ctx context.Context, address string, limit int) ([]pipeline.RawRecord, error)
}

// PriceSource supplies the single current exchange rate for a run.
type PriceSource interface {
	GetETHPrice(ctx context.Context) (float64, error)
}

type SaleStore interface {
	RecordBatch(ctx context.Context, source string, sales []models.PricedSale) (int64, error)
}

type RunStore interface {
	Record(ctx context.Context, run *models.AnalysisRun) (*models.AnalysisRun, error)
	CheckSignificantShift(ctx context.Context, run *models.AnalysisRun, thresholdPercent float64) (*repository.ShiftAnalysis, error)
}

type Notifier interface {
	Send(msg string)
}

// Service drives one full analysis: fetch spot price, fetch raw batches from
// both providers, run each through the pipeline, persist and notify.
type Service struct {
	cfg    *config.Config
	events EventSource
	txs    TxSource
	prices PriceSource
	sales  SaleStore
	runs   RunStore
	notify Notifier

	mu       sync.Mutex
	running  bool
	lastRuns map[string]*models.AnalysisRun
}

func NewService(cfg *config.Config, events EventSource, txs TxSource, prices PriceSource,
	sales SaleStore, runs RunStore, notify Notifier) *Service {
	return &Service{
		cfg:      cfg,
		events:   events,
		txs:      txs,
		prices:   prices,
		sales:    sales,
		runs:     runs,
		notify:   notify,
		lastRuns: make(map[string]*models.AnalysisRun),
	}
}

// RunOnce executes one analysis over both providers. A source that yields no
// bucketable sales is logged and skipped; the other source still completes.
// Only infrastructure failures (spot price, storage) abort the run.
func (s *Service) RunOnce(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return errors.New("analysis already in progress")
	}
	s.running = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	spot, err := s.prices.GetETHPrice(ctx)
	if err != nil {
		return fmt.Errorf("fetch spot price: %w", err)
	}
	fmt.Printf("[ANALYSIS] Spot price: $%.2f per ETH\n", spot)

	pctx := &pipeline.Context{
		SpotPriceUSD:     spot,
		Currencies:       s.cfg.CurrencySet(),
		CurrencyDecimals: int32(s.cfg.CurrencyDecimals),
		Contract:         s.cfg.Contract(),
	}

	var firstErr error

	// OpenSea: per-record prices from the event payload.
	raws, err := s.events.FetchSaleEvents(ctx, s.cfg.ContractAddress, s.cfg.EventLimit)
	if err != nil {
		fmt.Printf("[ANALYSIS] OpenSea fetch failed: %v\n", err)
		firstErr = err
	} else if err := s.processBatch(ctx, pipeline.OpenSeaAdapter{}, raws, pctx); err != nil {
		firstErr = err
	}

	// Etherscan: uniform spot price from the context.
	raws, err = s.txs.FetchTransactions(ctx, s.cfg.ContractAddress, s.cfg.TxLimit)
	if err != nil {
		fmt.Printf("[ANALYSIS] Etherscan fetch failed: %v\n", err)
		if firstErr == nil {
			firstErr = err
		}
	} else if err := s.processBatch(ctx, pipeline.EtherscanAdapter{}, raws, pctx); err != nil {
		if firstErr == nil {
			firstErr = err
		}
	}

	return firstErr
}

func (s *Service) processBatch(ctx context.Context, adapter pipeline.Adapter, raws []pipeline.RawRecord, pctx *pipeline.Context) error {
	source := adapter.Name()

	res, err := pipeline.Run(adapter, raws, pctx, s.cfg.BandEdges)
	if err != nil {
		if errors.Is(err, pipeline.ErrEmptyInput) {
			fmt.Printf("[ANALYSIS] %s: no sales survived filtering (%d raw, %d skipped, %d invalid)\n",
				source, len(raws), res.Skipped, res.Invalid)
			return nil
		}
		return fmt.Errorf("%s pipeline: %w", source, err)
	}

	if _, err := s.sales.RecordBatch(ctx, source, res.Priced); err != nil {
		return fmt.Errorf("persist %s sales: %w", source, err)
	}

	median := medianPrice(res.Priced)
	run := &models.AnalysisRun{
		Timestamp:    time.Now(),
		Source:       source,
		Currency:     primaryCurrency(s.cfg.AllowedCurrencies),
		SpotPriceUSD: pctx.SpotPriceUSD,
		Fetched:      len(raws),
		Skipped:      res.Skipped,
		Invalid:      res.Invalid,
		Outliers:     res.Outliers,
		MedianUSD:    &median,
		Summary:      res.Summary,
	}

	shift, err := s.runs.CheckSignificantShift(ctx, run, s.cfg.ShiftThresholdPercent)
	if err != nil {
		fmt.Printf("[ANALYSIS] Warning: could not check distribution shift: %v\n", err)
	}

	recorded, err := s.runs.Record(ctx, run)
	if err != nil {
		return fmt.Errorf("persist %s run: %w", source, err)
	}

	s.mu.Lock()
	s.lastRuns[source] = recorded
	s.mu.Unlock()

	fmt.Printf("[ANALYSIS] %s: %d sales bucketed, median $%.2f (skipped %d, invalid %d, outliers %d)\n",
		source, res.Summary.Total, median, res.Skipped, res.Invalid, res.Outliers)

	if s.notify != nil && shift != nil && shift.HasShifted {
		s.notify.Send(fmt.Sprintf("%s distribution shifted: %s", source, shift.Reason))
	}

	return nil
}

// LastRun returns the most recent completed run for a source, or nil.
func (s *Service) LastRun(source string) *models.AnalysisRun {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastRuns[source]
}

func (s *Service) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func medianPrice(priced []models.PricedSale) float64 {
	if len(priced) == 0 {
		return 0
	}
	prices := make([]float64, len(priced))
	for i, p := range priced {
		prices[i] = p.PriceUSD
	}
	sort.Float64s(prices)
	mid := len(prices) / 2
	if len(prices)%2 == 0 {
		return (prices[mid-1] + prices[mid]) / 2
	}
	return prices[mid]
}

func primaryCurrency(allowed []string) string {
	if len(allowed) == 0 {
		return "Ether"
	}
	return allowed[0]
}
