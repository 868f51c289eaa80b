package scoring

import (
	"context"
	"errors"
	"sort"
	"time"

	"golang.org/x/time/rate"

	"github.com/tradewind-io/tradewind/internal/contracts"
	"github.com/tradewind-io/tradewind/internal/regime"
	"github.com/tradewind-io/tradewind/pkg/logger"
)

// ResultStore persists a completed scoring pass
type ResultStore interface {
	SaveAnalysisResults(ctx context.Context, results []*contracts.AnalysisResult) error
	SaveRecommendationsSnapshot(ctx context.Context, set *contracts.RecommendationSet) error
}

// RunConfig controls one scoring pass
type RunConfig struct {
	UniverseType string
	MaxSymbols   int
	BatchSize    int
	LookbackDays int
}

// Runner executes a full scoring pass: resolve the universe, fetch data
// per symbol under rate limiting, score, sort, and persist.
type Runner struct {
	market       contracts.MarketDataProvider
	fundamentals contracts.FundamentalsProvider
	detector     *regime.Detector
	analyzer     *Analyzer
	universe     *UniverseBuilder
	store        ResultStore
	limiter      *rate.Limiter
	batchPause   time.Duration
	logger       *logger.Logger
}

// NewRunner wires a scoring runner. The limiter paces per-symbol data
// fetches; store may be nil to skip persistence.
func NewRunner(
	market contracts.MarketDataProvider,
	fundamentals contracts.FundamentalsProvider,
	detector *regime.Detector,
	analyzer *Analyzer,
	store ResultStore,
	limiter *rate.Limiter,
	log *logger.Logger,
) *Runner {
	return &Runner{
		market:       market,
		fundamentals: fundamentals,
		detector:     detector,
		analyzer:     analyzer,
		universe:     NewUniverseBuilder(market, log),
		store:        store,
		limiter:      limiter,
		batchPause:   2 * time.Second,
		logger:       log,
	}
}

// Run scores the configured universe and returns recommendations sorted
// descending by adjusted signal. Per-symbol failures are skipped, never
// fatal; persistence failures are.
func (r *Runner) Run(ctx context.Context, cfg RunConfig) (*contracts.RecommendationSet, error) {
	analysis, err := r.detector.Current(ctx)
	if err != nil {
		return nil, err
	}

	symbols, err := r.universe.Symbols(ctx, cfg.UniverseType, cfg.MaxSymbols)
	if err != nil {
		return nil, err
	}

	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 50
	}

	r.logger.WithFields(map[string]interface{}{
		"symbols": len(symbols),
		"batches": (len(symbols) + batchSize - 1) / batchSize,
		"regime":  analysis.Regime,
	}).Info("Starting scoring pass")

	results := make([]*contracts.AnalysisResult, 0, len(symbols))
	var skipped []string

	for start := 0; start < len(symbols); start += batchSize {
		end := start + batchSize
		if end > len(symbols) {
			end = len(symbols)
		}

		for _, symbol := range symbols[start:end] {
			if err := ctx.Err(); err != nil {
				return nil, err
			}

			result, err := r.scoreSymbol(ctx, symbol, cfg.LookbackDays, analysis)
			if err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return nil, err
				}
				r.logger.WithError(err).WithField("symbol", symbol).Warn("Skipping symbol")
				skipped = append(skipped, symbol)
				continue
			}
			results = append(results, result)
		}

		if end < len(symbols) && r.batchPause > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(r.batchPause):
			}
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].AdjustedSignal > results[j].AdjustedSignal
	})

	set := buildRecommendationSet(results)

	r.logger.WithFields(map[string]interface{}{
		"analyzed": set.TotalAnalyzed,
		"skipped":  len(skipped),
		"buys":     len(set.Buys),
		"sells":    len(set.Sells),
		"holds":    len(set.Holds),
	}).Info("Scoring pass complete")

	if r.store != nil {
		if err := r.store.SaveAnalysisResults(ctx, results); err != nil {
			return nil, err
		}
		if err := r.store.SaveRecommendationsSnapshot(ctx, set); err != nil {
			return nil, err
		}
	}

	return set, nil
}

// scoreSymbol fetches one symbol's data under the rate limiter and
// scores it. A partially resolved snapshot still scores, with the
// missing pieces neutral; a symbol with no fundamentals at all comes
// back as ErrFundamentalsUnresolved and is skipped by the caller.
func (r *Runner) scoreSymbol(
	ctx context.Context,
	symbol string,
	lookbackDays int,
	analysis *contracts.RegimeAnalysis,
) (*contracts.AnalysisResult, error) {
	if r.limiter != nil {
		if err := r.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	prices, err := r.market.GetPriceSeries(ctx, symbol, lookbackDays)
	if err != nil {
		return nil, err
	}

	fundamentals := r.fetchFundamentals(ctx, symbol)

	return r.analyzer.Analyze(ctx, symbol, prices, fundamentals, analysis)
}

func (r *Runner) fetchFundamentals(ctx context.Context, symbol string) *contracts.FundamentalsSnapshot {
	snapshot := &contracts.FundamentalsSnapshot{Symbol: symbol}

	overview, err := r.fundamentals.GetOverview(ctx, symbol)
	if err != nil {
		r.logger.WithError(err).WithField("symbol", symbol).Debug("No overview data")
	} else {
		snapshot.Overview = overview
	}

	balanceSheet, err := r.fundamentals.GetBalanceSheet(ctx, symbol)
	if err != nil {
		r.logger.WithError(err).WithField("symbol", symbol).Debug("No balance sheet data")
	} else {
		snapshot.BalanceSheet = balanceSheet
	}

	incomeStatement, err := r.fundamentals.GetIncomeStatement(ctx, symbol)
	if err != nil {
		r.logger.WithError(err).WithField("symbol", symbol).Debug("No income statement data")
	} else {
		snapshot.IncomeStatement = incomeStatement
	}

	return snapshot
}

// buildRecommendationSet splits sorted results into buy, sell, and hold
// lists, preserving order.
func buildRecommendationSet(results []*contracts.AnalysisResult) *contracts.RecommendationSet {
	set := &contracts.RecommendationSet{
		TotalAnalyzed: len(results),
		GeneratedAt:   time.Now(),
	}

	for _, result := range results {
		switch result.Recommendation {
		case contracts.RecommendationBuy:
			set.Buys = append(set.Buys, result)
		case contracts.RecommendationSell:
			set.Sells = append(set.Sells, result)
		default:
			set.Holds = append(set.Holds, result)
		}
	}

	return set
}
