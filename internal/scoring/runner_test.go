package scoring

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/tradewind-io/tradewind/internal/contracts"
	"github.com/tradewind-io/tradewind/internal/regime"
	"github.com/tradewind-io/tradewind/pkg/logger"
	"github.com/tradewind-io/tradewind/pkg/redis"
)

type fakeFundamentals struct {
	snapshots map[string]*contracts.FundamentalsSnapshot
}

func (f *fakeFundamentals) GetOverview(ctx context.Context, symbol string) (*contracts.Overview, error) {
	if s, ok := f.snapshots[symbol]; ok && s.Overview != nil {
		return s.Overview, nil
	}
	return nil, errors.New("no overview")
}

func (f *fakeFundamentals) GetBalanceSheet(ctx context.Context, symbol string) ([]contracts.QuarterlyReport, error) {
	if s, ok := f.snapshots[symbol]; ok && s.BalanceSheet != nil {
		return s.BalanceSheet, nil
	}
	return nil, errors.New("no balance sheet")
}

func (f *fakeFundamentals) GetIncomeStatement(ctx context.Context, symbol string) ([]contracts.QuarterlyReport, error) {
	if s, ok := f.snapshots[symbol]; ok && s.IncomeStatement != nil {
		return s.IncomeStatement, nil
	}
	return nil, errors.New("no income statement")
}

type fakeRegimeInputs struct{}

func (fakeRegimeInputs) GetRegimeInputs(ctx context.Context) (*contracts.RegimeInputs, error) {
	return &contracts.RegimeInputs{}, nil
}

type fakeStore struct {
	results   []*contracts.AnalysisResult
	snapshots []*contracts.RecommendationSet
	err       error
}

func (f *fakeStore) SaveAnalysisResults(ctx context.Context, results []*contracts.AnalysisResult) error {
	if f.err != nil {
		return f.err
	}
	f.results = append(f.results, results...)
	return nil
}

func (f *fakeStore) SaveRecommendationsSnapshot(ctx context.Context, set *contracts.RecommendationSet) error {
	if f.err != nil {
		return f.err
	}
	f.snapshots = append(f.snapshots, set)
	return nil
}

func newTestRunner(market contracts.MarketDataProvider, fundamentals contracts.FundamentalsProvider, store ResultStore) *Runner {
	log := logger.NewWithWriter(io.Discard, "test")
	detector := regime.NewDetector(fakeRegimeInputs{}, redis.NewCache(redis.Disabled(), "test"), log)
	analyzer := NewAnalyzer(permissiveStrategy(), log)

	runner := NewRunner(market, fundamentals, detector, analyzer, store, rate.NewLimiter(rate.Inf, 1), log)
	runner.batchPause = 0
	return runner
}

func TestRunner_Run(t *testing.T) {
	market := &fakeMarket{
		series: map[string]contracts.PriceSeries{
			"GOOD":  flatSeries(60, 100),
			"WEAK":  flatSeries(60, 50),
			"SHORT": flatSeries(10, 100), // too little history
		},
		seriesErr: map[string]error{"DOWN": errors.New("feed error")},
	}
	fundamentals := &fakeFundamentals{snapshots: map[string]*contracts.FundamentalsSnapshot{
		"GOOD": strongFundamentals("GOOD"),
		"WEAK": weakFundamentals("WEAK"),
	}}
	store := &fakeStore{}

	runner := newTestRunner(market, fundamentals, store)

	// Feed the universe directly through the market's asset list
	market.assets = []contracts.Asset{
		{Symbol: "GOOD", Exchange: "NASDAQ", Tradable: true, Shortable: true},
		{Symbol: "WEAK", Exchange: "NYSE", Tradable: true, Shortable: true},
		{Symbol: "SHORT", Exchange: "NYSE", Tradable: true, Shortable: true},
		{Symbol: "DOWN", Exchange: "NYSE", Tradable: true, Shortable: true},
	}

	set, err := runner.Run(context.Background(), RunConfig{
		UniverseType: UniverseAll,
		BatchSize:    2,
		LookbackDays: 183,
	})
	require.NoError(t, err)

	// SHORT and DOWN are skipped, not fatal
	assert.Equal(t, 2, set.TotalAnalyzed)
	require.Len(t, set.Buys, 1)
	require.Len(t, set.Sells, 1)
	assert.Equal(t, "GOOD", set.Buys[0].Symbol)
	assert.Equal(t, "WEAK", set.Sells[0].Symbol)

	// Persisted once, in sorted order
	require.Len(t, store.results, 2)
	assert.GreaterOrEqual(t, store.results[0].AdjustedSignal, store.results[1].AdjustedSignal)
	require.Len(t, store.snapshots, 1)
	assert.Equal(t, set, store.snapshots[0])
}

func TestRunner_SortsByAdjustedSignal(t *testing.T) {
	market := &fakeMarket{
		series: map[string]contracts.PriceSeries{
			"AAA": flatSeries(60, 100),
			"BBB": flatSeries(60, 100),
			"CCC": flatSeries(60, 100),
		},
		assets: []contracts.Asset{
			{Symbol: "AAA", Exchange: "NYSE", Tradable: true, Shortable: true},
			{Symbol: "BBB", Exchange: "NYSE", Tradable: true, Shortable: true},
			{Symbol: "CCC", Exchange: "NYSE", Tradable: true, Shortable: true},
		},
	}
	fundamentals := &fakeFundamentals{snapshots: map[string]*contracts.FundamentalsSnapshot{
		"AAA": weakFundamentals("AAA"),
		"BBB": neutralFundamentals("BBB"),
		"CCC": strongFundamentals("CCC"),
	}}

	runner := newTestRunner(market, fundamentals, nil)

	set, err := runner.Run(context.Background(), RunConfig{UniverseType: UniverseAll, LookbackDays: 183})
	require.NoError(t, err)

	var order []string
	for _, lists := range [][]*contracts.AnalysisResult{set.Buys, set.Holds, set.Sells} {
		for _, r := range lists {
			order = append(order, r.Symbol)
		}
	}
	assert.Equal(t, []string{"CCC", "BBB", "AAA"}, order)
}

func TestRunner_SkipsUnresolvedFundamentals(t *testing.T) {
	market := &fakeMarket{
		series: map[string]contracts.PriceSeries{
			"GOOD":   flatSeries(60, 100),
			"NOFUND": flatSeries(60, 100), // plenty of history, no fundamentals
		},
		assets: []contracts.Asset{
			{Symbol: "GOOD", Exchange: "NASDAQ", Tradable: true, Shortable: true},
			{Symbol: "NOFUND", Exchange: "NYSE", Tradable: true, Shortable: true},
		},
	}
	fundamentals := &fakeFundamentals{snapshots: map[string]*contracts.FundamentalsSnapshot{
		"GOOD": strongFundamentals("GOOD"),
	}}
	store := &fakeStore{}

	runner := newTestRunner(market, fundamentals, store)

	set, err := runner.Run(context.Background(), RunConfig{UniverseType: UniverseAll, LookbackDays: 183})
	require.NoError(t, err)

	// NOFUND fails all three fundamentals endpoints: skipped, not scored
	assert.Equal(t, 1, set.TotalAnalyzed)
	for _, lists := range [][]*contracts.AnalysisResult{set.Buys, set.Sells, set.Holds} {
		for _, r := range lists {
			assert.NotEqual(t, "NOFUND", r.Symbol)
		}
	}

	require.Len(t, store.results, 1)
	assert.Equal(t, "GOOD", store.results[0].Symbol)
}

func TestRunner_PersistenceFailureIsFatal(t *testing.T) {
	market := &fakeMarket{
		series: map[string]contracts.PriceSeries{"AAPL": flatSeries(60, 100)},
		assets: []contracts.Asset{{Symbol: "AAPL", Exchange: "NASDAQ", Tradable: true, Shortable: true}},
	}
	store := &fakeStore{err: errors.New("db down")}

	fundamentals := &fakeFundamentals{snapshots: map[string]*contracts.FundamentalsSnapshot{
		"AAPL": strongFundamentals("AAPL"),
	}}
	runner := newTestRunner(market, fundamentals, store)

	_, err := runner.Run(context.Background(), RunConfig{UniverseType: UniverseAll, LookbackDays: 183})
	require.Error(t, err)
}
