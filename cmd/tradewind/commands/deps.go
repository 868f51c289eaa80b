package commands

import (
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/tradewind-io/tradewind/internal/execution"
	"github.com/tradewind-io/tradewind/internal/external/alpaca"
	"github.com/tradewind-io/tradewind/internal/external/alphavantage"
	"github.com/tradewind-io/tradewind/internal/regime"
	"github.com/tradewind-io/tradewind/internal/scoring"
	"github.com/tradewind-io/tradewind/internal/strategyconfig"
	"github.com/tradewind-io/tradewind/pkg/config"
	"github.com/tradewind-io/tradewind/pkg/database"
	"github.com/tradewind-io/tradewind/pkg/httputil"
	"github.com/tradewind-io/tradewind/pkg/logger"
	"github.com/tradewind-io/tradewind/pkg/redis"
)

// app holds the wired dependency graph shared by all commands
type app struct {
	cfg    *config.Config
	log    *logger.Logger
	db     *database.DB
	rdb    *redis.Client
	broker *alpaca.Client

	strategy   *strategyconfig.Config
	detector   *regime.Detector
	runner     *scoring.Runner
	repository *execution.Repository
	engine     *execution.Engine
	reconciler *execution.Reconciler
	manager    *execution.Manager
}

// initApp loads config and wires every component. Callers must Close().
func initApp() (*app, error) {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	// 2. Initialize logger
	log := logger.New(cfg)

	// 3. Connect to database
	db, err := database.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	// 4. Connect to Redis (no-op client when disabled)
	rdb, err := redis.New(cfg)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	cache := redis.NewCache(rdb, "tradewind")
	limiter := redis.NewRateLimiter(rdb, "tradewind")

	// 5. Create external API clients, each behind its own rate limit
	alpacaHTTP := httputil.New(log).WithRateLimiter(limiter, redis.AlpacaRateLimit)
	avHTTP := httputil.New(log).WithRateLimiter(limiter, redis.AlphaVantageRateLimit)

	broker := alpaca.NewClient(cfg.Alpaca, alpacaHTTP, cache, log)
	fundamentals := alphavantage.NewClient(cfg.AlphaVantage, avHTTP, cache, log)

	// 6. Load strategy, falling back to built-in defaults
	strategy, err := strategyconfig.Load(cfg.Trading.StrategyFile)
	if err != nil {
		log.WithError(err).WithField("file", cfg.Trading.StrategyFile).
			Warn("strategy file not loaded, using defaults")
		strategy = strategyconfig.Default()
	}

	// 7. Regime detection and scoring
	detector := regime.NewDetector(broker, cache, log)
	analyzer := scoring.NewAnalyzer(strategy, log)
	repository := execution.NewRepository(db.Pool)

	// In-process pacing on top of the Redis window, Alpha Vantage free
	// tier allows 5 requests per minute.
	avPace := rate.NewLimiter(rate.Every(12*time.Second), 1)
	runner := scoring.NewRunner(broker, fundamentals, detector, analyzer, repository, avPace, log)

	// 8. Execution stack
	sizer := execution.NewSizer(strategy.Sizing)
	stops := execution.NewStopCalculator(strategy.Stops)
	engine := execution.NewEngine(broker, repository, broker, sizer, stops, log)
	reconciler := execution.NewReconciler(broker, repository, stops, log)
	manager := execution.NewManager(reconciler, engine, runner, repository, broker, broker, log)

	return &app{
		cfg:        cfg,
		log:        log,
		db:         db,
		rdb:        rdb,
		broker:     broker,
		strategy:   strategy,
		detector:   detector,
		runner:     runner,
		repository: repository,
		engine:     engine,
		reconciler: reconciler,
		manager:    manager,
	}, nil
}

// Close releases database and Redis connections
func (a *app) Close() {
	a.db.Close()
	a.rdb.Close()
}

// cycleConfig builds the trading cycle configuration from config defaults
// and command-line overrides.
func (a *app) cycleConfig(universe string, maxSymbols, maxBuys int, autoExecute bool) execution.CycleConfig {
	cfg := execution.CycleConfig{
		Scoring: scoring.RunConfig{
			UniverseType: a.cfg.Trading.UniverseType,
			MaxSymbols:   a.cfg.Trading.MaxSymbols,
			BatchSize:    a.cfg.Trading.BatchSize,
			LookbackDays: a.cfg.Trading.LookbackDays,
		},
		MaxBuyOrders: a.cfg.Trading.TopBuyCount,
		AutoExecute:  autoExecute,
	}
	if universe != "" {
		cfg.Scoring.UniverseType = universe
	}
	if maxSymbols > 0 {
		cfg.Scoring.MaxSymbols = maxSymbols
	}
	if maxBuys > 0 {
		cfg.MaxBuyOrders = maxBuys
	}
	return cfg
}
