package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
// All environment variables are read here and nowhere else.
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Database
	Database DatabaseConfig

	// Redis
	Redis RedisConfig

	// External APIs
	Alpaca       AlpacaConfig
	AlphaVantage AlphaVantageConfig

	// Trading
	Trading TradingConfig

	// Logging
	LogLevel  string
	LogFormat string
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	URL string

	// Connection pool
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
}

// AlpacaConfig holds Alpaca brokerage API configuration
type AlpacaConfig struct {
	APIKey    string
	APISecret string
	BaseURL   string
	DataURL   string
	StreamURL string
	Paper     bool // paper trading account
	DataFeed  string
}

// AlphaVantageConfig holds the fundamentals provider configuration
type AlphaVantageConfig struct {
	APIKey  string
	BaseURL string
}

// TradingConfig holds trading cycle settings
type TradingConfig struct {
	UniverseType   string // starter, all, filtered
	MaxSymbols     int    // 0 = no limit
	BatchSize      int
	StrategyFile   string
	AutoExecute    bool
	TopBuyCount    int
	TopSellCount   int
	LookbackDays   int
	CycleSchedule  string // cron expression with seconds
	StopSchedule   string
	RegimeSchedule string
}

// Load reads configuration from environment variables.
// Only this function calls os.Getenv().
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		// Server
		Port: getEnv("PORT", "8087"),
		Env:  getEnv("ENV", "development"),

		// Database
		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 25),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 5),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		// Redis
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", true),
		},

		// External APIs
		Alpaca: AlpacaConfig{
			APIKey:    getEnv("ALPACA_API_KEY", ""),
			APISecret: getEnv("ALPACA_API_SECRET", ""),
			BaseURL:   getEnv("ALPACA_BASE_URL", "https://paper-api.alpaca.markets"),
			DataURL:   getEnv("ALPACA_DATA_URL", "https://data.alpaca.markets"),
			StreamURL: getEnv("ALPACA_STREAM_URL", "wss://paper-api.alpaca.markets/stream"),
			Paper:     getEnvAsBool("ALPACA_PAPER", true),
			DataFeed:  getEnv("ALPACA_DATA_FEED", "iex"),
		},

		AlphaVantage: AlphaVantageConfig{
			APIKey:  getEnv("ALPHAVANTAGE_API_KEY", ""),
			BaseURL: getEnv("ALPHAVANTAGE_BASE_URL", "https://www.alphavantage.co/query"),
		},

		// Trading
		Trading: TradingConfig{
			UniverseType: getEnv("TRADING_UNIVERSE", "starter"),
			MaxSymbols:   getEnvAsInt("TRADING_MAX_SYMBOLS", 0),
			BatchSize:    getEnvAsInt("TRADING_BATCH_SIZE", 50),
			StrategyFile: getEnv("TRADING_STRATEGY_FILE", "config/strategy/us_equity_v1.yaml"),
			AutoExecute:  getEnvAsBool("TRADING_AUTO_EXECUTE", false),
			TopBuyCount:  getEnvAsInt("TRADING_TOP_BUYS", 5),
			TopSellCount: getEnvAsInt("TRADING_TOP_SELLS", 3),
			LookbackDays: getEnvAsInt("TRADING_LOOKBACK_DAYS", 183),
			// Schedules are in US Eastern wall-clock time, see scheduler package.
			CycleSchedule:  getEnv("TRADING_CYCLE_SCHEDULE", "0 45 9 * * MON-FRI"),
			StopSchedule:   getEnv("TRADING_STOP_SCHEDULE", "0 */15 10-15 * * MON-FRI"),
			RegimeSchedule: getEnv("TRADING_REGIME_SCHEDULE", "0 15 9 * * MON-FRI"),
		},

		// Logging
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if required configuration values are set
func (c *Config) validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	if c.Trading.BatchSize <= 0 {
		return fmt.Errorf("TRADING_BATCH_SIZE must be positive")
	}

	return nil
}

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	paths := []string{
		".env",
	}

	// Also try relative to executable
	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	value, err := time.ParseDuration(valueStr)
	if err != nil {
		fallback, _ := time.ParseDuration(defaultValue)
		return fallback
	}

	return value
}
