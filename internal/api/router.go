package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/tradewind-io/tradewind/internal/api/handlers"
	"github.com/tradewind-io/tradewind/pkg/database"
	"github.com/tradewind-io/tradewind/pkg/logger"
)

// NewRouter creates and configures the HTTP router
func NewRouter(trading *handlers.TradingHandler, market *handlers.MarketHandler, db *database.DB, log *logger.Logger) http.Handler {
	r := mux.NewRouter()

	// Health check
	r.HandleFunc("/health", healthCheckHandler(db)).Methods("GET")

	// API v1
	api := r.PathPrefix("/api").Subrouter()

	// Recommendations and regime
	api.HandleFunc("/recommendations", market.GetRecommendations).Methods("GET")
	api.HandleFunc("/regime", market.GetRegime).Methods("GET")
	api.HandleFunc("/regime/refresh", market.RefreshRegime).Methods("POST")

	// Positions and trading
	api.HandleFunc("/positions", trading.GetPositions).Methods("GET")
	api.HandleFunc("/positions/{id:[0-9]+}/stops", trading.GetStopHistory).Methods("GET")
	api.HandleFunc("/portfolio", trading.GetPortfolio).Methods("GET")
	api.HandleFunc("/trades", trading.GetTrades).Methods("GET")
	api.HandleFunc("/cycle", trading.RunCycle).Methods("POST")

	// Apply middleware
	r.Use(loggingMiddleware(log))
	r.Use(recoveryMiddleware(log))

	return r
}

// healthCheckHandler returns server and database health
func healthCheckHandler(db *database.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := map[string]interface{}{
			"status":  "ok",
			"service": "tradewind-api",
		}

		code := http.StatusOK
		if health, err := db.HealthCheck(r.Context()); err != nil {
			status["status"] = "degraded"
			status["database"] = health
			code = http.StatusServiceUnavailable
		} else {
			status["database"] = health
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		json.NewEncoder(w).Encode(status)
	}
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			next.ServeHTTP(w, r)

			log.WithFields(map[string]interface{}{
				"method":   r.Method,
				"path":     r.URL.Path,
				"duration": time.Since(start),
			}).Debug("HTTP request")
		})
	}
}

// recoveryMiddleware recovers from panics
func recoveryMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					log.WithFields(map[string]interface{}{
						"error": err,
						"path":  r.URL.Path,
					}).Error("panic recovered")

					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					json.NewEncoder(w).Encode(map[string]string{
						"error": "internal server error",
					})
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
