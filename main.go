package main

import (
	"encoding/json"
	stdlog "log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"github.com/username/plusvalia/src/config"
	"github.com/username/plusvalia/src/database"
	"github.com/username/plusvalia/src/handlers"
	"github.com/username/plusvalia/src/logger"
	"github.com/username/plusvalia/src/processors"
	"github.com/username/plusvalia/src/security"
	"github.com/username/plusvalia/src/services"
)

var limiter = rate.NewLimiter(rate.Every(100*time.Millisecond), 30)

func rateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !limiter.Allow() {
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
			logger.L.Warn("Rate limit exceeded",
				"method", r.Method,
				"path", r.URL.Path,
				"remoteAddr", r.RemoteAddr)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		allowedOrigins := map[string]bool{
			"http://localhost:3000": true,
		}

		if allowedOrigins[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length, Accept-Encoding, Authorization, X-Requested-With")
		} else if origin == "" {
			w.Header().Set("Access-Control-Allow-Origin", "*")
		}

		if r.Method == "OPTIONS" {
			logger.L.Debug("Handling OPTIONS preflight request", "path", r.URL.Path, "origin", origin)
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func main() {
	config.LoadConfig()
	logger.InitLogger(config.Cfg.LogLevel)
	logger.L.Info("Plusvalia backend server starting...")

	if len(config.Cfg.JWTSecret) < 32 {
		stdlog.Fatalf("JWT_SECRET configuration invalid. Must be at least 32 bytes.")
	}

	logger.L.Info("Initializing database...", "path", config.Cfg.DatabasePath)
	database.InitDB(config.Cfg.DatabasePath)
	logger.L.Info("Database initialized successfully.")

	reportCache := cache.New(services.DefaultCacheExpiration, services.CacheCleanupInterval)

	logger.L.Info("Initializing services and handlers...")
	authService := security.NewAuthService(config.Cfg.JWTSecret, config.Cfg.APIKeyHash, config.Cfg.AccessTokenExpiry)
	emailService := services.NewEmailService()
	statementProcessor := processors.NewStatementProcessor(config.Cfg.AllowedEntryTypes, config.Cfg.ExcludedISINPrefixes)

	portfolioService := services.NewPortfolioService(statementProcessor, emailService, reportCache)
	exportService := services.NewExportService(config.Cfg.OutputDir)

	authHandler := handlers.NewAuthHandler(authService)
	uploadHandler := handlers.NewUploadHandler(portfolioService)
	portfolioHandler := handlers.NewPortfolioHandler(portfolioService, exportService, os.Stdout)

	logger.L.Info("Configuring routes...")
	rootMux := http.NewServeMux()
	apiRouter := http.NewServeMux()

	apiRouter.HandleFunc("POST /api/auth/token", authHandler.HandleToken)

	protect := func(handler http.HandlerFunc) http.Handler {
		return handlers.AuthMiddleware(authService, handler)
	}

	apiRouter.Handle("POST /api/statements", protect(uploadHandler.HandleUpload))
	apiRouter.Handle("GET /api/portfolio", protect(portfolioHandler.HandleGetPortfolio))
	apiRouter.Handle("GET /api/sales-history", protect(portfolioHandler.HandleGetSalesHistory))
	apiRouter.Handle("GET /api/holdings", protect(portfolioHandler.HandleGetHoldings))
	apiRouter.Handle("POST /api/export", protect(portfolioHandler.HandleExport))

	rootMux.Handle("/api/", apiRouter)

	rootMux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" && r.Method == http.MethodGet {
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]string{"message": "Plusvalia backend is running"})
		} else {
			if !strings.HasPrefix(r.URL.Path, "/api/") {
				logger.L.Warn("Root level path not found", "method", r.Method, "path", r.URL.Path)
				http.NotFound(w, r)
			}
		}
	})

	logger.L.Info("Applying global middleware...")
	finalHandler := enableCORS(rateLimitMiddleware(rootMux))

	serverAddr := ":" + config.Cfg.Port
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      finalHandler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logger.L.Info("Server starting", "address", serverAddr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.L.Error("Failed to start server", "error", err)
		stdlog.Fatalf("Failed to start server: %v", err)
	} else if err == http.ErrServerClosed {
		logger.L.Info("Server stopped gracefully.")
	}
}
