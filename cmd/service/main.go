package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"gitlab.com/dirk.krummacker/persons-service/internal/config"
	"gitlab.com/dirk.krummacker/persons-service/internal/core"
	"gitlab.com/dirk.krummacker/persons-service/internal/logging"
	"gitlab.com/dirk.krummacker/persons-service/internal/metrics"
	"gitlab.com/dirk.krummacker/persons-service/internal/service"
	"gitlab.com/dirk.krummacker/persons-service/internal/store"
	"go.uber.org/zap"
)

// Usage example on the command line:
// > PORT=8080 DBUSER=dirk DBPWD=bullo92 GIN_MODE=release GIN_LOGGING=OFF go run main.go
// > PORT=8080 STORE=memory SEED=true go run main.go
func main() {
	// Values in a .env file take precedence over the environment.
	envLoaded := godotenv.Overload() == nil

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("could not load configuration: %v", err)
	}
	logger, err := logging.New(cfg.LogMode)
	if err != nil {
		log.Fatalf("could not create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()
	if envLoaded {
		logger.Info("loaded .env file")
	}
	if mode := os.Getenv("GIN_MODE"); mode != "" {
		gin.SetMode(mode)
	}

	ctx := context.Background()
	s, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("could not open store", zap.String("store", cfg.Store), zap.Error(err))
	}
	defer s.Close()

	if cfg.Seed {
		if err := store.Seed(ctx, s, logger); err != nil {
			logger.Fatal("could not seed store", zap.Error(err))
		}
	}

	m := metrics.New(prometheus.DefaultRegisterer)
	countries := core.NewCountryDirectory(s, logger, m)
	persons := core.NewPersonService(s, countries, logger, m)
	router := service.SetupHttpRouter(persons, countries, logger, service.Options{
		RequestLogging: cfg.GinLogging,
		CORSOrigins:    cfg.CORSOrigins,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		logger.Info("starting persons service", zap.String("port", cfg.Port), zap.String("store", cfg.Store))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}

// openStore connects to the storage backend selected by STORE.
func openStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (store.Store, error) {
	switch cfg.Store {
	case config.StoreMemory:
		return store.NewMemoryStore(), nil
	case config.StorePostgres:
		if cfg.PostgresDSN == "" {
			return nil, errors.New("environment variable POSTGRES_DSN not set")
		}
		return store.OpenPostgres(cfg.PostgresDSN, logger)
	default:
		sqlDB, err := store.CreateDatabase(cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBName)
		if err != nil {
			return nil, fmt.Errorf("open mysql: %w", err)
		}
		s, err := store.NewMySQLStore(ctx, sqlDB, logger)
		if err != nil {
			_ = sqlDB.Close()
			return nil, err
		}
		return s, nil
	}
}
