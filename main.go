package main

import (
	"context"
	stderrors "errors"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"gorandtest/adapters/httpapi"
	"gorandtest/adapters/memory"
	"gorandtest/adapters/postgres"
	"gorandtest/adapters/rng"
	"gorandtest/app"
	"gorandtest/internal"
	"gorandtest/internal/config"
	"gorandtest/internal/errors"
	"gorandtest/internal/metrics"
	"gorandtest/internal/migration"
	"gorandtest/ports"
)

// initDatabase connects to PostgreSQL and applies the schema
func initDatabase(ctx context.Context, url string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", url)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to database")
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "failed to ping database")
	}
	if err := migration.NewRunner().Run(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func main() {
	bootLogger := internal.NewDefaultLogger()
	if err := config.LoadDotEnv(); err != nil {
		bootLogger.Warn("ignoring .env: %v", err)
	}

	appConfig, err := config.Load()
	if err != nil {
		bootLogger.Error("configuration: %v", err)
		os.Exit(errors.ExitCode(err))
	}
	logger := internal.NewLogger(appConfig.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var repo ports.OutcomeRepository
	if appConfig.Database.URL != "" {
		db, err := initDatabase(ctx, appConfig.Database.URL)
		if err != nil {
			logger.Error("database: %v", err)
			os.Exit(1)
		}
		defer db.Close()
		repo = postgres.NewOutcomeRepository(db)
		logger.Info("storing outcomes in PostgreSQL")
	} else {
		repo = memory.NewOutcomeRepository()
		logger.Info("DATABASE_URL not set, keeping outcomes in memory")
	}

	service := app.NewRandTestService(repo, rng.NewPCGAdapter(), metrics.Default, logger, appConfig.Run)
	server := &http.Server{
		Addr:         ":" + appConfig.Server.Port,
		Handler:      httpapi.NewServer(service, promhttp.Handler(), logger),
		ReadTimeout:  appConfig.Server.ReadTimeout,
		WriteTimeout: appConfig.Server.WriteTimeout,
	}

	// pprof registers on the default mux, which only this listener serves
	if appConfig.Profiling.Enabled {
		go func() {
			logger.Info("profiling server starting on :%s", appConfig.Profiling.Port)
			if err := http.ListenAndServe(":"+appConfig.Profiling.Port, nil); err != nil {
				logger.Error("pprof server failed: %v", err)
			}
		}()
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown: %v", err)
		}
	}()

	logger.Info("randtest API listening on %s", server.Addr)
	if err := server.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
		logger.Error("server failed: %v", err)
		os.Exit(1)
	}
}
