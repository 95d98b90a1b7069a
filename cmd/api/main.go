package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/geocoder89/coursehub/internal/config"
	"github.com/geocoder89/coursehub/internal/db"
	httpx "github.com/geocoder89/coursehub/internal/http"
	"github.com/geocoder89/coursehub/internal/observability"
	"github.com/geocoder89/coursehub/internal/repo/memory"
	"github.com/geocoder89/coursehub/internal/repo/postgres"
	"github.com/geocoder89/coursehub/internal/repo/sqlite"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	// Load the config set up
	cfg := config.Load()

	// start up the observability logger
	log := observability.NewLogger(cfg.Env)
	slog.SetDefault(log)

	shutdownTracer, err := observability.InitTracer(context.Background(), observability.TracerOptions{
		ServiceName: cfg.OTELServiceName,
		Environment: cfg.Env,
		Endpoint:    cfg.OTELEndpoint,
		SampleRatio: cfg.OTELSampleRatio,
	})
	if err != nil {
		log.Error("tracer init failed", "err", err)
		os.Exit(1)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := observability.NewProm(reg)

	deps, closeStore, err := openStore(log, cfg, metrics)
	if err != nil {
		log.Error("store init failed", "driver", cfg.StoreDriver, "err", err)
		os.Exit(1)
	}
	defer closeStore()

	deps.Metrics = metrics
	deps.MetricsHandler = promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})

	router := httpx.NewRouter(log, cfg, deps)

	// server set up
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("Server starting", "port", cfg.Port, "env", cfg.Env, "store", cfg.StoreDriver)
		err := srv.ListenAndServe()

		if err != nil && err != http.ErrServerClosed {
			log.Error("server failed", "err", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Info("server shutting down")

	shutdownCh := make(chan struct{})

	go func() {
		defer close(shutdownCh)

		ctx, cancel := config.WithTimeout(10 * time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("graceful shutdown failed", "err", err)
		}

		if err := shutdownTracer(ctx); err != nil {
			log.Error("tracer shutdown failed", "err", err)
		}
	}()

	select {
	case <-shutdownCh:
		log.Info("shutdown complete")

	case <-time.After(12 * time.Second):
		log.Error("shutdown timed out")
	}
}

// openStore connects the configured backend, applies migrations when asked
// to, and returns the repositories with a matching close function.
func openStore(log *slog.Logger, cfg config.Config, metrics *observability.Prom) (httpx.Deps, func(), error) {
	ctx, cancel := config.WithTimeout(30 * time.Second)
	defer cancel()

	switch cfg.StoreDriver {
	case config.StorePostgres:
		pool, err := db.NewPool(ctx, cfg.DBURL)
		if err != nil {
			return httpx.Deps{}, nil, fmt.Errorf("connect postgres: %w", err)
		}

		if cfg.RunMigrations {
			if err := db.MigratePostgres(ctx, log, pool); err != nil {
				pool.Close()
				return httpx.Deps{}, nil, err
			}
		}

		return httpx.Deps{
			Users:   postgres.NewUsersRepo(pool, metrics),
			Courses: postgres.NewCoursesRepo(pool, metrics),
			Ping:    pool.Ping,
		}, pool.Close, nil

	case config.StoreSQLite:
		handle, err := db.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return httpx.Deps{}, nil, err
		}

		if cfg.RunMigrations {
			if err := db.MigrateSQLite(ctx, log, handle); err != nil {
				_ = handle.Close()
				return httpx.Deps{}, nil, err
			}
		}

		return httpx.Deps{
			Users:   sqlite.NewUsersRepo(handle, metrics),
			Courses: sqlite.NewCoursesRepo(handle, metrics),
			Ping:    handle.PingContext,
		}, func() { _ = handle.Close() }, nil

	case config.StoreMemory:
		log.Warn("using in-memory store, data is lost on restart")
		store := memory.NewStore()

		return httpx.Deps{
			Users:   store.Users(),
			Courses: store.Courses(),
		}, func() {}, nil

	default:
		return httpx.Deps{}, nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}
}
