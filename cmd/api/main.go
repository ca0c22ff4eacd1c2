package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	_ "fruitstock/docs"
	"fruitstock/pkg/api"
	"fruitstock/pkg/config"
	"fruitstock/pkg/inventory"
	"fruitstock/pkg/inventory/cache"
	"fruitstock/pkg/inventory/memory"
	pg "fruitstock/pkg/inventory/postgres"
	"fruitstock/pkg/inventory/sqlite"
	"fruitstock/pkg/logger"
	"fruitstock/pkg/otel"
)

const serviceName = "fruitstock"

// @title Fruitstock API
// @version 1.0
// @description API for managing suppliers and their fruits
// @host localhost:8443
// @BasePath /
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	level, err := logger.ParseLevel(cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	log := logger.New(os.Stdout, level, serviceName, otel.GetTraceID)
	defer log.Sync()

	if err := run(cfg, log); err != nil {
		log.Error(context.Background(), "startup", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *logger.Logger) error {
	ctx := context.Background()

	tp, shutdown, err := otel.InitTracing(log, otel.Config{
		ServiceName: serviceName,
		Host:        cfg.OtelHost,
		Probability: cfg.OtelProbability,
	})
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer shutdown(context.Background())

	st, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer st.close()

	suppliers := st.suppliers
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer rdb.Close()
		suppliers = cache.New(suppliers, rdb, cfg.CacheTTL, log)
		st.checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
		log.Info(ctx, "supplier cache enabled", "addr", cfg.RedisAddr, "ttl", cfg.CacheTTL.String())
	}

	h := api.NewHandler(
		inventory.NewSupplierService(suppliers, st.fruits, log),
		// Supplier existence checks on fruit writes bypass the cache.
		inventory.NewFruitService(st.fruits, st.suppliers, log),
		log,
	)
	router := api.NewRouter(api.Config{
		Handler: h,
		Log:     log,
		Tracer:  tp.Tracer(serviceName),
		Checks:  st.checks,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		log.Info(ctx, "listening", "addr", cfg.HTTPAddr, "tls", cfg.TLSEnabled(), "store", cfg.StoreDriver)
		if cfg.TLSEnabled() {
			serverErrors <- srv.ListenAndServeTLS(cfg.TLSCertFile, cfg.TLSKeyFile)
			return
		}
		serverErrors <- srv.ListenAndServe()
	}()

	stop, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server closed: %w", err)
		}
		return nil
	case <-stop.Done():
		log.Info(ctx, "shutdown started")
		sctx, scancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer scancel()
		if err := srv.Shutdown(sctx); err != nil {
			srv.Close()
			return fmt.Errorf("graceful shutdown: %w", err)
		}
		log.Info(ctx, "shutdown complete")
		return nil
	}
}

type store struct {
	suppliers inventory.SupplierRepository
	fruits    inventory.FruitRepository
	checks    map[string]api.Check
	close     func() error
}

func openStore(ctx context.Context, cfg config.Config, log *logger.Logger) (*store, error) {
	switch cfg.StoreDriver {
	case config.DriverPostgres:
		db, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("db connect: %w", err)
		}
		if err := db.PingContext(ctx); err != nil {
			db.Close()
			return nil, fmt.Errorf("db ping: %w", err)
		}
		if err := pg.Migrate(ctx, db); err != nil {
			db.Close()
			return nil, fmt.Errorf("create tables: %w", err)
		}
		return &store{
			suppliers: pg.NewSupplierRepository(db),
			fruits:    pg.NewFruitRepository(db),
			checks:    map[string]api.Check{"store": db.PingContext},
			close:     db.Close,
		}, nil

	case config.DriverSQLite:
		db, err := sqlite.Open(cfg.SQLitePath, log)
		if err != nil {
			return nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		return &store{
			suppliers: sqlite.NewSupplierRepository(db),
			fruits:    sqlite.NewFruitRepository(db),
			checks:    map[string]api.Check{"store": sqlDB.PingContext},
			close:     sqlDB.Close,
		}, nil
	}

	mem := memory.New()
	return &store{
		suppliers: mem.Suppliers(),
		fruits:    mem.Fruits(),
		checks:    map[string]api.Check{"store": mem.Ping},
		close:     func() error { return nil },
	}, nil
}
