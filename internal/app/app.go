package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"stockroom/internal/config"
	"stockroom/internal/service/impex"
	"stockroom/internal/service/inventory"
	"stockroom/internal/store"
	"stockroom/internal/store/postgres"
	"stockroom/internal/store/sqlite"
	"stockroom/internal/transport/middleware"
	"stockroom/internal/transport/rest"
)

// Run is the application entry point. It loads configuration, initializes
// the logger, opens the configured ledger store backend, wires the
// services and HTTP transport, and serves until ctx is canceled.
func Run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := NewLogger(cfg.Log)

	logger.Info("starting application",
		slog.String("version", BuildVersion()),
		slog.String("backend", cfg.Store.Backend),
		slog.String("log_level", cfg.Log.Level),
	)

	ledger, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := ledger.Close(); err != nil {
			logger.Error("close store", slog.Any("error", err))
		}
	}()

	inventorySvc := inventory.New(logger, ledger, cfg.Inventory)
	impexSvc := impex.New(logger, inventorySvc, cfg.Inventory)

	mux := rest.NewRouter(rest.Handlers{
		Items:   rest.NewItemHandler(inventorySvc),
		Reports: rest.NewReportHandler(inventorySvc),
		Admin:   rest.NewAdminHandler(inventorySvc),
		Impex:   rest.NewImpexHandler(impexSvc),
		Health:  rest.NewHealthHandler(ledger, BuildVersion()),
	})

	handler := middleware.Chain(
		middleware.RequestID,
		middleware.Logger(logger),
		middleware.Recovery(logger),
		middleware.CORS(cfg.CORS),
	)(mux)

	addr := net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port))
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", slog.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down", slog.Duration("timeout", cfg.Server.ShutdownTimeout))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	return nil
}

// openStore selects the ledger store backend from configuration. The
// choice stays behind the store.LedgerStore interface from here on.
func openStore(ctx context.Context, cfg *config.Config) (store.LedgerStore, error) {
	switch cfg.Store.Backend {
	case config.BackendSQLite:
		s, err := sqlite.Open(cfg.SQLite.Path)
		if err != nil {
			return nil, fmt.Errorf("open sqlite store: %w", err)
		}
		return s, nil
	case config.BackendPostgres:
		openCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
		s, err := postgres.Open(openCtx, cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("open postgres store: %w", err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}
