package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	flag "github.com/spf13/pflag"

	"github.com/idilsaglam/todosync/internal/logging"
	"github.com/idilsaglam/todosync/internal/server"
	"github.com/idilsaglam/todosync/internal/store"
	"github.com/idilsaglam/todosync/internal/store/jsonstore"
	"github.com/idilsaglam/todosync/internal/store/sqlstore"
)

func main() {
	addr := flag.String("addr", ":5000", "listen address")
	backend := flag.String("store", "sqlite", "storage backend: sqlite|postgres|json")
	dsn := flag.String("dsn", "todos.db", "database DSN or file path")
	seed := flag.String("seed", "", "JSONC file to import when the store is empty")
	logLevel := flag.String("log-level", "info", "log level: debug|info|warn|error")
	logFormat := flag.String("log-format", "text", "log format: text|json|logfmt")
	flag.Parse()

	if *backend == "json" && !flag.CommandLine.Changed("dsn") {
		*dsn = "todos.json"
	}

	logger := logging.New(os.Stderr, logging.Options{
		Level:           *logLevel,
		Format:          *logFormat,
		Prefix:          "todo-server",
		ReportTimestamp: true,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, logger, *addr, *backend, *dsn, *seed); err != nil {
		logger.Error("exiting", "err", err)
		stop()
		os.Exit(1)
	}
}

func openRepo(ctx context.Context, backend, dsn string) (store.Repository, error) {
	if backend == "json" {
		return jsonstore.Open(dsn)
	}
	d, err := sqlstore.DialectByName(backend)
	if err != nil {
		return nil, err
	}
	return sqlstore.Open(ctx, d, dsn)
}

func run(ctx context.Context, logger *log.Logger, addr, backend, dsn, seed string) error {
	repo, err := openRepo(ctx, backend, dsn)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer repo.Close()
	logger.Info("store ready", "backend", backend)

	if seed != "" {
		n, err := store.Seed(ctx, repo, seed)
		if err != nil {
			return err
		}
		logger.Info("seeded", "file", seed, "items", n)
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           server.NewRouter(repo, logger),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
