package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/yashagw/relcore/internal/config"
	"github.com/yashagw/relcore/internal/httpapi"
	"github.com/yashagw/relcore/internal/loader"
	"github.com/yashagw/relcore/internal/logger"
	"github.com/yashagw/relcore/internal/metadata"
	"github.com/yashagw/relcore/internal/normalize"
	"github.com/yashagw/relcore/internal/server"
)

// seedCatalog builds the starting catalog: the sample tables when enabled,
// then the tables of DB_PATH, which win on name clashes.
func seedCatalog(ctx context.Context, cfg config.Config) (*metadata.Catalog, error) {
	catalog := metadata.NewCatalog()
	if cfg.SampleData {
		catalog = loader.SampleCatalog()
	}
	if cfg.DBPath == "" {
		return catalog, nil
	}
	fromDB, err := loader.FromSQLite(ctx, cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", cfg.DBPath, err)
	}
	for _, name := range fromDB.Names() {
		rel, err := fromDB.Get(name)
		if err != nil {
			return nil, err
		}
		catalog = catalog.With(rel)
	}
	return catalog, nil
}

func run(ctx context.Context, log zerolog.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	catalog, err := seedCatalog(ctx, cfg)
	if err != nil {
		return err
	}
	tables := metadata.NewManager(catalog)
	log.Info().Strs("tables", catalog.Names()).Msg("catalog ready")

	tcpListener, err := net.Listen("tcp", ":"+cfg.Port)
	if err != nil {
		return fmt.Errorf("listen on port %s: %w", cfg.Port, err)
	}
	httpListener, err := net.Listen("tcp", ":"+cfg.HTTPPort)
	if err != nil {
		tcpListener.Close()
		return fmt.Errorf("listen on port %s: %w", cfg.HTTPPort, err)
	}

	lineServer := server.NewServer(tables, log)
	httpServer := httpapi.NewHTTPServer(tables, normalize.NewAnalyzer(cfg.MaxDecomposeIterations), log)

	errs := make(chan error, 2)
	go func() { errs <- lineServer.Serve(ctx, tcpListener) }()
	go func() { errs <- httpServer.Start(httpListener) }()

	select {
	case <-ctx.Done():
	case err = <-errs:
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	tcpListener.Close()
	if shutdownErr := httpServer.Shutdown(shutdownCtx); shutdownErr != nil {
		err = errors.Join(err, shutdownErr)
	}
	return err
}

func main() {
	log := logger.NewLogger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, log); err != nil {
		log.Error().Err(err).Msg("server failed")
		os.Exit(1)
	}
	log.Info().Msg("bye")
}
