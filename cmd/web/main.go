package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/peterkuimelis/gwentx/internal/config"
	"github.com/peterkuimelis/gwentx/internal/store"
	"github.com/peterkuimelis/gwentx/internal/web"
)

func main() {
	port := flag.Int("port", 8080, "HTTP port to listen on")
	configPath := flag.String("config", "gwentx.yaml", "path to config YAML (missing file means defaults)")
	catalog := flag.String("catalog", "", "path to card catalog YAML, reloaded on change (default: from config, else built-in)")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, *port, *configPath, *catalog, *verbose); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, port int, configPath, catalogPath string, verbose bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if catalogPath != "" {
		cfg.Catalog = catalogPath
	}
	logger, err := cfg.Log.NewLogger(verbose)
	if err != nil {
		return err
	}
	defer logger.Sync()

	opts := web.Options{CatalogPath: cfg.Catalog, Log: logger}
	if cfg.Store != "" {
		st, err := store.Open(cfg.Store, logger)
		if err != nil {
			return err
		}
		defer st.Close()
		opts.History = st
	}

	srv, err := web.NewServer(opts)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	if cfg.Catalog != "" {
		g.Go(func() error { return srv.WatchCatalog(gctx, nil) })
	}
	g.Go(func() error {
		addr := fmt.Sprintf(":%d", port)
		logger.Info("gwentx web UI listening", zap.String("url", fmt.Sprintf("http://localhost:%d", port)))
		return srv.ListenAndServe(gctx, addr)
	})
	return g.Wait()
}
