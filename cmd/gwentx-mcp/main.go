package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/server"

	"github.com/peterkuimelis/gwentx/internal/config"
	"github.com/peterkuimelis/gwentx/internal/game"
	gwentmcp "github.com/peterkuimelis/gwentx/internal/mcp"
	"github.com/peterkuimelis/gwentx/internal/store"
)

func main() {
	configPath := flag.String("config", "gwentx.yaml", "path to config YAML (missing file means defaults)")
	catalog := flag.String("catalog", "", "path to card catalog YAML (default: from config, else built-in)")
	port := flag.String("port", "9999", "TCP port for a human opponent")
	verbose := flag.Bool("v", false, "debug logging (to stderr)")
	flag.Parse()

	if err := run(*configPath, *catalog, *port, *verbose); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, catalogPath, port string, verbose bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if catalogPath != "" {
		cfg.Catalog = catalogPath
	}
	// Stdout carries the MCP stream; zap's production config logs to stderr.
	logger, err := cfg.Log.NewLogger(verbose)
	if err != nil {
		return err
	}
	defer logger.Sync()

	cat, err := game.LoadCatalog(cfg.Catalog)
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}

	host := &gwentmcp.Host{
		Catalog: cat,
		Rules:   cfg.GameRules(),
		Port:    port,
		Tuning:  cfg.Bot,
		Log:     logger,
	}
	if cfg.Store != "" {
		st, err := store.Open(cfg.Store, logger)
		if err != nil {
			return err
		}
		defer st.Close()
		host.Recorder = st
	}
	defer host.Close()

	s := server.NewMCPServer("gwentx", "1.0.0")
	host.RegisterTools(s)

	return server.ServeStdio(s)
}
