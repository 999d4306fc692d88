// Command gwentx hosts, joins and simulates lane card battles.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/peterkuimelis/gwentx/internal/config"
	"github.com/peterkuimelis/gwentx/internal/game"
	"github.com/peterkuimelis/gwentx/internal/store"
)

var (
	// Global flags
	verbose     bool
	configPath  string
	catalogPath string
	storePath   string

	// Loaded in PersistentPreRunE
	cfg    *config.Config
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "gwentx",
	Short: "gwentx - a two-player lane card battle",
	Long: `gwentx plays best-of-three lane card battles in the terminal.

Host a game and let a friend join over TCP, play the built-in bot,
or run bot-versus-bot batches to compare decks.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		if catalogPath != "" {
			cfg.Catalog = catalogPath
		}
		if storePath != "" {
			cfg.Store = storePath
		}

		logger, err = cfg.Log.NewLogger(verbose)
		if err != nil {
			return err
		}
		logger.Debug("config loaded", zap.String("path", configPath), zap.String("catalog", cfg.Catalog))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "gwentx.yaml", "Config file (missing file means defaults)")
	rootCmd.PersistentFlags().StringVar(&catalogPath, "catalog", "", "Card catalog YAML (default: built-in)")
	rootCmd.PersistentFlags().StringVar(&storePath, "store", "", "SQLite match history (default: from config, empty disables)")

	rootCmd.AddCommand(hostCmd)
	rootCmd.AddCommand(joinCmd)
	rootCmd.AddCommand(simCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(configCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadCatalog returns the configured catalog, or the built-in one.
func loadCatalog() (*game.Catalog, error) {
	cat, err := game.LoadCatalog(cfg.Catalog)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	return cat, nil
}

// openStore opens the match history, or returns nil when none is configured.
func openStore() (*store.Store, error) {
	if cfg.Store == "" {
		return nil, nil
	}
	return store.Open(cfg.Store, logger)
}
