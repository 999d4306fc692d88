package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/peterkuimelis/gwentx/internal/bot"
	"github.com/peterkuimelis/gwentx/internal/sim"
)

var (
	simDecks    []string
	simGames    int
	simParallel int
	simSeed     int64
	simJSON     bool
)

// simCmd runs bot-versus-bot batches
var simCmd = &cobra.Command{
	Use:   "sim",
	Short: "Run bot-versus-bot matches and report win rates",
	Example: `  gwentx sim --games 500
  gwentx sim --decks "Northern Realms,Nilfgaard" --seed 7 --json`,
	RunE: runSim,
}

func init() {
	simCmd.Flags().StringSliceVar(&simDecks, "decks", []string{"1", "2"}, "The two deck selectors, P1 first")
	simCmd.Flags().IntVarP(&simGames, "games", "n", 100, "Number of matches")
	simCmd.Flags().IntVarP(&simParallel, "parallel", "j", 0, "Concurrent matches (0 = GOMAXPROCS)")
	simCmd.Flags().Int64Var(&simSeed, "seed", 0, "Base seed (0 = random)")
	simCmd.Flags().BoolVar(&simJSON, "json", false, "Print the full report as JSON")
}

func runSim(cmd *cobra.Command, args []string) error {
	if len(simDecks) != 2 {
		return fmt.Errorf("--decks needs exactly two selectors, got %d", len(simDecks))
	}
	cat, err := loadCatalog()
	if err != nil {
		return err
	}
	st, err := openStore()
	if err != nil {
		return err
	}

	sc := sim.Config{
		Catalog:  cat,
		Rules:    cfg.GameRules(),
		Decks:    [2]string{simDecks[0], simDecks[1]},
		Games:    simGames,
		Parallel: simParallel,
		Seed:     simSeed,
		Tuning:   [2]bot.Tuning{cfg.Bot, cfg.Bot},
		Log:      logger,
	}
	if st != nil {
		defer st.Close()
		sc.Recorder = st
	}

	rep, err := sim.Run(cmd.Context(), sc)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if simJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(rep)
	}
	fmt.Fprint(out, rep.Summary())
	return nil
}
