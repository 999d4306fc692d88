package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/peterkuimelis/gwentx/internal/store"
)

var (
	historyFaction string
	historyLimit   int
)

// historyCmd lists recorded matches
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded matches",
	Long: `List matches recorded in the SQLite history (set 'store' in the config or pass --store).

Subcommands:
  show   - Show one match round by round
  stats  - Win, loss and draw counts per faction`,
	Args: cobra.NoArgs,
	RunE: runHistoryList,
}

var historyShowCmd = &cobra.Command{
	Use:   "show <match-id>",
	Short: "Show one match round by round",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

var historyStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Win, loss and draw counts per faction",
	Args:  cobra.NoArgs,
	RunE:  runHistoryStats,
}

func init() {
	historyCmd.Flags().StringVar(&historyFaction, "faction", "", "Only matches where either side played this faction")
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Maximum matches to list")
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyStatsCmd)
}

func requireStore() (*store.Store, error) {
	st, err := openStore()
	if err != nil {
		return nil, err
	}
	if st == nil {
		return nil, errors.New("no match history configured: set 'store' in the config or pass --store")
	}
	return st, nil
}

func winnerLabel(rec store.MatchRecord) string {
	if rec.Winner < 0 {
		return "draw"
	}
	return rec.Players[rec.Winner]
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func runHistoryList(cmd *cobra.Command, args []string) error {
	st, err := requireStore()
	if err != nil {
		return err
	}
	defer st.Close()

	recs, err := st.List(cmd.Context(), store.Filter{Faction: historyFaction, Limit: historyLimit})
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if len(recs) == 0 {
		fmt.Fprintln(out, "No matches recorded.")
		return nil
	}
	for _, rec := range recs {
		fmt.Fprintf(out, "%s  %s  %-18s vs %-18s  winner: %s\n",
			shortID(rec.ID), rec.PlayedAt.Local().Format("2006-01-02 15:04"),
			rec.Factions[0], rec.Factions[1], winnerLabel(rec))
	}
	return nil
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	st, err := requireStore()
	if err != nil {
		return err
	}
	defer st.Close()

	id := args[0]
	rec, err := st.Get(cmd.Context(), id)
	if errors.Is(err, store.ErrNotFound) && len(id) < 36 {
		// Allow the short IDs printed by 'history'.
		rec, err = findByPrefix(cmd, st, id)
	}
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Match %s (%s)\n", rec.ID, rec.PlayedAt.Local().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(out, "  P1 %s (%s)\n  P2 %s (%s)\n", rec.Players[0], rec.Factions[0], rec.Players[1], rec.Factions[1])
	for _, r := range rec.Rounds {
		loser := "tie"
		if r.Loser >= 0 {
			loser = rec.Players[r.Loser] + " loses a life"
		}
		fmt.Fprintf(out, "  Round %d: %d - %d, %s\n", r.Round, r.Scores[0], r.Scores[1], loser)
	}
	fmt.Fprintf(out, "  %s\n", rec.Result)
	return nil
}

func findByPrefix(cmd *cobra.Command, st *store.Store, prefix string) (store.MatchRecord, error) {
	recs, err := st.List(cmd.Context(), store.Filter{Limit: 1000})
	if err != nil {
		return store.MatchRecord{}, err
	}
	var found []store.MatchRecord
	for _, rec := range recs {
		if strings.HasPrefix(rec.ID, prefix) {
			found = append(found, rec)
		}
	}
	switch len(found) {
	case 0:
		return store.MatchRecord{}, fmt.Errorf("%w: %s", store.ErrNotFound, prefix)
	case 1:
		return found[0], nil
	default:
		return store.MatchRecord{}, fmt.Errorf("match prefix %q is ambiguous (%d matches)", prefix, len(found))
	}
}

func runHistoryStats(cmd *cobra.Command, args []string) error {
	st, err := requireStore()
	if err != nil {
		return err
	}
	defer st.Close()

	stats, err := st.Stats(cmd.Context())
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%-20s %6s %6s %6s %6s\n", "faction", "played", "wins", "losses", "draws")
	for _, fs := range stats {
		fmt.Fprintf(out, "%-20s %6d %6d %6d %6d\n", fs.Faction, fs.Played, fs.Wins, fs.Losses, fs.Draws)
	}
	return nil
}
