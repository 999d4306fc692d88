package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

// validateCmd checks the catalog and every deck against the configured rules
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the card catalog and its decks against the rules",
	Args:  cobra.NoArgs,
	RunE:  runValidate,
}

func runValidate(cmd *cobra.Command, args []string) error {
	cat, err := loadCatalog()
	if err != nil {
		return err
	}
	rules := cfg.GameRules()
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "%d cards, %d decks\n", len(cat.Cards()), len(cat.Decks()))
	var errs []error
	for i := range cat.Decks() {
		dl, err := cat.DeckByNumber(i + 1)
		if err == nil {
			err = dl.Validate(rules)
		}
		if err != nil {
			fmt.Fprintf(out, "  %d. FAIL %v\n", i+1, err)
			errs = append(errs, err)
			continue
		}
		leader := "no leader"
		if dl.Leader != nil {
			leader = dl.Leader.Name
		}
		fmt.Fprintf(out, "  %d. ok   %s (%s, %d cards, %s)\n", i+1, dl.Name, dl.Faction, len(dl.Cards), leader)
	}
	if len(errs) > 0 {
		return fmt.Errorf("%d invalid deck(s): %w", len(errs), errors.Join(errs...))
	}
	return nil
}
