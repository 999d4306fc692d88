// Package sim plays batches of bot-versus-bot matches in parallel.
package sim

import (
	"context"
	"fmt"
	"math/rand"
	"runtime"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/peterkuimelis/gwentx/internal/bot"
	"github.com/peterkuimelis/gwentx/internal/game"
	"github.com/peterkuimelis/gwentx/internal/log"
)

// Recorder persists finished matches.
type Recorder interface {
	RecordMatch(ctx context.Context, m *game.Match) error
}

// Config describes a batch.
type Config struct {
	Catalog  *game.Catalog
	Rules    game.Rules
	Decks    [2]string // deck selectors; default "1" and "2"
	Games    int
	Parallel int // concurrent matches; 0 means GOMAXPROCS
	Seed     int64
	Tuning   [2]bot.Tuning
	Log      *zap.Logger
	Recorder Recorder // optional
}

// Outcome is the result of one match in the batch.
type Outcome struct {
	Game    int    `json:"game"`
	MatchID string `json:"match_id"`
	Seed    int64  `json:"seed"`
	Winner  int    `json:"winner"`
	Rounds  int    `json:"rounds"`
	Lives   [2]int `json:"lives"`
	Result  string `json:"result"`
}

// Report aggregates a batch.
type Report struct {
	Decks     [2]string `json:"decks"`
	Games     int       `json:"games"`
	Wins      [2]int    `json:"wins"`
	Draws     int       `json:"draws"`
	AvgRounds float64   `json:"avg_rounds"`
	Outcomes  []Outcome `json:"outcomes"`
}

// Run plays cfg.Games matches and returns the aggregate. The first match error cancels the
// rest of the batch.
func Run(ctx context.Context, cfg Config) (*Report, error) {
	zl := cfg.Log
	if zl == nil {
		zl = zap.NewNop()
	}
	zl = zl.Named("sim")
	if cfg.Games <= 0 {
		return nil, fmt.Errorf("games must be positive, got %d", cfg.Games)
	}
	if cfg.Catalog == nil {
		cfg.Catalog = game.DefaultCatalog()
	}
	parallel := cfg.Parallel
	if parallel <= 0 {
		parallel = runtime.GOMAXPROCS(0)
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Int63()
	}

	var decks [2]game.DeckList
	for side, sel := range cfg.Decks {
		if sel == "" {
			sel = fmt.Sprint(side + 1)
		}
		dl, err := cfg.Catalog.Deck(sel)
		if err != nil {
			return nil, fmt.Errorf("load deck for %s: %w", log.PlayerName(side), err)
		}
		if err := dl.Validate(cfg.Rules); err != nil {
			return nil, err
		}
		decks[side] = dl
	}

	outcomes := make([]Outcome, cfg.Games)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(parallel)

	for i := 0; i < cfg.Games; i++ {
		gameSeed := seed + int64(i)*2
		g.Go(func() error {
			out, err := playOne(gctx, cfg, decks, gameSeed, zl)
			if err != nil {
				return fmt.Errorf("game %d (seed %d): %w", i+1, gameSeed, err)
			}
			out.Game = i + 1
			outcomes[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	rep := &Report{Decks: [2]string{decks[0].Name, decks[1].Name}, Games: cfg.Games, Outcomes: outcomes}
	totalRounds := 0
	for _, o := range outcomes {
		totalRounds += o.Rounds
		if o.Winner < 0 {
			rep.Draws++
		} else {
			rep.Wins[o.Winner]++
		}
	}
	rep.AvgRounds = float64(totalRounds) / float64(cfg.Games)

	zl.Info("batch finished",
		zap.Int("games", rep.Games),
		zap.Ints("wins", rep.Wins[:]),
		zap.Int("draws", rep.Draws))
	return rep, nil
}

func playOne(ctx context.Context, cfg Config, decks [2]game.DeckList, seed int64, zl *zap.Logger) (Outcome, error) {
	mcfg := game.MatchConfig{
		Rules: cfg.Rules,
		Log:   zl,
		Seed:  seed,
	}
	for side := range decks {
		mcfg.Players[side] = game.PlayerSetup{Name: "Bot " + decks[side].Name, Deck: decks[side]}
	}
	m := game.NewMatch(mcfg,
		bot.New(rand.New(rand.NewSource(seed)), cfg.Tuning[0], zl),
		bot.New(rand.New(rand.NewSource(seed+1)), cfg.Tuning[1], zl))

	winner, err := m.Run(ctx)
	if err != nil {
		return Outcome{}, err
	}
	if cfg.Recorder != nil {
		if err := cfg.Recorder.RecordMatch(ctx, m); err != nil {
			return Outcome{}, fmt.Errorf("record: %w", err)
		}
	}
	return Outcome{
		MatchID: m.ID,
		Seed:    seed,
		Winner:  winner,
		Rounds:  len(m.Rounds),
		Lives:   m.Lives(),
		Result:  m.Result,
	}, nil
}

// Summary renders the report as a short table.
func (r *Report) Summary() string {
	var b strings.Builder
	pct := func(n int) float64 { return 100 * float64(n) / float64(r.Games) }
	fmt.Fprintf(&b, "%d games, %.2f rounds on average\n", r.Games, r.AvgRounds)
	for side, name := range r.Decks {
		fmt.Fprintf(&b, "  %-20s %5d wins (%5.1f%%)\n", name, r.Wins[side], pct(r.Wins[side]))
	}
	fmt.Fprintf(&b, "  %-20s %5d       (%5.1f%%)\n", "draws", r.Draws, pct(r.Draws))
	return b.String()
}
