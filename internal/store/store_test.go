package store

import (
	"context"
	"math/rand"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/peterkuimelis/gwentx/internal/bot"
	"github.com/peterkuimelis/gwentx/internal/game"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "history", "matches.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func playBotMatch(t *testing.T, seed int64) *game.Match {
	t.Helper()
	cat := game.DefaultCatalog()
	d0, err := cat.DeckByNumber(1)
	require.NoError(t, err)
	d1, err := cat.DeckByNumber(2)
	require.NoError(t, err)

	cfg := game.MatchConfig{Seed: seed}
	cfg.Players[0] = game.PlayerSetup{Name: "North", Deck: d0}
	cfg.Players[1] = game.PlayerSetup{Name: "South", Deck: d1}
	m := game.NewMatch(cfg,
		bot.New(rand.New(rand.NewSource(seed)), bot.DefaultTuning, nil),
		bot.New(rand.New(rand.NewSource(seed+1)), bot.DefaultTuning, nil))
	_, err = m.Run(context.Background())
	require.NoError(t, err)
	return m
}

func TestRecordAndGetMatch(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()
	m := playBotMatch(t, 21)

	require.NoError(t, s.RecordMatch(ctx, m))

	got, err := s.Get(ctx, m.ID)
	require.NoError(t, err)
	want := NewRecord(m)
	diff := cmp.Diff(want, got, cmp.Comparer(func(a, b time.Time) bool {
		return a.Sub(b).Abs() < time.Minute
	}))
	assert.Empty(t, diff)
	assert.Equal(t, "Northern Realms", got.Factions[0])
	assert.NotEmpty(t, got.Rounds)
}

func TestRecordRefusesUnfinishedMatch(t *testing.T) {
	s := openTemp(t)
	cat := game.DefaultCatalog()
	d, err := cat.DeckByNumber(1)
	require.NoError(t, err)

	var cfg game.MatchConfig
	cfg.Players[0] = game.PlayerSetup{Deck: d}
	cfg.Players[1] = game.PlayerSetup{Deck: d}
	m := game.NewMatch(cfg, bot.New(nil, bot.DefaultTuning, nil), bot.New(nil, bot.DefaultTuning, nil))

	err = s.RecordMatch(context.Background(), m)
	assert.ErrorIs(t, err, ErrUnfinished)
}

func TestGetUnknownMatch(t *testing.T) {
	s := openTemp(t)
	_, err := s.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListAndStats(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	records := []MatchRecord{
		{PlayedAt: base, Factions: [2]string{"Northern Realms", "Nilfgaard"}, Winner: 0, Result: "P1 wins"},
		{PlayedAt: base.Add(time.Hour), Factions: [2]string{"Nilfgaard", "Monsters"}, Winner: 1, Result: "P2 wins"},
		{PlayedAt: base.Add(2 * time.Hour), Factions: [2]string{"Northern Realms", "Monsters"}, Winner: -1, Result: "Draw"},
	}
	for _, rec := range records {
		require.NoError(t, s.Record(ctx, rec))
	}

	all, err := s.List(ctx, Filter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "Draw", all[0].Result, "most recent first")
	for _, rec := range all {
		assert.NotEmpty(t, rec.ID)
	}

	nilf, err := s.List(ctx, Filter{Faction: "nilfgaard"})
	require.NoError(t, err)
	assert.Len(t, nilf, 2)

	limited, err := s.List(ctx, Filter{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	stats, err := s.Stats(ctx)
	require.NoError(t, err)
	want := []FactionStats{
		{Faction: "Monsters", Played: 2, Wins: 1, Losses: 0, Draws: 1},
		{Faction: "Nilfgaard", Played: 2, Wins: 0, Losses: 2, Draws: 0},
		{Faction: "Northern Realms", Played: 2, Wins: 1, Losses: 0, Draws: 1},
	}
	assert.Empty(t, cmp.Diff(want, stats))
}

func TestConcurrentRecords(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, s.Record(ctx, MatchRecord{Winner: -1, Result: "Draw"}))
		}()
	}
	wg.Wait()

	all, err := s.List(ctx, Filter{})
	require.NoError(t, err)
	assert.Len(t, all, 8)
}

func TestReopenKeepsHistory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "matches.db")
	s, err := Open(path, nil)
	require.NoError(t, err)
	require.NoError(t, s.Record(context.Background(), MatchRecord{ID: "keep", Result: "Draw", Winner: -1}))
	require.NoError(t, s.Close())

	s, err = Open(path, nil)
	require.NoError(t, err)
	defer s.Close()
	rec, err := s.Get(context.Background(), "keep")
	require.NoError(t, err)
	assert.Equal(t, "Draw", rec.Result)
	assert.Equal(t, path, s.Path())
}
