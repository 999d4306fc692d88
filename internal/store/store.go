// Package store keeps finished matches in an SQLite database.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/peterkuimelis/gwentx/internal/game"
)

var (
	// ErrNotFound is returned by Get for an unknown match ID.
	ErrNotFound = errors.New("match not found")
	// ErrUnfinished is returned when recording a match that is still running.
	ErrUnfinished = errors.New("match is not over")
)

// MatchRecord is one finished match as stored.
type MatchRecord struct {
	ID       string             `json:"id"`
	PlayedAt time.Time          `json:"played_at"`
	Players  [2]string          `json:"players"`
	Factions [2]string          `json:"factions"`
	Winner   int                `json:"winner"` // -1 for a draw
	Result   string             `json:"result"`
	Lives    [2]int             `json:"lives"`
	Rounds   []game.RoundResult `json:"rounds"`
}

// Filter narrows List. Zero values match everything.
type Filter struct {
	Faction string // either side played this faction
	Limit   int    // 0 means 50
}

// FactionStats summarizes the results of one faction.
type FactionStats struct {
	Faction string `json:"faction"`
	Played  int    `json:"played"`
	Wins    int    `json:"wins"`
	Losses  int    `json:"losses"`
	Draws   int    `json:"draws"`
}

// Store is the match history database. It is safe for concurrent use.
type Store struct {
	mu   sync.RWMutex
	db   *sql.DB
	path string
	zl   *zap.Logger
}

// Open creates or opens the history database at path.
func Open(path string, zl *zap.Logger) (*Store, error) {
	if zl == nil {
		zl = zap.NewNop()
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create store directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	// One writer at a time; the mutex covers readers racing a write.
	db.SetMaxOpenConns(1)

	s := &Store{db: db, path: path, zl: zl.Named("store")}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	s.zl.Debug("store opened", zap.String("path", path))
	return s, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) ensureSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS matches (
		id TEXT PRIMARY KEY,
		played_at DATETIME NOT NULL,
		player0 TEXT NOT NULL,
		player1 TEXT NOT NULL,
		faction0 TEXT NOT NULL,
		faction1 TEXT NOT NULL,
		winner INTEGER NOT NULL,
		result TEXT NOT NULL,
		lives0 INTEGER NOT NULL,
		lives1 INTEGER NOT NULL,
		rounds_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_matches_played ON matches(played_at DESC);
	CREATE INDEX IF NOT EXISTS idx_matches_faction0 ON matches(faction0);
	CREATE INDEX IF NOT EXISTS idx_matches_faction1 ON matches(faction1);
	`
	_, err := s.db.Exec(schema)
	return err
}

// NewRecord snapshots a finished match.
func NewRecord(m *game.Match) MatchRecord {
	rec := MatchRecord{
		ID:       m.ID,
		PlayedAt: time.Now().UTC(),
		Winner:   m.Winner,
		Result:   m.Result,
		Lives:    m.Lives(),
		Rounds:   append([]game.RoundResult(nil), m.Rounds...),
	}
	for i, p := range m.Players {
		rec.Players[i] = p.Name
		rec.Factions[i] = p.Faction
	}
	return rec
}

// RecordMatch stores a finished match. Unfinished matches are refused.
func (s *Store) RecordMatch(ctx context.Context, m *game.Match) error {
	if !m.Over {
		return fmt.Errorf("record match %s: %w", m.ID, ErrUnfinished)
	}
	return s.Record(ctx, NewRecord(m))
}

// Record inserts rec, assigning an ID and timestamp when missing.
func (s *Store) Record(ctx context.Context, rec MatchRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.PlayedAt.IsZero() {
		rec.PlayedAt = time.Now().UTC()
	}
	rounds, err := json.Marshal(rec.Rounds)
	if err != nil {
		return fmt.Errorf("encode rounds: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO matches
		(id, played_at, player0, player1, faction0, faction1, winner, result, lives0, lives1, rounds_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.PlayedAt, rec.Players[0], rec.Players[1], rec.Factions[0], rec.Factions[1],
		rec.Winner, rec.Result, rec.Lives[0], rec.Lives[1], string(rounds),
	)
	if err != nil {
		return fmt.Errorf("insert match %s: %w", rec.ID, err)
	}

	s.zl.Debug("match recorded", zap.String("match", rec.ID), zap.Int("winner", rec.Winner))
	return nil
}

const selectColumns = `id, played_at, player0, player1, faction0, faction1, winner, result, lives0, lives1, rounds_json`

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (MatchRecord, error) {
	var rec MatchRecord
	var rounds string
	err := row.Scan(&rec.ID, &rec.PlayedAt, &rec.Players[0], &rec.Players[1],
		&rec.Factions[0], &rec.Factions[1], &rec.Winner, &rec.Result,
		&rec.Lives[0], &rec.Lives[1], &rounds)
	if err != nil {
		return rec, err
	}
	if err := json.Unmarshal([]byte(rounds), &rec.Rounds); err != nil {
		return rec, fmt.Errorf("decode rounds of %s: %w", rec.ID, err)
	}
	return rec, nil
}

// Get returns the match with the given ID.
func (s *Store) Get(ctx context.Context, id string) (MatchRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM matches WHERE id = ?`, id)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return MatchRecord{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return MatchRecord{}, fmt.Errorf("get match %s: %w", id, err)
	}
	return rec, nil
}

// List returns recorded matches, most recent first.
func (s *Store) List(ctx context.Context, f Filter) ([]MatchRecord, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = 50
	}

	query := `SELECT ` + selectColumns + ` FROM matches`
	var args []any
	if f.Faction != "" {
		query += ` WHERE faction0 = ? COLLATE NOCASE OR faction1 = ? COLLATE NOCASE`
		args = append(args, f.Faction, f.Faction)
	}
	query += ` ORDER BY played_at DESC, id LIMIT ?`
	args = append(args, limit)

	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}
	defer rows.Close()

	var out []MatchRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan match: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Stats aggregates wins, losses and draws per faction.
func (s *Store) Stats(ctx context.Context) ([]FactionStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT faction,
		       COUNT(*),
		       SUM(CASE WHEN winner = side THEN 1 ELSE 0 END),
		       SUM(CASE WHEN winner = 1 - side THEN 1 ELSE 0 END),
		       SUM(CASE WHEN winner = -1 THEN 1 ELSE 0 END)
		FROM (
			SELECT faction0 AS faction, 0 AS side, winner FROM matches
			UNION ALL
			SELECT faction1 AS faction, 1 AS side, winner FROM matches
		)
		GROUP BY faction
		ORDER BY faction`)
	if err != nil {
		return nil, fmt.Errorf("faction stats: %w", err)
	}
	defer rows.Close()

	var out []FactionStats
	for rows.Next() {
		var fs FactionStats
		if err := rows.Scan(&fs.Faction, &fs.Played, &fs.Wins, &fs.Losses, &fs.Draws); err != nil {
			return nil, fmt.Errorf("scan stats: %w", err)
		}
		out = append(out, fs)
	}
	return out, rows.Err()
}
