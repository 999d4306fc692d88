package net

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"net"
	"os"

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

// Server hosts a match between the local player and either one TCP client or the bot.
type Server struct {
	Catalog  *game.Catalog
	Rules    game.Rules
	Addr     string // listen address, e.g. ":7777"
	HostDeck string // host's deck selector (number or name)
	HostName string
	VsBot    bool   // skip the listener and play the built-in bot
	BotDeck  string // bot's deck selector
	Tuning   bot.Tuning
	Seed     int64
	Log      *zap.Logger
	Recorder Recorder // optional

	// Host terminal; default to stdin and stdout.
	In  io.Reader
	Out io.Writer
}

func (s *Server) out() io.Writer {
	if s.Out == nil {
		return os.Stdout
	}
	return s.Out
}

func (s *Server) logger() *zap.Logger {
	if s.Log == nil {
		return zap.NewNop()
	}
	return s.Log
}

// Run listens on Addr, waits for a client to join, then runs the match. With VsBot it plays
// the bot without listening.
func (s *Server) Run(ctx context.Context) error {
	if s.VsBot {
		return s.play(ctx, nil, ClientMessage{Deck: s.BotDeck, Name: "Bot"})
	}

	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", s.Addr)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	defer ln.Close()

	fmt.Fprintf(s.out(), "Waiting for opponent on %s...\n", ln.Addr())
	return s.Serve(ctx, ln)
}

// Serve accepts exactly one joiner from ln and runs the match.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	stop := context.AfterFunc(ctx, func() { _ = ln.Close() })
	defer stop()

	conn, err := ln.Accept()
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("accept: %w", err)
	}
	defer conn.Close()

	fmt.Fprintf(s.out(), "Opponent connected from %s\n", conn.RemoteAddr())

	// Read the joiner's deck choice
	joinerCtrl := NewNetworkController(conn, 1)
	joinMsg, err := joinerCtrl.recv()
	if err != nil {
		return fmt.Errorf("read join message: %w", err)
	}
	if joinMsg.Type != MsgJoin {
		return fmt.Errorf("expected %s, got %q", MsgJoin, joinMsg.Type)
	}
	return s.play(ctx, joinerCtrl, joinMsg)
}

// play runs the match. joiner is nil when the opponent is the bot.
func (s *Server) play(ctx context.Context, joiner *NetworkController, join ClientMessage) error {
	zl := s.logger()
	rules := s.Rules
	catalog := s.Catalog
	if catalog == nil {
		catalog = game.DefaultCatalog()
	}

	hostSel := s.HostDeck
	if hostSel == "" {
		hostSel = "1"
	}
	joinSel := join.Deck
	if joinSel == "" {
		joinSel = "2"
	}
	hostDeck, err := catalog.Deck(hostSel)
	if err != nil {
		return fmt.Errorf("load host deck: %w", err)
	}
	joinerDeck, err := catalog.Deck(joinSel)
	if err != nil {
		return fmt.Errorf("load joiner deck: %w", err)
	}
	for _, dl := range []game.DeckList{hostDeck, joinerDeck} {
		if err := dl.Validate(rules); err != nil {
			return err
		}
	}

	fmt.Fprintf(s.out(), "Host: %s (%d cards)\n", hostDeck.Name, len(hostDeck.Cards))
	fmt.Fprintf(s.out(), "Opponent: %s (%d cards)\n", joinerDeck.Name, len(joinerDeck.Cards))

	// Create a pipe for the host's local connection
	hostConn, hostServerConn := net.Pipe()
	defer hostConn.Close()
	defer hostServerConn.Close()

	// Player 0 = host, Player 1 = joiner or bot
	hostCtrl := NewNetworkController(hostServerConn, 0)
	var opponent game.DecisionPolicy
	if joiner != nil {
		opponent = joiner
	} else {
		seed := s.Seed
		if seed == 0 {
			seed = rand.Int63()
		}
		opponent = bot.New(rand.New(rand.NewSource(seed+1)), s.Tuning, zl)
	}

	cfg := game.MatchConfig{
		Rules:  rules,
		Logger: log.NewZapLogger(zl),
		Log:    zl,
		Seed:   s.Seed,
	}
	cfg.Players[0] = game.PlayerSetup{Name: s.HostName, Deck: hostDeck}
	cfg.Players[1] = game.PlayerSetup{Name: join.Name, Deck: joinerDeck}
	m := game.NewMatch(cfg, hostCtrl, opponent)

	in := s.In
	if in == nil {
		in = os.Stdin
	}
	hostName := s.HostName
	if hostName == "" {
		hostName = "P1"
	}

	g, gctx := errgroup.WithContext(ctx)

	// Run the host's local REPL
	g.Go(func() error {
		return NewClient(hostConn, in, s.out(), hostName).RunREPL(gctx)
	})

	// Run the match
	g.Go(func() error {
		winner, err := m.Run(gctx)
		if err != nil {
			return fmt.Errorf("match error: %w", err)
		}
		if s.Recorder != nil {
			if err := s.Recorder.RecordMatch(gctx, m); err != nil {
				zl.Warn("record match", zap.String("match", m.ID), zap.Error(err))
			}
		}
		if joiner != nil {
			_ = joiner.SendGameOver(winner, m.Result)
		}
		return hostCtrl.SendGameOver(winner, m.Result)
	})

	return g.Wait()
}
