package web

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/coder/websocket"
	"go.uber.org/zap"

	"github.com/peterkuimelis/gwentx/internal/game"
	gwentnet "github.com/peterkuimelis/gwentx/internal/net"
	"github.com/peterkuimelis/gwentx/internal/store"
)

//go:embed static
var staticFiles embed.FS

// History is the part of the match store the API reads.
type History interface {
	List(ctx context.Context, f store.Filter) ([]store.MatchRecord, error)
	Stats(ctx context.Context) ([]store.FactionStats, error)
}

// Options configures a Server.
type Options struct {
	CatalogPath string  // empty serves the built-in catalog and disables reload
	History     History // optional; /api/matches answers 404 without it
	Log         *zap.Logger
}

// Server is the gwentx web UI server.
type Server struct {
	catalogPath string
	history     History
	log         *zap.Logger
	mux         *http.ServeMux

	mu      sync.RWMutex
	catalog *game.Catalog
}

// NewServer loads the catalog and sets up the routes.
func NewServer(opts Options) (*Server, error) {
	zl := opts.Log
	if zl == nil {
		zl = zap.NewNop()
	}
	s := &Server{
		catalogPath: opts.CatalogPath,
		history:     opts.History,
		log:         zl.Named("web"),
		mux:         http.NewServeMux(),
	}
	if err := s.reloadCatalog(); err != nil {
		return nil, err
	}
	s.setupRoutes()
	return s, nil
}

// Catalog returns the catalog currently served.
func (s *Server) Catalog() *game.Catalog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.catalog
}

func (s *Server) reloadCatalog() error {
	cat := game.DefaultCatalog()
	if s.catalogPath != "" {
		var err error
		if cat, err = game.LoadCatalog(s.catalogPath); err != nil {
			return err
		}
	}
	s.mu.Lock()
	s.catalog = cat
	s.mu.Unlock()
	return nil
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) setupRoutes() {
	// Embedded static files
	staticFS, _ := fs.Sub(staticFiles, "static")

	// Serve index.html at root
	s.mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		f, err := staticFS.Open("index.html")
		if err != nil {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		defer f.Close()
		io.Copy(w, f)
	})

	// Static CSS/JS
	s.mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))

	// API endpoints
	s.mux.HandleFunc("GET /api/cards", s.handleCards)
	s.mux.HandleFunc("GET /api/decks", s.handleDecks)
	s.mux.HandleFunc("GET /api/matches", s.handleMatches)
	s.mux.HandleFunc("GET /api/stats", s.handleStats)

	// WebSocket proxy
	s.mux.HandleFunc("GET /ws", s.handleWebSocket)
}

func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Warn("encode response", zap.Error(err))
	}
}

func (s *Server) handleCards(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, cardInfos(s.Catalog()))
}

func (s *Server) handleDecks(w http.ResponseWriter, r *http.Request) {
	decks, err := deckInfos(s.Catalog())
	if err != nil {
		http.Error(w, "could not resolve decks", http.StatusInternalServerError)
		return
	}
	s.writeJSON(w, decks)
}

func (s *Server) handleMatches(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		http.Error(w, "match history is not enabled", http.StatusNotFound)
		return
	}
	f := store.Filter{Faction: r.URL.Query().Get("faction")}
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			http.Error(w, "limit must be a non-negative integer", http.StatusBadRequest)
			return
		}
		f.Limit = n
	}
	recs, err := s.history.List(r.Context(), f)
	if err != nil {
		s.log.Error("list matches", zap.Error(err))
		http.Error(w, "could not list matches", http.StatusInternalServerError)
		return
	}
	if recs == nil {
		recs = []store.MatchRecord{}
	}
	s.writeJSON(w, recs)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		http.Error(w, "match history is not enabled", http.StatusNotFound)
		return
	}
	stats, err := s.history.Stats(r.Context())
	if err != nil {
		s.log.Error("faction stats", zap.Error(err))
		http.Error(w, "could not compute stats", http.StatusInternalServerError)
		return
	}
	if stats == nil {
		stats = []store.FactionStats{}
	}
	s.writeJSON(w, stats)
}

// connectMessage is the browser's first WebSocket frame.
type connectMessage struct {
	Type string `json:"type"`
	Addr string `json:"addr"`
	Deck string `json:"deck"`
	Name string `json:"name"`
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	wsConn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true, // Allow connections from any origin
	})
	if err != nil {
		s.log.Warn("websocket accept", zap.Error(err))
		return
	}
	defer wsConn.CloseNow()

	ctx := r.Context()

	// Read initial connect message from browser
	_, connectData, err := wsConn.Read(ctx)
	if err != nil {
		s.log.Debug("websocket read connect", zap.Error(err))
		return
	}

	var connectMsg connectMessage
	if err := json.Unmarshal(connectData, &connectMsg); err != nil || connectMsg.Type != "connect" {
		wsConn.Close(websocket.StatusPolicyViolation, "expected connect message")
		return
	}

	// Open TCP connection to game server
	var d net.Dialer
	tcpConn, err := d.DialContext(ctx, "tcp", connectMsg.Addr)
	if err != nil {
		errMsg, _ := json.Marshal(map[string]string{
			"type":   "error",
			"result": fmt.Sprintf("Could not connect to game server at %s: %v", connectMsg.Addr, err),
		})
		wsConn.Write(ctx, websocket.MessageText, errMsg)
		wsConn.Close(websocket.StatusNormalClosure, "connection failed")
		return
	}
	defer tcpConn.Close()

	// Send join message over TCP
	join := gwentnet.ClientMessage{Type: gwentnet.MsgJoin, Deck: connectMsg.Deck, Name: connectMsg.Name}
	if err := json.NewEncoder(tcpConn).Encode(join); err != nil {
		s.log.Warn("tcp write join", zap.Error(err))
		return
	}
	s.log.Info("browser joined game", zap.String("addr", connectMsg.Addr), zap.String("deck", connectMsg.Deck))

	done := make(chan struct{})

	// TCP → WebSocket (server messages to browser)
	go func() {
		defer close(done)
		dec := json.NewDecoder(tcpConn)
		for {
			var msg json.RawMessage
			if err := dec.Decode(&msg); err != nil {
				if !errors.Is(err, io.EOF) && !errors.Is(err, net.ErrClosed) {
					s.log.Warn("tcp read", zap.Error(err))
				}
				return
			}
			if err := wsConn.Write(ctx, websocket.MessageText, msg); err != nil {
				s.log.Debug("websocket write", zap.Error(err))
				return
			}
		}
	}()

	// WebSocket → TCP (browser responses to server)
	go func() {
		for {
			_, data, err := wsConn.Read(ctx)
			if err != nil {
				// Browser went away; unblock the TCP reader.
				tcpConn.Close()
				return
			}
			data = append(data, '\n')
			if _, err := tcpConn.Write(data); err != nil {
				s.log.Debug("tcp write", zap.Error(err))
				return
			}
		}
	}()

	<-done
	wsConn.Close(websocket.StatusNormalClosure, "game ended")
}

// ListenAndServe serves on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.mux, ReadHeaderTimeout: 10 * time.Second}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		<-errCh
		return nil
	}
}
