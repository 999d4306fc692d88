package web

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"golang.org/x/sync/errgroup"

	gwentnet "github.com/peterkuimelis/gwentx/internal/net"
	"github.com/peterkuimelis/gwentx/internal/store"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeHistory struct {
	recs   []store.MatchRecord
	filter store.Filter
	err    error
}

func (h *fakeHistory) List(ctx context.Context, f store.Filter) ([]store.MatchRecord, error) {
	h.filter = f
	return h.recs, h.err
}

func (h *fakeHistory) Stats(ctx context.Context) ([]store.FactionStats, error) {
	return []store.FactionStats{{Faction: "Nilfgaard", Played: 1, Wins: 1}}, h.err
}

func newTestServer(t *testing.T, opts Options) (*Server, *httptest.Server) {
	t.Helper()
	s, err := NewServer(opts)
	require.NoError(t, err)
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return s, ts
}

func getJSON(t *testing.T, url string, v any) int {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusOK && v != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
	}
	return resp.StatusCode
}

func TestIndexAndStatic(t *testing.T) {
	_, ts := newTestServer(t, Options{})

	resp, err := http.Get(ts.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")

	resp2, err := http.Get(ts.URL + "/nope")
	require.NoError(t, err)
	resp2.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp2.StatusCode)
}

func TestCardsAndDecks(t *testing.T) {
	_, ts := newTestServer(t, Options{})

	var cards []CardInfo
	require.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/api/cards", &cards))
	require.NotEmpty(t, cards)
	byName := make(map[string]CardInfo)
	for _, c := range cards {
		byName[c.Name] = c
	}
	yen, ok := byName["Yennefer of Vengerberg"]
	require.True(t, ok)
	assert.True(t, yen.Hero)
	require.NotNil(t, yen.Strength)
	decoy := byName["Decoy"]
	assert.Nil(t, decoy.Strength, "specials carry no strength")
	assert.Equal(t, "decoy", decoy.Ability)

	var decks []DeckInfo
	require.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/api/decks", &decks))
	require.Len(t, decks, 2)
	assert.Equal(t, 1, decks[0].Number)
	assert.Equal(t, "Northern Realms", decks[0].Name)
	assert.NotEmpty(t, decks[0].Leader)
	assert.Greater(t, decks[0].Size, len(decks[0].Cards), "cards are listed once per name")
}

func TestMatchesEndpoint(t *testing.T) {
	_, ts := newTestServer(t, Options{})
	assert.Equal(t, http.StatusNotFound, getJSON(t, ts.URL+"/api/matches", nil))

	h := &fakeHistory{recs: []store.MatchRecord{{ID: "m1", Winner: 1, Result: "P2 wins"}}}
	_, ts = newTestServer(t, Options{History: h})

	var recs []store.MatchRecord
	require.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/api/matches?faction=Nilfgaard&limit=5", &recs))
	require.Len(t, recs, 1)
	assert.Equal(t, "m1", recs[0].ID)
	assert.Equal(t, store.Filter{Faction: "Nilfgaard", Limit: 5}, h.filter)

	assert.Equal(t, http.StatusBadRequest, getJSON(t, ts.URL+"/api/matches?limit=x", nil))

	var stats []store.FactionStats
	require.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/api/stats", &stats))
	assert.Equal(t, 1, stats[0].Wins)

	h.err = errors.New("disk on fire")
	assert.Equal(t, http.StatusInternalServerError, getJSON(t, ts.URL+"/api/matches", nil))
}

// TestWebSocketBridge plays a whole match with the browser side answering through /ws.
func TestWebSocketBridge(t *testing.T) {
	_, ts := newTestServer(t, Options{})

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var hostOut bytes.Buffer
	host := &gwentnet.Server{Seed: 8, In: strings.NewReader(strings.Repeat("1\n", 5000)), Out: &hostOut}

	var g errgroup.Group
	g.Go(func() error {
		defer ln.Close()
		return host.Serve(ctx, ln)
	})

	ws, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(ts.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	defer ws.CloseNow()

	connect, _ := json.Marshal(connectMessage{Type: "connect", Addr: ln.Addr().String(), Deck: "nilfgaard", Name: "Browser"})
	require.NoError(t, ws.Write(ctx, websocket.MessageText, connect))

	var result string
	for result == "" {
		_, data, err := ws.Read(ctx)
		require.NoError(t, err)
		var msg gwentnet.ServerMessage
		require.NoError(t, json.Unmarshal(data, &msg))

		var reply *gwentnet.ClientMessage
		switch msg.Type {
		case gwentnet.MsgChooseDecision:
			reply = &gwentnet.ClientMessage{Type: gwentnet.MsgDecision, Index: 0}
		case gwentnet.MsgChooseCards:
			indices := []int{}
			for i := 0; i < msg.Min; i++ {
				indices = append(indices, i)
			}
			reply = &gwentnet.ClientMessage{Type: gwentnet.MsgCards, Indices: indices}
		case gwentnet.MsgChooseLane:
			reply = &gwentnet.ClientMessage{Type: gwentnet.MsgLane, Index: 0}
		case gwentnet.MsgGameOver:
			result = msg.Result
		}
		if reply != nil {
			data, _ := json.Marshal(reply)
			require.NoError(t, ws.Write(ctx, websocket.MessageText, data))
		}
	}

	require.NoError(t, g.Wait())
	assert.NotEmpty(t, result)
	assert.Contains(t, hostOut.String(), "Opponent: Nilfgaard")
	ws.Close(websocket.StatusNormalClosure, "")
}

func TestWebSocketBridgeReportsDialFailure(t *testing.T) {
	_, ts := newTestServer(t, Options{})

	// A listener that is closed right away leaves a port nothing answers on.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	ln.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	ws, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(ts.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	defer ws.CloseNow()

	connect, _ := json.Marshal(connectMessage{Type: "connect", Addr: addr})
	require.NoError(t, ws.Write(ctx, websocket.MessageText, connect))

	_, data, err := ws.Read(ctx)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"type":"error"`)
}

const miniCatalog = `cards:
  - {name: Ves, strength: 5, row: close}
decks:
  - name: Tiny
    faction: Test
    cards:
      - {name: Ves, count: 3}
`

func TestWatchCatalogReloads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cards.yaml")
	require.NoError(t, os.WriteFile(path, []byte(miniCatalog), 0o644))

	s, err := NewServer(Options{CatalogPath: path})
	require.NoError(t, err)
	require.Len(t, s.Catalog().Cards(), 1)

	ctx, cancel := context.WithCancel(context.Background())
	reloads := make(chan error, 4)
	done := make(chan error, 1)
	go func() { done <- s.WatchCatalog(ctx, func(err error) { reloads <- err }) }()
	defer func() {
		cancel()
		assert.NoError(t, <-done)
	}()

	// Give the watcher a moment to register the directory.
	time.Sleep(100 * time.Millisecond)

	require.NoError(t, os.WriteFile(path, []byte("cards: [this is not"), 0o644))
	select {
	case err := <-reloads:
		assert.Error(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("no reload after a broken write")
	}
	assert.Len(t, s.Catalog().Cards(), 1, "a broken file keeps the old catalog")

	grown := strings.Replace(miniCatalog, "cards:\n", "cards:\n  - {name: Yarpen Zigrin, strength: 2, row: close}\n", 1)
	require.NoError(t, os.WriteFile(path, []byte(grown), 0o644))
	select {
	case err := <-reloads:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("no reload after a good write")
	}
	assert.Len(t, s.Catalog().Cards(), 2)
}

func TestWatchCatalogNeedsFile(t *testing.T) {
	s, err := NewServer(Options{})
	require.NoError(t, err)
	assert.Error(t, s.WatchCatalog(context.Background(), nil))
}
