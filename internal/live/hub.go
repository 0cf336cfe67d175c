package live

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/puzzlewager/puzzlewager/internal/auth"
	"github.com/puzzlewager/puzzlewager/internal/chain"
	"github.com/puzzlewager/puzzlewager/internal/match"
)

const writeTimeout = 10 * time.Second

// Upgrader handles WebSocket upgrades for match view streams.
var Upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// TODO: restrict origins once the public frontends are pinned
		return true
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

type connection struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (c *connection) writeJSON(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return c.conn.WriteJSON(v)
}

// Hub streams re-derived match views to connected players. Every snapshot
// update re-derives each viewer's matches from scratch; there is no
// diffing and no cached derived state to invalidate.
type Hub struct {
	mu    sync.RWMutex
	conns map[chain.Address]*connection

	store    *chain.Store
	operator chain.Address
	tick     time.Duration
	logger   zerolog.Logger
}

// NewHub creates the live view hub. tick is the countdown refresh
// interval; non-positive defaults to one second.
func NewHub(store *chain.Store, operator chain.Address, tick time.Duration, logger zerolog.Logger) *Hub {
	if tick <= 0 {
		tick = time.Second
	}
	return &Hub{
		conns:    map[chain.Address]*connection{},
		store:    store,
		operator: operator,
		tick:     tick,
		logger:   logger.With().Str("component", "live_hub").Logger(),
	}
}

// Run forwards snapshot updates to connected viewers until the context is
// cancelled. Between chain events the hub re-broadcasts on the tick
// interval so submission and playback countdowns keep moving.
func (h *Hub) Run(ctx context.Context) error {
	updates, cancel := h.store.Subscribe()
	defer cancel()

	ticker := time.NewTicker(h.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case snap, ok := <-updates:
			if !ok {
				return nil
			}
			h.broadcast(snap)
		case <-ticker.C:
			if h.hasViewers() {
				h.broadcast(h.store.Current())
			}
		}
	}
}

func (h *Hub) hasViewers() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns) > 0
}

func (h *Hub) broadcast(snap *chain.Snapshot) {
	h.mu.RLock()
	viewers := make(map[chain.Address]*connection, len(h.conns))
	for addr, c := range h.conns {
		viewers[addr] = c
	}
	h.mu.RUnlock()

	now := time.Now().Unix()
	for addr, c := range viewers {
		views := h.viewsFor(snap, addr, now)
		if err := c.writeJSON(map[string]any{"type": "matches", "matches": views}); err != nil {
			h.logger.Debug().Err(err).Str("player", addr.Hex()).Msg("drop dead connection")
			h.detach(addr, c)
		}
	}
}

func (h *Hub) viewsFor(snap *chain.Snapshot, viewer chain.Address, now int64) []match.View {
	matches := match.ForPlayer(snap, h.operator, viewer, now)
	views := make([]match.View, 0, len(matches))
	for _, m := range matches {
		views = append(views, match.NewView(m))
	}
	return views
}

// Handler upgrades an authenticated request and registers the viewer. The
// initial state is pushed immediately so the client never waits for the
// next chain event.
func (h *Hub) Handler(w http.ResponseWriter, r *http.Request) {
	viewer, ok := auth.AddressFromContext(r.Context())
	if !ok {
		http.Error(w, "wallet session required", http.StatusUnauthorized)
		return
	}
	conn, err := Upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	c := &connection{conn: conn}

	h.mu.Lock()
	if old, exists := h.conns[viewer]; exists {
		_ = old.conn.Close()
	}
	h.conns[viewer] = c
	h.mu.Unlock()

	if err := c.writeJSON(map[string]any{
		"type":    "matches",
		"matches": h.viewsFor(h.store.Current(), viewer, time.Now().Unix()),
	}); err != nil {
		h.detach(viewer, c)
		return
	}

	// reader loop exists only to observe close; clients never send
	go func() {
		defer h.detach(viewer, c)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (h *Hub) detach(viewer chain.Address, c *connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if cur, ok := h.conns[viewer]; ok && cur == c {
		_ = cur.conn.Close()
		delete(h.conns, viewer)
	}
}
