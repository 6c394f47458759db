// Package preview keeps embedded rendering surfaces in sync with the editor.
// It is a one-way push channel: on every editor change the full merged
// section list is sent to every connected surface. Surfaces never fetch data
// themselves while embedded; each push is a total, idempotent replacement.
package preview

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/toolsuite/pagebuilder"
	"github.com/toolsuite/pagebuilder/internal/editor"
	"golang.org/x/time/rate"
)

// Message kinds on the preview channel.
const (
	KindSync   = "sections:sync" // editor -> surface: full merged list
	KindReload = "reload"        // editor -> surface: assets changed, reload
	KindReady  = "ready"         // surface -> editor: finished initial load
)

// SyncMessage is the envelope pushed to a rendering surface. Components are
// keyed by id and ordered by order; the surface decides whether to skip
// inactive entries (public render) or show them all (admin preview).
type SyncMessage struct {
	Kind       string                  `json:"kind"`
	PageKey    string                  `json:"page_key"`
	Components []pagebuilder.Component `json:"components"`
}

type surfaceConn struct {
	id   string
	conn *websocket.Conn
	mu   sync.Mutex // serializes writes per connection
}

func (s *surfaceConn) send(payload any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return s.conn.WriteMessage(websocket.TextMessage, raw)
}

// Bridge is the websocket hub connecting one page editor to its rendering
// surfaces.
type Bridge struct {
	ed       *editor.Editor
	upgrader websocket.Upgrader

	mu    sync.RWMutex
	conns map[string]*surfaceConn

	// dirty coalesces change signals; the push loop drains it through a rate
	// limiter so per-keystroke edits don't flood the socket. The final state
	// is always delivered.
	dirty   chan struct{}
	limiter *rate.Limiter
	done    chan struct{}
}

// New creates a bridge for the given editor. allowedOrigins restricts which
// embedding origins may connect; empty means same-host only is not enforced
// and any origin is accepted (development mode).
func New(ed *editor.Editor, allowedOrigins []string) *Bridge {
	b := &Bridge{
		ed:      ed,
		conns:   make(map[string]*surfaceConn),
		dirty:   make(chan struct{}, 1),
		limiter: rate.NewLimiter(rate.Limit(20), 1),
		done:    make(chan struct{}),
	}
	b.upgrader = websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if origin == allowed {
					return true
				}
			}
			return false
		},
	}
	ed.Subscribe(b.markDirty)
	go b.pushLoop()
	return b
}

// Close stops the push loop. Open connections are closed by their read loops.
func (b *Bridge) Close() {
	close(b.done)
}

func (b *Bridge) markDirty() {
	select {
	case b.dirty <- struct{}{}:
	default:
	}
}

func (b *Bridge) pushLoop() {
	for {
		select {
		case <-b.done:
			return
		case <-b.dirty:
			if err := b.limiter.Wait(context.Background()); err != nil {
				return
			}
			b.broadcastSync()
		}
	}
}

// broadcastSync pushes the current merged list to every connected surface.
func (b *Bridge) broadcastSync() {
	msg := SyncMessage{
		Kind:       KindSync,
		PageKey:    b.ed.PageKey(),
		Components: b.ed.MergedComponents(),
	}

	b.mu.RLock()
	conns := make([]*surfaceConn, 0, len(b.conns))
	for _, c := range b.conns {
		conns = append(conns, c)
	}
	b.mu.RUnlock()

	for _, c := range conns {
		if err := c.send(msg); err != nil {
			log.Printf("[Preview] push to %s failed: %v", c.id, err)
		}
	}
}

// BroadcastReload tells every surface to reload itself (assets changed).
func (b *Bridge) BroadcastReload() {
	b.mu.RLock()
	conns := make([]*surfaceConn, 0, len(b.conns))
	for _, c := range b.conns {
		conns = append(conns, c)
	}
	b.mu.RUnlock()

	for _, c := range conns {
		if err := c.send(map[string]string{"kind": KindReload}); err != nil {
			log.Printf("[Preview] reload push to %s failed: %v", c.id, err)
		}
	}
}

// ConnectionCount returns the number of attached rendering surfaces.
func (b *Bridge) ConnectionCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.conns)
}

// ServeHTTP upgrades a rendering surface connection and feeds it until it
// disconnects.
func (b *Bridge) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := b.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[Preview] upgrade failed: %v", err)
		return
	}

	sc := &surfaceConn{id: uuid.NewString(), conn: conn}

	b.mu.Lock()
	b.conns[sc.id] = sc
	b.mu.Unlock()
	log.Printf("[Preview] surface connected: %s (%s)", sc.id, conn.RemoteAddr())

	// Feed current state immediately so a late-attaching surface doesn't
	// wait for the next edit.
	if err := sc.send(SyncMessage{
		Kind:       KindSync,
		PageKey:    b.ed.PageKey(),
		Components: b.ed.MergedComponents(),
	}); err != nil {
		log.Printf("[Preview] initial push to %s failed: %v", sc.id, err)
	}

	defer func() {
		b.mu.Lock()
		delete(b.conns, sc.id)
		b.mu.Unlock()
		conn.Close()
		log.Printf("[Preview] surface disconnected: %s", sc.id)
	}()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("[Preview] unexpected close from %s: %v", sc.id, err)
			}
			return
		}

		var msg struct {
			Kind string `json:"kind"`
		}
		if err := json.Unmarshal(raw, &msg); err != nil {
			log.Printf("[Preview] bad message from %s: %v", sc.id, err)
			continue
		}

		// A surface signals ready when its initial load finishes; answer with
		// a fresh full sync for that surface only.
		if msg.Kind == KindReady {
			if err := sc.send(SyncMessage{
				Kind:       KindSync,
				PageKey:    b.ed.PageKey(),
				Components: b.ed.MergedComponents(),
			}); err != nil {
				log.Printf("[Preview] ready resync to %s failed: %v", sc.id, err)
			}
		}
	}
}
