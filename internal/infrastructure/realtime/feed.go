package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"cafe-team.backend/pkg/logger"
	ws "github.com/coder/websocket"
	"go.uber.org/zap"
)

// Event tells public team pages that the roster changed. Pages refetch on
// receipt, so the record itself is never sent.
type Event struct {
	Type   string    `json:"type"`
	Action string    `json:"action"`
	ID     string    `json:"id,omitempty"`
	At     time.Time `json:"at"`
}

// Feed fans team member changes out to every connected websocket listener.
// It is an http.Handler for the events route and a change publisher for the
// team usecase.
type Feed struct {
	origins []string

	mu        sync.RWMutex
	listeners map[*listener]struct{}
}

// NewFeed creates a feed accepting websocket upgrades from origins.
// An empty list only admits same-host requests.
func NewFeed(origins []string) *Feed {
	return &Feed{
		origins:   origins,
		listeners: make(map[*listener]struct{}),
	}
}

// Publish sends a {entity}_{action} event to every listener. A listener
// whose buffer is full misses the event.
func (f *Feed) Publish(entity, action, id string) {
	data, err := json.Marshal(Event{
		Type:   entity + "_" + action,
		Action: action,
		ID:     id,
		At:     time.Now().UTC(),
	})
	if err != nil {
		logger.Error(context.Background(), "Failed to encode team event", zap.Error(err))
		return
	}

	f.mu.RLock()
	defer f.mu.RUnlock()
	for l := range f.listeners {
		l.offer(data)
	}
}

// Listeners returns the number of connected listeners.
func (f *Feed) Listeners() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.listeners)
}

// ServeHTTP upgrades the request and streams events until the peer leaves.
func (f *Feed) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := ws.Accept(w, r, &ws.AcceptOptions{OriginPatterns: f.origins})
	if err != nil {
		logger.Warn(r.Context(), "Team feed upgrade failed", zap.Error(err))
		return
	}
	defer conn.CloseNow()

	l := newListener()
	f.subscribe(l)
	defer f.unsubscribe(l)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	go l.stream(ctx, conn)

	// inbound frames are ignored; Read fails once the peer goes away
	for {
		if _, _, err := conn.Read(ctx); err != nil {
			return
		}
	}
}

func (f *Feed) subscribe(l *listener) {
	f.mu.Lock()
	f.listeners[l] = struct{}{}
	f.mu.Unlock()
}

func (f *Feed) unsubscribe(l *listener) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.listeners[l]; ok {
		delete(f.listeners, l)
		close(l.send)
	}
}
