// Package live pushes workspace events to browser tabs over WebSocket.
package live

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/p-n-ai/curricuforge/internal/workspace"
)

const (
	writeWait     = 10 * time.Second
	pingPeriod    = 30 * time.Second
	defaultBuffer = 16
)

// Hub fans workspace events out to WebSocket subscribers. It implements
// workspace.EventLogger. A subscriber whose buffer is full is disconnected
// rather than slowing the workspace down.
type Hub struct {
	buffer  int
	origins []string

	mu   sync.Mutex
	subs map[*subscriber]struct{}
}

type subscriber struct {
	events    chan workspace.Event
	closeSlow func()
}

// Option configures a Hub.
type Option func(*Hub)

// WithBuffer sets how many events may queue per subscriber.
func WithBuffer(n int) Option {
	return func(h *Hub) {
		if n > 0 {
			h.buffer = n
		}
	}
}

// WithOriginPatterns allows cross-origin subscribers from the given hosts.
func WithOriginPatterns(patterns ...string) Option {
	return func(h *Hub) {
		h.origins = patterns
	}
}

// NewHub creates an empty hub.
func NewHub(opts ...Option) *Hub {
	h := &Hub{
		buffer: defaultBuffer,
		subs:   make(map[*subscriber]struct{}),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// LogEvent broadcasts event to every subscriber without blocking.
func (h *Hub) LogEvent(event workspace.Event) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	for s := range h.subs {
		select {
		case s.events <- event:
		default:
			delete(h.subs, s)
			go s.closeSlow()
		}
	}
	return nil
}

// Subscribers returns the number of connected subscribers.
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

func (h *Hub) subscribe(closeSlow func()) *subscriber {
	s := &subscriber{
		events:    make(chan workspace.Event, h.buffer),
		closeSlow: closeSlow,
	}
	h.mu.Lock()
	h.subs[s] = struct{}{}
	h.mu.Unlock()
	return s
}

func (h *Hub) unsubscribe(s *subscriber) {
	h.mu.Lock()
	delete(h.subs, s)
	h.mu.Unlock()
}

// ServeHTTP upgrades the request and streams events as JSON text frames
// until the client goes away. Client messages are ignored.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	c, err := websocket.Accept(w, r, &websocket.AcceptOptions{OriginPatterns: h.origins})
	if err != nil {
		slog.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer c.CloseNow()

	ctx := c.CloseRead(r.Context())
	s := h.subscribe(func() {
		c.Close(websocket.StatusPolicyViolation, "connection too slow to keep up with events")
	})
	defer h.unsubscribe(s)

	slog.Debug("live subscriber connected", "remote", r.RemoteAddr)

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case event := <-s.events:
			if err := write(ctx, c, event); err != nil {
				return
			}
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, writeWait)
			err := c.Ping(pingCtx)
			cancel()
			if err != nil {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

func write(ctx context.Context, c *websocket.Conn, event workspace.Event) error {
	ctx, cancel := context.WithTimeout(ctx, writeWait)
	defer cancel()
	return wsjson.Write(ctx, c, event)
}
