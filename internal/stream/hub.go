// Package stream fans alert snapshots out to websocket subscribers.
package stream

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"nhooyr.io/websocket"

	"github.com/mohith182/turbine-ai/internal/metrics"
)

const (
	defaultBuffer = 8
	writeTimeout  = 5 * time.Second
)

// Event is the frame written to subscribers.
type Event struct {
	Type      string    `json:"type"`
	Data      any       `json:"data"`
	Timestamp time.Time `json:"timestamp"`
}

type subscriber struct {
	ch chan []byte
}

// Hub keeps the most recent frame and replays it to new subscribers.
type Hub struct {
	mu     sync.Mutex
	subs   map[*subscriber]struct{}
	last   []byte
	closed bool

	buf            int
	originPatterns []string
	logger         *zap.Logger
	dropped        uint64
}

func NewHub(logger *zap.Logger, originPatterns []string) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		subs:           map[*subscriber]struct{}{},
		buf:            defaultBuffer,
		originPatterns: originPatterns,
		logger:         logger,
	}
}

// Publish marshals data into an Event and hands it to every subscriber.
// A subscriber whose buffer is full is disconnected.
func (h *Hub) Publish(eventType string, data any) error {
	b, err := json.Marshal(Event{Type: eventType, Data: data, Timestamp: time.Now().UTC()})
	if err != nil {
		return err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil
	}
	h.last = b
	for s := range h.subs {
		select {
		case s.ch <- b:
		default:
			atomic.AddUint64(&h.dropped, 1)
			h.removeLocked(s)
		}
	}
	return nil
}

func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

func (h *Hub) Dropped() uint64 {
	return atomic.LoadUint64(&h.dropped)
}

// Close disconnects every subscriber. Later Publish calls are no-ops.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for s := range h.subs {
		h.removeLocked(s)
	}
}

func (h *Hub) subscribe() (*subscriber, bool) {
	s := &subscriber{ch: make(chan []byte, h.buf)}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil, false
	}
	if h.last != nil {
		s.ch <- h.last
	}
	h.subs[s] = struct{}{}
	metrics.StreamClients.Inc()
	return s, true
}

func (h *Hub) unsubscribe(s *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(s)
}

func (h *Hub) removeLocked(s *subscriber) {
	if _, ok := h.subs[s]; !ok {
		return
	}
	delete(h.subs, s)
	close(s.ch)
	metrics.StreamClients.Dec()
}

// ServeHTTP upgrades the request and streams frames until the peer leaves,
// the hub drops it, or the request context ends.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{OriginPatterns: h.originPatterns})
	if err != nil {
		h.logger.Debug("stream accept failed", zap.Error(err))
		return
	}
	s, ok := h.subscribe()
	if !ok {
		_ = conn.Close(websocket.StatusGoingAway, "shutting down")
		return
	}
	defer h.unsubscribe(s)

	// Subscribers never send; CloseRead handles control frames and
	// cancels ctx once the peer closes.
	ctx := conn.CloseRead(r.Context())
	if err := h.pump(ctx, conn, s); err != nil {
		h.logger.Debug("stream subscriber gone", zap.Error(err))
	}
}

func (h *Hub) pump(ctx context.Context, conn *websocket.Conn, s *subscriber) error {
	for {
		select {
		case <-ctx.Done():
			_ = conn.Close(websocket.StatusNormalClosure, "")
			return ctx.Err()
		case b, ok := <-s.ch:
			if !ok {
				_ = conn.Close(websocket.StatusPolicyViolation, "subscriber too slow")
				return nil
			}
			wctx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := conn.Write(wctx, websocket.MessageText, b)
			cancel()
			if err != nil {
				return err
			}
		}
	}
}
