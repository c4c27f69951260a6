package hub

import (
	"context"
	"sync"

	"golang.org/x/time/rate"

	"github.com/MattLee479/UpdatedWebsite2/internal/dashboard"
	"github.com/MattLee479/UpdatedWebsite2/internal/pkg/logger"
	"github.com/MattLee479/UpdatedWebsite2/internal/watcher"
)

const subscriberBuffer = 16

// Builder produces a fresh dashboard payload.
type Builder func(ctx context.Context) dashboard.Payload

// Hub turns log change events into dashboard payloads and broadcasts them to
// all subscribers. Bursts of appends are coalesced by the limiter.
type Hub struct {
	build   Builder
	input   <-chan watcher.Event
	limiter *rate.Limiter
	log     *logger.Logger

	mu          sync.RWMutex
	subscribers map[chan dashboard.Payload]struct{}
	dropped     int64
}

// New creates a Hub that rebuilds on every event from input, at most
// perSecond times per second.
func New(input <-chan watcher.Event, build Builder, perSecond float64, log *logger.Logger) *Hub {
	return &Hub{
		build:       build,
		input:       input,
		limiter:     rate.NewLimiter(rate.Limit(perSecond), 1),
		log:         log.WithComponent("hub"),
		subscribers: make(map[chan dashboard.Payload]struct{}),
	}
}

// Subscribe returns a buffered channel that receives every broadcast payload.
func (h *Hub) Subscribe() <-chan dashboard.Payload {
	ch := make(chan dashboard.Payload, subscriberBuffer)
	h.mu.Lock()
	h.subscribers[ch] = struct{}{}
	h.mu.Unlock()
	return ch
}

// Unsubscribe removes and closes a channel returned by Subscribe.
func (h *Hub) Unsubscribe(sub <-chan dashboard.Payload) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subscribers {
		if ch == sub {
			delete(h.subscribers, ch)
			close(ch)
			return
		}
	}
}

// Dropped returns the total number of payloads dropped for slow consumers.
func (h *Hub) Dropped() int64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.dropped
}

// Start consumes change events until the context is cancelled or the input
// channel is closed, then closes all subscriber channels.
func (h *Hub) Start(ctx context.Context) {
	defer h.closeAll()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-h.input:
			if !ok {
				return
			}
			h.log.Debug("log changed", "path", ev.Path, "op", ev.Op.String())
			if err := h.limiter.Wait(ctx); err != nil {
				return
			}
			if !h.drain() {
				return
			}
			h.Broadcast(h.build(ctx))
		}
	}
}

// drain discards events queued while waiting on the limiter. It reports false
// once input is closed.
func (h *Hub) drain() bool {
	for {
		select {
		case _, ok := <-h.input:
			if !ok {
				return false
			}
		default:
			return true
		}
	}
}

// Broadcast sends p to all subscribers. A subscriber whose buffer is full
// misses this payload.
func (h *Hub) Broadcast(p dashboard.Payload) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for ch := range h.subscribers {
		select {
		case ch <- p:
		default:
			h.dropped++
			h.log.Warn("dropped payload for slow consumer", "total_dropped", h.dropped)
		}
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subscribers {
		close(ch)
	}
	h.subscribers = make(map[chan dashboard.Payload]struct{})
}
