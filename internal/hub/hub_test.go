package hub

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/MattLee479/UpdatedWebsite2/internal/dashboard"
	"github.com/MattLee479/UpdatedWebsite2/internal/pkg/logger"
	"github.com/MattLee479/UpdatedWebsite2/internal/watcher"
)

func counter(n *int32) Builder {
	return func(context.Context) dashboard.Payload {
		return dashboard.Payload{Total: int(atomic.AddInt32(n, 1))}
	}
}

func TestHubBroadcast(t *testing.T) {
	input := make(chan watcher.Event, 10)
	var builds int32
	h := New(input, counter(&builds), 100, logger.Discard())

	sub1 := h.Subscribe()
	sub2 := h.Subscribe()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go h.Start(ctx)

	input <- watcher.Event{Path: "chat_log.txt", Op: fsnotify.Write}

	for i, sub := range []<-chan dashboard.Payload{sub1, sub2} {
		select {
		case p := <-sub:
			if p.Total != 1 {
				t.Errorf("sub%d: expected first build, got %d", i+1, p.Total)
			}
		case <-time.After(time.Second):
			t.Fatalf("sub%d: timed out", i+1)
		}
	}
}

func TestHubCoalescesBursts(t *testing.T) {
	input := make(chan watcher.Event, 64)
	var builds int32
	h := New(input, counter(&builds), 1, logger.Discard())
	sub := h.Subscribe()

	// Consume the limiter's initial token so the burst queues up behind it.
	h.limiter.Allow()
	for i := 0; i < 50; i++ {
		input <- watcher.Event{Path: "chat_log.txt", Op: fsnotify.Write}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go h.Start(ctx)

	select {
	case <-sub:
	case <-time.After(3 * time.Second):
		t.Fatal("timed out")
	}
	time.Sleep(100 * time.Millisecond)
	if n := atomic.LoadInt32(&builds); n != 1 {
		t.Errorf("expected burst to coalesce into 1 build, got %d", n)
	}
}

func TestHubSlowConsumer(t *testing.T) {
	h := New(make(chan watcher.Event), counter(new(int32)), 100, logger.Discard())

	// Subscribe but never read.
	_ = h.Subscribe()

	for i := 0; i < subscriberBuffer+5; i++ {
		h.Broadcast(dashboard.Payload{})
	}

	if h.Dropped() != 5 {
		t.Errorf("expected 5 dropped payloads, got %d", h.Dropped())
	}
}

func TestHubUnsubscribe(t *testing.T) {
	h := New(make(chan watcher.Event), counter(new(int32)), 100, logger.Discard())
	sub := h.Subscribe()

	h.Unsubscribe(sub)
	h.Broadcast(dashboard.Payload{})

	if _, ok := <-sub; ok {
		t.Error("expected closed channel after Unsubscribe")
	}
	if h.Dropped() != 0 {
		t.Errorf("expected no drops, got %d", h.Dropped())
	}
}

func TestHubClosesSubscribersOnInputClose(t *testing.T) {
	input := make(chan watcher.Event)
	h := New(input, counter(new(int32)), 100, logger.Discard())
	sub := h.Subscribe()

	done := make(chan struct{})
	go func() {
		h.Start(context.Background())
		close(done)
	}()
	close(input)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Start did not return")
	}
	if _, ok := <-sub; ok {
		t.Error("expected subscriber channel to be closed")
	}
}
