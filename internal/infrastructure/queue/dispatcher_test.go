package queue

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/botlab/robot-access/internal/core/domain"
)

type recordingSink struct {
	mu     sync.Mutex
	events []domain.TelemetryEvent
}

func (s *recordingSink) Broadcast(e domain.TelemetryEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
}

func (s *recordingSink) snapshot() []domain.TelemetryEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.TelemetryEvent, len(s.events))
	copy(out, s.events)
	return out
}

func waitFor(t *testing.T, sink *recordingSink, n int) []domain.TelemetryEvent {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if got := sink.snapshot(); len(got) >= n {
			return got
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d events, got %d", n, len(sink.snapshot()))
	return nil
}

func TestDispatcher_PreservesPerResourceOrder(t *testing.T) {
	sink := &recordingSink{}
	d := NewDispatcher(3, sink, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	const n = 50
	for i := 0; i < n; i++ {
		d.PublishOutput(domain.ResourceROS, fmt.Sprintf("ros-%d", i))
		d.PublishOutput(domain.ResourceIoT, fmt.Sprintf("iot-%d", i))
	}

	events := waitFor(t, sink, 2*n)
	next := map[domain.Resource]int{}
	for _, e := range events {
		want := fmt.Sprintf("%s-%d", e.Resource, next[e.Resource])
		if e.Text != want {
			t.Fatalf("out of order: got %q want %q", e.Text, want)
		}
		next[e.Resource]++
	}
}

func TestDispatcher_StampsKindAndTime(t *testing.T) {
	sink := &recordingSink{}
	d := NewDispatcher(0, sink, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	d.PublishFault(domain.ResourceIoT, "ZeroDivisionError")

	e := waitFor(t, sink, 1)[0]
	if e.Kind != domain.TelemetryFault || e.Resource != domain.ResourceIoT {
		t.Fatalf("unexpected event: %+v", e)
	}
	if e.ReceivedAt.IsZero() {
		t.Fatalf("expected ReceivedAt to be stamped")
	}
}

func TestDispatcher_ShardIndexIsStable(t *testing.T) {
	d := NewDispatcher(4, &recordingSink{}, zerolog.Nop())
	for _, r := range domain.Resources() {
		first := d.shardIndex(r)
		for i := 0; i < 10; i++ {
			if d.shardIndex(r) != first {
				t.Fatalf("shard index for %s changed", r)
			}
		}
		if first < 0 || first >= 4 {
			t.Fatalf("shard index out of range: %d", first)
		}
	}
}

func TestDispatcher_EnqueueDropsWhenWorkerFull(t *testing.T) {
	sink := &recordingSink{}
	d := NewDispatcher(1, sink, zerolog.Nop())

	for i := 0; i < channelBuffer; i++ {
		if !d.Enqueue(domain.TelemetryEvent{Resource: domain.ResourceROS, Text: fmt.Sprintf("line-%d", i)}) {
			t.Fatalf("event %d rejected before the queue was full", i)
		}
	}

	done := make(chan bool, 1)
	go func() {
		done <- d.Enqueue(domain.TelemetryEvent{Resource: domain.ResourceROS, Text: "overflow"})
	}()
	select {
	case accepted := <-done:
		if accepted {
			t.Fatalf("expected overflow event to be dropped")
		}
	case <-time.After(time.Second):
		t.Fatalf("Enqueue blocked on a full queue")
	}

	// Draining resumes delivery of everything that was accepted.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)
	events := waitFor(t, sink, channelBuffer)
	if last := events[len(events)-1].Text; last != fmt.Sprintf("line-%d", channelBuffer-1) {
		t.Fatalf("unexpected last event %q", last)
	}
}
