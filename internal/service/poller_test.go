package service

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

type countingLoader struct {
	calls    atomic.Int32
	deadline atomic.Bool
}

func (l *countingLoader) Load(ctx context.Context) error {
	if _, ok := ctx.Deadline(); ok {
		l.deadline.Store(true)
	}
	l.calls.Add(1)
	return nil
}

func TestPollerService_RunLoadsUntilCanceled(t *testing.T) {
	loader := &countingLoader{}
	p := NewPollerService(loader, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		p.Run(ctx, 5*time.Millisecond)
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for loader.calls.Load() < 3 {
		select {
		case <-deadline:
			t.Fatalf("poller made %d loads, want at least 3", loader.calls.Load())
		case <-time.After(time.Millisecond):
		}
	}
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("Run did not return after cancel")
	}
	if !loader.deadline.Load() {
		t.Fatalf("each load must be bounded by a deadline")
	}
}

func TestPollerService_CanceledContextSkipsLoad(t *testing.T) {
	loader := &countingLoader{}
	p := NewPollerService(loader, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p.Run(ctx, 0)

	if got := loader.calls.Load(); got != 0 {
		t.Fatalf("loads = %d, want 0", got)
	}
}
