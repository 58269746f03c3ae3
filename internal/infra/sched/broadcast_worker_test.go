package sched

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

type countingUC struct {
	runs int32
}

func (c *countingUC) Run(ctx context.Context) (int, int) {
	atomic.AddInt32(&c.runs, 1)
	return 0, 0
}

func TestBroadcastWorkerTicks(t *testing.T) {
	uc := &countingUC{}
	l := zerolog.Nop()
	w := NewBroadcastWorker(20*time.Millisecond, uc, &l)

	ctx, cancel := context.WithTimeout(context.Background(), 110*time.Millisecond)
	defer cancel()
	if err := w.Run(ctx); err != context.DeadlineExceeded {
		t.Fatalf("expected ctx deadline to stop the worker, got %v", err)
	}

	runs := atomic.LoadInt32(&uc.runs)
	if runs < 3 || runs > 5 {
		t.Fatalf("expected ~5 ticks in 110ms at 20ms interval, got %d", runs)
	}
}

func TestBroadcastWorkerStopsImmediately(t *testing.T) {
	uc := &countingUC{}
	l := zerolog.Nop()
	w := NewBroadcastWorker(time.Hour, uc, &l)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := w.Run(ctx); err != context.Canceled {
		t.Fatalf("got %v", err)
	}
	if n := atomic.LoadInt32(&uc.runs); n != 0 {
		t.Fatalf("no cycle may run before the first interval, runs=%d", n)
	}
}
