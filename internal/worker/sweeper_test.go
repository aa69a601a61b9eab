package worker

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

type countingPruner struct {
	calls int32
	err   error
}

func (p *countingPruner) Prune(ctx context.Context) (int, error) {
	atomic.AddInt32(&p.calls, 1)
	return 1, p.err
}

func TestSweepWorker_PrunesUntilCancelled(t *testing.T) {
	p := &countingPruner{}
	w := NewSweepWorker(p, 5*time.Millisecond, discardLogger)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool { return atomic.LoadInt32(&p.calls) >= 2 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop")
	}
}

func TestSweepWorker_ErrorDoesNotStopLoop(t *testing.T) {
	p := &countingPruner{err: errors.New("boom")}
	w := NewSweepWorker(p, 5*time.Millisecond, discardLogger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Start(ctx)

	assert.Eventually(t, func() bool { return atomic.LoadInt32(&p.calls) >= 3 }, time.Second, 5*time.Millisecond)
}
