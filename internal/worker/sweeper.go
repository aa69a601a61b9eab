package worker

import (
	"context"
	"log/slog"
	"time"
)

// Pruner removes expired entries from a store.
type Pruner interface {
	Prune(ctx context.Context) (int, error)
}

// SweepWorker periodically prunes the in-process OAuth state and webhook
// dedupe entries so that abandoned installs do not accumulate.
type SweepWorker struct {
	store    Pruner
	interval time.Duration
	logger   *slog.Logger
}

func NewSweepWorker(store Pruner, interval time.Duration, logger *slog.Logger) *SweepWorker {
	return &SweepWorker{
		store:    store,
		interval: interval,
		logger:   logger,
	}
}

func (w *SweepWorker) Start(ctx context.Context) {
	w.logger.Info("sweep worker started", "interval", w.interval)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("sweep worker stopping")
			return
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

func (w *SweepWorker) sweep(ctx context.Context) {
	removed, err := w.store.Prune(ctx)
	if err != nil {
		w.logger.Error("sweep failed", "error", err)
		return
	}
	if removed > 0 {
		w.logger.Debug("pruned expired entries", "removed", removed)
	}
}
