package shutdown

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// BackgroundWorker runs one long-lived loop and stops it on Shutdown
type BackgroundWorker struct {
	name   string
	logger *zap.Logger
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// NewBackgroundWorker creates a new background worker
func NewBackgroundWorker(name string, logger *zap.Logger) *BackgroundWorker {
	ctx, cancel := context.WithCancel(context.Background())
	return &BackgroundWorker{
		name:   name,
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}
}

// Start runs work in a goroutine. work must return once ctx is cancelled.
// Calling Start more than once has no effect.
func (bw *BackgroundWorker) Start(work func(ctx context.Context)) {
	bw.once.Do(func() {
		go func() {
			defer close(bw.done)
			bw.logger.Info("Background worker started", zap.String("worker", bw.name))
			work(bw.ctx)
			bw.logger.Info("Background worker stopped", zap.String("worker", bw.name))
		}()
	})
}

// Shutdown cancels the worker and waits for it until ctx expires
func (bw *BackgroundWorker) Shutdown(ctx context.Context) error {
	bw.cancel()

	// never started
	bw.once.Do(func() { close(bw.done) })

	select {
	case <-bw.done:
		return nil
	case <-ctx.Done():
		bw.logger.Warn("Background worker shutdown timeout", zap.String("worker", bw.name))
		return ctx.Err()
	}
}
