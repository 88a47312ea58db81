package jobs

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// JobProcessor runs one pass over the pending backfill queue.
type JobProcessor interface {
	ProcessJobs(ctx context.Context) error
}

// Worker polls a JobProcessor on a fixed interval. The first pass runs as
// soon as the worker starts so documents queued while the daemon was down
// are picked up without waiting a full interval.
type Worker struct {
	processor    JobProcessor
	pollInterval time.Duration
	log          zerolog.Logger
	stopOnce     sync.Once
	stopChan     chan struct{}
	doneChan     chan struct{}
}

func NewWorker(processor JobProcessor, pollInterval time.Duration, log zerolog.Logger) *Worker {
	return &Worker{
		processor:    processor,
		pollInterval: pollInterval,
		log:          log.With().Str("component", "backfill_worker").Logger(),
		stopChan:     make(chan struct{}),
		doneChan:     make(chan struct{}),
	}
}

// Start blocks until ctx is done or Stop is called.
func (w *Worker) Start(ctx context.Context) {
	defer close(w.doneChan)

	w.log.Info().Dur("poll_interval", w.pollInterval).Msg("backfill worker started")
	w.pass(ctx)

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("backfill worker stopped: context cancelled")
			return
		case <-w.stopChan:
			w.log.Info().Msg("backfill worker stopped: stop requested")
			return
		case <-ticker.C:
			w.pass(ctx)
		}
	}
}

func (w *Worker) pass(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if err := w.processor.ProcessJobs(ctx); err != nil {
		w.log.Error().Err(err).Msg("backfill pass failed")
	}
}

// Stop signals the loop and waits for the in-flight pass to finish. It is
// safe to call more than once and after the context was cancelled.
func (w *Worker) Stop() {
	w.stopOnce.Do(func() { close(w.stopChan) })
	<-w.doneChan
}
