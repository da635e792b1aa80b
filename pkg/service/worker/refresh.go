package worker

import (
	"context"
	"time"

	"github.com/ubclaunchpad/rocket2-sub000/pkg/usecase"
	"github.com/ubclaunchpad/rocket2-sub000/pkg/utils/logging"
)

// RefreshWorker runs the team reconciliation on a fixed interval so the
// local store tracks the remote directory even without anyone typing
// /rocket refresh.
//
// Architecture assumptions:
// - Single server instance (no distributed locking)
// - For future horizontal scaling, implement distributed locking or leader election
type RefreshWorker struct {
	refresh  *usecase.RefreshUseCase
	interval time.Duration
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// NewRefreshWorker creates a worker running the reconciliation every interval
func NewRefreshWorker(refresh *usecase.RefreshUseCase, interval time.Duration) *RefreshWorker {
	return &RefreshWorker{
		refresh:  refresh,
		interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start begins the background refresh loop. The initial run happens in the
// background goroutine as well, so server startup is never blocked.
func (w *RefreshWorker) Start(ctx context.Context) error {
	logging.Default().Info("team refresh worker starting",
		"interval", w.interval.String())

	go w.run(ctx)

	return nil
}

// Stop signals the worker to stop and waits for completion
func (w *RefreshWorker) Stop() {
	logging.Default().Info("team refresh worker stopping")
	close(w.stopCh)
	<-w.doneCh
	logging.Default().Info("team refresh worker stopped")
}

func (w *RefreshWorker) run(ctx context.Context) {
	defer close(w.doneCh)

	w.runOnce(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.runOnce(ctx)

		case <-w.stopCh:
			logging.Default().Info("team refresh worker received stop signal")
			return

		case <-ctx.Done():
			logging.Default().Info("team refresh worker context cancelled")
			return
		}
	}
}

func (w *RefreshWorker) runOnce(ctx context.Context) {
	startTime := time.Now()

	summary, err := w.refresh.Run(ctx)
	if err != nil {
		// Log and keep the loop alive; the next tick retries
		logging.Default().Error("team refresh failed (will retry next interval)",
			"error", err.Error())
		return
	}

	logging.Default().Info("team refresh completed",
		"added", summary.Added,
		"deleted", summary.Deleted,
		"changed", summary.Changed,
		"duration", time.Since(startTime).String())
}
