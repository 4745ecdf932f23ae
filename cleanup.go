package authcore

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// expiryDeleter is the slice of a store the cleanup job touches.
type expiryDeleter interface {
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type cleanupTarget struct {
	name  string
	store expiryDeleter
}

// cleanupJob periodically purges expired refresh-token and blacklist
// records. It is either Idle or Running; a tick that fires while a
// pass is still running is skipped. Failures are logged and swallowed
// so the job outlives any one bad pass.
type cleanupJob struct {
	cfg     CleanupConfig
	targets []cleanupTarget
	logger  *slog.Logger
	clock   Clock
	metrics *Metrics

	running  atomic.Bool
	started  atomic.Bool
	done     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

func newCleanupJob(cfg CleanupConfig, targets []cleanupTarget, logger *slog.Logger, clock Clock, metrics *Metrics) *cleanupJob {
	return &cleanupJob{
		cfg:     cfg,
		targets: targets,
		logger:  logger,
		clock:   clock,
		metrics: metrics,
		done:    make(chan struct{}),
	}
}

// Start launches the timer goroutine. Calling Start twice is a no-op.
func (j *cleanupJob) Start() {
	if j == nil || !j.started.CompareAndSwap(false, true) {
		return
	}

	j.wg.Add(1)
	go func() {
		defer j.wg.Done()

		ticker := time.NewTicker(j.cfg.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				j.runOnce(context.Background())
			case <-j.done:
				return
			}
		}
	}()
}

// Stop cancels the pending timer and waits for the goroutine to exit.
// An in-flight pass runs to completion. Idempotent.
func (j *cleanupJob) Stop() {
	if j == nil {
		return
	}
	j.stopOnce.Do(func() { close(j.done) })
	j.wg.Wait()
}

// runOnce executes a single pass. ran is false when another pass held
// the Running state, in which case nothing was deleted.
func (j *cleanupJob) runOnce(ctx context.Context) (deleted int64, ran bool) {
	if !j.running.CompareAndSwap(false, true) {
		return 0, false
	}
	defer j.running.Store(false)

	ctx, cancel := context.WithTimeout(ctx, j.cfg.Timeout)
	defer cancel()

	now := j.clock.Now()
	for _, target := range j.targets {
		n, err := target.store.DeleteExpired(ctx, now)
		if err != nil {
			// Swallowed on purpose: the next tick retries.
			j.logger.Error("cleanup pass failed", "store", target.name, "error", err)
			continue
		}
		deleted += n
	}

	j.metrics.Inc(MetricCleanupPasses)
	j.metrics.Add(MetricCleanupDeleted, uint64(deleted))
	if deleted > 0 {
		j.logger.Info("cleanup pass complete", "deleted", deleted)
	}

	return deleted, true
}
