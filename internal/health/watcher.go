// Package health runs periodic ledger integrity checks and reports the
// node's health state.
package health

import (
	"context"
	"sync"
	"time"

	"github.com/helios-protocol/helios/internal/ledger"
	"go.uber.org/zap"
)

// Config holds chain watcher configuration.
type Config struct {
	CheckInterval time.Duration
	FailThreshold int
}

// MetricsRecordFunc is an optional callback for recording check results.
type MetricsRecordFunc func(ok bool)

// ChainWatcher periodically walks the ledger chain and tracks whether the
// node's ledger is intact. Consecutive failures beyond the threshold mark
// the node unhealthy.
type ChainWatcher struct {
	ledger    ledger.Ledger
	cfg       Config
	onMetrics MetricsRecordFunc
	logger    *zap.Logger

	mu        sync.RWMutex
	failCount int
	lastErr   error
	lastCheck time.Time
}

// New creates a ChainWatcher.
func New(l ledger.Ledger, cfg Config, logger *zap.Logger) *ChainWatcher {
	if cfg.CheckInterval == 0 {
		cfg.CheckInterval = time.Minute
	}
	if cfg.FailThreshold == 0 {
		cfg.FailThreshold = 3
	}
	return &ChainWatcher{ledger: l, cfg: cfg, logger: logger}
}

// SetMetricsRecord configures the metrics callback.
func (w *ChainWatcher) SetMetricsRecord(fn MetricsRecordFunc) {
	w.onMetrics = fn
}

// Start runs the check loop until ctx is cancelled. An initial check runs
// immediately.
func (w *ChainWatcher) Start(ctx context.Context) {
	w.check(ctx)
	ticker := time.NewTicker(w.cfg.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.check(ctx)
		}
	}
}

func (w *ChainWatcher) check(ctx context.Context) {
	err := w.ledger.Verify(ctx)

	w.mu.Lock()
	w.lastCheck = time.Now().UTC()
	w.lastErr = err
	if err != nil {
		w.failCount++
	} else {
		w.failCount = 0
	}
	failCount := w.failCount
	w.mu.Unlock()

	if w.onMetrics != nil {
		w.onMetrics(err == nil)
	}
	if err != nil {
		w.logger.Warn("ledger integrity check failed",
			zap.Error(err),
			zap.Int("consecutive_failures", failCount),
		)
	}
}

// Healthy reports whether the ledger has passed its integrity checks. The
// node stays healthy through transient failures below the threshold.
func (w *ChainWatcher) Healthy() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.failCount < w.cfg.FailThreshold
}

// Status returns the last check time and error, if any.
func (w *ChainWatcher) Status() (time.Time, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.lastCheck, w.lastErr
}
