package tasks

import (
	"context"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

const directRefreshTimeout = 2 * time.Minute

// DirectRefresher runs refreshes in a goroutine when the task queue is
// disabled. Refreshes never overlap; a trigger during a running refresh is
// dropped.
type DirectRefresher struct {
	refresher Refresher
	recorder  StatusRecorder
	logger    *zap.Logger

	seq     atomic.Int64
	running atomic.Bool
	wg      sync.WaitGroup
}

func NewDirectRefresher(refresher Refresher, recorder StatusRecorder, logger *zap.Logger) *DirectRefresher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DirectRefresher{refresher: refresher, recorder: recorder, logger: logger}
}

// EnqueueRefresh starts a refresh and returns a process-local id.
// An empty id means a refresh was already running.
func (d *DirectRefresher) EnqueueRefresh(reason string) (string, error) {
	if !d.running.CompareAndSwap(false, true) {
		d.logger.Debug("Refresh already running, skipping", zap.String("reason", reason))
		return "", nil
	}
	id := "direct-" + strconv.FormatInt(d.seq.Add(1), 10)

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer d.running.Store(false)

		ctx, cancel := context.WithTimeout(context.Background(), directRefreshTimeout)
		defer cancel()
		if err := RefreshCatalog(ctx, d.refresher, d.recorder, d.logger); err != nil {
			d.logger.Warn("Catalog refresh failed", zap.String("id", id), zap.String("reason", reason), zap.Error(err))
		}
	}()
	return id, nil
}

// Wait blocks until the running refresh, if any, finishes.
func (d *DirectRefresher) Wait() {
	d.wg.Wait()
}
