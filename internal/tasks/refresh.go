package tasks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mikestefanello/backlite"
	"go.uber.org/zap"

	"github.com/mrlokans/aroundegypt/internal/catalog"
	"github.com/mrlokans/aroundegypt/internal/entities"
)

const (
	RefreshStatusSuccess = "success"
	RefreshStatusFailed  = "failed"
	RefreshStatusSkipped = "skipped"
)

// RefreshCatalogTask reloads both catalog lists, writing them through to the cache.
type RefreshCatalogTask struct {
	Reason string `json:"reason,omitempty"` // "schedule", "manual"
}

// Config returns the queue configuration for catalog refresh tasks.
// A refresh is never retried; the next one is at most a schedule tick away.
func (t RefreshCatalogTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "refresh_catalog",
		MaxAttempts: 1,
		Timeout:     2 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// Refresher is the part of the orchestrator a refresh needs. Refresh must
// return catalog.ErrOffline when there is no network, and must not touch
// the user-facing error slot.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// StatusRecorder stores the outcome of the last refresh.
type StatusRecorder interface {
	SetSetting(ctx context.Context, key, value string) error
}

// RefreshCatalog runs one refresh and records its outcome. Offline the
// refresh is skipped and recorded as such; it returns an error when either
// list failed to load.
func RefreshCatalog(ctx context.Context, refresher Refresher, recorder StatusRecorder, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}

	err := refresher.Refresh(ctx)
	status := RefreshStatusSuccess
	switch {
	case errors.Is(err, catalog.ErrOffline):
		status = RefreshStatusSkipped
	case err != nil:
		status = RefreshStatusFailed
	}

	if recorder != nil {
		if err := recorder.SetSetting(ctx, entities.SettingKeyRefreshLastAt, time.Now().UTC().Format(time.RFC3339)); err != nil {
			logger.Warn("Failed to record refresh time", zap.Error(err))
		}
		if err := recorder.SetSetting(ctx, entities.SettingKeyRefreshLastStatus, status); err != nil {
			logger.Warn("Failed to record refresh status", zap.Error(err))
		}
	}

	switch status {
	case RefreshStatusSkipped:
		logger.Info("Catalog refresh skipped, offline")
		return nil
	case RefreshStatusFailed:
		return fmt.Errorf("refresh catalog: %w", err)
	}
	logger.Info("Catalog refreshed")
	return nil
}

// RefreshCatalogProcessor creates a processor function for RefreshCatalogTask.
func RefreshCatalogProcessor(refresher Refresher, recorder StatusRecorder, logger *zap.Logger) backlite.QueueProcessor[RefreshCatalogTask] {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(ctx context.Context, task RefreshCatalogTask) error {
		if refresher == nil {
			return fmt.Errorf("refresher not configured")
		}
		logger.Debug("Refreshing catalog", zap.String("reason", task.Reason))
		return RefreshCatalog(ctx, refresher, recorder, logger)
	}
}

// NewRefreshCatalogQueue creates a backlite queue for catalog refresh tasks.
func NewRefreshCatalogQueue(refresher Refresher, recorder StatusRecorder, logger *zap.Logger) backlite.Queue {
	return backlite.NewQueue(RefreshCatalogProcessor(refresher, recorder, logger))
}
