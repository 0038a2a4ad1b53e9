package http

import (
	"go.uber.org/zap"
)

// RouterConfig contains all dependencies needed to create the HTTP router.
// Optional dependencies left nil disable their routes.
type RouterConfig struct {
	Catalog      Catalog
	Connectivity ConnectivityOverrider

	Database Pinger
	Cache    CacheCounter
	Settings SettingsReader

	// Refresh is nil when background refresh is disabled
	Refresh RefreshTrigger
	// TaskClient is nil when the task queue is disabled
	TaskClient TaskStatusReader

	Logger  *zap.Logger
	Version string
}
