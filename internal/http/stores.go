package http

import (
	"context"

	"github.com/mrlokans/aroundegypt/internal/catalog"
	"github.com/mrlokans/aroundegypt/internal/database/experiences"
)

// Catalog is the orchestrator surface the API exposes.
type Catalog interface {
	LoadRecent(ctx context.Context)
	LoadRecommended(ctx context.Context)
	Search(ctx context.Context, query string)
	ExitSearch()
	FetchDetails(ctx context.Context, id string) (catalog.Experience, bool)
	Like(ctx context.Context, e catalog.Experience)
	Find(id string) (catalog.Experience, bool)
	Err() *catalog.Error
	ClearError()
	Snapshot() catalog.State
}

// ConnectivityOverrider is a connectivity oracle whose answer can be forced.
type ConnectivityOverrider interface {
	IsConnected() bool
	SetOverride(connected bool)
	ClearOverride()
	Overridden() bool
}

// RefreshTrigger starts a background catalog refresh.
type RefreshTrigger interface {
	EnqueueRefresh(reason string) (string, error)
}

// SettingsReader reads single values from the settings table.
type SettingsReader interface {
	GetValue(ctx context.Context, key string) (string, error)
}

// CacheCounter counts cached rows per partition.
type CacheCounter interface {
	Count(ctx context.Context, partition experiences.Partition) (int64, error)
}

// Pinger checks database reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}
