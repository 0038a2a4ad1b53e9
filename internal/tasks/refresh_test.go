package tasks

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mrlokans/aroundegypt/internal/catalog"
	"github.com/mrlokans/aroundegypt/internal/connectivity"
	"github.com/mrlokans/aroundegypt/internal/database"
	"github.com/mrlokans/aroundegypt/internal/database/experiences"
	"github.com/mrlokans/aroundegypt/internal/database/settings"
	"github.com/mrlokans/aroundegypt/internal/entities"
	"github.com/mrlokans/aroundegypt/internal/likes"
)

type fakeRefresher struct {
	mu    sync.Mutex
	err   error
	calls int
}

func (f *fakeRefresher) Refresh(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.err
}

func (f *fakeRefresher) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type memSettings map[string]string

func (m memSettings) SetSetting(ctx context.Context, key, value string) error {
	m[key] = value
	return nil
}

func TestRefreshCatalogTaskConfig(t *testing.T) {
	cfg := RefreshCatalogTask{}.Config()

	assert.Equal(t, "refresh_catalog", cfg.Name)
	assert.Equal(t, 1, cfg.MaxAttempts)
	assert.Equal(t, 2*time.Minute, cfg.Timeout)
	assert.NotNil(t, cfg.Retention)
}

func TestRefreshCatalog_Success(t *testing.T) {
	refresher := &fakeRefresher{}
	settings := memSettings{}

	err := RefreshCatalog(context.Background(), refresher, settings, nil)
	require.NoError(t, err)

	assert.Equal(t, 1, refresher.count())
	assert.Equal(t, RefreshStatusSuccess, settings[entities.SettingKeyRefreshLastStatus])
	assert.NotEmpty(t, settings[entities.SettingKeyRefreshLastAt])
}

func TestRefreshCatalog_Failure(t *testing.T) {
	cause := &catalog.Error{Kind: catalog.KindNetwork, Op: catalog.OpLoadRecommended, Err: errors.New("connection refused")}
	refresher := &fakeRefresher{err: cause}
	settings := memSettings{}

	err := RefreshCatalog(context.Background(), refresher, settings, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "load_recommended")
	assert.Equal(t, RefreshStatusFailed, settings[entities.SettingKeyRefreshLastStatus])
}

func TestRefreshCatalog_OfflineIsSkipped(t *testing.T) {
	refresher := &fakeRefresher{err: catalog.ErrOffline}
	settings := memSettings{}

	err := RefreshCatalog(context.Background(), refresher, settings, nil)
	require.NoError(t, err)
	assert.Equal(t, RefreshStatusSkipped, settings[entities.SettingKeyRefreshLastStatus])
	assert.NotEmpty(t, settings[entities.SettingKeyRefreshLastAt])
}

// TestRefreshCatalog_Orchestrator runs the task against a real orchestrator.
func TestRefreshCatalog_Orchestrator(t *testing.T) {
	db, err := database.NewDatabase(filepath.Join(t.TempDir(), "catalog.db"), "silent", zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	remote := &stubRemote{recent: []entities.Experience{{ID: "1", Title: "Pyramids"}}}
	oracle := connectivity.NewStatic(true)
	settingsRepo := settings.NewRepository(db.DB)
	orch := catalog.New(remote, experiences.NewRepository(db.DB, nil), likes.NewTracker(settingsRepo), oracle, nil)
	ctx := context.Background()

	orch.LoadRecent(ctx)
	orch.ClearError()

	t.Run("failure leaves the error slot", func(t *testing.T) {
		remote.err = errors.New("connection refused")
		err := RefreshCatalog(ctx, orch, settingsRepo, nil)
		require.Error(t, err)
		assert.Nil(t, orch.Err())
		assert.Len(t, orch.Experiences(), 1)

		status, err := settingsRepo.GetValue(ctx, entities.SettingKeyRefreshLastStatus)
		require.NoError(t, err)
		assert.Equal(t, RefreshStatusFailed, status)
	})

	t.Run("offline is skipped", func(t *testing.T) {
		remote.err = nil
		oracle.Set(false)
		require.NoError(t, RefreshCatalog(ctx, orch, settingsRepo, nil))
		assert.Nil(t, orch.Err())

		status, err := settingsRepo.GetValue(ctx, entities.SettingKeyRefreshLastStatus)
		require.NoError(t, err)
		assert.Equal(t, RefreshStatusSkipped, status)
	})
}

// stubRemote serves fixed lists.
type stubRemote struct {
	recent []entities.Experience
	err    error
}

func (s *stubRemote) FetchRecommended(ctx context.Context) ([]entities.Experience, error) {
	return nil, s.err
}

func (s *stubRemote) FetchRecent(ctx context.Context) ([]entities.Experience, error) {
	return s.recent, s.err
}

func (s *stubRemote) Search(ctx context.Context, query string) ([]entities.Experience, error) {
	return nil, s.err
}

func (s *stubRemote) FetchByID(ctx context.Context, id string) (*entities.Experience, error) {
	return nil, s.err
}

func (s *stubRemote) Like(ctx context.Context, id string) (int, error) {
	return 0, s.err
}

func TestRefreshCatalogQueue(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")
	cfg := DefaultConfig()
	cfg.Workers = 1

	client, err := NewClient(dbPath, cfg, nil)
	require.NoError(t, err)
	defer client.Close()

	refresher := &fakeRefresher{}
	client.Register(NewRefreshCatalogQueue(refresher, nil, nil))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go client.Start(ctx)

	ids, err := client.Add(RefreshCatalogTask{Reason: "manual"}).Save()
	require.NoError(t, err)
	require.Len(t, ids, 1)

	assert.Eventually(t, func() bool {
		return refresher.count() == 1
	}, 5*time.Second, 20*time.Millisecond)
}
