package experiences

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/aroundegypt/internal/entities"
)

func setupTestDB(t *testing.T) (*gorm.DB, *Repository) {
	dbPath := filepath.Join(t.TempDir(), "cache.db")

	db, err := gorm.Open(sqlite.Open(dbPath+"?_journal_mode=WAL&_busy_timeout=5000"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(&entities.CachedExperience{})
	require.NoError(t, err)

	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
	})

	return db, NewRepository(db, nil)
}

func exp(id, title string, recommended int) entities.Experience {
	return entities.Experience{ID: id, Title: title, Recommended: recommended}
}

func ids(items []entities.Experience) []string {
	out := make([]string, 0, len(items))
	for _, e := range items {
		out = append(out, e.ID)
	}
	return out
}

func TestRepository_Fetch_Empty(t *testing.T) {
	_, repo := setupTestDB(t)

	for _, p := range []Partition{PartitionAll, PartitionRecommended, PartitionRecent} {
		items, err := repo.Fetch(context.Background(), p)
		require.NoError(t, err)
		assert.NotNil(t, items)
		assert.Empty(t, items)
	}
}

func TestRepository_ReplacePartition_PreservesOrder(t *testing.T) {
	db, repo := setupTestDB(t)
	ctx := context.Background()

	// Insert in an order where natural id ordering disagrees with write order
	err := repo.ReplacePartition(ctx, PartitionRecent, []entities.Experience{
		exp("c", "Citadel", 0),
		exp("a", "Abydos", 0),
		exp("b", "Bibliotheca", 0),
	})
	require.NoError(t, err)

	items, err := repo.Fetch(ctx, PartitionRecent)
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "a", "b"}, ids(items))

	var rows []entities.CachedExperience
	require.NoError(t, db.Order("api_order").Find(&rows).Error)
	for i, row := range rows {
		assert.Equal(t, i, row.Ordinal)
	}
}

func TestRepository_ReplacePartition_Replaces(t *testing.T) {
	_, repo := setupTestDB(t)
	ctx := context.Background()

	require.NoError(t, repo.ReplacePartition(ctx, PartitionRecent, []entities.Experience{
		exp("1", "Pyramids", 0),
		exp("2", "Luxor Temple", 0),
	}))
	require.NoError(t, repo.ReplacePartition(ctx, PartitionRecent, []entities.Experience{
		exp("3", "Karnak", 0),
	}))

	items, err := repo.Fetch(ctx, PartitionRecent)
	require.NoError(t, err)
	assert.Equal(t, []string{"3"}, ids(items))
}

func TestRepository_PartitionIsolation(t *testing.T) {
	db, repo := setupTestDB(t)
	ctx := context.Background()

	require.NoError(t, repo.ReplacePartition(ctx, PartitionRecent, []entities.Experience{
		exp("r1", "Recent 1", 0),
		exp("r2", "Recent 2", 0),
	}))

	var before []entities.CachedExperience
	require.NoError(t, db.Where("recommended = 0").Order("api_order").Find(&before).Error)

	require.NoError(t, repo.ReplacePartition(ctx, PartitionRecommended, []entities.Experience{
		exp("x1", "Rec 1", 1),
		exp("x2", "Rec 2", 1),
		exp("x3", "Rec 3", 1),
	}))

	var after []entities.CachedExperience
	require.NoError(t, db.Where("recommended = 0").Order("api_order").Find(&after).Error)
	assert.Equal(t, before, after)

	recent, err := repo.Fetch(ctx, PartitionRecent)
	require.NoError(t, err)
	assert.Equal(t, []string{"r1", "r2"}, ids(recent))

	recommended, err := repo.Fetch(ctx, PartitionRecommended)
	require.NoError(t, err)
	assert.Equal(t, []string{"x1", "x2", "x3"}, ids(recommended))

	// And the other way round
	require.NoError(t, repo.ReplacePartition(ctx, PartitionRecent, nil))
	recommended, err = repo.Fetch(ctx, PartitionRecommended)
	require.NoError(t, err)
	assert.Len(t, recommended, 3)

	count, err := repo.Count(ctx, PartitionRecent)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestRepository_ReplacePartition_SkipsOtherPartition(t *testing.T) {
	_, repo := setupTestDB(t)
	ctx := context.Background()

	require.NoError(t, repo.ReplacePartition(ctx, PartitionRecommended, []entities.Experience{
		exp("rec", "Recommended", 1),
	}))

	// The full listing also contains recommended items
	require.NoError(t, repo.ReplacePartition(ctx, PartitionRecent, []entities.Experience{
		exp("a", "A", 0),
		exp("rec", "Recommended", 1),
		exp("b", "B", 0),
	}))

	recent, err := repo.Fetch(ctx, PartitionRecent)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ids(recent))
	assert.Equal(t, 1, mustCount(t, repo, PartitionRecommended))
}

func TestRepository_ReplacePartition_MovedBetweenPartitions(t *testing.T) {
	_, repo := setupTestDB(t)
	ctx := context.Background()

	require.NoError(t, repo.ReplacePartition(ctx, PartitionRecommended, []entities.Experience{
		exp("1", "Was recommended", 1),
	}))
	require.NoError(t, repo.ReplacePartition(ctx, PartitionRecent, []entities.Experience{
		exp("1", "Now recent", 0),
	}))

	all, err := repo.Fetch(ctx, PartitionAll)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "Now recent", all[0].Title)
	assert.Equal(t, 0, all[0].Recommended)
}

func TestRepository_ReplacePartition_DuplicateIDs(t *testing.T) {
	_, repo := setupTestDB(t)
	ctx := context.Background()

	require.NoError(t, repo.ReplacePartition(ctx, PartitionRecent, []entities.Experience{
		exp("1", "First", 0),
		exp("1", "Second", 0),
		exp("2", "Other", 0),
	}))

	items, err := repo.Fetch(ctx, PartitionRecent)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "First", items[0].Title)
}

func TestRepository_ReplaceAll(t *testing.T) {
	_, repo := setupTestDB(t)
	ctx := context.Background()

	require.NoError(t, repo.ReplacePartition(ctx, PartitionRecommended, []entities.Experience{exp("x", "X", 1)}))
	require.NoError(t, repo.ReplacePartition(ctx, PartitionAll, []entities.Experience{
		exp("b", "B", 1),
		exp("a", "A", 0),
	}))

	all, err := repo.Fetch(ctx, PartitionAll)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, ids(all))
}

func TestRepository_UpdateLikesAndFind(t *testing.T) {
	_, repo := setupTestDB(t)
	ctx := context.Background()

	require.NoError(t, repo.ReplacePartition(ctx, PartitionRecent, []entities.Experience{exp("1", "Pyramids", 0)}))
	require.NoError(t, repo.UpdateLikes(ctx, "1", 42))
	require.NoError(t, repo.UpdateLikes(ctx, "missing", 7))

	found, err := repo.FindByID(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, 42, found.LikesNo)

	_, err = repo.FindByID(ctx, "missing")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepository_ConcurrentReadersSeeWholePartition(t *testing.T) {
	_, repo := setupTestDB(t)
	ctx := context.Background()

	batch := func(prefix string) []entities.Experience {
		items := make([]entities.Experience, 10)
		for i := range items {
			items[i] = exp(fmt.Sprintf("%s-%d", prefix, i), prefix, 0)
		}
		return items
	}
	require.NoError(t, repo.ReplacePartition(ctx, PartitionRecent, batch("old")))

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 10; i++ {
			_ = repo.ReplacePartition(ctx, PartitionRecent, batch(fmt.Sprintf("gen%d", i)))
		}
	}()

	for i := 0; i < 20; i++ {
		items, err := repo.Fetch(ctx, PartitionRecent)
		if err != nil {
			continue
		}
		require.Len(t, items, 10)
		for _, item := range items {
			assert.Equal(t, items[0].Title, item.Title, "partition must never mix generations")
		}
	}
	wg.Wait()
}

func TestRepository_PersistenceError(t *testing.T) {
	db, repo := setupTestDB(t)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	err = repo.ReplacePartition(context.Background(), PartitionRecent, []entities.Experience{exp("1", "P", 0)})
	require.Error(t, err)

	var perr *PersistenceError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, "replace", perr.Op)
	assert.Equal(t, PartitionRecent, perr.Partition)
	assert.Contains(t, perr.Error(), "recent")
}

func TestPartition_Contains(t *testing.T) {
	assert.True(t, PartitionAll.Contains(0))
	assert.True(t, PartitionAll.Contains(1))
	assert.True(t, PartitionRecommended.Contains(3))
	assert.False(t, PartitionRecommended.Contains(0))
	assert.True(t, PartitionRecent.Contains(0))
	assert.False(t, PartitionRecent.Contains(1))
	assert.False(t, Partition(99).Contains(0))
	assert.Equal(t, "unknown", Partition(99).String())
}

func mustCount(t *testing.T, repo *Repository, p Partition) int {
	t.Helper()
	count, err := repo.Count(context.Background(), p)
	require.NoError(t, err)
	return int(count)
}
