// Package experiences is the on-device cache of catalog experiences.
//
// Rows live in a single table discriminated by the recommended flag. Each
// write replaces one partition atomically and records the order the records
// were given in, so reads reproduce the API ordering.
//
// # Usage
//
//	repo := experiences.NewRepository(db, logger)
//	err := repo.ReplacePartition(ctx, experiences.PartitionRecent, items)
//	cached, err := repo.Fetch(ctx, experiences.PartitionRecent)
package experiences

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/mrlokans/aroundegypt/internal/entities"
)

// Repository handles all cached experience database operations.
type Repository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewRepository creates a new experiences cache repository.
func NewRepository(db *gorm.DB, logger *zap.Logger) *Repository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Repository{db: db, logger: logger}
}

// Fetch returns the cached experiences of a partition in write order.
// An empty cache is not an error.
func (r *Repository) Fetch(ctx context.Context, partition Partition) ([]entities.Experience, error) {
	var rows []entities.CachedExperience
	err := partition.scope(r.db.WithContext(ctx)).
		Order("api_order ASC, id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, &PersistenceError{Op: "fetch", Partition: partition, Err: err}
	}

	result := make([]entities.Experience, 0, len(rows))
	for _, row := range rows {
		result = append(result, row.Experience())
	}
	return result, nil
}

// FindByID returns a single cached experience from any partition.
func (r *Repository) FindByID(ctx context.Context, id string) (*entities.Experience, error) {
	var row entities.CachedExperience
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if err != nil {
		return nil, err
	}
	exp := row.Experience()
	return &exp, nil
}

// ReplacePartition deletes every row of the partition and inserts records
// with ordinals 0..n-1 in the given order, as one transaction.
//
// Records whose recommended flag places them in the other partition are
// skipped so the other partition's rows are never touched. Duplicate ids
// keep their first occurrence.
func (r *Repository) ReplacePartition(ctx context.Context, partition Partition, records []entities.Experience) error {
	rows := make([]entities.CachedExperience, 0, len(records))
	seen := make(map[string]struct{}, len(records))
	skipped := 0

	for _, rec := range records {
		if !partition.Contains(rec.Recommended) {
			skipped++
			continue
		}
		if _, dup := seen[rec.ID]; dup {
			skipped++
			continue
		}
		seen[rec.ID] = struct{}{}
		rows = append(rows, entities.NewCachedExperience(rec, len(rows)))
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := partition.scope(tx.Session(&gorm.Session{AllowGlobalUpdate: true})).
			Delete(&entities.CachedExperience{}).Error; err != nil {
			return fmt.Errorf("delete partition: %w", err)
		}
		if len(rows) == 0 {
			return nil
		}
		// An id that moved between partitions still has a row on the other side.
		ids := make([]string, 0, len(rows))
		for _, row := range rows {
			ids = append(ids, row.ID)
		}
		if err := tx.Where("id IN ?", ids).Delete(&entities.CachedExperience{}).Error; err != nil {
			return fmt.Errorf("delete moved rows: %w", err)
		}
		if err := tx.CreateInBatches(&rows, 100).Error; err != nil {
			return fmt.Errorf("insert rows: %w", err)
		}
		return nil
	})
	if err != nil {
		return &PersistenceError{Op: "replace", Partition: partition, Err: err}
	}

	r.logger.Debug("Replaced cached partition",
		zap.Stringer("partition", partition),
		zap.Int("stored", len(rows)),
		zap.Int("skipped", skipped),
	)
	return nil
}

// UpdateLikes stores a new like count for a cached experience.
// Unknown ids are ignored.
func (r *Repository) UpdateLikes(ctx context.Context, id string, likes int) error {
	err := r.db.WithContext(ctx).Model(&entities.CachedExperience{}).
		Where("id = ?", id).
		Update("likes_no", likes).Error
	if err != nil {
		return &PersistenceError{Op: "update likes", Partition: PartitionAll, Err: err}
	}
	return nil
}

// Count returns the number of cached rows in a partition.
func (r *Repository) Count(ctx context.Context, partition Partition) (int64, error) {
	var count int64
	err := partition.scope(r.db.WithContext(ctx).Model(&entities.CachedExperience{})).Count(&count).Error
	return count, err
}
