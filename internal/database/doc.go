// Package database opens the on-device SQLite database and migrates its schema.
//
// # Architecture
//
// Data access is split into sub-packages, one Repository each:
//
//	database/
//	├── database.go      # Connection setup, WAL mode, migrations
//	├── experiences/     # Cached experience partitions
//	└── settings/        # Key-value settings (liked ids, refresh status)
//
// # Using Sub-packages
//
//	db, err := database.NewDatabase("./aroundegypt.db", "warn", logger)
//
//	cache := experiences.NewRepository(db.DB, logger)
//	items, err := cache.Fetch(ctx, experiences.PartitionRecommended)
//
//	settingsRepo := settings.NewRepository(db.DB)
//	value, err := settingsRepo.GetValue(ctx, entities.SettingKeyLikedExperienceIDs)
//
// The task queue keeps its own database file next to this one, see
// internal/tasks.
package database
