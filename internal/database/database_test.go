package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/aroundegypt/internal/entities"
)

func TestNewDatabase(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "catalog.db")

	db, err := NewDatabase(dbPath, "silent", zap.NewNop())
	require.NoError(t, err)
	defer db.Close()

	assert.True(t, db.DB.Migrator().HasTable(&entities.CachedExperience{}))
	assert.True(t, db.DB.Migrator().HasTable(&entities.Setting{}))
	assert.True(t, db.DB.Migrator().HasColumn(&entities.CachedExperience{}, "api_order"))
	assert.NoError(t, db.Ping(context.Background()))
}

func TestNewDatabase_Reopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "catalog.db")

	db, err := NewDatabase(dbPath, "silent", nil)
	require.NoError(t, err)
	require.NoError(t, db.DB.Create(&entities.Setting{Key: "k", Value: "v"}).Error)
	require.NoError(t, db.Close())

	db, err = NewDatabase(dbPath, "silent", nil)
	require.NoError(t, err)
	defer db.Close()

	var setting entities.Setting
	require.NoError(t, db.DB.Where("key = ?", "k").First(&setting).Error)
	assert.Equal(t, "v", setting.Value)
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, logger.Info, parseLogLevel("INFO"))
	assert.Equal(t, logger.Warn, parseLogLevel("warn"))
	assert.Equal(t, logger.Error, parseLogLevel("error"))
	assert.Equal(t, logger.Silent, parseLogLevel(""))
	assert.Equal(t, logger.Silent, parseLogLevel("bogus"))
}
