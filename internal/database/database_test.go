package database

import (
	"testing"
	"time"

	"vidtube/internal/config"
	"vidtube/internal/middleware"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openSQLite(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: NewGormLogger(middleware.Logger).LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return db
}

func TestConfigurePool(t *testing.T) {
	db := openSQLite(t)

	cfg := &config.Config{
		DBMaxOpenConns:           10,
		DBMaxIdleConns:           5,
		DBConnMaxLifetimeMinutes: 15,
	}
	require.NoError(t, configurePool(db, cfg))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	assert.Equal(t, 10, sqlDB.Stats().MaxOpenConnections)
}

func TestMigrate_CreatesEveryTable(t *testing.T) {
	db := openSQLite(t)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, Migrate(db))

	for _, table := range []string{
		"users", "videos", "comments", "tweets", "likes",
		"subscriptions", "playlists", "playlist_videos", "watch_histories",
	} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}
	assert.True(t, db.Migrator().HasIndex("likes", "idx_like_actor_target"))
	assert.True(t, db.Migrator().HasIndex("subscriptions", "idx_subscriber_channel"))
}

func TestReplicaDSN(t *testing.T) {
	cfg := &config.Config{DBName: "vidtube", DBReadPort: "5433", DBReadUser: "ro", DBReadPassword: "pw"}
	assert.Empty(t, replicaDSN(cfg))

	cfg.DBReadHost = "replica"
	assert.Equal(t, "host=replica port=5433 user=ro password=pw dbname=vidtube sslmode=disable", replicaDSN(cfg))
}

func TestReadDBRegistry(t *testing.T) {
	assert.Nil(t, GetReadDB())

	db := openSQLite(t)
	SetReadDB(db)
	assert.Same(t, db, GetReadDB())

	SetReadDB(nil)
	assert.Nil(t, GetReadDB())
}

func TestGormLogger_LogModeCopies(t *testing.T) {
	base := NewGormLogger(middleware.Logger)
	quiet := base.LogMode(logger.Silent).(*CustomGormLogger)

	assert.Equal(t, logger.Warn, base.Config.LogLevel)
	assert.Equal(t, logger.Silent, quiet.Config.LogLevel)
	assert.Equal(t, 200*time.Millisecond, quiet.Config.SlowThreshold)
}
