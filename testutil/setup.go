package testutil

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/kasuganosora/questservice/cache"
	"github.com/kasuganosora/questservice/config"
	dbadapter "github.com/kasuganosora/questservice/db"
	"github.com/kasuganosora/questservice/model"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// SetupTestDB creates a private in-memory SQLite DB and runs AutoMigrate.
// It requires no external services and is safe to use in parallel tests.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := dbadapter.Open(config.DatabaseConfig{
		Mode:       dbadapter.ModeSQLite,
		SQLitePath: "file:" + uuid.NewString() + "?mode=memory&cache=shared",
	})
	require.NoError(t, err, "SetupTestDB: Open")
	require.NoError(t, model.AutoMigrate(db), "SetupTestDB: AutoMigrate")
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// SetupTestCache opens an in-process Cache and PubSub (no Redis required).
func SetupTestCache(t *testing.T) (cache.Cache, cache.PubSub) {
	t.Helper()
	st, err := cache.Open(context.Background(), config.CacheConfig{})
	require.NoError(t, err, "SetupTestCache: Open")
	t.Cleanup(func() { _ = st.Close() })
	return st.Cache, st.PubSub
}
