package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestRepo(t *testing.T) *StorageRepository {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	// Every new connection to :memory: is a new empty database.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	repo := NewStorageRepository(db)
	require.NoError(t, repo.Migrate())
	return repo
}

func TestStorageRepository(t *testing.T) {
	repo := newTestRepo(t)

	// Missing key
	_, err := repo.Get("cart")
	assert.ErrorIs(t, err, ErrEntryNotFound)

	// Insert then replace
	require.NoError(t, repo.Put("cart", []byte(`[]`)))
	require.NoError(t, repo.Put("cart", []byte(`[{"id":"x"}]`)))
	require.NoError(t, repo.Put("token", []byte(`"abc"`)))

	entry, err := repo.Get("cart")
	require.NoError(t, err)
	assert.Equal(t, `[{"id":"x"}]`, string(entry.Value))
	assert.False(t, entry.UpdatedAt.IsZero())

	keys, err := repo.Keys()
	require.NoError(t, err)
	assert.Equal(t, []string{"cart", "token"}, keys)

	// Delete
	require.NoError(t, repo.Delete("cart"))
	_, err = repo.Get("cart")
	assert.ErrorIs(t, err, ErrEntryNotFound)
	assert.NoError(t, repo.Delete("cart"), "deleting a missing key is not an error")
}
