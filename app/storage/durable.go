package storage

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mytheresa/storefront/models"
)

// Durable persists values in a database table through gorm so they
// survive restarts.
type Durable struct {
	repo *models.StorageRepository
	db   *gorm.DB
}

// Open connects to the store named by dsn. A postgres:// or postgresql://
// DSN selects PostgreSQL; anything else is treated as a SQLite file path,
// whose directory is created if needed.
func Open(dsn string) (*Durable, error) {
	var dialector gorm.Dialector
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		dialector = postgres.Open(dsn)
	} else {
		if dir := filepath.Dir(dsn); dsn != ":memory:" && dir != "." {
			if err := os.MkdirAll(dir, 0o700); err != nil {
				return nil, errors.Wrap(err, "create storage directory")
			}
		}
		dialector = sqlite.Open(dsn)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, errors.Wrap(err, "open storage")
	}
	if dsn == ":memory:" {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, errors.Wrap(err, "open storage")
		}
		sqlDB.SetMaxOpenConns(1)
	}
	return NewDurable(db)
}

// NewDurable wraps an existing connection and migrates the storage table.
func NewDurable(db *gorm.DB) (*Durable, error) {
	repo := models.NewStorageRepository(db)
	if err := repo.Migrate(); err != nil {
		return nil, errors.Wrap(err, "migrate storage")
	}
	return &Durable{repo: repo, db: db}, nil
}

func (d *Durable) Get(key string) ([]byte, error) {
	entry, err := d.repo.Get(key)
	if err != nil {
		if errors.Is(err, models.ErrEntryNotFound) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrapf(err, "get %q", key)
	}
	return entry.Value, nil
}

func (d *Durable) Set(key string, value []byte) error {
	return errors.Wrapf(d.repo.Put(key, value), "set %q", key)
}

func (d *Durable) Remove(key string) error {
	return errors.Wrapf(d.repo.Delete(key), "remove %q", key)
}

// Keys lists the stored keys.
func (d *Durable) Keys() ([]string, error) {
	return d.repo.Keys()
}

func (d *Durable) Close() error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
