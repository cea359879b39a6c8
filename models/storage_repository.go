package models

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type StorageRepository struct {
	db *gorm.DB
}

// ErrEntryNotFound is returned when a key has never been written or was removed.
var ErrEntryNotFound = errors.New("storage entry not found")

func NewStorageRepository(db *gorm.DB) *StorageRepository {
	return &StorageRepository{
		db: db,
	}
}

// Migrate creates the storage table if needed.
func (r *StorageRepository) Migrate() error {
	return r.db.AutoMigrate(&StorageEntry{})
}

func (r *StorageRepository) Get(key string) (*StorageEntry, error) {
	var entry StorageEntry
	if err := r.db.
		Where("storage_key = ?", key).
		First(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEntryNotFound
		}
		return nil, err
	}
	return &entry, nil
}

// Put inserts or replaces the value stored under key.
func (r *StorageRepository) Put(key string, value []byte) error {
	entry := StorageEntry{Key: key, Value: value}
	return r.db.
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "storage_key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(&entry).Error
}

func (r *StorageRepository) Delete(key string) error {
	return r.db.Where("storage_key = ?", key).Delete(&StorageEntry{}).Error
}

// Keys lists every stored key in ascending order.
func (r *StorageRepository) Keys() ([]string, error) {
	var keys []string
	if err := r.db.Model(&StorageEntry{}).
		Order("storage_key asc").
		Pluck("storage_key", &keys).Error; err != nil {
		return nil, err
	}
	return keys, nil
}
