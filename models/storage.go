package models

import "time"

// StorageEntry is one key of the durable client store.
// Values are opaque JSON documents.
type StorageEntry struct {
	Key       string `gorm:"primaryKey;column:storage_key;size:64"`
	Value     []byte `gorm:"not null"`
	UpdatedAt time.Time
}

func (e *StorageEntry) TableName() string {
	return "storage_entries"
}
