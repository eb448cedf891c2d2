package database

import (
	"time"

	"gorm.io/datatypes"
)

// KVEntry is one JSON value in the key-value table backing per-client state.
type KVEntry struct {
	Key       string         `gorm:"primaryKey;size:255"`
	Value     datatypes.JSON `gorm:"not null"`
	UpdatedAt time.Time
}

// TableName pins the table name regardless of naming strategy.
func (KVEntry) TableName() string {
	return "kv_entries"
}
