package models

import (
	"time"
)

// CategoryCooldown records the last deletion per category
type CategoryCooldown struct {
	Category      Category   `gorm:"primaryKey;size:20" json:"category"`
	LastDeletedAt *time.Time `json:"last_deleted_at,omitempty"`
}

// TableName returns the table name for CategoryCooldown
func (CategoryCooldown) TableName() string {
	return "category_cooldowns"
}

// RecoveryCooldownID is the primary key of the single recovery cooldown row
const RecoveryCooldownID = 1

// RecoveryCooldown is the global record of the last successful recovery
type RecoveryCooldown struct {
	ID              uint       `gorm:"primaryKey" json:"-"`
	LastRecoveredAt *time.Time `json:"last_recovered_at,omitempty"`
}

// TableName returns the table name for RecoveryCooldown
func (RecoveryCooldown) TableName() string {
	return "recovery_cooldowns"
}
