package models

import (
	"time"
)

// PhysicalNumber is the real number a user owns
type PhysicalNumber struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Number    string    `gorm:"uniqueIndex;not null;size:20" json:"number"`
	OwnerName string    `gorm:"size:100" json:"owner_name"`
	IsActive  bool      `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	VirtualNumbers []VirtualNumber `gorm:"foreignKey:PhysicalNumberID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName returns the table name for PhysicalNumber
func (PhysicalNumber) TableName() string {
	return "physical_numbers"
}
