package models

import (
	"time"
)

// State is the lifecycle state of a virtual number
type State string

const (
	StateActive   State = "active"
	StateInactive State = "inactive"
	StateDeleted  State = "deleted"
)

// VirtualNumber is a carrier issued number proxying a physical number for one category.
//
// The partial unique index enforces at most one live number per
// (physical number, category); deleted rows are kept for recovery.
type VirtualNumber struct {
	ID                       uint       `gorm:"primaryKey" json:"id"`
	Number                   string     `gorm:"uniqueIndex;not null;size:20" json:"number"`
	Category                 Category   `gorm:"not null;size:20;uniqueIndex:idx_live_slot,where:state <> 'deleted'" json:"category"`
	PhysicalNumberID         uint       `gorm:"not null;index;uniqueIndex:idx_live_slot,where:state <> 'deleted'" json:"physical_number_id"`
	GeoCode                  string     `gorm:"size:2" json:"geo_code"`
	CarrierLinkID            string     `gorm:"size:64" json:"-"`
	State                    State      `gorm:"not null;size:10;index" json:"state"`
	MessageForwardingEnabled bool       `json:"message_forwarding_enabled"`
	CallForwardingEnabled    bool       `json:"call_forwarding_enabled"`
	CallsSuppressed          bool       `json:"calls_suppressed"`
	Recoverable              bool       `gorm:"index" json:"-"`
	CreatedAt                time.Time  `json:"created_at"`
	UpdatedAt                time.Time  `json:"updated_at"`
	DeletedAt                *time.Time `gorm:"index" json:"deleted_at,omitempty"`

	// Relationships
	Messages []Message `gorm:"foreignKey:VirtualNumberID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName returns the table name for VirtualNumber
func (VirtualNumber) TableName() string {
	return "virtual_numbers"
}

// IsActive reports whether inbound traffic may be forwarded at all
func (v *VirtualNumber) IsActive() bool {
	return v.State == StateActive
}

// AcceptsMessages reports whether the message router may store for this number
func (v *VirtualNumber) AcceptsMessages() bool {
	return v.State == StateActive && v.MessageForwardingEnabled
}

// VirtualNumberWithUnreadCount is used for API responses that include unread count
type VirtualNumberWithUnreadCount struct {
	VirtualNumber
	UnreadCount int64 `json:"unread_count"`
}
