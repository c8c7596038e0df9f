package models

import (
	"time"
)

// Message is an inbound message received by a virtual number.
// Category is copied from the owning number so counts never need a join.
type Message struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	VirtualNumberID uint      `gorm:"not null;index" json:"virtual_number_id"`
	Category        Category  `gorm:"not null;size:20;index:idx_messages_category_read" json:"category"`
	SenderName      string    `gorm:"not null;size:100" json:"sender_name"`
	Body            string    `gorm:"not null" json:"body"`
	IsRead          bool      `gorm:"default:false;index:idx_messages_category_read" json:"is_read"`
	ReceivedAt      time.Time `json:"received_at"`
	CreatedAt       time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// TableName returns the table name for Message
func (Message) TableName() string {
	return "messages"
}

// MessageListItem is the list view of a message with its recipient number
type MessageListItem struct {
	ID              uint      `json:"id"`
	VirtualNumberID uint      `json:"virtual_number_id"`
	VirtualNumber   string    `json:"virtual_number"`
	Category        Category  `json:"category"`
	SenderName      string    `json:"sender_name"`
	Body            string    `json:"body"`
	IsRead          bool      `json:"is_read"`
	ReceivedAt      time.Time `json:"received_at"`
}
