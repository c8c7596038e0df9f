package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/welldanyogia/webrana-proxynum-backend/internal/models"
	"gorm.io/gorm"
)

// CategoryCount holds the message totals of one category
type CategoryCount struct {
	Category models.Category `json:"category"`
	Total    int64           `json:"total"`
	Unread   int64           `json:"unread"`
}

// MessageRepository defines the interface for message data access
type MessageRepository interface {
	Create(ctx context.Context, message *models.Message) error
	GetByID(ctx context.Context, id uint) (*models.Message, error)
	List(ctx context.Context, category models.Category) ([]models.MessageListItem, error)
	MarkAsRead(ctx context.Context, id uint) (bool, error)
	Delete(ctx context.Context, id uint) error
	CountByVirtualNumber(ctx context.Context, virtualNumberID uint) (int64, error)
	CountByCategory(ctx context.Context) ([]CategoryCount, error)
	CountUnread(ctx context.Context) (int64, error)
}

// messageRepository implements MessageRepository using GORM
type messageRepository struct {
	db *gorm.DB
}

// NewMessageRepository creates a new MessageRepository instance
func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

// Create creates a new message
func (r *messageRepository) Create(ctx context.Context, message *models.Message) error {
	result := r.db.WithContext(ctx).Create(message)
	if result.Error != nil {
		return fmt.Errorf("failed to create message: %w", result.Error)
	}
	return nil
}

// GetByID retrieves a message by its ID
func (r *messageRepository) GetByID(ctx context.Context, id uint) (*models.Message, error) {
	var message models.Message
	result := r.db.WithContext(ctx).First(&message, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get message by ID: %w", result.Error)
	}
	return &message, nil
}

// List retrieves messages newest first, optionally for a single category
func (r *messageRepository) List(ctx context.Context, category models.Category) ([]models.MessageListItem, error) {
	query := r.db.WithContext(ctx).
		Table("messages m").
		Select(`m.id,
			m.virtual_number_id,
			v.number AS virtual_number,
			m.category,
			m.sender_name,
			m.body,
			m.is_read,
			m.received_at`).
		Joins("JOIN virtual_numbers v ON v.id = m.virtual_number_id")

	if category != "" {
		query = query.Where("m.category = ?", category)
	}

	results := []models.MessageListItem{}
	if err := query.Order("m.received_at DESC").Order("m.id DESC").Scan(&results).Error; err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	return results, nil
}

// MarkAsRead marks an unread message as read. The boolean reports whether the row changed;
// a message that is already read is left untouched.
func (r *messageRepository) MarkAsRead(ctx context.Context, id uint) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Message{}).
		Where("id = ? AND is_read = ?", id, false).
		Update("is_read", true)
	if result.Error != nil {
		return false, fmt.Errorf("failed to mark message as read: %w", result.Error)
	}
	if result.RowsAffected > 0 {
		return true, nil
	}

	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Message{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check message: %w", err)
	}
	if count == 0 {
		return false, ErrNotFound
	}
	return false, nil
}

// Delete deletes a message by its ID
func (r *messageRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.Message{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete message: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// CountByVirtualNumber counts the messages attached to a virtual number
func (r *messageRepository) CountByVirtualNumber(ctx context.Context, virtualNumberID uint) (int64, error) {
	var count int64
	result := r.db.WithContext(ctx).Model(&models.Message{}).Where("virtual_number_id = ?", virtualNumberID).Count(&count)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to count messages: %w", result.Error)
	}
	return count, nil
}

// CountByCategory returns total and unread counts for each category that has messages
func (r *messageRepository) CountByCategory(ctx context.Context) ([]CategoryCount, error) {
	var counts []CategoryCount
	err := r.db.WithContext(ctx).
		Model(&models.Message{}).
		Select(`category,
			COUNT(*) AS total,
			COALESCE(SUM(CASE WHEN is_read = false THEN 1 ELSE 0 END), 0) AS unread`).
		Group("category").
		Scan(&counts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count messages by category: %w", err)
	}
	return counts, nil
}

// CountUnread counts unread messages across all categories
func (r *messageRepository) CountUnread(ctx context.Context) (int64, error) {
	var count int64
	result := r.db.WithContext(ctx).Model(&models.Message{}).Where("is_read = ?", false).Count(&count)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to count unread messages: %w", result.Error)
	}
	return count, nil
}
