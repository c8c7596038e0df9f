package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/welldanyogia/webrana-proxynum-backend/internal/models"
	"gorm.io/gorm"
)

// VirtualNumberFilter narrows list queries. A zero Category means all categories.
type VirtualNumberFilter struct {
	Category       models.Category
	IncludeDeleted bool
}

// VirtualNumberRepository defines the interface for virtual number data access
type VirtualNumberRepository interface {
	GetByID(ctx context.Context, id uint) (*models.VirtualNumber, error)
	GetByNumber(ctx context.Context, number string) (*models.VirtualNumber, error)
	NumberExists(ctx context.Context, number string) (bool, error)
	GetLive(ctx context.Context, physicalNumberID uint, category models.Category) (*models.VirtualNumber, error)
	CountLive(ctx context.Context, physicalNumberID uint) (int64, error)
	ListByPhysicalNumber(ctx context.Context, physicalNumberID uint, filter VirtualNumberFilter) ([]models.VirtualNumberWithUnreadCount, error)
	GetRecoverable(ctx context.Context, physicalNumberID uint) (*models.VirtualNumber, error)
	CreateLive(ctx context.Context, vn *models.VirtualNumber) error
	UpdateStatus(ctx context.Context, vn *models.VirtualNumber) error
	MarkDeleted(ctx context.Context, vn *models.VirtualNumber, at time.Time) error
	Restore(ctx context.Context, vn *models.VirtualNumber, carrierLinkID string, at time.Time) (int64, error)
	PurgeDeleted(ctx context.Context, before time.Time) (int64, error)
}

// virtualNumberRepository implements VirtualNumberRepository using GORM
type virtualNumberRepository struct {
	db *gorm.DB
}

// NewVirtualNumberRepository creates a new VirtualNumberRepository instance
func NewVirtualNumberRepository(db *gorm.DB) VirtualNumberRepository {
	return &virtualNumberRepository{db: db}
}

// GetByID retrieves a virtual number by its ID in any state
func (r *virtualNumberRepository) GetByID(ctx context.Context, id uint) (*models.VirtualNumber, error) {
	var vn models.VirtualNumber
	result := r.db.WithContext(ctx).First(&vn, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get virtual number by ID: %w", result.Error)
	}
	return &vn, nil
}

// GetByNumber retrieves a virtual number by its number string in any state
func (r *virtualNumberRepository) GetByNumber(ctx context.Context, number string) (*models.VirtualNumber, error) {
	var vn models.VirtualNumber
	result := r.db.WithContext(ctx).Where("number = ?", number).First(&vn)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get virtual number: %w", result.Error)
	}
	return &vn, nil
}

// NumberExists reports whether a number string was ever issued
func (r *virtualNumberRepository) NumberExists(ctx context.Context, number string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.VirtualNumber{}).Where("number = ?", number).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check virtual number: %w", err)
	}
	return count > 0, nil
}

// GetLive returns the number occupying the category slot, if any
func (r *virtualNumberRepository) GetLive(ctx context.Context, physicalNumberID uint, category models.Category) (*models.VirtualNumber, error) {
	var vn models.VirtualNumber
	result := r.db.WithContext(ctx).
		Where("physical_number_id = ? AND category = ? AND state <> ?", physicalNumberID, category, models.StateDeleted).
		First(&vn)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get live virtual number: %w", result.Error)
	}
	return &vn, nil
}

// CountLive counts Active and Inactive numbers of a physical number
func (r *virtualNumberRepository) CountLive(ctx context.Context, physicalNumberID uint) (int64, error) {
	return countLive(r.db.WithContext(ctx), physicalNumberID)
}

// ListByPhysicalNumber lists the numbers of a physical number with their unread count, newest first
func (r *virtualNumberRepository) ListByPhysicalNumber(ctx context.Context, physicalNumberID uint, filter VirtualNumberFilter) ([]models.VirtualNumberWithUnreadCount, error) {
	query := r.db.WithContext(ctx).
		Table("virtual_numbers v").
		Select(`v.*,
			COALESCE((SELECT COUNT(*) FROM messages msg WHERE msg.virtual_number_id = v.id AND msg.is_read = false), 0) AS unread_count`).
		Where("v.physical_number_id = ?", physicalNumberID)

	if filter.Category != "" {
		query = query.Where("v.category = ?", filter.Category)
	}
	if !filter.IncludeDeleted {
		query = query.Where("v.state <> ?", models.StateDeleted)
	}

	results := []models.VirtualNumberWithUnreadCount{}
	if err := query.Order("v.created_at DESC").Order("v.id DESC").Scan(&results).Error; err != nil {
		return nil, fmt.Errorf("failed to list virtual numbers: %w", err)
	}
	return results, nil
}

// GetRecoverable returns the single recoverable deleted number of a physical number
func (r *virtualNumberRepository) GetRecoverable(ctx context.Context, physicalNumberID uint) (*models.VirtualNumber, error) {
	var vn models.VirtualNumber
	result := r.db.WithContext(ctx).
		Where("physical_number_id = ? AND state = ? AND recoverable = ?", physicalNumberID, models.StateDeleted, true).
		Order("deleted_at DESC").Order("id DESC").
		First(&vn)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get recoverable virtual number: %w", result.Error)
	}
	return &vn, nil
}

// CreateLive persists a new live number after re-checking the category slot and the cap
// inside the same transaction.
func (r *virtualNumberRepository) CreateLive(ctx context.Context, vn *models.VirtualNumber) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkSlot(tx, vn.PhysicalNumberID, vn.Category); err != nil {
			return err
		}

		if err := tx.Create(vn).Error; err != nil {
			if isDuplicateKeyError(err) {
				return fmt.Errorf("virtual number '%s' conflicts with an existing row: %w", vn.Number, ErrDuplicateEntry)
			}
			return fmt.Errorf("failed to create virtual number: %w", err)
		}
		return nil
	})
}

// UpdateStatus writes the state and forwarding flags of a number that is not deleted
func (r *virtualNumberRepository) UpdateStatus(ctx context.Context, vn *models.VirtualNumber) error {
	result := r.db.WithContext(ctx).
		Model(&models.VirtualNumber{}).
		Where("id = ? AND state <> ?", vn.ID, models.StateDeleted).
		Select("state", "message_forwarding_enabled", "call_forwarding_enabled", "calls_suppressed", "updated_at").
		Updates(vn)
	if result.Error != nil {
		return fmt.Errorf("failed to update virtual number: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrAlreadyDeleted
	}
	return nil
}

// MarkDeleted soft-deletes a number, makes it the only recoverable deletion of its
// physical number and arms the category cooldown, all in one transaction.
func (r *virtualNumberRepository) MarkDeleted(ctx context.Context, vn *models.VirtualNumber, at time.Time) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&models.VirtualNumber{}).
			Where("physical_number_id = ? AND state = ? AND recoverable = ?", vn.PhysicalNumberID, models.StateDeleted, true).
			Update("recoverable", false).Error
		if err != nil {
			return fmt.Errorf("failed to expire previous recoverable number: %w", err)
		}

		result := tx.Model(&models.VirtualNumber{}).
			Where("id = ? AND state <> ?", vn.ID, models.StateDeleted).
			Updates(map[string]any{
				"state":       models.StateDeleted,
				"deleted_at":  at,
				"recoverable": true,
				"updated_at":  at,
			})
		if result.Error != nil {
			return fmt.Errorf("failed to delete virtual number: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrAlreadyDeleted
		}

		return markDeletion(tx, vn.Category, at)
	})
	if err != nil {
		return err
	}

	vn.State = models.StateDeleted
	vn.DeletedAt = &at
	vn.Recoverable = true
	vn.UpdatedAt = at
	return nil
}

// Restore brings the recoverable number back to Active, re-arms the recovery cooldown
// and returns the count of messages still attached to it.
func (r *virtualNumberRepository) Restore(ctx context.Context, vn *models.VirtualNumber, carrierLinkID string, at time.Time) (int64, error) {
	var restored int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkSlot(tx, vn.PhysicalNumberID, vn.Category); err != nil {
			return err
		}

		result := tx.Model(&models.VirtualNumber{}).
			Where("id = ? AND state = ? AND recoverable = ?", vn.ID, models.StateDeleted, true).
			Updates(map[string]any{
				"state":           models.StateActive,
				"deleted_at":      nil,
				"recoverable":     false,
				"carrier_link_id": carrierLinkID,
				"updated_at":      at,
			})
		if result.Error != nil {
			if isDuplicateKeyError(result.Error) {
				return ErrSlotTaken
			}
			return fmt.Errorf("failed to restore virtual number: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrNotRecoverable
		}

		if err := markRecovery(tx, at); err != nil {
			return err
		}

		if err := tx.Model(&models.Message{}).Where("virtual_number_id = ?", vn.ID).Count(&restored).Error; err != nil {
			return fmt.Errorf("failed to count restored messages: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	vn.State = models.StateActive
	vn.DeletedAt = nil
	vn.Recoverable = false
	vn.CarrierLinkID = carrierLinkID
	vn.UpdatedAt = at
	return restored, nil
}

// PurgeDeleted hard-deletes unrecoverable deleted numbers older than before, with their messages
func (r *virtualNumberRepository) PurgeDeleted(ctx context.Context, before time.Time) (int64, error) {
	var purged int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ids []uint
		err := tx.Model(&models.VirtualNumber{}).
			Where("state = ? AND recoverable = ? AND deleted_at < ?", models.StateDeleted, false, before).
			Pluck("id", &ids).Error
		if err != nil {
			return fmt.Errorf("failed to find purgeable virtual numbers: %w", err)
		}
		if len(ids) == 0 {
			return nil
		}

		if err := tx.Where("virtual_number_id IN ?", ids).Delete(&models.Message{}).Error; err != nil {
			return fmt.Errorf("failed to purge messages: %w", err)
		}

		result := tx.Where("id IN ?", ids).Delete(&models.VirtualNumber{})
		if result.Error != nil {
			return fmt.Errorf("failed to purge virtual numbers: %w", result.Error)
		}
		purged = result.RowsAffected
		return nil
	})
	return purged, err
}

func countLive(tx *gorm.DB, physicalNumberID uint) (int64, error) {
	var count int64
	err := tx.Model(&models.VirtualNumber{}).
		Where("physical_number_id = ? AND state <> ?", physicalNumberID, models.StateDeleted).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count live virtual numbers: %w", err)
	}
	return count, nil
}

// checkSlot fails when the category slot is occupied or the cap is reached
func checkSlot(tx *gorm.DB, physicalNumberID uint, category models.Category) error {
	var occupied int64
	err := tx.Model(&models.VirtualNumber{}).
		Where("physical_number_id = ? AND category = ? AND state <> ?", physicalNumberID, category, models.StateDeleted).
		Count(&occupied).Error
	if err != nil {
		return fmt.Errorf("failed to check category slot: %w", err)
	}
	if occupied > 0 {
		return ErrSlotTaken
	}

	live, err := countLive(tx, physicalNumberID)
	if err != nil {
		return err
	}
	if live >= models.MaxLiveNumbers {
		return ErrCapReached
	}
	return nil
}
