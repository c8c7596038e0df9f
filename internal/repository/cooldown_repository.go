package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/welldanyogia/webrana-proxynum-backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CooldownRepository defines the interface for cooldown timestamp access.
// Missing rows read as zero-valued records with nil timestamps.
type CooldownRepository interface {
	GetCategoryCooldown(ctx context.Context, category models.Category) (*models.CategoryCooldown, error)
	ListCategoryCooldowns(ctx context.Context) ([]models.CategoryCooldown, error)
	GetRecoveryCooldown(ctx context.Context) (*models.RecoveryCooldown, error)
	MarkDeletion(ctx context.Context, category models.Category, at time.Time) error
	MarkRecovery(ctx context.Context, at time.Time) error
}

type cooldownRepository struct {
	db *gorm.DB
}

// NewCooldownRepository creates a new CooldownRepository instance
func NewCooldownRepository(db *gorm.DB) CooldownRepository {
	return &cooldownRepository{db: db}
}

// GetCategoryCooldown returns the cooldown record of a category
func (r *cooldownRepository) GetCategoryCooldown(ctx context.Context, category models.Category) (*models.CategoryCooldown, error) {
	cd := models.CategoryCooldown{Category: category}
	result := r.db.WithContext(ctx).Where("category = ?", category).First(&cd)
	if result.Error != nil && !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to get category cooldown: %w", result.Error)
	}
	return &cd, nil
}

// ListCategoryCooldowns returns the stored cooldown records
func (r *cooldownRepository) ListCategoryCooldowns(ctx context.Context) ([]models.CategoryCooldown, error) {
	var cooldowns []models.CategoryCooldown
	if err := r.db.WithContext(ctx).Order("category").Find(&cooldowns).Error; err != nil {
		return nil, fmt.Errorf("failed to list category cooldowns: %w", err)
	}
	return cooldowns, nil
}

// GetRecoveryCooldown returns the global recovery cooldown record
func (r *cooldownRepository) GetRecoveryCooldown(ctx context.Context) (*models.RecoveryCooldown, error) {
	cd := models.RecoveryCooldown{ID: models.RecoveryCooldownID}
	result := r.db.WithContext(ctx).First(&cd, models.RecoveryCooldownID)
	if result.Error != nil && !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to get recovery cooldown: %w", result.Error)
	}
	return &cd, nil
}

// MarkDeletion records a deletion for a category
func (r *cooldownRepository) MarkDeletion(ctx context.Context, category models.Category, at time.Time) error {
	return markDeletion(r.db.WithContext(ctx), category, at)
}

// MarkRecovery records a successful recovery
func (r *cooldownRepository) MarkRecovery(ctx context.Context, at time.Time) error {
	return markRecovery(r.db.WithContext(ctx), at)
}

func markDeletion(tx *gorm.DB, category models.Category, at time.Time) error {
	err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "category"}},
		DoUpdates: clause.AssignmentColumns([]string{"last_deleted_at"}),
	}).Create(&models.CategoryCooldown{Category: category, LastDeletedAt: &at}).Error
	if err != nil {
		return fmt.Errorf("failed to mark deletion cooldown: %w", err)
	}
	return nil
}

func markRecovery(tx *gorm.DB, at time.Time) error {
	err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"last_recovered_at"}),
	}).Create(&models.RecoveryCooldown{ID: models.RecoveryCooldownID, LastRecoveredAt: &at}).Error
	if err != nil {
		return fmt.Errorf("failed to mark recovery cooldown: %w", err)
	}
	return nil
}
