package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/welldanyogia/webrana-proxynum-backend/internal/models"
	"gorm.io/gorm"
)

// PhysicalNumberRepository defines the interface for physical number data access
type PhysicalNumberRepository interface {
	Create(ctx context.Context, pn *models.PhysicalNumber) error
	GetByID(ctx context.Context, id uint) (*models.PhysicalNumber, error)
	GetByNumber(ctx context.Context, number string) (*models.PhysicalNumber, error)
	GetByVirtualNumber(ctx context.Context, virtualNumber string) (*models.PhysicalNumber, error)
}

type physicalNumberRepository struct {
	db *gorm.DB
}

// NewPhysicalNumberRepository creates a new PhysicalNumberRepository instance
func NewPhysicalNumberRepository(db *gorm.DB) PhysicalNumberRepository {
	return &physicalNumberRepository{db: db}
}

// Create creates a new physical number
func (r *physicalNumberRepository) Create(ctx context.Context, pn *models.PhysicalNumber) error {
	result := r.db.WithContext(ctx).Create(pn)
	if result.Error != nil {
		if isDuplicateKeyError(result.Error) {
			return fmt.Errorf("physical number '%s' already exists: %w", pn.Number, ErrDuplicateEntry)
		}
		return fmt.Errorf("failed to create physical number: %w", result.Error)
	}
	return nil
}

// GetByID retrieves a physical number by its ID
func (r *physicalNumberRepository) GetByID(ctx context.Context, id uint) (*models.PhysicalNumber, error) {
	var pn models.PhysicalNumber
	result := r.db.WithContext(ctx).First(&pn, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get physical number by ID: %w", result.Error)
	}
	return &pn, nil
}

// GetByNumber retrieves a physical number by its number string
func (r *physicalNumberRepository) GetByNumber(ctx context.Context, number string) (*models.PhysicalNumber, error) {
	var pn models.PhysicalNumber
	result := r.db.WithContext(ctx).Where("number = ?", number).First(&pn)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get physical number: %w", result.Error)
	}
	return &pn, nil
}

// GetByVirtualNumber resolves the owner of a virtual number in any state, deleted included
func (r *physicalNumberRepository) GetByVirtualNumber(ctx context.Context, virtualNumber string) (*models.PhysicalNumber, error) {
	var pn models.PhysicalNumber
	result := r.db.WithContext(ctx).
		Joins("JOIN virtual_numbers v ON v.physical_number_id = physical_numbers.id").
		Where("v.number = ?", virtualNumber).
		First(&pn)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get physical number by virtual number: %w", result.Error)
	}
	return &pn, nil
}
