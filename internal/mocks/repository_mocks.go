package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/welldanyogia/webrana-proxynum-backend/internal/models"
	"github.com/welldanyogia/webrana-proxynum-backend/internal/repository"
)

// MockPhysicalNumberRepository implements repository.PhysicalNumberRepository
type MockPhysicalNumberRepository struct {
	mock.Mock
}

// Create creates a physical number
func (m *MockPhysicalNumberRepository) Create(ctx context.Context, pn *models.PhysicalNumber) error {
	args := m.Called(ctx, pn)
	return args.Error(0)
}

// GetByID retrieves a physical number by its ID
func (m *MockPhysicalNumberRepository) GetByID(ctx context.Context, id uint) (*models.PhysicalNumber, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PhysicalNumber), args.Error(1)
}

// GetByNumber retrieves a physical number by its number string
func (m *MockPhysicalNumberRepository) GetByNumber(ctx context.Context, number string) (*models.PhysicalNumber, error) {
	args := m.Called(ctx, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PhysicalNumber), args.Error(1)
}

// GetByVirtualNumber retrieves the physical number owning a virtual number
func (m *MockPhysicalNumberRepository) GetByVirtualNumber(ctx context.Context, virtualNumber string) (*models.PhysicalNumber, error) {
	args := m.Called(ctx, virtualNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PhysicalNumber), args.Error(1)
}

var _ repository.PhysicalNumberRepository = (*MockPhysicalNumberRepository)(nil)
