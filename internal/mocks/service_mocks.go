package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/welldanyogia/webrana-proxynum-backend/internal/models"
	"github.com/welldanyogia/webrana-proxynum-backend/internal/repository"
	"github.com/welldanyogia/webrana-proxynum-backend/internal/services"
)

// MockLifecycleService implements services.LifecycleService
type MockLifecycleService struct {
	mock.Mock
}

// Get returns a virtual number
func (m *MockLifecycleService) Get(ctx context.Context, id uint) (*models.VirtualNumber, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.VirtualNumber), args.Error(1)
}

// List returns the numbers of a physical number
func (m *MockLifecycleService) List(ctx context.Context, physicalNumberID uint, filter repository.VirtualNumberFilter) ([]models.VirtualNumberWithUnreadCount, error) {
	args := m.Called(ctx, physicalNumberID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.VirtualNumberWithUnreadCount), args.Error(1)
}

// Deactivate flips Active and Inactive
func (m *MockLifecycleService) Deactivate(ctx context.Context, id uint, deactivateCalls bool) (*models.VirtualNumber, error) {
	args := m.Called(ctx, id, deactivateCalls)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.VirtualNumber), args.Error(1)
}

// ToggleMessageForwarding flips message forwarding
func (m *MockLifecycleService) ToggleMessageForwarding(ctx context.Context, id uint) (*models.VirtualNumber, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.VirtualNumber), args.Error(1)
}

// ToggleCallForwarding flips call forwarding
func (m *MockLifecycleService) ToggleCallForwarding(ctx context.Context, id uint) (*models.VirtualNumber, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.VirtualNumber), args.Error(1)
}

// Delete soft-deletes a number
func (m *MockLifecycleService) Delete(ctx context.Context, id uint) (*models.VirtualNumber, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.VirtualNumber), args.Error(1)
}

// MockProvisioningService implements services.ProvisioningService
type MockProvisioningService struct {
	mock.Mock
}

// Create provisions a number
func (m *MockProvisioningService) Create(ctx context.Context, physicalNumberID uint, category models.Category, geoCode string) (*models.VirtualNumber, error) {
	args := m.Called(ctx, physicalNumberID, category, geoCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.VirtualNumber), args.Error(1)
}

// MockRecoveryService implements services.RecoveryService
type MockRecoveryService struct {
	mock.Mock
}

// RecoverLastDeleted restores the most recent deletion
func (m *MockRecoveryService) RecoverLastDeleted(ctx context.Context, physicalNumberID uint) (*services.RecoveryResult, error) {
	args := m.Called(ctx, physicalNumberID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.RecoveryResult), args.Error(1)
}

// MockCooldownService implements services.CooldownService
type MockCooldownService struct {
	mock.Mock
}

// CheckCreate checks the creation gate
func (m *MockCooldownService) CheckCreate(ctx context.Context, category models.Category) error {
	args := m.Called(ctx, category)
	return args.Error(0)
}

// CheckRecover checks the recovery gate
func (m *MockCooldownService) CheckRecover(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// Status reports every gate
func (m *MockCooldownService) Status(ctx context.Context) (*services.CooldownOverview, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.CooldownOverview), args.Error(1)
}

// MockMessageRouter implements services.MessageRouter
type MockMessageRouter struct {
	mock.Mock
}

// Ingest routes an inbound message
func (m *MockMessageRouter) Ingest(ctx context.Context, virtualNumber, senderName, body string) (*models.Message, error) {
	args := m.Called(ctx, virtualNumber, senderName, body)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Message), args.Error(1)
}

// List returns messages
func (m *MockMessageRouter) List(ctx context.Context, category models.Category) ([]models.MessageListItem, error) {
	args := m.Called(ctx, category)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.MessageListItem), args.Error(1)
}

// MarkRead marks a message as read
func (m *MockMessageRouter) MarkRead(ctx context.Context, id uint) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

// DeleteMessage removes a message
func (m *MockMessageRouter) DeleteMessage(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockNotificationService implements services.NotificationService
type MockNotificationService struct {
	mock.Mock
}

// UnreadCount counts unread messages of a category
func (m *MockNotificationService) UnreadCount(ctx context.Context, category models.Category) (int64, error) {
	args := m.Called(ctx, category)
	return args.Get(0).(int64), args.Error(1)
}

// TotalCount counts all messages of a category
func (m *MockNotificationService) TotalCount(ctx context.Context, category models.Category) (int64, error) {
	args := m.Called(ctx, category)
	return args.Get(0).(int64), args.Error(1)
}

// TotalUnread counts unread messages across categories
func (m *MockNotificationService) TotalUnread(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// Summary returns every category's counters
func (m *MockNotificationService) Summary(ctx context.Context) (*services.NotificationSummary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.NotificationSummary), args.Error(1)
}

var (
	_ services.LifecycleService    = (*MockLifecycleService)(nil)
	_ services.ProvisioningService = (*MockProvisioningService)(nil)
	_ services.RecoveryService     = (*MockRecoveryService)(nil)
	_ services.CooldownService     = (*MockCooldownService)(nil)
	_ services.MessageRouter       = (*MockMessageRouter)(nil)
	_ services.NotificationService = (*MockNotificationService)(nil)
)
