package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	apperrors "github.com/welldanyogia/webrana-proxynum-backend/internal/errors"
	"github.com/welldanyogia/webrana-proxynum-backend/internal/models"
	"github.com/welldanyogia/webrana-proxynum-backend/internal/repository"
)

// mockMessageRepository is a mock implementation of MessageRepository
type mockMessageRepository struct {
	mock.Mock
}

func (m *mockMessageRepository) Create(ctx context.Context, message *models.Message) error {
	args := m.Called(ctx, message)
	return args.Error(0)
}

func (m *mockMessageRepository) GetByID(ctx context.Context, id uint) (*models.Message, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Message), args.Error(1)
}

func (m *mockMessageRepository) List(ctx context.Context, category models.Category) ([]models.MessageListItem, error) {
	args := m.Called(ctx, category)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.MessageListItem), args.Error(1)
}

func (m *mockMessageRepository) MarkAsRead(ctx context.Context, id uint) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *mockMessageRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockMessageRepository) CountByVirtualNumber(ctx context.Context, virtualNumberID uint) (int64, error) {
	args := m.Called(ctx, virtualNumberID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockMessageRepository) CountByCategory(ctx context.Context) ([]repository.CategoryCount, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]repository.CategoryCount), args.Error(1)
}

func (m *mockMessageRepository) CountUnread(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (s *serviceSuite) TestSummary_ZeroFilled() {
	summary, err := s.notifications.Summary(bg)
	require.NoError(s.T(), err)

	assert.Len(s.T(), summary.Categories, len(models.Categories()))
	for _, c := range models.Categories() {
		assert.Equal(s.T(), CategoryNotifications{}, summary.Categories[c])
	}
	assert.Zero(s.T(), summary.TotalUnread)
}

func (s *serviceSuite) TestSummary_CountsPerCategory() {
	commerce := s.create(models.CategoryCommerce)
	personal := s.create(models.CategoryPersonal)

	s.ingest(commerce, "amazon")
	read := s.ingest(commerce, "ebay")
	s.ingest(personal, "family")
	_, err := s.router.MarkRead(bg, read.ID)
	require.NoError(s.T(), err)

	summary, err := s.notifications.Summary(bg)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), CategoryNotifications{Total: 2, Unread: 1}, summary.Categories[models.CategoryCommerce])
	assert.Equal(s.T(), CategoryNotifications{Total: 1, Unread: 1}, summary.Categories[models.CategoryPersonal])
	assert.Equal(s.T(), CategoryNotifications{}, summary.Categories[models.CategorySocial])
	assert.Equal(s.T(), int64(2), summary.TotalUnread)

	total, err := s.notifications.TotalUnread(bg)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), summary.TotalUnread, total)
}

func (s *serviceSuite) TestCounts_IncludeDeletedNumbers() {
	vn := s.create(models.CategoryCommerce)
	s.ingest(vn, "amazon")

	_, err := s.lifecycle.Delete(bg, vn.ID)
	require.NoError(s.T(), err)

	unread, err := s.notifications.UnreadCount(bg, models.CategoryCommerce)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), int64(1), unread)
}

func TestNotificationService_UnknownCategory(t *testing.T) {
	repo := new(mockMessageRepository)
	service := NewNotificationService(repo)

	_, err := service.UnreadCount(context.Background(), models.Category("travel"))
	assert.True(t, apperrors.IsValidation(err))
	repo.AssertNotCalled(t, "CountByCategory", mock.Anything)
}

func TestNotificationService_RepositoryError(t *testing.T) {
	repo := new(mockMessageRepository)
	service := NewNotificationService(repo)

	repo.On("CountByCategory", mock.Anything).Return(nil, errors.New("db down"))
	repo.On("CountUnread", mock.Anything).Return(int64(0), errors.New("db down"))

	_, err := service.Summary(context.Background())
	assert.Error(t, err)
	assert.Equal(t, apperrors.CodeInternalError, apperrors.GetErrorCode(err))

	_, err = service.TotalUnread(context.Background())
	assert.Error(t, err)
	repo.AssertExpectations(t)
}

func TestNotificationService_IgnoresUnknownStoredCategory(t *testing.T) {
	repo := new(mockMessageRepository)
	service := NewNotificationService(repo)

	repo.On("CountByCategory", mock.Anything).Return([]repository.CategoryCount{
		{Category: models.CategorySocial, Total: 4, Unread: 3},
		{Category: "legacy", Total: 9, Unread: 9},
	}, nil)

	summary, err := service.Summary(context.Background())
	require.NoError(t, err)
	assert.Len(t, summary.Categories, 3)
	assert.Equal(t, int64(3), summary.TotalUnread)
}
