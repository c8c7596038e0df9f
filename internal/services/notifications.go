package services

import (
	"context"

	apperrors "github.com/welldanyogia/webrana-proxynum-backend/internal/errors"
	"github.com/welldanyogia/webrana-proxynum-backend/internal/models"
	"github.com/welldanyogia/webrana-proxynum-backend/internal/repository"
)

// CategoryNotifications holds the counters of one category
type CategoryNotifications struct {
	Total  int64 `json:"total"`
	Unread int64 `json:"unread"`
}

// NotificationSummary is the polled notification view
type NotificationSummary struct {
	Categories  map[models.Category]CategoryNotifications `json:"categories"`
	TotalUnread int64                                     `json:"total_unread"`
}

// NotificationService computes message counters from persisted messages on every query
type NotificationService interface {
	UnreadCount(ctx context.Context, category models.Category) (int64, error)
	TotalCount(ctx context.Context, category models.Category) (int64, error)
	TotalUnread(ctx context.Context) (int64, error)
	Summary(ctx context.Context) (*NotificationSummary, error)
}

type notificationService struct {
	repo repository.MessageRepository
}

// NewNotificationService creates a new NotificationService instance
func NewNotificationService(repo repository.MessageRepository) NotificationService {
	return &notificationService{repo: repo}
}

// UnreadCount counts unread messages of a category
func (s *notificationService) UnreadCount(ctx context.Context, category models.Category) (int64, error) {
	counts, err := s.category(ctx, category)
	if err != nil {
		return 0, err
	}
	return counts.Unread, nil
}

// TotalCount counts all messages of a category
func (s *notificationService) TotalCount(ctx context.Context, category models.Category) (int64, error) {
	counts, err := s.category(ctx, category)
	if err != nil {
		return 0, err
	}
	return counts.Total, nil
}

// TotalUnread counts unread messages across categories
func (s *notificationService) TotalUnread(ctx context.Context) (int64, error) {
	n, err := s.repo.CountUnread(ctx)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to count unread messages")
	}
	return n, nil
}

// Summary returns the counters of every category, zero-filled
func (s *notificationService) Summary(ctx context.Context) (*NotificationSummary, error) {
	byCategory, err := s.counts(ctx)
	if err != nil {
		return nil, err
	}

	summary := &NotificationSummary{Categories: make(map[models.Category]CategoryNotifications, len(byCategory))}
	for c, n := range byCategory {
		summary.Categories[c] = n
		summary.TotalUnread += n.Unread
	}
	return summary, nil
}

func (s *notificationService) category(ctx context.Context, category models.Category) (CategoryNotifications, error) {
	if !category.Valid() {
		return CategoryNotifications{}, apperrors.NewValidationError("unknown category %q", category)
	}
	byCategory, err := s.counts(ctx)
	if err != nil {
		return CategoryNotifications{}, err
	}
	return byCategory[category], nil
}

func (s *notificationService) counts(ctx context.Context) (map[models.Category]CategoryNotifications, error) {
	rows, err := s.repo.CountByCategory(ctx)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to count messages")
	}

	out := make(map[models.Category]CategoryNotifications, len(models.Categories()))
	for _, c := range models.Categories() {
		out[c] = CategoryNotifications{}
	}
	for _, row := range rows {
		if !row.Category.Valid() {
			continue
		}
		out[row.Category] = CategoryNotifications{Total: row.Total, Unread: row.Unread}
	}
	return out, nil
}
