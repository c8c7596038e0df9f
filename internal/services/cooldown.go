package services

import (
	"context"
	"time"

	apperrors "github.com/welldanyogia/webrana-proxynum-backend/internal/errors"
	"github.com/welldanyogia/webrana-proxynum-backend/internal/models"
	"github.com/welldanyogia/webrana-proxynum-backend/internal/repository"
)

// CooldownConfig holds the cooldown durations
type CooldownConfig struct {
	CreateCooldown  time.Duration
	RecoverCooldown time.Duration
}

// CategoryCooldownStatus is the creation gate of one category
type CategoryCooldownStatus struct {
	InCooldown       bool          `json:"in_cooldown"`
	Remaining        time.Duration `json:"-"`
	RemainingSeconds int64         `json:"remaining_seconds"`
	LastDeletedAt    *time.Time    `json:"last_deleted_at,omitempty"`
}

// RecoveryCooldownStatus is the global recovery gate
type RecoveryCooldownStatus struct {
	InCooldown       bool          `json:"recovery_in_cooldown"`
	Remaining        time.Duration `json:"-"`
	RemainingSeconds int64         `json:"remaining_seconds"`
	LastRecoveredAt  *time.Time    `json:"last_recovered_at,omitempty"`
}

// CooldownOverview is the answer to a status query
type CooldownOverview struct {
	Categories map[models.Category]CategoryCooldownStatus `json:"categories"`
	Recovery   RecoveryCooldownStatus                     `json:"recovery"`
}

// CooldownService is the cooldown policy engine. Remaining time is always
// derived from the stored timestamps at query time.
type CooldownService interface {
	// CheckCreate returns a *CooldownError while creation of category is blocked
	CheckCreate(ctx context.Context, category models.Category) error
	// CheckRecover returns a *CooldownError while recovery is blocked
	CheckRecover(ctx context.Context) error
	// Status reports every category gate and the recovery gate
	Status(ctx context.Context) (*CooldownOverview, error)
}

type cooldownService struct {
	repo   repository.CooldownRepository
	config CooldownConfig
	now    func() time.Time
}

// NewCooldownService creates a new CooldownService instance
func NewCooldownService(repo repository.CooldownRepository, config CooldownConfig, now func() time.Time) CooldownService {
	if now == nil {
		now = utcNow
	}
	return &cooldownService{
		repo:   repo,
		config: config,
		now:    now,
	}
}

// CheckCreate checks the creation cooldown of a category
func (s *cooldownService) CheckCreate(ctx context.Context, category models.Category) error {
	cd, err := s.repo.GetCategoryCooldown(ctx, category)
	if err != nil {
		return apperrors.Wrap(err, "failed to read category cooldown")
	}

	if remaining := remainingAfter(cd.LastDeletedAt, s.config.CreateCooldown, s.now()); remaining > 0 {
		cooldownRejections.WithLabelValues(apperrors.OperationCreate).Inc()
		return apperrors.NewCooldownError(apperrors.OperationCreate, category.String(), remaining)
	}
	return nil
}

// CheckRecover checks the global recovery cooldown
func (s *cooldownService) CheckRecover(ctx context.Context) error {
	cd, err := s.repo.GetRecoveryCooldown(ctx)
	if err != nil {
		return apperrors.Wrap(err, "failed to read recovery cooldown")
	}

	if remaining := remainingAfter(cd.LastRecoveredAt, s.config.RecoverCooldown, s.now()); remaining > 0 {
		cooldownRejections.WithLabelValues(apperrors.OperationRecover).Inc()
		return apperrors.NewCooldownError(apperrors.OperationRecover, "", remaining)
	}
	return nil
}

// Status computes the cooldown overview
func (s *cooldownService) Status(ctx context.Context) (*CooldownOverview, error) {
	stored, err := s.repo.ListCategoryCooldowns(ctx)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list category cooldowns")
	}
	lastDeleted := make(map[models.Category]*time.Time, len(stored))
	for _, cd := range stored {
		lastDeleted[cd.Category] = cd.LastDeletedAt
	}

	recovery, err := s.repo.GetRecoveryCooldown(ctx)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to read recovery cooldown")
	}

	now := s.now()
	overview := &CooldownOverview{
		Categories: make(map[models.Category]CategoryCooldownStatus, len(models.Categories())),
	}
	for _, category := range models.Categories() {
		remaining := remainingAfter(lastDeleted[category], s.config.CreateCooldown, now)
		overview.Categories[category] = CategoryCooldownStatus{
			InCooldown:       remaining > 0,
			Remaining:        remaining,
			RemainingSeconds: ceilSeconds(remaining),
			LastDeletedAt:    lastDeleted[category],
		}
	}

	remaining := remainingAfter(recovery.LastRecoveredAt, s.config.RecoverCooldown, now)
	overview.Recovery = RecoveryCooldownStatus{
		InCooldown:       remaining > 0,
		Remaining:        remaining,
		RemainingSeconds: ceilSeconds(remaining),
		LastRecoveredAt:  recovery.LastRecoveredAt,
	}
	return overview, nil
}

// remainingAfter returns how long a gate armed at last stays closed, or zero
func remainingAfter(last *time.Time, window time.Duration, now time.Time) time.Duration {
	if last == nil || window <= 0 {
		return 0
	}
	remaining := last.Add(window).Sub(now)
	if remaining < 0 {
		return 0
	}
	return remaining
}

func ceilSeconds(d time.Duration) int64 {
	if d <= 0 {
		return 0
	}
	return int64((d + time.Second - 1) / time.Second)
}

func utcNow() time.Time {
	return time.Now().UTC()
}
