package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	apperrors "github.com/welldanyogia/webrana-proxynum-backend/internal/errors"
	"github.com/welldanyogia/webrana-proxynum-backend/internal/lock"
	"github.com/welldanyogia/webrana-proxynum-backend/internal/models"
	"github.com/welldanyogia/webrana-proxynum-backend/internal/repository"
)

// LifecycleService owns the virtual number state machine:
// Active <-> Inactive, Active|Inactive -> Deleted.
type LifecycleService interface {
	Get(ctx context.Context, id uint) (*models.VirtualNumber, error)
	List(ctx context.Context, physicalNumberID uint, filter repository.VirtualNumberFilter) ([]models.VirtualNumberWithUnreadCount, error)
	// Deactivate flips Active and Inactive. With deactivateCalls, call forwarding is
	// suppressed on the way to Inactive and restored on the way back.
	Deactivate(ctx context.Context, id uint, deactivateCalls bool) (*models.VirtualNumber, error)
	ToggleMessageForwarding(ctx context.Context, id uint) (*models.VirtualNumber, error)
	ToggleCallForwarding(ctx context.Context, id uint) (*models.VirtualNumber, error)
	// Delete soft-deletes the number and arms the category creation cooldown
	Delete(ctx context.Context, id uint) (*models.VirtualNumber, error)
}

type lifecycleService struct {
	repo   repository.VirtualNumberRepository
	locker lock.Locker
	logger *slog.Logger
	now    func() time.Time
}

// NewLifecycleService creates a new LifecycleService instance
func NewLifecycleService(repo repository.VirtualNumberRepository, locker lock.Locker, logger *slog.Logger, now func() time.Time) LifecycleService {
	if now == nil {
		now = utcNow
	}
	return &lifecycleService{
		repo:   repo,
		locker: locker,
		logger: logger,
		now:    now,
	}
}

// Get returns a virtual number in any state
func (s *lifecycleService) Get(ctx context.Context, id uint) (*models.VirtualNumber, error) {
	vn, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, translateNumberError(err, id)
	}
	return vn, nil
}

// List returns the numbers of a physical number with unread counts
func (s *lifecycleService) List(ctx context.Context, physicalNumberID uint, filter repository.VirtualNumberFilter) ([]models.VirtualNumberWithUnreadCount, error) {
	if filter.Category != "" && !filter.Category.Valid() {
		return nil, apperrors.NewValidationError("unknown category %q", filter.Category)
	}
	numbers, err := s.repo.ListByPhysicalNumber(ctx, physicalNumberID, filter)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list virtual numbers")
	}
	return numbers, nil
}

// Deactivate toggles between Active and Inactive
func (s *lifecycleService) Deactivate(ctx context.Context, id uint, deactivateCalls bool) (*models.VirtualNumber, error) {
	return s.mutate(ctx, id, "deactivate", func(vn *models.VirtualNumber) {
		if vn.State == models.StateActive {
			vn.State = models.StateInactive
			if deactivateCalls && vn.CallForwardingEnabled {
				vn.CallForwardingEnabled = false
				vn.CallsSuppressed = true
			}
			return
		}

		vn.State = models.StateActive
		if vn.CallsSuppressed {
			vn.CallForwardingEnabled = true
			vn.CallsSuppressed = false
		}
	})
}

// ToggleMessageForwarding flips message forwarding
func (s *lifecycleService) ToggleMessageForwarding(ctx context.Context, id uint) (*models.VirtualNumber, error) {
	return s.mutate(ctx, id, "toggle_messages", func(vn *models.VirtualNumber) {
		vn.MessageForwardingEnabled = !vn.MessageForwardingEnabled
	})
}

// ToggleCallForwarding flips call forwarding. A manual toggle overrides any suppression.
func (s *lifecycleService) ToggleCallForwarding(ctx context.Context, id uint) (*models.VirtualNumber, error) {
	return s.mutate(ctx, id, "toggle_calls", func(vn *models.VirtualNumber) {
		vn.CallForwardingEnabled = !vn.CallForwardingEnabled
		vn.CallsSuppressed = false
	})
}

// Delete soft-deletes a number
func (s *lifecycleService) Delete(ctx context.Context, id uint) (*models.VirtualNumber, error) {
	vn, unlock, err := s.lockNumber(ctx, id)
	if err != nil {
		return nil, err
	}
	defer unlock()

	if err := s.repo.MarkDeleted(ctx, vn, s.now()); err != nil {
		return nil, translateNumberError(err, id)
	}

	lifecycleTransitions.WithLabelValues("delete").Inc()
	s.logger.Info("virtual number deleted",
		slog.Uint64("virtual_number_id", uint64(vn.ID)),
		slog.String("category", vn.Category.String()))
	return vn, nil
}

// mutate applies fn to a live number under its physical number lock and stores the result
func (s *lifecycleService) mutate(ctx context.Context, id uint, operation string, fn func(vn *models.VirtualNumber)) (*models.VirtualNumber, error) {
	vn, unlock, err := s.lockNumber(ctx, id)
	if err != nil {
		return nil, err
	}
	defer unlock()

	fn(vn)
	vn.UpdatedAt = s.now()

	if err := s.repo.UpdateStatus(ctx, vn); err != nil {
		return nil, translateNumberError(err, id)
	}

	lifecycleTransitions.WithLabelValues(operation).Inc()
	s.logger.Info("virtual number updated",
		slog.String("operation", operation),
		slog.Uint64("virtual_number_id", uint64(vn.ID)),
		slog.String("state", string(vn.State)),
		slog.Bool("message_forwarding", vn.MessageForwardingEnabled),
		slog.Bool("call_forwarding", vn.CallForwardingEnabled))
	return vn, nil
}

// lockNumber takes the physical number lock of id and returns the number re-read
// under the lock. Deleted numbers are rejected.
func (s *lifecycleService) lockNumber(ctx context.Context, id uint) (*models.VirtualNumber, lock.Unlock, error) {
	vn, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, translateNumberError(err, id)
	}

	unlock, err := s.locker.Lock(ctx, lock.PhysicalNumberKey(vn.PhysicalNumberID))
	if err != nil {
		return nil, nil, apperrors.Wrap(err, "failed to acquire physical number lock")
	}

	vn, err = s.repo.GetByID(ctx, id)
	if err != nil {
		unlock()
		return nil, nil, translateNumberError(err, id)
	}
	if vn.State == models.StateDeleted {
		unlock()
		return nil, nil, apperrors.NewConflictError("virtual number %d is deleted", id)
	}
	return vn, unlock, nil
}

// translateNumberError maps repository errors to the service taxonomy
func translateNumberError(err error, id uint) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return apperrors.NewNotFoundError("virtual number %d not found", id)
	case errors.Is(err, repository.ErrAlreadyDeleted):
		return apperrors.NewConflictError("virtual number %d is deleted", id)
	default:
		return apperrors.Wrap(err, "virtual number operation failed")
	}
}
