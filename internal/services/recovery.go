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
	"github.com/welldanyogia/webrana-proxynum-backend/internal/telecom"
)

// RecoveryResult is the restored number and the messages that came back with it
type RecoveryResult struct {
	VirtualNumber    *models.VirtualNumber `json:"virtual_number"`
	MessagesRestored int64                 `json:"messages_restored"`
}

// RecoveryService restores the most recently deleted number
type RecoveryService interface {
	RecoverLastDeleted(ctx context.Context, physicalNumberID uint) (*RecoveryResult, error)
}

type recoveryService struct {
	physicalRepo repository.PhysicalNumberRepository
	numberRepo   repository.VirtualNumberRepository
	cooldowns    CooldownService
	gateway      telecom.Gateway
	locker       lock.Locker
	config       ProvisioningConfig
	logger       *slog.Logger
	now          func() time.Time
}

// NewRecoveryService creates a new RecoveryService instance
func NewRecoveryService(
	physicalRepo repository.PhysicalNumberRepository,
	numberRepo repository.VirtualNumberRepository,
	cooldowns CooldownService,
	gateway telecom.Gateway,
	locker lock.Locker,
	config ProvisioningConfig,
	logger *slog.Logger,
	now func() time.Time,
) RecoveryService {
	if config.Timeout <= 0 {
		config.Timeout = 15 * time.Second
	}
	if now == nil {
		now = utcNow
	}
	return &recoveryService{
		physicalRepo: physicalRepo,
		numberRepo:   numberRepo,
		cooldowns:    cooldowns,
		gateway:      gateway,
		locker:       locker,
		config:       config,
		logger:       logger,
		now:          now,
	}
}

// RecoverLastDeleted checks the recovery cooldown, re-links the recoverable number
// with the carrier and brings it back to Active.
func (s *recoveryService) RecoverLastDeleted(ctx context.Context, physicalNumberID uint) (*RecoveryResult, error) {
	unlock, err := s.locker.Lock(ctx, lock.PhysicalNumberKey(physicalNumberID))
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to acquire physical number lock")
	}
	defer unlock()

	if err := s.cooldowns.CheckRecover(ctx); err != nil {
		if apperrors.IsCooldown(err) {
			recoveryOutcomes.WithLabelValues("cooldown").Inc()
		}
		return nil, err
	}

	physical, err := s.physicalRepo.GetByID(ctx, physicalNumberID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFoundError("physical number %d not found", physicalNumberID)
		}
		return nil, apperrors.Wrap(err, "failed to load physical number")
	}

	vn, err := s.numberRepo.GetRecoverable(ctx, physicalNumberID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			recoveryOutcomes.WithLabelValues("nothing_to_recover").Inc()
			return nil, apperrors.NewNotFoundError("no deleted virtual number to recover")
		}
		return nil, apperrors.Wrap(err, "failed to find recoverable number")
	}

	if err := s.checkSlot(ctx, vn); err != nil {
		recoveryOutcomes.WithLabelValues("conflict").Inc()
		return nil, err
	}

	linkID, err := s.relink(ctx, vn.Number, physical.Number)
	if err != nil {
		recoveryOutcomes.WithLabelValues("failed").Inc()
		s.logger.Warn("recovery re-link failed",
			slog.Uint64("virtual_number_id", uint64(vn.ID)),
			slog.Any("error", err))
		return nil, err
	}

	restored, err := s.numberRepo.Restore(ctx, vn, linkID, s.now())
	if err != nil {
		recoveryOutcomes.WithLabelValues("failed").Inc()
		s.releaseLink(linkID)
		switch {
		case errors.Is(err, repository.ErrSlotTaken):
			return nil, apperrors.NewConflictError("a %s number already exists", vn.Category)
		case errors.Is(err, repository.ErrCapReached):
			return nil, apperrors.NewConflictError("limit of %d live virtual numbers reached", models.MaxLiveNumbers)
		case errors.Is(err, repository.ErrNotRecoverable):
			return nil, apperrors.NewNotFoundError("no deleted virtual number to recover")
		default:
			return nil, apperrors.Wrap(err, "failed to restore virtual number")
		}
	}

	recoveryOutcomes.WithLabelValues("success").Inc()
	s.logger.Info("virtual number recovered",
		slog.Uint64("virtual_number_id", uint64(vn.ID)),
		slog.String("category", vn.Category.String()),
		slog.Int64("messages_restored", restored))

	return &RecoveryResult{VirtualNumber: vn, MessagesRestored: restored}, nil
}

// checkSlot rejects recovery into an occupied category or a full physical number
func (s *recoveryService) checkSlot(ctx context.Context, vn *models.VirtualNumber) error {
	_, err := s.numberRepo.GetLive(ctx, vn.PhysicalNumberID, vn.Category)
	if err == nil {
		return apperrors.NewConflictError("a %s number already exists", vn.Category)
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return apperrors.Wrap(err, "failed to check category slot")
	}

	live, err := s.numberRepo.CountLive(ctx, vn.PhysicalNumberID)
	if err != nil {
		return apperrors.Wrap(err, "failed to count live numbers")
	}
	if live >= models.MaxLiveNumbers {
		return apperrors.NewConflictError("limit of %d live virtual numbers reached", models.MaxLiveNumbers)
	}
	return nil
}

func (s *recoveryService) relink(ctx context.Context, number, physicalNumber string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	linkID, err := s.gateway.Link(ctx, number, physicalNumber)
	if err != nil {
		return "", apperrors.NewProvisioningError(StepLink, err)
	}
	if err := s.gateway.AwaitConfirmation(ctx, linkID); err != nil {
		return "", apperrors.NewProvisioningError(StepConfirm, err)
	}
	return linkID, nil
}

// releaseLink drops a link whose restore failed; the number itself stays issued
// because the deleted row still owns it.
func (s *recoveryService) releaseLink(linkID string) {
	if r, ok := s.gateway.(telecom.Releaser); ok {
		r.ReleaseLink(linkID)
	}
}
