package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	apperrors "github.com/welldanyogia/webrana-proxynum-backend/internal/errors"
	"github.com/welldanyogia/webrana-proxynum-backend/internal/lock"
	"github.com/welldanyogia/webrana-proxynum-backend/internal/models"
	"github.com/welldanyogia/webrana-proxynum-backend/internal/repository"
	"github.com/welldanyogia/webrana-proxynum-backend/internal/telecom"
)

// Provisioning pipeline steps
const (
	StepRequestNumber = "request_number"
	StepLink          = "link"
	StepConfirm       = "await_confirmation"
	StepPersist       = "persist"
)

// maxNumberRequests bounds retries when the carrier hands out a number already on file
const maxNumberRequests = 3

// ProvisioningConfig holds configuration for the provisioning orchestrator
type ProvisioningConfig struct {
	// Timeout bounds the whole carrier pipeline
	Timeout time.Duration
}

// ProvisioningService creates virtual numbers through the carrier pipeline
type ProvisioningService interface {
	// Create provisions a new Active number for category. Nothing is stored unless
	// every carrier step succeeds.
	Create(ctx context.Context, physicalNumberID uint, category models.Category, geoCode string) (*models.VirtualNumber, error)
}

type provisioningService struct {
	physicalRepo repository.PhysicalNumberRepository
	numberRepo   repository.VirtualNumberRepository
	cooldowns    CooldownService
	gateway      telecom.Gateway
	locker       lock.Locker
	config       ProvisioningConfig
	logger       *slog.Logger
	now          func() time.Time
}

// NewProvisioningService creates a new ProvisioningService instance
func NewProvisioningService(
	physicalRepo repository.PhysicalNumberRepository,
	numberRepo repository.VirtualNumberRepository,
	cooldowns CooldownService,
	gateway telecom.Gateway,
	locker lock.Locker,
	config ProvisioningConfig,
	logger *slog.Logger,
	now func() time.Time,
) ProvisioningService {
	if config.Timeout <= 0 {
		config.Timeout = 15 * time.Second
	}
	if now == nil {
		now = utcNow
	}
	return &provisioningService{
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

// Create runs validate, slot check, cooldown gate, carrier pipeline and persist
func (s *provisioningService) Create(ctx context.Context, physicalNumberID uint, category models.Category, geoCode string) (*models.VirtualNumber, error) {
	if !category.Valid() {
		return nil, apperrors.NewValidationError("unknown category %q", category)
	}
	geoCode = telecom.NormalizeGeoCode(geoCode)
	if _, ok := telecom.NumberLength(geoCode); !ok {
		return nil, apperrors.NewValidationError("unknown geo code %q", geoCode)
	}

	unlock, err := s.locker.Lock(ctx, lock.PhysicalNumberKey(physicalNumberID))
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to acquire physical number lock")
	}
	defer unlock()

	physical, err := s.physicalRepo.GetByID(ctx, physicalNumberID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFoundError("physical number %d not found", physicalNumberID)
		}
		return nil, apperrors.Wrap(err, "failed to load physical number")
	}

	if err := s.checkSlot(ctx, physicalNumberID, category); err != nil {
		provisioningOutcomes.WithLabelValues(category.String(), "conflict").Inc()
		return nil, err
	}

	if err := s.cooldowns.CheckCreate(ctx, category); err != nil {
		if apperrors.IsCooldown(err) {
			provisioningOutcomes.WithLabelValues(category.String(), "cooldown").Inc()
		}
		return nil, err
	}

	started := time.Now()
	number, linkID, err := s.runPipeline(ctx, physical, geoCode)
	if err != nil {
		provisioningDuration.WithLabelValues("failed").Observe(time.Since(started).Seconds())
		provisioningOutcomes.WithLabelValues(category.String(), "failed").Inc()
		s.logger.Warn("provisioning pipeline failed",
			slog.String("category", category.String()),
			slog.String("geo_code", geoCode),
			slog.Any("error", err))
		return nil, err
	}
	provisioningDuration.WithLabelValues("success").Observe(time.Since(started).Seconds())

	now := s.now()
	vn := &models.VirtualNumber{
		Number:                   number,
		Category:                 category,
		PhysicalNumberID:         physicalNumberID,
		GeoCode:                  geoCode,
		CarrierLinkID:            linkID,
		State:                    models.StateActive,
		MessageForwardingEnabled: true,
		CallForwardingEnabled:    true,
		CreatedAt:                now,
		UpdatedAt:                now,
	}

	if err := s.numberRepo.CreateLive(ctx, vn); err != nil {
		s.release(number)
		provisioningOutcomes.WithLabelValues(category.String(), "failed").Inc()
		switch {
		case errors.Is(err, repository.ErrSlotTaken):
			return nil, apperrors.NewConflictError("a %s number already exists", category)
		case errors.Is(err, repository.ErrCapReached):
			return nil, apperrors.NewConflictError("limit of %d live virtual numbers reached", models.MaxLiveNumbers)
		case errors.Is(err, repository.ErrDuplicateEntry):
			return nil, apperrors.NewProvisioningError(StepPersist, err)
		default:
			return nil, apperrors.Wrap(err, "failed to persist virtual number")
		}
	}

	provisioningOutcomes.WithLabelValues(category.String(), "success").Inc()
	s.logger.Info("virtual number created",
		slog.Uint64("virtual_number_id", uint64(vn.ID)),
		slog.String("category", category.String()),
		slog.String("geo_code", geoCode))
	return vn, nil
}

// checkSlot rejects an occupied category slot or a full physical number
func (s *provisioningService) checkSlot(ctx context.Context, physicalNumberID uint, category models.Category) error {
	_, err := s.numberRepo.GetLive(ctx, physicalNumberID, category)
	if err == nil {
		return apperrors.NewConflictError("a %s number already exists", category)
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return apperrors.Wrap(err, "failed to check category slot")
	}

	live, err := s.numberRepo.CountLive(ctx, physicalNumberID)
	if err != nil {
		return apperrors.Wrap(err, "failed to count live numbers")
	}
	if live >= models.MaxLiveNumbers {
		return apperrors.NewConflictError("limit of %d live virtual numbers reached", models.MaxLiveNumbers)
	}
	return nil
}

// runPipeline requests, links and confirms a number within the configured timeout.
// On any failure the requested number is handed back to the carrier.
func (s *provisioningService) runPipeline(ctx context.Context, physical *models.PhysicalNumber, geoCode string) (string, string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	number, err := s.requestFreshNumber(ctx, geoCode)
	if err != nil {
		return "", "", err
	}

	linkID, err := s.gateway.Link(ctx, number, physical.Number)
	if err != nil {
		s.release(number)
		return "", "", apperrors.NewProvisioningError(StepLink, err)
	}

	if err := s.gateway.AwaitConfirmation(ctx, linkID); err != nil {
		s.release(number)
		return "", "", apperrors.NewProvisioningError(StepConfirm, err)
	}

	return number, linkID, nil
}

func (s *provisioningService) requestFreshNumber(ctx context.Context, geoCode string) (string, error) {
	for attempt := 1; attempt <= maxNumberRequests; attempt++ {
		number, err := s.gateway.RequestNumber(ctx, geoCode)
		if err != nil {
			return "", apperrors.NewProvisioningError(StepRequestNumber, err)
		}

		exists, err := s.numberRepo.NumberExists(ctx, number)
		if err != nil {
			return "", apperrors.Wrap(err, "failed to check issued number")
		}
		if !exists {
			return number, nil
		}
		s.logger.Debug("carrier returned a number already on file", slog.Int("attempt", attempt))
	}
	return "", apperrors.NewProvisioningError(StepRequestNumber,
		fmt.Errorf("carrier returned %d numbers already on file", maxNumberRequests))
}

func (s *provisioningService) release(number string) {
	if r, ok := s.gateway.(telecom.Releaser); ok {
		r.Release(number)
	}
}
