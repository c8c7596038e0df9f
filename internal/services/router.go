package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	apperrors "github.com/welldanyogia/webrana-proxynum-backend/internal/errors"
	"github.com/welldanyogia/webrana-proxynum-backend/internal/lock"
	"github.com/welldanyogia/webrana-proxynum-backend/internal/models"
	"github.com/welldanyogia/webrana-proxynum-backend/internal/repository"
)

// Drop reasons reported on the inbound metric
const (
	dropUnknownNumber      = "unknown_number"
	dropNotActive          = "not_active"
	dropForwardingDisabled = "forwarding_disabled"
	dropSenderCategory     = "sender_category"
)

// Maximum inbound field sizes
const (
	MaxSenderNameLength = 100
	MaxBodyLength       = 4096
)

// senderDirectory maps known senders to the category they belong to
var senderDirectory = map[string]models.Category{
	"shopeasy": models.CategoryCommerce,
	"amazon":   models.CategoryCommerce,
	"flipkart": models.CategoryCommerce,
	"ebay":     models.CategoryCommerce,
	"walmart":  models.CategoryCommerce,
	"insta":    models.CategorySocial,
	"twitter":  models.CategorySocial,
	"linkedin": models.CategorySocial,
	"12":       models.CategoryPersonal,
	"personal": models.CategoryPersonal,
	"family":   models.CategoryPersonal,
	"friend":   models.CategoryPersonal,
}

// SenderCategory returns the category of a known sender
func SenderCategory(sender string) (models.Category, bool) {
	c, ok := senderDirectory[strings.ToLower(strings.TrimSpace(sender))]
	return c, ok
}

// RouterConfig holds configuration for the message router
type RouterConfig struct {
	// SenderCategoryFilter drops messages whose sender is not known for the number's category
	SenderCategoryFilter bool
}

// MessageRouter ingests inbound messages and serves the message inbox
type MessageRouter interface {
	// Ingest stores a message for an Active, forwarding-enabled number. A message
	// that matches no such number is dropped and Ingest returns nil, nil.
	Ingest(ctx context.Context, virtualNumber, senderName, body string) (*models.Message, error)
	List(ctx context.Context, category models.Category) ([]models.MessageListItem, error)
	// MarkRead is idempotent; the boolean reports whether the message changed
	MarkRead(ctx context.Context, id uint) (bool, error)
	DeleteMessage(ctx context.Context, id uint) error
}

type messageRouter struct {
	numberRepo  repository.VirtualNumberRepository
	messageRepo repository.MessageRepository
	locker      lock.Locker
	config      RouterConfig
	logger      *slog.Logger
	now         func() time.Time
}

// NewMessageRouter creates a new MessageRouter instance
func NewMessageRouter(
	numberRepo repository.VirtualNumberRepository,
	messageRepo repository.MessageRepository,
	locker lock.Locker,
	config RouterConfig,
	logger *slog.Logger,
	now func() time.Time,
) MessageRouter {
	if now == nil {
		now = utcNow
	}
	return &messageRouter{
		numberRepo:  numberRepo,
		messageRepo: messageRepo,
		locker:      locker,
		config:      config,
		logger:      logger,
		now:         now,
	}
}

// Ingest resolves the recipient and persists the message
func (r *messageRouter) Ingest(ctx context.Context, virtualNumber, senderName, body string) (*models.Message, error) {
	virtualNumber = strings.TrimSpace(virtualNumber)
	senderName = strings.TrimSpace(senderName)
	if virtualNumber == "" || senderName == "" || body == "" {
		return nil, apperrors.NewValidationError("virtual_number, sender_name and message are required")
	}
	if len(senderName) > MaxSenderNameLength {
		return nil, apperrors.NewValidationError("sender_name exceeds %d characters", MaxSenderNameLength)
	}
	if len(body) > MaxBodyLength {
		return nil, apperrors.NewValidationError("message exceeds %d bytes", MaxBodyLength)
	}

	vn, err := r.numberRepo.GetByNumber(ctx, virtualNumber)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			r.drop(dropUnknownNumber, nil)
			return nil, nil
		}
		return nil, apperrors.Wrap(err, "failed to resolve virtual number")
	}

	unlock, err := r.locker.Lock(ctx, lock.PhysicalNumberKey(vn.PhysicalNumberID))
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to acquire physical number lock")
	}
	defer unlock()

	// state may have changed while waiting for the lock
	vn, err = r.numberRepo.GetByID(ctx, vn.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			r.drop(dropUnknownNumber, nil)
			return nil, nil
		}
		return nil, apperrors.Wrap(err, "failed to reload virtual number")
	}

	if reason := r.rejection(vn, senderName); reason != "" {
		r.drop(reason, vn)
		return nil, nil
	}

	msg := &models.Message{
		VirtualNumberID: vn.ID,
		Category:        vn.Category,
		SenderName:      senderName,
		Body:            body,
		IsRead:          false,
		ReceivedAt:      r.now(),
	}
	if err := r.messageRepo.Create(ctx, msg); err != nil {
		return nil, apperrors.Wrap(err, "failed to store message")
	}

	inboundMessages.WithLabelValues("stored").Inc()
	r.logger.Info("inbound message stored",
		slog.Uint64("message_id", uint64(msg.ID)),
		slog.Uint64("virtual_number_id", uint64(vn.ID)),
		slog.String("category", vn.Category.String()))
	return msg, nil
}

// rejection returns the drop reason for vn, or "" when the message is accepted
func (r *messageRouter) rejection(vn *models.VirtualNumber, senderName string) string {
	if !vn.AcceptsMessages() {
		if !vn.IsActive() {
			return dropNotActive
		}
		return dropForwardingDisabled
	}
	if r.config.SenderCategoryFilter {
		if c, ok := SenderCategory(senderName); !ok || c != vn.Category {
			return dropSenderCategory
		}
	}
	return ""
}

func (r *messageRouter) drop(reason string, vn *models.VirtualNumber) {
	inboundMessages.WithLabelValues(reason).Inc()
	attrs := []any{slog.String("reason", reason)}
	if vn != nil {
		attrs = append(attrs, slog.Uint64("virtual_number_id", uint64(vn.ID)))
	}
	r.logger.Debug("inbound message dropped", attrs...)
}

// List returns messages newest first, optionally for one category
func (r *messageRouter) List(ctx context.Context, category models.Category) ([]models.MessageListItem, error) {
	if category != "" && !category.Valid() {
		return nil, apperrors.NewValidationError("unknown category %q", category)
	}
	messages, err := r.messageRepo.List(ctx, category)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list messages")
	}
	return messages, nil
}

// MarkRead marks a message as read
func (r *messageRouter) MarkRead(ctx context.Context, id uint) (bool, error) {
	changed, err := r.messageRepo.MarkAsRead(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return false, apperrors.NewNotFoundError("message %d not found", id)
		}
		return false, apperrors.Wrap(err, "failed to mark message as read")
	}
	return changed, nil
}

// DeleteMessage removes a message permanently
func (r *messageRouter) DeleteMessage(ctx context.Context, id uint) error {
	if err := r.messageRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NewNotFoundError("message %d not found", id)
		}
		return apperrors.Wrap(err, "failed to delete message")
	}
	r.logger.Info("message deleted", slog.Uint64("message_id", uint64(id)))
	return nil
}
