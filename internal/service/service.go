package service

import (
	"asset-management-api/internal/auth"
	"asset-management-api/internal/model"
	"asset-management-api/internal/repository"
	"asset-management-api/pkg/errors"
	"context"
	stderrors "errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// NotificationService interface for sending notifications
type NotificationService interface {
	SendAssetNotification(ctx context.Context, notification AssetNotification) error
}

// NotificationType represents the type of notification
type NotificationType string

const (
	NotificationTypeAssetAssigned   NotificationType = "asset_assigned"
	NotificationTypeAssetCheckedOut NotificationType = "asset_checked_out"
	NotificationTypeBulkPartial     NotificationType = "bulk_action_partial"
	NotificationTypeBulkFailed      NotificationType = "bulk_action_failed"
)

// AssetNotification represents a notification about asset operations
type AssetNotification struct {
	Type       NotificationType
	EmployeeID string
	AssetIDs   []string
	Message    string
	Metadata   map[string]string
}

const notifyTimeout = 15 * time.Second

// Notify sends n in the background. Failures are logged and never reach the caller.
func Notify(notifier NotificationService, logger *logrus.Logger, n AssetNotification) {
	if notifier == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()
		if err := notifier.SendAssetNotification(ctx, n); err != nil {
			logger.WithError(err).WithField("notification_type", n.Type).Warn("failed to send notification")
		}
	}()
}

// activityWriter appends audit entries. A failed write is logged, not returned.
type activityWriter struct {
	repo   repository.ActivityRepository
	logger *logrus.Logger
}

func (w activityWriter) log(ctx context.Context, scope auth.RequestScope, action, entityType, entityID string, details map[string]string) {
	entry := model.ActivityLog{
		ID:         uuid.New(),
		UserID:     scope.UserID(),
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Details:    details,
	}
	if err := w.repo.LogActivity(ctx, entry); err != nil {
		w.logger.WithError(err).WithFields(logrus.Fields{
			"action":      action,
			"entity_type": entityType,
			"entity_id":   entityID,
		}).Warn("failed to write activity log")
	}
}

func assetLookupError(err error) error {
	if stderrors.Is(err, repository.ErrAssetNotFound) {
		return errors.NotFoundError("Asset")
	}
	return errors.DatabaseError("failed to retrieve asset", err)
}

func employeeLookupError(err error) error {
	if stderrors.Is(err, repository.ErrEmployeeNotFound) {
		return errors.NotFoundError("Employee")
	}
	return errors.DatabaseError("failed to retrieve employee", err)
}

func updateError(err error) error {
	if stderrors.Is(err, repository.ErrAssetNotFound) {
		return errors.NotFoundError("Asset")
	}
	return errors.DatabaseError("failed to update asset", err)
}

// atomically runs fn in one database transaction. Failures to begin or
// commit it surface as opaque database errors.
func (s *AssetService) atomically(ctx context.Context, fn func(ctx context.Context) error) error {
	err := s.tx.WithinTransaction(ctx, fn)
	if err == nil {
		return nil
	}
	if _, ok := errors.AsAppError(err); ok {
		return err
	}
	return errors.DatabaseError("failed to save asset changes", err)
}

// untracked runs units of work directly, for repository sets without a Transactor.
type untracked struct{}

func (untracked) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func defaultLogger(logger *logrus.Logger) *logrus.Logger {
	if logger == nil {
		return logrus.StandardLogger()
	}
	return logger
}

func ptr[T any](v T) *T {
	return &v
}

func valueOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
