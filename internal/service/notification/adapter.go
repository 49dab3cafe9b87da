package notification

import (
	"asset-management-api/internal/notification"
	"asset-management-api/internal/service"
	"context"
	"strconv"
)

// ServiceAdapter adapts the notification client to the service layer interface
type ServiceAdapter struct {
	client notification.Notifier
}

// NewServiceAdapter creates a new notification service adapter
func NewServiceAdapter(client notification.Notifier) *ServiceAdapter {
	return &ServiceAdapter{
		client: client,
	}
}

// SendAssetNotification converts an asset notification to the client payload and sends it.
func (a *ServiceAdapter) SendAssetNotification(ctx context.Context, assetNotification service.AssetNotification) error {
	metadata := make(map[string]string, len(assetNotification.Metadata)+2)
	for k, v := range assetNotification.Metadata {
		metadata[k] = v
	}
	metadata["notification_type"] = string(assetNotification.Type)
	if n := len(assetNotification.AssetIDs); n > 1 {
		metadata["asset_count"] = strconv.Itoa(n)
	}

	return a.client.Send(ctx, notification.Notification{
		Level:      mapNotificationLevel(assetNotification.Type),
		Event:      string(assetNotification.Type),
		EmployeeID: assetNotification.EmployeeID,
		AssetIDs:   assetNotification.AssetIDs,
		Message:    assetNotification.Message,
		Metadata:   metadata,
	})
}

// mapNotificationLevel maps service notification types to client notification levels
func mapNotificationLevel(notificationType service.NotificationType) notification.NotificationLevel {
	switch notificationType {
	case service.NotificationTypeBulkFailed:
		return notification.LevelError
	case service.NotificationTypeBulkPartial:
		return notification.LevelWarning
	case service.NotificationTypeAssetAssigned, service.NotificationTypeAssetCheckedOut:
		return notification.LevelInfo
	default:
		return notification.LevelInfo
	}
}
