package model

import (
	"time"

	"github.com/google/uuid"
)

// MaintenanceRecord is a scheduled service event for an asset.
type MaintenanceRecord struct {
	ID            uuid.UUID `json:"id"`
	AssetID       string    `json:"assetId"`
	Type          string    `json:"type"`
	Description   string    `json:"description,omitempty"`
	ScheduledDate time.Time `json:"scheduledDate"`
	Provider      string    `json:"provider,omitempty"`
	Cost          *float64  `json:"cost,omitempty"`
	CreatedBy     string    `json:"createdBy,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}
