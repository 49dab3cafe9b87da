package model

import (
	"time"

	"github.com/google/uuid"
)

// Entity types recorded in the activity log.
const (
	EntityAsset       = "asset"
	EntityEmployee    = "employee"
	EntityAssetSale   = "asset_sale"
	EntityAssetStatus = "asset_status"
)

// ActivityLog is an append-only audit entry written by every mutating operation.
type ActivityLog struct {
	ID         uuid.UUID         `json:"id"`
	UserID     string            `json:"userId"`
	Action     string            `json:"action"`
	EntityType string            `json:"entityType"`
	EntityID   string            `json:"entityId"`
	Details    map[string]string `json:"details,omitempty"`
	CreatedAt  time.Time         `json:"createdAt"`
}

// CustomStatus is an operator-defined asset status.
type CustomStatus struct {
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}
