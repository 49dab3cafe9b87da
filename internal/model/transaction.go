package model

import (
	"time"

	"github.com/google/uuid"
)

// TransactionType identifies the event recorded by an AssetTransaction.
type TransactionType string

const (
	TransactionCheckOut TransactionType = "Check-Out"
	TransactionCheckIn  TransactionType = "Check-In"
	TransactionAssign   TransactionType = "Assign"
	TransactionUnassign TransactionType = "Unassign"
)

// AssetTransaction is an immutable record of a custody change.
type AssetTransaction struct {
	ID         uuid.UUID       `json:"id"`
	AssetID    string          `json:"assetId"`
	EmployeeID *string         `json:"employeeId"`
	Type       TransactionType `json:"type"`
	Reason     string          `json:"reason,omitempty"`
	Notes      string          `json:"notes,omitempty"`
	CreatedBy  string          `json:"createdBy,omitempty"`
	CreatedAt  time.Time       `json:"createdAt"`
}
