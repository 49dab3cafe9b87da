package model

import (
	"time"
)

// AssetType is the hardware category of an asset.
type AssetType string

const (
	AssetTypeLaptop  AssetType = "Laptop"
	AssetTypeDesktop AssetType = "Desktop"
	AssetTypeMobile  AssetType = "Mobile"
	AssetTypeTablet  AssetType = "Tablet"
	AssetTypeMonitor AssetType = "Monitor"
	AssetTypePrinter AssetType = "Printer"
	AssetTypeServer  AssetType = "Server"
	AssetTypeNetwork AssetType = "Network"
	AssetTypeOther   AssetType = "Other"
)

// assetTypeCodes maps each type to the two-letter code used in generated asset ids.
var assetTypeCodes = map[AssetType]string{
	AssetTypeLaptop:  "LT",
	AssetTypeDesktop: "DT",
	AssetTypeMobile:  "MB",
	AssetTypeTablet:  "TB",
	AssetTypeMonitor: "MN",
	AssetTypePrinter: "PR",
	AssetTypeServer:  "SV",
	AssetTypeNetwork: "NW",
	AssetTypeOther:   "OT",
}

// AssetTypes returns every supported asset type in display order.
func AssetTypes() []AssetType {
	return []AssetType{
		AssetTypeLaptop, AssetTypeDesktop, AssetTypeMobile, AssetTypeTablet, AssetTypeMonitor,
		AssetTypePrinter, AssetTypeServer, AssetTypeNetwork, AssetTypeOther,
	}
}

// IsValid reports whether t is one of the supported asset types.
func (t AssetType) IsValid() bool {
	_, ok := assetTypeCodes[t]
	return ok
}

// Code returns the id code for the type, "OT" for unknown types.
func (t AssetType) Code() string {
	if code, ok := assetTypeCodes[t]; ok {
		return code
	}
	return assetTypeCodes[AssetTypeOther]
}

// AssetStatus is the lifecycle status of an asset. Values outside the
// built-in set are custom statuses registered at runtime.
type AssetStatus string

const (
	StatusAvailable   AssetStatus = "Available"
	StatusInUse       AssetStatus = "In Use"
	StatusMaintenance AssetStatus = "Maintenance"
	StatusSold        AssetStatus = "Sold"
	StatusRetired     AssetStatus = "Retired"
	StatusDisposed    AssetStatus = "Disposed"
)

// BuiltinStatuses returns the statuses every installation knows about.
func BuiltinStatuses() []AssetStatus {
	return []AssetStatus{StatusAvailable, StatusInUse, StatusMaintenance, StatusSold, StatusRetired, StatusDisposed}
}

// IsBuiltin reports whether s is one of the built-in statuses.
func (s AssetStatus) IsBuiltin() bool {
	for _, builtin := range BuiltinStatuses() {
		if s == builtin {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the asset has left the fleet.
func (s AssetStatus) IsTerminal() bool {
	return s == StatusSold || s == StatusRetired || s == StatusDisposed
}

// Asset represents a tracked piece of IT equipment.
type Asset struct {
	ID                 string      `json:"id"`
	Type               AssetType   `json:"type"`
	Brand              string      `json:"brand"`
	Model              string      `json:"model"`
	SerialNumber       string      `json:"serialNumber"`
	Status             AssetStatus `json:"status"`
	AssignedEmployeeID *string     `json:"assignedEmployeeId"`
	PurchaseDate       *time.Time  `json:"purchaseDate,omitempty"`
	PurchasePrice      *float64    `json:"purchasePrice,omitempty"`
	WarrantyExpiry     *time.Time  `json:"warrantyExpiry,omitempty"`
	LifespanMonths     *int        `json:"lifespanMonths,omitempty"`
	Notes              string      `json:"notes,omitempty"`
	CreatedAt          time.Time   `json:"createdAt"`
	UpdatedAt          time.Time   `json:"updatedAt"`
}

// IsAssigned reports whether the asset is held by an employee.
func (a *Asset) IsAssigned() bool {
	return a.AssignedEmployeeID != nil && *a.AssignedEmployeeID != ""
}

// AssetPatch carries a partial update. Nil fields are left untouched;
// ClearAssignment takes precedence over AssignedEmployeeID.
type AssetPatch struct {
	Status             *AssetStatus
	AssignedEmployeeID *string
	ClearAssignment    bool
	Brand              *string
	Model              *string
	SerialNumber       *string
	PurchaseDate       *time.Time
	PurchasePrice      *float64
	WarrantyExpiry     *time.Time
	LifespanMonths     *int
	Notes              *string
}

// IsEmpty reports whether the patch changes nothing.
func (p AssetPatch) IsEmpty() bool {
	return p.Status == nil && p.AssignedEmployeeID == nil && !p.ClearAssignment &&
		p.Brand == nil && p.Model == nil && p.SerialNumber == nil && p.PurchaseDate == nil &&
		p.PurchasePrice == nil && p.WarrantyExpiry == nil && p.LifespanMonths == nil && p.Notes == nil
}

// AssetFilter narrows asset listings.
type AssetFilter struct {
	Status     AssetStatus
	Type       AssetType
	EmployeeID string
	Search     string
}
