package handler

import (
	"asset-management-api/internal/model"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// maxBodyBytes bounds every JSON request body.
const maxBodyBytes = 1 << 20

// decodeBody decodes the JSON body into v, rejecting fields v does not
// declare. An empty body is accepted when optional is set and leaves v untouched.
func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}, optional bool) error {
	if r.Body == nil || r.Body == http.NoBody {
		if optional {
			return nil
		}
		return io.EOF
	}
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()
	err := decoder.Decode(v)
	if errors.Is(err, io.EOF) && optional {
		return nil
	}
	return err
}

// Date accepts "2006-01-02" or RFC 3339 timestamps. Empty strings and null
// leave it zero.
type Date struct {
	time.Time
}

func (d *Date) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		d.Time = time.Time{}
		return nil
	}
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			d.Time = t
			return nil
		}
	}
	return fmt.Errorf("invalid date %q", s)
}

// ptr returns a pointer to the date, or nil when it is unset.
func (d *Date) ptr() *time.Time {
	if d == nil || d.IsZero() {
		return nil
	}
	t := d.Time
	return &t
}

func (d *Date) value() time.Time {
	if d == nil {
		return time.Time{}
	}
	return d.Time
}

type assetRequest struct {
	Type           model.AssetType `json:"type"`
	Brand          string          `json:"brand"`
	Model          string          `json:"model"`
	SerialNumber   string          `json:"serialNumber"`
	PurchaseDate   *Date           `json:"purchaseDate"`
	PurchasePrice  *float64        `json:"purchasePrice"`
	WarrantyExpiry *Date           `json:"warrantyExpiry"`
	LifespanMonths *int            `json:"lifespanMonths"`
	Notes          string          `json:"notes"`
}

func (req assetRequest) toAsset() model.Asset {
	return model.Asset{
		Type:           req.Type,
		Brand:          strings.TrimSpace(req.Brand),
		Model:          strings.TrimSpace(req.Model),
		SerialNumber:   strings.TrimSpace(req.SerialNumber),
		PurchaseDate:   req.PurchaseDate.ptr(),
		PurchasePrice:  req.PurchasePrice,
		WarrantyExpiry: req.WarrantyExpiry.ptr(),
		LifespanMonths: req.LifespanMonths,
		Notes:          req.Notes,
	}
}

// assetUpdateRequest carries a direct field edit. Status and assignment are
// accepted only so validation can reject them with a clear message.
type assetUpdateRequest struct {
	Brand              *string            `json:"brand"`
	Model              *string            `json:"model"`
	SerialNumber       *string            `json:"serialNumber"`
	PurchaseDate       *Date              `json:"purchaseDate"`
	PurchasePrice      *float64           `json:"purchasePrice"`
	WarrantyExpiry     *Date              `json:"warrantyExpiry"`
	LifespanMonths     *int               `json:"lifespanMonths"`
	Notes              *string            `json:"notes"`
	Status             *model.AssetStatus `json:"status"`
	AssignedEmployeeID *string            `json:"assignedEmployeeId"`
}

func (req assetUpdateRequest) toPatch() model.AssetPatch {
	return model.AssetPatch{
		Brand:              req.Brand,
		Model:              req.Model,
		SerialNumber:       req.SerialNumber,
		PurchaseDate:       req.PurchaseDate.ptr(),
		PurchasePrice:      req.PurchasePrice,
		WarrantyExpiry:     req.WarrantyExpiry.ptr(),
		LifespanMonths:     req.LifespanMonths,
		Notes:              req.Notes,
		Status:             req.Status,
		AssignedEmployeeID: req.AssignedEmployeeID,
	}
}

type assignRequest struct {
	EmployeeID string `json:"employeeId"`
}

type checkOutRequest struct {
	EmployeeID string `json:"employeeId"`
	Reason     string `json:"reason"`
	Notes      string `json:"notes"`
}

type checkInRequest struct {
	Reason string `json:"reason"`
	Notes  string `json:"notes"`
}

type statusRequest struct {
	Status model.AssetStatus `json:"status"`
}

type maintenanceRequest struct {
	Type          string   `json:"type"`
	Description   string   `json:"description"`
	ScheduledDate *Date    `json:"scheduledDate"`
	Provider      string   `json:"provider"`
	Cost          *float64 `json:"cost"`
}

type retireRequest struct {
	Reason string `json:"reason"`
}

type createStatusRequest struct {
	Name string `json:"name"`
}

type selectionRequest struct {
	AssetIDs []string `json:"assetIds"`
}

type bulkParamsRequest struct {
	EmployeeID      string            `json:"employeeId"`
	Status          model.AssetStatus `json:"status"`
	Reason          string            `json:"reason"`
	Notes           string            `json:"notes"`
	Confirmation    string            `json:"confirmation"`
	MaintenanceType string            `json:"maintenanceType"`
	Description     string            `json:"description"`
	ScheduledDate   *Date             `json:"scheduledDate"`
	Provider        string            `json:"provider"`
	Cost            *float64          `json:"cost"`
	Buyer           string            `json:"buyer"`
	SaleDate        *Date             `json:"saleDate"`
	TotalAmount     float64           `json:"totalAmount"`
}

type bulkActionRequest struct {
	AssetIDs []string          `json:"assetIds"`
	Params   bulkParamsRequest `json:"params"`
}

type saleRequest struct {
	AssetIDs    []string `json:"assetIds"`
	Buyer       string   `json:"buyer"`
	SaleDate    *Date    `json:"saleDate"`
	TotalAmount float64  `json:"totalAmount"`
	Notes       string   `json:"notes"`
}
