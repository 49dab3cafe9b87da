package service

import (
	"asset-management-api/internal/auth"
	"asset-management-api/internal/model"
	"asset-management-api/pkg/errors"
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Lifecycle operation names, used for activity logs and metrics.
const (
	OpAssign              = "assign"
	OpUnassign            = "unassign"
	OpCheckOut            = "check_out"
	OpCheckIn             = "check_in"
	OpChangeStatus        = "change_status"
	OpScheduleMaintenance = "schedule_maintenance"
	OpSell                = "sell"
	OpRetire              = "retire"
	OpDelete              = "delete"
)

// CheckOutParams describes a check-out to an employee.
type CheckOutParams struct {
	EmployeeID string
	Reason     string
	Notes      string
}

// CheckInParams describes a return.
type CheckInParams struct {
	Reason string
	Notes  string
}

// MaintenanceParams describes a maintenance booking.
type MaintenanceParams struct {
	Type          string
	Description   string
	ScheduledDate time.Time
	Provider      string
	Cost          *float64
}

// SaleParams describes the sale all selected assets belong to.
type SaleParams struct {
	Buyer       string
	SaleDate    time.Time
	TotalAmount float64
	Notes       string
}

// Assign hands the asset to an employee and marks it In Use.
func (s *AssetService) Assign(ctx context.Context, scope auth.RequestScope, assetID, employeeID string) (err error) {
	defer func() { s.metrics.ObserveLifecycle(OpAssign, err) }()

	asset, err := s.GetAsset(ctx, assetID)
	if err != nil {
		return err
	}
	if _, err := s.employees.GetEmployeeByID(ctx, employeeID); err != nil {
		return employeeLookupError(err)
	}
	if asset.Status.IsTerminal() {
		return errors.BusinessRuleError(fmt.Sprintf("Cannot assign asset with status %s", asset.Status))
	}

	patch := model.AssetPatch{AssignedEmployeeID: &employeeID, Status: ptr(model.StatusInUse)}
	err = s.atomically(ctx, func(ctx context.Context) error {
		if err := s.assets.UpdateAsset(ctx, assetID, patch); err != nil {
			return updateError(err)
		}
		return s.recordTransaction(ctx, scope, assetID, &employeeID, model.TransactionAssign, "", "")
	})
	if err != nil {
		return err
	}

	s.activity.log(ctx, scope, OpAssign, model.EntityAsset, assetID, map[string]string{
		"employeeId":         employeeID,
		"previousEmployeeId": valueOrEmpty(asset.AssignedEmployeeID),
	})
	s.logMutation(scope, assetID, OpAssign)
	Notify(s.notifier, s.logger, AssetNotification{
		Type:       NotificationTypeAssetAssigned,
		EmployeeID: employeeID,
		AssetIDs:   []string{assetID},
		Message:    fmt.Sprintf("Asset %s assigned to employee %s", assetID, employeeID),
	})
	return nil
}

// Unassign releases the asset from its employee and marks it Available.
func (s *AssetService) Unassign(ctx context.Context, scope auth.RequestScope, assetID string) (err error) {
	defer func() { s.metrics.ObserveLifecycle(OpUnassign, err) }()

	asset, err := s.GetAsset(ctx, assetID)
	if err != nil {
		return err
	}
	if !asset.IsAssigned() {
		return errors.BusinessRuleError("Asset is not assigned to any employee")
	}

	patch := model.AssetPatch{ClearAssignment: true, Status: ptr(model.StatusAvailable)}
	err = s.atomically(ctx, func(ctx context.Context) error {
		if err := s.assets.UpdateAsset(ctx, assetID, patch); err != nil {
			return updateError(err)
		}
		return s.recordTransaction(ctx, scope, assetID, asset.AssignedEmployeeID, model.TransactionUnassign, "", "")
	})
	if err != nil {
		return err
	}

	s.activity.log(ctx, scope, OpUnassign, model.EntityAsset, assetID, map[string]string{
		"previousEmployeeId": *asset.AssignedEmployeeID,
	})
	s.logMutation(scope, assetID, OpUnassign)
	return nil
}

// CheckOut lends the asset to an employee, recording reason and notes.
func (s *AssetService) CheckOut(ctx context.Context, scope auth.RequestScope, assetID string, params CheckOutParams) (err error) {
	defer func() { s.metrics.ObserveLifecycle(OpCheckOut, err) }()

	if strings.TrimSpace(params.EmployeeID) == "" {
		return errors.ValidationError("Employee is required")
	}
	asset, err := s.GetAsset(ctx, assetID)
	if err != nil {
		return err
	}
	if _, err := s.employees.GetEmployeeByID(ctx, params.EmployeeID); err != nil {
		return employeeLookupError(err)
	}
	if asset.Status.IsTerminal() {
		return errors.BusinessRuleError(fmt.Sprintf("Cannot check out asset with status %s", asset.Status))
	}

	patch := model.AssetPatch{AssignedEmployeeID: &params.EmployeeID, Status: ptr(model.StatusInUse)}
	err = s.atomically(ctx, func(ctx context.Context) error {
		if err := s.assets.UpdateAsset(ctx, assetID, patch); err != nil {
			return updateError(err)
		}
		return s.recordTransaction(ctx, scope, assetID, &params.EmployeeID, model.TransactionCheckOut, params.Reason, params.Notes)
	})
	if err != nil {
		return err
	}

	s.activity.log(ctx, scope, OpCheckOut, model.EntityAsset, assetID, map[string]string{
		"employeeId": params.EmployeeID,
		"reason":     params.Reason,
	})
	s.logMutation(scope, assetID, OpCheckOut)
	Notify(s.notifier, s.logger, AssetNotification{
		Type:       NotificationTypeAssetCheckedOut,
		EmployeeID: params.EmployeeID,
		AssetIDs:   []string{assetID},
		Message:    fmt.Sprintf("Asset %s checked out to employee %s", assetID, params.EmployeeID),
		Metadata:   map[string]string{"reason": params.Reason},
	})
	return nil
}

// CheckIn returns the asset. An In Use asset becomes Available; other
// statuses are left as they are.
func (s *AssetService) CheckIn(ctx context.Context, scope auth.RequestScope, assetID string, params CheckInParams) (err error) {
	defer func() { s.metrics.ObserveLifecycle(OpCheckIn, err) }()

	asset, err := s.GetAsset(ctx, assetID)
	if err != nil {
		return err
	}

	patch := model.AssetPatch{ClearAssignment: true}
	if asset.Status == model.StatusInUse {
		patch.Status = ptr(model.StatusAvailable)
	}
	err = s.atomically(ctx, func(ctx context.Context) error {
		if err := s.assets.UpdateAsset(ctx, assetID, patch); err != nil {
			return updateError(err)
		}
		return s.recordTransaction(ctx, scope, assetID, asset.AssignedEmployeeID, model.TransactionCheckIn, params.Reason, params.Notes)
	})
	if err != nil {
		return err
	}

	s.activity.log(ctx, scope, OpCheckIn, model.EntityAsset, assetID, map[string]string{
		"previousEmployeeId": valueOrEmpty(asset.AssignedEmployeeID),
		"reason":             params.Reason,
	})
	s.logMutation(scope, assetID, OpCheckIn)
	return nil
}

// ChangeStatus sets a built-in or registered custom status. Only In Use keeps
// an assignment, and it requires one; every other status releases it.
func (s *AssetService) ChangeStatus(ctx context.Context, scope auth.RequestScope, assetID string, status model.AssetStatus) (err error) {
	defer func() { s.metrics.ObserveLifecycle(OpChangeStatus, err) }()

	status = model.AssetStatus(strings.TrimSpace(string(status)))
	if status == "" {
		return errors.ValidationError("Status is required")
	}
	known, err := s.isKnownStatus(ctx, status)
	if err != nil {
		return err
	}
	if !known {
		return errors.ValidationError(fmt.Sprintf("Invalid status: %s", status))
	}

	asset, err := s.GetAsset(ctx, assetID)
	if err != nil {
		return err
	}
	if status == model.StatusInUse && !asset.IsAssigned() {
		return errors.BusinessRuleError("Asset must be assigned to an employee to be In Use")
	}

	patch := model.AssetPatch{Status: &status}
	if status != model.StatusInUse {
		patch.ClearAssignment = asset.IsAssigned()
	}
	if err := s.assets.UpdateAsset(ctx, assetID, patch); err != nil {
		return updateError(err)
	}

	s.activity.log(ctx, scope, OpChangeStatus, model.EntityAsset, assetID, map[string]string{
		"from": string(asset.Status),
		"to":   string(status),
	})
	s.logMutation(scope, assetID, OpChangeStatus)
	return nil
}

// ScheduleMaintenance books maintenance and moves the asset into the
// Maintenance status if it is not there already.
func (s *AssetService) ScheduleMaintenance(ctx context.Context, scope auth.RequestScope, assetID string, params MaintenanceParams) (err error) {
	defer func() { s.metrics.ObserveLifecycle(OpScheduleMaintenance, err) }()

	if strings.TrimSpace(params.Type) == "" {
		return errors.ValidationError("Maintenance type is required")
	}
	if params.ScheduledDate.IsZero() {
		return errors.ValidationError("Scheduled date is required")
	}
	if params.Cost != nil && *params.Cost < 0 {
		return errors.ValidationError("Maintenance cost cannot be negative")
	}

	asset, err := s.GetAsset(ctx, assetID)
	if err != nil {
		return err
	}
	if asset.Status.IsTerminal() {
		return errors.BusinessRuleError(fmt.Sprintf("Cannot schedule maintenance for asset with status %s", asset.Status))
	}

	record := model.MaintenanceRecord{
		ID:            uuid.New(),
		AssetID:       assetID,
		Type:          params.Type,
		Description:   params.Description,
		ScheduledDate: params.ScheduledDate,
		Provider:      params.Provider,
		Cost:          params.Cost,
		CreatedBy:     scope.UserID(),
	}
	err = s.atomically(ctx, func(ctx context.Context) error {
		if err := s.maintenance.CreateMaintenance(ctx, record); err != nil {
			return errors.DatabaseError("failed to create maintenance record", err)
		}
		if asset.Status == model.StatusMaintenance {
			return nil
		}
		patch := model.AssetPatch{Status: ptr(model.StatusMaintenance), ClearAssignment: asset.IsAssigned()}
		if err := s.assets.UpdateAsset(ctx, assetID, patch); err != nil {
			return updateError(err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.activity.log(ctx, scope, OpScheduleMaintenance, model.EntityAsset, assetID, map[string]string{
		"maintenanceId": record.ID.String(),
		"type":          params.Type,
		"scheduledDate": params.ScheduledDate.Format("2006-01-02"),
	})
	s.logMutation(scope, assetID, OpScheduleMaintenance)
	return nil
}

// SaleItemAmount splits total evenly over count assets, rounded to cents.
// The remainder of a non-divisible total is not redistributed.
func SaleItemAmount(total float64, count int) float64 {
	if count <= 0 {
		return 0
	}
	return math.Round(total/float64(count)*100) / 100
}

// CreateSale records the sale header shared by all assets of a bulk sale.
func (s *AssetService) CreateSale(ctx context.Context, scope auth.RequestScope, params SaleParams) (*model.AssetSale, error) {
	if strings.TrimSpace(params.Buyer) == "" {
		return nil, errors.ValidationError("Buyer is required")
	}
	if params.TotalAmount < 0 {
		return nil, errors.ValidationError("Total amount cannot be negative")
	}
	if params.SaleDate.IsZero() {
		params.SaleDate = s.now()
	}

	sale := model.AssetSale{
		ID:          uuid.New(),
		Buyer:       params.Buyer,
		SaleDate:    params.SaleDate,
		TotalAmount: params.TotalAmount,
		Notes:       params.Notes,
		CreatedBy:   scope.UserID(),
	}
	if err := s.sales.CreateAssetSale(ctx, sale); err != nil {
		return nil, errors.DatabaseError("failed to create asset sale", err)
	}

	s.activity.log(ctx, scope, "create", model.EntityAssetSale, sale.ID.String(), map[string]string{
		"buyer":       sale.Buyer,
		"totalAmount": strconv.FormatFloat(sale.TotalAmount, 'f', 2, 64),
	})
	return &sale, nil
}

// SellAsset adds the asset to an existing sale and marks it Sold.
func (s *AssetService) SellAsset(ctx context.Context, scope auth.RequestScope, sale *model.AssetSale, assetID string, amount float64) (err error) {
	defer func() { s.metrics.ObserveLifecycle(OpSell, err) }()

	asset, err := s.GetAsset(ctx, assetID)
	if err != nil {
		return err
	}
	if asset.Status.IsTerminal() {
		return errors.BusinessRuleError(fmt.Sprintf("Cannot sell asset with status %s", asset.Status))
	}

	item := model.AssetSaleItem{ID: uuid.New(), SaleID: sale.ID, AssetID: assetID, Amount: amount}
	patch := model.AssetPatch{Status: ptr(model.StatusSold), ClearAssignment: asset.IsAssigned()}
	err = s.atomically(ctx, func(ctx context.Context) error {
		if err := s.sales.AddAssetToSale(ctx, item); err != nil {
			return errors.DatabaseError("failed to add asset to sale", err)
		}
		if err := s.assets.UpdateAsset(ctx, assetID, patch); err != nil {
			return updateError(err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.activity.log(ctx, scope, OpSell, model.EntityAsset, assetID, map[string]string{
		"saleId": sale.ID.String(),
		"buyer":  sale.Buyer,
		"amount": strconv.FormatFloat(amount, 'f', 2, 64),
	})
	s.logMutation(scope, assetID, OpSell)
	return nil
}

// Retire takes the asset out of service.
func (s *AssetService) Retire(ctx context.Context, scope auth.RequestScope, assetID, reason string) (err error) {
	defer func() { s.metrics.ObserveLifecycle(OpRetire, err) }()

	asset, err := s.GetAsset(ctx, assetID)
	if err != nil {
		return err
	}
	if asset.Status.IsTerminal() {
		return errors.BusinessRuleError(fmt.Sprintf("Cannot retire asset with status %s", asset.Status))
	}

	patch := model.AssetPatch{Status: ptr(model.StatusRetired), ClearAssignment: asset.IsAssigned()}
	if err := s.assets.UpdateAsset(ctx, assetID, patch); err != nil {
		return updateError(err)
	}

	s.activity.log(ctx, scope, OpRetire, model.EntityAsset, assetID, map[string]string{
		"previousStatus": string(asset.Status),
		"reason":         reason,
	})
	s.logMutation(scope, assetID, OpRetire)
	return nil
}

// Delete removes the asset permanently. Its transactions, maintenance and
// sale items are kept.
func (s *AssetService) Delete(ctx context.Context, scope auth.RequestScope, assetID string) (err error) {
	defer func() { s.metrics.ObserveLifecycle(OpDelete, err) }()

	asset, err := s.GetAsset(ctx, assetID)
	if err != nil {
		return err
	}

	if err := s.assets.DeleteAsset(ctx, assetID); err != nil {
		return updateError(err)
	}

	s.activity.log(ctx, scope, OpDelete, model.EntityAsset, assetID, map[string]string{
		"type":         string(asset.Type),
		"brand":        asset.Brand,
		"model":        asset.Model,
		"serialNumber": asset.SerialNumber,
		"status":       string(asset.Status),
	})
	s.logMutation(scope, assetID, OpDelete)
	return nil
}

func (s *AssetService) recordTransaction(ctx context.Context, scope auth.RequestScope, assetID string, employeeID *string, txType model.TransactionType, reason, notes string) error {
	tx := model.AssetTransaction{
		ID:         uuid.New(),
		AssetID:    assetID,
		EmployeeID: employeeID,
		Type:       txType,
		Reason:     reason,
		Notes:      notes,
		CreatedBy:  scope.UserID(),
	}
	if err := s.transactions.CreateAssetTransaction(ctx, tx); err != nil {
		return errors.DatabaseError("failed to record asset transaction", err)
	}
	return nil
}

func (s *AssetService) logMutation(scope auth.RequestScope, assetID, action string) {
	s.logger.WithFields(logrus.Fields{
		"asset_id": assetID,
		"action":   action,
		"user_id":  scope.UserID(),
	}).Info("asset lifecycle operation applied")
}
