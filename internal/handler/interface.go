package handler

import (
	"asset-management-api/internal/auth"
	"asset-management-api/internal/bulk"
	"asset-management-api/internal/model"
	"asset-management-api/internal/repository"
	"asset-management-api/internal/service"
	"context"
	"net/http"
)

// AssetService is the asset API the handlers depend on.
type AssetService interface {
	CreateAsset(ctx context.Context, scope auth.RequestScope, asset model.Asset) (*model.Asset, error)
	GetAsset(ctx context.Context, id string) (*model.Asset, error)
	ListAssets(ctx context.Context, filter model.AssetFilter, params repository.PaginationParams) (*repository.PaginatedResult[model.Asset], error)
	UpdateAsset(ctx context.Context, scope auth.RequestScope, id string, patch model.AssetPatch) (*model.Asset, error)
	GetAssetTransactions(ctx context.Context, id string) ([]model.AssetTransaction, error)
	GetAssetMaintenance(ctx context.Context, id string) ([]model.MaintenanceRecord, error)
	ListStatuses(ctx context.Context) ([]string, error)
	CreateStatus(ctx context.Context, scope auth.RequestScope, name string) error

	Assign(ctx context.Context, scope auth.RequestScope, assetID, employeeID string) error
	Unassign(ctx context.Context, scope auth.RequestScope, assetID string) error
	CheckOut(ctx context.Context, scope auth.RequestScope, assetID string, params service.CheckOutParams) error
	CheckIn(ctx context.Context, scope auth.RequestScope, assetID string, params service.CheckInParams) error
	ChangeStatus(ctx context.Context, scope auth.RequestScope, assetID string, status model.AssetStatus) error
	ScheduleMaintenance(ctx context.Context, scope auth.RequestScope, assetID string, params service.MaintenanceParams) error
	Retire(ctx context.Context, scope auth.RequestScope, assetID, reason string) error
	Delete(ctx context.Context, scope auth.RequestScope, assetID string) error
}

// BulkExecutor is the bulk action API the handlers depend on.
type BulkExecutor interface {
	AvailableActions(ctx context.Context, scope auth.RequestScope, ids []string) ([]bulk.Action, error)
	Execute(ctx context.Context, scope auth.RequestScope, kind bulk.ActionKind, ids []string, params bulk.Params) (bulk.Result, error)
}

// EmployeeService is the employee API the handlers depend on.
type EmployeeService interface {
	CreateEmployee(ctx context.Context, scope auth.RequestScope, employee model.Employee) (*model.Employee, error)
	GetEmployee(ctx context.Context, id string) (*model.Employee, error)
	ListEmployees(ctx context.Context, params repository.PaginationParams) (*repository.PaginatedResult[model.Employee], error)
	GetEmployeeAssets(ctx context.Context, id string) ([]model.Asset, error)
}

// ActivityService is the audit trail API the handlers depend on.
type ActivityService interface {
	ListActivity(ctx context.Context, filter repository.ActivityFilter) ([]model.ActivityLog, error)
}

var (
	_ AssetService    = (*service.AssetService)(nil)
	_ BulkExecutor    = (*bulk.Orchestrator)(nil)
	_ EmployeeService = (*service.EmployeeService)(nil)
	_ ActivityService = (*service.ActivityService)(nil)
)

// AssetHandlerInterface defines the contract for asset HTTP handlers.
type AssetHandlerInterface interface {
	CreateAssetHandler(w http.ResponseWriter, r *http.Request)
	ListAssetsHandler(w http.ResponseWriter, r *http.Request)
	GetAssetHandler(w http.ResponseWriter, r *http.Request)
	UpdateAssetHandler(w http.ResponseWriter, r *http.Request)
	DeleteAssetHandler(w http.ResponseWriter, r *http.Request)
	ExportAssetsHandler(w http.ResponseWriter, r *http.Request)

	AssignHandler(w http.ResponseWriter, r *http.Request)
	UnassignHandler(w http.ResponseWriter, r *http.Request)
	CheckOutHandler(w http.ResponseWriter, r *http.Request)
	CheckInHandler(w http.ResponseWriter, r *http.Request)
	ChangeStatusHandler(w http.ResponseWriter, r *http.Request)
	ScheduleMaintenanceHandler(w http.ResponseWriter, r *http.Request)
	RetireHandler(w http.ResponseWriter, r *http.Request)

	GetTransactionsHandler(w http.ResponseWriter, r *http.Request)
	GetMaintenanceHandler(w http.ResponseWriter, r *http.Request)
	ListStatusesHandler(w http.ResponseWriter, r *http.Request)
	CreateStatusHandler(w http.ResponseWriter, r *http.Request)
}

// BulkHandlerInterface defines the contract for bulk action HTTP handlers.
type BulkHandlerInterface interface {
	AvailableActionsHandler(w http.ResponseWriter, r *http.Request)
	ExecuteHandler(w http.ResponseWriter, r *http.Request)
	CreateSaleHandler(w http.ResponseWriter, r *http.Request)
}

// EmployeeHandlerInterface defines the contract for employee HTTP handlers.
type EmployeeHandlerInterface interface {
	CreateEmployeeHandler(w http.ResponseWriter, r *http.Request)
	ListEmployeesHandler(w http.ResponseWriter, r *http.Request)
	GetEmployeeHandler(w http.ResponseWriter, r *http.Request)
	GetEmployeeAssetsHandler(w http.ResponseWriter, r *http.Request)
}

// ActivityHandlerInterface defines the contract for the audit trail handler.
type ActivityHandlerInterface interface {
	ListActivityHandler(w http.ResponseWriter, r *http.Request)
}

// Ensure handlers implement their interfaces at compile time
var (
	_ AssetHandlerInterface    = (*AssetHandler)(nil)
	_ BulkHandlerInterface     = (*BulkHandler)(nil)
	_ EmployeeHandlerInterface = (*EmployeeHandler)(nil)
	_ ActivityHandlerInterface = (*ActivityHandler)(nil)
)
