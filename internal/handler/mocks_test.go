package handler

import (
	"asset-management-api/internal/auth"
	"asset-management-api/internal/bulk"
	"asset-management-api/internal/model"
	"asset-management-api/internal/repository"
	"asset-management-api/internal/service"
	"bytes"
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus/hooks/test"
)

// MockAssetService is a mock implementation of AssetService
type MockAssetService struct {
	CreateAssetFunc          func(ctx context.Context, scope auth.RequestScope, asset model.Asset) (*model.Asset, error)
	GetAssetFunc             func(ctx context.Context, id string) (*model.Asset, error)
	ListAssetsFunc           func(ctx context.Context, filter model.AssetFilter, params repository.PaginationParams) (*repository.PaginatedResult[model.Asset], error)
	UpdateAssetFunc          func(ctx context.Context, scope auth.RequestScope, id string, patch model.AssetPatch) (*model.Asset, error)
	GetAssetTransactionsFunc func(ctx context.Context, id string) ([]model.AssetTransaction, error)
	GetAssetMaintenanceFunc  func(ctx context.Context, id string) ([]model.MaintenanceRecord, error)
	ListStatusesFunc         func(ctx context.Context) ([]string, error)
	CreateStatusFunc         func(ctx context.Context, scope auth.RequestScope, name string) error
	AssignFunc               func(ctx context.Context, scope auth.RequestScope, assetID, employeeID string) error
	UnassignFunc             func(ctx context.Context, scope auth.RequestScope, assetID string) error
	CheckOutFunc             func(ctx context.Context, scope auth.RequestScope, assetID string, params service.CheckOutParams) error
	CheckInFunc              func(ctx context.Context, scope auth.RequestScope, assetID string, params service.CheckInParams) error
	ChangeStatusFunc         func(ctx context.Context, scope auth.RequestScope, assetID string, status model.AssetStatus) error
	ScheduleMaintenanceFunc  func(ctx context.Context, scope auth.RequestScope, assetID string, params service.MaintenanceParams) error
	RetireFunc               func(ctx context.Context, scope auth.RequestScope, assetID, reason string) error
	DeleteFunc               func(ctx context.Context, scope auth.RequestScope, assetID string) error
}

func (m *MockAssetService) CreateAsset(ctx context.Context, scope auth.RequestScope, asset model.Asset) (*model.Asset, error) {
	if m.CreateAssetFunc != nil {
		return m.CreateAssetFunc(ctx, scope, asset)
	}
	asset.ID = "SIT-LT-0001"
	return &asset, nil
}

func (m *MockAssetService) GetAsset(ctx context.Context, id string) (*model.Asset, error) {
	if m.GetAssetFunc != nil {
		return m.GetAssetFunc(ctx, id)
	}
	return &model.Asset{ID: id, Status: model.StatusAvailable}, nil
}

func (m *MockAssetService) ListAssets(ctx context.Context, filter model.AssetFilter, params repository.PaginationParams) (*repository.PaginatedResult[model.Asset], error) {
	if m.ListAssetsFunc != nil {
		return m.ListAssetsFunc(ctx, filter, params)
	}
	return &repository.PaginatedResult[model.Asset]{}, nil
}

func (m *MockAssetService) UpdateAsset(ctx context.Context, scope auth.RequestScope, id string, patch model.AssetPatch) (*model.Asset, error) {
	if m.UpdateAssetFunc != nil {
		return m.UpdateAssetFunc(ctx, scope, id, patch)
	}
	return &model.Asset{ID: id}, nil
}

func (m *MockAssetService) GetAssetTransactions(ctx context.Context, id string) ([]model.AssetTransaction, error) {
	if m.GetAssetTransactionsFunc != nil {
		return m.GetAssetTransactionsFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockAssetService) GetAssetMaintenance(ctx context.Context, id string) ([]model.MaintenanceRecord, error) {
	if m.GetAssetMaintenanceFunc != nil {
		return m.GetAssetMaintenanceFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockAssetService) ListStatuses(ctx context.Context) ([]string, error) {
	if m.ListStatusesFunc != nil {
		return m.ListStatusesFunc(ctx)
	}
	return []string{"Available"}, nil
}

func (m *MockAssetService) CreateStatus(ctx context.Context, scope auth.RequestScope, name string) error {
	if m.CreateStatusFunc != nil {
		return m.CreateStatusFunc(ctx, scope, name)
	}
	return nil
}

func (m *MockAssetService) Assign(ctx context.Context, scope auth.RequestScope, assetID, employeeID string) error {
	if m.AssignFunc != nil {
		return m.AssignFunc(ctx, scope, assetID, employeeID)
	}
	return nil
}

func (m *MockAssetService) Unassign(ctx context.Context, scope auth.RequestScope, assetID string) error {
	if m.UnassignFunc != nil {
		return m.UnassignFunc(ctx, scope, assetID)
	}
	return nil
}

func (m *MockAssetService) CheckOut(ctx context.Context, scope auth.RequestScope, assetID string, params service.CheckOutParams) error {
	if m.CheckOutFunc != nil {
		return m.CheckOutFunc(ctx, scope, assetID, params)
	}
	return nil
}

func (m *MockAssetService) CheckIn(ctx context.Context, scope auth.RequestScope, assetID string, params service.CheckInParams) error {
	if m.CheckInFunc != nil {
		return m.CheckInFunc(ctx, scope, assetID, params)
	}
	return nil
}

func (m *MockAssetService) ChangeStatus(ctx context.Context, scope auth.RequestScope, assetID string, status model.AssetStatus) error {
	if m.ChangeStatusFunc != nil {
		return m.ChangeStatusFunc(ctx, scope, assetID, status)
	}
	return nil
}

func (m *MockAssetService) ScheduleMaintenance(ctx context.Context, scope auth.RequestScope, assetID string, params service.MaintenanceParams) error {
	if m.ScheduleMaintenanceFunc != nil {
		return m.ScheduleMaintenanceFunc(ctx, scope, assetID, params)
	}
	return nil
}

func (m *MockAssetService) Retire(ctx context.Context, scope auth.RequestScope, assetID, reason string) error {
	if m.RetireFunc != nil {
		return m.RetireFunc(ctx, scope, assetID, reason)
	}
	return nil
}

func (m *MockAssetService) Delete(ctx context.Context, scope auth.RequestScope, assetID string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, scope, assetID)
	}
	return nil
}

// MockBulkExecutor is a mock implementation of BulkExecutor
type MockBulkExecutor struct {
	AvailableActionsFunc func(ctx context.Context, scope auth.RequestScope, ids []string) ([]bulk.Action, error)
	ExecuteFunc          func(ctx context.Context, scope auth.RequestScope, kind bulk.ActionKind, ids []string, params bulk.Params) (bulk.Result, error)
}

func (m *MockBulkExecutor) AvailableActions(ctx context.Context, scope auth.RequestScope, ids []string) ([]bulk.Action, error) {
	if m.AvailableActionsFunc != nil {
		return m.AvailableActionsFunc(ctx, scope, ids)
	}
	return []bulk.Action{}, nil
}

func (m *MockBulkExecutor) Execute(ctx context.Context, scope auth.RequestScope, kind bulk.ActionKind, ids []string, params bulk.Params) (bulk.Result, error) {
	if m.ExecuteFunc != nil {
		return m.ExecuteFunc(ctx, scope, kind, ids, params)
	}
	return bulk.Result{Success: true, Succeeded: len(ids), ClearSelection: true}, nil
}

// MockEmployeeService is a mock implementation of EmployeeService
type MockEmployeeService struct {
	CreateEmployeeFunc    func(ctx context.Context, scope auth.RequestScope, employee model.Employee) (*model.Employee, error)
	GetEmployeeFunc       func(ctx context.Context, id string) (*model.Employee, error)
	ListEmployeesFunc     func(ctx context.Context, params repository.PaginationParams) (*repository.PaginatedResult[model.Employee], error)
	GetEmployeeAssetsFunc func(ctx context.Context, id string) ([]model.Asset, error)
}

func (m *MockEmployeeService) CreateEmployee(ctx context.Context, scope auth.RequestScope, employee model.Employee) (*model.Employee, error) {
	if m.CreateEmployeeFunc != nil {
		return m.CreateEmployeeFunc(ctx, scope, employee)
	}
	return &employee, nil
}

func (m *MockEmployeeService) GetEmployee(ctx context.Context, id string) (*model.Employee, error) {
	if m.GetEmployeeFunc != nil {
		return m.GetEmployeeFunc(ctx, id)
	}
	return &model.Employee{ID: id}, nil
}

func (m *MockEmployeeService) ListEmployees(ctx context.Context, params repository.PaginationParams) (*repository.PaginatedResult[model.Employee], error) {
	if m.ListEmployeesFunc != nil {
		return m.ListEmployeesFunc(ctx, params)
	}
	return &repository.PaginatedResult[model.Employee]{}, nil
}

func (m *MockEmployeeService) GetEmployeeAssets(ctx context.Context, id string) ([]model.Asset, error) {
	if m.GetEmployeeAssetsFunc != nil {
		return m.GetEmployeeAssetsFunc(ctx, id)
	}
	return nil, nil
}

// MockActivityService is a mock implementation of ActivityService
type MockActivityService struct {
	ListActivityFunc func(ctx context.Context, filter repository.ActivityFilter) ([]model.ActivityLog, error)
}

func (m *MockActivityService) ListActivity(ctx context.Context, filter repository.ActivityFilter) ([]model.ActivityLog, error) {
	if m.ListActivityFunc != nil {
		return m.ListActivityFunc(ctx, filter)
	}
	return nil, nil
}

// Helper functions for tests

var testPrincipal = auth.Principal{UserID: "u-1", Username: "tester", Level: auth.LevelAdmin}

func createTestAssetHandler() (*AssetHandler, *MockAssetService) {
	logger, _ := test.NewNullLogger()
	svc := &MockAssetService{}
	return NewAssetHandler(svc, logger), svc
}

func createTestBulkHandler() (*BulkHandler, *MockBulkExecutor) {
	logger, _ := test.NewNullLogger()
	executor := &MockBulkExecutor{}
	return NewBulkHandler(executor, logger), executor
}

// createJSONRequest builds an authenticated request with optional route vars.
func createJSONRequest(method, url string, body interface{}, vars map[string]string) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req, _ := http.NewRequest(method, url, &buf)
	req.Header.Set("Content-Type", "application/json")
	req = req.WithContext(auth.ContextWithPrincipal(req.Context(), testPrincipal))
	if vars != nil {
		req = mux.SetURLVars(req, vars)
	}
	return req
}
