package service

import (
	"asset-management-api/internal/model"
	"asset-management-api/internal/repository"
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

// MockAssetRepository keeps assets in memory unless a Func field overrides a method.
type MockAssetRepository struct {
	mu     sync.Mutex
	Assets map[string]*model.Asset
	seq    map[string]int

	CreateAssetFunc         func(ctx context.Context, asset model.Asset) error
	NextAssetSequenceFunc   func(ctx context.Context, typeCode string) (int, error)
	GetAssetByIDFunc        func(ctx context.Context, id string) (*model.Asset, error)
	ListAssetsFunc          func(ctx context.Context, filter model.AssetFilter, params repository.PaginationParams) (*repository.PaginatedResult[model.Asset], error)
	GetAssetsByEmployeeFunc func(ctx context.Context, employeeID string) ([]model.Asset, error)
	UpdateAssetFunc         func(ctx context.Context, id string, patch model.AssetPatch) error
	DeleteAssetFunc         func(ctx context.Context, id string) error
}

func newMockAssetRepository(assets ...model.Asset) *MockAssetRepository {
	m := &MockAssetRepository{Assets: make(map[string]*model.Asset), seq: make(map[string]int)}
	for i := range assets {
		a := assets[i]
		m.Assets[a.ID] = &a
	}
	return m
}

func (m *MockAssetRepository) CreateAsset(ctx context.Context, asset model.Asset) error {
	if m.CreateAssetFunc != nil {
		return m.CreateAssetFunc(ctx, asset)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Assets[asset.ID] = &asset
	return nil
}

func (m *MockAssetRepository) NextAssetSequence(ctx context.Context, typeCode string) (int, error) {
	if m.NextAssetSequenceFunc != nil {
		return m.NextAssetSequenceFunc(ctx, typeCode)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq[typeCode]++
	return m.seq[typeCode], nil
}

func (m *MockAssetRepository) GetAssetByID(ctx context.Context, id string) (*model.Asset, error) {
	if m.GetAssetByIDFunc != nil {
		return m.GetAssetByIDFunc(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.Assets[id]
	if !ok {
		return nil, repository.ErrAssetNotFound
	}
	copied := *a
	return &copied, nil
}

func (m *MockAssetRepository) GetAssetsByIDs(ctx context.Context, ids []string) ([]model.Asset, error) {
	var out []model.Asset
	for _, id := range ids {
		if a, err := m.GetAssetByID(ctx, id); err == nil {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (m *MockAssetRepository) ListAssets(ctx context.Context, filter model.AssetFilter, params repository.PaginationParams) (*repository.PaginatedResult[model.Asset], error) {
	if m.ListAssetsFunc != nil {
		return m.ListAssetsFunc(ctx, filter, params)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	items := make([]model.Asset, 0, len(m.Assets))
	for _, a := range m.Assets {
		items = append(items, *a)
	}
	return &repository.PaginatedResult[model.Asset]{Items: items, TotalCount: len(items)}, nil
}

func (m *MockAssetRepository) GetAssetsByEmployee(ctx context.Context, employeeID string) ([]model.Asset, error) {
	if m.GetAssetsByEmployeeFunc != nil {
		return m.GetAssetsByEmployeeFunc(ctx, employeeID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var items []model.Asset
	for _, a := range m.Assets {
		if a.AssignedEmployeeID != nil && *a.AssignedEmployeeID == employeeID {
			items = append(items, *a)
		}
	}
	return items, nil
}

func (m *MockAssetRepository) UpdateAsset(ctx context.Context, id string, patch model.AssetPatch) error {
	if m.UpdateAssetFunc != nil {
		return m.UpdateAssetFunc(ctx, id, patch)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.Assets[id]
	if !ok {
		return repository.ErrAssetNotFound
	}
	if patch.Status != nil {
		a.Status = *patch.Status
	}
	if patch.ClearAssignment {
		a.AssignedEmployeeID = nil
	} else if patch.AssignedEmployeeID != nil {
		emp := *patch.AssignedEmployeeID
		a.AssignedEmployeeID = &emp
	}
	if patch.Brand != nil {
		a.Brand = *patch.Brand
	}
	if patch.Model != nil {
		a.Model = *patch.Model
	}
	if patch.SerialNumber != nil {
		a.SerialNumber = *patch.SerialNumber
	}
	if patch.Notes != nil {
		a.Notes = *patch.Notes
	}
	return nil
}

func (m *MockAssetRepository) DeleteAsset(ctx context.Context, id string) error {
	if m.DeleteAssetFunc != nil {
		return m.DeleteAssetFunc(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.Assets[id]; !ok {
		return repository.ErrAssetNotFound
	}
	delete(m.Assets, id)
	return nil
}

func (m *MockAssetRepository) snapshot() map[string]model.Asset {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]model.Asset, len(m.Assets))
	for id, a := range m.Assets {
		copied := *a
		if a.AssignedEmployeeID != nil {
			emp := *a.AssignedEmployeeID
			copied.AssignedEmployeeID = &emp
		}
		out[id] = copied
	}
	return out
}

func (m *MockAssetRepository) restore(snapshot map[string]model.Asset) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Assets = make(map[string]*model.Asset, len(snapshot))
	for id := range snapshot {
		a := snapshot[id]
		m.Assets[id] = &a
	}
}

func (m *MockAssetRepository) asset(id string) *model.Asset {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Assets[id]
}

// MockEmployeeRepository knows the employees in Employees.
type MockEmployeeRepository struct {
	Employees map[string]model.Employee

	CreateEmployeeFunc  func(ctx context.Context, employee model.Employee) error
	GetEmployeeByIDFunc func(ctx context.Context, id string) (*model.Employee, error)
	ListEmployeesFunc   func(ctx context.Context, params repository.PaginationParams) (*repository.PaginatedResult[model.Employee], error)
}

func (m *MockEmployeeRepository) CreateEmployee(ctx context.Context, employee model.Employee) error {
	if m.CreateEmployeeFunc != nil {
		return m.CreateEmployeeFunc(ctx, employee)
	}
	if m.Employees == nil {
		m.Employees = make(map[string]model.Employee)
	}
	if _, ok := m.Employees[employee.ID]; ok {
		return repository.ErrDuplicateEmployee
	}
	m.Employees[employee.ID] = employee
	return nil
}

func (m *MockEmployeeRepository) GetEmployeeByID(ctx context.Context, id string) (*model.Employee, error) {
	if m.GetEmployeeByIDFunc != nil {
		return m.GetEmployeeByIDFunc(ctx, id)
	}
	e, ok := m.Employees[id]
	if !ok {
		return nil, repository.ErrEmployeeNotFound
	}
	return &e, nil
}

func (m *MockEmployeeRepository) ListEmployees(ctx context.Context, params repository.PaginationParams) (*repository.PaginatedResult[model.Employee], error) {
	if m.ListEmployeesFunc != nil {
		return m.ListEmployeesFunc(ctx, params)
	}
	items := make([]model.Employee, 0, len(m.Employees))
	for _, e := range m.Employees {
		items = append(items, e)
	}
	return &repository.PaginatedResult[model.Employee]{Items: items, TotalCount: len(items)}, nil
}

// MockTransactionRepository records every transaction written.
type MockTransactionRepository struct {
	mu           sync.Mutex
	Transactions []model.AssetTransaction

	CreateAssetTransactionFunc func(ctx context.Context, tx model.AssetTransaction) error
}

func (m *MockTransactionRepository) CreateAssetTransaction(ctx context.Context, tx model.AssetTransaction) error {
	if m.CreateAssetTransactionFunc != nil {
		return m.CreateAssetTransactionFunc(ctx, tx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Transactions = append(m.Transactions, tx)
	return nil
}

func (m *MockTransactionRepository) GetTransactionsByAsset(ctx context.Context, assetID string) ([]model.AssetTransaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.AssetTransaction
	for _, tx := range m.Transactions {
		if tx.AssetID == assetID {
			out = append(out, tx)
		}
	}
	return out, nil
}

// MockSaleRepository records sales and their items.
type MockSaleRepository struct {
	mu    sync.Mutex
	Sales []model.AssetSale
	Items []model.AssetSaleItem

	CreateAssetSaleFunc func(ctx context.Context, sale model.AssetSale) error
	AddAssetToSaleFunc  func(ctx context.Context, item model.AssetSaleItem) error
}

func (m *MockSaleRepository) CreateAssetSale(ctx context.Context, sale model.AssetSale) error {
	if m.CreateAssetSaleFunc != nil {
		return m.CreateAssetSaleFunc(ctx, sale)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sales = append(m.Sales, sale)
	return nil
}

func (m *MockSaleRepository) AddAssetToSale(ctx context.Context, item model.AssetSaleItem) error {
	if m.AddAssetToSaleFunc != nil {
		return m.AddAssetToSaleFunc(ctx, item)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Items = append(m.Items, item)
	return nil
}

func (m *MockSaleRepository) GetSaleItems(ctx context.Context, saleID uuid.UUID) ([]model.AssetSaleItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.AssetSaleItem
	for _, item := range m.Items {
		if item.SaleID == saleID {
			out = append(out, item)
		}
	}
	return out, nil
}

// MockMaintenanceRepository records maintenance bookings.
type MockMaintenanceRepository struct {
	mu      sync.Mutex
	Records []model.MaintenanceRecord

	CreateMaintenanceFunc func(ctx context.Context, record model.MaintenanceRecord) error
}

func (m *MockMaintenanceRepository) CreateMaintenance(ctx context.Context, record model.MaintenanceRecord) error {
	if m.CreateMaintenanceFunc != nil {
		return m.CreateMaintenanceFunc(ctx, record)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Records = append(m.Records, record)
	return nil
}

func (m *MockMaintenanceRepository) GetMaintenanceByAsset(ctx context.Context, assetID string) ([]model.MaintenanceRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.MaintenanceRecord
	for _, r := range m.Records {
		if r.AssetID == assetID {
			out = append(out, r)
		}
	}
	return out, nil
}

// MockActivityRepository records activity entries.
type MockActivityRepository struct {
	mu      sync.Mutex
	Entries []model.ActivityLog

	LogActivityFunc  func(ctx context.Context, entry model.ActivityLog) error
	ListActivityFunc func(ctx context.Context, filter repository.ActivityFilter) ([]model.ActivityLog, error)
}

func (m *MockActivityRepository) LogActivity(ctx context.Context, entry model.ActivityLog) error {
	if m.LogActivityFunc != nil {
		return m.LogActivityFunc(ctx, entry)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Entries = append(m.Entries, entry)
	return nil
}

func (m *MockActivityRepository) ListActivity(ctx context.Context, filter repository.ActivityFilter) ([]model.ActivityLog, error) {
	if m.ListActivityFunc != nil {
		return m.ListActivityFunc(ctx, filter)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.ActivityLog(nil), m.Entries...), nil
}

func (m *MockActivityRepository) actions() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.Entries))
	for _, e := range m.Entries {
		out = append(out, e.Action)
	}
	return out
}

// MockStatusRepository holds custom statuses by name.
type MockStatusRepository struct {
	Custom []string

	CreateCustomStatusFunc func(ctx context.Context, name string) error
	CustomStatusExistsFunc func(ctx context.Context, name string) (bool, error)
}

func (m *MockStatusRepository) CreateCustomStatus(ctx context.Context, name string) error {
	if m.CreateCustomStatusFunc != nil {
		return m.CreateCustomStatusFunc(ctx, name)
	}
	for _, existing := range m.Custom {
		if existing == name {
			return repository.ErrDuplicateCustomStatus
		}
	}
	m.Custom = append(m.Custom, name)
	return nil
}

func (m *MockStatusRepository) ListCustomStatuses(ctx context.Context) ([]model.CustomStatus, error) {
	out := make([]model.CustomStatus, 0, len(m.Custom))
	for _, name := range m.Custom {
		out = append(out, model.CustomStatus{Name: name})
	}
	return out, nil
}

func (m *MockStatusRepository) CustomStatusExists(ctx context.Context, name string) (bool, error) {
	if m.CustomStatusExistsFunc != nil {
		return m.CustomStatusExistsFunc(ctx, name)
	}
	for _, existing := range m.Custom {
		if existing == name {
			return true, nil
		}
	}
	return false, nil
}

// MockNotifier records notifications; it is called from background goroutines.
type MockNotifier struct {
	mu   sync.Mutex
	Sent []AssetNotification
	done chan struct{}
}

func newMockNotifier() *MockNotifier {
	return &MockNotifier{done: make(chan struct{}, 16)}
}

func (m *MockNotifier) SendAssetNotification(ctx context.Context, n AssetNotification) error {
	m.mu.Lock()
	m.Sent = append(m.Sent, n)
	m.mu.Unlock()
	m.done <- struct{}{}
	return nil
}

type testFixture struct {
	service      *AssetService
	assets       *MockAssetRepository
	employees    *MockEmployeeRepository
	transactions *MockTransactionRepository
	sales        *MockSaleRepository
	maintenance  *MockMaintenanceRepository
	activity     *MockActivityRepository
	statuses     *MockStatusRepository
	notifier     *MockNotifier
	tx           *MockTransactor
	logs         *test.Hook
}

func newTestFixture(assets ...model.Asset) *testFixture {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	f := &testFixture{
		assets: newMockAssetRepository(assets...),
		employees: &MockEmployeeRepository{Employees: map[string]model.Employee{
			"EMP001": {ID: "EMP001", FirstName: "Ada", LastName: "Lovelace", Status: model.EmployeeActive},
			"EMP002": {ID: "EMP002", FirstName: "Alan", LastName: "Turing", Status: model.EmployeeActive},
		}},
		transactions: &MockTransactionRepository{},
		sales:        &MockSaleRepository{},
		maintenance:  &MockMaintenanceRepository{},
		activity:     &MockActivityRepository{},
		statuses:     &MockStatusRepository{},
		notifier:     newMockNotifier(),
		logs:         hook,
	}
	f.tx = &MockTransactor{fixture: f}
	f.service = NewAssetService(AssetServiceConfig{
		Repositories: f.repositories(),
		Notifier:     f.notifier,
		Logger:       logger,
		IDPrefix:     "SIT",
	})
	return f
}

func (f *testFixture) repositories() *repository.Repositories {
	return &repository.Repositories{
		Assets:       f.assets,
		Employees:    f.employees,
		Transactions: f.transactions,
		Sales:        f.sales,
		Maintenance:  f.maintenance,
		Activity:     f.activity,
		Statuses:     f.statuses,
		Tx:           f.tx,
	}
}

// MockTransactor gives the in-memory repositories rollback semantics: when
// the unit of work fails, assets and history rows return to their state
// before it started.
type MockTransactor struct {
	fixture    *testFixture
	Committed  int
	RolledBack int
}

func (m *MockTransactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	f := m.fixture
	assets := f.assets.snapshot()

	f.transactions.mu.Lock()
	transactions := len(f.transactions.Transactions)
	f.transactions.mu.Unlock()
	f.sales.mu.Lock()
	items := len(f.sales.Items)
	f.sales.mu.Unlock()
	f.maintenance.mu.Lock()
	records := len(f.maintenance.Records)
	f.maintenance.mu.Unlock()

	if err := fn(ctx); err != nil {
		f.assets.restore(assets)
		f.transactions.mu.Lock()
		f.transactions.Transactions = f.transactions.Transactions[:transactions]
		f.transactions.mu.Unlock()
		f.sales.mu.Lock()
		f.sales.Items = f.sales.Items[:items]
		f.sales.mu.Unlock()
		f.maintenance.mu.Lock()
		f.maintenance.Records = f.maintenance.Records[:records]
		f.maintenance.mu.Unlock()
		m.RolledBack++
		return err
	}
	m.Committed++
	return nil
}

func testAsset(id string, status model.AssetStatus, employeeID string) model.Asset {
	a := model.Asset{
		ID:           id,
		Type:         model.AssetTypeLaptop,
		Brand:        "Dell",
		Model:        "Latitude 7440",
		SerialNumber: "SN-" + id,
		Status:       status,
	}
	if employeeID != "" {
		a.AssignedEmployeeID = &employeeID
	}
	return a
}
