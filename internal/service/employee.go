package service

import (
	"asset-management-api/internal/auth"
	"asset-management-api/internal/model"
	"asset-management-api/internal/repository"
	"asset-management-api/pkg/errors"
	"asset-management-api/pkg/validation"
	"context"
	stderrors "errors"
	"strings"

	"github.com/sirupsen/logrus"
)

// EmployeeService handles employee records and their assigned assets.
type EmployeeService struct {
	employees repository.EmployeeRepository
	assets    repository.AssetRepository
	activity  activityWriter
	logger    *logrus.Logger
}

// NewEmployeeService creates a new employee service
func NewEmployeeService(repos *repository.Repositories, logger *logrus.Logger) *EmployeeService {
	logger = defaultLogger(logger)
	return &EmployeeService{
		employees: repos.Employees,
		assets:    repos.Assets,
		activity:  activityWriter{repo: repos.Activity, logger: logger},
		logger:    logger,
	}
}

// CreateEmployee validates and stores a new employee.
func (s *EmployeeService) CreateEmployee(ctx context.Context, scope auth.RequestScope, employee model.Employee) (*model.Employee, error) {
	employee.ID = strings.TrimSpace(employee.ID)
	if errs := validation.ValidateEmployeeInput(&employee); len(errs) > 0 {
		return nil, errors.ValidationError(strings.Join(errs, "; "))
	}

	if err := s.employees.CreateEmployee(ctx, employee); err != nil {
		if stderrors.Is(err, repository.ErrDuplicateEmployee) {
			return nil, errors.AlreadyExistsError("Employee with this id")
		}
		return nil, errors.DatabaseError("failed to create employee", err)
	}

	s.activity.log(ctx, scope, "create", model.EntityEmployee, employee.ID, map[string]string{
		"name":       employee.FullName(),
		"department": employee.Department,
	})
	s.logger.WithFields(logrus.Fields{"employee_id": employee.ID, "user_id": scope.UserID()}).Info("employee created")

	return s.GetEmployee(ctx, employee.ID)
}

// GetEmployee retrieves an employee by id
func (s *EmployeeService) GetEmployee(ctx context.Context, id string) (*model.Employee, error) {
	employee, err := s.employees.GetEmployeeByID(ctx, id)
	if err != nil {
		return nil, employeeLookupError(err)
	}
	return employee, nil
}

// ListEmployees retrieves employees with pagination
func (s *EmployeeService) ListEmployees(ctx context.Context, params repository.PaginationParams) (*repository.PaginatedResult[model.Employee], error) {
	result, err := s.employees.ListEmployees(ctx, params)
	if err != nil {
		return nil, errors.DatabaseError("failed to retrieve employees", err)
	}
	return result, nil
}

// GetEmployeeAssets lists the assets currently assigned to an employee.
func (s *EmployeeService) GetEmployeeAssets(ctx context.Context, id string) ([]model.Asset, error) {
	if _, err := s.GetEmployee(ctx, id); err != nil {
		return nil, err
	}
	assets, err := s.assets.GetAssetsByEmployee(ctx, id)
	if err != nil {
		return nil, errors.DatabaseError("failed to retrieve employee assets", err)
	}
	return assets, nil
}
