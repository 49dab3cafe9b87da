package repository

import (
	"asset-management-api/internal/model"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// EmployeeRepository is an interface for interacting with employee data.
type EmployeeRepository interface {
	CreateEmployee(ctx context.Context, employee model.Employee) error
	GetEmployeeByID(ctx context.Context, id string) (*model.Employee, error)
	ListEmployees(ctx context.Context, params PaginationParams) (*PaginatedResult[model.Employee], error)
}

const employeeColumnList = `id, first_name, last_name, email, department, status, user_id, created_at, updated_at`

type employeeRepository struct {
	DB *sql.DB
}

// NewEmployeeRepository creates a new EmployeeRepository.
func NewEmployeeRepository(db *sql.DB) EmployeeRepository {
	return &employeeRepository{DB: db}
}

func scanEmployee(row rowScanner) (model.Employee, error) {
	var (
		e      model.Employee
		userID sql.NullString
	)
	if err := row.Scan(&e.ID, &e.FirstName, &e.LastName, &e.Email, &e.Department, &e.Status, &userID, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return model.Employee{}, err
	}
	e.UserID = nullableString(userID)
	return e, nil
}

// CreateEmployee adds a new employee to the database.
func (r *employeeRepository) CreateEmployee(ctx context.Context, employee model.Employee) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	query := `
		INSERT INTO employees (id, first_name, last_name, email, department, status, user_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := conn(ctx, r.DB).ExecContext(ctx, query,
		employee.ID,
		employee.FirstName,
		employee.LastName,
		employee.Email,
		employee.Department,
		employee.Status,
		employee.UserID,
	)
	if err != nil {
		if strings.Contains(err.Error(), "duplicate key value violates unique constraint") {
			return fmt.Errorf("%w: %s", ErrDuplicateEmployee, employee.ID)
		}
		return fmt.Errorf("failed to create employee: %w", err)
	}
	return nil
}

// GetEmployeeByID retrieves a single employee by business id.
func (r *employeeRepository) GetEmployeeByID(ctx context.Context, id string) (*model.Employee, error) {
	ctx, cancel := context.WithTimeout(ctx, readTimeout)
	defer cancel()

	query := `SELECT ` + employeeColumnList + ` FROM employees WHERE id = $1`

	e, err := scanEmployee(conn(ctx, r.DB).QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEmployeeNotFound
		}
		return nil, fmt.Errorf("failed to get employee by ID: %w", err)
	}
	return &e, nil
}

// ListEmployees retrieves employees ordered by last name with pagination support.
func (r *employeeRepository) ListEmployees(ctx context.Context, params PaginationParams) (*PaginatedResult[model.Employee], error) {
	ctx, cancel := context.WithTimeout(ctx, listTimeout)
	defer cancel()

	query := `SELECT ` + employeeColumnList + ` FROM employees ORDER BY last_name, first_name OFFSET $1 LIMIT NULLIF($2, 0)`

	rows, err := conn(ctx, r.DB).QueryContext(ctx, query, params.Offset, params.Limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query employees: %w", err)
	}
	defer rows.Close()

	employees := []model.Employee{}
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan employee: %w", err)
		}
		employees = append(employees, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	var totalCount int
	if err := conn(ctx, r.DB).QueryRowContext(ctx, `SELECT COUNT(*) FROM employees`).Scan(&totalCount); err != nil {
		return nil, fmt.Errorf("failed to get total count of employees: %w", err)
	}

	return &PaginatedResult[model.Employee]{
		Items:      employees,
		TotalCount: totalCount,
	}, nil
}
