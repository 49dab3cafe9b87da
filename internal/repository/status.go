package repository

import (
	"asset-management-api/internal/model"
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// StatusRepository stores operator-defined asset statuses.
type StatusRepository interface {
	CreateCustomStatus(ctx context.Context, name string) error
	ListCustomStatuses(ctx context.Context) ([]model.CustomStatus, error)
	CustomStatusExists(ctx context.Context, name string) (bool, error)
}

type statusRepository struct {
	DB *sql.DB
}

// NewStatusRepository creates a new StatusRepository.
func NewStatusRepository(db *sql.DB) StatusRepository {
	return &statusRepository{DB: db}
}

func (r *statusRepository) CreateCustomStatus(ctx context.Context, name string) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	if _, err := conn(ctx, r.DB).ExecContext(ctx, `INSERT INTO asset_statuses (name) VALUES ($1)`, name); err != nil {
		if strings.Contains(err.Error(), "duplicate key value violates unique constraint") {
			return fmt.Errorf("%w: %s", ErrDuplicateCustomStatus, name)
		}
		return fmt.Errorf("failed to create custom status: %w", err)
	}
	return nil
}

func (r *statusRepository) ListCustomStatuses(ctx context.Context) ([]model.CustomStatus, error) {
	ctx, cancel := context.WithTimeout(ctx, readTimeout)
	defer cancel()

	rows, err := conn(ctx, r.DB).QueryContext(ctx, `SELECT name, created_at FROM asset_statuses ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query custom statuses: %w", err)
	}
	defer rows.Close()

	statuses := []model.CustomStatus{}
	for rows.Next() {
		var s model.CustomStatus
		if err := rows.Scan(&s.Name, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan custom status: %w", err)
		}
		statuses = append(statuses, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return statuses, nil
}

func (r *statusRepository) CustomStatusExists(ctx context.Context, name string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, readTimeout)
	defer cancel()

	var exists bool
	if err := conn(ctx, r.DB).QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM asset_statuses WHERE name = $1)`, name).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check custom status existence: %w", err)
	}
	return exists, nil
}
