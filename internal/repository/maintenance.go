package repository

import (
	"asset-management-api/internal/model"
	"context"
	"database/sql"
	"fmt"
)

// MaintenanceRepository persists scheduled maintenance.
type MaintenanceRepository interface {
	CreateMaintenance(ctx context.Context, record model.MaintenanceRecord) error
	GetMaintenanceByAsset(ctx context.Context, assetID string) ([]model.MaintenanceRecord, error)
}

type maintenanceRepository struct {
	DB *sql.DB
}

// NewMaintenanceRepository creates a new MaintenanceRepository.
func NewMaintenanceRepository(db *sql.DB) MaintenanceRepository {
	return &maintenanceRepository{DB: db}
}

func (r *maintenanceRepository) CreateMaintenance(ctx context.Context, record model.MaintenanceRecord) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	query := `
		INSERT INTO asset_maintenance (id, asset_id, type, description, scheduled_date, provider, cost, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := conn(ctx, r.DB).ExecContext(ctx, query, record.ID, record.AssetID, record.Type, record.Description,
		record.ScheduledDate, record.Provider, record.Cost, record.CreatedBy)
	if err != nil {
		return fmt.Errorf("failed to create maintenance record: %w", err)
	}
	return nil
}

func (r *maintenanceRepository) GetMaintenanceByAsset(ctx context.Context, assetID string) ([]model.MaintenanceRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, listTimeout)
	defer cancel()

	query := `
		SELECT id, asset_id, type, description, scheduled_date, provider, cost, created_by, created_at
		FROM asset_maintenance
		WHERE asset_id = $1
		ORDER BY scheduled_date DESC`

	rows, err := conn(ctx, r.DB).QueryContext(ctx, query, assetID)
	if err != nil {
		return nil, fmt.Errorf("failed to query maintenance records: %w", err)
	}
	defer rows.Close()

	records := []model.MaintenanceRecord{}
	for rows.Next() {
		var (
			m    model.MaintenanceRecord
			cost sql.NullFloat64
		)
		if err := rows.Scan(&m.ID, &m.AssetID, &m.Type, &m.Description, &m.ScheduledDate, &m.Provider, &cost, &m.CreatedBy, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan maintenance record: %w", err)
		}
		m.Cost = nullableFloat(cost)
		records = append(records, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return records, nil
}
