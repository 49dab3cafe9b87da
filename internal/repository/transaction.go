package repository

import (
	"asset-management-api/internal/model"
	"context"
	"database/sql"
	"fmt"
)

// TransactionRepository persists the append-only custody log.
type TransactionRepository interface {
	CreateAssetTransaction(ctx context.Context, tx model.AssetTransaction) error
	GetTransactionsByAsset(ctx context.Context, assetID string) ([]model.AssetTransaction, error)
}

type transactionRepository struct {
	DB *sql.DB
}

// NewTransactionRepository creates a new TransactionRepository.
func NewTransactionRepository(db *sql.DB) TransactionRepository {
	return &transactionRepository{DB: db}
}

// CreateAssetTransaction appends a transaction record.
func (r *transactionRepository) CreateAssetTransaction(ctx context.Context, tx model.AssetTransaction) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	query := `
		INSERT INTO asset_transactions (id, asset_id, employee_id, type, reason, notes, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := conn(ctx, r.DB).ExecContext(ctx, query, tx.ID, tx.AssetID, tx.EmployeeID, tx.Type, tx.Reason, tx.Notes, tx.CreatedBy)
	if err != nil {
		return fmt.Errorf("failed to create asset transaction: %w", err)
	}
	return nil
}

// GetTransactionsByAsset returns an asset's transactions, newest first.
func (r *transactionRepository) GetTransactionsByAsset(ctx context.Context, assetID string) ([]model.AssetTransaction, error) {
	ctx, cancel := context.WithTimeout(ctx, listTimeout)
	defer cancel()

	query := `
		SELECT id, asset_id, employee_id, type, reason, notes, created_by, created_at
		FROM asset_transactions
		WHERE asset_id = $1
		ORDER BY created_at DESC`

	rows, err := conn(ctx, r.DB).QueryContext(ctx, query, assetID)
	if err != nil {
		return nil, fmt.Errorf("failed to query asset transactions: %w", err)
	}
	defer rows.Close()

	transactions := []model.AssetTransaction{}
	for rows.Next() {
		var (
			t          model.AssetTransaction
			employeeID sql.NullString
		)
		if err := rows.Scan(&t.ID, &t.AssetID, &employeeID, &t.Type, &t.Reason, &t.Notes, &t.CreatedBy, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan asset transaction: %w", err)
		}
		t.EmployeeID = nullableString(employeeID)
		transactions = append(transactions, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return transactions, nil
}
