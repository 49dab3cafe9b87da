package repository

import (
	"asset-management-api/internal/model"
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
)

// SaleRepository persists asset sales and their line items.
type SaleRepository interface {
	CreateAssetSale(ctx context.Context, sale model.AssetSale) error
	AddAssetToSale(ctx context.Context, item model.AssetSaleItem) error
	GetSaleItems(ctx context.Context, saleID uuid.UUID) ([]model.AssetSaleItem, error)
}

type saleRepository struct {
	DB *sql.DB
}

// NewSaleRepository creates a new SaleRepository.
func NewSaleRepository(db *sql.DB) SaleRepository {
	return &saleRepository{DB: db}
}

// CreateAssetSale inserts the sale header.
func (r *saleRepository) CreateAssetSale(ctx context.Context, sale model.AssetSale) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	query := `
		INSERT INTO asset_sales (id, buyer, sale_date, total_amount, notes, created_by)
		VALUES ($1, $2, $3, $4, $5, $6)`

	if _, err := conn(ctx, r.DB).ExecContext(ctx, query, sale.ID, sale.Buyer, sale.SaleDate, sale.TotalAmount, sale.Notes, sale.CreatedBy); err != nil {
		return fmt.Errorf("failed to create asset sale: %w", err)
	}
	return nil
}

// AddAssetToSale inserts one asset's line on an existing sale.
func (r *saleRepository) AddAssetToSale(ctx context.Context, item model.AssetSaleItem) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	query := `
		INSERT INTO asset_sale_items (id, sale_id, asset_id, amount)
		VALUES ($1, $2, $3, $4)`

	if _, err := conn(ctx, r.DB).ExecContext(ctx, query, item.ID, item.SaleID, item.AssetID, item.Amount); err != nil {
		return fmt.Errorf("failed to add asset to sale: %w", err)
	}
	return nil
}

// GetSaleItems returns the line items of a sale.
func (r *saleRepository) GetSaleItems(ctx context.Context, saleID uuid.UUID) ([]model.AssetSaleItem, error) {
	ctx, cancel := context.WithTimeout(ctx, listTimeout)
	defer cancel()

	rows, err := conn(ctx, r.DB).QueryContext(ctx, `SELECT id, sale_id, asset_id, amount FROM asset_sale_items WHERE sale_id = $1 ORDER BY asset_id`, saleID)
	if err != nil {
		return nil, fmt.Errorf("failed to query sale items: %w", err)
	}
	defer rows.Close()

	items := []model.AssetSaleItem{}
	for rows.Next() {
		var item model.AssetSaleItem
		if err := rows.Scan(&item.ID, &item.SaleID, &item.AssetID, &item.Amount); err != nil {
			return nil, fmt.Errorf("failed to scan sale item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return items, nil
}
