package repository

import (
	"asset-management-api/internal/model"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/lib/pq"
)

// AssetRepository is an interface for interacting with asset data.
type AssetRepository interface {
	CreateAsset(ctx context.Context, asset model.Asset) error
	NextAssetSequence(ctx context.Context, typeCode string) (int, error)
	GetAssetByID(ctx context.Context, id string) (*model.Asset, error)
	GetAssetsByIDs(ctx context.Context, ids []string) ([]model.Asset, error)
	ListAssets(ctx context.Context, filter model.AssetFilter, params PaginationParams) (*PaginatedResult[model.Asset], error)
	GetAssetsByEmployee(ctx context.Context, employeeID string) ([]model.Asset, error)
	UpdateAsset(ctx context.Context, id string, patch model.AssetPatch) error
	DeleteAsset(ctx context.Context, id string) error
}

const assetColumnList = `id, type, brand, model, serial_number, status, assigned_employee_id, purchase_date,
		purchase_price, warranty_expiry, lifespan_months, notes, created_at, updated_at`

var assetColumns = []any{
	"id", "type", "brand", "model", "serial_number", "status", "assigned_employee_id", "purchase_date",
	"purchase_price", "warranty_expiry", "lifespan_months", "notes", "created_at", "updated_at",
}

type assetRepository struct {
	DB *sql.DB
}

// NewAssetRepository creates a new AssetRepository.
func NewAssetRepository(db *sql.DB) AssetRepository {
	return &assetRepository{DB: db}
}

func scanAsset(row rowScanner) (model.Asset, error) {
	var (
		a              model.Asset
		assignedTo     sql.NullString
		purchaseDate   sql.NullTime
		purchasePrice  sql.NullFloat64
		warrantyExpiry sql.NullTime
		lifespan       sql.NullInt64
	)
	err := row.Scan(&a.ID, &a.Type, &a.Brand, &a.Model, &a.SerialNumber, &a.Status, &assignedTo,
		&purchaseDate, &purchasePrice, &warrantyExpiry, &lifespan, &a.Notes, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return model.Asset{}, err
	}
	a.AssignedEmployeeID = nullableString(assignedTo)
	a.PurchaseDate = nullableTime(purchaseDate)
	a.PurchasePrice = nullableFloat(purchasePrice)
	a.WarrantyExpiry = nullableTime(warrantyExpiry)
	a.LifespanMonths = nullableInt(lifespan)
	return a, nil
}

func scanAssets(rows *sql.Rows) ([]model.Asset, error) {
	defer rows.Close()

	assets := []model.Asset{}
	for rows.Next() {
		a, err := scanAsset(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan asset: %w", err)
		}
		assets = append(assets, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return assets, nil
}

// CreateAsset adds a new asset to the database.
func (r *assetRepository) CreateAsset(ctx context.Context, asset model.Asset) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	query := `
		INSERT INTO assets (id, type, brand, model, serial_number, status, assigned_employee_id,
			purchase_date, purchase_price, warranty_expiry, lifespan_months, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err := conn(ctx, r.DB).ExecContext(ctx, query,
		asset.ID,
		asset.Type,
		asset.Brand,
		asset.Model,
		asset.SerialNumber,
		asset.Status,
		asset.AssignedEmployeeID,
		asset.PurchaseDate,
		asset.PurchasePrice,
		asset.WarrantyExpiry,
		asset.LifespanMonths,
		asset.Notes,
	)
	if err != nil {
		return fmt.Errorf("failed to create asset: %w", err)
	}

	return nil
}

// NextAssetSequence reserves the next sequence number for an asset type code.
func (r *assetRepository) NextAssetSequence(ctx context.Context, typeCode string) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	query := `
		INSERT INTO asset_sequences (type_code, next_value)
		VALUES ($1, 1)
		ON CONFLICT (type_code) DO UPDATE SET next_value = asset_sequences.next_value + 1
		RETURNING next_value`

	var next int
	if err := conn(ctx, r.DB).QueryRowContext(ctx, query, typeCode).Scan(&next); err != nil {
		return 0, fmt.Errorf("failed to reserve asset sequence: %w", err)
	}
	return next, nil
}

// GetAssetByID retrieves a single asset by its business id.
func (r *assetRepository) GetAssetByID(ctx context.Context, id string) (*model.Asset, error) {
	ctx, cancel := context.WithTimeout(ctx, readTimeout)
	defer cancel()

	query := `SELECT ` + assetColumnList + ` FROM assets WHERE id = $1`

	a, err := scanAsset(conn(ctx, r.DB).QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAssetNotFound
		}
		return nil, fmt.Errorf("failed to get asset by ID: %w", err)
	}
	return &a, nil
}

// GetAssetsByIDs retrieves every existing asset among ids. Missing ids are skipped.
func (r *assetRepository) GetAssetsByIDs(ctx context.Context, ids []string) ([]model.Asset, error) {
	if len(ids) == 0 {
		return []model.Asset{}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, listTimeout)
	defer cancel()

	query := `SELECT ` + assetColumnList + ` FROM assets WHERE id = ANY($1) ORDER BY id`

	rows, err := conn(ctx, r.DB).QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to query assets by IDs: %w", err)
	}
	return scanAssets(rows)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// containsPattern matches term literally anywhere in a column under ILIKE.
func containsPattern(term string) string {
	return "%" + likeEscaper.Replace(term) + "%"
}

func assetFilterExpressions(filter model.AssetFilter) []exp.Expression {
	var where []exp.Expression
	if filter.Status != "" {
		where = append(where, goqu.C("status").Eq(string(filter.Status)))
	}
	if filter.Type != "" {
		where = append(where, goqu.C("type").Eq(string(filter.Type)))
	}
	if filter.EmployeeID != "" {
		where = append(where, goqu.C("assigned_employee_id").Eq(filter.EmployeeID))
	}
	if filter.Search != "" {
		pattern := containsPattern(filter.Search)
		where = append(where, goqu.Or(
			goqu.C("id").ILike(pattern),
			goqu.C("brand").ILike(pattern),
			goqu.C("model").ILike(pattern),
			goqu.C("serial_number").ILike(pattern),
		))
	}
	return where
}

// ListAssets retrieves assets matching filter with pagination support.
func (r *assetRepository) ListAssets(ctx context.Context, filter model.AssetFilter, params PaginationParams) (*PaginatedResult[model.Asset], error) {
	ctx, cancel := context.WithTimeout(ctx, listTimeout)
	defer cancel()

	where := assetFilterExpressions(filter)

	ds := dialect.From("assets").Select(assetColumns...).Where(where...).Order(goqu.C("id").Asc()).Prepared(true)
	if params.Limit > 0 {
		ds = ds.Offset(uint(params.Offset)).Limit(uint(params.Limit))
	}
	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, fmt.Errorf("failed to build asset query: %w", err)
	}

	rows, err := conn(ctx, r.DB).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query assets: %w", err)
	}
	assets, err := scanAssets(rows)
	if err != nil {
		return nil, err
	}

	countQuery, countArgs, err := dialect.From("assets").Select(goqu.COUNT(goqu.Star())).Where(where...).Prepared(true).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("failed to build asset count query: %w", err)
	}

	var totalCount int
	if err := conn(ctx, r.DB).QueryRowContext(ctx, countQuery, countArgs...).Scan(&totalCount); err != nil {
		return nil, fmt.Errorf("failed to get total count of assets: %w", err)
	}

	return &PaginatedResult[model.Asset]{
		Items:      assets,
		TotalCount: totalCount,
	}, nil
}

// GetAssetsByEmployee retrieves all assets currently assigned to an employee.
func (r *assetRepository) GetAssetsByEmployee(ctx context.Context, employeeID string) ([]model.Asset, error) {
	ctx, cancel := context.WithTimeout(ctx, listTimeout)
	defer cancel()

	query := `SELECT ` + assetColumnList + ` FROM assets WHERE assigned_employee_id = $1 ORDER BY id`

	rows, err := conn(ctx, r.DB).QueryContext(ctx, query, employeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to query assets by employee: %w", err)
	}
	return scanAssets(rows)
}

func patchRecord(patch model.AssetPatch) goqu.Record {
	record := goqu.Record{}
	if patch.Status != nil {
		record["status"] = string(*patch.Status)
	}
	if patch.ClearAssignment {
		record["assigned_employee_id"] = nil
	} else if patch.AssignedEmployeeID != nil {
		record["assigned_employee_id"] = *patch.AssignedEmployeeID
	}
	if patch.Brand != nil {
		record["brand"] = *patch.Brand
	}
	if patch.Model != nil {
		record["model"] = *patch.Model
	}
	if patch.SerialNumber != nil {
		record["serial_number"] = *patch.SerialNumber
	}
	if patch.PurchaseDate != nil {
		record["purchase_date"] = *patch.PurchaseDate
	}
	if patch.PurchasePrice != nil {
		record["purchase_price"] = *patch.PurchasePrice
	}
	if patch.WarrantyExpiry != nil {
		record["warranty_expiry"] = *patch.WarrantyExpiry
	}
	if patch.LifespanMonths != nil {
		record["lifespan_months"] = *patch.LifespanMonths
	}
	if patch.Notes != nil {
		record["notes"] = *patch.Notes
	}
	return record
}

// UpdateAsset applies a partial update. No version check is made: the last writer wins.
func (r *assetRepository) UpdateAsset(ctx context.Context, id string, patch model.AssetPatch) error {
	if patch.IsEmpty() {
		return ErrNoChanges
	}

	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	record := patchRecord(patch)
	record["updated_at"] = goqu.L("CURRENT_TIMESTAMP")

	query, args, err := dialect.Update("assets").Set(record).Where(goqu.C("id").Eq(id)).Prepared(true).ToSQL()
	if err != nil {
		return fmt.Errorf("failed to build asset update: %w", err)
	}

	result, err := conn(ctx, r.DB).ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update asset: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrAssetNotFound
	}

	return nil
}

// DeleteAsset permanently removes an asset. Transactions and maintenance rows
// referencing it are left in place.
func (r *assetRepository) DeleteAsset(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	result, err := conn(ctx, r.DB).ExecContext(ctx, `DELETE FROM assets WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete asset: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrAssetNotFound
	}

	return nil
}
