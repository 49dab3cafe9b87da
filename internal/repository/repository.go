package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
)

// Custom errors for better error handling
var (
	ErrAssetNotFound         = errors.New("asset not found")
	ErrEmployeeNotFound      = errors.New("employee not found")
	ErrDuplicateEmployee     = errors.New("employee with this id already exists")
	ErrDuplicateCustomStatus = errors.New("status already exists")
	ErrNoChanges             = errors.New("no fields to update")
)

const (
	readTimeout  = 5 * time.Second
	listTimeout  = 10 * time.Second
	writeTimeout = 5 * time.Second
)

// dialect renders SQL for statements assembled at runtime.
var dialect = goqu.Dialect("postgres")

// PaginationParams holds pagination parameters for repository queries.
// A Limit of zero or less returns every row.
type PaginationParams struct {
	Offset int
	Limit  int
}

// PaginatedResult holds paginated query results
type PaginatedResult[T any] struct {
	Items      []T
	TotalCount int
}

// Repositories bundles every repository backed by the same database.
type Repositories struct {
	Assets       AssetRepository
	Employees    EmployeeRepository
	Transactions TransactionRepository
	Sales        SaleRepository
	Maintenance  MaintenanceRepository
	Activity     ActivityRepository
	Statuses     StatusRepository
	Tx           Transactor
}

// NewRepositories creates all repositories over db.
func NewRepositories(db *sql.DB) *Repositories {
	return &Repositories{
		Assets:       NewAssetRepository(db),
		Employees:    NewEmployeeRepository(db),
		Transactions: NewTransactionRepository(db),
		Sales:        NewSaleRepository(db),
		Maintenance:  NewMaintenanceRepository(db),
		Activity:     NewActivityRepository(db),
		Statuses:     NewStatusRepository(db),
		Tx:           NewTransactor(db),
	}
}

// querier is satisfied by *sql.DB and *goqu.TxDatabase.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

type txKey struct{}

// conn returns the transaction bound to ctx by a Transactor, or db.
func conn(ctx context.Context, db *sql.DB) querier {
	if tx, ok := ctx.Value(txKey{}).(*goqu.TxDatabase); ok {
		return tx
	}
	return db
}

// Transactor runs a unit of work in one database transaction. Repository
// calls made with the context handed to fn join that transaction.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type transactor struct {
	db *goqu.Database
}

// NewTransactor creates a Transactor over db.
func NewTransactor(db *sql.DB) Transactor {
	return &transactor{db: goqu.New("postgres", db)}
}

// WithinTransaction commits when fn returns nil and rolls back otherwise.
// A context already inside a transaction reuses it.
func (t *transactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*goqu.TxDatabase); ok {
		return fn(ctx)
	}
	return WithTransaction(ctx, t.db, func(tx *goqu.TxDatabase) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

// WithTransaction begins a transaction on db and hands it to fn. A panic in
// fn rolls back and is re-raised.
func WithTransaction(ctx context.Context, db *goqu.Database, fn func(tx *goqu.TxDatabase) error) (err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
		if err != nil {
			tx.Rollback()
			return
		}
		if cerr := tx.Commit(); cerr != nil {
			err = fmt.Errorf("failed to commit transaction: %w", cerr)
		}
	}()

	return fn(tx)
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func nullableString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	v := ns.String
	return &v
}

func nullableTime(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	v := nt.Time
	return &v
}

func nullableFloat(nf sql.NullFloat64) *float64 {
	if !nf.Valid {
		return nil
	}
	v := nf.Float64
	return &v
}

func nullableInt(ni sql.NullInt64) *int {
	if !ni.Valid {
		return nil
	}
	v := int(ni.Int64)
	return &v
}
