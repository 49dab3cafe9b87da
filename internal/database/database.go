package database

import (
	"asset-management-api/internal/config"
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

// driverName is both the database/sql driver and the goose dialect.
const driverName = "postgres"

const pingTimeout = 5 * time.Second

// InitDB opens the Postgres pool described by cfg and checks that the server answers.
func InitDB(cfg *config.Config) (*sql.DB, error) {
	db, err := sql.Open(driverName, cfg.GetDatabaseDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}
	configurePool(db, cfg.Database)

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("database %s at %s:%d unreachable: %w", cfg.Database.Name, cfg.Database.Host, cfg.Database.Port, err)
	}

	return db, nil
}

func configurePool(db *sql.DB, pool config.DatabaseConfig) {
	db.SetMaxOpenConns(pool.MaxOpenConns)
	db.SetMaxIdleConns(pool.MaxIdleConns)
	db.SetConnMaxLifetime(pool.ConnMaxLifetime)
	db.SetConnMaxIdleTime(pool.ConnMaxIdleTime)
}
