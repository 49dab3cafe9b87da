package repository

import (
	"asset-management-api/internal/model"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
)

// ActivityFilter narrows activity log listings.
type ActivityFilter struct {
	EntityType string
	EntityID   string
	UserID     string
	Limit      int
}

// DefaultActivityLimit caps activity listings when no limit is given.
const DefaultActivityLimit = 100

// ActivityRepository persists the append-only audit trail.
type ActivityRepository interface {
	LogActivity(ctx context.Context, entry model.ActivityLog) error
	ListActivity(ctx context.Context, filter ActivityFilter) ([]model.ActivityLog, error)
}

type activityRepository struct {
	DB *sql.DB
}

// NewActivityRepository creates a new ActivityRepository.
func NewActivityRepository(db *sql.DB) ActivityRepository {
	return &activityRepository{DB: db}
}

// LogActivity appends an activity entry. Details are stored as JSON.
func (r *activityRepository) LogActivity(ctx context.Context, entry model.ActivityLog) error {
	details := entry.Details
	if details == nil {
		details = map[string]string{}
	}
	detailsJSON, err := json.Marshal(details)
	if err != nil {
		return fmt.Errorf("failed to marshal activity details: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	query := `
		INSERT INTO activity_logs (id, user_id, action, entity_type, entity_id, details)
		VALUES ($1, $2, $3, $4, $5, $6)`

	if _, err := conn(ctx, r.DB).ExecContext(ctx, query, entry.ID, entry.UserID, entry.Action, entry.EntityType, entry.EntityID, detailsJSON); err != nil {
		return fmt.Errorf("failed to insert activity log: %w", err)
	}
	return nil
}

// ListActivity returns matching entries, newest first.
func (r *activityRepository) ListActivity(ctx context.Context, filter ActivityFilter) ([]model.ActivityLog, error) {
	ctx, cancel := context.WithTimeout(ctx, listTimeout)
	defer cancel()

	var where []exp.Expression
	if filter.EntityType != "" {
		where = append(where, goqu.C("entity_type").Eq(filter.EntityType))
	}
	if filter.EntityID != "" {
		where = append(where, goqu.C("entity_id").Eq(filter.EntityID))
	}
	if filter.UserID != "" {
		where = append(where, goqu.C("user_id").Eq(filter.UserID))
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = DefaultActivityLimit
	}

	query, args, err := dialect.From("activity_logs").
		Select("id", "user_id", "action", "entity_type", "entity_id", "details", "created_at").
		Where(where...).
		Order(goqu.C("created_at").Desc()).
		Limit(uint(limit)).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("failed to build activity query: %w", err)
	}

	rows, err := conn(ctx, r.DB).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query activity logs: %w", err)
	}
	defer rows.Close()

	entries := []model.ActivityLog{}
	for rows.Next() {
		var (
			entry   model.ActivityLog
			details []byte
		)
		if err := rows.Scan(&entry.ID, &entry.UserID, &entry.Action, &entry.EntityType, &entry.EntityID, &details, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan activity log: %w", err)
		}
		if len(details) > 0 {
			if err := json.Unmarshal(details, &entry.Details); err != nil {
				return nil, fmt.Errorf("failed to unmarshal activity details: %w", err)
			}
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return entries, nil
}
