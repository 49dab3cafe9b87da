package service

import (
	"asset-management-api/internal/model"
	"asset-management-api/internal/repository"
	"asset-management-api/pkg/errors"
	"context"
	"fmt"
)

// MaxActivityLimit caps a single activity listing.
const MaxActivityLimit = 500

// ActivityService reads the audit trail.
type ActivityService struct {
	repo repository.ActivityRepository
}

// NewActivityService creates a new activity service
func NewActivityService(repo repository.ActivityRepository) *ActivityService {
	return &ActivityService{repo: repo}
}

// ListActivity returns matching entries, newest first.
func (s *ActivityService) ListActivity(ctx context.Context, filter repository.ActivityFilter) ([]model.ActivityLog, error) {
	if filter.Limit < 0 || filter.Limit > MaxActivityLimit {
		return nil, errors.ValidationError(fmt.Sprintf("limit must be between 0 and %d", MaxActivityLimit))
	}
	entries, err := s.repo.ListActivity(ctx, filter)
	if err != nil {
		return nil, errors.DatabaseError("failed to retrieve activity logs", err)
	}
	return entries, nil
}
