package service

import (
	"asset-management-api/internal/auth"
	"asset-management-api/internal/metrics"
	"asset-management-api/internal/model"
	"asset-management-api/internal/repository"
	"asset-management-api/pkg/errors"
	"asset-management-api/pkg/validation"
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// AssetService handles business logic for assets: creation, edits and every
// lifecycle transition.
type AssetService struct {
	assets       repository.AssetRepository
	employees    repository.EmployeeRepository
	transactions repository.TransactionRepository
	maintenance  repository.MaintenanceRepository
	sales        repository.SaleRepository
	statuses     repository.StatusRepository
	tx           repository.Transactor
	activity     activityWriter
	notifier     NotificationService
	metrics      *metrics.Metrics
	logger       *logrus.Logger
	idPrefix     string
	now          func() time.Time
}

// AssetServiceConfig wires an AssetService.
type AssetServiceConfig struct {
	Repositories *repository.Repositories
	Notifier     NotificationService
	Metrics      *metrics.Metrics
	Logger       *logrus.Logger
	IDPrefix     string
}

// NewAssetService creates a new asset service
func NewAssetService(cfg AssetServiceConfig) *AssetService {
	logger := defaultLogger(cfg.Logger)
	prefix := strings.ToUpper(strings.TrimSpace(cfg.IDPrefix))
	if prefix == "" {
		prefix = "SIT"
	}
	repos := cfg.Repositories
	var tx repository.Transactor = untracked{}
	if repos.Tx != nil {
		tx = repos.Tx
	}
	return &AssetService{
		assets:       repos.Assets,
		employees:    repos.Employees,
		transactions: repos.Transactions,
		maintenance:  repos.Maintenance,
		sales:        repos.Sales,
		statuses:     repos.Statuses,
		tx:           tx,
		activity:     activityWriter{repo: repos.Activity, logger: logger},
		notifier:     cfg.Notifier,
		metrics:      cfg.Metrics,
		logger:       logger,
		idPrefix:     prefix,
		now:          time.Now,
	}
}

// FormatAssetID renders a business key such as SIT-LT-0001.
func FormatAssetID(prefix string, assetType model.AssetType, seq int) string {
	return fmt.Sprintf("%s-%s-%04d", prefix, assetType.Code(), seq)
}

// CreateAsset validates and stores a new asset with a generated id. New
// assets start Available and unassigned.
func (s *AssetService) CreateAsset(ctx context.Context, scope auth.RequestScope, asset model.Asset) (*model.Asset, error) {
	if errs := validation.ValidateAssetInput(&asset); len(errs) > 0 {
		return nil, errors.ValidationError(strings.Join(errs, "; "))
	}

	seq, err := s.assets.NextAssetSequence(ctx, asset.Type.Code())
	if err != nil {
		return nil, errors.DatabaseError("failed to generate asset id", err)
	}

	asset.ID = FormatAssetID(s.idPrefix, asset.Type, seq)
	asset.Status = model.StatusAvailable
	asset.AssignedEmployeeID = nil

	if err := s.assets.CreateAsset(ctx, asset); err != nil {
		return nil, errors.DatabaseError("failed to create asset", err)
	}

	s.activity.log(ctx, scope, "create", model.EntityAsset, asset.ID, map[string]string{
		"type":         string(asset.Type),
		"brand":        asset.Brand,
		"model":        asset.Model,
		"serialNumber": asset.SerialNumber,
	})
	s.logger.WithFields(logrus.Fields{"asset_id": asset.ID, "user_id": scope.UserID()}).Info("asset created")

	return s.GetAsset(ctx, asset.ID)
}

// GetAsset retrieves an asset by its business id
func (s *AssetService) GetAsset(ctx context.Context, id string) (*model.Asset, error) {
	asset, err := s.assets.GetAssetByID(ctx, id)
	if err != nil {
		return nil, assetLookupError(err)
	}
	return asset, nil
}

// GetAssetsByIDs returns the existing assets among ids.
func (s *AssetService) GetAssetsByIDs(ctx context.Context, ids []string) ([]model.Asset, error) {
	assets, err := s.assets.GetAssetsByIDs(ctx, ids)
	if err != nil {
		return nil, errors.DatabaseError("failed to retrieve assets", err)
	}
	return assets, nil
}

// ListAssets retrieves assets matching filter with pagination
func (s *AssetService) ListAssets(ctx context.Context, filter model.AssetFilter, params repository.PaginationParams) (*repository.PaginatedResult[model.Asset], error) {
	if filter.Type != "" && !filter.Type.IsValid() {
		return nil, errors.ValidationError(fmt.Sprintf("invalid asset type: %q", filter.Type))
	}

	result, err := s.assets.ListAssets(ctx, filter, params)
	if err != nil {
		return nil, errors.DatabaseError("failed to retrieve assets", err)
	}

	s.logger.WithFields(logrus.Fields{
		"count":  len(result.Items),
		"offset": params.Offset,
		"limit":  params.Limit,
	}).Debug("listed assets")

	return result, nil
}

// UpdateAsset applies a direct field edit and returns the updated asset.
func (s *AssetService) UpdateAsset(ctx context.Context, scope auth.RequestScope, id string, patch model.AssetPatch) (*model.Asset, error) {
	if errs := validation.ValidateAssetPatch(&patch); len(errs) > 0 {
		return nil, errors.ValidationError(strings.Join(errs, "; "))
	}
	if patch.IsEmpty() {
		return nil, errors.ValidationError("no fields to update")
	}

	if err := s.assets.UpdateAsset(ctx, id, patch); err != nil {
		return nil, updateError(err)
	}

	s.activity.log(ctx, scope, "update", model.EntityAsset, id, nil)
	s.logger.WithFields(logrus.Fields{"asset_id": id, "user_id": scope.UserID()}).Info("asset updated")

	return s.GetAsset(ctx, id)
}

// GetAssetTransactions returns the custody log of an asset.
func (s *AssetService) GetAssetTransactions(ctx context.Context, id string) ([]model.AssetTransaction, error) {
	if _, err := s.GetAsset(ctx, id); err != nil {
		return nil, err
	}
	txs, err := s.transactions.GetTransactionsByAsset(ctx, id)
	if err != nil {
		return nil, errors.DatabaseError("failed to retrieve asset transactions", err)
	}
	return txs, nil
}

// GetAssetMaintenance returns the maintenance records of an asset.
func (s *AssetService) GetAssetMaintenance(ctx context.Context, id string) ([]model.MaintenanceRecord, error) {
	if _, err := s.GetAsset(ctx, id); err != nil {
		return nil, err
	}
	records, err := s.maintenance.GetMaintenanceByAsset(ctx, id)
	if err != nil {
		return nil, errors.DatabaseError("failed to retrieve maintenance records", err)
	}
	return records, nil
}

// ListStatuses returns the built-in statuses followed by custom ones.
func (s *AssetService) ListStatuses(ctx context.Context) ([]string, error) {
	custom, err := s.statuses.ListCustomStatuses(ctx)
	if err != nil {
		return nil, errors.DatabaseError("failed to retrieve asset statuses", err)
	}
	names := make([]string, 0, len(model.BuiltinStatuses())+len(custom))
	for _, status := range model.BuiltinStatuses() {
		names = append(names, string(status))
	}
	for _, status := range custom {
		names = append(names, status.Name)
	}
	return names, nil
}

// CreateStatus registers a custom asset status.
func (s *AssetService) CreateStatus(ctx context.Context, scope auth.RequestScope, name string) error {
	name = strings.TrimSpace(name)
	if err := validation.ValidateStatusName(name); err != nil {
		return errors.ValidationError(err.Error())
	}
	if err := s.statuses.CreateCustomStatus(ctx, name); err != nil {
		if stderrors.Is(err, repository.ErrDuplicateCustomStatus) {
			return errors.AlreadyExistsError(fmt.Sprintf("Status %q", name))
		}
		return errors.DatabaseError("failed to create asset status", err)
	}
	s.activity.log(ctx, scope, "create", model.EntityAssetStatus, name, nil)
	return nil
}

// isKnownStatus reports whether status is built in or registered.
func (s *AssetService) isKnownStatus(ctx context.Context, status model.AssetStatus) (bool, error) {
	if status.IsBuiltin() {
		return true, nil
	}
	exists, err := s.statuses.CustomStatusExists(ctx, string(status))
	if err != nil {
		return false, errors.DatabaseError("failed to check asset status", err)
	}
	return exists, nil
}
