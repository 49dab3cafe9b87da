package bulk

import (
	"asset-management-api/internal/auth"
	"asset-management-api/internal/metrics"
	"asset-management-api/internal/model"
	"asset-management-api/internal/service"
	"asset-management-api/pkg/errors"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// AssetOperations is the single-asset API the orchestrator fans out to.
// *service.AssetService satisfies it.
type AssetOperations interface {
	GetAssetsByIDs(ctx context.Context, ids []string) ([]model.Asset, error)
	Assign(ctx context.Context, scope auth.RequestScope, assetID, employeeID string) error
	Unassign(ctx context.Context, scope auth.RequestScope, assetID string) error
	CheckOut(ctx context.Context, scope auth.RequestScope, assetID string, params service.CheckOutParams) error
	CheckIn(ctx context.Context, scope auth.RequestScope, assetID string, params service.CheckInParams) error
	ChangeStatus(ctx context.Context, scope auth.RequestScope, assetID string, status model.AssetStatus) error
	ScheduleMaintenance(ctx context.Context, scope auth.RequestScope, assetID string, params service.MaintenanceParams) error
	CreateSale(ctx context.Context, scope auth.RequestScope, params service.SaleParams) (*model.AssetSale, error)
	SellAsset(ctx context.Context, scope auth.RequestScope, sale *model.AssetSale, assetID string, amount float64) error
	Retire(ctx context.Context, scope auth.RequestScope, assetID, reason string) error
	Delete(ctx context.Context, scope auth.RequestScope, assetID string) error
}

var _ AssetOperations = (*service.AssetService)(nil)

// Params carries the action-specific inputs of a bulk action.
type Params struct {
	EmployeeID   string
	Status       model.AssetStatus
	Reason       string
	Notes        string
	Confirmation string

	MaintenanceType string
	Description     string
	ScheduledDate   time.Time
	Provider        string
	Cost            *float64

	Buyer       string
	SaleDate    time.Time
	TotalAmount float64
}

// ConfirmationText is the exact text an operator must type to delete n assets.
func ConfirmationText(n int) string {
	return fmt.Sprintf("DELETE %d ASSETS", n)
}

// ConfirmationMatches compares byte for byte; case and whitespace matter.
func ConfirmationMatches(input string, n int) bool {
	return input == ConfirmationText(n)
}

// Orchestrator runs bulk actions.
type Orchestrator struct {
	ops            AssetOperations
	registry       *Registry
	notifier       service.NotificationService
	metrics        *metrics.Metrics
	logger         *logrus.Logger
	maxConcurrency int
}

// Config wires an Orchestrator. MaxConcurrency of zero runs every item at once.
type Config struct {
	Operations     AssetOperations
	Registry       *Registry
	Notifier       service.NotificationService
	Metrics        *metrics.Metrics
	Logger         *logrus.Logger
	MaxConcurrency int
}

// NewOrchestrator creates an Orchestrator. A nil Registry uses the default actions.
func NewOrchestrator(cfg Config) *Orchestrator {
	registry := cfg.Registry
	if registry == nil {
		registry = NewDefaultRegistry()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Orchestrator{
		ops:            cfg.Operations,
		registry:       registry,
		notifier:       cfg.Notifier,
		metrics:        cfg.Metrics,
		logger:         logger,
		maxConcurrency: cfg.MaxConcurrency,
	}
}

// Registry returns the action registry in use.
func (o *Orchestrator) Registry() *Registry {
	return o.registry
}

// AvailableActions loads the selected assets and returns the actions that
// apply to them for the scope's user.
func (o *Orchestrator) AvailableActions(ctx context.Context, scope auth.RequestScope, ids []string) ([]Action, error) {
	if len(ids) == 0 {
		return []Action{}, nil
	}
	assets, err := o.ops.GetAssetsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	return o.registry.Available(SelectionContext{AssetIDs: ids, Assets: assets, User: scope.Principal}), nil
}

// Execute validates the request, runs the action once per id and returns the
// aggregated result. Validation failures return an error and run nothing.
// Items are independent: one failing never stops the others, and items
// already started run to completion even if ctx is cancelled.
func (o *Orchestrator) Execute(ctx context.Context, scope auth.RequestScope, kind ActionKind, ids []string, params Params) (Result, error) {
	action, err := o.validate(scope, kind, ids, params)
	if err != nil {
		o.metrics.ObserveBulkAction(string(kind), metrics.OutcomeInvalid, 0, 0)
		return Result{}, err
	}

	taskCtx := context.WithoutCancel(ctx)
	task, err := o.prepare(taskCtx, scope, action.Kind, len(ids), params)
	var items []itemOutcome
	if err != nil {
		items = failAll(ids, err)
	} else {
		items = o.fanOut(taskCtx, ids, task)
	}

	res := aggregate(action.Kind, items)
	o.metrics.ObserveBulkAction(string(action.Kind), res.Outcome(), res.Succeeded, res.Failed)
	o.logger.WithFields(logrus.Fields{
		"action":    action.Kind,
		"user_id":   scope.UserID(),
		"selected":  len(ids),
		"succeeded": res.Succeeded,
		"failed":    res.Failed,
	}).Info("bulk action finished")
	o.notifyOutcome(scope, action.Kind, res)

	return res, nil
}

func (o *Orchestrator) validate(scope auth.RequestScope, kind ActionKind, ids []string, params Params) (Action, error) {
	if len(ids) == 0 {
		return Action{}, errors.ValidationError("No assets selected")
	}
	action, ok := o.registry.Lookup(kind)
	if !ok || !kind.IsValid() {
		return Action{}, errors.ValidationError(fmt.Sprintf("Unknown bulk action: %s", kind))
	}
	if !action.permits(scope.Principal) {
		return Action{}, errors.ForbiddenError("Insufficient access level for this action")
	}
	if !action.acceptsCount(len(ids)) {
		return Action{}, errors.ValidationError(fmt.Sprintf("Invalid number of assets selected for %s", action.Label))
	}

	switch kind {
	case ActionAssign, ActionCheckOut:
		if strings.TrimSpace(params.EmployeeID) == "" {
			return Action{}, errors.ValidationError("Please select an employee")
		}
	case ActionChangeStatus:
		if strings.TrimSpace(string(params.Status)) == "" {
			return Action{}, errors.ValidationError("Please select a status")
		}
	case ActionScheduleMaintenance:
		if strings.TrimSpace(params.MaintenanceType) == "" {
			return Action{}, errors.ValidationError("Maintenance type is required")
		}
		if params.ScheduledDate.IsZero() {
			return Action{}, errors.ValidationError("Scheduled date is required")
		}
	case ActionSell:
		if strings.TrimSpace(params.Buyer) == "" {
			return Action{}, errors.ValidationError("Buyer is required")
		}
		if params.TotalAmount < 0 {
			return Action{}, errors.ValidationError("Total amount cannot be negative")
		}
	case ActionDelete:
		if !ConfirmationMatches(params.Confirmation, len(ids)) {
			expected := ConfirmationText(len(ids))
			return Action{}, errors.ValidationError(fmt.Sprintf("Type %q to confirm", expected)).WithDetail("confirmation", expected)
		}
	case ActionUnassign, ActionCheckIn, ActionRetire:
	}
	return action, nil
}

// itemTask runs the action against one asset.
type itemTask func(ctx context.Context, assetID string) error

// prepare binds params to a per-item task. Sell creates the shared sale
// header here, before any item runs.
func (o *Orchestrator) prepare(ctx context.Context, scope auth.RequestScope, kind ActionKind, count int, params Params) (itemTask, error) {
	switch kind {
	case ActionAssign:
		return func(ctx context.Context, id string) error {
			return o.ops.Assign(ctx, scope, id, params.EmployeeID)
		}, nil
	case ActionUnassign:
		return func(ctx context.Context, id string) error {
			return o.ops.Unassign(ctx, scope, id)
		}, nil
	case ActionCheckOut:
		p := service.CheckOutParams{EmployeeID: params.EmployeeID, Reason: params.Reason, Notes: params.Notes}
		return func(ctx context.Context, id string) error {
			return o.ops.CheckOut(ctx, scope, id, p)
		}, nil
	case ActionCheckIn:
		p := service.CheckInParams{Reason: params.Reason, Notes: params.Notes}
		return func(ctx context.Context, id string) error {
			return o.ops.CheckIn(ctx, scope, id, p)
		}, nil
	case ActionChangeStatus:
		return func(ctx context.Context, id string) error {
			return o.ops.ChangeStatus(ctx, scope, id, params.Status)
		}, nil
	case ActionScheduleMaintenance:
		p := service.MaintenanceParams{
			Type:          params.MaintenanceType,
			Description:   params.Description,
			ScheduledDate: params.ScheduledDate,
			Provider:      params.Provider,
			Cost:          params.Cost,
		}
		return func(ctx context.Context, id string) error {
			return o.ops.ScheduleMaintenance(ctx, scope, id, p)
		}, nil
	case ActionSell:
		sale, err := o.ops.CreateSale(ctx, scope, service.SaleParams{
			Buyer:       params.Buyer,
			SaleDate:    params.SaleDate,
			TotalAmount: params.TotalAmount,
			Notes:       params.Notes,
		})
		if err != nil {
			return nil, err
		}
		amount := service.SaleItemAmount(params.TotalAmount, count)
		return func(ctx context.Context, id string) error {
			return o.ops.SellAsset(ctx, scope, sale, id, amount)
		}, nil
	case ActionRetire:
		return func(ctx context.Context, id string) error {
			return o.ops.Retire(ctx, scope, id, params.Reason)
		}, nil
	case ActionDelete:
		return func(ctx context.Context, id string) error {
			return o.ops.Delete(ctx, scope, id)
		}, nil
	default:
		return nil, errors.ValidationError(fmt.Sprintf("Unknown bulk action: %s", kind))
	}
}

// fanOut runs task once per id and waits for all of them to settle.
func (o *Orchestrator) fanOut(ctx context.Context, ids []string, task itemTask) []itemOutcome {
	items := make([]itemOutcome, len(ids))
	var g errgroup.Group
	if o.maxConcurrency > 0 {
		g.SetLimit(o.maxConcurrency)
	}
	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			items[i] = o.runItem(ctx, id, task)
			return nil
		})
	}
	_ = g.Wait()
	return items
}

func (o *Orchestrator) runItem(ctx context.Context, assetID string, task itemTask) (out itemOutcome) {
	out.assetID = assetID
	defer func() {
		if r := recover(); r != nil {
			o.logger.WithFields(logrus.Fields{"asset_id": assetID, "panic": r}).Error("bulk item panicked")
			out.failed = true
			out.message = errors.UnknownErrorMessage
		}
	}()
	if err := task(ctx, assetID); err != nil {
		out.failed = true
		out.message = errors.UserMessage(err)
	}
	return out
}

func failAll(ids []string, err error) []itemOutcome {
	msg := errors.UserMessage(err)
	items := make([]itemOutcome, len(ids))
	for i, id := range ids {
		items[i] = itemOutcome{assetID: id, message: msg, failed: true}
	}
	return items
}

func (o *Orchestrator) notifyOutcome(scope auth.RequestScope, kind ActionKind, res Result) {
	var nt service.NotificationType
	switch res.Outcome() {
	case metrics.OutcomePartial:
		nt = service.NotificationTypeBulkPartial
	case metrics.OutcomeFailure:
		nt = service.NotificationTypeBulkFailed
	default:
		return
	}
	service.Notify(o.notifier, o.logger, service.AssetNotification{
		Type:     nt,
		AssetIDs: res.FailedIDs,
		Message:  res.Message,
		Metadata: map[string]string{
			"action":    string(kind),
			"user_id":   scope.UserID(),
			"succeeded": fmt.Sprint(res.Succeeded),
			"failed":    fmt.Sprint(res.Failed),
		},
	})
}
