package handler

import (
	"asset-management-api/internal/auth"
	"asset-management-api/internal/model"
	"asset-management-api/internal/service"
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// Constants for timeouts
const (
	DefaultTimeout     = 10 * time.Second
	LongRunningTimeout = 30 * time.Second
)

// AssetHandler handles the HTTP requests for assets.
type AssetHandler struct {
	Assets AssetService
	Logger *logrus.Logger

	ErrorHandler   *ErrorHandler
	ResponseHelper *ResponseHelper
}

// NewAssetHandler creates a new AssetHandler with dependencies and helpers
func NewAssetHandler(assets AssetService, logger *logrus.Logger) *AssetHandler {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &AssetHandler{
		Assets:         assets,
		Logger:         logger,
		ErrorHandler:   NewErrorHandler(logger),
		ResponseHelper: NewResponseHelper(),
	}
}

// CreateAssetHandler handles the creation of a new asset.
func (h *AssetHandler) CreateAssetHandler(w http.ResponseWriter, r *http.Request) {
	scope, ok := h.ErrorHandler.RequireScope(w, r)
	if !ok {
		return
	}
	ctx, cancel := h.ResponseHelper.CreateRequestContext(r, DefaultTimeout)
	defer cancel()

	var req assetRequest
	if err := decodeBody(w, r, &req, false); err != nil {
		h.ErrorHandler.HandleJSONDecodeError(w, r, err)
		return
	}

	asset, err := h.Assets.CreateAsset(ctx, scope, req.toAsset())
	if err != nil {
		h.ErrorHandler.HandleServiceError(w, r, err, "create asset")
		return
	}

	h.ErrorHandler.SendSuccessResponse(w, http.StatusCreated, "Asset created successfully", asset)
}

// ListAssetsHandler lists assets with filters and pagination.
func (h *AssetHandler) ListAssetsHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ResponseHelper.CreateRequestContext(r, DefaultTimeout)
	defer cancel()

	pagination := h.ResponseHelper.ParsePaginationParams(r)
	result, err := h.Assets.ListAssets(ctx, assetFilterFromQuery(r), pagination.Window())
	if err != nil {
		h.ErrorHandler.HandleServiceError(w, r, err, "retrieve assets")
		return
	}

	meta := h.ResponseHelper.CalculatePaginationMeta(pagination, result.TotalCount)
	items := result.Items
	if items == nil {
		items = []model.Asset{}
	}
	h.ErrorHandler.SendJSONResponse(w, http.StatusOK, h.ResponseHelper.CreatePaginatedListResponseData("assets", items, meta))
}

// GetAssetHandler handles the retrieval of a single asset by ID.
func (h *AssetHandler) GetAssetHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := h.ErrorHandler.PathParam(w, r, "id")
	if !ok {
		return
	}
	ctx, cancel := h.ResponseHelper.CreateRequestContext(r, DefaultTimeout)
	defer cancel()

	asset, err := h.Assets.GetAsset(ctx, id)
	if err != nil {
		h.ErrorHandler.HandleServiceError(w, r, err, "retrieve asset")
		return
	}

	h.ErrorHandler.SendJSONResponse(w, http.StatusOK, asset)
}

// UpdateAssetHandler applies a direct field edit.
func (h *AssetHandler) UpdateAssetHandler(w http.ResponseWriter, r *http.Request) {
	scope, ok := h.ErrorHandler.RequireScope(w, r)
	if !ok {
		return
	}
	id, ok := h.ErrorHandler.PathParam(w, r, "id")
	if !ok {
		return
	}
	ctx, cancel := h.ResponseHelper.CreateRequestContext(r, DefaultTimeout)
	defer cancel()

	var req assetUpdateRequest
	if err := decodeBody(w, r, &req, false); err != nil {
		h.ErrorHandler.HandleJSONDecodeError(w, r, err)
		return
	}

	asset, err := h.Assets.UpdateAsset(ctx, scope, id, req.toPatch())
	if err != nil {
		h.ErrorHandler.HandleServiceError(w, r, err, "update asset")
		return
	}

	h.ErrorHandler.SendSuccessResponse(w, http.StatusOK, "Asset updated successfully", asset)
}

// DeleteAssetHandler handles the deletion of an asset.
func (h *AssetHandler) DeleteAssetHandler(w http.ResponseWriter, r *http.Request) {
	scope, ok := h.ErrorHandler.RequireScope(w, r)
	if !ok {
		return
	}
	id, ok := h.ErrorHandler.PathParam(w, r, "id")
	if !ok {
		return
	}
	ctx, cancel := h.ResponseHelper.CreateRequestContext(r, DefaultTimeout)
	defer cancel()

	if err := h.Assets.Delete(ctx, scope, id); err != nil {
		h.ErrorHandler.HandleServiceError(w, r, err, "delete asset")
		return
	}

	h.ErrorHandler.SendSuccessResponse(w, http.StatusOK, "Asset deleted successfully", map[string]string{"id": id})
}

// AssignHandler assigns the asset to an employee.
func (h *AssetHandler) AssignHandler(w http.ResponseWriter, r *http.Request) {
	var req assignRequest
	h.lifecycle(w, r, &req, false, "assign asset", "Asset assigned successfully", func(c lifecycleCall) error {
		return h.Assets.Assign(c.ctx, c.scope, c.id, strings.TrimSpace(req.EmployeeID))
	})
}

// UnassignHandler releases the asset from its employee.
func (h *AssetHandler) UnassignHandler(w http.ResponseWriter, r *http.Request) {
	h.lifecycle(w, r, nil, true, "unassign asset", "Asset unassigned successfully", func(c lifecycleCall) error {
		return h.Assets.Unassign(c.ctx, c.scope, c.id)
	})
}

// CheckOutHandler checks the asset out to an employee.
func (h *AssetHandler) CheckOutHandler(w http.ResponseWriter, r *http.Request) {
	var req checkOutRequest
	h.lifecycle(w, r, &req, false, "check out asset", "Asset checked out successfully", func(c lifecycleCall) error {
		return h.Assets.CheckOut(c.ctx, c.scope, c.id, service.CheckOutParams{
			EmployeeID: strings.TrimSpace(req.EmployeeID),
			Reason:     req.Reason,
			Notes:      req.Notes,
		})
	})
}

// CheckInHandler checks the asset back in.
func (h *AssetHandler) CheckInHandler(w http.ResponseWriter, r *http.Request) {
	var req checkInRequest
	h.lifecycle(w, r, &req, true, "check in asset", "Asset checked in successfully", func(c lifecycleCall) error {
		return h.Assets.CheckIn(c.ctx, c.scope, c.id, service.CheckInParams{Reason: req.Reason, Notes: req.Notes})
	})
}

// ChangeStatusHandler sets the asset status.
func (h *AssetHandler) ChangeStatusHandler(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	h.lifecycle(w, r, &req, false, "change asset status", "Asset status updated successfully", func(c lifecycleCall) error {
		return h.Assets.ChangeStatus(c.ctx, c.scope, c.id, req.Status)
	})
}

// ScheduleMaintenanceHandler books maintenance for the asset.
func (h *AssetHandler) ScheduleMaintenanceHandler(w http.ResponseWriter, r *http.Request) {
	var req maintenanceRequest
	h.lifecycle(w, r, &req, false, "schedule maintenance", "Maintenance scheduled successfully", func(c lifecycleCall) error {
		return h.Assets.ScheduleMaintenance(c.ctx, c.scope, c.id, service.MaintenanceParams{
			Type:          req.Type,
			Description:   req.Description,
			ScheduledDate: req.ScheduledDate.value(),
			Provider:      req.Provider,
			Cost:          req.Cost,
		})
	})
}

// RetireHandler takes the asset out of service.
func (h *AssetHandler) RetireHandler(w http.ResponseWriter, r *http.Request) {
	var req retireRequest
	h.lifecycle(w, r, &req, true, "retire asset", "Asset retired successfully", func(c lifecycleCall) error {
		return h.Assets.Retire(c.ctx, c.scope, c.id, req.Reason)
	})
}

// GetTransactionsHandler returns the asset's custody log.
func (h *AssetHandler) GetTransactionsHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := h.ErrorHandler.PathParam(w, r, "id")
	if !ok {
		return
	}
	ctx, cancel := h.ResponseHelper.CreateRequestContext(r, DefaultTimeout)
	defer cancel()

	txs, err := h.Assets.GetAssetTransactions(ctx, id)
	if err != nil {
		h.ErrorHandler.HandleServiceError(w, r, err, "retrieve asset transactions")
		return
	}
	if txs == nil {
		txs = []model.AssetTransaction{}
	}
	h.ErrorHandler.SendJSONResponse(w, http.StatusOK, h.ResponseHelper.CreateListResponseData("transactions", txs, len(txs)))
}

// GetMaintenanceHandler returns the asset's maintenance records.
func (h *AssetHandler) GetMaintenanceHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := h.ErrorHandler.PathParam(w, r, "id")
	if !ok {
		return
	}
	ctx, cancel := h.ResponseHelper.CreateRequestContext(r, DefaultTimeout)
	defer cancel()

	records, err := h.Assets.GetAssetMaintenance(ctx, id)
	if err != nil {
		h.ErrorHandler.HandleServiceError(w, r, err, "retrieve maintenance records")
		return
	}
	if records == nil {
		records = []model.MaintenanceRecord{}
	}
	h.ErrorHandler.SendJSONResponse(w, http.StatusOK, h.ResponseHelper.CreateListResponseData("maintenance", records, len(records)))
}

// ListStatusesHandler returns built-in and custom statuses.
func (h *AssetHandler) ListStatusesHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ResponseHelper.CreateRequestContext(r, DefaultTimeout)
	defer cancel()

	statuses, err := h.Assets.ListStatuses(ctx)
	if err != nil {
		h.ErrorHandler.HandleServiceError(w, r, err, "retrieve asset statuses")
		return
	}
	h.ErrorHandler.SendJSONResponse(w, http.StatusOK, h.ResponseHelper.CreateListResponseData("statuses", statuses, len(statuses)))
}

// CreateStatusHandler registers a custom status.
func (h *AssetHandler) CreateStatusHandler(w http.ResponseWriter, r *http.Request) {
	scope, ok := h.ErrorHandler.RequireScope(w, r)
	if !ok {
		return
	}
	ctx, cancel := h.ResponseHelper.CreateRequestContext(r, DefaultTimeout)
	defer cancel()

	var req createStatusRequest
	if err := decodeBody(w, r, &req, false); err != nil {
		h.ErrorHandler.HandleJSONDecodeError(w, r, err)
		return
	}

	if err := h.Assets.CreateStatus(ctx, scope, req.Name); err != nil {
		h.ErrorHandler.HandleServiceError(w, r, err, "create asset status")
		return
	}
	h.ErrorHandler.SendSuccessResponse(w, http.StatusCreated, "Status created successfully", map[string]string{"name": strings.TrimSpace(req.Name)})
}

// lifecycleCall is what a single-asset lifecycle endpoint needs to run.
type lifecycleCall struct {
	ctx   context.Context
	scope auth.RequestScope
	id    string
}

// lifecycle decodes body into req (when non-nil), runs op and answers with
// the updated asset.
func (h *AssetHandler) lifecycle(w http.ResponseWriter, r *http.Request, req interface{}, optionalBody bool, operation, message string, op func(lifecycleCall) error) {
	scope, ok := h.ErrorHandler.RequireScope(w, r)
	if !ok {
		return
	}
	id, ok := h.ErrorHandler.PathParam(w, r, "id")
	if !ok {
		return
	}
	ctx, cancel := h.ResponseHelper.CreateRequestContext(r, DefaultTimeout)
	defer cancel()

	if req != nil {
		if err := decodeBody(w, r, req, optionalBody); err != nil {
			h.ErrorHandler.HandleJSONDecodeError(w, r, err)
			return
		}
	}

	if err := op(lifecycleCall{ctx: ctx, scope: scope, id: id}); err != nil {
		h.ErrorHandler.HandleServiceError(w, r, err, operation)
		return
	}

	asset, err := h.Assets.GetAsset(ctx, id)
	if err != nil {
		h.ErrorHandler.HandleServiceError(w, r, err, "retrieve asset")
		return
	}
	h.ErrorHandler.SendSuccessResponse(w, http.StatusOK, message, asset)
}

func assetFilterFromQuery(r *http.Request) model.AssetFilter {
	query := r.URL.Query()
	return model.AssetFilter{
		Status:     model.AssetStatus(strings.TrimSpace(query.Get("status"))),
		Type:       model.AssetType(strings.TrimSpace(query.Get("type"))),
		EmployeeID: strings.TrimSpace(query.Get("employeeId")),
		Search:     strings.TrimSpace(query.Get("search")),
	}
}
