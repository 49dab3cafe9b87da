package handler

import (
	"asset-management-api/internal/auth"
	"asset-management-api/internal/bulk"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"
)

// BulkHandler handles bulk action requests.
type BulkHandler struct {
	Bulk   BulkExecutor
	Logger *logrus.Logger

	ErrorHandler   *ErrorHandler
	ResponseHelper *ResponseHelper
}

// NewBulkHandler creates a new BulkHandler
func NewBulkHandler(executor BulkExecutor, logger *logrus.Logger) *BulkHandler {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &BulkHandler{
		Bulk:           executor,
		Logger:         logger,
		ErrorHandler:   NewErrorHandler(logger),
		ResponseHelper: NewResponseHelper(),
	}
}

// AvailableActionsHandler returns the actions applicable to a selection.
func (h *BulkHandler) AvailableActionsHandler(w http.ResponseWriter, r *http.Request) {
	scope, ok := h.ErrorHandler.RequireScope(w, r)
	if !ok {
		return
	}
	ctx, cancel := h.ResponseHelper.CreateRequestContext(r, DefaultTimeout)
	defer cancel()

	var req selectionRequest
	if err := decodeBody(w, r, &req, false); err != nil {
		h.ErrorHandler.HandleJSONDecodeError(w, r, err)
		return
	}

	actions, err := h.Bulk.AvailableActions(ctx, scope, req.AssetIDs)
	if err != nil {
		h.ErrorHandler.HandleServiceError(w, r, err, "determine available actions")
		return
	}
	h.ErrorHandler.SendJSONResponse(w, http.StatusOK, h.ResponseHelper.CreateListResponseData("actions", actions, len(actions)))
}

// ExecuteHandler runs the action named in the path against the selection.
func (h *BulkHandler) ExecuteHandler(w http.ResponseWriter, r *http.Request) {
	scope, ok := h.ErrorHandler.RequireScope(w, r)
	if !ok {
		return
	}
	action, ok := h.ErrorHandler.PathParam(w, r, "action")
	if !ok {
		return
	}

	var req bulkActionRequest
	if err := decodeBody(w, r, &req, false); err != nil {
		h.ErrorHandler.HandleJSONDecodeError(w, r, err)
		return
	}

	h.execute(w, r, scope, bulk.ActionKind(strings.ReplaceAll(action, "-", "_")), req.AssetIDs, req.Params.toParams())
}

// CreateSaleHandler sells the selected assets under one sale.
func (h *BulkHandler) CreateSaleHandler(w http.ResponseWriter, r *http.Request) {
	scope, ok := h.ErrorHandler.RequireScope(w, r)
	if !ok {
		return
	}

	var req saleRequest
	if err := decodeBody(w, r, &req, false); err != nil {
		h.ErrorHandler.HandleJSONDecodeError(w, r, err)
		return
	}

	h.execute(w, r, scope, bulk.ActionSell, req.AssetIDs, bulk.Params{
		Buyer:       strings.TrimSpace(req.Buyer),
		SaleDate:    req.SaleDate.value(),
		TotalAmount: req.TotalAmount,
		Notes:       req.Notes,
	})
}

func (h *BulkHandler) execute(w http.ResponseWriter, r *http.Request, scope auth.RequestScope, kind bulk.ActionKind, ids []string, params bulk.Params) {
	ctx, cancel := h.ResponseHelper.CreateRequestContext(r, LongRunningTimeout)
	defer cancel()

	result, err := h.Bulk.Execute(ctx, scope, kind, ids, params)
	if err != nil {
		h.ErrorHandler.HandleServiceError(w, r, err, "run bulk action")
		return
	}

	status := http.StatusOK
	if !result.Success {
		status = http.StatusUnprocessableEntity
	}
	h.ErrorHandler.SendJSONResponse(w, status, result)
}

func (p bulkParamsRequest) toParams() bulk.Params {
	return bulk.Params{
		EmployeeID:      strings.TrimSpace(p.EmployeeID),
		Status:          p.Status,
		Reason:          p.Reason,
		Notes:           p.Notes,
		Confirmation:    p.Confirmation,
		MaintenanceType: p.MaintenanceType,
		Description:     p.Description,
		ScheduledDate:   p.ScheduledDate.value(),
		Provider:        p.Provider,
		Cost:            p.Cost,
		Buyer:           strings.TrimSpace(p.Buyer),
		SaleDate:        p.SaleDate.value(),
		TotalAmount:     p.TotalAmount,
	}
}
