package handler

import (
	"asset-management-api/internal/model"
	"asset-management-api/internal/repository"
	"net/http"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
)

// EmployeeHandler handles employee requests.
type EmployeeHandler struct {
	Employees EmployeeService
	Logger    *logrus.Logger

	ErrorHandler   *ErrorHandler
	ResponseHelper *ResponseHelper
}

// NewEmployeeHandler creates a new EmployeeHandler
func NewEmployeeHandler(employees EmployeeService, logger *logrus.Logger) *EmployeeHandler {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &EmployeeHandler{
		Employees:      employees,
		Logger:         logger,
		ErrorHandler:   NewErrorHandler(logger),
		ResponseHelper: NewResponseHelper(),
	}
}

// CreateEmployeeHandler creates an employee.
func (h *EmployeeHandler) CreateEmployeeHandler(w http.ResponseWriter, r *http.Request) {
	scope, ok := h.ErrorHandler.RequireScope(w, r)
	if !ok {
		return
	}
	ctx, cancel := h.ResponseHelper.CreateRequestContext(r, DefaultTimeout)
	defer cancel()

	var employee model.Employee
	if err := decodeBody(w, r, &employee, false); err != nil {
		h.ErrorHandler.HandleJSONDecodeError(w, r, err)
		return
	}

	created, err := h.Employees.CreateEmployee(ctx, scope, employee)
	if err != nil {
		h.ErrorHandler.HandleServiceError(w, r, err, "create employee")
		return
	}
	h.ErrorHandler.SendSuccessResponse(w, http.StatusCreated, "Employee created successfully", created)
}

// ListEmployeesHandler lists employees with pagination.
func (h *EmployeeHandler) ListEmployeesHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ResponseHelper.CreateRequestContext(r, DefaultTimeout)
	defer cancel()

	pagination := h.ResponseHelper.ParsePaginationParams(r)
	result, err := h.Employees.ListEmployees(ctx, pagination.Window())
	if err != nil {
		h.ErrorHandler.HandleServiceError(w, r, err, "retrieve employees")
		return
	}

	items := result.Items
	if items == nil {
		items = []model.Employee{}
	}
	meta := h.ResponseHelper.CalculatePaginationMeta(pagination, result.TotalCount)
	h.ErrorHandler.SendJSONResponse(w, http.StatusOK, h.ResponseHelper.CreatePaginatedListResponseData("employees", items, meta))
}

// GetEmployeeHandler returns one employee.
func (h *EmployeeHandler) GetEmployeeHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := h.ErrorHandler.PathParam(w, r, "id")
	if !ok {
		return
	}
	ctx, cancel := h.ResponseHelper.CreateRequestContext(r, DefaultTimeout)
	defer cancel()

	employee, err := h.Employees.GetEmployee(ctx, id)
	if err != nil {
		h.ErrorHandler.HandleServiceError(w, r, err, "retrieve employee")
		return
	}
	h.ErrorHandler.SendJSONResponse(w, http.StatusOK, employee)
}

// GetEmployeeAssetsHandler returns the assets assigned to an employee.
func (h *EmployeeHandler) GetEmployeeAssetsHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := h.ErrorHandler.PathParam(w, r, "id")
	if !ok {
		return
	}
	ctx, cancel := h.ResponseHelper.CreateRequestContext(r, DefaultTimeout)
	defer cancel()

	assets, err := h.Employees.GetEmployeeAssets(ctx, id)
	if err != nil {
		h.ErrorHandler.HandleServiceError(w, r, err, "retrieve employee assets")
		return
	}
	if assets == nil {
		assets = []model.Asset{}
	}

	data := h.ResponseHelper.CreateListResponseData("assets", assets, len(assets))
	data["employee_id"] = id
	h.ErrorHandler.SendJSONResponse(w, http.StatusOK, data)
}

// ActivityHandler serves the audit trail.
type ActivityHandler struct {
	Activity ActivityService

	ErrorHandler   *ErrorHandler
	ResponseHelper *ResponseHelper
}

// NewActivityHandler creates a new ActivityHandler
func NewActivityHandler(activity ActivityService, logger *logrus.Logger) *ActivityHandler {
	return &ActivityHandler{
		Activity:       activity,
		ErrorHandler:   NewErrorHandler(logger),
		ResponseHelper: NewResponseHelper(),
	}
}

// ListActivityHandler lists activity entries filtered by entity and user.
func (h *ActivityHandler) ListActivityHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ResponseHelper.CreateRequestContext(r, DefaultTimeout)
	defer cancel()

	query := r.URL.Query()
	filter := repository.ActivityFilter{
		EntityType: strings.TrimSpace(query.Get("entityType")),
		EntityID:   strings.TrimSpace(query.Get("entityId")),
		UserID:     strings.TrimSpace(query.Get("userId")),
	}
	if raw := query.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			h.ErrorHandler.SendErrorResponse(w, r, http.StatusBadRequest, "limit must be a number", "INVALID_PARAMETER", nil)
			return
		}
		filter.Limit = limit
	}

	entries, err := h.Activity.ListActivity(ctx, filter)
	if err != nil {
		h.ErrorHandler.HandleServiceError(w, r, err, "retrieve activity logs")
		return
	}
	if entries == nil {
		entries = []model.ActivityLog{}
	}
	h.ErrorHandler.SendJSONResponse(w, http.StatusOK, h.ResponseHelper.CreateListResponseData("activity", entries, len(entries)))
}
