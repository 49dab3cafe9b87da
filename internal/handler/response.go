package handler

import (
	"asset-management-api/internal/repository"
	"context"
	"net/http"
	"strconv"
	"time"
)

// ResponseHelper builds response bodies and request-scoped contexts.
type ResponseHelper struct {
	ServiceName string
}

func NewResponseHelper() *ResponseHelper {
	return &ResponseHelper{ServiceName: "asset-management-api"}
}

// PaginationParams is the page requested through ?page= and ?page_size=.
type PaginationParams struct {
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
	Offset   int `json:"offset"`
	Limit    int `json:"limit"`
}

// Window converts the page into the offset/limit pair repositories take.
func (p PaginationParams) Window() repository.PaginationParams {
	return repository.PaginationParams{Offset: p.Offset, Limit: p.Limit}
}

// PaginationMeta describes where a page sits in the full result.
type PaginationMeta struct {
	Page         int  `json:"page"`
	PageSize     int  `json:"page_size"`
	TotalItems   int  `json:"total_items"`
	TotalPages   int  `json:"total_pages"`
	HasNext      bool `json:"has_next"`
	HasPrevious  bool `json:"has_previous"`
	NextPage     *int `json:"next_page,omitempty"`
	PreviousPage *int `json:"previous_page,omitempty"`
}

const (
	DefaultPageSize = 25
	MaxPageSize     = 200
	MinPageSize     = 1
)

// ParsePaginationParams reads page and page_size, falling back to page 1 and
// DefaultPageSize for missing or out-of-range values.
func (rh *ResponseHelper) ParsePaginationParams(r *http.Request) PaginationParams {
	query := r.URL.Query()

	page := queryInt(query.Get("page"), 1)
	if page < 1 {
		page = 1
	}
	pageSize := queryInt(query.Get("page_size"), DefaultPageSize)
	if pageSize < MinPageSize || pageSize > MaxPageSize {
		pageSize = DefaultPageSize
	}

	return PaginationParams{
		Page:     page,
		PageSize: pageSize,
		Offset:   (page - 1) * pageSize,
		Limit:    pageSize,
	}
}

func queryInt(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

// CalculatePaginationMeta derives page counts and neighbours for totalItems.
// An empty result still reports one page.
func (rh *ResponseHelper) CalculatePaginationMeta(params PaginationParams, totalItems int) PaginationMeta {
	totalPages := max(1, (totalItems+params.PageSize-1)/params.PageSize)

	meta := PaginationMeta{
		Page:        params.Page,
		PageSize:    params.PageSize,
		TotalItems:  totalItems,
		TotalPages:  totalPages,
		HasNext:     params.Page < totalPages,
		HasPrevious: params.Page > 1,
	}
	if meta.HasNext {
		meta.NextPage = pageRef(params.Page + 1)
	}
	if meta.HasPrevious {
		meta.PreviousPage = pageRef(params.Page - 1)
	}
	return meta
}

func pageRef(n int) *int {
	return &n
}

// CreateRequestContext bounds the handler's downstream work by timeout.
func (rh *ResponseHelper) CreateRequestContext(r *http.Request, timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), timeout)
}

// CreatePaginatedListResponseData stores items under key next to the pagination block.
func (rh *ResponseHelper) CreatePaginatedListResponseData(key string, items interface{}, pagination PaginationMeta) map[string]interface{} {
	return map[string]interface{}{
		key:          items,
		"pagination": pagination,
	}
}

// CreateListResponseData stores items under key with their count.
func (rh *ResponseHelper) CreateListResponseData(key string, items interface{}, count int) map[string]interface{} {
	return map[string]interface{}{
		key:     items,
		"count": count,
	}
}

// CreateHealthCheckData reports overall status plus per-dependency checks.
func (rh *ResponseHelper) CreateHealthCheckData(status string, checks map[string]string) map[string]interface{} {
	data := map[string]interface{}{
		"timestamp": time.Now().UTC(),
		"service":   rh.ServiceName,
		"status":    status,
	}
	if len(checks) > 0 {
		data["checks"] = checks
	}
	return data
}
