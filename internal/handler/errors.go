package handler

import (
	"asset-management-api/internal/auth"
	"asset-management-api/internal/ids"
	apperrors "asset-management-api/pkg/errors"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// ErrorResponse is the JSON body of every error response.
type ErrorResponse struct {
	Error     string                 `json:"error"`
	Code      string                 `json:"code,omitempty"`
	Details   map[string]interface{} `json:"details,omitempty"`
	RequestID string                 `json:"request_id,omitempty"`
}

// SuccessResponse is the JSON body of mutating endpoints.
type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// ErrorHandler writes every JSON body the handlers produce and logs what
// could not be written.
type ErrorHandler struct {
	Logger *logrus.Logger
}

func NewErrorHandler(logger *logrus.Logger) *ErrorHandler {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &ErrorHandler{Logger: logger}
}

func (e *ErrorHandler) writeJSON(w http.ResponseWriter, statusCode int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		e.Logger.WithError(err).WithField("status", statusCode).Error("failed to encode response")
	}
}

// SendErrorResponse writes an ErrorResponse tagged with the request id.
func (e *ErrorHandler) SendErrorResponse(w http.ResponseWriter, r *http.Request, statusCode int, message, code string, details map[string]interface{}) {
	body := ErrorResponse{Error: message, Code: code, Details: details}
	if r != nil {
		body.RequestID = ids.RequestIDFromContext(r.Context())
	}
	e.writeJSON(w, statusCode, body)
}

func (e *ErrorHandler) SendSuccessResponse(w http.ResponseWriter, statusCode int, message string, data interface{}) {
	e.writeJSON(w, statusCode, SuccessResponse{Message: message, Data: data})
}

func (e *ErrorHandler) SendJSONResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	e.writeJSON(w, statusCode, data)
}

// HandleServiceError renders err. AppErrors keep their status and message;
// anything else becomes an opaque 500 naming the operation.
func (e *ErrorHandler) HandleServiceError(w http.ResponseWriter, r *http.Request, err error, operation string) {
	entry := e.Logger.WithError(err).WithField("operation", operation)
	if r != nil {
		entry = entry.WithField("request_id", ids.RequestIDFromContext(r.Context()))
	}

	if errors.Is(err, context.DeadlineExceeded) {
		entry.Warn("operation timed out")
		e.SendErrorResponse(w, r, http.StatusRequestTimeout, "Operation timed out", string(apperrors.ErrorCodeTimeout), nil)
		return
	}

	appErr, ok := apperrors.AsAppError(err)
	if !ok {
		entry.Error("unexpected error")
		e.SendErrorResponse(w, r, http.StatusInternalServerError, "Failed to "+operation, string(apperrors.ErrorCodeInternal), nil)
		return
	}

	status := appErr.GetHTTPStatus()
	if status >= http.StatusInternalServerError {
		entry.Error("request failed")
	} else {
		entry.Debug("request rejected")
	}

	var details map[string]interface{}
	if len(appErr.Details) > 0 {
		details = appErr.Details
	}
	e.SendErrorResponse(w, r, status, apperrors.UserMessage(appErr), string(appErr.Code), details)
}

// HandleJSONDecodeError answers 400 for a body that is not the expected JSON.
func (e *ErrorHandler) HandleJSONDecodeError(w http.ResponseWriter, r *http.Request, err error) {
	e.Logger.WithError(err).Debug("malformed request body")
	e.SendErrorResponse(w, r, http.StatusBadRequest, "Invalid JSON format", string(apperrors.ErrorCodeInvalidJSON), nil)
}

// PathParam returns a required route variable, answering 400 when it is blank.
func (e *ErrorHandler) PathParam(w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	value := strings.TrimSpace(mux.Vars(r)[name])
	if value == "" {
		e.SendErrorResponse(w, r, http.StatusBadRequest, name+" is required", string(apperrors.ErrorCodeMissingParameter), nil)
		return "", false
	}
	return value, true
}

// RequireScope returns the caller's scope, answering 401 when the request
// did not pass through the auth middleware.
func (e *ErrorHandler) RequireScope(w http.ResponseWriter, r *http.Request) (auth.RequestScope, bool) {
	scope, ok := auth.ScopeFromRequest(r)
	if !ok {
		e.SendErrorResponse(w, r, http.StatusUnauthorized, "Authentication required", string(apperrors.ErrorCodeUnauthorized), nil)
		return auth.RequestScope{}, false
	}
	return scope, true
}
