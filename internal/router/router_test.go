package router

import (
	"asset-management-api/internal/auth"
	"asset-management-api/internal/config"
	"asset-management-api/internal/metrics"
	"asset-management-api/internal/middleware"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubHandlers answers every route with the name of the handler it reached
// and the id route variable, if any.
type stubHandlers struct{}

func (s *stubHandlers) serve(w http.ResponseWriter, r *http.Request, name string) {
	w.Header().Set("X-Handler", name)
	w.Header().Set("X-Route-ID", mux.Vars(r)["id"])
	w.WriteHeader(http.StatusOK)
}

func (s *stubHandlers) CreateAssetHandler(w http.ResponseWriter, r *http.Request) { s.serve(w, r, "CreateAssetHandler") }
func (s *stubHandlers) ListAssetsHandler(w http.ResponseWriter, r *http.Request) { s.serve(w, r, "ListAssetsHandler") }
func (s *stubHandlers) GetAssetHandler(w http.ResponseWriter, r *http.Request) { s.serve(w, r, "GetAssetHandler") }
func (s *stubHandlers) UpdateAssetHandler(w http.ResponseWriter, r *http.Request) { s.serve(w, r, "UpdateAssetHandler") }
func (s *stubHandlers) DeleteAssetHandler(w http.ResponseWriter, r *http.Request) { s.serve(w, r, "DeleteAssetHandler") }
func (s *stubHandlers) ExportAssetsHandler(w http.ResponseWriter, r *http.Request) { s.serve(w, r, "ExportAssetsHandler") }
func (s *stubHandlers) AssignHandler(w http.ResponseWriter, r *http.Request) { s.serve(w, r, "AssignHandler") }
func (s *stubHandlers) UnassignHandler(w http.ResponseWriter, r *http.Request) { s.serve(w, r, "UnassignHandler") }
func (s *stubHandlers) CheckOutHandler(w http.ResponseWriter, r *http.Request) { s.serve(w, r, "CheckOutHandler") }
func (s *stubHandlers) CheckInHandler(w http.ResponseWriter, r *http.Request) { s.serve(w, r, "CheckInHandler") }
func (s *stubHandlers) ChangeStatusHandler(w http.ResponseWriter, r *http.Request) { s.serve(w, r, "ChangeStatusHandler") }
func (s *stubHandlers) ScheduleMaintenanceHandler(w http.ResponseWriter, r *http.Request) { s.serve(w, r, "ScheduleMaintenanceHandler") }
func (s *stubHandlers) RetireHandler(w http.ResponseWriter, r *http.Request) { s.serve(w, r, "RetireHandler") }
func (s *stubHandlers) GetTransactionsHandler(w http.ResponseWriter, r *http.Request) { s.serve(w, r, "GetTransactionsHandler") }
func (s *stubHandlers) GetMaintenanceHandler(w http.ResponseWriter, r *http.Request) { s.serve(w, r, "GetMaintenanceHandler") }
func (s *stubHandlers) ListStatusesHandler(w http.ResponseWriter, r *http.Request) { s.serve(w, r, "ListStatusesHandler") }
func (s *stubHandlers) CreateStatusHandler(w http.ResponseWriter, r *http.Request) { s.serve(w, r, "CreateStatusHandler") }
func (s *stubHandlers) AvailableActionsHandler(w http.ResponseWriter, r *http.Request) { s.serve(w, r, "AvailableActionsHandler") }
func (s *stubHandlers) ExecuteHandler(w http.ResponseWriter, r *http.Request) { s.serve(w, r, "ExecuteHandler") }
func (s *stubHandlers) CreateSaleHandler(w http.ResponseWriter, r *http.Request) { s.serve(w, r, "CreateSaleHandler") }
func (s *stubHandlers) CreateEmployeeHandler(w http.ResponseWriter, r *http.Request) { s.serve(w, r, "CreateEmployeeHandler") }
func (s *stubHandlers) ListEmployeesHandler(w http.ResponseWriter, r *http.Request) { s.serve(w, r, "ListEmployeesHandler") }
func (s *stubHandlers) GetEmployeeHandler(w http.ResponseWriter, r *http.Request) { s.serve(w, r, "GetEmployeeHandler") }
func (s *stubHandlers) GetEmployeeAssetsHandler(w http.ResponseWriter, r *http.Request) { s.serve(w, r, "GetEmployeeAssetsHandler") }
func (s *stubHandlers) ListActivityHandler(w http.ResponseWriter, r *http.Request) { s.serve(w, r, "ListActivityHandler") }

const testSecret = "router-test-secret-0123456789"

func testConfig() *config.Config {
	return &config.Config{
		Security: config.SecurityConfig{
			RateLimitRPS:   1000,
			RateLimitBurst: 1000,
			RequestTimeout: 5 * time.Second,
			EnableCORS:     true,
			AllowedOrigins: []string{"*"},
		},
		Server: config.ServerConfig{EnableMetrics: true, MetricsPath: "/metrics"},
	}
}

func newTestRouter(t *testing.T) (http.Handler, *auth.TokenManager) {
	t.Helper()
	logger, _ := test.NewNullLogger()
	tokens := auth.NewTokenManager(testSecret, "asset-management-api", time.Hour)
	stub := &stubHandlers{}
	h := NewRouter(Handlers{
		Assets:    stub,
		Bulk:      stub,
		Employees: stub,
		Activity:  stub,
		Health: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Handler", "Health")
		}),
	}, Dependencies{
		Auth:    middleware.NewAuthMiddleware(tokens, "asset_session", logger),
		Metrics: metrics.New(),
		Logger:  logger,
	}, testConfig())
	return h, tokens
}

func tokenFor(t *testing.T, tokens *auth.TokenManager, level auth.AccessLevel) string {
	t.Helper()
	token, err := tokens.Issue(auth.Principal{UserID: "u-" + level.String(), Username: level.String(), Level: level})
	require.NoError(t, err)
	return token
}

func TestRoutes(t *testing.T) {
	router, tokens := newTestRouter(t)
	admin := tokenFor(t, tokens, auth.LevelAdmin)

	tests := []struct {
		method  string
		path    string
		handler string
		id      string
	}{
		{"GET", "/api/assets", "ListAssetsHandler", ""},
		{"POST", "/api/assets", "CreateAssetHandler", ""},
		{"GET", "/api/assets/export", "ExportAssetsHandler", ""},
		{"GET", "/api/assets/SIT-LT-0001", "GetAssetHandler", "SIT-LT-0001"},
		{"PUT", "/api/assets/SIT-LT-0001", "UpdateAssetHandler", "SIT-LT-0001"},
		{"DELETE", "/api/assets/SIT-LT-0001", "DeleteAssetHandler", "SIT-LT-0001"},
		{"GET", "/api/assets/SIT-LT-0001/transactions", "GetTransactionsHandler", "SIT-LT-0001"},
		{"GET", "/api/assets/SIT-LT-0001/maintenance", "GetMaintenanceHandler", "SIT-LT-0001"},
		{"POST", "/api/assets/SIT-LT-0001/maintenance", "ScheduleMaintenanceHandler", "SIT-LT-0001"},
		{"POST", "/api/assets/SIT-LT-0001/assign", "AssignHandler", "SIT-LT-0001"},
		{"POST", "/api/assets/SIT-LT-0001/unassign", "UnassignHandler", "SIT-LT-0001"},
		{"POST", "/api/assets/SIT-LT-0001/check-out", "CheckOutHandler", "SIT-LT-0001"},
		{"POST", "/api/assets/SIT-LT-0001/check-in", "CheckInHandler", "SIT-LT-0001"},
		{"POST", "/api/assets/SIT-LT-0001/status", "ChangeStatusHandler", "SIT-LT-0001"},
		{"POST", "/api/assets/SIT-LT-0001/retire", "RetireHandler", "SIT-LT-0001"},
		{"GET", "/api/asset-statuses", "ListStatusesHandler", ""},
		{"POST", "/api/asset-statuses", "CreateStatusHandler", ""},
		{"POST", "/api/bulk-actions/available", "AvailableActionsHandler", ""},
		{"POST", "/api/bulk-actions/check-out", "ExecuteHandler", ""},
		{"POST", "/api/asset-sales", "CreateSaleHandler", ""},
		{"GET", "/api/employees", "ListEmployeesHandler", ""},
		{"POST", "/api/employees", "CreateEmployeeHandler", ""},
		{"GET", "/api/employees/EMP001", "GetEmployeeHandler", "EMP001"},
		{"GET", "/api/employees/EMP001/assets", "GetEmployeeAssetsHandler", "EMP001"},
		{"GET", "/api/activity-logs", "ListActivityHandler", ""},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			req.Header.Set("Authorization", "Bearer "+admin)
			rr := httptest.NewRecorder()

			router.ServeHTTP(rr, req)

			require.Equal(t, http.StatusOK, rr.Code)
			assert.Equal(t, tt.handler, rr.Header().Get("X-Handler"))
			assert.Equal(t, tt.id, rr.Header().Get("X-Route-ID"))
			assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))
		})
	}
}

func TestRouteAccessLevels(t *testing.T) {
	router, tokens := newTestRouter(t)

	tests := []struct {
		name       string
		method     string
		path       string
		level      auth.AccessLevel
		wantStatus int
	}{
		{"viewer reads", "GET", "/api/assets", auth.LevelViewer, http.StatusOK},
		{"viewer cannot assign", "POST", "/api/assets/A/assign", auth.LevelViewer, http.StatusForbidden},
		{"technician assigns", "POST", "/api/assets/A/assign", auth.LevelTechnician, http.StatusOK},
		{"technician cannot create employees", "POST", "/api/employees", auth.LevelTechnician, http.StatusForbidden},
		{"manager creates employees", "POST", "/api/employees", auth.LevelManager, http.StatusOK},
		{"technician cannot sell", "POST", "/api/asset-sales", auth.LevelTechnician, http.StatusForbidden},
		{"manager cannot delete", "DELETE", "/api/assets/A", auth.LevelManager, http.StatusForbidden},
		{"admin deletes", "DELETE", "/api/assets/A", auth.LevelAdmin, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			req.Header.Set("Authorization", "Bearer "+tokenFor(t, tokens, tt.level))
			rr := httptest.NewRecorder()

			router.ServeHTTP(rr, req)

			assert.Equal(t, tt.wantStatus, rr.Code)
		})
	}
}

func TestPublicRoutes(t *testing.T) {
	router, _ := newTestRouter(t)

	t.Run("unauthenticated api request", func(t *testing.T) {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest("GET", "/api/assets", nil))
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("health needs no session", func(t *testing.T) {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest("GET", "/api/health", nil))
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "Health", rr.Header().Get("X-Handler"))
	})

	t.Run("metrics", func(t *testing.T) {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest("GET", "/api/health", nil))
		rr = httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest("GET", "/metrics", nil))
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.True(t, strings.Contains(rr.Body.String(), `path="/api/health"`), "expected route template label")
	})

	t.Run("preflight", func(t *testing.T) {
		req := httptest.NewRequest("OPTIONS", "/api/assets", nil)
		req.Header.Set("Origin", "https://assets.example.com")
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "https://assets.example.com", rr.Header().Get("Access-Control-Allow-Origin"))
	})
}
