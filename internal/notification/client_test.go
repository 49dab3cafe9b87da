package notification

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func testConfig(url string) NotificationConfig {
	return NotificationConfig{
		URL:            url,
		Timeout:        2 * time.Second,
		RetryAttempts:  3,
		RetryDelay:     5 * time.Millisecond,
		MaxPayloadSize: 1 << 20,
	}
}

func warning(message string) Notification {
	return Notification{Level: LevelWarning, Message: message}
}

func TestNotification_Validate(t *testing.T) {
	tests := []struct {
		name          string
		notification  Notification
		expectError   bool
		errorContains string
	}{
		{
			name: "valid notification",
			notification: Notification{
				Level:      LevelInfo,
				EmployeeID: "EMP-001",
				AssetIDs:   []string{"SIT-LT-0001"},
				Message:    "Asset assigned",
			},
		},
		{
			name:          "missing level",
			notification:  Notification{Message: "Test message"},
			expectError:   true,
			errorContains: "level is required",
		},
		{
			name:          "missing message",
			notification:  Notification{Level: LevelWarning},
			expectError:   true,
			errorContains: "message is required",
		},
		{
			name:          "message too long",
			notification:  warning(strings.Repeat("a", 1001)),
			expectError:   true,
			errorContains: "message too long",
		},
		{
			name:          "too many asset ids",
			notification:  Notification{Level: LevelWarning, Message: "bulk", AssetIDs: make([]string, 501)},
			expectError:   true,
			errorContains: "too many asset ids",
		},
		{
			name:          "invalid level",
			notification:  Notification{Level: "invalid", Message: "Test message"},
			expectError:   true,
			errorContains: "invalid notification level",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.notification.Validate()
			if tt.expectError {
				if err == nil {
					t.Errorf("Expected error but got none")
				} else if !strings.Contains(err.Error(), tt.errorContains) {
					t.Errorf("Expected error to contain '%s', got: %v", tt.errorContains, err)
				}
			} else if err != nil {
				t.Errorf("Expected no error but got: %v", err)
			}
		})
	}
}

func TestClient_Send_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("Expected POST method, got %s", r.Method)
		}
		if r.Header.Get("User-Agent") != "asset-management-api/1.0" {
			t.Errorf("Expected User-Agent asset-management-api/1.0, got %s", r.Header.Get("User-Agent"))
		}

		var notification Notification
		if err := json.NewDecoder(r.Body).Decode(&notification); err != nil {
			t.Errorf("Failed to decode request body: %v", err)
		}
		if notification.EmployeeID != "EMP-001" {
			t.Errorf("Expected employee EMP-001, got %s", notification.EmployeeID)
		}
		if notification.Source != "asset-management-api" {
			t.Errorf("Expected source 'asset-management-api', got %s", notification.Source)
		}
		if notification.Timestamp.IsZero() {
			t.Error("Expected timestamp to be set")
		}

		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	err := NewClient(testConfig(server.URL), nil).Send(context.Background(), Notification{
		Level:      LevelInfo,
		Event:      "asset_assigned",
		EmployeeID: "EMP-001",
		AssetIDs:   []string{"SIT-LT-0001"},
		Message:    "Asset SIT-LT-0001 assigned",
	})
	if err != nil {
		t.Errorf("Expected no error, got: %v", err)
	}
}

func TestClient_Send_Retries(t *testing.T) {
	tests := []struct {
		name         string
		status       func(attempt int32) int
		wantErr      string
		wantAttempts int32
	}{
		{
			name:         "server error exhausts retries",
			status:       func(int32) int { return http.StatusInternalServerError },
			wantErr:      "500",
			wantAttempts: 4,
		},
		{
			name:         "client error is not retried",
			status:       func(int32) int { return http.StatusBadRequest },
			wantErr:      "400",
			wantAttempts: 1,
		},
		{
			name:         "rate limited is retried",
			status:       func(int32) int { return http.StatusTooManyRequests },
			wantErr:      "429",
			wantAttempts: 4,
		},
		{
			name: "recovers after transient failures",
			status: func(attempt int32) int {
				if attempt < 3 {
					return http.StatusServiceUnavailable
				}
				return http.StatusOK
			},
			wantAttempts: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var attempts int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status(atomic.AddInt32(&attempts, 1)))
			}))
			defer server.Close()

			err := NewClient(testConfig(server.URL), nil).Send(context.Background(), warning("Test message"))
			if tt.wantErr == "" && err != nil {
				t.Errorf("Expected success, got: %v", err)
			}
			if tt.wantErr != "" && (err == nil || !strings.Contains(err.Error(), tt.wantErr)) {
				t.Errorf("Expected error containing %q, got: %v", tt.wantErr, err)
			}
			if got := atomic.LoadInt32(&attempts); got != tt.wantAttempts {
				t.Errorf("Expected %d attempts, got %d", tt.wantAttempts, got)
			}
		})
	}
}

func TestClient_Send_ValidationError(t *testing.T) {
	var called int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&called, 1)
	}))
	defer server.Close()

	err := NewClient(testConfig(server.URL), nil).Send(context.Background(), Notification{EmployeeID: "EMP-001"})
	if err == nil || !strings.Contains(err.Error(), "invalid notification") {
		t.Errorf("Expected validation error, got: %v", err)
	}
	if atomic.LoadInt32(&called) != 0 {
		t.Error("Expected invalid notification not to be posted")
	}
}

func TestClient_Send_ContextDeadline(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if err := NewClient(testConfig(server.URL), nil).Send(ctx, warning("Test message")); err == nil {
		t.Error("Expected timeout error but got none")
	}
}

func TestClient_IsHealthy(t *testing.T) {
	tests := []struct {
		name           string
		serverStatus   int
		expectedHealth bool
	}{
		{name: "healthy service", serverStatus: http.StatusOK, expectedHealth: true},
		{name: "client error still healthy", serverStatus: http.StatusBadRequest, expectedHealth: true},
		{name: "server error unhealthy", serverStatus: http.StatusInternalServerError, expectedHealth: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/health" {
					t.Errorf("Expected /health probe, got %s", r.URL.Path)
				}
				w.WriteHeader(tt.serverStatus)
			}))
			defer server.Close()

			if healthy := NewClient(testConfig(server.URL), nil).IsHealthy(context.Background()); healthy != tt.expectedHealth {
				t.Errorf("Expected health %v, got %v", tt.expectedHealth, healthy)
			}
		})
	}
}

func TestClient_PayloadSizeLimit(t *testing.T) {
	var called int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&called, 1)
	}))
	defer server.Close()

	config := testConfig(server.URL)
	config.MaxPayloadSize = 100

	err := NewClient(config, nil).Send(context.Background(), warning(strings.Repeat("a", 200)))
	if err == nil || !strings.Contains(err.Error(), "payload too large") {
		t.Errorf("Expected payload size error, got: %v", err)
	}
	if atomic.LoadInt32(&called) != 0 {
		t.Error("Expected oversize payload not to be posted")
	}
}

func TestNewClient_EmptyURLDisables(t *testing.T) {
	client := NewClient(NotificationConfig{}, nil)

	if err := client.Send(context.Background(), Notification{Level: LevelInfo, Message: "dropped"}); err != nil {
		t.Errorf("Expected disabled notifier to accept silently, got: %v", err)
	}
	if !client.IsHealthy(context.Background()) {
		t.Error("Expected disabled notifier to report healthy")
	}
}
