package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/upb/employee-management/middleware"
	"github.com/upb/employee-management/models"
	"github.com/upb/employee-management/services/performance"
	"github.com/upb/employee-management/utils"
)

// MockAttendanceService is a mock implementation of AttendanceService
type MockAttendanceService struct {
	mock.Mock
}

func (m *MockAttendanceService) LogEntry(ctx context.Context, employeeID, entryType string) (*models.AttendanceEntry, error) {
	args := m.Called(ctx, employeeID, entryType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AttendanceEntry), args.Error(1)
}

func (m *MockAttendanceService) History(ctx context.Context, employeeID string) ([]*models.AttendanceEntry, error) {
	args := m.Called(ctx, employeeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.AttendanceEntry), args.Error(1)
}

// MockLeaveService is a mock implementation of LeaveService
type MockLeaveService struct {
	mock.Mock
}

func (m *MockLeaveService) RequestLeave(ctx context.Context, employeeID string, start, end time.Time, reason string) (*models.LeaveRequest, error) {
	args := m.Called(ctx, employeeID, start, end, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.LeaveRequest), args.Error(1)
}

func (m *MockLeaveService) Get(ctx context.Context, id uuid.UUID) (*models.LeaveRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.LeaveRequest), args.Error(1)
}

func (m *MockLeaveService) ListByEmployee(ctx context.Context, employeeID string) ([]*models.LeaveRequest, error) {
	args := m.Called(ctx, employeeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.LeaveRequest), args.Error(1)
}

func (m *MockLeaveService) Approve(ctx context.Context, id uuid.UUID, approverID string) (*models.LeaveRequest, error) {
	args := m.Called(ctx, id, approverID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.LeaveRequest), args.Error(1)
}

func (m *MockLeaveService) Reject(ctx context.Context, id uuid.UUID, approverID string) (*models.LeaveRequest, error) {
	args := m.Called(ctx, id, approverID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.LeaveRequest), args.Error(1)
}

func (m *MockLeaveService) Cancel(ctx context.Context, id uuid.UUID, employeeID string) (*models.LeaveRequest, error) {
	args := m.Called(ctx, id, employeeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.LeaveRequest), args.Error(1)
}

// MockPerformanceService is a mock implementation of PerformanceService
type MockPerformanceService struct {
	mock.Mock
}

func (m *MockPerformanceService) RecordPerformance(ctx context.Context, employeeID string, in performance.Input) (*models.PerformanceRecord, error) {
	args := m.Called(ctx, employeeID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PerformanceRecord), args.Error(1)
}

func (m *MockPerformanceService) History(ctx context.Context, employeeID string) ([]*models.PerformanceRecord, error) {
	args := m.Called(ctx, employeeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.PerformanceRecord), args.Error(1)
}

func (m *MockPerformanceService) Summarize(ctx context.Context, employeeID string) (*performance.Summary, error) {
	args := m.Called(ctx, employeeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*performance.Summary), args.Error(1)
}

// withCaller injects authenticated claims the way the auth middleware does
func withCaller(employeeID string, roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := middleware.WithClaims(r.Context(), &middleware.Claims{Sub: employeeID, EmployeeID: employeeID, Roles: roles})
			ctx = middleware.WithEmployeeID(ctx, employeeID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func serve(t *testing.T, router chi.Router, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) utils.ErrorResponse {
	t.Helper()
	var resp utils.ErrorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	return resp
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	var resp struct {
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	require.NoError(t, json.Unmarshal(resp.Data, v))
}
