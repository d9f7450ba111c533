package utils

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteJSON(t *testing.T) {
	t.Run("successful write", func(t *testing.T) {
		w := httptest.NewRecorder()
		require.NoError(t, WriteJSON(w, http.StatusOK, map[string]string{"message": "test"}))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

		var response map[string]string
		require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
		assert.Equal(t, "test", response["message"])
	})

	t.Run("nil data", func(t *testing.T) {
		w := httptest.NewRecorder()
		require.NoError(t, WriteJSON(w, http.StatusNoContent, nil))
		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Empty(t, w.Body.String())
	})
}

func TestWriteSuccess(t *testing.T) {
	w := httptest.NewRecorder()
	require.NoError(t, WriteCreated(w, map[string]string{"id": "EMP001"}))
	assert.Equal(t, http.StatusCreated, w.Code)

	var response struct {
		Data map[string]string `json:"data"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.Equal(t, "EMP001", response.Data["id"])

	w = httptest.NewRecorder()
	require.NoError(t, WriteOK(w, nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	WriteNoContent(w)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestErrorWriters(t *testing.T) {
	details := map[string]interface{}{"field": "rating"}

	tests := []struct {
		name        string
		write       func(http.ResponseWriter) error
		wantStatus  int
		wantError   string
		wantMessage string
		wantDetails bool
	}{
		{
			name:        "bad request",
			write:       func(w http.ResponseWriter) error { return WriteBadRequest(w, "Invalid input", details) },
			wantStatus:  http.StatusBadRequest,
			wantError:   "bad_request",
			wantMessage: "Invalid input",
			wantDetails: true,
		},
		{
			name:        "unauthorized default message",
			write:       func(w http.ResponseWriter) error { return WriteUnauthorized(w, "") },
			wantStatus:  http.StatusUnauthorized,
			wantError:   "unauthorized",
			wantMessage: "Authentication required",
		},
		{
			name:        "forbidden default message",
			write:       func(w http.ResponseWriter) error { return WriteForbidden(w, "") },
			wantStatus:  http.StatusForbidden,
			wantError:   "forbidden",
			wantMessage: "Access forbidden",
		},
		{
			name:        "not found",
			write:       func(w http.ResponseWriter) error { return WriteNotFound(w, "leave request not found") },
			wantStatus:  http.StatusNotFound,
			wantError:   "not_found",
			wantMessage: "leave request not found",
		},
		{
			name:        "conflict",
			write:       func(w http.ResponseWriter) error { return WriteConflict(w, "overlapping leave", details) },
			wantStatus:  http.StatusConflict,
			wantError:   "conflict",
			wantMessage: "overlapping leave",
			wantDetails: true,
		},
		{
			name:        "service unavailable default message",
			write:       func(w http.ResponseWriter) error { return WriteServiceUnavailable(w, "", nil) },
			wantStatus:  http.StatusServiceUnavailable,
			wantError:   "service_unavailable",
			wantMessage: "Service unavailable",
		},
		{
			name:        "internal default message",
			write:       func(w http.ResponseWriter) error { return WriteInternalServerError(w, "") },
			wantStatus:  http.StatusInternalServerError,
			wantError:   "internal_error",
			wantMessage: "Internal server error",
		},
		{
			name:        "generic writer maps status",
			write:       func(w http.ResponseWriter) error { return WriteError(w, http.StatusServiceUnavailable, "down", nil) },
			wantStatus:  http.StatusServiceUnavailable,
			wantError:   "service_unavailable",
			wantMessage: "down",
		},
		{
			name:        "generic writer unknown status",
			write:       func(w http.ResponseWriter) error { return WriteError(w, http.StatusTeapot, "teapot", nil) },
			wantStatus:  http.StatusTeapot,
			wantError:   "internal_error",
			wantMessage: "teapot",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			require.NoError(t, tt.write(w))
			assert.Equal(t, tt.wantStatus, w.Code)

			var response ErrorResponse
			require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
			assert.Equal(t, tt.wantError, response.Error)
			assert.Equal(t, tt.wantMessage, response.Message)
			if tt.wantDetails {
				assert.Equal(t, "rating", response.Details["field"])
			} else {
				assert.Empty(t, response.Details)
			}
		})
	}
}

func TestDecodeJSON(t *testing.T) {
	type body struct {
		EmployeeID string `json:"employee_id"`
	}

	t.Run("valid body", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"employee_id":"EMP001"}`))
		var b body
		require.NoError(t, DecodeJSON(r, &b))
		assert.Equal(t, "EMP001", b.EmployeeID)
	})

	t.Run("empty body", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(""))
		err := DecodeJSON(r, &body{})
		assert.EqualError(t, err, "request body is required")
	})

	t.Run("malformed body", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"employee_id":`))
		err := DecodeJSON(r, &body{})
		assert.Contains(t, err.Error(), "invalid JSON body")
	})
}
