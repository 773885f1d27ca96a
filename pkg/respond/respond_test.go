package respond

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSON(t *testing.T) {
	tests := []struct {
		name     string
		code     int
		data     any
		wantCode int
		wantBody any
	}{
		{
			name:     "object",
			code:     http.StatusOK,
			data:     map[string]string{"status": "ok"},
			wantCode: http.StatusOK,
			wantBody: map[string]any{"status": "ok"},
		},
		{
			name:     "created record",
			code:     http.StatusCreated,
			data:     map[string]int{"id": 123},
			wantCode: http.StatusCreated,
			wantBody: map[string]any{"id": float64(123)}, // JSON unmarshals numbers as float64
		},
		{
			name:     "empty collection",
			code:     http.StatusOK,
			data:     []string{},
			wantCode: http.StatusOK,
			wantBody: []any{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodGet, "/", nil)

			JSON(w, r, tt.code, tt.data)

			assert.Equal(t, tt.wantCode, w.Code)
			assert.Equal(t, "application/json; charset=utf-8", w.Header().Get("Content-Type"))

			var got any
			require.NoError(t, json.NewDecoder(w.Body).Decode(&got))
			assert.Equal(t, tt.wantBody, got)
		})
	}
}

func TestJSON_Head(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodHead, "/", nil)

	JSON(w, r, http.StatusOK, map[string]string{"status": "ok"})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Zero(t, w.Body.Len())
}

func TestError(t *testing.T) {
	tests := []struct {
		name    string
		code    int
		message string
	}{
		{name: "bad request", code: http.StatusBadRequest, message: "invalid json"},
		{name: "not found", code: http.StatusNotFound, message: "not found"},
		{name: "unavailable", code: http.StatusServiceUnavailable, message: "unavailable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodGet, "/", nil)

			Error(w, r, tt.code, tt.message)

			assert.Equal(t, tt.code, w.Code)

			var got ErrorBody
			require.NoError(t, json.NewDecoder(w.Body).Decode(&got))
			assert.Equal(t, tt.message, got.Error)
			assert.Equal(t, tt.code, got.Status)
		})
	}
}
