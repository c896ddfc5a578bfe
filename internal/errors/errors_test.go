package errors

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIError_Error(t *testing.T) {
	tests := []struct {
		name     string
		apiError *APIError
		want     string
	}{
		{
			name: "simple message",
			apiError: &APIError{
				StatusCode: http.StatusBadRequest,
				ErrorCode:  "INVALID_REQUEST",
				Message:    "Invalid request format",
			},
			want: "Invalid request format",
		},
		{
			name: "empty message",
			apiError: &APIError{
				StatusCode: http.StatusInternalServerError,
				ErrorCode:  "INTERNAL_ERROR",
			},
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.apiError.Error())
		})
	}
}

func TestAPIError_Render(t *testing.T) {
	tests := []struct {
		name       string
		apiError   *APIError
		wantStatus int
	}{
		{"bad request", ErrInvalidRequest, http.StatusBadRequest},
		{"not found", ErrSurveyNotFound, http.StatusNotFound},
		{"no market data", ErrNoMarketData, http.StatusUnprocessableEntity},
		{"internal", ErrInternalServer, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodGet, "/test", nil)

			err := render.Render(w, r, tt.apiError)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestNewWithDetails(t *testing.T) {
	apiErr := NewWithDetails(http.StatusBadRequest, "VALIDATION_FAILED", "Request validation failed", ValidationError{
		Field:   "metric",
		Message: "must be one of tcc, wrvu, cf, call_pay",
	})

	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "VALIDATION_FAILED", apiErr.ErrorCode)

	detail, ok := apiErr.Details.(ValidationError)
	require.True(t, ok)
	assert.Equal(t, "metric", detail.Field)
}

func TestErrValidation(t *testing.T) {
	apiErr := ErrValidation("fte", "must be between 0 and 1")

	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "VALIDATION_FAILED", apiErr.ErrorCode)

	detail, ok := apiErr.Details.(ValidationError)
	require.True(t, ok)
	assert.Equal(t, "fte", detail.Field)
	assert.Equal(t, "must be between 0 and 1", detail.Message)
}

func TestNotFoundError(t *testing.T) {
	apiErr := NotFoundError("Survey")

	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, "NOT_FOUND", apiErr.ErrorCode)
	assert.Equal(t, "Survey not found", apiErr.Message)
	assert.Equal(t, "Survey", apiErr.Details)
}

func TestDatasetLoadError(t *testing.T) {
	apiErr := DatasetLoadError(assert.AnError)

	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
	assert.Equal(t, "DATASET_LOAD_FAILED", apiErr.ErrorCode)
	assert.Equal(t, assert.AnError.Error(), apiErr.Details)
}

func TestWriteError(t *testing.T) {
	w := httptest.NewRecorder()

	WriteError(w, ErrMappingNotFound)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, "MAPPING_NOT_FOUND", resp.Error.ErrorCode)
}

func TestNewValidationErrors(t *testing.T) {
	apiErr := NewValidationErrors([]ValidationError{
		{Field: "specialty", Message: "required"},
		{Field: "value", Message: "must be positive"},
	})

	detail, ok := apiErr.Details.(ValidationErrors)
	require.True(t, ok)
	assert.Len(t, detail.Errors, 2)
}

func TestErrPanic(t *testing.T) {
	apiErr := ErrPanic("something broke")

	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)

	rec, ok := apiErr.Details.(PanicRecovery)
	require.True(t, ok)
	assert.Equal(t, "something broke", rec.Message)
}
