package errors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name   string
		appErr *AppError
		want   string
	}{
		{
			name:   "without cause",
			appErr: NewAppError(ErrTypeStorage, "survey lookup failed", nil),
			want:   "[STORAGE] survey lookup failed",
		},
		{
			name:   "with cause",
			appErr: NewAppError(ErrTypeParsing, "bad column mapping", errors.New("missing tcc_p50")),
			want:   "[PARSING] bad column mapping: missing tcc_p50",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.appErr.Error())
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("underlying")
	appErr := NewStorageError("save failed", cause)

	assert.True(t, errors.Is(appErr, cause))

	var target *AppError
	require.True(t, errors.As(appErr, &target))
	assert.Equal(t, ErrTypeStorage, target.Type)
}

func TestAppError_WithContext(t *testing.T) {
	appErr := NewMatchingError("no candidate above threshold", nil).
		WithContext("specialty", "Cardiology").
		WithContext("threshold", 0.8)

	assert.Equal(t, "Cardiology", appErr.Context["specialty"])
	assert.Equal(t, 0.8, appErr.Context["threshold"])
}

func TestAppErrorConstructors(t *testing.T) {
	tests := []struct {
		name     string
		appErr   *AppError
		wantType ErrorType
	}{
		{"network", NewNetworkError("dial failed", nil), ErrTypeNetwork},
		{"parsing", NewParsingError("bad row", nil), ErrTypeParsing},
		{"storage", NewStorageError("save failed", nil), ErrTypeStorage},
		{"validation", NewAppValidationError("bad input"), ErrTypeValidation},
		{"not found", NewNotFoundError("Mapping"), ErrTypeNotFound},
		{"permission", NewPermissionError("denied"), ErrTypePermission},
		{"config", NewConfigError("bad port", nil), ErrTypeConfig},
		{"matching", NewMatchingError("no match", nil), ErrTypeMatching},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantType, tt.appErr.Type)
			assert.NotNil(t, tt.appErr.Context)
		})
	}
}

func TestNewNotFoundError_Message(t *testing.T) {
	appErr := NewNotFoundError("Survey")
	assert.Equal(t, "[NOT_FOUND] Survey not found", appErr.Error())
}
