package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorType_HTTPStatus(t *testing.T) {
	tests := []struct {
		errType ErrorType
		want    int
	}{
		{ErrTypeValidation, http.StatusBadRequest},
		{ErrTypeNotFound, http.StatusNotFound},
		{ErrTypeParsing, http.StatusUnprocessableEntity},
		{ErrTypeSchema, http.StatusUnprocessableEntity},
		{ErrTypeUnsupported, http.StatusUnsupportedMediaType},
		{ErrTypeTooLarge, http.StatusRequestEntityTooLarge},
		{ErrTypeStorage, http.StatusInternalServerError},
		{ErrTypeConfig, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.errType), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.errType.HTTPStatus())
		})
	}
}

func TestAppError(t *testing.T) {
	cause := errors.New("zip: not a valid zip file")

	tests := []struct {
		name     string
		err      *AppError
		wantType ErrorType
		wantMsg  string
	}{
		{
			name:     "parsing with cause",
			err:      NewParsingError("failed to open workbook", cause),
			wantType: ErrTypeParsing,
			wantMsg:  "[PARSING] failed to open workbook: zip: not a valid zip file",
		},
		{
			name:     "not found",
			err:      NewNotFoundError("dataset abc"),
			wantType: ErrTypeNotFound,
			wantMsg:  "[NOT_FOUND] dataset abc not found",
		},
		{
			name:     "validation",
			err:      NewAppValidationError("bad criteria"),
			wantType: ErrTypeValidation,
			wantMsg:  "[VALIDATION] bad criteria",
		},
		{
			name:     "unsupported",
			err:      NewUnsupportedError("unsupported file type .pdf", nil),
			wantType: ErrTypeUnsupported,
			wantMsg:  "[UNSUPPORTED] unsupported file type .pdf",
		},
		{
			name:     "storage",
			err:      NewStorageError("write export", cause),
			wantType: ErrTypeStorage,
			wantMsg:  "[STORAGE] write export: zip: not a valid zip file",
		},
		{
			name:     "config",
			err:      NewConfigError("load config", nil),
			wantType: ErrTypeConfig,
			wantMsg:  "[CONFIG] load config",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantType, tt.err.Type)
			assert.Equal(t, tt.wantMsg, tt.err.Error())
			assert.NotNil(t, tt.err.Context)
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("root")
	wrapped := fmt.Errorf("load: %w", NewParsingError("open", cause))

	assert.ErrorIs(t, wrapped, cause)

	var appErr *AppError
	require.True(t, errors.As(wrapped, &appErr))
	assert.Equal(t, ErrTypeParsing, appErr.Type)
}

func TestNewSchemaError(t *testing.T) {
	err := NewSchemaError("dataset rejected", []string{"Offer Yield"}, errors.New("missing required columns: Offer Yield"))

	assert.Equal(t, ErrTypeSchema, err.Type)
	assert.Equal(t, []string{"Offer Yield"}, err.Context["missing_columns"])

	noColumns := NewSchemaError("sheet missing", nil, nil)
	_, ok := noColumns.Context["missing_columns"]
	assert.False(t, ok)
}

func TestNewTooLargeError(t *testing.T) {
	err := NewTooLargeError(1024)
	assert.Equal(t, ErrTypeTooLarge, err.Type)
	assert.Equal(t, int64(1024), err.Context["max_bytes"])
	assert.Contains(t, err.Error(), "1024 bytes")
}

func TestAppError_WithContextOnNilMap(t *testing.T) {
	err := &AppError{Type: ErrTypeValidation, Message: "x"}
	err.WithContext("field", "coupon").WithContext("value", 3)

	assert.Equal(t, "coupon", err.Context["field"])
	assert.Equal(t, 3, err.Context["value"])
}
