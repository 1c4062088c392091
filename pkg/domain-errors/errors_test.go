package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	err := New(CodeValidation, "missing required field: name")
	assert.Equal(t, "missing required field: name", err.Message)
	assert.Equal(t, CodeValidation, err.Code)
	assert.Contains(t, err.Error(), "missing required field: name")
}

func TestNewf(t *testing.T) {
	err := Newf(CodeUnauthorized, "unknown client id %s", "acme")
	assert.Contains(t, err.Error(), "unknown client id acme")
}

func TestWrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(cause, CodeInternal, "failed to load recent records")

	require.ErrorIs(t, err, cause)
	assert.True(t, HasCode(err, CodeInternal))
	assert.Contains(t, err.Error(), "failed to load recent records")
}

func TestHasCode(t *testing.T) {
	err := New(CodeBadGateway, "delivery failed")

	assert.True(t, HasCode(err, CodeBadGateway))
	assert.False(t, HasCode(err, CodeValidation))
	assert.False(t, HasCode(nil, CodeBadGateway))
	assert.False(t, HasCode(errors.New("plain"), CodeBadGateway))
}

func TestHasCodeThroughWrapping(t *testing.T) {
	err := fmt.Errorf("handler: %w", New(CodeNotFound, "no tenant"))
	assert.True(t, HasCode(err, CodeNotFound))
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, CodeConflict, CodeOf(New(CodeConflict, "duplicate")))
	assert.Equal(t, CodeInternal, CodeOf(errors.New("plain")))
}

func TestToHTTPStatus(t *testing.T) {
	cases := map[Code]int{
		CodeValidation:         http.StatusBadRequest,
		CodeBadRequest:         http.StatusBadRequest,
		CodeInvalidInput:       http.StatusBadRequest,
		CodeUnauthorized:       http.StatusUnauthorized,
		CodeNotFound:           http.StatusNotFound,
		CodeConflict:           http.StatusConflict,
		CodeBadGateway:         http.StatusBadGateway,
		CodeInternal:           http.StatusInternalServerError,
		CodeInvariantViolation: http.StatusInternalServerError,
	}
	for code, want := range cases {
		assert.Equal(t, want, ToHTTPStatus(code), "code %s", code)
	}
}
