package errors

import (
	"fmt"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructors_KeepMessageVerbatim(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		code Code
	}{
		{"NotFound", NotFound("100% missing"), CodeNotFound},
		{"AlreadyExists", AlreadyExists("100% taken"), CodeAlreadyExists},
		{"Unauthorized", Unauthorized("100% denied"), CodeUnauthorized},
		{"Forbidden", Forbidden("100% denied"), CodeForbidden},
		{"Validation", Validation("100% done"), CodeValidation},
		{"Conflict", Conflict("100% busy"), CodeConflict},
		{"InsufficientFunds", InsufficientFunds("100% short"), CodeInsufficientFunds},
		{"RateLimited", RateLimited("100% used"), CodeRateLimited},
		{"Internal", Internal("100% broken"), CodeInternal},
		{"AlreadyConfigured", AlreadyConfigured("100% set"), CodeAlreadyConfigured},
		{"InvalidCredentials", InvalidCredentials("100% wrong"), CodeInvalidCredentials},
		{"TokenExpired", TokenExpired("100% stale"), CodeTokenExpired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Contains(t, tt.err.Message, "100% ")
			assert.NotContains(t, tt.err.Message, "%!")
		})
	}
	assert.Equal(t, "100% done", Validation("100% done").Error())
}

func TestFormattedConstructors(t *testing.T) {
	assert.Equal(t, "influencer inf_1 not found", NotFoundf("influencer %s not found", "inf_1").Message)
	assert.Equal(t, "rate 12.5 out of range", Validationf("rate %.1f out of range", 12.5).Message)
	assert.Equal(t, CodeConflict, Conflictf("order %d", 7).Code)
}

func TestError_IsMatchesCode(t *testing.T) {
	err := fmt.Errorf("load: %w", NotFound("influencer not found"))

	assert.True(t, Is(err, ErrNotFound))
	assert.False(t, Is(err, ErrConflict))
	assert.Equal(t, CodeNotFound, CodeOf(err))
	assert.Equal(t, CodeInternal, CodeOf(io.EOF))
}

func TestError_WrapAndDetails(t *testing.T) {
	err := Wrap(io.ErrUnexpectedEOF, CodeInternal, "read roster")
	assert.Equal(t, "read roster: unexpected EOF", err.Error())
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)

	detailed := Validation("bad criteria").WithDetails(map[string]string{"engagement": "min must not be negative"})
	var de *Error
	require.ErrorAs(t, detailed, &de)
	assert.Equal(t, map[string]string{"engagement": "min must not be negative"}, de.Details)
	assert.Equal(t, http.StatusBadRequest, de.HTTPStatus())
}
