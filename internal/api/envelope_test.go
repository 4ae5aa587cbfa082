package api

import (
	"encoding/json/v2"
	"errors"
	"net/http"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/reachlyapp/reachly-server/internal/errors"
	"github.com/reachlyapp/reachly-server/internal/http/response"
)

func TestEnvelopeTransformer_AlwaysIncludesVersion(t *testing.T) {
	tests := []struct {
		name   string
		status string
		input  any
	}{
		{"success response", "200", map[string]string{"key": "value"}},
		{"created response", "201", map[string]string{"id": "123"}},
		{"no content response", "204", nil},
		{"bad request error", "400", errors.New("invalid input")},
		{"not found error", "404", errors.New("resource not found")},
		{"api error with details", "409", &APIError{
			Code:    "CONFLICT",
			Message: "slug is taken",
			Details: map[string]string{"slug": "amara"},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := EnvelopeTransformer(nil, tt.status, tt.input)
			require.NoError(t, err)

			raw, err := json.Marshal(result)
			require.NoError(t, err)
			var envelope map[string]any
			require.NoError(t, json.Unmarshal(raw, &envelope))

			require.Contains(t, envelope, "v")
			assert.Equal(t, float64(response.Version), envelope["v"])
		})
	}
}

func TestEnvelopeTransformer_SuccessResponse(t *testing.T) {
	data := map[string]string{"name": "Amara"}

	result, err := EnvelopeTransformer(nil, "200", data)
	require.NoError(t, err)

	env, ok := result.(response.Envelope)
	require.True(t, ok)
	assert.True(t, env.Success)
	assert.Equal(t, data, env.Data)
	assert.Empty(t, env.Error)
}

func TestEnvelopeTransformer_ErrorResponse(t *testing.T) {
	result, err := EnvelopeTransformer(nil, "404", errors.New("gone"))
	require.NoError(t, err)

	env, ok := result.(response.Envelope)
	require.True(t, ok)
	assert.False(t, env.Success)
	assert.Nil(t, env.Data)
	assert.Equal(t, "gone", env.Error)
	assert.Equal(t, "NOT_FOUND", env.Code)
}

func TestEnvelopeTransformer_APIError(t *testing.T) {
	apiErr := &APIError{Code: "VALIDATION", Message: "bad", Details: []string{"a", "b"}}

	result, err := EnvelopeTransformer(nil, "400", apiErr)
	require.NoError(t, err)

	env, ok := result.(response.Envelope)
	require.True(t, ok)
	assert.False(t, env.Success)
	assert.Equal(t, "VALIDATION", env.Code)
	assert.Equal(t, "bad", env.Error)
	assert.Equal(t, []string{"a", "b"}, env.Details)
}

func TestRegisterErrorHandler(t *testing.T) {
	RegisterErrorHandler()

	t.Run("domain error keeps its code", func(t *testing.T) {
		err := huma.NewError(http.StatusInternalServerError, "ignored", domainerrors.InsufficientFunds("no money"))
		assert.Equal(t, http.StatusPaymentRequired, err.GetStatus())
		apiErr := err.(*APIError)
		assert.Equal(t, "INSUFFICIENT_FUNDS", apiErr.Code)
		assert.Equal(t, "no money", apiErr.Message)
	})

	t.Run("schema violations become validation errors", func(t *testing.T) {
		err := huma.NewError(http.StatusUnprocessableEntity, "validation failed",
			&huma.ErrorDetail{Location: "body.email", Message: "expected required property email to be present"})
		assert.Equal(t, http.StatusBadRequest, err.GetStatus())
		apiErr := err.(*APIError)
		assert.Equal(t, "VALIDATION", apiErr.Code)
		assert.Equal(t, map[string]string{"body.email": "expected required property email to be present"}, apiErr.Details)
	})

	t.Run("plain status", func(t *testing.T) {
		err := huma.NewError(http.StatusTooManyRequests, "slow down")
		assert.Equal(t, http.StatusTooManyRequests, err.GetStatus())
		assert.Equal(t, "RATE_LIMITED", err.(*APIError).Code)
	})
}
