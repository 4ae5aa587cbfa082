package api

import (
	"strconv"

	"github.com/danielgtaylor/huma/v2"

	"github.com/reachlyapp/reachly-server/internal/http/response"
)

// EnvelopeTransformer wraps every huma response body in the response
// envelope. Errors become {"v":1,"success":false,"error":...,"code":...};
// everything else {"v":1,"success":true,"data":...}.
func EnvelopeTransformer(_ huma.Context, status string, v any) (any, error) {
	switch body := v.(type) {
	case *APIError:
		return response.Failure(body.Code, body.Message, body.Details), nil
	case response.Envelope:
		return body, nil
	}

	code, _ := strconv.Atoi(status)
	if err, ok := v.(error); ok && code >= 400 {
		return response.Failure(string(response.CodeForStatus(code)), err.Error(), nil), nil
	}
	return response.OK(v), nil
}
