package proxy

import (
	"fmt"
	"net/http"

	"awqat-hq/gateway/pkg/proxy/types"
)

// RequestError is returned when a request is missing something a route
// needs. It maps to 400.
type RequestError struct {
	Param string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("missing query param: %s", e.Param)
}

// ToErrorResponse converts the error to the client body.
func (e *RequestError) ToErrorResponse() *types.ErrorResponse {
	return types.NewMissingParamError(e.Param)
}

// RequireQueryParam returns the named query parameter. An absent or empty
// parameter is a *RequestError.
func RequireQueryParam(r *http.Request, name string) (string, error) {
	value := r.URL.Query().Get(name)
	if value == "" {
		return "", &RequestError{Param: name}
	}
	return value, nil
}
