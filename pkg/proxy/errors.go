package proxy

import (
	"errors"
	"net/http"

	"awqat-hq/gateway/pkg/proxy/types"
	"awqat-hq/gateway/pkg/session"
	"awqat-hq/gateway/pkg/upstream"
)

// Failure kinds used in logs.
const (
	KindRequest   = "request"
	KindAuth      = "auth"
	KindStatus    = "upstream_status"
	KindTransport = "transport"
	KindDecode    = "decode"
	KindUnknown   = "unknown"
)

// Classify names the failure behind err for logs.
func Classify(err error) string {
	var (
		reqErr       *RequestError
		statusErr    *upstream.StatusError
		transportErr *upstream.TransportError
		decodeErr    *upstream.DecodeError
	)

	switch {
	case errors.As(err, &reqErr):
		return KindRequest
	case errors.As(err, &statusErr):
		return KindStatus
	case session.IsAuthError(err):
		return KindAuth
	case errors.As(err, &transportErr):
		return KindTransport
	case errors.As(err, &decodeErr):
		return KindDecode
	default:
		return KindUnknown
	}
}

// HandleError maps a route failure to its status code and client body.
// Missing parameters are 400; every upstream-side failure is 502 with
// message, carrying upstream diagnostics only for status failures.
func HandleError(err error, message string) (int, *types.ErrorResponse) {
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return http.StatusBadRequest, reqErr.ToErrorResponse()
	}
	return http.StatusBadGateway, types.NewUpstreamError(message, err)
}
