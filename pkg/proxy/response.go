package proxy

import (
	"encoding/json"
	"fmt"
	"net/http"

	"awqat-hq/gateway/pkg/proxy/types"
)

// WriteJSONResponse encodes data as the JSON response body.
func WriteJSONResponse(w http.ResponseWriter, statusCode int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		return fmt.Errorf("failed to encode JSON response: %w", err)
	}

	return nil
}

// WriteRawJSON writes an already-encoded JSON body, such as an upstream
// payload, without re-encoding it.
func WriteRawJSON(w http.ResponseWriter, statusCode int, body json.RawMessage) error {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(statusCode)

	if _, err := w.Write(body); err != nil {
		return fmt.Errorf("failed to write response body: %w", err)
	}
	return nil
}

// WriteErrorResponse writes errResp with the given status.
func WriteErrorResponse(w http.ResponseWriter, statusCode int, errResp *types.ErrorResponse) error {
	return WriteJSONResponse(w, statusCode, errResp)
}
