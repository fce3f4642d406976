package handlers

import (
	"net/http"
	"time"

	"awqat-hq/gateway/pkg/proxy"
	"awqat-hq/gateway/pkg/proxy/types"
)

// ServiceName is reported by the root route.
const ServiceName = "awqat-proxy"

// InfoHandler serves the liveness and configuration-presence routes.
type InfoHandler struct {
	hasEmail         bool
	hasPassword      bool
	allowedOriginSet bool
	now              func() time.Time
}

// NewInfoHandler records which settings are present. The values themselves
// are never kept.
func NewInfoHandler(email, password, allowedOrigin string) *InfoHandler {
	return &InfoHandler{
		hasEmail:         email != "",
		hasPassword:      password != "",
		allowedOriginSet: allowedOrigin != "",
		now:              time.Now,
	}
}

// Register adds "/" and "/api/debug/env" to mux.
func (h *InfoHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", h.Root)
	mux.HandleFunc("GET /api/debug/env", h.DebugEnv)
}

// Root reports that the process is up.
func (h *InfoHandler) Root(w http.ResponseWriter, r *http.Request) {
	_ = proxy.WriteJSONResponse(w, http.StatusOK, types.NewRootResponse(ServiceName, h.now()))
}

// DebugEnv reports which required settings are present.
func (h *InfoHandler) DebugEnv(w http.ResponseWriter, r *http.Request) {
	_ = proxy.WriteJSONResponse(w, http.StatusOK, types.DebugEnvResponse{
		HasEmail:         h.hasEmail,
		HasPassword:      h.hasPassword,
		AllowedOriginSet: h.allowedOriginSet,
	})
}
