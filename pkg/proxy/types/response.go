package types

import "time"

// RootResponse is the liveness body served at "/".
type RootResponse struct {
	OK      bool   `json:"ok"`
	Service string `json:"service"`
	TS      string `json:"ts"`
}

// NewRootResponse stamps the liveness body with now in UTC, millisecond
// precision.
func NewRootResponse(service string, now time.Time) RootResponse {
	return RootResponse{
		OK:      true,
		Service: service,
		TS:      now.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
	}
}

// DebugEnvResponse reports which required settings are present. It never
// carries the values themselves.
type DebugEnvResponse struct {
	HasEmail         bool `json:"hasEmail"`
	HasPassword      bool `json:"hasPassword"`
	AllowedOriginSet bool `json:"allowedOriginSet"`
}
