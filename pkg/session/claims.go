package session

import (
	"encoding/base64"
	"encoding/json"
	"strings"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwt"
)

// TokenExpiry returns the "exp" claim of a bearer token. Only the payload
// segment is decoded; the header and signature are ignored because the
// gateway only needs to know when the upstream will stop accepting the
// token. Any decode failure, or a token without "exp", yields the zero time,
// which the manager treats as already expired.
func TokenExpiry(token string) time.Time {
	parts := strings.Split(token, ".")
	if len(parts) < 2 {
		return time.Time{}
	}

	payload, ok := decodeSegment(parts[1])
	if !ok {
		return time.Time{}
	}

	claims := jwt.New()
	if err := json.Unmarshal(payload, claims); err != nil {
		return time.Time{}
	}

	return claims.Expiration()
}

// decodeSegment accepts base64url with or without padding, and standard
// base64 as some issuers emit it.
func decodeSegment(seg string) ([]byte, bool) {
	for _, enc := range []*base64.Encoding{
		base64.RawURLEncoding,
		base64.URLEncoding,
		base64.RawStdEncoding,
		base64.StdEncoding,
	} {
		if b, err := enc.DecodeString(seg); err == nil {
			return b, true
		}
	}
	return nil, false
}
