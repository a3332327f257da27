package token

import (
	"encoding/json"
	"time"
)

// Reserved claim names. Subject identifies the device, TokenID carries a
// unique id for issued-token auditing, and IssuedAt/Expiration are stamped
// by the Issuer on every token.
const (
	ClaimSubject    = "sub"
	ClaimIssuedAt   = "iat"
	ClaimExpiration = "exp"
	ClaimTokenID    = "jti"
)

// Claims is the open payload of a token: caller-provided key/value data
// plus the reserved timing fields. Values must be JSON-serializable.
type Claims map[string]any

// Subject returns the sub claim, or "" if absent or not a string.
func (c Claims) Subject() string {
	sub, _ := c[ClaimSubject].(string)
	return sub
}

// TokenID returns the jti claim, or "" if absent or not a string.
func (c Claims) TokenID() string {
	jti, _ := c[ClaimTokenID].(string)
	return jti
}

// IssuedAt returns the iat claim as a time, and whether it was present.
func (c Claims) IssuedAt() (time.Time, bool) {
	return c.unixTime(ClaimIssuedAt)
}

// Expiration returns the exp claim as a time, and whether it was present.
func (c Claims) Expiration() (time.Time, bool) {
	return c.unixTime(ClaimExpiration)
}

// unixTime reads a unix-seconds claim. Freshly built claims hold int64;
// claims that round-tripped through encoding/json hold float64.
func (c Claims) unixTime(key string) (time.Time, bool) {
	raw, exists := c[key]
	if !exists {
		return time.Time{}, false
	}

	switch v := raw.(type) {
	case int64:
		return time.Unix(v, 0), true
	case float64:
		return time.Unix(int64(v), 0), true
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return time.Time{}, false
		}
		return time.Unix(int64(f), 0), true
	default:
		return time.Time{}, false
	}
}
