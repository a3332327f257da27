package token

import "errors"

var (
	// ErrInvalidKey indicates key material with the wrong length.
	ErrInvalidKey = errors.New("invalid key")
	// ErrMalformedToken indicates a token with the wrong part count or
	// unparseable base64/JSON content.
	ErrMalformedToken = errors.New("token malformed")
	// ErrInvalidSignature indicates the signature does not verify against
	// the verification key, or the header names a disallowed algorithm.
	ErrInvalidSignature = errors.New("token signature invalid")
	// ErrTokenExpired indicates a validly signed token past its exp claim.
	ErrTokenExpired = errors.New("token expired")
	// ErrMissingKey indicates no verification key was available, either
	// directly or through a resolver.
	ErrMissingKey = errors.New("no verification key available")
	// ErrEncoding indicates claims that can't be serialized to JSON.
	ErrEncoding = errors.New("claims not encodable")
)
