package client

import "git.sr.ht/~jakintosh/meshauth/pkg/token"

// Authenticator validates MQTT client credentials against the auth service.
// Broker plugins should depend on this interface rather than *Client to
// enable testing with mock implementations.
type Authenticator interface {
	Authenticate(clientID string, encToken string) (token.Claims, error)
}

// Verifier validates bare tokens, remotely or against the pinned issuer key.
type Verifier interface {
	VerifyToken(encToken string) (token.Claims, error)
	VerifyLocal(encToken string) (token.Claims, error)
}

// Compile-time checks that *Client implements the client interfaces.
var _ Authenticator = (*Client)(nil)
var _ Verifier = (*Client)(nil)
