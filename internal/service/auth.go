package service

import (
	"errors"
	"fmt"

	"git.sr.ht/~jakintosh/meshauth/pkg/token"
)

// AuthenticateDevice validates a bearer token presented by an MQTT client.
// The token must verify against the key registered for clientID, or against
// the server's own signing key for centrally issued tokens, and its subject
// must match the connecting client.
func (s *Service) AuthenticateDevice(
	clientID string,
	encToken string,
) (
	token.Claims,
	error,
) {
	deviceKey, err := s.deviceKey(clientID)
	if err != nil {
		return nil, err
	}

	claims, err := token.NewVerifier(deviceKey).Verify(encToken)
	if errors.Is(err, token.ErrInvalidSignature) {
		claims, err = s.verifyCentrallyIssued(encToken)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}

	if subject := claims.Subject(); subject != clientID {
		return nil, fmt.Errorf(
			"%w: token subject '%s' does not match client '%s'",
			ErrTokenInvalid, subject, clientID)
	}

	return claims, nil
}

// VerifyToken validates a token without a connecting client id, resolving
// the verification key from the token's own subject claim.
func (s *Service) VerifyToken(encToken string) (token.Claims, error) {
	claims, err := token.NewResolvingVerifier(s).Verify(encToken)
	if errors.Is(err, token.ErrInvalidSignature) || errors.Is(err, token.ErrMissingKey) {
		claims, err = s.verifyCentrallyIssued(encToken)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	return claims, nil
}

// verifyCentrallyIssued retries verification against the server's signing
// identity, which covers tokens minted by IssueDeviceToken rather than by
// the device itself.
func (s *Service) verifyCentrallyIssued(encToken string) (token.Claims, error) {
	issuer, err := s.identity.Issuer()
	if err != nil {
		return nil, fmt.Errorf("%w: no signing identity: %v", ErrInternal, err)
	}
	return token.NewVerifier(issuer.PublicKey()).Verify(encToken)
}
