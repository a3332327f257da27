package service

import (
	"crypto/ed25519"
	"fmt"
	"time"

	"git.sr.ht/~jakintosh/meshauth/pkg/token"
	"github.com/google/uuid"
)

// TokenSource supplies the server's signing identity. The signing package
// implements it with a hot-reloaded key file.
type TokenSource interface {
	Issuer() (*token.Issuer, error)
}

// IssueDeviceToken mints a token for a registered device using the server's
// signing key. This is the provisioning path for devices that can't sign
// their own tokens; self-signing devices never need it. The subject is
// forced to the device's hardware id, a fresh jti is stamped for the audit
// log, and the issuance is recorded before the token is returned.
func (s *Service) IssueDeviceToken(
	hardwareID string,
	lifetime time.Duration,
	extra token.Claims,
) (
	*token.IssuedToken,
	error,
) {
	if _, err := s.deviceKey(hardwareID); err != nil {
		return nil, err
	}

	issuer, err := s.identity.Issuer()
	if err != nil {
		return nil, fmt.Errorf("%w: no signing identity: %v", ErrInternal, err)
	}

	claims := make(token.Claims, len(extra)+2)
	for name, value := range extra {
		claims[name] = value
	}
	claims[token.ClaimSubject] = hardwareID
	claims[token.ClaimTokenID] = uuid.NewString()

	issued, err := issuer.Issue(lifetime, claims)
	if err != nil {
		return nil, fmt.Errorf("%w: couldn't issue token: %v", ErrInternal, err)
	}

	err = s.issuances.InsertIssuance(
		hardwareID,
		issued.Claims().TokenID(),
		issued.Expiration().Unix(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to record issuance: %v", ErrInternal, err)
	}

	return issued, nil
}

// IssuerKey returns the public half of the server's signing identity, for
// relying parties that want to pin it.
func (s *Service) IssuerKey() (ed25519.PublicKey, error) {
	issuer, err := s.identity.Issuer()
	if err != nil {
		return nil, fmt.Errorf("%w: no signing identity: %v", ErrInternal, err)
	}
	return issuer.PublicKey(), nil
}
