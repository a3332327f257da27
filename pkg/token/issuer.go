package token

import (
	"crypto/ed25519"
	"time"

	"git.sr.ht/~jakintosh/meshauth/pkg/keys"
)

// DefaultLifetime is used when Issue is called with a zero lifetime.
const DefaultLifetime = time.Hour

// Issuer mints signed tokens from one key pair. It holds no other state
// and is safe for concurrent use.
type Issuer struct {
	pair keys.KeyPair
}

// NewIssuer validates the key pair's lengths and returns an issuer over it.
// Fails with ErrInvalidKey when either key is not its fixed size.
func NewIssuer(pair keys.KeyPair) (*Issuer, error) {
	if len(pair.Private) != ed25519.PrivateKeySize ||
		len(pair.Public) != ed25519.PublicKeySize {
		return nil, ErrInvalidKey
	}
	return &Issuer{pair: pair}, nil
}

// PublicKey returns the verification key matching this issuer's signing key.
func (issuer *Issuer) PublicKey() ed25519.PublicKey {
	return issuer.pair.Public
}

// IssuedToken is the result of a successful Issue call: the encoded token
// string plus the timing the issuer stamped into it.
type IssuedToken struct {
	encoded    string
	issuedAt   time.Time
	expiration time.Time
	claims     Claims
}

func (t *IssuedToken) Encoded() string       { return t.encoded }
func (t *IssuedToken) IssuedAt() time.Time   { return t.issuedAt }
func (t *IssuedToken) Expiration() time.Time { return t.expiration }
func (t *IssuedToken) Claims() Claims        { return t.claims }

// Issue builds and signs a token carrying the given claims plus reserved
// iat and exp fields. Caller-supplied iat/exp values are overwritten by the
// computed ones; reserved fields always win. A negative lifetime produces an
// already-expired token, which is occasionally useful in tests; a zero
// lifetime means DefaultLifetime.
func (issuer *Issuer) Issue(
	lifetime time.Duration,
	claims Claims,
) (
	*IssuedToken,
	error,
) {
	if lifetime == 0 {
		lifetime = DefaultLifetime
	}
	now := time.Now()
	exp := now.Add(lifetime)

	stamped := make(Claims, len(claims)+2)
	for name, value := range claims {
		stamped[name] = value
	}
	stamped[ClaimIssuedAt] = now.Unix()
	stamped[ClaimExpiration] = exp.Unix()

	encHeader, err := encodeSection(newEdDSAHeader())
	if err != nil {
		return nil, err
	}
	encClaims, err := encodeSection(stamped)
	if err != nil {
		return nil, err
	}

	message := buildMessage(encHeader, encClaims)
	encSignature, err := signMessage(issuer.pair.Private, message)
	if err != nil {
		return nil, err
	}

	return &IssuedToken{
		encoded:    message + "." + encSignature,
		issuedAt:   time.Unix(now.Unix(), 0),
		expiration: time.Unix(exp.Unix(), 0),
		claims:     stamped,
	}, nil
}
