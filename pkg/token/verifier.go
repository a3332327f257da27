package token

import (
	"crypto/ed25519"
	"fmt"
	"time"
)

// KeyResolver supplies a verification key for a token subject. The service
// layer implements this over its device registry so tokens can be verified
// without the caller naming a key up front.
type KeyResolver interface {
	ResolveKey(subject string) (ed25519.PublicKey, error)
}

// Verifier checks token signatures and expiration. The verification key is
// either pinned at construction or resolved per-token from the subject
// claim. A Verifier holds no mutable state and is safe for concurrent use.
type Verifier struct {
	key      ed25519.PublicKey
	resolver KeyResolver
}

// NewVerifier returns a verifier pinned to one public key.
func NewVerifier(publicKey ed25519.PublicKey) *Verifier {
	return &Verifier{key: publicKey}
}

// NewResolvingVerifier returns a verifier that looks up the verification
// key from the token's sub claim through the resolver.
func NewResolvingVerifier(resolver KeyResolver) *Verifier {
	return &Verifier{resolver: resolver}
}

// Verify checks a token end to end and returns its claims. Checks run in a
// fixed order: structure, header, signature, then expiration. The expiration
// of an unverified payload is never trusted; exp is only consulted after the
// signature verifies. Failures surface as ErrMalformedToken,
// ErrInvalidSignature, ErrTokenExpired, or ErrMissingKey.
func (v *Verifier) Verify(tokenStr string) (Claims, error) {
	encHeader, encClaims, encSignature, err := validateStructure(tokenStr)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}

	header := JWTHeader{}
	if err := decodeSection(encHeader, &header); err != nil {
		return nil, fmt.Errorf("%w: header: %v", ErrMalformedToken, err)
	}
	if err := verifyHeader(&header); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	key, err := v.verificationKey(encClaims)
	if err != nil {
		return nil, err
	}

	message := buildMessage(encHeader, encClaims)
	if err := verifyMessage(key, message, encSignature); err != nil {
		return nil, err
	}

	claims := Claims{}
	if err := decodeSection(encClaims, &claims); err != nil {
		return nil, fmt.Errorf("%w: claims: %v", ErrMalformedToken, err)
	}

	if exp, present := claims.Expiration(); present {
		if time.Now().After(exp) {
			return nil, ErrTokenExpired
		}
	}

	return claims, nil
}

// verificationKey selects the key to verify against: the pinned key when one
// was given, otherwise a key resolved from the (not yet verified) subject
// claim. The resolved key is only used to check the signature, so a forged
// subject buys an attacker nothing beyond a failed verification.
func (v *Verifier) verificationKey(encClaims string) (ed25519.PublicKey, error) {
	if v.key != nil {
		return v.key, nil
	}
	if v.resolver == nil {
		return nil, ErrMissingKey
	}

	claims := Claims{}
	if err := decodeSection(encClaims, &claims); err != nil {
		return nil, fmt.Errorf("%w: claims: %v", ErrMalformedToken, err)
	}
	subject := claims.Subject()
	if subject == "" {
		return nil, fmt.Errorf("%w: token has no subject to resolve", ErrMissingKey)
	}

	key, err := v.resolver.ResolveKey(subject)
	if err != nil {
		return nil, fmt.Errorf("%w: no key for subject '%s': %v", ErrMissingKey, subject, err)
	}
	return key, nil
}
