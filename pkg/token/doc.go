// Package token issues and verifies compact, signed, time-limited bearer
// tokens for authenticating mesh devices against an MQTT broker.
//
// Tokens use the familiar three-part JWT wire format,
//
//	base64url(header) + "." + base64url(claims) + "." + base64url(signature)
//
// with a fixed header of {"alg":"EdDSA","typ":"JWT"}. Signatures are Ed25519
// over the ASCII signing input (the first two parts joined by a dot), which
// matches the 32-byte public / 64-byte expanded private key format mesh
// devices already carry. There is no algorithm negotiation: a token naming
// any other algorithm fails verification.
//
// # Issuing Tokens
//
// An Issuer wraps one key pair, typically the device's own:
//
//	pair, err := keys.NewKeyPair(publicKey, privateKey)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	issuer, err := token.NewIssuer(pair)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	issued, err := issuer.Issue(time.Hour, token.Claims{
//	    "sub": "device-123",
//	    "aud": "mqtt.example.com",
//	})
//	tokenString := issued.Encoded()
//
// Issue stamps iat and exp into the claims; caller-supplied values for those
// fields are overwritten, never merged. Passing a zero lifetime applies
// DefaultLifetime (one hour).
//
// # Verifying Tokens
//
// A relying party that knows the device's public key pins it:
//
//	claims, err := token.NewVerifier(publicKey).Verify(tokenString)
//
// When the key isn't known up front, a KeyResolver can supply it from the
// token's sub claim (the meshauth service resolves against its device
// registry this way):
//
//	claims, err := token.NewResolvingVerifier(registry).Verify(tokenString)
//
// Verification is strict about ordering: the signature is checked before the
// exp claim is ever consulted, so an attacker can't influence the expiry
// decision with an unverified payload.
//
// # Error Handling
//
// Failures are distinct sentinel errors, matched with errors.Is:
//
//	claims, err := verifier.Verify(tokenString)
//	switch {
//	case errors.Is(err, token.ErrMalformedToken):
//	    // wrong part count, bad base64, or bad JSON
//	case errors.Is(err, token.ErrInvalidSignature):
//	    // signature mismatch or disallowed algorithm
//	case errors.Is(err, token.ErrTokenExpired):
//	    // valid signature, past exp
//	case errors.Is(err, token.ErrMissingKey):
//	    // no pinned key and nothing resolvable
//	}
//
// DecodeUnverified extracts claims without any signature or expiry check.
// It exists for pre-inspection (routing, logging) and must never gate an
// authorization decision.
//
// All operations are synchronous and stateless; issuers and verifiers may
// be shared freely across goroutines.
package token
