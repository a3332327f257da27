package token_test

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"git.sr.ht/~jakintosh/meshauth/pkg/keys"
	"git.sr.ht/~jakintosh/meshauth/pkg/token"
)

var (
	sharedTestPair     keys.KeyPair
	sharedTestPairOnce sync.Once
)

// getSharedTestPair returns a shared key pair for tests that don't need key
// isolation. This avoids generating a new key for each test.
func getSharedTestPair(t *testing.T) keys.KeyPair {
	t.Helper()
	sharedTestPairOnce.Do(func() {
		pair, err := generateTestPair()
		if err != nil {
			panic("failed to generate shared test pair: " + err.Error())
		}
		sharedTestPair = pair
	})
	return sharedTestPair
}

func generateTestPair() (keys.KeyPair, error) {
	public, private, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return keys.KeyPair{}, err
	}
	return keys.NewKeyPair(public, private)
}

func issueTestToken(
	t *testing.T,
	pair keys.KeyPair,
	lifetime time.Duration,
	claims token.Claims,
) *token.IssuedToken {
	t.Helper()
	issuer, err := token.NewIssuer(pair)
	if err != nil {
		t.Fatalf("NewIssuer failed: %v", err)
	}
	issued, err := issuer.Issue(lifetime, claims)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	return issued
}

func TestIssueVerify_RoundTrip(t *testing.T) {
	t.Parallel()
	pair := getSharedTestPair(t)

	issued := issueTestToken(t, pair, time.Hour, token.Claims{
		"sub": "device-1",
		"aud": "mqtt.example.com",
	})

	claims, err := token.NewVerifier(pair.Public).Verify(issued.Encoded())
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}

	if claims.Subject() != "device-1" {
		t.Errorf("sub = %v, want device-1", claims.Subject())
	}
	if claims["aud"] != "mqtt.example.com" {
		t.Errorf("aud = %v, want mqtt.example.com", claims["aud"])
	}
	if _, present := claims.IssuedAt(); !present {
		t.Error("verified claims missing iat")
	}
	if _, present := claims.Expiration(); !present {
		t.Error("verified claims missing exp")
	}
}

func TestIssue_PayloadShape(t *testing.T) {
	t.Parallel()
	pair := getSharedTestPair(t)

	// the encoded payload carries exactly the caller claims plus iat/exp
	issued := issueTestToken(t, pair, time.Second*60, token.Claims{"sub": "device-1"})

	parts := strings.Split(issued.Encoded(), ".")
	if len(parts) != 3 {
		t.Fatalf("token has %d parts, want 3", len(parts))
	}

	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		t.Fatalf("payload isn't valid base64url: %v", err)
	}
	decoded := map[string]any{}
	if err := json.Unmarshal(payload, &decoded); err != nil {
		t.Fatalf("payload isn't valid JSON: %v", err)
	}

	if len(decoded) != 3 {
		t.Errorf("payload has %d fields, want 3 (sub, iat, exp): %v", len(decoded), decoded)
	}
	if decoded["sub"] != "device-1" {
		t.Errorf("sub = %v, want device-1", decoded["sub"])
	}

	iat, iatOK := decoded["iat"].(float64)
	exp, expOK := decoded["exp"].(float64)
	if !iatOK || !expOK {
		t.Fatalf("iat/exp aren't numbers: %v %v", decoded["iat"], decoded["exp"])
	}
	if exp-iat != 60 {
		t.Errorf("exp - iat = %v, want 60", exp-iat)
	}
}

func TestIssue_HeaderShape(t *testing.T) {
	t.Parallel()
	pair := getSharedTestPair(t)

	issued := issueTestToken(t, pair, time.Hour, nil)

	parts := strings.Split(issued.Encoded(), ".")
	header, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		t.Fatalf("header isn't valid base64url: %v", err)
	}

	decoded := map[string]any{}
	if err := json.Unmarshal(header, &decoded); err != nil {
		t.Fatalf("header isn't valid JSON: %v", err)
	}
	if decoded["alg"] != "EdDSA" {
		t.Errorf("alg = %v, want EdDSA", decoded["alg"])
	}
	if decoded["typ"] != "JWT" {
		t.Errorf("typ = %v, want JWT", decoded["typ"])
	}
}

func TestIssue_ReservedClaimsWin(t *testing.T) {
	t.Parallel()
	pair := getSharedTestPair(t)

	// caller-supplied iat/exp are overwritten by computed values
	issued := issueTestToken(t, pair, time.Hour, token.Claims{
		"iat": int64(1),
		"exp": int64(2),
	})

	iat, _ := issued.Claims().IssuedAt()
	exp, _ := issued.Claims().Expiration()
	if iat.Unix() == 1 {
		t.Error("caller-supplied iat survived, expected overwrite")
	}
	if exp.Unix() == 2 {
		t.Error("caller-supplied exp survived, expected overwrite")
	}
	if got := exp.Sub(iat); got != time.Hour {
		t.Errorf("exp - iat = %v, want 1h", got)
	}
}

func TestIssue_DefaultLifetime(t *testing.T) {
	t.Parallel()
	pair := getSharedTestPair(t)

	issued := issueTestToken(t, pair, 0, nil)

	iat, _ := issued.Claims().IssuedAt()
	exp, _ := issued.Claims().Expiration()
	if got := exp.Sub(iat); got != token.DefaultLifetime {
		t.Errorf("exp - iat = %v, want %v", got, token.DefaultLifetime)
	}
}

func TestIssue_UnserializableClaims(t *testing.T) {
	t.Parallel()
	pair := getSharedTestPair(t)

	issuer, err := token.NewIssuer(pair)
	if err != nil {
		t.Fatalf("NewIssuer failed: %v", err)
	}
	_, err = issuer.Issue(time.Hour, token.Claims{"bad": make(chan int)})
	if !errors.Is(err, token.ErrEncoding) {
		t.Errorf("expected ErrEncoding, got %v", err)
	}
}

func TestNewIssuer_InvalidKeys(t *testing.T) {
	t.Parallel()

	_, err := token.NewIssuer(keys.KeyPair{
		Public:  make(ed25519.PublicKey, 16),
		Private: make(ed25519.PrivateKey, 64),
	})
	if !errors.Is(err, token.ErrInvalidKey) {
		t.Errorf("expected ErrInvalidKey, got %v", err)
	}

	_, err = token.NewIssuer(keys.KeyPair{})
	if !errors.Is(err, token.ErrInvalidKey) {
		t.Errorf("expected ErrInvalidKey for empty pair, got %v", err)
	}
}

func TestVerify_TamperedSignature(t *testing.T) {
	t.Parallel()
	pair := getSharedTestPair(t)

	issued := issueTestToken(t, pair, time.Hour, token.Claims{"sub": "device-1"})
	parts := strings.Split(issued.Encoded(), ".")

	signature, err := base64.RawURLEncoding.DecodeString(parts[2])
	if err != nil {
		t.Fatalf("signature isn't valid base64url: %v", err)
	}

	// flipping any single bit of the signature must fail verification
	for _, bit := range []int{0, 7, 100, len(signature)*8 - 1} {
		tampered := make([]byte, len(signature))
		copy(tampered, signature)
		tampered[bit/8] ^= 1 << (bit % 8)

		forged := parts[0] + "." + parts[1] + "." +
			base64.RawURLEncoding.EncodeToString(tampered)

		_, err := token.NewVerifier(pair.Public).Verify(forged)
		if !errors.Is(err, token.ErrInvalidSignature) {
			t.Errorf("bit %d: expected ErrInvalidSignature, got %v", bit, err)
		}
	}
}

func TestVerify_TamperedPayload(t *testing.T) {
	t.Parallel()
	pair := getSharedTestPair(t)

	issued := issueTestToken(t, pair, time.Hour, token.Claims{"sub": "device-1"})
	parts := strings.Split(issued.Encoded(), ".")

	// re-encode a modified payload under the original signature
	forgedPayload := base64.RawURLEncoding.EncodeToString(
		[]byte(`{"sub":"device-2"}`))
	forged := parts[0] + "." + forgedPayload + "." + parts[2]

	_, err := token.NewVerifier(pair.Public).Verify(forged)
	if !errors.Is(err, token.ErrInvalidSignature) {
		t.Errorf("expected ErrInvalidSignature, got %v", err)
	}
}

func TestVerify_WrongKey(t *testing.T) {
	t.Parallel()
	pair := getSharedTestPair(t)

	otherPair, err := generateTestPair()
	if err != nil {
		t.Fatalf("failed to generate key: %v", err)
	}

	issued := issueTestToken(t, pair, time.Hour, token.Claims{"sub": "device-1"})

	_, err = token.NewVerifier(otherPair.Public).Verify(issued.Encoded())
	if !errors.Is(err, token.ErrInvalidSignature) {
		t.Errorf("expected ErrInvalidSignature, got %v", err)
	}
}

func TestVerify_Expired(t *testing.T) {
	t.Parallel()
	pair := getSharedTestPair(t)

	// negative lifetime mints an already-expired token with a valid signature
	issued := issueTestToken(t, pair, -time.Second, token.Claims{"sub": "device-1"})

	_, err := token.NewVerifier(pair.Public).Verify(issued.Encoded())
	if !errors.Is(err, token.ErrTokenExpired) {
		t.Errorf("expected ErrTokenExpired, got %v", err)
	}
}

func TestVerify_Malformed(t *testing.T) {
	t.Parallel()
	pair := getSharedTestPair(t)

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"one part", "abc"},
		{"two parts", "a.b"},
		{"four parts", "a.b.c.d"},
		{"empty parts", ".."},
		{"invalid base64 header", "!!!.e30.c2ln"},
		{"header not json", "bm90LWpzb24.e30.c2ln"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := token.NewVerifier(pair.Public).Verify(tt.token)
			if !errors.Is(err, token.ErrMalformedToken) {
				t.Errorf("expected ErrMalformedToken, got %v", err)
			}
		})
	}
}

func TestVerify_DisallowedAlgorithm(t *testing.T) {
	t.Parallel()
	pair := getSharedTestPair(t)

	// hand-build a token whose header names an HMAC algorithm
	header := base64.RawURLEncoding.EncodeToString(
		[]byte(`{"alg":"HS256","typ":"JWT"}`))
	payload := base64.RawURLEncoding.EncodeToString(
		[]byte(`{"sub":"device-1"}`))
	forged := header + "." + payload + "." +
		base64.RawURLEncoding.EncodeToString([]byte("sig"))

	_, err := token.NewVerifier(pair.Public).Verify(forged)
	if !errors.Is(err, token.ErrInvalidSignature) {
		t.Errorf("expected ErrInvalidSignature, got %v", err)
	}
}

func TestIssuedToken_Accessors(t *testing.T) {
	t.Parallel()
	pair := getSharedTestPair(t)

	issued := issueTestToken(t, pair, time.Hour, token.Claims{"sub": "device-1"})

	if issued.Encoded() == "" {
		t.Error("Encoded() is empty")
	}
	if !issued.Expiration().After(issued.IssuedAt()) {
		t.Error("Expiration() should be after IssuedAt()")
	}
	if issued.Claims().Subject() != "device-1" {
		t.Errorf("Claims().Subject() = %v, want device-1", issued.Claims().Subject())
	}
}
