package token

import (
	"crypto/ed25519"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
)

// JWTHeader is the fixed header of every token: {"alg":"EdDSA","typ":"JWT"}.
type JWTHeader struct {
	Algorithm string `json:"alg"`
	Type      string `json:"typ"`
}

// AlgorithmEdDSA is the only signature algorithm this module produces or
// accepts: Ed25519 over the raw signing input, per RFC 8037.
const AlgorithmEdDSA = "EdDSA"

func newEdDSAHeader() JWTHeader {
	return JWTHeader{
		Algorithm: AlgorithmEdDSA,
		Type:      "JWT",
	}
}

func encodeSection(section any) (string, error) {
	sectionJSON, err := json.Marshal(section)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrEncoding, err)
	}
	return base64.RawURLEncoding.EncodeToString(sectionJSON), nil
}

func decodeSection(str string, value any) error {
	raw, err := base64.RawURLEncoding.DecodeString(str)
	if err != nil {
		return fmt.Errorf("invalid base64 encoding: %v", err)
	}
	if err := json.Unmarshal(raw, value); err != nil {
		return fmt.Errorf("not valid JSON: %v", err)
	}
	return nil
}

// buildMessage forms the signing input. Verification reuses the transmitted
// sections byte-exactly rather than re-encoding decoded structures.
func buildMessage(encHeader string, encClaims string) string {
	return encHeader + "." + encClaims
}

func validateStructure(tokenStr string) (
	header string,
	claims string,
	signature string,
	err error,
) {
	parts := strings.Split(tokenStr, ".")
	if len(parts) != 3 {
		err = fmt.Errorf("expected three parts, found %d", len(parts))
		return
	}
	for _, part := range parts {
		if part == "" {
			err = fmt.Errorf("empty token part")
			return
		}
	}
	header = parts[0]
	claims = parts[1]
	signature = parts[2]
	return
}

func verifyHeader(header *JWTHeader) error {
	switch header.Type {
	case "JWT":
		break
	default:
		return fmt.Errorf("illegal type: %s", header.Type)
	}

	switch header.Algorithm {
	case AlgorithmEdDSA:
		break
	default:
		return fmt.Errorf("illegal algorithm: %s", header.Algorithm)
	}

	return nil
}

func signMessage(privateKey ed25519.PrivateKey, message string) (string, error) {
	if len(privateKey) != ed25519.PrivateKeySize {
		return "", fmt.Errorf(
			"%w: private key is %d bytes, expected %d",
			ErrInvalidKey, len(privateKey), ed25519.PrivateKeySize)
	}
	signature := ed25519.Sign(privateKey, []byte(message))
	return base64.RawURLEncoding.EncodeToString(signature), nil
}

func verifyMessage(
	publicKey ed25519.PublicKey,
	message string,
	encSignature string,
) error {
	if len(publicKey) != ed25519.PublicKeySize {
		return fmt.Errorf(
			"%w: public key is %d bytes, expected %d",
			ErrInvalidKey, len(publicKey), ed25519.PublicKeySize)
	}

	signature, err := base64.RawURLEncoding.DecodeString(encSignature)
	if err != nil {
		return fmt.Errorf("%w: invalid signature encoding: %v", ErrMalformedToken, err)
	}

	if !ed25519.Verify(publicKey, []byte(message), signature) {
		return ErrInvalidSignature
	}

	return nil
}

// DecodeUnverified splits a token and decodes its claims without checking
// the signature or expiration. It is unsafe for authorization decisions and
// exists only for pre-verification claim inspection, such as finding which
// device a token names.
func DecodeUnverified(tokenStr string) (Claims, error) {
	_, encClaims, _, err := validateStructure(tokenStr)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}

	claims := Claims{}
	if err := decodeSection(encClaims, &claims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}
	return claims, nil
}
