// Package keys handles loading and validation of Ed25519 key material in the
// hex format used by mesh devices: 32-byte public keys (64 hex characters)
// and 64-byte expanded private keys (128 hex characters, seed followed by
// the public half).
package keys

import (
	"crypto/ed25519"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strings"
)

var (
	ErrFileNotFound  = errors.New("key file not found")
	ErrInvalidFormat = errors.New("invalid key format")
)

const (
	// PublicKeyHexLen is the expected hex character count of a public key.
	PublicKeyHexLen = 2 * ed25519.PublicKeySize
	// PrivateKeyHexLen is the expected hex character count of a private key.
	PrivateKeyHexLen = 2 * ed25519.PrivateKeySize
)

// KeyPair holds a device's Ed25519 key material. The keys are owned by the
// caller and are never mutated by this module.
type KeyPair struct {
	Public  ed25519.PublicKey
	Private ed25519.PrivateKey
}

// NewKeyPair validates key lengths and returns the pair. It fails with
// ErrInvalidFormat when either key is not its fixed size.
func NewKeyPair(
	public ed25519.PublicKey,
	private ed25519.PrivateKey,
) (
	KeyPair,
	error,
) {
	if len(public) != ed25519.PublicKeySize {
		return KeyPair{}, fmt.Errorf(
			"%w: public key is %d bytes, expected %d",
			ErrInvalidFormat, len(public), ed25519.PublicKeySize)
	}
	if len(private) != ed25519.PrivateKeySize {
		return KeyPair{}, fmt.Errorf(
			"%w: private key is %d bytes, expected %d",
			ErrInvalidFormat, len(private), ed25519.PrivateKeySize)
	}
	return KeyPair{Public: public, Private: private}, nil
}

// PairFromPrivate derives a full key pair from an expanded private key,
// using the public half embedded in its last 32 bytes.
func PairFromPrivate(private ed25519.PrivateKey) (KeyPair, error) {
	if len(private) != ed25519.PrivateKeySize {
		return KeyPair{}, fmt.Errorf(
			"%w: private key is %d bytes, expected %d",
			ErrInvalidFormat, len(private), ed25519.PrivateKeySize)
	}
	public := make(ed25519.PublicKey, ed25519.PublicKeySize)
	copy(public, private[ed25519.SeedSize:])
	return KeyPair{Public: public, Private: private}, nil
}

// ParsePublicHex decodes a 64 hex character public key. Whitespace is
// stripped before validation.
func ParsePublicHex(str string) (ed25519.PublicKey, error) {
	raw, err := parseHex(str, PublicKeyHexLen)
	if err != nil {
		return nil, err
	}
	return ed25519.PublicKey(raw), nil
}

// ParsePrivateHex decodes a 128 hex character expanded private key.
// Whitespace is stripped before validation.
func ParsePrivateHex(str string) (ed25519.PrivateKey, error) {
	raw, err := parseHex(str, PrivateKeyHexLen)
	if err != nil {
		return nil, err
	}
	return ed25519.PrivateKey(raw), nil
}

// LoadPublicKeyFile reads a hex-encoded public key from a file.
// Fails with ErrFileNotFound when the path does not exist, or
// ErrInvalidFormat when the contents aren't a valid key.
func LoadPublicKeyFile(path string) (ed25519.PublicKey, error) {
	str, err := readKeyFile(path)
	if err != nil {
		return nil, err
	}
	return ParsePublicHex(str)
}

// LoadPrivateKeyFile reads a hex-encoded private key from a file.
// Fails with ErrFileNotFound when the path does not exist, or
// ErrInvalidFormat when the contents aren't a valid key.
func LoadPrivateKeyFile(path string) (ed25519.PrivateKey, error) {
	str, err := readKeyFile(path)
	if err != nil {
		return nil, err
	}
	return ParsePrivateHex(str)
}

func readKeyFile(path string) (string, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return "", fmt.Errorf("couldn't read key file '%s': %v", path, err)
	}
	return string(contents), nil
}

func parseHex(str string, hexLen int) ([]byte, error) {
	str = stripWhitespace(str)
	if len(str) != hexLen {
		return nil, fmt.Errorf(
			"%w: key is %d hex characters, expected %d",
			ErrInvalidFormat, len(str), hexLen)
	}
	raw, err := hex.DecodeString(str)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	return raw, nil
}

func stripWhitespace(str string) string {
	return strings.Join(strings.Fields(str), "")
}
