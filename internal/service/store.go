package service

import (
	"crypto/ed25519"
	"time"
)

// Device is a registered mesh device: the trust anchor that tokens naming
// this hardware id are verified against.
type Device struct {
	HardwareID   string
	Name         string
	PublicKey    ed25519.PublicKey
	RegisteredAt time.Time
}

// Issuance is one entry in the issued-token audit log. It records that a
// token was minted, not whether it is still honored; expiry is the only
// invalidation path.
type Issuance struct {
	TokenID    string
	Expiration time.Time
}

// DeviceStore handles persistence of the device registry
type DeviceStore interface {
	InsertDevice(hardwareID string, name string, publicKey []byte) error
	GetDeviceKey(hardwareID string) ([]byte, error)
	GetDevice(hardwareID string) (*Device, error)
}

// IssuanceStore handles persistence of the issued-token audit log
type IssuanceStore interface {
	InsertIssuance(hardwareID string, jti string, expiration int64) error
	ListActiveIssuances(hardwareID string, now int64) ([]Issuance, error)
}
