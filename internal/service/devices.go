package service

import (
	"crypto/ed25519"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"git.sr.ht/~jakintosh/meshauth/pkg/keys"
)

// RegisterDevice adds a device's public key to the registry. The key is
// supplied hex-encoded, as devices report it; registering does not generate
// or rotate keys.
func (s *Service) RegisterDevice(
	hardwareID string,
	name string,
	publicKeyHex string,
) error {
	if hardwareID == "" {
		return fmt.Errorf("%w: empty hardware id", ErrInvalidDeviceKey)
	}

	publicKey, err := keys.ParsePublicHex(publicKeyHex)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidDeviceKey, err)
	}

	_, err = s.devices.GetDeviceKey(hardwareID)
	if err == nil {
		return fmt.Errorf("%w: %s", ErrDeviceExists, hardwareID)
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: failed to check registry: %v", ErrInternal, err)
	}

	if err := s.devices.InsertDevice(hardwareID, name, publicKey); err != nil {
		return fmt.Errorf("%w: %v", ErrInternal, err)
	}

	log.Printf("registered device %s\n", hardwareID)
	return nil
}

// Device returns the registry entry for a hardware id.
func (s *Service) Device(hardwareID string) (*Device, error) {
	device, err := s.devices.GetDevice(hardwareID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrDeviceNotFound, hardwareID)
		}
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}
	return device, nil
}

// ActiveTokens lists audit-log entries for a device whose expiration is
// still in the future.
func (s *Service) ActiveTokens(hardwareID string) ([]Issuance, error) {
	if _, err := s.Device(hardwareID); err != nil {
		return nil, err
	}

	issuances, err := s.issuances.ListActiveIssuances(hardwareID, time.Now().Unix())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}
	return issuances, nil
}

// ResolveKey returns the registered verification key for a token subject.
// It implements token.KeyResolver over the device registry.
func (s *Service) ResolveKey(subject string) (ed25519.PublicKey, error) {
	return s.deviceKey(subject)
}

func (s *Service) deviceKey(hardwareID string) (ed25519.PublicKey, error) {
	raw, err := s.devices.GetDeviceKey(hardwareID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrDeviceNotFound, hardwareID)
		}
		return nil, fmt.Errorf("%w: failed to retrieve device key: %v", ErrInternal, err)
	}
	return ed25519.PublicKey(raw), nil
}
