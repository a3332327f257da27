// Package service implements the business logic of the meshauth server:
// device registration, broker authentication callbacks, and central token
// issuance for provisioned devices.
package service

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrDeviceNotFound     = errors.New("device not found")
	ErrDeviceExists       = errors.New("device already registered")
	ErrInvalidDeviceKey   = errors.New("invalid device key")
	ErrTokenInvalid       = errors.New("token invalid")
	ErrInternal           = errors.New("internal error")
)

// Service coordinates the device registry, the issued-token audit log, and
// the server's signing identity. It depends on storage interfaces
// (DeviceStore, IssuanceStore) and delegates to them for persistence.
type Service struct {
	devices   DeviceStore
	issuances IssuanceStore
	identity  TokenSource
	adminHash []byte
}

func New(
	devices DeviceStore,
	issuances IssuanceStore,
	identity TokenSource,
	adminHash []byte,
) *Service {
	return &Service{
		devices:   devices,
		issuances: issuances,
		identity:  identity,
		adminHash: adminHash,
	}
}

// AuthorizeAdmin checks an operator secret against the configured bcrypt
// hash. A service configured without a hash accepts no admin requests.
func (s *Service) AuthorizeAdmin(secret string) error {
	if len(s.adminHash) == 0 {
		return ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(s.adminHash, []byte(secret)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}
