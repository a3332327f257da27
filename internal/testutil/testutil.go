// Package testutil provides test environment setup and utilities for internal package tests.
package testutil

import (
	"crypto/ed25519"
	"crypto/rand"
	"net/http"
	"sync"
	"testing"

	"git.sr.ht/~jakintosh/meshauth/internal/api"
	"git.sr.ht/~jakintosh/meshauth/internal/database"
	"git.sr.ht/~jakintosh/meshauth/internal/service"
	"git.sr.ht/~jakintosh/meshauth/internal/signing"
	"git.sr.ht/~jakintosh/meshauth/pkg/keys"
	"golang.org/x/crypto/bcrypt"
)

// AdminSecret is the operator secret every test environment accepts.
const AdminSecret = "test-admin-secret"

var (
	sharedServerPair     keys.KeyPair
	sharedAdminHash      []byte
	sharedIdentitiesOnce sync.Once
)

// sharedIdentities returns a cached server key pair and admin hash. Key
// generation and bcrypt are slow enough to be worth doing once across all
// tests.
func sharedIdentities() (keys.KeyPair, []byte) {
	sharedIdentitiesOnce.Do(func() {
		pair, err := GenerateKeyPair()
		if err != nil {
			panic("failed to generate shared server key: " + err.Error())
		}
		sharedServerPair = pair

		hash, err := bcrypt.GenerateFromPassword([]byte(AdminSecret), bcrypt.MinCost)
		if err != nil {
			panic("failed to hash shared admin secret: " + err.Error())
		}
		sharedAdminHash = hash
	})
	return sharedServerPair, sharedAdminHash
}

// GenerateKeyPair creates a fresh Ed25519 key pair in the format devices
// carry.
func GenerateKeyPair() (keys.KeyPair, error) {
	public, private, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return keys.KeyPair{}, err
	}
	return keys.NewKeyPair(public, private)
}

// TestEnv provides all dependencies needed for testing
type TestEnv struct {
	DB       *database.SQLiteStore
	Service  *service.Service
	Identity *signing.Identity
	Router   http.Handler
}

// SetupTestEnv creates an isolated test environment with in-memory SQLite
// and a static (non-file-backed) signing identity.
func SetupTestEnv(
	t *testing.T,
) *TestEnv {
	t.Helper()

	db := database.NewSQLiteStore(":memory:")
	t.Cleanup(func() {
		_ = db.Close()
	})

	serverPair, adminHash := sharedIdentities()
	identity, err := signing.Static(serverPair)
	if err != nil {
		t.Fatalf("failed to build signing identity: %v", err)
	}

	svc := service.New(
		db.DeviceStore(),
		db.IssuanceStore(),
		identity,
		adminHash,
	)

	return &TestEnv{
		DB:       db,
		Service:  svc,
		Identity: identity,
	}
}

// SetupTestEnvWithRouter creates TestEnv and configures the API router
func SetupTestEnvWithRouter(
	t *testing.T,
) *TestEnv {
	t.Helper()
	env := SetupTestEnv(t)
	a := api.New(env.Service)
	env.Router = a.Router()
	return env
}

// RegisterTestDevice registers a device with a fresh key pair and returns
// the pair so the test can mint self-signed tokens for it.
func (env *TestEnv) RegisterTestDevice(
	t *testing.T,
	hardwareID string,
) keys.KeyPair {
	t.Helper()

	pair, err := GenerateKeyPair()
	if err != nil {
		t.Fatalf("failed to generate device key: %v", err)
	}

	err = env.DB.InsertDevice(hardwareID, "test device", pair.Public)
	if err != nil {
		t.Fatalf("failed to register test device: %v", err)
	}
	return pair
}
