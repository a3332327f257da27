// Package signing manages the server's signing identity: an Ed25519 key
// pair loaded from a hex key file and refreshed when the file changes, so
// operators can swap the key without restarting the service.
package signing

import (
	"fmt"
	"log"
	"sync"

	"git.sr.ht/~jakintosh/meshauth/pkg/keys"
	"git.sr.ht/~jakintosh/meshauth/pkg/token"
)

// Identity holds the current issuer and swaps it atomically on reload.
type Identity struct {
	path string

	mu     sync.RWMutex
	issuer *token.Issuer
}

// Load reads the private key file at path and watches its directory for
// changes, reloading the issuer when the file is rewritten.
func Load(path string) (*Identity, error) {
	identity := &Identity{path: path}
	if err := identity.reload(); err != nil {
		return nil, err
	}

	err := watchKeyFile(path, func() {
		if err := identity.reload(); err != nil {
			log.Printf("signing key reload failed, keeping previous key: %v\n", err)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start signing key watcher: %v", err)
	}

	return identity, nil
}

// Static wraps a fixed key pair with no file backing or watcher.
func Static(pair keys.KeyPair) (*Identity, error) {
	issuer, err := token.NewIssuer(pair)
	if err != nil {
		return nil, err
	}
	return &Identity{issuer: issuer}, nil
}

// Issuer returns the current signing issuer.
// It implements service.TokenSource.
func (identity *Identity) Issuer() (*token.Issuer, error) {
	identity.mu.RLock()
	defer identity.mu.RUnlock()
	if identity.issuer == nil {
		return nil, fmt.Errorf("no signing key loaded")
	}
	return identity.issuer, nil
}

func (identity *Identity) reload() error {
	privateKey, err := keys.LoadPrivateKeyFile(identity.path)
	if err != nil {
		return err
	}
	pair, err := keys.PairFromPrivate(privateKey)
	if err != nil {
		return err
	}
	issuer, err := token.NewIssuer(pair)
	if err != nil {
		return err
	}

	identity.mu.Lock()
	identity.issuer = issuer
	identity.mu.Unlock()

	log.Printf("loaded signing key from %s\n", identity.path)
	return nil
}
