// meshauth-token is an operator tool for working with device auth tokens
// from local key material: mint a token from a device's key pair, verify a
// token against a public key, or inspect claims without verifying.
package main

import (
	"crypto/ed25519"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"git.sr.ht/~jakintosh/meshauth/pkg/keys"
	"git.sr.ht/~jakintosh/meshauth/pkg/token"
)

const usage = `usage:
  meshauth-token create <public_key_hex> <private_key_hex|key_file> [expiry_seconds] [claims_json]
  meshauth-token verify <token> <public_key_hex>
  meshauth-token decode <token>`

func main() {
	log.SetFlags(0)

	if len(os.Args) < 2 {
		log.Fatalln(usage)
	}

	switch os.Args[1] {
	case "create":
		create(os.Args[2:])
	case "verify":
		verify(os.Args[2:])
	case "decode":
		decode(os.Args[2:])
	default:
		log.Fatalln(usage)
	}
}

func create(args []string) {
	if len(args) < 2 {
		log.Fatalln(usage)
	}

	publicKey, err := keys.ParsePublicHex(args[0])
	if err != nil {
		log.Fatalf("bad public key: %v\n", err)
	}
	privateKey := loadPrivateKey(args[1])

	lifetime := token.DefaultLifetime
	if len(args) >= 3 {
		seconds, err := strconv.ParseInt(args[2], 10, 64)
		if err != nil {
			log.Fatalf("bad expiry seconds '%s': %v\n", args[2], err)
		}
		lifetime = time.Duration(seconds) * time.Second
	}

	claims := token.Claims{}
	if len(args) >= 4 {
		if err := json.Unmarshal([]byte(args[3]), &claims); err != nil {
			log.Fatalf("bad claims json: %v\n", err)
		}
	}

	pair, err := keys.NewKeyPair(publicKey, privateKey)
	if err != nil {
		log.Fatalf("bad key pair: %v\n", err)
	}
	issuer, err := token.NewIssuer(pair)
	if err != nil {
		log.Fatalf("bad key pair: %v\n", err)
	}

	issued, err := issuer.Issue(lifetime, claims)
	if err != nil {
		log.Fatalf("failed to create token: %v\n", err)
	}
	fmt.Println(issued.Encoded())
}

func verify(args []string) {
	if len(args) < 2 {
		log.Fatalln(usage)
	}

	publicKey, err := keys.ParsePublicHex(args[1])
	if err != nil {
		log.Fatalf("bad public key: %v\n", err)
	}

	claims, err := token.NewVerifier(publicKey).Verify(args[0])
	if err != nil {
		log.Fatalf("verification failed: %v\n", err)
	}
	printClaims(claims)
}

func decode(args []string) {
	if len(args) < 1 {
		log.Fatalln(usage)
	}

	claims, err := token.DecodeUnverified(args[0])
	if err != nil {
		log.Fatalf("decode failed: %v\n", err)
	}
	printClaims(claims)
}

// loadPrivateKey accepts either a hex string or a path to a key file,
// distinguished by length: a full private key is at least 128 characters.
func loadPrivateKey(arg string) ed25519.PrivateKey {
	if len(arg) >= keys.PrivateKeyHexLen {
		privateKey, err := keys.ParsePrivateHex(arg)
		if err != nil {
			log.Fatalf("bad private key: %v\n", err)
		}
		return privateKey
	}

	privateKey, err := keys.LoadPrivateKeyFile(arg)
	if err != nil {
		log.Fatalf("couldn't load private key: %v\n", err)
	}
	return privateKey
}

func printClaims(claims token.Claims) {
	out, err := json.MarshalIndent(claims, "", "  ")
	if err != nil {
		log.Fatalf("couldn't render claims: %v\n", err)
	}
	fmt.Println(string(out))
}
