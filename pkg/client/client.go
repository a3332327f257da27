package client

import (
	"bytes"
	"crypto/ed25519"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"git.sr.ht/~jakintosh/meshauth/internal/api"
	"git.sr.ht/~jakintosh/meshauth/pkg/keys"
	"git.sr.ht/~jakintosh/meshauth/pkg/token"
)

type LogLevel int

const (
	LogLevelNone LogLevel = iota
	LogLevelError
	LogLevelInfo
	LogLevelDebug
)
const LogLevelDefault = LogLevelError

var (
	ErrUnauthorized = errors.New("token rejected")
	ErrRequest      = errors.New("auth service request failed")
	ErrResponse     = errors.New("invalid auth service response")
)

// Client talks to a meshauth server on behalf of a relying party, typically
// an MQTT broker's auth plugin. Remote calls delegate verification to the
// server; VerifyLocal verifies server-issued tokens against the server's
// published key without a round trip per token.
type Client struct {
	authURL  string
	http     *http.Client
	logLevel LogLevel

	mu        sync.Mutex
	issuerKey ed25519.PublicKey
}

func New(authURL string) *Client {
	return &Client{
		authURL:  authURL,
		http:     &http.Client{Timeout: time.Second * 10},
		logLevel: LogLevelDefault,
	}
}

func (c *Client) SetLogLevel(logLevel LogLevel) {
	c.logLevel = logLevel
}

func (c *Client) log(level LogLevel, format string, v ...any) {
	if c.logLevel >= level {
		log.Printf(format, v...)
	}
}

// Authenticate asks the server whether a connecting MQTT client's token is
// valid. Returns the token claims on success, ErrUnauthorized on rejection.
func (c *Client) Authenticate(
	clientID string,
	encToken string,
) (
	token.Claims,
	error,
) {
	request := api.AuthRequest{ClientID: clientID, Token: encToken}
	response := api.AuthResponse{}
	if err := c.post("/api/v1/auth", &request, &response); err != nil {
		return nil, err
	}
	return response.Claims, nil
}

// VerifyToken asks the server to verify a token, resolving the key from the
// token's own subject.
func (c *Client) VerifyToken(encToken string) (token.Claims, error) {
	request := api.VerifyRequest{Token: encToken}
	response := api.VerifyResponse{}
	if err := c.post("/api/v1/tokens/verify", &request, &response); err != nil {
		return nil, err
	}
	return response.Claims, nil
}

// VerifyLocal verifies a server-issued token against the server's published
// signing key, fetched once and cached. Tokens self-signed by devices fail
// here; use Authenticate or VerifyToken for those.
func (c *Client) VerifyLocal(encToken string) (token.Claims, error) {
	issuerKey, err := c.fetchIssuerKey()
	if err != nil {
		return nil, err
	}

	claims, err := token.NewVerifier(issuerKey).Verify(encToken)
	if err != nil {
		c.log(LogLevelDebug, "local verification failed: %v\n", err)
		return nil, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	return claims, nil
}

func (c *Client) fetchIssuerKey() (ed25519.PublicKey, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.issuerKey != nil {
		return c.issuerKey, nil
	}

	res, err := c.http.Get(c.authURL + "/api/v1/issuer")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRequest, err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: issuer key fetch returned %d", ErrResponse, res.StatusCode)
	}

	response := api.IssuerKeyResponse{}
	if err := json.NewDecoder(res.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrResponse, err)
	}

	issuerKey, err := keys.ParsePublicHex(response.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrResponse, err)
	}

	c.issuerKey = issuerKey
	c.log(LogLevelInfo, "pinned issuer key from %s\n", c.authURL)
	return issuerKey, nil
}

func (c *Client) post(path string, request any, response any) error {
	body, err := json.Marshal(request)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRequest, err)
	}

	res, err := c.http.Post(
		c.authURL+path,
		"application/json",
		bytes.NewReader(body),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRequest, err)
	}
	defer res.Body.Close()

	switch res.StatusCode {
	case http.StatusOK:
		break
	case http.StatusUnauthorized:
		return ErrUnauthorized
	default:
		return fmt.Errorf("%w: unexpected status %d", ErrResponse, res.StatusCode)
	}

	if err := json.NewDecoder(res.Body).Decode(response); err != nil {
		return fmt.Errorf("%w: %v", ErrResponse, err)
	}
	return nil
}
