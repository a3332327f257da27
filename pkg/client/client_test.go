package client_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"git.sr.ht/~jakintosh/meshauth/internal/testutil"
	"git.sr.ht/~jakintosh/meshauth/pkg/client"
	"git.sr.ht/~jakintosh/meshauth/pkg/keys"
	"git.sr.ht/~jakintosh/meshauth/pkg/token"
)

func setupClient(t *testing.T) (*client.Client, *testutil.TestEnv) {
	t.Helper()
	env := testutil.SetupTestEnvWithRouter(t)
	server := httptest.NewServer(env.Router)
	t.Cleanup(server.Close)
	return client.New(server.URL), env
}

func selfSignedToken(
	t *testing.T,
	pair keys.KeyPair,
	lifetime time.Duration,
	claims token.Claims,
) string {
	t.Helper()
	issuer, err := token.NewIssuer(pair)
	if err != nil {
		t.Fatalf("NewIssuer failed: %v", err)
	}
	issued, err := issuer.Issue(lifetime, claims)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	return issued.Encoded()
}

func TestAuthenticate_Success(t *testing.T) {
	t.Parallel()
	c, env := setupClient(t)

	// setup env
	pair := env.RegisterTestDevice(t, "sensor-01")
	enc := selfSignedToken(t, pair, time.Hour, token.Claims{"sub": "sensor-01"})

	claims, err := c.Authenticate("sensor-01", enc)
	if err != nil {
		t.Fatalf("Authenticate failed: %v", err)
	}
	if claims.Subject() != "sensor-01" {
		t.Errorf("sub = %v, want sensor-01", claims.Subject())
	}
}

func TestAuthenticate_Rejected(t *testing.T) {
	t.Parallel()
	c, env := setupClient(t)

	// setup env
	pair := env.RegisterTestDevice(t, "sensor-01")

	// a token naming a different subject is rejected with ErrUnauthorized
	enc := selfSignedToken(t, pair, time.Hour, token.Claims{"sub": "sensor-02"})
	_, err := c.Authenticate("sensor-01", enc)
	if !errors.Is(err, client.ErrUnauthorized) {
		t.Errorf("expected ErrUnauthorized, got %v", err)
	}
}

func TestAuthenticate_ServerUnreachable(t *testing.T) {
	t.Parallel()

	c := client.New("http://127.0.0.1:1")
	_, err := c.Authenticate("sensor-01", "token")
	if !errors.Is(err, client.ErrRequest) {
		t.Errorf("expected ErrRequest, got %v", err)
	}
}

func TestVerifyToken_Success(t *testing.T) {
	t.Parallel()
	c, env := setupClient(t)

	// setup env
	pair := env.RegisterTestDevice(t, "sensor-01")
	enc := selfSignedToken(t, pair, time.Hour, token.Claims{"sub": "sensor-01"})

	claims, err := c.VerifyToken(enc)
	if err != nil {
		t.Fatalf("VerifyToken failed: %v", err)
	}
	if claims.Subject() != "sensor-01" {
		t.Errorf("sub = %v, want sensor-01", claims.Subject())
	}
}

func TestVerifyToken_Rejected(t *testing.T) {
	t.Parallel()
	c, _ := setupClient(t)

	_, err := c.VerifyToken("not-a-token")
	if !errors.Is(err, client.ErrUnauthorized) {
		t.Errorf("expected ErrUnauthorized, got %v", err)
	}
}

func TestVerifyLocal_ServerIssuedToken(t *testing.T) {
	t.Parallel()
	c, env := setupClient(t)

	// setup env
	env.RegisterTestDevice(t, "sensor-01")

	issued, err := env.Service.IssueDeviceToken("sensor-01", time.Hour, nil)
	if err != nil {
		t.Fatalf("IssueDeviceToken failed: %v", err)
	}

	// server-issued tokens verify locally against the published key
	claims, err := c.VerifyLocal(issued.Encoded())
	if err != nil {
		t.Fatalf("VerifyLocal failed: %v", err)
	}
	if claims.Subject() != "sensor-01" {
		t.Errorf("sub = %v, want sensor-01", claims.Subject())
	}
}

func TestVerifyLocal_SelfSignedTokenFails(t *testing.T) {
	t.Parallel()
	c, env := setupClient(t)

	// setup env
	pair := env.RegisterTestDevice(t, "sensor-01")

	// device-signed tokens don't verify against the server key
	enc := selfSignedToken(t, pair, time.Hour, token.Claims{"sub": "sensor-01"})
	_, err := c.VerifyLocal(enc)
	if !errors.Is(err, client.ErrUnauthorized) {
		t.Errorf("expected ErrUnauthorized, got %v", err)
	}
}

func TestVerifyLocal_CachesIssuerKey(t *testing.T) {
	t.Parallel()
	env := testutil.SetupTestEnvWithRouter(t)

	var issuerFetches int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/v1/issuer" {
			issuerFetches++
		}
		env.Router.ServeHTTP(w, r)
	}))
	t.Cleanup(server.Close)

	// setup env
	env.RegisterTestDevice(t, "sensor-01")
	issued, err := env.Service.IssueDeviceToken("sensor-01", time.Hour, nil)
	if err != nil {
		t.Fatalf("IssueDeviceToken failed: %v", err)
	}

	c := client.New(server.URL)
	for i := 0; i < 3; i++ {
		if _, err := c.VerifyLocal(issued.Encoded()); err != nil {
			t.Fatalf("VerifyLocal failed: %v", err)
		}
	}

	// the key is fetched once, then pinned
	if issuerFetches != 1 {
		t.Errorf("issuer key fetched %d times, want 1", issuerFetches)
	}
}

func TestVerifyLocal_ServerUnreachable(t *testing.T) {
	t.Parallel()

	c := client.New("http://127.0.0.1:1")
	_, err := c.VerifyLocal("token")
	if !errors.Is(err, client.ErrRequest) {
		t.Errorf("expected ErrRequest, got %v", err)
	}
}
