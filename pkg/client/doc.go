// Package client is the relying-party side of meshauth: a small HTTP client
// for MQTT broker auth plugins and backend services that need to validate
// device bearer tokens.
//
// The usual broker flow forwards the connecting client's id and password
// (the token) to the auth service:
//
//	auth := client.New("http://meshauth.local:9000")
//
//	claims, err := auth.Authenticate(clientID, password)
//	if err != nil {
//	    // reject the MQTT CONNECT
//	}
//
// Services that only ever see server-issued tokens can skip the per-token
// round trip: VerifyLocal fetches the server's signing key once and
// verifies locally from then on.
//
//	claims, err := auth.VerifyLocal(tokenString)
//
// Failures are ErrUnauthorized (the token was rejected), ErrRequest (the
// service couldn't be reached), or ErrResponse (the service answered with
// something unexpected).
package client
