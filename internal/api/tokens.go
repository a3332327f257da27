package api

import (
	"encoding/hex"
	"fmt"
	"net/http"
	"time"

	"git.sr.ht/~jakintosh/meshauth/pkg/token"
)

type IssueTokenRequest struct {
	DeviceID        string       `json:"device_id"`
	LifetimeSeconds int64        `json:"lifetime_seconds"`
	Claims          token.Claims `json:"claims"`
}

type IssueTokenResponse struct {
	Token     string `json:"token"`
	TokenID   string `json:"jti"`
	ExpiresAt int64  `json:"expires_at"`
}

// IssueToken mints a server-signed token for a registered device.
// Admin only.
func (a *API) IssueToken() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ok := a.authorizeAdmin(w, r); !ok {
			return
		}

		req := IssueTokenRequest{}
		if ok := decodeRequest(&req, w, r); !ok {
			return
		}

		issued, err := a.service.IssueDeviceToken(
			req.DeviceID,
			time.Duration(req.LifetimeSeconds)*time.Second,
			req.Claims,
		)
		if err != nil {
			logApiErr(r, fmt.Sprintf("couldn't issue token for '%s': %v", req.DeviceID, err))
			w.WriteHeader(statusForServiceErr(err))
			return
		}

		response := IssueTokenResponse{
			Token:     issued.Encoded(),
			TokenID:   issued.Claims().TokenID(),
			ExpiresAt: issued.Expiration().Unix(),
		}
		returnJson(&response, w)
	}
}

type IssuerKeyResponse struct {
	PublicKey string `json:"public_key"`
}

// IssuerKey publishes the server's verification key in hex, for relying
// parties that want to verify centrally issued tokens locally.
func (a *API) IssuerKey() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		publicKey, err := a.service.IssuerKey()
		if err != nil {
			logApiErr(r, fmt.Sprintf("no issuer key: %v", err))
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		response := IssuerKeyResponse{
			PublicKey: hex.EncodeToString(publicKey),
		}
		returnJson(&response, w)
	}
}
