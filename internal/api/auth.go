package api

import (
	"fmt"
	"net/http"

	"git.sr.ht/~jakintosh/meshauth/pkg/token"
)

// AuthRequest is the broker callback payload: the MQTT client id and the
// bearer token the client presented as its password.
type AuthRequest struct {
	ClientID string `json:"client_id"`
	Token    string `json:"token"`
}

type AuthResponse struct {
	Claims token.Claims `json:"claims"`
}

// Auth handles the broker's authentication callback. Any failure is a 401;
// the reason goes to the log, not to the (untrusted) caller.
func (a *API) Auth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := AuthRequest{}
		if ok := decodeRequest(&req, w, r); !ok {
			return
		}

		claims, err := a.service.AuthenticateDevice(req.ClientID, req.Token)
		if err != nil {
			logApiErr(r, fmt.Sprintf("client '%s' rejected: %v", req.ClientID, err))
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		returnJson(&AuthResponse{Claims: claims}, w)
	}
}

type VerifyRequest struct {
	Token string `json:"token"`
}

type VerifyResponse struct {
	Claims token.Claims `json:"claims"`
}

// VerifyToken validates a token on behalf of a relying party that doesn't
// know the signing device's key; the key is resolved from the registry via
// the token's subject.
func (a *API) VerifyToken() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := VerifyRequest{}
		if ok := decodeRequest(&req, w, r); !ok {
			return
		}

		claims, err := a.service.VerifyToken(req.Token)
		if err != nil {
			logApiErr(r, fmt.Sprintf("token rejected: %v", err))
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		returnJson(&VerifyResponse{Claims: claims}, w)
	}
}
