// Package api exposes the meshauth HTTP surface: the broker authentication
// callback, token verification and issuance, and device registry management.
package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"git.sr.ht/~jakintosh/meshauth/internal/service"
)

// API holds the handlers' shared dependencies. Build one with New and mount
// Router on an HTTP server.
type API struct {
	service *service.Service
}

func New(svc *service.Service) *API {
	return &API{service: svc}
}

// adminHeader carries the operator secret on privileged endpoints.
const adminHeader = "X-Admin-Secret"

func (a *API) authorizeAdmin(w http.ResponseWriter, r *http.Request) bool {
	err := a.service.AuthorizeAdmin(r.Header.Get(adminHeader))
	if err != nil {
		logApiErr(r, "admin authorization failed")
		w.WriteHeader(http.StatusUnauthorized)
		return false
	}
	return true
}

func decodeRequest[T any](req *T, w http.ResponseWriter, r *http.Request) bool {
	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		logApiErr(r, "bad json request")
		w.WriteHeader(http.StatusBadRequest)
		return false
	}
	return true
}

func returnJson(data any, w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	err := json.NewEncoder(w).Encode(data)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
}

func logApiErr(r *http.Request, msg string) {
	log.Printf("%s %s: %s\n", r.Method, r.RequestURI, msg)
}

// statusForServiceErr maps service sentinel errors onto response codes.
func statusForServiceErr(err error) int {
	switch {
	case errors.Is(err, service.ErrDeviceNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrDeviceExists):
		return http.StatusConflict
	case errors.Is(err, service.ErrInvalidDeviceKey):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrTokenInvalid):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
