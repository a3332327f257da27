package api

import (
	"net/http"

	"github.com/gorilla/mux"
)

func (a *API) Router() http.Handler {
	r := mux.NewRouter()

	v1 := r.PathPrefix("/api/v1").Subrouter()

	// broker-facing
	v1.HandleFunc("/auth", a.Auth()).Methods("POST")
	v1.HandleFunc("/tokens/verify", a.VerifyToken()).Methods("POST")
	v1.HandleFunc("/issuer", a.IssuerKey()).Methods("GET")

	// operator-facing
	v1.HandleFunc("/tokens", a.IssueToken()).Methods("POST")
	v1.HandleFunc("/devices", a.RegisterDevice()).Methods("POST")
	v1.HandleFunc("/devices/{id}", a.GetDevice()).Methods("GET")
	v1.HandleFunc("/devices/{id}/tokens", a.ListDeviceTokens()).Methods("GET")

	return r
}
