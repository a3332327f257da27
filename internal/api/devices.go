package api

import (
	"encoding/hex"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
)

type RegisterDeviceRequest struct {
	DeviceID  string `json:"device_id"`
	Name      string `json:"name"`
	PublicKey string `json:"public_key"`
}

// RegisterDevice adds a device public key to the registry. Admin only.
func (a *API) RegisterDevice() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ok := a.authorizeAdmin(w, r); !ok {
			return
		}

		req := RegisterDeviceRequest{}
		if ok := decodeRequest(&req, w, r); !ok {
			return
		}

		err := a.service.RegisterDevice(req.DeviceID, req.Name, req.PublicKey)
		if err != nil {
			logApiErr(r, fmt.Sprintf("couldn't register '%s': %v", req.DeviceID, err))
			w.WriteHeader(statusForServiceErr(err))
			return
		}

		w.WriteHeader(http.StatusCreated)
	}
}

type DeviceResponse struct {
	DeviceID     string `json:"device_id"`
	Name         string `json:"name"`
	PublicKey    string `json:"public_key"`
	RegisteredAt int64  `json:"registered_at"`
}

func (a *API) GetDevice() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		deviceID := mux.Vars(r)["id"]

		device, err := a.service.Device(deviceID)
		if err != nil {
			logApiErr(r, fmt.Sprintf("couldn't fetch device '%s': %v", deviceID, err))
			w.WriteHeader(statusForServiceErr(err))
			return
		}

		response := DeviceResponse{
			DeviceID:     device.HardwareID,
			Name:         device.Name,
			PublicKey:    hex.EncodeToString(device.PublicKey),
			RegisteredAt: device.RegisteredAt.Unix(),
		}
		returnJson(&response, w)
	}
}

type DeviceTokenEntry struct {
	TokenID   string `json:"jti"`
	ExpiresAt int64  `json:"expires_at"`
}

type DeviceTokensResponse struct {
	Tokens []DeviceTokenEntry `json:"tokens"`
}

// ListDeviceTokens returns the device's unexpired audit-log entries.
// Admin only.
func (a *API) ListDeviceTokens() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ok := a.authorizeAdmin(w, r); !ok {
			return
		}

		deviceID := mux.Vars(r)["id"]

		issuances, err := a.service.ActiveTokens(deviceID)
		if err != nil {
			logApiErr(r, fmt.Sprintf("couldn't list tokens for '%s': %v", deviceID, err))
			w.WriteHeader(statusForServiceErr(err))
			return
		}

		response := DeviceTokensResponse{
			Tokens: make([]DeviceTokenEntry, 0, len(issuances)),
		}
		for _, issuance := range issuances {
			response.Tokens = append(response.Tokens, DeviceTokenEntry{
				TokenID:   issuance.TokenID,
				ExpiresAt: issuance.Expiration.Unix(),
			})
		}
		returnJson(&response, w)
	}
}
