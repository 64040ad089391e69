package auth

import (
	"encoding/json"
	"net/http"

	"github.com/getsentry/sentry-go"
)

const maxJSONBodyBytes = 1 << 20

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Login serves both LOGIN and REFRESH envelopes on one endpoint. On
// success the new access token travels in the Authorization header; the
// refresh token never appears in the response.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBodyBytes)

	var envelope LoginEnvelope
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&envelope); err != nil {
		WriteFailure(w, FailMalformedRequest)
		return
	}

	result, err := h.service.Authenticate(r.Context(), envelope)
	if err != nil {
		failure := Translate(err)
		if failure.Kind == FailureDependencyUnavailable {
			sentry.CaptureException(err)
		}
		WriteFailure(w, failure)
		return
	}

	w.Header().Set("Authorization", "Bearer "+result.AccessToken)
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
