package auth

import (
	"encoding/json"
	"errors"
	"net/http"
)

type FailureKind int

const (
	FailureMalformedRequest FailureKind = iota
	FailureAuthenticationRejected
	FailureRefreshNotFound
	FailureInvalidToken
	FailureDependencyUnavailable
)

// Failure is the one error type allowed to cross the response boundary.
// Each kind has a single canonical instance; internal error detail never
// reaches the client.
type Failure struct {
	Kind       FailureKind
	HTTPStatus int
	Code       string
	Message    string
}

func (f *Failure) Error() string {
	return f.Message
}

var (
	FailMalformedRequest = &Failure{
		Kind:       FailureMalformedRequest,
		HTTPStatus: http.StatusBadRequest,
		Code:       "AUTH_BAD_REQUEST",
		Message:    "malformed authentication request",
	}
	FailAuthenticationRejected = &Failure{
		Kind:       FailureAuthenticationRejected,
		HTTPStatus: http.StatusUnauthorized,
		Code:       "AUTH_NOT_JOINED",
		Message:    "invalid email or password",
	}
	FailRefreshNotFound = &Failure{
		Kind:       FailureRefreshNotFound,
		HTTPStatus: http.StatusUnauthorized,
		Code:       "AUTH_REFRESH_DOES_NOT_EXIST",
		Message:    "refresh session does not exist",
	}
	FailInvalidToken = &Failure{
		Kind:       FailureInvalidToken,
		HTTPStatus: http.StatusUnauthorized,
		Code:       "AUTH_INVALID_TOKEN",
		Message:    "invalid token",
	}
	FailDependencyUnavailable = &Failure{
		Kind:       FailureDependencyUnavailable,
		HTTPStatus: http.StatusServiceUnavailable,
		Code:       "AUTH_UNAVAILABLE",
		Message:    "authentication temporarily unavailable",
	}
)

// Translate maps any error leaving the orchestrator onto its canonical
// failure. Errors without a typed failure in their chain are dependency
// faults by definition: every expected branch already returns one.
func Translate(err error) *Failure {
	var failure *Failure
	if errors.As(err, &failure) {
		return failure
	}

	return FailDependencyUnavailable
}

type failureBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func WriteFailure(w http.ResponseWriter, failure *Failure) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(failure.HTTPStatus)
	_ = json.NewEncoder(w).Encode(failureBody{Code: failure.Code, Message: failure.Message})
}
