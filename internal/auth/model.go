package auth

import "time"

type LoginType string

const (
	LoginTypeLogin   LoginType = "LOGIN"
	LoginTypeRefresh LoginType = "REFRESH"
)

// LoginEnvelope is the body of the single auth endpoint. LOGIN requests
// carry email+password, REFRESH requests carry the expiring access token.
type LoginEnvelope struct {
	LoginType LoginType `json:"loginType"`
	Email     string    `json:"email,omitempty"`
	Password  string    `json:"password,omitempty"`
	Token     string    `json:"token,omitempty"`
}

// Identity is the verified subject of a request. Immutable once resolved.
type Identity struct {
	SubjectID string
	Email     string
}

type User struct {
	ID           string
	Email        string
	Nickname     string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Result is what a successful authentication produces. The refresh token
// is deliberately absent: it lives only in the session store, keyed by
// the access token.
type Result struct {
	AccessToken string
	Identity    Identity
}
