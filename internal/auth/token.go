package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type Purpose string

const (
	PurposeAccess  Purpose = "access"
	PurposeRefresh Purpose = "refresh"
)

var ErrInvalidToken = errors.New("invalid token")

// Codec creates and validates the signed tokens carrying subject
// identity and expiry. It holds no mutable state and is safe for
// concurrent use.
type Codec struct {
	secret []byte
}

func NewCodec(secret string) *Codec {
	return &Codec{secret: []byte(secret)}
}

func (c *Codec) Issue(identity Identity, purpose Purpose, ttl time.Duration) (string, error) {
	// Timestamps are second-granular, so the jti is what makes two
	// issuances for the same identity distinct. Rotation depends on
	// that: the new access token must never collide with the consumed
	// session key.
	jti, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("generate jti: %w", err)
	}

	now := time.Now().UTC()
	claims := jwt.MapClaims{
		"sub":   identity.SubjectID,
		"email": identity.Email,
		"typ":   string(purpose),
		"jti":   jti.String(),
		"iat":   now.Unix(),
		"exp":   now.Add(ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	encoded, err := token.SignedString(c.secret)
	if err != nil {
		return "", err
	}

	return encoded, nil
}

// Decode validates signature, structure and expiry, and requires the
// token to carry the expected purpose. Any failure on attacker-supplied
// input comes back as ErrInvalidToken, never a panic.
func (c *Codec) Decode(tokenStr string, purpose Purpose) (Identity, error) {
	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (any, error) {
		return c.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return Identity{}, ErrInvalidToken
	}

	if tokenType, _ := claims["typ"].(string); tokenType != string(purpose) {
		return Identity{}, ErrInvalidToken
	}

	subject, _ := claims["sub"].(string)
	email, _ := claims["email"].(string)
	if subject == "" || email == "" {
		return Identity{}, ErrInvalidToken
	}

	return Identity{SubjectID: subject, Email: email}, nil
}
