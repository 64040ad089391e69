package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	defaultAccessTTL  = 15 * time.Minute
	defaultRefreshTTL = 7 * 24 * time.Hour
)

// Service is the authentication orchestrator. It branches on the
// envelope mode, resolves an Identity through the credential verifier
// (LOGIN) or the session store plus token codec (REFRESH), and issues a
// fresh token pair. Every failure path maps to a canonical *Failure.
type Service struct {
	verifier   CredentialVerifier
	sessions   SessionStore
	codec      *Codec
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewService(verifier CredentialVerifier, sessions SessionStore, codec *Codec) *Service {
	return &Service{
		verifier:   verifier,
		sessions:   sessions,
		codec:      codec,
		accessTTL:  defaultAccessTTL,
		refreshTTL: defaultRefreshTTL,
	}
}

func (s *Service) WithTokenTTL(accessTTL, refreshTTL time.Duration) {
	if accessTTL > 0 {
		s.accessTTL = accessTTL
	}
	if refreshTTL > 0 {
		s.refreshTTL = refreshTTL
	}
}

func (s *Service) Authenticate(ctx context.Context, envelope LoginEnvelope) (Result, error) {
	var (
		identity Identity
		err      error
	)

	switch envelope.LoginType {
	case LoginTypeLogin:
		identity, err = s.login(ctx, envelope)
	case LoginTypeRefresh:
		identity, err = s.refresh(ctx, envelope)
	default:
		return Result{}, FailMalformedRequest
	}
	if err != nil {
		return Result{}, err
	}

	return s.issuePair(ctx, identity)
}

func (s *Service) login(ctx context.Context, envelope LoginEnvelope) (Identity, error) {
	email := strings.TrimSpace(envelope.Email)
	password := strings.TrimSpace(envelope.Password)
	if email == "" || password == "" {
		return Identity{}, FailMalformedRequest
	}

	identity, err := s.verifier.Verify(ctx, email, password)
	if err != nil {
		// Unknown account and wrong password collapse into one response
		// kind so the endpoint cannot be used to enumerate users.
		if errors.Is(err, ErrAccountNotFound) || errors.Is(err, ErrInvalidCredentials) {
			return Identity{}, FailAuthenticationRejected
		}
		return Identity{}, fmt.Errorf("verify credentials: %w", err)
	}

	return identity, nil
}

func (s *Service) refresh(ctx context.Context, envelope LoginEnvelope) (Identity, error) {
	accessToken := strings.TrimSpace(envelope.Token)
	if accessToken == "" {
		return Identity{}, FailMalformedRequest
	}

	// Consuming the entry before decoding means a replayed access token
	// observes the same absence as one that never existed.
	refreshToken, err := s.sessions.TakeAndRemove(ctx, accessToken)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return Identity{}, FailRefreshNotFound
		}
		return Identity{}, fmt.Errorf("consume refresh session: %w", err)
	}

	identity, err := s.codec.Decode(refreshToken, PurposeRefresh)
	if err != nil {
		return Identity{}, FailInvalidToken
	}

	return identity, nil
}

func (s *Service) issuePair(ctx context.Context, identity Identity) (Result, error) {
	accessToken, err := s.codec.Issue(identity, PurposeAccess, s.accessTTL)
	if err != nil {
		return Result{}, fmt.Errorf("issue access token: %w", err)
	}

	refreshToken, err := s.codec.Issue(identity, PurposeRefresh, s.refreshTTL)
	if err != nil {
		return Result{}, fmt.Errorf("issue refresh token: %w", err)
	}

	if err := s.sessions.Put(ctx, accessToken, refreshToken, s.refreshTTL); err != nil {
		return Result{}, fmt.Errorf("record session pairing: %w", err)
	}

	return Result{AccessToken: accessToken, Identity: identity}, nil
}
