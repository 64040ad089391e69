package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeVerifier struct {
	passwords map[string]string
}

func (f *fakeVerifier) Verify(_ context.Context, email, password string) (Identity, error) {
	stored, ok := f.passwords[email]
	if !ok {
		return Identity{}, ErrAccountNotFound
	}
	if stored != password {
		return Identity{}, ErrInvalidCredentials
	}

	return Identity{SubjectID: "user-" + email, Email: email}, nil
}

func newTestService(t *testing.T) (*Service, *RedisSessionStore, *Codec) {
	t.Helper()

	store, _ := newTestSessionStore(t)
	codec := NewCodec("test-secret")
	verifier := &fakeVerifier{passwords: map[string]string{"a@x.com": "correct horse"}}

	service := NewService(verifier, store, codec)
	service.WithTokenTTL(15*time.Minute, time.Hour)

	return service, store, codec
}

func TestAuthenticateLoginSuccess(t *testing.T) {
	ctx := context.Background()
	service, store, codec := newTestService(t)

	result, err := service.Authenticate(ctx, LoginEnvelope{
		LoginType: LoginTypeLogin,
		Email:     "a@x.com",
		Password:  "correct horse",
	})
	require.NoError(t, err)

	identity, err := codec.Decode(result.AccessToken, PurposeAccess)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", identity.Email)

	// The issued pair must be stored under the access token.
	refresh, err := store.TakeAndRemove(ctx, result.AccessToken)
	require.NoError(t, err)
	refreshIdentity, err := codec.Decode(refresh, PurposeRefresh)
	require.NoError(t, err)
	assert.Equal(t, identity, refreshIdentity)
}

func TestAuthenticateLoginEnumerationResistance(t *testing.T) {
	ctx := context.Background()
	service, _, _ := newTestService(t)

	_, unknownErr := service.Authenticate(ctx, LoginEnvelope{
		LoginType: LoginTypeLogin,
		Email:     "ghost@x.com",
		Password:  "whatever",
	})
	_, wrongErr := service.Authenticate(ctx, LoginEnvelope{
		LoginType: LoginTypeLogin,
		Email:     "a@x.com",
		Password:  "wrong password",
	})

	require.Error(t, unknownErr)
	require.Error(t, wrongErr)
	assert.Equal(t, Translate(unknownErr), Translate(wrongErr))
	assert.Same(t, FailAuthenticationRejected, Translate(unknownErr))
}

func TestAuthenticateRefreshRotatesSession(t *testing.T) {
	ctx := context.Background()
	service, store, _ := newTestService(t)

	first, err := service.Authenticate(ctx, LoginEnvelope{
		LoginType: LoginTypeLogin,
		Email:     "a@x.com",
		Password:  "correct horse",
	})
	require.NoError(t, err)

	second, err := service.Authenticate(ctx, LoginEnvelope{
		LoginType: LoginTypeRefresh,
		Token:     first.AccessToken,
	})
	require.NoError(t, err)
	assert.NotEqual(t, first.AccessToken, second.AccessToken)
	assert.Equal(t, first.Identity, second.Identity)

	// The consumed pairing is gone; the new one is live.
	_, err = store.TakeAndRemove(ctx, first.AccessToken)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = store.TakeAndRemove(ctx, second.AccessToken)
	assert.NoError(t, err)
}

func TestAuthenticateRefreshReplayRejected(t *testing.T) {
	ctx := context.Background()
	service, _, _ := newTestService(t)

	first, err := service.Authenticate(ctx, LoginEnvelope{
		LoginType: LoginTypeLogin,
		Email:     "a@x.com",
		Password:  "correct horse",
	})
	require.NoError(t, err)

	_, err = service.Authenticate(ctx, LoginEnvelope{LoginType: LoginTypeRefresh, Token: first.AccessToken})
	require.NoError(t, err)

	_, err = service.Authenticate(ctx, LoginEnvelope{LoginType: LoginTypeRefresh, Token: first.AccessToken})
	assert.Same(t, FailRefreshNotFound, Translate(err))
}

func TestAuthenticateRefreshUnknownToken(t *testing.T) {
	service, _, _ := newTestService(t)

	_, err := service.Authenticate(context.Background(), LoginEnvelope{
		LoginType: LoginTypeRefresh,
		Token:     "never-issued",
	})
	assert.Same(t, FailRefreshNotFound, Translate(err))
}

func TestAuthenticateRefreshCorruptStoredToken(t *testing.T) {
	ctx := context.Background()
	service, store, _ := newTestService(t)

	require.NoError(t, store.Put(ctx, "access-x", "not a jwt", time.Hour))

	_, err := service.Authenticate(ctx, LoginEnvelope{LoginType: LoginTypeRefresh, Token: "access-x"})
	assert.Same(t, FailInvalidToken, Translate(err))

	// Corrupt entries are still consumed.
	_, err = store.TakeAndRemove(ctx, "access-x")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestAuthenticateRefreshExpiredStoredToken(t *testing.T) {
	ctx := context.Background()
	service, store, codec := newTestService(t)

	expired, err := codec.Issue(Identity{SubjectID: "u1", Email: "a@x.com"}, PurposeRefresh, 0)
	require.NoError(t, err)
	require.NoError(t, store.Put(ctx, "access-y", expired, time.Hour))

	_, err = service.Authenticate(ctx, LoginEnvelope{LoginType: LoginTypeRefresh, Token: "access-y"})
	assert.Same(t, FailInvalidToken, Translate(err))
}

func TestAuthenticateMalformedEnvelopes(t *testing.T) {
	service, _, _ := newTestService(t)
	ctx := context.Background()

	cases := []LoginEnvelope{
		{},
		{LoginType: "SIGNUP"},
		{LoginType: LoginTypeLogin, Email: "a@x.com"},
		{LoginType: LoginTypeLogin, Password: "correct horse"},
		{LoginType: LoginTypeRefresh},
		{LoginType: LoginTypeRefresh, Token: "   "},
	}

	for _, envelope := range cases {
		_, err := service.Authenticate(ctx, envelope)
		assert.Same(t, FailMalformedRequest, Translate(err), "envelope %+v", envelope)
	}
}

func TestAuthenticateDependencyUnavailable(t *testing.T) {
	store, mr := newTestSessionStore(t)
	codec := NewCodec("test-secret")
	verifier := &fakeVerifier{passwords: map[string]string{"a@x.com": "correct horse"}}
	service := NewService(verifier, store, codec)

	mr.Close()

	_, err := service.Authenticate(context.Background(), LoginEnvelope{
		LoginType: LoginTypeRefresh,
		Token:     "access-1",
	})
	assert.Same(t, FailDependencyUnavailable, Translate(err))

	// LOGIN reaches the store at issuance time and fails the same way.
	_, err = service.Authenticate(context.Background(), LoginEnvelope{
		LoginType: LoginTypeLogin,
		Email:     "a@x.com",
		Password:  "correct horse",
	})
	assert.Same(t, FailDependencyUnavailable, Translate(err))
}
