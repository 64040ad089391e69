package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodecRoundTrip(t *testing.T) {
	codec := NewCodec("test-secret")
	identity := Identity{SubjectID: "018f7e2a-0000-7000-8000-000000000001", Email: "a@x.com"}

	for _, purpose := range []Purpose{PurposeAccess, PurposeRefresh} {
		token, err := codec.Issue(identity, purpose, time.Hour)
		require.NoError(t, err)

		decoded, err := codec.Decode(token, purpose)
		require.NoError(t, err)
		assert.Equal(t, identity, decoded)
	}
}

func TestCodecIssuesDistinctTokens(t *testing.T) {
	codec := NewCodec("test-secret")
	identity := Identity{SubjectID: "u1", Email: "a@x.com"}

	// Back-to-back issuances land in the same wall-clock second; they
	// must still be distinct tokens, or session rotation would reuse
	// the consumed key.
	first, err := codec.Issue(identity, PurposeAccess, time.Hour)
	require.NoError(t, err)
	second, err := codec.Issue(identity, PurposeAccess, time.Hour)
	require.NoError(t, err)

	assert.NotEqual(t, first, second)

	firstIdentity, err := codec.Decode(first, PurposeAccess)
	require.NoError(t, err)
	secondIdentity, err := codec.Decode(second, PurposeAccess)
	require.NoError(t, err)
	assert.Equal(t, firstIdentity, secondIdentity)
}

func TestCodecRejectsExpiredToken(t *testing.T) {
	codec := NewCodec("test-secret")
	identity := Identity{SubjectID: "u1", Email: "a@x.com"}

	token, err := codec.Issue(identity, PurposeAccess, 0)
	require.NoError(t, err)

	_, err = codec.Decode(token, PurposeAccess)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestCodecRejectsWrongPurpose(t *testing.T) {
	codec := NewCodec("test-secret")
	identity := Identity{SubjectID: "u1", Email: "a@x.com"}

	refresh, err := codec.Issue(identity, PurposeRefresh, time.Hour)
	require.NoError(t, err)

	_, err = codec.Decode(refresh, PurposeAccess)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestCodecRejectsTamperedToken(t *testing.T) {
	codec := NewCodec("test-secret")
	identity := Identity{SubjectID: "u1", Email: "a@x.com"}

	token, err := codec.Issue(identity, PurposeAccess, time.Hour)
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)
	tampered := parts[0] + "." + parts[1] + "." + strings.Repeat("A", len(parts[2]))

	_, err = codec.Decode(tampered, PurposeAccess)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestCodecRejectsForeignSecret(t *testing.T) {
	identity := Identity{SubjectID: "u1", Email: "a@x.com"}

	token, err := NewCodec("secret-one").Issue(identity, PurposeAccess, time.Hour)
	require.NoError(t, err)

	_, err = NewCodec("secret-two").Decode(token, PurposeAccess)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestCodecRejectsGarbageInput(t *testing.T) {
	codec := NewCodec("test-secret")

	for _, input := range []string{"", "not-a-token", "a.b.c", strings.Repeat("x", 4096)} {
		_, err := codec.Decode(input, PurposeAccess)
		assert.ErrorIs(t, err, ErrInvalidToken)
	}
}
