package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-at-least-32-characters-long"

func TestTokenCodec_IssueAndExtractSubject(t *testing.T) {
	codec := NewTokenCodec(testSecret)

	token, err := codec.Issue("ana@example.com", nil, time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	subject, err := codec.ExtractSubject(token)
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", subject)
}

func TestTokenCodec_IssueWithExtraClaims(t *testing.T) {
	codec := NewTokenCodec(testSecret)

	token, err := codec.Issue("ana@example.com", map[string]any{"role": "admin"}, time.Hour)
	require.NoError(t, err)

	valid, err := codec.IsValid(token, "ana@example.com")
	require.NoError(t, err)
	assert.True(t, valid)
}

func TestTokenCodec_ExtraClaimsCannotOverrideSubject(t *testing.T) {
	codec := NewTokenCodec(testSecret)

	token, err := codec.Issue("ana@example.com", map[string]any{"sub": "mallory@example.com"}, time.Hour)
	require.NoError(t, err)

	subject, err := codec.ExtractSubject(token)
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", subject)
}

func TestTokenCodec_IsValid(t *testing.T) {
	codec := NewTokenCodec(testSecret)

	token, err := codec.Issue("ana@example.com", nil, time.Hour)
	require.NoError(t, err)

	valid, err := codec.IsValid(token, "ana@example.com")
	require.NoError(t, err)
	assert.True(t, valid)
}

func TestTokenCodec_IsValid_WrongSubject(t *testing.T) {
	codec := NewTokenCodec(testSecret)

	token, err := codec.Issue("ana@example.com", nil, time.Hour)
	require.NoError(t, err)

	valid, err := codec.IsValid(token, "otro@example.com")
	require.NoError(t, err)
	assert.False(t, valid)
}

func TestTokenCodec_IsValid_SubjectCaseSensitive(t *testing.T) {
	codec := NewTokenCodec(testSecret)

	token, err := codec.Issue("Ana@Example.com", nil, time.Hour)
	require.NoError(t, err)

	valid, err := codec.IsValid(token, "ana@example.com")
	require.NoError(t, err)
	assert.False(t, valid)
}

func TestTokenCodec_ExpiredToken(t *testing.T) {
	codec := NewTokenCodec(testSecret)

	token, err := codec.Issue("ana@example.com", nil, -time.Minute)
	require.NoError(t, err)

	// Expired tokens fail validation but are not malformed.
	valid, err := codec.IsValid(token, "ana@example.com")
	require.NoError(t, err)
	assert.False(t, valid)

	// The subject is still recoverable from an expired token.
	subject, err := codec.ExtractSubject(token)
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", subject)
}

func TestTokenCodec_MalformedToken(t *testing.T) {
	codec := NewTokenCodec(testSecret)

	_, err := codec.ExtractSubject("not-a-jwt")
	require.ErrorIs(t, err, ErrMalformedToken)

	valid, err := codec.IsValid("not-a-jwt", "ana@example.com")
	require.ErrorIs(t, err, ErrMalformedToken)
	assert.False(t, valid)
}

func TestTokenCodec_WrongSignature(t *testing.T) {
	codec := NewTokenCodec(testSecret)
	other := NewTokenCodec("another-secret-also-32-characters!!")

	token, err := other.Issue("ana@example.com", nil, time.Hour)
	require.NoError(t, err)

	_, err = codec.ExtractSubject(token)
	require.ErrorIs(t, err, ErrMalformedToken)

	valid, err := codec.IsValid(token, "ana@example.com")
	require.ErrorIs(t, err, ErrMalformedToken)
	assert.False(t, valid)
}

func TestCredentialVerifier_HashAndVerify(t *testing.T) {
	verifier := NewCredentialVerifier()

	hash, err := verifier.Hash("s3cret-password")
	require.NoError(t, err)
	require.NotEqual(t, "s3cret-password", hash)

	assert.True(t, verifier.Verify(hash, "s3cret-password"))
	assert.False(t, verifier.Verify(hash, "wrong-password"))
}

func TestCredentialVerifier_VerifyGarbageHash(t *testing.T) {
	verifier := NewCredentialVerifier()
	assert.False(t, verifier.Verify("not-a-bcrypt-hash", "whatever"))
}
