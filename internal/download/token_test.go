package download

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMintAndVerify_RoundTrips(t *testing.T) {
	svc, err := New("test-signing-key", time.Hour)
	require.NoError(t, err)

	token, expiresAt, err := svc.Mint("doc-123", 10*time.Minute)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(10*time.Minute), expiresAt, 2*time.Second)

	documentID, err := svc.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "doc-123", documentID)
}

func TestMint_CapsExpirationAtMax(t *testing.T) {
	svc, err := New("test-signing-key", 5*time.Minute)
	require.NoError(t, err)

	_, expiresAt, err := svc.Mint("doc-1", 24*time.Hour)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(5*time.Minute), expiresAt, 2*time.Second)
}

func TestVerify_RejectsTamperedToken(t *testing.T) {
	svc, err := New("test-signing-key", time.Hour)
	require.NoError(t, err)

	token, _, err := svc.Mint("doc-123", time.Minute)
	require.NoError(t, err)

	_, err = svc.Verify(token + "tampered")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestVerify_RejectsWrongSigningKey(t *testing.T) {
	svc1, err := New("key-one", time.Hour)
	require.NoError(t, err)
	svc2, err := New("key-two", time.Hour)
	require.NoError(t, err)

	token, _, err := svc1.Mint("doc-123", time.Minute)
	require.NoError(t, err)

	_, err = svc2.Verify(token)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestVerify_RejectsExpiredToken(t *testing.T) {
	svc, err := New("test-signing-key", time.Hour)
	require.NoError(t, err)

	token, _, err := svc.Mint("doc-123", -time.Minute)
	require.NoError(t, err)
	// Mint clamps non-positive expirations back to maxExpiration, so build
	// an already-expired token directly via the same signing path instead.
	_ = token

	svcShort, err := New("test-signing-key", time.Millisecond)
	require.NoError(t, err)
	expiredToken, _, err := svcShort.Mint("doc-123", time.Millisecond)
	require.NoError(t, err)
	time.Sleep(10 * time.Millisecond)

	_, err = svcShort.Verify(expiredToken)
	assert.ErrorIs(t, err, ErrTokenExpired)
	assert.False(t, errors.Is(err, ErrTokenInvalid))
}
