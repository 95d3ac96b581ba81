package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestStateTokenRoundTrip(t *testing.T) {
	m := NewStateTokenManager("state-secret-for-tests", 5*time.Minute)

	token, err := m.Issue()
	require.NoError(t, err)
	require.NotEmpty(t, token)

	nonce, err := m.Verify(token)
	require.NoError(t, err)
	require.Len(t, nonce, 64) // 256-bit nonce, hex-encoded

	// Tokens are random per issue.
	other, err := m.Issue()
	require.NoError(t, err)
	otherNonce, err := m.Verify(other)
	require.NoError(t, err)
	require.NotEqual(t, nonce, otherNonce)
}

func TestStateTokenExpiry(t *testing.T) {
	m := NewStateTokenManager("state-secret-for-tests", -time.Second)

	token, err := m.Issue()
	require.NoError(t, err)

	_, err = m.Verify(token)
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrUnauthorized))
}

func TestStateTokenTamperDetection(t *testing.T) {
	m := NewStateTokenManager("state-secret-for-tests", 5*time.Minute)

	token, err := m.Issue()
	require.NoError(t, err)

	// Flip one byte in the payload segment.
	tampered := []byte(token)
	mid := len(tampered) / 2
	if tampered[mid] == 'a' {
		tampered[mid] = 'b'
	} else {
		tampered[mid] = 'a'
	}

	_, err = m.Verify(string(tampered))
	require.True(t, errors.Is(err, ErrUnauthorized))
}

func TestStateTokenWrongKeyAndMissing(t *testing.T) {
	m := NewStateTokenManager("state-secret-for-tests", 5*time.Minute)
	other := NewStateTokenManager("a-different-secret-entirely", 5*time.Minute)

	token, err := other.Issue()
	require.NoError(t, err)

	// A token signed with the session secret (or any other key) must not verify.
	_, err = m.Verify(token)
	require.True(t, errors.Is(err, ErrUnauthorized))

	_, err = m.Verify("")
	require.True(t, errors.Is(err, ErrUnauthorized))

	_, err = m.Verify("not-a-jwt")
	require.True(t, errors.Is(err, ErrUnauthorized))
}

func TestStateTokenErrorsDoNotLeakFailureMode(t *testing.T) {
	m := NewStateTokenManager("state-secret-for-tests", -time.Second)
	fresh := NewStateTokenManager("state-secret-for-tests", 5*time.Minute)

	expired, err := m.Issue()
	require.NoError(t, err)

	_, expiredErr := fresh.Verify(expired)
	_, malformedErr := fresh.Verify("garbage")
	_, missingErr := fresh.Verify("")

	// All failure modes collapse to one message.
	require.Equal(t, expiredErr.Error(), malformedErr.Error())
	require.Equal(t, malformedErr.Error(), missingErr.Error())
}
