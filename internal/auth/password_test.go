package auth

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("s3cure-enough")
	require.NoError(t, err)
	require.NotEqual(t, "s3cure-enough", hash)

	require.True(t, VerifyPassword("s3cure-enough", hash))
	require.False(t, VerifyPassword("wrong", hash))
	require.False(t, VerifyPassword("s3cure-enough", "not-a-bcrypt-hash"))
}

func TestHashesAreSalted(t *testing.T) {
	first, err := HashPassword("same-input")
	require.NoError(t, err)
	second, err := HashPassword("same-input")
	require.NoError(t, err)

	require.NotEqual(t, first, second)
}

func TestValidatePasswordStrength(t *testing.T) {
	require.NoError(t, ValidatePasswordStrength("correct horse battery staple"))

	for _, weak := range []string{"password1", "mypassword", "abc123456", "PASSWORD"} {
		err := ValidatePasswordStrength(weak)
		require.Error(t, err, "expected %q to be rejected", weak)
		require.True(t, errors.Is(err, ErrBadRequest))
	}
}
