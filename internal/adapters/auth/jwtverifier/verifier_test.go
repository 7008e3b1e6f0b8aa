package jwtverifier

import (
	"context"
	"testing"
	"time"

	"manage-breast-screening/internal/ports/auth"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifier_RoundTrip(t *testing.T) {
	v, err := New("secret", "mbs")
	require.NoError(t, err)

	tok, err := v.Sign(Claims{
		Email: "nurse@example.com",
		Roles: []string{"clinical"},
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	require.NoError(t, err)

	c, err := v.Verify(context.Background(), tok)
	require.NoError(t, err)
	assert.Equal(t, auth.Claims{UserID: "user-1", Email: "nurse@example.com", Roles: []string{"clinical"}}, c)
}

func TestVerifier_Rejects(t *testing.T) {
	v, err := New("secret", "mbs")
	require.NoError(t, err)
	other, err := New("other-secret", "mbs")
	require.NoError(t, err)

	wrongKey, err := other.Sign(Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "u"}})
	require.NoError(t, err)

	expired, err := v.Sign(Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   "u",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
	}})
	require.NoError(t, err)

	noSubject, err := v.Sign(Claims{})
	require.NoError(t, err)

	wrongIssuer, err := v.Sign(Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "u", Issuer: "someone-else"}})
	require.NoError(t, err)

	for name, tok := range map[string]string{
		"empty":        "",
		"garbage":      "not-a-jwt",
		"wrong key":    wrongKey,
		"expired":      expired,
		"no subject":   noSubject,
		"wrong issuer": wrongIssuer,
	} {
		_, err := v.Verify(context.Background(), tok)
		assert.ErrorIs(t, err, auth.ErrInvalidToken, name)
	}
}

func TestNew_RequiresSecret(t *testing.T) {
	_, err := New(" ", "")
	assert.ErrorIs(t, err, ErrSecretRequired)
}
