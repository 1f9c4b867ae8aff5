package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignerRoundTrip(t *testing.T) {
	var s = &Signer{Secret: []byte("k")}
	var expiry = time.Now().Add(time.Hour)

	token, err := s.Sign("session-token", "user-id", expiry)
	require.NoError(t, err)

	claims, err := s.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "session-token", claims.ID)
	assert.Equal(t, "user-id", claims.Subject)
	assert.Equal(t, expiry.Unix(), claims.ExpiresAt.Unix())
}

func TestSignerRejects(t *testing.T) {
	var s = &Signer{Secret: []byte("k")}

	t.Run("none algorithm", func(t *testing.T) {
		token, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
			ID:        "x",
			Subject:   "y",
			Issuer:    issuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		}).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = s.Verify(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("missing expiry", func(t *testing.T) {
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
			ID:      "x",
			Subject: "y",
			Issuer:  issuer,
		}).SignedString(s.Secret)
		require.NoError(t, err)
		_, err = s.Verify(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("missing session id", func(t *testing.T) {
		token, err := s.Sign("", "y", time.Now().Add(time.Hour))
		require.NoError(t, err)
		_, err = s.Verify(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestPassword(t *testing.T) {
	hash, err := HashPassword("secret")
	require.NoError(t, err)
	assert.NoError(t, CheckPassword(hash, "secret"))
	assert.ErrorIs(t, CheckPassword(hash, "Secret"), ErrAuth)
	assert.ErrorIs(t, CheckPassword("", ""), ErrAuth)

	_, err = HashPassword("")
	assert.ErrorIs(t, err, ErrEmptyPassword)
}
