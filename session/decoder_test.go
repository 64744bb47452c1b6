package session_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	apperrors "github.com/jrsteele09/go-booking-auth/internal/errors"
	"github.com/jrsteele09/go-booking-auth/session"
	"github.com/jrsteele09/go-booking-auth/token/keys"
	"github.com/stretchr/testify/require"
)

func signClaims(t *testing.T, signer keys.Signer, claims jwt.MapClaims) string {
	t.Helper()
	raw, err := signer.Sign(claims)
	require.NoError(t, err)
	return raw
}

func TestJWTDecoder_Decode(t *testing.T) {
	signer := keys.NewHMACSigner(testSecret)
	decoder := session.NewJWTDecoder(nil)

	t.Run("full claims", func(t *testing.T) {
		raw := signClaims(t, signer, jwt.MapClaims{
			"sub":   "user-1",
			"name":  "Jane",
			"email": "jane@example.com",
			"roles": []string{"admin", "programmer"},
			"iat":   testNow.Unix(),
			"exp":   testNow.Add(time.Hour).Unix(),
		})

		claims, err := decoder.Decode(raw)
		require.NoError(t, err)
		require.Equal(t, "user-1", claims.UserID)
		require.Equal(t, "Jane", claims.Name)
		require.Equal(t, "jane@example.com", claims.Email)
		require.Equal(t, []string{"admin", "programmer"}, claims.Roles)
		require.True(t, claims.IssuedAt.Equal(testNow))
		require.True(t, claims.ExpiresAt.Equal(testNow.Add(time.Hour)))
	})

	t.Run("expired tokens still decode", func(t *testing.T) {
		raw := signClaims(t, signer, jwt.MapClaims{"sub": "user-1", "exp": testNow.Add(-time.Hour).Unix()})

		claims, err := decoder.Decode(raw)
		require.NoError(t, err)
		require.True(t, claims.Expired(testNow, 0))
	})

	t.Run("missing sub", func(t *testing.T) {
		raw := signClaims(t, signer, jwt.MapClaims{"exp": testNow.Add(time.Hour).Unix()})
		_, err := decoder.Decode(raw)
		require.ErrorIs(t, err, apperrors.ErrDecode)
	})

	t.Run("missing exp", func(t *testing.T) {
		raw := signClaims(t, signer, jwt.MapClaims{"sub": "user-1"})
		_, err := decoder.Decode(raw)
		require.ErrorIs(t, err, apperrors.ErrDecode)
	})

	t.Run("garbage", func(t *testing.T) {
		for _, raw := range []string{"", "garbage", "x.y", "eyJhbGciOiJIUzI1NiJ9.bm90LWpzb24.sig"} {
			_, err := decoder.Decode(raw)
			require.ErrorIs(t, err, apperrors.ErrDecode, raw)
		}
	})
}

func TestJWTDecoder_VerifiesSignatureWhenKeyed(t *testing.T) {
	decoder := session.NewJWTDecoder(keys.NewHMACSigner(testSecret))
	claims := jwt.MapClaims{"sub": "user-1", "exp": testNow.Add(-time.Hour).Unix()}

	_, err := decoder.Decode(signClaims(t, keys.NewHMACSigner(testSecret), claims))
	require.NoError(t, err, "expiry is left to the guard")

	_, err = decoder.Decode(signClaims(t, keys.NewHMACSigner("other-secret"), claims))
	require.ErrorIs(t, err, apperrors.ErrDecode)
}

func TestClaims_Expired(t *testing.T) {
	claims := &session.Claims{ExpiresAt: testNow}

	require.False(t, claims.Expired(testNow.Add(-time.Second), 0))
	require.True(t, claims.Expired(testNow, 0))
	require.True(t, claims.Expired(testNow.Add(10*time.Second), 0))
	require.False(t, claims.Expired(testNow.Add(10*time.Second), time.Minute))
}
