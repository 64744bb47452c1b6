package keys_test

import (
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/go-booking-auth/token/keys"
	"github.com/stretchr/testify/require"
)

func TestKeyPairSigner_RoundTrip(t *testing.T) {
	kp, err := keys.GenerateRSAKeyPair("kid-1", 2048)
	require.NoError(t, err)
	signer := keys.NewKeyPairSigner(kp)

	raw, err := signer.Sign(jwt.MapClaims{"sub": "user-1"})
	require.NoError(t, err)

	parsed, err := jwt.Parse(raw, signer.GetVerificationKey)
	require.NoError(t, err)
	require.True(t, parsed.Valid)
	require.Equal(t, "kid-1", parsed.Header["kid"])

	t.Run("rejects HMAC token", func(t *testing.T) {
		hmacRaw, err := keys.NewHMACSigner("secret").Sign(jwt.MapClaims{"sub": "user-1"})
		require.NoError(t, err)
		_, err = jwt.Parse(hmacRaw, signer.GetVerificationKey)
		require.Error(t, err)
	})
}

func TestLoadKeyPairFromPEM(t *testing.T) {
	kp, err := keys.GenerateRSAKeyPair("kid-2", 2048)
	require.NoError(t, err)

	privatePEM, err := kp.ExportPrivateKeyPEM()
	require.NoError(t, err)
	publicPEM, err := kp.ExportPublicKeyPEM()
	require.NoError(t, err)
	require.Contains(t, publicPEM, "PUBLIC KEY")

	loaded, err := keys.LoadKeyPairFromPEM("kid-2", privatePEM)
	require.NoError(t, err)

	raw, err := keys.NewKeyPairSigner(loaded).Sign(jwt.MapClaims{"sub": "user-2"})
	require.NoError(t, err)
	_, err = jwt.Parse(raw, keys.NewKeyPairSigner(kp).GetVerificationKey)
	require.NoError(t, err)

	_, err = keys.LoadKeyPairFromPEM("kid-3", "not pem")
	require.Error(t, err)
}
