package keys

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
)

// RS256 is the only asymmetric algorithm the session issuer uses
const RS256 = "RS256"

// KeyPair represents a public/private key pair for signing session tokens
type KeyPair struct {
	KeyID      string
	PrivateKey crypto.PrivateKey
	PublicKey  crypto.PublicKey
	Algorithm  string
}

// GenerateRSAKeyPair generates a new RSA key pair for RS256 signing
func GenerateRSAKeyPair(keyID string, bits int) (*KeyPair, error) {
	if bits < 2048 {
		bits = 2048
	}

	privateKey, err := rsa.GenerateKey(rand.Reader, bits)
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate RSA key")
	}

	return &KeyPair{
		KeyID:      keyID,
		PrivateKey: privateKey,
		PublicKey:  &privateKey.PublicKey,
		Algorithm:  RS256,
	}, nil
}

// GetSigningMethod returns the JWT signing method for this key pair
func (kp *KeyPair) GetSigningMethod() jwt.SigningMethod {
	return jwt.SigningMethodRS256
}

// ExportPublicKeyPEM exports the public key as PEM
func (kp *KeyPair) ExportPublicKeyPEM() (string, error) {
	pubKeyBytes, err := x509.MarshalPKIXPublicKey(kp.PublicKey)
	if err != nil {
		return "", errors.Wrap(err, "failed to marshal public key")
	}

	return string(pem.EncodeToMemory(&pem.Block{
		Type:  "PUBLIC KEY",
		Bytes: pubKeyBytes,
	})), nil
}

// ExportPrivateKeyPEM exports the RSA private key as PEM
func (kp *KeyPair) ExportPrivateKeyPEM() (string, error) {
	rsaKey, ok := kp.PrivateKey.(*rsa.PrivateKey)
	if !ok {
		return "", errors.New("private key is not RSA")
	}

	return string(pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(rsaKey),
	})), nil
}

// LoadKeyPairFromPEM rebuilds an RS256 key pair from a PKCS1 private key PEM
func LoadKeyPairFromPEM(keyID, privateKeyPEM string) (*KeyPair, error) {
	block, _ := pem.Decode([]byte(privateKeyPEM))
	if block == nil {
		return nil, errors.New("failed to decode PEM block")
	}

	privateKey, err := x509.ParsePKCS1PrivateKey(block.Bytes)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse RSA private key")
	}

	return &KeyPair{
		KeyID:      keyID,
		PrivateKey: privateKey,
		PublicKey:  &privateKey.PublicKey,
		Algorithm:  RS256,
	}, nil
}
