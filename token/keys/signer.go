package keys

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
)

// Signer is an interface for signing and verifying session tokens
type Signer interface {
	// Sign creates a signed JWT token from claims
	Sign(claims jwt.MapClaims) (string, error)

	// GetVerificationKey returns the key used to verify a parsed token
	GetVerificationKey(token *jwt.Token) (any, error)

	// GetSigningMethod returns the JWT signing method used
	GetSigningMethod() jwt.SigningMethod
}

// HMACSigner implements Signer using symmetric HMAC-SHA256
type HMACSigner struct {
	secret []byte
}

// NewHMACSigner creates a new HMAC signer with the given secret
func NewHMACSigner(secret string) *HMACSigner {
	return &HMACSigner{
		secret: []byte(secret),
	}
}

func (h *HMACSigner) Sign(claims jwt.MapClaims) (string, error) {
	signedToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(h.secret)
	if err != nil {
		return "", errors.Wrap(err, "failed to sign token with HMAC")
	}
	return signedToken, nil
}

func (h *HMACSigner) GetVerificationKey(token *jwt.Token) (any, error) {
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, errors.Errorf("unexpected signing method: %v", token.Header["alg"])
	}
	return h.secret, nil
}

func (h *HMACSigner) GetSigningMethod() jwt.SigningMethod {
	return jwt.SigningMethodHS256
}

// KeyPairSigner implements Signer using RSA with RS256
type KeyPairSigner struct {
	keyPair *KeyPair
}

// NewKeyPairSigner creates a new key pair signer with the given key pair
func NewKeyPairSigner(keyPair *KeyPair) *KeyPairSigner {
	return &KeyPairSigner{
		keyPair: keyPair,
	}
}

func (a *KeyPairSigner) Sign(claims jwt.MapClaims) (string, error) {
	token := jwt.NewWithClaims(a.keyPair.GetSigningMethod(), claims)
	token.Header["kid"] = a.keyPair.KeyID

	signedToken, err := token.SignedString(a.keyPair.PrivateKey)
	if err != nil {
		return "", errors.Wrap(err, "failed to sign token with asymmetric key")
	}
	return signedToken, nil
}

func (a *KeyPairSigner) GetVerificationKey(token *jwt.Token) (any, error) {
	if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
		return nil, errors.Errorf("unexpected signing method: %v", token.Header["alg"])
	}
	return a.keyPair.PublicKey, nil
}

func (a *KeyPairSigner) GetSigningMethod() jwt.SigningMethod {
	return a.keyPair.GetSigningMethod()
}

// PublicKey exposes the verification key for server-side verifiers
func (a *KeyPairSigner) PublicKey() any {
	return a.keyPair.PublicKey
}
