package session

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	apperrors "github.com/jrsteele09/go-booking-auth/internal/errors"
	"github.com/jrsteele09/go-booking-auth/internal/utils"
	"github.com/jrsteele09/go-booking-auth/token/keys"
	"github.com/pkg/errors"
)

// Claims are the fields the guard consumes from a session token
type Claims struct {
	Identity
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Expired reports whether the token must no longer be treated as authenticated at now.
// A token is expired from its exp instant onwards; skew extends that instant.
func (c *Claims) Expired(now time.Time, skew time.Duration) bool {
	return !now.Before(c.ExpiresAt.Add(skew))
}

// Decoder turns a raw session token into claims. Implementations must return an error
// wrapping ErrDecode for any token they cannot interpret.
type Decoder interface {
	Decode(raw string) (*Claims, error)
}

// JWTDecoder decodes JWT session tokens. Without a signer it only decodes the payload,
// which is all a client holding no issuer key can do; the backend verifies every
// protected request independently.
type JWTDecoder struct {
	parser *jwt.Parser
	signer keys.Signer
}

// NewJWTDecoder creates a decoder. Passing a signer enables signature verification.
func NewJWTDecoder(signer keys.Signer) *JWTDecoder {
	return &JWTDecoder{
		// Expiry is classified by the guard, not rejected by the parser.
		parser: jwt.NewParser(jwt.WithoutClaimsValidation()),
		signer: signer,
	}
}

func (d *JWTDecoder) Decode(raw string) (*Claims, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, errors.Wrap(apperrors.ErrDecode, "empty token")
	}

	var (
		token *jwt.Token
		err   error
	)
	if d.signer != nil {
		token, err = d.parser.Parse(raw, d.signer.GetVerificationKey)
	} else {
		token, _, err = d.parser.ParseUnverified(raw, jwt.MapClaims{})
	}
	if err != nil {
		return nil, errors.Wrapf(apperrors.ErrDecode, "JWTDecoder.Decode %v", err)
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.Wrap(apperrors.ErrDecode, "error extracting claims")
	}

	sub, err := mapClaims.GetSubject()
	if err != nil || sub == "" {
		return nil, errors.Wrap(apperrors.ErrDecode, "token missing sub claim")
	}
	exp, err := mapClaims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil, errors.Wrap(apperrors.ErrDecode, "token missing exp claim")
	}

	name, _ := mapClaims["name"].(string)
	email, _ := mapClaims["email"].(string)

	claims := &Claims{
		Identity: Identity{
			UserID: sub,
			Name:   name,
			Email:  email,
			Roles:  utils.ClaimStrings(mapClaims["roles"]),
		},
		ExpiresAt: exp.Time,
	}
	if iat, err := mapClaims.GetIssuedAt(); err == nil && iat != nil {
		claims.IssuedAt = iat.Time
	}
	return claims, nil
}
