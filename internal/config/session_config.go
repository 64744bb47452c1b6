package config

import "time"

type Session struct{}

var _ SessionConfig = Session{}

// GetTokenFile is the single durable slot holding the session token between restarts
func (Session) GetTokenFile() string {
	return GetEnv("SESSION_TOKEN_FILE", "./data/session.token")
}

func (Session) GetLoginURL() string {
	return GetEnv("LOGIN_URL", EnvVars{}.GetBaseURL()+"/auth/login")
}

func (Session) GetLoginTimeout() time.Duration {
	return GetEnvDuration("LOGIN_TIMEOUT", 10*time.Second)
}

// GetClockSkew is the tolerance applied to the client-side expiry check.
// Zero means a token is expired as soon as its exp claim is in the past.
func (Session) GetClockSkew() time.Duration {
	return GetEnvDuration("SESSION_CLOCK_SKEW", 0)
}

func (Session) GetIssuer() string {
	return GetEnv("SESSION_ISSUER", EnvVars{}.GetBaseURL())
}

func (Session) GetSessionTokenExpiry() time.Duration {
	return GetEnvDuration("SESSION_TOKEN_EXPIRY", 8*time.Hour)
}

// GetSigningKeyPEM is the issuer's PKCS1 RSA private key. Empty means an ephemeral key
// is generated at startup, which invalidates every session on restart.
func (Session) GetSigningKeyPEM() string {
	return GetEnv("SESSION_SIGNING_KEY_PEM", "")
}

func (Session) GetDevUserEmail() string {
	return GetEnv("DEV_USER_EMAIL", "programmer@example.com")
}

func (Session) GetDevUserPassword() string {
	return GetEnv("DEV_USER_PASSWORD", "")
}
