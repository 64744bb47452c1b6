package config

import "time"

type Config interface {
	EnvConfig
	SessionConfig
	LinkConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetBaseURL() string
	GetEnv() string
}

type SessionConfig interface {
	GetTokenFile() string
	GetLoginURL() string
	GetLoginTimeout() time.Duration
	GetClockSkew() time.Duration
	GetIssuer() string
	GetSessionTokenExpiry() time.Duration
	GetSigningKeyPEM() string
}

type LinkConfig interface {
	GetLinkSuffixLength() int
}

type mainConfig struct {
	EnvVars
	Session
	Link
}

func New() Config {
	return mainConfig{}
}
