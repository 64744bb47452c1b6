package session

import (
	"net/http"
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/oauth2"
)

// ErrNoCredentials is returned by Credentials.Token while nobody is logged in
var ErrNoCredentials = errors.New("no session credentials")

// Credentials is the bearer credential provider handed to networking collaborators.
// Only the Guard sets or clears it; collaborators read it at call time, so a logout
// takes effect on the very next request.
type Credentials struct {
	mu    sync.RWMutex
	token string
}

var _ oauth2.TokenSource = (*Credentials)(nil)

func NewCredentials() *Credentials {
	return &Credentials{}
}

// Token implements oauth2.TokenSource
func (c *Credentials) Token() (*oauth2.Token, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.token == "" {
		return nil, ErrNoCredentials
	}
	return &oauth2.Token{AccessToken: c.token, TokenType: "Bearer"}, nil
}

// Authenticated reports whether a bearer token is currently attached
func (c *Credentials) Authenticated() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token != ""
}

// Attach sets the Authorization header on req when authenticated and reports whether it did.
func (c *Credentials) Attach(req *http.Request) bool {
	token, err := c.Token()
	if err != nil {
		return false
	}
	token.SetAuthHeader(req)
	return true
}

// Client returns an HTTP client that carries the bearer token on every request.
// Requests made while logged out fail with ErrNoCredentials instead of going out anonymous.
func (c *Credentials) Client(base http.RoundTripper) *http.Client {
	return &http.Client{
		Transport: &oauth2.Transport{
			Source: c,
			Base:   base,
		},
	}
}

func (c *Credentials) set(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

func (c *Credentials) clear() {
	c.set("")
}
