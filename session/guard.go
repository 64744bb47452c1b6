package session

import (
	"context"
	"strings"
	"sync"
	"time"

	apperrors "github.com/jrsteele09/go-booking-auth/internal/errors"
	"github.com/jrsteele09/go-booking-auth/internal/metrics"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Guard owns the session state machine. It is the only writer of State; UI code
// subscribes to transitions and reads snapshots.
//
// The expiry check done here is advisory. It keeps a stale token from showing
// protected views, but the backend re-verifies every protected request, so a
// forged unexpired token can only produce misleading UI state, not data access.
type Guard struct {
	store       TokenStore
	authn       Authenticator
	decoder     Decoder
	credentials *Credentials
	nowFunc     func() time.Time
	clockSkew   time.Duration
	logger      zerolog.Logger
	metrics     *metrics.Metrics

	mu    sync.RWMutex
	state State

	initOnce sync.Once

	subMu       sync.Mutex
	subscribers map[int]func(State)
	nextSubID   int
}

// GuardOption defines a function type to modify the Guard instance.
type GuardOption func(*Guard)

func WithDecoder(decoder Decoder) GuardOption {
	return func(g *Guard) {
		g.decoder = decoder
	}
}

func WithNowFunc(now func() time.Time) GuardOption {
	return func(g *Guard) {
		g.nowFunc = now
	}
}

func WithClockSkew(skew time.Duration) GuardOption {
	return func(g *Guard) {
		g.clockSkew = skew
	}
}

func WithLogger(logger zerolog.Logger) GuardOption {
	return func(g *Guard) {
		g.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) GuardOption {
	return func(g *Guard) {
		g.metrics = m
	}
}

// WithCredentials shares an existing credential provider with the guard
func WithCredentials(c *Credentials) GuardOption {
	return func(g *Guard) {
		g.credentials = c
	}
}

// NewGuard creates a guard in the Initializing phase. Call Initialize once at startup.
func NewGuard(store TokenStore, authn Authenticator, options ...GuardOption) (*Guard, error) {
	if store == nil {
		return nil, errors.New("[NewGuard] token store is required")
	}
	if authn == nil {
		return nil, errors.New("[NewGuard] authenticator is required")
	}

	g := &Guard{
		store:       store,
		authn:       authn,
		nowFunc:     time.Now,
		logger:      log.With().Str("component", "session").Logger(),
		state:       State{Initializing: true},
		subscribers: make(map[int]func(State)),
	}

	for _, opt := range options {
		opt(g)
	}

	if g.decoder == nil {
		g.decoder = NewJWTDecoder(nil)
	}
	if g.credentials == nil {
		g.credentials = NewCredentials()
	}
	return g, nil
}

// Credentials returns the bearer provider to hand to networking collaborators
func (g *Guard) Credentials() *Credentials {
	return g.credentials
}

// State returns a snapshot of the current session state
func (g *Guard) State() State {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.state.clone()
}

// Subscribe registers fn to receive a snapshot after every transition.
// fn runs on the goroutine that caused the transition, outside the guard's lock.
func (g *Guard) Subscribe(fn func(State)) (unsubscribe func()) {
	g.subMu.Lock()
	defer g.subMu.Unlock()
	id := g.nextSubID
	g.nextSubID++
	g.subscribers[id] = fn
	return func() {
		g.subMu.Lock()
		defer g.subMu.Unlock()
		delete(g.subscribers, id)
	}
}

// Initialize checks the stored token and leaves the Initializing phase.
// Only the first call has any effect. Failures degrade to Unauthenticated.
func (g *Guard) Initialize(ctx context.Context) {
	g.initOnce.Do(func() {
		identity, token, err := g.checkStoredToken(ctx)
		if identity != nil {
			g.credentials.set(token)
		}
		g.update(func(s *State) {
			s.Initializing = false
			s.Authenticated = identity != nil
			s.Identity = identity
			s.LastError = err
		})
	})
}

func (g *Guard) checkStoredToken(ctx context.Context) (*Identity, string, error) {
	raw, err := g.store.Load(ctx)
	if apperrors.Is(err, apperrors.ErrNoToken) {
		return nil, "", nil
	}
	if err != nil {
		g.logger.Warn().Err(err).Msg("failed to read stored session token")
		return nil, "", err
	}

	claims, err := g.decoder.Decode(raw)
	if err != nil {
		g.logger.Warn().Err(err).Msg("discarding undecodable session token")
		g.purge(ctx)
		return nil, "", err
	}

	if claims.Expired(g.nowFunc(), g.clockSkew) {
		g.logger.Info().
			Str("user_id", claims.UserID).
			Time("expired_at", claims.ExpiresAt).
			Msg("discarding expired session token")
		g.purge(ctx)
		return nil, "", nil
	}

	identity := claims.Identity
	return &identity, raw, nil
}

// Login submits credentials to the authentication collaborator. On failure the
// returned *LoginError is also recorded as LastError and authentication state is untouched.
func (g *Guard) Login(ctx context.Context, req LoginRequest) error {
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		return g.loginFailed(rejected(MessageMissingCredentials, nil))
	}

	result, err := g.authn.Authenticate(ctx, req)
	if err == nil && (result == nil || result.Token == "") {
		err = networkFailure(MessageUnexpectedResponse, errors.New("empty login result"))
	}
	if err != nil {
		return g.loginFailed(asLoginError(err))
	}

	identity := result.User
	if identity.UserID == "" {
		if claims, err := g.decoder.Decode(result.Token); err == nil {
			identity = claims.Identity
		}
	}

	if err := g.store.Save(ctx, result.Token); err != nil {
		g.logger.Warn().Err(err).Msg("session token not persisted, login will not survive a restart")
	}
	g.credentials.set(result.Token)

	g.update(func(s *State) {
		s.Authenticated = true
		s.Identity = &identity
		s.LastError = nil
	})
	g.metrics.LoginAttempt("ok")
	g.logger.Info().Str("user_id", identity.UserID).Msg("logged in")
	return nil
}

func (g *Guard) loginFailed(loginErr *LoginError) error {
	g.update(func(s *State) {
		s.LastError = loginErr
	})
	outcome := "rejected"
	if apperrors.Is(loginErr, apperrors.ErrNetworkFailure) {
		outcome = "network_failure"
	}
	g.metrics.LoginAttempt(outcome)
	g.logger.Info().Err(loginErr.Cause).Str("outcome", outcome).Msg(loginErr.Message)
	return loginErr
}

// Logout purges the stored token and drops the bearer credential. Calling it while
// logged out leaves the same end state.
func (g *Guard) Logout(ctx context.Context) {
	g.purge(ctx)
	g.credentials.clear()
	g.update(func(s *State) {
		s.Authenticated = false
		s.Identity = nil
	})
}

func (g *Guard) purge(ctx context.Context) {
	if err := g.store.Delete(ctx); err != nil {
		g.logger.Warn().Err(err).Msg("failed to delete stored session token")
	}
}

func (g *Guard) update(mutate func(*State)) {
	g.mu.Lock()
	before := g.state.Phase()
	mutate(&g.state)
	snapshot := g.state.clone()
	g.mu.Unlock()

	if after := snapshot.Phase(); after != before {
		g.metrics.SessionTransition(after.String())
		g.logger.Debug().Str("from", before.String()).Str("to", after.String()).Msg("session transition")
	}
	g.notify(snapshot)
}

func (g *Guard) notify(snapshot State) {
	g.subMu.Lock()
	subscribers := make([]func(State), 0, len(g.subscribers))
	for _, fn := range g.subscribers {
		subscribers = append(subscribers, fn)
	}
	g.subMu.Unlock()

	for _, fn := range subscribers {
		fn(snapshot.clone())
	}
}
