// Package authfake is an in-memory authentication collaborator. It checks bcrypt
// password hashes and issues signed session tokens, standing in for the external
// issuer in tests and in the development server.
package authfake

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	apperrors "github.com/jrsteele09/go-booking-auth/internal/errors"
	"github.com/jrsteele09/go-booking-auth/session"
	"github.com/jrsteele09/go-booking-auth/token/keys"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
)

type User struct {
	ID           string
	Email        string
	Name         string
	PasswordHash string
	Roles        []string
}

func (u *User) identity() session.Identity {
	return session.Identity{
		UserID: u.ID,
		Name:   u.Name,
		Email:  u.Email,
		Roles:  append([]string(nil), u.Roles...),
	}
}

var _ session.Authenticator = (*FakeAuthenticator)(nil)

type FakeAuthenticator struct {
	users   map[string]*User // keyed by lower-cased email
	lock    sync.RWMutex
	signer  keys.Signer
	issuer  string
	expiry  time.Duration
	nowFunc func() time.Time
	cost    int
}

type Option func(*FakeAuthenticator)

func WithNowFunc(now func() time.Time) Option {
	return func(f *FakeAuthenticator) {
		f.nowFunc = now
	}
}

// WithBcryptCost lowers the hashing cost, mostly to keep tests fast
func WithBcryptCost(cost int) Option {
	return func(f *FakeAuthenticator) {
		f.cost = cost
	}
}

func NewFakeAuthenticator(signer keys.Signer, issuer string, expiry time.Duration, options ...Option) *FakeAuthenticator {
	f := &FakeAuthenticator{
		users:   make(map[string]*User),
		signer:  signer,
		issuer:  issuer,
		expiry:  expiry,
		nowFunc: time.Now,
		cost:    bcrypt.DefaultCost,
	}
	for _, opt := range options {
		opt(f)
	}
	return f
}

// AddUser registers a user with a freshly hashed password
func (f *FakeAuthenticator) AddUser(name, email, password string, roles ...string) (*User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), f.cost)
	if err != nil {
		return nil, errors.Wrap(err, "FakeAuthenticator.AddUser GenerateFromPassword")
	}

	user := &User{
		ID:           uuid.New().String(),
		Email:        email,
		Name:         name,
		PasswordHash: string(hash),
		Roles:        roles,
	}

	f.lock.Lock()
	defer f.lock.Unlock()
	f.users[strings.ToLower(email)] = user
	return user, nil
}

func (f *FakeAuthenticator) Authenticate(ctx context.Context, req session.LoginRequest) (*session.LoginResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(apperrors.ErrNetworkFailure, err.Error())
	}

	f.lock.RLock()
	user, ok := f.users[strings.ToLower(req.Email)]
	f.lock.RUnlock()
	if !ok {
		return nil, errors.Wrap(apperrors.ErrAuthRejected, "unknown email")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, errors.Wrap(apperrors.ErrAuthRejected, "password mismatch")
	}

	token, err := f.IssueToken(user, f.nowFunc().Add(f.expiry))
	if err != nil {
		return nil, err
	}
	return &session.LoginResult{Token: token, User: user.identity()}, nil
}

// IssueToken signs a session token for user expiring at expiresAt. Tests use it
// directly to build expired or near-expiry tokens.
func (f *FakeAuthenticator) IssueToken(user *User, expiresAt time.Time) (string, error) {
	claims := jwt.MapClaims{
		"iss":   f.issuer,
		"sub":   user.ID,
		"name":  user.Name,
		"email": user.Email,
		"roles": user.Roles,
		"iat":   f.nowFunc().Unix(),
		"exp":   expiresAt.Unix(),
		"jti":   uuid.New().String(),
	}
	token, err := f.signer.Sign(claims)
	if err != nil {
		return "", errors.Wrap(err, "FakeAuthenticator.IssueToken")
	}
	return token, nil
}
