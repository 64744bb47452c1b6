// Package link mints and checks the opaque tokens that tie a public, unauthenticated
// form link to one backend entity (a concert, programmer, artist or contract).
//
// A token has the form {entityId}-{timestamp}-{random}. The timestamp is decimal Unix
// milliseconds and only serves uniqueness; tokens carry no expiry and no permissions.
// Parsing is anchored on the right: the timestamp and random segments never contain the
// delimiter, so an entity id may itself contain hyphens (UUIDs, slugs) and still round-trip.
package link

import (
	"crypto/rand"
	"io"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/jrsteele09/go-booking-auth/internal/errors"
	"github.com/jrsteele09/go-booking-auth/internal/metrics"
	"github.com/pkg/errors"
)

const (
	Delimiter           = "-"
	KindForm            = "form"
	DefaultSuffixLength = 10

	suffixAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
	// largest multiple of len(suffixAlphabet) below 256, for unbiased sampling
	suffixByteLimit = 252
)

// FormToken is a minted token plus its creation metadata. It is not persisted here.
type FormToken struct {
	Token     string    `json:"token"`
	EntityID  string    `json:"entityId"`
	CreatedAt time.Time `json:"createdAt"`
	Kind      string    `json:"kind"`
}

// Manager holds no mutable state; all methods are safe for concurrent use.
type Manager struct {
	nowFunc      func() time.Time
	random       io.Reader
	suffixLength int
	metrics      *metrics.Metrics
}

type ManagerOption func(*Manager)

func WithNowFunc(now func() time.Time) ManagerOption {
	return func(m *Manager) {
		m.nowFunc = now
	}
}

// WithRandom replaces crypto/rand as the suffix entropy source
func WithRandom(r io.Reader) ManagerOption {
	return func(m *Manager) {
		m.random = r
	}
}

func WithSuffixLength(n int) ManagerOption {
	return func(m *Manager) {
		m.suffixLength = n
	}
}

func WithMetrics(metrics *metrics.Metrics) ManagerOption {
	return func(m *Manager) {
		m.metrics = metrics
	}
}

func NewManager(options ...ManagerOption) *Manager {
	m := &Manager{
		nowFunc:      time.Now,
		random:       rand.Reader,
		suffixLength: DefaultSuffixLength,
	}
	for _, opt := range options {
		opt(m)
	}
	if m.suffixLength <= 0 {
		m.suffixLength = DefaultSuffixLength
	}
	return m
}

// Generate mints a token for entityID. Two tokens minted in the same millisecond
// differ through the random suffix.
func (m *Manager) Generate(entityID string) (string, error) {
	return m.mint(entityID, m.nowFunc())
}

// GenerateFormToken mints a token and returns it with its creation metadata
func (m *Manager) GenerateFormToken(entityID string) (*FormToken, error) {
	now := m.nowFunc()
	token, err := m.mint(entityID, now)
	if err != nil {
		return nil, err
	}
	return &FormToken{
		Token:     token,
		EntityID:  entityID,
		CreatedAt: now,
		Kind:      KindForm,
	}, nil
}

func (m *Manager) mint(entityID string, now time.Time) (string, error) {
	if strings.TrimSpace(entityID) == "" {
		return "", errors.Wrap(apperrors.ErrInvalidEntityID, "Manager.Generate empty entity id")
	}

	suffix, err := m.randomSuffix()
	if err != nil {
		return "", errors.Wrap(err, "Manager.Generate randomSuffix")
	}

	millis := now.UnixMilli()
	if millis < 0 {
		millis = 0
	}

	m.metrics.LinkGenerated()
	return entityID + Delimiter + strconv.FormatInt(millis, 10) + Delimiter + suffix, nil
}

func (m *Manager) randomSuffix() (string, error) {
	var sb strings.Builder
	sb.Grow(m.suffixLength)
	buf := make([]byte, m.suffixLength)
	for sb.Len() < m.suffixLength {
		if _, err := io.ReadFull(m.random, buf); err != nil {
			return "", err
		}
		for _, b := range buf {
			if b >= suffixByteLimit {
				continue
			}
			sb.WriteByte(suffixAlphabet[int(b)%len(suffixAlphabet)])
			if sb.Len() == m.suffixLength {
				break
			}
		}
	}
	return sb.String(), nil
}

// Parse returns the entity id a token refers to, or ("", false) for anything that is not
// a non-empty string of at least three delimiter-separated segments with a non-empty id.
func (m *Manager) Parse(token string) (string, bool) {
	entityID, _, ok := split(token)
	return entityID, ok
}

// Validate is Parse plus a numeric, non-negative timestamp segment. It is a structural
// check only; whether the entity still exists is for the entity lookup to say.
func (m *Manager) Validate(token string) bool {
	_, timestamp, ok := split(token)
	if !ok {
		return false
	}
	_, err := strconv.ParseUint(timestamp, 10, 64)
	return err == nil
}

func split(token string) (entityID, timestamp string, ok bool) {
	last := strings.LastIndex(token, Delimiter)
	if last < 0 {
		return "", "", false
	}
	head := token[:last]
	mid := strings.LastIndex(head, Delimiter)
	if mid <= 0 {
		return "", "", false
	}
	return head[:mid], head[mid+1:], true
}

var defaultManager = NewManager()

// Parse parses token with a default Manager
func Parse(token string) (string, bool) {
	return defaultManager.Parse(token)
}

// Validate validates token with a default Manager
func Validate(token string) bool {
	return defaultManager.Validate(token)
}
