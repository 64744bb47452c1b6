package link

import (
	"context"
	"fmt"

	apperrors "github.com/jrsteele09/go-booking-auth/internal/errors"
	"github.com/jrsteele09/go-booking-auth/internal/metrics"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type EntityKind string

const (
	KindConcert    EntityKind = "concert"
	KindProgrammer EntityKind = "programmer"
	KindArtist     EntityKind = "artist"
	KindContract   EntityKind = "contract"
)

// Entity is the backend record a link points at
type Entity struct {
	ID   string     `json:"id"`
	Kind EntityKind `json:"kind"`
	Name string     `json:"name"`
}

// EntityRepo is the persistence collaborator. Get returns an error wrapping
// errors.ErrNotFound for unknown ids.
type EntityRepo interface {
	Get(ctx context.Context, id string) (*Entity, error)
}

// Resolver turns a link token from an anonymous visitor into the entity it refers to.
// Every failure comes back wrapping errors.ErrLinkUnavailable so the caller can show a
// generic "invalid or expired link" page.
type Resolver struct {
	manager *Manager
	repo    EntityRepo
	logger  zerolog.Logger
	metrics *metrics.Metrics
}

type ResolverOption func(*Resolver)

func WithResolverLogger(logger zerolog.Logger) ResolverOption {
	return func(r *Resolver) {
		r.logger = logger
	}
}

func WithResolverMetrics(m *metrics.Metrics) ResolverOption {
	return func(r *Resolver) {
		r.metrics = m
	}
}

func NewResolver(manager *Manager, repo EntityRepo, options ...ResolverOption) (*Resolver, error) {
	if manager == nil {
		return nil, errors.New("[NewResolver] link manager is required")
	}
	if repo == nil {
		return nil, errors.New("[NewResolver] entity repo is required")
	}

	r := &Resolver{
		manager: manager,
		repo:    repo,
		logger:  log.With().Str("component", "link").Logger(),
	}
	for _, opt := range options {
		opt(r)
	}
	return r, nil
}

// Resolve validates token before touching the repo, so malformed or hand-edited
// tokens never cost a lookup.
func (r *Resolver) Resolve(ctx context.Context, token string) (*Entity, error) {
	if !r.manager.Validate(token) {
		r.metrics.LinkResolved("malformed")
		r.logger.Debug().Int("length", len(token)).Msg("rejected malformed link token")
		return nil, fmt.Errorf("%w: %w", apperrors.ErrLinkUnavailable, apperrors.ErrMalformedLinkToken)
	}
	entityID, _ := r.manager.Parse(token)

	entity, err := r.repo.Get(ctx, entityID)
	if err != nil {
		result := "lookup_failed"
		if apperrors.Is(err, apperrors.ErrNotFound) {
			result = "not_found"
		}
		r.metrics.LinkResolved(result)
		r.logger.Info().Err(err).Str("entity_id", entityID).Str("result", result).Msg("link did not resolve")
		return nil, fmt.Errorf("%w: %w", apperrors.ErrLinkUnavailable, err)
	}

	r.metrics.LinkResolved("ok")
	return entity, nil
}
