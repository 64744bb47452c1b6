package entityfake

import (
	"context"
	"sync"

	"github.com/google/uuid"
	apperrors "github.com/jrsteele09/go-booking-auth/internal/errors"
	"github.com/jrsteele09/go-booking-auth/link"
	"github.com/pkg/errors"
)

var _ link.EntityRepo = (*FakeEntityRepo)(nil)

type FakeEntityRepo struct {
	entities map[string]*link.Entity
	lock     sync.RWMutex
	lookups  int
}

func NewFakeEntityRepo() *FakeEntityRepo {
	return &FakeEntityRepo{
		entities: make(map[string]*link.Entity),
	}
}

// Upsert stores entity, assigning a UUID when it has no id yet
func (r *FakeEntityRepo) Upsert(entity *link.Entity) *link.Entity {
	r.lock.Lock()
	defer r.lock.Unlock()

	if entity.ID == "" {
		entity.ID = uuid.New().String()
	}
	stored := *entity
	r.entities[entity.ID] = &stored
	return entity
}

func (r *FakeEntityRepo) Get(ctx context.Context, id string) (*link.Entity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.lock.Lock()
	defer r.lock.Unlock()
	r.lookups++

	entity, ok := r.entities[id]
	if !ok {
		return nil, errors.Wrapf(apperrors.ErrNotFound, "entity %s", id)
	}
	found := *entity
	return &found, nil
}

// Lookups reports how many times Get was called
func (r *FakeEntityRepo) Lookups() int {
	r.lock.RLock()
	defer r.lock.RUnlock()
	return r.lookups
}
