package session

import (
	"context"
)

// TokenStore is the single durable slot holding the session token.
// Load returns an error wrapping errors.ErrNoToken when the slot is empty.
// Delete on an empty slot is not an error.
type TokenStore interface {
	Load(ctx context.Context) (string, error)
	Save(ctx context.Context, token string) error
	Delete(ctx context.Context) error
}
