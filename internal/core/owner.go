package core

import (
	"context"

	"github.com/google/uuid"
)

type ownerKey struct{}

// WithOwner attaches the acting owner to ctx.
func WithOwner(ctx context.Context, owner uuid.UUID) context.Context {
	return context.WithValue(ctx, ownerKey{}, owner)
}

// OwnerFromContext returns the owner set by WithOwner, if any.
func OwnerFromContext(ctx context.Context) (uuid.UUID, bool) {
	owner, ok := ctx.Value(ownerKey{}).(uuid.UUID)
	return owner, ok && owner != uuid.Nil
}
