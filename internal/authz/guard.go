// Package authz implements the ownership check every mutation passes
// through before touching the store.
package authz

import (
	"context"
	"errors"
	"fmt"

	"github.com/vidtube/backend/internal/errs"
	"github.com/vidtube/backend/internal/store"
)

// Guard authorizes mutations by comparing a resource's owner field to the
// acting identity. It fails closed: a missing resource is a denial, and
// the two conditions stay distinct so callers can surface NotFound for
// absent resources and Unauthorized for ownership mismatches.
type Guard struct {
	store store.Store
}

// NewGuard constructs an ownership guard over the given store.
func NewGuard(s store.Store) *Guard {
	return &Guard{store: s}
}

// RequireOwner loads the resource and verifies the actor owns it. On
// success the loaded document is returned so callers need not re-fetch.
// Absent resource: ErrNotFound. Present but not owned: ErrUnauthorized.
func (g *Guard) RequireOwner(ctx context.Context, collection string, resource, actor store.ID, ownerField string) (store.Doc, error) {
	if resource.IsZero() {
		return nil, fmt.Errorf("%w: resource id is required", errs.ErrInvalidInput)
	}
	doc, err := g.store.FindByID(ctx, collection, resource)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return nil, errs.ErrNotFound
		}
		return nil, fmt.Errorf("%w: authorize %s: %v", errs.ErrReadFailed, collection, err)
	}
	if store.AsID(doc, ownerField) != actor {
		return nil, errs.ErrUnauthorized
	}
	return doc, nil
}
