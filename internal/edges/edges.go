// Package edges manages toggle-style relationship records: likes and
// subscriptions. An edge links an acting identity to a target entity and
// carries at-most-one-edge and idempotent-removal guarantees.
package edges

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/vidtube/backend/internal/errs"
	"github.com/vidtube/backend/internal/models"
	"github.com/vidtube/backend/internal/store"
)

// Kind identifies an edge family. Each kind fixes the collection the edge
// lives in and the field it is keyed on.
type Kind string

const (
	VideoLike    Kind = "like:video"
	CommentLike  Kind = "like:comment"
	TweetLike    Kind = "like:tweet"
	Subscription Kind = "subscription"
)

// State is the outcome of a toggle.
type State string

const (
	Created State = "created"
	Removed State = "removed"
)

type kindSpec struct {
	collection  string
	targetField string
	actorField  string
}

var kinds = map[Kind]kindSpec{
	VideoLike:    {collection: models.Likes, targetField: "video", actorField: "likedBy"},
	CommentLike:  {collection: models.Likes, targetField: "comment", actorField: "likedBy"},
	TweetLike:    {collection: models.Likes, targetField: "tweet", actorField: "likedBy"},
	Subscription: {collection: models.Subscriptions, targetField: "channel", actorField: "subscriber"},
}

// Repository persists edges over the entity store.
type Repository struct {
	store store.Store
	now   func() time.Time
}

// NewRepository constructs an edge repository.
func NewRepository(s store.Store) *Repository {
	return &Repository{store: s, now: func() time.Time { return time.Now().UTC() }}
}

// Toggle flips the presence of the (kind, actor, target) edge. The delete
// attempt itself is the existence check: when it removes a record the
// edge is gone and the call reports Removed; otherwise a fresh edge is
// inserted and the call reports Created. There is no read-then-decide
// window, and a failed insert leaves no partial state, so retrying after
// a write failure is safe.
func (r *Repository) Toggle(ctx context.Context, kind Kind, actor, target store.ID) (State, error) {
	spec, ok := kinds[kind]
	if !ok {
		return "", fmt.Errorf("%w: unknown edge kind %q", errs.ErrInvalidInput, kind)
	}
	if actor.IsZero() || target.IsZero() {
		return "", fmt.Errorf("%w: edge actor and target are required", errs.ErrInvalidInput)
	}

	match := store.Match{Eq: map[string]any{
		spec.targetField: target,
		spec.actorField:  actor,
	}}

	deleted, err := r.store.DeleteOne(ctx, spec.collection, match)
	if err != nil {
		return "", fmt.Errorf("%w: toggle %s: %v", errs.ErrWriteFailed, kind, err)
	}
	if deleted {
		return Removed, nil
	}

	doc := store.Doc{
		"_id":            store.NewID(),
		spec.targetField: target,
		spec.actorField:  actor,
		"createdAt":      r.now(),
	}
	if err := r.store.Insert(ctx, spec.collection, doc); err != nil {
		// A concurrent toggle may have inserted the edge between our
		// delete and insert; the unique edge index reports that as a
		// conflict and the edge count stays within {0,1}.
		if errors.Is(err, errs.ErrConflict) {
			return Removed, nil
		}
		return "", fmt.Errorf("%w: toggle %s: %v", errs.ErrWriteFailed, kind, err)
	}
	return Created, nil
}

// Exists reports whether the (kind, actor, target) edge is currently
// present.
func (r *Repository) Exists(ctx context.Context, kind Kind, actor, target store.ID) (bool, error) {
	spec, ok := kinds[kind]
	if !ok {
		return false, fmt.Errorf("%w: unknown edge kind %q", errs.ErrInvalidInput, kind)
	}
	_, err := r.store.FindOne(ctx, spec.collection, store.Match{Eq: map[string]any{
		spec.targetField: target,
		spec.actorField:  actor,
	}})
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("%w: edge lookup %s: %v", errs.ErrReadFailed, kind, err)
	}
	return true, nil
}
