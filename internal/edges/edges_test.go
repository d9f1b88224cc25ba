package edges

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/vidtube/backend/internal/errs"
	"github.com/vidtube/backend/internal/models"
	"github.com/vidtube/backend/internal/store"
)

func edgeMatch(actor, target store.ID) store.Match {
	return store.Match{Eq: map[string]any{"likedBy": actor, "video": target}}
}

func TestToggleParity(t *testing.T) {
	m := store.NewMemory()
	repo := NewRepository(m)
	ctx := context.Background()
	actor, target := store.NewID(), store.NewID()

	for i := 0; i < 5; i++ {
		state, err := repo.Toggle(ctx, VideoLike, actor, target)
		if err != nil {
			t.Fatalf("toggle %d: %v", i, err)
		}
		wantState, wantCount := Created, 1
		if i%2 == 1 {
			wantState, wantCount = Removed, 0
		}
		if state != wantState {
			t.Fatalf("toggle %d: got %q want %q", i, state, wantState)
		}
		if got := m.Count(models.Likes, edgeMatch(actor, target)); got != wantCount {
			t.Fatalf("toggle %d: %d edges stored, want %d", i, got, wantCount)
		}
	}
}

func TestToggleIsScopedToActorAndTarget(t *testing.T) {
	m := store.NewMemory()
	repo := NewRepository(m)
	ctx := context.Background()
	alice, bob, video := store.NewID(), store.NewID(), store.NewID()

	if _, err := repo.Toggle(ctx, VideoLike, alice, video); err != nil {
		t.Fatalf("alice toggle: %v", err)
	}
	if _, err := repo.Toggle(ctx, VideoLike, bob, video); err != nil {
		t.Fatalf("bob toggle: %v", err)
	}
	if got := m.Count(models.Likes, store.Match{Eq: map[string]any{"video": video}}); got != 2 {
		t.Fatalf("expected independent edges per actor, got %d", got)
	}

	// Removing alice's like leaves bob's untouched.
	state, err := repo.Toggle(ctx, VideoLike, alice, video)
	if err != nil || state != Removed {
		t.Fatalf("alice second toggle: state=%q err=%v", state, err)
	}
	if got := m.Count(models.Likes, edgeMatch(bob, video)); got != 1 {
		t.Fatalf("bob's edge should survive, got %d", got)
	}
}

func TestToggleValidation(t *testing.T) {
	repo := NewRepository(store.NewMemory())
	ctx := context.Background()

	if _, err := repo.Toggle(ctx, Kind("like:unknown"), store.NewID(), store.NewID()); !errors.Is(err, errs.ErrInvalidInput) {
		t.Fatalf("unknown kind: %v", err)
	}
	if _, err := repo.Toggle(ctx, VideoLike, "", store.NewID()); !errors.Is(err, errs.ErrInvalidInput) {
		t.Fatalf("zero actor: %v", err)
	}
	if _, err := repo.Toggle(ctx, VideoLike, store.NewID(), ""); !errors.Is(err, errs.ErrInvalidInput) {
		t.Fatalf("zero target: %v", err)
	}
}

func TestToggleKindsAreIndependent(t *testing.T) {
	m := store.NewMemory()
	repo := NewRepository(m)
	ctx := context.Background()
	actor, target := store.NewID(), store.NewID()

	if _, err := repo.Toggle(ctx, VideoLike, actor, target); err != nil {
		t.Fatalf("video like: %v", err)
	}
	if _, err := repo.Toggle(ctx, CommentLike, actor, target); err != nil {
		t.Fatalf("comment like: %v", err)
	}
	if got := m.Count(models.Likes, store.Match{Eq: map[string]any{"likedBy": actor}}); got != 2 {
		t.Fatalf("expected one edge per kind, got %d", got)
	}

	exists, err := repo.Exists(ctx, VideoLike, actor, target)
	if err != nil || !exists {
		t.Fatalf("video like should exist: %v %v", exists, err)
	}
	exists, err = repo.Exists(ctx, TweetLike, actor, target)
	if err != nil || exists {
		t.Fatalf("tweet like should not exist: %v %v", exists, err)
	}
}

func TestConcurrentTogglesKeepEdgeBound(t *testing.T) {
	m := store.NewMemory()
	repo := NewRepository(m)
	ctx := context.Background()
	actor, target := store.NewID(), store.NewID()

	const workers = 16
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			if _, err := repo.Toggle(ctx, Subscription, actor, target); err != nil {
				t.Errorf("toggle: %v", err)
			}
		}()
	}
	wg.Wait()

	match := store.Match{Eq: map[string]any{"subscriber": actor, "channel": target}}
	if got := m.Count(models.Subscriptions, match); got > 1 {
		t.Fatalf("edge bound violated: %d edges", got)
	}
}
