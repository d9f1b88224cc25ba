package tweets

import (
	"context"
	"errors"
	"testing"

	"github.com/vidtube/backend/internal/authz"
	"github.com/vidtube/backend/internal/errs"
	"github.com/vidtube/backend/internal/models"
	"github.com/vidtube/backend/internal/store"
	"github.com/vidtube/backend/internal/view"
)

func newFixture(t *testing.T) (*store.Memory, *Service, store.ID, store.ID) {
	t.Helper()
	mem := store.NewMemory()
	service := NewService(mem, authz.NewGuard(mem))
	alice, bob := store.NewID(), store.NewID()

	ctx := context.Background()
	for _, u := range []models.User{
		{ID: alice, Username: "alice", FullName: "Alice", Avatar: "a.png", Email: "alice@example.com"},
		{ID: bob, Username: "bob", FullName: "Bob", Avatar: "b.png", Email: "bob@example.com"},
	} {
		if err := mem.Insert(ctx, models.Users, models.UserDoc(u)); err != nil {
			t.Fatalf("seed user: %v", err)
		}
	}
	return mem, service, alice, bob
}

func TestCreateValidation(t *testing.T) {
	_, service, alice, _ := newFixture(t)
	ctx := context.Background()

	if _, err := service.Create(ctx, alice, "   ", ""); !errors.Is(err, errs.ErrInvalidInput) {
		t.Fatalf("blank content: %v", err)
	}
	if _, err := service.Create(ctx, "", "hello", ""); !errors.Is(err, errs.ErrInvalidInput) {
		t.Fatalf("zero actor: %v", err)
	}

	tweet, err := service.Create(ctx, alice, "  hello world  ", "images/pic.png")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if tweet.Content != "hello world" || tweet.Image != "images/pic.png" {
		t.Fatalf("unexpected tweet: %+v", tweet)
	}
}

func TestListUserJoinedView(t *testing.T) {
	mem, service, alice, bob := newFixture(t)
	ctx := context.Background()

	tweet, err := service.Create(ctx, alice, "first post", "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := mem.Insert(ctx, models.Likes, store.Doc{
		"_id": store.NewID(), "tweet": tweet.ID, "likedBy": bob,
	}); err != nil {
		t.Fatalf("seed like: %v", err)
	}

	page, err := service.ListUser(ctx, alice, bob, view.PageRequest{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(page.Data) != 1 {
		t.Fatalf("expected one tweet: %+v", page)
	}
	got := page.Data[0]
	if got.LikeCount != 1 || !got.IsLiked || got.Owner.Username != "alice" {
		t.Fatalf("joined view wrong: %+v", got)
	}

	// Alice sees the count but not Bob's flag.
	page, err = service.ListUser(ctx, alice, alice, view.PageRequest{})
	if err != nil || page.Data[0].IsLiked {
		t.Fatalf("isLiked must be actor-relative: %+v %v", page.Data, err)
	}
}

func TestListUserUnknownUser(t *testing.T) {
	_, service, _, bob := newFixture(t)
	if _, err := service.ListUser(context.Background(), store.NewID(), bob, view.PageRequest{}); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("unknown user: %v", err)
	}
}

func TestUpdateAndDeleteOwnership(t *testing.T) {
	mem, service, alice, bob := newFixture(t)
	ctx := context.Background()

	tweet, err := service.Create(ctx, alice, "mine", "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := service.Update(ctx, tweet.ID, bob, "stolen"); !errors.Is(err, errs.ErrUnauthorized) {
		t.Fatalf("foreign update: %v", err)
	}
	doc, _ := mem.FindByID(ctx, models.Tweets, tweet.ID)
	if store.AsString(doc, "content") != "mine" {
		t.Fatalf("denied update must leave record unchanged: %+v", doc)
	}

	updated, err := service.Update(ctx, tweet.ID, alice, "edited")
	if err != nil || updated.Content != "edited" {
		t.Fatalf("owner update: %+v %v", updated, err)
	}

	if err := service.Delete(ctx, tweet.ID, bob); !errors.Is(err, errs.ErrUnauthorized) {
		t.Fatalf("foreign delete: %v", err)
	}
	if err := service.Delete(ctx, tweet.ID, alice); err != nil {
		t.Fatalf("owner delete: %v", err)
	}
	if err := service.Delete(ctx, tweet.ID, alice); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("second delete: %v", err)
	}
}
