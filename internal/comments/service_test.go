package comments

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/vidtube/backend/internal/authz"
	"github.com/vidtube/backend/internal/errs"
	"github.com/vidtube/backend/internal/models"
	"github.com/vidtube/backend/internal/store"
	"github.com/vidtube/backend/internal/view"
)

type fixture struct {
	mem     *store.Memory
	service *Service
	alice   store.ID
	bob     store.ID
	video   store.ID
	draft   store.ID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	mem := store.NewMemory()
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	f := &fixture{
		mem:     mem,
		service: NewService(mem, authz.NewGuard(mem)),
		alice:   store.NewID(),
		bob:     store.NewID(),
	}

	for _, u := range []models.User{
		{ID: f.alice, Username: "alice", FullName: "Alice", Avatar: "a.png", Email: "alice@example.com"},
		{ID: f.bob, Username: "bob", FullName: "Bob", Avatar: "b.png", Email: "bob@example.com"},
	} {
		if err := mem.Insert(ctx, models.Users, models.UserDoc(u)); err != nil {
			t.Fatalf("seed user: %v", err)
		}
	}

	f.video = store.NewID()
	f.draft = store.NewID()
	for _, v := range []models.Video{
		{ID: f.video, Owner: f.alice, Title: "published", IsPublished: true, CreatedAt: now},
		{ID: f.draft, Owner: f.alice, Title: "draft", IsPublished: false, CreatedAt: now},
	} {
		if err := mem.Insert(ctx, models.Videos, models.VideoDoc(v)); err != nil {
			t.Fatalf("seed video: %v", err)
		}
	}
	return f
}

func TestListEmptyIsSuccess(t *testing.T) {
	f := newFixture(t)

	page, err := f.service.List(context.Background(), f.video, f.bob, view.PageRequest{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if page.Data == nil || len(page.Data) != 0 || page.HasMore {
		t.Fatalf("expected empty page: %+v", page)
	}
}

func TestAddAndListJoinedView(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	comment, err := f.service.Add(ctx, f.video, f.bob, "  nice video  ")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if comment.Content != "nice video" {
		t.Fatalf("content not trimmed: %q", comment.Content)
	}

	// Alice likes Bob's comment.
	if err := f.mem.Insert(ctx, models.Likes, store.Doc{
		"_id": store.NewID(), "comment": comment.ID, "likedBy": f.alice,
	}); err != nil {
		t.Fatalf("seed like: %v", err)
	}

	page, err := f.service.List(ctx, f.video, f.alice, view.PageRequest{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(page.Data) != 1 {
		t.Fatalf("expected one comment: %+v", page)
	}
	got := page.Data[0]
	if got.LikeCount != 1 || !got.IsLiked {
		t.Fatalf("like data wrong: %+v", got)
	}
	if got.Owner.Username != "bob" || got.Owner.FullName != "Bob" {
		t.Fatalf("owner summary wrong: %+v", got.Owner)
	}

	// Bob has not liked his own comment.
	page, err = f.service.List(ctx, f.video, f.bob, view.PageRequest{})
	if err != nil {
		t.Fatalf("list as bob: %v", err)
	}
	if page.Data[0].IsLiked {
		t.Fatalf("isLiked must be actor-relative: %+v", page.Data[0])
	}
}

func TestAddValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.service.Add(ctx, f.video, f.bob, "   "); !errors.Is(err, errs.ErrInvalidInput) {
		t.Fatalf("blank content: %v", err)
	}
	if _, err := f.service.Add(ctx, store.NewID(), f.bob, "hello"); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("missing video: %v", err)
	}
}

func TestDraftVisibility(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// The draft is invisible to Bob for both listing and commenting.
	if _, err := f.service.List(ctx, f.draft, f.bob, view.PageRequest{}); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("list draft as non-owner: %v", err)
	}
	if _, err := f.service.Add(ctx, f.draft, f.bob, "hi"); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("comment draft as non-owner: %v", err)
	}

	// The owner can do both.
	if _, err := f.service.Add(ctx, f.draft, f.alice, "note to self"); err != nil {
		t.Fatalf("comment draft as owner: %v", err)
	}
	page, err := f.service.List(ctx, f.draft, f.alice, view.PageRequest{})
	if err != nil || len(page.Data) != 1 {
		t.Fatalf("list draft as owner: %+v %v", page, err)
	}
}

func TestUpdateOwnership(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	comment, err := f.service.Add(ctx, f.video, f.bob, "original")
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	if _, err := f.service.Update(ctx, comment.ID, f.alice, "hijacked"); !errors.Is(err, errs.ErrUnauthorized) {
		t.Fatalf("foreign update: %v", err)
	}
	doc, _ := f.mem.FindByID(ctx, models.Comments, comment.ID)
	if store.AsString(doc, "content") != "original" {
		t.Fatalf("denied update must leave record unchanged: %+v", doc)
	}

	if _, err := f.service.Update(ctx, store.NewID(), f.bob, "x"); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("missing comment: %v", err)
	}

	updated, err := f.service.Update(ctx, comment.ID, f.bob, "edited")
	if err != nil || updated.Content != "edited" {
		t.Fatalf("owner update: %+v %v", updated, err)
	}
}

func TestDeleteOwnership(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	comment, err := f.service.Add(ctx, f.video, f.bob, "to delete")
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	if err := f.service.Delete(ctx, comment.ID, f.alice); !errors.Is(err, errs.ErrUnauthorized) {
		t.Fatalf("foreign delete: %v", err)
	}
	if err := f.service.Delete(ctx, comment.ID, f.bob); err != nil {
		t.Fatalf("owner delete: %v", err)
	}
	if err := f.service.Delete(ctx, comment.ID, f.bob); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("second delete: %v", err)
	}
}

func TestListSortsNewestFirst(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		at := base.Add(time.Duration(i) * time.Minute)
		f.service.now = func() time.Time { return at }
		if _, err := f.service.Add(ctx, f.video, f.bob, "comment"); err != nil {
			t.Fatalf("add %d: %v", i, err)
		}
	}

	page, err := f.service.List(ctx, f.video, f.bob, view.PageRequest{Page: 1, Limit: 2})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(page.Data) != 2 || !page.HasMore {
		t.Fatalf("window wrong: %+v", page)
	}
	if !page.Data[0].CreatedAt.After(page.Data[1].CreatedAt) {
		t.Fatalf("not newest first: %v then %v", page.Data[0].CreatedAt, page.Data[1].CreatedAt)
	}
}
