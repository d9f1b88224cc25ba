package channels

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

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
	carol   store.ID
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	mem := store.NewMemory()
	f := fixture{
		mem:     mem,
		service: NewService(mem),
		alice:   store.NewID(),
		bob:     store.NewID(),
		carol:   store.NewID(),
	}
	ctx := context.Background()
	users := []models.User{
		{ID: f.alice, Username: "alice", FullName: "Alice", Avatar: "a.png", CoverImage: "ca.png", Email: "alice@example.com"},
		{ID: f.bob, Username: "bob", FullName: "Bob", Avatar: "b.png", Email: "bob@example.com"},
		{ID: f.carol, Username: "carol", FullName: "Carol", Avatar: "c.png", Email: "carol@example.com"},
	}
	for _, u := range users {
		if err := mem.Insert(ctx, models.Users, models.UserDoc(u)); err != nil {
			t.Fatalf("seed user: %v", err)
		}
	}
	return f
}

func (f fixture) subscribe(t *testing.T, subscriber, channel store.ID) {
	t.Helper()
	err := f.mem.Insert(context.Background(), models.Subscriptions, store.Doc{
		"_id": store.NewID(), "subscriber": subscriber, "channel": channel,
		"createdAt": time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("seed subscription: %v", err)
	}
}

func (f fixture) seedVideo(t *testing.T, owner store.ID, title string, views int64) store.ID {
	t.Helper()
	id := store.NewID()
	err := f.mem.Insert(context.Background(), models.Videos, models.VideoDoc(models.Video{
		ID: id, Owner: owner, Title: title, VideoFile: title + ".mp4",
		Thumbnail: title + ".png", Duration: 30, Views: views,
		IsPublished: true, CreatedAt: time.Now().UTC(),
	}))
	if err != nil {
		t.Fatalf("seed video: %v", err)
	}
	return id
}

func TestProfile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.subscribe(t, f.bob, f.alice)
	f.subscribe(t, f.carol, f.alice)
	f.subscribe(t, f.alice, f.carol)

	profile, err := f.service.Profile(ctx, "  ALICE ", f.bob)
	if err != nil {
		t.Fatalf("profile: %v", err)
	}
	if profile.Username != "alice" || profile.FullName != "Alice" || profile.CoverImage != "ca.png" {
		t.Fatalf("profile fields wrong: %+v", profile)
	}
	if profile.SubscriberCount != 2 || profile.FollowingCount != 1 {
		t.Fatalf("counts wrong: %+v", profile)
	}
	if !profile.IsSubscribed {
		t.Fatalf("bob is subscribed: %+v", profile)
	}

	profile, err = f.service.Profile(ctx, "alice", f.carol)
	if err != nil || !profile.IsSubscribed {
		t.Fatalf("carol is subscribed: %+v %v", profile, err)
	}

	// Anonymous viewers never see the flag set.
	profile, err = f.service.Profile(ctx, "alice", "")
	if err != nil || profile.IsSubscribed {
		t.Fatalf("anonymous flag must be false: %+v %v", profile, err)
	}

	if _, err := f.service.Profile(ctx, "nobody", f.bob); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("unknown username: %v", err)
	}
	if _, err := f.service.Profile(ctx, "   ", f.bob); !errors.Is(err, errs.ErrInvalidInput) {
		t.Fatalf("blank username: %v", err)
	}
}

func TestProfileWithNoSubscriptions(t *testing.T) {
	f := newFixture(t)
	profile, err := f.service.Profile(context.Background(), "bob", f.alice)
	if err != nil {
		t.Fatalf("profile: %v", err)
	}
	if profile.SubscriberCount != 0 || profile.FollowingCount != 0 || profile.IsSubscribed {
		t.Fatalf("fresh channel must read zero: %+v", profile)
	}
}

func TestWatchHistoryOrderAndWindow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	watched := make([]store.ID, 0, 5)
	for i := 0; i < 5; i++ {
		watched = append(watched, f.seedVideo(t, f.alice, fmt.Sprintf("v%d", i), 0))
	}
	for _, id := range watched {
		err := f.mem.UpdateOne(ctx, models.Users, store.MatchID(f.bob), store.Update{
			Push: map[string]any{"watchHistory": id},
		})
		if err != nil {
			t.Fatalf("record watch: %v", err)
		}
	}

	page, err := f.service.WatchHistory(ctx, f.bob, view.PageRequest{Limit: 2})
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(page.Data) != 2 || !page.HasMore {
		t.Fatalf("window wrong: %d hasMore=%v", len(page.Data), page.HasMore)
	}
	// Most recently watched first.
	if page.Data[0].ID != watched[4] || page.Data[1].ID != watched[3] {
		t.Fatalf("order wrong: %+v", page.Data)
	}
	if page.Data[0].Owner.Username != "alice" {
		t.Fatalf("owner not joined: %+v", page.Data[0])
	}

	page, err = f.service.WatchHistory(ctx, f.bob, view.PageRequest{Page: 3, Limit: 2})
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(page.Data) != 1 || page.HasMore || page.Data[0].ID != watched[0] {
		t.Fatalf("last window wrong: %+v hasMore=%v", page.Data, page.HasMore)
	}

	if _, err := f.service.WatchHistory(ctx, store.NewID(), view.PageRequest{}); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("unknown user: %v", err)
	}
}

func TestWatchHistoryDropsDeletedVideos(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	kept := f.seedVideo(t, f.alice, "kept", 0)
	doomed := f.seedVideo(t, f.alice, "doomed", 0)
	for _, id := range []store.ID{kept, doomed} {
		err := f.mem.UpdateOne(ctx, models.Users, store.MatchID(f.bob), store.Update{
			Push: map[string]any{"watchHistory": id},
		})
		if err != nil {
			t.Fatalf("record watch: %v", err)
		}
	}
	if _, err := f.mem.DeleteOne(ctx, models.Videos, store.MatchID(doomed)); err != nil {
		t.Fatalf("delete video: %v", err)
	}

	page, err := f.service.WatchHistory(ctx, f.bob, view.PageRequest{})
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(page.Data) != 1 || page.Data[0].ID != kept {
		t.Fatalf("deleted video must be dropped: %+v", page.Data)
	}
}

func TestStats(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	v1 := f.seedVideo(t, f.alice, "first", 10)
	v2 := f.seedVideo(t, f.alice, "second", 32)
	f.seedVideo(t, f.bob, "other", 999)

	likes := []struct {
		by    store.ID
		video store.ID
	}{{f.bob, v1}, {f.carol, v1}, {f.bob, v2}}
	for _, l := range likes {
		err := f.mem.Insert(ctx, models.Likes, store.Doc{
			"_id": store.NewID(), "video": l.video, "likedBy": l.by,
			"createdAt": time.Now().UTC(),
		})
		if err != nil {
			t.Fatalf("seed like: %v", err)
		}
	}
	f.subscribe(t, f.bob, f.alice)

	if _, err := f.service.Stats(ctx, f.alice, f.bob); !errors.Is(err, errs.ErrUnauthorized) {
		t.Fatalf("foreign stats: %v", err)
	}

	stats, err := f.service.Stats(ctx, f.alice, f.alice)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.VideoCount != 2 || stats.TotalViews != 42 || stats.TotalLikes != 3 || stats.SubscriberCount != 1 {
		t.Fatalf("stats wrong: %+v", stats)
	}

	missing := store.NewID()
	if _, err := f.service.Stats(ctx, missing, missing); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("unknown channel: %v", err)
	}
}
