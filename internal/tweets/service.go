// Package tweets implements the short-post operations.
package tweets

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/vidtube/backend/internal/authz"
	"github.com/vidtube/backend/internal/errs"
	"github.com/vidtube/backend/internal/models"
	"github.com/vidtube/backend/internal/store"
	"github.com/vidtube/backend/internal/view"
)

// Service composes the view builder and ownership guard into tweet
// operations.
type Service struct {
	store store.Store
	guard *authz.Guard
	now   func() time.Time
}

// NewService constructs the tweet service.
func NewService(s store.Store, guard *authz.Guard) *Service {
	return &Service{store: s, guard: guard, now: func() time.Time { return time.Now().UTC() }}
}

// Create posts a tweet, optionally carrying an uploaded image ref.
func (s *Service) Create(ctx context.Context, actor store.ID, content, image string) (models.Tweet, error) {
	content = strings.TrimSpace(content)
	switch {
	case actor.IsZero():
		return models.Tweet{}, fmt.Errorf("%w: actor is required", errs.ErrInvalidInput)
	case content == "":
		return models.Tweet{}, fmt.Errorf("%w: tweet content is required", errs.ErrInvalidInput)
	}

	now := s.now()
	tweet := models.Tweet{
		ID:        store.NewID(),
		Owner:     actor,
		Content:   content,
		Image:     image,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.Insert(ctx, models.Tweets, models.TweetDoc(tweet)); err != nil {
		return models.Tweet{}, fmt.Errorf("create tweet: %w", err)
	}
	return tweet, nil
}

// ListUser returns a user's tweets, newest first, each joined with the
// owner summary, like count and the actor's like flag.
func (s *Service) ListUser(ctx context.Context, userID, actor store.ID, req view.PageRequest) (view.Page[models.TweetView], error) {
	if _, err := s.store.FindByID(ctx, models.Users, userID); err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return view.Page[models.TweetView]{}, errs.ErrNotFound
		}
		return view.Page[models.TweetView]{}, fmt.Errorf("load user: %w", err)
	}

	page, err := view.NewQuery(models.Tweets).
		MatchEq("owner", userID).
		Join(models.Users, "owner", "_id", "owner").
		Join(models.Likes, "_id", "tweet", "likes").
		Count("likeCount", "likes").
		Flag("isLiked", "likes", "likedBy", actor).
		First("owner", "owner").
		Project("content", "image", "createdAt", "likeCount", "isLiked").
		ProjectOwner("owner").
		SortBy("createdAt", true).
		RunPage(ctx, s.store, req)
	if err != nil {
		return view.Page[models.TweetView]{}, fmt.Errorf("list tweets: %w", err)
	}

	return view.MapPage(page, viewFromDoc), nil
}

// Update replaces a tweet's content. Only the owner may update.
func (s *Service) Update(ctx context.Context, tweetID, actor store.ID, content string) (models.Tweet, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return models.Tweet{}, fmt.Errorf("%w: tweet content is required", errs.ErrInvalidInput)
	}

	doc, err := s.guard.RequireOwner(ctx, models.Tweets, tweetID, actor, "owner")
	if err != nil {
		return models.Tweet{}, err
	}

	now := s.now()
	err = s.store.UpdateOne(ctx, models.Tweets, store.MatchID(tweetID), store.Update{
		Set: store.Doc{"content": content, "updatedAt": now},
	})
	if err != nil {
		return models.Tweet{}, fmt.Errorf("update tweet: %w", err)
	}

	tweet := models.TweetFromDoc(doc)
	tweet.Content = content
	tweet.UpdatedAt = now
	return tweet, nil
}

// Delete removes a tweet. Only the owner may delete.
func (s *Service) Delete(ctx context.Context, tweetID, actor store.ID) error {
	if _, err := s.guard.RequireOwner(ctx, models.Tweets, tweetID, actor, "owner"); err != nil {
		return err
	}
	deleted, err := s.store.DeleteOne(ctx, models.Tweets, store.MatchID(tweetID))
	if err != nil {
		return fmt.Errorf("delete tweet: %w", err)
	}
	if !deleted {
		return errs.ErrNotFound
	}
	return nil
}

func viewFromDoc(d store.Doc) models.TweetView {
	return models.TweetView{
		ID:        store.AsID(d, "_id"),
		Content:   store.AsString(d, "content"),
		Image:     store.AsString(d, "image"),
		Owner:     models.OwnerFromDoc(store.AsDoc(d, "owner")),
		LikeCount: store.AsInt64(d, "likeCount"),
		IsLiked:   store.AsBool(d, "isLiked"),
		CreatedAt: store.AsTime(d, "createdAt"),
	}
}
