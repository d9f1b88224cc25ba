// Package social covers the interaction graph: likes on videos, comments
// and tweets, and channel subscriptions, plus the list views derived from
// those edges.
package social

import (
	"context"
	"errors"
	"fmt"

	"github.com/vidtube/backend/internal/edges"
	"github.com/vidtube/backend/internal/errs"
	"github.com/vidtube/backend/internal/models"
	"github.com/vidtube/backend/internal/store"
	"github.com/vidtube/backend/internal/view"
)

// Service toggles interaction edges and serves the views built on them.
type Service struct {
	store store.Store
	edges *edges.Repository
}

// NewService constructs the social service.
func NewService(s store.Store, edges *edges.Repository) *Service {
	return &Service{store: s, edges: edges}
}

// ToggleVideoLike flips the actor's like on a video. The video must exist.
func (s *Service) ToggleVideoLike(ctx context.Context, actor, videoID store.ID) (edges.State, error) {
	if err := s.requireTarget(ctx, models.Videos, videoID); err != nil {
		return "", err
	}
	return s.edges.Toggle(ctx, edges.VideoLike, actor, videoID)
}

// ToggleCommentLike flips the actor's like on a comment.
func (s *Service) ToggleCommentLike(ctx context.Context, actor, commentID store.ID) (edges.State, error) {
	if err := s.requireTarget(ctx, models.Comments, commentID); err != nil {
		return "", err
	}
	return s.edges.Toggle(ctx, edges.CommentLike, actor, commentID)
}

// ToggleTweetLike flips the actor's like on a tweet.
func (s *Service) ToggleTweetLike(ctx context.Context, actor, tweetID store.ID) (edges.State, error) {
	if err := s.requireTarget(ctx, models.Tweets, tweetID); err != nil {
		return "", err
	}
	return s.edges.Toggle(ctx, edges.TweetLike, actor, tweetID)
}

// ToggleSubscription flips the subscriber's subscription to a channel.
// Subscribing to yourself is rejected.
func (s *Service) ToggleSubscription(ctx context.Context, subscriber, channel store.ID) (edges.State, error) {
	if subscriber == channel {
		return "", fmt.Errorf("%w: cannot subscribe to your own channel", errs.ErrInvalidInput)
	}
	if err := s.requireTarget(ctx, models.Users, channel); err != nil {
		return "", err
	}
	return s.edges.Toggle(ctx, edges.Subscription, subscriber, channel)
}

// Subscribers lists the users subscribed to a channel, newest first.
func (s *Service) Subscribers(ctx context.Context, channel store.ID, req view.PageRequest) (view.Page[models.SubscriptionView], error) {
	if err := s.requireTarget(ctx, models.Users, channel); err != nil {
		return view.Page[models.SubscriptionView]{}, err
	}
	return s.subscriptionPage(ctx, "channel", channel, "subscriber", req)
}

// Subscribed lists the channels a user follows, newest first.
func (s *Service) Subscribed(ctx context.Context, subscriber store.ID, req view.PageRequest) (view.Page[models.SubscriptionView], error) {
	if err := s.requireTarget(ctx, models.Users, subscriber); err != nil {
		return view.Page[models.SubscriptionView]{}, err
	}
	return s.subscriptionPage(ctx, "subscriber", subscriber, "channel", req)
}

func (s *Service) subscriptionPage(ctx context.Context, matchField string, id store.ID, userField string, req view.PageRequest) (view.Page[models.SubscriptionView], error) {
	page, err := view.NewQuery(models.Subscriptions).
		MatchEq(matchField, id).
		Join(models.Users, userField, "_id", "user").
		First("user", "user").
		Project("createdAt").
		ProjectOwner("user").
		SortBy("createdAt", true).
		RunPage(ctx, s.store, req)
	if err != nil {
		return view.Page[models.SubscriptionView]{}, fmt.Errorf("list subscriptions: %w", err)
	}
	return view.MapPage(page, func(d store.Doc) models.SubscriptionView {
		return models.SubscriptionView{
			ID:        store.AsID(d, "_id"),
			User:      models.OwnerFromDoc(store.AsDoc(d, "user")),
			CreatedAt: store.AsTime(d, "createdAt"),
		}
	}), nil
}

// LikedVideos lists the videos the actor has liked, newest like first.
// Only likes that target a video contribute; comment and tweet likes
// share the collection and are filtered out by the target field.
func (s *Service) LikedVideos(ctx context.Context, actor store.ID, req view.PageRequest) (view.Page[models.LikedVideoView], error) {
	if actor.IsZero() {
		return view.Page[models.LikedVideoView]{}, fmt.Errorf("%w: actor is required", errs.ErrInvalidInput)
	}

	page, err := view.NewQuery(models.Likes).
		MatchEq("likedBy", actor).
		MatchExists("video").
		Join(models.Videos, "video", "_id", "video").
		First("video", "video").
		Project("createdAt").
		ProjectSub("video", "_id", "title", "thumbnail", "duration", "owner").
		SortBy("createdAt", true).
		RunPage(ctx, s.store, req)
	if err != nil {
		return view.Page[models.LikedVideoView]{}, fmt.Errorf("list liked videos: %w", err)
	}

	owners, err := s.ownersByID(ctx, page.Data)
	if err != nil {
		return view.Page[models.LikedVideoView]{}, err
	}

	return view.MapPage(page, func(d store.Doc) models.LikedVideoView {
		video := store.AsDoc(d, "video")
		return models.LikedVideoView{
			ID: store.AsID(d, "_id"),
			Video: models.VideoSummary{
				ID:        store.AsID(video, "_id"),
				Title:     store.AsString(video, "title"),
				Thumbnail: store.AsString(video, "thumbnail"),
				Duration:  store.AsFloat64(video, "duration"),
				Owner:     owners[store.AsID(video, "owner")],
			},
			CreatedAt: store.AsTime(d, "createdAt"),
		}
	}), nil
}

// ownersByID fetches the owner summaries for every video on the page in
// one query.
func (s *Service) ownersByID(ctx context.Context, docs []store.Doc) (map[store.ID]models.OwnerSummary, error) {
	seen := make(map[store.ID]bool)
	ids := make([]any, 0, len(docs))
	for _, d := range docs {
		owner := store.AsID(store.AsDoc(d, "video"), "owner")
		if owner.IsZero() || seen[owner] {
			continue
		}
		seen[owner] = true
		ids = append(ids, owner)
	}
	if len(ids) == 0 {
		return map[store.ID]models.OwnerSummary{}, nil
	}

	users, err := view.NewQuery(models.Users).
		MatchIn("_id", ids).
		Project("fullName", "username", "avatar").
		Run(ctx, s.store)
	if err != nil {
		return nil, fmt.Errorf("load video owners: %w", err)
	}
	owners := make(map[store.ID]models.OwnerSummary, len(users))
	for _, u := range users {
		owners[store.AsID(u, "_id")] = models.OwnerFromDoc(u)
	}
	return owners, nil
}

func (s *Service) requireTarget(ctx context.Context, collection string, id store.ID) error {
	if id.IsZero() {
		return fmt.Errorf("%w: target id is required", errs.ErrInvalidInput)
	}
	if _, err := s.store.FindByID(ctx, collection, id); err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return errs.ErrNotFound
		}
		return fmt.Errorf("load %s target: %w", collection, err)
	}
	return nil
}
