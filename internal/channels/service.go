// Package channels serves user-facing channel surfaces: the public
// profile, the viewer's watch history, and the owner-only dashboard
// stats.
package channels

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/vidtube/backend/internal/errs"
	"github.com/vidtube/backend/internal/models"
	"github.com/vidtube/backend/internal/store"
	"github.com/vidtube/backend/internal/view"
)

// Service reads channel views off the entity store.
type Service struct {
	store store.Store
}

// NewService constructs the channel service.
func NewService(s store.Store) *Service {
	return &Service{store: s}
}

// Profile returns a channel profile by username. Subscriber and following
// counts and the actor-relative isSubscribed flag all derive from the
// same joined subscription arrays in one execution. An anonymous actor
// always sees isSubscribed=false.
func (s *Service) Profile(ctx context.Context, username string, actor store.ID) (models.ChannelProfile, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" {
		return models.ChannelProfile{}, fmt.Errorf("%w: username is required", errs.ErrInvalidInput)
	}

	doc, found, err := view.NewQuery(models.Users).
		MatchEq("username", username).
		Join(models.Subscriptions, "_id", "channel", "subscribers").
		Join(models.Subscriptions, "_id", "subscriber", "following").
		Count("subscriberCount", "subscribers").
		Count("followingCount", "following").
		Flag("isSubscribed", "subscribers", "subscriber", actor).
		Project("username", "fullName", "email", "avatar", "coverImage",
			"subscriberCount", "followingCount", "isSubscribed").
		RunOne(ctx, s.store)
	if err != nil {
		return models.ChannelProfile{}, fmt.Errorf("channel profile: %w", err)
	}
	if !found {
		return models.ChannelProfile{}, errs.ErrNotFound
	}

	return models.ChannelProfile{
		ID:              store.AsID(doc, "_id"),
		Username:        store.AsString(doc, "username"),
		FullName:        store.AsString(doc, "fullName"),
		Email:           store.AsString(doc, "email"),
		Avatar:          store.AsString(doc, "avatar"),
		CoverImage:      store.AsString(doc, "coverImage"),
		SubscriberCount: store.AsInt64(doc, "subscriberCount"),
		FollowingCount:  store.AsInt64(doc, "followingCount"),
		IsSubscribed:    store.AsBool(doc, "isSubscribed"),
	}, nil
}

// WatchHistory returns the user's watched videos, most recent first.
// History order lives in the user record, not in any video field, so the
// page window is applied to the id list before the videos are fetched in
// one batch. Videos deleted since they were watched are dropped from the
// page.
func (s *Service) WatchHistory(ctx context.Context, userID store.ID, req view.PageRequest) (view.Page[models.VideoSummary], error) {
	user, err := s.store.FindByID(ctx, models.Users, userID)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return view.Page[models.VideoSummary]{}, errs.ErrNotFound
		}
		return view.Page[models.VideoSummary]{}, fmt.Errorf("load user: %w", err)
	}

	history := store.AsIDs(user, "watchHistory")
	// Stored oldest first; the view is most recent first.
	recent := make([]store.ID, 0, len(history))
	for i := len(history) - 1; i >= 0; i-- {
		recent = append(recent, history[i])
	}

	req = req.Normalize()
	window, hasMore := pageWindow(recent, req)

	summaries, err := s.videoSummaries(ctx, window)
	if err != nil {
		return view.Page[models.VideoSummary]{}, err
	}

	data := make([]models.VideoSummary, 0, len(window))
	for _, id := range window {
		if summary, ok := summaries[id]; ok {
			data = append(data, summary)
		}
	}
	return view.Page[models.VideoSummary]{
		Data:    data,
		Page:    req.Page,
		Limit:   req.Limit,
		HasMore: hasMore,
	}, nil
}

// Stats returns the channel dashboard numbers. Only the channel owner may
// read them.
func (s *Service) Stats(ctx context.Context, channel, actor store.ID) (models.ChannelStats, error) {
	if channel.IsZero() {
		return models.ChannelStats{}, fmt.Errorf("%w: channel id is required", errs.ErrInvalidInput)
	}
	if actor != channel {
		return models.ChannelStats{}, errs.ErrUnauthorized
	}
	if _, err := s.store.FindByID(ctx, models.Users, channel); err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return models.ChannelStats{}, errs.ErrNotFound
		}
		return models.ChannelStats{}, fmt.Errorf("load channel: %w", err)
	}

	videos, err := view.NewQuery(models.Videos).
		MatchEq("owner", channel).
		Join(models.Likes, "_id", "video", "likes").
		Count("likeCount", "likes").
		Project("views", "likeCount").
		Run(ctx, s.store)
	if err != nil {
		return models.ChannelStats{}, fmt.Errorf("channel stats: %w", err)
	}

	stats := models.ChannelStats{VideoCount: int64(len(videos))}
	for _, v := range videos {
		stats.TotalViews += store.AsInt64(v, "views")
		stats.TotalLikes += store.AsInt64(v, "likeCount")
	}

	subs, err := view.NewQuery(models.Subscriptions).
		MatchEq("channel", channel).
		Project("createdAt").
		Run(ctx, s.store)
	if err != nil {
		return models.ChannelStats{}, fmt.Errorf("channel stats: %w", err)
	}
	stats.SubscriberCount = int64(len(subs))
	return stats, nil
}

// videoSummaries fetches the named videos in one query, joined with their
// owner summaries, keyed by video id.
func (s *Service) videoSummaries(ctx context.Context, ids []store.ID) (map[store.ID]models.VideoSummary, error) {
	if len(ids) == 0 {
		return map[store.ID]models.VideoSummary{}, nil
	}
	values := make([]any, 0, len(ids))
	seen := make(map[store.ID]bool)
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		values = append(values, id)
	}

	docs, err := view.NewQuery(models.Videos).
		MatchIn("_id", values).
		Join(models.Users, "owner", "_id", "owner").
		First("owner", "owner").
		Project("title", "thumbnail", "duration").
		ProjectOwner("owner").
		Run(ctx, s.store)
	if err != nil {
		return nil, fmt.Errorf("load history videos: %w", err)
	}

	summaries := make(map[store.ID]models.VideoSummary, len(docs))
	for _, d := range docs {
		summaries[store.AsID(d, "_id")] = models.VideoSummary{
			ID:        store.AsID(d, "_id"),
			Title:     store.AsString(d, "title"),
			Thumbnail: store.AsString(d, "thumbnail"),
			Duration:  store.AsFloat64(d, "duration"),
			Owner:     models.OwnerFromDoc(store.AsDoc(d, "owner")),
		}
	}
	return summaries, nil
}

func pageWindow(ids []store.ID, req view.PageRequest) ([]store.ID, bool) {
	skip := req.Skip()
	if skip >= int64(len(ids)) {
		return nil, false
	}
	rest := ids[skip:]
	if int64(len(rest)) > req.Limit {
		return rest[:req.Limit], true
	}
	return rest, false
}
