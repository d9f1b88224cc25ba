// Package videos implements the video operations: publish, joined single
// and list views with visibility filtering, owner-gated metadata updates
// and deletion, and view recording with watch-history append.
package videos

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/vidtube/backend/internal/authz"
	"github.com/vidtube/backend/internal/errs"
	"github.com/vidtube/backend/internal/logging"
	"github.com/vidtube/backend/internal/models"
	"github.com/vidtube/backend/internal/store"
	"github.com/vidtube/backend/internal/view"
)

// Cleaner schedules best-effort deletion of stored media assets.
type Cleaner interface {
	Enqueue(ctx context.Context, keys ...string) error
}

// Service composes the view builder and ownership guard into video
// operations.
type Service struct {
	store   store.Store
	guard   *authz.Guard
	cleaner Cleaner
	now     func() time.Time
}

// NewService constructs the video service. cleaner may be nil when asset
// cleanup is not wired (tests, local development without object storage).
func NewService(s store.Store, guard *authz.Guard, cleaner Cleaner) *Service {
	return &Service{store: s, guard: guard, cleaner: cleaner, now: func() time.Time { return time.Now().UTC() }}
}

// PublishInput carries the fields of a new video. Media refs come from
// the upload collaborator and must be present.
type PublishInput struct {
	Title       string
	Description string
	VideoFile   string
	Thumbnail   string
	Duration    float64
	IsPublished bool
}

// Publish creates a video owned by the actor.
func (s *Service) Publish(ctx context.Context, owner store.ID, in PublishInput) (models.Video, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	switch {
	case owner.IsZero():
		return models.Video{}, fmt.Errorf("%w: owner is required", errs.ErrInvalidInput)
	case in.Title == "":
		return models.Video{}, fmt.Errorf("%w: title is required", errs.ErrInvalidInput)
	case in.Description == "":
		return models.Video{}, fmt.Errorf("%w: description is required", errs.ErrInvalidInput)
	case in.VideoFile == "" || in.Thumbnail == "":
		return models.Video{}, fmt.Errorf("%w: video file and thumbnail refs are required", errs.ErrInvalidInput)
	}

	ctx, span := logging.StartSpan(ctx, "videos.publish")
	defer span.End()

	now := s.now()
	video := models.Video{
		ID:          store.NewID(),
		Owner:       owner,
		Title:       in.Title,
		Description: in.Description,
		VideoFile:   in.VideoFile,
		Thumbnail:   in.Thumbnail,
		Duration:    in.Duration,
		IsPublished: in.IsPublished,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.Insert(ctx, models.Videos, models.VideoDoc(video)); err != nil {
		return models.Video{}, fmt.Errorf("publish video: %w", err)
	}
	return video, nil
}

// Get returns the joined view of one video: owner summary, like and
// comment counts and the actor's like flag, computed in a single query.
// Unpublished videos are NotFound for everyone but their owner.
func (s *Service) Get(ctx context.Context, videoID, actor store.ID) (models.VideoView, error) {
	if videoID.IsZero() {
		return models.VideoView{}, fmt.Errorf("%w: video id is required", errs.ErrInvalidInput)
	}

	doc, found, err := view.NewQuery(models.Videos).
		MatchEq("_id", videoID).
		VisibleTo(actor, "owner").
		Join(models.Users, "owner", "_id", "owner").
		Join(models.Likes, "_id", "video", "likes").
		Join(models.Comments, "_id", "video", "comments").
		Count("likeCount", "likes").
		Count("commentCount", "comments").
		Flag("isLiked", "likes", "likedBy", actor).
		First("owner", "owner").
		Project("title", "description", "videoFile", "thumbnail", "duration", "views",
			"createdAt", "likeCount", "commentCount", "isLiked").
		ProjectOwner("owner").
		RunOne(ctx, s.store)
	if err != nil {
		return models.VideoView{}, fmt.Errorf("get video: %w", err)
	}
	if !found {
		return models.VideoView{}, errs.ErrNotFound
	}
	return viewFromDoc(doc), nil
}

// ListOptions filter and order a video listing.
type ListOptions struct {
	// Owner, when set, restricts the listing to one channel.
	Owner store.ID
	// SortField is "createdAt" or "views"; anything else falls back to
	// recency.
	SortField string
	SortAsc   bool
}

// List returns a page of visible videos joined with their owner summary.
func (s *Service) List(ctx context.Context, actor store.ID, opts ListOptions, req view.PageRequest) (view.Page[models.VideoView], error) {
	q := view.NewQuery(models.Videos)
	if !opts.Owner.IsZero() {
		q.MatchEq("owner", opts.Owner)
	}
	sortField := opts.SortField
	if sortField != "views" {
		sortField = "createdAt"
	}

	page, err := q.
		VisibleTo(actor, "owner").
		Join(models.Users, "owner", "_id", "owner").
		First("owner", "owner").
		Project("title", "description", "thumbnail", "duration", "views", "createdAt").
		ProjectOwner("owner").
		SortBy(sortField, !opts.SortAsc).
		RunPage(ctx, s.store, req)
	if err != nil {
		return view.Page[models.VideoView]{}, fmt.Errorf("list videos: %w", err)
	}
	return view.MapPage(page, viewFromDoc), nil
}

// UpdateInput carries the mutable metadata fields; nil means unchanged.
type UpdateInput struct {
	Title       *string
	Description *string
	Thumbnail   *string
	IsPublished *bool
}

// Update edits video metadata. Only the owner may update.
func (s *Service) Update(ctx context.Context, videoID, actor store.ID, in UpdateInput) (models.Video, error) {
	doc, err := s.guard.RequireOwner(ctx, models.Videos, videoID, actor, "owner")
	if err != nil {
		return models.Video{}, err
	}

	set := store.Doc{}
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return models.Video{}, fmt.Errorf("%w: title is required", errs.ErrInvalidInput)
		}
		set["title"] = title
	}
	if in.Description != nil {
		description := strings.TrimSpace(*in.Description)
		if description == "" {
			return models.Video{}, fmt.Errorf("%w: description is required", errs.ErrInvalidInput)
		}
		set["description"] = description
	}
	if in.Thumbnail != nil {
		set["thumbnail"] = *in.Thumbnail
	}
	if in.IsPublished != nil {
		set["isPublished"] = *in.IsPublished
	}
	if len(set) == 0 {
		return models.VideoFromDoc(doc), nil
	}
	set["updatedAt"] = s.now()

	if err := s.store.UpdateOne(ctx, models.Videos, store.MatchID(videoID), store.Update{Set: set}); err != nil {
		return models.Video{}, fmt.Errorf("update video: %w", err)
	}

	updated, err := s.store.FindByID(ctx, models.Videos, videoID)
	if err != nil {
		return models.Video{}, fmt.Errorf("reload video: %w", err)
	}
	return models.VideoFromDoc(updated), nil
}

// Delete removes a video and schedules best-effort cleanup of its media
// assets. A cleanup failure is logged but never masks the delete result.
func (s *Service) Delete(ctx context.Context, videoID, actor store.ID) error {
	ctx, span := logging.StartSpan(ctx, "videos.delete")
	defer span.End()

	doc, err := s.guard.RequireOwner(ctx, models.Videos, videoID, actor, "owner")
	if err != nil {
		return err
	}

	deleted, err := s.store.DeleteOne(ctx, models.Videos, store.MatchID(videoID))
	if err != nil {
		return fmt.Errorf("delete video: %w", err)
	}
	if !deleted {
		return errs.ErrNotFound
	}

	if s.cleaner != nil {
		video := models.VideoFromDoc(doc)
		if err := s.cleaner.Enqueue(ctx, video.VideoFile, video.Thumbnail); err != nil {
			logging.FromContext(ctx).Warn("schedule asset cleanup", "videoId", video.ID, "error", err)
		}
	}
	return nil
}

// RecordView increments a visible video's view count and appends the
// video to the viewer's watch history. An anonymous viewer only counts
// the view.
func (s *Service) RecordView(ctx context.Context, videoID, viewer store.ID) error {
	doc, err := s.store.FindByID(ctx, models.Videos, videoID)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return errs.ErrNotFound
		}
		return fmt.Errorf("load video: %w", err)
	}
	video := models.VideoFromDoc(doc)
	if !video.IsPublished && video.Owner != viewer {
		return errs.ErrNotFound
	}

	err = s.store.UpdateOne(ctx, models.Videos, store.MatchID(videoID), store.Update{
		Inc: map[string]int64{"views": 1},
	})
	if err != nil {
		return fmt.Errorf("record view: %w", err)
	}

	if viewer.IsZero() {
		return nil
	}
	err = s.store.UpdateOne(ctx, models.Users, store.MatchID(viewer), store.Update{
		Push: map[string]any{"watchHistory": videoID},
	})
	if err != nil {
		return fmt.Errorf("append watch history: %w", err)
	}
	return nil
}

func viewFromDoc(d store.Doc) models.VideoView {
	return models.VideoView{
		ID:           store.AsID(d, "_id"),
		Title:        store.AsString(d, "title"),
		Description:  store.AsString(d, "description"),
		VideoFile:    store.AsString(d, "videoFile"),
		Thumbnail:    store.AsString(d, "thumbnail"),
		Duration:     store.AsFloat64(d, "duration"),
		Views:        store.AsInt64(d, "views"),
		Owner:        models.OwnerFromDoc(store.AsDoc(d, "owner")),
		LikeCount:    store.AsInt64(d, "likeCount"),
		CommentCount: store.AsInt64(d, "commentCount"),
		IsLiked:      store.AsBool(d, "isLiked"),
		CreatedAt:    store.AsTime(d, "createdAt"),
	}
}
