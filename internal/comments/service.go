// Package comments implements the comment operations: paginated joined
// listing, creation against published videos, and owner-gated update and
// delete.
package comments

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

// Service composes the view builder and ownership guard into comment
// operations. The acting identity is always an explicit parameter.
type Service struct {
	store store.Store
	guard *authz.Guard
	now   func() time.Time
}

// NewService constructs the comment service.
func NewService(s store.Store, guard *authz.Guard) *Service {
	return &Service{store: s, guard: guard, now: func() time.Time { return time.Now().UTC() }}
}

// List returns the comments of a visible video, newest first, each joined
// with its owner summary, like count and the actor's like flag. A video
// with no comments yields an empty page, not an error.
func (s *Service) List(ctx context.Context, videoID, actor store.ID, req view.PageRequest) (view.Page[models.CommentView], error) {
	if _, err := s.visibleVideo(ctx, videoID, actor); err != nil {
		return view.Page[models.CommentView]{}, err
	}

	page, err := view.NewQuery(models.Comments).
		MatchEq("video", videoID).
		Join(models.Users, "owner", "_id", "owner").
		Join(models.Likes, "_id", "comment", "likes").
		Count("likeCount", "likes").
		Flag("isLiked", "likes", "likedBy", actor).
		First("owner", "owner").
		Project("content", "createdAt", "likeCount", "isLiked").
		ProjectOwner("owner").
		SortBy("createdAt", true).
		RunPage(ctx, s.store, req)
	if err != nil {
		return view.Page[models.CommentView]{}, fmt.Errorf("list comments: %w", err)
	}

	return view.MapPage(page, viewFromDoc), nil
}

// Add creates a comment on a visible video.
func (s *Service) Add(ctx context.Context, videoID, actor store.ID, content string) (models.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return models.Comment{}, fmt.Errorf("%w: comment content is required", errs.ErrInvalidInput)
	}
	if _, err := s.visibleVideo(ctx, videoID, actor); err != nil {
		return models.Comment{}, err
	}

	now := s.now()
	comment := models.Comment{
		ID:        store.NewID(),
		Owner:     actor,
		Video:     videoID,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.Insert(ctx, models.Comments, models.CommentDoc(comment)); err != nil {
		return models.Comment{}, fmt.Errorf("add comment: %w", err)
	}
	return comment, nil
}

// Update replaces a comment's content. Only the owner may update; a
// missing comment is NotFound, a foreign one Unauthorized.
func (s *Service) Update(ctx context.Context, commentID, actor store.ID, content string) (models.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return models.Comment{}, fmt.Errorf("%w: comment content is required", errs.ErrInvalidInput)
	}

	doc, err := s.guard.RequireOwner(ctx, models.Comments, commentID, actor, "owner")
	if err != nil {
		return models.Comment{}, err
	}

	now := s.now()
	err = s.store.UpdateOne(ctx, models.Comments, store.MatchID(commentID), store.Update{
		Set: store.Doc{"content": content, "updatedAt": now},
	})
	if err != nil {
		return models.Comment{}, fmt.Errorf("update comment: %w", err)
	}

	comment := models.CommentFromDoc(doc)
	comment.Content = content
	comment.UpdatedAt = now
	return comment, nil
}

// Delete removes a comment. Only the owner may delete.
func (s *Service) Delete(ctx context.Context, commentID, actor store.ID) error {
	if _, err := s.guard.RequireOwner(ctx, models.Comments, commentID, actor, "owner"); err != nil {
		return err
	}
	deleted, err := s.store.DeleteOne(ctx, models.Comments, store.MatchID(commentID))
	if err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	if !deleted {
		return errs.ErrNotFound
	}
	return nil
}

// visibleVideo loads a video and applies the visibility rule: published,
// or owned by the actor. Anything else is NotFound.
func (s *Service) visibleVideo(ctx context.Context, videoID, actor store.ID) (models.Video, error) {
	if videoID.IsZero() {
		return models.Video{}, fmt.Errorf("%w: video id is required", errs.ErrInvalidInput)
	}
	doc, err := s.store.FindByID(ctx, models.Videos, videoID)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return models.Video{}, errs.ErrNotFound
		}
		return models.Video{}, fmt.Errorf("load video: %w", err)
	}
	video := models.VideoFromDoc(doc)
	if !video.IsPublished && video.Owner != actor {
		return models.Video{}, errs.ErrNotFound
	}
	return video, nil
}

func viewFromDoc(d store.Doc) models.CommentView {
	return models.CommentView{
		ID:        store.AsID(d, "_id"),
		Content:   store.AsString(d, "content"),
		Owner:     models.OwnerFromDoc(store.AsDoc(d, "owner")),
		LikeCount: store.AsInt64(d, "likeCount"),
		IsLiked:   store.AsBool(d, "isLiked"),
		CreatedAt: store.AsTime(d, "createdAt"),
	}
}
