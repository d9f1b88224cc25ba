// Package playlists implements owner-curated video playlists.
package playlists

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

// Service composes the view builder and ownership guard into playlist
// operations. Every mutation is owner-gated.
type Service struct {
	store store.Store
	guard *authz.Guard
	now   func() time.Time
}

// NewService constructs the playlist service.
func NewService(s store.Store, guard *authz.Guard) *Service {
	return &Service{store: s, guard: guard, now: func() time.Time { return time.Now().UTC() }}
}

// Create starts an empty playlist. Description is optional.
func (s *Service) Create(ctx context.Context, owner store.ID, name, description string) (models.Playlist, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Playlist{}, fmt.Errorf("%w: playlist name is required", errs.ErrInvalidInput)
	}

	now := s.now()
	playlist := models.Playlist{
		ID:          store.NewID(),
		Owner:       owner,
		Name:        name,
		Description: strings.TrimSpace(description),
		Videos:      []store.ID{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.Insert(ctx, models.Playlists, models.PlaylistDoc(playlist)); err != nil {
		return models.Playlist{}, fmt.Errorf("create playlist: %w", err)
	}
	return playlist, nil
}

// Get returns one playlist joined with its owner summary.
func (s *Service) Get(ctx context.Context, playlistID store.ID) (models.PlaylistView, error) {
	if playlistID.IsZero() {
		return models.PlaylistView{}, fmt.Errorf("%w: playlist id is required", errs.ErrInvalidInput)
	}

	doc, found, err := view.NewQuery(models.Playlists).
		MatchEq("_id", playlistID).
		Join(models.Users, "owner", "_id", "owner").
		First("owner", "owner").
		Project("name", "description", "videos", "createdAt").
		ProjectOwner("owner").
		RunOne(ctx, s.store)
	if err != nil {
		return models.PlaylistView{}, fmt.Errorf("get playlist: %w", err)
	}
	if !found {
		return models.PlaylistView{}, errs.ErrNotFound
	}
	return viewFromDoc(doc), nil
}

// ListUser returns a user's playlists joined with the owner summary.
func (s *Service) ListUser(ctx context.Context, userID store.ID, req view.PageRequest) (view.Page[models.PlaylistView], error) {
	page, err := view.NewQuery(models.Playlists).
		MatchEq("owner", userID).
		Join(models.Users, "owner", "_id", "owner").
		First("owner", "owner").
		Project("name", "description", "videos", "createdAt").
		ProjectOwner("owner").
		SortBy("createdAt", true).
		RunPage(ctx, s.store, req)
	if err != nil {
		return view.Page[models.PlaylistView]{}, fmt.Errorf("list playlists: %w", err)
	}
	return view.MapPage(page, viewFromDoc), nil
}

// AddVideo appends a video to the playlist. Duplicates are allowed and
// insertion order is preserved.
func (s *Service) AddVideo(ctx context.Context, playlistID, videoID, actor store.ID) (models.Playlist, error) {
	if _, err := s.guard.RequireOwner(ctx, models.Playlists, playlistID, actor, "owner"); err != nil {
		return models.Playlist{}, err
	}
	if _, err := s.store.FindByID(ctx, models.Videos, videoID); err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return models.Playlist{}, errs.ErrNotFound
		}
		return models.Playlist{}, fmt.Errorf("load video: %w", err)
	}

	err := s.store.UpdateOne(ctx, models.Playlists, store.MatchID(playlistID), store.Update{
		Set:  store.Doc{"updatedAt": s.now()},
		Push: map[string]any{"videos": videoID},
	})
	if err != nil {
		return models.Playlist{}, fmt.Errorf("add video to playlist: %w", err)
	}
	return s.reload(ctx, playlistID)
}

// RemoveVideo removes every occurrence of the video from the playlist.
func (s *Service) RemoveVideo(ctx context.Context, playlistID, videoID, actor store.ID) (models.Playlist, error) {
	if _, err := s.guard.RequireOwner(ctx, models.Playlists, playlistID, actor, "owner"); err != nil {
		return models.Playlist{}, err
	}

	err := s.store.UpdateOne(ctx, models.Playlists, store.MatchID(playlistID), store.Update{
		Set:  store.Doc{"updatedAt": s.now()},
		Pull: map[string]any{"videos": videoID},
	})
	if err != nil {
		return models.Playlist{}, fmt.Errorf("remove video from playlist: %w", err)
	}
	return s.reload(ctx, playlistID)
}

// UpdateInput carries the mutable playlist fields; nil means unchanged.
type UpdateInput struct {
	Name        *string
	Description *string
}

// Update edits a playlist's name and description.
func (s *Service) Update(ctx context.Context, playlistID, actor store.ID, in UpdateInput) (models.Playlist, error) {
	if _, err := s.guard.RequireOwner(ctx, models.Playlists, playlistID, actor, "owner"); err != nil {
		return models.Playlist{}, err
	}

	set := store.Doc{}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return models.Playlist{}, fmt.Errorf("%w: playlist name is required", errs.ErrInvalidInput)
		}
		set["name"] = name
	}
	if in.Description != nil {
		set["description"] = strings.TrimSpace(*in.Description)
	}
	if len(set) == 0 {
		return s.reload(ctx, playlistID)
	}
	set["updatedAt"] = s.now()

	if err := s.store.UpdateOne(ctx, models.Playlists, store.MatchID(playlistID), store.Update{Set: set}); err != nil {
		return models.Playlist{}, fmt.Errorf("update playlist: %w", err)
	}
	return s.reload(ctx, playlistID)
}

// Delete removes a playlist. Only the owner may delete.
func (s *Service) Delete(ctx context.Context, playlistID, actor store.ID) error {
	if _, err := s.guard.RequireOwner(ctx, models.Playlists, playlistID, actor, "owner"); err != nil {
		return err
	}
	deleted, err := s.store.DeleteOne(ctx, models.Playlists, store.MatchID(playlistID))
	if err != nil {
		return fmt.Errorf("delete playlist: %w", err)
	}
	if !deleted {
		return errs.ErrNotFound
	}
	return nil
}

func (s *Service) reload(ctx context.Context, playlistID store.ID) (models.Playlist, error) {
	doc, err := s.store.FindByID(ctx, models.Playlists, playlistID)
	if err != nil {
		return models.Playlist{}, fmt.Errorf("reload playlist: %w", err)
	}
	return models.PlaylistFromDoc(doc), nil
}

func viewFromDoc(d store.Doc) models.PlaylistView {
	videos := store.AsIDs(d, "videos")
	if videos == nil {
		videos = []store.ID{}
	}
	return models.PlaylistView{
		ID:          store.AsID(d, "_id"),
		Name:        store.AsString(d, "name"),
		Description: store.AsString(d, "description"),
		Videos:      videos,
		Owner:       models.OwnerFromDoc(store.AsDoc(d, "owner")),
		CreatedAt:   store.AsTime(d, "createdAt"),
	}
}
