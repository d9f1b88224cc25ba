package handlers

import (
	"fmt"
	"mime/multipart"
	"net/http"
	"path"
	"strconv"

	"github.com/vidtube/backend/internal/authz"
	"github.com/vidtube/backend/internal/errs"
	"github.com/vidtube/backend/internal/logging"
	"github.com/vidtube/backend/internal/media"
	"github.com/vidtube/backend/internal/store"
	"github.com/vidtube/backend/internal/videos"
)

// maxUploadBytes bounds a single multipart upload request.
const maxUploadBytes = 256 << 20

// VideoHandler implements the video endpoints.
type VideoHandler struct {
	Videos *videos.Service
	Media  media.Storage
}

// Publish handles POST /api/v1/videos: a multipart form carrying the
// video file, thumbnail and metadata fields.
func (h VideoHandler) Publish(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor := authz.ActorFromContext(ctx)

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "multipart form required"})
		return
	}

	videoFile, err := h.saveUpload(r, "videoFile", actor)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	thumbnail, err := h.saveUpload(r, "thumbnail", actor)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	duration, _ := strconv.ParseFloat(r.FormValue("duration"), 64)
	isPublished := r.FormValue("isPublished") != "false"

	video, err := h.Videos.Publish(ctx, actor, videos.PublishInput{
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		VideoFile:   videoFile,
		Thumbnail:   thumbnail,
		Duration:    duration,
		IsPublished: isPublished,
	})
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusCreated, video)
}

// Get handles GET /api/v1/videos/{id}. Fetching a video records a view
// for the requesting actor.
func (h VideoHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	videoID, err := pathID(r, "id")
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	actor := authz.ActorFromContext(ctx)

	video, err := h.Videos.Get(ctx, videoID, actor)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	if err := h.Videos.RecordView(ctx, videoID, actor); err != nil {
		logging.FromContext(ctx).Warn("record view", "videoId", videoID, "error", err)
	}
	respondJSON(ctx, w, http.StatusOK, video)
}

// List handles GET /api/v1/videos with optional owner, sortBy and order
// query parameters.
func (h VideoHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	opts := videos.ListOptions{
		SortField: r.URL.Query().Get("sortBy"),
		SortAsc:   r.URL.Query().Get("order") == "asc",
	}
	if raw := r.URL.Query().Get("owner"); raw != "" {
		owner, ok := store.ParseID(raw)
		if !ok {
			respondError(ctx, w, errs.ErrInvalidInput)
			return
		}
		opts.Owner = owner
	}

	page, err := h.Videos.List(ctx, authz.ActorFromContext(ctx), opts, pageRequest(r))
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusOK, page)
}

// Update handles PATCH /api/v1/videos/{id}.
func (h VideoHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	videoID, err := pathID(r, "id")
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	var req struct {
		Title       *string `json:"title"`
		Description *string `json:"description"`
		Thumbnail   *string `json:"thumbnail"`
		IsPublished *bool   `json:"isPublished"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(ctx, w, err)
		return
	}

	video, err := h.Videos.Update(ctx, videoID, authz.ActorFromContext(ctx), videos.UpdateInput{
		Title:       req.Title,
		Description: req.Description,
		Thumbnail:   req.Thumbnail,
		IsPublished: req.IsPublished,
	})
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusOK, video)
}

// Delete handles DELETE /api/v1/videos/{id}.
func (h VideoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	videoID, err := pathID(r, "id")
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	if err := h.Videos.Delete(ctx, videoID, authz.ActorFromContext(ctx)); err != nil {
		respondError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusOK, map[string]string{"status": "deleted"})
}

// saveUpload streams one multipart file to media storage and returns its
// public location.
func (h VideoHandler) saveUpload(r *http.Request, field string, actor store.ID) (string, error) {
	if h.Media == nil {
		return "", fmt.Errorf("%w: media storage unavailable", errs.ErrUpstreamFailed)
	}
	file, header, err := r.FormFile(field)
	if err != nil {
		return "", fmt.Errorf("%w: %s file is required", errs.ErrInvalidInput, field)
	}
	defer file.Close()
	return saveNamedUpload(r, h.Media, actor, field, file, header)
}

func saveNamedUpload(r *http.Request, storage media.Storage, actor store.ID, field string, file multipart.File, header *multipart.FileHeader) (string, error) {
	if storage == nil {
		return "", fmt.Errorf("%w: media storage unavailable", errs.ErrUpstreamFailed)
	}
	name := path.Join(actor.String(), store.NewID().String()+path.Ext(header.Filename))
	location, err := storage.Save(r.Context(), name, file)
	if err != nil {
		return "", fmt.Errorf("store %s: %w", field, err)
	}
	return location, nil
}
