package handlers

import (
	"net/http"
	"strings"

	"github.com/vidtube/backend/internal/authz"
	"github.com/vidtube/backend/internal/media"
	"github.com/vidtube/backend/internal/tweets"
)

// TweetHandler implements the tweet endpoints.
type TweetHandler struct {
	Tweets *tweets.Service
	Media  media.Storage
}

// Create handles POST /api/v1/tweets. A JSON body carries content only;
// a multipart form may additionally attach an image.
func (h TweetHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor := authz.ActorFromContext(ctx)

	var content, image string
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(16 << 20); err != nil {
			respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid multipart form"})
			return
		}
		content = r.FormValue("content")
		if file, header, err := r.FormFile("image"); err == nil {
			defer file.Close()
			location, err := saveNamedUpload(r, h.Media, actor, "image", file, header)
			if err != nil {
				respondError(ctx, w, err)
				return
			}
			image = location
		}
	} else {
		var req struct {
			Content string `json:"content"`
		}
		if err := decodeJSON(r, &req); err != nil {
			respondError(ctx, w, err)
			return
		}
		content = req.Content
	}

	tweet, err := h.Tweets.Create(ctx, actor, content, image)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusCreated, tweet)
}

// ListUser handles GET /api/v1/users/{id}/tweets.
func (h TweetHandler) ListUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, err := pathID(r, "id")
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	page, err := h.Tweets.ListUser(ctx, userID, authz.ActorFromContext(ctx), pageRequest(r))
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusOK, page)
}

// Update handles PATCH /api/v1/tweets/{id}.
func (h TweetHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tweetID, err := pathID(r, "id")
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	var req struct {
		Content string `json:"content"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(ctx, w, err)
		return
	}

	tweet, err := h.Tweets.Update(ctx, tweetID, authz.ActorFromContext(ctx), req.Content)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusOK, tweet)
}

// Delete handles DELETE /api/v1/tweets/{id}.
func (h TweetHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tweetID, err := pathID(r, "id")
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	if err := h.Tweets.Delete(ctx, tweetID, authz.ActorFromContext(ctx)); err != nil {
		respondError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusOK, map[string]string{"status": "deleted"})
}
