package handlers

import (
	"context"
	"net/http"

	"github.com/vidtube/backend/internal/authz"
	"github.com/vidtube/backend/internal/edges"
	"github.com/vidtube/backend/internal/social"
	"github.com/vidtube/backend/internal/store"
)

// SocialHandler implements the like and subscription endpoints.
type SocialHandler struct {
	Social *social.Service
}

// ToggleVideoLike handles POST /api/v1/likes/videos/{id}.
func (h SocialHandler) ToggleVideoLike(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, h.Social.ToggleVideoLike)
}

// ToggleCommentLike handles POST /api/v1/likes/comments/{id}.
func (h SocialHandler) ToggleCommentLike(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, h.Social.ToggleCommentLike)
}

// ToggleTweetLike handles POST /api/v1/likes/tweets/{id}.
func (h SocialHandler) ToggleTweetLike(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, h.Social.ToggleTweetLike)
}

// ToggleSubscription handles POST /api/v1/subscriptions/{id}.
func (h SocialHandler) ToggleSubscription(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, h.Social.ToggleSubscription)
}

func (h SocialHandler) toggle(w http.ResponseWriter, r *http.Request, fn func(context.Context, store.ID, store.ID) (edges.State, error)) {
	ctx := r.Context()
	target, err := pathID(r, "id")
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	state, err := fn(ctx, authz.ActorFromContext(ctx), target)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusOK, map[string]string{"state": string(state)})
}

// Subscribers handles GET /api/v1/channels/{id}/subscribers.
func (h SocialHandler) Subscribers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	channel, err := pathID(r, "id")
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	page, err := h.Social.Subscribers(ctx, channel, pageRequest(r))
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusOK, page)
}

// Subscribed handles GET /api/v1/users/{id}/subscriptions.
func (h SocialHandler) Subscribed(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	subscriber, err := pathID(r, "id")
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	page, err := h.Social.Subscribed(ctx, subscriber, pageRequest(r))
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusOK, page)
}

// LikedVideos handles GET /api/v1/likes/videos.
func (h SocialHandler) LikedVideos(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	page, err := h.Social.LikedVideos(ctx, authz.ActorFromContext(ctx), pageRequest(r))
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusOK, page)
}
