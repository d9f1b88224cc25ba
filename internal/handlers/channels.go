package handlers

import (
	"net/http"

	"github.com/vidtube/backend/internal/authz"
	"github.com/vidtube/backend/internal/channels"
)

// ChannelHandler implements the channel profile, history and stats
// endpoints.
type ChannelHandler struct {
	Channels *channels.Service
}

// Profile handles GET /api/v1/channels/{username}.
func (h ChannelHandler) Profile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	profile, err := h.Channels.Profile(ctx, r.PathValue("username"), authz.ActorFromContext(ctx))
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusOK, profile)
}

// WatchHistory handles GET /api/v1/history.
func (h ChannelHandler) WatchHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	page, err := h.Channels.WatchHistory(ctx, authz.ActorFromContext(ctx), pageRequest(r))
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusOK, page)
}

// Stats handles GET /api/v1/channels/{id}/stats.
func (h ChannelHandler) Stats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	channel, err := pathID(r, "id")
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	stats, err := h.Channels.Stats(ctx, channel, authz.ActorFromContext(ctx))
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusOK, stats)
}
