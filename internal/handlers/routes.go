package handlers

import (
	"net/http"

	"github.com/vidtube/backend/internal/authz"
	"github.com/vidtube/backend/internal/channels"
	"github.com/vidtube/backend/internal/comments"
	"github.com/vidtube/backend/internal/media"
	"github.com/vidtube/backend/internal/middleware"
	"github.com/vidtube/backend/internal/playlists"
	"github.com/vidtube/backend/internal/social"
	"github.com/vidtube/backend/internal/tweets"
	"github.com/vidtube/backend/internal/users"
	"github.com/vidtube/backend/internal/videos"
)

// Dependencies aggregates collaborators required by HTTP handlers.
type Dependencies struct {
	Users     *users.Service
	Sessions  SessionManager
	Videos    *videos.Service
	Comments  *comments.Service
	Tweets    *tweets.Service
	Playlists *playlists.Service
	Social    *social.Service
	Channels  *channels.Service
	Media     media.Storage

	// WriteLimiter, when set, throttles mutating endpoints per actor.
	WriteLimiter middleware.RateLimiter
}

// RegisterRoutes wires HTTP handlers into the provided ServeMux.
func RegisterRoutes(mux *http.ServeMux, deps Dependencies) {
	health := HealthHandler{}
	auth := AuthHandler{Users: deps.Users, Sessions: deps.Sessions}
	video := VideoHandler{Videos: deps.Videos, Media: deps.Media}
	comment := CommentHandler{Comments: deps.Comments}
	tweet := TweetHandler{Tweets: deps.Tweets, Media: deps.Media}
	playlist := PlaylistHandler{Playlists: deps.Playlists}
	socialH := SocialHandler{Social: deps.Social}
	channel := ChannelHandler{Channels: deps.Channels}

	private := func(h http.HandlerFunc) http.HandlerFunc {
		limited := limitWrites(deps.WriteLimiter, h)
		return func(w http.ResponseWriter, r *http.Request) {
			middleware.RequireActor(limited).ServeHTTP(w, r)
		}
	}

	mux.HandleFunc("GET /healthz", health.Handle)

	mux.HandleFunc("POST /api/v1/auth/signup", auth.SignUp)
	mux.HandleFunc("POST /api/v1/auth/login", auth.Login)
	mux.HandleFunc("POST /api/v1/auth/refresh", auth.Refresh)
	mux.HandleFunc("POST /api/v1/auth/logout", auth.Logout)
	mux.HandleFunc("GET /api/v1/auth/me", private(auth.Me))
	mux.HandleFunc("PATCH /api/v1/auth/me", private(auth.UpdateAccount))
	mux.HandleFunc("POST /api/v1/auth/change-password", private(auth.ChangePassword))

	mux.HandleFunc("POST /api/v1/videos", private(video.Publish))
	mux.HandleFunc("GET /api/v1/videos", video.List)
	mux.HandleFunc("GET /api/v1/videos/{id}", video.Get)
	mux.HandleFunc("PATCH /api/v1/videos/{id}", private(video.Update))
	mux.HandleFunc("DELETE /api/v1/videos/{id}", private(video.Delete))

	mux.HandleFunc("GET /api/v1/videos/{id}/comments", comment.List)
	mux.HandleFunc("POST /api/v1/videos/{id}/comments", private(comment.Add))
	mux.HandleFunc("PATCH /api/v1/comments/{id}", private(comment.Update))
	mux.HandleFunc("DELETE /api/v1/comments/{id}", private(comment.Delete))

	mux.HandleFunc("POST /api/v1/tweets", private(tweet.Create))
	mux.HandleFunc("GET /api/v1/users/{id}/tweets", tweet.ListUser)
	mux.HandleFunc("PATCH /api/v1/tweets/{id}", private(tweet.Update))
	mux.HandleFunc("DELETE /api/v1/tweets/{id}", private(tweet.Delete))

	mux.HandleFunc("POST /api/v1/playlists", private(playlist.Create))
	mux.HandleFunc("GET /api/v1/playlists/{id}", playlist.Get)
	mux.HandleFunc("GET /api/v1/users/{id}/playlists", playlist.ListUser)
	mux.HandleFunc("POST /api/v1/playlists/{id}/videos/{videoId}", private(playlist.AddVideo))
	mux.HandleFunc("DELETE /api/v1/playlists/{id}/videos/{videoId}", private(playlist.RemoveVideo))
	mux.HandleFunc("PATCH /api/v1/playlists/{id}", private(playlist.Update))
	mux.HandleFunc("DELETE /api/v1/playlists/{id}", private(playlist.Delete))

	mux.HandleFunc("POST /api/v1/likes/videos/{id}", private(socialH.ToggleVideoLike))
	mux.HandleFunc("POST /api/v1/likes/comments/{id}", private(socialH.ToggleCommentLike))
	mux.HandleFunc("POST /api/v1/likes/tweets/{id}", private(socialH.ToggleTweetLike))
	mux.HandleFunc("GET /api/v1/likes/videos", private(socialH.LikedVideos))
	mux.HandleFunc("POST /api/v1/subscriptions/{id}", private(socialH.ToggleSubscription))
	mux.HandleFunc("GET /api/v1/channels/{id}/subscribers", socialH.Subscribers)
	mux.HandleFunc("GET /api/v1/users/{id}/subscriptions", socialH.Subscribed)

	mux.HandleFunc("GET /api/v1/channels/{username}", channel.Profile)
	mux.HandleFunc("GET /api/v1/channels/{id}/stats", private(channel.Stats))
	mux.HandleFunc("GET /api/v1/history", private(channel.WatchHistory))
}

// limitWrites throttles a mutating endpoint per authenticated actor.
func limitWrites(limiter middleware.RateLimiter, next http.HandlerFunc) http.HandlerFunc {
	if limiter == nil {
		return next
	}
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			key := authz.ActorFromContext(r.Context()).String()
			if key == "" {
				key = r.RemoteAddr
			}
			if !limiter.Allow(key) {
				respondJSON(r.Context(), w, http.StatusTooManyRequests, map[string]string{"error": "rate limit exceeded"})
				return
			}
		}
		next.ServeHTTP(w, r)
	}
}
