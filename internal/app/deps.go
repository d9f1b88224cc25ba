package app

import (
	"time"

	"github.com/vidtube/backend/internal/authz"
	"github.com/vidtube/backend/internal/channels"
	"github.com/vidtube/backend/internal/comments"
	"github.com/vidtube/backend/internal/config"
	"github.com/vidtube/backend/internal/edges"
	"github.com/vidtube/backend/internal/handlers"
	"github.com/vidtube/backend/internal/media"
	"github.com/vidtube/backend/internal/middleware"
	"github.com/vidtube/backend/internal/playlists"
	"github.com/vidtube/backend/internal/social"
	"github.com/vidtube/backend/internal/store"
	"github.com/vidtube/backend/internal/tweets"
	"github.com/vidtube/backend/internal/users"
	"github.com/vidtube/backend/internal/videos"
)

// buildDependencies wires the service graph over a single entity store.
func buildDependencies(s store.Store, sessions handlers.SessionManager, storage media.Storage, cleaner *media.Cleaner, cfg config.Config) handlers.Dependencies {
	guard := authz.NewGuard(s)
	edgeRepo := edges.NewRepository(s)

	var videoCleaner videos.Cleaner
	if cleaner != nil {
		videoCleaner = cleaner
	}

	var limiter middleware.RateLimiter
	if cfg.RateLimitPerSecond > 0 {
		limiter = middleware.NewKeyedLimiter(int(cfg.RateLimitPerSecond), time.Second, cfg.RateLimitBurst, 10*time.Minute)
	}

	return handlers.Dependencies{
		Users:        users.NewService(s),
		Sessions:     sessions,
		Videos:       videos.NewService(s, guard, videoCleaner),
		Comments:     comments.NewService(s, guard),
		Tweets:       tweets.NewService(s, guard),
		Playlists:    playlists.NewService(s, guard),
		Social:       social.NewService(s, edgeRepo),
		Channels:     channels.NewService(s),
		Media:        storage,
		WriteLimiter: limiter,
	}
}
