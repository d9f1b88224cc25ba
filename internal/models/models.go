package models

import (
	"time"

	"github.com/vidtube/backend/internal/store"
)

// Collection names used across the engine.
const (
	Users         = "users"
	Videos        = "videos"
	Comments      = "comments"
	Tweets        = "tweets"
	Likes         = "likes"
	Subscriptions = "subscriptions"
	Playlists     = "playlists"
)

// User represents an account. WatchHistory holds watched video ids with
// the most recent entry last; duplicates are allowed.
type User struct {
	ID           store.ID
	Username     string
	Email        string
	FullName     string
	Avatar       string
	CoverImage   string
	Password     string
	WatchHistory []store.ID
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Video is a published or draft video owned by a channel. Unpublished
// videos are visible only to their owner.
type Video struct {
	ID          store.ID
	Owner       store.ID
	Title       string
	Description string
	VideoFile   string
	Thumbnail   string
	Duration    float64
	Views       int64
	IsPublished bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Comment is a user comment on a video.
type Comment struct {
	ID        store.ID
	Owner     store.ID
	Video     store.ID
	Content   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Tweet is a short post, optionally carrying an image.
type Tweet struct {
	ID        store.ID
	Owner     store.ID
	Content   string
	Image     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Playlist is an owner-curated ordered sequence of video ids; duplicates
// are allowed and insertion order is significant.
type Playlist struct {
	ID          store.ID
	Owner       store.ID
	Name        string
	Description string
	Videos      []store.ID
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// SessionTokens groups the bearer credentials issued to authenticated users.
type SessionTokens struct {
	AccessToken      string    `json:"accessToken"`
	AccessExpiresAt  time.Time `json:"accessExpiresAt"`
	RefreshToken     string    `json:"refreshToken"`
	RefreshExpiresAt time.Time `json:"refreshExpiresAt"`
}

// OwnerSummary is the only shape a joined user ever takes in a view.
type OwnerSummary struct {
	FullName string `json:"fullName"`
	Username string `json:"username"`
	Avatar   string `json:"avatar,omitempty"`
}

// CommentView is a comment joined with its owner summary and like data.
type CommentView struct {
	ID        store.ID     `json:"id"`
	Content   string       `json:"content"`
	Owner     OwnerSummary `json:"owner"`
	LikeCount int64        `json:"likeCount"`
	IsLiked   bool         `json:"isLiked"`
	CreatedAt time.Time    `json:"createdAt"`
}

// VideoView is a video joined with its owner summary and interaction
// counts, all computed in one query execution.
type VideoView struct {
	ID           store.ID     `json:"id"`
	Title        string       `json:"title"`
	Description  string       `json:"description"`
	VideoFile    string       `json:"videoFile"`
	Thumbnail    string       `json:"thumbnail"`
	Duration     float64      `json:"duration"`
	Views        int64        `json:"views"`
	Owner        OwnerSummary `json:"owner"`
	LikeCount    int64        `json:"likeCount"`
	CommentCount int64        `json:"commentCount"`
	IsLiked      bool         `json:"isLiked"`
	CreatedAt    time.Time    `json:"createdAt"`
}

// VideoSummary is the reduced shape used inside liked-video and
// watch-history views.
type VideoSummary struct {
	ID        store.ID     `json:"id"`
	Title     string       `json:"title"`
	Thumbnail string       `json:"thumbnail"`
	Duration  float64      `json:"duration"`
	Owner     OwnerSummary `json:"owner"`
}

// TweetView is a tweet joined with its owner summary and like data.
type TweetView struct {
	ID        store.ID     `json:"id"`
	Content   string       `json:"content"`
	Image     string       `json:"image,omitempty"`
	Owner     OwnerSummary `json:"owner"`
	LikeCount int64        `json:"likeCount"`
	IsLiked   bool         `json:"isLiked"`
	CreatedAt time.Time    `json:"createdAt"`
}

// PlaylistView is a playlist joined with its owner summary.
type PlaylistView struct {
	ID          store.ID     `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description,omitempty"`
	Videos      []store.ID   `json:"videos"`
	Owner       OwnerSummary `json:"owner"`
	CreatedAt   time.Time    `json:"createdAt"`
}

// ChannelProfile is a user joined with subscription edges: follower and
// following counts plus the actor-relative subscription flag.
type ChannelProfile struct {
	ID              store.ID `json:"id"`
	Username        string   `json:"username"`
	FullName        string   `json:"fullName"`
	Email           string   `json:"email"`
	Avatar          string   `json:"avatar,omitempty"`
	CoverImage      string   `json:"coverImage,omitempty"`
	SubscriberCount int64    `json:"subscriberCount"`
	FollowingCount  int64    `json:"followingCount"`
	IsSubscribed    bool     `json:"isSubscribed"`
}

// SubscriptionView is one subscription edge joined with a user summary
// (the subscriber or the channel, depending on the direction listed).
type SubscriptionView struct {
	ID        store.ID     `json:"id"`
	User      OwnerSummary `json:"user"`
	CreatedAt time.Time    `json:"createdAt"`
}

// LikedVideoView is a like edge joined with the liked video.
type LikedVideoView struct {
	ID        store.ID     `json:"id"`
	Video     VideoSummary `json:"video"`
	CreatedAt time.Time    `json:"createdAt"`
}

// ChannelStats aggregates a channel's dashboard numbers. Owner-only.
type ChannelStats struct {
	VideoCount      int64 `json:"videoCount"`
	TotalViews      int64 `json:"totalViews"`
	TotalLikes      int64 `json:"totalLikes"`
	SubscriberCount int64 `json:"subscriberCount"`
}
