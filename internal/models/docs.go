package models

import "github.com/vidtube/backend/internal/store"

// Converters between entities and store documents. The store is
// schema-less, so each entity spells out its own field mapping here, the
// single place collection field names are written down.

// UserDoc flattens a user for storage.
func UserDoc(u User) store.Doc {
	history := make([]any, len(u.WatchHistory))
	for i, id := range u.WatchHistory {
		history[i] = id
	}
	return store.Doc{
		"_id":          u.ID,
		"username":     u.Username,
		"email":        u.Email,
		"fullName":     u.FullName,
		"avatar":       u.Avatar,
		"coverImage":   u.CoverImage,
		"password":     u.Password,
		"watchHistory": history,
		"createdAt":    u.CreatedAt,
		"updatedAt":    u.UpdatedAt,
	}
}

// UserFromDoc rebuilds a user from storage.
func UserFromDoc(d store.Doc) User {
	return User{
		ID:           store.AsID(d, "_id"),
		Username:     store.AsString(d, "username"),
		Email:        store.AsString(d, "email"),
		FullName:     store.AsString(d, "fullName"),
		Avatar:       store.AsString(d, "avatar"),
		CoverImage:   store.AsString(d, "coverImage"),
		Password:     store.AsString(d, "password"),
		WatchHistory: store.AsIDs(d, "watchHistory"),
		CreatedAt:    store.AsTime(d, "createdAt"),
		UpdatedAt:    store.AsTime(d, "updatedAt"),
	}
}

// VideoDoc flattens a video for storage.
func VideoDoc(v Video) store.Doc {
	return store.Doc{
		"_id":         v.ID,
		"owner":       v.Owner,
		"title":       v.Title,
		"description": v.Description,
		"videoFile":   v.VideoFile,
		"thumbnail":   v.Thumbnail,
		"duration":    v.Duration,
		"views":       v.Views,
		"isPublished": v.IsPublished,
		"createdAt":   v.CreatedAt,
		"updatedAt":   v.UpdatedAt,
	}
}

// VideoFromDoc rebuilds a video from storage.
func VideoFromDoc(d store.Doc) Video {
	return Video{
		ID:          store.AsID(d, "_id"),
		Owner:       store.AsID(d, "owner"),
		Title:       store.AsString(d, "title"),
		Description: store.AsString(d, "description"),
		VideoFile:   store.AsString(d, "videoFile"),
		Thumbnail:   store.AsString(d, "thumbnail"),
		Duration:    store.AsFloat64(d, "duration"),
		Views:       store.AsInt64(d, "views"),
		IsPublished: store.AsBool(d, "isPublished"),
		CreatedAt:   store.AsTime(d, "createdAt"),
		UpdatedAt:   store.AsTime(d, "updatedAt"),
	}
}

// CommentDoc flattens a comment for storage.
func CommentDoc(c Comment) store.Doc {
	return store.Doc{
		"_id":       c.ID,
		"owner":     c.Owner,
		"video":     c.Video,
		"content":   c.Content,
		"createdAt": c.CreatedAt,
		"updatedAt": c.UpdatedAt,
	}
}

// CommentFromDoc rebuilds a comment from storage.
func CommentFromDoc(d store.Doc) Comment {
	return Comment{
		ID:        store.AsID(d, "_id"),
		Owner:     store.AsID(d, "owner"),
		Video:     store.AsID(d, "video"),
		Content:   store.AsString(d, "content"),
		CreatedAt: store.AsTime(d, "createdAt"),
		UpdatedAt: store.AsTime(d, "updatedAt"),
	}
}

// TweetDoc flattens a tweet for storage.
func TweetDoc(t Tweet) store.Doc {
	return store.Doc{
		"_id":       t.ID,
		"owner":     t.Owner,
		"content":   t.Content,
		"image":     t.Image,
		"createdAt": t.CreatedAt,
		"updatedAt": t.UpdatedAt,
	}
}

// TweetFromDoc rebuilds a tweet from storage.
func TweetFromDoc(d store.Doc) Tweet {
	return Tweet{
		ID:        store.AsID(d, "_id"),
		Owner:     store.AsID(d, "owner"),
		Content:   store.AsString(d, "content"),
		Image:     store.AsString(d, "image"),
		CreatedAt: store.AsTime(d, "createdAt"),
		UpdatedAt: store.AsTime(d, "updatedAt"),
	}
}

// PlaylistDoc flattens a playlist for storage.
func PlaylistDoc(p Playlist) store.Doc {
	videos := make([]any, len(p.Videos))
	for i, id := range p.Videos {
		videos[i] = id
	}
	return store.Doc{
		"_id":         p.ID,
		"owner":       p.Owner,
		"name":        p.Name,
		"description": p.Description,
		"videos":      videos,
		"createdAt":   p.CreatedAt,
		"updatedAt":   p.UpdatedAt,
	}
}

// PlaylistFromDoc rebuilds a playlist from storage.
func PlaylistFromDoc(d store.Doc) Playlist {
	return Playlist{
		ID:          store.AsID(d, "_id"),
		Owner:       store.AsID(d, "owner"),
		Name:        store.AsString(d, "name"),
		Description: store.AsString(d, "description"),
		Videos:      store.AsIDs(d, "videos"),
		CreatedAt:   store.AsTime(d, "createdAt"),
		UpdatedAt:   store.AsTime(d, "updatedAt"),
	}
}

// OwnerFromDoc maps a projected user document to the owner summary.
func OwnerFromDoc(d store.Doc) OwnerSummary {
	if d == nil {
		return OwnerSummary{}
	}
	return OwnerSummary{
		FullName: store.AsString(d, "fullName"),
		Username: store.AsString(d, "username"),
		Avatar:   store.AsString(d, "avatar"),
	}
}
