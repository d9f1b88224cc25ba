package store

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Accessors for values read back from a Store. The in-memory store
// returns values exactly as written; the MongoDB adapter returns
// bson-decoded forms (primitive.A, primitive.DateTime, int32), so every
// accessor normalizes both.

// AsString returns the string held under key, or "".
func AsString(d Doc, key string) string {
	switch v := d[key].(type) {
	case string:
		return v
	case ID:
		return string(v)
	}
	return ""
}

// AsID returns the identifier held under key, or the zero ID.
func AsID(d Doc, key string) ID {
	switch v := d[key].(type) {
	case ID:
		return v
	case string:
		return ID(v)
	case primitive.ObjectID:
		return ID(v.Hex())
	}
	return ""
}

// AsInt64 returns the numeric value held under key, or 0.
func AsInt64(d Doc, key string) int64 {
	switch v := d[key].(type) {
	case int64:
		return v
	case int32:
		return int64(v)
	case int:
		return int64(v)
	case float64:
		return int64(v)
	}
	return 0
}

// AsFloat64 returns the numeric value held under key, or 0.
func AsFloat64(d Doc, key string) float64 {
	switch v := d[key].(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	case int32:
		return float64(v)
	case int:
		return float64(v)
	}
	return 0
}

// AsBool returns the boolean held under key, or false.
func AsBool(d Doc, key string) bool {
	v, _ := d[key].(bool)
	return v
}

// AsTime returns the timestamp held under key, or the zero time.
func AsTime(d Doc, key string) time.Time {
	switch v := d[key].(type) {
	case time.Time:
		return v
	case primitive.DateTime:
		return v.Time()
	}
	return time.Time{}
}

// AsDoc returns the sub-document held under key, or nil.
func AsDoc(d Doc, key string) Doc {
	return toDoc(d[key])
}

func toDoc(v any) Doc {
	switch s := v.(type) {
	case Doc:
		return s
	case map[string]any:
		return Doc(s)
	case primitive.M:
		return Doc(s)
	case primitive.D:
		return Doc(s.Map())
	}
	return nil
}

// AsDocs returns the array of sub-documents held under key. Missing or
// empty arrays yield nil.
func AsDocs(d Doc, key string) []Doc {
	raw := asSlice(d[key])
	if len(raw) == 0 {
		return nil
	}
	out := make([]Doc, 0, len(raw))
	for _, item := range raw {
		if sub := toDoc(item); sub != nil {
			out = append(out, sub)
		}
	}
	return out
}

// AsIDs returns the array of identifiers held under key.
func AsIDs(d Doc, key string) []ID {
	raw := asSlice(d[key])
	if len(raw) == 0 {
		return nil
	}
	out := make([]ID, 0, len(raw))
	for _, item := range raw {
		switch v := item.(type) {
		case ID:
			out = append(out, v)
		case string:
			out = append(out, ID(v))
		case primitive.ObjectID:
			out = append(out, ID(v.Hex()))
		}
	}
	return out
}

func asSlice(v any) []any {
	switch s := v.(type) {
	case []any:
		return s
	case primitive.A:
		return s
	case []Doc:
		out := make([]any, len(s))
		for i := range s {
			out[i] = s[i]
		}
		return out
	case []ID:
		out := make([]any, len(s))
		for i := range s {
			out[i] = s[i]
		}
		return out
	}
	return nil
}
