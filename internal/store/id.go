package store

import "go.mongodb.org/mongo-driver/bson/primitive"

// ID is an opaque, globally unique entity identifier. IDs generated by
// NewID are time-prefixed, so their natural string order matches creation
// order; recency ties in sorted views break by ID descending.
type ID string

// NewID mints a fresh identifier.
func NewID() ID {
	return ID(primitive.NewObjectID().Hex())
}

// IsZero reports whether the identifier is unset.
func (id ID) IsZero() bool {
	return id == ""
}

func (id ID) String() string {
	return string(id)
}

// ParseID validates an externally supplied identifier.
func ParseID(s string) (ID, bool) {
	if _, err := primitive.ObjectIDFromHex(s); err != nil {
		return "", false
	}
	return ID(s), true
}
