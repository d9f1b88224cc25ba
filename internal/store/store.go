package store

import "context"

// Doc is a single schema-less record held by an entity collection.
type Doc map[string]any

// Match selects documents. A document matches when every Eq pair holds,
// every Exists field is present and non-nil, every In field holds one of
// the listed values, and, when Or is non-empty, at least one branch
// matches as well.
type Match struct {
	Eq     map[string]any
	Exists []string
	In     map[string][]any
	Or     []Match
}

// Update describes a conditional single-document mutation.
type Update struct {
	Set  Doc
	Inc  map[string]int64
	Push map[string]any
	Pull map[string]any
}

// Store is the entity-store boundary: named collections supporting insert,
// point lookup, conditional update/delete and a read-only aggregation
// query. Implementations must provide single-document atomicity; nothing
// here assumes multi-document transactions.
type Store interface {
	Insert(ctx context.Context, collection string, doc Doc) error
	FindByID(ctx context.Context, collection string, id ID) (Doc, error)
	FindOne(ctx context.Context, collection string, match Match) (Doc, error)
	// UpdateOne applies the update to the first matching document and
	// reports ErrNotFound when nothing matched.
	UpdateOne(ctx context.Context, collection string, match Match, update Update) error
	// DeleteOne removes the first matching document and reports whether a
	// document was removed. A false result with a nil error is the
	// "nothing matched" outcome the toggle protocol relies on.
	DeleteOne(ctx context.Context, collection string, match Match) (bool, error)
	Aggregate(ctx context.Context, plan Plan) ([]Doc, error)
}

// MatchID is shorthand for a point match on the document identifier.
func MatchID(id ID) Match {
	return Match{Eq: map[string]any{"_id": id}}
}
