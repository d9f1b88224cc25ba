// Package view constructs the aggregation plans behind every read path.
// The builder enforces the query invariants in one place: joins are
// left-outer, counts and membership flags derive from the same joined
// array in the same execution, visibility filters join the base match,
// and the pagination window is the final stage over the fully sorted
// result.
package view

import (
	"context"

	"github.com/vidtube/backend/internal/store"
)

// OwnerFields is the only projection ever applied to a joined user
// document. No other user fields leave the store through a join.
var OwnerFields = []string{"fullName", "username", "avatar"}

// Query accumulates one aggregation plan.
type Query struct {
	plan store.Plan
}

// NewQuery starts a plan against the named collection.
func NewQuery(collection string) *Query {
	return &Query{plan: store.Plan{Collection: collection}}
}

// MatchEq adds an equality clause to the base match.
func (q *Query) MatchEq(field string, value any) *Query {
	if q.plan.Match.Eq == nil {
		q.plan.Match.Eq = make(map[string]any)
	}
	q.plan.Match.Eq[field] = value
	return q
}

// MatchExists requires the field to be present and non-nil.
func (q *Query) MatchExists(field string) *Query {
	q.plan.Match.Exists = append(q.plan.Match.Exists, field)
	return q
}

// MatchIn requires the field to hold one of the values.
func (q *Query) MatchIn(field string, values []any) *Query {
	if q.plan.Match.In == nil {
		q.plan.Match.In = make(map[string][]any)
	}
	q.plan.Match.In[field] = values
	return q
}

// VisibleTo injects the publication filter: a record passes when it is
// published or when the actor owns it. Owners always see their own
// unpublished records.
func (q *Query) VisibleTo(actor store.ID, ownerField string) *Query {
	branches := []store.Match{
		{Eq: map[string]any{"isPublished": true}},
	}
	if !actor.IsZero() {
		branches = append(branches, store.Match{Eq: map[string]any{ownerField: actor}})
	}
	q.plan.Match.Or = branches
	return q
}

// Join adds a left-outer lookup; a missing related record yields an empty
// array under as.
func (q *Query) Join(from, localField, foreignField, as string) *Query {
	q.plan.Lookups = append(q.plan.Lookups, store.Lookup{
		From:         from,
		LocalField:   localField,
		ForeignField: foreignField,
		As:           as,
	})
	return q
}

// Count derives name from the cardinality of the joined array — never a
// separate count query, so the count always agrees with the array it was
// computed from.
func (q *Query) Count(name, array string) *Query {
	q.plan.Fields = append(q.plan.Fields, store.Field{Name: name, SizeOf: array})
	return q
}

// First collapses a joined array to its first element.
func (q *Query) First(name, array string) *Query {
	q.plan.Fields = append(q.plan.Fields, store.Field{Name: name, FirstOf: array})
	return q
}

// Flag derives a boolean from membership of value inside array[].field —
// never a second round-trip query.
func (q *Query) Flag(name, array, field string, value any) *Query {
	q.plan.Fields = append(q.plan.Fields, store.Field{
		Name:     name,
		MemberOf: &store.Membership{Array: array, Field: field, Value: value},
	})
	return q
}

// Project keeps the listed top-level fields (the identifier always
// survives).
func (q *Query) Project(fields ...string) *Query {
	if q.plan.Project == nil {
		q.plan.Project = make(store.Projection)
	}
	for _, field := range fields {
		q.plan.Project[field] = store.Keep{}
	}
	return q
}

// ProjectOwner keeps a joined user document restricted to the owner
// summary fields.
func (q *Query) ProjectOwner(field string) *Query {
	return q.ProjectSub(field, OwnerFields...)
}

// ProjectSub keeps a joined document (or array) restricted to the listed
// fields.
func (q *Query) ProjectSub(field string, sub ...string) *Query {
	if q.plan.Project == nil {
		q.plan.Project = make(store.Projection)
	}
	q.plan.Project[field] = store.Keep{Fields: sub}
	return q
}

// SortBy orders results; recency ties break by identifier descending in
// the store.
func (q *Query) SortBy(field string, desc bool) *Query {
	q.plan.Sort = &store.Sort{Field: field, Desc: desc}
	return q
}

// Run executes the plan once without a pagination window.
func (q *Query) Run(ctx context.Context, s store.Store) ([]store.Doc, error) {
	return s.Aggregate(ctx, q.plan)
}

// RunOne executes the plan and returns the first result, or found=false
// when the plan matched nothing.
func (q *Query) RunOne(ctx context.Context, s store.Store) (store.Doc, bool, error) {
	q.plan.Limit = 1
	docs, err := s.Aggregate(ctx, q.plan)
	if err != nil {
		return nil, false, err
	}
	if len(docs) == 0 {
		return nil, false, nil
	}
	return docs[0], true, nil
}

// RunPage executes the plan with the pagination window as the final
// stage, over-fetching one record to derive HasMore.
func (q *Query) RunPage(ctx context.Context, s store.Store, req PageRequest) (Page[store.Doc], error) {
	req = req.Normalize()
	q.plan.Skip = req.Skip()
	q.plan.Limit = req.Limit + 1
	docs, err := s.Aggregate(ctx, q.plan)
	if err != nil {
		return Page[store.Doc]{}, err
	}
	return NewPage(docs, req), nil
}
