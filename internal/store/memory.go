package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/vidtube/backend/internal/errs"
)

// Memory is an in-process Store used by tests and local development. All
// operations take a single lock, so each call is atomic with respect to
// every other call, matching the per-document atomicity the engine
// assumes of a real store.
type Memory struct {
	mu          sync.Mutex
	collections map[string][]Doc
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{collections: make(map[string][]Doc)}
}

// uniqueIndexes mirrors the unique indexes the Mongo adapter ensures, so
// both stores report the same conflicts. An index is skipped when any of
// its fields is absent from the document (sparse semantics).
var uniqueIndexes = map[string][][]string{
	"users":         {{"username"}, {"email"}},
	"likes":         {{"likedBy", "video"}, {"likedBy", "comment"}, {"likedBy", "tweet"}},
	"subscriptions": {{"subscriber", "channel"}},
}

// Insert appends the document to the named collection.
func (m *Memory) Insert(ctx context.Context, collection string, doc Doc) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", errs.ErrWriteFailed, err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.checkUniqueLocked(collection, doc); err != nil {
		return err
	}
	m.collections[collection] = append(m.collections[collection], cloneDoc(doc))
	return nil
}

func (m *Memory) checkUniqueLocked(collection string, doc Doc) error {
	for _, fields := range uniqueIndexes[collection] {
		eq := make(map[string]any, len(fields))
		sparse := false
		for _, field := range fields {
			v, ok := doc[field]
			if !ok || v == nil {
				sparse = true
				break
			}
			eq[field] = v
		}
		if sparse {
			continue
		}
		for _, existing := range m.collections[collection] {
			if matches(Match{Eq: eq}, existing) {
				return fmt.Errorf("%w: duplicate %v in %s", errs.ErrConflict, fields, collection)
			}
		}
	}
	return nil
}

// FindByID fetches a document by identifier.
func (m *Memory) FindByID(ctx context.Context, collection string, id ID) (Doc, error) {
	return m.FindOne(ctx, collection, MatchID(id))
}

// FindOne returns the first matching document.
func (m *Memory) FindOne(ctx context.Context, collection string, match Match) (Doc, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrReadFailed, err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, doc := range m.collections[collection] {
		if matches(match, doc) {
			return cloneDoc(doc), nil
		}
	}
	return nil, errs.ErrNotFound
}

// UpdateOne mutates the first matching document.
func (m *Memory) UpdateOne(ctx context.Context, collection string, match Match, update Update) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", errs.ErrWriteFailed, err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, doc := range m.collections[collection] {
		if !matches(match, doc) {
			continue
		}
		for k, v := range update.Set {
			doc[k] = v
		}
		for k, delta := range update.Inc {
			doc[k] = AsInt64(doc, k) + delta
		}
		for k, v := range update.Push {
			doc[k] = append(asSlice(doc[k]), v)
		}
		for k, v := range update.Pull {
			kept := make([]any, 0)
			for _, item := range asSlice(doc[k]) {
				if item != v {
					kept = append(kept, item)
				}
			}
			doc[k] = kept
		}
		return nil
	}
	return errs.ErrNotFound
}

// DeleteOne removes the first matching document and reports whether one
// was removed.
func (m *Memory) DeleteOne(ctx context.Context, collection string, match Match) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, fmt.Errorf("%w: %v", errs.ErrWriteFailed, err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	docs := m.collections[collection]
	for i, doc := range docs {
		if matches(match, doc) {
			m.collections[collection] = append(docs[:i:i], docs[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

// Count reports the number of documents currently matching. Query paths
// never use it; it exists so tests can assert stored state directly.
func (m *Memory) Count(collection string, match Match) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, doc := range m.collections[collection] {
		if matches(match, doc) {
			n++
		}
	}
	return n
}

// Aggregate interprets the plan stage by stage: match, left-outer
// lookups, computed fields, sort, pagination window, projection.
func (m *Memory) Aggregate(ctx context.Context, plan Plan) ([]Doc, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrReadFailed, err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	var results []Doc
	for _, doc := range m.collections[plan.Collection] {
		if matches(plan.Match, doc) {
			results = append(results, cloneDoc(doc))
		}
	}

	for _, lk := range plan.Lookups {
		for _, doc := range results {
			related := make([]Doc, 0)
			local := doc[lk.LocalField]
			for _, candidate := range m.collections[lk.From] {
				if joinMatches(local, candidate[lk.ForeignField]) {
					related = append(related, cloneDoc(candidate))
				}
			}
			doc[lk.As] = related
		}
	}

	for _, field := range plan.Fields {
		for _, doc := range results {
			doc[field.Name] = computeField(field, doc)
		}
	}

	if plan.Sort != nil {
		sortDocs(results, *plan.Sort)
	}

	if plan.Skip > 0 {
		if plan.Skip >= int64(len(results)) {
			results = nil
		} else {
			results = results[plan.Skip:]
		}
	}
	if plan.Limit > 0 && int64(len(results)) > plan.Limit {
		results = results[:plan.Limit]
	}

	if len(plan.Project) > 0 {
		for i, doc := range results {
			results[i] = project(doc, plan.Project)
		}
	}

	return results, nil
}

func matches(m Match, doc Doc) bool {
	for field, want := range m.Eq {
		if doc[field] != want {
			return false
		}
	}
	for _, field := range m.Exists {
		if v, ok := doc[field]; !ok || v == nil || v == ID("") {
			return false
		}
	}
	for field, values := range m.In {
		found := false
		for _, want := range values {
			if doc[field] == want {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if len(m.Or) > 0 {
		matched := false
		for _, branch := range m.Or {
			if matches(branch, doc) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	return true
}

// joinMatches reports whether a local value joins a foreign value. When
// the local value is an array, any element may match.
func joinMatches(local, foreign any) bool {
	if items := asSlice(local); items != nil {
		for _, item := range items {
			if item == foreign {
				return true
			}
		}
		return false
	}
	return local != nil && local == foreign
}

func computeField(field Field, doc Doc) any {
	switch {
	case field.SizeOf != "":
		return int64(len(AsDocs(doc, field.SizeOf)))
	case field.FirstOf != "":
		related := AsDocs(doc, field.FirstOf)
		if len(related) == 0 {
			return nil
		}
		return related[0]
	case field.MemberOf != nil:
		for _, related := range AsDocs(doc, field.MemberOf.Array) {
			if related[field.MemberOf.Field] == field.MemberOf.Value {
				return true
			}
		}
		return false
	}
	return nil
}

func sortDocs(docs []Doc, s Sort) {
	sort.SliceStable(docs, func(i, j int) bool {
		a, b := docs[i][s.Field], docs[j][s.Field]
		if cmp := compareValues(a, b); cmp != 0 {
			if s.Desc {
				return cmp > 0
			}
			return cmp < 0
		}
		// Tie: later identifier wins.
		return AsID(docs[i], "_id") > AsID(docs[j], "_id")
	})
}

func compareValues(a, b any) int {
	switch av := a.(type) {
	case time.Time:
		if bv, ok := b.(time.Time); ok {
			switch {
			case av.Before(bv):
				return -1
			case av.After(bv):
				return 1
			}
			return 0
		}
	case string:
		if bv, ok := b.(string); ok {
			switch {
			case av < bv:
				return -1
			case av > bv:
				return 1
			}
			return 0
		}
	case ID:
		if bv, ok := b.(ID); ok {
			switch {
			case av < bv:
				return -1
			case av > bv:
				return 1
			}
			return 0
		}
	}
	af, bf := asFloat(a), asFloat(b)
	switch {
	case af < bf:
		return -1
	case af > bf:
		return 1
	}
	return 0
}

func asFloat(v any) float64 {
	switch n := v.(type) {
	case int64:
		return float64(n)
	case int32:
		return float64(n)
	case int:
		return float64(n)
	case float64:
		return n
	}
	return 0
}

func project(doc Doc, projection Projection) Doc {
	out := Doc{}
	if id, ok := doc["_id"]; ok {
		out["_id"] = id
	}
	for key, keep := range projection {
		value, ok := doc[key]
		if !ok {
			continue
		}
		if len(keep.Fields) == 0 {
			out[key] = value
			continue
		}
		if sub := toDoc(value); sub != nil {
			out[key] = pick(sub, keep.Fields)
			continue
		}
		if items := AsDocs(doc, key); items != nil {
			picked := make([]Doc, len(items))
			for i, item := range items {
				picked[i] = pick(item, keep.Fields)
			}
			out[key] = picked
		}
	}
	return out
}

func pick(doc Doc, fields []string) Doc {
	out := Doc{}
	for _, field := range fields {
		if v, ok := doc[field]; ok {
			out[field] = v
		}
	}
	return out
}

func cloneDoc(doc Doc) Doc {
	out := make(Doc, len(doc))
	for k, v := range doc {
		if items := asSlice(v); items != nil {
			copied := make([]any, len(items))
			copy(copied, items)
			out[k] = copied
			continue
		}
		out[k] = v
	}
	return out
}
