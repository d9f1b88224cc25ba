package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/vidtube/backend/internal/errs"
)

func seedDoc(t *testing.T, m *Memory, collection string, doc Doc) ID {
	t.Helper()
	id, ok := doc["_id"].(ID)
	if !ok {
		id = NewID()
		doc["_id"] = id
	}
	if err := m.Insert(context.Background(), collection, doc); err != nil {
		t.Fatalf("insert into %s: %v", collection, err)
	}
	return id
}

func TestMemoryCRUD(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	id := seedDoc(t, m, "things", Doc{"name": "first", "count": int64(1)})

	doc, err := m.FindByID(ctx, "things", id)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if AsString(doc, "name") != "first" {
		t.Fatalf("unexpected doc: %+v", doc)
	}

	if err := m.UpdateOne(ctx, "things", MatchID(id), Update{
		Set: Doc{"name": "second"},
		Inc: map[string]int64{"count": 2},
	}); err != nil {
		t.Fatalf("update: %v", err)
	}
	doc, _ = m.FindByID(ctx, "things", id)
	if AsString(doc, "name") != "second" || AsInt64(doc, "count") != 3 {
		t.Fatalf("update not applied: %+v", doc)
	}

	if err := m.UpdateOne(ctx, "things", MatchID(NewID()), Update{Set: Doc{"name": "x"}}); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("expected not found got %v", err)
	}

	deleted, err := m.DeleteOne(ctx, "things", MatchID(id))
	if err != nil || !deleted {
		t.Fatalf("delete: deleted=%v err=%v", deleted, err)
	}
	deleted, err = m.DeleteOne(ctx, "things", MatchID(id))
	if err != nil || deleted {
		t.Fatalf("second delete should match nothing: deleted=%v err=%v", deleted, err)
	}
}

func TestMemoryPushPull(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	id := seedDoc(t, m, "users", Doc{"watchHistory": []any{}})
	first, second := NewID(), NewID()

	for _, v := range []ID{first, second, first} {
		if err := m.UpdateOne(ctx, "users", MatchID(id), Update{Push: map[string]any{"watchHistory": v}}); err != nil {
			t.Fatalf("push: %v", err)
		}
	}
	doc, _ := m.FindByID(ctx, "users", id)
	if got := AsIDs(doc, "watchHistory"); len(got) != 3 || got[0] != first || got[1] != second || got[2] != first {
		t.Fatalf("unexpected history: %v", got)
	}

	if err := m.UpdateOne(ctx, "users", MatchID(id), Update{Pull: map[string]any{"watchHistory": first}}); err != nil {
		t.Fatalf("pull: %v", err)
	}
	doc, _ = m.FindByID(ctx, "users", id)
	if got := AsIDs(doc, "watchHistory"); len(got) != 1 || got[0] != second {
		t.Fatalf("pull should remove every occurrence: %v", got)
	}
}

func TestMemoryUniqueIndexes(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	seedDoc(t, m, "users", Doc{"username": "alice", "email": "alice@example.com"})
	err := m.Insert(ctx, "users", Doc{"_id": NewID(), "username": "alice", "email": "other@example.com"})
	if !errors.Is(err, errs.ErrConflict) {
		t.Fatalf("duplicate username: %v", err)
	}

	actor, video := NewID(), NewID()
	seedDoc(t, m, "likes", Doc{"likedBy": actor, "video": video})
	err = m.Insert(ctx, "likes", Doc{"_id": NewID(), "likedBy": actor, "video": video})
	if !errors.Is(err, errs.ErrConflict) {
		t.Fatalf("duplicate edge: %v", err)
	}
	// A like on a different target is a different edge.
	if err := m.Insert(ctx, "likes", Doc{"_id": NewID(), "likedBy": actor, "comment": video}); err != nil {
		t.Fatalf("sparse index should not collide: %v", err)
	}
}

func TestMemoryAggregateJoinAndComputedFields(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	owner := seedDoc(t, m, "users", Doc{"username": "alice", "fullName": "Alice", "avatar": "a.png", "email": "a@example.com"})
	liker := seedDoc(t, m, "users", Doc{"username": "bob", "fullName": "Bob", "avatar": "b.png"})
	video := seedDoc(t, m, "videos", Doc{"owner": owner, "title": "t", "isPublished": true, "createdAt": time.Now()})
	seedDoc(t, m, "likes", Doc{"video": video, "likedBy": liker})

	docs, err := m.Aggregate(ctx, Plan{
		Collection: "videos",
		Match:      Match{Eq: map[string]any{"_id": video}},
		Lookups: []Lookup{
			{From: "users", LocalField: "owner", ForeignField: "_id", As: "owner"},
			{From: "likes", LocalField: "_id", ForeignField: "video", As: "likes"},
		},
		Fields: []Field{
			{Name: "likeCount", SizeOf: "likes"},
			{Name: "isLiked", MemberOf: &Membership{Array: "likes", Field: "likedBy", Value: liker}},
			{Name: "notLiked", MemberOf: &Membership{Array: "likes", Field: "likedBy", Value: owner}},
			{Name: "owner", FirstOf: "owner"},
		},
		Project: Projection{
			"title":     {},
			"likeCount": {},
			"isLiked":   {},
			"notLiked":  {},
			"owner":     {Fields: []string{"fullName", "username", "avatar"}},
		},
	})
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	if len(docs) != 1 {
		t.Fatalf("expected one doc got %d", len(docs))
	}

	doc := docs[0]
	if AsInt64(doc, "likeCount") != 1 {
		t.Fatalf("likeCount: %+v", doc)
	}
	if !AsBool(doc, "isLiked") || AsBool(doc, "notLiked") {
		t.Fatalf("membership flags wrong: %+v", doc)
	}
	ownerDoc := AsDoc(doc, "owner")
	if AsString(ownerDoc, "username") != "alice" || AsString(ownerDoc, "fullName") != "Alice" {
		t.Fatalf("owner join wrong: %+v", ownerDoc)
	}
	if _, leaked := ownerDoc["email"]; leaked {
		t.Fatalf("projection leaked owner email: %+v", ownerDoc)
	}
}

func TestMemoryAggregateMissingJoinIsEmpty(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	video := seedDoc(t, m, "videos", Doc{"owner": NewID(), "title": "orphan"})

	docs, err := m.Aggregate(ctx, Plan{
		Collection: "videos",
		Match:      Match{Eq: map[string]any{"_id": video}},
		Lookups:    []Lookup{{From: "likes", LocalField: "_id", ForeignField: "video", As: "likes"}},
		Fields: []Field{
			{Name: "likeCount", SizeOf: "likes"},
			{Name: "firstLike", FirstOf: "likes"},
		},
	})
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	if AsInt64(docs[0], "likeCount") != 0 {
		t.Fatalf("empty join should count zero: %+v", docs[0])
	}
	if docs[0]["firstLike"] != nil {
		t.Fatalf("first of empty join should be nil: %+v", docs[0])
	}
}

func TestMemoryAggregateSortTieBreak(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	a := seedDoc(t, m, "comments", Doc{"createdAt": at})
	b := seedDoc(t, m, "comments", Doc{"createdAt": at})
	older := seedDoc(t, m, "comments", Doc{"createdAt": at.Add(-time.Hour)})

	docs, err := m.Aggregate(ctx, Plan{
		Collection: "comments",
		Sort:       &Sort{Field: "createdAt", Desc: true},
	})
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	if len(docs) != 3 {
		t.Fatalf("expected 3 docs got %d", len(docs))
	}

	// Equal timestamps order by identifier descending; b was created
	// after a so its id is larger.
	if AsID(docs[0], "_id") != b || AsID(docs[1], "_id") != a || AsID(docs[2], "_id") != older {
		t.Fatalf("unexpected order: %v %v %v (a=%v b=%v older=%v)",
			AsID(docs[0], "_id"), AsID(docs[1], "_id"), AsID(docs[2], "_id"), a, b, older)
	}
}

func TestMemoryAggregateWindow(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		seedDoc(t, m, "tweets", Doc{"n": int64(i), "createdAt": base.Add(time.Duration(i) * time.Minute)})
	}

	docs, err := m.Aggregate(ctx, Plan{
		Collection: "tweets",
		Sort:       &Sort{Field: "createdAt", Desc: true},
		Skip:       2,
		Limit:      2,
	})
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	if len(docs) != 2 || AsInt64(docs[0], "n") != 2 || AsInt64(docs[1], "n") != 1 {
		t.Fatalf("unexpected window: %+v", docs)
	}

	docs, err = m.Aggregate(ctx, Plan{Collection: "tweets", Skip: 10})
	if err != nil || len(docs) != 0 {
		t.Fatalf("skip past end should be empty: %v %v", docs, err)
	}
}

func TestMemoryMatchOrAndIn(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	owner := NewID()
	pub := seedDoc(t, m, "videos", Doc{"isPublished": true, "owner": NewID()})
	draft := seedDoc(t, m, "videos", Doc{"isPublished": false, "owner": owner})
	seedDoc(t, m, "videos", Doc{"isPublished": false, "owner": NewID()})

	docs, err := m.Aggregate(ctx, Plan{
		Collection: "videos",
		Match: Match{Or: []Match{
			{Eq: map[string]any{"isPublished": true}},
			{Eq: map[string]any{"owner": owner}},
		}},
	})
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("expected published or owned, got %d docs", len(docs))
	}

	docs, err = m.Aggregate(ctx, Plan{
		Collection: "videos",
		Match:      Match{In: map[string][]any{"_id": {pub, draft}}},
	})
	if err != nil || len(docs) != 2 {
		t.Fatalf("in match failed: %v %v", docs, err)
	}
}
