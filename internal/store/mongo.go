package store

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/vidtube/backend/internal/errs"
)

// MongoStore implements Store on top of a MongoDB database. Plans compile
// to a single aggregation pipeline, so joins, computed fields and the
// pagination window execute in one round trip.
type MongoStore struct {
	db *mongo.Database
}

// ConnectMongo dials the database and verifies the connection.
func ConnectMongo(ctx context.Context, uri, database string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return &MongoStore{db: client.Database(database)}, nil
}

// Close tears down the underlying client.
func (s *MongoStore) Close(ctx context.Context) error {
	return s.db.Client().Disconnect(ctx)
}

// EnsureIndexes creates the uniqueness and edge indexes the engine relies
// on: unique username/email, and unique (actor, target) pairs per edge
// kind so at most one edge can ever be persisted.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	unique := options.Index().SetUnique(true)
	sparse := options.Index().SetUnique(true).SetSparse(true)

	specs := map[string][]mongo.IndexModel{
		"users": {
			{Keys: bson.D{{Key: "username", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: unique},
		},
		"likes": {
			{Keys: bson.D{{Key: "likedBy", Value: 1}, {Key: "video", Value: 1}}, Options: sparse},
			{Keys: bson.D{{Key: "likedBy", Value: 1}, {Key: "comment", Value: 1}}, Options: sparse},
			{Keys: bson.D{{Key: "likedBy", Value: 1}, {Key: "tweet", Value: 1}}, Options: sparse},
		},
		"subscriptions": {
			{Keys: bson.D{{Key: "subscriber", Value: 1}, {Key: "channel", Value: 1}}, Options: unique},
		},
	}

	for collection, models := range specs {
		if _, err := s.db.Collection(collection).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("ensure %s indexes: %w", collection, err)
		}
	}
	return nil
}

// Insert adds a new document.
func (s *MongoStore) Insert(ctx context.Context, collection string, doc Doc) error {
	if _, err := s.db.Collection(collection).InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: insert %s: %v", errs.ErrConflict, collection, err)
		}
		return fmt.Errorf("%w: insert %s: %v", errs.ErrWriteFailed, collection, err)
	}
	return nil
}

// FindByID fetches a document by identifier.
func (s *MongoStore) FindByID(ctx context.Context, collection string, id ID) (Doc, error) {
	return s.FindOne(ctx, collection, MatchID(id))
}

// FindOne returns the first matching document.
func (s *MongoStore) FindOne(ctx context.Context, collection string, match Match) (Doc, error) {
	var doc Doc
	err := s.db.Collection(collection).FindOne(ctx, matchFilter(match)).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, errs.ErrNotFound
		}
		return nil, fmt.Errorf("%w: find %s: %v", errs.ErrReadFailed, collection, err)
	}
	return doc, nil
}

// UpdateOne applies a conditional single-document mutation.
func (s *MongoStore) UpdateOne(ctx context.Context, collection string, match Match, update Update) error {
	change := bson.M{}
	if len(update.Set) > 0 {
		change["$set"] = bson.M(update.Set)
	}
	if len(update.Inc) > 0 {
		inc := bson.M{}
		for k, v := range update.Inc {
			inc[k] = v
		}
		change["$inc"] = inc
	}
	if len(update.Push) > 0 {
		push := bson.M{}
		for k, v := range update.Push {
			push[k] = v
		}
		change["$push"] = push
	}
	if len(update.Pull) > 0 {
		pull := bson.M{}
		for k, v := range update.Pull {
			pull[k] = v
		}
		change["$pull"] = pull
	}

	res, err := s.db.Collection(collection).UpdateOne(ctx, matchFilter(match), change)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: update %s: %v", errs.ErrConflict, collection, err)
		}
		return fmt.Errorf("%w: update %s: %v", errs.ErrWriteFailed, collection, err)
	}
	if res.MatchedCount == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// DeleteOne removes the first matching document and reports whether one
// was removed.
func (s *MongoStore) DeleteOne(ctx context.Context, collection string, match Match) (bool, error) {
	res, err := s.db.Collection(collection).DeleteOne(ctx, matchFilter(match))
	if err != nil {
		return false, fmt.Errorf("%w: delete %s: %v", errs.ErrWriteFailed, collection, err)
	}
	return res.DeletedCount > 0, nil
}

// Aggregate compiles the plan to a pipeline and executes it once.
func (s *MongoStore) Aggregate(ctx context.Context, plan Plan) ([]Doc, error) {
	cursor, err := s.db.Collection(plan.Collection).Aggregate(ctx, compilePipeline(plan))
	if err != nil {
		return nil, fmt.Errorf("%w: aggregate %s: %v", errs.ErrReadFailed, plan.Collection, err)
	}
	defer cursor.Close(ctx)

	var docs []Doc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("%w: aggregate %s: decode: %v", errs.ErrReadFailed, plan.Collection, err)
	}
	return docs, nil
}

func compilePipeline(plan Plan) mongo.Pipeline {
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: matchFilter(plan.Match)}},
	}

	for _, lk := range plan.Lookups {
		pipeline = append(pipeline, bson.D{{Key: "$lookup", Value: bson.M{
			"from":         lk.From,
			"localField":   lk.LocalField,
			"foreignField": lk.ForeignField,
			"as":           lk.As,
		}}})
	}

	if len(plan.Fields) > 0 {
		added := bson.M{}
		for _, field := range plan.Fields {
			added[field.Name] = fieldExpr(field)
		}
		pipeline = append(pipeline, bson.D{{Key: "$addFields", Value: added}})
	}

	if plan.Sort != nil {
		dir := 1
		if plan.Sort.Desc {
			dir = -1
		}
		pipeline = append(pipeline, bson.D{{Key: "$sort", Value: bson.D{
			{Key: plan.Sort.Field, Value: dir},
			{Key: "_id", Value: -1},
		}}})
	}

	if plan.Skip > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$skip", Value: plan.Skip}})
	}
	if plan.Limit > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$limit", Value: plan.Limit}})
	}

	if len(plan.Project) > 0 {
		projection := bson.M{}
		for key, keep := range plan.Project {
			if len(keep.Fields) == 0 {
				projection[key] = 1
				continue
			}
			sub := bson.M{}
			for _, field := range keep.Fields {
				sub[field] = 1
			}
			projection[key] = sub
		}
		pipeline = append(pipeline, bson.D{{Key: "$project", Value: projection}})
	}

	return pipeline
}

func fieldExpr(field Field) bson.M {
	switch {
	case field.SizeOf != "":
		return bson.M{"$size": bson.M{"$ifNull": bson.A{"$" + field.SizeOf, bson.A{}}}}
	case field.FirstOf != "":
		return bson.M{"$first": "$" + field.FirstOf}
	case field.MemberOf != nil:
		return bson.M{"$cond": bson.M{
			"if":   bson.M{"$in": bson.A{field.MemberOf.Value, "$" + field.MemberOf.Array + "." + field.MemberOf.Field}},
			"then": true,
			"else": false,
		}}
	}
	return nil
}

func matchFilter(match Match) bson.M {
	filter := bson.M{}
	for field, value := range match.Eq {
		filter[field] = value
	}
	for _, field := range match.Exists {
		filter[field] = bson.M{"$exists": true, "$ne": nil}
	}
	for field, values := range match.In {
		filter[field] = bson.M{"$in": values}
	}
	if len(match.Or) > 0 {
		branches := make(bson.A, 0, len(match.Or))
		for _, branch := range match.Or {
			branches = append(branches, matchFilter(branch))
		}
		filter["$or"] = branches
	}
	return filter
}
