package store

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ontoview/ontoview/pkg/export"
)

// MongoConfig configures a MongoStore.
type MongoConfig struct {
	URI        string // connection string, e.g. mongodb://localhost:27017
	Database   string // defaults to "ontoview"
	Collection string // defaults to "builds"
}

// MongoStore persists taxonomy documents in a MongoDB collection, one
// document per build keyed by build_id.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewMongoStore connects to MongoDB and ensures the build_id index exists.
func NewMongoStore(ctx context.Context, cfg MongoConfig) (*MongoStore, error) {
	if cfg.Database == "" {
		cfg.Database = "ontoview"
	}
	if cfg.Collection == "" {
		cfg.Collection = "builds"
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	coll := client.Database(cfg.Database).Collection(cfg.Collection)
	_, err = coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "build_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("create index: %w", err)
	}

	return &MongoStore{client: client, coll: coll}, nil
}

// Save implements Store.
func (s *MongoStore) Save(ctx context.Context, doc export.Document) error {
	if doc.BuildID == "" {
		return errors.New("document has no build id")
	}
	_, err := s.coll.ReplaceOne(ctx,
		bson.D{{Key: "build_id", Value: doc.BuildID}},
		doc,
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("save build %s: %w", doc.BuildID, err)
	}
	return nil
}

// Load implements Store.
func (s *MongoStore) Load(ctx context.Context, buildID string) (export.Document, error) {
	var doc export.Document
	err := s.coll.FindOne(ctx, bson.D{{Key: "build_id", Value: buildID}}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return export.Document{}, fmt.Errorf("build %s: %w", buildID, ErrBuildNotFound)
	}
	if err != nil {
		return export.Document{}, fmt.Errorf("load build %s: %w", buildID, err)
	}
	return doc, nil
}

// List implements Store.
func (s *MongoStore) List(ctx context.Context) ([]BuildSummary, error) {
	opts := options.Find().
		SetProjection(bson.D{
			{Key: "build_id", Value: 1},
			{Key: "release", Value: 1},
			{Key: "subroot_id", Value: 1},
			{Key: "built_at", Value: 1},
			{Key: "concept_count", Value: 1},
			{Key: "areas.id", Value: 1},
			{Key: "regions.id", Value: 1},
		}).
		SetSort(bson.D{{Key: "built_at", Value: -1}})

	cursor, err := s.coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list builds: %w", err)
	}
	defer cursor.Close(ctx)

	var summaries []BuildSummary
	for cursor.Next(ctx) {
		var doc export.Document
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode build: %w", err)
		}
		summaries = append(summaries, summarize(doc))
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("list builds: %w", err)
	}
	return summaries, nil
}

// Delete implements Store.
func (s *MongoStore) Delete(ctx context.Context, buildID string) error {
	res, err := s.coll.DeleteOne(ctx, bson.D{{Key: "build_id", Value: buildID}})
	if err != nil {
		return fmt.Errorf("delete build %s: %w", buildID, err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("build %s: %w", buildID, ErrBuildNotFound)
	}
	return nil
}

// Close implements Store.
func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// Ensure MongoStore implements Store.
var _ Store = (*MongoStore)(nil)
