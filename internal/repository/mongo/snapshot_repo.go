package mongo

import (
	"alcyxob/workout-tracker/internal/storage"
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const DefaultSnapshotCollection = "snapshots"

// snapshotDocument stores one object per key.
type snapshotDocument struct {
	Key       string    `bson:"_id"`
	Data      []byte    `bson:"data"`
	UpdatedAt time.Time `bson:"updatedAt"`
}

// mongoSnapshotRepository implements storage.ObjectStore on a MongoDB collection.
type mongoSnapshotRepository struct {
	collection *mongo.Collection
}

// NewMongoSnapshotRepository creates a snapshot store on db.collectionName.
func NewMongoSnapshotRepository(db *mongo.Database, collectionName string) storage.ObjectStore {
	if collectionName == "" {
		collectionName = DefaultSnapshotCollection
	}
	return &mongoSnapshotRepository{
		collection: db.Collection(collectionName),
	}
}

// GetObject reads the snapshot stored under key.
func (r *mongoSnapshotRepository) GetObject(ctx context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, storage.ErrInvalidKey
	}
	var doc snapshotDocument
	err := r.collection.FindOne(ctx, bson.M{"_id": key}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, storage.ErrObjectNotFound
		}
		return nil, err
	}
	return doc.Data, nil
}

// PutObject upserts the snapshot for key.
func (r *mongoSnapshotRepository) PutObject(ctx context.Context, key string, data []byte) error {
	if key == "" {
		return storage.ErrInvalidKey
	}
	doc := snapshotDocument{
		Key:       key,
		Data:      data,
		UpdatedAt: time.Now().UTC(),
	}
	_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": key}, doc, options.Replace().SetUpsert(true))
	return err
}

// DeleteObject removes the snapshot; a missing document is not an error.
func (r *mongoSnapshotRepository) DeleteObject(ctx context.Context, key string) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": key})
	return err
}

// EnsureSnapshotIndexes creates necessary indexes. Call during startup.
func EnsureSnapshotIndexes(ctx context.Context, collection *mongo.Collection) error {
	_, err := collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "updatedAt", Value: -1}},
		Options: options.Index(),
	})
	return err
}
