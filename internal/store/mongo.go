package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Config contains the information required to reach the metadata store.
type Config struct {
	URI            string
	Database       string
	Collection     string
	ConnectTimeout time.Duration
}

// VideoStore persists and retrieves VideoRecords in MongoDB.
type VideoStore struct {
	client     *mongo.Client
	collection *mongo.Collection
}

// NewVideoStore connects to MongoDB, verifies the connection and ensures
// the indexes the listing queries rely on.
func NewVideoStore(ctx context.Context, cfg Config) (*VideoStore, error) {
	connectCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	coll := client.Database(cfg.Database).Collection(cfg.Collection)
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "videoId", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}}},
	}
	if _, err := coll.Indexes().CreateMany(connectCtx, indexes); err != nil {
		return nil, fmt.Errorf("ensure indexes: %w", err)
	}

	return &VideoStore{client: client, collection: coll}, nil
}

// CreateVideoRecord inserts the record. A duplicate generated id is an error.
func (s *VideoStore) CreateVideoRecord(ctx context.Context, record *VideoRecord) error {
	if _, err := s.collection.InsertOne(ctx, record); err != nil {
		return fmt.Errorf("insert video record: %w", err)
	}
	return nil
}

// FindByID returns the record with the given generated id, or nil when no
// such record exists.
func (s *VideoStore) FindByID(ctx context.Context, id string) (*VideoRecord, error) {
	var record VideoRecord
	err := s.collection.FindOne(ctx, bson.M{"videoId": id}).Decode(&record)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find video record: %w", err)
	}
	return &record, nil
}

// ListPaginated returns one page of records, newest first, together with
// the total count. An empty userID lists across all users.
func (s *VideoStore) ListPaginated(ctx context.Context, userID string, page, pageSize int) ([]VideoRecord, int64, error) {
	if page < 1 {
		page = 1
	}
	filter := bson.M{}
	if userID != "" {
		filter["userId"] = userID
	}

	total, err := s.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count video records: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(int64(page-1) * int64(pageSize)).
		SetLimit(int64(pageSize))

	cursor, err := s.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("list video records: %w", err)
	}
	defer cursor.Close(ctx)

	var records []VideoRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, 0, fmt.Errorf("decode video records: %w", err)
	}
	return records, total, nil
}

// Close disconnects from MongoDB.
func (s *VideoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
