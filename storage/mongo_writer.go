package storage

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"property-parser/config"
	"property-parser/models"
)

type listingDocument struct {
	ID                   primitive.ObjectID `bson:"_id,omitempty"`
	RunID                string             `bson:"run_id"`
	ScrapedAt            time.Time          `bson:"scraped_at"`
	models.ListingRecord `bson:",inline"`
}

// MongoWriter mirrors records into a MongoDB collection, one document per
// listing, insert only.
type MongoWriter struct {
	client     *mongo.Client
	collection *mongo.Collection
	runID      string
}

func NewMongoWriter(ctx context.Context, cfg config.Mongo, runID string) (*MongoWriter, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return &MongoWriter{
		client:     client,
		collection: client.Database(cfg.Database).Collection(cfg.Collection),
		runID:      runID,
	}, nil
}

func (w *MongoWriter) Append(ctx context.Context, listings []models.ListingRecord, _ bool) error {
	if len(listings) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	now := time.Now().UTC()
	docs := make([]interface{}, 0, len(listings))
	for _, l := range listings {
		docs = append(docs, listingDocument{
			ID:            primitive.NewObjectID(),
			RunID:         w.runID,
			ScrapedAt:     now,
			ListingRecord: l,
		})
	}

	if _, err := w.collection.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("mongodb insert failed: %w", err)
	}
	return nil
}

func (w *MongoWriter) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return w.client.Disconnect(ctx)
}
