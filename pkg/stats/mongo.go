package stats

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/depscope/depscope/pkg/errors"
)

// MongoSink inserts one document per scan into a MongoDB collection, for
// teams aggregating scan telemetry across repositories.
type MongoSink struct {
	client     *mongo.Client
	collection *mongo.Collection
}

// NewMongoSink connects to the given MongoDB URI and targets
// database/collection. The connection is verified with a ping before the
// sink is returned.
func NewMongoSink(ctx context.Context, uri, database, collection string) (*MongoSink, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "connecting to mongodb")
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "pinging mongodb")
	}
	return &MongoSink{
		client:     client,
		collection: client.Database(database).Collection(collection),
	}, nil
}

func (s *MongoSink) Record(ctx context.Context, st ScanStats) error {
	if _, err := s.collection.InsertOne(ctx, st); err != nil {
		return errors.Wrap(errors.ErrCodeNetwork, err, "inserting scan stats")
	}
	return nil
}

func (s *MongoSink) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
