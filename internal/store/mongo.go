package store

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"portfolio/internal/config"
	"portfolio/internal/domain"
	"portfolio/internal/metrics"
)

const contactsCollection = "contacts"

// MongoStore keeps submissions in the MongoDB "contacts" collection, the
// layout the portfolio has always used.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// OpenMongo connects to MongoDB, pings the primary and ensures the
// createdAt index exists.
func OpenMongo(ctx context.Context, cfg config.DatabaseConfig, log zerolog.Logger) (*MongoStore, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	log.Info().Msg("connecting to MongoDB")
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("MongoDB ping failed: %w", err)
	}

	coll := client.Database(cfg.MongoDatabase()).Collection(contactsCollection)
	index := mongo.IndexModel{Keys: bson.D{{Key: "createdAt", Value: -1}}}
	if _, err := coll.Indexes().CreateOne(ctx, index); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to create createdAt index: %w", err)
	}

	log.Info().Str("database", cfg.MongoDatabase()).Msg("connected to MongoDB")
	return &MongoStore{client: client, coll: coll}, nil
}

func (s *MongoStore) Create(ctx context.Context, c *domain.Contact) error {
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	if c.Status == "" {
		c.Status = domain.StatusNew
	}

	start := time.Now()
	_, err := s.coll.InsertOne(ctx, c)
	metrics.RecordDBQuery("create", time.Since(start), err)
	if err != nil {
		return fmt.Errorf("failed to save contact: %w", err)
	}
	return nil
}

func (s *MongoStore) List(ctx context.Context, limit int) ([]domain.Contact, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	start := time.Now()
	contacts, err := s.find(ctx, opts)
	metrics.RecordDBQuery("list", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch contacts: %w", err)
	}
	return contacts, nil
}

func (s *MongoStore) find(ctx context.Context, opts *options.FindOptions) ([]domain.Contact, error) {
	cur, err := s.coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, err
	}
	var contacts []domain.Contact
	if err := cur.All(ctx, &contacts); err != nil {
		return nil, err
	}
	return contacts, nil
}

func (s *MongoStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
