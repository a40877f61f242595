package repository

import (
	"context"
	"time"

	"github.com/example/sunrisecafe/pkg/config"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	menuItemsCollection     = "menu_items"
	variantGroupsCollection = "variant_groups"
	cartsCollection         = "carts"
	ordersCollection        = "orders"
)

type MongoRepository struct {
	client   *mongo.Client
	database *mongo.Database
	config   *config.MongoDBConfig
}

func NewMongoRepository(cfg *config.MongoDBConfig) (*MongoRepository, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, err
	}

	return &MongoRepository{
		client:   client,
		database: client.Database(cfg.Database),
		config:   cfg,
	}, nil
}

func (m *MongoRepository) Ping(ctx context.Context) error {
	return m.client.Ping(ctx, nil)
}

func (m *MongoRepository) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

// EnsureIndexes creates the unique indexes the domain relies on: slugs,
// cart ids, order numbers, and variant group ids.
func (m *MongoRepository) EnsureIndexes(ctx context.Context) error {
	unique := options.Index().SetUnique(true)

	_, err := m.database.Collection(menuItemsCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "slug", Value: 1}},
		Options: unique,
	})
	if err != nil {
		return err
	}

	_, err = m.database.Collection(variantGroupsCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "groupId", Value: 1}},
		Options: unique,
	})
	if err != nil {
		return err
	}

	_, err = m.database.Collection(cartsCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "cartId", Value: 1}},
		Options: unique,
	})
	if err != nil {
		return err
	}

	_, err = m.database.Collection(ordersCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "orderNumber", Value: 1}},
		Options: unique,
	})
	return err
}
