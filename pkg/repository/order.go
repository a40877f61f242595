package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/example/sunrisecafe/pkg/models"
)

// OrderRepository implements order.Store on MongoDB.
type OrderRepository struct {
	orders *mongo.Collection
}

func NewOrderRepository(m *MongoRepository) *OrderRepository {
	return &OrderRepository{orders: m.database.Collection(ordersCollection)}
}

func (r *OrderRepository) Insert(ctx context.Context, order *models.Order) error {
	res, err := r.orders.InsertOne(ctx, order)
	if err != nil {
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		order.ID = oid
	}
	return nil
}

func (r *OrderRepository) ExistsByNumber(ctx context.Context, number string) (bool, error) {
	opts := options.Count().SetLimit(1)
	n, err := r.orders.CountDocuments(ctx, bson.M{"orderNumber": number}, opts)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *OrderRepository) FindByNumber(ctx context.Context, number string) (*models.Order, error) {
	var order models.Order
	err := r.orders.FindOne(ctx, bson.M{"orderNumber": number}).Decode(&order)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *OrderRepository) ListRecent(ctx context.Context, limit int64) ([]models.Order, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}).SetLimit(limit)
	cursor, err := r.orders.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var orders []models.Order
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *OrderRepository) UpdateStatus(ctx context.Context, number string, status models.OrderStatus) (*models.Order, error) {
	update := bson.M{"$set": bson.M{"status": status, "updatedAt": time.Now().UTC()}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var order models.Order
	err := r.orders.FindOneAndUpdate(ctx, bson.M{"orderNumber": number}, update, opts).Decode(&order)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}
