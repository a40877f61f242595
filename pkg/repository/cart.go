package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/example/sunrisecafe/pkg/models"
)

// CartRepository implements cart.Store on MongoDB. The whole line list is
// written on every mutation; concurrent writers to the same cart are
// last-write-wins.
type CartRepository struct {
	carts *mongo.Collection
}

func NewCartRepository(m *MongoRepository) *CartRepository {
	return &CartRepository{carts: m.database.Collection(cartsCollection)}
}

func (r *CartRepository) FindByCartID(ctx context.Context, cartID string) (*models.Cart, error) {
	var cart models.Cart
	err := r.carts.FindOne(ctx, bson.M{"cartId": cartID}).Decode(&cart)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

func (r *CartRepository) Insert(ctx context.Context, cart *models.Cart) error {
	_, err := r.carts.InsertOne(ctx, cart)
	return err
}

func (r *CartRepository) SaveLines(ctx context.Context, cartID string, lines []models.CartLine) error {
	update := bson.M{"$set": bson.M{"lines": lines, "updatedAt": time.Now().UTC()}}
	_, err := r.carts.UpdateOne(ctx, bson.M{"cartId": cartID}, update)
	return err
}
