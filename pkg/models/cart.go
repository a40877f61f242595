package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Cart holds raw line entries keyed by an opaque cart id. Prices are never
// stored on the cart; every read re-joins lines against the live catalog.
type Cart struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	CartID    string             `bson:"cartId" json:"cartId"`
	Lines     []CartLine         `bson:"lines" json:"lines"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// CartLine references a menu item in either its document-id or numeric-id
// form. SelectedOptions are stored sorted; equality is order-insensitive.
type CartLine struct {
	LineID          string   `bson:"lineId" json:"lineId"`
	MenuItemID      string   `bson:"menuItemId" json:"menuItemId"`
	Qty             int      `bson:"qty" json:"qty"`
	SelectedOptions []string `bson:"selectedOptions,omitempty" json:"selectedOptions,omitempty"`
	Instructions    string   `bson:"instructions,omitempty" json:"instructions,omitempty"`
}

// PricedLine is the read-side view of a cart line after joining against the
// catalog. Price is per unit and includes matched option deltas.
type PricedLine struct {
	LineID          string   `json:"lineId"`
	MenuItemID      string   `json:"menuItemId"`
	Name            string   `json:"name"`
	Image           string   `json:"image,omitempty"`
	Qty             int      `json:"qty"`
	Price           int64    `json:"price"`
	SelectedOptions []string `json:"selectedOptions,omitempty"`
	Instructions    string   `json:"instructions,omitempty"`
	IsAvailable     bool     `json:"isAvailable"`
}

// PricedCart is the full priced view. Count is the sum of line quantities,
// not the number of distinct lines.
type PricedCart struct {
	CartID   string       `json:"cartId"`
	Lines    []PricedLine `json:"lines"`
	Count    int          `json:"count"`
	Subtotal int64        `json:"subtotal"`
}
