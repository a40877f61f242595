package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type OrderStatus string

const (
	OrderStatusReceived   OrderStatus = "received"
	OrderStatusInProgress OrderStatus = "in_progress"
	OrderStatusCompleted  OrderStatus = "completed"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusReceived, OrderStatusInProgress, OrderStatusCompleted, OrderStatusCancelled:
		return true
	}
	return false
}

type OrderType string

const (
	OrderTypePickup   OrderType = "pickup"
	OrderTypeDineIn   OrderType = "dine_in"
	OrderTypeDelivery OrderType = "delivery"
)

func (t OrderType) Valid() bool {
	switch t {
	case OrderTypePickup, OrderTypeDineIn, OrderTypeDelivery:
		return true
	}
	return false
}

type Customer struct {
	Name    string `bson:"name" json:"name"`
	Phone   string `bson:"phone" json:"phone"`
	Address string `bson:"address,omitempty" json:"address,omitempty"`
}

// Order is an immutable snapshot taken at checkout. Lines are fully
// denormalized and never re-joined against the catalog.
type Order struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"orderId"`
	OrderNumber string             `bson:"orderNumber" json:"orderNumber"`
	Status      OrderStatus        `bson:"status" json:"status"`
	OrderType   OrderType          `bson:"orderType" json:"orderType"`
	Customer    Customer           `bson:"customer" json:"customer"`
	Lines       []OrderLine        `bson:"lines" json:"lines"`
	Subtotal    int64              `bson:"subtotal" json:"subtotal"`
	Total       int64              `bson:"total" json:"total"`
	Notes       string             `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

type OrderLine struct {
	MenuItemID      string   `bson:"menuItemId" json:"menuItemId"`
	Name            string   `bson:"name" json:"name"`
	Qty             int      `bson:"qty" json:"qty"`
	UnitPrice       int64    `bson:"unitPrice" json:"unitPrice"`
	SelectedOptions []string `bson:"selectedOptions,omitempty" json:"selectedOptions,omitempty"`
	LineTotal       int64    `bson:"lineTotal" json:"lineTotal"`
}
