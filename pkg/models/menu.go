package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MenuItem is a catalog entry. Items carry both the Mongo document id and a
// numeric legacy id; cart and order lines may reference either form.
type MenuItem struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"mongoId"`
	NumericID        int64              `bson:"id" json:"id"`
	Slug             string             `bson:"slug" json:"slug"`
	Name             string             `bson:"name" json:"name"`
	Description      string             `bson:"description,omitempty" json:"description,omitempty"`
	BasePrice        int64              `bson:"basePrice" json:"basePrice"`
	Category         string             `bson:"category,omitempty" json:"category,omitempty"`
	Image            string             `bson:"image,omitempty" json:"image,omitempty"`
	Options          []ItemOption       `bson:"options,omitempty" json:"options,omitempty"`
	IsAvailable      bool               `bson:"isAvailable" json:"isAvailable"`
	IsFeatured       bool               `bson:"isFeatured" json:"isFeatured"`
	VariantGroupRefs []string           `bson:"variantGroupRefs,omitempty" json:"variantGroupRefs,omitempty"`
	CreatedAt        time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt        time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// ItemOption is a named modifier with an additive price delta, in minor
// currency units. Labels are unique within an item.
type ItemOption struct {
	Label      string `bson:"label" json:"label"`
	PriceDelta int64  `bson:"priceDelta" json:"priceDelta"`
}

// VariantGroup is a named option set referenced by id from menu items.
// The reference is weak: lookup only, no ownership.
type VariantGroup struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"mongoId"`
	GroupID       string             `bson:"groupId" json:"groupId"`
	Name          string             `bson:"name" json:"name"`
	IsRequired    bool               `bson:"isRequired" json:"isRequired"`
	MaxSelections int                `bson:"maxSelections" json:"maxSelections"` // 0 = unlimited
	Options       []VariantOption    `bson:"options,omitempty" json:"options,omitempty"`
}

type VariantOption struct {
	Name            string `bson:"name" json:"name"`
	AdditionalPrice int64  `bson:"additionalPrice" json:"additionalPrice"`
	IsActive        bool   `bson:"isActive" json:"isActive"`
	Order           int    `bson:"order" json:"order"`
}
