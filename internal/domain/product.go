package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Product is a catalog record. Price is a pointer because a product may be
// listed before it is priced; enrichment projects a nil price as 0.
type Product struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name      string             `bson:"name" json:"name"`
	Price     *float64           `bson:"price,omitempty" json:"price,omitempty"`
	Images    []string           `bson:"image" json:"image"`
	CreatedAt time.Time          `bson:"created_at" json:"-"`
}
