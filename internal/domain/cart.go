package domain

import "time"

type Cart struct {
	ID        string     `bson:"_id,omitempty" json:"id,omitempty"`
	UserID    string     `bson:"user_id" json:"userId"`
	Items     []CartItem `bson:"items" json:"items"`
	CreatedAt time.Time  `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time  `bson:"updated_at" json:"updatedAt"`
}

type CartItem struct {
	ProductID string    `bson:"product_id" json:"productId"`
	Quantity  int       `bson:"quantity" json:"quantity"`
	AddedAt   time.Time `bson:"added_at" json:"addedAt"`
}

// EnrichedCart is the read-time projection returned by cart retrieval.
// It is never persisted; the stored document keeps only the bare items.
type EnrichedCart struct {
	UserID string         `json:"userId"`
	Items  []EnrichedItem `json:"items"`
}

type EnrichedItem struct {
	ProductID string   `json:"productId"`
	Quantity  int      `json:"quantity"`
	Name      string   `json:"name"`
	Price     float64  `json:"price"`
	Images    []string `json:"image"`
}
