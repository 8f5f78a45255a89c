package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DefaultCurrency is applied when a campaign omits one.
const DefaultCurrency = "INR"

// Currencies is the closed set of campaign currencies.
var Currencies = []string{"USD", "EUR", "INR", "GBP", "AUD", "CAD", "JPY", "CNY", "BRL", "MXN"}

// Campaign is a fundraising drive run by an NGO across one or more projects.
// RaisedAmount starts at 0 and is never negative.
type Campaign struct {
	ID           primitive.ObjectID   `bson:"_id" json:"id"`
	Title        string               `bson:"title" json:"title"`
	Description  string               `bson:"description" json:"description"`
	TargetAmount float64              `bson:"target_amount" json:"targetAmount"`
	RaisedAmount float64              `bson:"raised_amount" json:"raisedAmount"`
	Currency     string               `bson:"currency" json:"currency"`
	StartDate    time.Time            `bson:"start_date" json:"startDate"`
	EndDate      time.Time            `bson:"end_date" json:"endDate"`
	NGOID        primitive.ObjectID   `bson:"ngo_id" json:"ngoId"`
	ProjectIDs   []primitive.ObjectID `bson:"projects" json:"projects"`
	Images       []MediaAsset         `bson:"images" json:"images"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}
