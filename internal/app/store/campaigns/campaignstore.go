// internal/app/store/campaigns/campaignstore.go
package campaignstore

import (
	"context"
	"time"

	"github.com/sahilshivekar/team23-ngo-backend/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("campaigns")}
}

// Create inserts a campaign. RaisedAmount always starts at zero.
func (s *Store) Create(ctx context.Context, c models.Campaign) (models.Campaign, error) {
	now := time.Now().UTC()
	c.ID = primitive.NewObjectID()
	c.RaisedAmount = 0
	if c.Currency == "" {
		c.Currency = models.DefaultCurrency
	}
	if c.Images == nil {
		c.Images = []models.MediaAsset{}
	}
	c.CreatedAt = now
	c.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, c); err != nil {
		return models.Campaign{}, err
	}
	return c, nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Campaign, error) {
	var c models.Campaign
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&c); err != nil {
		return models.Campaign{}, err
	}
	return c, nil
}

// ListByNGO returns an NGO's campaigns, newest start date first.
func (s *Store) ListByNGO(ctx context.Context, ngoID primitive.ObjectID) ([]models.Campaign, error) {
	opts := options.Find().SetSort(bson.D{{Key: "start_date", Value: -1}})
	cur, err := s.c.Find(ctx, bson.M{"ngo_id": ngoID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Campaign
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Update applies set and appends images, refreshing UpdatedAt.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, set bson.M, images []models.MediaAsset) error {
	set["updated_at"] = time.Now().UTC()
	update := bson.M{"$set": set}
	if len(images) > 0 {
		update["$push"] = bson.M{"images": bson.M{"$each": images}}
	}
	res, err := s.c.UpdateByID(ctx, id, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}
