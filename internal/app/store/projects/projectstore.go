// internal/app/store/projects/projectstore.go
package projectstore

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
	return &Store{c: db.Collection("projects")}
}

func (s *Store) Create(ctx context.Context, p models.Project) (models.Project, error) {
	now := time.Now().UTC()
	p.ID = primitive.NewObjectID()
	if p.Images == nil {
		p.Images = []models.MediaAsset{}
	}
	if p.ResourcesNeeded == nil {
		p.ResourcesNeeded = []models.ResourceNeed{}
	}
	if p.SkillsNeeded == nil {
		p.SkillsNeeded = []string{}
	}
	if p.VolunteersAssigned == nil {
		p.VolunteersAssigned = []models.VolunteerAssignment{}
	}
	p.CreatedAt = now
	p.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, p); err != nil {
		return models.Project{}, err
	}
	return p, nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Project, error) {
	var p models.Project
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		return models.Project{}, err
	}
	return p, nil
}

// CountOwned returns how many of ids exist and belong to ngoID.
func (s *Store) CountOwned(ctx context.Context, ngoID primitive.ObjectID, ids []primitive.ObjectID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	return s.c.CountDocuments(ctx, bson.M{"_id": bson.M{"$in": ids}, "ngo_id": ngoID})
}

// ListByNGO returns an NGO's projects, newest start date first.
func (s *Store) ListByNGO(ctx context.Context, ngoID primitive.ObjectID) ([]models.Project, error) {
	opts := options.Find().SetSort(bson.D{{Key: "start_date", Value: -1}})
	cur, err := s.c.Find(ctx, bson.M{"ngo_id": ngoID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Project
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
