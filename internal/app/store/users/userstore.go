// internal/app/store/users/userstore.go
package userstore

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sahilshivekar/team23-ngo-backend/internal/app/system/indexes"
	"github.com/sahilshivekar/team23-ngo-backend/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type Store struct {
	c *mongo.Collection
}

var ErrDuplicateEmail = errors.New("a user with this email already exists")

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("users")}
}

func dupErr(err error) error {
	if indexes.Violated(err, indexes.UserEmail) {
		return ErrDuplicateEmail
	}
	return err
}

// NormalizeEmail lowercases and trims an email for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *Store) Create(ctx context.Context, u models.User) (models.User, error) {
	now := time.Now().UTC()
	u.ID = primitive.NewObjectID()
	u.Email = NormalizeEmail(u.Email)
	if u.Role == "" {
		u.Role = models.RoleNormal
	}
	if u.Images == nil {
		u.Images = []models.MediaAsset{}
	}
	u.CreatedAt = now
	u.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, u); err != nil {
		return models.User{}, dupErr(err)
	}
	return u, nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		return models.User{}, err
	}
	return u, nil
}

func (s *Store) GetByEmail(ctx context.Context, email string) (models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"email": NormalizeEmail(email)}).Decode(&u); err != nil {
		return models.User{}, err
	}
	return u, nil
}

// EmailTaken reports whether another user (not exclude) already uses email.
func (s *Store) EmailTaken(ctx context.Context, email string, exclude primitive.ObjectID) (bool, error) {
	filter := bson.M{"email": NormalizeEmail(email)}
	if !exclude.IsZero() {
		filter["_id"] = bson.M{"$ne": exclude}
	}
	err := s.c.FindOne(ctx, filter).Err()
	if err == mongo.ErrNoDocuments {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Update applies set and refreshes UpdatedAt.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, set bson.M) error {
	if email, ok := set["email"].(string); ok {
		set["email"] = NormalizeEmail(email)
	}
	set["updated_at"] = time.Now().UTC()
	res, err := s.c.UpdateByID(ctx, id, bson.M{"$set": set})
	if err != nil {
		return dupErr(err)
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// SetAvatar points the avatar slot at asset.
func (s *Store) SetAvatar(ctx context.Context, id primitive.ObjectID, asset models.MediaAsset) error {
	return s.Update(ctx, id, bson.M{"avatar": asset})
}
