// internal/app/store/ngos/ngostore.go
package ngostore

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dalemusser/waffle/pantry/text"
	"github.com/sahilshivekar/team23-ngo-backend/internal/app/system/indexes"
	"github.com/sahilshivekar/team23-ngo-backend/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type Store struct {
	c *mongo.Collection
}

var (
	ErrDuplicateEmail              = errors.New("an NGO with this email already exists")
	ErrDuplicateRegistrationNumber = errors.New("an NGO with this registration number already exists")
	ErrDuplicateName               = errors.New("an NGO with this name already exists")
)

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("ngos")}
}

// dupErr maps a duplicate-key error to the identity field that collided.
func dupErr(err error) error {
	switch {
	case indexes.Violated(err, indexes.NGOEmail):
		return ErrDuplicateEmail
	case indexes.Violated(err, indexes.NGORegistrationNumber):
		return ErrDuplicateRegistrationNumber
	case indexes.Violated(err, indexes.NGOName):
		return ErrDuplicateName
	}
	return err
}

func (s *Store) Create(ctx context.Context, ngo models.NGO) (models.NGO, error) {
	now := time.Now().UTC()
	ngo.ID = primitive.NewObjectID()
	ngo.NameCI = text.Fold(ngo.Name)
	if ngo.Images == nil {
		ngo.Images = []models.MediaAsset{}
	}
	if ngo.ProjectIDs == nil {
		ngo.ProjectIDs = []primitive.ObjectID{}
	}
	if ngo.CampaignIDs == nil {
		ngo.CampaignIDs = []primitive.ObjectID{}
	}
	ngo.CreatedAt = now
	ngo.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, ngo); err != nil {
		return models.NGO{}, dupErr(err)
	}
	return ngo, nil
}

// GetByID returns the NGO with its password hash; callers strip it before
// it leaves the service.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.NGO, error) {
	var ngo models.NGO
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&ngo); err != nil {
		return models.NGO{}, err
	}
	return ngo, nil
}

// FindForLogin matches on registration number or email, whichever is given.
func (s *Store) FindForLogin(ctx context.Context, registrationNumber, email string) (models.NGO, error) {
	var or []bson.M
	if registrationNumber != "" {
		or = append(or, bson.M{"registration_number": registrationNumber})
	}
	if email = strings.ToLower(strings.TrimSpace(email)); email != "" {
		or = append(or, bson.M{"contact.email": email})
	}
	if len(or) == 0 {
		return models.NGO{}, mongo.ErrNoDocuments
	}

	var ngo models.NGO
	if err := s.c.FindOne(ctx, bson.M{"$or": or}).Decode(&ngo); err != nil {
		return models.NGO{}, err
	}
	return ngo, nil
}

// Identity is the set of unique NGO fields. Blank entries are not checked.
type Identity struct {
	Email              string
	RegistrationNumber string
	Name               string
}

// TakenBy returns the first identity field ("email", "registrationNumber"
// or "name") already used by an NGO other than exclude. An empty result
// means every field is free.
func (s *Store) TakenBy(ctx context.Context, id Identity, exclude primitive.ObjectID) (string, error) {
	checks := []struct {
		field  string
		filter bson.M
		value  string
	}{
		{"email", bson.M{"contact.email": id.Email}, id.Email},
		{"registrationNumber", bson.M{"registration_number": id.RegistrationNumber}, id.RegistrationNumber},
		{"name", bson.M{"name_ci": text.Fold(id.Name)}, id.Name},
	}
	for _, c := range checks {
		if c.value == "" {
			continue
		}
		if !exclude.IsZero() {
			c.filter["_id"] = bson.M{"$ne": exclude}
		}
		err := s.c.FindOne(ctx, c.filter).Err()
		if err == mongo.ErrNoDocuments {
			continue
		}
		if err != nil {
			return "", err
		}
		return c.field, nil
	}
	return "", nil
}

// DuplicateField names the identity field behind a duplicate sentinel.
func DuplicateField(err error) string {
	switch {
	case errors.Is(err, ErrDuplicateEmail):
		return "email"
	case errors.Is(err, ErrDuplicateRegistrationNumber):
		return "registrationNumber"
	case errors.Is(err, ErrDuplicateName):
		return "name"
	}
	return ""
}

// Update applies set (bson field paths) and refreshes UpdatedAt. A missing
// document is reported as mongo.ErrNoDocuments.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, set bson.M) error {
	if name, ok := set["name"].(string); ok {
		set["name_ci"] = text.Fold(name)
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

// SetCoverImage points the cover image slot at asset.
func (s *Store) SetCoverImage(ctx context.Context, id primitive.ObjectID, asset models.MediaAsset) error {
	return s.Update(ctx, id, bson.M{"cover_image": asset})
}

// AddProject records projectID on the NGO's project list.
func (s *Store) AddProject(ctx context.Context, id, projectID primitive.ObjectID) error {
	return s.addToSet(ctx, id, "projects", projectID)
}

// AddCampaign records campaignID on the NGO's campaign list.
func (s *Store) AddCampaign(ctx context.Context, id, campaignID primitive.ObjectID) error {
	return s.addToSet(ctx, id, "campaigns", campaignID)
}

func (s *Store) addToSet(ctx context.Context, id primitive.ObjectID, field string, ref primitive.ObjectID) error {
	res, err := s.c.UpdateByID(ctx, id, bson.M{
		"$addToSet": bson.M{field: ref},
		"$set":      bson.M{"updated_at": time.Now().UTC()},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}
