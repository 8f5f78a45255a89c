package testutil

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/dalemusser/waffle/pantry/text"
	ngostore "github.com/sahilshivekar/team23-ngo-backend/internal/app/store/ngos"
	userstore "github.com/sahilshivekar/team23-ngo-backend/internal/app/store/users"
	"github.com/sahilshivekar/team23-ngo-backend/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// applySet applies a $set of dotted paths to v by round-tripping through
// BSON, which is how the real stores see the document.
func applySet[T any](v T, set bson.M) (T, error) {
	var zero T
	raw, err := bson.Marshal(v)
	if err != nil {
		return zero, err
	}
	doc := bson.M{}
	if err := bson.Unmarshal(raw, &doc); err != nil {
		return zero, err
	}
	for path, val := range set {
		parts := strings.Split(path, ".")
		node := doc
		for _, p := range parts[:len(parts)-1] {
			switch child := node[p].(type) {
			case bson.M:
				node = child
			case bson.D:
				m := child.Map()
				node[p] = m
				node = m
			default:
				m := bson.M{}
				node[p] = m
				node = m
			}
		}
		node[parts[len(parts)-1]] = val
	}
	if raw, err = bson.Marshal(doc); err != nil {
		return zero, err
	}
	var out T
	if err := bson.Unmarshal(raw, &out); err != nil {
		return zero, err
	}
	return out, nil
}

// NGOStore is an in-memory organization store with the real store's
// uniqueness rules.
type NGOStore struct {
	mu   sync.Mutex
	docs map[primitive.ObjectID]models.NGO

	// RaceOnCreate, when set, is returned by Create as if a concurrent
	// writer claimed the identity first.
	RaceOnCreate error
	// FailUpdate fails Update, SetAvatar and SetCoverImage.
	FailUpdate error
	// FailAddRef fails AddProject and AddCampaign.
	FailAddRef error
}

func NewNGOStore() *NGOStore {
	return &NGOStore{docs: map[primitive.ObjectID]models.NGO{}}
}

// Put stores ngo as-is, assigning an ID if missing.
func (s *NGOStore) Put(ngo models.NGO) models.NGO {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ngo.ID.IsZero() {
		ngo.ID = primitive.NewObjectID()
	}
	ngo.NameCI = text.Fold(ngo.Name)
	s.docs[ngo.ID] = ngo
	return ngo
}

// Len returns the number of stored NGOs.
func (s *NGOStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.docs)
}

func (s *NGOStore) Create(_ context.Context, ngo models.NGO) (models.NGO, error) {
	if s.RaceOnCreate != nil {
		return models.NGO{}, s.RaceOnCreate
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if field := s.takenLocked(ngostore.Identity{
		Email:              ngo.Contact.Email,
		RegistrationNumber: ngo.RegistrationNumber,
		Name:               ngo.Name,
	}, primitive.NilObjectID); field != "" {
		return models.NGO{}, map[string]error{
			"email":              ngostore.ErrDuplicateEmail,
			"registrationNumber": ngostore.ErrDuplicateRegistrationNumber,
			"name":               ngostore.ErrDuplicateName,
		}[field]
	}
	now := time.Now().UTC()
	ngo.ID = primitive.NewObjectID()
	ngo.NameCI = text.Fold(ngo.Name)
	if ngo.Images == nil {
		ngo.Images = []models.MediaAsset{}
	}
	ngo.CreatedAt, ngo.UpdatedAt = now, now
	s.docs[ngo.ID] = ngo
	return ngo, nil
}

func (s *NGOStore) GetByID(_ context.Context, id primitive.ObjectID) (models.NGO, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ngo, ok := s.docs[id]
	if !ok {
		return models.NGO{}, mongo.ErrNoDocuments
	}
	return ngo, nil
}

func (s *NGOStore) FindForLogin(_ context.Context, registrationNumber, email string) (models.NGO, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ngo := range s.docs {
		if (registrationNumber != "" && ngo.RegistrationNumber == registrationNumber) ||
			(email != "" && ngo.Contact.Email == email) {
			return ngo, nil
		}
	}
	return models.NGO{}, mongo.ErrNoDocuments
}

func (s *NGOStore) TakenBy(_ context.Context, id ngostore.Identity, exclude primitive.ObjectID) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.takenLocked(id, exclude), nil
}

func (s *NGOStore) takenLocked(id ngostore.Identity, exclude primitive.ObjectID) string {
	for _, ngo := range s.docs {
		if ngo.ID == exclude {
			continue
		}
		switch {
		case id.Email != "" && ngo.Contact.Email == id.Email:
			return "email"
		case id.RegistrationNumber != "" && ngo.RegistrationNumber == id.RegistrationNumber:
			return "registrationNumber"
		case id.Name != "" && ngo.NameCI == text.Fold(id.Name):
			return "name"
		}
	}
	return ""
}

func (s *NGOStore) Update(_ context.Context, id primitive.ObjectID, set bson.M) error {
	if s.FailUpdate != nil {
		return s.FailUpdate
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	ngo, ok := s.docs[id]
	if !ok {
		return mongo.ErrNoDocuments
	}
	set["updated_at"] = time.Now().UTC()
	next, err := applySet(ngo, set)
	if err != nil {
		return err
	}
	next.NameCI = text.Fold(next.Name)
	s.docs[id] = next
	return nil
}

func (s *NGOStore) SetAvatar(ctx context.Context, id primitive.ObjectID, asset models.MediaAsset) error {
	return s.Update(ctx, id, bson.M{"avatar": asset})
}

func (s *NGOStore) SetCoverImage(ctx context.Context, id primitive.ObjectID, asset models.MediaAsset) error {
	return s.Update(ctx, id, bson.M{"cover_image": asset})
}

func (s *NGOStore) AddProject(_ context.Context, id, projectID primitive.ObjectID) error {
	return s.addRef(id, func(n *models.NGO) { n.ProjectIDs = append(n.ProjectIDs, projectID) })
}

func (s *NGOStore) AddCampaign(_ context.Context, id, campaignID primitive.ObjectID) error {
	return s.addRef(id, func(n *models.NGO) { n.CampaignIDs = append(n.CampaignIDs, campaignID) })
}

func (s *NGOStore) addRef(id primitive.ObjectID, add func(*models.NGO)) error {
	if s.FailAddRef != nil {
		return s.FailAddRef
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	ngo, ok := s.docs[id]
	if !ok {
		return mongo.ErrNoDocuments
	}
	add(&ngo)
	s.docs[id] = ngo
	return nil
}

// UserStore is an in-memory individual store.
type UserStore struct {
	mu   sync.Mutex
	docs map[primitive.ObjectID]models.User

	RaceOnCreate error
	FailUpdate   error
}

func NewUserStore() *UserStore {
	return &UserStore{docs: map[primitive.ObjectID]models.User{}}
}

// Put stores u as-is, assigning an ID if missing.
func (s *UserStore) Put(u models.User) models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	u.Email = userstore.NormalizeEmail(u.Email)
	s.docs[u.ID] = u
	return u
}

// Len returns the number of stored users.
func (s *UserStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.docs)
}

func (s *UserStore) Create(_ context.Context, u models.User) (models.User, error) {
	if s.RaceOnCreate != nil {
		return models.User{}, s.RaceOnCreate
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	u.Email = userstore.NormalizeEmail(u.Email)
	for _, other := range s.docs {
		if other.Email == u.Email {
			return models.User{}, userstore.ErrDuplicateEmail
		}
	}
	now := time.Now().UTC()
	u.ID = primitive.NewObjectID()
	if u.Role == "" {
		u.Role = models.RoleNormal
	}
	if u.Images == nil {
		u.Images = []models.MediaAsset{}
	}
	u.CreatedAt, u.UpdatedAt = now, now
	s.docs[u.ID] = u
	return u, nil
}

func (s *UserStore) GetByID(_ context.Context, id primitive.ObjectID) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.docs[id]
	if !ok {
		return models.User{}, mongo.ErrNoDocuments
	}
	return u, nil
}

func (s *UserStore) GetByEmail(_ context.Context, email string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	email = userstore.NormalizeEmail(email)
	for _, u := range s.docs {
		if u.Email == email {
			return u, nil
		}
	}
	return models.User{}, mongo.ErrNoDocuments
}

func (s *UserStore) EmailTaken(_ context.Context, email string, exclude primitive.ObjectID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	email = userstore.NormalizeEmail(email)
	for _, u := range s.docs {
		if u.ID != exclude && u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (s *UserStore) Update(_ context.Context, id primitive.ObjectID, set bson.M) error {
	if s.FailUpdate != nil {
		return s.FailUpdate
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.docs[id]
	if !ok {
		return mongo.ErrNoDocuments
	}
	set["updated_at"] = time.Now().UTC()
	next, err := applySet(u, set)
	if err != nil {
		return err
	}
	s.docs[id] = next
	return nil
}

func (s *UserStore) SetAvatar(ctx context.Context, id primitive.ObjectID, asset models.MediaAsset) error {
	return s.Update(ctx, id, bson.M{"avatar": asset})
}

// ProjectStore is an in-memory project store.
type ProjectStore struct {
	mu   sync.Mutex
	docs map[primitive.ObjectID]models.Project

	FailCreate error
	// LoseWrites makes Create succeed without storing, so read-back misses.
	LoseWrites bool
}

func NewProjectStore() *ProjectStore {
	return &ProjectStore{docs: map[primitive.ObjectID]models.Project{}}
}

// Put stores p as-is, assigning an ID if missing.
func (s *ProjectStore) Put(p models.Project) models.Project {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	s.docs[p.ID] = p
	return p
}

func (s *ProjectStore) Create(_ context.Context, p models.Project) (models.Project, error) {
	if s.FailCreate != nil {
		return models.Project{}, s.FailCreate
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	p.ID = primitive.NewObjectID()
	if p.Images == nil {
		p.Images = []models.MediaAsset{}
	}
	p.CreatedAt, p.UpdatedAt = now, now
	if !s.LoseWrites {
		s.docs[p.ID] = p
	}
	return p, nil
}

func (s *ProjectStore) GetByID(_ context.Context, id primitive.ObjectID) (models.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.docs[id]
	if !ok {
		return models.Project{}, mongo.ErrNoDocuments
	}
	return p, nil
}

func (s *ProjectStore) CountOwned(_ context.Context, ngoID primitive.ObjectID, ids []primitive.ObjectID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, id := range ids {
		if p, ok := s.docs[id]; ok && p.NGOID == ngoID {
			n++
		}
	}
	return n, nil
}

func (s *ProjectStore) Update(_ context.Context, id primitive.ObjectID, set bson.M, images []models.MediaAsset) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.docs[id]
	if !ok {
		return mongo.ErrNoDocuments
	}
	set["updated_at"] = time.Now().UTC()
	next, err := applySet(p, set)
	if err != nil {
		return err
	}
	next.Images = append(next.Images, images...)
	s.docs[id] = next
	return nil
}

// CampaignStore is an in-memory campaign store.
type CampaignStore struct {
	mu   sync.Mutex
	docs map[primitive.ObjectID]models.Campaign
}

func NewCampaignStore() *CampaignStore {
	return &CampaignStore{docs: map[primitive.ObjectID]models.Campaign{}}
}

// Put stores c as-is, assigning an ID if missing.
func (s *CampaignStore) Put(c models.Campaign) models.Campaign {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
	}
	s.docs[c.ID] = c
	return c
}

func (s *CampaignStore) Create(_ context.Context, c models.Campaign) (models.Campaign, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	c.ID = primitive.NewObjectID()
	c.RaisedAmount = 0
	if c.Currency == "" {
		c.Currency = models.DefaultCurrency
	}
	if c.Images == nil {
		c.Images = []models.MediaAsset{}
	}
	c.CreatedAt, c.UpdatedAt = now, now
	s.docs[c.ID] = c
	return c, nil
}

func (s *CampaignStore) GetByID(_ context.Context, id primitive.ObjectID) (models.Campaign, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.docs[id]
	if !ok {
		return models.Campaign{}, mongo.ErrNoDocuments
	}
	return c, nil
}

func (s *CampaignStore) Update(_ context.Context, id primitive.ObjectID, set bson.M, images []models.MediaAsset) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.docs[id]
	if !ok {
		return mongo.ErrNoDocuments
	}
	set["updated_at"] = time.Now().UTC()
	next, err := applySet(c, set)
	if err != nil {
		return err
	}
	next.Images = append(next.Images, images...)
	s.docs[id] = next
	return nil
}
