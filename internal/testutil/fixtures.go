package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/dalemusser/waffle/pantry/text"
	campaignstore "github.com/sahilshivekar/team23-ngo-backend/internal/app/store/campaigns"
	ngostore "github.com/sahilshivekar/team23-ngo-backend/internal/app/store/ngos"
	projectstore "github.com/sahilshivekar/team23-ngo-backend/internal/app/store/projects"
	userstore "github.com/sahilshivekar/team23-ngo-backend/internal/app/store/users"
	"github.com/sahilshivekar/team23-ngo-backend/internal/app/system/credentials"
	"github.com/sahilshivekar/team23-ngo-backend/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// FixturePassword is the password of every account the fixtures create.
const FixturePassword = "fixture-password"

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

func (f *Fixtures) hash() string {
	f.t.Helper()
	h, err := credentials.HashPassword(FixturePassword)
	if err != nil {
		f.t.Fatalf("hash fixture password: %v", err)
	}
	return h
}

// CreateNGO stores an NGO with the given identity and FixturePassword.
func (f *Fixtures) CreateNGO(ctx context.Context, name, email, registrationNumber string) models.NGO {
	f.t.Helper()

	ngo, err := ngostore.New(f.db).Create(ctx, models.NGO{
		Name:               name,
		NameCI:             text.Fold(name),
		Description:        "Test NGO",
		Contact:            models.NGOContact{Email: email, Phone: "+911234567890"},
		Address:            models.Address{Line1: "1 Test Road", City: "Pune", State: "MH", Country: "India", PostalCode: "411001"},
		Website:            "https://example.org",
		RegistrationNumber: registrationNumber,
		PasswordHash:       f.hash(),
	})
	if err != nil {
		f.t.Fatalf("CreateNGO(%q) failed: %v", name, err)
	}
	return ngo
}

// CreateUser stores an individual with the given role and FixturePassword.
func (f *Fixtures) CreateUser(ctx context.Context, firstName, email, role string) models.User {
	f.t.Helper()

	u, err := userstore.New(f.db).Create(ctx, models.User{
		FirstName:    firstName,
		LastName:     "Tester",
		Email:        email,
		Phone:        "+919876543210",
		Role:         role,
		PasswordHash: f.hash(),
	})
	if err != nil {
		f.t.Fatalf("CreateUser(%q) failed: %v", email, err)
	}
	return u
}

// CreateProject stores a project owned by ngoID.
func (f *Fixtures) CreateProject(ctx context.Context, title string, ngoID primitive.ObjectID) models.Project {
	f.t.Helper()

	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	p, err := projectstore.New(f.db).Create(ctx, models.Project{
		Title:       title,
		Description: "Test project",
		NGOID:       ngoID,
		StartDate:   start,
		EndDate:     start.AddDate(0, 3, 0),
		Location:    models.Location{City: "Pune", State: "MH", Country: "India"},
	})
	if err != nil {
		f.t.Fatalf("CreateProject(%q) failed: %v", title, err)
	}
	return p
}

// CreateCampaign stores a campaign owned by ngoID across projectIDs.
func (f *Fixtures) CreateCampaign(ctx context.Context, title string, ngoID primitive.ObjectID, projectIDs ...primitive.ObjectID) models.Campaign {
	f.t.Helper()

	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	c, err := campaignstore.New(f.db).Create(ctx, models.Campaign{
		Title:        title,
		Description:  "Test campaign",
		TargetAmount: 1000,
		Currency:     models.DefaultCurrency,
		StartDate:    start,
		EndDate:      start.AddDate(0, 1, 0),
		NGOID:        ngoID,
		ProjectIDs:   projectIDs,
	})
	if err != nil {
		f.t.Fatalf("CreateCampaign(%q) failed: %v", title, err)
	}
	return c
}
