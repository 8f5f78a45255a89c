package userstore_test

import (
	"errors"
	"testing"

	userstore "github.com/sahilshivekar/team23-ngo-backend/internal/app/store/users"
	"github.com/sahilshivekar/team23-ngo-backend/internal/app/system/indexes"
	"github.com/sahilshivekar/team23-ngo-backend/internal/domain/models"
	"github.com/sahilshivekar/team23-ngo-backend/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func sampleUser(email string) models.User {
	return models.User{
		FirstName:    "Asha",
		LastName:     "Rao",
		Email:        email,
		Phone:        "+919876543210",
		PasswordHash: "$2a$12$hash",
	}
}

func TestStore_CreateDefaultsAndNormalizes(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := userstore.New(db)
	created, err := store.Create(ctx, sampleUser("  Asha@Example.ORG "))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if created.Email != "asha@example.org" {
		t.Errorf("email: got %q", created.Email)
	}
	if created.Role != models.RoleNormal {
		t.Errorf("role: got %q, want %q", created.Role, models.RoleNormal)
	}

	got, err := store.GetByEmail(ctx, "ASHA@example.org")
	if err != nil {
		t.Fatalf("GetByEmail failed: %v", err)
	}
	if got.ID != created.ID {
		t.Errorf("GetByEmail returned %v, want %v", got.ID, created.ID)
	}
}

func TestStore_DuplicateEmail(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}
	store := userstore.New(db)
	if _, err := store.Create(ctx, sampleUser("a@b.org")); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := store.Create(ctx, sampleUser("A@B.org")); !errors.Is(err, userstore.ErrDuplicateEmail) {
		t.Errorf("expected ErrDuplicateEmail, got %v", err)
	}
}

func TestStore_EmailTaken(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := userstore.New(db)
	created, err := store.Create(ctx, sampleUser("a@b.org"))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	taken, err := store.EmailTaken(ctx, "a@b.org", primitive.NilObjectID)
	if err != nil || !taken {
		t.Errorf("expected taken, got %v (%v)", taken, err)
	}
	taken, err = store.EmailTaken(ctx, "a@b.org", created.ID)
	if err != nil || taken {
		t.Errorf("expected free when excluding self, got %v (%v)", taken, err)
	}
}

func TestStore_UpdateAndAvatar(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := userstore.New(db)
	created, err := store.Create(ctx, sampleUser("a@b.org"))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := store.Update(ctx, created.ID, bson.M{"fname": "Asha R."}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	avatar := models.MediaAsset{RemoteID: "ngohub/u.png", SecureURL: "https://cdn/u.png"}
	if err := store.SetAvatar(ctx, created.ID, avatar); err != nil {
		t.Fatalf("SetAvatar failed: %v", err)
	}

	got, err := store.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.FirstName != "Asha R." {
		t.Errorf("fname: got %q", got.FirstName)
	}
	if got.Avatar == nil || got.Avatar.RemoteID != avatar.RemoteID {
		t.Errorf("avatar: got %+v", got.Avatar)
	}
	if err := store.SetAvatar(ctx, primitive.NewObjectID(), avatar); !errors.Is(err, mongo.ErrNoDocuments) {
		t.Errorf("expected ErrNoDocuments, got %v", err)
	}
}
