package ngostore_test

import (
	"errors"
	"testing"

	"github.com/dalemusser/waffle/pantry/text"
	ngostore "github.com/sahilshivekar/team23-ngo-backend/internal/app/store/ngos"
	"github.com/sahilshivekar/team23-ngo-backend/internal/app/system/indexes"
	"github.com/sahilshivekar/team23-ngo-backend/internal/domain/models"
	"github.com/sahilshivekar/team23-ngo-backend/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func sampleNGO(name, email, regNo string) models.NGO {
	return models.NGO{
		Name:               name,
		Description:        "Feeding families",
		Contact:            models.NGOContact{Phone: "+911234567890", Email: email},
		Address:            models.Address{Line1: "1 Main St", City: "Pune", State: "MH", Country: "India", PostalCode: "411001"},
		Website:            "https://example.org",
		RegistrationNumber: regNo,
		PasswordHash:       "$2a$12$hash",
	}
}

func TestStore_CreateAndGet(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := ngostore.New(db)
	created, err := store.Create(ctx, sampleNGO("Helping Hands", "a@b.org", "R1"))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if created.ID.IsZero() {
		t.Fatal("expected ID to be assigned")
	}
	if created.NameCI != text.Fold("Helping Hands") {
		t.Errorf("NameCI: got %q", created.NameCI)
	}

	got, err := store.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.RegistrationNumber != "R1" || got.Contact.Email != "a@b.org" {
		t.Errorf("unexpected NGO: %+v", got)
	}
	if got.Images == nil || got.ProjectIDs == nil {
		t.Error("expected empty lists, not nil")
	}
}

func TestStore_GetByID_NotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, err := ngostore.New(db).GetByID(ctx, primitive.NewObjectID())
	if !errors.Is(err, mongo.ErrNoDocuments) {
		t.Errorf("expected ErrNoDocuments, got %v", err)
	}
}

func TestStore_Create_DuplicateClassified(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}
	store := ngostore.New(db)
	if _, err := store.Create(ctx, sampleNGO("Helping Hands", "a@b.org", "R1")); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	tests := []struct {
		name  string
		ngo   models.NGO
		want  error
		field string
	}{
		{"email", sampleNGO("Other", "a@b.org", "R2"), ngostore.ErrDuplicateEmail, "email"},
		{"registration", sampleNGO("Other", "c@d.org", "R1"), ngostore.ErrDuplicateRegistrationNumber, "registrationNumber"},
		{"name", sampleNGO("HELPING hands", "e@f.org", "R3"), ngostore.ErrDuplicateName, "name"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := store.Create(ctx, tt.ngo)
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			if got := ngostore.DuplicateField(err); got != tt.field {
				t.Errorf("DuplicateField: got %q, want %q", got, tt.field)
			}
		})
	}
}

func TestStore_FindForLogin(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := ngostore.New(db)
	created, err := store.Create(ctx, sampleNGO("Helping Hands", "a@b.org", "R1"))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	byReg, err := store.FindForLogin(ctx, "R1", "")
	if err != nil || byReg.ID != created.ID {
		t.Errorf("by registration number: %v %v", byReg.ID, err)
	}
	byEmail, err := store.FindForLogin(ctx, "", "a@b.org")
	if err != nil || byEmail.ID != created.ID {
		t.Errorf("by email: %v %v", byEmail.ID, err)
	}
	if _, err := store.FindForLogin(ctx, "", ""); !errors.Is(err, mongo.ErrNoDocuments) {
		t.Errorf("expected ErrNoDocuments for empty lookup, got %v", err)
	}
}

func TestStore_TakenBy(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := ngostore.New(db)
	created, err := store.Create(ctx, sampleNGO("Helping Hands", "a@b.org", "R1"))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	field, err := store.TakenBy(ctx, ngostore.Identity{Email: "x@y.org", RegistrationNumber: "R1"}, primitive.NilObjectID)
	if err != nil || field != "registrationNumber" {
		t.Errorf("expected registrationNumber, got %q (%v)", field, err)
	}
	field, err = store.TakenBy(ctx, ngostore.Identity{Email: "a@b.org", Name: "helping HANDS"}, created.ID)
	if err != nil || field != "" {
		t.Errorf("excluding self: expected no conflict, got %q (%v)", field, err)
	}
}

func TestStore_UpdateAndSlots(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := ngostore.New(db)
	created, err := store.Create(ctx, sampleNGO("Helping Hands", "a@b.org", "R1"))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := store.Update(ctx, created.ID, bson.M{"name": "Helping Hearts"}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	avatar := models.MediaAsset{RemoteID: "ngohub/a.png", SecureURL: "https://cdn/a.png"}
	if err := store.SetAvatar(ctx, created.ID, avatar); err != nil {
		t.Fatalf("SetAvatar failed: %v", err)
	}
	projectID := primitive.NewObjectID()
	for i := 0; i < 2; i++ {
		if err := store.AddProject(ctx, created.ID, projectID); err != nil {
			t.Fatalf("AddProject failed: %v", err)
		}
	}

	got, err := store.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Name != "Helping Hearts" || got.NameCI != text.Fold("Helping Hearts") {
		t.Errorf("name not updated: %q / %q", got.Name, got.NameCI)
	}
	if got.Avatar == nil || *got.Avatar != avatar {
		t.Errorf("avatar: got %+v", got.Avatar)
	}
	if len(got.ProjectIDs) != 1 {
		t.Errorf("expected project recorded once, got %d", len(got.ProjectIDs))
	}

	if err := store.Update(ctx, primitive.NewObjectID(), bson.M{"website": "https://x.org"}); !errors.Is(err, mongo.ErrNoDocuments) {
		t.Errorf("expected ErrNoDocuments for missing NGO, got %v", err)
	}
}
