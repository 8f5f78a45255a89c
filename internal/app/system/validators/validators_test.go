package validators_test

import (
	"testing"
	"time"

	"github.com/sahilshivekar/team23-ngo-backend/internal/app/system/validators"
	"github.com/sahilshivekar/team23-ngo-backend/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestEnsureAll_Idempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := validators.EnsureAll(ctx, db); err != nil {
		t.Fatalf("First EnsureAll failed: %v", err)
	}
	if err := validators.EnsureAll(ctx, db); err != nil {
		t.Fatalf("Second EnsureAll failed: %v", err)
	}
}

func TestEnsureAll_CreatesCollections(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := validators.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	names, err := db.ListCollectionNames(ctx, bson.M{})
	if err != nil {
		t.Fatalf("ListCollectionNames failed: %v", err)
	}
	collMap := make(map[string]bool)
	for _, name := range names {
		collMap[name] = true
	}
	for _, expected := range []string{"ngos", "users", "projects", "campaigns", "audit_events"} {
		if !collMap[expected] {
			t.Errorf("expected collection %q to exist", expected)
		}
	}
}

func images(n int) bson.A {
	out := bson.A{}
	for i := 0; i < n; i++ {
		out = append(out, bson.M{"remote_id": "r" + string(rune('a'+i)), "secure_url": "https://cdn.test/x"})
	}
	return out
}

func validCampaign() bson.M {
	return bson.M{
		"title":         "Winter drive",
		"ngo_id":        primitive.NewObjectID(),
		"target_amount": 1000.0,
		"raised_amount": 0.0,
		"currency":      "INR",
		"start_date":    time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		"end_date":      time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC),
		"projects":      bson.A{primitive.NewObjectID()},
		"images":        images(10),
	}
}

func TestCampaignsValidator(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := validators.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}
	coll := db.Collection("campaigns")

	if _, err := coll.InsertOne(ctx, validCampaign()); err != nil {
		t.Fatalf("valid campaign rejected: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(bson.M)
	}{
		{"negative raised amount", func(d bson.M) { d["raised_amount"] = -1.0 }},
		{"eleven images", func(d bson.M) { d["images"] = images(11) }},
		{"unknown currency", func(d bson.M) { d["currency"] = "XYZ" }},
		{"no projects", func(d bson.M) { d["projects"] = bson.A{} }},
		{"missing title", func(d bson.M) { delete(d, "title") }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := validCampaign()
			tt.mutate(doc)
			if _, err := coll.InsertOne(ctx, doc); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestNGOsValidator(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := validators.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	_, err := db.Collection("ngos").InsertOne(ctx, bson.M{"name": "Helping Hands"})
	if err == nil {
		t.Error("expected validation error when inserting ngo without required fields")
	}

	_, err = db.Collection("ngos").InsertOne(ctx, bson.M{
		"name":                "Helping Hands",
		"name_ci":             "helping hands",
		"registration_number": "R1",
		"password":            "$2a$12$hash",
		"contact":             bson.M{"email": "a@b.org"},
		"images":              images(3),
	})
	if err != nil {
		t.Errorf("Insert valid ngo failed: %v", err)
	}
}

func TestUsersValidator_InvalidRole(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := validators.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	doc := bson.M{
		"fname":    "Asha",
		"lname":    "Rao",
		"email":    "asha@example.org",
		"password": "$2a$12$hash",
		"role":     "admin",
	}
	if _, err := db.Collection("users").InsertOne(ctx, doc); err == nil {
		t.Error("expected validation error for invalid role")
	}

	doc["role"] = "volunteer"
	if _, err := db.Collection("users").InsertOne(ctx, doc); err != nil {
		t.Errorf("Insert valid user failed: %v", err)
	}
}
