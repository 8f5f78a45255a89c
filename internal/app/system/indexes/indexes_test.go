package indexes_test

import (
	"errors"
	"testing"

	"github.com/sahilshivekar/team23-ngo-backend/internal/app/system/indexes"
	"github.com/sahilshivekar/team23-ngo-backend/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

func indexNames(t *testing.T, db *mongo.Database, coll string) map[string]bool {
	t.Helper()
	ctx, cancel := testutil.TestContext()
	defer cancel()

	cur, err := db.Collection(coll).Indexes().List(ctx)
	if err != nil {
		t.Fatalf("List indexes failed: %v", err)
	}
	defer cur.Close(ctx)

	names := make(map[string]bool)
	for cur.Next(ctx) {
		var idx bson.M
		if err := cur.Decode(&idx); err != nil {
			continue
		}
		if name, ok := idx["name"].(string); ok {
			names[name] = true
		}
	}
	return names
}

func TestEnsureAll_Idempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("First EnsureAll failed: %v", err)
	}
	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("Second EnsureAll failed: %v", err)
	}
}

func TestEnsureAll_CreatesIndexes(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	want := map[string][]string{
		"ngos":      {indexes.NGOEmail, indexes.NGORegistrationNumber, indexes.NGOName},
		"users":     {indexes.UserEmail, "idx_users_role_skills"},
		"projects":  {"idx_projects_ngo_start"},
		"campaigns": {"idx_campaigns_ngo_start", "idx_campaigns_projects"},
	}
	for coll, expected := range want {
		names := indexNames(t, db, coll)
		for _, name := range expected {
			if !names[name] {
				t.Errorf("%s: expected index %q to exist", coll, name)
			}
		}
	}
}

func TestEnsureAll_UniqueIndexEnforced(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	users := db.Collection("users")
	if _, err := users.InsertOne(ctx, bson.M{"email": "a@b.org"}); err != nil {
		t.Fatalf("first insert failed: %v", err)
	}
	_, err := users.InsertOne(ctx, bson.M{"email": "a@b.org"})
	if !indexes.Violated(err, indexes.UserEmail) {
		t.Fatalf("expected violation of %s, got %v", indexes.UserEmail, err)
	}
}

func TestViolated_MatchesIndexName(t *testing.T) {
	err := mongo.WriteException{WriteErrors: []mongo.WriteError{{
		Code:    11000,
		Message: "E11000 duplicate key error collection: ngohub.ngos index: uniq_ngos_registration_number dup key: { registration_number: \"R1\" }",
	}}}

	if !indexes.Violated(err, indexes.NGORegistrationNumber) {
		t.Error("expected registration number violation")
	}
	if indexes.Violated(err, indexes.NGOEmail) {
		t.Error("did not expect email violation")
	}
	if indexes.IsDuplicateKey(errors.New("connection refused")) {
		t.Error("plain error is not a duplicate key")
	}
}
