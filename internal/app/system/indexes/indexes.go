// internal/app/system/indexes/indexes.go
package indexes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// Unique index names. Stores match duplicate-key errors against these to
// tell which identity field collided.
const (
	NGOEmail              = "uniq_ngos_email"
	NGORegistrationNumber = "uniq_ngos_registration_number"
	NGOName               = "uniq_ngos_name_ci"
	UserEmail             = "uniq_users_email"
)

/*
EnsureAll is called at startup. Each ensure* function is idempotent.
Errors are aggregated so every problem is visible and startup fails fast.
*/
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string

	sets := []struct {
		name   string
		ensure func(context.Context, *mongo.Database) error
	}{
		{"ngos", ensureNGOs},
		{"users", ensureUsers},
		{"projects", ensureProjects},
		{"campaigns", ensureCampaigns},
	}
	for _, s := range sets {
		if err := s.ensure(ctx, db); err != nil {
			problems = append(problems, s.name+": "+err.Error())
		}
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

/* -------------------------------------------------------------------------- */
/* Reconcile a set of desired indexes for one collection                      */
/* -------------------------------------------------------------------------- */

type existingIndex struct {
	Name   string `bson:"name"`
	Key    bson.D `bson:"key"`
	Unique *bool  `bson:"unique,omitempty"`
}

func keySig(keys bson.D) string {
	parts := make([]string, 0, len(keys))
	for _, kv := range keys {
		parts = append(parts, fmt.Sprintf("%s:%v", kv.Key, kv.Value))
	}
	return strings.Join(parts, ", ")
}

func boolOf(b *bool) bool { return b != nil && *b }

// IsDuplicateKey reports an E11000 error from a write or command.
func IsDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	var we mongo.WriteException
	if errors.As(err, &we) {
		for _, e := range we.WriteErrors {
			if e.Code == 11000 {
				return true
			}
		}
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && ce.Code == 11000 {
		return true
	}
	s := err.Error()
	return strings.Contains(s, "E11000") || strings.Contains(strings.ToLower(s), "duplicate key")
}

// Violated reports whether a duplicate-key write error names the given index.
func Violated(err error, index string) bool {
	return wafflemongo.IsDup(err) && strings.Contains(err.Error(), index)
}

func listIndexes(ctx context.Context, coll *mongo.Collection) map[string]existingIndex {
	existing := map[string]existingIndex{}
	cur, err := coll.Indexes().List(ctx)
	if err != nil {
		return existing
	}
	defer cur.Close(ctx)
	for cur.Next(ctx) {
		var idx existingIndex
		if err := cur.Decode(&idx); err != nil {
			zap.L().Warn("failed to decode existing index",
				zap.String("collection", coll.Name()),
				zap.Error(err))
			continue
		}
		existing[keySig(idx.Key)] = idx
	}
	return existing
}

// ensureIndex makes one desired index exist with the desired name and
// uniqueness, dropping and recreating a same-key index that differs.
func ensureIndex(ctx context.Context, coll *mongo.Collection, m mongo.IndexModel, existing map[string]existingIndex) error {
	name := ""
	if m.Options != nil && m.Options.Name != nil {
		name = *m.Options.Name
	}
	var unique *bool
	if m.Options != nil {
		unique = m.Options.Unique
	}
	sig := keySig(m.Keys.(bson.D))
	start := time.Now()

	if ex, ok := existing[sig]; ok {
		if boolOf(unique) == boolOf(ex.Unique) && (name == "" || ex.Name == name) {
			zap.L().Info("reusing existing index",
				zap.String("collection", coll.Name()),
				zap.String("name", ex.Name),
				zap.String("keys", sig))
			return nil
		}
		if _, err := coll.Indexes().DropOne(ctx, ex.Name); err != nil {
			return fmt.Errorf("%s(%s): drop failed: %w", coll.Name(), name, err)
		}
	}

	created, err := coll.Indexes().CreateOne(ctx, m)
	if err != nil {
		if IsDuplicateKey(err) && boolOf(unique) {
			return fmt.Errorf("%s(%s): cannot create unique index (duplicates present)", coll.Name(), name)
		}
		zap.L().Warn("index ensure failed",
			zap.String("collection", coll.Name()),
			zap.String("name", name),
			zap.String("keys", sig),
			zap.Error(err))
		return fmt.Errorf("%s(%s): %w", coll.Name(), name, err)
	}

	zap.L().Info("index ensured",
		zap.String("collection", coll.Name()),
		zap.String("name", created),
		zap.String("keys", sig),
		zap.Bool("unique", boolOf(unique)),
		zap.String("took", time.Since(start).String()))
	return nil
}

func ensureIndexSet(ctx context.Context, coll *mongo.Collection, models []mongo.IndexModel) error {
	var errs []string
	existing := listIndexes(ctx, coll)
	for _, m := range models {
		if err := ensureIndex(ctx, coll, m, existing); err != nil {
			errs = append(errs, err.Error())
		}
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

/* -------------------------------------------------------------------------- */
/* Collection-specific index sets                                             */
/* -------------------------------------------------------------------------- */

func ensureNGOs(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("ngos"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "contact.email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName(NGOEmail),
		},
		{
			Keys:    bson.D{{Key: "registration_number", Value: 1}},
			Options: options.Index().SetUnique(true).SetName(NGORegistrationNumber),
		},
		{
			Keys:    bson.D{{Key: "name_ci", Value: 1}},
			Options: options.Index().SetUnique(true).SetName(NGOName),
		},
	})
}

func ensureUsers(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("users"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName(UserEmail),
		},
		{
			Keys:    bson.D{{Key: "role", Value: 1}, {Key: "volunteer_data.skills", Value: 1}},
			Options: options.Index().SetName("idx_users_role_skills"),
		},
	})
}

func ensureProjects(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("projects"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "ngo_id", Value: 1}, {Key: "start_date", Value: -1}},
			Options: options.Index().SetName("idx_projects_ngo_start"),
		},
	})
}

func ensureCampaigns(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("campaigns"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "ngo_id", Value: 1}, {Key: "start_date", Value: -1}},
			Options: options.Index().SetName("idx_campaigns_ngo_start"),
		},
		{
			Keys:    bson.D{{Key: "projects", Value: 1}},
			Options: options.Index().SetName("idx_campaigns_projects"),
		},
	})
}
