// internal/app/system/validators/validators.go
package validators

import (
	"context"
	"errors"
	"strings"

	"github.com/sahilshivekar/team23-ngo-backend/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// EnsureAll creates the collections and attaches their JSON-Schema
// validators. Servers without collMod validators are logged and skipped.
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string

	ensure := func(coll string, schema bson.M) {
		if err := ensureCollection(ctx, db, coll); err != nil {
			problems = append(problems, coll+": "+err.Error())
			return
		}
		if schema == nil {
			return
		}
		if err := setValidator(ctx, db, coll, schema); err != nil {
			if unsupported(err) {
				zap.L().Info("validator skipped (unsupported)", zap.String("collection", coll))
				return
			}
			problems = append(problems, coll+": "+err.Error())
		}
	}

	ensure("ngos", ngosSchema())
	ensure("users", usersSchema())
	ensure("projects", projectsSchema())
	ensure("campaigns", campaignsSchema())

	ensure("audit_events", nil)

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

// ensureCollection creates name unless it is already listed. A create that
// races another instance and reports NamespaceExists counts as present.
func ensureCollection(ctx context.Context, db *mongo.Database, name string) error {
	names, err := db.ListCollectionNames(ctx, bson.M{"name": name})
	if err == nil && len(names) > 0 {
		return nil
	}
	if err := db.CreateCollection(ctx, name); err != nil {
		if commandErr(err, []int32{48}, "already exists", "namespace exists") {
			return nil
		}
		zap.L().Warn("createCollection failed", zap.String("collection", name), zap.Error(err))
		return err
	}
	zap.L().Info("created collection", zap.String("collection", name))
	return nil
}

// setValidator attaches a validator document. Moderate level leaves
// documents that predate the schema untouched until they are next written.
func setValidator(ctx context.Context, db *mongo.Database, name string, schema bson.M) error {
	cmd := bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: schema},
		{Key: "validationLevel", Value: "moderate"},
		{Key: "validationAction", Value: "error"},
	}
	if err := db.RunCommand(ctx, cmd).Err(); err != nil {
		return err
	}
	zap.L().Debug("validator ensured", zap.String("collection", name))
	return nil
}

// unsupported reports servers without collMod validators (code 59 no such
// command, 115 not implemented).
func unsupported(err error) bool {
	return commandErr(err, []int32{59, 115}, "no such command", "not implemented", "not supported")
}

// commandErr matches a command error by code, or by any phrase in its text.
func commandErr(err error, codes []int32, phrases ...string) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) {
		for _, c := range codes {
			if ce.Code == c {
				return true
			}
		}
	}
	msg := strings.ToLower(err.Error())
	for _, p := range phrases {
		if strings.Contains(msg, p) {
			return true
		}
	}
	return false
}

/* ------------------------- JSON-Schema docs ---------------------- */

var nonBlank = bson.M{"bsonType": "string", "minLength": 1, "pattern": ".*\\S.*"}

func mediaList() bson.M {
	return bson.M{
		"bsonType": "array",
		"maxItems": models.MaxMediaPerResource,
		"items":    mediaAsset(),
	}
}

func mediaAsset() bson.M {
	return bson.M{
		"bsonType": "object",
		"required": bson.A{"remote_id", "secure_url"},
		"properties": bson.M{
			"remote_id":  nonBlank,
			"secure_url": nonBlank,
		},
	}
}

func ngosSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"name", "name_ci", "registration_number", "contact", "password"},
			"properties": bson.M{
				"name":                nonBlank,
				"name_ci":             nonBlank,
				"registration_number": nonBlank,
				"password":            nonBlank,
				"contact": bson.M{
					"bsonType": "object",
					"required": bson.A{"email"},
					"properties": bson.M{
						"email": nonBlank,
					},
				},
				"avatar":      mediaAsset(),
				"cover_image": mediaAsset(),
				"images":      mediaList(),
			},
		},
	}
}

func usersSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"fname", "lname", "email", "role", "password"},
			"properties": bson.M{
				"fname":    nonBlank,
				"lname":    nonBlank,
				"email":    nonBlank,
				"password": nonBlank,
				"role":     bson.M{"enum": bson.A{models.RoleNormal, models.RoleVolunteer}},
				"avatar":   mediaAsset(),
				"images":   mediaList(),
			},
		},
	}
}

func projectsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"title", "ngo_id", "start_date", "end_date"},
			"properties": bson.M{
				"title":      nonBlank,
				"ngo_id":     bson.M{"bsonType": "objectId"},
				"start_date": bson.M{"bsonType": "date"},
				"end_date":   bson.M{"bsonType": "date"},
				"images":     mediaList(),
				"resources_needed": bson.M{
					"bsonType": "array",
					"items": bson.M{
						"bsonType": "object",
						"required": bson.A{"resource_type"},
						"properties": bson.M{
							"resource_type":      nonBlank,
							"quantity_needed":    bson.M{"bsonType": "number", "minimum": 0},
							"quantity_fulfilled": bson.M{"bsonType": "number", "minimum": 0},
						},
					},
				},
			},
		},
	}
}

func campaignsSchema() bson.M {
	currencies := bson.A{}
	for _, c := range models.Currencies {
		currencies = append(currencies, c)
	}
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"title", "ngo_id", "target_amount", "raised_amount", "currency", "start_date", "end_date", "projects"},
			"properties": bson.M{
				"title":         nonBlank,
				"ngo_id":        bson.M{"bsonType": "objectId"},
				"target_amount": bson.M{"bsonType": "number", "minimum": 0},
				"raised_amount": bson.M{"bsonType": "number", "minimum": 0},
				"currency":      bson.M{"enum": currencies},
				"start_date":    bson.M{"bsonType": "date"},
				"end_date":      bson.M{"bsonType": "date"},
				"projects": bson.M{
					"bsonType": "array",
					"minItems": 1,
					"items":    bson.M{"bsonType": "objectId"},
				},
				"images": mediaList(),
			},
		},
	}
}
