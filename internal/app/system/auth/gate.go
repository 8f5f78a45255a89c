// Package auth resolves a bearer credential into a typed principal and
// carries it on the request context.
package auth

import (
	"context"
	"errors"

	"github.com/sahilshivekar/team23-ngo-backend/internal/app/system/apperr"
	"github.com/sahilshivekar/team23-ngo-backend/internal/app/system/credentials"
	"github.com/sahilshivekar/team23-ngo-backend/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// TokenChecker verifies access tokens.
type TokenChecker interface {
	Check(token string) (credentials.Subject, error)
}

// OrganizationLoader loads NGOs by id.
type OrganizationLoader interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (models.NGO, error)
}

// IndividualLoader loads users by id.
type IndividualLoader interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (models.User, error)
}

// Gate authenticates credentials.
type Gate struct {
	tokens      TokenChecker
	orgs        OrganizationLoader
	individuals IndividualLoader
	log         *zap.Logger
}

// NewGate returns a Gate.
func NewGate(tokens TokenChecker, orgs OrganizationLoader, individuals IndividualLoader, logger *zap.Logger) *Gate {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gate{tokens: tokens, orgs: orgs, individuals: individuals, log: logger}
}

// Authenticate verifies credential and loads the principal its discriminant
// names. It never extends the token's lifetime.
func (g *Gate) Authenticate(ctx context.Context, credential string) (Principal, error) {
	if credential == "" {
		return nil, apperr.Unauthorized("Unauthorized access")
	}

	sub, err := g.tokens.Check(credential)
	if err != nil {
		return nil, err
	}
	id, err := primitive.ObjectIDFromHex(sub.ID)
	if err != nil {
		return nil, apperr.InvalidCredential("Invalid access token", err)
	}

	switch sub.Discriminant {
	case credentials.Organization:
		ngo, err := g.orgs.GetByID(ctx, id)
		if err != nil {
			return nil, g.loadErr(err, sub)
		}
		return NewOrganization(ngo), nil
	case credentials.Individual:
		u, err := g.individuals.GetByID(ctx, id)
		if err != nil {
			return nil, g.loadErr(err, sub)
		}
		return NewIndividual(u), nil
	default:
		return nil, apperr.InvalidCredential("Invalid access token", nil)
	}
}

func (g *Gate) loadErr(err error, sub credentials.Subject) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return apperr.InvalidCredential("Invalid access token", err)
	}
	g.log.Error("principal lookup failed",
		zap.String("kind", string(sub.Discriminant)),
		zap.String("subject", sub.ID),
		zap.Error(err))
	return apperr.Internal("Internal server error", err)
}
