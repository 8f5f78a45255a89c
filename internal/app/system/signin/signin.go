// Package signin exchanges a login identifier and password for an access
// token and the credential-stripped principal.
package signin

import (
	"context"
	"errors"

	"github.com/sahilshivekar/team23-ngo-backend/internal/app/system/apperr"
	"github.com/sahilshivekar/team23-ngo-backend/internal/app/system/auth"
	"github.com/sahilshivekar/team23-ngo-backend/internal/app/system/credentials"
	"github.com/sahilshivekar/team23-ngo-backend/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// OrganizationFinder looks an NGO up by registration number or email.
type OrganizationFinder interface {
	FindForLogin(ctx context.Context, registrationNumber, email string) (models.NGO, error)
}

// IndividualFinder looks a user up by email.
type IndividualFinder interface {
	GetByEmail(ctx context.Context, email string) (models.User, error)
}

// TokenIssuer mints access tokens. *credentials.Issuer satisfies it.
type TokenIssuer interface {
	Issue(subjectID string, d credentials.Discriminant) (credentials.Token, error)
}

// Result is a successful login. On a password mismatch only SubjectID is
// set, naming the account the attempt was made against.
type Result struct {
	Token     credentials.Token
	Principal auth.Principal
	SubjectID primitive.ObjectID
}

// Service verifies passwords and issues tokens.
type Service struct {
	orgs        OrganizationFinder
	individuals IndividualFinder
	tokens      TokenIssuer
	log         *zap.Logger
}

func New(orgs OrganizationFinder, individuals IndividualFinder, tokens TokenIssuer, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{orgs: orgs, individuals: individuals, tokens: tokens, log: logger}
}

// Failed login lookups and mismatches are reported with these messages.
const (
	msgOrgNotFound        = "NGO with this credentials doesn't exist"
	msgIndividualNotFound = "User with this credentials doesn't exist"
	msgWrongPassword      = "Password is wrong"
)

// LoginOrganization authenticates an NGO by registration number or email.
func (s *Service) LoginOrganization(ctx context.Context, registrationNumber, email, password string) (Result, error) {
	if registrationNumber == "" && email == "" {
		return Result{}, apperr.ValidationFailed("registrationNumber", "registrationNumber or email is required")
	}
	if password == "" {
		return Result{}, apperr.ValidationFailed("password", "Password is required")
	}

	ngo, err := s.orgs.FindForLogin(ctx, registrationNumber, email)
	if errors.Is(err, mongo.ErrNoDocuments) {
		credentials.VerifyAbsent(password)
		return Result{}, apperr.NotFound(msgOrgNotFound)
	}
	if err != nil {
		s.log.Error("organization lookup failed", zap.Error(err))
		return Result{}, apperr.Internal("organization lookup failed", err)
	}
	if !credentials.VerifyPassword(password, ngo.PasswordHash) {
		return Result{SubjectID: ngo.ID}, apperr.AuthenticationFailed(msgWrongPassword)
	}

	p := auth.NewOrganization(ngo)
	return s.issue(p)
}

// LoginIndividual authenticates a user by email.
func (s *Service) LoginIndividual(ctx context.Context, email, password string) (Result, error) {
	if email == "" {
		return Result{}, apperr.ValidationFailed("email", "Email is required")
	}
	if password == "" {
		return Result{}, apperr.ValidationFailed("password", "Password is required")
	}

	u, err := s.individuals.GetByEmail(ctx, email)
	if errors.Is(err, mongo.ErrNoDocuments) {
		credentials.VerifyAbsent(password)
		return Result{}, apperr.NotFound(msgIndividualNotFound)
	}
	if err != nil {
		s.log.Error("individual lookup failed", zap.Error(err))
		return Result{}, apperr.Internal("individual lookup failed", err)
	}
	if !credentials.VerifyPassword(password, u.PasswordHash) {
		return Result{SubjectID: u.ID}, apperr.AuthenticationFailed(msgWrongPassword)
	}

	p := auth.NewIndividual(u)
	return s.issue(p)
}

func (s *Service) issue(p auth.Principal) (Result, error) {
	tok, err := s.tokens.Issue(p.ID().Hex(), p.Discriminant())
	if err != nil {
		return Result{}, apperr.Internal("token issue failed", err)
	}
	return Result{Token: tok, Principal: p, SubjectID: p.ID()}, nil
}
