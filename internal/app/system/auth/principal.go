package auth

import (
	"github.com/sahilshivekar/team23-ngo-backend/internal/app/system/credentials"
	"github.com/sahilshivekar/team23-ngo-backend/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Principal is the authenticated identity of a request. It is exactly one of
// OrganizationPrincipal or IndividualPrincipal, and never carries a
// credential hash.
type Principal interface {
	ID() primitive.ObjectID
	Discriminant() credentials.Discriminant
	sealed()
}

// OrganizationPrincipal is an authenticated NGO.
type OrganizationPrincipal struct {
	NGO models.NGO
}

func (p OrganizationPrincipal) ID() primitive.ObjectID { return p.NGO.ID }

func (p OrganizationPrincipal) Discriminant() credentials.Discriminant {
	return credentials.Organization
}

func (OrganizationPrincipal) sealed() {}

// IndividualPrincipal is an authenticated user.
type IndividualPrincipal struct {
	User models.User
}

func (p IndividualPrincipal) ID() primitive.ObjectID { return p.User.ID }

func (p IndividualPrincipal) Discriminant() credentials.Discriminant {
	return credentials.Individual
}

func (IndividualPrincipal) sealed() {}

// NewOrganization wraps ngo, stripping its credential hash.
func NewOrganization(ngo models.NGO) OrganizationPrincipal {
	return OrganizationPrincipal{NGO: ngo.Stripped()}
}

// NewIndividual wraps u, stripping its credential hash.
func NewIndividual(u models.User) IndividualPrincipal {
	return IndividualPrincipal{User: u.Stripped()}
}
