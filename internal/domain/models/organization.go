// internal/domain/models/organization.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NGO is a registered charitable organization. It is both the organization
// principal and the owner of projects and campaigns.
type NGO struct {
	ID                 primitive.ObjectID `bson:"_id" json:"id"`
	Name               string             `bson:"name" json:"name"`
	NameCI             string             `bson:"name_ci" json:"-"` // ← always stored
	Description        string             `bson:"description" json:"description"`
	Contact            NGOContact         `bson:"contact" json:"contact"`
	Address            Address            `bson:"address" json:"address"`
	Website            string             `bson:"website,omitempty" json:"website,omitempty"`
	RegistrationNumber string             `bson:"registration_number" json:"registrationNumber"`

	Avatar     *MediaAsset  `bson:"avatar,omitempty" json:"avatar,omitempty"`
	CoverImage *MediaAsset  `bson:"cover_image,omitempty" json:"coverImage,omitempty"`
	Images     []MediaAsset `bson:"images" json:"images"`

	ProjectIDs  []primitive.ObjectID `bson:"projects" json:"projects"`
	CampaignIDs []primitive.ObjectID `bson:"campaigns" json:"campaigns"`

	// PasswordHash never leaves the service.
	PasswordHash string `bson:"password" json:"-"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

// NGOContact holds the reachable identity of an NGO. Email is unique.
type NGOContact struct {
	Phone       string      `bson:"phone,omitempty" json:"phone,omitempty"`
	Email       string      `bson:"email" json:"email"`
	SocialMedia SocialMedia `bson:"social_media" json:"socialMedia"`
}

type SocialMedia struct {
	Facebook  string `bson:"facebook,omitempty" json:"facebook,omitempty"`
	Twitter   string `bson:"twitter,omitempty" json:"twitter,omitempty"`
	LinkedIn  string `bson:"linkedin,omitempty" json:"linkedin,omitempty"`
	Instagram string `bson:"instagram,omitempty" json:"instagram,omitempty"`
}

type Address struct {
	Line1      string `bson:"address_line1" json:"addressLine1"`
	Line2      string `bson:"address_line2,omitempty" json:"addressLine2,omitempty"`
	City       string `bson:"city" json:"city"`
	State      string `bson:"state" json:"state"`
	Country    string `bson:"country" json:"country"`
	PostalCode string `bson:"postal_code" json:"postalCode"`
}

// Stripped returns a copy without the credential hash.
func (n NGO) Stripped() NGO {
	n.PasswordHash = ""
	return n
}
