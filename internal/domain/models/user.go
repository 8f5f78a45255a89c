// internal/domain/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Individual roles.
const (
	RoleNormal    = "normal"
	RoleVolunteer = "volunteer"
)

// User is an individual: a donor/normal account or a volunteer.
//
// NOTE:
//   - Location is mandatory only for volunteers.
//   - Email is unique across users (not across NGOs).
type User struct {
	ID         primitive.ObjectID `bson:"_id" json:"id"`
	FirstName  string             `bson:"fname" json:"fname"`
	MiddleName string             `bson:"mname,omitempty" json:"mname,omitempty"`
	LastName   string             `bson:"lname" json:"lname"`
	Email      string             `bson:"email" json:"email"`
	Phone      string             `bson:"phone" json:"phone"`
	Role       string             `bson:"role" json:"role"` // normal | volunteer

	Avatar *MediaAsset  `bson:"avatar,omitempty" json:"avatar,omitempty"`
	Images []MediaAsset `bson:"images" json:"images"`

	Location      Location       `bson:"location" json:"location"`
	VolunteerData *VolunteerData `bson:"volunteer_data,omitempty" json:"volunteerData,omitempty"`

	PasswordHash string `bson:"password" json:"-"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

type VolunteerData struct {
	Skills              []string             `bson:"skills" json:"skills"`
	Availability        []Availability       `bson:"availability" json:"availability"`
	ProjectsVolunteered []primitive.ObjectID `bson:"projects_volunteered" json:"projectsVolunteered"`
}

type Availability struct {
	StartDate time.Time `bson:"start_date" json:"startDate"`
	EndDate   time.Time `bson:"end_date" json:"endDate"`
}

// Stripped returns a copy without the credential hash.
func (u User) Stripped() User {
	u.PasswordHash = ""
	return u
}
