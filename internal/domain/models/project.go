package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Resource need statuses.
const (
	NeedFulfilled    = "fulfilled"
	NeedNotFulfilled = "not fulfilled"
)

// Volunteer task statuses.
const (
	TaskPending    = "pending"
	TaskInProgress = "in progress"
	TaskCompleted  = "completed"
)

// Project is an NGO-run initiative. NGOID is an identifier-only reference.
type Project struct {
	ID          primitive.ObjectID `bson:"_id" json:"id"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description" json:"description"`
	NGOID       primitive.ObjectID `bson:"ngo_id" json:"ngoId"`
	StartDate   time.Time          `bson:"start_date" json:"startDate"`
	EndDate     time.Time          `bson:"end_date" json:"endDate"`
	Location    Location           `bson:"location" json:"location"`

	VolunteersAssigned []VolunteerAssignment `bson:"volunteers_assigned" json:"volunteersAssigned"`
	ResourcesNeeded    []ResourceNeed        `bson:"resources_needed" json:"resourcesNeeded"`
	SkillsNeeded       []string              `bson:"skills_needed" json:"skillsNeeded"`
	Images             []MediaAsset          `bson:"images" json:"images"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

// ResourceNeed is one entry of a project's requirements list.
type ResourceNeed struct {
	ResourceType      string  `bson:"resource_type" json:"resourceType"`
	QuantityNeeded    float64 `bson:"quantity_needed" json:"quantityNeeded"`
	QuantityFulfilled float64 `bson:"quantity_fulfilled" json:"quantityFulfilled"`
	Status            string  `bson:"status" json:"status"`
}

type VolunteerAssignment struct {
	VolunteerID  primitive.ObjectID `bson:"volunteer_id" json:"volunteerId"`
	AssignedDate time.Time          `bson:"assigned_date" json:"assignedDate"`
	Tasks        []VolunteerTask    `bson:"tasks" json:"tasks"`
}

type VolunteerTask struct {
	Description  string    `bson:"description" json:"description"`
	AssignedTime time.Time `bson:"assigned_time" json:"assignedTime"`
	DueTime      time.Time `bson:"due_time" json:"dueTime"`
	Status       string    `bson:"status" json:"status"`
}
