package mutations

import (
	"context"
	"errors"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation"
	userstore "github.com/sahilshivekar/team23-ngo-backend/internal/app/store/users"
	"github.com/sahilshivekar/team23-ngo-backend/internal/app/system/apperr"
	"github.com/sahilshivekar/team23-ngo-backend/internal/app/system/auth"
	"github.com/sahilshivekar/team23-ngo-backend/internal/app/system/credentials"
	"github.com/sahilshivekar/team23-ngo-backend/internal/app/system/media"
	"github.com/sahilshivekar/team23-ngo-backend/internal/app/system/workflow"
	"github.com/sahilshivekar/team23-ngo-backend/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var userRequired = []string{"fname", "lname", "email", "password", "confirmPassword", "phone"}

var userFormats = workflow.RuleSet{
	workflow.Field("email", emailFormat),
	workflow.Field("phone", phoneFormat),
	workflow.Field("password", passwordLength, passwordBytes),
	workflow.Field("role", validation.In(models.RoleVolunteer, models.RoleNormal).Error("Role must be volunteer or normal")),
}

var userPaths = []struct{ field, path string }{
	{"fname", "fname"},
	{"mname", "mname"},
	{"lname", "lname"},
	{"phone", "phone"},
	{"city", "location.city"},
	{"state", "location.state"},
	{"country", "location.country"},
}

var volunteerLocation = []string{"city", "state", "country"}

const msgUserConflict = "User with the provided email already exists"

func userPersistErr(err error) error {
	if errors.Is(err, userstore.ErrDuplicateEmail) {
		return apperr.Conflict("email", msgUserConflict)
	}
	return err
}

func (s *Service) loadUser(ctx context.Context, id primitive.ObjectID) (models.User, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return models.User{}, err
	}
	return u.Stripped(), nil
}

// volunteerData decodes skills and availability. Both are optional.
func volunteerData(f workflow.Fields, current *models.VolunteerData) (*models.VolunteerData, error) {
	vd := &models.VolunteerData{
		Skills:              []string{},
		Availability:        []models.Availability{},
		ProjectsVolunteered: []primitive.ObjectID{},
	}
	if current != nil {
		*vd = *current
	}

	skills, ok, err := jsonList[string](f, "skills")
	if err != nil {
		return nil, err
	}
	if ok {
		if vd.Skills, err = volunteerSkills(skills); err != nil {
			return nil, err
		}
	}

	slots, ok, err := jsonList[availabilityInput](f, "availability")
	if err != nil {
		return nil, err
	}
	if ok {
		if vd.Availability, err = availability(slots); err != nil {
			return nil, err
		}
	}
	return vd, nil
}

type userDraft struct {
	user     models.User
	password string
}

// RegisterUser creates an individual principal.
func (s *Service) RegisterUser(ctx context.Context, in workflow.Input) (models.User, error) {
	return workflow.Run(ctx, s.engine, workflow.Definition[*userDraft, models.User]{
		Name:  "user registration",
		Rules: workflow.Concat(workflow.Mandatories(userRequired...), userFormats),
		Attachments: workflow.AttachmentLimits{
			SlotAvatar: 1,
			"images":   models.MaxMediaPerResource,
		},
		Decode: func(_ context.Context, in workflow.Input) (*userDraft, error) {
			f := in.Fields
			if err := confirmPassword(f); err != nil {
				return nil, err
			}
			u := models.User{
				FirstName:  f.Get("fname"),
				MiddleName: f.Get("mname"),
				LastName:   f.Get("lname"),
				Email:      normalizeEmail(f.Get("email")),
				Phone:      f.Get("phone"),
				Role:       models.RoleNormal,
				Location: models.Location{
					City:    f.Get("city"),
					State:   f.Get("state"),
					Country: f.Get("country"),
				},
			}
			if f.Has("role") {
				u.Role = f.Get("role")
			}
			if u.Role == models.RoleVolunteer {
				for _, field := range volunteerLocation {
					if !f.Has(field) {
						return nil, apperr.ValidationFailed(field, fmt.Sprintf("%s field is mandatory", field))
					}
				}
				vd, err := volunteerData(f, nil)
				if err != nil {
					return nil, err
				}
				u.VolunteerData = vd
			}
			return &userDraft{user: u, password: f.Get("password")}, nil
		},
		Precondition: func(ctx context.Context, d *userDraft) error {
			taken, err := s.users.EmailTaken(ctx, d.user.Email, primitive.NilObjectID)
			if err != nil {
				return err
			}
			if taken {
				return apperr.Conflict("email", msgUserConflict)
			}
			hash, err := credentials.HashPassword(d.password)
			if err != nil {
				return err
			}
			d.user.PasswordHash = hash
			return nil
		},
		Persist: func(ctx context.Context, d *userDraft, m workflow.Media) (primitive.ObjectID, error) {
			u := d.user
			u.Avatar = m.First(SlotAvatar)
			u.Images = m.List("images")
			created, err := s.users.Create(ctx, u)
			if err != nil {
				return primitive.NilObjectID, userPersistErr(err)
			}
			return created.ID, nil
		},
		Load: s.loadUser,
	}, in)
}

type userPatch struct {
	existing   models.User
	set        bson.M
	emailCheck string
}

// UpdateUser applies the provided fields to the caller's profile and appends
// any new images.
func (s *Service) UpdateUser(ctx context.Context, who auth.IndividualPrincipal, in workflow.Input) (models.User, error) {
	return workflow.Run(ctx, s.engine, workflow.Definition[*userPatch, models.User]{
		Name:        "user update",
		Rules:       userFormats,
		Attachments: workflow.AttachmentLimits{"images": models.MaxMediaPerResource},
		Decode: func(ctx context.Context, in workflow.Input) (*userPatch, error) {
			existing, err := s.users.GetByID(ctx, who.ID())
			if err != nil {
				return nil, loadErr(err, "User not found")
			}
			if err := mediaCap(len(existing.Images), in.Files, "images"); err != nil {
				return nil, err
			}

			f := in.Fields
			p := &userPatch{existing: existing, set: bson.M{}}
			for _, fp := range userPaths {
				if f.Has(fp.field) {
					p.set[fp.path] = f.Get(fp.field)
				}
			}
			if f.Has("email") {
				email := normalizeEmail(f.Get("email"))
				p.set["email"] = email
				if email != existing.Email {
					p.emailCheck = email
				}
			}
			if existing.Role == models.RoleVolunteer && (f.Has("skills") || f.Has("availability")) {
				vd, err := volunteerData(f, existing.VolunteerData)
				if err != nil {
					return nil, err
				}
				p.set["volunteer_data"] = vd
			}
			return p, nil
		},
		Precondition: func(ctx context.Context, p *userPatch) error {
			if p.emailCheck == "" {
				return nil
			}
			taken, err := s.users.EmailTaken(ctx, p.emailCheck, p.existing.ID)
			if err != nil {
				return err
			}
			if taken {
				return apperr.Conflict("email", msgUserConflict)
			}
			return nil
		},
		Persist: func(ctx context.Context, p *userPatch, m workflow.Media) (primitive.ObjectID, error) {
			if added := m.List("images"); len(added) > 0 {
				merged := make([]models.MediaAsset, 0, len(p.existing.Images)+len(added))
				merged = append(merged, p.existing.Images...)
				p.set["images"] = append(merged, added...)
			}
			if err := s.users.Update(ctx, p.existing.ID, p.set); err != nil {
				return primitive.NilObjectID, userPersistErr(err)
			}
			return p.existing.ID, nil
		},
		Load: s.loadUser,
	}, in)
}

// ReplaceUserAsset swaps the individual's avatar.
func (s *Service) ReplaceUserAsset(ctx context.Context, who auth.IndividualPrincipal, slot string, files []media.LocalFile) (models.User, error) {
	if slot != SlotAvatar {
		s.media.Discard(files)
		return models.User{}, apperr.ValidationFailed(slot, "Unexpected file field "+slot)
	}
	id := who.ID()
	return replaceSlot(ctx, s, slot, files, slotTarget[models.User]{
		name: "user",
		load: func(ctx context.Context) (models.User, error) {
			u, err := s.loadUser(ctx, id)
			return u, loadErr(err, "User not found")
		},
		current: func(u models.User) *models.MediaAsset { return u.Avatar },
		commit:  func(ctx context.Context, a models.MediaAsset) error { return s.users.SetAvatar(ctx, id, a) },
	})
}
