package mutations

import (
	"context"

	"github.com/dalemusser/waffle/pantry/text"
	ngostore "github.com/sahilshivekar/team23-ngo-backend/internal/app/store/ngos"
	"github.com/sahilshivekar/team23-ngo-backend/internal/app/system/apperr"
	"github.com/sahilshivekar/team23-ngo-backend/internal/app/system/auth"
	"github.com/sahilshivekar/team23-ngo-backend/internal/app/system/credentials"
	"github.com/sahilshivekar/team23-ngo-backend/internal/app/system/media"
	"github.com/sahilshivekar/team23-ngo-backend/internal/app/system/workflow"
	"github.com/sahilshivekar/team23-ngo-backend/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var ngoRequired = []string{
	"name", "description", "email", "phone", "registrationNumber",
	"addressLine1", "city", "state", "country", "postalCode",
	"password", "confirmPassword", "website",
}

var ngoFormats = workflow.RuleSet{
	workflow.Field("email", emailFormat),
	workflow.Field("phone", phoneFormat),
	workflow.Field("description", descriptionLength),
	workflow.Field("website", websiteFormat),
	workflow.Field("password", passwordLength, passwordBytes),
}

// ngoPaths maps plain update fields to stored paths. Description and email
// are handled separately.
var ngoPaths = []struct{ field, path string }{
	{"name", "name"},
	{"phone", "contact.phone"},
	{"addressLine1", "address.address_line1"},
	{"addressLine2", "address.address_line2"},
	{"city", "address.city"},
	{"state", "address.state"},
	{"country", "address.country"},
	{"postalCode", "address.postal_code"},
	{"website", "website"},
	{"facebook", "contact.social_media.facebook"},
	{"twitter", "contact.social_media.twitter"},
	{"linkedin", "contact.social_media.linkedin"},
	{"instagram", "contact.social_media.instagram"},
}

var ngoConflicts = map[string]string{
	"email":              "NGO with the provided email already exists",
	"registrationNumber": "NGO with the provided registration number already exists",
	"name":               "NGO with the provided name already exists",
}

func ngoConflict(field string) error {
	return apperr.Conflict(field, ngoConflicts[field])
}

// ngoPersistErr reports a lost uniqueness race as Conflict.
func ngoPersistErr(err error) error {
	if field := ngostore.DuplicateField(err); field != "" {
		return ngoConflict(field)
	}
	return err
}

func (s *Service) loadNGO(ctx context.Context, id primitive.ObjectID) (models.NGO, error) {
	ngo, err := s.ngos.GetByID(ctx, id)
	if err != nil {
		return models.NGO{}, err
	}
	return ngo.Stripped(), nil
}

type ngoDraft struct {
	ngo      models.NGO
	password string
}

// RegisterNGO creates an organization principal.
func (s *Service) RegisterNGO(ctx context.Context, in workflow.Input) (models.NGO, error) {
	return workflow.Run(ctx, s.engine, workflow.Definition[*ngoDraft, models.NGO]{
		Name:  "ngo registration",
		Rules: workflow.Concat(workflow.Mandatories(ngoRequired...), ngoFormats),
		Attachments: workflow.AttachmentLimits{
			SlotAvatar:     1,
			SlotCoverImage: 1,
			"images":       models.MaxMediaPerResource,
		},
		Decode: func(_ context.Context, in workflow.Input) (*ngoDraft, error) {
			f := in.Fields
			if err := confirmPassword(f); err != nil {
				return nil, err
			}
			desc, err := description(f)
			if err != nil {
				return nil, err
			}
			return &ngoDraft{
				password: f.Get("password"),
				ngo: models.NGO{
					Name:        f.Get("name"),
					Description: desc,
					Contact: models.NGOContact{
						Phone: f.Get("phone"),
						Email: normalizeEmail(f.Get("email")),
						SocialMedia: models.SocialMedia{
							Facebook:  f.Get("facebook"),
							Twitter:   f.Get("twitter"),
							LinkedIn:  f.Get("linkedin"),
							Instagram: f.Get("instagram"),
						},
					},
					Address: models.Address{
						Line1:      f.Get("addressLine1"),
						Line2:      f.Get("addressLine2"),
						City:       f.Get("city"),
						State:      f.Get("state"),
						Country:    f.Get("country"),
						PostalCode: f.Get("postalCode"),
					},
					Website:            f.Get("website"),
					RegistrationNumber: f.Get("registrationNumber"),
				},
			}, nil
		},
		Precondition: func(ctx context.Context, d *ngoDraft) error {
			field, err := s.ngos.TakenBy(ctx, ngostore.Identity{
				Email:              d.ngo.Contact.Email,
				RegistrationNumber: d.ngo.RegistrationNumber,
				Name:               d.ngo.Name,
			}, primitive.NilObjectID)
			if err != nil {
				return err
			}
			if field != "" {
				return ngoConflict(field)
			}
			hash, err := credentials.HashPassword(d.password)
			if err != nil {
				return err
			}
			d.ngo.PasswordHash = hash
			return nil
		},
		Persist: func(ctx context.Context, d *ngoDraft, m workflow.Media) (primitive.ObjectID, error) {
			ngo := d.ngo
			ngo.Avatar = m.First(SlotAvatar)
			ngo.CoverImage = m.First(SlotCoverImage)
			ngo.Images = m.List("images")
			created, err := s.ngos.Create(ctx, ngo)
			if err != nil {
				return primitive.NilObjectID, ngoPersistErr(err)
			}
			return created.ID, nil
		},
		Load: s.loadNGO,
	}, in)
}

type ngoPatch struct {
	existing models.NGO
	set      bson.M
	identity ngostore.Identity
}

// UpdateNGO applies the provided fields to the caller's organization and
// appends any new images.
func (s *Service) UpdateNGO(ctx context.Context, owner auth.OrganizationPrincipal, in workflow.Input) (models.NGO, error) {
	return workflow.Run(ctx, s.engine, workflow.Definition[*ngoPatch, models.NGO]{
		Name:        "ngo update",
		Rules:       ngoFormats,
		Attachments: workflow.AttachmentLimits{"images": models.MaxMediaPerResource},
		Decode: func(ctx context.Context, in workflow.Input) (*ngoPatch, error) {
			existing, err := s.ngos.GetByID(ctx, owner.ID())
			if err != nil {
				return nil, loadErr(err, "NGO not found")
			}
			if err := mediaCap(len(existing.Images), in.Files, "images"); err != nil {
				return nil, err
			}

			f := in.Fields
			p := &ngoPatch{existing: existing, set: bson.M{}}
			for _, fp := range ngoPaths {
				if f.Has(fp.field) {
					p.set[fp.path] = f.Get(fp.field)
				}
			}
			if f.Has("name") && text.Fold(f.Get("name")) != existing.NameCI {
				p.identity.Name = f.Get("name")
			}
			if f.Has("email") {
				email := normalizeEmail(f.Get("email"))
				p.set["contact.email"] = email
				if email != existing.Contact.Email {
					p.identity.Email = email
				}
			}
			if f.Has("description") {
				desc, err := description(f)
				if err != nil {
					return nil, err
				}
				p.set["description"] = desc
			}
			return p, nil
		},
		Precondition: func(ctx context.Context, p *ngoPatch) error {
			field, err := s.ngos.TakenBy(ctx, p.identity, p.existing.ID)
			if err != nil {
				return err
			}
			if field != "" {
				return ngoConflict(field)
			}
			return nil
		},
		Persist: func(ctx context.Context, p *ngoPatch, m workflow.Media) (primitive.ObjectID, error) {
			if added := m.List("images"); len(added) > 0 {
				merged := make([]models.MediaAsset, 0, len(p.existing.Images)+len(added))
				merged = append(merged, p.existing.Images...)
				p.set["images"] = append(merged, added...)
			}
			if err := s.ngos.Update(ctx, p.existing.ID, p.set); err != nil {
				return primitive.NilObjectID, ngoPersistErr(err)
			}
			return p.existing.ID, nil
		},
		Load: s.loadNGO,
	}, in)
}

// ReplaceNGOAsset swaps the organization's avatar or cover image.
func (s *Service) ReplaceNGOAsset(ctx context.Context, owner auth.OrganizationPrincipal, slot string, files []media.LocalFile) (models.NGO, error) {
	id := owner.ID()
	t := slotTarget[models.NGO]{
		name: "ngo",
		load: func(ctx context.Context) (models.NGO, error) {
			ngo, err := s.loadNGO(ctx, id)
			return ngo, loadErr(err, "NGO not found")
		},
	}
	switch slot {
	case SlotAvatar:
		t.current = func(n models.NGO) *models.MediaAsset { return n.Avatar }
		t.commit = func(ctx context.Context, a models.MediaAsset) error { return s.ngos.SetAvatar(ctx, id, a) }
	case SlotCoverImage:
		t.current = func(n models.NGO) *models.MediaAsset { return n.CoverImage }
		t.commit = func(ctx context.Context, a models.MediaAsset) error { return s.ngos.SetCoverImage(ctx, id, a) }
	default:
		s.media.Discard(files)
		return models.NGO{}, apperr.ValidationFailed(slot, "Unexpected file field "+slot)
	}
	return replaceSlot(ctx, s, slot, files, t)
}
