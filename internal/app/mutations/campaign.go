package mutations

import (
	"context"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/sahilshivekar/team23-ngo-backend/internal/app/system/apperr"
	"github.com/sahilshivekar/team23-ngo-backend/internal/app/system/auth"
	"github.com/sahilshivekar/team23-ngo-backend/internal/app/system/workflow"
	"github.com/sahilshivekar/team23-ngo-backend/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

var campaignRequired = []string{"title", "description", "targetAmount", "startDate", "endDate", "projects"}

var campaignFormats = workflow.RuleSet{
	workflow.Field("description", descriptionLength),
	workflow.Field("currency", validation.In(currencies()...).Error("Unsupported currency")),
}

func currencies() []interface{} {
	out := make([]interface{}, len(models.Currencies))
	for i, c := range models.Currencies {
		out[i] = c
	}
	return out
}

const msgTargetAmount = "Target amount should be a non-negative number"

// campaignProjects parses the projects list, which must name at least one
// project.
func campaignProjects(f workflow.Fields) ([]primitive.ObjectID, error) {
	raw, _, err := jsonList[string](f, "projects")
	if err != nil {
		return nil, err
	}
	ids, err := objectIDs("projects", raw)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, apperr.ValidationFailed("projects", "At least one project is required")
	}
	return ids, nil
}

// ownsProjects requires every id to name a project owned by ngoID.
func (s *Service) ownsProjects(ctx context.Context, ngoID primitive.ObjectID, ids []primitive.ObjectID) error {
	n, err := s.projects.CountOwned(ctx, ngoID, ids)
	if err != nil {
		return err
	}
	if n != int64(len(ids)) {
		return apperr.ValidationFailed("projects", "Every project must exist and belong to your NGO")
	}
	return nil
}

// CreateCampaign adds a campaign owned by the caller. RaisedAmount starts at 0.
func (s *Service) CreateCampaign(ctx context.Context, owner auth.OrganizationPrincipal, in workflow.Input) (models.Campaign, error) {
	c, err := workflow.Run(ctx, s.engine, workflow.Definition[models.Campaign, models.Campaign]{
		Name:        "campaign creation",
		Rules:       workflow.Concat(workflow.Mandatories(campaignRequired...), campaignFormats),
		Attachments: workflow.AttachmentLimits{"images": models.MaxMediaPerResource},
		Decode: func(_ context.Context, in workflow.Input) (models.Campaign, error) {
			f := in.Fields
			target, err := nonNegative("targetAmount", f.Get("targetAmount"), msgTargetAmount)
			if err != nil {
				return models.Campaign{}, err
			}
			start, end, err := dateRange(f, time.Time{}, time.Time{})
			if err != nil {
				return models.Campaign{}, err
			}
			ids, err := campaignProjects(f)
			if err != nil {
				return models.Campaign{}, err
			}
			desc, err := description(f)
			if err != nil {
				return models.Campaign{}, err
			}
			currency := models.DefaultCurrency
			if f.Has("currency") {
				currency = f.Get("currency")
			}
			return models.Campaign{
				Title:        f.Get("title"),
				Description:  desc,
				TargetAmount: target,
				Currency:     currency,
				StartDate:    start,
				EndDate:      end,
				NGOID:        owner.ID(),
				ProjectIDs:   ids,
			}, nil
		},
		Precondition: func(ctx context.Context, c models.Campaign) error {
			return s.ownsProjects(ctx, c.NGOID, c.ProjectIDs)
		},
		Persist: func(ctx context.Context, c models.Campaign, m workflow.Media) (primitive.ObjectID, error) {
			c.Images = m.List("images")
			created, err := s.campaigns.Create(ctx, c)
			if err != nil {
				return primitive.NilObjectID, err
			}
			return created.ID, nil
		},
		Load: s.campaigns.GetByID,
	}, in)
	if err != nil {
		return models.Campaign{}, err
	}

	if err := s.ngos.AddCampaign(context.WithoutCancel(ctx), owner.ID(), c.ID); err != nil {
		s.log.Warn("failed to record campaign on ngo",
			zap.String("ngo_id", owner.ID().Hex()),
			zap.String("campaign_id", c.ID.Hex()),
			zap.Error(err))
	}
	return c, nil
}

type campaignPatch struct {
	existing models.Campaign
	set      bson.M
	projects []primitive.ObjectID
}

var campaignPaths = []struct{ field, path string }{
	{"title", "title"},
	{"currency", "currency"},
}

// UpdateCampaign changes a campaign the caller owns. RaisedAmount is not
// writable here.
func (s *Service) UpdateCampaign(ctx context.Context, owner auth.OrganizationPrincipal, id primitive.ObjectID, in workflow.Input) (models.Campaign, error) {
	return workflow.Run(ctx, s.engine, workflow.Definition[*campaignPatch, models.Campaign]{
		Name:        "campaign update",
		Rules:       campaignFormats,
		Attachments: workflow.AttachmentLimits{"images": models.MaxMediaPerResource},
		Decode: func(ctx context.Context, in workflow.Input) (*campaignPatch, error) {
			existing, err := s.campaigns.GetByID(ctx, id)
			if err != nil {
				return nil, loadErr(err, "Campaign not found")
			}
			if existing.NGOID != owner.ID() {
				return nil, apperr.Forbidden("You can only modify your own campaigns")
			}
			if err := mediaCap(len(existing.Images), in.Files, "images"); err != nil {
				return nil, err
			}

			f := in.Fields
			p := &campaignPatch{existing: existing, set: bson.M{}}
			for _, fp := range campaignPaths {
				if f.Has(fp.field) {
					p.set[fp.path] = f.Get(fp.field)
				}
			}
			if f.Has("targetAmount") {
				target, err := nonNegative("targetAmount", f.Get("targetAmount"), msgTargetAmount)
				if err != nil {
					return nil, err
				}
				p.set["target_amount"] = target
			}
			if f.Has("startDate") || f.Has("endDate") {
				start, end, err := dateRange(f, existing.StartDate, existing.EndDate)
				if err != nil {
					return nil, err
				}
				p.set["start_date"] = start
				p.set["end_date"] = end
			}
			if f.Has("description") {
				desc, err := description(f)
				if err != nil {
					return nil, err
				}
				p.set["description"] = desc
			}
			if f.Has("projects") {
				ids, err := campaignProjects(f)
				if err != nil {
					return nil, err
				}
				p.projects = ids
				p.set["projects"] = ids
			}
			return p, nil
		},
		Precondition: func(ctx context.Context, p *campaignPatch) error {
			if p.projects == nil {
				return nil
			}
			return s.ownsProjects(ctx, owner.ID(), p.projects)
		},
		Persist: func(ctx context.Context, p *campaignPatch, m workflow.Media) (primitive.ObjectID, error) {
			if err := s.campaigns.Update(ctx, p.existing.ID, p.set, m.List("images")); err != nil {
				return primitive.NilObjectID, err
			}
			return p.existing.ID, nil
		},
		Load: s.campaigns.GetByID,
	}, in)
}
