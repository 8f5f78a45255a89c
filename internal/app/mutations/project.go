package mutations

import (
	"context"
	"time"

	"github.com/sahilshivekar/team23-ngo-backend/internal/app/system/apperr"
	"github.com/sahilshivekar/team23-ngo-backend/internal/app/system/auth"
	"github.com/sahilshivekar/team23-ngo-backend/internal/app/system/workflow"
	"github.com/sahilshivekar/team23-ngo-backend/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

var projectRequired = []string{"title", "description", "startDate", "endDate", "city", "state", "country"}

var projectFormats = workflow.RuleSet{
	workflow.Field("description", descriptionLength),
}

var projectPaths = []struct{ field, path string }{
	{"title", "title"},
	{"city", "location.city"},
	{"state", "location.state"},
	{"country", "location.country"},
}

// projectLists decodes the optional serialized lists.
func projectLists(f workflow.Fields, set bson.M) error {
	resources, ok, err := jsonList[resourceInput](f, "resourcesNeeded")
	if err != nil {
		return err
	}
	if ok {
		needs, err := resourcesNeeded(resources)
		if err != nil {
			return err
		}
		set["resources_needed"] = needs
	}

	skills, ok, err := jsonList[string](f, "skillsNeeded")
	if err != nil {
		return err
	}
	if ok {
		needed, err := skillsNeeded(skills)
		if err != nil {
			return err
		}
		set["skills_needed"] = needed
	}
	return nil
}

// CreateProject adds a project owned by the caller.
func (s *Service) CreateProject(ctx context.Context, owner auth.OrganizationPrincipal, in workflow.Input) (models.Project, error) {
	p, err := workflow.Run(ctx, s.engine, workflow.Definition[models.Project, models.Project]{
		Name:        "project creation",
		Rules:       workflow.Concat(workflow.Mandatories(projectRequired...), projectFormats),
		Attachments: workflow.AttachmentLimits{"images": models.MaxMediaPerResource},
		Decode: func(_ context.Context, in workflow.Input) (models.Project, error) {
			f := in.Fields
			start, end, err := dateRange(f, time.Time{}, time.Time{})
			if err != nil {
				return models.Project{}, err
			}
			desc, err := description(f)
			if err != nil {
				return models.Project{}, err
			}
			lists := bson.M{}
			if err := projectLists(f, lists); err != nil {
				return models.Project{}, err
			}
			p := models.Project{
				Title:       f.Get("title"),
				Description: desc,
				NGOID:       owner.ID(),
				StartDate:   start,
				EndDate:     end,
				Location: models.Location{
					City:    f.Get("city"),
					State:   f.Get("state"),
					Country: f.Get("country"),
				},
			}
			if v, ok := lists["resources_needed"].([]models.ResourceNeed); ok {
				p.ResourcesNeeded = v
			}
			if v, ok := lists["skills_needed"].([]string); ok {
				p.SkillsNeeded = v
			}
			return p, nil
		},
		Persist: func(ctx context.Context, p models.Project, m workflow.Media) (primitive.ObjectID, error) {
			p.Images = m.List("images")
			created, err := s.projects.Create(ctx, p)
			if err != nil {
				return primitive.NilObjectID, err
			}
			return created.ID, nil
		},
		Load: s.projects.GetByID,
	}, in)
	if err != nil {
		return models.Project{}, err
	}

	// Identifier-only back reference; the project itself is authoritative.
	if err := s.ngos.AddProject(context.WithoutCancel(ctx), owner.ID(), p.ID); err != nil {
		s.log.Warn("failed to record project on ngo",
			zap.String("ngo_id", owner.ID().Hex()),
			zap.String("project_id", p.ID.Hex()),
			zap.Error(err))
	}
	return p, nil
}

type projectPatch struct {
	existing models.Project
	set      bson.M
}

// UpdateProject changes a project the caller owns.
func (s *Service) UpdateProject(ctx context.Context, owner auth.OrganizationPrincipal, id primitive.ObjectID, in workflow.Input) (models.Project, error) {
	return workflow.Run(ctx, s.engine, workflow.Definition[*projectPatch, models.Project]{
		Name:        "project update",
		Rules:       projectFormats,
		Attachments: workflow.AttachmentLimits{"images": models.MaxMediaPerResource},
		Decode: func(ctx context.Context, in workflow.Input) (*projectPatch, error) {
			existing, err := s.projects.GetByID(ctx, id)
			if err != nil {
				return nil, loadErr(err, "Project not found")
			}
			if existing.NGOID != owner.ID() {
				return nil, apperr.Forbidden("You can only modify your own projects")
			}
			if err := mediaCap(len(existing.Images), in.Files, "images"); err != nil {
				return nil, err
			}

			f := in.Fields
			p := &projectPatch{existing: existing, set: bson.M{}}
			for _, fp := range projectPaths {
				if f.Has(fp.field) {
					p.set[fp.path] = f.Get(fp.field)
				}
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
			if err := projectLists(f, p.set); err != nil {
				return nil, err
			}
			return p, nil
		},
		Persist: func(ctx context.Context, p *projectPatch, m workflow.Media) (primitive.ObjectID, error) {
			if err := s.projects.Update(ctx, p.existing.ID, p.set, m.List("images")); err != nil {
				return primitive.NilObjectID, err
			}
			return p.existing.ID, nil
		},
		Load: s.projects.GetByID,
	}, in)
}
