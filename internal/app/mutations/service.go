// Package mutations instantiates the mutation workflow for each resource
// kind: organization and individual profiles, projects and campaigns.
package mutations

import (
	"context"
	"fmt"

	ngostore "github.com/sahilshivekar/team23-ngo-backend/internal/app/store/ngos"
	"github.com/sahilshivekar/team23-ngo-backend/internal/app/system/apperr"
	"github.com/sahilshivekar/team23-ngo-backend/internal/app/system/auth"
	"github.com/sahilshivekar/team23-ngo-backend/internal/app/system/media"
	"github.com/sahilshivekar/team23-ngo-backend/internal/app/system/workflow"
	"github.com/sahilshivekar/team23-ngo-backend/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Kind selects the resource a mutation targets.
type Kind string

const (
	KindOrganization Kind = "organization"
	KindIndividual   Kind = "individual"
	KindProject      Kind = "project"
	KindCampaign     Kind = "campaign"
)

// Op is the mutation performed.
type Op string

const (
	OpCreate  Op = "create"
	OpUpdate  Op = "update"
	OpReplace Op = "replace" // single-slot asset: avatar or cover image
)

// Asset slots.
const (
	SlotAvatar     = "avatar"
	SlotCoverImage = "coverImage"
)

// NGOStore is the organization persistence used by mutations.
type NGOStore interface {
	Create(ctx context.Context, ngo models.NGO) (models.NGO, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (models.NGO, error)
	TakenBy(ctx context.Context, id ngostore.Identity, exclude primitive.ObjectID) (string, error)
	Update(ctx context.Context, id primitive.ObjectID, set bson.M) error
	SetAvatar(ctx context.Context, id primitive.ObjectID, asset models.MediaAsset) error
	SetCoverImage(ctx context.Context, id primitive.ObjectID, asset models.MediaAsset) error
	AddProject(ctx context.Context, id, projectID primitive.ObjectID) error
	AddCampaign(ctx context.Context, id, campaignID primitive.ObjectID) error
}

// UserStore is the individual persistence used by mutations.
type UserStore interface {
	Create(ctx context.Context, u models.User) (models.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (models.User, error)
	EmailTaken(ctx context.Context, email string, exclude primitive.ObjectID) (bool, error)
	Update(ctx context.Context, id primitive.ObjectID, set bson.M) error
	SetAvatar(ctx context.Context, id primitive.ObjectID, asset models.MediaAsset) error
}

// ProjectStore is the project persistence used by mutations.
type ProjectStore interface {
	Create(ctx context.Context, p models.Project) (models.Project, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (models.Project, error)
	CountOwned(ctx context.Context, ngoID primitive.ObjectID, ids []primitive.ObjectID) (int64, error)
	Update(ctx context.Context, id primitive.ObjectID, set bson.M, images []models.MediaAsset) error
}

// CampaignStore is the campaign persistence used by mutations.
type CampaignStore interface {
	Create(ctx context.Context, c models.Campaign) (models.Campaign, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (models.Campaign, error)
	Update(ctx context.Context, id primitive.ObjectID, set bson.M, images []models.MediaAsset) error
}

// MediaCoordinator uploads batches and replaces single-slot assets.
// *media.Coordinator satisfies it.
type MediaCoordinator interface {
	workflow.Uploader
	Replace(ctx context.Context, old *models.MediaAsset, file media.LocalFile, commit func(context.Context, models.MediaAsset) error) (models.MediaAsset, error)
}

// Deps wires a Service.
type Deps struct {
	Media     MediaCoordinator
	NGOs      NGOStore
	Users     UserStore
	Projects  ProjectStore
	Campaigns CampaignStore
	Log       *zap.Logger
}

// Service runs resource mutations.
type Service struct {
	engine    *workflow.Engine
	media     MediaCoordinator
	ngos      NGOStore
	users     UserStore
	projects  ProjectStore
	campaigns CampaignStore
	log       *zap.Logger
}

func New(d Deps) *Service {
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	return &Service{
		engine:    workflow.NewEngine(d.Media, d.Log),
		media:     d.Media,
		ngos:      d.NGOs,
		users:     d.Users,
		projects:  d.Projects,
		campaigns: d.Campaigns,
		log:       d.Log,
	}
}

// Observe installs a workflow stage observer.
func (s *Service) Observe(o workflow.Observer) { s.engine.Observe(o) }

// Request is one mutation. Principal is nil for registrations. TargetID
// names the project or campaign on update. Slot names the asset on replace.
type Request struct {
	Kind      Kind
	Op        Op
	Principal auth.Principal
	TargetID  primitive.ObjectID
	Slot      string
	Fields    map[string]string
	Files     []media.LocalFile
}

// Mutate dispatches req to the workflow for its kind and operation. The
// result is the verified, credential-stripped resource.
func (s *Service) Mutate(ctx context.Context, req Request) (any, error) {
	in := workflow.Input{Fields: workflow.Fields(req.Fields), Files: req.Files}

	switch {
	case req.Kind == KindOrganization && req.Op == OpCreate:
		return s.RegisterNGO(ctx, in)
	case req.Kind == KindIndividual && req.Op == OpCreate:
		return s.RegisterUser(ctx, in)
	}

	switch req.Kind {
	case KindOrganization, KindProject, KindCampaign:
		owner, err := organization(req.Principal)
		if err != nil {
			s.media.Discard(req.Files)
			return nil, err
		}
		switch {
		case req.Kind == KindOrganization && req.Op == OpUpdate:
			return s.UpdateNGO(ctx, owner, in)
		case req.Kind == KindOrganization && req.Op == OpReplace:
			return s.ReplaceNGOAsset(ctx, owner, req.Slot, req.Files)
		case req.Kind == KindProject && req.Op == OpCreate:
			return s.CreateProject(ctx, owner, in)
		case req.Kind == KindProject && req.Op == OpUpdate:
			return s.UpdateProject(ctx, owner, req.TargetID, in)
		case req.Kind == KindCampaign && req.Op == OpCreate:
			return s.CreateCampaign(ctx, owner, in)
		case req.Kind == KindCampaign && req.Op == OpUpdate:
			return s.UpdateCampaign(ctx, owner, req.TargetID, in)
		}
	case KindIndividual:
		who, err := individual(req.Principal)
		if err != nil {
			s.media.Discard(req.Files)
			return nil, err
		}
		switch req.Op {
		case OpUpdate:
			return s.UpdateUser(ctx, who, in)
		case OpReplace:
			return s.ReplaceUserAsset(ctx, who, req.Slot, req.Files)
		}
	}

	s.media.Discard(req.Files)
	return nil, apperr.Internal("Internal server error", fmt.Errorf("unsupported mutation %s/%s", req.Kind, req.Op))
}

const (
	msgUnauthorized = "Unauthorized access"
	msgWrongAccount = "This action is not available for your account type"
)

func organization(p auth.Principal) (auth.OrganizationPrincipal, error) {
	if p == nil {
		return auth.OrganizationPrincipal{}, apperr.Unauthorized(msgUnauthorized)
	}
	op, ok := p.(auth.OrganizationPrincipal)
	if !ok {
		return auth.OrganizationPrincipal{}, apperr.Forbidden(msgWrongAccount)
	}
	return op, nil
}

func individual(p auth.Principal) (auth.IndividualPrincipal, error) {
	if p == nil {
		return auth.IndividualPrincipal{}, apperr.Unauthorized(msgUnauthorized)
	}
	ip, ok := p.(auth.IndividualPrincipal)
	if !ok {
		return auth.IndividualPrincipal{}, apperr.Forbidden(msgWrongAccount)
	}
	return ip, nil
}
