// internal/app/features/projects/handler.go
package projects

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	uierrors "github.com/sahilshivekar/team23-ngo-backend/internal/app/features/errors"
	"github.com/sahilshivekar/team23-ngo-backend/internal/app/mutations"
	"github.com/sahilshivekar/team23-ngo-backend/internal/app/system/apiresp"
	"github.com/sahilshivekar/team23-ngo-backend/internal/app/system/apperr"
	"github.com/sahilshivekar/team23-ngo-backend/internal/app/system/auditlog"
	"github.com/sahilshivekar/team23-ngo-backend/internal/app/system/auth"
	"github.com/sahilshivekar/team23-ngo-backend/internal/app/system/media"
	"github.com/sahilshivekar/team23-ngo-backend/internal/app/system/timeouts"
	"github.com/sahilshivekar/team23-ngo-backend/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Mutator runs resource mutations. *mutations.Service satisfies it.
type Mutator interface {
	Mutate(ctx context.Context, req mutations.Request) (any, error)
}

// Reader loads a project. *projectstore.Store satisfies it.
type Reader interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (models.Project, error)
}

type Handler struct {
	Mutations Mutator
	Projects  Reader
	AuditLog  *auditlog.Logger
	Intake    media.Intake
	ErrLog    *uierrors.ErrorLogger
	Log       *zap.Logger
}

func NewHandler(mut Mutator, projects Reader, audit *auditlog.Logger, intake media.Intake, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Mutations: mut,
		Projects:  projects,
		AuditLog:  audit,
		Intake:    intake,
		ErrLog:    errLog,
		Log:       logger,
	}
}

const resourceKind = "project"

// Create handles POST /project/addProject.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, mutations.OpCreate, primitive.NilObjectID)
}

// Update handles PATCH /project/{id}.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := projectID(r)
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	h.mutate(w, r, mutations.OpUpdate, id)
}

func (h *Handler) mutate(w http.ResponseWriter, r *http.Request, op mutations.Op, id primitive.ObjectID) {
	owner, ok := auth.CurrentOrganization(r)
	if !ok {
		h.ErrLog.Write(w, r, apperr.Unauthorized("Unauthorized request"))
		return
	}
	body, err := h.Intake.Receive(w, r)
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Upload(), h.Log, "project "+string(op))
	defer cancel()

	out, err := h.Mutations.Mutate(ctx, mutations.Request{
		Kind:      mutations.KindProject,
		Op:        op,
		Principal: owner,
		TargetID:  id,
		Fields:    body.Fields,
		Files:     body.Files,
	})
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	p := out.(models.Project)

	if op == mutations.OpCreate {
		h.AuditLog.ResourceCreated(r.Context(), r, owner.ID(), p.ID, resourceKind)
		apiresp.JSON(w, http.StatusCreated, "Project created successfully", p)
		return
	}
	h.AuditLog.ResourceUpdated(r.Context(), r, owner.ID(), p.ID, resourceKind)
	apiresp.JSON(w, http.StatusOK, "Project updated successfully", p)
}

// Get handles GET /project/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := projectID(r)
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	p, err := h.Projects.GetByID(ctx, id)
	if errors.Is(err, mongo.ErrNoDocuments) {
		h.ErrLog.Write(w, r, apperr.NotFound("Project not found"))
		return
	}
	if err != nil {
		h.ErrLog.Write(w, r, apperr.Internal("Internal server error", err))
		return
	}
	apiresp.JSON(w, http.StatusOK, "Project fetched successfully", p)
}

func projectID(r *http.Request) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		return primitive.NilObjectID, apperr.ValidationFailed("id", "Invalid project id")
	}
	return id, nil
}
