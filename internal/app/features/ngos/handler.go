// internal/app/features/ngos/handler.go
package ngos

import (
	"context"
	"net/http"
	"strings"

	uierrors "github.com/sahilshivekar/team23-ngo-backend/internal/app/features/errors"
	"github.com/sahilshivekar/team23-ngo-backend/internal/app/mutations"
	"github.com/sahilshivekar/team23-ngo-backend/internal/app/system/apiresp"
	"github.com/sahilshivekar/team23-ngo-backend/internal/app/system/apperr"
	"github.com/sahilshivekar/team23-ngo-backend/internal/app/system/auditlog"
	"github.com/sahilshivekar/team23-ngo-backend/internal/app/system/auth"
	"github.com/sahilshivekar/team23-ngo-backend/internal/app/system/credentials"
	"github.com/sahilshivekar/team23-ngo-backend/internal/app/system/media"
	"github.com/sahilshivekar/team23-ngo-backend/internal/app/system/ratelimit"
	"github.com/sahilshivekar/team23-ngo-backend/internal/app/system/signin"
	"github.com/sahilshivekar/team23-ngo-backend/internal/app/system/timeouts"
	"github.com/sahilshivekar/team23-ngo-backend/internal/domain/models"
	"go.uber.org/zap"
)

// Mutator runs resource mutations. *mutations.Service satisfies it.
type Mutator interface {
	Mutate(ctx context.Context, req mutations.Request) (any, error)
}

// Authenticator logs an NGO in. *signin.Service satisfies it.
type Authenticator interface {
	LoginOrganization(ctx context.Context, registrationNumber, email, password string) (signin.Result, error)
}

type Handler struct {
	Mutations Mutator
	SignIn    Authenticator
	Limiter   *ratelimit.LoginLimiter
	AuditLog  *auditlog.Logger
	Intake    media.Intake
	ErrLog    *uierrors.ErrorLogger
	Secure    bool // Secure flag on the access token cookie
	Log       *zap.Logger
}

func NewHandler(
	mut Mutator,
	signIn Authenticator,
	limiter *ratelimit.LoginLimiter,
	audit *auditlog.Logger,
	intake media.Intake,
	errLog *uierrors.ErrorLogger,
	secure bool,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		Mutations: mut,
		SignIn:    signIn,
		Limiter:   limiter,
		AuditLog:  audit,
		Intake:    intake,
		ErrLog:    errLog,
		Secure:    secure,
		Log:       logger,
	}
}

var kind = string(credentials.Organization)

// Register handles POST /ngo/register.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	body, err := h.Intake.Receive(w, r)
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Upload(), h.Log, "ngo register")
	defer cancel()

	out, err := h.Mutations.Mutate(ctx, mutations.Request{
		Kind:   mutations.KindOrganization,
		Op:     mutations.OpCreate,
		Fields: body.Fields,
		Files:  body.Files,
	})
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	ngo := out.(models.NGO)
	h.AuditLog.Registered(r.Context(), r, ngo.ID, kind)
	apiresp.JSON(w, http.StatusCreated, "NGO registration successful", ngo)
}

// Login handles POST /ngo/login with a registration number or email.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	body, err := h.Intake.Receive(w, r)
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	body.Discard()

	var req loginRequest
	req.fromFields(body.Fields)

	if h.Limiter != nil {
		if ok, wait, reason := h.Limiter.Check(r, req.account()); !ok {
			h.AuditLog.LoginFailedRateLimit(r.Context(), r, kind, req.account())
			ratelimit.TooMany(w, wait, reason)
			return
		}
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "ngo login")
	defer cancel()

	res, err := h.SignIn.LoginOrganization(ctx, req.RegistrationNumber, req.Email, req.Password)
	if err != nil {
		switch apperr.KindOf(err) {
		case apperr.KindNotFound:
			h.AuditLog.LoginFailedNotFound(r.Context(), r, kind, req.account())
		case apperr.KindAuthenticationFailed:
			h.AuditLog.LoginFailedWrongPassword(r.Context(), r, res.SubjectID, kind, req.account())
		}
		h.ErrLog.Write(w, r, err)
		return
	}

	if h.Limiter != nil {
		h.Limiter.ResetAccount(req.account())
	}
	op := res.Principal.(auth.OrganizationPrincipal)
	h.AuditLog.LoginSuccess(r.Context(), r, op.ID(), kind, req.account())

	auth.SetTokenCookie(w, res.Token.Value, res.Token.ExpiresAt, h.Secure)
	apiresp.JSON(w, http.StatusOK, "NGO logged in successfully", loginResponse{
		NGO:         op.NGO,
		AccessToken: res.Token.Value,
	})
}

// Logout handles POST /ngo/logout. The cookie is cleared; the token stays
// valid until it expires.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	owner, ok := auth.CurrentOrganization(r)
	if !ok {
		h.ErrLog.Write(w, r, apperr.Unauthorized("Unauthorized request"))
		return
	}
	h.AuditLog.Logout(r.Context(), r, owner.ID(), kind)
	auth.ClearTokenCookie(w, h.Secure)
	apiresp.JSON(w, http.StatusOK, "NGO logged out successfully", struct{}{})
}

// UpdateDetails handles PATCH /ngo/update-details.
func (h *Handler) UpdateDetails(w http.ResponseWriter, r *http.Request) {
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

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Upload(), h.Log, "ngo update")
	defer cancel()

	out, err := h.Mutations.Mutate(ctx, mutations.Request{
		Kind:      mutations.KindOrganization,
		Op:        mutations.OpUpdate,
		Principal: owner,
		Fields:    body.Fields,
		Files:     body.Files,
	})
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	ngo := out.(models.NGO)
	h.AuditLog.ResourceUpdated(r.Context(), r, owner.ID(), ngo.ID, kind)
	apiresp.JSON(w, http.StatusOK, "NGO details updated successfully", ngo)
}

// UpdateAvatar handles PATCH /ngo/update-avatar.
func (h *Handler) UpdateAvatar(w http.ResponseWriter, r *http.Request) {
	h.replace(w, r, mutations.SlotAvatar, "Avatar updated successfully")
}

// UpdateCoverImage handles PATCH /ngo/update-cover-image.
func (h *Handler) UpdateCoverImage(w http.ResponseWriter, r *http.Request) {
	h.replace(w, r, mutations.SlotCoverImage, "Cover image updated successfully")
}

func (h *Handler) replace(w http.ResponseWriter, r *http.Request, slot, message string) {
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

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Upload(), h.Log, "ngo "+slot)
	defer cancel()

	out, err := h.Mutations.Mutate(ctx, mutations.Request{
		Kind:      mutations.KindOrganization,
		Op:        mutations.OpReplace,
		Principal: owner,
		Slot:      slot,
		Files:     body.Files,
	})
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	ngo := out.(models.NGO)
	old, next := slotAssets(owner.NGO, ngo, slot)
	h.AuditLog.AssetReplaced(r.Context(), r, ngo.ID, kind, slot, old, next)
	apiresp.JSON(w, http.StatusOK, message, ngo)
}

// GetDetails handles GET /ngo/getDetails.
func (h *Handler) GetDetails(w http.ResponseWriter, r *http.Request) {
	owner, ok := auth.CurrentOrganization(r)
	if !ok {
		h.ErrLog.Write(w, r, apperr.Unauthorized("Unauthorized request"))
		return
	}
	apiresp.JSON(w, http.StatusOK, "NGO details fetched successfully", owner.NGO.Stripped())
}

func slotAssets(before, after models.NGO, slot string) (old, next string) {
	pick := func(n models.NGO) *models.MediaAsset {
		if slot == mutations.SlotCoverImage {
			return n.CoverImage
		}
		return n.Avatar
	}
	if a := pick(before); a != nil {
		old = a.RemoteID
	}
	if a := pick(after); a != nil {
		next = a.RemoteID
	}
	return old, next
}

func trimmed(fields map[string]string, key string) string {
	return strings.TrimSpace(fields[key])
}
