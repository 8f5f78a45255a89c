// internal/app/features/users/handler.go
package users

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

// Authenticator logs an individual in. *signin.Service satisfies it.
type Authenticator interface {
	LoginIndividual(ctx context.Context, email, password string) (signin.Result, error)
}

type Handler struct {
	Mutations Mutator
	SignIn    Authenticator
	Limiter   *ratelimit.LoginLimiter
	AuditLog  *auditlog.Logger
	Intake    media.Intake
	ErrLog    *uierrors.ErrorLogger
	Secure    bool
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

var kind = string(credentials.Individual)

// Register handles POST /user/register.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	body, err := h.Intake.Receive(w, r)
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Upload(), h.Log, "user register")
	defer cancel()

	out, err := h.Mutations.Mutate(ctx, mutations.Request{
		Kind:   mutations.KindIndividual,
		Op:     mutations.OpCreate,
		Fields: body.Fields,
		Files:  body.Files,
	})
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	u := out.(models.User)
	h.AuditLog.Registered(r.Context(), r, u.ID, kind)
	apiresp.JSON(w, http.StatusCreated, "User registered successfully", u)
}

// Login handles POST /user/login.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	body, err := h.Intake.Receive(w, r)
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	body.Discard()

	email := strings.TrimSpace(body.Fields["email"])
	password := body.Fields["password"]

	if h.Limiter != nil {
		if ok, wait, reason := h.Limiter.Check(r, email); !ok {
			h.AuditLog.LoginFailedRateLimit(r.Context(), r, kind, email)
			ratelimit.TooMany(w, wait, reason)
			return
		}
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "user login")
	defer cancel()

	res, err := h.SignIn.LoginIndividual(ctx, email, password)
	if err != nil {
		switch apperr.KindOf(err) {
		case apperr.KindNotFound:
			h.AuditLog.LoginFailedNotFound(r.Context(), r, kind, email)
		case apperr.KindAuthenticationFailed:
			h.AuditLog.LoginFailedWrongPassword(r.Context(), r, res.SubjectID, kind, email)
		}
		h.ErrLog.Write(w, r, err)
		return
	}

	if h.Limiter != nil {
		h.Limiter.ResetAccount(email)
	}
	ip := res.Principal.(auth.IndividualPrincipal)
	h.AuditLog.LoginSuccess(r.Context(), r, ip.ID(), kind, email)

	auth.SetTokenCookie(w, res.Token.Value, res.Token.ExpiresAt, h.Secure)
	apiresp.JSON(w, http.StatusOK, "User logged in successfully", loginResponse{
		User:        ip.User,
		AccessToken: res.Token.Value,
	})
}

// Logout handles GET /user/logout.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	who, ok := auth.CurrentIndividual(r)
	if !ok {
		h.ErrLog.Write(w, r, apperr.Unauthorized("Unauthorized request"))
		return
	}
	h.AuditLog.Logout(r.Context(), r, who.ID(), kind)
	auth.ClearTokenCookie(w, h.Secure)
	apiresp.JSON(w, http.StatusOK, "User logged out successfully", struct{}{})
}

// UpdateDetails handles PATCH /user/update-details.
func (h *Handler) UpdateDetails(w http.ResponseWriter, r *http.Request) {
	who, ok := auth.CurrentIndividual(r)
	if !ok {
		h.ErrLog.Write(w, r, apperr.Unauthorized("Unauthorized request"))
		return
	}
	body, err := h.Intake.Receive(w, r)
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Upload(), h.Log, "user update")
	defer cancel()

	out, err := h.Mutations.Mutate(ctx, mutations.Request{
		Kind:      mutations.KindIndividual,
		Op:        mutations.OpUpdate,
		Principal: who,
		Fields:    body.Fields,
		Files:     body.Files,
	})
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	u := out.(models.User)
	h.AuditLog.ResourceUpdated(r.Context(), r, who.ID(), u.ID, kind)
	apiresp.JSON(w, http.StatusOK, "User details updated successfully", u)
}

// UpdateAvatar handles PATCH /user/update-avatar.
func (h *Handler) UpdateAvatar(w http.ResponseWriter, r *http.Request) {
	who, ok := auth.CurrentIndividual(r)
	if !ok {
		h.ErrLog.Write(w, r, apperr.Unauthorized("Unauthorized request"))
		return
	}
	body, err := h.Intake.Receive(w, r)
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Upload(), h.Log, "user avatar")
	defer cancel()

	out, err := h.Mutations.Mutate(ctx, mutations.Request{
		Kind:      mutations.KindIndividual,
		Op:        mutations.OpReplace,
		Principal: who,
		Slot:      mutations.SlotAvatar,
		Files:     body.Files,
	})
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	u := out.(models.User)
	var old, next string
	if who.User.Avatar != nil {
		old = who.User.Avatar.RemoteID
	}
	if u.Avatar != nil {
		next = u.Avatar.RemoteID
	}
	h.AuditLog.AssetReplaced(r.Context(), r, u.ID, kind, mutations.SlotAvatar, old, next)
	apiresp.JSON(w, http.StatusOK, "Avatar updated successfully", u)
}

// GetDetails handles GET /user/getDetails.
func (h *Handler) GetDetails(w http.ResponseWriter, r *http.Request) {
	who, ok := auth.CurrentIndividual(r)
	if !ok {
		h.ErrLog.Write(w, r, apperr.Unauthorized("Unauthorized request"))
		return
	}
	apiresp.JSON(w, http.StatusOK, "User details fetched successfully", who.User.Stripped())
}
