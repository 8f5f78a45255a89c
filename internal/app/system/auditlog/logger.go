// internal/app/system/auditlog/logger.go
package auditlog

import (
	"context"
	"net/http"

	"github.com/sahilshivekar/team23-ngo-backend/internal/app/store/audit"
	"github.com/sahilshivekar/team23-ngo-backend/internal/app/system/ratelimit"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Modes for each category.
const (
	ModeAll = "all" // MongoDB + zap
	ModeDB  = "db"  // MongoDB only
	ModeLog = "log" // zap only
	ModeOff = "off"
)

// Config holds audit logging configuration.
type Config struct {
	// Auth controls logging for login, logout and registration events.
	Auth string
	// Resource controls logging for resource mutations and asset replacement.
	Resource string
}

// Recorder persists audit events. *audit.Store satisfies it.
type Recorder interface {
	Log(ctx context.Context, event audit.Event) error
}

// Logger provides convenience methods for logging audit events.
// It logs to MongoDB (via Recorder) and structured logs (via zap).
type Logger struct {
	store  Recorder
	zapLog *zap.Logger
	config Config
}

// New creates a new audit Logger. store may be nil, in which case db modes
// degrade to zap only.
func New(store Recorder, zapLog *zap.Logger, config Config) *Logger {
	if zapLog == nil {
		zapLog = zap.NewNop()
	}
	return &Logger{store: store, zapLog: zapLog, config: config}
}

func (l *Logger) logToZap(event audit.Event) {
	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("category", event.Category),
		zap.String("event_type", event.EventType),
		zap.Bool("success", event.Success),
		zap.String("ip", event.IP),
	}
	if event.SubjectID != nil {
		fields = append(fields, zap.String("subject_id", event.SubjectID.Hex()))
	}
	if event.SubjectKind != "" {
		fields = append(fields, zap.String("subject_kind", event.SubjectKind))
	}
	if event.FailureReason != "" {
		fields = append(fields, zap.String("failure_reason", event.FailureReason))
	}
	for k, v := range event.Details {
		fields = append(fields, zap.String("detail_"+k, v))
	}

	if event.Success {
		l.zapLog.Info("audit event", fields...)
	} else {
		l.zapLog.Warn("audit event", fields...)
	}
}

// Log records an audit event based on configuration.
// A nil Logger is a no-op.
func (l *Logger) Log(ctx context.Context, event audit.Event) {
	if l == nil {
		return
	}

	var setting string
	switch event.Category {
	case audit.CategoryAuth:
		setting = l.config.Auth
	case audit.CategoryResource:
		setting = l.config.Resource
	}
	if setting == "" {
		setting = ModeAll
	}
	if setting == ModeOff {
		return
	}

	if setting == ModeAll || setting == ModeLog || l.store == nil {
		l.logToZap(event)
	}
	if (setting == ModeAll || setting == ModeDB) && l.store != nil {
		if err := l.store.Log(context.WithoutCancel(ctx), event); err != nil {
			l.zapLog.Error("failed to store audit event",
				zap.Error(err),
				zap.String("event_type", event.EventType),
			)
		}
	}
}

func requestEvent(r *http.Request, category, eventType string) audit.Event {
	ev := audit.Event{Category: category, EventType: eventType}
	if r != nil {
		ev.IP = ratelimit.ClientIP(r)
		ev.UserAgent = r.UserAgent()
	}
	return ev
}

// --- Authentication Events ---

// LoginSuccess logs a successful login.
func (l *Logger) LoginSuccess(ctx context.Context, r *http.Request, subjectID primitive.ObjectID, kind, loginID string) {
	ev := requestEvent(r, audit.CategoryAuth, audit.EventLoginSuccess)
	ev.SubjectID = &subjectID
	ev.SubjectKind = kind
	ev.Success = true
	ev.Details = map[string]string{"login_id": loginID}
	l.Log(ctx, ev)
}

// LoginFailedNotFound logs a login for an identifier that matches nothing.
func (l *Logger) LoginFailedNotFound(ctx context.Context, r *http.Request, kind, attemptedLoginID string) {
	ev := requestEvent(r, audit.CategoryAuth, audit.EventLoginFailedNotFound)
	ev.SubjectKind = kind
	ev.FailureReason = "account not found"
	ev.Details = map[string]string{"attempted_login_id": attemptedLoginID}
	l.Log(ctx, ev)
}

// LoginFailedWrongPassword logs a password mismatch.
func (l *Logger) LoginFailedWrongPassword(ctx context.Context, r *http.Request, subjectID primitive.ObjectID, kind, loginID string) {
	ev := requestEvent(r, audit.CategoryAuth, audit.EventLoginFailedWrongPassword)
	ev.SubjectID = &subjectID
	ev.SubjectKind = kind
	ev.FailureReason = "wrong password"
	ev.Details = map[string]string{"login_id": loginID}
	l.Log(ctx, ev)
}

// LoginFailedRateLimit logs a throttled login attempt.
func (l *Logger) LoginFailedRateLimit(ctx context.Context, r *http.Request, kind, loginID string) {
	ev := requestEvent(r, audit.CategoryAuth, audit.EventLoginFailedRateLimit)
	ev.SubjectKind = kind
	ev.FailureReason = "rate limited"
	ev.Details = map[string]string{"login_id": loginID}
	l.Log(ctx, ev)
}

// Logout logs a logout.
func (l *Logger) Logout(ctx context.Context, r *http.Request, subjectID primitive.ObjectID, kind string) {
	ev := requestEvent(r, audit.CategoryAuth, audit.EventLogout)
	ev.SubjectID = &subjectID
	ev.SubjectKind = kind
	ev.Success = true
	l.Log(ctx, ev)
}

// Registered logs a new organization or individual account.
func (l *Logger) Registered(ctx context.Context, r *http.Request, subjectID primitive.ObjectID, kind string) {
	ev := requestEvent(r, audit.CategoryAuth, audit.EventRegistered)
	ev.SubjectID = &subjectID
	ev.SubjectKind = kind
	ev.Success = true
	l.Log(ctx, ev)
}

// --- Resource Events ---

// ResourceCreated logs a created project or campaign.
func (l *Logger) ResourceCreated(ctx context.Context, r *http.Request, actorID, resourceID primitive.ObjectID, resourceKind string) {
	ev := requestEvent(r, audit.CategoryResource, audit.EventResourceCreated)
	ev.SubjectID = &actorID
	ev.Success = true
	ev.Details = map[string]string{"resource_kind": resourceKind, "resource_id": resourceID.Hex()}
	l.Log(ctx, ev)
}

// ResourceUpdated logs an update to any resource.
func (l *Logger) ResourceUpdated(ctx context.Context, r *http.Request, actorID, resourceID primitive.ObjectID, resourceKind string) {
	ev := requestEvent(r, audit.CategoryResource, audit.EventResourceUpdated)
	ev.SubjectID = &actorID
	ev.Success = true
	ev.Details = map[string]string{"resource_kind": resourceKind, "resource_id": resourceID.Hex()}
	l.Log(ctx, ev)
}

// AssetReplaced logs an avatar or cover image replacement.
func (l *Logger) AssetReplaced(ctx context.Context, r *http.Request, subjectID primitive.ObjectID, kind, field, oldRemoteID, newRemoteID string) {
	ev := requestEvent(r, audit.CategoryResource, audit.EventAssetReplaced)
	ev.SubjectID = &subjectID
	ev.SubjectKind = kind
	ev.Success = true
	ev.Details = map[string]string{"field": field, "old_remote_id": oldRemoteID, "new_remote_id": newRemoteID}
	l.Log(ctx, ev)
}
