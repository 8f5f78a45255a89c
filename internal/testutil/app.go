package testutil

import (
	"testing"
	"time"

	uierrors "github.com/sahilshivekar/team23-ngo-backend/internal/app/features/errors"
	"github.com/sahilshivekar/team23-ngo-backend/internal/app/mutations"
	"github.com/sahilshivekar/team23-ngo-backend/internal/app/system/auditlog"
	"github.com/sahilshivekar/team23-ngo-backend/internal/app/system/auth"
	"github.com/sahilshivekar/team23-ngo-backend/internal/app/system/credentials"
	"github.com/sahilshivekar/team23-ngo-backend/internal/app/system/media"
	"github.com/sahilshivekar/team23-ngo-backend/internal/app/system/ratelimit"
	"github.com/sahilshivekar/team23-ngo-backend/internal/app/system/signin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// TestSecret signs tokens in tests.
const TestSecret = "test-secret-0123456789abcdef-0123"

// App is the in-memory service stack the HTTP handlers run on in tests.
type App struct {
	Objects   *ObjectStore
	NGOs      *NGOStore
	Users     *UserStore
	Projects  *ProjectStore
	Campaigns *CampaignStore

	Mutations *mutations.Service
	SignIn    *signin.Service
	Tokens    *credentials.Issuer
	Gate      *auth.Gate
	Limiter   *ratelimit.LoginLimiter
	AuditLog  *auditlog.Logger
	Intake    media.Intake
	ErrLog    *uierrors.ErrorLogger
	Log       *zap.Logger

	// AuditLogs captures the audit entries written to zap.
	AuditLogs *observer.ObservedLogs
}

// NewApp wires the in-memory stack. Bodies are spooled under t.TempDir.
func NewApp(t *testing.T) *App {
	t.Helper()

	tokens, err := credentials.NewIssuer(TestSecret, time.Hour)
	if err != nil {
		t.Fatalf("NewIssuer: %v", err)
	}

	core, logs := observer.New(zapcore.InfoLevel)
	log := zap.NewNop()

	a := &App{
		Objects:   NewObjectStore(),
		NGOs:      NewNGOStore(),
		Users:     NewUserStore(),
		Projects:  NewProjectStore(),
		Campaigns: NewCampaignStore(),
		Tokens:    tokens,
		Limiter:   ratelimit.NewLoginLimiter(60, 10),
		AuditLog:  auditlog.New(nil, zap.New(core), auditlog.Config{Auth: auditlog.ModeLog, Resource: auditlog.ModeLog}),
		Intake:    media.Intake{TempDir: t.TempDir(), MaxBytes: 10 << 20},
		ErrLog:    uierrors.NewErrorLogger(log),
		Log:       log,
		AuditLogs: logs,
	}
	a.Mutations = mutations.New(mutations.Deps{
		Media:     media.NewCoordinator(a.Objects, log),
		NGOs:      a.NGOs,
		Users:     a.Users,
		Projects:  a.Projects,
		Campaigns: a.Campaigns,
		Log:       log,
	})
	a.SignIn = signin.New(a.NGOs, a.Users, tokens, log)
	a.Gate = auth.NewGate(tokens, a.NGOs, a.Users, log)
	return a
}

// Token issues an access token for a principal of kind d.
func (a *App) Token(t testing.TB, subjectID string, d credentials.Discriminant) string {
	t.Helper()
	tok, err := a.Tokens.Issue(subjectID, d)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	return tok.Value
}

// AuditEvents returns the event_type of every captured audit entry.
func (a *App) AuditEvents() []string {
	var out []string
	for _, e := range a.AuditLogs.All() {
		if v, ok := e.ContextMap()["event_type"].(string); ok {
			out = append(out, v)
		}
	}
	return out
}
