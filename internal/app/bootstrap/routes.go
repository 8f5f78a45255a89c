// internal/app/bootstrap/routes.go
package bootstrap

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/pantry/fileserver"
	"github.com/go-chi/chi/v5"
	campaignsfeature "github.com/sahilshivekar/team23-ngo-backend/internal/app/features/campaigns"
	errorsfeature "github.com/sahilshivekar/team23-ngo-backend/internal/app/features/errors"
	healthfeature "github.com/sahilshivekar/team23-ngo-backend/internal/app/features/health"
	ngosfeature "github.com/sahilshivekar/team23-ngo-backend/internal/app/features/ngos"
	projectsfeature "github.com/sahilshivekar/team23-ngo-backend/internal/app/features/projects"
	usersfeature "github.com/sahilshivekar/team23-ngo-backend/internal/app/features/users"
	"github.com/sahilshivekar/team23-ngo-backend/internal/app/mutations"
	"github.com/sahilshivekar/team23-ngo-backend/internal/app/store/audit"
	campaignstore "github.com/sahilshivekar/team23-ngo-backend/internal/app/store/campaigns"
	ngostore "github.com/sahilshivekar/team23-ngo-backend/internal/app/store/ngos"
	projectstore "github.com/sahilshivekar/team23-ngo-backend/internal/app/store/projects"
	userstore "github.com/sahilshivekar/team23-ngo-backend/internal/app/store/users"
	"github.com/sahilshivekar/team23-ngo-backend/internal/app/system/auditlog"
	"github.com/sahilshivekar/team23-ngo-backend/internal/app/system/auth"
	"github.com/sahilshivekar/team23-ngo-backend/internal/app/system/credentials"
	"github.com/sahilshivekar/team23-ngo-backend/internal/app/system/media"
	"github.com/sahilshivekar/team23-ngo-backend/internal/app/system/ratelimit"
	"github.com/sahilshivekar/team23-ngo-backend/internal/app/system/signin"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed. It builds the stores and services once
// and mounts the organization, individual, project and campaign routers
// under /api/v1.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	db := deps.MongoDatabase

	storageCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	objects, err := newObjectStore(storageCtx, appCfg, logger)
	cancel()
	if err != nil {
		logger.Error("object store init failed", zap.Error(err))
		return nil, err
	}

	tokens, err := credentials.NewIssuer(appCfg.AccessTokenSecret, appCfg.AccessTokenExpiry,
		credentials.WithIssuerName(appCfg.TokenIssuer))
	if err != nil {
		logger.Error("token issuer init failed", zap.Error(err))
		return nil, err
	}

	ngos := ngostore.New(db)
	users := userstore.New(db)
	projects := projectstore.New(db)
	campaigns := campaignstore.New(db)

	mut := mutations.New(mutations.Deps{
		Media:     media.NewCoordinator(objects, logger, media.WithConcurrency(appCfg.UploadConcurrency)),
		NGOs:      ngos,
		Users:     users,
		Projects:  projects,
		Campaigns: campaigns,
		Log:       logger,
	})
	signIn := signin.New(ngos, users, tokens, logger)
	gate := auth.NewGate(tokens, ngos, users, logger)
	limiter := ratelimit.NewLoginLimiter(appCfg.LoginRatePerMinute, appCfg.LoginBurst)
	auditLog := auditlog.New(audit.New(db), logger, auditlog.Config{
		Auth:     appCfg.AuditLogAuth,
		Resource: appCfg.AuditLogResource,
	})
	intake := media.Intake{TempDir: appCfg.UploadTempDir, MaxBytes: appCfg.UploadMaxBytes}

	// Create error logger for handlers.
	errLog := errorsfeature.NewErrorLogger(logger)

	r := chi.NewRouter()
	r.NotFound(errLog.NotFound)
	r.MethodNotAllowed(errLog.MethodNotAllowed)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Locally stored objects are served by the app itself.
	if appCfg.StorageType == "local" {
		prefix := strings.TrimSuffix(appCfg.StorageLocalURL, "/")
		r.Handle(prefix+"/*", fileserver.Handler(prefix, appCfg.StorageLocalPath))
	}

	r.Route("/api/v1", func(api chi.Router) {
		ngoHandler := ngosfeature.NewHandler(mut, signIn, limiter, auditLog, intake, errLog, secure, logger)
		api.Mount("/ngo", ngosfeature.Routes(ngoHandler, gate))

		userHandler := usersfeature.NewHandler(mut, signIn, limiter, auditLog, intake, errLog, secure, logger)
		api.Mount("/user", usersfeature.Routes(userHandler, gate))

		projectHandler := projectsfeature.NewHandler(mut, projects, auditLog, intake, errLog, logger)
		api.Mount("/project", projectsfeature.Routes(projectHandler, gate))

		campaignHandler := campaignsfeature.NewHandler(mut, campaigns, auditLog, intake, errLog, logger)
		api.Mount("/campaign", campaignsfeature.Routes(campaignHandler, gate))
	})

	return r, nil
}
