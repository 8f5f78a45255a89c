package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/sahilshivekar/team23-ngo-backend/internal/app/system/apiresp"
	"github.com/sahilshivekar/team23-ngo-backend/internal/app/system/apperr"
	"github.com/sahilshivekar/team23-ngo-backend/internal/app/system/credentials"
	"go.uber.org/zap"
)

// CookieName is the cookie that carries the access token for browsers.
const CookieName = "accessToken"

type ctxKey string

const principalKey ctxKey = "principal"

// CurrentPrincipal returns the principal attached by Require.
func CurrentPrincipal(r *http.Request) (Principal, bool) {
	return FromContext(r.Context())
}

// FromContext returns the principal carried by ctx.
func FromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey).(Principal)
	return p, ok
}

// CurrentOrganization returns the principal when it is an NGO.
func CurrentOrganization(r *http.Request) (OrganizationPrincipal, bool) {
	p, ok := CurrentPrincipal(r)
	if !ok {
		return OrganizationPrincipal{}, false
	}
	op, ok := p.(OrganizationPrincipal)
	return op, ok
}

// CurrentIndividual returns the principal when it is a user.
func CurrentIndividual(r *http.Request) (IndividualPrincipal, bool) {
	p, ok := CurrentPrincipal(r)
	if !ok {
		return IndividualPrincipal{}, false
	}
	ip, ok := p.(IndividualPrincipal)
	return ip, ok
}

// WithPrincipal returns ctx carrying p.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// WithTestPrincipal attaches p to r, bypassing token verification.
func WithTestPrincipal(r *http.Request, p Principal) *http.Request {
	return r.WithContext(WithPrincipal(r.Context(), p))
}

// CredentialFrom extracts the access token: the Authorization bearer header
// wins over the cookie.
func CredentialFrom(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if scheme, token, ok := strings.Cut(h, " "); ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
	}
	if c, err := r.Cookie(CookieName); err == nil {
		return c.Value
	}
	return ""
}

// Require authenticates the request and, when kinds is non-empty, insists the
// principal is one of them.
//   - no credential:          401 Unauthorized
//   - bad or stale credential: 401 InvalidCredential
//   - wrong principal kind:    403 Forbidden
func (g *Gate) Require(kinds ...credentials.Discriminant) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, err := g.Authenticate(r.Context(), CredentialFrom(r))
			if err != nil {
				if apperr.KindOf(err) != apperr.KindInternal {
					g.log.Debug("request not authenticated",
						zap.String("path", r.URL.Path),
						zap.String("kind", string(apperr.KindOf(err))))
				}
				apiresp.Error(w, err)
				return
			}
			if !allowed(p, kinds) {
				apiresp.Error(w, apperr.Forbidden("This action is not available for your account type"))
				return
			}
			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), p)))
		})
	}
}

func allowed(p Principal, kinds []credentials.Discriminant) bool {
	if len(kinds) == 0 {
		return true
	}
	for _, k := range kinds {
		if p.Discriminant() == k {
			return true
		}
	}
	return false
}
