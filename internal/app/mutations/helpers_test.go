package mutations_test

import (
	"testing"

	"github.com/sahilshivekar/team23-ngo-backend/internal/app/mutations"
	"github.com/sahilshivekar/team23-ngo-backend/internal/app/system/auth"
	"github.com/sahilshivekar/team23-ngo-backend/internal/app/system/media"
	"github.com/sahilshivekar/team23-ngo-backend/internal/app/system/workflow"
	"github.com/sahilshivekar/team23-ngo-backend/internal/domain/models"
	"github.com/sahilshivekar/team23-ngo-backend/internal/testutil"
	"go.uber.org/zap"
)

type fixture struct {
	objects   *testutil.ObjectStore
	ngos      *testutil.NGOStore
	users     *testutil.UserStore
	projects  *testutil.ProjectStore
	campaigns *testutil.CampaignStore
	svc       *mutations.Service
	stages    []workflow.Stage
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		objects:   testutil.NewObjectStore(),
		ngos:      testutil.NewNGOStore(),
		users:     testutil.NewUserStore(),
		projects:  testutil.NewProjectStore(),
		campaigns: testutil.NewCampaignStore(),
	}
	f.svc = mutations.New(mutations.Deps{
		Media:     media.NewCoordinator(f.objects, zap.NewNop()),
		NGOs:      f.ngos,
		Users:     f.users,
		Projects:  f.projects,
		Campaigns: f.campaigns,
		Log:       zap.NewNop(),
	})
	f.svc.Observe(func(_ string, _, to workflow.Stage, _ error) {
		f.stages = append(f.stages, to)
	})
	return f
}

func ngoFields() map[string]string {
	return map[string]string{
		"name":               "Helping Hands",
		"description":        "We help.",
		"email":              "a@b.org",
		"phone":              "+911234567890",
		"registrationNumber": "R1",
		"addressLine1":       "1 Main St",
		"city":               "Pune",
		"state":              "MH",
		"country":            "India",
		"postalCode":         "411001",
		"password":           "s3cretpass",
		"confirmPassword":    "s3cretpass",
		"website":            "https://helping.example.org",
	}
}

func userFields() map[string]string {
	return map[string]string{
		"fname":           "Asha",
		"lname":           "Rao",
		"email":           "Asha@Example.org",
		"phone":           "+919876543210",
		"password":        "s3cretpass",
		"confirmPassword": "s3cretpass",
	}
}

// owner stores an NGO and returns its principal.
func (f *fixture) owner(name, email, regNo string) auth.OrganizationPrincipal {
	ngo := f.ngos.Put(models.NGO{
		Name:               name,
		RegistrationNumber: regNo,
		Contact:            models.NGOContact{Email: email},
		PasswordHash:       "$2a$12$placeholder",
	})
	return auth.NewOrganization(ngo)
}

func merge(base map[string]string, kv ...string) map[string]string {
	out := make(map[string]string, len(base))
	for k, v := range base {
		out[k] = v
	}
	for i := 0; i+1 < len(kv); i += 2 {
		if kv[i+1] == "" {
			delete(out, kv[i])
			continue
		}
		out[kv[i]] = kv[i+1]
	}
	return out
}
