package campaigns_test

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sahilshivekar/team23-ngo-backend/internal/app/features/campaigns"
	"github.com/sahilshivekar/team23-ngo-backend/internal/app/system/credentials"
	"github.com/sahilshivekar/team23-ngo-backend/internal/domain/models"
	"github.com/sahilshivekar/team23-ngo-backend/internal/testutil"
)

func newServer(t *testing.T) (*testutil.App, http.Handler) {
	t.Helper()
	a := testutil.NewApp(t)
	h := campaigns.NewHandler(a.Mutations, a.Campaigns, a.AuditLog, a.Intake, a.ErrLog, a.Log)
	r := chi.NewRouter()
	r.Mount("/campaign", campaigns.Routes(h, a.Gate))
	return a, r
}

func TestCreateCampaign_DateOrderingAndDefaults(t *testing.T) {
	a, srv := newServer(t)
	ngo := a.NGOs.Put(models.NGO{Name: "Helping Hands", RegistrationNumber: "R1"})
	p := a.Projects.Put(models.Project{
		Title:     "Shelter",
		NGOID:     ngo.ID,
		StartDate: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC),
	})
	token := a.Token(t, ngo.ID.Hex(), credentials.Organization)

	fields := func(end string) map[string]string {
		return map[string]string{
			"title":        "Winter drive",
			"description":  "Blankets for everyone",
			"targetAmount": "50000",
			"startDate":    "2025-01-01",
			"endDate":      end,
			"projects":     fmt.Sprintf(`["%s"]`, p.ID.Hex()),
		}
	}

	rec := testutil.NewRecorder()
	srv.ServeHTTP(rec, testutil.WithBearer(testutil.NewMultipartRequest(t, http.MethodPost, "/campaign/addCampaign", fields("2025-01-01"), testutil.Image("images")), token))
	rec.AssertStatus(t, http.StatusBadRequest)
	if env := rec.DecodeEnvelope(t, nil); len(env.Errors) != 1 || env.Errors[0].Field != "endDate" {
		t.Errorf("errors: got %+v", env.Errors)
	}
	if a.Objects.UploadCount() != 0 {
		t.Error("nothing should be uploaded when dates are rejected")
	}

	rec = testutil.NewRecorder()
	srv.ServeHTTP(rec, testutil.WithBearer(testutil.NewMultipartRequest(t, http.MethodPost, "/campaign/addCampaign", fields("2025-01-02")), token))
	rec.AssertStatus(t, http.StatusCreated)
	var c models.Campaign
	rec.DecodeEnvelope(t, &c)
	if c.RaisedAmount != 0 || c.Currency != "INR" {
		t.Errorf("unexpected defaults: raised=%v currency=%q", c.RaisedAmount, c.Currency)
	}

	rec = testutil.NewRecorder()
	srv.ServeHTTP(rec, testutil.NewRequest(http.MethodGet, "/campaign/"+c.ID.Hex()))
	rec.AssertStatus(t, http.StatusOK)

	rec = testutil.NewRecorder()
	srv.ServeHTTP(rec, testutil.WithBearer(testutil.NewJSONRequest(t, http.MethodPatch, "/campaign/"+c.ID.Hex(), map[string]string{
		"targetAmount": "-1",
	}), token))
	rec.AssertStatus(t, http.StatusBadRequest)
}
