package mutations

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/sahilshivekar/team23-ngo-backend/internal/app/system/apperr"
	"github.com/sahilshivekar/team23-ngo-backend/internal/app/system/credentials"
	"github.com/sahilshivekar/team23-ngo-backend/internal/app/system/htmlsanitize"
	"github.com/sahilshivekar/team23-ngo-backend/internal/app/system/media"
	"github.com/sahilshivekar/team23-ngo-backend/internal/app/system/workflow"
	"github.com/sahilshivekar/team23-ngo-backend/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// E.164 without separators.
var phonePattern = regexp.MustCompile(`^\+?[1-9]\d{1,14}$`)

const maxDescriptionRunes = 500

var (
	emailFormat       = is.Email.Error("Invalid email format")
	phoneFormat       = validation.Match(phonePattern).Error("Invalid phone number format")
	descriptionLength = validation.RuneLength(0, maxDescriptionRunes).Error(fmt.Sprintf("Description must be at most %d characters", maxDescriptionRunes))
	passwordLength    = validation.RuneLength(credentials.MinPasswordLength, 0).Error(fmt.Sprintf("Password must be at least %d characters long", credentials.MinPasswordLength))
	passwordBytes     = validation.By(maxPasswordBytes)
	websiteFormat     = validation.By(absoluteURL)
)

func absoluteURL(value interface{}) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	u, err := url.Parse(s)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return errors.New("Website must be an absolute http(s) URL")
	}
	return nil
}

// bcrypt rejects longer input, so the limit is in bytes, not runes.
func maxPasswordBytes(value interface{}) error {
	s, _ := value.(string)
	if len(s) > credentials.MaxPasswordBytes {
		return fmt.Errorf("Password must be at most %d bytes long", credentials.MaxPasswordBytes)
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// confirmPassword enforces password = confirmPassword.
func confirmPassword(f workflow.Fields) error {
	if f.Get("password") != f.Get("confirmPassword") {
		return apperr.ValidationFailed("confirmPassword", "Password and confirm password fields do not match")
	}
	return nil
}

// description returns the plain-text description. Markup-only input counts
// as blank.
func description(f workflow.Fields) (string, error) {
	d := htmlsanitize.PlainText(f.Get("description"))
	if d == "" {
		return "", apperr.ValidationFailed("description", "description field is mandatory")
	}
	return d, nil
}

var dateLayouts = []string{"2006-01-02", time.RFC3339}

func parseDate(field, v string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, apperr.ValidationFailed(field, fmt.Sprintf("%s must be a date in YYYY-MM-DD format", field))
}

// dateOr parses field when present and falls back to current.
func dateOr(f workflow.Fields, field string, current time.Time) (time.Time, error) {
	if !f.Has(field) {
		return current, nil
	}
	return parseDate(field, f.Get(field))
}

// dateRange resolves start and end from f, defaulting to the current values,
// and requires end strictly after start.
func dateRange(f workflow.Fields, start, end time.Time) (time.Time, time.Time, error) {
	s, err := dateOr(f, "startDate", start)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	e, err := dateOr(f, "endDate", end)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if !e.After(s) {
		return time.Time{}, time.Time{}, apperr.ValidationFailed("endDate", "End date must be after the start date")
	}
	return s, e, nil
}

func nonNegative(field, v, message string) (float64, error) {
	n, err := strconv.ParseFloat(v, 64)
	if err != nil || n < 0 || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, apperr.ValidationFailed(field, message)
	}
	return n, nil
}

// jsonList decodes a serialized list field. ok is false when the field is
// absent.
func jsonList[T any](f workflow.Fields, field string) (out []T, ok bool, err error) {
	raw := f.Get(field)
	if raw == "" {
		return nil, false, nil
	}
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, true, apperr.ValidationFailed(field, fmt.Sprintf("%s must be a JSON list", field))
	}
	return out, true, nil
}

type resourceInput struct {
	ResourceType      string   `json:"resourceType"`
	QuantityNeeded    *float64 `json:"quantityNeeded"`
	QuantityFulfilled *float64 `json:"quantityFulfilled"`
}

func resourcesNeeded(items []resourceInput) ([]models.ResourceNeed, error) {
	out := make([]models.ResourceNeed, 0, len(items))
	for i, it := range items {
		if strings.TrimSpace(it.ResourceType) == "" {
			return nil, apperr.ValidationFailed("resourcesNeeded", fmt.Sprintf("Resource type is mandatory for resource at index %d", i))
		}
		if it.QuantityNeeded == nil || *it.QuantityNeeded < 0 {
			return nil, apperr.ValidationFailed("resourcesNeeded", fmt.Sprintf("Quantity needed should be a non-negative number for resource at index %d", i))
		}
		need := models.ResourceNeed{
			ResourceType:   strings.TrimSpace(it.ResourceType),
			QuantityNeeded: *it.QuantityNeeded,
		}
		if it.QuantityFulfilled != nil {
			if *it.QuantityFulfilled < 0 || *it.QuantityFulfilled > need.QuantityNeeded {
				return nil, apperr.ValidationFailed("resourcesNeeded", fmt.Sprintf("Quantity fulfilled should be between 0 and quantity needed for resource at index %d", i))
			}
			need.QuantityFulfilled = *it.QuantityFulfilled
		}
		need.Status = models.NeedNotFulfilled
		if need.QuantityFulfilled >= need.QuantityNeeded {
			need.Status = models.NeedFulfilled
		}
		out = append(out, need)
	}
	return out, nil
}

func skillsNeeded(items []string) ([]string, error) {
	out := make([]string, 0, len(items))
	for i, s := range items {
		s = strings.TrimSpace(s)
		if s == "" {
			return nil, apperr.ValidationFailed("skillsNeeded", fmt.Sprintf("Skill is mandatory for skill at index %d", i))
		}
		out = append(out, s)
	}
	return out, nil
}

var skillCatalogue = func() map[string]bool {
	m := make(map[string]bool, len(models.VolunteerSkills))
	for _, s := range models.VolunteerSkills {
		m[s] = true
	}
	return m
}()

func volunteerSkills(items []string) ([]string, error) {
	out := make([]string, 0, len(items))
	for i, s := range items {
		if !skillCatalogue[strings.TrimSpace(s)] {
			return nil, apperr.ValidationFailed("skills", fmt.Sprintf("Unknown skill %q at index %d", s, i))
		}
		out = append(out, strings.TrimSpace(s))
	}
	return out, nil
}

type availabilityInput struct {
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

func availability(items []availabilityInput) ([]models.Availability, error) {
	out := make([]models.Availability, 0, len(items))
	for i, it := range items {
		start, err1 := parseDate("availability", it.StartDate)
		end, err2 := parseDate("availability", it.EndDate)
		if err1 != nil || err2 != nil {
			return nil, apperr.ValidationFailed("availability", fmt.Sprintf("Invalid date for availability at index %d", i))
		}
		if !end.After(start) {
			return nil, apperr.ValidationFailed("availability", fmt.Sprintf("End date must be after the start date for availability at index %d", i))
		}
		out = append(out, models.Availability{StartDate: start, EndDate: end})
	}
	return out, nil
}

// objectIDs parses a list of hex identifiers, dropping duplicates.
func objectIDs(field string, items []string) ([]primitive.ObjectID, error) {
	seen := map[primitive.ObjectID]bool{}
	out := make([]primitive.ObjectID, 0, len(items))
	for i, s := range items {
		id, err := primitive.ObjectIDFromHex(strings.TrimSpace(s))
		if err != nil {
			return nil, apperr.ValidationFailed(field, fmt.Sprintf("Invalid identifier for %s at index %d", field, i))
		}
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out, nil
}

// mediaCap rejects an append that would grow a media list past the cap.
func mediaCap(existing int, files []media.LocalFile, field string) error {
	n := existing
	for _, f := range files {
		if f.Field == field {
			n++
		}
	}
	if n > models.MaxMediaPerResource {
		return apperr.ValidationFailed(field, fmt.Sprintf("At most %d %s allowed", models.MaxMediaPerResource, field))
	}
	return nil
}

// loadErr maps a missing document to NotFound.
func loadErr(err error, message string) error {
	if isNoDocuments(err) {
		return apperr.NotFound(message)
	}
	return err
}

func isNoDocuments(err error) bool {
	return errors.Is(err, mongo.ErrNoDocuments)
}
