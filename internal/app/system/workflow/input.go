// Package workflow runs resource mutations through one ordered pipeline:
// structural validation, cross-field validation, uniqueness, media upload,
// persistence and read-back. Local temporaries and uploaded assets are
// compensated on every failure path.
package workflow

import (
	"strings"

	"github.com/sahilshivekar/team23-ngo-backend/internal/app/system/media"
	"github.com/sahilshivekar/team23-ngo-backend/internal/domain/models"
)

// Fields are the plain values of a request body.
type Fields map[string]string

// Get returns the trimmed value of key.
func (f Fields) Get(key string) string {
	return strings.TrimSpace(f[key])
}

// Has reports whether key is present and non-blank after trimming.
func (f Fields) Has(key string) bool {
	return f.Get(key) != ""
}

// Input is one mutation request.
type Input struct {
	Fields Fields
	Files  []media.LocalFile
}

// Media holds uploaded assets grouped by form field, in arrival order.
type Media map[string][]models.MediaAsset

// First returns the first asset for field, or nil.
func (m Media) First(field string) *models.MediaAsset {
	if l := m[field]; len(l) > 0 {
		a := l[0]
		return &a
	}
	return nil
}

// List returns the assets for field.
func (m Media) List(field string) []models.MediaAsset {
	return m[field]
}

// All returns every asset.
func (m Media) All() []models.MediaAsset {
	var out []models.MediaAsset
	for _, l := range m {
		out = append(out, l...)
	}
	return out
}
