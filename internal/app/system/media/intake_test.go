package media_test

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/sahilshivekar/team23-ngo-backend/internal/app/system/apperr"
	"github.com/sahilshivekar/team23-ngo-backend/internal/app/system/media"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func multipartRequest(t *testing.T, fields map[string]string, files map[string][]string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	for field, names := range files {
		for _, name := range names {
			fw, err := mw.CreateFormFile(field, name)
			require.NoError(t, err)
			_, err = fw.Write([]byte("data-" + name))
			require.NoError(t, err)
		}
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestIntake_Multipart(t *testing.T) {
	in := media.Intake{TempDir: t.TempDir()}
	req := multipartRequest(t,
		map[string]string{"name": "Helping Hands", "email": "a@b.org"},
		map[string][]string{"avatar": {"me.png"}, "images": {"a.jpg", "b.jpg"}})

	got, err := in.Receive(httptest.NewRecorder(), req)
	require.NoError(t, err)

	assert.Equal(t, "Helping Hands", got.Fields["name"])
	assert.Equal(t, "a@b.org", got.Fields["email"])
	require.Len(t, got.Files, 3)
	for _, f := range got.Files {
		b, err := os.ReadFile(f.Path)
		require.NoError(t, err)
		assert.Equal(t, "data-"+f.Filename, string(b))
		assert.Equal(t, int64(len(b)), f.Size)
	}
}

func TestIntake_TooLarge_LeavesNoTemps(t *testing.T) {
	dir := t.TempDir()
	in := media.Intake{TempDir: dir, MaxBytes: 200}
	big := multipartRequest(t, map[string]string{"blob": strings.Repeat("y", 1000)}, map[string][]string{"images": {"a.png"}})
	_, err := in.Receive(httptest.NewRecorder(), big)
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidationFailed, apperr.KindOf(err))
	assert.Equal(t, "body", apperr.FieldOf(err))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestIntake_JSON(t *testing.T) {
	in := media.Intake{}
	req := httptest.NewRequest(http.MethodPatch, "/update",
		strings.NewReader(`{"name":"New Name","targetAmount":2500,"skills":["Teaching","Cooking"],"mname":null,"city": null ,"state":"","featured":true}`))
	req.Header.Set("Content-Type", "application/json")

	got, err := in.Receive(httptest.NewRecorder(), req)
	require.NoError(t, err)
	assert.Equal(t, "New Name", got.Fields["name"])
	assert.Equal(t, "2500", got.Fields["targetAmount"])
	assert.JSONEq(t, `["Teaching","Cooking"]`, got.Fields["skills"])
	assert.Equal(t, "true", got.Fields["featured"])

	for _, k := range []string{"mname", "city"} {
		_, present := got.Fields[k]
		assert.False(t, present, "null %s must be dropped", k)
	}
	state, present := got.Fields["state"]
	assert.True(t, present, "an explicit empty string is kept")
	assert.Empty(t, state)
	assert.Empty(t, got.Files)
}

func TestIntake_MalformedJSON(t *testing.T) {
	req := httptest.NewRequest(http.MethodPatch, "/update", strings.NewReader(`{"name":`))
	req.Header.Set("Content-Type", "application/json")

	_, err := media.Intake{}.Receive(httptest.NewRecorder(), req)
	assert.True(t, apperr.Is(err, apperr.KindValidationFailed))
}

func TestIntake_URLEncoded(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader("email=a%40b.org&password=secret123"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	got, err := media.Intake{}.Receive(httptest.NewRecorder(), req)
	require.NoError(t, err)
	assert.Equal(t, "a@b.org", got.Fields["email"])
	assert.Equal(t, "secret123", got.Fields["password"])
}
