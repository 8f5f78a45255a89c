package media_test

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/smithy-go"
	"github.com/dalemusser/waffle/pantry/storage"
	"github.com/sahilshivekar/team23-ngo-backend/internal/app/system/media"
	"github.com/sahilshivekar/team23-ngo-backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlobStore_Memory(t *testing.T) {
	backend := storage.NewMemory(storage.MemoryConfig{BaseURL: "https://cdn.example.org"})
	store := media.NewBlobStore(backend)
	ctx := context.Background()

	src := testutil.TempFiles(t, "avatar", 1)[0]
	obj, err := store.Upload(ctx, src.Path, media.UploadOptions{
		Folder:      "ngohub",
		Filename:    "my photo.png",
		ContentType: "image/png",
	})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(obj.ID, "ngohub/"))
	assert.True(t, strings.HasSuffix(obj.ID, "my_photo.png"))
	assert.Equal(t, "https://cdn.example.org/"+obj.ID, obj.SecureURL)

	rc, info, err := backend.GetWithInfo(ctx, obj.ID)
	require.NoError(t, err)
	b, err := io.ReadAll(rc)
	rc.Close()
	require.NoError(t, err)
	assert.Equal(t, "image-0", string(b))
	assert.Equal(t, "image/png", info.ContentType)

	require.NoError(t, store.Delete(ctx, obj.ID))
	exists, err := backend.Exists(ctx, obj.ID)
	require.NoError(t, err)
	assert.False(t, exists)

	// Deleting again is not an error.
	require.NoError(t, store.Delete(ctx, obj.ID))
}

func TestBlobStore_Local(t *testing.T) {
	root := t.TempDir()
	backend, err := storage.NewLocal(storage.LocalConfig{BasePath: root, BaseURL: "/files/"})
	require.NoError(t, err)
	store := media.NewBlobStore(backend)
	ctx := context.Background()

	src := testutil.TempFiles(t, "logo", 1)[0]
	obj, err := store.Upload(ctx, src.Path, media.UploadOptions{Folder: "ngohub", Filename: "logo.png"})
	require.NoError(t, err)
	assert.Equal(t, "/files/"+obj.ID, obj.SecureURL)

	b, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(obj.ID)))
	require.NoError(t, err)
	assert.Equal(t, "image-0", string(b))

	require.NoError(t, store.Delete(ctx, obj.ID))
	_, err = os.Stat(filepath.Join(root, filepath.FromSlash(obj.ID)))
	assert.True(t, os.IsNotExist(err))

	// Keys that climb out of the root are refused and never retryable.
	err = store.Delete(ctx, "../outside.png")
	var se *media.StoreError
	require.ErrorAs(t, err, &se)
	assert.False(t, se.Transient)
}

func TestBlobStore_MissingLocalFile(t *testing.T) {
	store := media.NewBlobStore(storage.NewMemory(storage.MemoryConfig{}))

	_, err := store.Upload(context.Background(), filepath.Join(t.TempDir(), "gone.png"), media.UploadOptions{Folder: "ngohub"})
	var se *media.StoreError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "upload", se.Op)
	assert.False(t, se.Transient)
}

// failingBackend fails every Put and Delete with err.
type failingBackend struct {
	storage.Store
	err error
}

func (f failingBackend) Put(context.Context, string, io.Reader, *storage.PutOptions) error {
	return f.err
}

func (f failingBackend) Delete(context.Context, string) error { return f.err }

func TestBlobStore_ErrorClassification(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		transient bool
	}{
		{"throttled", &smithy.GenericAPIError{Code: "SlowDown", Message: "reduce your request rate"}, true},
		{"deadline", context.DeadlineExceeded, true},
		{"denied", storage.ErrPermissionDenied, false},
		{"no bucket", storage.ErrBucketNotFound, false},
		{"other", errors.New("boom"), false},
	}

	src := testutil.TempFiles(t, "avatar", 1)[0]
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := media.NewBlobStore(failingBackend{err: tt.err})

			_, err := store.Upload(context.Background(), src.Path, media.UploadOptions{Folder: "ngohub"})
			var se *media.StoreError
			require.ErrorAs(t, err, &se)
			assert.Equal(t, tt.transient, se.Transient)
			assert.ErrorIs(t, err, tt.err)

			err = store.Delete(context.Background(), "ngohub/x.png")
			require.ErrorAs(t, err, &se)
			assert.Equal(t, "delete", se.Op)
			assert.Equal(t, tt.transient, se.Transient)
		})
	}
}
