package media_test

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/sahilshivekar/team23-ngo-backend/internal/app/system/apperr"
	"github.com/sahilshivekar/team23-ngo-backend/internal/app/system/media"
	"github.com/sahilshivekar/team23-ngo-backend/internal/domain/models"
	"github.com/sahilshivekar/team23-ngo-backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestUpload_AllSucceed_RemovesTemps(t *testing.T) {
	store := testutil.NewObjectStore()
	c := media.NewCoordinator(store, zap.NewNop())
	files := testutil.TempFiles(t, "images", 5)

	assets, err := c.Upload(context.Background(), files)
	require.NoError(t, err)
	require.Len(t, assets, 5)
	for _, a := range assets {
		assert.NotEmpty(t, a.RemoteID)
		assert.True(t, strings.HasPrefix(a.SecureURL, "https://"))
		assert.True(t, store.Has(a.RemoteID))
	}
	assert.Empty(t, testutil.Surviving(files))
}

func TestUpload_Empty(t *testing.T) {
	store := testutil.NewObjectStore()
	c := media.NewCoordinator(store, zap.NewNop())

	assets, err := c.Upload(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, assets)
	assert.Zero(t, store.UploadCount())
}

func TestUpload_OneFails_RemovesAllTemps(t *testing.T) {
	store := testutil.NewObjectStore()
	files := testutil.TempFiles(t, "images", 4)
	bad := files[2].Path
	store.FailUpload = func(localPath string, _ media.UploadOptions) error {
		if localPath == bad {
			return &media.StoreError{Op: "upload", Key: localPath, Err: errors.New("rejected")}
		}
		return nil
	}
	c := media.NewCoordinator(store, zap.NewNop(), media.WithConcurrency(1))

	_, err := c.Upload(context.Background(), files)
	require.Error(t, err)
	assert.Equal(t, apperr.KindUploadFailed, apperr.KindOf(err))
	assert.False(t, apperr.IsTransient(err))
	assert.Empty(t, testutil.Surviving(files))
}

func TestUpload_TransientFailure(t *testing.T) {
	store := testutil.NewObjectStore()
	store.FailUpload = func(string, media.UploadOptions) error {
		return &media.StoreError{Op: "upload", Transient: true, Err: errors.New("503 slow down")}
	}
	c := media.NewCoordinator(store, zap.NewNop())
	files := testutil.TempFiles(t, "avatar", 1)

	_, err := c.Upload(context.Background(), files)
	require.Error(t, err)
	assert.True(t, apperr.IsTransient(err))
	assert.Empty(t, testutil.Surviving(files))
}

func TestUpload_RunsConcurrently(t *testing.T) {
	store := testutil.NewObjectStore()
	var inFlight, peak int32
	release := make(chan struct{})
	store.FailUpload = func(string, media.UploadOptions) error {
		n := atomic.AddInt32(&inFlight, 1)
		for {
			p := atomic.LoadInt32(&peak)
			if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
				break
			}
		}
		if n == 3 {
			close(release)
		}
		<-release
		atomic.AddInt32(&inFlight, -1)
		return nil
	}
	c := media.NewCoordinator(store, zap.NewNop(), media.WithConcurrency(3))
	files := testutil.TempFiles(t, "images", 3)

	_, err := c.Upload(context.Background(), files)
	require.NoError(t, err)
	assert.Equal(t, int32(3), atomic.LoadInt32(&peak))
}

func TestDelete_BestEffort(t *testing.T) {
	store := testutil.NewObjectStore()
	store.FailDelete = errors.New("store down")
	c := media.NewCoordinator(store, zap.NewNop())

	c.Delete(context.Background(),
		models.MediaAsset{RemoteID: "a"}, models.MediaAsset{}, models.MediaAsset{RemoteID: "b"})
	assert.Equal(t, []string{"a", "b"}, store.Deletes)
}

func TestReplace_CommitsBeforeDeletingOld(t *testing.T) {
	store := testutil.NewObjectStore()
	c := media.NewCoordinator(store, zap.NewNop())
	ctx := context.Background()

	first, err := c.Upload(ctx, testutil.TempFiles(t, "avatar", 1))
	require.NoError(t, err)
	old := first[0]

	var committed models.MediaAsset
	next, err := c.Replace(ctx, &old, testutil.TempFiles(t, "avatar", 1)[0], func(_ context.Context, a models.MediaAsset) error {
		assert.True(t, store.Has(old.RemoteID), "old asset deleted before commit")
		committed = a
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, committed, next)
	assert.False(t, store.Has(old.RemoteID))
	assert.True(t, store.Has(next.RemoteID))
}

func TestReplace_CommitFailureKeepsOld(t *testing.T) {
	store := testutil.NewObjectStore()
	c := media.NewCoordinator(store, zap.NewNop())
	ctx := context.Background()

	first, err := c.Upload(ctx, testutil.TempFiles(t, "avatar", 1))
	require.NoError(t, err)
	old := first[0]

	file := testutil.TempFiles(t, "avatar", 1)[0]
	_, err = c.Replace(ctx, &old, file, func(context.Context, models.MediaAsset) error {
		return errors.New("write failed")
	})
	require.Error(t, err)
	assert.True(t, store.Has(old.RemoteID))
	assert.Equal(t, 2, store.Stored(), "new upload stays as an orphan")
	assert.Zero(t, store.DeleteCount())
	assert.Empty(t, testutil.Surviving([]media.LocalFile{file}))
}

func TestReplace_NoPreviousAsset(t *testing.T) {
	store := testutil.NewObjectStore()
	c := media.NewCoordinator(store, zap.NewNop())

	next, err := c.Replace(context.Background(), nil, testutil.TempFiles(t, "coverImage", 1)[0],
		func(context.Context, models.MediaAsset) error { return nil })
	require.NoError(t, err)
	assert.NotEmpty(t, next.RemoteID)
	assert.Zero(t, store.DeleteCount())
}

func TestReplace_UploadFailureSkipsCommit(t *testing.T) {
	store := testutil.NewObjectStore()
	store.FailUpload = func(string, media.UploadOptions) error { return errors.New("denied") }
	c := media.NewCoordinator(store, zap.NewNop())
	old := models.MediaAsset{RemoteID: "old", SecureURL: "https://cdn.test/old"}

	called := false
	_, err := c.Replace(context.Background(), &old, testutil.TempFiles(t, "avatar", 1)[0],
		func(context.Context, models.MediaAsset) error { called = true; return nil })
	require.Error(t, err)
	assert.False(t, called)
	assert.Zero(t, store.DeleteCount())
}
