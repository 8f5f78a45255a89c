package media

import (
	"context"
	"errors"
	"os"
	"time"

	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/smithy-go"
	"github.com/dalemusser/waffle/pantry/storage"
)

// BlobStore adapts a waffle storage backend (local disk, S3, memory) to the
// ObjectStore the coordinator drives. Key prefixes and public URLs are the
// backend's concern.
type BlobStore struct {
	store storage.Store
	now   func() time.Time
}

// NewBlobStore wraps store.
func NewBlobStore(store storage.Store) *BlobStore {
	return &BlobStore{store: store, now: time.Now}
}

// Upload streams the file at localPath into the backend under a fresh key.
func (b *BlobStore) Upload(ctx context.Context, localPath string, opts UploadOptions) (RemoteObject, error) {
	name := opts.Filename
	if name == "" {
		name = localPath
	}
	key := objectKey(opts.Folder, name, b.now().UTC())

	f, err := os.Open(localPath)
	if err != nil {
		return RemoteObject{}, &StoreError{Op: "upload", Key: key, Err: err}
	}
	defer f.Close()

	if err := b.store.Put(ctx, key, f, &storage.PutOptions{ContentType: opts.ContentType}); err != nil {
		return RemoteObject{}, &StoreError{Op: "upload", Key: key, Transient: transientBackend(err), Err: err}
	}
	return RemoteObject{ID: key, SecureURL: b.store.URL(key)}, nil
}

// Delete removes the object. Deleting a missing key is not an error.
func (b *BlobStore) Delete(ctx context.Context, remoteID string) error {
	err := b.store.Delete(ctx, remoteID)
	if err == nil || errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	return &StoreError{Op: "delete", Key: remoteID, Transient: transientBackend(err), Err: err}
}

// transientBackend treats throttling and 5xx responses as retryable. The
// backend's own sentinels (bad path, denied, missing bucket) never are.
func transientBackend(err error) bool {
	switch {
	case errors.Is(err, storage.ErrPermissionDenied),
		errors.Is(err, storage.ErrInvalidPath),
		errors.Is(err, storage.ErrBucketNotFound),
		errors.Is(err, storage.ErrInvalidConfig):
		return false
	}

	var re *awshttp.ResponseError
	if errors.As(err, &re) {
		code := re.HTTPStatusCode()
		return code >= 500 || code == 429
	}
	var api smithy.APIError
	if errors.As(err, &api) {
		switch api.ErrorCode() {
		case "SlowDown", "Throttling", "ThrottlingException", "RequestTimeout":
			return true
		}
	}
	return isTransient(err)
}
