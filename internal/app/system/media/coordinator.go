package media

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/sahilshivekar/team23-ngo-backend/internal/app/system/apperr"
	"github.com/sahilshivekar/team23-ngo-backend/internal/domain/models"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// LocalFile is an attachment received into a local temporary file.
type LocalFile struct {
	Field       string // form field the file arrived under
	Path        string // temporary file on local disk
	Filename    string // client supplied name
	ContentType string
	Size        int64
}

// DefaultConcurrency bounds parallel uploads within one batch.
const DefaultConcurrency = 4

// Coordinator uploads local temporaries and deletes remote assets. It never
// leaves a temporary behind, on success or failure.
type Coordinator struct {
	store       ObjectStore
	log         *zap.Logger
	concurrency int
	folder      string
}

// Option customises a Coordinator.
type Option func(*Coordinator)

// WithConcurrency sets the per-batch upload limit.
func WithConcurrency(n int) Option {
	return func(c *Coordinator) {
		if n > 0 {
			c.concurrency = n
		}
	}
}

// WithFolder sets the folder objects are stored under.
func WithFolder(folder string) Option {
	return func(c *Coordinator) { c.folder = folder }
}

// NewCoordinator returns a Coordinator backed by store.
func NewCoordinator(store ObjectStore, logger *zap.Logger, opts ...Option) *Coordinator {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Coordinator{store: store, log: logger, concurrency: DefaultConcurrency, folder: "ngohub"}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Upload sends every file to the object store, concurrently, and returns
// assets in input order. Each temporary is removed as soon as its upload
// succeeds. If any upload fails, all temporaries of the batch are removed and
// UploadFailed is returned; siblings that already reached the store are left
// as orphans and logged.
func (c *Coordinator) Upload(ctx context.Context, files []LocalFile) ([]models.MediaAsset, error) {
	if len(files) == 0 {
		return nil, nil
	}

	assets := make([]models.MediaAsset, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)

	for i, f := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			obj, err := c.store.Upload(gctx, f.Path, UploadOptions{
				Folder:      c.folder,
				Filename:    f.Filename,
				ContentType: f.ContentType,
			})
			if err != nil {
				return fmt.Errorf("upload %s: %w", f.Field, err)
			}
			assets[i] = models.MediaAsset{RemoteID: obj.ID, SecureURL: obj.SecureURL}
			c.removeTemp(f.Path)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		c.Discard(files)
		for _, a := range assets {
			if !a.IsZero() {
				c.log.Warn("orphaned remote asset after failed batch",
					zap.String("remote_id", a.RemoteID))
			}
		}
		return nil, apperr.UploadFailed("Failed to upload file", isTransient(err), err)
	}
	return assets, nil
}

// Discard removes the local temporaries of files. Missing files are ignored.
func (c *Coordinator) Discard(files []LocalFile) {
	for _, f := range files {
		c.removeTemp(f.Path)
	}
}

// Delete removes remote assets. It is best-effort: failures are logged and
// never returned. Deletes outlive cancellation of ctx.
func (c *Coordinator) Delete(ctx context.Context, assets ...models.MediaAsset) {
	ctx = context.WithoutCancel(ctx)
	for _, a := range assets {
		if a.IsZero() {
			continue
		}
		if err := c.store.Delete(ctx, a.RemoteID); err != nil {
			c.log.Warn("failed to delete remote asset",
				zap.String("remote_id", a.RemoteID), zap.Error(err))
		}
	}
}

// Replace supersedes a single-slot asset. The new file is uploaded and commit
// must succeed before old is deleted, so a commit failure keeps old intact and
// leaves the new upload as an orphan.
func (c *Coordinator) Replace(ctx context.Context, old *models.MediaAsset, file LocalFile, commit func(context.Context, models.MediaAsset) error) (models.MediaAsset, error) {
	uploaded, err := c.Upload(ctx, []LocalFile{file})
	if err != nil {
		return models.MediaAsset{}, err
	}
	next := uploaded[0]

	if err := commit(ctx, next); err != nil {
		c.log.Warn("replacement not committed; new asset orphaned",
			zap.String("remote_id", next.RemoteID), zap.Error(err))
		return models.MediaAsset{}, err
	}

	if old != nil && !old.IsZero() && old.RemoteID != next.RemoteID {
		c.Delete(ctx, *old)
	}
	return next, nil
}

func (c *Coordinator) removeTemp(path string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		c.log.Warn("failed to remove temporary upload", zap.String("path", path), zap.Error(err))
	}
}
