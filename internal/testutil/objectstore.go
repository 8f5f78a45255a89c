package testutil

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"

	"github.com/sahilshivekar/team23-ngo-backend/internal/app/system/media"
)

// ObjectStore is an in-memory media.ObjectStore that records every call.
type ObjectStore struct {
	mu      sync.Mutex
	seq     int
	objects map[string]bool

	Uploads []string // local paths passed to Upload, in call order
	Deletes []string // remote ids passed to Delete, in call order

	// FailUpload, when set, is consulted before each upload; a non-nil
	// return fails that upload.
	FailUpload func(localPath string, opts media.UploadOptions) error
	// FailDelete, when set, fails every delete.
	FailDelete error
}

// NewObjectStore returns an empty recording store.
func NewObjectStore() *ObjectStore {
	return &ObjectStore{objects: map[string]bool{}}
}

func (s *ObjectStore) Upload(ctx context.Context, localPath string, opts media.UploadOptions) (media.RemoteObject, error) {
	s.mu.Lock()
	s.Uploads = append(s.Uploads, localPath)
	fail := s.FailUpload
	s.mu.Unlock()

	if fail != nil {
		if err := fail(localPath, opts); err != nil {
			return media.RemoteObject{}, err
		}
	}
	if _, err := os.Stat(localPath); err != nil {
		return media.RemoteObject{}, &media.StoreError{Op: "upload", Key: localPath, Err: err}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	id := fmt.Sprintf("%s/obj-%03d", opts.Folder, s.seq)
	s.objects[id] = true
	return media.RemoteObject{ID: id, SecureURL: "https://cdn.test/" + id}, nil
}

func (s *ObjectStore) Delete(ctx context.Context, remoteID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Deletes = append(s.Deletes, remoteID)
	if s.FailDelete != nil {
		return s.FailDelete
	}
	delete(s.objects, remoteID)
	return nil
}

// Has reports whether remoteID is currently stored.
func (s *ObjectStore) Has(remoteID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.objects[remoteID]
}

// UploadCount returns the number of Upload calls.
func (s *ObjectStore) UploadCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Uploads)
}

// DeleteCount returns the number of Delete calls.
func (s *ObjectStore) DeleteCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Deletes)
}

// Stored returns the number of live objects.
func (s *ObjectStore) Stored() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.objects)
}

// TempFiles writes n temporary files for field and registers their removal.
func TempFiles(t testing.TB, field string, n int) []media.LocalFile {
	t.Helper()
	dir := t.TempDir()
	files := make([]media.LocalFile, 0, n)
	for i := 0; i < n; i++ {
		f, err := os.CreateTemp(dir, "upload-*.png")
		if err != nil {
			t.Fatalf("create temp file: %v", err)
		}
		if _, err := f.WriteString(fmt.Sprintf("image-%d", i)); err != nil {
			t.Fatalf("write temp file: %v", err)
		}
		f.Close()
		files = append(files, media.LocalFile{
			Field:       field,
			Path:        f.Name(),
			Filename:    fmt.Sprintf("%s-%d.png", field, i),
			ContentType: "image/png",
			Size:        7,
		})
	}
	return files
}

// Surviving returns the local paths of files that still exist.
func Surviving(files []media.LocalFile) []string {
	var out []string
	for _, f := range files {
		if _, err := os.Stat(f.Path); err == nil {
			out = append(out, f.Path)
		}
	}
	return out
}
