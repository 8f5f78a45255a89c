// Package media moves uploaded files from local temporaries into a remote
// object store and owns the compensating deletes that keep the two sides
// from leaking.
package media

import (
	"context"
	"errors"
	"fmt"
	"net"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// UploadOptions describe where and how an object is stored.
type UploadOptions struct {
	Folder      string
	Filename    string
	ContentType string
}

// RemoteObject is what the store hands back for a stored file.
type RemoteObject struct {
	ID        string
	SecureURL string
}

// ObjectStore is the remote object store collaborator.
type ObjectStore interface {
	Upload(ctx context.Context, localPath string, opts UploadOptions) (RemoteObject, error)
	Delete(ctx context.Context, remoteID string) error
}

// StoreError is returned by ObjectStore implementations so the coordinator
// can tell retryable failures from permanent ones.
type StoreError struct {
	Op        string
	Key       string
	Transient bool
	Err       error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("object store %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// isTransient reports whether err is worth retrying by the client.
func isTransient(err error) bool {
	var se *StoreError
	if errors.As(err, &se) {
		return se.Transient
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

// objectKey builds folder/YYYY/MM/uuid-filename.
func objectKey(folder, filename string, now time.Time) string {
	dateDir := fmt.Sprintf("%04d/%02d", now.Year(), now.Month())
	unique := fmt.Sprintf("%s-%s", uuid.New().String()[:8], sanitizeFilename(filename))
	return filepath.ToSlash(filepath.Join(folder, dateDir, unique))
}

// sanitizeFilename keeps only safe filename characters.
func sanitizeFilename(filename string) string {
	filename = filepath.Base(filename)

	result := make([]byte, 0, len(filename))
	for i := 0; i < len(filename); i++ {
		c := filename[i]
		if isAllowedFilenameChar(c) {
			result = append(result, c)
		} else {
			result = append(result, '_')
		}
	}

	if len(result) == 0 || string(result) == "." {
		return "file"
	}
	if len(result) > 100 {
		ext := filepath.Ext(string(result))
		if len(ext) > 0 && len(ext) < 10 {
			result = append(result[:100-len(ext)], ext...)
		} else {
			result = result[:100]
		}
	}
	return string(result)
}

func isAllowedFilenameChar(c byte) bool {
	return (c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9') ||
		c == '-' || c == '_' || c == '.'
}
