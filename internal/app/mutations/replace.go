package mutations

import (
	"context"
	"errors"

	"github.com/sahilshivekar/team23-ngo-backend/internal/app/system/apperr"
	"github.com/sahilshivekar/team23-ngo-backend/internal/app/system/media"
	"github.com/sahilshivekar/team23-ngo-backend/internal/app/system/workflow"
	"github.com/sahilshivekar/team23-ngo-backend/internal/domain/models"
	"go.uber.org/zap"
)

var slotMissing = map[string]string{
	SlotAvatar:     "Avatar is missing",
	SlotCoverImage: "Cover image is missing",
}

// slotTarget binds a single-slot asset to its owner.
type slotTarget[T any] struct {
	name    string
	load    func(ctx context.Context) (T, error)
	current func(T) *models.MediaAsset
	commit  func(ctx context.Context, asset models.MediaAsset) error
}

// replaceSlot uploads the new asset, commits it, and only then lets the
// coordinator delete the superseded one.
func replaceSlot[T any](ctx context.Context, s *Service, slot string, files []media.LocalFile, t slotTarget[T]) (T, error) {
	var zero T

	if err := (workflow.AttachmentLimits{slot: 1}).Check(files); err != nil {
		s.media.Discard(files)
		return zero, err
	}
	if len(files) == 0 {
		return zero, apperr.ValidationFailed(slot, slotMissing[slot])
	}

	existing, err := t.load(ctx)
	if err != nil {
		s.media.Discard(files)
		return zero, typed(err, "load "+t.name)
	}

	if _, err := s.media.Replace(ctx, t.current(existing), files[0], t.commit); err != nil {
		return zero, typed(err, "replace "+t.name+" "+slot)
	}

	out, err := t.load(ctx)
	if apperr.Is(err, apperr.KindNotFound) {
		err = apperr.InternalInconsistency("Something went wrong while updating "+slot, err)
		s.log.Error("read-back verification failed",
			zap.String("workflow", t.name+" "+slot),
			zap.Error(err))
		return zero, err
	}
	if err != nil {
		return zero, typed(err, "load "+t.name)
	}
	return out, nil
}

// typed keeps classified errors and reports anything else as Internal.
func typed(err error, op string) error {
	var ae *apperr.Error
	if errors.As(err, &ae) {
		return err
	}
	return apperr.Internal("Internal server error", errors.Join(errors.New(op), err))
}
