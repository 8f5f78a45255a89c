package workflow

import (
	"context"
	"errors"

	"github.com/sahilshivekar/team23-ngo-backend/internal/app/system/apperr"
	"github.com/sahilshivekar/team23-ngo-backend/internal/app/system/media"
	"github.com/sahilshivekar/team23-ngo-backend/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Stage is a pipeline state.
type Stage string

const (
	Received      Stage = "received"
	Validated     Stage = "validated"
	MediaUploaded Stage = "media_uploaded"
	Persisted     Stage = "persisted"
	Verified      Stage = "verified"
	Failed        Stage = "failed"
)

// Uploader is the media side of the pipeline.
type Uploader interface {
	Upload(ctx context.Context, files []media.LocalFile) ([]models.MediaAsset, error)
	Discard(files []media.LocalFile)
	Delete(ctx context.Context, assets ...models.MediaAsset)
}

// Observer is told about every stage transition.
type Observer func(workflow string, from, to Stage, err error)

// Definition instantiates the pipeline for one resource kind and operation.
// P is the decoded payload, T the verified result.
type Definition[P any, T any] struct {
	Name        string
	Rules       RuleSet
	Attachments AttachmentLimits

	// Decode applies cross-field rules and builds the payload.
	Decode func(ctx context.Context, in Input) (P, error)
	// Precondition checks uniqueness and references before any upload.
	Precondition func(ctx context.Context, p P) error
	// Persist writes the resource and returns its identifier.
	Persist func(ctx context.Context, p P, m Media) (primitive.ObjectID, error)
	// Load re-reads the resource by identifier.
	Load func(ctx context.Context, id primitive.ObjectID) (T, error)
}

// Engine runs definitions.
type Engine struct {
	media   Uploader
	log     *zap.Logger
	observe Observer
}

// NewEngine returns an Engine uploading through u.
func NewEngine(u Uploader, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{media: u, log: logger}
}

// Observe installs an observer. Pass nil to remove it.
func (e *Engine) Observe(o Observer) { e.observe = o }

type run struct {
	e     *Engine
	name  string
	stage Stage
}

func (r *run) to(next Stage, err error) {
	r.e.log.Debug("workflow stage",
		zap.String("workflow", r.name),
		zap.String("from", string(r.stage)),
		zap.String("to", string(next)),
		zap.Error(err))
	if r.e.observe != nil {
		r.e.observe(r.name, r.stage, next, err)
	}
	r.stage = next
}

// Run executes def against in. Whatever happens, no local temporary of in
// survives the call.
func Run[P any, T any](ctx context.Context, e *Engine, def Definition[P, T], in Input) (T, error) {
	var zero T
	r := &run{e: e, name: def.Name, stage: Received}
	if in.Fields == nil {
		in.Fields = Fields{}
	}

	// Everything before the upload stage discards temporaries on failure.
	beforeUpload := func(err error) (T, error) {
		e.media.Discard(in.Files)
		r.to(Failed, err)
		return zero, err
	}

	if err := def.Rules.Validate(in.Fields); err != nil {
		return beforeUpload(err)
	}
	if err := def.Attachments.Check(in.Files); err != nil {
		return beforeUpload(err)
	}
	p, err := def.Decode(ctx, in)
	if err != nil {
		return beforeUpload(classify(err, "decode "+def.Name))
	}
	r.to(Validated, nil)

	if def.Precondition != nil {
		if err := def.Precondition(ctx, p); err != nil {
			return beforeUpload(classify(err, "precondition "+def.Name))
		}
	}

	m, err := e.upload(ctx, in.Files)
	if err != nil {
		return beforeUpload(err)
	}
	r.to(MediaUploaded, nil)

	id, err := def.Persist(ctx, p, m)
	if err != nil {
		err = classify(err, "persist "+def.Name)
		uploaded := m.All()
		if apperr.Is(err, apperr.KindConflict) {
			// The write was rejected outright, so nothing references the
			// fresh uploads.
			e.media.Delete(ctx, uploaded...)
		} else if len(uploaded) > 0 {
			e.log.Warn("persist failed after upload; assets left in store",
				zap.String("workflow", def.Name),
				zap.Int("assets", len(uploaded)),
				zap.Error(err))
		}
		r.to(Failed, err)
		return zero, err
	}
	r.to(Persisted, nil)

	out, err := def.Load(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			err = apperr.InternalInconsistency("Something went wrong while saving "+def.Name, err)
			e.log.Error("read-back verification failed",
				zap.String("workflow", def.Name),
				zap.String("id", id.Hex()),
				zap.Error(err))
		} else {
			err = classify(err, "load "+def.Name)
		}
		r.to(Failed, err)
		return zero, err
	}
	r.to(Verified, nil)
	return out, nil
}

// upload sends all files as one batch and groups the results by field.
func (e *Engine) upload(ctx context.Context, files []media.LocalFile) (Media, error) {
	m := Media{}
	if len(files) == 0 {
		return m, nil
	}
	assets, err := e.media.Upload(ctx, files)
	if err != nil {
		return nil, err
	}
	for i, f := range files {
		m[f.Field] = append(m[f.Field], assets[i])
	}
	return m, nil
}

// classify keeps typed errors and turns anything else into Internal.
func classify(err error, op string) error {
	var ae *apperr.Error
	if errors.As(err, &ae) {
		return err
	}
	return apperr.Internal("Internal server error", errors.Join(errors.New(op), err))
}
