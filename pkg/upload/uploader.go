// pkg/upload/uploader.go
package upload

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/palfa/commondb/pkg/record"
)

// Resolver opens the database behind a logical target name such as "default"
type Resolver interface {
	Open(ctx context.Context, name string) (*sqlx.DB, error)
}

// Uploader runs the verified-write protocol: write a record, re-read and
// compare it, then cascade the assigned identifier to its dependents and
// upload them the same way. It keeps no state between calls.
type Uploader struct {
	endpoint Endpoint
	verifier *Verifier
	resolver Resolver
	logger   *zap.Logger
}

// NewUploader creates a new uploader
func NewUploader(endpoint Endpoint, logger *zap.Logger) *Uploader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Uploader{
		endpoint: endpoint,
		verifier: NewVerifier(logger.Named("verifier")),
		logger:   logger,
	}
}

// WithResolver sets the resolver used by UploadNamed
func (u *Uploader) WithResolver(resolver Resolver) *Uploader {
	u.resolver = resolver
	return u
}

// Verifier returns the verifier used after each write
func (u *Uploader) Verifier() *Verifier {
	return u.verifier
}

// Upload writes item and its dependents to target and returns the
// identifier assigned to item. Any failure aborts the chain; nothing is
// committed or rolled back here, that is up to whoever owns target.
func (u *Uploader) Upload(ctx context.Context, item Uploadable, target Target) (int64, error) {
	logger := u.logger.With(zap.String("upload_id", uuid.NewString()))
	start := time.Now()

	id, err := u.upload(ctx, item, target, logger, 0)
	if err != nil {
		logger.Error("Upload failed",
			zap.Duration("duration", time.Since(start)),
			zap.Error(err))
		return 0, err
	}

	logger.Info("Upload complete",
		zap.Int64("id", id),
		zap.Duration("duration", time.Since(start)))
	return id, nil
}

// UploadNamed resolves a logical target name, uploads with autocommit
// semantics and closes the connection afterwards
func (u *Uploader) UploadNamed(ctx context.Context, item Uploadable, name string) (int64, error) {
	if u.resolver == nil {
		return 0, fmt.Errorf("no resolver configured for target %q", name)
	}

	db, err := u.resolver.Open(ctx, name)
	if err != nil {
		return 0, fmt.Errorf("failed to open target %q: %w", name, err)
	}
	defer db.Close()

	return u.Upload(ctx, item, db)
}

func (u *Uploader) upload(ctx context.Context, item Uploadable, target Target, logger *zap.Logger, depth int) (int64, error) {
	rec := item.Record()
	schema := rec.Schema()
	key := rec.NaturalKey()

	// Dependents must hold their owner's identifier before touching the DB
	if !rec.ParentAssigned() {
		return 0, fmt.Errorf("%s (%s): %w", schema.Name, key, record.ErrParentUnset)
	}

	logger = logger.With(
		zap.String("schema", schema.Name),
		zap.Stringer("key", key),
		zap.Int("depth", depth))

	id, err := u.endpoint.Load(ctx, rec, target)
	if err != nil {
		return 0, fmt.Errorf("failed to write %s (%s): %w", schema.Name, key, err)
	}
	logger.Debug("Record written", zap.Int64("id", id))

	discrepancies, err := u.verifier.Compare(ctx, rec, target)
	if err != nil {
		return 0, err
	}
	if len(discrepancies) > 0 {
		fields := make([]string, len(discrepancies))
		for i, d := range discrepancies {
			fields[i] = d.Field
		}
		return 0, &Error{Kind: KindMismatch, Schema: schema.Name, Key: key, Fields: fields}
	}
	logger.Info("Record verified", zap.Int64("id", id))

	deps := item.Dependents()
	for _, dep := range deps {
		if err := dep.Record().AssignParent(id); err != nil {
			return 0, &Error{Kind: KindDependent, Schema: schema.Name, Key: key, Err: err}
		}
	}

	for i, dep := range deps {
		if _, err := u.upload(ctx, dep, target, logger, depth+1); err != nil {
			logger.Warn("Dependent upload failed, skipping the rest",
				zap.Int("index", i),
				zap.Int("remaining", len(deps)-i-1))
			return 0, &Error{Kind: KindDependent, Schema: schema.Name, Key: key, Err: err}
		}
	}

	return id, nil
}
