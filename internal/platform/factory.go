package platform

import (
	"context"
	"fmt"

	"github.com/aretw0/tessera/pkg/adapters/fs"
	"github.com/aretw0/tessera/pkg/adapters/qr"
	"github.com/aretw0/tessera/pkg/core"
)

// New wires a store and an encoder into a ready-to-use Service.
//
//	svc, err := tessera.New("./tickets", tessera.WithLogger(logger))
func New(path string, opts ...Option) (*core.Service, error) {
	repo, err := Init(path, opts...)
	if err != nil {
		return nil, err
	}

	o := buildOptions(opts)

	enc := o.encoder
	if enc == nil {
		enc = qr.NewEncoder(qr.WithLevel(o.qrLevel), qr.WithSize(o.qrSize))
	}

	return core.NewService(repo, enc, core.WithServiceLogger(o.logger)), nil
}

// Init builds and initializes the store for path.
// It returns the configured core.Repository.
func Init(path string, opts ...Option) (core.Repository, error) {
	o := buildOptions(opts)

	if o.repository != nil {
		return o.repository, nil
	}

	repo, err := initFS(path, o)
	if err != nil {
		return nil, err
	}

	if err := repo.Initialize(context.Background()); err != nil {
		return nil, err
	}
	return repo, nil
}

// initFS handles path resolution and configuration of the filesystem store.
func initFS(path string, o *options) (*fs.Repository, error) {
	if path == "" {
		def, err := DefaultRoot()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve default storage root: %w", err)
		}
		path = def
	}

	// Read-only runs cannot destroy anything, so they bypass the sandbox.
	bypassSafety := o.readOnly || !o.devSafety
	useTemp := o.forceTemp || (IsDevRun() && !bypassSafety)
	resolved := ResolveRootPath(path, useTemp)

	if o.logger != nil {
		if useTemp && resolved != path {
			o.logger.Warn("running in SAFE MODE (dev sandbox)", "original_path", path, "resolved_path", resolved)
		} else {
			o.logger.Debug("using storage root", "path", resolved, "read_only", o.readOnly)
		}
	}

	return fs.NewRepository(fs.Config{
		Path:         resolved,
		MustExist:    o.mustExist,
		ReadOnly:     o.readOnly,
		Index:        o.index,
		Logger:       o.logger,
		ErrorHandler: o.errorHandler,
	}), nil
}
