package platform

import (
	"log/slog"

	"github.com/aretw0/tessera/pkg/adapters/qr"
	"github.com/aretw0/tessera/pkg/core"
)

// options holds the internal configuration for the tessera service.
type options struct {
	repository   core.Repository
	encoder      core.Encoder
	logger       *slog.Logger
	mustExist    bool
	readOnly     bool
	forceTemp    bool
	devSafety    bool
	index        bool
	qrLevel      qr.Level
	qrSize       int
	errorHandler func(error)
}

// Option defines a functional option for configuring tessera.
type Option func(*options)

// defaultOptions returns the default configuration.
func defaultOptions() *options {
	return &options{
		devSafety: true,
		index:     true,
		qrLevel:   qr.LevelMedium,
		qrSize:    qr.DefaultSize,
	}
}

func buildOptions(opts []Option) *options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithLogger sets the logger for the service and the store.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithRepository allows injecting a custom store (e.g. an in-memory mock).
// If provided, the default filesystem store is skipped.
func WithRepository(repo core.Repository) Option {
	return func(o *options) {
		o.repository = repo
	}
}

// WithEncoder allows injecting a custom barcode encoder.
// If provided, the QR options are ignored.
func WithEncoder(enc core.Encoder) Option {
	return func(o *options) {
		o.encoder = enc
	}
}

// WithMustExist ensures the storage root must already exist.
func WithMustExist(must bool) Option {
	return func(o *options) {
		o.mustExist = must
	}
}

// WithReadOnly enables read-only mode.
// In this mode:
// 1. Save and Clear fail with core.ErrReadOnly.
// 2. The root is not created.
// 3. Index updates are not persisted to disk.
// 4. Dev Safety is BYPASSED (uses the real path).
func WithReadOnly(enabled bool) Option {
	return func(o *options) {
		o.readOnly = enabled
	}
}

// WithForceTemp forces the use of a temporary directory (useful for testing).
func WithForceTemp(force bool) Option {
	return func(o *options) {
		o.forceTemp = force
	}
}

// WithDevSafety controls the sandbox used when running via `go run` or `go test`.
// By default (true), roots outside the temp dir are redirected to a temporary
// directory so development runs never clear real tickets.
func WithDevSafety(enabled bool) Option {
	return func(o *options) {
		o.devSafety = enabled
	}
}

// WithIndex enables or disables the metadata index kept at the root.
// Enabled by default.
func WithIndex(enabled bool) Option {
	return func(o *options) {
		o.index = enabled
	}
}

// WithQRLevel sets the error correction level of generated codes.
func WithQRLevel(level qr.Level) Option {
	return func(o *options) {
		o.qrLevel = level
	}
}

// WithQRSize sets the PNG size in pixels of generated codes.
func WithQRSize(size int) Option {
	return func(o *options) {
		o.qrSize = size
	}
}

// WithWatcherErrorHandler registers a callback for errors raised while watching.
// Without it they are only logged.
func WithWatcherErrorHandler(fn func(error)) Option {
	return func(o *options) {
		o.errorHandler = fn
	}
}
