package tessera

import (
	"log/slog"

	"github.com/aretw0/tessera/internal/platform"
	"github.com/aretw0/tessera/pkg/adapters/qr"
	"github.com/aretw0/tessera/pkg/core"
)

// Version exposes the version of the library.
const Version = "0.3.0"

// --- Types ---

// Service is the façade exposing generate, list and clear.
type Service = core.Service

// Payload is the caller-supplied data attached to a ticket.
type Payload = core.Payload

// --- Configuration ---

// Option defines a functional option for configuring tessera.
type Option = platform.Option

// WithLogger sets the logger for the service and the store.
func WithLogger(logger *slog.Logger) Option {
	return platform.WithLogger(logger)
}

// WithRepository allows injecting a custom store.
func WithRepository(repo core.Repository) Option {
	return platform.WithRepository(repo)
}

// WithEncoder allows injecting a custom barcode encoder.
func WithEncoder(enc core.Encoder) Option {
	return platform.WithEncoder(enc)
}

// WithMustExist ensures the storage root must already exist.
func WithMustExist(must bool) Option {
	return platform.WithMustExist(must)
}

// WithReadOnly opens the store without write access.
func WithReadOnly(enabled bool) Option {
	return platform.WithReadOnly(enabled)
}

// WithForceTemp forces the use of a temporary directory (useful for testing).
func WithForceTemp(force bool) Option {
	return platform.WithForceTemp(force)
}

// WithDevSafety controls the sandbox used under `go run` and `go test`.
func WithDevSafety(enabled bool) Option {
	return platform.WithDevSafety(enabled)
}

// WithIndex enables or disables the metadata index.
func WithIndex(enabled bool) Option {
	return platform.WithIndex(enabled)
}

// WithQRLevel sets the QR error correction level.
func WithQRLevel(level qr.Level) Option {
	return platform.WithQRLevel(level)
}

// WithQRSize sets the QR image size in pixels.
func WithQRSize(size int) Option {
	return platform.WithQRSize(size)
}

// WithWatcherErrorHandler registers a callback for watcher errors.
func WithWatcherErrorHandler(fn func(error)) Option {
	return platform.WithWatcherErrorHandler(fn)
}

// --- Factory ---

// New creates a Service storing tickets under path.
// An empty path selects DefaultRoot.
func New(path string, opts ...Option) (*core.Service, error) {
	return platform.New(path, opts...)
}

// Init initializes the store explicitly.
func Init(path string, opts ...Option) (core.Repository, error) {
	return platform.Init(path, opts...)
}

// --- Safety & Utils ---

// DefaultRoot returns the per-user ticket directory.
func DefaultRoot() (string, error) {
	return platform.DefaultRoot()
}

// ResolveRootPath determines the actual storage root based on safety rules.
func ResolveRootPath(userPath string, forceTemp bool) string {
	return platform.ResolveRootPath(userPath, forceTemp)
}

// IsDevRun checks if the current process is running via `go run` or `go test`.
func IsDevRun() bool {
	return platform.IsDevRun()
}
