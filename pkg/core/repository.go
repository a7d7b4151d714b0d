package core

import "context"

// Repository defines the contract for storing and retrieving tickets.
// Adhering to this interface allows the core to be independent of the
// underlying storage mechanism.
type Repository interface {
	// Initialize ensures the underlying storage is ready (e.g., create directories).
	Initialize(ctx context.Context) error

	// Save persists a ticket together with its rendered image and returns
	// the location of the image artifact.
	Save(ctx context.Context, t Ticket, image []byte) (string, error)

	// List returns all readable tickets. Unreadable records are skipped.
	// Order is unspecified.
	List(ctx context.Context) ([]StoredTicket, error)

	// Clear removes every stored ticket.
	Clear(ctx context.Context) error
}

// Watchable defines an interface for repositories that can report changes.
type Watchable interface {
	Watch(ctx context.Context, pattern string) (<-chan Event, error)
}

// Encoder renders serialized records as barcodes.
// Both methods must be deterministic for the same input.
type Encoder interface {
	// EncodeImage returns PNG bytes.
	EncodeImage(data []byte) ([]byte, error)

	// EncodeDataURI returns a self-contained data URI of the PNG.
	EncodeDataURI(data []byte) (string, error)
}
