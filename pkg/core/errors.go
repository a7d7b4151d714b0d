package core

import (
	"errors"
	"fmt"
)

// Common errors.
var (
	ErrReadOnly  = errors.New("store is in read-only mode")
	ErrInvalidID = errors.New("invalid ticket id")
)

// EncodingError reports that a payload could not be rendered as a barcode.
type EncodingError struct {
	Err error
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("failed to generate QR code: %v", e.Err)
}

func (e *EncodingError) Unwrap() error { return e.Err }

// PersistenceError reports a failed filesystem operation.
type PersistenceError struct {
	Op   string // e.g. "initialize storage", "save ticket"
	Path string
	Err  error
}

func (e *PersistenceError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("failed to %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("failed to %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
