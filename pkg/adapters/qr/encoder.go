// Package qr renders serialized tickets as QR codes.
package qr

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/aretw0/introspection"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/aretw0/tessera/pkg/core"
)

// DataURIPrefix prefixes every data URI produced by the encoder.
const DataURIPrefix = "data:image/png;base64,"

// DefaultSize is the PNG width and height in pixels.
const DefaultSize = 256

// Level is the QR error correction level.
type Level = qrcode.RecoveryLevel

const (
	LevelLow     = qrcode.Low
	LevelMedium  = qrcode.Medium
	LevelHigh    = qrcode.High
	LevelHighest = qrcode.Highest
)

// ParseLevel maps the conventional letters L, M, Q, H to a Level.
func ParseLevel(s string) (Level, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "L":
		return LevelLow, nil
	case "", "M":
		return LevelMedium, nil
	case "Q":
		return LevelHigh, nil
	case "H":
		return LevelHighest, nil
	}
	return LevelMedium, fmt.Errorf("unknown QR level %q (want L, M, Q or H)", s)
}

func levelName(l Level) string {
	switch l {
	case LevelLow:
		return "L"
	case LevelHigh:
		return "Q"
	case LevelHighest:
		return "H"
	default:
		return "M"
	}
}

// Encoder implements core.Encoder with go-qrcode.
type Encoder struct {
	level Level
	size  int
}

// Option configures an Encoder.
type Option func(*Encoder)

// WithLevel sets the error correction level. Higher levels lower capacity.
func WithLevel(level Level) Option {
	return func(e *Encoder) {
		e.level = level
	}
}

// WithSize sets the PNG size in pixels. Non-positive values keep the default.
func WithSize(size int) Option {
	return func(e *Encoder) {
		if size > 0 {
			e.size = size
		}
	}
}

// NewEncoder creates an encoder with medium error correction and 256px images.
func NewEncoder(opts ...Option) *Encoder {
	e := &Encoder{
		level: LevelMedium,
		size:  DefaultSize,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// EncodeImage renders data as PNG bytes.
// Content beyond the capacity of the configured level fails with *core.EncodingError.
func (e *Encoder) EncodeImage(data []byte) ([]byte, error) {
	png, err := qrcode.Encode(string(data), e.level, e.size)
	if err != nil {
		return nil, &core.EncodingError{Err: err}
	}
	return png, nil
}

// EncodeDataURI renders data as a base64 PNG data URI.
func (e *Encoder) EncodeDataURI(data []byte) (string, error) {
	png, err := e.EncodeImage(data)
	if err != nil {
		return "", err
	}
	return DataURIPrefix + base64.StdEncoding.EncodeToString(png), nil
}

// EncoderState exposes the encoder configuration for observability.
type EncoderState struct {
	Level string `json:"level"`
	Size  int    `json:"size"`
}

// State implements introspection.Introspectable.
func (e *Encoder) State() any {
	return EncoderState{Level: levelName(e.level), Size: e.size}
}

// ComponentType implements introspection.Component.
func (e *Encoder) ComponentType() string {
	return "qr-encoder"
}

var _ core.Encoder = (*Encoder)(nil)
var _ introspection.Introspectable = (*Encoder)(nil)
var _ introspection.Component = (*Encoder)(nil)
