// Package core holds the ticket domain: the Ticket entity, its storable Record
// form, the ports implemented by adapters and the Service façade.
package core

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// TimestampLayout is the ISO-8601 layout used for Record timestamps.
// Millisecond precision matches what the ticket scanners expect.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// Payload represents the flexible key-value pairs attached to a ticket.
type Payload map[string]any

// Ticket is the central entity of the domain.
// It is immutable once created.
type Ticket struct {
	ID        string
	CreatedAt time.Time
	Payload   Payload
}

// NewTicket creates a Ticket with a fresh random ID and the current time.
// A nil payload becomes an empty one.
func NewTicket(payload Payload) Ticket {
	return newTicketAt(payload, time.Now())
}

func newTicketAt(payload Payload, now time.Time) Ticket {
	if payload == nil {
		payload = Payload{}
	}
	return Ticket{
		ID:        uuid.NewString(),
		CreatedAt: now.UTC().Truncate(time.Millisecond),
		Payload:   payload,
	}
}

// Record is the storable document form of a Ticket.
// It is both the content of metadata.json and the QR code payload.
type Record struct {
	ID        string  `json:"id"`
	Timestamp string  `json:"timestamp"`
	Data      Payload `json:"data"`
}

// Record maps the ticket to its storable form.
func (t Ticket) Record() Record {
	data := t.Payload
	if data == nil {
		data = Payload{}
	}
	return Record{
		ID:        t.ID,
		Timestamp: t.CreatedAt.UTC().Format(TimestampLayout),
		Data:      data,
	}
}

// TicketFromRecord reconstructs a Ticket from its storable form.
func TicketFromRecord(r Record) (Ticket, error) {
	if r.ID == "" {
		return Ticket{}, fmt.Errorf("record has no id")
	}

	createdAt, err := time.Parse(time.RFC3339Nano, r.Timestamp)
	if err != nil {
		return Ticket{}, fmt.Errorf("invalid timestamp %q: %w", r.Timestamp, err)
	}

	data := r.Data
	if data == nil {
		data = Payload{}
	}

	return Ticket{
		ID:        r.ID,
		CreatedAt: createdAt.UTC(),
		Payload:   data,
	}, nil
}

// Marshal returns the compact JSON form used as barcode input.
func (r Record) Marshal() ([]byte, error) {
	return json.Marshal(r)
}

// MarshalIndent returns the human-readable JSON form written to disk.
func (r Record) MarshalIndent() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

// ParseRecord decodes a metadata document.
// Numbers are kept as json.Number so they marshal back byte for byte.
func ParseRecord(data []byte) (Record, error) {
	var r Record
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()
	if err := decoder.Decode(&r); err != nil {
		return Record{}, fmt.Errorf("invalid json: %w", err)
	}
	if r.ID == "" {
		return Record{}, fmt.Errorf("metadata has no id")
	}
	return r, nil
}

// StoredTicket is a ticket as found in the store, with the location of its image.
// ImagePath is empty when the image artifact is missing.
type StoredTicket struct {
	Ticket    Ticket
	ImagePath string
}

// EventType represents the type of change in the store.
type EventType string

const (
	EventCreate EventType = "CREATE"
	EventDelete EventType = "DELETE"
)

// Event represents a change in the store.
type Event struct {
	Type      EventType
	ID        string
	Timestamp int64 // Unix timestamp
}

func (e Event) String() string {
	return fmt.Sprintf("%s %s", e.Type, e.ID)
}
