package core

import (
	"context"
	"fmt"
	"io"
	"log/slog"
)

// TicketView is a ticket in its wire form with an image ready for display.
type TicketView struct {
	Ticket          Record `json:"ticket"`
	EmbeddableImage string `json:"embeddableImage"`
}

// GenerateResult is the envelope returned by GenerateTicket.
type GenerateResult struct {
	Success         bool    `json:"success"`
	Ticket          *Record `json:"ticket,omitempty"`
	EmbeddableImage string  `json:"embeddableImage,omitempty"`
	Error           string  `json:"error,omitempty"`
}

// ListResult is the envelope returned by ListAllTickets.
type ListResult struct {
	Success bool         `json:"success"`
	Tickets []TicketView `json:"tickets,omitempty"`
	Error   string       `json:"error,omitempty"`
}

// ClearResult is the envelope returned by ClearAllTickets.
type ClearResult struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// Service orchestrates the Encoder and the Repository.
// It is the only surface exposed to the presentation layer, and its
// operations never return raw errors: failures come back as envelopes.
// Its fields are set once by NewService, so it is safe for concurrent use.
type Service struct {
	repo    Repository
	encoder Encoder
	logger  *slog.Logger
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithServiceLogger sets the logger used by the service.
func WithServiceLogger(logger *slog.Logger) ServiceOption {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewService creates a new Service.
func NewService(repo Repository, encoder Encoder, opts ...ServiceOption) *Service {
	s := &Service{
		repo:    repo,
		encoder: encoder,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GenerateTicket creates a ticket, renders it twice from the same serialized
// record (a PNG for storage and a data URI for display) and persists it.
// The ticket only counts as created when persistence succeeds.
func (s *Service) GenerateTicket(ctx context.Context, payload Payload) (res GenerateResult) {
	defer recoverInto(s.logger, "generate-ticket", func(msg string) {
		res = GenerateResult{Error: msg}
	})

	ticket := NewTicket(payload)
	record := ticket.Record()

	data, err := record.Marshal()
	if err != nil {
		return GenerateResult{Error: fmt.Sprintf("failed to serialize ticket: %v", err)}
	}

	png, err := s.encoder.EncodeImage(data)
	if err != nil {
		return GenerateResult{Error: err.Error()}
	}
	uri, err := s.encoder.EncodeDataURI(data)
	if err != nil {
		return GenerateResult{Error: err.Error()}
	}

	path, err := s.repo.Save(ctx, ticket, png)
	if err != nil {
		return GenerateResult{Error: err.Error()}
	}

	s.logger.Debug("ticket generated", "id", ticket.ID, "image", path)

	return GenerateResult{
		Success:         true,
		Ticket:          &record,
		EmbeddableImage: uri,
	}
}

// ListAllTickets returns every stored ticket with a freshly rendered data URI.
// The stored PNG is never read back: display always reflects the record.
func (s *Service) ListAllTickets(ctx context.Context) (res ListResult) {
	defer recoverInto(s.logger, "get-all-tickets", func(msg string) {
		res = ListResult{Error: msg}
	})

	stored, err := s.repo.List(ctx)
	if err != nil {
		return ListResult{Error: err.Error()}
	}

	views := make([]TicketView, 0, len(stored))
	for _, st := range stored {
		record := st.Ticket.Record()
		data, err := record.Marshal()
		if err != nil {
			s.logger.Warn("skipping ticket", "id", st.Ticket.ID, "error", err)
			continue
		}
		uri, err := s.encoder.EncodeDataURI(data)
		if err != nil {
			s.logger.Warn("skipping ticket", "id", st.Ticket.ID, "error", err)
			continue
		}
		views = append(views, TicketView{Ticket: record, EmbeddableImage: uri})
	}

	return ListResult{Success: true, Tickets: views}
}

// ClearAllTickets removes every stored ticket.
func (s *Service) ClearAllTickets(ctx context.Context) (res ClearResult) {
	defer recoverInto(s.logger, "clear-all-tickets", func(msg string) {
		res = ClearResult{Error: msg}
	})

	if err := s.repo.Clear(ctx); err != nil {
		return ClearResult{Error: err.Error()}
	}
	return ClearResult{Success: true}
}

// Watch observes changes in the repository if supported.
func (s *Service) Watch(ctx context.Context, pattern string) (<-chan Event, error) {
	w, ok := s.repo.(Watchable)
	if !ok {
		return nil, fmt.Errorf("repository does not support watching")
	}
	return w.Watch(ctx, pattern)
}

// Repository returns the underlying repository.
func (s *Service) Repository() Repository {
	return s.repo
}

// Encoder returns the underlying encoder.
func (s *Service) Encoder() Encoder {
	return s.encoder
}

func recoverInto(logger *slog.Logger, op string, fail func(msg string)) {
	if r := recover(); r != nil {
		logger.Error("operation panicked", "op", op, "panic", r)
		fail(fmt.Sprintf("%s: internal error: %v", op, r))
	}
}
