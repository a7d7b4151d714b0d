package core_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/tessera/pkg/core"
)

// MockRepository implements core.Repository in memory.
// It deliberately does NOT implement core.Watchable to test fallback errors.
type MockRepository struct {
	tickets  map[string]core.Ticket
	images   map[string][]byte
	saveErr  error
	listErr  error
	clearErr error
}

func NewMockRepository() *MockRepository {
	return &MockRepository{
		tickets: make(map[string]core.Ticket),
		images:  make(map[string][]byte),
	}
}

func (m *MockRepository) Initialize(ctx context.Context) error { return nil }

func (m *MockRepository) Save(ctx context.Context, t core.Ticket, image []byte) (string, error) {
	if m.saveErr != nil {
		return "", m.saveErr
	}
	m.tickets[t.ID] = t
	m.images[t.ID] = image
	return "mem://" + t.ID + "/qrcode.png", nil
}

func (m *MockRepository) List(ctx context.Context) ([]core.StoredTicket, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []core.StoredTicket
	for id, t := range m.tickets {
		out = append(out, core.StoredTicket{Ticket: t, ImagePath: "mem://" + id + "/qrcode.png"})
	}
	// Sort for deterministic tests
	sort.Slice(out, func(i, j int) bool {
		return out[i].Ticket.ID < out[j].Ticket.ID
	})
	return out, nil
}

func (m *MockRepository) Clear(ctx context.Context) error {
	if m.clearErr != nil {
		return m.clearErr
	}
	m.tickets = make(map[string]core.Ticket)
	m.images = make(map[string][]byte)
	return nil
}

// fakeEncoder "renders" by base64-encoding the input so tests can decode it back.
type fakeEncoder struct {
	limit int
	calls []string
	panic bool
}

func (f *fakeEncoder) EncodeImage(data []byte) ([]byte, error) {
	if f.panic {
		panic("boom")
	}
	if f.limit > 0 && len(data) > f.limit {
		return nil, &core.EncodingError{Err: errors.New("content too long to encode")}
	}
	f.calls = append(f.calls, string(data))
	return append([]byte("PNG:"), data...), nil
}

func (f *fakeEncoder) EncodeDataURI(data []byte) (string, error) {
	if f.limit > 0 && len(data) > f.limit {
		return "", &core.EncodingError{Err: errors.New("content too long to encode")}
	}
	f.calls = append(f.calls, string(data))
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(data), nil
}

func decodeURI(t *testing.T, uri string) core.Record {
	t.Helper()
	raw, err := base64.StdEncoding.DecodeString(uri[len("data:image/png;base64,"):])
	require.NoError(t, err)
	var r core.Record
	require.NoError(t, json.Unmarshal(raw, &r))
	return r
}

func TestService_GenerateTicket(t *testing.T) {
	t.Run("Demo Scenario", func(t *testing.T) {
		repo := NewMockRepository()
		svc := core.NewService(repo, &fakeEncoder{})
		ctx := context.Background()

		res := svc.GenerateTicket(ctx, core.Payload{"eventName": "Demo"})
		require.True(t, res.Success, res.Error)
		require.NotNil(t, res.Ticket)
		assert.Equal(t, "Demo", res.Ticket.Data["eventName"])
		assert.Regexp(t, `^data:image/png;base64,`, res.EmbeddableImage)

		list := svc.ListAllTickets(ctx)
		require.True(t, list.Success, list.Error)
		require.Len(t, list.Tickets, 1)
		assert.Equal(t, res.Ticket.ID, list.Tickets[0].Ticket.ID)
	})

	t.Run("Encodes Both Forms From Same Record", func(t *testing.T) {
		repo := NewMockRepository()
		enc := &fakeEncoder{}
		svc := core.NewService(repo, enc)

		res := svc.GenerateTicket(context.Background(), core.Payload{"seat": "A1"})
		require.True(t, res.Success)
		require.Len(t, enc.calls, 2)
		assert.Equal(t, enc.calls[0], enc.calls[1])

		stored := repo.images[res.Ticket.ID]
		assert.Equal(t, "PNG:"+enc.calls[0], string(stored))
		assert.Equal(t, *res.Ticket, decodeURI(t, res.EmbeddableImage))
	})

	t.Run("Encoding Failure Is Not Persisted", func(t *testing.T) {
		repo := NewMockRepository()
		svc := core.NewService(repo, &fakeEncoder{limit: 10})

		res := svc.GenerateTicket(context.Background(), core.Payload{"big": "value"})
		assert.False(t, res.Success)
		assert.Contains(t, res.Error, "failed to generate QR code")
		assert.Nil(t, res.Ticket)
		assert.Empty(t, repo.tickets)
	})

	t.Run("Persistence Failure Returns Envelope", func(t *testing.T) {
		repo := NewMockRepository()
		repo.saveErr = &core.PersistenceError{Op: "save ticket", Path: "/x", Err: errors.New("disk full")}
		svc := core.NewService(repo, &fakeEncoder{})

		res := svc.GenerateTicket(context.Background(), nil)
		assert.False(t, res.Success)
		assert.Equal(t, "failed to save ticket /x: disk full", res.Error)
		assert.Empty(t, res.EmbeddableImage)
	})

	t.Run("Panic Becomes Failure", func(t *testing.T) {
		svc := core.NewService(NewMockRepository(), &fakeEncoder{panic: true})

		var res core.GenerateResult
		require.NotPanics(t, func() {
			res = svc.GenerateTicket(context.Background(), nil)
		})
		assert.False(t, res.Success)
		assert.Contains(t, res.Error, "boom")
	})
}

func TestService_ListAllTickets(t *testing.T) {
	t.Run("Re-renders From Record", func(t *testing.T) {
		repo := NewMockRepository()
		svc := core.NewService(repo, &fakeEncoder{})
		ctx := context.Background()

		for i := 0; i < 3; i++ {
			require.True(t, svc.GenerateTicket(ctx, core.Payload{"n": float64(i)}).Success)
		}

		// Corrupt the stored images: listing must not depend on them.
		for id := range repo.images {
			repo.images[id] = nil
		}

		res := svc.ListAllTickets(ctx)
		require.True(t, res.Success)
		require.Len(t, res.Tickets, 3)
		for _, view := range res.Tickets {
			assert.Equal(t, view.Ticket, decodeURI(t, view.EmbeddableImage))
		}
	})

	t.Run("Empty Store", func(t *testing.T) {
		svc := core.NewService(NewMockRepository(), &fakeEncoder{})
		res := svc.ListAllTickets(context.Background())
		assert.True(t, res.Success)
		assert.Empty(t, res.Tickets)
	})

	t.Run("Enumeration Failure", func(t *testing.T) {
		repo := NewMockRepository()
		repo.listErr = &core.PersistenceError{Op: "list tickets", Err: errors.New("permission denied")}
		svc := core.NewService(repo, &fakeEncoder{})

		res := svc.ListAllTickets(context.Background())
		assert.False(t, res.Success)
		assert.Contains(t, res.Error, "permission denied")
	})

	t.Run("Skips Tickets That Fail To Render", func(t *testing.T) {
		repo := NewMockRepository()
		small := core.NewTicket(nil)
		big := core.NewTicket(core.Payload{"blob": string(make([]byte, 500))})
		repo.tickets[small.ID] = small
		repo.tickets[big.ID] = big

		svc := core.NewService(repo, &fakeEncoder{limit: 200})
		res := svc.ListAllTickets(context.Background())
		require.True(t, res.Success)
		require.Len(t, res.Tickets, 1)
		assert.Equal(t, small.ID, res.Tickets[0].Ticket.ID)
	})
}

func TestService_ClearAllTickets(t *testing.T) {
	repo := NewMockRepository()
	svc := core.NewService(repo, &fakeEncoder{})
	ctx := context.Background()

	svc.GenerateTicket(ctx, nil)
	svc.GenerateTicket(ctx, nil)

	res := svc.ClearAllTickets(ctx)
	require.True(t, res.Success)
	assert.Empty(t, svc.ListAllTickets(ctx).Tickets)

	repo.clearErr = errors.New("busy")
	res = svc.ClearAllTickets(ctx)
	assert.False(t, res.Success)
	assert.Equal(t, "busy", res.Error)
}

func TestService_EnvelopeJSON(t *testing.T) {
	svc := core.NewService(NewMockRepository(), &fakeEncoder{})

	data, err := json.Marshal(svc.GenerateTicket(context.Background(), core.Payload{"eventName": "Demo"}))
	require.NoError(t, err)

	var wire map[string]any
	require.NoError(t, json.Unmarshal(data, &wire))
	assert.Equal(t, true, wire["success"])
	assert.Contains(t, wire, "embeddableImage")
	assert.NotContains(t, wire, "error")

	ticket := wire["ticket"].(map[string]any)
	assert.Contains(t, ticket, "timestamp")
	assert.Equal(t, "Demo", ticket["data"].(map[string]any)["eventName"])

	data, err = json.Marshal(core.ClearResult{Error: "nope"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":false,"error":"nope"}`, string(data))
}

func TestService_Watch_Unsupported(t *testing.T) {
	svc := core.NewService(NewMockRepository(), &fakeEncoder{})
	_, err := svc.Watch(context.Background(), "*")
	assert.Error(t, err)
}

func TestService_State(t *testing.T) {
	svc := core.NewService(NewMockRepository(), &fakeEncoder{})
	state, ok := svc.State().(core.ServiceState)
	require.True(t, ok)
	assert.Equal(t, "repository", state.RepositoryType)
	assert.Equal(t, "encoder", state.EncoderType)
	assert.Equal(t, "service", svc.ComponentType())
}
