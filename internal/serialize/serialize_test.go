package serialize

import (
	"testing"
	"time"

	"github.com/jra3/ticketstore/internal/ticket"
	"github.com/jra3/ticketstore/internal/ticketerr"
)

func sampleTicket() *ticket.Ticket {
	return &ticket.Ticket{
		ID:        "84c3d1ed0001",
		Slug:      "202601011200-fix-login",
		Title:     "Fix login",
		Priority:  ticket.PriorityMedium,
		Status:    ticket.StatusTodo,
		CreatedAt: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC),
		Metadata:  map[string]any{},
	}
}

func TestTicketRoundTrip(t *testing.T) {
	t.Parallel()
	want := sampleTicket()

	data, err := EncodeTicket(want)
	if err != nil {
		t.Fatalf("EncodeTicket() error: %v", err)
	}

	got, err := DecodeTicket(data)
	if err != nil {
		t.Fatalf("DecodeTicket() error: %v", err)
	}
	if got.ID != want.ID || got.Slug != want.Slug || got.Title != want.Title {
		t.Errorf("round trip mismatch: got %+v, want %+v", got, want)
	}
	if !got.CreatedAt.Equal(want.CreatedAt) {
		t.Errorf("CreatedAt round trip: got %v, want %v", got.CreatedAt, want.CreatedAt)
	}
}

func TestDecodeTicketPreservesUnknownFields(t *testing.T) {
	t.Parallel()
	data := []byte(`
id: 84c3d1ed0001
slug: 202601011200-fix-login
title: Fix login
priority: medium
status: todo
created_at: 2026-01-01T12:00:00Z
custom_field: some value
`)

	got, err := DecodeTicket(data)
	if err != nil {
		t.Fatalf("DecodeTicket() error: %v", err)
	}
	if got.Extra["custom_field"] != "some value" {
		t.Errorf("Extra[custom_field] = %v, want %q", got.Extra["custom_field"], "some value")
	}

	out, err := EncodeTicket(got)
	if err != nil {
		t.Fatalf("EncodeTicket() error: %v", err)
	}
	roundTripped, err := DecodeTicket(out)
	if err != nil {
		t.Fatalf("DecodeTicket() on re-encoded data error: %v", err)
	}
	if roundTripped.Extra["custom_field"] != "some value" {
		t.Errorf("unknown field lost after round trip: %+v", roundTripped.Extra)
	}
}

func TestDecodeTicketMalformedYAML(t *testing.T) {
	t.Parallel()
	_, err := DecodeTicket([]byte("not: valid: yaml: [here"))
	if !ticketerr.Is(err, ticketerr.MalformedInput) {
		t.Fatalf("DecodeTicket() on malformed YAML = %v, want MalformedInput", err)
	}
}

func TestDecodeTicketMissingRequiredField(t *testing.T) {
	t.Parallel()
	data := []byte(`
title: Fix login
priority: medium
status: todo
`)
	_, err := DecodeTicket(data)
	if !ticketerr.Is(err, ticketerr.SchemaViolation) {
		t.Fatalf("DecodeTicket() with missing id/slug = %v, want SchemaViolation", err)
	}
}

func TestDecodeTicketInvalidEnum(t *testing.T) {
	t.Parallel()
	data := []byte(`
id: 84c3d1ed0001
slug: 202601011200-fix-login
title: Fix login
priority: urgent
status: todo
created_at: 2026-01-01T12:00:00Z
`)
	_, err := DecodeTicket(data)
	if !ticketerr.Is(err, ticketerr.SchemaViolation) {
		t.Fatalf("DecodeTicket() with invalid priority = %v, want SchemaViolation", err)
	}
}

func TestStateRoundTrip(t *testing.T) {
	t.Parallel()
	want := &ticket.ProjectState{
		Name:      "my-project",
		CreatedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		Stats:     ticket.Stats{Open: 3, Done: 1},
	}

	data, err := EncodeState(want)
	if err != nil {
		t.Fatalf("EncodeState() error: %v", err)
	}
	got, err := DecodeState(data)
	if err != nil {
		t.Fatalf("DecodeState() error: %v", err)
	}
	if got.Name != want.Name || got.Stats != want.Stats {
		t.Errorf("round trip mismatch: got %+v, want %+v", got, want)
	}
}

func TestDecodeStateMissingName(t *testing.T) {
	t.Parallel()
	_, err := DecodeState([]byte("created_at: 2026-01-01T00:00:00Z\n"))
	if !ticketerr.Is(err, ticketerr.SchemaViolation) {
		t.Fatalf("DecodeState() with missing name = %v, want SchemaViolation", err)
	}
}

func TestActivePointerRoundTrip(t *testing.T) {
	t.Parallel()
	p := ticket.ActivePointer{ID: "84c3d1ed0001"}
	data := EncodeActivePointer(p)
	got := DecodeActivePointer(data)
	if got.ID != p.ID {
		t.Errorf("ActivePointer round trip = %+v, want %+v", got, p)
	}
}

func TestActivePointerEmptyIsNoActive(t *testing.T) {
	t.Parallel()
	data := EncodeActivePointer(ticket.ActivePointer{})
	if len(data) != 0 {
		t.Errorf("EncodeActivePointer(empty) = %q, want empty", data)
	}
	got := DecodeActivePointer(nil)
	if got.ID != "" {
		t.Errorf("DecodeActivePointer(nil).ID = %q, want empty", got.ID)
	}
}
