// Package serialize is the YAML codec for the on-disk artifacts: Ticket,
// ProjectState, and ActivePointer. SPEC_FULL.md §4.3 resolves spec.md's
// open question on format by choosing YAML, matching the teacher's own
// choice of YAML for its persisted records.
//
// Decoding distinguishes two failure kinds: MalformedInput for text that
// is not well-formed YAML at all, and SchemaViolation for well-formed YAML
// that is missing a required field or carries an out-of-enumeration value.
// Unknown fields are preserved through each type's inline Extra map rather
// than rejected, so round-tripping never silently drops caller data.
package serialize

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jra3/ticketstore/internal/ticket"
	"github.com/jra3/ticketstore/internal/ticketerr"
)

// EncodeTicket renders t as canonical YAML.
func EncodeTicket(t *ticket.Ticket) ([]byte, error) {
	data, err := yaml.Marshal(t)
	if err != nil {
		return nil, ticketerr.Wrap("encode", ticketerr.Io, t.ID, err)
	}
	return data, nil
}

// DecodeTicket parses data into a Ticket and validates it against the
// required-field and enumeration rules in SPEC_FULL.md §3/§4.9.
func DecodeTicket(data []byte) (*ticket.Ticket, error) {
	var t ticket.Ticket
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, ticketerr.Wrap("decode", ticketerr.MalformedInput, "", err)
	}
	if err := validateTicket(&t); err != nil {
		return nil, ticketerr.Wrap("decode", ticketerr.SchemaViolation, t.ID, err)
	}
	return &t, nil
}

func validateTicket(t *ticket.Ticket) error {
	var missing []string
	if t.ID == "" {
		missing = append(missing, "id")
	}
	if t.Slug == "" {
		missing = append(missing, "slug")
	}
	if t.Title == "" {
		missing = append(missing, "title")
	}
	if t.CreatedAt.IsZero() {
		missing = append(missing, "created_at")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required field(s): %s", strings.Join(missing, ", "))
	}
	if !t.Priority.Valid() {
		return fmt.Errorf("invalid priority %q", t.Priority)
	}
	if !t.Status.Valid() {
		return fmt.Errorf("invalid status %q", t.Status)
	}
	for _, task := range t.Tasks {
		if task.ID == "" {
			return fmt.Errorf("subtask missing id")
		}
	}
	return nil
}

// EncodeState renders s as canonical YAML.
func EncodeState(s *ticket.ProjectState) ([]byte, error) {
	data, err := yaml.Marshal(s)
	if err != nil {
		return nil, ticketerr.Wrap("encode", ticketerr.Io, s.Name, err)
	}
	return data, nil
}

// DecodeState parses data into a ProjectState.
func DecodeState(data []byte) (*ticket.ProjectState, error) {
	var s ticket.ProjectState
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, ticketerr.Wrap("decode", ticketerr.MalformedInput, "", err)
	}
	if s.Name == "" {
		return nil, ticketerr.Wrap("decode", ticketerr.SchemaViolation, "", fmt.Errorf("missing required field: name"))
	}
	return &s, nil
}

// EncodeActivePointer renders p as the raw contents of the active_ticket
// file: a bare id, or an empty file when no ticket is active.
func EncodeActivePointer(p ticket.ActivePointer) []byte {
	if p.ID == "" {
		return nil
	}
	return []byte(p.ID + "\n")
}

// DecodeActivePointer parses the raw contents of the active_ticket file.
func DecodeActivePointer(data []byte) ticket.ActivePointer {
	id := strings.TrimSpace(string(data))
	return ticket.ActivePointer{ID: id}
}
