package ticketerr

import (
	"errors"
	"fmt"
	"testing"
)

func TestIsMatchesWrappedKind(t *testing.T) {
	base := New("load_ticket", NotFound, "84c3")
	wrapped := fmt.Errorf("resolve ref: %w", base)

	if !Is(wrapped, NotFound) {
		t.Fatal("Is() should match NotFound through fmt.Errorf wrapping")
	}
	if Is(wrapped, Contention) {
		t.Fatal("Is() should not match a different kind")
	}
}

func TestIsFalseForPlainError(t *testing.T) {
	if Is(errors.New("boom"), Io) {
		t.Fatal("Is() should be false for an error with no Kind")
	}
}

func TestKindOf(t *testing.T) {
	err := Wrap("save_ticket", InvalidTransition, "T-1", errors.New("todo->review"))
	kind, ok := KindOf(err)
	if !ok || kind != InvalidTransition {
		t.Fatalf("KindOf() = (%v, %v), want (InvalidTransition, true)", kind, ok)
	}
}

func TestErrorString(t *testing.T) {
	err := New("load_ticket", NotFound, "abc123")
	if got, want := err.Error(), "load_ticket abc123: not_found"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	wrapped := Wrap("save_ticket", Io, "", errors.New("disk full"))
	if got, want := wrapped.Error(), "save_ticket: io: disk full"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("permission denied")
	err := Wrap("acquire", Io, "tickets/x.lock", cause)
	if !errors.Is(err, cause) {
		t.Fatal("errors.Is should see through Unwrap to the cause")
	}
}
