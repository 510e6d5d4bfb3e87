package layout

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestPathsDeriveFromRoot(t *testing.T) {
	t.Parallel()
	l := New("/tmp/proj")

	if got, want := l.StateFile(), filepath.Join("/tmp/proj", "state.yaml"); got != want {
		t.Errorf("StateFile() = %q, want %q", got, want)
	}
	if got, want := l.ActivePointerFile(), filepath.Join("/tmp/proj", "active_ticket"); got != want {
		t.Errorf("ActivePointerFile() = %q, want %q", got, want)
	}
	if got, want := l.TicketsDir(), filepath.Join("/tmp/proj", "tickets"); got != want {
		t.Errorf("TicketsDir() = %q, want %q", got, want)
	}
}

func TestTicketPathJoinsUnderTicketsDir(t *testing.T) {
	t.Parallel()
	l := New("/tmp/proj")

	p, err := l.TicketPath("abc123")
	if err != nil {
		t.Fatalf("TicketPath() error: %v", err)
	}
	if want := filepath.Join("/tmp/proj", "tickets", "abc123.yaml"); p != want {
		t.Errorf("TicketPath() = %q, want %q", p, want)
	}
}

func TestTicketPathRejectsEscape(t *testing.T) {
	t.Parallel()
	l := New("/tmp/proj")

	p, err := l.TicketPath("../../etc/passwd")
	if err != nil {
		// SecureJoin may itself return an error for some escape shapes;
		// either outcome is acceptable as long as it never succeeds with
		// a path outside TicketsDir().
		return
	}
	if !strings.HasPrefix(p, l.TicketsDir()) {
		t.Fatalf("TicketPath() escaped tickets dir: %q", p)
	}
}

func TestLockPath(t *testing.T) {
	t.Parallel()
	l := New("/tmp/proj")
	p, _ := l.TicketPath("abc")
	if got, want := l.LockPath(p), p+".lock"; got != want {
		t.Errorf("LockPath() = %q, want %q", got, want)
	}
}
