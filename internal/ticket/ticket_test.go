package ticket

import (
	"testing"
	"time"
)

func TestCanTransition(t *testing.T) {
	t.Parallel()
	cases := []struct {
		from, to Status
		want     bool
	}{
		{StatusTodo, StatusDoing, true},
		{StatusTodo, StatusBlocked, true},
		{StatusTodo, StatusDone, true},
		{StatusTodo, StatusReview, false},
		{StatusDoing, StatusBlocked, true},
		{StatusDoing, StatusReview, true},
		{StatusDoing, StatusDone, true},
		{StatusDoing, StatusTodo, false},
		{StatusBlocked, StatusTodo, true},
		{StatusBlocked, StatusDoing, true},
		{StatusBlocked, StatusDone, false},
		{StatusReview, StatusDoing, true},
		{StatusReview, StatusDone, true},
		{StatusReview, StatusBlocked, false},
		{StatusDone, StatusDoing, true},
		{StatusDone, StatusTodo, false},
	}

	for _, c := range cases {
		if got := CanTransition(c.from, c.to); got != c.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", c.from, c.to, got, c.want)
		}
	}
}

func TestApplyTransitionSetsStartedAt(t *testing.T) {
	t.Parallel()
	now := time.Now()
	tk := New(Draft{Title: "fix login"}, now)

	ok := ApplyTransition(tk, StatusDoing, now.Add(time.Minute))
	if !ok {
		t.Fatal("todo -> doing should be allowed")
	}
	if tk.StartedAt == nil {
		t.Fatal("entering doing for the first time must set StartedAt")
	}
	firstStart := *tk.StartedAt

	// Re-entering doing later (via blocked) must not move StartedAt.
	ApplyTransition(tk, StatusBlocked, now.Add(2*time.Minute))
	ApplyTransition(tk, StatusDoing, now.Add(3*time.Minute))
	if !tk.StartedAt.Equal(firstStart) {
		t.Errorf("StartedAt moved on re-entry: got %v, want %v", tk.StartedAt, firstStart)
	}
}

func TestApplyTransitionClosedAt(t *testing.T) {
	t.Parallel()
	now := time.Now()
	tk := New(Draft{Title: "fix login"}, now)

	ApplyTransition(tk, StatusDoing, now)
	ApplyTransition(tk, StatusDone, now.Add(time.Hour))
	if tk.ClosedAt == nil {
		t.Fatal("entering done must set ClosedAt")
	}

	ApplyTransition(tk, StatusDoing, now.Add(2*time.Hour))
	if tk.ClosedAt != nil {
		t.Fatal("leaving done must clear ClosedAt")
	}
	if tk.StartedAt == nil {
		t.Fatal("StartedAt must survive the re-open")
	}
}

func TestApplyTransitionRejectsInvalid(t *testing.T) {
	t.Parallel()
	now := time.Now()
	tk := New(Draft{Title: "t"}, now)

	if ApplyTransition(tk, StatusReview, now) {
		t.Fatal("todo -> review must be rejected")
	}
	if tk.Status != StatusTodo {
		t.Fatal("rejected transition must leave status unchanged")
	}
}

func TestApplyTransitionSameStatusIsNoop(t *testing.T) {
	t.Parallel()
	now := time.Now()
	tk := New(Draft{Title: "t"}, now)
	if ApplyTransition(tk, StatusTodo, now) {
		t.Fatal("same-status transition must be rejected, not a silent success")
	}
}

func TestNewDraftDefaults(t *testing.T) {
	t.Parallel()
	now := time.Now()
	tk := New(Draft{Title: "t"}, now)

	if tk.Priority != PriorityMedium {
		t.Errorf("default priority = %s, want medium", tk.Priority)
	}
	if tk.Status != StatusTodo {
		t.Errorf("default status = %s, want todo", tk.Status)
	}
	if tk.Tags == nil || len(tk.Tags) != 0 {
		t.Errorf("default tags = %v, want empty non-nil slice", tk.Tags)
	}
	if tk.Assignee != "" {
		t.Errorf("default assignee = %q, want empty", tk.Assignee)
	}
	if tk.StartedAt != nil {
		t.Error("default start=false must leave StartedAt nil")
	}
}

func TestNewDraftStart(t *testing.T) {
	t.Parallel()
	now := time.Now()
	tk := New(Draft{Title: "t", Start: true}, now)

	if tk.Status != StatusDoing {
		t.Errorf("Start=true should create in doing, got %s", tk.Status)
	}
	if tk.StartedAt == nil {
		t.Fatal("Start=true should set StartedAt")
	}
}

func TestDisplayOfFallback(t *testing.T) {
	t.Parallel()
	d := Status("nonsense").DisplayOf()
	if d.Label != "nonsense" {
		t.Errorf("fallback label = %q, want %q", d.Label, "nonsense")
	}
}
