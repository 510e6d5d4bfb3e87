// Package ticket defines the domain types shared by the serializer and the
// repository: Ticket, Subtask, ProjectState, ActivePointer, and the
// Status/Priority enumerations with their transition rules.
package ticket

import "time"

// Priority is one of the four fixed priority levels.
type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

// ValidPriorities lists every enumeration value, in display order.
var ValidPriorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical}

// Valid reports whether p is one of the four fixed priority levels.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return true
	default:
		return false
	}
}

// Status is one of the five fixed workflow states.
type Status string

const (
	StatusTodo    Status = "todo"
	StatusDoing   Status = "doing"
	StatusDone    Status = "done"
	StatusBlocked Status = "blocked"
	StatusReview  Status = "review"
)

// ValidStatuses lists every enumeration value, in workflow order.
var ValidStatuses = []Status{StatusTodo, StatusDoing, StatusBlocked, StatusReview, StatusDone}

// Valid reports whether s is one of the five fixed statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusTodo, StatusDoing, StatusDone, StatusBlocked, StatusReview:
		return true
	default:
		return false
	}
}

// transitions enumerates every allowed status change. A status change not
// listed here (including a no-op change to the same status) is invalid.
var transitions = map[Status]map[Status]bool{
	StatusTodo:    {StatusDoing: true, StatusBlocked: true, StatusDone: true},
	StatusDoing:   {StatusBlocked: true, StatusReview: true, StatusDone: true},
	StatusBlocked: {StatusTodo: true, StatusDoing: true},
	StatusReview:  {StatusDoing: true, StatusDone: true},
	StatusDone:    {StatusDoing: true},
}

// CanTransition reports whether the workflow allows moving from `from` to `to`.
func CanTransition(from, to Status) bool {
	next, ok := transitions[from]
	if !ok {
		return false
	}
	return next[to]
}

// Subtask is one ordered entry in a ticket's task list. ID is scoped to the
// owning ticket (not a full 128-bit id) so ticket files stay readable.
type Subtask struct {
	ID          string     `yaml:"id"`
	Title       string     `yaml:"title"`
	Done        bool       `yaml:"done"`
	CompletedAt *time.Time `yaml:"completed_at,omitempty"`
}

// Ticket is the primary entity persisted under <tickets>/<id>.yaml.
type Ticket struct {
	ID          string         `yaml:"id"`
	Slug        string         `yaml:"slug"`
	Title       string         `yaml:"title"`
	Description string         `yaml:"description"`
	Priority    Priority       `yaml:"priority"`
	Status      Status         `yaml:"status"`
	Tags        []string       `yaml:"tags,omitempty"`
	Assignee    string         `yaml:"assignee,omitempty"`
	CreatedAt   time.Time      `yaml:"created_at"`
	StartedAt   *time.Time     `yaml:"started_at,omitempty"`
	ClosedAt    *time.Time     `yaml:"closed_at,omitempty"`
	Tasks       []Subtask      `yaml:"tasks,omitempty"`
	Metadata    map[string]any `yaml:"metadata,omitempty"`

	// Extra preserves any frontmatter-style unknown keys encountered on
	// read so that round-tripping never silently drops data.
	Extra map[string]any `yaml:",inline"`
}

// Draft is the input to Repository.CreateTicket: required fields plus an
// explicit configuration record, per the single-constructor design note in
// SPEC_FULL.md §4 / spec.md §9.
type Draft struct {
	SlugBase    string
	Title       string
	Description string
	Priority    Priority // default: PriorityMedium
	Tags        []string // default: empty
	Assignee    string   // default: absent
	Start       bool     // default: false — if true, ticket is created already in StatusDoing
}

// New constructs a Ticket from a Draft, applying the documented defaults.
// It does not assign ID or Slug — the repository does that at creation time
// once it knows the timestamp prefix and can check for collisions.
func New(d Draft, now time.Time) *Ticket {
	priority := d.Priority
	if priority == "" {
		priority = PriorityMedium
	}

	tags := d.Tags
	if tags == nil {
		tags = []string{}
	}

	t := &Ticket{
		Title:       d.Title,
		Description: d.Description,
		Priority:    priority,
		Status:      StatusTodo,
		Tags:        tags,
		Assignee:    d.Assignee,
		CreatedAt:   now,
		Metadata:    map[string]any{},
	}

	if d.Start {
		started := now
		t.Status = StatusDoing
		t.StartedAt = &started
	}

	return t
}

// ApplyTransition validates and applies a status change, setting
// started_at/closed_at side effects per the transition table. It mutates t
// in place and reports whether the change was applied: it returns false,
// leaving t untouched, when to equals the current status or the table does
// not allow the move. Callers build any error value themselves.
func ApplyTransition(t *Ticket, to Status, now time.Time) bool {
	if t.Status == to {
		return false
	}
	if !CanTransition(t.Status, to) {
		return false
	}

	from := t.Status
	t.Status = to
	ApplyTransitionSideEffects(t, from, now)
	return true
}

// ApplyTransitionSideEffects sets started_at/closed_at on t per the
// transition rules, given the status it moved away from (from) and its
// already-updated t.Status. It does not validate the move — callers that
// haven't already checked CanTransition(from, t.Status) must do so first.
// Exported so a caller that sets Status directly (repo.SaveTicket, rather
// than going through ApplyTransition) still gets the same side effects.
func ApplyTransitionSideEffects(t *Ticket, from Status, now time.Time) {
	if t.Status == StatusDoing && t.StartedAt == nil {
		started := now
		t.StartedAt = &started
	}
	if t.Status == StatusDone && t.ClosedAt == nil {
		closed := now
		t.ClosedAt = &closed
	}
	if from == StatusDone && t.Status != StatusDone {
		t.ClosedAt = nil
	}
}

// ProjectState is the single project-header artifact.
type ProjectState struct {
	Name        string    `yaml:"name"`
	Description string    `yaml:"description"`
	CreatedAt   time.Time `yaml:"created_at"`

	Stats Stats `yaml:"stats"`

	Extra map[string]any `yaml:",inline"`
}

// Stats holds the recomputed-on-write ticket counters described in
// SPEC_FULL.md §12.
type Stats struct {
	Open     int `yaml:"open"`
	Doing    int `yaml:"doing"`
	Blocked  int `yaml:"blocked"`
	Review   int `yaml:"review"`
	Done     int `yaml:"done"`
	Archived int `yaml:"archived"`
}

// ActivePointer is the id of the ticket the caller is "on", or empty for none.
type ActivePointer struct {
	ID string
}
