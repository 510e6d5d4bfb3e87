// Package repo is the ticket store's core: it composes layout, lockguard,
// artifact, serialize, cache, and id into the single Repository surface
// every caller (CLI, tests) goes through. No other package constructs a
// lock, reads a ticket file, or derives a path directly.
package repo

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/jra3/ticketstore/internal/artifact"
	"github.com/jra3/ticketstore/internal/cache"
	"github.com/jra3/ticketstore/internal/id"
	"github.com/jra3/ticketstore/internal/layout"
	"github.com/jra3/ticketstore/internal/lockguard"
	"github.com/jra3/ticketstore/internal/serialize"
	"github.com/jra3/ticketstore/internal/ticket"
	"github.com/jra3/ticketstore/internal/ticketerr"
)

const allTicketsKey = "all-tickets"

func ticketCacheKey(id string) string { return "ticket-by-id:" + id }

// ListOptions controls ListTickets' scope.
type ListOptions struct {
	IncludeArchived bool
}

// Repository is the full surface the rest of the store operates against.
type Repository interface {
	// ==========================================================================
	// Lifecycle
	// ==========================================================================

	Initialize(ctx context.Context, name, description string, force bool) error

	// ==========================================================================
	// Tickets
	// ==========================================================================

	CreateTicket(ctx context.Context, d ticket.Draft) (*ticket.Ticket, error)
	LoadTicket(ctx context.Context, ref string) (*ticket.Ticket, error)
	SaveTicket(ctx context.Context, t *ticket.Ticket) error
	DeleteTicket(ctx context.Context, ref string) error
	ArchiveTicket(ctx context.Context, ref string) error
	UnarchiveTicket(ctx context.Context, ref string) error
	ListTickets(ctx context.Context, opts ListOptions) ([]*ticket.Ticket, error)

	// Transition applies a validated status change and persists it.
	Transition(ctx context.Context, ref string, to ticket.Status) (*ticket.Ticket, error)

	// SetTaskDone flips one subtask's done flag without disturbing the rest
	// of the ticket, via LoadTicket+mutate+SaveTicket. The load takes no
	// lock; the write goes through SaveTicket's lock on the ticket artifact.
	SetTaskDone(ctx context.Context, ref, taskID string, done bool) (*ticket.Ticket, error)

	// ==========================================================================
	// Active pointer
	// ==========================================================================

	SetActive(ctx context.Context, ref string) error
	GetActive(ctx context.Context) (*ticket.Ticket, error)
	ClearActive(ctx context.Context) error

	// ==========================================================================
	// Project state
	// ==========================================================================

	LoadState(ctx context.Context) (*ticket.ProjectState, error)
	SaveState(ctx context.Context, s *ticket.ProjectState) error
}

// Metrics receives per-operation latency observations. A nil Metrics is a
// valid Options value (no telemetry, e.g. in unit tests); pkg/telemetry's
// *Metrics satisfies this directly via its own ObserveLatency method.
type Metrics interface {
	ObserveLatency(op string, since time.Time)
}

// Options tunes the repository's component dependencies.
type Options struct {
	Lock    lockguard.Options
	Cache   cache.Metrics // may be nil
	Metrics Metrics       // may be nil
	TTL     time.Duration
	MaxSize int
	Logger  zerolog.Logger
}

// DefaultOptions returns the numbers SPEC_FULL.md specifies throughout:
// a 30 s / 10-attempt lock budget and a 5-minute cache TTL.
func DefaultOptions() Options {
	return Options{
		Lock:    lockguard.DefaultOptions(),
		TTL:     5 * time.Minute,
		MaxSize: 10000,
		Logger:  zerolog.Nop(),
	}
}

// FileRepository implements Repository directly against the on-disk
// layout described in SPEC_FULL.md §4.1, with a process-local read cache
// in front of it.
type FileRepository struct {
	layout layout.Layout
	opts   Options

	tickets *cache.Cache[*ticket.Ticket]
	lists   *cache.Cache[[]*ticket.Ticket]

	log zerolog.Logger
}

// New constructs a FileRepository rooted at root. Initialize must be
// called before any other operation succeeds on a fresh root.
func New(root string, opts Options) *FileRepository {
	return &FileRepository{
		layout:  layout.New(root),
		opts:    opts,
		tickets: cache.New[*ticket.Ticket](opts.TTL, opts.MaxSize, opts.Cache),
		lists:   cache.New[[]*ticket.Ticket](opts.TTL, 1, opts.Cache),
		log:     opts.Logger.With().Str("component", "repo").Logger(),
	}
}

// Close stops the repository's background cache sweep goroutines. It does
// not touch the filesystem.
func (r *FileRepository) Close() {
	r.tickets.Stop()
	r.lists.Stop()
}

// observeLatency reports how long op took against r.opts.Metrics, if set.
func (r *FileRepository) observeLatency(op string, since time.Time) {
	if r.opts.Metrics != nil {
		r.opts.Metrics.ObserveLatency(op, since)
	}
}

// ==========================================================================
// Lifecycle
// ==========================================================================

// Initialize lays out a fresh project root: tickets/, archive/, state.yaml,
// config.yaml, and an empty active_ticket pointer. A root that already has
// a state.yaml fails with AlreadyInitialized unless force is set.
func (r *FileRepository) Initialize(ctx context.Context, name, description string, force bool) error {
	defer r.observeLatency("initialize", time.Now())

	if artifact.Exists(r.layout.StateFile()) && !force {
		return ticketerr.New("initialize", ticketerr.AlreadyInitialized, r.layout.Root)
	}

	for _, dir := range []string{r.layout.Root, r.layout.TicketsDir(), r.layout.ArchiveDir()} {
		if err := mkdirAll(dir); err != nil {
			return ticketerr.Wrap("initialize", ticketerr.Io, dir, err)
		}
	}

	state := &ticket.ProjectState{
		Name:        name,
		Description: description,
		CreatedAt:   time.Now(),
	}
	data, err := serialize.EncodeState(state)
	if err != nil {
		return err
	}
	if err := artifact.Write(r.layout.StateFile(), data, 0644); err != nil {
		return err
	}

	if err := artifact.Write(r.layout.ConfigFile(), []byte("version: 1\nformat: yaml\n"), 0644); err != nil {
		return err
	}

	if !artifact.Exists(r.layout.ActivePointerFile()) {
		if err := artifact.Write(r.layout.ActivePointerFile(), nil, 0644); err != nil {
			return err
		}
	}

	r.log.Info().Str("root", r.layout.Root).Msg("initialized project")
	return nil
}

// ==========================================================================
// Tickets
// ==========================================================================

// CreateTicket mints a fresh id and a timestamp-prefixed slug, checks for a
// slug collision among live and archived tickets, and persists the new
// ticket.
func (r *FileRepository) CreateTicket(ctx context.Context, d ticket.Draft) (*ticket.Ticket, error) {
	defer r.observeLatency("create_ticket", time.Now())

	now := time.Now()
	existing, err := r.ListTickets(ctx, ListOptions{IncludeArchived: true})
	if err != nil {
		return nil, err
	}

	slug := id.NewSlug(d.SlugBase, now)
	for _, e := range existing {
		if e.Slug == slug {
			return nil, ticketerr.New("create_ticket", ticketerr.DuplicateSlug, slug)
		}
	}

	t := ticket.New(d, now)
	t.ID = id.New()
	t.Slug = slug

	path, err := r.layout.TicketPath(t.ID)
	if err != nil {
		return nil, ticketerr.Wrap("create_ticket", ticketerr.MalformedInput, t.ID, err)
	}

	guards, err := acquireOrdered(ctx, []string{path, r.layout.StateFile()}, "create_ticket", r.opts.Lock)
	if err != nil {
		return nil, err
	}
	defer releaseAll(guards)

	data, err := serialize.EncodeTicket(t)
	if err != nil {
		return nil, err
	}
	if err := artifact.Write(path, data, 0644); err != nil {
		return nil, err
	}

	if err := r.recomputeStats(ctx); err != nil {
		r.log.Warn().Err(err).Msg("stats recompute failed after create_ticket")
	}

	r.tickets.Put(ticketCacheKey(t.ID), t)
	r.lists.InvalidateAll()

	return t, nil
}

// LoadTicket resolves ref (full id, full slug, or unique prefix) against
// live tickets and returns the decoded ticket, serving from cache when
// fresh.
func (r *FileRepository) LoadTicket(ctx context.Context, ref string) (*ticket.Ticket, error) {
	defer r.observeLatency("load_ticket", time.Now())

	candidate, err := r.resolveRef(ctx, ref, false)
	if err != nil {
		return nil, err
	}

	if t, ok := r.tickets.Get(ticketCacheKey(candidate.ID)); ok {
		return t, nil
	}

	path, err := r.layout.TicketPath(candidate.ID)
	if err != nil {
		return nil, ticketerr.Wrap("load_ticket", ticketerr.MalformedInput, candidate.ID, err)
	}
	data, err := artifact.Read(path)
	if err != nil {
		return nil, err
	}
	t, err := serialize.DecodeTicket(data)
	if err != nil {
		return nil, err
	}

	r.tickets.Put(ticketCacheKey(t.ID), t)
	return t, nil
}

// SaveTicket persists t's current in-memory state, recomputing project
// stats. Callers load, mutate, then call SaveTicket under no lock of their
// own — the repository owns all locking. The ticket must already exist on
// disk, and a changed Status must be a move the workflow table in
// internal/ticket allows (spec.md §4.9) — both checked against the on-disk
// artifact under the just-acquired lock, not against whatever the caller
// happened to load earlier, so a rejected save never reaches the artifact
// write. A valid status change gets its started_at/closed_at side effects
// applied here too, so a caller that sets Status directly (rather than
// going through Transition) still gets them.
func (r *FileRepository) SaveTicket(ctx context.Context, t *ticket.Ticket) error {
	defer r.observeLatency("save_ticket", time.Now())

	path, err := r.layout.TicketPath(t.ID)
	if err != nil {
		return ticketerr.Wrap("save_ticket", ticketerr.MalformedInput, t.ID, err)
	}

	guards, err := acquireOrdered(ctx, []string{path, r.layout.StateFile()}, "save_ticket", r.opts.Lock)
	if err != nil {
		return err
	}
	defer releaseAll(guards)

	existingData, err := artifact.Read(path)
	if err != nil {
		return err
	}
	existing, err := serialize.DecodeTicket(existingData)
	if err != nil {
		return err
	}
	if existing.Status != t.Status {
		if !ticket.CanTransition(existing.Status, t.Status) {
			return ticketerr.New("save_ticket", ticketerr.InvalidTransition, fmt.Sprintf("%s: %s -> %s", t.ID, existing.Status, t.Status))
		}
		ticket.ApplyTransitionSideEffects(t, existing.Status, time.Now())
	}

	data, err := serialize.EncodeTicket(t)
	if err != nil {
		return err
	}
	if err := artifact.Write(path, data, 0644); err != nil {
		return err
	}

	if err := r.recomputeStats(ctx); err != nil {
		r.log.Warn().Err(err).Msg("stats recompute failed after save_ticket")
	}

	r.tickets.Put(ticketCacheKey(t.ID), t)
	r.lists.InvalidateAll()
	return nil
}

// Transition validates and applies a status change, returning
// InvalidTransition if the workflow table disallows it.
func (r *FileRepository) Transition(ctx context.Context, ref string, to ticket.Status) (*ticket.Ticket, error) {
	defer r.observeLatency("transition", time.Now())

	t, err := r.LoadTicket(ctx, ref)
	if err != nil {
		return nil, err
	}

	from := t.Status
	if !ticket.ApplyTransition(t, to, time.Now()) {
		return nil, ticketerr.New("transition", ticketerr.InvalidTransition, fmt.Sprintf("%s: %s -> %s", t.ID, from, to))
	}

	if err := r.SaveTicket(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// SetTaskDone flips one subtask's done flag, setting or clearing its
// completed_at, and persists the ticket.
func (r *FileRepository) SetTaskDone(ctx context.Context, ref, taskID string, done bool) (*ticket.Ticket, error) {
	defer r.observeLatency("set_task_done", time.Now())

	t, err := r.LoadTicket(ctx, ref)
	if err != nil {
		return nil, err
	}

	found := false
	for i := range t.Tasks {
		if t.Tasks[i].ID != taskID {
			continue
		}
		found = true
		t.Tasks[i].Done = done
		if done {
			now := time.Now()
			t.Tasks[i].CompletedAt = &now
		} else {
			t.Tasks[i].CompletedAt = nil
		}
		break
	}
	if !found {
		return nil, ticketerr.New("set_task_done", ticketerr.NotFound, taskID)
	}

	if err := r.SaveTicket(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// DeleteTicket permanently removes a live ticket and its lock file.
func (r *FileRepository) DeleteTicket(ctx context.Context, ref string) error {
	defer r.observeLatency("delete_ticket", time.Now())

	candidate, err := r.resolveRef(ctx, ref, false)
	if err != nil {
		return err
	}

	path, err := r.layout.TicketPath(candidate.ID)
	if err != nil {
		return ticketerr.Wrap("delete_ticket", ticketerr.MalformedInput, candidate.ID, err)
	}

	guards, err := acquireOrdered(ctx, []string{path, r.layout.StateFile()}, "delete_ticket", r.opts.Lock)
	if err != nil {
		return err
	}
	defer releaseAll(guards)

	if err := artifact.Delete(path); err != nil {
		return err
	}

	if err := r.clearActiveIfMatches(candidate.ID); err != nil {
		r.log.Warn().Err(err).Msg("clear active pointer failed after delete_ticket")
	}
	if err := r.recomputeStats(ctx); err != nil {
		r.log.Warn().Err(err).Msg("stats recompute failed after delete_ticket")
	}

	r.tickets.Invalidate(ticketCacheKey(candidate.ID))
	r.lists.InvalidateAll()
	return nil
}

// ArchiveTicket moves a live ticket's artifact into the archive directory.
func (r *FileRepository) ArchiveTicket(ctx context.Context, ref string) error {
	return r.moveTicket(ctx, ref, "archive_ticket", r.layout.TicketPath, r.layout.ArchivePath)
}

// UnarchiveTicket moves an archived ticket's artifact back to the live
// tickets directory.
func (r *FileRepository) UnarchiveTicket(ctx context.Context, ref string) error {
	return r.moveTicket(ctx, ref, "unarchive_ticket", r.layout.ArchivePath, r.layout.TicketPath)
}

func (r *FileRepository) moveTicket(ctx context.Context, ref, op string, fromFn, toFn func(string) (string, error)) error {
	defer r.observeLatency(op, time.Now())

	candidate, err := r.resolveRef(ctx, ref, true)
	if err != nil {
		return err
	}

	from, err := fromFn(candidate.ID)
	if err != nil {
		return ticketerr.Wrap(op, ticketerr.MalformedInput, candidate.ID, err)
	}
	to, err := toFn(candidate.ID)
	if err != nil {
		return ticketerr.Wrap(op, ticketerr.MalformedInput, candidate.ID, err)
	}

	guards, err := acquireOrdered(ctx, []string{from, to, r.layout.StateFile()}, op, r.opts.Lock)
	if err != nil {
		return err
	}
	defer releaseAll(guards)

	data, err := artifact.Read(from)
	if err != nil {
		return err
	}
	if err := artifact.Write(to, data, 0644); err != nil {
		return err
	}
	if err := artifact.Delete(from); err != nil {
		return err
	}

	if err := r.recomputeStats(ctx); err != nil {
		r.log.Warn().Err(err).Msg("stats recompute failed after " + op)
	}

	r.tickets.Invalidate(ticketCacheKey(candidate.ID))
	r.lists.InvalidateAll()
	return nil
}

// ListTickets returns every live ticket, plus archived ones when
// opts.IncludeArchived is set. Archive scans never serve stats.Archived —
// that count comes from recomputeStats.
func (r *FileRepository) ListTickets(ctx context.Context, opts ListOptions) ([]*ticket.Ticket, error) {
	defer r.observeLatency("list_tickets", time.Now())

	if !opts.IncludeArchived {
		if cached, ok := r.lists.Get(allTicketsKey); ok {
			return cached, nil
		}
	}

	dirs := []string{r.layout.TicketsDir()}
	if opts.IncludeArchived {
		dirs = append(dirs, r.layout.ArchiveDir())
	}

	tickets, err := scanDirs(ctx, dirs)
	if err != nil {
		return nil, err
	}

	if !opts.IncludeArchived {
		r.lists.Put(allTicketsKey, tickets)
	}
	return tickets, nil
}

// ==========================================================================
// Active pointer
// ==========================================================================

func (r *FileRepository) SetActive(ctx context.Context, ref string) error {
	defer r.observeLatency("set_active", time.Now())

	candidate, err := r.resolveRef(ctx, ref, false)
	if err != nil {
		return err
	}

	guards, err := acquireOrdered(ctx, []string{r.layout.ActivePointerFile()}, "set_active", r.opts.Lock)
	if err != nil {
		return err
	}
	defer releaseAll(guards)

	data := serialize.EncodeActivePointer(ticket.ActivePointer{ID: candidate.ID})
	return artifact.Write(r.layout.ActivePointerFile(), data, 0644)
}

func (r *FileRepository) GetActive(ctx context.Context) (*ticket.Ticket, error) {
	defer r.observeLatency("get_active", time.Now())

	data, err := artifact.Read(r.layout.ActivePointerFile())
	if err != nil {
		if ticketerr.Is(err, ticketerr.NotFound) {
			return nil, ticketerr.New("get_active", ticketerr.NotFound, "")
		}
		return nil, err
	}
	pointer := serialize.DecodeActivePointer(data)
	if pointer.ID == "" {
		return nil, ticketerr.New("get_active", ticketerr.NotFound, "")
	}
	return r.LoadTicket(ctx, pointer.ID)
}

func (r *FileRepository) ClearActive(ctx context.Context) error {
	defer r.observeLatency("clear_active", time.Now())

	guards, err := acquireOrdered(ctx, []string{r.layout.ActivePointerFile()}, "clear_active", r.opts.Lock)
	if err != nil {
		return err
	}
	defer releaseAll(guards)

	return artifact.Write(r.layout.ActivePointerFile(), nil, 0644)
}

func (r *FileRepository) clearActiveIfMatches(id string) error {
	data, err := artifact.Read(r.layout.ActivePointerFile())
	if err != nil {
		return nil // no active pointer file yet; nothing to clear
	}
	if serialize.DecodeActivePointer(data).ID != id {
		return nil
	}
	return artifact.Write(r.layout.ActivePointerFile(), nil, 0644)
}

// ==========================================================================
// Project state
// ==========================================================================

func (r *FileRepository) LoadState(ctx context.Context) (*ticket.ProjectState, error) {
	defer r.observeLatency("load_state", time.Now())

	data, err := artifact.Read(r.layout.StateFile())
	if err != nil {
		if ticketerr.Is(err, ticketerr.NotFound) {
			return nil, ticketerr.New("load_state", ticketerr.NotInitialized, r.layout.Root)
		}
		return nil, err
	}
	return serialize.DecodeState(data)
}

func (r *FileRepository) SaveState(ctx context.Context, s *ticket.ProjectState) error {
	defer r.observeLatency("save_state", time.Now())

	guards, err := acquireOrdered(ctx, []string{r.layout.StateFile()}, "save_state", r.opts.Lock)
	if err != nil {
		return err
	}
	defer releaseAll(guards)

	data, err := serialize.EncodeState(s)
	if err != nil {
		return err
	}
	return artifact.Write(r.layout.StateFile(), data, 0644)
}

// recomputeStats rebuilds ProjectState.Stats from the live ticket set plus
// an archive-directory file count, rather than maintaining counters
// independently — the same "always reconcilable from disk truth" rule the
// cache follows. Called with the state lock already held by the caller.
func (r *FileRepository) recomputeStats(ctx context.Context) error {
	live, err := scanDirs(ctx, []string{r.layout.TicketsDir()})
	if err != nil {
		return err
	}
	archived, err := countDirFiles(r.layout.ArchiveDir())
	if err != nil {
		return err
	}

	data, err := artifact.Read(r.layout.StateFile())
	if err != nil {
		return err
	}
	state, err := serialize.DecodeState(data)
	if err != nil {
		return err
	}

	var stats ticket.Stats
	for _, t := range live {
		switch t.Status {
		case ticket.StatusTodo:
			stats.Open++
		case ticket.StatusDoing:
			stats.Doing++
		case ticket.StatusBlocked:
			stats.Blocked++
		case ticket.StatusReview:
			stats.Review++
		case ticket.StatusDone:
			stats.Done++
		}
	}
	stats.Archived = archived
	state.Stats = stats

	encoded, err := serialize.EncodeState(state)
	if err != nil {
		return err
	}
	return artifact.Write(r.layout.StateFile(), encoded, 0644)
}

// resolveRef resolves a caller-supplied ref against live tickets (and
// archived ones too when includeArchived is set) into exactly one
// candidate, surfacing NotFound/AmbiguousPrefix per spec.md §4.8.
func (r *FileRepository) resolveRef(ctx context.Context, ref string, includeArchived bool) (id.Candidate, error) {
	tickets, err := r.ListTickets(ctx, ListOptions{IncludeArchived: includeArchived})
	if err != nil {
		return id.Candidate{}, err
	}

	candidates := make([]id.Candidate, len(tickets))
	for i, t := range tickets {
		candidates[i] = id.Candidate{ID: t.ID, Slug: t.Slug}
	}

	c, res := id.Resolve(ref, candidates)
	switch res {
	case id.ResolveOne:
		return c, nil
	case id.ResolveAmbiguous:
		return id.Candidate{}, ticketerr.New("resolve_ref", ticketerr.AmbiguousPrefix, ref)
	default:
		return id.Candidate{}, ticketerr.New("resolve_ref", ticketerr.NotFound, ref)
	}
}
