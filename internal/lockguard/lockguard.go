// Package lockguard implements cross-process mutual exclusion over a single
// artifact path, via a sibling "<artifact>.lock" file. See SPEC_FULL.md
// §4.2 for the full contract: exclusive-create acquisition, a 30 s
// staleness window, and a bounded retry budget.
package lockguard

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
	"gopkg.in/yaml.v3"

	"github.com/jra3/ticketstore/internal/ticketerr"
)

// Metrics receives lock contention/reclaim events. A nil Metrics is a
// valid Options value (no telemetry, e.g. in unit tests); pkg/telemetry
// provides the Prometheus-backed implementation used by the running store.
type Metrics interface {
	Contention()
	Reclaim()
}

// Options tunes the acquisition algorithm. The zero value is not usable;
// call DefaultOptions() and override fields as needed.
type Options struct {
	StaleAfter    time.Duration // age after which a held lock is reclaimed
	RetryAttempts int           // total exclusive-create attempts before giving up
	RetryInterval time.Duration // sleep between contended attempts
	Metrics       Metrics       // may be nil
}

// DefaultOptions returns the numbers spec.md §4.2 specifies: a 30 s
// staleness window and a 10×100 ms retry budget (~1 s worst-case wait).
func DefaultOptions() Options {
	return Options{
		StaleAfter:    30 * time.Second,
		RetryAttempts: 10,
		RetryInterval: 100 * time.Millisecond,
	}
}

// Metadata is the lock-file record: used only for diagnostics and
// staleness checks, never for correctness (exclusive-create is what
// actually enforces mutual exclusion).
type Metadata struct {
	HolderID   string `yaml:"holder_id"`
	PID        int    `yaml:"pid"`
	AcquiredAt int64  `yaml:"acquired_at"` // seconds since the Unix epoch
	Operation  string `yaml:"operation"`
}

// Age returns how long ago the lock recorded by m was acquired.
func (m Metadata) Age(now time.Time) time.Duration {
	return now.Sub(time.Unix(m.AcquiredAt, 0))
}

// HolderAlive is a best-effort, non-authoritative liveness probe on the
// recorded holder pid. It is never used to decide reclaim eligibility —
// only Age vs. the staleness window does that — because a pid can be
// recycled by an unrelated process before the window elapses. It exists
// so diagnostics (e.g. a CLI "lock status" command) can report a likely
// cause for a contended lock.
func (m Metadata) HolderAlive() bool {
	return probeAlive(m.PID)
}

// Guard is a scoped, move-only token representing exclusive access to the
// artifact at Path. Release happens via Unlock, which is safe to call more
// than once (only the first call has an effect) and safe to defer
// immediately after a successful Acquire.
type Guard struct {
	Path     string
	lockPath string
	holderID string

	mu       sync.Mutex
	released bool
}

// Acquire attempts to take the lock guarding path, labeling the attempt
// with operation for diagnostics. It implements the algorithm in
// SPEC_FULL.md §4.2: exclusive-create, stale-holder reclaim, bounded
// retry, Contention on exhaustion. Pacing between contended attempts goes
// through a rate.Limiter rather than a bare time.Sleep so a caller's ctx
// can abort a long wait instead of blocking it out to the end of the
// retry budget.
func Acquire(ctx context.Context, path, operation string, opts Options) (*Guard, error) {
	lockPath := path + ".lock"
	holderID := uuid.New().String()
	limiter := rate.NewLimiter(rate.Every(opts.RetryInterval), 1)
	// Spend the initial burst token so the first contended retry also waits
	// a full RetryInterval.
	limiter.Allow()

	var lastErr error
	for attempt := 0; attempt < opts.RetryAttempts; attempt++ {
		f, err := os.OpenFile(lockPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
		if err == nil {
			meta := Metadata{
				HolderID:   holderID,
				PID:        os.Getpid(),
				AcquiredAt: time.Now().Unix(),
				Operation:  operation,
			}
			enc := yaml.NewEncoder(f)
			encErr := enc.Encode(meta)
			closeErr := enc.Close()
			writeErr := f.Close()
			if encErr != nil || closeErr != nil || writeErr != nil {
				_ = os.Remove(lockPath)
				return nil, ticketerr.Wrap("acquire", ticketerr.Io, lockPath, firstNonNil(encErr, closeErr, writeErr))
			}

			g := &Guard{Path: path, lockPath: lockPath, holderID: holderID}
			runtime.SetFinalizer(g, finalizeGuard)
			return g, nil
		}

		if !os.IsExist(err) {
			return nil, ticketerr.Wrap("acquire", ticketerr.Io, lockPath, err)
		}

		// Lock file already exists: read it and decide whether it is stale.
		existing, readErr := readMetadata(lockPath)
		if readErr == nil && existing.Age(time.Now()) > opts.StaleAfter {
			_ = os.Remove(lockPath)
			if opts.Metrics != nil {
				opts.Metrics.Reclaim()
			}
			// Retry immediately, without waiting; the reclaim uses up this
			// attempt. The next loop iteration's exclusive-create is the
			// real test of whether we won the race against another reclaimer.
			continue
		}

		lastErr = err
		if opts.Metrics != nil {
			opts.Metrics.Contention()
		}
		if waitErr := limiter.Wait(ctx); waitErr != nil {
			return nil, ticketerr.Wrap("acquire", ticketerr.Io, lockPath, waitErr)
		}
	}

	return nil, ticketerr.Wrap("acquire", ticketerr.Contention, lockPath, lastErr)
}

// Inspect reads the metadata of a held lock without attempting to acquire
// it, for diagnostics (e.g. a CLI "lock status" command). It returns
// ticketerr.NotFound if no lock is currently held.
func Inspect(path string) (Metadata, error) {
	lockPath := path + ".lock"
	m, err := readMetadata(lockPath)
	if err != nil {
		if os.IsNotExist(err) {
			return Metadata{}, ticketerr.Wrap("inspect", ticketerr.NotFound, lockPath, err)
		}
		return Metadata{}, ticketerr.Wrap("inspect", ticketerr.MalformedInput, lockPath, err)
	}
	return m, nil
}

// Unlock releases the guard. Missing lock file at release time is not an
// error — the holder may have been reclaimed as stale by another process.
// Safe to call multiple times; only the first call has an effect.
func (g *Guard) Unlock() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.released {
		return nil
	}
	g.released = true
	runtime.SetFinalizer(g, nil)

	if err := os.Remove(g.lockPath); err != nil && !os.IsNotExist(err) {
		return ticketerr.Wrap("release", ticketerr.Io, g.lockPath, err)
	}
	return nil
}

// finalizeGuard is a last-resort safety net: if a Guard is garbage
// collected without Unlock ever being called, the lock file would
// otherwise leak until its staleness window expires. This never fires in
// correctly written code (every Acquire is followed by a deferred Unlock)
// but keeps "forgetting to release" from becoming a silent, indefinite leak.
func finalizeGuard(g *Guard) {
	_ = g.Unlock()
}

func readMetadata(lockPath string) (Metadata, error) {
	data, err := os.ReadFile(lockPath)
	if err != nil {
		return Metadata{}, err
	}
	var m Metadata
	if err := yaml.Unmarshal(data, &m); err != nil {
		return Metadata{}, err
	}
	return m, nil
}

func firstNonNil(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return fmt.Errorf("unknown lock write failure")
}
