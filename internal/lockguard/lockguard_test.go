package lockguard

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jra3/ticketstore/internal/ticketerr"
)

func fastOptions() Options {
	return Options{
		StaleAfter:    30 * time.Second,
		RetryAttempts: 10,
		RetryInterval: 5 * time.Millisecond,
	}
}

func TestAcquireAndUnlockRoundTrip(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "ticket-1.yaml")

	g, err := Acquire(context.Background(), path, "save_ticket", fastOptions())
	if err != nil {
		t.Fatalf("Acquire() error: %v", err)
	}
	if _, err := os.Stat(path + ".lock"); err != nil {
		t.Fatalf("lock file missing after Acquire: %v", err)
	}

	if err := g.Unlock(); err != nil {
		t.Fatalf("Unlock() error: %v", err)
	}
	if _, err := os.Stat(path + ".lock"); !os.IsNotExist(err) {
		t.Fatalf("lock file still present after Unlock: %v", err)
	}
}

func TestUnlockIsIdempotent(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "ticket-1.yaml")

	g, err := Acquire(context.Background(), path, "save_ticket", fastOptions())
	if err != nil {
		t.Fatalf("Acquire() error: %v", err)
	}
	if err := g.Unlock(); err != nil {
		t.Fatalf("first Unlock() error: %v", err)
	}
	if err := g.Unlock(); err != nil {
		t.Fatalf("second Unlock() must be a no-op, got error: %v", err)
	}
}

// TestContendedAcquireFailsAfterBudget mirrors spec scenario S3: a second
// acquirer against a fresh (non-stale) held lock exhausts its retry budget
// and fails with Contention.
func TestContendedAcquireFailsAfterBudget(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "ticket-1.yaml")

	holder, err := Acquire(context.Background(), path, "save_ticket", fastOptions())
	if err != nil {
		t.Fatalf("first Acquire() error: %v", err)
	}
	defer holder.Unlock()

	opts := fastOptions()
	opts.RetryAttempts = 3
	_, err = Acquire(context.Background(), path, "save_ticket", opts)
	if err == nil {
		t.Fatal("second Acquire() against a held, fresh lock must fail")
	}
	if !ticketerr.Is(err, ticketerr.Contention) {
		t.Fatalf("error kind = %v, want Contention", err)
	}
}

// TestStaleLockIsReclaimed mirrors spec scenario S4: process A's lock file
// records acquired_at 31s in the past, process B (simulated as a second
// Acquire call) must reclaim it and succeed within its retry budget.
func TestStaleLockIsReclaimed(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "ticket-1.yaml")
	lockPath := path + ".lock"

	stale := Metadata{
		HolderID:   "stale-holder",
		PID:        999999, // unlikely to be a live pid on the test host
		AcquiredAt: time.Now().Add(-31 * time.Second).Unix(),
		Operation:  "save_ticket",
	}
	writeRawMetadata(t, lockPath, stale)

	g, err := Acquire(context.Background(), path, "save_ticket", fastOptions())
	if err != nil {
		t.Fatalf("Acquire() over a stale lock must succeed, got: %v", err)
	}
	defer g.Unlock()

	got, err := readMetadata(lockPath)
	if err != nil {
		t.Fatalf("readMetadata() error: %v", err)
	}
	if got.HolderID == stale.HolderID {
		t.Fatal("lock file was not actually replaced by the reclaiming holder")
	}
}

func TestFreshLockIsNotReclaimed(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "ticket-1.yaml")
	lockPath := path + ".lock"

	fresh := Metadata{
		HolderID:   "fresh-holder",
		PID:        os.Getpid(),
		AcquiredAt: time.Now().Add(-5 * time.Second).Unix(),
		Operation:  "save_ticket",
	}
	writeRawMetadata(t, lockPath, fresh)

	opts := fastOptions()
	opts.RetryAttempts = 2
	_, err := Acquire(context.Background(), path, "save_ticket", opts)
	if !ticketerr.Is(err, ticketerr.Contention) {
		t.Fatalf("Acquire() over a fresh lock = %v, want Contention", err)
	}
}

func TestInspectReportsHeldLock(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "ticket-1.yaml")

	g, err := Acquire(context.Background(), path, "save_ticket", fastOptions())
	if err != nil {
		t.Fatalf("Acquire() error: %v", err)
	}
	defer g.Unlock()

	m, err := Inspect(path)
	if err != nil {
		t.Fatalf("Inspect() error: %v", err)
	}
	if m.Operation != "save_ticket" {
		t.Errorf("Inspect().Operation = %q, want save_ticket", m.Operation)
	}
}

func TestInspectNotFoundWhenUnlocked(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "ticket-1.yaml")

	_, err := Inspect(path)
	if !ticketerr.Is(err, ticketerr.NotFound) {
		t.Fatalf("Inspect() on an unlocked artifact = %v, want NotFound", err)
	}
}

type countingMetrics struct {
	contention int
	reclaims   int
}

func (c *countingMetrics) Contention() { c.contention++ }
func (c *countingMetrics) Reclaim()    { c.reclaims++ }

func TestAcquireReportsContentionMetric(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "ticket-1.yaml")

	holder, err := Acquire(context.Background(), path, "save_ticket", fastOptions())
	if err != nil {
		t.Fatalf("first Acquire() error: %v", err)
	}
	defer holder.Unlock()

	metrics := &countingMetrics{}
	opts := fastOptions()
	opts.RetryAttempts = 3
	opts.Metrics = metrics
	if _, err := Acquire(context.Background(), path, "save_ticket", opts); !ticketerr.Is(err, ticketerr.Contention) {
		t.Fatalf("expected Contention, got %v", err)
	}
	if metrics.contention == 0 {
		t.Fatal("expected at least one contention event recorded")
	}
	if metrics.reclaims != 0 {
		t.Fatalf("expected no reclaim events against a fresh holder, got %d", metrics.reclaims)
	}
}

func TestAcquireReportsReclaimMetric(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "ticket-1.yaml")
	lockPath := path + ".lock"

	stale := Metadata{
		HolderID:   "stale-holder",
		PID:        999999,
		AcquiredAt: time.Now().Add(-31 * time.Second).Unix(),
		Operation:  "save_ticket",
	}
	writeRawMetadata(t, lockPath, stale)

	metrics := &countingMetrics{}
	opts := fastOptions()
	opts.Metrics = metrics
	g, err := Acquire(context.Background(), path, "save_ticket", opts)
	if err != nil {
		t.Fatalf("Acquire() over a stale lock must succeed, got: %v", err)
	}
	defer g.Unlock()

	if metrics.reclaims == 0 {
		t.Fatal("expected at least one reclaim event recorded")
	}
}

func writeRawMetadata(t *testing.T, lockPath string, m Metadata) {
	t.Helper()
	data, err := yaml.Marshal(m)
	if err != nil {
		t.Fatalf("yaml.Marshal() error: %v", err)
	}
	if err := os.WriteFile(lockPath, data, 0644); err != nil {
		t.Fatalf("os.WriteFile() error: %v", err)
	}
}
