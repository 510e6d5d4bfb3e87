package repo

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/jra3/ticketstore/internal/artifact"
	"github.com/jra3/ticketstore/internal/layout"
	"github.com/jra3/ticketstore/internal/serialize"
	"github.com/jra3/ticketstore/internal/ticket"
)

// concurrentScanThreshold is the file count at or above which a directory scan
// switches from a plain loop to an errgroup+semaphore fan-out. Below it
// goroutine setup overhead outweighs the benefit.
const concurrentScanThreshold = 10

// scanDirs decodes every ticket artifact under dirs, skipping entries that
// fail to decode (a malformed file never aborts a list). It picks between a
// sequential and a bounded-concurrency path based on the total file count.
func scanDirs(ctx context.Context, dirs []string) ([]*ticket.Ticket, error) {
	var paths []string
	for _, dir := range dirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("read directory %s: %w", dir, err)
		}
		for _, entry := range entries {
			if entry.IsDir() || !strings.HasSuffix(entry.Name(), "."+layout.Ext) {
				continue
			}
			paths = append(paths, filepath.Join(dir, entry.Name()))
		}
	}

	if len(paths) == 0 {
		return []*ticket.Ticket{}, nil
	}
	if len(paths) < concurrentScanThreshold {
		return scanSequential(ctx, paths)
	}
	return scanConcurrent(ctx, paths)
}

func scanSequential(ctx context.Context, paths []string) ([]*ticket.Ticket, error) {
	tickets := make([]*ticket.Ticket, 0, len(paths))
	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		t, err := loadTicketFile(p)
		if err != nil {
			continue // skip unreadable/malformed entries rather than fail the whole list
		}
		tickets = append(tickets, t)
	}
	return tickets, nil
}

func scanConcurrent(ctx context.Context, paths []string) ([]*ticket.Ticket, error) {
	workers := runtime.NumCPU()
	if workers > len(paths) {
		workers = len(paths)
	}
	if workers > 8 {
		workers = 8
	}

	sem := semaphore.NewWeighted(int64(workers))
	tickets := make([]*ticket.Ticket, 0, len(paths))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	for _, p := range paths {
		p := p
		g.Go(func() error {
			if err := sem.Acquire(gctx, 1); err != nil {
				return err
			}
			defer sem.Release(1)

			if err := gctx.Err(); err != nil {
				return err
			}

			t, err := loadTicketFile(p)
			if err != nil {
				return nil // skip unreadable/malformed entries
			}

			mu.Lock()
			tickets = append(tickets, t)
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return tickets, nil
}

func loadTicketFile(path string) (*ticket.Ticket, error) {
	data, err := artifact.Read(path)
	if err != nil {
		return nil, err
	}
	return serialize.DecodeTicket(data)
}
