package repo

import (
	"context"
	"sort"

	"github.com/jra3/ticketstore/internal/lockguard"
)

// acquireOrdered locks every path in paths, sorted ascending, so two
// operations that need the same set of artifacts always take their locks
// in the same order and can never deadlock against each other. On any
// failure, every lock already taken is released before returning.
func acquireOrdered(ctx context.Context, paths []string, operation string, opts lockguard.Options) ([]*lockguard.Guard, error) {
	ordered := make([]string, len(paths))
	copy(ordered, paths)
	sort.Strings(ordered)

	guards := make([]*lockguard.Guard, 0, len(ordered))
	for _, p := range ordered {
		g, err := lockguard.Acquire(ctx, p, operation, opts)
		if err != nil {
			releaseAll(guards)
			return nil, err
		}
		guards = append(guards, g)
	}
	return guards, nil
}

// releaseAll unlocks every guard in reverse acquisition order.
func releaseAll(guards []*lockguard.Guard) {
	for i := len(guards) - 1; i >= 0; i-- {
		_ = guards[i].Unlock()
	}
}
