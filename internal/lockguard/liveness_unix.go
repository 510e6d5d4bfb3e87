//go:build unix

package lockguard

import "golang.org/x/sys/unix"

// probeAlive sends signal 0 to pid: delivered iff the process exists and
// is visible to us. This is advisory only — SPEC_FULL.md §4.2 keeps the
// 30 s staleness window as the sole authoritative reclaim trigger, since a
// pid can be recycled by an unrelated process before the window elapses.
func probeAlive(pid int) bool {
	if pid <= 0 {
		return false
	}
	err := unix.Kill(pid, 0)
	return err == nil
}
