// Package artifact implements crash-safe single-file reads and writes: the
// write path always goes through a temp-file-in-the-same-directory,
// fsync, rename sequence, so a reader never observes a partially written
// file (SPEC_FULL.md §4.4, spec.md property 2).
package artifact

import (
	"os"
	"path/filepath"

	"github.com/jra3/ticketstore/internal/ticketerr"
)

// Read returns the raw bytes at path. A missing file is reported as
// ticketerr.NotFound rather than a bare *os.PathError.
func Read(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ticketerr.Wrap("read", ticketerr.NotFound, path, err)
		}
		return nil, ticketerr.Wrap("read", ticketerr.Io, path, err)
	}
	return data, nil
}

// Write atomically replaces path's contents with data. It writes to a
// temp file in path's own directory (so the final rename is same-filesystem
// and therefore atomic on POSIX), fsyncs the temp file before renaming, and
// fsyncs the containing directory after, so the rename itself is durable.
func Write(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return ticketerr.Wrap("write", ticketerr.Io, path, err)
	}
	tmpName := tmp.Name()

	if err := writeAndSync(tmp, data, perm); err != nil {
		_ = os.Remove(tmpName)
		return ticketerr.Wrap("write", ticketerr.Io, path, err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return ticketerr.Wrap("write", ticketerr.Io, path, err)
	}

	if err := syncDir(dir); err != nil {
		return ticketerr.Wrap("write", ticketerr.Io, path, err)
	}
	return nil
}

func writeAndSync(f *os.File, data []byte, perm os.FileMode) error {
	if _, err := f.Write(data); err != nil {
		f.Close()
		return err
	}
	if err := f.Chmod(perm); err != nil {
		f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func syncDir(dir string) error {
	d, err := os.Open(dir)
	if err != nil {
		return err
	}
	defer d.Close()
	// Directory fsync can fail with ENOTSUP or similar on some filesystems
	// (notably some network and overlay mounts); the rename itself is
	// already durable there, so this is best-effort and never fatal.
	_ = d.Sync()
	return nil
}

// Delete removes the artifact at path along with its sibling lock file, if
// any. Deleting a file that does not exist is not an error.
func Delete(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return ticketerr.Wrap("delete", ticketerr.Io, path, err)
	}
	lockPath := path + ".lock"
	if err := os.Remove(lockPath); err != nil && !os.IsNotExist(err) {
		return ticketerr.Wrap("delete", ticketerr.Io, lockPath, err)
	}
	return nil
}

// Exists reports whether an artifact is present at path.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
