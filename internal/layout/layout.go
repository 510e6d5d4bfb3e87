// Package layout is a pure function from a project root to every on-disk
// path the store derives from it. It has no dependencies on any other
// component and caches nothing — paths are recomputed on every call.
package layout

import (
	"fmt"
	"path/filepath"

	securejoin "github.com/cyphar/filepath-securejoin"
)

// Ext is the canonical text-serialization file extension (see
// SPEC_FULL.md §4.3: YAML is the chosen format).
const Ext = "yaml"

// Layout names every path under a single project root.
type Layout struct {
	Root string
}

// New returns a Layout rooted at root. root is not required to exist yet;
// Initialize is what creates it.
func New(root string) Layout {
	return Layout{Root: filepath.Clean(root)}
}

// ConfigFile is the project-local serializer/version marker, distinct from
// the process-wide CLI config (internal/config).
func (l Layout) ConfigFile() string { return filepath.Join(l.Root, "config."+Ext) }

// StateFile is the single ProjectState artifact.
func (l Layout) StateFile() string { return filepath.Join(l.Root, "state."+Ext) }

// ActivePointerFile is the single ActivePointer artifact.
func (l Layout) ActivePointerFile() string { return filepath.Join(l.Root, "active_ticket") }

// TicketsDir holds one file per live ticket.
func (l Layout) TicketsDir() string { return filepath.Join(l.Root, "tickets") }

// ArchiveDir holds one file per archived ticket.
func (l Layout) ArchiveDir() string { return filepath.Join(l.Root, "archive") }

// SpecsDir, TemplatesDir, PluginsDir, BackupsDir round out the stable
// on-disk layout named in spec.md §6.1. The core does not write to them;
// they exist so external collaborators (out of scope here) have a fixed
// place to put things.
func (l Layout) SpecsDir() string     { return filepath.Join(l.Root, "specs") }
func (l Layout) TemplatesDir() string { return filepath.Join(l.Root, "templates") }
func (l Layout) PluginsDir() string   { return filepath.Join(l.Root, "plugins") }
func (l Layout) BackupsDir() string   { return filepath.Join(l.Root, "backups") }

// TicketPath returns the live-ticket artifact path for id. It routes
// through securejoin so a malformed or adversarial id (e.g. containing
// "../") can never resolve outside TicketsDir().
func (l Layout) TicketPath(id string) (string, error) {
	return l.joinUnder(l.TicketsDir(), id+"."+Ext)
}

// ArchivePath returns the archived-ticket artifact path for id.
func (l Layout) ArchivePath(id string) (string, error) {
	return l.joinUnder(l.ArchiveDir(), id+"."+Ext)
}

// LockPath returns the sibling lock-file path for an artifact path.
func (l Layout) LockPath(artifactPath string) string {
	return artifactPath + ".lock"
}

func (l Layout) joinUnder(dir, name string) (string, error) {
	joined, err := securejoin.SecureJoin(dir, name)
	if err != nil {
		return "", fmt.Errorf("layout: join %q under %q: %w", name, dir, err)
	}
	return joined, nil
}
