// Package id mints ticket identifiers and slugs, and resolves caller-supplied
// refs (full id, full slug, or unique prefix) against a candidate set.
package id

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// slugPattern matches a full slug: a 12-digit local-time prefix followed by
// one or more lowercase kebab segments.
var slugPattern = regexp.MustCompile(`^[0-9]{12}-[a-z0-9]+(?:-[a-z0-9]+)*$`)

// kebabBasePattern matches the caller-supplied base before the timestamp
// prefix is attached.
var kebabBasePattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// minPrefixLen is the shortest prefix spec.md treats as resolvable.
const minPrefixLen = 4

// New mints a fresh 128-bit ticket or subtask id. Collisions are
// astronomically unlikely; callers that detect one (a uniqueness check
// failing on write) should mint again and retry, per spec.md §4.8.
func New() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")
}

// NewShort mints an 8-hex-character id for a subtask, scoped to the owning
// ticket rather than globally unique.
func NewShort() string {
	return New()[:8]
}

// Slugify normalizes a caller-supplied base into the kebab form the slug
// grammar requires: lowercased, non [a-z0-9] runs collapsed to a single
// hyphen, leading/trailing hyphens trimmed.
func Slugify(base string) string {
	var b strings.Builder
	lastHyphen := false
	for _, r := range strings.ToLower(base) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen && b.Len() > 0 {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimRight(b.String(), "-")
}

// NewSlug prepends a YYYYMMDDHHMM local-civil-time timestamp to a
// normalized kebab base, per spec.md §4.8.
func NewSlug(base string, now time.Time) string {
	clean := Slugify(base)
	if clean == "" {
		clean = "ticket"
	}
	return now.Local().Format("200601021504") + "-" + clean
}

// ValidSlug reports whether s matches the full slug grammar.
func ValidSlug(s string) bool {
	return slugPattern.MatchString(s)
}

// ValidBase reports whether base is an acceptable pre-timestamp kebab base.
func ValidBase(base string) bool {
	return kebabBasePattern.MatchString(base)
}

// Candidate is the minimal shape Resolve needs from a ticket: its id and
// slug. Repository passes ticket.Ticket values satisfying this implicitly
// via an adapter slice built at call sites.
type Candidate struct {
	ID   string
	Slug string
}

// ResolveResult is the outcome of matching a ref against a candidate set.
type ResolveResult int

const (
	// ResolveNotFound means no candidate matched.
	ResolveNotFound ResolveResult = iota
	// ResolveOne means exactly one candidate matched.
	ResolveOne
	// ResolveAmbiguous means more than one candidate matched a prefix.
	ResolveAmbiguous
)

// Resolve matches ref against candidates as: an exact id, an exact slug, or
// (if len(ref) >= minPrefixLen) a unique prefix of either id or slug. It
// never guesses between ties — any prefix match count other than exactly
// one is reported as Ambiguous or NotFound, never resolved implicitly. A ref
// shorter than minPrefixLen never resolves to a candidate: it is reported as
// Ambiguous when it prefixes more than one candidate, and NotFound otherwise.
func Resolve(ref string, candidates []Candidate) (Candidate, ResolveResult) {
	for _, c := range candidates {
		if c.ID == ref || c.Slug == ref {
			return c, ResolveOne
		}
	}

	var matches []Candidate
	for _, c := range candidates {
		if strings.HasPrefix(c.ID, ref) || strings.HasPrefix(c.Slug, ref) {
			matches = append(matches, c)
		}
	}

	switch len(matches) {
	case 0:
		return Candidate{}, ResolveNotFound
	case 1:
		if len(ref) < minPrefixLen {
			return Candidate{}, ResolveNotFound
		}
		return matches[0], ResolveOne
	default:
		return Candidate{}, ResolveAmbiguous
	}
}
