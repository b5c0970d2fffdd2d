// Package domain contains the core types for path approval and categorization.
package domain

import (
	"regexp"
	"strings"
	"time"
)

// IdentityLen is the fixed width of a path identity in hex characters.
const IdentityLen = 8

var identityPattern = regexp.MustCompile(`^[0-9a-f]{8}$`)

// Identity is the content-addressed name of a path. It is derived from the
// path's route and passage contents, so two paths with identical structure
// and text share an identity and any edit produces a new one.
type Identity string

// Valid reports whether the identity matches the fixed-width hex format.
func (id Identity) Valid() bool {
	return identityPattern.MatchString(string(id))
}

func (id Identity) String() string {
	return string(id)
}

// PassageRef names a single passage inside a story.
type PassageRef string

// Route is the ordered passage sequence that defines one traversable path.
type Route []PassageRef

// Key returns a stable string form of the route, used to match the same
// structural path across caches when identities differ.
func (r Route) Key() string {
	parts := make([]string, len(r))
	for i, ref := range r {
		parts[i] = string(ref)
	}
	return strings.Join(parts, "\x00")
}

// PathEntry is one narrative path as recorded in the validation cache.
// Identity doubles as the cache key and is never serialized inside the
// value. Approved is the only field the approval subsystem mutates in
// place; any content change produces a new entry under a new identity.
type PathEntry struct {
	Identity         Identity  `json:"-"`
	Route            Route     `json:"route"`
	Validated        bool      `json:"validated"`
	Approved         bool      `json:"approved,omitzero"`
	CreatedDate      time.Time `json:"created_date,omitzero"`
	LastModifiedDate time.Time `json:"last_modified_date,omitzero"`
}

// LastTouched returns the later of the entry's two dates, normalized to
// UTC. The zero time means neither date is recorded.
func (e PathEntry) LastTouched() time.Time {
	ts := e.CreatedDate
	if e.LastModifiedDate.After(ts) {
		ts = e.LastModifiedDate
	}
	if ts.IsZero() {
		return time.Time{}
	}
	return ts.UTC()
}
