package ports

import "github.com/storyloom/warden/internal/core/domain"

// ValidationStore is the persisted validation cache, keyed by path
// identity. It is the single authoritative record of validation and
// approval state across builds.
type ValidationStore interface {
	// Get retrieves the entry for an identity. Returns nil, nil if absent.
	Get(id domain.Identity) (*domain.PathEntry, error)

	// Put stores or replaces an entry.
	Put(entry domain.PathEntry) error

	// All returns a copy of every entry in the cache.
	All() (map[domain.Identity]domain.PathEntry, error)

	// Approve marks the given identities approved. Identities absent from
	// the cache are returned as missing; already-approved identities still
	// count as approved (set-union semantics).
	Approve(ids []domain.Identity) (approved, missing []domain.Identity, err error)

	// Reload re-reads the cache from disk, discarding the in-memory copy.
	// The coordinator calls this after syncing the branch tip so mutations
	// are never based on a stale snapshot.
	Reload() error

	// Path returns the repo-relative location of the cache file.
	Path() string
}
