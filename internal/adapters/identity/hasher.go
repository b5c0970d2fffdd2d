// Package identity derives content-addressed identities for paths.
package identity

import (
	"fmt"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/storyloom/warden/internal/core/domain"
	"github.com/storyloom/warden/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.PathHasher = (*Hasher)(nil)

// Hasher computes path identities with xxhash over the ordered route and
// each passage's text. The route section and the content section are
// hashed separately with zero-byte separators, so reordering passages,
// renaming one, or editing any passage's text all change the identity.
type Hasher struct{}

// NewHasher creates a new Hasher.
func NewHasher() *Hasher {
	return &Hasher{}
}

// Hash returns the fixed-width hex identity for a route and its passage
// contents. The digest is deterministic and has no side effects; an empty
// route or blank passage reference is a caller precondition violation and
// fails with domain.ErrInvalidRoute.
func (h *Hasher) Hash(route domain.Route, contents map[domain.PassageRef]string) (domain.Identity, error) {
	if len(route) == 0 {
		return "", zerr.Wrap(domain.ErrInvalidRoute, "route is empty")
	}

	digest := xxhash.New()

	// Structure section: the ordered passage references.
	for _, ref := range route {
		if strings.TrimSpace(string(ref)) == "" {
			return "", zerr.With(zerr.Wrap(domain.ErrInvalidRoute, "blank passage reference"), "route", route.Key())
		}
		_, _ = digest.WriteString(string(ref))
		_, _ = digest.Write([]byte{0})
	}
	_, _ = digest.Write([]byte{0}) // Section separator

	// Content section: each passage's text in route order.
	for _, ref := range route {
		_, _ = digest.WriteString(contents[ref])
		_, _ = digest.Write([]byte{0})
	}

	hex := fmt.Sprintf("%016x", digest.Sum64())
	return domain.Identity(hex[:domain.IdentityLen]), nil
}
