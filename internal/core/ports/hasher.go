package ports

import "github.com/storyloom/warden/internal/core/domain"

// PathHasher derives the content-addressed identity of a path. The
// digest covers the ordered route and every passage's text, so any
// reorder or edit yields a different identity.
type PathHasher interface {
	// Hash returns the identity for the route and its passage contents.
	// An empty route or blank passage reference fails with
	// domain.ErrInvalidRoute.
	Hash(route domain.Route, contents map[domain.PassageRef]string) (domain.Identity, error)
}
