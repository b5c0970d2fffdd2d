package ports

import (
	"context"

	"github.com/storyloom/warden/internal/core/domain"
)

// CollaboratorChecker answers whether an actor may approve paths. The
// lookup is made against the live collaborator directory on every
// request; decisions are never cached so revoked access takes effect
// immediately. Implementations fail closed.
//
//go:generate go run go.uber.org/mock/mockgen -source=forge.go -destination=mocks/mock_forge.go -package=mocks
type CollaboratorChecker interface {
	IsCollaborator(ctx context.Context, user string) (bool, error)
}

// CommentPoster posts feedback comments on issues and pull requests.
type CommentPoster interface {
	PostComment(ctx context.Context, issueNumber int, body string) error
}

// ArtifactFetcher retrieves the validation cache snapshot produced by a
// branch's latest check run.
type ArtifactFetcher interface {
	// FetchValidationCache returns the cache snapshot from the newest
	// artifact for the branch, or domain.ErrArtifactMissing when the
	// branch has no artifact.
	FetchValidationCache(ctx context.Context, branch string) (map[domain.Identity]domain.PathEntry, error)
}

// PullRequestReader resolves pull request metadata.
type PullRequestReader interface {
	// PullRequestHeadRef returns the head branch of a pull request.
	PullRequestHeadRef(ctx context.Context, number int) (string, error)
}
