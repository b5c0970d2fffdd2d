package ports

import (
	"context"

	"github.com/storyloom/warden/internal/core/domain"
)

// CacheCommitter persists validation cache changes to version control.
//
//go:generate go run go.uber.org/mock/mockgen -source=scm.go -destination=mocks/mock_scm.go -package=mocks
type CacheCommitter interface {
	// SyncBranch checks out the branch and resets it to the remote tip.
	SyncBranch(ctx context.Context, branch string) error

	// CommitAndPush stages the given paths, commits them with the message
	// and pushes to the branch. A push rejected because the remote tip
	// moved fails with domain.ErrCommitConflict. When the staged paths
	// carry no changes the commit is suppressed and nil is returned.
	CommitAndPush(ctx context.Context, branch, message string, paths []string) error
}

// BaseLoader reads the validation cache as committed on a base ref, used
// by git-relative categorization.
type BaseLoader interface {
	// LoadCacheAt returns the cache file at ref, or an empty map when the
	// file does not exist on that ref.
	LoadCacheAt(ctx context.Context, ref, path string) (map[domain.Identity]domain.PathEntry, error)
}
