// Package git shells out to the git CLI for the repository operations the
// approval flow needs: syncing a branch tip, committing the mutated cache,
// and reading the cache as committed on a base ref.
package git

import (
	"context"
	"encoding/json"
	"os/exec"
	"strings"

	"github.com/storyloom/warden/internal/core/domain"
	"github.com/storyloom/warden/internal/core/ports"
	"go.trai.ch/zerr"
)

var (
	_ ports.CacheCommitter = (*Client)(nil)
	_ ports.BaseLoader     = (*Client)(nil)
)

// Client runs git commands inside a working copy.
type Client struct {
	dir    string
	remote string
}

// NewClient creates a Client for the working copy at dir, pushing to and
// fetching from the "origin" remote.
func NewClient(dir string) *Client {
	return &Client{dir: dir, remote: "origin"}
}

func (c *Client) run(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = c.dir
	output, err := cmd.CombinedOutput()
	if err != nil {
		return string(output), zerr.With(
			zerr.With(zerr.Wrap(err, "git command failed"), "args", strings.Join(args, " ")),
			"output", strings.TrimSpace(string(output)),
		)
	}
	return string(output), nil
}

// CurrentBranch returns the branch the working copy has checked out.
func (c *Client) CurrentBranch(ctx context.Context) (string, error) {
	out, err := c.run(ctx, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// SyncBranch checks out the branch and resets it to the remote tip, so a
// following cache mutation is based on the branch's current state.
func (c *Client) SyncBranch(ctx context.Context, branch string) error {
	if _, err := c.run(ctx, "fetch", c.remote, branch); err != nil {
		return err
	}
	if _, err := c.run(ctx, "checkout", branch); err != nil {
		return err
	}
	if _, err := c.run(ctx, "reset", "--hard", c.remote+"/"+branch); err != nil {
		return err
	}
	return nil
}

// CommitAndPush stages the given paths, commits them and pushes to the
// branch. When the staged paths carry no changes the commit is suppressed
// and nil is returned, which keeps re-delivered approvals from producing
// duplicate commits. A push rejected because the remote tip moved fails
// with domain.ErrCommitConflict so the caller can retry against a fresh
// tip.
func (c *Client) CommitAndPush(ctx context.Context, branch, message string, paths []string) error {
	changed, err := c.hasChanges(ctx, paths)
	if err != nil {
		return err
	}
	if !changed {
		return nil
	}

	addArgs := append([]string{"add", "--"}, paths...)
	if _, err := c.run(ctx, addArgs...); err != nil {
		return err
	}
	if _, err := c.run(ctx, "commit", "-m", message); err != nil {
		return err
	}

	if output, err := c.run(ctx, "push", c.remote, branch); err != nil {
		if isRejectedPush(output) {
			return zerr.With(zerr.Wrap(domain.ErrCommitConflict, "push rejected"), "branch", branch)
		}
		return err
	}
	return nil
}

// LoadCacheAt returns the validation cache as committed on ref, or an
// empty map when the file does not exist on that ref.
func (c *Client) LoadCacheAt(ctx context.Context, ref, path string) (map[domain.Identity]domain.PathEntry, error) {
	out, err := c.run(ctx, "show", ref+":"+path)
	if err != nil {
		if strings.Contains(out, "does not exist") || strings.Contains(out, "exists on disk, but not in") {
			return map[domain.Identity]domain.PathEntry{}, nil
		}
		return nil, err
	}

	entries := make(map[domain.Identity]domain.PathEntry)
	if err := json.Unmarshal([]byte(out), &entries); err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to unmarshal cache at ref"), "ref", ref)
	}
	for id, entry := range entries {
		entry.Identity = id
		entries[id] = entry
	}
	return entries, nil
}

func (c *Client) hasChanges(ctx context.Context, paths []string) (bool, error) {
	args := append([]string{"status", "--porcelain", "--"}, paths...)
	out, err := c.run(ctx, args...)
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(out) != "", nil
}

func isRejectedPush(output string) bool {
	return strings.Contains(output, "[rejected]") ||
		strings.Contains(output, "non-fast-forward") ||
		strings.Contains(output, "fetch first")
}
