// Package approval implements the webhook-driven approval state machine:
// parse, authorize, fetch the build artifact, mutate the validation
// cache, commit, confirm.
package approval

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/storyloom/warden/internal/core/domain"
	"github.com/storyloom/warden/internal/core/ports"
	"go.trai.ch/zerr"
)

// State represents a stage of the approval state machine.
type State string

const (
	// StateIgnored means the comment carried no recognized command. This is
	// the only silent terminal state.
	StateIgnored State = "Ignored"
	// StateConfirmed means the command ran to completion and a confirmation
	// comment was posted.
	StateConfirmed State = "Confirmed"
	// StateRejected means the command terminated on a failure branch and a
	// rejection comment was posted.
	StateRejected State = "Rejected"
)

// Rejection reasons surfaced in Outcome.Reason.
const (
	ReasonUnauthorized        = "Unauthorized"
	ReasonPullRequestUnknown  = "PullRequestUnknown"
	ReasonArtifactUnavailable = "ArtifactUnavailable"
	ReasonCommitConflict      = "CommitConflict"
	ReasonCommitFailed        = "CommitFailed"
)

// Request carries one inbound approval comment.
type Request struct {
	Actor       string
	Body        string
	IssueNumber int
	CommentID   int64
}

// Outcome describes the terminal state of one processed request.
type Outcome struct {
	State    State
	Reason   string
	Command  *domain.ApprovalCommand
	Approved []domain.Identity
	NotFound []domain.Identity
}

// Config holds the coordinator's tunables.
type Config struct {
	// CachePath is the repo-relative cache location included in commits.
	CachePath string
	// RequestTimeout bounds each external call independently.
	RequestTimeout time.Duration
	// CommitRetries bounds read-modify-write attempts on commit conflict.
	CommitRetries int
}

// Coordinator drives approval commands to a terminal state. Each request
// is processed fully within one call; no state survives across requests
// except the validation cache itself.
type Coordinator struct {
	store         ports.ValidationStore
	committer     ports.CacheCommitter
	collaborators ports.CollaboratorChecker
	comments      ports.CommentPoster
	artifacts     ports.ArtifactFetcher
	pulls         ports.PullRequestReader
	logger        ports.Logger
	locks         *branchLocks
	cfg           Config
}

// NewCoordinator creates a Coordinator.
func NewCoordinator(
	store ports.ValidationStore,
	committer ports.CacheCommitter,
	collaborators ports.CollaboratorChecker,
	comments ports.CommentPoster,
	artifacts ports.ArtifactFetcher,
	pulls ports.PullRequestReader,
	logger ports.Logger,
	cfg Config,
) *Coordinator {
	if cfg.CommitRetries <= 0 {
		cfg.CommitRetries = 3
	}
	return &Coordinator{
		store:         store,
		committer:     committer,
		collaborators: collaborators,
		comments:      comments,
		artifacts:     artifacts,
		pulls:         pulls,
		logger:        logger,
		locks:         newBranchLocks(),
		cfg:           cfg,
	}
}

// Process runs one comment through the state machine. Every successfully
// parsed command produces exactly one confirmation or rejection comment;
// a comment with no command terminates silently.
func (c *Coordinator) Process(ctx context.Context, req Request) (Outcome, error) {
	cmd, warnings := domain.ParseApprovalCommand(req.Actor, req.Body)
	for _, w := range warnings {
		c.logger.Warn(fmt.Sprintf("dropping malformed token %q: %s", w.Token, w.Reason))
	}
	if cmd == nil {
		return Outcome{State: StateIgnored}, nil
	}
	cmd.Comment = domain.CommentRef{IssueNumber: req.IssueNumber, CommentID: req.CommentID}

	if !c.authorize(ctx, cmd.Actor) {
		c.reject(ctx, cmd, "you are not a repository collaborator, so you cannot approve paths")
		return Outcome{State: StateRejected, Reason: ReasonUnauthorized, Command: cmd}, nil
	}

	branch, err := c.headRef(ctx, req.IssueNumber)
	if err != nil {
		c.reject(ctx, cmd, "could not resolve the pull request for this comment")
		return Outcome{State: StateRejected, Reason: ReasonPullRequestUnknown, Command: cmd}, err
	}

	artifact, err := c.fetchArtifact(ctx, branch)
	if err != nil {
		c.reject(ctx, cmd, "could not fetch the validation artifact for this pull request")
		return Outcome{State: StateRejected, Reason: ReasonArtifactUnavailable, Command: cmd}, err
	}

	approved, notFound, err := c.mutateAndCommit(ctx, branch, cmd.Actor, cmd.Identities, artifact)
	if err != nil {
		reason := ReasonCommitFailed
		msg := "approving paths failed while committing the validation cache"
		if errors.Is(err, domain.ErrCommitConflict) {
			reason = ReasonCommitConflict
			msg = "the branch moved repeatedly while committing approvals; please retry"
		}
		c.reject(ctx, cmd, msg)
		return Outcome{State: StateRejected, Reason: reason, Command: cmd}, err
	}

	if err := c.confirm(ctx, cmd, approved, notFound); err != nil {
		return Outcome{State: StateConfirmed, Command: cmd, Approved: approved, NotFound: notFound}, err
	}

	return Outcome{State: StateConfirmed, Command: cmd, Approved: approved, NotFound: notFound}, nil
}

// ApproveLocal marks identities approved in the working copy's cache and
// commits the result to the given branch. It bypasses comment parsing,
// authorization and artifact fetch; it exists for the operator CLI.
func (c *Coordinator) ApproveLocal(ctx context.Context, actor, branch string, ids []domain.Identity) (approved, notFound []domain.Identity, err error) {
	return c.mutateAndCommit(ctx, branch, actor, ids, nil)
}

// authorize checks live collaborator membership and fails closed: a
// lookup error or timeout means not authorized.
func (c *Coordinator) authorize(ctx context.Context, actor string) bool {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	ok, err := c.collaborators.IsCollaborator(callCtx, actor)
	if err != nil {
		c.logger.Error(zerr.With(zerr.Wrap(err, "collaborator check failed, treating as unauthorized"), "actor", actor))
		return false
	}
	return ok
}

func (c *Coordinator) headRef(ctx context.Context, issueNumber int) (string, error) {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()
	return c.pulls.PullRequestHeadRef(callCtx, issueNumber)
}

// fetchArtifact returns the branch's validation snapshot. A missing
// artifact is not fatal to the batch: identities are then resolved
// against the current cache only and the rest report not-found.
func (c *Coordinator) fetchArtifact(ctx context.Context, branch string) (map[domain.Identity]domain.PathEntry, error) {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	artifact, err := c.artifacts.FetchValidationCache(callCtx, branch)
	if err != nil {
		if errors.Is(err, domain.ErrArtifactMissing) {
			c.logger.Warn(fmt.Sprintf("no validation artifact for branch %s, resolving against current cache only", branch))
			return map[domain.Identity]domain.PathEntry{}, nil
		}
		return nil, err
	}
	return artifact, nil
}

// mutateAndCommit is the per-branch critical section: sync the branch
// tip, re-read the cache, apply approvals and push one commit covering
// the whole batch. On a push conflict the whole cycle retries against
// the refreshed tip up to the configured bound.
func (c *Coordinator) mutateAndCommit(
	ctx context.Context,
	branch, actor string,
	ids []domain.Identity,
	artifact map[domain.Identity]domain.PathEntry,
) (approved, notFound []domain.Identity, err error) {
	unlock := c.locks.acquire(branch)
	defer unlock()

	for attempt := 0; attempt < c.cfg.CommitRetries; attempt++ {
		if err := c.syncBranch(ctx, branch); err != nil {
			return nil, nil, err
		}
		if err := c.store.Reload(); err != nil {
			return nil, nil, err
		}

		approved, notFound, err = c.applyApprovals(ids, artifact)
		if err != nil {
			return nil, nil, err
		}

		if len(approved) == 0 {
			return approved, notFound, nil
		}

		err = c.commit(ctx, branch, actor, approved)
		if err == nil {
			return approved, notFound, nil
		}
		if !errors.Is(err, domain.ErrCommitConflict) {
			return nil, nil, err
		}
		c.logger.Warn(fmt.Sprintf("commit conflict on %s, retrying against refreshed tip", branch))
	}

	return nil, nil, zerr.With(zerr.Wrap(domain.ErrCommitConflict, "retries exhausted"), "branch", branch)
}

// applyApprovals classifies each requested identity in submitted order.
// Identities present in the current cache are approved in place;
// identities known only to the artifact are copied in as approved
// entries; the rest are not found. A not-found identity never fails the
// other identities in the batch.
func (c *Coordinator) applyApprovals(
	ids []domain.Identity,
	artifact map[domain.Identity]domain.PathEntry,
) (approved, notFound []domain.Identity, err error) {
	for _, id := range ids {
		current, err := c.store.Get(id)
		if err != nil {
			return nil, nil, err
		}

		switch {
		case current != nil:
			if _, _, err := c.store.Approve([]domain.Identity{id}); err != nil {
				return nil, nil, err
			}
			approved = append(approved, id)
		default:
			entry, ok := artifact[id]
			if !ok {
				notFound = append(notFound, id)
				continue
			}
			entry.Approved = true
			if err := c.store.Put(entry); err != nil {
				return nil, nil, err
			}
			approved = append(approved, id)
		}
	}
	return approved, notFound, nil
}

func (c *Coordinator) syncBranch(ctx context.Context, branch string) error {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()
	return c.committer.SyncBranch(callCtx, branch)
}

// commit pushes a single commit covering the whole batch. An effectively
// unchanged cache produces no commit, which makes webhook re-deliveries
// harmless.
func (c *Coordinator) commit(ctx context.Context, branch, actor string, approved []domain.Identity) error {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	message := commitMessage(actor, approved)
	return c.committer.CommitAndPush(callCtx, branch, message, []string{c.cfg.CachePath})
}

func (c *Coordinator) confirm(ctx context.Context, cmd *domain.ApprovalCommand, approved, notFound []domain.Identity) error {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	if err := c.comments.PostComment(callCtx, cmd.Comment.IssueNumber, confirmationBody(cmd.Actor, approved, notFound)); err != nil {
		return zerr.Wrap(err, "failed to post confirmation comment")
	}
	return nil
}

func (c *Coordinator) reject(ctx context.Context, cmd *domain.ApprovalCommand, msg string) {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	body := fmt.Sprintf("@%s %s", cmd.Actor, msg)
	if err := c.comments.PostComment(callCtx, cmd.Comment.IssueNumber, body); err != nil {
		c.logger.Error(zerr.Wrap(err, "failed to post rejection comment"))
	}
}

func (c *Coordinator) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.cfg.RequestTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, c.cfg.RequestTimeout)
}

func commitMessage(actor string, approved []domain.Identity) string {
	ids := make([]string, len(approved))
	for i, id := range approved {
		ids[i] = id.String()
	}
	return fmt.Sprintf("Approve paths %s (requested by %s)", strings.Join(ids, ", "), actor)
}

func confirmationBody(actor string, approved, notFound []domain.Identity) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Path approval requested by @%s\n", actor)

	if len(approved) > 0 {
		b.WriteString("\nApproved:\n")
		for _, id := range approved {
			fmt.Fprintf(&b, "- `%s`\n", id)
		}
	}
	if len(notFound) > 0 {
		b.WriteString("\nNot found:\n")
		for _, id := range notFound {
			fmt.Fprintf(&b, "- `%s`\n", id)
		}
	}
	return b.String()
}
