package approval_test

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/storyloom/warden/internal/adapters/cache"
	"github.com/storyloom/warden/internal/core/domain"
	"github.com/storyloom/warden/internal/core/ports/mocks"
	"github.com/storyloom/warden/internal/engine/approval"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type discardLogger struct{}

func (discardLogger) Info(string) {}
func (discardLogger) Warn(string) {}
func (discardLogger) Error(error) {}

type fixture struct {
	coordinator   *approval.Coordinator
	store         *cache.Store
	committer     *mocks.MockCacheCommitter
	collaborators *mocks.MockCollaboratorChecker
	comments      *mocks.MockCommentPoster
	artifacts     *mocks.MockArtifactFetcher
	pulls         *mocks.MockPullRequestReader
}

func newFixture(t *testing.T, seed ...domain.PathEntry) *fixture {
	t.Helper()

	store, err := cache.NewStore(filepath.Join(t.TempDir(), "paths.json"))
	require.NoError(t, err)
	for _, entry := range seed {
		require.NoError(t, store.Put(entry))
	}

	ctrl := gomock.NewController(t)
	f := &fixture{
		store:         store,
		committer:     mocks.NewMockCacheCommitter(ctrl),
		collaborators: mocks.NewMockCollaboratorChecker(ctrl),
		comments:      mocks.NewMockCommentPoster(ctrl),
		artifacts:     mocks.NewMockArtifactFetcher(ctrl),
		pulls:         mocks.NewMockPullRequestReader(ctrl),
	}
	f.coordinator = approval.NewCoordinator(
		store,
		f.committer,
		f.collaborators,
		f.comments,
		f.artifacts,
		f.pulls,
		discardLogger{},
		approval.Config{CachePath: "story/paths.json", RequestTimeout: 5 * time.Second, CommitRetries: 3},
	)
	return f
}

func validatedEntry(id domain.Identity) domain.PathEntry {
	return domain.PathEntry{
		Identity:  id,
		Route:     domain.Route{"start", "cave"},
		Validated: true,
	}
}

func TestProcess_CommentWithoutCommandIsIgnored(t *testing.T) {
	f := newFixture(t)

	outcome, err := f.coordinator.Process(context.Background(), approval.Request{
		Actor:       "alice",
		Body:        "looks good to me!",
		IssueNumber: 12,
	})

	require.NoError(t, err)
	assert.Equal(t, approval.StateIgnored, outcome.State)
	assert.Nil(t, outcome.Command)
}

func TestProcess_UnauthorizedActorIsRejectedWithoutMutation(t *testing.T) {
	f := newFixture(t, validatedEntry("a1b2c3d4"))

	f.collaborators.EXPECT().IsCollaborator(gomock.Any(), "mallory").Return(false, nil)
	f.comments.EXPECT().PostComment(gomock.Any(), 12, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ int, body string) error {
			assert.Contains(t, body, "@mallory")
			assert.Contains(t, body, "not a repository collaborator")
			return nil
		})

	outcome, err := f.coordinator.Process(context.Background(), approval.Request{
		Actor:       "mallory",
		Body:        "/approve-path a1b2c3d4",
		IssueNumber: 12,
	})

	require.NoError(t, err)
	assert.Equal(t, approval.StateRejected, outcome.State)
	assert.Equal(t, approval.ReasonUnauthorized, outcome.Reason)

	entry, err := f.store.Get("a1b2c3d4")
	require.NoError(t, err)
	assert.False(t, entry.Approved, "rejected command must not touch the cache")
}

func TestProcess_CollaboratorLookupErrorFailsClosed(t *testing.T) {
	f := newFixture(t, validatedEntry("a1b2c3d4"))

	f.collaborators.EXPECT().IsCollaborator(gomock.Any(), "alice").
		Return(false, assert.AnError)
	f.comments.EXPECT().PostComment(gomock.Any(), 12, gomock.Any()).Return(nil)

	outcome, err := f.coordinator.Process(context.Background(), approval.Request{
		Actor:       "alice",
		Body:        "/approve-path a1b2c3d4",
		IssueNumber: 12,
	})

	require.NoError(t, err)
	assert.Equal(t, approval.StateRejected, outcome.State)
	assert.Equal(t, approval.ReasonUnauthorized, outcome.Reason)
}

func TestProcess_BatchWithUnknownIdentityStillApprovesTheRest(t *testing.T) {
	f := newFixture(t, validatedEntry("a1b2c3d4"))

	f.collaborators.EXPECT().IsCollaborator(gomock.Any(), "alice").Return(true, nil)
	f.pulls.EXPECT().PullRequestHeadRef(gomock.Any(), 12).Return("feature/cave", nil)
	f.artifacts.EXPECT().FetchValidationCache(gomock.Any(), "feature/cave").
		Return(nil, domain.ErrArtifactMissing)
	f.committer.EXPECT().SyncBranch(gomock.Any(), "feature/cave").Return(nil)
	f.committer.EXPECT().
		CommitAndPush(gomock.Any(), "feature/cave", gomock.Any(), []string{"story/paths.json"}).
		DoAndReturn(func(_ context.Context, _, message string, _ []string) error {
			assert.Contains(t, message, "a1b2c3d4")
			assert.Contains(t, message, "alice")
			return nil
		})
	f.comments.EXPECT().PostComment(gomock.Any(), 12, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ int, body string) error {
			assert.Contains(t, body, "Approved:")
			assert.Contains(t, body, "`a1b2c3d4`")
			assert.Contains(t, body, "Not found:")
			assert.Contains(t, body, "`deadbeef`")
			return nil
		})

	outcome, err := f.coordinator.Process(context.Background(), approval.Request{
		Actor:       "alice",
		Body:        "/approve-path a1b2c3d4 deadbeef",
		IssueNumber: 12,
	})

	require.NoError(t, err)
	assert.Equal(t, approval.StateConfirmed, outcome.State)
	assert.Equal(t, []domain.Identity{"a1b2c3d4"}, outcome.Approved)
	assert.Equal(t, []domain.Identity{"deadbeef"}, outcome.NotFound)

	entry, err := f.store.Get("a1b2c3d4")
	require.NoError(t, err)
	assert.True(t, entry.Approved)
}

func TestProcess_ArtifactOnlyIdentityIsCopiedInApproved(t *testing.T) {
	f := newFixture(t)

	artifactEntry := validatedEntry("deadbeef")
	f.collaborators.EXPECT().IsCollaborator(gomock.Any(), "alice").Return(true, nil)
	f.pulls.EXPECT().PullRequestHeadRef(gomock.Any(), 7).Return("feature/new", nil)
	f.artifacts.EXPECT().FetchValidationCache(gomock.Any(), "feature/new").
		Return(map[domain.Identity]domain.PathEntry{"deadbeef": artifactEntry}, nil)
	f.committer.EXPECT().SyncBranch(gomock.Any(), "feature/new").Return(nil)
	f.committer.EXPECT().
		CommitAndPush(gomock.Any(), "feature/new", gomock.Any(), gomock.Any()).
		Return(nil)
	f.comments.EXPECT().PostComment(gomock.Any(), 7, gomock.Any()).Return(nil)

	outcome, err := f.coordinator.Process(context.Background(), approval.Request{
		Actor:       "alice",
		Body:        "/approve-path deadbeef",
		IssueNumber: 7,
	})

	require.NoError(t, err)
	assert.Equal(t, approval.StateConfirmed, outcome.State)
	assert.Equal(t, []domain.Identity{"deadbeef"}, outcome.Approved)

	entry, err := f.store.Get("deadbeef")
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.True(t, entry.Approved)
	assert.Equal(t, artifactEntry.Route, entry.Route)
}

func TestProcess_AllNotFoundSkipsCommit(t *testing.T) {
	f := newFixture(t)

	f.collaborators.EXPECT().IsCollaborator(gomock.Any(), "alice").Return(true, nil)
	f.pulls.EXPECT().PullRequestHeadRef(gomock.Any(), 3).Return("feature/x", nil)
	f.artifacts.EXPECT().FetchValidationCache(gomock.Any(), "feature/x").
		Return(nil, domain.ErrArtifactMissing)
	f.committer.EXPECT().SyncBranch(gomock.Any(), "feature/x").Return(nil)
	f.comments.EXPECT().PostComment(gomock.Any(), 3, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ int, body string) error {
			assert.NotContains(t, body, "Approved:")
			assert.Contains(t, body, "Not found:")
			return nil
		})

	outcome, err := f.coordinator.Process(context.Background(), approval.Request{
		Actor:       "alice",
		Body:        "/approve-path deadbeef",
		IssueNumber: 3,
	})

	require.NoError(t, err)
	assert.Equal(t, approval.StateConfirmed, outcome.State)
	assert.Empty(t, outcome.Approved)
	assert.Equal(t, []domain.Identity{"deadbeef"}, outcome.NotFound)
}

func TestProcess_CommitConflictRetriesAgainstRefreshedTip(t *testing.T) {
	f := newFixture(t, validatedEntry("a1b2c3d4"))

	f.collaborators.EXPECT().IsCollaborator(gomock.Any(), "alice").Return(true, nil)
	f.pulls.EXPECT().PullRequestHeadRef(gomock.Any(), 12).Return("main", nil)
	f.artifacts.EXPECT().FetchValidationCache(gomock.Any(), "main").
		Return(nil, domain.ErrArtifactMissing)
	f.committer.EXPECT().SyncBranch(gomock.Any(), "main").Return(nil).Times(2)
	first := f.committer.EXPECT().
		CommitAndPush(gomock.Any(), "main", gomock.Any(), gomock.Any()).
		Return(domain.ErrCommitConflict)
	f.committer.EXPECT().
		CommitAndPush(gomock.Any(), "main", gomock.Any(), gomock.Any()).
		Return(nil).
		After(first)
	f.comments.EXPECT().PostComment(gomock.Any(), 12, gomock.Any()).Return(nil)

	outcome, err := f.coordinator.Process(context.Background(), approval.Request{
		Actor:       "alice",
		Body:        "/approve-path a1b2c3d4",
		IssueNumber: 12,
	})

	require.NoError(t, err)
	assert.Equal(t, approval.StateConfirmed, outcome.State)
	assert.Equal(t, []domain.Identity{"a1b2c3d4"}, outcome.Approved)
}

func TestProcess_ExhaustedRetriesRejectWithCommitConflict(t *testing.T) {
	f := newFixture(t, validatedEntry("a1b2c3d4"))

	f.collaborators.EXPECT().IsCollaborator(gomock.Any(), "alice").Return(true, nil)
	f.pulls.EXPECT().PullRequestHeadRef(gomock.Any(), 12).Return("main", nil)
	f.artifacts.EXPECT().FetchValidationCache(gomock.Any(), "main").
		Return(nil, domain.ErrArtifactMissing)
	f.committer.EXPECT().SyncBranch(gomock.Any(), "main").Return(nil).Times(3)
	f.committer.EXPECT().
		CommitAndPush(gomock.Any(), "main", gomock.Any(), gomock.Any()).
		Return(domain.ErrCommitConflict).
		Times(3)
	f.comments.EXPECT().PostComment(gomock.Any(), 12, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ int, body string) error {
			assert.Contains(t, body, "retry")
			return nil
		})

	outcome, err := f.coordinator.Process(context.Background(), approval.Request{
		Actor:       "alice",
		Body:        "/approve-path a1b2c3d4",
		IssueNumber: 12,
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrCommitConflict)
	assert.Equal(t, approval.StateRejected, outcome.State)
	assert.Equal(t, approval.ReasonCommitConflict, outcome.Reason)
}

func TestProcess_ArtifactFetchErrorRejects(t *testing.T) {
	f := newFixture(t, validatedEntry("a1b2c3d4"))

	f.collaborators.EXPECT().IsCollaborator(gomock.Any(), "alice").Return(true, nil)
	f.pulls.EXPECT().PullRequestHeadRef(gomock.Any(), 12).Return("main", nil)
	f.artifacts.EXPECT().FetchValidationCache(gomock.Any(), "main").
		Return(nil, assert.AnError)
	f.comments.EXPECT().PostComment(gomock.Any(), 12, gomock.Any()).Return(nil)

	outcome, err := f.coordinator.Process(context.Background(), approval.Request{
		Actor:       "alice",
		Body:        "/approve-path a1b2c3d4",
		IssueNumber: 12,
	})

	require.Error(t, err)
	assert.Equal(t, approval.StateRejected, outcome.State)
	assert.Equal(t, approval.ReasonArtifactUnavailable, outcome.Reason)
}

func TestProcess_UnresolvablePullRequestRejects(t *testing.T) {
	f := newFixture(t)

	f.collaborators.EXPECT().IsCollaborator(gomock.Any(), "alice").Return(true, nil)
	f.pulls.EXPECT().PullRequestHeadRef(gomock.Any(), 404).Return("", assert.AnError)
	f.comments.EXPECT().PostComment(gomock.Any(), 404, gomock.Any()).Return(nil)

	outcome, err := f.coordinator.Process(context.Background(), approval.Request{
		Actor:       "alice",
		Body:        "/approve-path a1b2c3d4",
		IssueNumber: 404,
	})

	require.Error(t, err)
	assert.Equal(t, approval.StateRejected, outcome.State)
	assert.Equal(t, approval.ReasonPullRequestUnknown, outcome.Reason)
}

func TestProcess_ConcurrentSameBranchCommandsBothLand(t *testing.T) {
	f := newFixture(t, validatedEntry("a1b2c3d4"), validatedEntry("deadbeef"))

	f.collaborators.EXPECT().IsCollaborator(gomock.Any(), gomock.Any()).Return(true, nil).Times(2)
	f.pulls.EXPECT().PullRequestHeadRef(gomock.Any(), gomock.Any()).Return("main", nil).Times(2)
	f.artifacts.EXPECT().FetchValidationCache(gomock.Any(), "main").
		Return(nil, domain.ErrArtifactMissing).Times(2)
	f.committer.EXPECT().SyncBranch(gomock.Any(), "main").Return(nil).AnyTimes()
	f.committer.EXPECT().
		CommitAndPush(gomock.Any(), "main", gomock.Any(), gomock.Any()).
		Return(nil).AnyTimes()
	f.comments.EXPECT().PostComment(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).Times(2)

	var wg sync.WaitGroup
	outcomes := make([]approval.Outcome, 2)
	requests := []approval.Request{
		{Actor: "alice", Body: "/approve-path a1b2c3d4", IssueNumber: 1},
		{Actor: "bob", Body: "/approve-path deadbeef", IssueNumber: 2},
	}
	for i, req := range requests {
		wg.Add(1)
		go func() {
			defer wg.Done()
			outcome, err := f.coordinator.Process(context.Background(), req)
			assert.NoError(t, err)
			outcomes[i] = outcome
		}()
	}
	wg.Wait()

	assert.Equal(t, approval.StateConfirmed, outcomes[0].State)
	assert.Equal(t, approval.StateConfirmed, outcomes[1].State)
	for _, id := range []domain.Identity{"a1b2c3d4", "deadbeef"} {
		entry, err := f.store.Get(id)
		require.NoError(t, err)
		assert.True(t, entry.Approved, "both concurrent approvals must land for %s", id)
	}
}

func TestApproveLocal_BypassesAuthorizationAndArtifact(t *testing.T) {
	f := newFixture(t, validatedEntry("a1b2c3d4"))

	f.committer.EXPECT().SyncBranch(gomock.Any(), "main").Return(nil)
	f.committer.EXPECT().
		CommitAndPush(gomock.Any(), "main", gomock.Any(), gomock.Any()).
		Return(nil)

	approved, notFound, err := f.coordinator.ApproveLocal(
		context.Background(), "local-operator", "main",
		[]domain.Identity{"a1b2c3d4", "deadbeef"},
	)

	require.NoError(t, err)
	assert.Equal(t, []domain.Identity{"a1b2c3d4"}, approved)
	assert.Equal(t, []domain.Identity{"deadbeef"}, notFound)
}
