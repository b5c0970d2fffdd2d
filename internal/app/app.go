// Package app wires the adapters together and implements the application
// layer for warden.
package app

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jonboulle/clockwork"
	"github.com/storyloom/warden/internal/adapters/cache"
	"github.com/storyloom/warden/internal/adapters/config"
	"github.com/storyloom/warden/internal/adapters/forge"
	"github.com/storyloom/warden/internal/adapters/git"
	"github.com/storyloom/warden/internal/adapters/identity"
	"github.com/storyloom/warden/internal/core/domain"
	"github.com/storyloom/warden/internal/core/ports"
	"github.com/storyloom/warden/internal/engine/approval"
	"github.com/storyloom/warden/internal/engine/categorize"
	"github.com/storyloom/warden/internal/gateway"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// App holds the wired components of the service.
type App struct {
	cfg         config.Config
	logger      ports.Logger
	store       ports.ValidationStore
	git         *git.Client
	hasher      ports.PathHasher
	clock       clockwork.Clock
	coordinator *approval.Coordinator
}

// New wires the adapters for the given configuration.
func New(cfg config.Config, logger ports.Logger) (*App, error) {
	store, err := cache.NewStore(filepath.Join(cfg.RepoDir, cfg.CachePath))
	if err != nil {
		return nil, err
	}

	gitClient := git.NewClient(cfg.RepoDir)
	forgeClient := forge.NewClient(
		cfg.ForgeBaseURL,
		cfg.RepoOwner,
		cfg.RepoName,
		cfg.ForgeToken,
		cfg.ArtifactName,
		cfg.RequestTimeout,
	)

	coordinator := approval.NewCoordinator(
		store,
		gitClient,
		forgeClient,
		forgeClient,
		forgeClient,
		forgeClient,
		logger,
		approval.Config{
			CachePath:      cfg.CachePath,
			RequestTimeout: cfg.RequestTimeout,
			CommitRetries:  cfg.CommitRetries,
		},
	)

	return &App{
		cfg:         cfg,
		logger:      logger,
		store:       store,
		git:         gitClient,
		hasher:      identity.NewHasher(),
		clock:       clockwork.NewRealClock(),
		coordinator: coordinator,
	}, nil
}

// Coordinator exposes the approval coordinator, for tests.
func (a *App) Coordinator() *approval.Coordinator {
	return a.coordinator
}

// Serve runs the webhook gateway until the context is canceled.
func (a *App) Serve(ctx context.Context) error {
	server := gateway.NewServer(a.coordinator, a, a.logger, a.clock, gateway.Config{
		ListenAddr:    a.cfg.ListenAddr,
		Secret:        a.cfg.WebhookSecret,
		DeliveryTTL:   a.cfg.DeliveryTTL,
		RatePerMinute: a.cfg.RatePerMinute,
	})

	a.logger.Info(fmt.Sprintf("webhook gateway listening on %s", a.cfg.ListenAddr))

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.Serve(ctx)
	})
	g.Go(func() error {
		return a.refreshLoop(ctx)
	})
	return g.Wait()
}

// refreshLoop recomputes the category summary on a fixed interval, so
// time-based labels cross their age boundaries even when no workflow
// event arrives. A failed refresh is logged and retried next tick.
func (a *App) refreshLoop(ctx context.Context) error {
	if a.cfg.RefreshInterval <= 0 {
		return nil
	}

	ticker := a.clock.NewTicker(a.cfg.RefreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.Chan():
			if err := a.RefreshCategories(ctx); err != nil {
				a.logger.Error(err)
			}
		}
	}
}

// RefreshCategories recomputes the categorization of every cached path
// and writes the summary beside the cache for the site renderer. It is
// triggered by completed check runs and never mutates the cache itself,
// so it may run concurrently with in-flight approvals.
func (a *App) RefreshCategories(ctx context.Context) error {
	result, err := a.categorizeAll(ctx)
	if err != nil {
		return err
	}

	cacheFile := filepath.Join(a.cfg.RepoDir, a.cfg.CachePath)
	summaryPath := filepath.Join(filepath.Dir(cacheFile), "categories.json")
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return zerr.Wrap(err, "failed to marshal category summary")
	}
	//nolint:gosec // Summary is public site data
	if err := os.WriteFile(summaryPath, data, 0o644); err != nil {
		return zerr.Wrap(err, "failed to write category summary")
	}

	a.logger.Info("categories refreshed: " + countsLine(result))
	return nil
}

// Categorize prints every cached path's category and the per-label
// totals.
func (a *App) Categorize(ctx context.Context, w io.Writer) error {
	result, err := a.categorizeAll(ctx)
	if err != nil {
		return err
	}

	ids := make([]domain.Identity, 0, len(result.Labels))
	for id := range result.Labels {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		fmt.Fprintf(w, "%s  %s\n", id, result.Labels[id].Label)
	}
	fmt.Fprintln(w, countsLine(result))
	return nil
}

// Approve marks paths approved from the CLI and commits the result to
// the currently checked-out branch.
func (a *App) Approve(ctx context.Context, tokens []string, w io.Writer) error {
	var ids []domain.Identity
	for _, token := range tokens {
		id := domain.Identity(token)
		if !id.Valid() {
			a.logger.Warn(fmt.Sprintf("dropping malformed identity %q", token))
			continue
		}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return zerr.New("no valid path identities given")
	}

	branch, err := a.git.CurrentBranch(ctx)
	if err != nil {
		return err
	}

	approved, notFound, err := a.coordinator.ApproveLocal(ctx, a.cfg.LocalActor, branch, ids)
	if err != nil {
		return err
	}

	for _, id := range approved {
		fmt.Fprintf(w, "approved   %s\n", id)
	}
	for _, id := range notFound {
		fmt.Fprintf(w, "not found  %s\n", id)
	}
	return nil
}

// Hash derives the content-addressed identity of the path spelled out by
// the given passage files, in order. Each file contributes its basename
// (extension stripped) as the passage reference and its text as the
// passage content. Useful for cross-checking cache entries by hand.
func (a *App) Hash(files []string, w io.Writer) error {
	route := make(domain.Route, 0, len(files))
	contents := make(map[domain.PassageRef]string, len(files))
	for _, file := range files {
		data, err := os.ReadFile(file) //nolint:gosec // Operator-supplied path
		if err != nil {
			return zerr.Wrap(err, "failed to read passage file")
		}
		name := filepath.Base(file)
		ref := domain.PassageRef(strings.TrimSuffix(name, filepath.Ext(name)))
		route = append(route, ref)
		contents[ref] = string(data)
	}

	id, err := a.hasher.Hash(route, contents)
	if err != nil {
		return err
	}
	fmt.Fprintln(w, id)
	return nil
}

// categorizeAll loads the cache and labels it under the
// environment-selected context: a pull-request build compares against
// the base branch, anything else categorizes by age.
func (a *App) categorizeAll(ctx context.Context) (categorize.Result, error) {
	entries, err := a.store.All()
	if err != nil {
		return categorize.Result{}, err
	}

	var cctx categorize.Context
	if a.cfg.PRBaseRef != "" {
		base, err := a.git.LoadCacheAt(ctx, a.cfg.PRBaseRef, a.cfg.CachePath)
		if err != nil {
			return categorize.Result{}, err
		}
		cctx = categorize.PullRequest{BaseRef: a.cfg.PRBaseRef, Base: base}
	} else {
		cctx = categorize.Deployment{
			Now:         a.clock.Now(),
			RecentDays:  a.cfg.RecentDays,
			UpdatedDays: a.cfg.UpdatedDays,
		}
	}

	return categorize.Categorize(entries, cctx), nil
}

func countsLine(result categorize.Result) string {
	labels := make([]string, 0, len(result.Counts))
	for label := range result.Counts {
		labels = append(labels, string(label))
	}
	sort.Strings(labels)

	line := ""
	for i, label := range labels {
		if i > 0 {
			line += "  "
		}
		line += fmt.Sprintf("%s=%d", label, result.Counts[domain.CategoryLabel(label)])
	}
	if line == "" {
		line = "no paths"
	}
	return line
}
