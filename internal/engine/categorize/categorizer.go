// Package categorize assigns display categories to path entries. It is
// pure and total: every entry receives exactly one label from the
// context-appropriate set, and undecidable inputs resolve to a defined
// fallback instead of an error.
package categorize

import (
	"time"

	"github.com/storyloom/warden/internal/core/domain"
)

// Context selects which of the two disjoint label sets applies. It is an
// explicit injected value rather than ambient environment state, so both
// modes are directly testable.
type Context interface {
	isContext()
}

// PullRequest categorizes entries relative to the pull request's base
// branch: New, Modified or Unchanged.
type PullRequest struct {
	// BaseRef is the base branch reference, kept for reporting.
	BaseRef string
	// Base is the identity-keyed cache as committed on the base branch.
	Base map[domain.Identity]domain.PathEntry
}

func (PullRequest) isContext() {}

// Deployment categorizes entries by age at the given instant: Recent,
// Updated or Older. Zero thresholds fall back to the 7/30 day defaults.
type Deployment struct {
	Now         time.Time
	RecentDays  int
	UpdatedDays int
}

func (Deployment) isContext() {}

const (
	defaultRecentDays  = 7
	defaultUpdatedDays = 30
)

// Result holds the per-entry labels and the total count per label.
type Result struct {
	Labels map[domain.Identity]domain.Category `json:"labels"`
	Counts map[domain.CategoryLabel]int        `json:"counts"`
}

// Categorize labels every entry under the given context.
func Categorize(entries map[domain.Identity]domain.PathEntry, ctx Context) Result {
	result := Result{
		Labels: make(map[domain.Identity]domain.Category, len(entries)),
		Counts: make(map[domain.CategoryLabel]int),
	}

	switch c := ctx.(type) {
	case PullRequest:
		baseRoutes := make(map[string]bool, len(c.Base))
		for _, entry := range c.Base {
			baseRoutes[entry.Route.Key()] = true
		}
		for id, entry := range entries {
			record(&result, id, gitRelative(id, entry, c.Base, baseRoutes))
		}
	case Deployment:
		for id, entry := range entries {
			record(&result, id, timeBased(entry, c))
		}
	}

	return result
}

func record(result *Result, id domain.Identity, category domain.Category) {
	result.Labels[id] = category
	result.Counts[category.Label]++
}

// gitRelative decides New/Modified/Unchanged against the base branch
// cache. Identity equality is content equality by construction, so a
// matching identity on the base means unchanged; a matching route under a
// different identity means the path's content was edited.
func gitRelative(id domain.Identity, entry domain.PathEntry, base map[domain.Identity]domain.PathEntry, baseRoutes map[string]bool) domain.Category {
	if _, ok := base[id]; ok {
		return domain.CategoryUnchanged
	}
	if baseRoutes[entry.Route.Key()] {
		return domain.CategoryModified
	}
	return domain.CategoryNew
}

// timeBased decides Recent/Updated/Older by age. An entry with neither
// date recorded is conservatively Older; recency is never fabricated.
// All arithmetic is over UTC instants, so the evaluator's time zone
// cannot change the outcome.
func timeBased(entry domain.PathEntry, c Deployment) domain.Category {
	touched := entry.LastTouched()
	if touched.IsZero() {
		return domain.CategoryOlder
	}

	recentDays := c.RecentDays
	if recentDays <= 0 {
		recentDays = defaultRecentDays
	}
	updatedDays := c.UpdatedDays
	if updatedDays <= 0 {
		updatedDays = defaultUpdatedDays
	}

	age := c.Now.UTC().Sub(touched)
	switch {
	case age <= time.Duration(recentDays)*24*time.Hour:
		return domain.CategoryRecent
	case age <= time.Duration(updatedDays)*24*time.Hour:
		return domain.CategoryUpdated
	default:
		return domain.CategoryOlder
	}
}
