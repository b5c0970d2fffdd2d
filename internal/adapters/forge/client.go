// Package forge implements the repository-hosting API client used for
// collaborator checks, feedback comments and build artifact retrieval.
package forge

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/storyloom/warden/internal/core/domain"
	"github.com/storyloom/warden/internal/core/ports"
	"go.trai.ch/zerr"
)

var (
	_ ports.CollaboratorChecker = (*Client)(nil)
	_ ports.CommentPoster       = (*Client)(nil)
	_ ports.ArtifactFetcher     = (*Client)(nil)
	_ ports.PullRequestReader   = (*Client)(nil)
)

const maxBodySize = 10 << 20

// Client talks to a GitHub-compatible REST API.
type Client struct {
	baseURL      string
	owner        string
	repo         string
	token        string
	artifactName string
	httpClient   *http.Client
}

// NewClient creates a forge client for one repository. artifactName is
// the name of the check-run artifact holding the validation cache
// snapshot.
func NewClient(baseURL, owner, repo, token, artifactName string, timeout time.Duration) *Client {
	return &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		owner:        owner,
		repo:         repo,
		token:        token,
		artifactName: artifactName,
		httpClient:   &http.Client{Timeout: timeout},
	}
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to build forge request")
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return req, nil
}

func (c *Client) repoPath(suffix string) string {
	return fmt.Sprintf("/repos/%s/%s%s", c.owner, c.repo, suffix)
}

// IsCollaborator reports whether the user is a repository collaborator.
// The check fails closed: any transport error or unexpected status means
// not authorized. Results are deliberately never cached so a revoked
// collaborator loses approval rights on their next command.
func (c *Client) IsCollaborator(ctx context.Context, user string) (bool, error) {
	req, err := c.newRequest(ctx, http.MethodGet, c.repoPath("/collaborators/"+user), nil)
	if err != nil {
		return false, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, zerr.With(zerr.Wrap(err, "collaborator lookup failed"), "user", user)
	}
	defer resp.Body.Close() //nolint:errcheck // Best effort close

	switch resp.StatusCode {
	case http.StatusNoContent:
		return true, nil
	case http.StatusNotFound:
		return false, nil
	default:
		return false, zerr.With(zerr.New("unexpected collaborator lookup status"), "status", resp.StatusCode)
	}
}

// PostComment posts a comment on an issue or pull request.
func (c *Client) PostComment(ctx context.Context, issueNumber int, body string) error {
	payload, err := json.Marshal(map[string]string{"body": body})
	if err != nil {
		return zerr.Wrap(err, "failed to encode comment")
	}

	req, err := c.newRequest(ctx, http.MethodPost, c.repoPath(fmt.Sprintf("/issues/%d/comments", issueNumber)), bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return zerr.Wrap(err, "failed to post comment")
	}
	defer resp.Body.Close() //nolint:errcheck // Best effort close

	if resp.StatusCode != http.StatusCreated {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
		return zerr.With(
			zerr.With(zerr.New("unexpected comment status"), "status", resp.StatusCode),
			"body", strings.TrimSpace(string(data)),
		)
	}
	return nil
}

// PullRequestHeadRef returns the head branch of a pull request.
func (c *Client) PullRequestHeadRef(ctx context.Context, number int) (string, error) {
	req, err := c.newRequest(ctx, http.MethodGet, c.repoPath(fmt.Sprintf("/pulls/%d", number)), nil)
	if err != nil {
		return "", err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", zerr.Wrap(err, "pull request lookup failed")
	}
	defer resp.Body.Close() //nolint:errcheck // Best effort close

	if resp.StatusCode != http.StatusOK {
		return "", zerr.With(zerr.New("unexpected pull request status"), "status", resp.StatusCode)
	}

	var parsed struct {
		Head struct {
			Ref string `json:"ref"`
		} `json:"head"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodySize)).Decode(&parsed); err != nil {
		return "", zerr.Wrap(err, "invalid pull request response")
	}
	if parsed.Head.Ref == "" {
		return "", zerr.With(zerr.New("pull request has no head ref"), "number", number)
	}
	return parsed.Head.Ref, nil
}

type artifactList struct {
	Artifacts []artifact `json:"artifacts"`
}

type artifact struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Expired     bool      `json:"expired"`
	CreatedAt   time.Time `json:"created_at"`
	WorkflowRun struct {
		HeadBranch string `json:"head_branch"`
	} `json:"workflow_run"`
}

// FetchValidationCache downloads the newest validation artifact produced
// for the branch and returns the cache snapshot it contains. No artifact
// for the branch fails with domain.ErrArtifactMissing.
func (c *Client) FetchValidationCache(ctx context.Context, branch string) (map[domain.Identity]domain.PathEntry, error) {
	req, err := c.newRequest(ctx, http.MethodGet, c.repoPath("/actions/artifacts?name="+c.artifactName), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, zerr.Wrap(err, "artifact listing failed")
	}
	defer resp.Body.Close() //nolint:errcheck // Best effort close

	if resp.StatusCode != http.StatusOK {
		return nil, zerr.With(zerr.New("unexpected artifact listing status"), "status", resp.StatusCode)
	}

	var list artifactList
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodySize)).Decode(&list); err != nil {
		return nil, zerr.Wrap(err, "invalid artifact listing")
	}

	newest := pickNewest(list.Artifacts, branch)
	if newest == nil {
		return nil, zerr.With(zerr.Wrap(domain.ErrArtifactMissing, "no artifact for branch"), "branch", branch)
	}

	return c.downloadCache(ctx, newest.ID)
}

func pickNewest(artifacts []artifact, branch string) *artifact {
	var newest *artifact
	for i := range artifacts {
		a := &artifacts[i]
		if a.Expired || a.WorkflowRun.HeadBranch != branch {
			continue
		}
		if newest == nil || a.CreatedAt.After(newest.CreatedAt) {
			newest = a
		}
	}
	return newest
}

func (c *Client) downloadCache(ctx context.Context, id int64) (map[domain.Identity]domain.PathEntry, error) {
	req, err := c.newRequest(ctx, http.MethodGet, c.repoPath(fmt.Sprintf("/actions/artifacts/%d/zip", id)), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, zerr.Wrap(err, "artifact download failed")
	}
	defer resp.Body.Close() //nolint:errcheck // Best effort close

	if resp.StatusCode != http.StatusOK {
		return nil, zerr.With(zerr.New("unexpected artifact download status"), "status", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, zerr.Wrap(err, "failed to read artifact")
	}

	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, zerr.Wrap(err, "artifact is not a zip archive")
	}

	for _, file := range reader.File {
		if !strings.HasSuffix(file.Name, ".json") {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			return nil, zerr.With(zerr.Wrap(err, "failed to open artifact member"), "member", file.Name)
		}
		entries := make(map[domain.Identity]domain.PathEntry)
		decodeErr := json.NewDecoder(io.LimitReader(rc, maxBodySize)).Decode(&entries)
		_ = rc.Close()
		if decodeErr != nil {
			return nil, zerr.With(zerr.Wrap(decodeErr, "invalid cache snapshot in artifact"), "member", file.Name)
		}
		for id, entry := range entries {
			entry.Identity = id
			entries[id] = entry
		}
		return entries, nil
	}

	return nil, zerr.Wrap(domain.ErrArtifactMissing, "artifact contains no cache snapshot")
}
