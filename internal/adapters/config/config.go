// Package config loads runtime settings from the environment and an
// optional warden.yaml project file. The environment wins; the file fills
// whatever the environment left unset; compiled-in defaults cover the
// rest.
package config

import (
	"errors"
	"io/fs"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// DefaultFilename is the project configuration file looked up in the
// working copy root.
const DefaultFilename = "warden.yaml"

// Config stores all runtime settings for the service.
type Config struct {
	// ListenAddr is the webhook server bind address.
	ListenAddr string `env:"WARDEN_LISTEN_ADDR"`
	// WebhookSecret is the shared HMAC secret for webhook signatures.
	// Empty disables signature verification.
	WebhookSecret string `env:"WARDEN_WEBHOOK_SECRET"`
	// ForgeBaseURL is the repository-hosting API root.
	ForgeBaseURL string `env:"WARDEN_FORGE_URL"`
	// ForgeToken authenticates API calls.
	ForgeToken string `env:"WARDEN_FORGE_TOKEN"`
	// RepoOwner and RepoName identify the repository on the forge.
	RepoOwner string `env:"WARDEN_REPO_OWNER"`
	RepoName  string `env:"WARDEN_REPO_NAME"`
	// RepoDir is the local working copy warden commits from.
	RepoDir string `env:"WARDEN_REPO_DIR"`
	// CachePath is the repo-relative location of the validation cache.
	CachePath string `env:"WARDEN_CACHE_PATH"`
	// ArtifactName is the check-run artifact holding the cache snapshot.
	ArtifactName string `env:"WARDEN_ARTIFACT_NAME"`
	// PRBaseRef, when set, marks a pull-request build and carries the base
	// branch reference. It selects git-relative categorization; its absence
	// selects time-based categorization.
	PRBaseRef string `env:"WARDEN_PR_BASE_REF"`
	// RecentDays and UpdatedDays bound the time-based categories.
	RecentDays  int `env:"WARDEN_RECENT_DAYS"`
	UpdatedDays int `env:"WARDEN_UPDATED_DAYS"`
	// RequestTimeout bounds each external call independently.
	RequestTimeout time.Duration `env:"WARDEN_REQUEST_TIMEOUT"`
	// CommitRetries bounds read-modify-write retries on commit conflict.
	CommitRetries int `env:"WARDEN_COMMIT_RETRIES"`
	// DeliveryTTL is how long webhook delivery IDs are remembered for
	// duplicate suppression.
	DeliveryTTL time.Duration `env:"WARDEN_DELIVERY_TTL"`
	// RefreshInterval is how often the category summary is recomputed in
	// the background while serving. Zero or negative disables the loop.
	RefreshInterval time.Duration `env:"WARDEN_REFRESH_INTERVAL"`
	// RatePerMinute limits inbound webhook deliveries.
	RatePerMinute int `env:"WARDEN_RATE_PER_MINUTE"`
	// LocalActor is recorded as the approver for CLI approvals.
	LocalActor string `env:"WARDEN_LOCAL_ACTOR"`
}

// File is the warden.yaml schema. It carries the repo-local settings that
// travel with the story project rather than the deployment.
type File struct {
	Repo struct {
		Owner string `yaml:"owner"`
		Name  string `yaml:"name"`
	} `yaml:"repo"`
	CachePath    string `yaml:"cachePath"`
	ArtifactName string `yaml:"artifactName"`
	RecentDays   int    `yaml:"recentDays"`
	UpdatedDays  int    `yaml:"updatedDays"`
}

// Load parses the environment, overlays the project file at path (missing
// file is fine) and applies defaults.
func Load(path string) (Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, zerr.Wrap(err, "failed to parse environment")
	}

	if err := applyFile(&cfg, path); err != nil {
		return Config{}, err
	}

	applyDefaults(&cfg)
	return cfg, nil
}

func applyFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path) //nolint:gosec // path is provided by user
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return zerr.Wrap(err, "failed to read config file")
	}

	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return zerr.Wrap(err, "failed to parse config file")
	}

	if cfg.RepoOwner == "" {
		cfg.RepoOwner = file.Repo.Owner
	}
	if cfg.RepoName == "" {
		cfg.RepoName = file.Repo.Name
	}
	if cfg.CachePath == "" {
		cfg.CachePath = file.CachePath
	}
	if cfg.ArtifactName == "" {
		cfg.ArtifactName = file.ArtifactName
	}
	if cfg.RecentDays == 0 {
		cfg.RecentDays = file.RecentDays
	}
	if cfg.UpdatedDays == 0 {
		cfg.UpdatedDays = file.UpdatedDays
	}
	return nil
}

func applyDefaults(cfg *Config) {
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = ":8787"
	}
	if cfg.ForgeBaseURL == "" {
		cfg.ForgeBaseURL = "https://api.github.com"
	}
	if cfg.RepoDir == "" {
		cfg.RepoDir = "."
	}
	if cfg.CachePath == "" {
		cfg.CachePath = "story/paths.json"
	}
	if cfg.ArtifactName == "" {
		cfg.ArtifactName = "path-validation"
	}
	if cfg.RecentDays == 0 {
		cfg.RecentDays = 7
	}
	if cfg.UpdatedDays == 0 {
		cfg.UpdatedDays = 30
	}
	if cfg.RequestTimeout == 0 {
		cfg.RequestTimeout = 10 * time.Second
	}
	if cfg.CommitRetries == 0 {
		cfg.CommitRetries = 3
	}
	if cfg.DeliveryTTL == 0 {
		cfg.DeliveryTTL = time.Hour
	}
	if cfg.RefreshInterval == 0 {
		cfg.RefreshInterval = time.Hour
	}
	if cfg.RatePerMinute == 0 {
		cfg.RatePerMinute = 60
	}
	if cfg.LocalActor == "" {
		cfg.LocalActor = "local-operator"
	}
}
