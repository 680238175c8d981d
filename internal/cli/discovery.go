package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/wagiedev/git-annex-adapter-go/internal/config"
	"github.com/wagiedev/git-annex-adapter-go/internal/errors"
	"github.com/wagiedev/git-annex-adapter-go/internal/subprocess"
)

const (
	// MinimumVersion is the oldest git-annex release with JSON batch metadata support.
	MinimumVersion = "6.20170101"

	// VersionCheckTimeout is the timeout for the git-annex version probe.
	VersionCheckTimeout = 5 * time.Second
)

var versionPattern = regexp.MustCompile(`^([0-9]+(?:\.[0-9]+)*)`)

// Config holds configuration for git discovery.
type Config struct {
	// GitPath is an explicit git path that skips PATH search.
	// If empty, discovery will search PATH and common locations.
	GitPath string

	// SkipVersionCheck skips the git-annex version probe during discovery.
	// Can also be controlled via GIT_ANNEX_ADAPTER_SKIP_VERSION_CHECK env var.
	SkipVersionCheck bool

	// Logger is an optional logger for discovery operations.
	// If nil, a default no-op logger is used.
	Logger *slog.Logger
}

// Discoverer locates the git binary and validates the git-annex version.
type Discoverer interface {
	// Discover locates the git binary and probes the git-annex version.
	// Returns the path to the git binary or an error.
	Discover(ctx context.Context) (string, error)
}

// discoverer implements the Discoverer interface.
type discoverer struct {
	cfg *Config
	log *slog.Logger
}

// Compile-time verification that discoverer implements Discoverer.
var _ Discoverer = (*discoverer)(nil)

// NewDiscoverer creates a new git discoverer with the given configuration.
func NewDiscoverer(cfg *Config) Discoverer {
	if cfg == nil {
		cfg = &Config{}
	}

	log := cfg.Logger
	if log == nil {
		log = (&config.Options{}).WithDefaults().Logger
	}

	return &discoverer{
		cfg: cfg,
		log: log.With("component", "discovery"),
	}
}

// Discover locates the git binary and probes the git-annex version.
func (d *discoverer) Discover(ctx context.Context) (string, error) {
	d.log.Debug("Discovering git binary")

	gitPath, err := d.findGit()
	if err != nil {
		d.log.Error("Failed to find git", "error", err)

		return "", err
	}

	d.log.Debug("Found git binary", "git_path", gitPath)

	d.checkVersion(ctx, gitPath)

	return gitPath, nil
}

// findGit locates the git binary.
func (d *discoverer) findGit() (string, error) {
	// If explicit path provided, use it and only it
	if d.cfg.GitPath != "" {
		d.log.Debug("Using explicit git path", "git_path", d.cfg.GitPath)

		if _, err := os.Stat(d.cfg.GitPath); err == nil {
			return d.cfg.GitPath, nil
		}

		return "", &errors.ExecutableNotFoundError{Name: "git", SearchedPaths: []string{d.cfg.GitPath}}
	}

	searchedPaths := make([]string, 0, 4)

	if path, err := exec.LookPath("git"); err == nil {
		d.log.Debug("Found 'git' in PATH", "path", path)

		return path, nil
	}

	searchedPaths = append(searchedPaths, "$PATH")

	commonPaths := []string{
		"/usr/local/bin/git",
		"/usr/bin/git",
		"/opt/homebrew/bin/git",
	}

	for _, path := range commonPaths {
		searchedPaths = append(searchedPaths, path)

		if _, err := os.Stat(path); err == nil {
			d.log.Debug("Found git at common path", "path", path)

			return path, nil
		}
	}

	d.log.Warn("git not found in any searched paths", "searched_paths", searchedPaths)

	return "", &errors.ExecutableNotFoundError{Name: "git", SearchedPaths: searchedPaths}
}

// checkVersion checks if the git-annex version meets minimum requirements.
// Logs a warning if the version is below minimum. Probe errors only warn:
// commands that do not need git-annex still work without it.
func (d *discoverer) checkVersion(ctx context.Context, gitPath string) {
	if d.cfg.SkipVersionCheck {
		d.log.Debug("Skipping git-annex version check (configured)")

		return
	}

	if os.Getenv(config.SkipVersionCheckEnv) != "" {
		d.log.Debug("Skipping git-annex version check", "env", config.SkipVersionCheckEnv)

		return
	}

	version, err := ProbeVersion(ctx, gitPath, d.log)
	if err != nil {
		d.log.Warn("git-annex version check failed", "error", err)

		return
	}

	if CompareVersions(version, MinimumVersion) < 0 {
		d.log.Warn("git-annex version is unsupported",
			"version", version,
			"minimum_required", MinimumVersion,
		)

		return
	}

	d.log.Debug("git-annex version check passed", "version", version, "minimum", MinimumVersion)
}

// ProbeVersion runs `git annex version --raw` and returns the numeric version.
func ProbeVersion(ctx context.Context, gitPath string, log *slog.Logger) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, VersionCheckTimeout)
	defer cancel()

	dir, err := os.Getwd()
	if err != nil {
		dir = os.TempDir()
	}

	runner := subprocess.NewRunner(AnnexPrefix(gitPath), dir, &config.Options{Logger: log})

	result, err := runner.Run(ctx, VersionArgs()...)
	if err != nil {
		return "", err
	}

	return ParseVersionOutput(result.Stdout)
}

// ParseVersionOutput extracts the dotted numeric version from
// `git annex version --raw` output such as "10.20230926-g44a7b4c9734".
func ParseVersionOutput(output string) (string, error) {
	trimmed := strings.TrimSpace(output)

	match := versionPattern.FindStringSubmatch(trimmed)
	if match == nil {
		return "", fmt.Errorf("%w: unrecognized git-annex version output %q", errors.ErrInvalidRecord, trimmed)
	}

	return match[1], nil
}

// CompareVersions compares two dotted numeric versions.
// Returns -1 if a < b, 0 if a == b, 1 if a > b. Missing parts count as zero.
func CompareVersions(a, b string) int {
	aParts := strings.Split(a, ".")
	bParts := strings.Split(b, ".")

	for i := range max(len(aParts), len(bParts)) {
		aNum := 0
		bNum := 0

		if i < len(aParts) {
			aNum, _ = strconv.Atoi(aParts[i])
		}

		if i < len(bParts) {
			bNum, _ = strconv.Atoi(bParts[i])
		}

		if aNum < bNum {
			return -1
		}

		if aNum > bNum {
			return 1
		}
	}

	return 0
}
