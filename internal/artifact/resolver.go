// Package artifact locates, downloads, and caches windtrader-java validator
// jars.
//
// Given a version identifier it produces a runnable artifact path or fails.
// Jars are fetched from GitHub Releases and cached on disk so subsequent
// validations never hit the network.
package artifact

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/singleflight"

	"windtrader/internal/logging"
	"windtrader/internal/manifest"
)

const userAgent = "windtrader/0.1.0 (+https://github.com/Westfall-io/windtrader)"

// DefaultRepo is the GitHub repository the validator jars are released from.
const DefaultRepo = "Westfall-io/windtrader-java"

// Config holds resolver settings. All fields are explicit; the resolver
// never reads the environment (the CLI layer translates WINDTRADER_* env
// vars into a Config).
type Config struct {
	// CacheDir is the root cache directory. Empty means
	// ~/.cache/windtrader.
	CacheDir string

	// Repo is the GitHub owner/name to fetch release assets from.
	// Empty means DefaultRepo.
	Repo string

	// StableAssetURL, when set, is a fully-qualified URL tried before the
	// release-tag candidates.
	StableAssetURL string
}

// Resolver resolves validator versions to locally cached jar paths.
// Safe for concurrent use: simultaneous requests for the same version
// share a single download.
type Resolver struct {
	cfg    Config
	client *http.Client
	log    *slog.Logger
	group  singleflight.Group
}

// NewResolver returns a resolver with the given config. client may be nil
// to use http.DefaultClient.
func NewResolver(cfg Config, client *http.Client) *Resolver {
	if cfg.Repo == "" {
		cfg.Repo = DefaultRepo
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &Resolver{cfg: cfg, client: client, log: logging.New("artifact")}
}

// cacheDir returns the root cache directory for windtrader artifacts.
func (r *Resolver) cacheDir() (string, error) {
	if r.cfg.CacheDir != "" {
		return r.cfg.CacheDir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve cache dir: %w", err)
	}
	return filepath.Join(home, ".cache", "windtrader"), nil
}

// assetName returns the release asset file name for a spec. The manifest's
// artifact field wins; a bare version falls back to the standard naming.
func assetName(spec manifest.ValidatorSpec) string {
	if spec.Artifact != "" {
		return spec.Artifact
	}
	return fmt.Sprintf("windtrader-java-%s.jar", spec.Version)
}

// jarCachePath returns the expected local cache path for an asset.
func (r *Resolver) jarCachePath(asset string) (string, error) {
	dir, err := r.cacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "jars", asset), nil
}

// candidateURLs builds the prioritized download URL list for a version.
// Tag and asset naming conventions vary across releases, so a small
// fallback list is tried in order.
func (r *Resolver) candidateURLs(version, asset string) []string {
	var urls []string
	if u := strings.TrimSpace(r.cfg.StableAssetURL); u != "" {
		urls = append(urls, u)
	}
	urls = append(urls,
		fmt.Sprintf("https://github.com/%s/releases/download/v%s/%s", r.cfg.Repo, version, asset),
		fmt.Sprintf("https://github.com/%s/releases/download/%s/%s", r.cfg.Repo, version, asset),
		fmt.Sprintf("https://github.com/%s/releases/latest/download/%s", r.cfg.Repo, asset),
	)
	return urls
}

// Resolve ensures the jar for the given spec is present locally and
// returns its path. A cached non-empty jar is reused; otherwise the
// candidate release URLs are tried in order.
func (r *Resolver) Resolve(spec manifest.ValidatorSpec) (string, error) {
	version := strings.TrimSpace(spec.Version)
	if version == "" {
		version = manifest.DefaultVersion
		spec.Version = version
	}
	asset := assetName(spec)

	v, err, _ := r.group.Do(asset, func() (any, error) {
		return r.fetch(version, asset)
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// JarPath resolves a bare version with the standard asset naming. An empty
// version means manifest.DefaultVersion.
func (r *Resolver) JarPath(version string) (string, error) {
	return r.Resolve(manifest.ValidatorSpec{Version: version})
}

func (r *Resolver) fetch(version, asset string) (string, error) {
	dest, err := r.jarCachePath(asset)
	if err != nil {
		return "", err
	}

	if fi, err := os.Stat(dest); err == nil && fi.Size() > 0 {
		r.log.Debug("jar cache hit", "version", version, "path", dest)
		return dest, nil
	}

	var lastErr error
	tried := make([]string, 0, 4)
	for _, url := range r.candidateURLs(version, asset) {
		tried = append(tried, url)
		if err := r.download(url, dest); err != nil {
			lastErr = err
			continue
		}
		if fi, err := os.Stat(dest); err == nil && fi.Size() > 0 {
			r.log.Info("downloaded validator jar", "version", version, "url", url)
			return dest, nil
		}
	}

	var sb strings.Builder
	sb.WriteString("failed to download windtrader-java jar; tried:")
	for _, u := range tried {
		sb.WriteString("\n  - ")
		sb.WriteString(u)
	}
	if lastErr != nil {
		return "", fmt.Errorf("%s: %w", sb.String(), lastErr)
	}
	return "", fmt.Errorf("%s", sb.String())
}

// download fetches url into dest atomically: the body is written to a .tmp
// sibling first and renamed into place, so an interrupted download never
// leaves a partial jar in the cache.
func (r *Resolver) download(url, dest string) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}
	tmp := dest + ".tmp"

	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("download %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download %s: HTTP %d", url, resp.StatusCode)
	}

	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	if _, err := io.Copy(f, resp.Body); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("close %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, dest); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("move jar into cache: %w", err)
	}
	return nil
}
