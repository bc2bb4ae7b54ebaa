package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"windtrader/internal/artifact"
	"windtrader/internal/compat"
	"windtrader/internal/invoke"
	"windtrader/internal/logging"
	"windtrader/internal/manifest"
)

// version is set at build time via -ldflags.
var version = "dev"

// Process exit codes. check/echo mirror the validator's own exit code
// instead; these cover everything else.
const (
	exitSuccess      = 0
	exitGeneric      = 1
	exitInvalid      = 2
	exitRuntimeError = 3
)

var rootFlags struct {
	logLevel  string
	logFormat string
	manifest  string
	cacheDir  string
	repo      string
	stableURL string
	javaPath  string
}

var rootCmd = &cobra.Command{
	Use:   "windtrader",
	Short: "Parse-only SysML v2 validator backed by windtrader-java",
	Long: "Windtrader validates SysML v2 textual documents by invoking the\n" +
		"windtrader-java validator jar as a subprocess. It can check a document\n" +
		"against one version or report compatibility across every cataloged version.",
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setupLogging,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&rootFlags.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	pf.StringVar(&rootFlags.logFormat, "log-format", "text", "log format (text, json)")
	pf.StringVar(&rootFlags.manifest, "manifest", "", "path to an external validator catalog (default: bundled)")
	pf.StringVar(&rootFlags.cacheDir, "cache-dir", "", "jar cache directory (default: $WINDTRADER_CACHE_DIR or ~/.cache/windtrader)")
	pf.StringVar(&rootFlags.repo, "repo", "", "GitHub repo for validator releases (default: $WINDTRADER_JAVA_REPO or "+artifact.DefaultRepo+")")
	pf.StringVar(&rootFlags.stableURL, "stable-asset", "", "stable asset URL tried first for downloads (default: $WINDTRADER_JAVA_STABLE_ASSET)")
	pf.StringVar(&rootFlags.javaPath, "java", "", "path to the java binary (default: look up PATH)")

	rootCmd.AddCommand(versionsCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(echoCmd)
	rootCmd.AddCommand(compatCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.Version = version
}

func setupLogging(_ *cobra.Command, _ []string) error {
	level, err := logging.ParseLevel(rootFlags.logLevel)
	if err != nil {
		return err
	}
	logging.Init(level, rootFlags.logFormat)
	return nil
}

// exitCodeError carries a process exit code for an outcome whose output has
// already been written; main exits silently with the code.
type exitCodeError struct {
	code int
}

func (e *exitCodeError) Error() string { return fmt.Sprintf("exit status %d", e.code) }

// exitCodeFor maps an error onto the CLI exit-code contract: 2 for any
// document-invalid outcome, 3 for infrastructure or runtime failure.
func exitCodeFor(err error) int {
	switch {
	case compat.IsDocumentInvalid(err),
		compat.IsInvalidForAllVersions(err),
		compat.IsInvalidOnLatestButValidOnOlder(err):
		return exitInvalid
	case invoke.IsInvokerError(err),
		compat.IsInfrastructureError(err),
		manifest.IsManifestError(err):
		return exitRuntimeError
	}
	return exitGeneric
}

// artifactConfig builds the resolver config from flags, falling back to the
// WINDTRADER_* environment. Only this layer touches the environment; the
// resolver itself takes everything explicitly.
func artifactConfig() artifact.Config {
	cfg := artifact.Config{
		CacheDir:       rootFlags.cacheDir,
		Repo:           rootFlags.repo,
		StableAssetURL: rootFlags.stableURL,
	}
	if cfg.CacheDir == "" {
		cfg.CacheDir = os.Getenv("WINDTRADER_CACHE_DIR")
	}
	if cfg.Repo == "" {
		cfg.Repo = os.Getenv("WINDTRADER_JAVA_REPO")
	}
	if cfg.StableAssetURL == "" {
		cfg.StableAssetURL = os.Getenv("WINDTRADER_JAVA_STABLE_ASSET")
	}
	return cfg
}

func loadCatalog() (*manifest.Manifest, error) {
	if rootFlags.manifest != "" {
		return manifest.LoadFromPath(rootFlags.manifest)
	}
	return manifest.Load()
}

func newRunner(timeout time.Duration) *invoke.Runner {
	resolver := artifact.NewResolver(artifactConfig(), nil)
	return invoke.NewRunner(resolver, invoke.Options{
		Timeout:  timeout,
		JavaPath: rootFlags.javaPath,
	})
}

func newOrchestrator(timeout time.Duration) *compat.Orchestrator {
	o := compat.NewOrchestrator(newRunner(timeout))
	o.LoadManifest = loadCatalog
	return o
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		var ec *exitCodeError
		if errors.As(err, &ec) {
			os.Exit(ec.code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCodeFor(err))
	}
}
