// Package invoke runs one windtrader-java validator against one document
// and translates the process outcome into a typed result.
//
// Exit-code contract with windtrader-java (fixed):
//
//	0 => syntax valid
//	2 => syntax invalid (parse error)
//	3 => runtime/tool failure inside the validator
//	any other non-zero => unexpected, treated like 3
//
// Validator-reported failures (2, 3, other) come back inside the Result so
// the orchestrator can fold them; an Error is returned only when the
// process could not be run or measured at all (missing Java, unresolvable
// jar, timeout).
package invoke

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"windtrader/internal/logging"
	"windtrader/internal/manifest"
)

// DefaultTimeout bounds one validator invocation when the caller does not
// set one.
const DefaultTimeout = 10 * time.Second

// Subcommands of the validator jar.
const (
	SubcommandCheck = "check"
	SubcommandEcho  = "echo"
)

// ArtifactResolver resolves a validator spec to a runnable jar path.
// Implemented by artifact.Resolver.
type ArtifactResolver interface {
	Resolve(spec manifest.ValidatorSpec) (string, error)
}

// Result is the outcome of one bounded invocation.
type Result struct {
	// Version is the validator version that ran.
	Version string

	// Succeeded is true iff the process exited 0.
	Succeeded bool

	// ExitCode is the raw process exit code.
	ExitCode int

	// Stdout and Stderr are the fully captured output channels.
	Stdout string
	Stderr string

	// JarPath is the local jar that was executed.
	JarPath string

	// Duration is the wall-clock runtime of the subprocess.
	Duration time.Duration
}

// InvalidSyntax reports whether the validator rejected the document as a
// parse failure (exit code 2).
func (r Result) InvalidSyntax() bool { return r.ExitCode == 2 }

// RuntimeFailure reports whether the validator failed for reasons other
// than a parse error (any exit code that is neither 0 nor 2).
func (r Result) RuntimeFailure() bool { return r.ExitCode != 0 && r.ExitCode != 2 }

// Options configures a Runner.
type Options struct {
	// Timeout bounds each invocation. Zero means DefaultTimeout.
	Timeout time.Duration

	// JavaPath is an explicit path to the java binary. Empty means look
	// it up on PATH.
	JavaPath string
}

// Runner invokes validator jars. One Runner is safe for sequential reuse
// across versions in a single orchestration run.
type Runner struct {
	resolver ArtifactResolver
	opts     Options
	log      *slog.Logger
}

// NewRunner returns a Runner using the given resolver and options.
func NewRunner(resolver ArtifactResolver, opts Options) *Runner {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	return &Runner{resolver: resolver, opts: opts, log: logging.New("invoke")}
}

// Check validates a document with `java -jar <jar> check`.
func (r *Runner) Check(ctx context.Context, document string, spec manifest.ValidatorSpec) (Result, error) {
	return r.run(ctx, SubcommandCheck, document, spec)
}

// Echo runs `java -jar <jar> echo`, the validator's diagnostic passthrough.
// Same exit-code contract as Check, with tool-defined normalized output on
// success. Not part of the compatibility algorithm.
func (r *Runner) Echo(ctx context.Context, document string, spec manifest.ValidatorSpec) (Result, error) {
	return r.run(ctx, SubcommandEcho, document, spec)
}

func (r *Runner) run(ctx context.Context, subcommand, document string, spec manifest.ValidatorSpec) (Result, error) {
	// The runtime must exist before anything is spawned or downloaded.
	java, err := r.javaPath()
	if err != nil {
		return Result{}, err
	}

	jar, err := r.resolver.Resolve(spec)
	if err != nil {
		return Result{}, &Error{version: spec.Version, reason: "artifact unavailable", err: err}
	}

	args := append([]string{"-jar", jar, subcommand}, spec.ExtraArgs...)

	runCtx, cancel := context.WithTimeout(ctx, r.opts.Timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, java, args...)
	cmd.Stdin = strings.NewReader(document)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	// Reclaim the process even if a grandchild holds the pipes open after
	// the kill.
	cmd.WaitDelay = 3 * time.Second

	r.log.Debug("invoking validator", "version", spec.Version, "subcommand", subcommand, "jar", jar)

	start := time.Now()
	runErr := cmd.Run()
	elapsed := time.Since(start)

	if runCtx.Err() == context.DeadlineExceeded {
		return Result{}, &Error{
			version: spec.Version,
			reason:  fmt.Sprintf("validator timed out after %s", r.opts.Timeout),
			err:     context.DeadlineExceeded,
		}
	}

	exitCode := 0
	if runErr != nil {
		var exitErr *exec.ExitError
		if !errors.As(runErr, &exitErr) {
			return Result{}, &Error{version: spec.Version, reason: "failed to run validator", err: runErr}
		}
		exitCode = exitErr.ExitCode()
	}

	return Result{
		Version:   spec.Version,
		Succeeded: exitCode == 0,
		ExitCode:  exitCode,
		Stdout:    stdout.String(),
		Stderr:    stderr.String(),
		JarPath:   jar,
		Duration:  elapsed,
	}, nil
}

// javaPath locates the Java runtime, or reports a typed error when it is
// absent.
func (r *Runner) javaPath() (string, error) {
	if r.opts.JavaPath != "" {
		return r.opts.JavaPath, nil
	}
	java, err := exec.LookPath("java")
	if err != nil {
		return "", &Error{
			reason: "Java runtime not found on PATH; install a JRE/JDK (recommended: Java 21+) and retry",
			err:    err,
		}
	}
	return java, nil
}
