package main

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"windtrader/internal/compat"
	"windtrader/internal/invoke"
)

var compatFlags struct {
	timeout time.Duration
	asJSON  bool
}

var compatCmd = &cobra.Command{
	Use:   "compat [file|-]",
	Short: "Check a document against every cataloged validator version",
	Long: "Runs the document through every validator version in the catalog,\n" +
		"latest first, and prints the aggregate compatibility report.\n" +
		"Exit code: 0 when the latest validator accepts the document, 2 when\n" +
		"any version rejects it, 3 when the validator infrastructure failed.",
	Args: cobra.MaximumNArgs(1),
	RunE: runCompat,
}

func init() {
	f := compatCmd.Flags()
	f.DurationVar(&compatFlags.timeout, "timeout", invoke.DefaultTimeout, "per-version subprocess timeout")
	f.BoolVar(&compatFlags.asJSON, "json", false, "print the report as JSON")
}

func runCompat(cmd *cobra.Command, args []string) error {
	document, err := readDocument(cmd, args)
	if err != nil {
		return err
	}

	rep, err := newOrchestrator(compatFlags.timeout).Report(cmd.Context(), document)
	if err != nil {
		return err
	}

	if compatFlags.asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(rep); err != nil {
			return fmt.Errorf("encode report: %w", err)
		}
	} else {
		printReport(cmd, rep)
	}

	switch rep.Status {
	case compat.StatusValidLatest:
		return nil
	case compat.StatusValidatorError:
		return &exitCodeError{code: exitRuntimeError}
	default:
		return &exitCodeError{code: exitInvalid}
	}
}

func printReport(cmd *cobra.Command, rep *compat.Report) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Latest:     %s\n", rep.LatestVersion)
	fmt.Fprintf(out, "Status:     %s\n", rep.Status)
	if len(rep.CompatibleVersions) > 0 {
		fmt.Fprintf(out, "Compatible: %s\n", strings.Join(rep.CompatibleVersions, ", "))
	}
	if len(rep.IncompatibleVersions) > 0 {
		fmt.Fprintf(out, "Incompatible:\n")
		for _, ver := range sortedKeys(rep.IncompatibleVersions) {
			fmt.Fprintf(out, "  %s: %s\n", ver, rep.IncompatibleVersions[ver])
		}
	}
	if len(rep.InvokerErrors) > 0 {
		fmt.Fprintf(out, "Invoker errors:\n")
		for _, ver := range sortedKeys(rep.InvokerErrors) {
			fmt.Fprintf(out, "  %s: %s\n", ver, rep.InvokerErrors[ver])
		}
	}
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
