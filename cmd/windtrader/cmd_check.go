package main

import (
	"time"

	"github.com/spf13/cobra"

	"windtrader/internal/invoke"
)

var checkFlags struct {
	version string
	timeout time.Duration
}

var checkCmd = &cobra.Command{
	Use:   "check [file|-]",
	Short: "Validate a document with one validator version",
	Long: "Reads a SysML v2 document from the given file (or stdin), runs the\n" +
		"validator's check subcommand, forwards its output verbatim, and exits\n" +
		"with the validator's own exit code (0 valid, 2 invalid, 3 tool failure).",
	Args: cobra.MaximumNArgs(1),
	RunE: runCheck,
}

func init() {
	f := checkCmd.Flags()
	f.StringVar(&checkFlags.version, "version", "", "validator version to use (default: catalog latest)")
	f.DurationVar(&checkFlags.timeout, "timeout", invoke.DefaultTimeout, "subprocess timeout")
}

func runCheck(cmd *cobra.Command, args []string) error {
	document, err := readDocument(cmd, args)
	if err != nil {
		return err
	}
	m, err := loadCatalog()
	if err != nil {
		return err
	}
	version := checkFlags.version
	if version == "" {
		version = m.LatestVersion
	}
	spec, err := m.Get(version)
	if err != nil {
		return err
	}

	res, err := newRunner(checkFlags.timeout).Check(cmd.Context(), document, spec)
	if err != nil {
		return err
	}

	forwardOutput(cmd, res)
	if res.ExitCode != 0 {
		return &exitCodeError{code: res.ExitCode}
	}
	return nil
}
