package main

import (
	"time"

	"github.com/spf13/cobra"

	"windtrader/internal/invoke"
)

var echoFlags struct {
	version string
	timeout time.Duration
}

var echoCmd = &cobra.Command{
	Use:   "echo [file|-]",
	Short: "Run the validator's echo passthrough on a document",
	Long: "Parses the document and prints the validator's normalized\n" +
		"representation. Same exit-code contract as check; useful for\n" +
		"debugging parse investigations.",
	Args: cobra.MaximumNArgs(1),
	RunE: runEcho,
}

func init() {
	f := echoCmd.Flags()
	f.StringVar(&echoFlags.version, "version", "", "validator version to use (default: catalog latest)")
	f.DurationVar(&echoFlags.timeout, "timeout", invoke.DefaultTimeout, "subprocess timeout")
}

func runEcho(cmd *cobra.Command, args []string) error {
	document, err := readDocument(cmd, args)
	if err != nil {
		return err
	}
	m, err := loadCatalog()
	if err != nil {
		return err
	}
	version := echoFlags.version
	if version == "" {
		version = m.LatestVersion
	}
	spec, err := m.Get(version)
	if err != nil {
		return err
	}

	res, err := newRunner(echoFlags.timeout).Echo(cmd.Context(), document, spec)
	if err != nil {
		return err
	}

	forwardOutput(cmd, res)
	if res.ExitCode != 0 {
		return &exitCodeError{code: res.ExitCode}
	}
	return nil
}
