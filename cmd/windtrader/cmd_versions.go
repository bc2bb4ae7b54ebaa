package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var versionsCmd = &cobra.Command{
	Use:   "versions",
	Short: "List the validator versions in the catalog",
	Args:  cobra.NoArgs,
	RunE:  runVersions,
}

func runVersions(cmd *cobra.Command, _ []string) error {
	m, err := loadCatalog()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	for _, v := range m.Validators {
		marker := ""
		if v.Version == m.LatestVersion {
			marker = "  (latest)"
		}
		fmt.Fprintf(out, "%s  java>=%d%s\n", v.Version, v.MinimumRuntimeVersion, marker)
	}
	return nil
}
