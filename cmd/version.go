package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewVersionCommand creates new command instance
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Args:  cobra.NoArgs,
		Short: "Print the version number of namedcache",
		Run:   printVersion,
	}
}

func printVersion(cmd *cobra.Command, _ []string) {
	fmt.Fprintln(cmd.OutOrStdout(), "namedcache")
	fmt.Fprintf(cmd.OutOrStdout(), "Version: %s\n", version)
	fmt.Fprintf(cmd.OutOrStdout(), "Build time: %s\n", buildTime)
}
