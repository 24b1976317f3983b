package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// Populated by goreleaser during build
var (
	version = "latest"
	commit  = "none"
)

func NewVersionCommand() *cobra.Command {
	var short bool
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if short {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), version)
				return err
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "roadmapserver %s (%s) %s %s/%s\n",
				version, commit, runtime.Version(), runtime.GOOS, runtime.GOARCH)
			return err
		},
	}
	cmd.Flags().BoolVar(&short, "short", false, "print the version only")
	return cmd
}
