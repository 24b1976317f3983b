package cmd

import (
	"strings"

	"github.com/foomo/keel/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// NewRootCommand represents the base command when called without any subcommands
func NewRootCommand() *cobra.Command {
	v := newViper()
	cmd := &cobra.Command{
		Use:   "roadmapserver",
		Short: "Serves learning roadmaps and proxies their node content",
		Long: `roadmapserver loads a roadmap index, folds its entries into trees and
serves them together with rendered node content fetched from roadmap.sh.

The tree and topics commands work on a local index file and need no server.`,
		Example: `  roadmapserver http https://example.com/roadmap-index.json
  roadmapserver tree ./index.json --root "Cyber Security"
  roadmapserver topics ./index.json --json`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			zap.ReplaceGlobals(log.NewLogger(
				logLevelFlag(v),
				logFormatFlag(v),
			))
		},
	}

	addLogLevelFlag(cmd.PersistentFlags(), v)
	addLogFormatFlag(cmd.PersistentFlags(), v)

	cmd.AddCommand(NewHTTPCommand())
	cmd.AddCommand(NewTreeCommand())
	cmd.AddCommand(NewTopicsCommand())
	cmd.AddCommand(NewVersionCommand())

	return cmd
}

// Execute runs the root command and exits on failure
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		log.Logger().Fatal("failed to run command", zap.Error(err))
	}
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	return v
}
