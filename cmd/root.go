package cmd

import (
	"github.com/spf13/cobra"

	"github.com/maxkimambo/runlevel/internal/logger"
)

var (
	verbose  bool
	jsonLogs bool
	quiet    bool
	version  = "v0.1.0"

	rootCmd = &cobra.Command{
		Use:   "runlevel",
		Short: "Process lifecycle orchestration for long-running services",
		Long: `runlevel sequences registered tasks through four ordered phases (init,
start, stop, finish) and coordinates orderly shutdown on completion,
request, error, or termination signal.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger.Setup(verbose, jsonLogs, quiet)
		},
	}
)

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.Version = version
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().BoolVar(&jsonLogs, "json", false, "Output logs in JSON format")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress non-error output")

	rootCmd.AddCommand(demoCmd)
}
