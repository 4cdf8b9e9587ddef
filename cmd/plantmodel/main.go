package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Build-time variables (set via ldflags)
	version = "dev"
	commit  = "unknown"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "plantmodel",
		Short:         "Plant model validation and conversion",
		Long:          "Validates plant layout models and converts them between the legacy (.opentcs) and unified (.xml) formats.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringP("config", "c", "", "Path to configuration file")

	rootCmd.AddCommand(
		newValidateCommand(),
		newConvertCommand(),
		newInspectCommand(),
		newUploadCommand(),
		newDownloadCommand(),
		newStatusCommand(),
		newVersionCommand(),
	)
	return rootCmd
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "plantmodel %s (commit: %s)\n", version, commit)
		},
	}
}
