package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	configPath string
	verbose    bool
	jsonOutput bool
)

// Execute runs the root command
func Execute(ctx context.Context, version, commit, buildDate string) error {
	rootCmd := newRootCommand(version, commit, buildDate)
	return rootCmd.ExecuteContext(ctx)
}

func newRootCommand(version, commit, buildDate string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "inventory",
		Short: "Dependency-aware AWS resource inventory",
		Long: `inventory enumerates every resource of an AWS account and region through
the Cloud Control API.

Resource types that can only be listed in the scope of a parent resource are
enumerated after their parent, once per parent instance. Results are written as
CloudFormation-like documents, recorded in SQLite, uploaded to a bucket and
optionally audited with Rego policies.`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildDate),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Persistent flags available to all commands
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file path (.cue, .yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output in JSON format")

	rootCmd.AddCommand(newRunCommand())
	rootCmd.AddCommand(newTypesCommand())
	rootCmd.AddCommand(newGraphCommand())
	rootCmd.AddCommand(newRunsCommand())
	rootCmd.AddCommand(newCheckCommand())

	return rootCmd
}
