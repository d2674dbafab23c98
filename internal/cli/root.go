package cli

import (
	"github.com/spf13/cobra"

	"github.com/openmetrica/gaquery/internal/cli/compile"
	"github.com/openmetrica/gaquery/pkg/version"
)

var rootCmd = &cobra.Command{
	Use:   "gaquery",
	Short: "gaquery - compile query trees into reporting API parameters",
	Long: `Compile engine-neutral query trees into the flat parameter set of the
Google Analytics Core Reporting API.

The compiler splits a query's predicate tree into the API's three
orthogonal parameter sets: the filter expression, the inclusive
start-date/end-date range, and the built-in segment. Everything else
(metrics, dimensions, sort, row limit) maps structurally.

It does not execute requests: the output is the parameter map, ready for
whatever transport layer owns authentication and retries.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(compile.NewCompileCmd())
	rootCmd.AddCommand(newVersionCmd())
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Printf("gaquery version %s\n", version.Version)
			cmd.Printf("Git commit: %s\n", version.GitCommit)
			cmd.Printf("Build date: %s\n", version.BuildDate)
			cmd.Printf("Go version: %s\n", version.GoVersion)
		},
	}
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}
