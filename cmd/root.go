package cmd

import (
	"github.com/spf13/cobra"

	"github.com/bitrise-io/metro-cli/internal/output"
)

// GroupID is a typed alias for command group identifiers.
type GroupID = string

// Command group identifiers for organizing help output.
const (
	GroupBundle    GroupID = "bundle"
	GroupDevServer GroupID = "devserver"
)

// Out is the shared CLI output writer. Set by main() before Execute().
var Out *output.Writer

// Global flag values, bound to RootCmd's persistent flags.
var (
	ProjectDir string
	JSONOutput bool
	Verbose    bool
)

// RootCmd is the top-level cobra command.
var RootCmd = &cobra.Command{
	Use:   "metro",
	Short: "Inspect Metro bundle requests and follow dev server builds",
	Long: `Metro CLI resolves the bundle options and URLs an Expo or React Native
dev server uses for a bundle request, and renders the dev server's build
events as progress bars, timings and readable bundling errors.

Use as a standalone CLI or as a Bitrise plugin (bitrise :metro).`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(c *cobra.Command, args []string) {
		output.SetupLogging(Verbose)
	},
}

func init() {
	RootCmd.PersistentFlags().StringVar(&ProjectDir, "project-dir", "", "project root directory (defaults to current directory)")
	RootCmd.PersistentFlags().BoolVar(&JSONOutput, "json", false, "output results as JSON to stdout")
	RootCmd.PersistentFlags().BoolVarP(&Verbose, "verbose", "v", false, "enable debug logging on stderr")
}
