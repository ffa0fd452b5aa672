package bundle

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/bitrise-io/metro-cli/cmd"
	"github.com/bitrise-io/metro-cli/internal/bitrise"
	"github.com/bitrise-io/metro-cli/internal/bundler"
	"github.com/bitrise-io/metro-cli/internal/cmdutil"
	"github.com/bitrise-io/metro-cli/internal/output"
)

const maxTableValue = 80

var optionsCmd = &cobra.Command{
	Use:   "options",
	Short: "Print the bundler options for a request",
	Long: `Resolve a bundle request into the options object passed to the bundler.

Source URLs are included when --maps is set. Use --json for the exact
object the bundler receives.`,
	GroupID: cmd.GroupBundle,
	Args:    cobra.NoArgs,
	RunE: func(c *cobra.Command, args []string) error {
		return runOptions(c, cmd.Out, c.OutOrStdout())
	},
}

func init() {
	registerRequestFlagsOn(optionsCmd)
	cmd.RootCmd.AddCommand(optionsCmd)
}

func runOptions(c *cobra.Command, out *output.Writer, w io.Writer) error {
	resolved, err := resolveRequest(c, out)
	if err != nil {
		return err
	}

	opts, err := bundler.GetDirectBundleOptions(resolved.Request, resolved.Resolver)
	if err != nil {
		return err
	}

	if reqExport && bitrise.IsBitriseEnvironment() {
		cmdutil.ExportArtifact("metro-bundle-options.json", opts, out)
	}

	if cmd.JSONOutput {
		return cmdutil.OutputJSON(w, opts)
	}

	out.Table([]string{"OPTION", "VALUE"}, optionRows(opts))
	return nil
}

func optionRows(opts *bundler.DirectBundleOptions) [][]string {
	rows := [][]string{
		{"entryFile", opts.EntryFile},
		{"platform", string(opts.Platform)},
		{"dev", strconv.FormatBool(opts.Dev)},
		{"minify", strconv.FormatBool(opts.Minify)},
		{"inlineSourceMap", strconv.FormatBool(opts.InlineSourceMap)},
		{"unstable_transformProfile", opts.TransformProfile},
		{"customTransformOptions", compactJSON(opts.CustomTransformOptions)},
		{"customResolverOptions", compactJSON(opts.CustomResolverOptions)},
		{"serializerOptions", compactJSON(opts.SerializerOptions)},
	}
	if opts.SourceURL != "" {
		rows = append(rows,
			[]string{"sourceUrl", cmdutil.Truncate(opts.SourceURL, maxTableValue)},
			[]string{"sourceMapUrl", cmdutil.Truncate(opts.SourceMapURL, maxTableValue)},
		)
	}
	return rows
}

func compactJSON(v interface{}) string {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return cmdutil.Truncate(string(data), maxTableValue)
}
