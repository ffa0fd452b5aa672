package bundle

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/bitrise-io/metro-cli/cmd"
	"github.com/bitrise-io/metro-cli/internal/bitrise"
	"github.com/bitrise-io/metro-cli/internal/bundler"
	"github.com/bitrise-io/metro-cli/internal/cmdutil"
	"github.com/bitrise-io/metro-cli/internal/output"
)

var urlFull bool

var urlCmd = &cobra.Command{
	Use:   "url",
	Short: "Print the bundle URL for a request",
	Long: `Print the canonical bundle URL path the dev server uses for a bundle request.

The entry module and JS engine are auto-detected from the project. Query
parameters are always emitted in the same order, so the output can be used
as a cache key.`,
	GroupID: cmd.GroupBundle,
	Args:    cobra.NoArgs,
	RunE: func(c *cobra.Command, args []string) error {
		return runURL(c, cmd.Out, c.OutOrStdout())
	},
}

func init() {
	registerRequestFlagsOn(urlCmd)
	urlCmd.Flags().BoolVar(&urlFull, "full", false, "prefix the path with the dev server origin")
	cmd.RootCmd.AddCommand(urlCmd)
}

type urlResult struct {
	BundleURL    string `json:"bundle_url"`
	SourceMapURL string `json:"source_map_url,omitempty"`
}

func runURL(c *cobra.Command, out *output.Writer, w io.Writer) error {
	resolved, err := resolveRequest(c, out)
	if err != nil {
		return err
	}

	req := resolved.Request
	req.MainModuleName = urlModuleName(req.MainModuleName)

	bundleURL, err := bundler.CreateBundleURLPath(req)
	if err != nil {
		return err
	}
	result := urlResult{BundleURL: bundleURL}
	if req.SerializerIncludeMaps {
		if result.SourceMapURL, err = bundler.CreateSourceMapURLPath(req); err != nil {
			return err
		}
	}

	if urlFull {
		result.BundleURL = resolved.Resolver.ServerOrigin + result.BundleURL
		if result.SourceMapURL != "" {
			result.SourceMapURL = resolved.Resolver.ServerOrigin + result.SourceMapURL
		}
	}

	if reqExport && bitrise.IsBitriseEnvironment() {
		vars := map[string]string{"METRO_BUNDLE_URL": result.BundleURL}
		if result.SourceMapURL != "" {
			vars["METRO_SOURCE_MAP_URL"] = result.SourceMapURL
		}
		cmdutil.ExportEnvVars(vars, out)
	}

	if cmd.JSONOutput {
		return cmdutil.OutputJSON(w, result)
	}

	// Plain URLs go to stdout so they can be piped.
	fmt.Fprintln(w, result.BundleURL)
	if result.SourceMapURL != "" {
		fmt.Fprintln(w, result.SourceMapURL)
	}
	return nil
}
