package report

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bitrise-io/metro-cli/cmd"
	"github.com/bitrise-io/metro-cli/internal/config"
	"github.com/bitrise-io/metro-cli/internal/output"
	"github.com/bitrise-io/metro-cli/internal/reporter"
)

var (
	reportInput         string
	reportURL           string
	reportNoSymbolicate bool
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Render dev server build events",
	Long: `Render the dev server's reporter events as terminal output: build progress
bars, build timings, forwarded client logs and readable bundling errors.

Events are read as newline-delimited JSON from --input, or streamed from the
dev server's events websocket. Client error stacks are symbolicated against
the dev server unless --no-symbolicate is set.`,
	Example: `  metro report --input events.ndjson
  metro-server | metro report --input -
  metro report --url ws://localhost:8081/events`,
	GroupID: cmd.GroupDevServer,
	Args:    cobra.NoArgs,
	RunE: func(c *cobra.Command, args []string) error {
		ctx := c.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		return runReport(ctx, c.OutOrStdout())
	},
}

func init() {
	cmd.RootCmd.AddGroup(&cobra.Group{ID: cmd.GroupDevServer, Title: "Dev Server:"})

	reportCmd.Flags().StringVar(&reportInput, "input", "", `NDJSON event file, or "-" for stdin`)
	reportCmd.Flags().StringVar(&reportURL, "url", "", "events websocket URL (defaults to the dev server origin + /events)")
	reportCmd.Flags().BoolVar(&reportNoSymbolicate, "no-symbolicate", false, "print client error stacks as received")
	cmd.RootCmd.AddCommand(reportCmd)
}

func runReport(ctx context.Context, w io.Writer) error {
	projectDir, err := config.ProjectDir(cmd.ProjectDir)
	if err != nil {
		return err
	}
	if _, err := config.LoadEnv(projectDir, ""); err != nil {
		output.Warn("could not load .env files", "err", err)
	}
	settings, err := config.LoadSettings()
	if err != nil {
		return err
	}

	opts := reporter.Options{
		Styles:  output.NewStyles(output.NewWriter(w).Color()),
		Debug:   settings.Debug,
		Context: ctx,
	}
	if !reportNoSymbolicate {
		opts.Symbolicator = reporter.NewHTTPSymbolicator(settings.ServerOrigin())
	}

	term := output.NewTerminal(w)
	r := reporter.New(projectDir, term, opts)
	defer term.Flush()

	err = readEvents(ctx, settings, r.Update)
	r.Wait()
	return err
}

func readEvents(ctx context.Context, settings *config.Settings, handle func(reporter.Event)) error {
	switch reportInput {
	case "":
		target := reportURL
		if target == "" {
			var err error
			if target, err = eventsURL(settings.ServerOrigin()); err != nil {
				return err
			}
		}
		output.Debug("streaming events", "url", target)
		return reporter.DialEvents(ctx, target, handle)
	case "-":
		return reporter.ReadEvents(ctx, os.Stdin, handle)
	default:
		f, err := os.Open(reportInput)
		if err != nil {
			return fmt.Errorf("opening event file: %w", err)
		}
		defer f.Close()
		return reporter.ReadEvents(ctx, f, handle)
	}
}

// eventsURL derives the events websocket URL from the dev server origin.
func eventsURL(origin string) (string, error) {
	u, err := url.Parse(origin)
	if err != nil {
		return "", fmt.Errorf("invalid dev server origin %q: %w", origin, err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("invalid dev server origin %q: unsupported scheme", origin)
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/events"
	return u.String(), nil
}
