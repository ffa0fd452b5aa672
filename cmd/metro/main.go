// Metro CLI - resolve Metro bundle requests and follow dev server builds
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/bitrise-io/metro-cli/cmd"
	_ "github.com/bitrise-io/metro-cli/cmd/bundle"
	_ "github.com/bitrise-io/metro-cli/cmd/report"
	"github.com/bitrise-io/metro-cli/internal/output"
)

func main() {
	cmd.Out = output.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cmd.RootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
