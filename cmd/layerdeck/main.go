package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/matzehuels/layerdeck/internal/cli"
	lderrors "github.com/matzehuels/layerdeck/pkg/errors"
)

// Exit codes.
const (
	exitError       = 1
	exitBadInput    = 2
	exitInterrupted = 130 // Standard shell convention for SIGINT
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		code := exitCode(err)
		if code != exitInterrupted {
			fmt.Fprintln(os.Stderr, "error:", lderrors.UserMessage(err))
		}
		os.Exit(code)
	}
}

// exitCode maps err to the process exit status. Input errors (bad scene,
// path, action or config) exit 2 so scripts can tell them from failures.
func exitCode(err error) int {
	switch {
	case errors.Is(err, context.Canceled):
		return exitInterrupted
	case lderrors.Status(err) == http.StatusBadRequest, lderrors.Status(err) == http.StatusNotFound:
		return exitBadInput
	default:
		return exitError
	}
}

func run(ctx context.Context) error {
	var verbose bool

	c := cli.New(os.Stderr, cli.LogInfo)
	root := c.RootCommand()
	root.SilenceErrors = true
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	// The config file sets the level first; --verbose wins over it.
	loadConfig := root.PersistentPreRunE
	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if err := loadConfig(cmd, args); err != nil {
			return err
		}
		if verbose {
			c.SetLogLevel(cli.LogDebug)
		}
		return nil
	}

	return root.ExecuteContext(ctx)
}
