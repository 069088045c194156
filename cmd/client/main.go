package main

import (
	"context"
	"fmt"
	"os"

	"github.com/iudanet/wordkeeper/internal/client/cli"
	"github.com/iudanet/wordkeeper/internal/client/iocli"
	"github.com/iudanet/wordkeeper/internal/config"
)

var (
	// Version information set via ldflags during build
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg := config.DefaultClient().WithEnv(os.Getenv)
	logger := config.NewLogger(os.Stderr, cfg.LogLevel, "text")

	c := cli.New(iocli.NewStdio(), cfg, logger)
	defer func() {
		if err := c.Close(); err != nil {
			logger.Error("failed to close database", "error", err)
		}
	}()

	root := cli.NewRootCommand(c)
	root.Version = fmt.Sprintf("%s (built %s, commit %s)", Version, BuildDate, GitCommit)

	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}
