package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"gorandtest/internal"
	"gorandtest/internal/config"
	"gorandtest/internal/errors"
)

// version is overridden at build time with -ldflags "-X main.version=..."
var version = "0.3.0"

func main() {
	if err := config.LoadDotEnv(); err != nil {
		internal.DefaultLogger.Warn("ignoring .env: %v", err)
	}
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(errors.ExitCode(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	rootCmd := newRootCmd(cfg)
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(errors.ExitCode(err))
	}
}
