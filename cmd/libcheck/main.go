package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	runner := NewRunner(RunnerOpts{})
	if err := rootCommand(runner).Run(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "libcheck: %v\n", err)
		os.Exit(1)
	}
}
