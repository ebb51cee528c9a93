// Package main provides bfmemo, a memo-file cache tool for expensive
// data-source initialization.
package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"bfmemo/internal/cli"
	"bfmemo/internal/log"
)

func main() {
	log.InitLogger()

	environ := os.Environ()
	env := make(map[string]string, len(environ))

	for _, e := range environ {
		if k, v, ok := strings.Cut(e, "="); ok {
			env[k] = v
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	exitCode := cli.Run(ctx, os.Stdout, os.Stderr, os.Args, env)

	stop()
	os.Exit(exitCode)
}
