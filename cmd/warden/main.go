// Package main is the entry point for the warden service.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/storyloom/warden/cmd/warden/commands"
	"github.com/storyloom/warden/internal/adapters/config"
	"github.com/storyloom/warden/internal/adapters/logger"
	"github.com/storyloom/warden/internal/app"
)

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stderr))
}

func run(ctx context.Context, args []string, stderr io.Writer) int {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load(config.DefaultFilename)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "%+v\n", err)
		return 1
	}

	log := logger.New()
	application, err := app.New(cfg, log)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "%+v\n", err)
		return 1
	}

	cli := commands.New(application)
	cli.SetArgs(args)

	if err := cli.Execute(ctx); err != nil {
		log.Error(err)
		return 1
	}
	return 0
}
