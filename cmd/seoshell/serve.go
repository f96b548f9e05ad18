package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/satinau/seoshell"
)

func runServe(args []string, _, stderr io.Writer) error {
	var c common
	fs := newFlagSet("serve", stderr)
	c.register(fs)
	addr := fs.String("addr", "", "listen address (overrides config)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg, logger, err := c.load(stderr)
	if err != nil {
		return err
	}
	if *addr != "" {
		cfg.Addr = *addr
	}

	app, err := seoshell.New(cfg, seoshell.WithLogger(logger))
	if err != nil {
		return err
	}
	defer app.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return app.Start(ctx)
}
