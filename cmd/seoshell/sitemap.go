package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/afero"

	"github.com/satinau/seoshell/sitemap"
)

func runSitemap(args []string, stdout, stderr io.Writer) error {
	var c common
	fs := newFlagSet("sitemap", stderr)
	c.register(fs)
	out := fs.String("o", "", `output path, "-" for stdout (overrides config)`)
	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg, logger, err := c.load(stderr)
	if err != nil {
		return err
	}
	if *out != "" {
		cfg.SitemapPath = *out
	}

	client, err := cfg.NewClient(logger, nil)
	if err != nil {
		return err
	}
	opts := cfg.Sitemap()
	opts.Logger = logger
	res, err := sitemap.Generate(context.Background(), client, opts)
	if err != nil {
		return err
	}
	if cfg.SitemapPath == "-" {
		_, err := stdout.Write(res.Data)
		return err
	}
	if err := sitemap.Write(afero.NewOsFs(), cfg.SitemapPath, res.Data); err != nil {
		return err
	}
	if res.Fallback {
		fmt.Fprintf(stdout, "sitemap: %s (static routes only)\n", cfg.SitemapPath)
		return nil
	}
	fmt.Fprintf(stdout, "sitemap: %s (%d posts)\n", cfg.SitemapPath, res.Posts)
	return nil
}
