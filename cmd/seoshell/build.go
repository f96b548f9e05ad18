package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/afero"

	"github.com/satinau/seoshell/feed"
	"github.com/satinau/seoshell/sitemap"
	"github.com/satinau/seoshell/staticgen"
)

func runBuild(args []string, stdout, stderr io.Writer) error {
	var c common
	fs := newFlagSet("build", stderr)
	c.register(fs)
	out := fs.String("out", "", "output directory for post pages (overrides config)")
	workers := fs.Int("workers", 0, "concurrent post fetches (overrides config)")
	minify := fs.Bool("minify", false, "minify generated pages")
	noFeed := fs.Bool("no-feed", false, "skip feed.xml")
	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg, logger, err := c.load(stderr)
	if err != nil {
		return err
	}
	if *out != "" {
		cfg.OutDir = *out
	}
	if *workers > 0 {
		cfg.Workers = *workers
	}
	if *minify {
		cfg.Minify = true
	}

	client, err := cfg.NewClient(logger, nil)
	if err != nil {
		return err
	}
	ctx := context.Background()
	osFs := afero.NewOsFs()

	// One index snapshot feeds every output so they agree with each other.
	posts, err := client.FetchIndex(ctx)
	if err != nil {
		return fmt.Errorf("fetch index: %w", err)
	}

	report, err := staticgen.New(client, osFs, cfg.Generator(), logger).Generate(ctx, posts)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "posts: %d generated, %d failed of %d (%s)\n",
		report.Generated, len(report.Failed), report.Posts, report.Duration.Round(time.Millisecond))
	for _, f := range report.Failed {
		fmt.Fprintf(stdout, "  failed %s: %v\n", f.File, f.Err)
	}

	opts := cfg.Sitemap()
	opts.Logger = logger
	sm, err := sitemap.Render(opts, posts)
	if err != nil {
		return err
	}
	if err := sitemap.Write(osFs, cfg.SitemapPath, sm.Data); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "sitemap: %s (%d posts)\n", cfg.SitemapPath, sm.Posts)

	if *noFeed {
		return nil
	}
	rss, err := feed.RSS(cfg.Feed(), posts, time.Now())
	if err != nil {
		return err
	}
	if err := feed.Write(osFs, cfg.FeedPath, rss); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "feed: %s\n", cfg.FeedPath)
	return nil
}
