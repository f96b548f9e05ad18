package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/satinau/seoshell/crawllog"
)

func runCrawls(args []string, stdout, stderr io.Writer) error {
	var c common
	fs := newFlagSet("crawls", stderr)
	c.register(fs)
	days := fs.Int("days", 7, "how many days back to summarise")
	db := fs.String("db", "", "crawl log database (overrides config)")
	asJSON := fs.Bool("json", false, "print JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg, logger, err := c.load(stderr)
	if err != nil {
		return err
	}
	if *db != "" {
		cfg.CrawlLogPath = *db
	}
	if cfg.CrawlLogPath == "" {
		return errors.New("crawl log is disabled (set crawlLogPath or -db)")
	}
	if *days < 1 {
		*days = 1
	}

	store, err := crawllog.Open(cfg.CrawlLogPath, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	now := time.Now()
	stats, err := store.GetStats(context.Background(), now.AddDate(0, 0, -*days), now.Add(time.Minute))
	if err != nil {
		return err
	}
	if *asJSON {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(stats)
	}
	printStats(stdout, stats)
	return nil
}

func printStats(w io.Writer, s *crawllog.Stats) {
	fmt.Fprintf(w, "%s: %s crawler requests\n", s.Period, humanize.Comma(int64(s.Total)))
	sections := []struct {
		title string
		rows  []crawllog.DimensionStat
	}{
		{"Bots", s.TopBots},
		{"Paths", s.TopPaths},
		{"Outcomes", s.Outcomes},
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, sec := range sections {
		if len(sec.rows) == 0 {
			continue
		}
		fmt.Fprintf(tw, "\n%s\t\n", sec.title)
		for _, r := range sec.rows {
			fmt.Fprintf(tw, "  %s\t%s\n", r.Name, humanize.Comma(int64(r.Count)))
		}
	}
	tw.Flush()
}
