// Package feed builds an RSS 2.0 feed of the post index.
package feed

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/gorilla/feeds"
	"github.com/spf13/afero"

	"github.com/satinau/seoshell/content"
	"github.com/satinau/seoshell/seo"
)

// Options describe the channel.
type Options struct {
	Title       string
	SiteURL     string
	Description string
	Author      string
	TargetPath  string
	URLStyle    seo.URLStyle
	Limit       int // 0 keeps every post
}

// Build assembles the feed. Items keep index order. An empty TargetPath
// means "/blog".
func Build(opts Options, posts []content.Post, now time.Time) *feeds.Feed {
	if opts.TargetPath == "" {
		opts.TargetPath = "/blog"
	}
	f := &feeds.Feed{
		Title:       opts.Title,
		Link:        &feeds.Link{Href: opts.SiteURL + "/"},
		Description: opts.Description,
		Created:     now,
	}
	if opts.Author != "" {
		f.Author = &feeds.Author{Name: opts.Author}
	}
	links := seo.NewLinks(opts.SiteURL, opts.TargetPath, opts.URLStyle, posts)
	for i, p := range posts {
		if opts.Limit > 0 && i >= opts.Limit {
			break
		}
		u := links.URL(p)
		item := &feeds.Item{
			Title:  p.Title,
			Link:   &feeds.Link{Href: u},
			Id:     u,
			Author: f.Author,
		}
		if t, err := time.Parse("2006-01-02", p.Date); err == nil {
			item.Created = t
		}
		f.Items = append(f.Items, item)
	}
	return f
}

// RSS renders the feed as RSS 2.0.
func RSS(opts Options, posts []content.Post, now time.Time) (string, error) {
	out, err := Build(opts, posts, now).ToRss()
	if err != nil {
		return "", fmt.Errorf("feed: encode rss: %w", err)
	}
	return out, nil
}

// IndexFetcher is the strict index API. *content.Client implements it.
type IndexFetcher interface {
	FetchIndex(ctx context.Context) ([]content.Post, error)
}

// Generate fetches the index and renders the feed.
func Generate(ctx context.Context, f IndexFetcher, opts Options, now time.Time) (string, error) {
	posts, err := f.FetchIndex(ctx)
	if err != nil {
		return "", fmt.Errorf("feed: fetch index: %w", err)
	}
	return RSS(opts, posts, now)
}

// Write stores an RSS document at path, creating parent directories.
func Write(fs afero.Fs, path, rss string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := fs.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("feed: create %s: %w", dir, err)
		}
	}
	if err := afero.WriteFile(fs, path, []byte(rss), 0o644); err != nil {
		return fmt.Errorf("feed: write %s: %w", path, err)
	}
	return nil
}
