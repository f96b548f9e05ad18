// Package staticgen writes one standalone HTML page per post plus a copy of
// the post index, for hosting alongside the client-rendered shell.
package staticgen

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/spf13/afero"
	"github.com/tdewolff/minify/v2"
	mhtml "github.com/tdewolff/minify/v2/html"
	"golang.org/x/sync/errgroup"

	"github.com/satinau/seoshell/content"
	"github.com/satinau/seoshell/markdown"
	"github.com/satinau/seoshell/seo"
	"github.com/satinau/seoshell/views"
)

// ErrNotFound is returned by RenderSlug when no post has the slug.
var ErrNotFound = errors.New("staticgen: post not found")

// Fetcher is the strict content API. *content.Client implements it.
type Fetcher interface {
	FetchIndex(ctx context.Context) ([]content.Post, error)
	FetchMarkdown(ctx context.Context, file string) (string, error)
	Base() string
}

// Config controls a generator run.
type Config struct {
	OutDir        string // default "blog"
	Site          views.SiteConfig
	TargetPath    string // default "/blog"
	URLStyle      seo.URLStyle
	Workers       int // concurrent post fetches, default 1
	Minify        bool
	ExcerptLength int // default 150
	Labels        views.Labels
}

func (c *Config) setDefaults() {
	if c.OutDir == "" {
		c.OutDir = "blog"
	}
	if c.TargetPath == "" {
		c.TargetPath = "/blog"
	}
	if c.URLStyle == "" {
		c.URLStyle = seo.StyleQuery
	}
	if c.Workers < 1 {
		c.Workers = 1
	}
	if c.ExcerptLength <= 0 {
		c.ExcerptLength = 150
	}
}

// Failure records a post that could not be generated.
type Failure struct {
	File string
	Err  error
}

// Report summarises a run.
type Report struct {
	Posts     int
	Generated int
	Failed    []Failure
	Duration  time.Duration
}

// Generator renders posts onto an afero filesystem.
type Generator struct {
	fetch  Fetcher
	fs     afero.Fs
	cfg    Config
	logger *slog.Logger
	rich   *markdown.Rich
	min    *minify.M
}

// New creates a Generator. A nil logger means slog.Default().
func New(f Fetcher, fs afero.Fs, cfg Config, logger *slog.Logger) *Generator {
	cfg.setDefaults()
	if logger == nil {
		logger = slog.Default()
	}
	g := &Generator{
		fetch:  f,
		fs:     fs,
		cfg:    cfg,
		logger: logger,
		rich:   markdown.NewRich(f.Base()),
	}
	if cfg.Minify {
		g.min = minify.New()
		g.min.AddFunc("text/html", mhtml.Minify)
	}
	return g
}

// Run fetches the index and generates from it. It fails only when the
// index cannot be fetched or output cannot be written.
func (g *Generator) Run(ctx context.Context) (*Report, error) {
	posts, err := g.fetch.FetchIndex(ctx)
	if err != nil {
		return nil, fmt.Errorf("staticgen: fetch index: %w", err)
	}
	return g.Generate(ctx, posts)
}

// Generate writes every post of an already fetched index it can and always
// writes index.json.
func (g *Generator) Generate(ctx context.Context, posts []content.Post) (*Report, error) {
	start := time.Now()
	if err := g.fs.MkdirAll(g.cfg.OutDir, 0o755); err != nil {
		return nil, fmt.Errorf("staticgen: create %s: %w", g.cfg.OutDir, err)
	}
	g.logger.Info("generating posts", "posts", len(posts), "workers", g.cfg.Workers)

	links := g.links(posts)
	report := &Report{Posts: len(posts)}
	var mu sync.Mutex

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(g.cfg.Workers)
	for _, p := range posts {
		eg.Go(func() error {
			slug := links.Slug(p)
			md, err := g.fetch.FetchMarkdown(egCtx, p.File)
			if err == nil {
				err = g.writePost(links, p, slug, md)
				if errors.Is(err, errWrite) {
					return err
				}
			}
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				g.logger.Warn("skip post", "title", p.Title, "file", p.File, "err", err)
				report.Failed = append(report.Failed, Failure{File: p.File, Err: err})
				return nil
			}
			g.logger.Debug("generated post", "slug", slug)
			report.Generated++
			return nil
		})
	}
	runErr := eg.Wait()

	if err := g.writeIndex(posts); err != nil {
		return report, errors.Join(runErr, err)
	}
	report.Duration = time.Since(start)
	return report, runErr
}

var errWrite = errors.New("write output")

func (g *Generator) writePost(links *seo.Links, p content.Post, slug, md string) error {
	page, err := g.Page(links, p, md)
	if err != nil {
		return err
	}
	dir := filepath.Join(g.cfg.OutDir, slug)
	if err := g.fs.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("staticgen: %w: %v", errWrite, err)
	}
	if err := afero.WriteFile(g.fs, filepath.Join(dir, "index.html"), page, 0o644); err != nil {
		return fmt.Errorf("staticgen: %w: %v", errWrite, err)
	}
	return nil
}

func (g *Generator) writeIndex(posts []content.Post) error {
	data, err := json.MarshalIndent(posts, "", "  ")
	if err != nil {
		return fmt.Errorf("staticgen: encode index: %w", err)
	}
	path := filepath.Join(g.cfg.OutDir, "index.json")
	if err := afero.WriteFile(g.fs, path, data, 0o644); err != nil {
		return fmt.Errorf("staticgen: write %s: %w", path, err)
	}
	return nil
}

func (g *Generator) links(posts []content.Post) *seo.Links {
	return seo.NewLinks(g.cfg.Site.URL, g.cfg.TargetPath, g.cfg.URLStyle, posts)
}

// Page renders the standalone article for p from its Markdown body.
func (g *Generator) Page(links *seo.Links, p content.Post, md string) ([]byte, error) {
	doc, err := g.rich.Convert(md)
	if err != nil {
		return nil, err
	}
	description := doc.Description
	if description == "" {
		description = content.Excerpt(md, g.cfg.ExcerptLength)
	}
	if description == "" {
		description = views.PageTitle(p.Title, g.cfg.Site.Name)
	}
	article := views.Article{
		Site:         g.cfg.Site,
		Title:        p.Title,
		Date:         p.Date,
		Description:  description,
		Keywords:     doc.Tags,
		CanonicalURL: links.URL(p),
		ListURL:      g.cfg.TargetPath + "/",
		Stats:        content.ReadingStats(content.StripFrontMatter(md)),
		Body:         template.HTML(doc.HTML),
		Labels:       g.cfg.Labels,
	}

	var buf bytes.Buffer
	if err := views.ArticlePage(article).Render(context.Background(), &buf); err != nil {
		return nil, fmt.Errorf("staticgen: render %s: %w", p.File, err)
	}
	if g.min == nil {
		return buf.Bytes(), nil
	}
	out, err := g.min.Bytes("text/html", buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("staticgen: minify %s: %w", p.File, err)
	}
	return out, nil
}

// RenderSlug renders the page of the post whose slug is slug, fetching the
// index and body on demand. It returns ErrNotFound for unknown slugs.
func (g *Generator) RenderSlug(ctx context.Context, slug string) ([]byte, error) {
	posts, err := g.fetch.FetchIndex(ctx)
	if err != nil {
		return nil, fmt.Errorf("staticgen: fetch index: %w", err)
	}
	links := g.links(posts)
	for _, p := range posts {
		if links.Slug(p) != slug {
			continue
		}
		md, err := g.fetch.FetchMarkdown(ctx, p.File)
		if err != nil {
			return nil, err
		}
		return g.Page(links, p, md)
	}
	return nil, ErrNotFound
}
