// Package sitemap builds sitemap.xml from a fixed route table and the post
// index.
package sitemap

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/afero"

	"github.com/satinau/seoshell/content"
	"github.com/satinau/seoshell/seo"
)

const xmlns = "http://www.sitemaps.org/schemas/sitemap/0.9"

// Route is a static page of the site.
type Route struct {
	Path       string  `yaml:"path"`
	Priority   float64 `yaml:"priority"`
	ChangeFreq string  `yaml:"changefreq"`
}

// DefaultRoutes lists the site's non-post pages.
var DefaultRoutes = []Route{
	{Path: "/", Priority: 1.0, ChangeFreq: "weekly"},
	{Path: "/blog", Priority: 0.8, ChangeFreq: "daily"},
	{Path: "/zelynn", Priority: 0.8, ChangeFreq: "monthly"},
	{Path: "/pages/character", Priority: 0.6, ChangeFreq: "monthly"},
	{Path: "/pages/moments", Priority: 0.6, ChangeFreq: "weekly"},
	{Path: "/pages/aboutme", Priority: 0.6, ChangeFreq: "monthly"},
	{Path: "/pages/friendlink", Priority: 0.6, ChangeFreq: "monthly"},
	{Path: "/pages/playlist", Priority: 0.6, ChangeFreq: "monthly"},
	{Path: "/pages/settings", Priority: 0.4, ChangeFreq: "yearly"},
}

// Post entries share one priority and change frequency.
const (
	PostPriority   = 0.7
	PostChangeFreq = "monthly"
)

type urlSet struct {
	XMLName xml.Name   `xml:"urlset"`
	XMLNS   string     `xml:"xmlns,attr"`
	URLs    []urlEntry `xml:"url"`
}

type urlEntry struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod,omitempty"`
	ChangeFreq string `xml:"changefreq,omitempty"`
	Priority   string `xml:"priority,omitempty"`
}

// Build renders a sitemap with the static routes first, then one entry per
// post in index order. Posts without a date get today's date (UTC).
func Build(siteURL string, routes []Route, posts []content.Post, urlFn func(content.Post) string, now time.Time) ([]byte, error) {
	site := strings.TrimSuffix(siteURL, "/")
	today := now.UTC().Format("2006-01-02")

	urls := make([]urlEntry, 0, len(routes)+len(posts))
	for _, r := range routes {
		urls = append(urls, urlEntry{
			Loc:        site + "/" + strings.TrimPrefix(r.Path, "/"),
			LastMod:    today,
			ChangeFreq: r.ChangeFreq,
			Priority:   formatPriority(r.Priority),
		})
	}
	for _, p := range posts {
		lastmod := p.Date
		if lastmod == "" {
			lastmod = today
		}
		urls = append(urls, urlEntry{
			Loc:        urlFn(p),
			LastMod:    lastmod,
			ChangeFreq: PostChangeFreq,
			Priority:   formatPriority(PostPriority),
		})
	}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(urlSet{XMLNS: xmlns, URLs: urls}); err != nil {
		return nil, fmt.Errorf("sitemap: encode: %w", err)
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

func formatPriority(p float64) string {
	return strconv.FormatFloat(p, 'f', 1, 64)
}

// IndexFetcher is the strict index API. *content.Client implements it.
type IndexFetcher interface {
	FetchIndex(ctx context.Context) ([]content.Post, error)
}

// Options configures Generate.
type Options struct {
	SiteURL    string
	TargetPath string
	URLStyle   seo.URLStyle
	Routes     []Route // nil means DefaultRoutes
	Now        func() time.Time
	Logger     *slog.Logger
}

// Result is the outcome of Generate.
type Result struct {
	Data     []byte
	Posts    int
	Fallback bool // the index was unavailable; only static routes were written
}

func (o *Options) setDefaults() {
	if o.TargetPath == "" {
		o.TargetPath = "/blog"
	}
	if o.Routes == nil {
		o.Routes = DefaultRoutes
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
}

// Generate fetches the index and builds the sitemap. When the index cannot
// be fetched it logs the failure and falls back to the static routes.
func Generate(ctx context.Context, f IndexFetcher, opts Options) (*Result, error) {
	opts.setDefaults()
	posts, err := f.FetchIndex(ctx)
	if err != nil {
		opts.Logger.Warn("post index unavailable, writing static routes only", "err", err)
		res, err := Render(opts, nil)
		if err != nil {
			return nil, err
		}
		res.Fallback = true
		return res, nil
	}
	return Render(opts, posts)
}

// Render builds the sitemap from an already fetched index.
func Render(opts Options, posts []content.Post) (*Result, error) {
	opts.setDefaults()
	links := seo.NewLinks(opts.SiteURL, opts.TargetPath, opts.URLStyle, posts)
	data, err := Build(opts.SiteURL, opts.Routes, posts, links.URL, opts.Now())
	if err != nil {
		return nil, err
	}
	return &Result{Data: data, Posts: len(posts)}, nil
}

// Write stores data at path, creating parent directories.
func Write(fs afero.Fs, path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := fs.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("sitemap: create %s: %w", dir, err)
		}
	}
	if err := afero.WriteFile(fs, path, data, 0o644); err != nil {
		return fmt.Errorf("sitemap: write %s: %w", path, err)
	}
	return nil
}
