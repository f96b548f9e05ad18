package seoshell

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/satinau/seoshell/content"
	"github.com/satinau/seoshell/feed"
	"github.com/satinau/seoshell/seo"
	"github.com/satinau/seoshell/sitemap"
	"github.com/satinau/seoshell/staticgen"
	"github.com/satinau/seoshell/views"
)

// DefaultConfigFile is read by LoadConfig when no path is given.
const DefaultConfigFile = "seoshell.yaml"

// Config holds all configuration for a seoshell site.
type Config struct {
	Site views.SiteConfig `yaml:"site"`

	Addr        string `yaml:"addr"`        // listen address (default ":3000")
	ShellDir    string `yaml:"shellDir"`    // client-rendered site on disk (default "public")
	ContentBase string `yaml:"contentBase"` // required: where index.json and posts live
	IndexURL    string `yaml:"indexURL"`    // default <contentBase>/index.json

	TargetPath    string        `yaml:"targetPath"`    // default "/blog"
	URLStyle      seo.URLStyle  `yaml:"postURLStyle"`  // "query" (default) or "slug"
	FetchTimeout  time.Duration `yaml:"fetchTimeout"`  // default 10s
	IndexCacheTTL time.Duration `yaml:"indexCacheTTL"` // 0 fetches the index on every request
	ExcerptLength int           `yaml:"excerptLength"` // default 150
	Labels        views.Labels  `yaml:"labels"`
	// DescriptionFallback is the meta description of a post whose body is
	// unavailable; {title} and {date} are filled in.
	DescriptionFallback string `yaml:"descriptionFallback"`

	OutDir      string          `yaml:"outDir"`      // static pages (default "blog")
	SitemapPath string          `yaml:"sitemapPath"` // default "sitemap.xml"
	FeedPath    string          `yaml:"feedPath"`    // default "feed.xml"
	FeedLimit   int             `yaml:"feedLimit"`
	Workers     int             `yaml:"workers"` // default 1
	Minify      bool            `yaml:"minify"`
	Routes      []sitemap.Route `yaml:"routes"` // default sitemap.DefaultRoutes

	CrawlLogPath       string `yaml:"crawlLogPath"`       // empty disables the crawl log
	CrawlRetentionDays int    `yaml:"crawlRetentionDays"` // default 90
}

func (c *Config) setDefaults() {
	if c.Site.Name == "" {
		c.Site.Name = "Blog"
	}
	if c.Site.URL == "" {
		c.Site.URL = "http://localhost:3000"
	}
	c.Site.URL = strings.TrimRight(c.Site.URL, "/")
	if c.Site.Lang == "" {
		c.Site.Lang = "en"
	}
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.ShellDir == "" {
		c.ShellDir = "public"
	}
	if c.TargetPath == "" {
		c.TargetPath = "/blog"
	}
	if c.URLStyle == "" {
		c.URLStyle = seo.StyleQuery
	}
	if c.FetchTimeout == 0 {
		c.FetchTimeout = 10 * time.Second
	}
	if c.ExcerptLength == 0 {
		c.ExcerptLength = 150
	}
	if c.OutDir == "" {
		c.OutDir = "blog"
	}
	if c.SitemapPath == "" {
		c.SitemapPath = "sitemap.xml"
	}
	if c.FeedPath == "" {
		c.FeedPath = "feed.xml"
	}
	if c.Workers == 0 {
		c.Workers = 1
	}
	if c.Routes == nil {
		c.Routes = sitemap.DefaultRoutes
	}
	if c.CrawlRetentionDays == 0 {
		c.CrawlRetentionDays = 90
	}
	c.Labels = c.Labels.WithDefaults()
}

// validate rejects unusable values and clamps the rest into range.
func (c *Config) validate() error {
	if c.ContentBase == "" {
		return errors.New("seoshell: contentBase is required")
	}
	style, err := seo.ParseURLStyle(string(c.URLStyle))
	if err != nil {
		return err
	}
	c.URLStyle = style
	if !strings.HasPrefix(c.TargetPath, "/") {
		c.TargetPath = "/" + c.TargetPath
	}
	c.TargetPath = strings.TrimRight(c.TargetPath, "/")
	if c.TargetPath == "" {
		return errors.New("seoshell: targetPath must not be the site root")
	}
	if c.FetchTimeout < 0 {
		return fmt.Errorf("seoshell: fetchTimeout %s is negative", c.FetchTimeout)
	}
	if c.IndexCacheTTL < 0 {
		c.IndexCacheTTL = 0
	}
	if c.ExcerptLength < 10 {
		c.ExcerptLength = 10
	}
	if c.Workers < 1 {
		c.Workers = 1
	}
	if c.Workers > 64 {
		c.Workers = 64
	}
	if c.FeedLimit < 0 {
		c.FeedLimit = 0
	}
	if c.CrawlRetentionDays < 1 {
		c.CrawlRetentionDays = 1
	}
	return nil
}

// LoadConfig builds a Config from, in increasing precedence: defaults, the
// YAML file at path, a .env file in the working directory and SEOSHELL_*
// environment variables. An empty path reads DefaultConfigFile when it
// exists.
func LoadConfig(path string) (Config, error) {
	var cfg Config

	explicit := path != ""
	if !explicit {
		path = DefaultConfigFile
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("seoshell: parse %s: %w", path, err)
		}
	case explicit || !errors.Is(err, fs.ErrNotExist):
		return Config{}, fmt.Errorf("seoshell: read config: %w", err)
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("seoshell: load .env: %w", err)
	}
	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}

	cfg.setDefaults()
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	str := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	str("SEOSHELL_SITE_NAME", &c.Site.Name)
	str("SEOSHELL_SITE_URL", &c.Site.URL)
	str("SEOSHELL_SITE_DESCRIPTION", &c.Site.Description)
	str("SEOSHELL_SITE_AUTHOR", &c.Site.Author)
	str("SEOSHELL_ADDR", &c.Addr)
	str("SEOSHELL_SHELL_DIR", &c.ShellDir)
	str("SEOSHELL_CONTENT_BASE", &c.ContentBase)
	str("SEOSHELL_INDEX_URL", &c.IndexURL)
	str("SEOSHELL_TARGET_PATH", &c.TargetPath)
	str("SEOSHELL_OUT_DIR", &c.OutDir)
	str("SEOSHELL_CRAWL_LOG", &c.CrawlLogPath)

	if v := os.Getenv("SEOSHELL_URL_STYLE"); v != "" {
		c.URLStyle = seo.URLStyle(v)
	}
	if v := os.Getenv("SEOSHELL_FETCH_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("seoshell: SEOSHELL_FETCH_TIMEOUT: %w", err)
		}
		c.FetchTimeout = d
	}
	if v := os.Getenv("SEOSHELL_INDEX_CACHE_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("seoshell: SEOSHELL_INDEX_CACHE_TTL: %w", err)
		}
		c.IndexCacheTTL = d
	}
	if v := os.Getenv("SEOSHELL_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("seoshell: SEOSHELL_WORKERS: %w", err)
		}
		c.Workers = n
	}
	return nil
}

// NewClient creates the content client described by c. hc may be nil.
func (c Config) NewClient(logger *slog.Logger, hc *http.Client) (*content.Client, error) {
	return content.NewClient(c.ContentBase,
		content.WithTimeout(c.FetchTimeout),
		content.WithHTTPClient(hc),
		content.WithIndexURL(c.IndexURL),
		content.WithLogger(logger),
		content.WithUserAgent("seoshell-prerender/"+Version),
	)
}

// Injector returns the request-time planning configuration.
func (c Config) Injector() seo.Config {
	return seo.Config{
		SiteName:      c.Site.Name,
		SiteURL:       c.Site.URL,
		TargetPath:    c.TargetPath,
		URLStyle:      c.URLStyle,
		ExcerptLength: c.ExcerptLength,
		Labels:        c.Labels,

		DescriptionFallback: c.DescriptionFallback,
	}
}

// Generator returns the static page generator configuration.
func (c Config) Generator() staticgen.Config {
	return staticgen.Config{
		OutDir:        c.OutDir,
		Site:          c.Site,
		TargetPath:    c.TargetPath,
		URLStyle:      c.URLStyle,
		Workers:       c.Workers,
		Minify:        c.Minify,
		ExcerptLength: c.ExcerptLength,
		Labels:        c.Labels,

		DescriptionFallback: c.DescriptionFallback,
	}
}

// Sitemap returns the sitemap options.
func (c Config) Sitemap() sitemap.Options {
	return sitemap.Options{
		SiteURL:    c.Site.URL,
		TargetPath: c.TargetPath,
		URLStyle:   c.URLStyle,
		Routes:     c.Routes,
	}
}

// Feed returns the RSS channel options.
func (c Config) Feed() feed.Options {
	return feed.Options{
		Title:       c.Site.Name,
		SiteURL:     c.Site.URL,
		Description: c.Site.Description,
		Author:      c.Site.Author,
		TargetPath:  c.TargetPath,
		URLStyle:    c.URLStyle,
		Limit:       c.FeedLimit,
	}
}

// EnvOr returns the value of the environment variable key, or fallback if empty.
func EnvOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
