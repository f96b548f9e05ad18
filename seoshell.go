// Package seoshell serves a client-rendered blog and pre-renders its posts
// for search engines and social previews.
//
// Crawler requests on the blog page get the post list or the requested post
// streamed into the HTML shell; build tools write one static page per post,
// a copy of the post index, a sitemap and an RSS feed.
package seoshell

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/spf13/afero"

	"github.com/satinau/seoshell/content"
	"github.com/satinau/seoshell/crawllog"
	"github.com/satinau/seoshell/seo"
	"github.com/satinau/seoshell/staticgen"
)

// Version is reported in the outbound User-Agent and by the CLI.
var Version = "dev"

// App wires the content client, injector, crawl log and HTTP server.
type App struct {
	Config    Config
	Echo      *echo.Echo
	Client    *content.Client
	Injector  *seo.Injector
	Generator *staticgen.Generator
	CrawlLog  *crawllog.Store

	fs          afero.Fs
	logger      *slog.Logger
	httpClient  *http.Client
	ownCrawlLog bool
	stopCleanup func()
}

// Option configures additional App behavior.
type Option func(*App)

// WithLogger sets the logger for the pipeline packages.
func WithLogger(l *slog.Logger) Option {
	return func(a *App) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithHTTPClient replaces the client used to reach the content base.
func WithHTTPClient(hc *http.Client) Option {
	return func(a *App) {
		a.httpClient = hc
	}
}

// WithCrawlLog records crawler hits in s. The caller keeps ownership of s.
func WithCrawlLog(s *crawllog.Store) Option {
	return func(a *App) {
		a.CrawlLog = s
	}
}

// WithFs sets the filesystem the shell is served from and static output is
// written to (default the OS filesystem).
func WithFs(fs afero.Fs) Option {
	return func(a *App) {
		a.fs = fs
	}
}

// New creates an App with routes and middleware in place. Call Start to
// listen, or use a.Echo as an http.Handler.
func New(cfg Config, opts ...Option) (*App, error) {
	cfg.setDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	a := &App{
		Config: cfg,
		Echo:   echo.New(),
		fs:     afero.NewOsFs(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.Echo.HideBanner = true
	a.Echo.HidePort = true

	client, err := cfg.NewClient(a.logger, a.httpClient)
	if err != nil {
		return nil, fmt.Errorf("seoshell: %w", err)
	}
	a.Client = client

	var src seo.Source = client
	if cfg.IndexCacheTTL > 0 {
		src = content.NewIndexCache(client, cfg.IndexCacheTTL)
	}
	a.Injector = seo.NewInjector(src, cfg.Injector(), a.logger)
	a.Generator = staticgen.New(client, a.fs, cfg.Generator(), a.logger)

	if a.CrawlLog == nil && cfg.CrawlLogPath != "" {
		store, err := crawllog.Open(cfg.CrawlLogPath, a.logger)
		if err != nil {
			return nil, fmt.Errorf("seoshell: init crawl log: %w", err)
		}
		a.CrawlLog = store
		a.ownCrawlLog = true
	}

	a.setupMiddleware()
	a.setupRoutes()
	return a, nil
}

// Start starts the crawl log cleanup and serves until the server is shut
// down or ctx is cancelled.
func (a *App) Start(ctx context.Context) error {
	if a.CrawlLog != nil && a.stopCleanup == nil {
		a.stopCleanup = a.CrawlLog.StartCleanupScheduler(a.Config.CrawlRetentionDays, 24*time.Hour)
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.Echo.Shutdown(shutdownCtx); err != nil {
			a.logger.Error("shutdown", "err", err)
		}
	}()

	a.logger.Info("listening", "addr", a.Config.Addr, "target", a.Config.TargetPath, "shell", a.Config.ShellDir)
	if err := a.Echo.Start(a.Config.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Close releases resources owned by the App.
func (a *App) Close() error {
	if a.stopCleanup != nil {
		a.stopCleanup()
		a.stopCleanup = nil
	}
	if a.ownCrawlLog && a.CrawlLog != nil {
		return a.CrawlLog.Close()
	}
	return nil
}
