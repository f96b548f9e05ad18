package seoshell

import (
	"net/http"
	"path"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/satinau/seoshell/crawler"
	"github.com/satinau/seoshell/crawllog"
)

func (a *App) setupMiddleware() {
	e := a.Echo

	e.IPExtractor = echo.ExtractIPFromXFFHeader(
		echo.TrustLoopback(true),
		echo.TrustLinkLocal(false),
		echo.TrustPrivateNet(true),
	)

	e.HTTPErrorHandler = a.httpErrorHandler

	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:  true,
		LogURI:     true,
		LogMethod:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			c.Logger().Infof("%s %s -> %d (%s)", v.Method, v.URI, v.Status, v.Latency)
			return nil
		},
	}))

	e.Use(middleware.Recover())

	e.Use(middleware.GzipWithConfig(middleware.GzipConfig{
		Level: 5,
		Skipper: func(c echo.Context) bool {
			return strings.HasPrefix(c.Request().URL.Path, "/public/")
		},
	}))

	e.Use(middleware.SecureWithConfig(middleware.SecureConfig{
		XSSProtection:      "1; mode=block",
		ContentTypeNosniff: "nosniff",
		XFrameOptions:      "SAMEORIGIN",
		ReferrerPolicy:     "strict-origin-when-cross-origin",
		HSTSMaxAge:         31536000,
	}))

	e.Use(cacheControlMiddleware)
	e.Use(a.seoMiddleware)
}

// assetMaxAge maps shell asset extensions to their Cache-Control max-age.
// Pages and anything unlisted get an hour.
var assetMaxAge = map[string]string{
	".css":   "86400",
	".js":    "86400",
	".png":   "604800",
	".jpg":   "604800",
	".jpeg":  "604800",
	".webp":  "604800",
	".svg":   "604800",
	".ico":   "604800",
	".woff2": "2592000",
}

func cacheControlMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		p := c.Request().URL.Path
		h := c.Response().Header()
		switch {
		case strings.HasPrefix(p, "/public/"):
			h.Set("Cache-Control", "public, max-age=31536000, immutable")
		case p == "/sitemap.xml" || p == "/feed.xml" || p == "/robots.txt":
			h.Set("Cache-Control", "public, max-age=86400")
		default:
			age, ok := assetMaxAge[strings.ToLower(path.Ext(p))]
			if !ok {
				age = "3600"
			}
			h.Set("Cache-Control", "public, max-age="+age)
		}
		return next(c)
	}
}

// seoMiddleware streams pre-rendered content into the blog shell for
// crawlers and redirects legacy ?title= links for everyone else.
func (a *App) seoMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		req := c.Request()
		if req.Method != http.MethodGet || !crawler.Eligible(req.URL.Path, a.Config.TargetPath) {
			return next(c)
		}
		c.Response().Header().Add(echo.HeaderVary, "User-Agent")

		bot, isCrawler := crawler.Classify(req.UserAgent())
		if !isCrawler {
			if loc, ok := a.Injector.Redirect(req.Context(), req.URL.Query()); ok {
				return c.Redirect(http.StatusMovedPermanently, loc)
			}
			return next(c)
		}

		plan, ok := a.Injector.Plan(req.Context(), req.URL.Query())
		if !ok {
			a.recordCrawl(c, bot, crawllog.OutcomeUnresolved)
			return next(c)
		}

		iw := newInjectWriter(c.Response().Writer, plan)
		c.Response().Writer = iw
		defer iw.Close()
		err := next(c)
		if cerr := iw.Close(); cerr != nil {
			a.logger.Error("inject", "path", req.URL.Path, "scenario", plan.Scenario, "err", cerr)
		}
		c.Response().Writer = iw.ResponseWriter

		outcome := crawllog.OutcomeNotHTML
		if iw.Injected() {
			outcome = crawllog.Outcome(plan.Scenario)
		}
		a.recordCrawl(c, bot, outcome)
		return err
	}
}

func (a *App) recordCrawl(c echo.Context, bot crawler.Bot, outcome crawllog.Outcome) {
	req := c.Request()
	a.logger.Debug("crawler request", "bot", bot.Name, "path", req.URL.Path, "outcome", outcome)
	if a.CrawlLog == nil {
		return
	}
	hit := crawllog.Hit{
		Bot:       bot.Name,
		UserAgent: req.UserAgent(),
		Path:      req.URL.Path,
		Query:     req.URL.RawQuery,
		Outcome:   outcome,
		IPHash:    a.CrawlLog.HashIP(c.RealIP()),
	}
	if err := a.CrawlLog.Record(req.Context(), hit); err != nil {
		a.logger.Warn("record crawl", "err", err)
	}
}
