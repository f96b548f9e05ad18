package seoshell

import (
	"errors"
	"net/http"
	"net/url"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
	"github.com/spf13/afero"

	"github.com/satinau/seoshell/content"
	"github.com/satinau/seoshell/feed"
	"github.com/satinau/seoshell/sitemap"
	"github.com/satinau/seoshell/staticgen"
	"github.com/satinau/seoshell/views"
)

func (a *App) setupRoutes() {
	e := a.Echo

	e.GET("/sitemap.xml", a.handleSitemap)
	e.GET("/feed.xml", a.handleFeed)
	e.GET("/robots.txt", a.handleRobots)
	e.GET(a.Config.TargetPath+"/:slug/", a.handlePost)
	e.GET("/*", a.handleShell)
	e.HEAD("/*", a.handleShell)
}

// handleShell serves the client-rendered site with pretty URLs:
// /x is looked up as x, x/index.html and x.html.
func (a *App) handleShell(c echo.Context) error {
	name, ok := a.resolveShellFile(c.Request().URL.Path)
	if !ok {
		return echo.ErrNotFound
	}
	return a.serveShellFile(c, name)
}

func (a *App) resolveShellFile(urlPath string) (string, bool) {
	clean := strings.Trim(path.Clean("/"+urlPath), "/")
	candidates := []string{"index.html"}
	if clean != "" {
		candidates = []string{clean, clean + "/index.html", clean + ".html"}
	}
	for _, cand := range candidates {
		name := filepath.Join(a.Config.ShellDir, filepath.FromSlash(cand))
		if fi, err := a.fs.Stat(name); err == nil && !fi.IsDir() {
			return name, true
		}
	}
	return "", false
}

func (a *App) serveShellFile(c echo.Context, name string) error {
	f, err := a.fs.Open(name)
	if err != nil {
		return echo.ErrNotFound
	}
	defer f.Close()
	fi, err := f.Stat()
	if err != nil {
		return err
	}
	http.ServeContent(c.Response(), c.Request(), fi.Name(), fi.ModTime(), f)
	return nil
}

// handlePost serves a pretty post URL: the pre-rendered page when it is in
// the shell, otherwise a page rendered on demand.
func (a *App) handlePost(c echo.Context) error {
	slug := c.Param("slug")
	if s, err := url.PathUnescape(slug); err == nil {
		slug = s
	}
	if name, ok := a.resolveShellFile(a.Config.TargetPath + "/" + slug + "/index.html"); ok {
		return a.serveShellFile(c, name)
	}

	page, err := a.Generator.RenderSlug(c.Request().Context(), slug)
	var se *content.StatusError
	switch {
	case errors.Is(err, staticgen.ErrNotFound):
		return echo.ErrNotFound
	case errors.As(err, &se):
		return echo.NewHTTPError(http.StatusBadGateway, "content backend unavailable").SetInternal(err)
	case err != nil:
		return err
	}
	return c.HTMLBlob(http.StatusOK, page)
}

func (a *App) handleSitemap(c echo.Context) error {
	res, err := sitemap.Generate(c.Request().Context(), a.Client, a.sitemapOptions())
	if err != nil {
		return err
	}
	return c.Blob(http.StatusOK, "application/xml; charset=utf-8", res.Data)
}

func (a *App) sitemapOptions() sitemap.Options {
	opts := a.Config.Sitemap()
	opts.Logger = a.logger
	return opts
}

func (a *App) handleFeed(c echo.Context) error {
	rss, err := feed.Generate(c.Request().Context(), a.Client, a.Config.Feed(), time.Now())
	if err != nil {
		return echo.NewHTTPError(http.StatusBadGateway, "post index unavailable").SetInternal(err)
	}
	return c.Blob(http.StatusOK, "application/rss+xml; charset=utf-8", []byte(rss))
}

// handleRobots serves the shell's robots.txt, or one that allows
// everything and points at the sitemap.
func (a *App) handleRobots(c echo.Context) error {
	if name, ok := a.resolveShellFile("/robots.txt"); ok {
		return a.serveShellFile(c, name)
	}
	return c.String(http.StatusOK, "User-agent: *\nAllow: /\n\nSitemap: "+a.Config.Site.URL+"/sitemap.xml\n")
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	code := http.StatusInternalServerError
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
	}
	if code >= 500 {
		c.Logger().Errorf("server error: %v", err)
	}
	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(code)
		return
	}
	if code == http.StatusNotFound {
		if name, ok := a.resolveShellFile("/404.html"); ok {
			if page, rerr := afero.ReadFile(a.fs, name); rerr == nil {
				_ = c.HTMLBlob(code, page)
				return
			}
		}
	}
	_ = renderStatus(c, code, views.ErrorPage(views.Error{
		Site: a.Config.Site,
		Code: code,
		Text: http.StatusText(code),
	}))
}

func renderStatus(c echo.Context, code int, cmp templ.Component) error {
	c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	c.Response().WriteHeader(code)
	return cmp.Render(c.Request().Context(), c.Response().Writer)
}
