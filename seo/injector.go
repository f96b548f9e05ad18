// Package seo decides what a crawler should see on the blog page and turns
// that decision into a set of rewrite handlers for the HTML shell.
package seo

import (
	"context"
	"html/template"
	"io"
	"log/slog"
	"net/url"
	"strings"

	"github.com/satinau/seoshell/content"
	"github.com/satinau/seoshell/markdown"
	"github.com/satinau/seoshell/rewrite"
	"github.com/satinau/seoshell/views"
)

// Source is where posts come from. Both *content.Client and
// *content.IndexCache implement it.
type Source interface {
	Index(ctx context.Context) ([]content.Post, bool)
	Markdown(ctx context.Context, file string) (string, bool)
	Base() string
}

// Scenario names the kind of page a plan renders.
type Scenario string

const (
	ScenarioList   Scenario = "list"
	ScenarioDetail Scenario = "detail"
)

// Config controls how pages are planned.
type Config struct {
	SiteName      string
	SiteURL       string
	TargetPath    string
	URLStyle      URLStyle
	ExcerptLength int
	// DescriptionFallback is used when a post body is unavailable;
	// {title} and {date} are replaced with the post's values.
	DescriptionFallback string
	Labels              views.Labels
}

func (c *Config) setDefaults() {
	if c.TargetPath == "" {
		c.TargetPath = "/blog"
	}
	if c.URLStyle == "" {
		c.URLStyle = StyleQuery
	}
	if c.ExcerptLength <= 0 {
		c.ExcerptLength = 150
	}
	if c.DescriptionFallback == "" {
		c.DescriptionFallback = "{title} - published {date}"
	}
	c.Labels = c.Labels.WithDefaults()
}

// Shell element selectors.
var (
	selTitle       = rewrite.MustParseSelector("title")
	selDescription = rewrite.MustParseSelector(`meta[name="description"]`)
	selCanonical   = rewrite.MustParseSelector(`link[rel="canonical"]`)
	selPostView    = rewrite.MustParseSelector("article#postView")
	selBlogList    = rewrite.MustParseSelector("div#blogList")
	selPostTitle   = rewrite.MustParseSelector("h2#postTitle")
	selPostDate    = rewrite.MustParseSelector("p#postDate")
	selPostContent = rewrite.MustParseSelector("div#postContent")
)

// Plan is a resolved rendering decision for one request.
type Plan struct {
	Scenario Scenario
	Post     content.Post // detail only
	Strategy string       // matcher that resolved Post
	HasBody  bool         // detail only: Markdown was fetched
	rw       *rewrite.Rewriter
}

// Apply streams the shell from r to w with the plan's edits.
func (p Plan) Apply(w io.Writer, r io.Reader) error {
	if p.rw == nil {
		_, err := io.Copy(w, r)
		return err
	}
	return p.rw.Transform(w, r)
}

// Injector plans shell rewrites from the post index.
type Injector struct {
	src    Source
	cfg    Config
	logger *slog.Logger
}

// NewInjector returns an Injector reading posts from src.
func NewInjector(src Source, cfg Config, logger *slog.Logger) *Injector {
	cfg.setDefaults()
	if logger == nil {
		logger = slog.Default()
	}
	return &Injector{src: src, cfg: cfg, logger: logger}
}

// Config returns the effective configuration.
func (in *Injector) Config() Config {
	return in.cfg
}

// Plan decides how to rewrite the shell for a request with query q.
// ok is false when the index is unavailable, the request names a post that
// does not exist, or the injected markup could not be rendered; the shell
// must then be served unmodified. A reachable but empty index still plans
// the list rewrite.
func (in *Injector) Plan(ctx context.Context, q url.Values) (Plan, bool) {
	key := q.Get("id")
	if key == "" {
		key = q.Get("title")
	}
	posts, ok := in.src.Index(ctx)
	if !ok {
		return Plan{}, false
	}
	links := NewLinks(in.cfg.SiteURL, in.cfg.TargetPath, in.cfg.URLStyle, posts)
	if key == "" {
		return in.listPlan(ctx, posts, links)
	}
	return in.detailPlan(ctx, posts, links, key)
}

func (in *Injector) listPlan(ctx context.Context, posts []content.Post, links *Links) (Plan, bool) {
	cards := make([]views.Card, len(posts))
	for i, p := range posts {
		cards[i] = views.Card{Title: p.Title, Date: p.Date, URL: links.Path(p)}
	}
	list, err := views.String(ctx, views.List(cards))
	if err != nil {
		in.logger.Error("render post list", "err", err)
		return Plan{}, false
	}
	rw := rewrite.New().On(selBlogList, func(e *rewrite.Element) {
		e.SetInnerContent(list, rewrite.HTML)
	})
	return Plan{Scenario: ScenarioList, rw: rw}, true
}

func (in *Injector) detailPlan(ctx context.Context, posts []content.Post, links *Links, key string) (Plan, bool) {
	res := content.Resolve(posts, key)
	if !res.Resolved() {
		in.logger.Debug("post not found", "query", key, "posts", len(posts))
		return Plan{}, false
	}
	post := res.Post
	md, hasBody := in.src.Markdown(ctx, post.File)

	description := ""
	if hasBody {
		description = content.Excerpt(md, in.cfg.ExcerptLength)
	}
	if description == "" {
		description = views.Expand(in.cfg.DescriptionFallback, "title", post.Title, "date", post.Date)
	}
	canonical := links.URL(post)
	body := ""
	if hasBody {
		body = markdown.Transcode(md, in.src.Base())
	}
	detail, err := views.String(ctx, views.DetailBody(views.Detail{
		Title:        post.Title,
		Date:         post.Date,
		Body:         template.HTML(body),
		CanonicalURL: canonical,
		SiteName:     in.cfg.SiteName,
		Labels:       in.cfg.Labels,
	}))
	if err != nil {
		in.logger.Error("render post detail", "file", post.File, "err", err)
		return Plan{}, false
	}

	pageTitle := views.PageTitle(post.Title, in.cfg.SiteName)
	rw := rewrite.New().
		On(selTitle, func(e *rewrite.Element) { e.SetInnerContent(pageTitle, rewrite.Text) }).
		On(selDescription, func(e *rewrite.Element) { e.SetAttribute("content", description) }).
		On(selCanonical, func(e *rewrite.Element) { e.SetAttribute("href", canonical) }).
		On(selPostView, func(e *rewrite.Element) { e.RemoveAttribute("style") }).
		On(selBlogList, func(e *rewrite.Element) { e.SetAttribute("style", "display:none") }).
		On(selPostTitle, func(e *rewrite.Element) { e.SetInnerContent(post.Title, rewrite.Text) }).
		On(selPostDate, func(e *rewrite.Element) { e.SetInnerContent(post.Date, rewrite.Text) }).
		On(selPostContent, func(e *rewrite.Element) { e.SetInnerContent(detail, rewrite.HTML) })

	return Plan{
		Scenario: ScenarioDetail,
		Post:     post,
		Strategy: res.Strategy,
		HasBody:  hasBody,
		rw:       rw,
	}, true
}

// Redirect returns the pretty URL path for a legacy ?title= request when
// posts use slug URLs. ok is false when no redirect applies.
func (in *Injector) Redirect(ctx context.Context, q url.Values) (string, bool) {
	if in.cfg.URLStyle != StyleSlug {
		return "", false
	}
	title := strings.TrimSpace(q.Get("title"))
	if title == "" {
		return "", false
	}
	posts, _ := in.src.Index(ctx)
	links := NewLinks(in.cfg.SiteURL, in.cfg.TargetPath, in.cfg.URLStyle, posts)
	if res := content.Resolve(posts, title); res.Resolved() {
		return links.Path(res.Post), true
	}
	slug := content.Slug(title)
	if slug == "" {
		return "", false
	}
	return links.SlugPath(slug), true
}
