// Package views renders the HTML injected into the blog shell and the
// standalone article pages written by the static generator.
package views

import (
	"bytes"
	"context"
	"embed"
	"html/template"
	"io"
	"strings"

	"github.com/a-h/templ"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.New("views").Funcs(template.FuncMap{
	"join":      strings.Join,
	"pageTitle": func(a Article) string { return PageTitle(a.Title, a.Site.Name) },
	"jsonLD":    func(a Article) template.JS { return template.JS(BlogPostingJsonLD(a)) },
	"statsLine": StatsLine,
}).ParseFS(templateFS, "templates/*.html"))

func component(name string, data any) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return templates.ExecuteTemplate(w, name, data)
	})
}

// List renders one card per post, in order.
func List(cards []Card) templ.Component {
	return component("list", cards)
}

// DetailBody renders the header, body and footer placed in the detail container.
func DetailBody(d Detail) templ.Component {
	d.Labels = d.Labels.WithDefaults()
	return component("detail", d)
}

// ArticlePage renders a complete standalone HTML document for one post.
func ArticlePage(a Article) templ.Component {
	a.Labels = a.Labels.WithDefaults()
	return component("article", a)
}

// ErrorPage renders a minimal status page.
func ErrorPage(e Error) templ.Component {
	return component("error", e)
}

// String renders cmp into a string.
func String(ctx context.Context, cmp templ.Component) (string, error) {
	var buf bytes.Buffer
	if err := cmp.Render(ctx, &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}
