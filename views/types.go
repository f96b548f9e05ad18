package views

import (
	"html/template"
	"strings"

	"github.com/satinau/seoshell/content"
)

// SiteConfig holds site-wide values every template needs.
type SiteConfig struct {
	Name        string // appended to page titles
	URL         string // absolute site root, no trailing slash
	Description string
	Author      string
	Image       string // default og:image / twitter:image
	Lang        string // <html lang>
	Stylesheet  string // optional stylesheet href for static pages
}

// Labels are the human-readable strings injected into pages.
type Labels struct {
	Published  string // prefix before the date in the detail header
	Loading    string // placeholder when the body could not be fetched
	Credit     string // footer line; {site} is the site name
	ReadMore   string // footer link text
	Stats      string // {words} and {minutes} are the reading stats
	BackToList string
}

// DefaultLabels are used for any empty Labels field.
var DefaultLabels = Labels{
	Published:  "Published: ",
	Loading:    "Loading article...",
	Credit:     "Originally published on {site}.",
	ReadMore:   "Read the original",
	Stats:      "{words} words · about {minutes} min",
	BackToList: "All posts",
}

// WithDefaults fills empty fields from DefaultLabels.
func (l Labels) WithDefaults() Labels {
	fill := func(v *string, d string) {
		if *v == "" {
			*v = d
		}
	}
	fill(&l.Published, DefaultLabels.Published)
	fill(&l.Loading, DefaultLabels.Loading)
	fill(&l.Credit, DefaultLabels.Credit)
	fill(&l.ReadMore, DefaultLabels.ReadMore)
	fill(&l.Stats, DefaultLabels.Stats)
	fill(&l.BackToList, DefaultLabels.BackToList)
	return l
}

// CreditLine returns the footer credit for site.
func (l Labels) CreditLine(site string) string {
	return Expand(l.Credit, "site", site)
}

// Expand replaces each {name} placeholder in s, given as name/value pairs.
// Unknown placeholders and any other text, "%" included, are kept as they
// are.
func Expand(s string, pairs ...string) string {
	oldnew := make([]string, 0, len(pairs))
	for i := 0; i+1 < len(pairs); i += 2 {
		oldnew = append(oldnew, "{"+pairs[i]+"}", pairs[i+1])
	}
	return strings.NewReplacer(oldnew...).Replace(s)
}

// Card is one entry of the injected post list.
type Card struct {
	Title string
	Date  string
	URL   string
}

// Detail is the injected body of the post detail container.
type Detail struct {
	Title        string
	Date         string
	Body         template.HTML // empty renders the loading placeholder
	CanonicalURL string
	SiteName     string
	Labels       Labels
}

// Article carries everything the static article page renders.
type Article struct {
	Site         SiteConfig
	Title        string
	Date         string
	Description  string
	Keywords     []string
	CanonicalURL string
	ListURL      string
	Stats        content.Stats
	Body         template.HTML
	Labels       Labels
}

// PageTitle is "<post title> - <site name>".
func PageTitle(title, siteName string) string {
	if siteName == "" {
		return title
	}
	return title + " - " + siteName
}

// Error is a status page.
type Error struct {
	Site SiteConfig
	Code int
	Text string
}
