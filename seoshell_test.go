package seoshell

import (
	"compress/gzip"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/spf13/afero"

	"github.com/satinau/seoshell/crawllog"
	"github.com/satinau/seoshell/internal/testutil"
	"github.com/satinau/seoshell/seo"
)

const (
	googlebot = "Mozilla/5.0 (compatible; Googlebot/2.1; +http://www.google.com/bot.html)"
	browser   = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0 Safari/537.36"
)

type fixture struct {
	app *App
	cs  *testutil.ContentServer
	fs  afero.Fs
}

func newFixture(t *testing.T, style seo.URLStyle, opts ...Option) *fixture {
	t.Helper()
	cs := testutil.NewContentServer(t, testutil.SamplePosts(), testutil.SampleFiles())
	fs := afero.NewMemMapFs()
	files := map[string]string{
		"public/blog.html":  testutil.Shell,
		"public/index.html": "<!DOCTYPE html><html><body>home</body></html>",
		"public/style.css":  "body{}",
	}
	for name, body := range files {
		if err := afero.WriteFile(fs, name, []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	cfg := Config{
		ContentBase: cs.Base(),
		URLStyle:    style,
	}
	cfg.Site.Name = "SatinAu"
	cfg.Site.URL = "https://satinau.cn"

	app, err := New(cfg, append([]Option{WithFs(fs)}, opts...)...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { app.Close() })
	return &fixture{app: app, cs: cs, fs: fs}
}

func (f *fixture) get(t *testing.T, target, ua string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	if ua != "" {
		req.Header.Set("User-Agent", ua)
	}
	rec := httptest.NewRecorder()
	f.app.Echo.ServeHTTP(rec, req)
	return rec
}

// varies reports whether any Vary header value names field.
func varies(h http.Header, field string) bool {
	for _, v := range h.Values("Vary") {
		for _, f := range strings.Split(v, ",") {
			if strings.EqualFold(strings.TrimSpace(f), field) {
				return true
			}
		}
	}
	return false
}

func parseBody(t *testing.T, body string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return doc
}

func TestNewRequiresContentBase(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Fatal("New without a content base should fail")
	}
}

func TestCrawlerList(t *testing.T) {
	f := newFixture(t, seo.StyleQuery)
	for _, path := range []string{"/blog", "/blog/", "/blog.html"} {
		t.Run(path, func(t *testing.T) {
			rec := f.get(t, path, googlebot)
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d", rec.Code)
			}
			body := rec.Body.String()
			doc := parseBody(t, body)
			cards := doc.Find("#blogList .contact-card a")
			if cards.Length() != 3 {
				t.Fatalf("got %d cards, want 3", cards.Length())
			}
			if href, _ := cards.First().Attr("href"); href != "/blog?title=Hello%20World" {
				t.Errorf("first href = %q", href)
			}
			if !strings.Contains(body, `<script>if (a < b && c > d) { console.log("</div>"); }</script>`) {
				t.Error("inline script was altered")
			}
			if !varies(rec.Header(), "User-Agent") {
				t.Errorf("Vary = %q", rec.Header().Values("Vary"))
			}
			if got := rec.Header().Get("Cache-Control"); got != "public, max-age=600" {
				t.Errorf("Cache-Control = %q", got)
			}
			if rec.Header().Get("Content-Length") != "" {
				t.Error("stale Content-Length on rewritten body")
			}
		})
	}
}

func TestCrawlerDetail(t *testing.T) {
	f := newFixture(t, seo.StyleQuery)
	rec := f.get(t, "/blog?id=hello-world", googlebot)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	doc := parseBody(t, rec.Body.String())

	if got := doc.Find("title").Text(); got != "Hello World - SatinAu" {
		t.Errorf("title = %q", got)
	}
	if got, _ := doc.Find(`link[rel="canonical"]`).Attr("href"); got != "https://satinau.cn/blog?title=Hello%20World" {
		t.Errorf("canonical = %q", got)
	}
	if got, _ := doc.Find(`meta[name="description"]`).Attr("content"); !strings.HasSuffix(got, "...") {
		t.Errorf("description = %q", got)
	}
	if _, hidden := doc.Find("#postView").Attr("style"); hidden {
		t.Error("post view is still hidden")
	}
	if got, _ := doc.Find("#blogList").Attr("style"); got != "display:none" {
		t.Errorf("list style = %q", got)
	}
	if got := doc.Find("#postTitle").Text(); got != "Hello World" {
		t.Errorf("postTitle = %q", got)
	}
	img := doc.Find("#postContent img")
	if src, _ := img.Attr("src"); src != f.cs.Base()+"img/cat.png" {
		t.Errorf("img src = %q", src)
	}
}

func TestCrawlerUnresolvedPassesThrough(t *testing.T) {
	f := newFixture(t, seo.StyleQuery)
	rec := f.get(t, "/blog?id=doesnotexist", googlebot)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if rec.Body.String() != testutil.Shell {
		t.Error("unresolved request modified the shell")
	}
}

func TestBrowserGetsShell(t *testing.T) {
	f := newFixture(t, seo.StyleQuery)
	rec := f.get(t, "/blog?id=hello-world", browser)
	if rec.Body.String() != testutil.Shell {
		t.Error("browser request was rewritten")
	}
	if len(f.cs.Requests()) != 0 {
		t.Errorf("browser request hit the content backend: %v", f.cs.Requests())
	}
}

func TestCrawlerOtherPathUntouched(t *testing.T) {
	f := newFixture(t, seo.StyleQuery)
	rec := f.get(t, "/", googlebot)
	if !strings.Contains(rec.Body.String(), "home") {
		t.Errorf("home body = %q", rec.Body.String())
	}
	if len(f.cs.Requests()) != 0 {
		t.Errorf("non-target path hit the content backend: %v", f.cs.Requests())
	}
}

func TestCrawlerIndexDown(t *testing.T) {
	f := newFixture(t, seo.StyleQuery)
	f.cs.FailIndex(http.StatusInternalServerError)
	rec := f.get(t, "/blog", googlebot)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if body := rec.Body.String(); body != testutil.Shell {
		t.Errorf("shell modified with the index down:\n%s", body)
	}
}

func TestCrawlerEmptyIndex(t *testing.T) {
	f := newFixture(t, seo.StyleQuery)
	f.cs.SetRawIndex("[]")
	rec := f.get(t, "/blog", googlebot)
	body := rec.Body.String()
	if !strings.Contains(body, `<div id="blogList"></div>`) {
		t.Errorf("list container not emptied:\n%s", body)
	}
	if !strings.Contains(body, "<title>Blog - SatinAu</title>") {
		t.Error("title changed on list view")
	}
}

func TestCrawlerGzip(t *testing.T) {
	f := newFixture(t, seo.StyleQuery)
	req := httptest.NewRequest(http.MethodGet, "/blog", nil)
	req.Header.Set("User-Agent", googlebot)
	req.Header.Set("Accept-Encoding", "gzip")
	rec := httptest.NewRecorder()
	f.app.Echo.ServeHTTP(rec, req)

	if rec.Header().Get("Content-Encoding") != "gzip" {
		t.Fatalf("Content-Encoding = %q", rec.Header().Get("Content-Encoding"))
	}
	if !varies(rec.Header(), "Accept-Encoding") || !varies(rec.Header(), "User-Agent") {
		t.Errorf("Vary = %q, want Accept-Encoding and User-Agent", rec.Header().Values("Vary"))
	}
	zr, err := gzip.NewReader(rec.Body)
	if err != nil {
		t.Fatal(err)
	}
	body, err := io.ReadAll(zr)
	if err != nil {
		t.Fatal(err)
	}
	if n := parseBody(t, string(body)).Find("#blogList .contact-card").Length(); n != 3 {
		t.Errorf("got %d cards through gzip, want 3", n)
	}
}

func TestCompatRedirect(t *testing.T) {
	f := newFixture(t, seo.StyleSlug)
	rec := f.get(t, "/blog?title=Hello%20World", browser)
	if rec.Code != http.StatusMovedPermanently {
		t.Fatalf("status = %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/blog/helloworld/" {
		t.Errorf("Location = %q", loc)
	}

	// Query style keeps the legacy links.
	q := newFixture(t, seo.StyleQuery)
	if rec := q.get(t, "/blog?title=Hello%20World", browser); rec.Code != http.StatusOK {
		t.Errorf("query style status = %d", rec.Code)
	}
}

func TestPostPage(t *testing.T) {
	f := newFixture(t, seo.StyleSlug)
	rec := f.get(t, "/blog/helloworld/", browser)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	doc := parseBody(t, rec.Body.String())
	if got := doc.Find("#postTitle").Text(); got != "Hello World" {
		t.Errorf("postTitle = %q", got)
	}
	if got, _ := doc.Find(`link[rel="canonical"]`).Attr("href"); got != "https://satinau.cn/blog/helloworld/" {
		t.Errorf("canonical = %q", got)
	}

	if rec := f.get(t, "/blog/nope/", browser); rec.Code != http.StatusNotFound {
		t.Errorf("unknown slug status = %d", rec.Code)
	}
}

func TestPostPagePrefersPrerendered(t *testing.T) {
	f := newFixture(t, seo.StyleSlug)
	if err := afero.WriteFile(f.fs, "public/blog/helloworld/index.html", []byte("<html>static</html>"), 0o644); err != nil {
		t.Fatal(err)
	}
	rec := f.get(t, "/blog/helloworld/", browser)
	if rec.Body.String() != "<html>static</html>" {
		t.Errorf("body = %q", rec.Body.String())
	}
	if len(f.cs.Requests()) != 0 {
		t.Errorf("pre-rendered page hit the content backend: %v", f.cs.Requests())
	}
}

func TestPostPageBackendDown(t *testing.T) {
	f := newFixture(t, seo.StyleSlug)
	f.cs.FailIndex(http.StatusServiceUnavailable)
	if rec := f.get(t, "/blog/helloworld/", browser); rec.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", rec.Code)
	}
}

func TestSitemapAndFeed(t *testing.T) {
	f := newFixture(t, seo.StyleSlug)

	rec := f.get(t, "/sitemap.xml", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("sitemap status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "<loc>https://satinau.cn/blog/helloworld/</loc>") {
		t.Errorf("sitemap lacks post URL:\n%s", rec.Body.String())
	}

	rec = f.get(t, "/feed.xml", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("feed status = %d", rec.Code)
	}
	if !strings.HasPrefix(rec.Header().Get("Content-Type"), "application/rss+xml") {
		t.Errorf("feed Content-Type = %q", rec.Header().Get("Content-Type"))
	}
	if !strings.Contains(rec.Body.String(), "https://satinau.cn/blog/helloworld/") {
		t.Error("feed lacks post URL")
	}

	f.cs.FailIndex(http.StatusInternalServerError)
	if rec := f.get(t, "/sitemap.xml", ""); rec.Code != http.StatusOK {
		t.Errorf("sitemap fallback status = %d", rec.Code)
	}
	if rec := f.get(t, "/feed.xml", ""); rec.Code != http.StatusBadGateway {
		t.Errorf("feed without index status = %d", rec.Code)
	}
}

func TestRobots(t *testing.T) {
	f := newFixture(t, seo.StyleQuery)
	rec := f.get(t, "/robots.txt", "")
	if !strings.Contains(rec.Body.String(), "Sitemap: https://satinau.cn/sitemap.xml") {
		t.Errorf("robots.txt = %q", rec.Body.String())
	}

	_ = afero.WriteFile(f.fs, "public/robots.txt", []byte("User-agent: *\nDisallow: /private\n"), 0o644)
	rec = f.get(t, "/robots.txt", "")
	if !strings.Contains(rec.Body.String(), "Disallow: /private") {
		t.Errorf("shell robots.txt not served: %q", rec.Body.String())
	}
}

func TestShellServing(t *testing.T) {
	f := newFixture(t, seo.StyleQuery)
	tests := []struct {
		path string
		code int
		body string
	}{
		{"/", http.StatusOK, "home"},
		{"/index.html", http.StatusOK, "home"},
		{"/style.css", http.StatusOK, "body{}"},
		{"/missing", http.StatusNotFound, "404"},
		{"/../etc/passwd", http.StatusNotFound, "404"},
	}
	for _, tt := range tests {
		rec := f.get(t, tt.path, browser)
		if rec.Code != tt.code {
			t.Errorf("%s: status = %d, want %d", tt.path, rec.Code, tt.code)
		}
		if !strings.Contains(rec.Body.String(), tt.body) {
			t.Errorf("%s: body = %q", tt.path, rec.Body.String())
		}
	}
}

func TestCustom404(t *testing.T) {
	f := newFixture(t, seo.StyleQuery)
	_ = afero.WriteFile(f.fs, "public/404.html", []byte("<html>lost</html>"), 0o644)
	rec := f.get(t, "/missing", browser)
	if rec.Code != http.StatusNotFound || rec.Body.String() != "<html>lost</html>" {
		t.Errorf("got %d %q", rec.Code, rec.Body.String())
	}
}

func TestCrawlLogOutcomes(t *testing.T) {
	store, err := crawllog.Open(filepath.Join(t.TempDir(), "crawls.db"), nil)
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	f := newFixture(t, seo.StyleQuery, WithCrawlLog(store))
	f.get(t, "/blog", googlebot)
	f.get(t, "/blog?id=hello-world", googlebot)
	f.get(t, "/blog?id=doesnotexist", googlebot)
	f.get(t, "/blog", browser)

	hits, err := store.Recent(context.Background(), 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 3 {
		t.Fatalf("recorded %d hits, want 3: %+v", len(hits), hits)
	}
	outcomes := map[crawllog.Outcome]int{}
	for _, h := range hits {
		outcomes[h.Outcome]++
		if h.Bot != "Googlebot" {
			t.Errorf("bot = %q", h.Bot)
		}
	}
	for _, o := range []crawllog.Outcome{crawllog.OutcomeList, crawllog.OutcomeDetail, crawllog.OutcomeUnresolved} {
		if outcomes[o] != 1 {
			t.Errorf("outcome %s recorded %d times", o, outcomes[o])
		}
	}
}

func TestCrawlLogNotHTML(t *testing.T) {
	store, err := crawllog.Open(filepath.Join(t.TempDir(), "crawls.db"), nil)
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	f := newFixture(t, seo.StyleQuery, WithCrawlLog(store))
	if err := f.fs.Remove("public/blog.html"); err != nil {
		t.Fatal(err)
	}
	if rec := f.get(t, "/blog", googlebot); rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
	hits, _ := store.Recent(context.Background(), 10)
	if len(hits) != 1 || hits[0].Outcome != crawllog.OutcomeNotHTML {
		t.Errorf("hits = %+v", hits)
	}
}

func TestCacheControl(t *testing.T) {
	f := newFixture(t, seo.StyleQuery)

	tests := []struct {
		target string
		ua     string
		want   string
	}{
		{"/", browser, "public, max-age=3600"},
		{"/style.css", browser, "public, max-age=86400"},
		{"/robots.txt", browser, "public, max-age=86400"},
		{"/blog", browser, "public, max-age=3600"},
		{"/blog", googlebot, "public, max-age=600"},
	}
	for _, tt := range tests {
		t.Run(tt.target+" "+tt.ua[:10], func(t *testing.T) {
			rec := f.get(t, tt.target, tt.ua)
			if got := rec.Header().Get("Cache-Control"); got != tt.want {
				t.Errorf("Cache-Control = %q, want %q", got, tt.want)
			}
		})
	}
}
