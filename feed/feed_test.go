package feed

import (
	"context"
	"encoding/xml"
	"errors"
	"testing"
	"time"

	"github.com/spf13/afero"

	"github.com/satinau/seoshell/content"
	"github.com/satinau/seoshell/seo"
)

var posts = []content.Post{
	{Title: "Hello World", Date: "2025-01-02", File: "hello.md"},
	{Title: "Undated", File: "u.md"},
	{Title: "Third", Date: "2024-12-01", File: "third.md"},
}

var opts = Options{
	Title:      "SatinAu",
	SiteURL:    "https://satinau.cn",
	Author:     "Satin",
	TargetPath: "/blog",
	URLStyle:   seo.StyleSlug,
}

type rss struct {
	Channel struct {
		Title string `xml:"title"`
		Link  string `xml:"link"`
		Items []struct {
			Title   string `xml:"title"`
			Link    string `xml:"link"`
			GUID    string `xml:"guid"`
			PubDate string `xml:"pubDate"`
		} `xml:"item"`
	} `xml:"channel"`
}

func TestRSS(t *testing.T) {
	out, err := RSS(opts, posts, time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatal(err)
	}
	var doc rss
	if err := xml.Unmarshal([]byte(out), &doc); err != nil {
		t.Fatalf("unmarshal: %v\n%s", err, out)
	}
	if doc.Channel.Title != "SatinAu" || doc.Channel.Link != "https://satinau.cn/" {
		t.Errorf("channel = %+v", doc.Channel)
	}
	if len(doc.Channel.Items) != 3 {
		t.Fatalf("got %d items, want 3", len(doc.Channel.Items))
	}
	first := doc.Channel.Items[0]
	if first.Link != "https://satinau.cn/blog/helloworld/" || first.GUID != first.Link {
		t.Errorf("first item = %+v", first)
	}
	if first.PubDate == "" {
		t.Error("dated item has no pubDate")
	}
	if doc.Channel.Items[1].PubDate != "" {
		t.Errorf("undated item pubDate = %q", doc.Channel.Items[1].PubDate)
	}
}

func TestBuildLimit(t *testing.T) {
	o := opts
	o.Limit = 2
	f := Build(o, posts, time.Now())
	if len(f.Items) != 2 {
		t.Errorf("got %d items, want 2", len(f.Items))
	}
}

func TestBuildDefaultTargetPath(t *testing.T) {
	o := opts
	o.TargetPath = ""
	f := Build(o, posts[:1], time.Now())
	if got := f.Items[0].Link.Href; got != "https://satinau.cn/blog/helloworld/" {
		t.Errorf("item link = %q", got)
	}
}

type stubFetcher struct {
	posts []content.Post
	err   error
}

func (s stubFetcher) FetchIndex(context.Context) ([]content.Post, error) {
	return s.posts, s.err
}

func TestGenerate(t *testing.T) {
	if _, err := Generate(context.Background(), stubFetcher{err: errors.New("down")}, opts, time.Now()); err == nil {
		t.Error("Generate should fail without an index")
	}
	out, err := Generate(context.Background(), stubFetcher{posts: posts}, opts, time.Now())
	if err != nil || out == "" {
		t.Errorf("Generate = %q, %v", out, err)
	}
}

func TestWrite(t *testing.T) {
	fs := afero.NewMemMapFs()
	if err := Write(fs, "out/feed.xml", "<rss/>"); err != nil {
		t.Fatal(err)
	}
	got, err := afero.ReadFile(fs, "out/feed.xml")
	if err != nil || string(got) != "<rss/>" {
		t.Errorf("feed.xml = %q, %v", got, err)
	}
}
