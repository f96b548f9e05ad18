package rewrite

import (
	"testing"

	"golang.org/x/net/html"
)

func TestParseSelector(t *testing.T) {
	tests := []struct {
		input string
		want  Selector
	}{
		{"div", Selector{Tag: "div"}},
		{"#blogList", Selector{ID: "blogList"}},
		{"DIV#blogList", Selector{Tag: "div", ID: "blogList"}},
		{"link[rel]", Selector{Tag: "link", Attr: "rel"}},
		{`meta[name="description"]`, Selector{Tag: "meta", Attr: "name", Value: "description", HasValue: true}},
		{`meta[content=""]`, Selector{Tag: "meta", Attr: "content", HasValue: true}},
	}
	for _, tt := range tests {
		got, err := ParseSelector(tt.input)
		if err != nil {
			t.Errorf("ParseSelector(%q): %v", tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseSelector(%q) = %+v, want %+v", tt.input, got, tt.want)
		}
	}
}

func TestParseSelectorRejects(t *testing.T) {
	for _, in := range []string{"", "div p", "div > p", ".class", "a[href^=x]", "#"} {
		if _, err := ParseSelector(in); err == nil {
			t.Errorf("ParseSelector(%q) should fail", in)
		}
	}
}

func TestMustParseSelectorPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("MustParseSelector did not panic")
		}
	}()
	MustParseSelector("div p")
}

func TestSelectorMatches(t *testing.T) {
	attrs := []html.Attribute{{Key: "id", Val: "x"}, {Key: "rel", Val: "canonical"}}
	tests := []struct {
		sel  string
		tag  string
		want bool
	}{
		{"link", "link", true},
		{"meta", "link", false},
		{"#x", "link", true},
		{"#y", "link", false},
		{"link#x", "link", true},
		{"link[rel]", "link", true},
		{`link[rel="canonical"]`, "link", true},
		{`link[rel="icon"]`, "link", false},
		{"link[href]", "link", false},
	}
	for _, tt := range tests {
		if got := MustParseSelector(tt.sel).Matches(tt.tag, attrs); got != tt.want {
			t.Errorf("%s matches <%s> = %v, want %v", tt.sel, tt.tag, got, tt.want)
		}
	}
}
