package content

import "strings"

// Matcher is one strategy for finding the post a query value refers to.
type Matcher struct {
	Name  string
	Match func(p Post, q string) bool
}

// DefaultMatchers is the lookup chain used for ?id= and ?title= values, most
// specific first.
var DefaultMatchers = []Matcher{
	{Name: "file-exact", Match: func(p Post, q string) bool { return p.File == q }},
	{Name: "file-with-ext", Match: func(p Post, q string) bool { return p.File == q+".md" }},
	{Name: "file-stem", Match: func(p Post, q string) bool { return p.Key() == q }},
	{Name: "title-exact", Match: func(p Post, q string) bool { return p.Title == q }},
	{Name: "title-contains", Match: func(p Post, q string) bool { return strings.Contains(p.Title, q) }},
}

// Resolution is the outcome of a lookup. Strategy is empty when no post matched.
type Resolution struct {
	Post     Post
	Strategy string
}

// Resolved reports whether a post was found.
func (r Resolution) Resolved() bool {
	return r.Strategy != ""
}

// Resolve runs the DefaultMatchers chain over posts.
func Resolve(posts []Post, q string) Resolution {
	return ResolveWith(DefaultMatchers, posts, q)
}

// ResolveWith tries each matcher in order against the whole index and
// returns the first hit. Empty queries never resolve.
func ResolveWith(matchers []Matcher, posts []Post, q string) Resolution {
	q = strings.TrimSpace(q)
	if q == "" {
		return Resolution{}
	}
	for _, m := range matchers {
		for _, p := range posts {
			if m.Match(p, q) {
				return Resolution{Post: p, Strategy: m.Name}
			}
		}
	}
	return Resolution{}
}
