// Package crawler recognises search-engine and link-preview crawlers by
// User-Agent and decides which request paths get server-side content.
package crawler

import "strings"

// Bot identifies a matched crawler.
type Bot struct {
	Token string // lowercase substring that matched
	Name  string // display name used in logs and stats
}

// Known is the ordered allow-list of crawler tokens. The first token found
// in a lowercased User-Agent wins.
var Known = []Bot{
	{"googlebot", "Googlebot"},
	{"bingbot", "Bingbot"},
	{"yandex", "Yandex"},
	{"baiduspider", "Baidu"},
	{"twitterbot", "Twitterbot"},
	{"facebookexternalhit", "Facebook"},
	{"rogerbot", "Moz Rogerbot"},
	{"linkedinbot", "LinkedIn"},
	{"embedly", "Embedly"},
	{"quora link preview", "Quora"},
	{"showyoubot", "ShowYou"},
	{"outbrain", "Outbrain"},
	{"pinterest", "Pinterest"},
	{"slackbot", "Slack"},
	{"vkshare", "VK"},
	{"w3c_validator", "W3C Validator"},
	{"redditbot", "Reddit"},
	{"applebot", "Applebot"},
	{"whatsapp", "WhatsApp"},
	{"flipboard", "Flipboard"},
	{"tumblr", "Tumblr"},
	{"bitlybot", "Bitly"},
	{"discordbot", "Discord"},
	{"telegrambot", "Telegram"},
	{"curl", "curl"},
	{"wget", "Wget"},
	{"python-requests", "python-requests"},
}

// Classify reports whether ua belongs to a known crawler.
func Classify(ua string) (Bot, bool) {
	return ClassifyWith(Known, ua)
}

// ClassifyWith matches ua against a custom token table.
func ClassifyWith(table []Bot, ua string) (Bot, bool) {
	if ua == "" {
		return Bot{}, false
	}
	ua = strings.ToLower(ua)
	for _, b := range table {
		if strings.Contains(ua, b.Token) {
			return b, true
		}
	}
	return Bot{}, false
}

// IsCrawler is shorthand for the ok result of Classify.
func IsCrawler(ua string) bool {
	_, ok := Classify(ua)
	return ok
}

// NormalizePath strips one trailing slash and then a ".html" suffix, so
// "/blog/", "/blog.html" and "/blog" compare equal.
func NormalizePath(p string) string {
	p = strings.TrimSuffix(p, "/")
	return strings.TrimSuffix(p, ".html")
}

// Eligible reports whether a request path addresses the target page.
func Eligible(path, target string) bool {
	return NormalizePath(path) == NormalizePath(target)
}
