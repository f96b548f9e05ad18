// Package crawllog records crawler hits on the blog page and what the
// injector made of them.
package crawllog

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Outcome describes what the SEO middleware did with a crawler request.
type Outcome string

const (
	OutcomeList       Outcome = "list"
	OutcomeDetail     Outcome = "detail"
	OutcomeUnresolved Outcome = "unresolved"
	OutcomeNotHTML    Outcome = "not-html"
)

// Hit is one crawler request.
type Hit struct {
	Bot       string    `json:"bot"`
	UserAgent string    `json:"user_agent"`
	Path      string    `json:"path"`
	Query     string    `json:"query"`
	Outcome   Outcome   `json:"outcome"`
	IPHash    string    `json:"-"`
	Timestamp time.Time `json:"timestamp"`
}

// Stats holds aggregated crawl data for a period.
type Stats struct {
	Period    string          `json:"period"`
	Total     int             `json:"total"`
	TopBots   []DimensionStat `json:"top_bots"`
	TopPaths  []DimensionStat `json:"top_paths"`
	Outcomes  []DimensionStat `json:"outcomes"`
	DailyHits []DailyCount    `json:"daily_hits"`
}

// DimensionStat is a count for one value of a dimension.
type DimensionStat struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// DailyCount is the number of hits on one day.
type DailyCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

func hashIP(salt, ip string) string {
	if ip == "" {
		return ""
	}
	h := sha256.New()
	h.Write([]byte(salt + ip))
	return hex.EncodeToString(h.Sum(nil))[:16]
}

func newSalt() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
