package adapter

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/amishk599/jobapplicator/internal/model"
)

// CraigslistAdapter scrapes the jobs search of one Craigslist site.
type CraigslistAdapter struct {
	site      string
	query     string
	userAgent string
	client    *http.Client
}

// NewCraigslistAdapter creates an adapter for a site such as "newyork".
func NewCraigslistAdapter(site, query string, client *http.Client, userAgent string) *CraigslistAdapter {
	return &CraigslistAdapter{
		site:      strings.TrimSpace(site),
		query:     query,
		userAgent: userAgent,
		client:    client,
	}
}

// Board returns the board label used on jobs, e.g. "Craigslist-newyork".
func (a *CraigslistAdapter) Board() string {
	return "Craigslist-" + a.site
}

// ListURL is the search page scraped by FetchJobs.
func (a *CraigslistAdapter) ListURL() string {
	return fmt.Sprintf("https://%s.craigslist.org/search/jjj?sort=date&query=%s", a.site, url.QueryEscape(a.query))
}

// FetchJobs scrapes the newest-first search results. Rows without a numeric
// data-time (epoch milliseconds) are skipped.
func (a *CraigslistAdapter) FetchJobs(ctx context.Context) ([]model.Job, error) {
	doc, err := fetchDocument(ctx, a.client, a.ListURL(), a.userAgent)
	if err != nil {
		return nil, fmt.Errorf("craigslist fetch for %s: %w", a.site, err)
	}

	var jobs []model.Job
	doc.Find("li.result-row").Each(func(_ int, li *goquery.Selection) {
		link := li.Find("a.result-title").First()
		href, ok := link.Attr("href")
		if !ok {
			return
		}
		ms, ok := parseEpochMillis(li.AttrOr("data-time", ""))
		if !ok {
			return
		}
		jobs = append(jobs, model.Job{
			Title:    strings.TrimSpace(link.Text()),
			URL:      absoluteURL(doc.Url, href),
			PostedAt: time.UnixMilli(ms),
			Board:    a.Board(),
			Summary:  nodeText(li),
		})
	})
	return jobs, nil
}

func parseEpochMillis(s string) (int64, bool) {
	if s == "" {
		return 0, false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	ms, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return ms, true
}
