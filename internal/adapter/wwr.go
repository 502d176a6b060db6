package adapter

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/amishk599/jobapplicator/internal/model"
)

const wwrBaseURL = "https://weworkremotely.com"

// WWRAdapter scrapes the We Work Remotely search page.
type WWRAdapter struct {
	query     string
	userAgent string
	client    *http.Client
	now       func() time.Time
}

// NewWWRAdapter creates a We Work Remotely adapter.
func NewWWRAdapter(query string, client *http.Client, userAgent string) *WWRAdapter {
	return &WWRAdapter{query: query, userAgent: userAgent, client: client, now: time.Now}
}

func (a *WWRAdapter) Board() string { return "WWR" }

func (a *WWRAdapter) ListURL() string {
	return fmt.Sprintf("%s/remote-jobs/search?term=%s", wwrBaseURL, url.QueryEscape(a.query))
}

// FetchJobs scrapes featured listings. The title comes from span.title, then
// span.company, then the link text; a missing time element means "now".
func (a *WWRAdapter) FetchJobs(ctx context.Context) ([]model.Job, error) {
	doc, err := fetchDocument(ctx, a.client, a.ListURL(), a.userAgent)
	if err != nil {
		return nil, fmt.Errorf("wwr fetch: %w", err)
	}
	base, _ := url.Parse(wwrBaseURL)

	var jobs []model.Job
	doc.Find("section.jobs li.feature").Each(func(_ int, li *goquery.Selection) {
		link := li.Find("a").First()
		href, ok := link.Attr("href")
		if !ok {
			return
		}

		title := nodeText(li.Find("span.title").First())
		if title == "" {
			title = nodeText(li.Find("span.company").First())
		}
		if title == "" {
			title = nodeText(link)
		}

		stamp := a.now().UTC()
		if raw, ok := li.Find("time").First().Attr("datetime"); ok {
			if t, err := parseStamp(raw); err == nil {
				stamp = t
			}
		}

		jobs = append(jobs, model.Job{
			Title:    title,
			URL:      absoluteURL(base, href),
			PostedAt: stamp,
			Board:    a.Board(),
			Summary:  nodeText(li),
		})
	})
	return jobs, nil
}
