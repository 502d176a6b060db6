package adapter

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/amishk599/jobapplicator/internal/model"
)

const remoteOKBaseURL = "https://remoteok.com"

// RemoteOKAdapter scrapes the RemoteOK tag page for the query.
type RemoteOKAdapter struct {
	query     string
	userAgent string
	client    *http.Client
}

// NewRemoteOKAdapter creates a RemoteOK adapter.
func NewRemoteOKAdapter(query string, client *http.Client, userAgent string) *RemoteOKAdapter {
	return &RemoteOKAdapter{query: query, userAgent: userAgent, client: client}
}

func (a *RemoteOKAdapter) Board() string { return "RemoteOK" }

// ListURL is e.g. https://remoteok.com/remote-python-developer-jobs.
func (a *RemoteOKAdapter) ListURL() string {
	slug := strings.ReplaceAll(strings.TrimSpace(a.query), " ", "-")
	return fmt.Sprintf("%s/remote-%s-jobs", remoteOKBaseURL, url.PathEscape(slug))
}

// FetchJobs scrapes tr.job rows. A row needs a heading, a listing link and a
// parseable time[datetime]; anything else is skipped.
func (a *RemoteOKAdapter) FetchJobs(ctx context.Context) ([]model.Job, error) {
	doc, err := fetchDocument(ctx, a.client, a.ListURL(), a.userAgent)
	if err != nil {
		return nil, fmt.Errorf("remoteok fetch: %w", err)
	}
	base, _ := url.Parse(remoteOKBaseURL)

	var jobs []model.Job
	doc.Find("tr.job").Each(func(_ int, tr *goquery.Selection) {
		h2 := tr.Find("h2").First()
		href, ok := tr.Find("a.preventLink").First().Attr("href")
		if h2.Length() == 0 || !ok {
			return
		}
		raw, ok := tr.Find("time").First().Attr("datetime")
		if !ok {
			return
		}
		stamp, err := parseStamp(raw)
		if err != nil {
			return
		}
		jobs = append(jobs, model.Job{
			Title:    strings.TrimSpace(h2.Text()),
			URL:      absoluteURL(base, href),
			PostedAt: stamp,
			Board:    a.Board(),
			Summary:  nodeText(tr),
		})
	})
	return jobs, nil
}
