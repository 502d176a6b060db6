package adapter

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gocolly/colly/v2"

	"github.com/amishk599/jobapplicator/internal/model"
)

// GenericAdapter crawls an arbitrary page and treats every <article> that
// contains a link as a listing.
type GenericAdapter struct {
	name      string
	pageURL   string
	userAgent string
	client    *http.Client
	now       func() time.Time
}

// NewGenericAdapter creates an adapter for pageURL. An empty name means "Generic".
func NewGenericAdapter(name, pageURL string, client *http.Client, userAgent string) *GenericAdapter {
	if strings.TrimSpace(name) == "" {
		name = "Generic"
	}
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	return &GenericAdapter{
		name:      name,
		pageURL:   strings.TrimSpace(pageURL),
		userAgent: userAgent,
		client:    client,
		now:       time.Now,
	}
}

func (a *GenericAdapter) Board() string   { return a.name }
func (a *GenericAdapter) ListURL() string { return a.pageURL }

// FetchJobs visits the page once; listings carry the crawl time as PostedAt.
func (a *GenericAdapter) FetchJobs(ctx context.Context) ([]model.Job, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c := colly.NewCollector()
	c.UserAgent = a.userAgent
	c.SetClient(withContext(ctx, a.client))

	stamp := a.now().UTC()
	var jobs []model.Job
	c.OnHTML("article", func(e *colly.HTMLElement) {
		link := e.DOM.Find("a[href]").First()
		href, ok := link.Attr("href")
		if !ok || strings.TrimSpace(href) == "" {
			return
		}
		jobs = append(jobs, model.Job{
			Title:    nodeText(link),
			URL:      e.Request.AbsoluteURL(href),
			PostedAt: stamp,
			Board:    a.name,
			Summary:  nodeText(e.DOM),
		})
	})

	var reqErr error
	c.OnError(func(r *colly.Response, err error) {
		reqErr = err
		if r != nil && r.StatusCode != 0 {
			httpErr := &model.HTTPError{StatusCode: r.StatusCode, Err: err}
			if r.Headers != nil {
				httpErr.RetryAfter = parseRetryAfter(r.Headers.Get("Retry-After"))
			}
			reqErr = httpErr
		}
	})

	visitErr := c.Visit(a.pageURL)
	c.Wait()
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("generic fetch for %s: %w", a.name, err)
	}
	if reqErr != nil {
		return nil, fmt.Errorf("generic fetch for %s: %w", a.name, reqErr)
	}
	if visitErr != nil && !errors.Is(visitErr, colly.ErrAlreadyVisited) {
		return nil, fmt.Errorf("generic fetch for %s: %w", a.name, visitErr)
	}
	return jobs, nil
}

// withContext copies client so that every request it sends carries ctx.
// colly builds its requests without a context.
func withContext(ctx context.Context, client *http.Client) *http.Client {
	var cl http.Client
	if client != nil {
		cl = *client
	}
	base := cl.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	cl.Transport = contextTransport{ctx: ctx, base: base}
	return &cl
}

type contextTransport struct {
	ctx  context.Context
	base http.RoundTripper
}

func (t contextTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	return t.base.RoundTrip(req.WithContext(t.ctx))
}
