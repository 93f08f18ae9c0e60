// Package fetcher downloads RSS feeds and turns their entries into stories.
package fetcher

import (
	"context"
	"crypto/sha256"
	"fmt"
	"html"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/cenkalti/backoff/v4"
	"github.com/mmcdole/gofeed"
	"github.com/samber/lo"

	"news_alert/internal/model"
)

const maxBodySize = 5 * 1024 * 1024

// HTTPClient is the interface for performing HTTP requests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// StatusError is returned for non-200 feed responses.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d", e.Code)
}

// Temporary reports whether retrying the request may succeed.
func (e *StatusError) Temporary() bool {
	return e.Code == http.StatusTooManyRequests || e.Code >= 500
}

// Fetcher downloads and parses RSS feeds.
type Fetcher struct {
	client  HTTPClient
	timeout time.Duration
	retries uint64
	initial time.Duration
}

// New creates a Fetcher with the given HTTP client.
func New(client HTTPClient) *Fetcher {
	return &Fetcher{
		client:  client,
		timeout: 30 * time.Second,
		retries: 3,
		initial: 500 * time.Millisecond,
	}
}

// SetRetry overrides how many times a transient failure is retried and the
// first backoff interval.
func (f *Fetcher) SetRetry(retries int, initial time.Duration) {
	f.retries = uint64(max(retries, 0))
	f.initial = initial
}

// Fetch downloads and parses an RSS feed from the given URL.
// Network errors, 429 and 5xx responses are retried with exponential
// backoff; other failures are returned at once.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*gofeed.Feed, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = f.initial
	b.MaxInterval = 30 * time.Second
	policy := backoff.WithContext(backoff.WithMaxRetries(b, f.retries), ctx)

	return backoff.RetryWithData(func() (*gofeed.Feed, error) {
		return f.fetchOnce(ctx, url)
	}, policy)
}

func (f *Fetcher) fetchOnce(ctx context.Context, url string) (*gofeed.Feed, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("User-Agent", "NewsAlertBot/1.0")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http get: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		serr := &StatusError{Code: resp.StatusCode}
		if serr.Temporary() {
			return nil, serr
		}
		return nil, backoff.Permanent(serr)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	feed, err := gofeed.NewParser().ParseString(string(body))
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("parse feed: %w", err))
	}
	return feed, nil
}

// ItemGUID returns the GUID for an RSS item.
// If the item has no GUID, a SHA-256 hash of title+link is used.
func ItemGUID(item *gofeed.Item) string {
	if item.GUID != "" {
		return item.GUID
	}
	h := sha256.Sum256([]byte(item.Title + "|" + item.Link))
	return fmt.Sprintf("sha256:%x", h[:16])
}

// Stories converts feed items to stories with plain-text title and
// description and a publication time in loc. Items without a parseable
// publication or update time are dropped.
func Stories(items []*gofeed.Item, loc *time.Location) []model.Story {
	if loc == nil {
		loc = time.UTC
	}
	return lo.FilterMap(items, func(item *gofeed.Item, _ int) (model.Story, bool) {
		pub := item.PublishedParsed
		if pub == nil {
			pub = item.UpdatedParsed
		}
		if pub == nil {
			return model.Story{}, false
		}
		return model.NewStory(
			ItemGUID(item),
			PlainText(item.Title),
			PlainText(item.Description),
			item.Link,
			pub.In(loc),
		), true
	})
}

// PlainText strips markup from s and decodes HTML entities.
func PlainText(s string) string {
	if !strings.Contains(s, "<") {
		return strings.TrimSpace(html.UnescapeString(s))
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return strings.TrimSpace(html.UnescapeString(s))
	}
	return strings.TrimSpace(doc.Text())
}
