package rssfeeds

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
)

// Entry is one item of a committee feed, as published.
type Entry struct {
	GUID         string
	Title        string
	Link         string
	Description  string
	PubDate      string
	EnclosureURL string
}

// Fetcher downloads committee feeds and their per-event meeting documents.
type Fetcher struct {
	client *http.Client
}

// NewFetcher creates a Fetcher. A nil client gets a default client with timeout.
func NewFetcher(client *http.Client, timeout time.Duration) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}
	return &Fetcher{client: client}
}

// FetchFeed retrieves and parses an RSS feed, returning its entries in feed order
func (f *Fetcher) FetchFeed(ctx context.Context, feedURL string) ([]Entry, error) {
	body, err := f.get(ctx, feedURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed: %w", err)
	}
	defer body.Close()

	return ParseFeed(body)
}

// ParseFeed parses an RSS document into entries.
func ParseFeed(r io.Reader) ([]Entry, error) {
	feed, err := gofeed.NewParser().Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	entries := make([]Entry, 0, len(feed.Items))
	for _, item := range feed.Items {
		entry := Entry{
			GUID:        strings.TrimSpace(item.GUID),
			Title:       item.Title,
			Link:        strings.TrimSpace(item.Link),
			Description: item.Description,
			PubDate:     strings.TrimSpace(item.Published),
		}
		for _, enc := range item.Enclosures {
			if enc != nil && enc.URL != "" {
				entry.EnclosureURL = strings.TrimSpace(enc.URL)
				break
			}
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// FetchMeetingType downloads a committee-meeting document and returns its
// meeting-type code (HHRG, HMTG, HMKP, ...).
func (f *Fetcher) FetchMeetingType(ctx context.Context, docURL string) (string, error) {
	body, err := f.get(ctx, docURL)
	if err != nil {
		return "", fmt.Errorf("failed to fetch meeting document: %w", err)
	}
	defer body.Close()

	return ParseMeetingType(body)
}

func (f *Fetcher) get(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("GET %s returned %d", url, resp.StatusCode)
	}
	return resp.Body, nil
}
