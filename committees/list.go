// Package committees loads the master committee list and selects the
// committees whose feeds and channels are reconciled.
package committees

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"hearingwatch/types"

	"gopkg.in/yaml.v3"
)

// ErrListUnreachable means the master list could not be downloaded. Runs
// cannot proceed without it.
var ErrListUnreachable = errors.New("cannot reach committee list")

// Source downloads the committee list from a URL.
type Source struct {
	url    string
	client *http.Client
}

// NewSource creates a Source. A nil client gets a default client with timeout.
func NewSource(url string, client *http.Client, timeout time.Duration) *Source {
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}
	return &Source{url: url, client: client}
}

// Fetch downloads and parses the full list. Transport and status failures
// wrap ErrListUnreachable.
func (s *Source) Fetch(ctx context.Context) ([]types.Committee, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrListUnreachable, err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrListUnreachable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: GET %s returned %d", ErrListUnreachable, s.url, resp.StatusCode)
	}

	return Parse(resp.Body)
}

// Parse decodes a YAML sequence of committees.
func Parse(r io.Reader) ([]types.Committee, error) {
	var list []types.Committee
	if err := yaml.NewDecoder(r).Decode(&list); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to parse committee list: %w", err)
	}
	return list, nil
}

// Tracked keeps House committees that publish to a video channel, in list order.
func Tracked(all []types.Committee) []types.Committee {
	var tracked []types.Committee
	for _, c := range all {
		if c.Type != "house" || c.YoutubeID == "" {
			continue
		}
		tracked = append(tracked, c)
	}
	return tracked
}

// Index maps thomas_id to committee.
func Index(list []types.Committee) map[string]types.Committee {
	idx := make(map[string]types.Committee, len(list))
	for _, c := range list {
		idx[c.ThomasID] = c
	}
	return idx
}
