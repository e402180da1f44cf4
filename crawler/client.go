// Package crawler walks the paginated feed API and collects brief posts.
//
// Information Hiding:
// - Feed API endpoint, headers and pagination protocol
// - Checkpointing of crawl progress to disk
// - Brief-post extraction from the feed's raw content text

package crawler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultFeedURL is the personal-update endpoint of the feed API.
const DefaultFeedURL = "https://api.ruguoapp.com/1.0/personalUpdate/single"

const fetchMaxRetries = 3

// FeedPage is one page of raw feed entries plus the pagination key for the
// next page. An empty LastID means there is no next page.
type FeedPage struct {
	Entries []FeedEntry
	LastID  string
}

// FeedEntry is one raw feed item; Content carries the digest text the
// brief posts are extracted from.
type FeedEntry struct {
	Content string `json:"content"`
}

// FeedClient fetches feed pages.
type FeedClient interface {
	// FetchPage requests up to limit entries, continuing from lastID when
	// non-empty.
	FetchPage(ctx context.Context, limit int, lastID string) (*FeedPage, error)
}

// HTTPFeedClient implements FeedClient against the real feed API.
type HTTPFeedClient struct {
	url         string
	username    string
	accessToken string
	httpClient  *http.Client
}

// NewHTTPFeedClient creates a client for the given user. The access token
// authenticates against the feed API.
func NewHTTPFeedClient(url, username, accessToken string) *HTTPFeedClient {
	if url == "" {
		url = DefaultFeedURL
	}
	return &HTTPFeedClient{
		url:         url,
		username:    username,
		accessToken: accessToken,
		httpClient:  &http.Client{Timeout: 30 * time.Second},
	}
}

type feedRequest struct {
	Limit       int          `json:"limit"`
	Username    string       `json:"username"`
	LoadMoreKey *loadMoreKey `json:"loadMoreKey,omitempty"`
}

type loadMoreKey struct {
	LastID string `json:"lastId"`
}

type feedResponse struct {
	Data        []FeedEntry  `json:"data"`
	LoadMoreKey *loadMoreKey `json:"loadMoreKey"`
}

// FetchPage requests one feed page, retrying transient failures with
// exponential backoff (1s, 2s, 4s).
func (c *HTTPFeedClient) FetchPage(ctx context.Context, limit int, lastID string) (*FeedPage, error) {
	var lastErr error
	for attempt := 0; attempt < fetchMaxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(1<<(attempt-1)) * time.Second
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		page, err := c.fetchOnce(ctx, limit, lastID)
		if err == nil {
			return page, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		lastErr = err
	}
	return nil, fmt.Errorf("feed fetch failed after %d attempts: %w", fetchMaxRetries, lastErr)
}

func (c *HTTPFeedClient) fetchOnce(ctx context.Context, limit int, lastID string) (*FeedPage, error) {
	payload := feedRequest{Limit: limit, Username: c.username}
	if lastID != "" {
		payload.LoadMoreKey = &loadMoreKey{LastID: lastID}
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode feed request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build feed request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "*/*")
	req.Header.Set("Origin", "https://web.okjike.com")
	req.Header.Set("User-Agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/133.0.0.0 Safari/537.36")
	req.Header.Set("X-Jike-Access-Token", c.accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("feed request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("feed request returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read feed response: %w", err)
	}

	var decoded feedResponse
	if err := json.Unmarshal(data, &decoded); err != nil {
		return nil, fmt.Errorf("failed to decode feed response: %w", err)
	}

	page := &FeedPage{Entries: decoded.Data}
	if decoded.LoadMoreKey != nil {
		page.LastID = decoded.LoadMoreKey.LastID
	}
	return page, nil
}

// Verify HTTPFeedClient implements FeedClient
var _ FeedClient = (*HTTPFeedClient)(nil)
