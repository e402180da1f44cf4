package crawler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/wenhao1996/jikelens/model"
)

// fakeFeed serves one scripted page per FetchPage call.
type fakeFeed struct {
	pages []FeedPage
	calls int
	limit []int
}

func (f *fakeFeed) FetchPage(ctx context.Context, limit int, lastID string) (*FeedPage, error) {
	f.limit = append(f.limit, limit)
	if f.calls >= len(f.pages) {
		return &FeedPage{}, nil
	}
	page := f.pages[f.calls]
	f.calls++
	return &page, nil
}

func digestFor(date, title, link string) string {
	return fmt.Sprintf("%s\n今日精选\n1、%s\n%s", date, title, link)
}

func newTestCrawler(t *testing.T, feed FeedClient) (*Crawler, string, string) {
	t.Helper()
	dir := t.TempDir()
	postsPath := filepath.Join(dir, "posts.json")
	checkpointPath := filepath.Join(dir, "checkpoint.json")
	return New(feed, postsPath, checkpointPath, WithPageDelay(0)), postsPath, checkpointPath
}

func TestCrawlCollectsAcrossPages(t *testing.T) {
	feed := &fakeFeed{pages: []FeedPage{
		{
			Entries: []FeedEntry{{Content: digestFor("2月14日", "帖子一", "https://m.okjike.com/originalPosts/p1")}},
			LastID:  "cursor-1",
		},
		{
			Entries: []FeedEntry{{Content: digestFor("2月13日", "帖子二", "https://m.okjike.com/originalPosts/p2")}},
			LastID:  "cursor-2",
		},
	}}
	c, postsPath, checkpointPath := newTestCrawler(t, feed)

	posts, err := c.Crawl(context.Background(), 2)
	if err != nil {
		t.Fatalf("Crawl failed: %v", err)
	}
	if len(posts) != 2 {
		t.Fatalf("posts = %v, want 2", posts)
	}
	if posts[0].Title != "帖子一" || posts[1].Title != "帖子二" {
		t.Errorf("posts out of order: %v", posts)
	}

	// Each page requests only the dates still missing.
	if len(feed.limit) != 2 || feed.limit[0] != 2 || feed.limit[1] != 1 {
		t.Errorf("limits = %v, want [2 1]", feed.limit)
	}

	// Posts persisted, checkpoint removed on completion.
	saved, err := LoadPosts(postsPath)
	if err != nil {
		t.Fatalf("LoadPosts failed: %v", err)
	}
	if len(saved) != 2 {
		t.Errorf("saved posts = %v, want 2", saved)
	}
	if _, err := os.Stat(checkpointPath); !os.IsNotExist(err) {
		t.Errorf("checkpoint still present after completed crawl")
	}
}

func TestCrawlFiltersNews(t *testing.T) {
	digest := "2月14日\n今日精选\n1、新闻\nhttps://news.example.com/a\n2、帖子\nhttps://m.okjike.com/originalPosts/p1"
	feed := &fakeFeed{pages: []FeedPage{
		{Entries: []FeedEntry{{Content: digest}}},
	}}
	c, _, _ := newTestCrawler(t, feed)

	posts, err := c.Crawl(context.Background(), 1)
	if err != nil {
		t.Fatalf("Crawl failed: %v", err)
	}
	if len(posts) != 1 || posts[0].Title != "帖子" {
		t.Errorf("posts = %v, want only the user post", posts)
	}
}

func TestCrawlResumesFromCheckpoint(t *testing.T) {
	feed := &fakeFeed{pages: []FeedPage{
		{Entries: []FeedEntry{{Content: digestFor("2月13日", "新帖", "https://m.okjike.com/originalPosts/p2")}}},
	}}
	c, _, checkpointPath := newTestCrawler(t, feed)

	prior := &Checkpoint{
		LastID:    "cursor-1",
		DateCount: 1,
		Posts: []model.BriefPost{
			{Title: "旧帖", Link: "https://m.okjike.com/originalPosts/p1", SelectedDate: "2月14日"},
		},
	}
	if err := SaveCheckpoint(checkpointPath, prior); err != nil {
		t.Fatalf("SaveCheckpoint failed: %v", err)
	}

	posts, err := c.Crawl(context.Background(), 2)
	if err != nil {
		t.Fatalf("Crawl failed: %v", err)
	}
	if len(posts) != 2 || posts[0].Title != "旧帖" || posts[1].Title != "新帖" {
		t.Errorf("posts = %v, want prior post then new post", posts)
	}
	// Only the missing date was requested.
	if len(feed.limit) != 1 || feed.limit[0] != 1 {
		t.Errorf("limits = %v, want [1]", feed.limit)
	}
}

func TestCrawlStopsWhenFeedExhausted(t *testing.T) {
	feed := &fakeFeed{pages: []FeedPage{
		{Entries: []FeedEntry{{Content: digestFor("2月14日", "帖子", "https://m.okjike.com/originalPosts/p1")}}},
	}}
	c, _, _ := newTestCrawler(t, feed)

	// Target far beyond what the feed holds; the empty LastID ends the crawl.
	posts, err := c.Crawl(context.Background(), 100)
	if err != nil {
		t.Fatalf("Crawl failed: %v", err)
	}
	if len(posts) != 1 {
		t.Errorf("posts = %v, want 1", posts)
	}
}

func TestCrawlContextCancellation(t *testing.T) {
	feed := &fakeFeed{}
	c, _, _ := newTestCrawler(t, feed)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := c.Crawl(ctx, 1); err != context.Canceled {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
}

func TestCheckpointRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "checkpoint.json")

	cp, err := LoadCheckpoint(path)
	if err != nil {
		t.Fatalf("LoadCheckpoint on missing file failed: %v", err)
	}
	if cp.LastID != "" || cp.DateCount != 0 || len(cp.Posts) != 0 {
		t.Errorf("missing checkpoint must load as zero state, got %+v", cp)
	}

	cp = &Checkpoint{
		LastID:    "cursor-9",
		DateCount: 4,
		Posts:     []model.BriefPost{{Title: "帖子", Link: "https://m.okjike.com/originalPosts/p1", SelectedDate: "2月14日"}},
	}
	if err := SaveCheckpoint(path, cp); err != nil {
		t.Fatalf("SaveCheckpoint failed: %v", err)
	}

	loaded, err := LoadCheckpoint(path)
	if err != nil {
		t.Fatalf("LoadCheckpoint failed: %v", err)
	}
	if loaded.LastID != cp.LastID || loaded.DateCount != cp.DateCount || len(loaded.Posts) != 1 {
		t.Errorf("loaded = %+v, want %+v", loaded, cp)
	}

	if err := RemoveCheckpoint(path); err != nil {
		t.Fatalf("RemoveCheckpoint failed: %v", err)
	}
	if err := RemoveCheckpoint(path); err != nil {
		t.Errorf("RemoveCheckpoint on missing file failed: %v", err)
	}
}

func TestHTTPFeedClientFetchPage(t *testing.T) {
	var gotBody feedRequest
	var gotToken string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotToken = r.Header.Get("X-Jike-Access-Token")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(feedResponse{
			Data:        []FeedEntry{{Content: "digest"}},
			LoadMoreKey: &loadMoreKey{LastID: "cursor-1"},
		})
	}))
	defer server.Close()

	client := NewHTTPFeedClient(server.URL, "someuser", "token-123")
	page, err := client.FetchPage(context.Background(), 5, "cursor-0")
	if err != nil {
		t.Fatalf("FetchPage failed: %v", err)
	}

	if gotToken != "token-123" {
		t.Errorf("access token = %q", gotToken)
	}
	if gotBody.Limit != 5 || gotBody.Username != "someuser" {
		t.Errorf("request body = %+v", gotBody)
	}
	if gotBody.LoadMoreKey == nil || gotBody.LoadMoreKey.LastID != "cursor-0" {
		t.Errorf("loadMoreKey = %+v, want cursor-0", gotBody.LoadMoreKey)
	}
	if len(page.Entries) != 1 || page.LastID != "cursor-1" {
		t.Errorf("page = %+v", page)
	}
}

func TestHTTPFeedClientFirstPageOmitsLoadMoreKey(t *testing.T) {
	var raw map[string]json.RawMessage
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
			t.Errorf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(feedResponse{})
	}))
	defer server.Close()

	client := NewHTTPFeedClient(server.URL, "someuser", "token")
	page, err := client.FetchPage(context.Background(), 3, "")
	if err != nil {
		t.Fatalf("FetchPage failed: %v", err)
	}
	if _, present := raw["loadMoreKey"]; present {
		t.Error("first page request must omit loadMoreKey")
	}
	if page.LastID != "" {
		t.Errorf("LastID = %q, want empty on last page", page.LastID)
	}
}

func TestHTTPFeedClientRetriesServerErrors(t *testing.T) {
	var hits int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		if hits < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(feedResponse{Data: []FeedEntry{{Content: "digest"}}})
	}))
	defer server.Close()

	client := NewHTTPFeedClient(server.URL, "someuser", "token")
	page, err := client.FetchPage(context.Background(), 1, "")
	if err != nil {
		t.Fatalf("FetchPage failed: %v", err)
	}
	if hits != 3 {
		t.Errorf("hits = %d, want 3", hits)
	}
	if len(page.Entries) != 1 {
		t.Errorf("page = %+v", page)
	}
}
