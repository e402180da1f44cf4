// Package scraper extracts post and author fields from platform web pages.
//
// Information Hiding:
// - Page fetching and its request headers
// - The HTML structure of post and profile pages
// - Count formats like "11k" on profile pages
//
// Extraction is best effort. A field the page does not carry comes back
// as its zero value; only a failed page fetch is an error.

package scraper

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/wenhao1996/jikelens/model"
)

// DefaultBaseURL is the platform's web frontend, used to resolve relative
// profile links found on post pages.
const DefaultBaseURL = "https://m.okjike.com"

// Scraper fetches and parses post and author pages.
type Scraper struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// Option customizes a Scraper.
type Option func(*Scraper)

// WithHTTPClient overrides the HTTP client, mainly for tests.
func WithHTTPClient(client *http.Client) Option {
	return func(s *Scraper) { s.httpClient = client }
}

// WithBaseURL overrides the base URL relative links resolve against.
func WithBaseURL(base string) Option {
	return func(s *Scraper) { s.baseURL = base }
}

// WithLogger overrides the scraper's logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Scraper) { s.logger = logger }
}

// New creates a Scraper.
func New(opts ...Option) *Scraper {
	s := &Scraper{
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Scraper) fetchPage(ctx context.Context, pageURL string) (*html.Node, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build page request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/119.0.0.0 Safari/537.36")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", pageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("fetching %s returned status %d", pageURL, resp.StatusCode)
	}

	doc, err := html.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", pageURL, err)
	}
	return doc, nil
}

// ScrapePost fetches a post page and fills a Post from the brief entry
// plus whatever fields the page carries. Analysis annotations are left
// zeroed for the analysis layer.
func (s *Scraper) ScrapePost(ctx context.Context, brief model.BriefPost) (*model.Post, error) {
	doc, err := s.fetchPage(ctx, brief.Link)
	if err != nil {
		return nil, err
	}

	content := s.parseContent(doc)
	post := &model.Post{
		Title:             brief.Title,
		Link:              brief.Link,
		SelectedDate:      brief.SelectedDate,
		Content:           content,
		ContentLengthType: model.ContentLengthFromLength(len([]rune(content))),
		Topic:             s.parseTopic(doc),
		LikeCount:         s.parseLikeCount(doc),
	}

	if authorPath := s.parseAuthorLink(doc); authorPath != "" {
		author, err := s.ScrapeAuthor(ctx, authorPath)
		if err != nil {
			s.logger.Warn("failed to scrape author page",
				zap.String("post", brief.Link), zap.Error(err))
		} else {
			post.Author = author
		}
	}
	return post, nil
}

// ScrapeAuthor fetches a profile page; linkPath may be relative to the
// platform base URL.
func (s *Scraper) ScrapeAuthor(ctx context.Context, linkPath string) (*model.Author, error) {
	authorURL := s.resolve(linkPath)
	doc, err := s.fetchPage(ctx, authorURL)
	if err != nil {
		return nil, err
	}

	author := &model.Author{URL: authorURL}
	if name := findFirst(doc, "div", "user-screenname"); name != nil {
		author.Name = strings.TrimSpace(textContent(name))
	}
	if status := findFirst(doc, "div", "user-status"); status != nil {
		counts := findAll(status, "span", "count")
		if len(counts) >= 2 {
			author.FollowingNum = parseCount(textContent(counts[0]))
			author.FollowerNum = parseCount(textContent(counts[1]))
		}
	}
	return author, nil
}

func (s *Scraper) resolve(linkPath string) string {
	base, err := url.Parse(s.baseURL)
	if err != nil {
		return linkPath
	}
	ref, err := url.Parse(linkPath)
	if err != nil {
		return linkPath
	}
	return base.ResolveReference(ref).String()
}

func (s *Scraper) parseContent(doc *html.Node) string {
	var fragments []string
	for _, div := range findAll(doc, "div", "wrap") {
		if t := textContent(div); t != "" {
			fragments = append(fragments, t)
		}
	}
	return strings.Join(fragments, "\n")
}

func (s *Scraper) parseLikeCount(doc *html.Node) int {
	span := findFirst(doc, "span", "like-count")
	if span == nil {
		return 0
	}
	text := strings.TrimSpace(textContent(span))
	if text == "" {
		return 0
	}
	n, err := strconv.Atoi(text)
	if err != nil {
		s.logger.Warn("unparseable like count", zap.String("text", text))
		return 0
	}
	return n
}

func (s *Scraper) parseAuthorLink(doc *html.Node) string {
	for _, a := range findAll(doc, "a", "avatar") {
		if href := attr(a, "href"); href != "" {
			return href
		}
	}
	return ""
}

func (s *Scraper) parseTopic(doc *html.Node) string {
	page := findFirst(doc, "div", "post-page")
	if page == nil {
		return ""
	}
	for _, a := range findAll(page, "a", "wrap") {
		if h3 := findFirst(a, "h3", ""); h3 != nil {
			return strings.TrimSpace(textContent(h3))
		}
	}
	return ""
}

// parseCount reads profile counters like "111" or "11k".
func parseCount(text string) int {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0
	}
	if strings.HasSuffix(strings.ToLower(text), "k") {
		f, err := strconv.ParseFloat(text[:len(text)-1], 64)
		if err != nil {
			return 0
		}
		return int(f * 1000)
	}
	n, err := strconv.Atoi(text)
	if err != nil {
		return 0
	}
	return n
}
