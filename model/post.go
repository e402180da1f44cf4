package model

import (
	"sort"
	"strings"
)

// Author is a platform user whose profile page was scraped.
type Author struct {
	URL          string `json:"url"`
	Name         string `json:"name,omitempty"`
	FollowerNum  int    `json:"follower_num,omitempty"`
	FollowingNum int    `json:"following_num,omitempty"`
}

// Post is a fully scraped and annotated post.
//
// Tags, PostType, SentimentType, IsHotspot and IsCreative are produced by
// the LLM analysis layer; the rest comes from the page scraper. A NONE/false
// annotation means "could not classify", not a definitive negative.
type Post struct {
	Title             string            `json:"title"`
	Link              string            `json:"link"`
	SelectedDate      string            `json:"selected_date"`
	Content           string            `json:"content,omitempty"`
	ContentLengthType ContentLengthType `json:"content_length_type"`
	Tags              []string          `json:"tags"`
	Topic             string            `json:"topic,omitempty"`
	Author            *Author           `json:"author,omitempty"`
	LikeCount         int               `json:"like_count"`
	PostType          PostType          `json:"post_type"`
	SentimentType     SentimentType     `json:"sentiment_type"`
	IsHotspot         bool              `json:"is_hotspot"`
	IsCreative        bool              `json:"is_creative"`
}

// SortByLikeCount orders posts by like count, descending.
func SortByLikeCount(posts []Post) {
	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].LikeCount > posts[j].LikeCount
	})
}

// BriefPostType distinguishes the two kinds of feed entries.
type BriefPostType string

const (
	// BriefNews links to an external news page.
	BriefNews BriefPostType = "news"
	// BriefUserPost links to a post on the platform itself.
	BriefUserPost BriefPostType = "user_post"
)

// BriefPost is a feed entry before scraping: a title, a link and the date of
// the feed item it was extracted from.
type BriefPost struct {
	Title        string `json:"title"`
	Link         string `json:"link"`
	SelectedDate string `json:"selected_date"`
}

// Type classifies the entry by its link host. Links into m.okjike.com are
// user posts, everything else is news.
func (p BriefPost) Type() BriefPostType {
	if strings.Contains(p.Link, "m.okjike.com") {
		return BriefUserPost
	}
	return BriefNews
}
