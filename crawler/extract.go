package crawler

import (
	"strings"

	"github.com/wenhao1996/jikelens/model"
)

// ExtractBriefPosts parses the digest text of one feed entry into brief
// posts. The digest's first line is the selected date, the second line is
// a header, and the remainder alternates numbered title lines
// ("1、2025年研考国家线发布") with link lines.
func ExtractBriefPosts(content string) []model.BriefPost {
	lines := strings.Split(content, "\n")
	if len(lines) < 3 {
		return nil
	}
	selectedDate := lines[0]

	var posts []model.BriefPost
	title := ""
	for i, line := range lines[2:] {
		if i%2 == 0 {
			parts := strings.SplitN(line, "、", 2)
			if len(parts) == 1 {
				title = parts[0]
			} else {
				title = parts[1]
			}
			continue
		}

		link := line
		if title != "" && link != "" {
			posts = append(posts, model.BriefPost{
				Title:        title,
				Link:         link,
				SelectedDate: selectedDate,
			})
		}
	}
	return posts
}

// SplitByType partitions brief posts into user posts and news.
func SplitByType(posts []model.BriefPost) (userPosts, news []model.BriefPost) {
	for _, p := range posts {
		if p.Type() == model.BriefUserPost {
			userPosts = append(userPosts, p)
		} else {
			news = append(news, p)
		}
	}
	return userPosts, news
}
