// Package model provides domain types shared across packages.
//
// Enumerations parse from the exact upper-cased member name the analysis
// prompts ask the model to reply with. Each classification enum carries a
// NONE sentinel meaning "could not classify" - distinct from any real value.

package model

import (
	"encoding/json"
	"fmt"
	"strings"
)

// PostType categorizes a post's content.
type PostType int

const (
	PostTypeNone PostType = iota
	PostTypeKnowledge
	PostTypeOpinion
	PostTypeLifestyle
	PostTypeEntertainment
	PostTypeInteractive
	PostTypeProductMarketing
)

var postTypeNames = map[PostType]string{
	PostTypeNone:             "NONE",
	PostTypeKnowledge:        "KNOWLEDGE",
	PostTypeOpinion:          "OPINION",
	PostTypeLifestyle:        "LIFESTYLE",
	PostTypeEntertainment:    "ENTERTAINMENT",
	PostTypeInteractive:      "INTERACTIVE",
	PostTypeProductMarketing: "PRODUCT_MARKETING",
}

// String returns the canonical member name.
func (t PostType) String() string {
	if name, ok := postTypeNames[t]; ok {
		return name
	}
	return "NONE"
}

// ParsePostType parses a post type from its member name (case-insensitive,
// surrounding whitespace ignored). Returns an error for unknown names.
func ParsePostType(s string) (PostType, error) {
	upper := strings.ToUpper(strings.TrimSpace(s))
	for t, name := range postTypeNames {
		if name == upper {
			return t, nil
		}
	}
	return PostTypeNone, fmt.Errorf("invalid post type: %q", s)
}

// MarshalJSON serializes the member name.
func (t PostType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON parses the member name; unknown names map to NONE.
func (t *PostType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParsePostType(s)
	if err != nil {
		*t = PostTypeNone
		return nil
	}
	*t = parsed
	return nil
}

// SentimentType categorizes a post's emotional tone.
type SentimentType int

const (
	SentimentNone SentimentType = iota
	SentimentNeutral
	SentimentNegative
	SentimentPositive
)

var sentimentNames = map[SentimentType]string{
	SentimentNone:     "NONE",
	SentimentNeutral:  "NEUTRAL",
	SentimentNegative: "NEGATIVE",
	SentimentPositive: "POSITIVE",
}

// String returns the canonical member name.
func (t SentimentType) String() string {
	if name, ok := sentimentNames[t]; ok {
		return name
	}
	return "NONE"
}

// ParseSentimentType parses a sentiment from its member name
// (case-insensitive, surrounding whitespace ignored).
func ParseSentimentType(s string) (SentimentType, error) {
	upper := strings.ToUpper(strings.TrimSpace(s))
	for t, name := range sentimentNames {
		if name == upper {
			return t, nil
		}
	}
	return SentimentNone, fmt.Errorf("invalid sentiment type: %q", s)
}

// MarshalJSON serializes the member name.
func (t SentimentType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON parses the member name; unknown names map to NONE.
func (t *SentimentType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseSentimentType(s)
	if err != nil {
		*t = SentimentNone
		return nil
	}
	*t = parsed
	return nil
}

// ContentLengthType buckets posts by content length in runes.
type ContentLengthType int

const (
	ContentLengthNone ContentLengthType = iota
	ContentLengthShort
	ContentLengthMedium
	ContentLengthLong
	ContentLengthLonger
)

var contentLengthNames = map[ContentLengthType]string{
	ContentLengthNone:   "NONE",
	ContentLengthShort:  "SHORT",
	ContentLengthMedium: "MEDIUM",
	ContentLengthLong:   "LONG",
	ContentLengthLonger: "LONGER",
}

// ContentLengthFromLength buckets a content length: <100 SHORT, <500 MEDIUM,
// <2000 LONG, otherwise LONGER.
func ContentLengthFromLength(length int) ContentLengthType {
	switch {
	case length < 100:
		return ContentLengthShort
	case length < 500:
		return ContentLengthMedium
	case length < 2000:
		return ContentLengthLong
	default:
		return ContentLengthLonger
	}
}

// String returns the canonical member name.
func (t ContentLengthType) String() string {
	if name, ok := contentLengthNames[t]; ok {
		return name
	}
	return "NONE"
}

// ParseContentLengthType parses a length bucket from its member name
// (case-insensitive, surrounding whitespace ignored).
func ParseContentLengthType(s string) (ContentLengthType, error) {
	upper := strings.ToUpper(strings.TrimSpace(s))
	for t, name := range contentLengthNames {
		if name == upper {
			return t, nil
		}
	}
	return ContentLengthNone, fmt.Errorf("invalid content length type: %q", s)
}

// MarshalJSON serializes the member name.
func (t ContentLengthType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON parses the member name; unknown names map to NONE.
func (t *ContentLengthType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseContentLengthType(s)
	if err != nil {
		*t = ContentLengthNone
		return nil
	}
	*t = parsed
	return nil
}
