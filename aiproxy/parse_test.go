package aiproxy

import (
	"reflect"
	"testing"
)

func TestParseTagList(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		want  []string
		ok    bool
	}{
		{"single quotes", "['tag1', 'tag2', 'tag3']", []string{"tag1", "tag2", "tag3"}, true},
		{"double quotes", `["a", "b"]`, []string{"a", "b"}, true},
		{"one tag", "['AI']", []string{"AI"}, true},
		{"empty list", "[]", []string{}, true},
		{"chinese tags", "['人工智能', '效率工具']", []string{"人工智能", "效率工具"}, true},
		{"surrounding prose", "Here are the tags: ['a', 'b']", []string{"a", "b"}, true},
		{"code fence", "```\n['a']\n```", []string{"a"}, true},
		{"trailing comma", "['a', 'b',]", []string{"a", "b"}, true},
		{"escaped quote", `['it\'s fine']`, []string{"it's fine"}, true},
		{"not a list", "not a list", nil, false},
		{"unterminated string", "['oops", nil, false},
		{"bare words", "[a, b]", nil, false},
		{"missing comma", "['a' 'b']", nil, false},
		{"empty reply", "", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parseTagList(tt.reply)
			if ok != tt.ok {
				t.Fatalf("parseTagList(%q) ok = %v, want %v", tt.reply, ok, tt.ok)
			}
			if ok && !reflect.DeepEqual(got, tt.want) {
				t.Errorf("parseTagList(%q) = %v, want %v", tt.reply, got, tt.want)
			}
		})
	}
}

func TestParseBoolFlag(t *testing.T) {
	tests := []struct {
		reply string
		want  bool
	}{
		{"true", true},
		{"True", true},
		{" TRUE \n", true},
		{"false", false},
		{"False", false},
		{"maybe", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := parseBoolFlag(tt.reply); got != tt.want {
			t.Errorf("parseBoolFlag(%q) = %v, want %v", tt.reply, got, tt.want)
		}
	}
}
