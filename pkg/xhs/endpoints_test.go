package xhs

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchURL(t *testing.T) {
	tests := []struct {
		name    string
		keyword string
	}{
		{name: "ascii keyword", keyword: "coffee"},
		{name: "cjk keyword", keyword: "美食 探店"},
		{name: "reserved characters", keyword: "a&b=c"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := SearchURL(tt.keyword)

			parsed, err := url.Parse(raw)
			require.NoError(t, err)

			assert.Equal(t, "www.xiaohongshu.com", parsed.Host)
			assert.Equal(t, SearchResultPath, parsed.Path)
			assert.Equal(t, tt.keyword, parsed.Query().Get("keyword"))
			assert.Equal(t, SearchSourceTag, parsed.Query().Get("source"))
		})
	}
}

func TestIsSearchAPIURL(t *testing.T) {
	assert.True(t, IsSearchAPIURL("https://edith.xiaohongshu.com/api/sns/web/v1/search/notes?page=2"))
	assert.False(t, IsSearchAPIURL("https://www.xiaohongshu.com/api/sns/web/v1/feed"))
	assert.False(t, IsSearchAPIURL("https://img.example/cover.jpg"))
}
