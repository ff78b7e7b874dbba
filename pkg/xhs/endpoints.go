package xhs

import (
	"fmt"
	"net/url"
	"strings"
)

const (
	// BaseURL is the base URL for the platform's web frontend
	BaseURL = "https://www.xiaohongshu.com"

	// SearchResultPath is the path of the search result page
	SearchResultPath = "/search_result"

	// SearchAPIPath is the path fragment of the internal search API.
	// Responses matching it are intercepted during a harvest.
	SearchAPIPath = "/api/sns/web/v1/search/notes"

	// SearchSourceTag is the source query parameter sent with every search
	SearchSourceTag = "web_explore_feed"

	// ExploreURL is the platform's home feed page
	ExploreURL = BaseURL + "/explore"
)

// SearchURL constructs the search result page URL for a keyword. The
// keyword and the fixed source tag are the only query parameters.
func SearchURL(keyword string) string {
	return SearchURLWithSource(keyword, SearchSourceTag)
}

// SearchURLWithSource constructs the search result page URL with a custom
// source tag
func SearchURLWithSource(keyword, source string) string {
	params := url.Values{}
	params.Set("keyword", keyword)
	params.Set("source", source)

	return fmt.Sprintf("%s%s?%s", BaseURL, SearchResultPath, params.Encode())
}

// IsSearchAPIURL reports whether a response URL belongs to the internal
// search API
func IsSearchAPIURL(responseURL string) bool {
	return strings.Contains(responseURL, SearchAPIPath)
}
