package xhs

// Feed is the canonical representation of one search result entry. Records
// from the live search API and from the embedded page state both normalize
// into this shape.
type Feed struct {
	ID        string   `json:"id"`
	ModelType string   `json:"modelType"`
	TrackID   string   `json:"trackId,omitempty"`
	XsecToken string   `json:"xsecToken,omitempty"`
	NoteCard  NoteCard `json:"noteCard"`
}

// NoteCard carries the displayable payload of a feed entry
type NoteCard struct {
	Type         string       `json:"type"`
	DisplayTitle string       `json:"displayTitle"`
	User         User         `json:"user"`
	InteractInfo InteractInfo `json:"interactInfo"`
	Cover        Cover        `json:"cover"`
	Video        *Video       `json:"video,omitempty"`
}

// User identifies the author of a note
type User struct {
	UserID     string `json:"userId"`
	Nickname   string `json:"nickname"`
	Avatar     string `json:"avatar"`
	Desc       string `json:"desc"`
	Gender     string `json:"gender,omitempty"`
	IPLocation string `json:"ipLocation,omitempty"`
}

// InteractInfo holds engagement state and counts. The platform returns
// counts in mixed numeric/string/abbreviated forms ("1.2万"), so they are
// kept as the literal display strings.
type InteractInfo struct {
	Liked          bool   `json:"liked"`
	LikedCount     string `json:"likedCount"`
	Collected      bool   `json:"collected"`
	CollectedCount string `json:"collectedCount"`
	CommentCount   string `json:"commentCount"`
	ShareCount     string `json:"shareCount"`
}

// Cover describes the note's cover image
type Cover struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	FileID string `json:"fileId"`
}

// Video is present only for video notes. Media, Stream and the codec
// variant lists are opaque platform payloads passed through unmodified.
type Video struct {
	Media      map[string]interface{}   `json:"media,omitempty"`
	VideoID    string                   `json:"videoId"`
	Duration   int                      `json:"duration"`
	Width      int                      `json:"width"`
	Height     int                      `json:"height"`
	MasterURL  string                   `json:"masterUrl"`
	BackupURLs []string                 `json:"backupUrls,omitempty"`
	Stream     map[string]interface{}   `json:"stream,omitempty"`
	H264       []map[string]interface{} `json:"h264,omitempty"`
	H265       []map[string]interface{} `json:"h265,omitempty"`
	AV1        []map[string]interface{} `json:"av1,omitempty"`
}

// SearchAPIResponse is the envelope of the intercepted search API body
type SearchAPIResponse struct {
	Success bool          `json:"success"`
	Data    SearchAPIData `json:"data"`
}

// SearchAPIData carries the items array of one search API page
type SearchAPIData struct {
	Items   []map[string]interface{} `json:"items"`
	HasMore bool                     `json:"hasMore"`
}
