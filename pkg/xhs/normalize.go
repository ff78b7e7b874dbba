package xhs

import "strconv"

// FeedFromRaw converts one raw platform record into a Feed. The two data
// sources (live API and embedded page state) use slightly divergent field
// naming for the same logical content, so every read falls back to a zero
// default instead of failing on an absent key.
//
// It returns nil when the record is structurally unusable (no id or no
// noteCard sub-object). Callers must treat nil as "drop this record", never
// as an aborting error.
func FeedFromRaw(raw map[string]interface{}) *Feed {
	if raw == nil {
		return nil
	}

	id := stringField(raw, "id")
	noteCardData, ok := rawObject(raw, "noteCard")
	if id == "" || !ok {
		return nil
	}

	userData, _ := rawObject(noteCardData, "user")
	interactData, _ := rawObject(noteCardData, "interactInfo")
	coverData, _ := rawObject(noteCardData, "cover")

	user := User{
		UserID: stringField(userData, "userId"),
		// The two sources disagree on the nickname key casing
		Nickname:   stringField(userData, "nickname", "nickName"),
		Avatar:     stringField(userData, "avatar"),
		Desc:       stringField(userData, "desc"),
		Gender:     stringField(userData, "gender"),
		IPLocation: stringField(userData, "ipLocation"),
	}

	interactInfo := InteractInfo{
		Liked:          boolField(interactData, "liked"),
		LikedCount:     countField(interactData, "likedCount"),
		Collected:      boolField(interactData, "collected"),
		CollectedCount: countField(interactData, "collectedCount"),
		CommentCount:   countField(interactData, "commentCount"),
		// The API spells this one with a past-tense prefix
		ShareCount: countField(interactData, "sharedCount", "shareCount"),
	}

	cover := Cover{
		URL:    stringField(coverData, "url"),
		Width:  intField(coverData, "width"),
		Height: intField(coverData, "height"),
		FileID: stringField(coverData, "fileId"),
	}

	var video *Video
	if videoData, ok := rawObject(noteCardData, "video"); ok {
		video = &Video{
			Media:      objectField(videoData, "media"),
			VideoID:    stringField(videoData, "videoId"),
			Duration:   intField(videoData, "duration"),
			Width:      intField(videoData, "width"),
			Height:     intField(videoData, "height"),
			MasterURL:  stringField(videoData, "masterUrl"),
			BackupURLs: stringListField(videoData, "backupUrls"),
			Stream:     objectField(videoData, "stream"),
			H264:       objectListField(videoData, "h264"),
			H265:       objectListField(videoData, "h265"),
			AV1:        objectListField(videoData, "av1"),
		}
	}

	return &Feed{
		ID:        id,
		ModelType: stringField(raw, "modelType"),
		TrackID:   stringField(raw, "trackId"),
		XsecToken: stringField(raw, "xsecToken"),
		NoteCard: NoteCard{
			Type:         stringField(noteCardData, "type"),
			DisplayTitle: stringField(noteCardData, "displayTitle"),
			User:         user,
			InteractInfo: interactInfo,
			Cover:        cover,
			Video:        video,
		},
	}
}

// rawObject extracts a nested object, reporting false for absent or
// non-object (including explicit null) values
func rawObject(raw map[string]interface{}, key string) (map[string]interface{}, bool) {
	if raw == nil {
		return nil, false
	}
	obj, ok := raw[key].(map[string]interface{})
	return obj, ok
}

// stringField reads the first present string value among the given key aliases
func stringField(raw map[string]interface{}, keys ...string) string {
	for _, key := range keys {
		if s, ok := raw[key].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

// countField reads an interaction count, preserving the literal display
// form. JSON numbers are stringified without coercion into a numeric type;
// strings (possibly abbreviated, e.g. "1.2万") pass through untouched.
func countField(raw map[string]interface{}, keys ...string) string {
	for _, key := range keys {
		switch v := raw[key].(type) {
		case string:
			if v != "" {
				return v
			}
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		}
	}
	return "0"
}

func boolField(raw map[string]interface{}, key string) bool {
	b, _ := raw[key].(bool)
	return b
}

func intField(raw map[string]interface{}, key string) int {
	// JSON decoding yields float64 for all numbers
	if f, ok := raw[key].(float64); ok {
		return int(f)
	}
	return 0
}

func objectField(raw map[string]interface{}, key string) map[string]interface{} {
	obj, _ := raw[key].(map[string]interface{})
	return obj
}

func stringListField(raw map[string]interface{}, key string) []string {
	list, ok := raw[key].([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(list))
	for _, entry := range list {
		if s, ok := entry.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func objectListField(raw map[string]interface{}, key string) []map[string]interface{} {
	list, ok := raw[key].([]interface{})
	if !ok {
		return nil
	}
	out := make([]map[string]interface{}, 0, len(list))
	for _, entry := range list {
		if obj, ok := entry.(map[string]interface{}); ok {
			out = append(out, obj)
		}
	}
	return out
}
