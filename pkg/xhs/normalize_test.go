package xhs

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// decodeRecord parses a JSON literal the way intercepted bodies are parsed
func decodeRecord(t *testing.T, body string) map[string]interface{} {
	t.Helper()
	var raw map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(body), &raw))
	return raw
}

func TestFeedFromRaw_FullRecord(t *testing.T) {
	raw := decodeRecord(t, `{
		"id": "note123",
		"modelType": "note",
		"trackId": "track-1",
		"xsecToken": "tok==",
		"noteCard": {
			"type": "normal",
			"displayTitle": "咖啡店推荐",
			"user": {
				"userId": "u1",
				"nickname": "小王",
				"avatar": "https://img.example/a.jpg",
				"desc": "hello",
				"gender": "female",
				"ipLocation": "上海"
			},
			"interactInfo": {
				"liked": true,
				"likedCount": "1.2万",
				"collected": false,
				"collectedCount": 38,
				"commentCount": "102",
				"sharedCount": 7
			},
			"cover": {
				"url": "https://img.example/c.jpg",
				"width": 1080,
				"height": 1440,
				"fileId": "f1"
			}
		}
	}`)

	feed := FeedFromRaw(raw)
	require.NotNil(t, feed)

	assert.Equal(t, "note123", feed.ID)
	assert.Equal(t, "note", feed.ModelType)
	assert.Equal(t, "track-1", feed.TrackID)
	assert.Equal(t, "tok==", feed.XsecToken)

	assert.Equal(t, "normal", feed.NoteCard.Type)
	assert.Equal(t, "咖啡店推荐", feed.NoteCard.DisplayTitle)

	assert.Equal(t, "u1", feed.NoteCard.User.UserID)
	assert.Equal(t, "小王", feed.NoteCard.User.Nickname)
	assert.Equal(t, "上海", feed.NoteCard.User.IPLocation)

	// Counts keep their literal display form, numeric or not
	assert.True(t, feed.NoteCard.InteractInfo.Liked)
	assert.Equal(t, "1.2万", feed.NoteCard.InteractInfo.LikedCount)
	assert.Equal(t, "38", feed.NoteCard.InteractInfo.CollectedCount)
	assert.Equal(t, "102", feed.NoteCard.InteractInfo.CommentCount)
	assert.Equal(t, "7", feed.NoteCard.InteractInfo.ShareCount)

	assert.Equal(t, 1080, feed.NoteCard.Cover.Width)
	assert.Equal(t, 1440, feed.NoteCard.Cover.Height)

	assert.Nil(t, feed.NoteCard.Video)
}

func TestFeedFromRaw_VideoRecord(t *testing.T) {
	raw := decodeRecord(t, `{
		"id": "v1",
		"noteCard": {
			"type": "video",
			"displayTitle": "vlog",
			"video": {
				"videoId": "vid-9",
				"duration": 63,
				"width": 720,
				"height": 1280,
				"masterUrl": "https://v.example/m.mp4",
				"backupUrls": ["https://v.example/b1.mp4", "https://v.example/b2.mp4"],
				"media": {"videoId": 9},
				"h264": [{"masterUrl": "https://v.example/h264.mp4"}],
				"h265": [],
				"av1": [{"masterUrl": "https://v.example/av1.mp4"}]
			}
		}
	}`)

	feed := FeedFromRaw(raw)
	require.NotNil(t, feed)
	require.NotNil(t, feed.NoteCard.Video)

	video := feed.NoteCard.Video
	assert.Equal(t, "vid-9", video.VideoID)
	assert.Equal(t, 63, video.Duration)
	assert.Equal(t, "https://v.example/m.mp4", video.MasterURL)
	assert.Equal(t, []string{"https://v.example/b1.mp4", "https://v.example/b2.mp4"}, video.BackupURLs)
	require.Len(t, video.H264, 1)
	assert.Equal(t, "https://v.example/h264.mp4", video.H264[0]["masterUrl"])
	assert.Empty(t, video.H265)
	require.Len(t, video.AV1, 1)
}

func TestFeedFromRaw_NicknameAlias(t *testing.T) {
	raw := decodeRecord(t, `{
		"id": "n2",
		"noteCard": {
			"user": {"userId": "u2", "nickName": "备用名"}
		}
	}`)

	feed := FeedFromRaw(raw)
	require.NotNil(t, feed)
	assert.Equal(t, "备用名", feed.NoteCard.User.Nickname)
}

func TestFeedFromRaw_UnusableRecords(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{
			name: "missing noteCard",
			body: `{"id": "n3", "modelType": "note"}`,
		},
		{
			name: "null noteCard",
			body: `{"id": "n4", "noteCard": null}`,
		},
		{
			name: "missing id",
			body: `{"noteCard": {"type": "normal"}}`,
		},
		{
			name: "empty id",
			body: `{"id": "", "noteCard": {"type": "normal"}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			feed := FeedFromRaw(decodeRecord(t, tt.body))
			assert.Nil(t, feed)
		})
	}

	t.Run("nil record", func(t *testing.T) {
		assert.Nil(t, FeedFromRaw(nil))
	})
}

func TestFeedFromRaw_MissingSubObjectsDefaultToZero(t *testing.T) {
	raw := decodeRecord(t, `{"id": "n5", "noteCard": {"displayTitle": "无互动"}}`)

	feed := FeedFromRaw(raw)
	require.NotNil(t, feed)

	assert.Equal(t, "无互动", feed.NoteCard.DisplayTitle)
	assert.Equal(t, "", feed.NoteCard.User.UserID)
	assert.False(t, feed.NoteCard.InteractInfo.Liked)
	assert.Equal(t, "0", feed.NoteCard.InteractInfo.LikedCount)
	assert.Equal(t, 0, feed.NoteCard.Cover.Width)
}
