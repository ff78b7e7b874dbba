package logger

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

// swapGlobalLogger points the package singleton at a buffer and returns a
// restore function, so helper output can be inspected.
func swapGlobalLogger(buf *bytes.Buffer) func() {
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	zlog := zerolog.New(buf).Level(zerolog.DebugLevel)
	previous := globalLogger
	globalLogger = &zerologLogger{
		logger: &zlog,
		fields: make(map[string]interface{}),
	}
	return func() { globalLogger = previous }
}

func TestLogComponentStart(t *testing.T) {
	var buf bytes.Buffer
	defer swapGlobalLogger(&buf)()

	LogComponentStart("browser", map[string]interface{}{
		"headless": true,
	})

	out := buf.String()
	if !strings.Contains(out, "Component started") {
		t.Errorf("Expected start message in output, got: %s", out)
	}
	if !strings.Contains(out, `"component":"browser"`) {
		t.Errorf("Expected component field in output, got: %s", out)
	}
	if !strings.Contains(out, `"headless":true`) {
		t.Errorf("Expected config field in output, got: %s", out)
	}
}

func TestLogComponentStop(t *testing.T) {
	var buf bytes.Buffer
	defer swapGlobalLogger(&buf)()

	LogComponentStop("browser", "session complete")

	out := buf.String()
	if !strings.Contains(out, "Component stopped") {
		t.Errorf("Expected stop message in output, got: %s", out)
	}
	if !strings.Contains(out, `"component":"browser"`) {
		t.Errorf("Expected component field in output, got: %s", out)
	}
	if !strings.Contains(out, `"reason":"session complete"`) {
		t.Errorf("Expected reason field in output, got: %s", out)
	}
}

func TestLogIntercept(t *testing.T) {
	var buf bytes.Buffer
	defer swapGlobalLogger(&buf)()

	LogIntercept("https://example.com/api/sns/web/v1/search/notes", 200, 12)

	out := buf.String()
	if !strings.Contains(out, "Captured search API response") {
		t.Errorf("Expected intercept message in output, got: %s", out)
	}
	if !strings.Contains(out, `"item_count":12`) {
		t.Errorf("Expected item count field in output, got: %s", out)
	}
}

func TestLogHarvestProgress(t *testing.T) {
	var buf bytes.Buffer
	defer swapGlobalLogger(&buf)()

	LogHarvestProgress("咖啡", 5, 20)

	out := buf.String()
	if !strings.Contains(out, "Harvest progress") {
		t.Errorf("Expected progress message in output, got: %s", out)
	}
	if !strings.Contains(out, `"percentage":"25.0%"`) {
		t.Errorf("Expected percentage field in output, got: %s", out)
	}
}
