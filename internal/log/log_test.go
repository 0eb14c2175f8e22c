package log

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLog_WritesStructuredLine(t *testing.T) {
	var buf bytes.Buffer
	cleanup := InitWriter(&buf)
	defer cleanup()

	Info(CatStore, "record saved", "path", "/tmp/recent_files.json", "entries", 3)

	line := buf.String()
	require.Contains(t, line, "[INFO] [store] record saved")
	require.Contains(t, line, "path=/tmp/recent_files.json")
	require.Contains(t, line, "entries=3")
	require.True(t, line[len(line)-1] == '\n')
}

func TestLog_OddFieldCount(t *testing.T) {
	var buf bytes.Buffer
	defer InitWriter(&buf)()

	Debug(CatRegistry, "dangling", "op")

	require.Contains(t, buf.String(), "op=<missing>")
}

func TestLog_ErrorErr(t *testing.T) {
	var buf bytes.Buffer
	defer InitWriter(&buf)()

	ErrorErr(CatStore, "save failed", errors.New("disk full"), "path", "/x")
	ErrorErr(CatStore, "odd", nil)

	out := buf.String()
	require.Contains(t, out, "[ERROR] [store] save failed path=/x error=disk full")
	require.Contains(t, out, "error=<nil>")
}

func TestLog_MinLevelAndDisable(t *testing.T) {
	var buf bytes.Buffer
	defer InitWriter(&buf)()

	SetMinLevel(LevelWarn)
	Info(CatCLI, "hidden")
	Warn(CatCLI, "shown")
	require.NotContains(t, buf.String(), "hidden")
	require.Contains(t, buf.String(), "shown")

	buf.Reset()
	SetEnabled(false)
	Error(CatCLI, "muted")
	require.Empty(t, buf.String())
}

func TestLog_NoLoggerIsNoop(t *testing.T) {
	Shutdown()
	require.NotPanics(t, func() {
		Info(CatConfig, "nobody listening")
		SetEnabled(true)
		SetMinLevel(LevelError)
	})
	require.Nil(t, NewListener(context.Background()))
}

func TestLog_InitFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "debug.log")
	cleanup, err := Init(path)
	require.NoError(t, err)

	Info(CatConfig, "loaded", "file", "config.yaml")
	cleanup()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "[INFO] [config] loaded file=config.yaml")
}

func TestLog_InitFileBadPath(t *testing.T) {
	_, err := Init(filepath.Join(t.TempDir(), "missing", "dir", "debug.log"))
	require.Error(t, err)
}

func TestLog_ListenerReceivesLines(t *testing.T) {
	var buf bytes.Buffer
	defer InitWriter(&buf)()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	l := NewListener(ctx)
	require.NotNil(t, l)

	Warn(CatTrack, "tracking failed", "path", "/a.txt")

	event, ok := l.Next()
	require.True(t, ok)
	require.Contains(t, event.Payload, "[WARN] [track] tracking failed path=/a.txt")
}

func TestParseLevel(t *testing.T) {
	require.Equal(t, LevelInfo, ParseLevel("INFO"))
	require.Equal(t, LevelWarn, ParseLevel("warning"))
	require.Equal(t, LevelError, ParseLevel(" error "))
	require.Equal(t, LevelDebug, ParseLevel("verbose"))
	require.Equal(t, "UNKNOWN", Level(42).String())
}
