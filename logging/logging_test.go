package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDisabled(t *testing.T) {
	logger, closer, err := New(Config{})
	require.NoError(t, err)
	assert.Nil(t, closer)
	assert.False(t, logger.Enabled(context.Background(), slog.LevelError))
}

func TestNewTextOutput(t *testing.T) {
	var buf bytes.Buffer
	logger, closer, err := New(Config{Enabled: true, Output: &buf, Level: slog.LevelWarn})
	require.NoError(t, err)
	assert.Nil(t, closer)

	logger.Info("quiet")
	logger.Warn("rate limited", slog.String("resource", "TweetSearch"))

	out := buf.String()
	assert.NotContains(t, out, "quiet")
	assert.Contains(t, out, `msg="rate limited"`)
	assert.Contains(t, out, "resource=TweetSearch")
}

func TestNewStoresJSONLogs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rettiwt.log")
	var buf bytes.Buffer

	logger, closer, err := New(Config{Enabled: true, StoreLogs: true, File: path, Output: &buf})
	require.NoError(t, err)
	require.NotNil(t, closer)

	logger.With(slog.String("component", "stream")).WithGroup("poll").Info("done", slog.Int("tweets", 2))
	require.NoError(t, closer.Close())

	assert.Contains(t, buf.String(), "poll.tweets=2")

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(data), &rec))
	assert.Equal(t, "done", rec["msg"])
	assert.Equal(t, "stream", rec["component"])
	assert.Equal(t, map[string]any{"tweets": float64(2)}, rec["poll"])
}

func TestNewFileOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "only.log")
	logger, closer, err := New(Config{StoreLogs: true, File: path})
	require.NoError(t, err)
	require.NotNil(t, closer)

	logger.Info("hello")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"hello"`)
}
