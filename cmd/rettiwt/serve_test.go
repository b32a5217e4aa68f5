package main

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anatolykoptev/go-rettiwt"
	"github.com/anatolykoptev/go-rettiwt/logging"
)

func TestServerLogConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  rettiwt.Config
		want logging.Config
	}{
		{"defaults", rettiwt.Config{}, logging.Config{Enabled: true, Level: slog.LevelInfo}},
		{"verbose", rettiwt.Config{Logging: true}, logging.Config{Enabled: true, Level: slog.LevelDebug}},
		{"store logs", rettiwt.Config{StoreLogs: true, LogFile: "srv.log"},
			logging.Config{Enabled: true, StoreLogs: true, File: "srv.log", Level: slog.LevelInfo}},
		{"store logs default file", rettiwt.Config{StoreLogs: true},
			logging.Config{Enabled: true, StoreLogs: true, File: "rettiwt.log", Level: slog.LevelInfo}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, serverLogConfig(tt.cfg))
		})
	}
}

func TestServerLogsReachFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "serve.log")
	lc := serverLogConfig(rettiwt.Config{Logging: true, StoreLogs: true, LogFile: path})
	lc.Output = io.Discard

	log, closer, err := logging.New(lc)
	require.NoError(t, err)
	require.NotNil(t, closer)

	log.Debug("request done", slog.String("resource", "TweetDetails"))
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"request done"`)
}
