package logging

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	for in, want := range map[string]slog.Level{"": slog.LevelInfo, "debug": slog.LevelDebug, "WARN": slog.LevelWarn, "error": slog.LevelError} {
		got, err := ParseLevel(in)
		require.NoError(t, err)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseLevel("loud")
	assert.Error(t, err)
}

func TestSetupWritesJSONToFile(t *testing.T) {
	var stderr bytes.Buffer
	path := filepath.Join(t.TempDir(), "logs", "lipidflow.jsonl")
	logger, cleanup, err := Setup(&stderr, path, slog.LevelInfo)
	require.NoError(t, err)

	logger.Debug("hidden")
	logger.Info("dataset built", "grouped", 11)
	cleanup()

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"msg":"dataset built"`)
	assert.NotContains(t, string(b), "hidden")
	assert.Equal(t, string(b), stderr.String())
}

func TestSetupTextWithoutFile(t *testing.T) {
	var stderr bytes.Buffer
	logger, cleanup, err := Setup(&stderr, "", slog.LevelWarn)
	require.NoError(t, err)
	defer cleanup()

	logger.Info("quiet")
	logger.Warn("palette fallback", "nodes", 120)
	assert.NotContains(t, stderr.String(), "quiet")
	assert.Contains(t, stderr.String(), "palette fallback")
	assert.Contains(t, stderr.String(), "nodes=120")
}
