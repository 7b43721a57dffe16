package cmd

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cfgpkg "github.com/KaramelBytes/lipidflow-cli/internal/config"
	"github.com/KaramelBytes/lipidflow-cli/internal/sankey"
)

func TestStageThresholds(t *testing.T) {
	cols := sankey.Columns{Start: "Category", Mid: "Main class", End: "Sub class", Value: "abundance"}
	c := &cfgpkg.Global{DefaultThreshold: 2, StageThresholds: map[string]float64{"main class": 5}}

	th, err := stageThresholds(c, cols, map[string]string{"Sub class": "0.5"})
	require.NoError(t, err)
	assert.Equal(t, 2.0, th.For("Category"))
	assert.Equal(t, 5.0, th.For("Main class"))
	assert.Equal(t, 0.5, th.For("Sub class"))

	th, err = stageThresholds(nil, cols, nil)
	require.NoError(t, err)
	assert.Equal(t, sankey.DefaultThreshold, th.For("Main class"))

	_, err = stageThresholds(c, cols, map[string]string{"Category": "abc"})
	assert.Error(t, err)
}

func TestStageThresholdsZeroDefaultKeepsEveryGroup(t *testing.T) {
	cols := sankey.Columns{Start: "Category", Mid: "Main class", End: "Sub class", Value: "abundance"}
	th, err := stageThresholds(&cfgpkg.Global{DefaultThreshold: 0}, cols, nil)
	require.NoError(t, err)
	for _, col := range cols.Stages() {
		assert.Equal(t, 0.0, th.For(col), col)
	}
}

func TestStageThresholdsRejectsNegativeConfig(t *testing.T) {
	cols := sankey.Columns{Start: "Category", Mid: "Main class", End: "Sub class", Value: "abundance"}

	_, err := stageThresholds(&cfgpkg.Global{DefaultThreshold: 1, StageThresholds: map[string]float64{"main class": -5}}, cols, nil)
	assert.ErrorContains(t, err, "stage_thresholds")

	_, err = stageThresholds(&cfgpkg.Global{DefaultThreshold: -1}, cols, nil)
	assert.ErrorContains(t, err, "default_threshold")
}

func TestParseDelimiter(t *testing.T) {
	for in, want := range map[string]rune{"": 0, ",": ',', "tab": '\t', ";": ';', "|": '|'} {
		got, err := parseDelimiter(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := parseDelimiter(":")
	assert.Error(t, err)
}

func TestRenderOptionsPrecedence(t *testing.T) {
	c := &cfgpkg.Global{Width: 1200, Height: 800}
	opt := renderOptions(c, 0, 600, 0, "Lipids")
	assert.Equal(t, 1200, opt.Width)
	assert.Equal(t, 600, opt.Height)
	assert.Equal(t, 100, opt.Thickness)
	assert.Equal(t, "Lipids", opt.Title)
}

func TestSetConfigValue(t *testing.T) {
	c := &cfgpkg.Global{}
	require.NoError(t, setConfigValue(c, "cors_origins", "http://a, http://b,"))
	assert.Equal(t, []string{"http://a", "http://b"}, c.CORSOrigins)
	require.NoError(t, setConfigValue(c, "log_level", "DEBUG"))
	assert.Equal(t, "debug", c.LogLevel)
	require.NoError(t, setConfigValue(c, "thickness", "40"))
	assert.Equal(t, 40, c.Thickness)
	assert.Error(t, setConfigValue(c, "log_level", "loud"))
	assert.Error(t, setConfigValue(c, "stage_thresholds.Category", "-1"))
}

func TestPrintWarningsStaysOutOfInfoLog(t *testing.T) {
	var buf bytes.Buffer
	prev := logger
	logger = slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))
	t.Cleanup(func() { logger = prev })

	printWarnings([]string{"2 node(s) not in the color map use grey"})
	assert.Empty(t, buf.String())

	logger = slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	printWarnings([]string{"2 node(s) not in the color map use grey"})
	assert.Contains(t, buf.String(), "not in the color map")
}
