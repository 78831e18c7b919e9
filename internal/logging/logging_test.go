package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	level, err := ParseLevel("")
	require.NoError(t, err)
	assert.Equal(t, zerolog.WarnLevel, level)

	level, err = ParseLevel(" Debug ")
	require.NoError(t, err)
	assert.Equal(t, zerolog.DebugLevel, level)

	_, err = ParseLevel("loud")
	require.Error(t, err)
}

func TestConfigureConsole(t *testing.T) {
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.TraceLevel) })
	var buf bytes.Buffer
	closer, err := Configure(Options{Level: "info", Out: &buf})
	require.NoError(t, err)
	defer func() { _ = closer.Close() }()

	log.Debug().Msg("hidden")
	log.Info().Str("model", "OLS").Msg("computed")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "computed")
	assert.Contains(t, buf.String(), "OLS")
}

func TestConfigureVerboseLowersLevel(t *testing.T) {
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.TraceLevel) })
	var buf bytes.Buffer
	closer, err := Configure(Options{Level: "error", Verbose: true, Out: &buf})
	require.NoError(t, err)
	defer func() { _ = closer.Close() }()
	assert.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())
}

func TestConfigureFile(t *testing.T) {
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.TraceLevel) })
	path := filepath.Join(t.TempDir(), "logs", "contribplot.log")
	var buf bytes.Buffer
	closer, err := Configure(Options{Level: "info", File: path, Out: &buf})
	require.NoError(t, err)

	log.Info().Msg("to file")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"message":"to file"`)
	assert.Contains(t, buf.String(), "to file")
}

func TestConfigureRejectsBadLevel(t *testing.T) {
	_, err := Configure(Options{Level: "nope"})
	require.Error(t, err)
}
