package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevelRouting(t *testing.T) {
	var stdout, stderr, file bytes.Buffer
	logger, err := New(Options{Format: "json"}, &stdout, &stderr, &file)
	require.NoError(t, err)

	logger.Info().Msg("started")
	logger.Warn().Msg("slow")
	logger.Error().Msg("failed")
	logger.Debug().Msg("hidden")

	assert.Contains(t, stdout.String(), "started")
	assert.Contains(t, stdout.String(), "slow")
	assert.NotContains(t, stdout.String(), "failed")
	assert.Contains(t, stderr.String(), "failed")
	assert.NotContains(t, stderr.String(), "started")

	lines := strings.Split(strings.TrimSpace(file.String()), "\n")
	assert.Len(t, lines, 3)
	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[2]), &entry))
	assert.Equal(t, "error", entry["level"])
}

func TestLevelOption(t *testing.T) {
	var stdout, stderr bytes.Buffer
	logger, err := New(Options{Level: "warn", Format: "json"}, &stdout, &stderr, nil)
	require.NoError(t, err)

	logger.Info().Msg("quiet")
	logger.Warn().Msg("loud")
	assert.NotContains(t, stdout.String(), "quiet")
	assert.Contains(t, stdout.String(), "loud")
}

func TestInvalidOptions(t *testing.T) {
	_, err := New(Options{Level: "chatty"}, &bytes.Buffer{}, &bytes.Buffer{}, nil)
	assert.Error(t, err)

	_, err = New(Options{Format: "xml"}, &bytes.Buffer{}, &bytes.Buffer{}, nil)
	assert.Error(t, err)
}

func TestConsoleFormat(t *testing.T) {
	var stdout bytes.Buffer
	logger, err := New(Options{}, &stdout, &bytes.Buffer{}, nil)
	require.NoError(t, err)

	logger.Info().Str("user", "ana").Msg("logged in")
	assert.Contains(t, stdout.String(), "logged in")
	assert.Contains(t, stdout.String(), "user=")
}
