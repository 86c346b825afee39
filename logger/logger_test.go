package logger

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevelRouting(t *testing.T) {
	var stdout, stderr bytes.Buffer
	l, err := NewWithWriters("info", &stdout, &stderr)
	require.NoError(t, err)

	l.Debug().Msg("hidden")
	l.Info().Msg("loaded")
	l.Warn().Int("count", 2).Msg("filtered")
	l.Error().Msg("broken")

	assert.NotContains(t, stdout.String(), "hidden")
	assert.Contains(t, stdout.String(), "loaded")
	assert.Contains(t, stdout.String(), "count=2")
	assert.NotContains(t, stdout.String(), "broken")
	assert.Contains(t, stderr.String(), "broken")
}

func TestParseLevel(t *testing.T) {
	_, err := NewWithWriters("loud", nil, nil)
	assert.Error(t, err)
}
