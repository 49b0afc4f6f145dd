package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_WritesJSONToFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "logs", "gridfind.log")
	l, closer, err := New("info", file)
	require.NoError(t, err)

	l.Debug().Msg("hidden")
	ed := Component(l, "editor")
	ed.Info().Str("mode", "find").Msg("transition")
	closer()

	data, err := os.ReadFile(file)
	require.NoError(t, err)
	lines := bytes.Split(bytes.TrimSpace(data), []byte("\n"))
	require.Len(t, lines, 1, "debug is below the configured level")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &entry))
	assert.Equal(t, "transition", entry["message"])
	assert.Equal(t, "editor", entry["component"])
	assert.Equal(t, "find", entry["mode"])
	assert.Contains(t, entry, "time")
}

func TestNew_BadLevel(t *testing.T) {
	_, closer, err := New("loud", "")
	require.Error(t, err)
	require.NotNil(t, closer)
	closer()
}

func TestNewWithWriter_Level(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, zerolog.WarnLevel)
	l.Info().Msg("skip")
	l.Warn().Msg("keep")
	assert.NotContains(t, buf.String(), "skip")
	assert.Contains(t, buf.String(), "keep")
}
