package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_JSONOutput(t *testing.T) {
	buf := &bytes.Buffer{}
	log := New(&Config{Level: LevelDebug, JSON: true, Output: buf})

	log.Info("parsed transcript", F("file", "chat.txt"), F("records", 3), Err(errors.New("boom")))

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "parsed transcript", entry["message"])
	assert.Equal(t, "chat.txt", entry["file"])
	assert.EqualValues(t, 3, entry["records"])
	assert.Equal(t, "boom", entry["error"])
	assert.Contains(t, entry, "time")
}

func TestNew_LevelFiltering(t *testing.T) {
	buf := &bytes.Buffer{}
	log := New(&Config{Level: LevelWarn, JSON: true, Output: buf})

	log.Debug("hidden")
	log.Info("hidden")
	assert.Empty(t, buf.String())

	log.Warn("shown")
	log.Error("also shown")
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, 2)
}

func TestLogger_With(t *testing.T) {
	buf := &bytes.Buffer{}
	log := New(&Config{Level: LevelInfo, JSON: true, Output: buf}).With(F("run_id", "abc"))

	log.Info("done")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "abc", entry["run_id"])
}

func TestNew_ConsoleOutput(t *testing.T) {
	buf := &bytes.Buffer{}
	log := New(&Config{Level: LevelInfo, Output: buf})

	log.Info("hello", F("keyword", "교과서"))

	out := buf.String()
	assert.Contains(t, out, "hello")
	assert.Contains(t, out, "keyword=")
	assert.NotContains(t, out, "\x1b[", "non-terminal output should not be colored")
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{"debug", LevelDebug, false},
		{"INFO", LevelInfo, false},
		{"warning", LevelWarn, false},
		{" error ", LevelError, false},
		{"trace", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewNop(t *testing.T) {
	log := NewNop()
	log.Info("ignored")
	assert.NotNil(t, log.With(F("k", "v")))
}
