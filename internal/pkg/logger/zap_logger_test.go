package logger

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsolatedLoggerWritesJSONLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "channel.log")
	l := NewIsolatedLogger(path)

	l.Info("Hub", "Client registered", map[string]interface{}{"room": "room-1"})
	l.Debug("Hub", "below file level", nil)
	l.Error("Hub", "write failed", map[string]interface{}{"error": errors.New("broken pipe")})
	_ = l.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "INFO", entry["level"])
	assert.Equal(t, "Client registered", entry["message"])
	assert.Equal(t, "Hub", entry["module"])
	assert.Equal(t, "room-1", entry["details"].(map[string]interface{})["room"])

	require.NoError(t, json.Unmarshal([]byte(lines[1]), &entry))
	assert.Equal(t, "ERROR", entry["level"])
	assert.Equal(t, "broken pipe", entry["error"])
}

func TestNopLoggerAcceptsNilDetails(t *testing.T) {
	var l ILogger = NewNopLogger()
	l.Info("Test", "nothing", nil)
	l.Warn("Test", "nothing", nil)
	assert.NoError(t, l.Sync())
}
