package logger

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZapLoggerWritesStructuredLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	l := NewZapLogger(path, true)

	l.Info("bootstrap", "service started", map[string]interface{}{"port": "8080"})
	l.Warn("bootstrap", "cache miss", nil)
	// Syncing stdout can fail on some platforms, the file write is what
	// this test asserts.
	_ = l.Sync()

	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	type line struct {
		Level   string                 `json:"level"`
		Message string                 `json:"message"`
		Module  string                 `json:"module"`
		Details map[string]interface{} `json:"details"`
	}

	var lines []line
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		var entry line
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &entry))
		lines = append(lines, entry)
	}
	require.NoError(t, scanner.Err())
	require.Len(t, lines, 2)

	assert.Equal(t, "INFO", lines[0].Level)
	assert.Equal(t, "service started", lines[0].Message)
	assert.Equal(t, "bootstrap", lines[0].Module)
	assert.Equal(t, "8080", lines[0].Details["port"])

	assert.Equal(t, "WARN", lines[1].Level)
	assert.NotNil(t, lines[1].Details)
}
