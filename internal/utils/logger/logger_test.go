package logger

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readEntries(t *testing.T, path string) []map[string]any {
	t.Helper()
	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	var entries []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(string(raw)), "\n") {
		entry := map[string]any{}
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		entries = append(entries, entry)
	}
	return entries
}

func TestFileReceivesStructuredEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "launchpad.log")
	log, err := New(&Config{LogFile: path, MaxSize: 1, Quiet: true})
	require.NoError(t, err)

	log.WithComponent("ledger").Info("slot advanced")
	log.WithProgram("launchpad", "CandyStLaunchpad1111111111111111111111111111").Info("registered")
	log.WithOperation("genesis").Warn("no airdrops")
	log.WithLaunch("drop", "alice").Info("launched")
	log.Debug("hidden below info")
	require.NoError(t, log.Sync())

	entries := readEntries(t, path)
	require.Len(t, entries, 4)

	assert.Equal(t, "ledger", entries[0]["component"])
	assert.Equal(t, "ledger", entries[0]["logger"])
	assert.Equal(t, "INFO", entries[0]["level"])
	assert.Contains(t, entries[0], "timestamp")

	assert.Equal(t, "launchpad", entries[1]["program"])

	assert.Equal(t, "genesis", entries[2]["operation"])
	assert.NotEmpty(t, entries[2]["correlation_id"])

	assert.Equal(t, "drop", entries[3]["task"])
	assert.Equal(t, "alice", entries[3]["wallet"])
}

func TestDevelopmentLogsDebug(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dev.log")
	log, err := New(&Config{LogFile: path, Development: true, Quiet: true})
	require.NoError(t, err)

	end := log.TrackPerformance("launch")
	end()
	log.WithTransaction("5sig").Debug("sent")
	log.LogError("failed", assert.AnError)
	require.NoError(t, log.Sync())

	entries := readEntries(t, path)
	require.Len(t, entries, 4)
	assert.Equal(t, "Operation started", entries[0]["msg"])
	assert.Equal(t, "Operation finished", entries[1]["msg"])
	assert.Equal(t, entries[0]["correlation_id"], entries[1]["correlation_id"])
	assert.Contains(t, entries[1], "elapsed")
	assert.Equal(t, "5sig", entries[2]["signature"])
	assert.Equal(t, assert.AnError.Error(), entries[3]["error"])
}

func TestNewValidatesConfig(t *testing.T) {
	_, err := New(&Config{})
	assert.ErrorContains(t, err, "log file is required")

	_, err = New(&Config{LogFile: filepath.Join(t.TempDir(), "x.log"), MaxBackups: -1})
	assert.ErrorContains(t, err, "must not be negative")
}
