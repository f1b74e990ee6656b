package testutil

import (
	"bufio"
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// NopLogger returns a logger that discards all output
func NopLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

// LogCapture records JSON log lines at debug level and above so tests can assert on them
type LogCapture struct {
	Logger *slog.Logger

	mu  sync.Mutex
	buf bytes.Buffer
}

// NewLogCapture creates a LogCapture with an empty buffer
func NewLogCapture() *LogCapture {
	c := &LogCapture{}
	c.Logger = slog.New(slog.NewJSONHandler(c, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return c
}

// Write implements io.Writer for the handler
func (c *LogCapture) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buf.Write(p)
}

// Entries decodes every captured line in order
func (c *LogCapture) Entries(t *testing.T) []map[string]any {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()

	var entries []map[string]any
	scanner := bufio.NewScanner(bytes.NewReader(c.buf.Bytes()))
	// Panic stacks make long lines
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for scanner.Scan() {
		var entry map[string]any
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &entry), scanner.Text())
		entries = append(entries, entry)
	}
	require.NoError(t, scanner.Err())
	return entries
}

// Last returns the most recent line, failing the test if nothing was logged
func (c *LogCapture) Last(t *testing.T) map[string]any {
	t.Helper()
	entries := c.Entries(t)
	require.NotEmpty(t, entries, "no log lines captured")
	return entries[len(entries)-1]
}
