package log

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"bogus", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, parseLevel(tt.in), tt.in)
	}
}

func TestNewJSONLoggerFiltersLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewJSONLogger(&buf, "warn")
	l.Info().Msg("hidden")
	l.Warn().Str("k", "v").Msg("shown")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 1)
	var m map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &m))
	assert.Equal(t, "shown", m["message"])
	assert.Equal(t, "v", m["k"])
	assert.Equal(t, "warn", m["level"])
}

func TestSetLoggerRebuildsComponents(t *testing.T) {
	old := Logger
	defer SetLogger(old)

	var buf bytes.Buffer
	SetLogger(NewJSONLogger(&buf, "debug"))
	Transfer.Info().Msg("hello")

	var m map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &m))
	assert.Equal(t, "transfer", m["component"])
}

func TestInitWithFile(t *testing.T) {
	old := Logger
	defer SetLogger(old)

	path := filepath.Join(t.TempDir(), "out.log")
	require.NoError(t, Init("debug", true, path))
	assert.Equal(t, zerolog.DebugLevel, Logger.GetLevel())
	require.NoError(t, Init("info", true, ""))
}

func TestInitClosesPreviousFile(t *testing.T) {
	old := Logger
	defer SetLogger(old)

	dir := t.TempDir()
	first := filepath.Join(dir, "first.log")
	second := filepath.Join(dir, "second.log")

	require.NoError(t, Init("info", true, first))
	firstFile := logFile
	require.NotNil(t, firstFile)

	require.NoError(t, Init("info", true, second))
	_, err := firstFile.Write([]byte("x"))
	assert.ErrorIs(t, err, os.ErrClosed)
	secondFile := logFile
	require.NotNil(t, secondFile)
	assert.NotSame(t, firstFile, secondFile)

	Transfer.Info().Msg("after reopen")
	data, err := os.ReadFile(second)
	require.NoError(t, err)
	assert.Contains(t, string(data), "after reopen")
	data, err = os.ReadFile(first)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "after reopen")

	require.NoError(t, Init("info", true, ""))
	assert.Nil(t, logFile)
	_, err = secondFile.Write([]byte("x"))
	assert.ErrorIs(t, err, os.ErrClosed)
}

func TestInitBadFileKeepsCurrent(t *testing.T) {
	old := Logger
	defer SetLogger(old)

	path := filepath.Join(t.TempDir(), "keep.log")
	require.NoError(t, Init("info", true, path))
	kept := logFile

	err := Init("info", true, filepath.Join(t.TempDir(), "missing", "x.log"))
	require.Error(t, err)
	assert.Same(t, kept, logFile)
	_, err = kept.Write([]byte("x"))
	assert.NoError(t, err)

	require.NoError(t, Init("info", true, ""))
}

// --- Ring ---

func TestRingKeepsInsertionOrder(t *testing.T) {
	r := NewRing(4)
	for i := range 3 {
		r.Add(zerolog.InfoLevel, fmt.Sprintf("e%d", i))
	}
	assert.Equal(t, 3, r.Len())
	got := r.Entries(0, 0)
	require.Len(t, got, 3)
	assert.Equal(t, "e0", got[0].Message)
	assert.Equal(t, "e2", got[2].Message)
}

func TestRingEvictsOldest(t *testing.T) {
	r := NewRing(3)
	for i := range 5 {
		r.Add(zerolog.InfoLevel, fmt.Sprintf("e%d", i))
	}
	assert.Equal(t, 3, r.Len())
	var msgs []string
	for _, e := range r.Entries(0, 0) {
		msgs = append(msgs, e.Message)
	}
	assert.Equal(t, []string{"e2", "e3", "e4"}, msgs)
}

func TestRingPaging(t *testing.T) {
	r := NewRing(10)
	for i := range 6 {
		r.Add(zerolog.InfoLevel, fmt.Sprintf("e%d", i))
	}
	page := r.Entries(2, 3)
	require.Len(t, page, 3)
	assert.Equal(t, "e2", page[0].Message)
	assert.Equal(t, "e4", page[2].Message)

	assert.Nil(t, r.Entries(6, 1))
	assert.Len(t, r.Entries(-1, 2), 2)
}

func TestRingDefaultSize(t *testing.T) {
	r := NewRing(0)
	for i := range DefaultRingSize + 10 {
		r.Add(zerolog.InfoLevel, fmt.Sprintf("e%d", i))
	}
	assert.Equal(t, DefaultRingSize, r.Len())
	assert.Equal(t, "e10", r.Entries(0, 1)[0].Message)
}

func TestRingAsHook(t *testing.T) {
	r := NewRing(5)
	l := zerolog.New(&bytes.Buffer{}).Hook(r)
	l.Info().Str("txid", "ab").Msg("broadcast")
	l.Error().Msg("failed")

	got := r.Entries(0, 0)
	require.Len(t, got, 2)
	assert.Equal(t, "broadcast", got[0].Message)
	assert.Equal(t, zerolog.ErrorLevel, got[1].Level)
}
