package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDiagnosticsWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	NewDiagnostics(&buf).Info("compare", "candidate", 3, "similarity", 0.5)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "compare", entry["msg"])
	assert.Equal(t, float64(3), entry["candidate"])
	assert.Contains(t, entry, "time")
}

func TestOpenDiagnosticsAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "diag.jsonl")

	for i := 0; i < 2; i++ {
		l, closeFn, err := OpenDiagnostics(path)
		require.NoError(t, err)
		l.Info("compare", "candidate", i)
		require.NoError(t, closeFn())
	}

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2, bytes.Count(data, []byte("\n")))
}
