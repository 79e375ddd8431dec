package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	old := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w
	fn()
	w.Close()
	os.Stdout = old
	var buf bytes.Buffer
	buf.ReadFrom(r)
	return buf.String()
}

func TestRunOccurrenceSummarizeWritesTotals(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bc1.json"),
		[]byte(`{"SSL_free":{"has_return_type":false,"num_slices":3}}`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bc2.json"),
		[]byte(`{"SSL_free":{"has_return_type":false,"num_slices":4}}`), 0o644))

	occurrenceFlags.dir = dir
	t.Cleanup(func() { occurrenceFlags.dir = "." })

	require.NoError(t, runOccurrenceSummarize(occurrenceCmd, nil))

	data, err := os.ReadFile(filepath.Join(dir, "total_occurrences.json"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"SSL_free":7`)
}

func TestRunOccurrenceQueryFiltersByMinimum(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "total_occurrences.json"),
		[]byte(`{"SSL_free":7,"SSL_new":1}`), 0o644))

	occurrenceFlags.dir = dir
	occurrenceQueryFlags.min = 2
	t.Cleanup(func() {
		occurrenceFlags.dir = "."
		occurrenceQueryFlags.min = 0
	})

	var runErr error
	output := captureStdout(t, func() {
		runErr = runOccurrenceQuery(occurrenceQueryCmd, []string{"SSL"})
	})
	require.NoError(t, runErr)
	assert.Contains(t, output, "SSL_free")
	assert.NotContains(t, output, "SSL_new")
}
