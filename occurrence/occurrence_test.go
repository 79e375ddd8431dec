package occurrence

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeOccurrenceFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestSummarizeSumsNumSlicesAcrossFiles(t *testing.T) {
	dir := t.TempDir()
	writeOccurrenceFile(t, dir, "a.bc.json", `{"SSL_free": {"has_return_type": false, "num_slices": 3}}`)
	writeOccurrenceFile(t, dir, "b.bc.json", `{"SSL_free": {"has_return_type": false, "num_slices": 5}, "BIO_free": {"has_return_type": false, "num_slices": 1}}`)

	totals, err := Summarize(dir)
	require.NoError(t, err)
	assert.Equal(t, 8, totals["SSL_free"])
	assert.Equal(t, 1, totals["BIO_free"])
}

func TestSummarizeSkipsMalformedFiles(t *testing.T) {
	dir := t.TempDir()
	writeOccurrenceFile(t, dir, "good.json", `{"f": {"num_slices": 2}}`)
	writeOccurrenceFile(t, dir, "bad.json", `not json`)

	totals, err := Summarize(dir)
	require.NoError(t, err)
	assert.Equal(t, 2, totals["f"])
}

func TestWriteAndLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Write(dir, map[string]int{"f": 10}))

	totals, err := Load(filepath.Join(dir, "total_occurrences.json"))
	require.NoError(t, err)
	assert.Equal(t, 10, totals["f"])
}

func TestQueryFiltersBySubstringAndMinimum(t *testing.T) {
	totals := map[string]int{
		"SSL_free":    20,
		"SSL_new":     5,
		"BIO_free":    20,
		"EVP_destroy": 2,
	}
	matches := Query(totals, "free", 10)
	require.Len(t, matches, 2)
	assert.Equal(t, "BIO_free", matches[0].Name)
	assert.Equal(t, "SSL_free", matches[1].Name)
}
