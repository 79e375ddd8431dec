package corpus

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFeatureFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestLayoutFunctionsFiltersByTargetSubstring(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "features", "SSL_free"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "features", "BIO_new"), 0o755))

	layout := NewLayout(root)
	names, err := layout.Functions("free")
	require.NoError(t, err)
	assert.Equal(t, []string{"SSL_free"}, names)
}

func TestLayoutFunctionsEmptyTargetMatchesAll(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "features", "SSL_free"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "features", "BIO_new"), 0o755))

	layout := NewLayout(root)
	names, err := layout.Functions("")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"SSL_free", "BIO_new"}, names)
}

func TestLayoutFeatureFilesOnlyListsFeaJSON(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "features", "SSL_free")
	writeFeatureFile(t, dir, "1.fea.json", `{"loc":"a.c:1"}`)
	writeFeatureFile(t, dir, "notes.txt", `ignore me`)

	layout := NewLayout(root)
	files, err := layout.FeatureFiles("SSL_free")
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Contains(t, files[0], "1.fea.json")
}

func TestCacheFrequencyMapMemoizesAcrossCalls(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "features", "SSL_free")
	writeFeatureFile(t, dir, "1.fea.json", `{"loc":"a.c:1","retval":{"check":{"checked":true}}}`)

	layout := NewLayout(root)
	cache, err := NewCache(layout, false, 8)
	require.NoError(t, err)

	fm1, loadErrs, err := cache.FrequencyMap("SSL_free")
	require.NoError(t, err)
	assert.Empty(t, loadErrs)
	require.Equal(t, 1, fm1.TotalTime())

	fm2, _, err := cache.FrequencyMap("SSL_free")
	require.NoError(t, err)
	assert.Same(t, fm1, fm2)
}

func TestCacheFrequencyMapReportsLoadErrorsWithoutAborting(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "features", "SSL_free")
	writeFeatureFile(t, dir, "1.fea.json", `not json`)
	writeFeatureFile(t, dir, "2.fea.json", `{"loc":"a.c:1"}`)

	layout := NewLayout(root)
	cache, err := NewCache(layout, false, 8)
	require.NoError(t, err)

	fm, loadErrs, err := cache.FrequencyMap("SSL_free")
	require.NoError(t, err)
	assert.Len(t, loadErrs, 1)
	assert.Equal(t, 1, fm.TotalTime())
}
