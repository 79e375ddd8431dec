// Package corpus discovers and caches per-function trace-feature files laid
// out under the §6 directory convention: <outdir>/features/<func_name>/
// <id>.fea.json.
package corpus

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/shivasurya/apimisuse/feature"
)

// Layout discovers per-function feature file paths under an output
// directory, optionally narrowed to a single target function name.
type Layout struct {
	root string
}

// NewLayout returns a Layout rooted at <outdir>/features.
func NewLayout(outDir string) *Layout {
	return &Layout{root: filepath.Join(outDir, "features")}
}

// Functions lists the per-function subdirectory names discovered under the
// layout's root, optionally filtered to those matching targetFn (substring,
// case-sensitive, mirroring the original's directory-name match). An empty
// targetFn matches every function.
func (l *Layout) Functions(targetFn string) ([]string, error) {
	entries, err := os.ReadDir(l.root)
	if err != nil {
		return nil, fmt.Errorf("read feature dir %s: %w", l.root, err)
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if targetFn != "" && !strings.Contains(e.Name(), targetFn) {
			continue
		}
		names = append(names, e.Name())
	}
	return names, nil
}

// FeatureFiles lists every .fea.json trace file for one function.
func (l *Layout) FeatureFiles(funcName string) ([]string, error) {
	dir := filepath.Join(l.root, funcName)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read feature files for %s: %w", funcName, err)
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".fea.json") {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	return paths, nil
}

// Cache memoizes a function's already-folded feature-frequency map across
// repeated lookups within one process (e.g. a --target-fn detect run that
// revisits a function via a doc-fallback pass), bounded to avoid unbounded
// growth over a large corpus.
type Cache struct {
	layout           *Layout
	dedupPerLocation bool
	maps             *lru.Cache[string, *feature.FrequencyMap]
}

// NewCache returns a Cache backed by an LRU of the given capacity.
func NewCache(layout *Layout, dedupPerLocation bool, capacity int) (*Cache, error) {
	maps, err := lru.New[string, *feature.FrequencyMap](capacity)
	if err != nil {
		return nil, fmt.Errorf("new corpus cache: %w", err)
	}
	return &Cache{layout: layout, dedupPerLocation: dedupPerLocation, maps: maps}, nil
}

// FrequencyMap returns funcName's folded feature-frequency map, loading and
// caching it on first access. Per-file load errors are reported but do not
// abort the fold (§7).
func (c *Cache) FrequencyMap(funcName string) (*feature.FrequencyMap, []feature.LoadError, error) {
	if fm, ok := c.maps.Get(funcName); ok {
		return fm, nil, nil
	}
	paths, err := c.layout.FeatureFiles(funcName)
	if err != nil {
		return nil, nil, err
	}
	fm, loadErrs := feature.LoadAndFold(paths, c.dedupPerLocation)
	c.maps.Add(funcName, fm)
	return fm, loadErrs, nil
}
