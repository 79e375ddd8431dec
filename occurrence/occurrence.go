// Package occurrence rolls up per-bitcode function-occurrence counts
// (produced externally, one JSON file per analyzed bitcode module) into a
// single function -> total-count summary, and answers threshold queries
// against it (§6).
package occurrence

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	json "github.com/goccy/go-json"
)

// perFileOccurrence is one bitcode file's per-function occurrence entry:
// whether the function has a non-void return type, and how many traced
// call slices mention it.
type perFileOccurrence struct {
	HasReturnType bool `json:"has_return_type"`
	NumSlices     int  `json:"num_slices"`
}

// Summarize walks dir for per-bitcode occurrence JSON files and folds them
// into one func_name -> total_count map (§6). Each input file is a JSON
// object mapping function name to a perFileOccurrence entry; only
// num_slices is summed across files, matching the summary's documented
// func_name -> total_count shape (see DESIGN.md decision 3 for why this
// does not reproduce the original's list-concatenation defect).
func Summarize(dir string) (map[string]int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read occurrence dir %s: %w", dir, err)
	}

	totals := map[string]int{}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		var perFile map[string]perFileOccurrence
		if err := json.Unmarshal(data, &perFile); err != nil {
			continue
		}
		for fn, occ := range perFile {
			totals[fn] += occ.NumSlices
		}
	}
	return totals, nil
}

// Write renders totals as the total_occurrences.json file under dir.
func Write(dir string, totals map[string]int) error {
	data, err := json.Marshal(totals)
	if err != nil {
		return fmt.Errorf("marshal total occurrences: %w", err)
	}
	path := filepath.Join(dir, "total_occurrences.json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// Load reads a previously written total_occurrences.json.
func Load(path string) (map[string]int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var totals map[string]int
	if err := json.Unmarshal(data, &totals); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return totals, nil
}

// Query returns every function name containing target as a substring whose
// total occurrence count exceeds minNum, sorted by descending count (ties
// broken by ascending name for deterministic output).
func Query(totals map[string]int, target string, minNum int) []Match {
	var matches []Match
	for name, count := range totals {
		if !strings.Contains(name, target) {
			continue
		}
		if count <= minNum {
			continue
		}
		matches = append(matches, Match{Name: name, Count: count})
	}
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Count != matches[j].Count {
			return matches[i].Count > matches[j].Count
		}
		return matches[i].Name < matches[j].Name
	})
	return matches
}

// Match is one query result: a function name and its total occurrence count.
type Match struct {
	Name  string
	Count int
}
