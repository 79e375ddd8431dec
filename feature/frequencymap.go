package feature

import (
	"fmt"
	"os"

	json "github.com/goccy/go-json"
)

// FrequencyMap is the per-function feature-frequency map of spec §3.2,
// stored as four parallel slices of equal length (fingerprint, decoded
// record, time, loc). It is insertion-ordered, not a
// hash map — fingerprints are compared as strings but the slot order
// reflects first-seen order, which report generation relies on for
// deterministic output.
type FrequencyMap struct {
	Fingerprint []string
	Record      []Record
	Time        []int
	Loc         [][]string

	index map[string]int
}

// NewFrequencyMap returns an empty map ready for Add.
func NewFrequencyMap() *FrequencyMap {
	return &FrequencyMap{index: make(map[string]int)}
}

// TotalTime returns Σtime[i], the total trace count folded into the map.
func (m *FrequencyMap) TotalTime() int {
	sum := 0
	for _, t := range m.Time {
		sum += t
	}
	return sum
}

func contains(locs []string, loc string) bool {
	for _, l := range locs {
		if l == loc {
			return true
		}
	}
	return false
}

// Add folds one trace's record at loc into the map. A loc of "" is the
// caller's signal to skip the record entirely (§6: "empty loc causes the
// record to be ignored") and must be filtered out before calling Add.
//
// dedupPerLocation caps time[i] to one increment per (fingerprint, loc)
// pair; by default every trace increments time[i], even repeats at the
// same location.
func (m *FrequencyMap) Add(rec Record, loc string, dedupPerLocation bool) {
	fp := Fingerprint(rec)
	idx, ok := m.index[fp]
	if !ok {
		m.index[fp] = len(m.Fingerprint)
		m.Fingerprint = append(m.Fingerprint, fp)
		m.Record = append(m.Record, rec)
		m.Time = append(m.Time, 1)
		m.Loc = append(m.Loc, []string{loc})
		return
	}
	if !contains(m.Loc[idx], loc) {
		m.Loc[idx] = append(m.Loc[idx], loc)
		m.Time[idx]++
		return
	}
	if !dedupPerLocation {
		m.Time[idx]++
	}
}

// LoadError records one trace file that could not be folded.
type LoadError struct {
	Path string
	Err  error
}

func (e LoadError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

// LoadAndFold reads every path as a JSON trace file and folds it into a
// fresh FrequencyMap. Per §7, a malformed file never aborts the load: it is
// reported back in the returned error slice and otherwise skipped, and a
// record with an empty loc is silently dropped.
func LoadAndFold(paths []string, dedupPerLocation bool) (*FrequencyMap, []LoadError) {
	m := NewFrequencyMap()
	var errs []LoadError
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			errs = append(errs, LoadError{Path: path, Err: err})
			continue
		}
		var tf traceFile
		if err := json.Unmarshal(data, &tf); err != nil {
			errs = append(errs, LoadError{Path: path, Err: err})
			continue
		}
		if tf.Loc == "" {
			continue
		}
		m.Add(tf.Record, tf.Loc, dedupPerLocation)
	}
	return m, errs
}
