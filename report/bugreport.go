package report

import (
	"fmt"
	"io"
	"sort"
	"strings"
)

const (
	KindRetval    = "retval"
	KindArgPre    = "arg.pre"
	KindArgPost   = "arg.post"
	KindCausality = "causality"
)

// kindOrder fixes the merge order used when two kinds produce a finding at
// the same location, so output is deterministic regardless of map
// iteration order upstream.
var kindOrder = []string{KindRetval, KindArgPre, KindArgPost, KindCausality}

// Resort merges the four per-kind, per-location finding tables into one
// per-location table (§4.9), concatenating on collision.
func Resort(byKind map[string]map[string][]Finding) map[string][]Finding {
	merged := map[string][]Finding{}
	for _, kind := range kindOrder {
		for loc, findings := range byKind[kind] {
			merged[loc] = append(merged[loc], findings...)
		}
	}
	return merged
}

// WriteText renders the merged, location-sorted findings as the bug-report
// log (§6). onlyLocations selects the terse one-line-per-location form over
// the full multi-line form.
func WriteText(w io.Writer, byKind map[string]map[string][]Finding, onlyLocations bool) error {
	merged := Resort(byKind)
	locs := make([]string, 0, len(merged))
	for loc := range merged {
		locs = append(locs, loc)
	}
	sort.Strings(locs)

	for _, loc := range locs {
		findings := merged[loc]
		if onlyLocations {
			writeLocationSummary(w, loc, findings)
			continue
		}
		writeLocationDetail(w, loc, findings)
	}
	return nil
}

func writeLocationSummary(w io.Writer, loc string, findings []Finding) {
	names := uniqueSorted(func(f Finding) string { return f.FuncName }, findings)
	kinds := uniqueSorted(func(f Finding) string { return f.Kind }, findings)
	fmt.Fprintf(w, "%s: %s, TYPE: %s\n", strings.Join(names, ","), loc, strings.Join(kinds, ","))
}

func writeLocationDetail(w io.Writer, loc string, findings []Finding) {
	byFunc := map[string][]Finding{}
	var funcOrder []string
	for _, f := range findings {
		if _, ok := byFunc[f.FuncName]; !ok {
			funcOrder = append(funcOrder, f.FuncName)
		}
		byFunc[f.FuncName] = append(byFunc[f.FuncName], f)
	}
	sort.Strings(funcOrder)

	for _, fn := range funcOrder {
		fmt.Fprintf(w, "%s:\n\tLocation:%s\n", fn, loc)
		seenFeature := map[string]bool{}
		for _, f := range byFunc[fn] {
			if seenFeature[f.Feature] {
				continue
			}
			seenFeature[f.Feature] = true
			fmt.Fprintf(w, "\tTYPE: %s. feature: %s\n\tViolation: %s\n", f.Kind, f.Feature, f.AlarmText)
		}
	}
}

func uniqueSorted(key func(Finding) string, findings []Finding) []string {
	seen := map[string]bool{}
	var out []string
	for _, f := range findings {
		k := key(f)
		if !seen[k] {
			seen[k] = true
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}
