package infer

import (
	"sort"

	"github.com/shivasurya/apimisuse/feature"
	"github.com/shivasurya/apimisuse/keyword"
)

// Check-condition sentinel keys used to bucket a trace's retval outcome
// for the causality analyzer's post-condition filter (§9, distinct from
// the ChkValKey scheme used by the retval analyzer/checker — see
// DESIGN.md's "defalut vs no_check" decision).
const (
	ChkCondDefault = "defalut" // sic: no retval section at all
	ChkCondNoCheck = "no_check"
)

// ChkValCond buckets a record's retval outcome into the key the causality
// analyzer uses to condition post-call requirements on how the return
// value was (or wasn't) checked.
func ChkValCond(rec feature.Record) string {
	if rec.Retval == nil {
		return ChkCondDefault
	}
	c := rec.Retval.Check
	switch {
	case c.Checked && c.ComparedWithNonConst:
		return "non_const"
	case c.Checked:
		return formatNumericKey(float64(c.ComparedWithConst)) + "_" + c.CheckCond
	case c.IndirChecked:
		return string(ChkValIndirChk)
	default:
		return ChkCondNoCheck
	}
}

type causalPostStat struct {
	Total int
	Conds map[string]int
}

// CausalAnalyzer infers required preceding/following calls per function
// (§4.4), the most heuristic-heavy of the four analyzers.
type CausalAnalyzer struct {
	ChkCondStat  map[string]int
	PreFuncStat  map[string]int
	PostFuncStat map[string]*causalPostStat
}

func NewCausalAnalyzer() *CausalAnalyzer {
	return &CausalAnalyzer{
		ChkCondStat:  map[string]int{},
		PreFuncStat:  map[string]int{},
		PostFuncStat: map[string]*causalPostStat{},
	}
}

func (a *CausalAnalyzer) Update(rec feature.Record, time int) {
	if rec.Causality == nil {
		return
	}
	cond := ChkValCond(rec)
	a.ChkCondStat[cond] += time
	for fn := range rec.Causality.PreCall {
		a.PreFuncStat[fn] += time
	}
	for fn := range rec.Causality.PostCall {
		st, ok := a.PostFuncStat[fn]
		if !ok {
			st = &causalPostStat{Conds: map[string]int{}}
			a.PostFuncStat[fn] = st
		}
		st.Conds[cond] += time
		st.Total += time
	}
}

// causalEnhance rewards post-call neighbors that look like a deallocator:
// +0.3 when the target also looks like an allocator, +0.1 otherwise.
// Pre-call neighbors get no bonus.
func causalEnhance(target, causalFunc, causalType string) float64 {
	if causalType != "post.call" {
		return 0
	}
	switch {
	case keyword.IsPre(target) && keyword.IsPost(causalFunc):
		return 0.3
	case keyword.IsPost(causalFunc):
		return 0.1
	}
	return 0
}

// postCausalCond filters a post neighbor's per-check-condition time map
// down to the conditions that should gate its requirement: either it's
// the only condition observed, or its own share of that condition's total
// traces clears the threshold.
func (a *CausalAnalyzer) postCausalCond(stat *causalPostStat, threshold float64) map[string]float64 {
	result := map[string]float64{}
	validLen := len(stat.Conds)
	if t, ok := stat.Conds[ChkCondNoCheck]; ok {
		denom := a.ChkCondStat[ChkCondNoCheck]
		score := 0.0
		if denom != 0 {
			score = float64(t) / float64(denom)
		}
		if validLen == 1 || score > threshold {
			result[ChkCondNoCheck] = round3(score)
		}
		validLen--
	}
	for cond, t := range stat.Conds {
		if cond == ChkCondNoCheck {
			continue
		}
		denom := a.ChkCondStat[cond]
		score := 0.0
		if denom != 0 {
			score = float64(t) / float64(denom)
		}
		if validLen == 1 || score > threshold {
			result[cond] = round3(score)
		}
	}
	return result
}

type namedTime struct {
	Name string
	Time int
}

// sortedByTimeDescNameAsc orders entries by descending time, ascending
// name on ties — the spec's explicit tie-break (§5), chosen over the
// original implementation's incidental name-descending tie-break (a side
// effect of sorting a (time, name) tuple with a single reverse=True); see
// DESIGN.md.
func sortedByTimeDescNameAsc(m map[string]int) []namedTime {
	out := make([]namedTime, 0, len(m))
	for name, t := range m {
		out = append(out, namedTime{Name: name, Time: t})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Time != out[j].Time {
			return out[i].Time > out[j].Time
		}
		return out[i].Name < out[j].Name
	})
	return out
}

func sortedPostByTotalDescNameAsc(m map[string]*causalPostStat) []namedTime {
	out := make([]namedTime, 0, len(m))
	for name, st := range m {
		out = append(out, namedTime{Name: name, Time: st.Total})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Time != out[j].Time {
			return out[i].Time > out[j].Time
		}
		return out[i].Name < out[j].Name
	})
	return out
}

func (a *CausalAnalyzer) filterPre(target string, sumTime int, threshold float64) []CausalPreEntry {
	var kept []CausalPreEntry
	for _, item := range sortedByTimeDescNameAsc(a.PreFuncStat) {
		enhanced := 0.0
		if sumTime >= 50 {
			enhanced = causalEnhance(target, item.Name, "pre.call")
		}
		score := float64(item.Time)/float64(sumTime) + enhanced
		if score >= threshold {
			kept = append(kept, CausalPreEntry{Name: item.Name, Score: round3(score), Count: item.Time})
		}
		if float64(item.Time)/float64(sumTime) < 0.2 {
			break
		}
	}
	sort.Slice(kept, func(i, j int) bool {
		if kept[i].Score != kept[j].Score {
			return kept[i].Score > kept[j].Score
		}
		return kept[i].Name < kept[j].Name
	})
	return kept
}

func (a *CausalAnalyzer) filterPost(target string, sumTime int, threshold float64) []CausalPostEntry {
	var kept []CausalPostEntry
	for _, item := range sortedPostByTotalDescNameAsc(a.PostFuncStat) {
		stat := a.PostFuncStat[item.Name]
		enhanced := 0.0
		if sumTime >= 50 {
			enhanced = causalEnhance(target, item.Name, "post.call")
		}
		score := float64(item.Time)/float64(sumTime) + enhanced
		if score >= threshold {
			kept = append(kept, CausalPostEntry{
				Name:  item.Name,
				Score: round3(score),
				Conds: a.postCausalCond(stat, threshold),
				Count: item.Time,
			})
		}
		if float64(item.Time)/float64(sumTime) < 0.2 {
			break
		}
	}
	sort.Slice(kept, func(i, j int) bool {
		if kept[i].Score != kept[j].Score {
			return kept[i].Score > kept[j].Score
		}
		return kept[i].Name < kept[j].Name
	})
	return kept
}

// Specification finalizes the causality sub-specification for funcName.
func (a *CausalAnalyzer) Specification(funcName string, sumTime int, threshold float64, disableCode bool) CausalitySpec {
	if disableCode {
		return CausalitySpec{}
	}
	return CausalitySpec{
		PreFunctions:  a.filterPre(funcName, sumTime, threshold),
		PostFunctions: a.filterPost(funcName, sumTime, threshold),
	}
}
