package infer

import (
	"strconv"

	"github.com/shivasurya/apimisuse/feature"
)

// ChkValKeyForChecked canonicalizes a checked retval's comparison into a
// check-value key (§4.1). Callers must only invoke this when
// check.Checked is true; an indirectly-checked retval uses ChkValIndirChk
// directly instead.
func ChkValKeyForChecked(check feature.RetvalCheck) ChkValKey {
	if check.ComparedWithNonConst {
		return ChkValNonConst
	}
	switch check.CheckCond {
	case feature.CondGt, feature.CondLe:
		return ChkValKey(formatNumericKey(float64(check.ComparedWithConst) + 0.25))
	case feature.CondGe, feature.CondLt:
		return ChkValKey(formatNumericKey(float64(check.ComparedWithConst) - 0.25))
	default:
		return ChkValKey(strconv.Itoa(check.ComparedWithConst))
	}
}

func formatNumericKey(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// DocHasRetval reports whether a checked value's integer const component
// (if any) appears in the documentation's list of known return values.
func DocHasRetval(key ChkValKey, docValues []int) bool {
	n, err := strconv.Atoi(string(key))
	if err != nil {
		return false
	}
	for _, v := range docValues {
		if v == n {
			return true
		}
	}
	return false
}

// RetvalAnalyzer aggregates retval features across a function's traces to
// infer whether/how its return value must be checked (§4.1).
type RetvalAnalyzer struct {
	CheckedCount  int
	CurChecked    int // checked traces whose func also appears in causality.post.call
	HasSameInPost int
	chkvalTime    map[ChkValKey]int
}

// NewRetvalAnalyzer returns a ready-to-use analyzer.
func NewRetvalAnalyzer() *RetvalAnalyzer {
	return &RetvalAnalyzer{chkvalTime: map[ChkValKey]int{}}
}

// Update folds one trace's record into the analyzer.
func (a *RetvalAnalyzer) Update(funcName string, rec feature.Record, time int) {
	if rec.Retval == nil {
		return
	}
	hasSameInPost := false
	if rec.Causality != nil {
		_, hasSameInPost = rec.Causality.PostCall[funcName]
	}
	if hasSameInPost {
		a.HasSameInPost += time
	}
	check := rec.Retval.Check
	var chkval ChkValKey
	hasChkval := false
	switch {
	case check.Checked:
		a.CheckedCount += time
		if hasSameInPost {
			a.CurChecked += time
		}
		chkval = ChkValKeyForChecked(check)
		hasChkval = true
	case check.IndirChecked:
		chkval = ChkValIndirChk
		a.CheckedCount += time
		if hasSameInPost {
			a.CurChecked += time
		}
		hasChkval = true
	}
	if hasChkval {
		a.chkvalTime[chkval] += time
	}
}

// Specification finalizes the return-value sub-specification. argNum is
// the arg-pre analyzer's inferred argument count for the same function —
// the self-freeing heuristics only activate for single-argument functions,
// to avoid ambiguity about which argument the "same in post" call reuses.
func (a *RetvalAnalyzer) Specification(sumTime int, threshold float64, argNum int, disableCode bool) RetvalSpec {
	var noNeedIfSameInPost, noSameNeedCheck bool
	if argNum == 1 {
		if a.HasSameInPost != 0 {
			noNeedIfSameInPost = float64(a.CurChecked)/float64(a.HasSameInPost) < threshold
		}
		if sumTime > a.HasSameInPost {
			noSameNeedCheck = float64(a.CheckedCount-a.CurChecked)/float64(sumTime-a.HasSameInPost) > threshold
		}
	}
	if disableCode {
		return RetvalSpec{
			ValidChkvals:              map[ChkValKey]float64{},
			NoNeedToCheckIfSameInPost: noNeedIfSameInPost,
		}
	}
	needToCheckScore := round3(float64(a.CheckedCount) / float64(sumTime))
	valid := map[ChkValKey]float64{}
	n := len(a.chkvalTime)
	if a.CheckedCount > 0 && n > 0 {
		for k, t := range a.chkvalTime {
			if float64(t)/float64(a.CheckedCount) >= 1/float64(n) {
				valid[k] = round3(float64(t) / float64(a.CheckedCount))
			}
		}
	}
	return RetvalSpec{
		NeedToCheck:               float64(a.CheckedCount)/float64(sumTime) >= threshold,
		NeedToCheckScore:          needToCheckScore,
		ValidChkvals:              valid,
		NoNeedToCheckIfSameInPost: noNeedIfSameInPost,
		NoSameInPostNeedToCheck:   noSameNeedCheck,
	}
}
