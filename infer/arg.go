package infer

import "github.com/shivasurya/apimisuse/feature"

// ArgPreAnalyzer infers, per argument position, whether the majority of
// traces pre-check that argument (§4.2). arg_num is learned lazily from
// the first record that carries an arg.pre section; once learned, a later
// record whose arg_num disagrees (variadic mismatch) is skipped, mirroring
// §3.1's "record treated as variadic, excluded from argument analysis".
type ArgPreAnalyzer struct {
	ArgNum           int
	ArgsCheckedCount []int
}

// NewArgPreAnalyzer returns an analyzer with its argument count unlearned.
func NewArgPreAnalyzer() *ArgPreAnalyzer {
	return &ArgPreAnalyzer{ArgNum: -1}
}

func (a *ArgPreAnalyzer) Update(rec feature.Record, time int) {
	if rec.ArgPre == nil {
		return
	}
	ap := rec.ArgPre
	if a.ArgNum == -1 {
		a.ArgNum = ap.ArgNum
		a.ArgsCheckedCount = make([]int, a.ArgNum)
	} else if a.ArgNum == 0 || ap.ArgNum != a.ArgNum {
		return
	}
	for i := 0; i < a.ArgNum; i++ {
		if ap.Feature[i].Check.Checked {
			a.ArgsCheckedCount[i] += time
		}
	}
}

func (a *ArgPreAnalyzer) Specification(sumTime int, threshold float64, disableCode bool) ArgPreSpec {
	specs := make([]ArgSpec, len(a.ArgsCheckedCount))
	for i, c := range a.ArgsCheckedCount {
		if disableCode {
			specs[i] = ArgSpec{}
			continue
		}
		specs[i] = ArgSpec{
			NeedCheck: float64(c)/float64(sumTime) >= threshold,
			Score:     round3(float64(c) / float64(sumTime)),
		}
	}
	return ArgPreSpec{Args: specs}
}

// ArgPostAnalyzer infers, per argument position, whether the majority of
// traces check that argument's value after the call (§4.3). Constant
// arguments (per the matching arg.pre record, when present) never count
// toward the checked total.
type ArgPostAnalyzer struct {
	ArgNum           int
	ArgsCheckedCount []int
}

func NewArgPostAnalyzer() *ArgPostAnalyzer {
	return &ArgPostAnalyzer{ArgNum: -1}
}

func (a *ArgPostAnalyzer) Update(rec feature.Record, time int) {
	if rec.ArgPost == nil {
		return
	}
	ap := rec.ArgPost
	if a.ArgNum == -1 {
		a.ArgNum = ap.ArgNum
		a.ArgsCheckedCount = make([]int, a.ArgNum)
	} else if a.ArgNum == 0 || ap.ArgNum != a.ArgNum {
		return
	}
	for i := 0; i < a.ArgNum; i++ {
		isNotConstant := true
		if rec.ArgPre != nil && i < len(rec.ArgPre.Feature) {
			isNotConstant = !rec.ArgPre.Feature[i].IsConstant
		}
		if isNotConstant && ap.Feature[i].UsedInCheck {
			a.ArgsCheckedCount[i] += time
		}
	}
}

func (a *ArgPostAnalyzer) Specification(sumTime int, threshold float64, disableCode bool) ArgPostSpec {
	specs := make([]ArgSpec, len(a.ArgsCheckedCount))
	for i, c := range a.ArgsCheckedCount {
		if disableCode {
			specs[i] = ArgSpec{}
			continue
		}
		specs[i] = ArgSpec{
			NeedCheck: float64(c)/float64(sumTime) >= threshold,
			Score:     round3(float64(c) / float64(sumTime)),
		}
	}
	return ArgPostSpec{Args: specs}
}
