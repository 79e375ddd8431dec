package infer

import "github.com/shivasurya/apimisuse/feature"

// Analyze runs all four analyzers over a function's feature-frequency map
// and returns its full inferred specification. A map with zero total time
// (an empty corpus for the function) yields the zero Specification.
func Analyze(fm *feature.FrequencyMap, funcName string, userThreshold *float64, rho *int, disableCode bool) Specification {
	sumTime := fm.TotalTime()
	if sumTime == 0 {
		return Specification{}
	}
	threshold := Threshold(sumTime, userThreshold, rho)

	causal := NewCausalAnalyzer()
	argPre := NewArgPreAnalyzer()
	argPost := NewArgPostAnalyzer()
	ret := NewRetvalAnalyzer()

	for i, rec := range fm.Record {
		t := fm.Time[i]
		causal.Update(rec, t)
		argPre.Update(rec, t)
		argPost.Update(rec, t)
		ret.Update(funcName, rec, t)
	}

	return Specification{
		Threshold: threshold,
		TracesNum: sumTime,
		Retval:    ret.Specification(sumTime, threshold, argPre.ArgNum, disableCode),
		ArgPre:    argPre.Specification(sumTime, threshold, disableCode),
		ArgPost:   argPost.Specification(sumTime, threshold, disableCode),
		Causality: causal.Specification(funcName, sumTime, threshold, disableCode),
	}
}
