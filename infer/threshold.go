// Package infer turns a per-function feature-frequency map into the four
// sub-specifications (return-value, arg-pre, arg-post, causality) that
// package detect checks trace records against.
package infer

import "math"

// Threshold curve constants (§4.6). Empirically tuned; preserve exactly.
const (
	ThresholdFloor   = 0.5
	ThresholdCeiling = 0.8
	ThresholdSpread  = 0.3
	DefaultRho       = 500
)

// Threshold maps a trace count to an acceptance threshold via a logistic
// curve, or returns a caller override. userThreshold nil (or outside
// (0,1)) and rho nil both fall through to the curve with rho=500; rho=0
// forces the 0.8 ceiling.
func Threshold(sumTime int, userThreshold *float64, rho *int) float64 {
	if userThreshold != nil && *userThreshold > 0 && *userThreshold < 1 {
		return *userThreshold
	}
	r := DefaultRho
	if rho != nil {
		r = *rho
	}
	if r == 0 {
		return ThresholdCeiling
	}
	exponent := -(float64(sumTime) - float64(r)) / (float64(r) / 5)
	theta := ThresholdFloor + ThresholdSpread/(1+math.Exp(exponent))
	if theta >= ThresholdCeiling {
		// For large sumTime float64 rounds the curve up to the ceiling
		// itself; keep the result strictly below it.
		theta = math.Nextafter(ThresholdCeiling, 0)
	}
	return theta
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
