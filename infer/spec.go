package infer

// ChkValKey is a canonicalized check-value key: either a formatted number
// (with the ±0.25 offset folded in for gt/le and ge/lt), or one of the two
// sentinel strings below.
type ChkValKey string

const (
	ChkValNonConst ChkValKey = "non_const"
	ChkValIndirChk ChkValKey = "indir_chk"
)

// RetvalSpec is the inferred return-value sub-specification (§3.3, §4.1).
type RetvalSpec struct {
	NeedToCheck               bool
	NeedToCheckScore          float64
	ValidChkvals              map[ChkValKey]float64
	NoNeedToCheckIfSameInPost bool
	NoSameInPostNeedToCheck   bool
}

// ArgSpec is one argument's need-check verdict and supporting score.
type ArgSpec struct {
	NeedCheck bool
	Score     float64
}

// ArgPreSpec is the inferred pre-call argument sub-specification.
type ArgPreSpec struct {
	Args []ArgSpec
}

// ArgPostSpec is the inferred post-call argument sub-specification.
type ArgPostSpec struct {
	Args []ArgSpec
}

// CausalPreEntry is one required preceding call, in spec order (score
// desc, name asc) — order the checker relies on.
type CausalPreEntry struct {
	Name  string
	Score float64
	Count int
}

// CausalPostEntry is one required following call, plus the per-check-
// condition score map used to gate which retval outcomes it applies to.
type CausalPostEntry struct {
	Name  string
	Score float64
	Conds map[string]float64
	Count int
}

// CausalitySpec is the inferred causality sub-specification (§4.4).
type CausalitySpec struct {
	PreFunctions  []CausalPreEntry
	PostFunctions []CausalPostEntry
}

// Pre looks up a required pre-call neighbor by name.
func (s CausalitySpec) Pre(name string) (CausalPreEntry, bool) {
	for _, e := range s.PreFunctions {
		if e.Name == name {
			return e, true
		}
	}
	return CausalPreEntry{}, false
}

// Post looks up a required post-call neighbor by name.
func (s CausalitySpec) Post(name string) (CausalPostEntry, bool) {
	for _, e := range s.PostFunctions {
		if e.Name == name {
			return e, true
		}
	}
	return CausalPostEntry{}, false
}

// Specification is the full per-function inferred specification, the Go
// analogue of specification_map in the original implementation.
type Specification struct {
	Threshold float64
	TracesNum int
	Retval    RetvalSpec
	ArgPre    ArgPreSpec
	ArgPost   ArgPostSpec
	Causality CausalitySpec
}
