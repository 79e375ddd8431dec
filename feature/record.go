// Package feature models the per-trace feature record produced by the
// external trace extractor, and folds many such records into a per-function
// feature-frequency map.
package feature

import json "github.com/goccy/go-json"

// Check-condition operators carried on a retval or arg.pre check.
const (
	CondEq = "eq"
	CondNe = "ne"
	CondLt = "lt"
	CondLe = "le"
	CondGt = "gt"
	CondGe = "ge"
)

// RetvalCheck is the "check" subsection of a retval feature.
type RetvalCheck struct {
	Checked              bool   `json:"checked"`
	IndirChecked         bool   `json:"indir_checked"`
	CheckCond            string `json:"check_cond"`
	ComparedWithConst    int    `json:"compared_with_const"`
	ComparedWithNonConst bool   `json:"compared_with_non_const"`
}

// RetvalCtx is the "ctx" subsection of a retval feature: how the value was
// otherwise consumed by the caller, independent of any explicit check.
type RetvalCtx struct {
	DerefedRead    bool `json:"derefed_read"`
	DerefedWrite   bool `json:"derefed_write"`
	IndirReturned  bool `json:"indir_returned"`
	Returned       bool `json:"returned"`
	StoredNotLocal bool `json:"stored_not_local"`
	UsedInBin      bool `json:"used_in_bin"`
	UsedInCall     bool `json:"used_in_call"`
}

// Retval is present when the function returns a value used by the caller.
type Retval struct {
	Check RetvalCheck `json:"check"`
	Ctx   RetvalCtx   `json:"ctx"`
}

// ArgCheck is the "check" subsection of a single arg.pre argument.
type ArgCheck struct {
	Checked              bool   `json:"checked"`
	CheckCond            string `json:"check_cond"`
	ComparedWithConst    int    `json:"compared_with_const"`
	ComparedWithNonConst bool   `json:"compared_with_non_const"`
}

// ArgPreItem describes one argument's pre-call state.
type ArgPreItem struct {
	Check      ArgCheck `json:"check"`
	IsAlloca   bool     `json:"is_alloca"`
	IsGlobal   bool     `json:"is_global"`
	IsConstant bool     `json:"is_constant"`
}

// ArgPre is the pre-call argument-state section.
type ArgPre struct {
	ArgNum  int          `json:"arg_num"`
	Feature []ArgPreItem `json:"feature"`
}

// ArgPostItem describes one argument's post-call state.
type ArgPostItem struct {
	DerefedRead  bool `json:"derefed_read"`
	DerefedWrite bool `json:"derefed_write"`
	Returned     bool `json:"returned"`
	UsedInCheck  bool `json:"used_in_check"`
}

// ArgPost is the post-call argument-state section.
type ArgPost struct {
	ArgNum  int           `json:"arg_num"`
	Feature []ArgPostItem `json:"feature"`
}

// CausalNeighbor records how a neighboring call co-occurred with the target.
type CausalNeighbor struct {
	UsedAsArg     bool `json:"used_as_arg"`
	ShareArgument bool `json:"share_argument"`
}

// Causality is the set of functions observed immediately before/after the
// target call within the same trace.
type Causality struct {
	PreCall  map[string]CausalNeighbor `json:"pre.call"`
	PostCall map[string]CausalNeighbor `json:"post.call"`
}

// Record is one trace's feature record, with up to four independently
// optional sections. A nil section must be treated as "absent", never as
// "present with zero values" — the checkers depend on this distinction.
type Record struct {
	Retval    *Retval    `json:"retval,omitempty"`
	ArgPre    *ArgPre    `json:"arg.pre,omitempty"`
	ArgPost   *ArgPost   `json:"arg.post,omitempty"`
	Causality *Causality `json:"causality,omitempty"`
}

// traceFile is the on-disk shape: Record's sections plus a sibling "loc"
// string (§6). loc is stripped before the record participates in folding.
type traceFile struct {
	Loc string `json:"loc"`
	Record
}

// Fingerprint returns a canonical, order-normalized string representation
// of rec usable for structural-equality comparisons and as a stable report
// key. Map-valued fields (Causality's neighbor maps) are emitted with keys
// sorted lexically by the encoder, so two structurally-equal records with
// differently-ordered maps always fingerprint identically.
func Fingerprint(rec Record) string {
	b, err := json.Marshal(rec)
	if err != nil {
		// Marshal of our own closed set of field types cannot fail; if it
		// somehow does, fall back to a fingerprint that is merely stable,
		// not standards-compliant JSON.
		return "!!unmarshalable"
	}
	return string(b)
}
