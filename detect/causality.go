package detect

import (
	"fmt"
	"strings"

	"github.com/shivasurya/apimisuse/docfeature"
	"github.com/shivasurya/apimisuse/feature"
	"github.com/shivasurya/apimisuse/infer"
	"github.com/shivasurya/apimisuse/keyword"
)

// retIsUsed reports whether the trace both returns and checks the return
// value, the precondition for reasoning about which post-call neighbor a
// given success/failure outcome requires.
func retIsUsed(rec feature.Record) bool {
	if rec.Retval == nil {
		return false
	}
	return rec.Retval.Check.Checked || rec.Retval.Check.IndirChecked
}

// isErrorHandling reports whether the trace's observed retval check
// direction already matches the documentation's stated failure condition,
// in which case any missing cleanup call is presumed to be on the (already
// handled) error path rather than a genuine causal-specification miss.
func isErrorHandling(rec feature.Record, doc docfeature.Feature) bool {
	if rec.Retval == nil || len(doc.Ret.Cond) == 0 {
		return false
	}
	wantsFail := false
	for _, cond := range doc.Ret.Cond {
		if strings.Contains(strings.ToLower(cond), "fail") {
			wantsFail = true
		}
	}
	if !wantsFail {
		return false
	}
	c := rec.Retval.Check
	return c.Checked && (c.CheckCond == feature.CondNe || c.CheckCond == feature.CondLt || c.CheckCond == feature.CondLe)
}

// hasSamePrefix reports whether candidate shares target's family prefix up
// to target's last underscore (e.g. "EVP_CIPHER_CTX_new" and
// "EVP_CIPHER_CTX_free" both carry the "EVP_CIPHER_CTX" family), used to
// suppress causal alarms that are really just naming-convention collisions
// within one API family.
func hasSamePrefix(target, candidate string) bool {
	idx := strings.LastIndexByte(target, '_')
	if idx <= 0 || idx >= len(candidate) {
		return false
	}
	return target[:idx] == candidate[:idx]
}

// ignoreCausalPre reports whether any of the trace's *observed* pre.call
// neighbors is itself pre-keyword-like and shares target's family prefix;
// when true, the whole pre direction is skipped for this trace rather than
// flagging what is probably a within-family naming collision. Scoped to the
// pre direction only (§4.4); the post direction has no analogous
// suppression.
func ignoreCausalPre(target string, observed map[string]feature.CausalNeighbor) bool {
	for name := range observed {
		if keyword.IsPre(name) && hasSamePrefix(target, name) {
			return true
		}
	}
	return false
}

// variantMatch reports whether candidate appears, as a substring, among
// the trace's observed neighbor names for this direction — matching e.g. a
// spec candidate "free" against an observed "my_struct_free".
func variantMatch(candidate string, observed map[string]feature.CausalNeighbor) (string, bool) {
	for name := range observed {
		if strings.Contains(name, candidate) {
			return name, true
		}
	}
	return "", false
}

func checkCausalPre(target string, rec feature.Record, entries []infer.CausalPreEntry, docNames []string) string {
	var observed map[string]feature.CausalNeighbor
	if rec.Causality != nil {
		observed = rec.Causality.PreCall
	}
	if ignoreCausalPre(target, observed) {
		return ""
	}

	var text string
	for _, e := range entries {
		if e.Count == 1 {
			continue
		}
		if _, ok := variantMatch(e.Name, observed); !ok {
			text += fmt.Sprintf("Lack pre.call: %s. ", e.Name)
		}
		if len(entries) > 2 {
			break
		}
	}
	if text == "" {
		text = docFallback(docNames, observed, "pre.call")
	}
	return text
}

func checkCausalPost(target string, rec feature.Record, entries []infer.CausalPostEntry, docNames []string, chkvalCond string) string {
	var observed map[string]feature.CausalNeighbor
	if rec.Causality != nil {
		observed = rec.Causality.PostCall
	}

	var text string
	for _, e := range entries {
		if e.Count == 1 {
			continue
		}
		if len(e.Conds) > 0 {
			if _, ok := e.Conds[chkvalCond]; !ok {
				continue
			}
		}
		if _, ok := variantMatch(e.Name, observed); !ok {
			text += fmt.Sprintf("Lack post.call: %s. ", e.Name)
		}
		if len(entries) > 2 {
			break
		}
	}
	if text == "" {
		text = docFallback(docNames, observed, "post.call")
	}
	return text
}

// docFallback emits a single alarm naming every documentation-declared
// required neighbor when the trace observes none of them, and only when no
// code-inferred alarm already fired for this direction (§4.4, §4.7).
func docFallback(docNames []string, observed map[string]feature.CausalNeighbor, causalType string) string {
	if len(docNames) == 0 {
		return ""
	}
	for _, name := range docNames {
		if _, ok := variantMatch(name, observed); ok {
			return ""
		}
	}
	return fmt.Sprintf("Lack one of them in %s: %v. (by documents spec.) ", causalType, docNames)
}

// CheckCausality replays one trace record's pre/post call neighbors
// against the inferred (and doc-fused) causality sub-specification (§4.8).
// Names carrying a deallocator-like or other stateful-verb keyword
// (keyword.IsSubsequent) are checked for required preceding calls; every
// name that is not deallocator-like (when the return value is checked and
// the trace is not already on a recognized error path) is checked for
// required following calls; a deallocator-like target whose only post.call
// neighbor is itself, with no pre.call entry for itself, flags a potential
// double-free.
func CheckCausality(target string, rec feature.Record, spec infer.CausalitySpec, doc docfeature.Feature) (bool, string) {
	var text string

	if keyword.IsSubsequent(target) {
		text += checkCausalPre(target, rec, spec.PreFunctions, doc.Causality.Pre)
	}

	if !isErrorHandling(rec, doc) {
		if !keyword.IsPost(target) && retIsUsed(rec) {
			chkvalCond := infer.ChkValCond(rec)
			text += checkCausalPost(target, rec, spec.PostFunctions, doc.Causality.Post, chkvalCond)
		} else if keyword.IsPost(target) && rec.Causality != nil {
			if _, inPost := rec.Causality.PostCall[target]; inPost && len(rec.Causality.PostCall) == 1 {
				if _, inPre := rec.Causality.PreCall[target]; !inPre {
					text += fmt.Sprintf("Potential: duplicated call of %s in post.call. ", target)
				}
			}
		}
	}

	return text != "", text
}
