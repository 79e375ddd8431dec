// Package detect replays a function's observed trace features against its
// inferred (and optionally documentation-fused) specification to emit
// per-location bug findings (§4.5-§4.8, §5).
package detect

import (
	"github.com/shivasurya/apimisuse/docfeature"
	"github.com/shivasurya/apimisuse/feature"
	"github.com/shivasurya/apimisuse/infer"
)

func docRetvalNeedCheck(doc docfeature.RetSpec) bool {
	return len(doc.Value) > 0
}

// CheckRetval replays one trace record's return-value handling against its
// inferred retval sub-specification, optionally fused with a documentation
// claim (§4.5). It returns whether the record is a violation and, if so,
// the alarm text describing it.
func CheckRetval(funcName string, rec feature.Record, spec infer.RetvalSpec, doc docfeature.RetSpec) (bool, string) {
	needCheck := false
	if spec.NoNeedToCheckIfSameInPost {
		if rec.Causality != nil {
			if _, ok := rec.Causality.PostCall[funcName]; ok {
				return false, ""
			}
		}
		if spec.NoSameInPostNeedToCheck {
			needCheck = true
		}
	}
	if rec.Retval == nil {
		return false, ""
	}
	retChecked := rec.Retval.Check.Checked || rec.Retval.Check.IndirChecked

	if !needCheck && !spec.NeedToCheck && !docRetvalNeedCheck(doc) {
		return false, ""
	}

	if !retChecked {
		if rec.Retval.Ctx.Returned {
			return false, ""
		}
		if rec.Retval.Ctx.DerefedRead || rec.Retval.Ctx.DerefedWrite {
			return true, "Dereferenced read/write the return value without check. "
		}
		return true, "Lacking proper check for the return value. "
	}

	if len(spec.ValidChkvals) == 0 {
		return false, ""
	}

	var chkval infer.ChkValKey
	switch {
	case rec.Retval.Check.Checked:
		chkval = infer.ChkValKeyForChecked(rec.Retval.Check)
	case rec.Retval.Check.IndirChecked:
		chkval = infer.ChkValIndirChk
	}

	if _, ok := spec.ValidChkvals[chkval]; ok {
		return false, ""
	}
	if infer.DocHasRetval(chkval, doc.Value) {
		return false, ""
	}
	return true, "The check condition for the return value is potentially wrong. "
}
