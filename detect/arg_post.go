package detect

import (
	"fmt"

	"github.com/shivasurya/apimisuse/docfeature"
	"github.com/shivasurya/apimisuse/feature"
	"github.com/shivasurya/apimisuse/infer"
)

// CheckArgPost replays one trace record's post-call argument state against
// its inferred arg-post sub-specification (§4.7). Constant or global
// arguments (per the matching arg.pre record, when present) are never
// expected to be checked afterward.
func CheckArgPost(rec feature.Record, spec infer.ArgPostSpec, doc docfeature.ArgsSpec) (bool, string) {
	if rec.ArgPost == nil {
		return false, ""
	}
	if len(spec.Args) != rec.ArgPost.ArgNum {
		return false, ""
	}

	var text string
	for i, item := range rec.ArgPost.Feature {
		if argIsConstantOrGlobal(rec, i) {
			continue
		}
		docNeedCheck := false
		if i < len(doc.Post) {
			docNeedCheck = doc.Post[i]
		}
		if violated, msg := checkArgPostFeature(item, spec.Args[i].NeedCheck, i, docNeedCheck); violated {
			text += msg
		}
	}
	return text != "", text
}

func checkArgPostFeature(item feature.ArgPostItem, needCheck bool, argIndex int, docNeedCheck bool) (bool, string) {
	if item.Returned {
		return false, ""
	}
	if (needCheck || docNeedCheck) && !item.UsedInCheck {
		if item.DerefedRead || item.DerefedWrite {
			return true, fmt.Sprintf("Dereferenced without checking arg.%d.post. ", argIndex)
		}
		return true, fmt.Sprintf("Potential lack of check for arg.%d.post. ", argIndex)
	}
	return false, ""
}

func argIsConstantOrGlobal(rec feature.Record, argIndex int) bool {
	if rec.ArgPre == nil || argIndex >= len(rec.ArgPre.Feature) {
		return false
	}
	item := rec.ArgPre.Feature[argIndex]
	return item.IsConstant || item.IsGlobal
}
