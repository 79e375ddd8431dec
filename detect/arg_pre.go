package detect

import (
	"fmt"

	"github.com/shivasurya/apimisuse/docfeature"
	"github.com/shivasurya/apimisuse/feature"
	"github.com/shivasurya/apimisuse/infer"
	"github.com/shivasurya/apimisuse/keyword"
)

// CheckArgPre replays one trace record's pre-call argument state against
// its inferred arg-pre sub-specification (§4.6). Post-style functions
// (named like a deallocator) are instead checked for stack-lifetime bugs:
// an argument allocated on the stack but passed to something that frees it.
func CheckArgPre(funcName string, rec feature.Record, spec infer.ArgPreSpec, doc docfeature.ArgsSpec) (bool, string) {
	if rec.ArgPre == nil {
		return false, ""
	}
	if len(spec.Args) != rec.ArgPre.ArgNum {
		return false, ""
	}

	if keyword.IsPost(funcName) {
		var text string
		for i, item := range rec.ArgPre.Feature {
			if item.IsAlloca {
				text += fmt.Sprintf("Potential: arg %d is on stack and freed. ", i)
			}
		}
		return text != "", text
	}

	var text string
	for i, item := range rec.ArgPre.Feature {
		docNeedCheck := false
		if i < len(doc.Pre) {
			docNeedCheck = doc.Pre[i]
		}
		if violated, msg := checkArgPreFeature(item, spec.Args[i].NeedCheck, i, docNeedCheck); violated {
			text += msg
		}
	}
	return text != "", text
}

func checkArgPreFeature(item feature.ArgPreItem, needCheck bool, argIndex int, docNeedCheck bool) (bool, string) {
	checked := item.Check.Checked
	if (needCheck || docNeedCheck) && !checked && !item.IsGlobal {
		return true, fmt.Sprintf("violate the most-frequent check for arg.%d.pre. ", argIndex)
	}
	return false, ""
}
