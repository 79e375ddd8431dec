package detect

import (
	"sort"

	"github.com/shivasurya/apimisuse/docfeature"
	"github.com/shivasurya/apimisuse/feature"
	"github.com/shivasurya/apimisuse/infer"
	"github.com/shivasurya/apimisuse/keyword"
	"github.com/shivasurya/apimisuse/report"
)

// Options configures one detection pass, mirroring the original CLI's
// specification-inference and check-type-filter flags (§6).
type Options struct {
	Threshold         *float64
	Rho               *int
	DisableCode       bool
	CheckType         string // "" means all four check kinds
	RemoveDuplicates  bool
	OnlyReportLocations bool
}

func (o Options) checkTypes() []string {
	if o.CheckType != "" {
		return []string{o.CheckType}
	}
	return []string{report.KindRetval, report.KindArgPre, report.KindArgPost, report.KindCausality}
}

// Detector replays every supplied function's feature-frequency map against
// its inferred specification, maintaining per-kind toleration state across
// a function's traces before flushing one merged bug report (§4.9).
type Detector struct {
	doc  *docfeature.Handler
	opts Options

	bugReports map[string]map[string][]report.Finding // kind -> loc -> findings
	tolerated  map[string]map[string]bool             // kind -> loc -> tolerated
}

// tolerationTypes lists the only kinds whose findings can be retracted by a
// later conforming trace at the same location (§4.9); only a return-value
// check is cheap and reliable enough to "clear" a prior alarm this way.
var tolerationTypes = map[string]bool{report.KindRetval: true}

// NewDetector returns a ready-to-use Detector. doc may be nil to run a
// code-only detection pass.
func NewDetector(doc *docfeature.Handler, opts Options) *Detector {
	return &Detector{
		doc:  doc,
		opts: opts,
		bugReports: map[string]map[string][]report.Finding{
			report.KindRetval:    {},
			report.KindArgPre:    {},
			report.KindArgPost:   {},
			report.KindCausality: {},
		},
	}
}

func (d *Detector) initTolerationList() {
	d.tolerated = map[string]map[string]bool{
		report.KindRetval:    {},
		report.KindArgPre:    {},
		report.KindArgPost:   {},
		report.KindCausality: {},
	}
}

// DetectFunction replays one function's folded trace records against its
// freshly-inferred specification, updating the detector's accumulated bug
// reports in place.
func (d *Detector) DetectFunction(funcName string, fm *feature.FrequencyMap) {
	spec := infer.Analyze(fm, funcName, d.opts.Threshold, d.opts.Rho, d.opts.DisableCode)
	isVariadic := keyword.IsVariadic(funcName)

	var docFeat docfeature.Feature
	if d.doc != nil {
		docFeat, _ = d.doc.Retrieve(funcName)
	}

	d.initTolerationList()
	total := fm.TotalTime()

	for i, rec := range fm.Record {
		locs := fm.Loc[i]
		if len(locs) == 0 {
			continue
		}
		time := fm.Time[i]
		frequency := 0.0
		if total > 0 {
			frequency = float64(time) / float64(total)
		}
		fingerprint := fm.Fingerprint[i]

		for _, kind := range d.opts.checkTypes() {
			if isVariadic && kind != report.KindRetval {
				continue
			}
			isBug, alarmText, applicable := d.runCheck(kind, funcName, rec, spec, docFeat)
			if !applicable {
				continue
			}
			d.check(kind, funcName, locs, frequency, fingerprint, isBug, alarmText)
		}
	}
}

func (d *Detector) runCheck(kind, funcName string, rec feature.Record, spec infer.Specification, doc docfeature.Feature) (bool, string, bool) {
	switch kind {
	case report.KindRetval:
		if rec.Retval == nil && !spec.Retval.NoNeedToCheckIfSameInPost {
			return false, "", false
		}
		isBug, text := CheckRetval(funcName, rec, spec.Retval, doc.Ret)
		return isBug, text, true
	case report.KindArgPre:
		if rec.ArgPre == nil {
			return false, "", false
		}
		isBug, text := CheckArgPre(funcName, rec, spec.ArgPre, doc.Args)
		return isBug, text, true
	case report.KindArgPost:
		if rec.ArgPost == nil {
			return false, "", false
		}
		isBug, text := CheckArgPost(rec, spec.ArgPost, doc.Args)
		return isBug, text, true
	case report.KindCausality:
		if rec.Causality == nil {
			return false, "", false
		}
		isBug, text := CheckCausality(funcName, rec, spec.Causality, doc)
		return isBug, text, true
	}
	return false, "", false
}

// check applies one checker's verdict: a genuine violation is recorded
// (unless the location is currently tolerated), while a clean verdict on a
// tolerable kind retracts any prior alarm of that kind at these locations
// and marks them tolerated for the remainder of this function's pass.
func (d *Detector) check(kind, funcName string, locs []string, frequency float64, fingerprint string, isBug bool, alarmText string) {
	if isBug && alarmText != "" {
		d.updateBugReport(kind, funcName, locs, frequency, fingerprint, alarmText)
		return
	}
	if alarmText == "" && tolerationTypes[kind] {
		for _, loc := range locs {
			d.tolerated[kind][loc] = true
			delete(d.bugReports[kind], loc)
		}
	}
}

func (d *Detector) updateBugReport(kind, funcName string, locs []string, frequency float64, fingerprint, alarmText string) {
	for _, loc := range locs {
		if d.tolerated[kind][loc] {
			continue
		}
		finding := report.Finding{
			FuncName:  funcName,
			Feature:   fingerprint,
			Frequency: frequency,
			Kind:      kind,
			AlarmText: alarmText,
		}
		existing := d.bugReports[kind][loc]
		if report.ContainsFinding(existing, finding) {
			continue
		}
		d.bugReports[kind][loc] = append(existing, finding)
	}
}

// Run replays every named function found in funcs (func name -> folded
// feature-frequency map) in a deterministic, name-sorted order.
func (d *Detector) Run(funcs map[string]*feature.FrequencyMap) {
	names := make([]string, 0, len(funcs))
	for name := range funcs {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		d.DetectFunction(name, funcs[name])
	}
}

// Reports returns the accumulated per-kind, per-location bug findings.
func (d *Detector) Reports() map[string]map[string][]report.Finding {
	return d.bugReports
}
