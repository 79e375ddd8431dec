// Package report assembles per-location bug findings produced by the
// detect package into deduplicated, sorted output (§4.9, §6).
package report

// Finding is one checker's verdict against one trace's feature at one
// location.
type Finding struct {
	FuncName  string
	Feature   string // the triggering record's fingerprint
	Frequency float64
	Kind      string // "retval", "arg.pre", "arg.post", or "causality"
	AlarmText string
	DocBacked bool // marks a documentation-backed finding; detect.Detector never sets it, and the SARIF formatter appends "(documentation-backed)" when it is true
}

func (f Finding) equal(other Finding) bool {
	return f.FuncName == other.FuncName &&
		f.Feature == other.Feature &&
		f.Kind == other.Kind &&
		f.AlarmText == other.AlarmText
}

// ContainsFinding reports whether an equal finding already exists,
// preventing duplicate entries at the same location (§4.9).
func ContainsFinding(findings []Finding, f Finding) bool {
	for _, existing := range findings {
		if existing.equal(f) {
			return true
		}
	}
	return false
}
