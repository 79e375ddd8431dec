package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	sarif "github.com/owenrumney/go-sarif/v2/sarif"
	"github.com/shivasurya/apimisuse/report"
)

// SARIFFormatter formats a merged, per-location bug report as SARIF 2.1.0,
// one rule per (kind, function name) pair. Adapted from the teacher's
// dsl.EnrichedDetection-based formatter of the same name.
type SARIFFormatter struct {
	writer  io.Writer
	options *OutputOptions
}

// NewSARIFFormatter creates a SARIF formatter writing to stdout.
func NewSARIFFormatter(opts *OutputOptions) *SARIFFormatter {
	if opts == nil {
		opts = NewDefaultOptions()
	}
	return &SARIFFormatter{writer: os.Stdout, options: opts}
}

// NewSARIFFormatterWithWriter creates a formatter with a custom writer, for
// testing.
func NewSARIFFormatterWithWriter(w io.Writer, opts *OutputOptions) *SARIFFormatter {
	sf := NewSARIFFormatter(opts)
	sf.writer = w
	return sf
}

// Format renders the location-keyed bug report (report.Resort's output) as
// one SARIF run.
func (f *SARIFFormatter) Format(byLocation map[string][]report.Finding) error {
	doc, err := sarif.New(sarif.Version210)
	if err != nil {
		return err
	}

	run := sarif.NewRunWithInformationURI("apimisuse", "https://github.com/shivasurya/apimisuse")

	locs := make([]string, 0, len(byLocation))
	for loc := range byLocation {
		locs = append(locs, loc)
	}
	sort.Strings(locs)

	seenRules := map[string]bool{}
	for _, loc := range locs {
		for _, finding := range byLocation[loc] {
			ruleID := finding.Kind + ":" + finding.FuncName
			if !seenRules[ruleID] {
				seenRules[ruleID] = true
				f.buildRule(run, ruleID, finding)
			}
			f.buildResult(run, ruleID, loc, finding)
		}
	}

	doc.AddRun(run)

	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(doc)
}

func (f *SARIFFormatter) buildRule(run *sarif.Run, ruleID string, finding report.Finding) {
	name := fmt.Sprintf("%s check on %s", finding.Kind, finding.FuncName)
	run.AddRule(ruleID).
		WithName(name).
		WithDescription(fmt.Sprintf("Call sites of %s deviating from its inferred %s specification.", finding.FuncName, finding.Kind)).
		WithHelpURI("https://github.com/shivasurya/apimisuse").
		WithDefaultConfiguration(sarif.NewReportingConfiguration().WithLevel(levelForKind(finding.Kind)))
}

func levelForKind(kind string) string {
	switch kind {
	case report.KindRetval, report.KindArgPost:
		return "error"
	case report.KindCausality:
		return "warning"
	default:
		return "warning"
	}
}

func (f *SARIFFormatter) buildResult(run *sarif.Run, ruleID, loc string, finding report.Finding) {
	message := finding.AlarmText
	if finding.DocBacked {
		message += " (documentation-backed)"
	}

	result := run.CreateResultForRule(ruleID).WithMessage(sarif.NewTextMessage(message))

	file, line := splitLocation(loc)
	region := sarif.NewRegion().WithStartLine(line)
	location := sarif.NewLocation().WithPhysicalLocation(
		sarif.NewPhysicalLocation().
			WithArtifactLocation(sarif.NewArtifactLocation().WithUri(file)).
			WithRegion(region),
	)
	result.AddLocation(location)
}

// splitLocation splits a "file:line" source location (§3.1's opaque,
// upstream-produced loc string) into an artifact URI and a line number.
// Locations that don't carry a trailing numeric line default to line 1.
func splitLocation(loc string) (string, int) {
	idx := strings.LastIndex(loc, ":")
	if idx < 0 {
		return loc, 1
	}
	line, err := strconv.Atoi(loc[idx+1:])
	if err != nil {
		return loc, 1
	}
	return loc[:idx], line
}
