package output

// VerbosityLevel controls output detail.
type VerbosityLevel int

const (
	// VerbosityDefault shows clean results only (no progress, no statistics).
	VerbosityDefault VerbosityLevel = iota
	// VerbosityVerbose adds statistics and summary info.
	VerbosityVerbose
	// VerbosityDebug adds timestamps and diagnostic messages.
	VerbosityDebug
)

// OutputFormat specifies the bug-report output format.
type OutputFormat string

const (
	FormatText  OutputFormat = "text"
	FormatSARIF OutputFormat = "sarif"
)

// OutputOptions configures the SARIF writer's output behavior; the text
// report writer (report.WriteText) does not take it.
type OutputOptions struct {
	Verbosity VerbosityLevel
	Format    OutputFormat
}

// NewDefaultOptions returns options with sensible defaults.
func NewDefaultOptions() *OutputOptions {
	return &OutputOptions{
		Verbosity: VerbosityDefault,
		Format:    FormatText,
	}
}

// ShouldShowStatistics returns true if statistics should be displayed.
func (o *OutputOptions) ShouldShowStatistics() bool {
	return o.Verbosity >= VerbosityVerbose
}

// ShouldShowDebug returns true if debug output should be displayed.
func (o *OutputOptions) ShouldShowDebug() bool {
	return o.Verbosity >= VerbosityDebug
}
