package cmd

import (
	"fmt"
	"os"
	"sort"

	humanize "github.com/dustin/go-humanize"
	"github.com/shivasurya/apimisuse/analytics"
	"github.com/shivasurya/apimisuse/corpus"
	"github.com/shivasurya/apimisuse/detect"
	"github.com/shivasurya/apimisuse/docfeature"
	"github.com/shivasurya/apimisuse/feature"
	"github.com/shivasurya/apimisuse/output"
	"github.com/shivasurya/apimisuse/report"
	"github.com/spf13/cobra"
)

var detectFlags struct {
	featureDir          string
	docDir              string
	outDir              string
	targetFn            string
	checkType           string
	threshold           float64
	rho                 int
	rmDup               bool
	enableDoc           bool
	disableCode         bool
	onlyReportLocations bool
	displaySpec         bool
	format              string
}

var detectCmd = &cobra.Command{
	Use:   "detect",
	Short: "Infer per-function specifications and report API-misuse violations",
	Long: `detect folds traced feature records for each function into a
feature-frequency map, infers that function's specification from the
majority behavior, then replays every trace against the inferred
specification to flag call sites that deviate (retval, arg.pre, arg.post,
and causality checks).`,
	RunE: runDetect,
}

func init() {
	rootCmd.AddCommand(detectCmd)

	detectCmd.Flags().StringVar(&detectFlags.featureDir, "feature-dir", "", "directory holding the features/ tree of per-function trace files (<feature-dir>/features/<func_name>/*.fea.json)")
	detectCmd.Flags().StringVar(&detectFlags.docDir, "doc-dir", "", "directory of documentation-feature bundle JSON files")
	detectCmd.Flags().StringVar(&detectFlags.outDir, "outdir", ".", "output directory for the bug report")
	detectCmd.Flags().StringVar(&detectFlags.targetFn, "target-fn", "", "restrict detection to functions whose name contains this substring")
	detectCmd.Flags().StringVar(&detectFlags.checkType, "type", "", "restrict detection to one check kind: retval, arg.pre, arg.post, causality")
	detectCmd.Flags().Float64Var(&detectFlags.threshold, "threshold", 0, "override the logistic acceptance threshold (0,1); 0 means unset")
	detectCmd.Flags().IntVar(&detectFlags.rho, "rho", 0, "override the threshold function's decay constant ρ; 0 means unset")
	detectCmd.Flags().BoolVar(&detectFlags.rmDup, "rm-dup", false, "cap trace counts to one increment per (fingerprint, location)")
	detectCmd.Flags().BoolVar(&detectFlags.enableDoc, "enable-doc", false, "fuse documentation features into the inferred specification")
	detectCmd.Flags().BoolVar(&detectFlags.disableCode, "disable-code", false, "ignore code-inferred specifications; detect doc-only")
	detectCmd.Flags().BoolVar(&detectFlags.onlyReportLocations, "only-report-locations", false, "emit the terse one-line-per-location report")
	detectCmd.Flags().BoolVar(&detectFlags.displaySpec, "display-spec", false, "print each function's documentation feature before detection (only when doc features are loaded; the code-inferred specification is not printed)")
	detectCmd.Flags().StringVar(&detectFlags.format, "format", "text", "report format: text or sarif")

	_ = detectCmd.MarkFlagRequired("feature-dir")
}

func runDetect(cmd *cobra.Command, _ []string) error {
	noBanner, _ := cmd.Parent().PersistentFlags().GetBool("no-banner")
	logger := output.NewLogger(verbosityFromFlag())
	if output.ShouldShowBanner(logger.IsTTY(), noBanner) {
		output.PrintBanner(logger.GetWriter(), Version, output.DefaultBannerOptions())
	}

	applyPersistedDetectDefaults(cmd)

	if detectFlags.checkType != "" && !validCheckTypes[detectFlags.checkType] {
		return fmt.Errorf("invalid --type %q: must be one of retval, arg.pre, arg.post, causality", detectFlags.checkType)
	}

	analytics.ReportEvent(analytics.DetectStarted)

	layout := corpus.NewLayout(detectFlags.featureDir)
	names, err := layout.Functions(detectFlags.targetFn)
	if err != nil {
		analytics.ReportEvent(analytics.DetectFailed)
		return fmt.Errorf("discover functions: %w", err)
	}
	sort.Strings(names)

	var doc *docfeature.Handler
	if (detectFlags.enableDoc || detectFlags.disableCode) && detectFlags.docDir != "" {
		doc, err = docfeature.LoadDir(detectFlags.docDir, detectFlags.displaySpec)
		if err != nil {
			analytics.ReportEvent(analytics.DetectFailed)
			return fmt.Errorf("load documentation features: %w", err)
		}
	}

	opts := detect.Options{
		CheckType:           detectFlags.checkType,
		RemoveDuplicates:    detectFlags.rmDup,
		DisableCode:         detectFlags.disableCode,
		OnlyReportLocations: detectFlags.onlyReportLocations,
	}
	if detectFlags.threshold > 0 {
		opts.Threshold = &detectFlags.threshold
	}
	if detectFlags.rho > 0 {
		opts.Rho = &detectFlags.rho
	}

	detector := detect.NewDetector(doc, opts)

	if err := logger.StartProgress("analyzing functions", len(names)); err != nil {
		logger.Warning("failed to start progress bar: %v", err)
	}

	totalTraces := 0
	for _, name := range names {
		paths, err := layout.FeatureFiles(name)
		if err != nil {
			logger.Warning("skipping %s: %v", name, err)
			_ = logger.UpdateProgress(1)
			continue
		}

		fm, loadErrs := feature.LoadAndFold(paths, detectFlags.rmDup)
		for _, le := range loadErrs {
			logger.Warning("malformed feature file %s: %v", le.Path, le.Err)
		}

		totalTraces += fm.TotalTime()

		if doc != nil && detectFlags.displaySpec {
			doc.Display(logger.GetWriter(), name)
		}

		detector.DetectFunction(name, fm)
		_ = logger.UpdateProgress(1)
	}
	_ = logger.FinishProgress()

	logger.Statistic("folded %s traces across %d function(s)", humanize.Comma(int64(totalTraces)), len(names))

	if err := os.MkdirAll(detectFlags.outDir, 0o755); err != nil {
		analytics.ReportEvent(analytics.DetectFailed)
		return fmt.Errorf("create output directory: %w", err)
	}

	byLocation := report.Resort(detector.Reports())

	if detectFlags.format == "sarif" {
		sarifPath := detectFlags.outDir + "/bug_report.sarif"
		f, err := os.Create(sarifPath)
		if err != nil {
			analytics.ReportEvent(analytics.DetectFailed)
			return fmt.Errorf("create sarif report: %w", err)
		}
		defer f.Close()
		sarifOpts := output.NewDefaultOptions()
		sarifOpts.Verbosity = logger.Verbosity()
		sarifOpts.Format = output.FormatSARIF
		formatter := output.NewSARIFFormatterWithWriter(f, sarifOpts)
		if err := formatter.Format(byLocation); err != nil {
			analytics.ReportEvent(analytics.DetectFailed)
			return fmt.Errorf("write sarif report: %w", err)
		}
		logger.Progress("wrote SARIF report to %s", sarifPath)
	} else {
		textPath := detectFlags.outDir + "/bug_report.txt"
		f, err := os.Create(textPath)
		if err != nil {
			analytics.ReportEvent(analytics.DetectFailed)
			return fmt.Errorf("create text report: %w", err)
		}
		defer f.Close()
		if err := report.WriteText(f, detector.Reports(), detectFlags.onlyReportLocations); err != nil {
			analytics.ReportEvent(analytics.DetectFailed)
			return fmt.Errorf("write text report: %w", err)
		}
		logger.Progress("wrote bug report to %s", textPath)
	}

	logger.Statistic("reported %d violating location(s)", len(byLocation))
	analytics.ReportEventWithProperties(analytics.DetectCompleted, map[string]interface{}{
		"function_count": len(names),
		"location_count": len(byLocation),
	})

	return nil
}

var validCheckTypes = map[string]bool{
	report.KindRetval:    true,
	report.KindArgPre:    true,
	report.KindArgPost:   true,
	report.KindCausality: true,
}

func verbosityFromFlag() output.VerbosityLevel {
	if verboseFlag {
		return output.VerbosityVerbose
	}
	return output.VerbosityDefault
}

func applyPersistedDetectDefaults(cmd *cobra.Command) {
	if !cmd.Flags().Changed("threshold") && persistedDefaults.Threshold != nil {
		detectFlags.threshold = *persistedDefaults.Threshold
	}
	if !cmd.Flags().Changed("rho") && persistedDefaults.Rho != nil {
		detectFlags.rho = *persistedDefaults.Rho
	}
	if !cmd.Flags().Changed("rm-dup") && persistedDefaults.RemoveDup != nil {
		detectFlags.rmDup = *persistedDefaults.RemoveDup
	}
}
