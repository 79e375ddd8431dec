package cmd

import (
	"fmt"
	"os"

	"github.com/shivasurya/apimisuse/analytics"
	"github.com/shivasurya/apimisuse/config"
	"github.com/shivasurya/apimisuse/output"
	"github.com/spf13/cobra"
)

var (
	verboseFlag bool
	Version     = "0.1.0"
	GitCommit   = "HEAD"

	// persistedDefaults holds flag defaults loaded from ~/.apimisuse/config.yaml,
	// consulted for --disable-metrics and detect's --threshold/--rho/--rm-dup
	// when the flag wasn't set on the command line.
	persistedDefaults config.Defaults
)

var rootCmd = &cobra.Command{
	Use:   "apimisuse",
	Short: "Specification inference and API-misuse detection for C/C++ traces",
	Long: `apimisuse infers per-function API usage specifications from traced call
records and flags call sites that deviate from them across four check kinds:
return-value checks, argument pre-conditions, argument post-conditions, and
causal (pairing) relationships between calls.

Learn more: https://github.com/shivasurya/apimisuse`,
	PersistentPreRun: func(cmd *cobra.Command, _ []string) {
		disableMetrics, _ := cmd.Flags().GetBool("disable-metrics") //nolint:all
		verboseFlag, _ = cmd.Flags().GetBool("verbose")             //nolint:all

		if path, err := config.Path(); err == nil {
			if defaults, err := config.Load(path); err == nil {
				persistedDefaults = defaults
			}
		}
		if !cmd.Flags().Changed("disable-metrics") && persistedDefaults.DisableMetrics != nil {
			disableMetrics = *persistedDefaults.DisableMetrics
		}

		analytics.LoadEnvFile()
		analytics.Init(disableMetrics)
		analytics.SetVersion(Version)

		if cmd.Name() == "help" || (len(os.Args) == 1 || (len(os.Args) == 2 && (os.Args[1] == "--help" || os.Args[1] == "-h"))) {
			noBanner, _ := cmd.Flags().GetBool("no-banner")
			logger := output.NewLogger(output.VerbosityDefault)
			if output.ShouldShowBanner(logger.IsTTY(), noBanner) {
				output.PrintBanner(logger.GetWriter(), Version, output.DefaultBannerOptions())
			} else if logger.IsTTY() && !noBanner {
				fmt.Fprintln(os.Stderr, output.GetCompactBanner(Version))
				fmt.Fprintln(os.Stderr)
			}
		}
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().Bool("disable-metrics", false, "Disable metrics collection")
	rootCmd.PersistentFlags().Bool("verbose", false, "Verbose output")
	rootCmd.PersistentFlags().Bool("no-banner", false, "Disable startup banner")
}
