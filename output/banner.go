package output

import (
	"fmt"
	"io"

	"github.com/common-nighthawk/go-figure"
)

// BannerOptions configures the startup banner display.
type BannerOptions struct {
	ShowBanner  bool // Show ASCII art logo
	ShowVersion bool // Show version information
	ShowLicense bool // Show license information
}

// DefaultBannerOptions returns default banner configuration.
func DefaultBannerOptions() BannerOptions {
	return BannerOptions{
		ShowBanner:  true,
		ShowVersion: true,
		ShowLicense: true,
	}
}

const (
	tagline    = "Specification Inference & API Misuse Detection"
	projectURL = "https://github.com/shivasurya/apimisuse"
)

// PrintBanner displays the apimisuse logo and information.
func PrintBanner(w io.Writer, version string, opts BannerOptions) {
	if w == nil {
		return
	}

	if !opts.ShowBanner {
		if opts.ShowVersion {
			fmt.Fprintf(w, "apimisuse v%s\n", version)
			fmt.Fprintln(w, tagline)
		}
		if opts.ShowLicense {
			fmt.Fprintln(w, "AGPL-3.0")
		}
		return
	}

	asciiArt := GetASCIILogo()
	fmt.Fprintln(w, asciiArt)
	fmt.Fprintln(w, tagline)

	if opts.ShowVersion {
		fmt.Fprintf(w, "Version: %s\n", version)
	}
	if opts.ShowLicense {
		fmt.Fprintln(w, "License: AGPL-3.0")
	}
	fmt.Fprintln(w, projectURL)
	fmt.Fprintln(w)
}

// GetASCIILogo generates the ASCII art logo for "apimisuse".
func GetASCIILogo() string {
	fig := figure.NewFigure("apimisuse", "standard", true)
	return fig.String()
}

// GetCompactBanner returns a single-line banner for non-TTY output.
func GetCompactBanner(version string) string {
	return fmt.Sprintf("apimisuse v%s | %s | %s", version, tagline, projectURL)
}

// ShouldShowBanner determines if banner should be displayed.
func ShouldShowBanner(isTTY bool, noBannerFlag bool) bool {
	if noBannerFlag {
		return false
	}
	return isTTY
}
