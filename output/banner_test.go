package output

import (
	"bytes"
	"strings"
	"testing"
)

func TestPrintBanner_FullBanner(t *testing.T) {
	var buf bytes.Buffer
	opts := BannerOptions{
		ShowBanner:  true,
		ShowVersion: true,
		ShowLicense: true,
	}

	PrintBanner(&buf, "0.0.25", opts)

	output := buf.String()

	if !strings.Contains(output, "apimisuse") && !strings.Contains(output, "a") {
		t.Errorf("Expected ASCII art for 'apimisuse', got: %s", output)
	}

	if !strings.Contains(output, tagline) {
		t.Errorf("Expected tagline, got: %s", output)
	}

	if !strings.Contains(output, "Version: 0.0.25") {
		t.Errorf("Expected version string, got: %s", output)
	}

	if !strings.Contains(output, "License: AGPL-3.0") {
		t.Errorf("Expected license string, got: %s", output)
	}

	if !strings.Contains(output, projectURL) {
		t.Errorf("Expected URL, got: %s", output)
	}
}

func TestPrintBanner_NoBanner(t *testing.T) {
	var buf bytes.Buffer
	opts := BannerOptions{
		ShowBanner:  false,
		ShowVersion: true,
		ShowLicense: true,
	}

	PrintBanner(&buf, "0.0.25", opts)

	output := buf.String()

	if !strings.Contains(output, "apimisuse v0.0.25") {
		t.Errorf("Expected version string, got: %s", output)
	}

	if !strings.Contains(output, tagline) {
		t.Errorf("Expected tagline, got: %s", output)
	}

	if !strings.Contains(output, "AGPL-3.0") {
		t.Errorf("Expected license info, got: %s", output)
	}

	lines := strings.Split(strings.TrimSpace(output), "\n")
	if len(lines) > 5 {
		t.Errorf("Compact banner should be minimal, got %d lines", len(lines))
	}
}

func TestPrintBanner_VersionOnly(t *testing.T) {
	var buf bytes.Buffer
	opts := BannerOptions{
		ShowBanner:  false,
		ShowVersion: true,
		ShowLicense: false,
	}

	PrintBanner(&buf, "0.0.25", opts)

	output := buf.String()

	if !strings.Contains(output, "v0.0.25") {
		t.Errorf("Expected version, got: %s", output)
	}

	if strings.Contains(output, "AGPL-3.0") {
		t.Errorf("License should not be shown, got: %s", output)
	}
}

func TestPrintBanner_LicenseOnly(t *testing.T) {
	var buf bytes.Buffer
	opts := BannerOptions{
		ShowBanner:  false,
		ShowVersion: false,
		ShowLicense: true,
	}

	PrintBanner(&buf, "0.0.25", opts)

	output := buf.String()

	if strings.Contains(output, "v0.0.25") {
		t.Errorf("Version should not be shown, got: %s", output)
	}

	if !strings.Contains(output, "AGPL-3.0") {
		t.Errorf("Expected license, got: %s", output)
	}
}

func TestPrintBanner_NilWriter(t *testing.T) {
	opts := DefaultBannerOptions()
	PrintBanner(nil, "0.0.25", opts)
}

func TestPrintBanner_EmptyVersion(t *testing.T) {
	var buf bytes.Buffer
	opts := BannerOptions{
		ShowBanner:  false,
		ShowVersion: true,
		ShowLicense: false,
	}

	PrintBanner(&buf, "", opts)

	output := buf.String()

	if len(output) == 0 {
		t.Error("Expected some output even with empty version")
	}
}

func TestGetASCIILogo(t *testing.T) {
	logo := GetASCIILogo()

	if len(logo) == 0 {
		t.Error("Logo should not be empty")
	}

	hasAsciiChars := strings.Contains(logo, "_") || strings.Contains(logo, "|") ||
		strings.Contains(logo, "/") || strings.Contains(logo, "\\")
	if !hasAsciiChars {
		t.Errorf("Logo doesn't look like ASCII art: %s", logo)
	}
}

func TestGetCompactBanner(t *testing.T) {
	tests := []struct {
		name    string
		version string
		want    string
	}{
		{
			"normal version",
			"0.0.25",
			"apimisuse v0.0.25 | " + tagline + " | " + projectURL,
		},
		{
			"empty version",
			"",
			"apimisuse v | " + tagline + " | " + projectURL,
		},
		{
			"dev version",
			"dev",
			"apimisuse vdev | " + tagline + " | " + projectURL,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GetCompactBanner(tt.version)
			if got != tt.want {
				t.Errorf("GetCompactBanner() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestShouldShowBanner(t *testing.T) {
	tests := []struct {
		name         string
		isTTY        bool
		noBannerFlag bool
		want         bool
	}{
		{"TTY without flag", true, false, true},
		{"TTY with flag", true, true, false},
		{"Non-TTY without flag", false, false, false},
		{"Non-TTY with flag", false, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ShouldShowBanner(tt.isTTY, tt.noBannerFlag)
			if got != tt.want {
				t.Errorf("ShouldShowBanner(%v, %v) = %v, want %v",
					tt.isTTY, tt.noBannerFlag, got, tt.want)
			}
		})
	}
}

func TestDefaultBannerOptions(t *testing.T) {
	opts := DefaultBannerOptions()

	if !opts.ShowBanner {
		t.Error("Default should show banner")
	}
	if !opts.ShowVersion {
		t.Error("Default should show version")
	}
	if !opts.ShowLicense {
		t.Error("Default should show license")
	}
}

func TestBannerOptions_AllFalse(t *testing.T) {
	var buf bytes.Buffer
	opts := BannerOptions{
		ShowBanner:  false,
		ShowVersion: false,
		ShowLicense: false,
	}

	PrintBanner(&buf, "0.0.25", opts)

	output := buf.String()

	if strings.TrimSpace(output) != "" {
		t.Errorf("Expected minimal output with all options false, got: %q", output)
	}
}
