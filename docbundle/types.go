// Package docbundle fetches named documentation-feature bundles — the
// libc man3, Linux core API, and OpenSSL POD source families of §4.7/§6 —
// from a remote manifest, checksum-verifies and caches them locally, and
// extracts them for docfeature.LoadDir to consume. Adapted from the
// teacher's ruleset package (cache.go/downloader.go/manifest.go), which
// does the same checksum-verified, TTL-cached, zip-extracted download flow
// for static-analysis rule bundles.
package docbundle

import (
	"fmt"
	"strings"
	"time"
)

// Spec identifies one documentation-feature bundle as "family/bundle",
// e.g. "openssl/pod" or "libc/man3".
type Spec struct {
	Family string
	Bundle string
}

// ParseSpec parses "family/bundle" into a Spec.
func ParseSpec(spec string) (*Spec, error) {
	parts := strings.SplitN(spec, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return nil, fmt.Errorf("invalid doc bundle spec: %s (expected format: family/bundle)", spec)
	}
	return &Spec{Family: parts[0], Bundle: parts[1]}, nil
}

// String renders the spec back as "family/bundle".
func (s *Spec) String() string {
	return fmt.Sprintf("%s/%s", s.Family, s.Bundle)
}

// Manifest is the global or per-family manifest of available bundles.
type Manifest struct {
	Version     string             `json:"version,omitempty"`
	Families    []string           `json:"families,omitempty"`
	Family      string             `json:"family,omitempty"`
	Description string             `json:"description,omitempty"`
	Bundles     map[string]*Bundle `json:"bundles"`
	BaseURL     string             `json:"base_url,omitempty"`
}

// Bundle is one documentation-feature bundle's metadata.
type Bundle struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	FileCount   int    `json:"file_count,omitempty"`
	ZipSize     int64  `json:"zip_size,omitempty"`
	Checksum    string `json:"checksum,omitempty"`
	DownloadURL string `json:"download_url,omitempty"`
}

// GetBundle retrieves bundle metadata from the manifest.
func (m *Manifest) GetBundle(name string) (*Bundle, error) {
	b, ok := m.Bundles[name]
	if !ok {
		return nil, fmt.Errorf("bundle not found: %s", name)
	}
	return b, nil
}

// CacheEntry tracks one cached bundle's extraction location and freshness.
type CacheEntry struct {
	Spec      Spec      `json:"spec"`
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	CachedAt  time.Time `json:"cached_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// DownloadConfig configures the Downloader.
type DownloadConfig struct {
	BaseURL       string
	CacheDir      string
	CacheTTL      time.Duration
	HTTPTimeout   time.Duration
	RetryAttempts int
}

// ManifestProvider loads a family's manifest; *ManifestLoader satisfies it.
// Downloader holds a *ManifestLoader directly rather than this interface.
type ManifestProvider interface {
	LoadFamilyManifest(family string) (*Manifest, error)
}
