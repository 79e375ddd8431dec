package docbundle

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/shivasurya/apimisuse/output"
)

// Downloader fetches, verifies, and caches documentation-feature bundles.
type Downloader struct {
	config         *DownloadConfig
	cache          *Cache
	manifestLoader *ManifestLoader
	httpClient     *http.Client
	logger         *output.Logger
}

// NewDownloader creates a Downloader; logger may be nil to suppress
// progress messages.
func NewDownloader(config *DownloadConfig, logger *output.Logger) (*Downloader, error) {
	cache, err := NewCache(config.CacheDir)
	if err != nil {
		return nil, err
	}
	return &Downloader{
		config:         config,
		cache:          cache,
		manifestLoader: NewManifestLoader(config.BaseURL),
		httpClient:     &http.Client{Timeout: config.HTTPTimeout},
		logger:         logger,
	}, nil
}

func (d *Downloader) log(format string, args ...interface{}) {
	if d.logger != nil {
		d.logger.Progress(format, args...)
	}
}

// Download resolves spec (e.g. "openssl/pod"), serving a cached extraction
// when valid, otherwise downloading, checksum-verifying, and extracting
// the bundle zip. It returns the directory docfeature.LoadDir should read.
func (d *Downloader) Download(spec string) (string, error) {
	bundleSpec, err := ParseSpec(spec)
	if err != nil {
		return "", err
	}

	manifest, err := d.manifestLoader.LoadFamilyManifest(bundleSpec.Family)
	if err != nil {
		return "", fmt.Errorf("load manifest: %w", err)
	}

	bundle, err := manifest.GetBundle(bundleSpec.Bundle)
	if err != nil {
		return "", err
	}

	if cached, err := d.cache.Get(bundleSpec, bundle.Checksum); err == nil {
		d.log("using cached doc bundle %s (checksum %s)", spec, shortChecksum(bundle.Checksum))
		return cached, nil
	}

	return d.downloadAndCache(bundleSpec, bundle)
}

func shortChecksum(checksum string) string {
	if len(checksum) > 8 {
		return checksum[:8]
	}
	return checksum
}

func (d *Downloader) downloadAndCache(spec *Spec, bundle *Bundle) (string, error) {
	zipPath, err := d.downloadZip(bundle.DownloadURL, bundle.ZipSize)
	if err != nil {
		return "", fmt.Errorf("download doc bundle: %w", err)
	}
	defer os.Remove(zipPath)

	d.log("verifying doc bundle checksum for %s", spec.String())
	if err := VerifyChecksum(zipPath, bundle.Checksum); err != nil {
		return "", fmt.Errorf("checksum verification failed: %w", err)
	}

	extractPath := filepath.Join(d.config.CacheDir, spec.Family, spec.Bundle)
	if err := os.MkdirAll(extractPath, 0o755); err != nil {
		return "", err
	}

	fileCount, err := d.extractZip(zipPath, extractPath)
	if err != nil {
		return "", fmt.Errorf("extract doc bundle: %w", err)
	}
	d.log("extracted %d doc feature file(s) for %s", fileCount, spec.String())

	if err := d.cache.Set(spec, extractPath, bundle.Checksum, d.config.CacheTTL); err != nil {
		return "", fmt.Errorf("cache doc bundle: %w", err)
	}
	return extractPath, nil
}

func (d *Downloader) downloadZip(url string, expectedSize int64) (string, error) {
	tempFile, err := os.CreateTemp("", "docbundle-*.zip")
	if err != nil {
		return "", err
	}
	defer tempFile.Close()

	var lastErr error
	for attempt := 0; attempt < d.config.RetryAttempts; attempt++ {
		if attempt > 0 {
			d.log("retry %d/%d downloading doc bundle", attempt, d.config.RetryAttempts)
			time.Sleep(time.Second * time.Duration(attempt))
		}

		written, err := d.attemptDownload(tempFile, url)
		if err != nil {
			lastErr = err
			continue
		}
		if expectedSize > 0 && written != expectedSize {
			lastErr = fmt.Errorf("size mismatch: expected %d, got %d", expectedSize, written)
			continue
		}
		return tempFile.Name(), nil
	}
	return "", fmt.Errorf("download failed after %d attempts: %w", d.config.RetryAttempts, lastErr)
}

func (d *Downloader) attemptDownload(tempFile *os.File, url string) (int64, error) {
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, url, nil)
	if err != nil {
		return 0, err
	}
	resp, err := d.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("HTTP %d", resp.StatusCode)
	}
	if _, err := tempFile.Seek(0, io.SeekStart); err != nil {
		return 0, err
	}
	return io.Copy(tempFile, resp.Body)
}

func (d *Downloader) extractZip(zipPath, destDir string) (int, error) {
	r, err := zip.OpenReader(zipPath)
	if err != nil {
		return 0, err
	}
	defer r.Close()

	count := 0
	for _, f := range r.File {
		if err := extractFile(f, destDir); err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}

// extractFile extracts a single zip entry, rejecting zip-slip paths that
// would escape destDir.
func extractFile(f *zip.File, destDir string) error {
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	path := filepath.Join(destDir, f.Name)
	cleanDest := filepath.Clean(destDir)
	relPath, err := filepath.Rel(cleanDest, filepath.Clean(path))
	if err != nil || strings.HasPrefix(relPath, ".") || filepath.IsAbs(relPath) {
		return fmt.Errorf("illegal file path: %s", f.Name)
	}

	if f.FileInfo().IsDir() {
		return os.MkdirAll(path, f.Mode())
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	outFile, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, f.Mode())
	if err != nil {
		return err
	}
	defer outFile.Close()

	_, err = io.Copy(outFile, rc)
	return err
}

// RefreshCache invalidates a bundle so the next Download re-fetches it.
func (d *Downloader) RefreshCache(spec string) error {
	bundleSpec, err := ParseSpec(spec)
	if err != nil {
		return err
	}
	return d.cache.Invalidate(bundleSpec)
}
