package docbundle

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ManifestLoader fetches a family's manifest over HTTP.
type ManifestLoader struct {
	baseURL    string
	httpClient *http.Client
}

// NewManifestLoader creates a loader against baseURL.
func NewManifestLoader(baseURL string) *ManifestLoader {
	return &ManifestLoader{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// LoadFamilyManifest fetches "<baseURL>/<family>/manifest.json".
func (m *ManifestLoader) LoadFamilyManifest(family string) (*Manifest, error) {
	url := fmt.Sprintf("%s/%s/manifest.json", m.baseURL, family)

	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create manifest request: %w", err)
	}

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch manifest: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("manifest fetch failed: HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	var manifest Manifest
	if err := json.Unmarshal(body, &manifest); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	return &manifest, nil
}
