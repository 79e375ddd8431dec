// Package docfeature retrieves per-function documentation-mined features
// (return values/conditions, argument check requirements, causal call
// neighbors) assembled upstream by the documentation scraper, with a
// name-variant fallback search when a function has no direct entry (§4.7).
package docfeature

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	json "github.com/goccy/go-json"
)

// RetSpec is the documentation's claim about a function's return value.
type RetSpec struct {
	Value []int    `json:"value"`
	Cond  []string `json:"cond"`
}

// ArgsSpec is the documentation's per-argument check claims.
type ArgsSpec struct {
	Pre  []bool `json:"arg.pre"`
	Post []bool `json:"arg.post"`
}

// CausalitySpec is the documentation's claimed causal neighbors.
type CausalitySpec struct {
	Pre  []string `json:"pre"`
	Post []string `json:"post"`
}

// Feature is one function's full documentation record.
type Feature struct {
	Ret       RetSpec       `json:"ret"`
	Args      ArgsSpec      `json:"args"`
	Causality CausalitySpec `json:"causality"`
}

// Handler answers per-function documentation-feature lookups.
type Handler struct {
	features    map[string]Feature
	displaySpec bool
}

// NewHandler wraps an already-decoded documentation map.
func NewHandler(features map[string]Feature, displaySpec bool) *Handler {
	return &Handler{features: features, displaySpec: displaySpec}
}

// Load reads a documentation feature file: a JSON object mapping function
// name to Feature (§6).
func Load(path string, displaySpec bool) (*Handler, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load doc features: %w", err)
	}
	var features map[string]Feature
	if err := json.Unmarshal(data, &features); err != nil {
		return nil, fmt.Errorf("parse doc features %s: %w", path, err)
	}
	return NewHandler(features, displaySpec), nil
}

// LoadDir reads every *.json file directly under dir and merges them into
// one Handler, matching §4.7/§6's three source families (libc man3, Linux
// core API HTML, OpenSSL POD) each shipping as its own bundle file. Later
// files win on a function-name collision; file order is the directory's
// lexical order, so merges are deterministic.
func LoadDir(dir string, displaySpec bool) (*Handler, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("load doc feature dir: %w", err)
	}
	merged := map[string]Feature{}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("load doc features: %w", err)
		}
		var features map[string]Feature
		if err := json.Unmarshal(data, &features); err != nil {
			return nil, fmt.Errorf("parse doc features %s: %w", path, err)
		}
		for name, feat := range features {
			merged[name] = feat
		}
	}
	return NewHandler(merged, displaySpec), nil
}

// findVariant enumerates the name variants tried on a direct lookup miss
// (§4.7): family-prefix substitution, then either a trailing-digit strip
// or a probe of common numeric suffixes — never both, mirroring the
// original's mutually exclusive branches.
func findVariant(funcName string) []string {
	var variants []string

	prefix := strings.SplitN(funcName, "_", 2)[0]
	if prefix == "OPENSSL" || prefix == "SSL" {
		variants = append(variants, strings.Replace(funcName, prefix, "CRYPTO", 1))
	}

	position := len(funcName)
	for position > 0 {
		position--
		c := funcName[position]
		if c >= '0' && c <= '9' {
			continue
		}
		break
	}
	if position != len(funcName)-1 {
		variants = append(variants, funcName[:position+1])
	} else {
		for i := 0; i < 10; i++ {
			variants = append(variants, fmt.Sprintf("%s%d", funcName, i))
		}
		variants = append(variants, funcName+"32", funcName+"64")
	}
	return variants
}

// Retrieve returns funcName's documentation feature, trying name variants
// on a direct miss. The bool result is false (with a zero Feature) when
// neither the name nor any variant has an entry.
func (h *Handler) Retrieve(funcName string) (Feature, bool) {
	if h == nil {
		return Feature{}, false
	}
	if f, ok := h.features[funcName]; ok {
		return f, true
	}
	for _, variant := range findVariant(funcName) {
		if f, ok := h.features[variant]; ok {
			return f, true
		}
	}
	return Feature{}, false
}

// Display prints the resolved documentation specification for funcName
// when display-spec debugging is enabled; a no-op otherwise.
func (h *Handler) Display(w writer, funcName string) {
	if h == nil || !h.displaySpec {
		return
	}
	feat, _ := h.Retrieve(funcName)
	fmt.Fprintln(w, "## specifications inferred from doc ##")
	fmt.Fprintf(w, "%+v\n", feat)
	fmt.Fprintln(w, strings.Repeat("-", 39))
}

type writer interface {
	Write(p []byte) (int, error)
}
