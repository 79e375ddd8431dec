// Package extract fans the external symbolic-trace extractor out across a
// worker pool, one process per bitcode input file, writing its per-trace
// feature files into a shared output directory (§5, §6). It is optional:
// detect/occurrence work directly off a pre-populated feature directory
// without ever invoking this package.
package extract

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"sort"
	"sync"
)

// Options configures one fan-out run.
type Options struct {
	// Binary is the external trace-extractor executable (e.g.
	// "target/release/analyzer").
	Binary string
	// OutDir is the shared output directory every worker writes into.
	OutDir string
	// ExtraArgs are appended after the positional <bcFile> <outdir> pair
	// and the "--subfolder <base name of bcFile>" pair passed to every
	// invocation.
	ExtraArgs []string
	// Concurrency bounds how many extractor processes run at once. A
	// value <= 0 defaults to 1 (serial, mirroring the original's --serial
	// flag).
	Concurrency int
}

// Result is one bitcode file's extraction outcome.
type Result struct {
	BCFile string
	Err    error
}

// Run launches one extractor process per path in bcFiles, respecting
// ctx cancellation: on interrupt every still-running process's group is
// killed and already-written output under OutDir is left on disk so the
// run can be resumed (§5). Results are returned in bcFiles order
// regardless of completion order.
func Run(ctx context.Context, opts Options, bcFiles []string) []Result {
	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}

	results := make([]Result, len(bcFiles))
	sem := make(chan struct{}, concurrency)
	var wg sync.WaitGroup

	for i, bcFile := range bcFiles {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, bcFile string) {
			defer wg.Done()
			defer func() { <-sem }()
			results[i] = Result{BCFile: bcFile, Err: runOne(ctx, opts, bcFile)}
		}(i, bcFile)
	}
	wg.Wait()
	return results
}

func runOne(ctx context.Context, opts Options, bcFile string) error {
	bcName := filepath.Base(bcFile)
	args := append([]string{bcFile, opts.OutDir, "--subfolder", bcName}, opts.ExtraArgs...)

	cmd := exec.CommandContext(ctx, opts.Binary, args...)
	setProcessGroup(cmd)

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("extractor failed on %s: %w", bcName, err)
	}
	return nil
}

// FailedFiles returns the bitcode file names whose extraction failed, in
// deterministic (sorted) order, for logging — the fan-out continues past
// individual process failures per §7 ("external-process non-zero exit:
// log, continue with remaining inputs").
func FailedFiles(results []Result) []string {
	var failed []string
	for _, r := range results {
		if r.Err != nil {
			failed = append(failed, filepath.Base(r.BCFile))
		}
	}
	sort.Strings(failed)
	return failed
}
