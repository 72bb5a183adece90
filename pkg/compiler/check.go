package compiler

import (
	"time"

	"github.com/lumen-lang/lumen/pkg/diagnostics"
)

// CheckFile runs Compile over path and reports its outcome as a
// diagnostics.FileResult, the shape cmd/lumen-check accumulates into a
// diagnostics.Summary across every file on the command line. A non-nil
// error means path itself couldn't be read (§6.2's invocation error), not a
// compile diagnostic.
func CheckFile(path string, loader Loader, cfg Config) (diagnostics.FileResult, error) {
	start := time.Now()

	_, compileErr, err := Compile(path, loader, cfg)
	elapsed := time.Since(start).Seconds()

	if err != nil {
		return diagnostics.FileResult{}, err
	}

	if compileErr == nil {
		return diagnostics.FileResult{File: path, Passed: true, DurationSecs: elapsed}, nil
	}

	return diagnostics.FileResult{
		File:         path,
		Passed:       false,
		DurationSecs: elapsed,
		Diagnostics:  compileErr.Diagnostics(path),
	}, nil
}

// CheckFiles runs CheckFile over every path and folds the results into a
// diagnostics.Summary, §6.2's top-level report. A file that can't be read
// is recorded as a failing result carrying one synthesized diagnostic
// rather than aborting the whole run, so one bad path on the command line
// doesn't hide the rest.
func CheckFiles(paths []string, loader Loader, cfg Config) diagnostics.Summary {
	start := time.Now()

	results := make([]diagnostics.FileResult, 0, len(paths))

	for _, p := range paths {
		r, err := CheckFile(p, loader, cfg)
		if err != nil {
			// A file that can't be found or read has no stable E0xxx code:
			// it never reached a compile stage at all. It still counts as
			// a failing result so the rest of the batch gets checked.
			results = append(results, diagnostics.FileResult{
				File:   p,
				Passed: false,
				Diagnostics: []diagnostics.Diagnostic{{
					File:     p,
					Severity: diagnostics.SeverityError,
					Message:  err.Error(),
				}},
			})

			continue
		}

		results = append(results, r)
	}

	return diagnostics.NewSummary("lumen-check", time.Since(start).Seconds(), results)
}
