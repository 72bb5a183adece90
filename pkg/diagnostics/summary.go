package diagnostics

// FileResult is one input file's outcome: whether it passed, how long it
// took, and every diagnostic raised against it.
type FileResult struct {
	File         string
	Passed       bool
	DurationSecs float64
	Diagnostics  []Diagnostic
}

// Summary is the run-level result §6.2's JSON schema names. Build one with
// NewSummary once every file has been checked.
type Summary struct {
	Suite        string
	Total        int
	Passed       int
	Failed       int
	Errors       int
	Warnings     int
	DurationSecs float64
	Results      []FileResult
}

// NewSummary tallies totals/passed/failed/errors/warnings from results so
// callers never have to keep those counters in sync by hand.
func NewSummary(suite string, durationSecs float64, results []FileResult) Summary {
	s := Summary{Suite: suite, DurationSecs: durationSecs, Results: results, Total: len(results)}

	for _, r := range results {
		if r.Passed {
			s.Passed++
		} else {
			s.Failed++
		}

		for _, d := range r.Diagnostics {
			if d.Severity == SeverityWarning {
				s.Warnings++
			} else {
				s.Errors++
			}
		}
	}

	return s
}
