package diagnostics

import (
	"io"

	"github.com/lumen-lang/lumen/pkg/span"
	"github.com/segmentio/encoding/json"
)

// jsonDiagnostic mirrors §6.2's schema: line/column are omitted for a
// synthesized diagnostic with no source span (e.g. a Typestate/Session
// error).
type jsonDiagnostic struct {
	File     string `json:"file"`
	Line     *int   `json:"line,omitempty"`
	Column   *int   `json:"column,omitempty"`
	Severity string `json:"severity"`
	Message  string `json:"message"`
	Details  string `json:"details,omitempty"`
}

type jsonResult struct {
	File         string           `json:"file"`
	Passed       bool             `json:"passed"`
	DurationSecs float64          `json:"duration_secs"`
	Diagnostics  []jsonDiagnostic `json:"diagnostics"`
}

type jsonSummary struct {
	Suite        string       `json:"suite"`
	Total        int          `json:"total"`
	Passed       int          `json:"passed"`
	Failed       int          `json:"failed"`
	Errors       int          `json:"errors"`
	Warnings     int          `json:"warnings"`
	DurationSecs float64      `json:"duration_secs"`
	Results      []jsonResult `json:"results"`
}

// WriteJSON renders summary in §6.2's exact schema, using
// github.com/segmentio/encoding/json for parity with the rest of the
// domain stack's fast-path JSON dependency.
func WriteJSON(w io.Writer, summary Summary) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(toJSONSummary(summary))
}

func toJSONSummary(s Summary) jsonSummary {
	out := jsonSummary{
		Suite:        s.Suite,
		Total:        s.Total,
		Passed:       s.Passed,
		Failed:       s.Failed,
		Errors:       s.Errors,
		Warnings:     s.Warnings,
		DurationSecs: s.DurationSecs,
	}

	for _, r := range s.Results {
		jr := jsonResult{File: r.File, Passed: r.Passed, DurationSecs: r.DurationSecs}

		for _, d := range r.Diagnostics {
			jd := jsonDiagnostic{
				File:     d.File,
				Severity: string(d.Severity),
				Message:  d.Message,
				Details:  d.Hint,
			}

			if d.Span != span.Zero {
				line, col := d.Span.Line, d.Span.Col
				jd.Line, jd.Column = &line, &col
			}

			jr.Diagnostics = append(jr.Diagnostics, jd)
		}

		out.Results = append(out.Results, jr)
	}

	return out
}
