package diagnostics

import (
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

const defaultSnippetWidth = 80

// terminalWidth returns the current stdout width for wrapping snippets,
// falling back to defaultSnippetWidth when stdout isn't a terminal
// (redirected to a file, piped, or running under a test harness), the same
// fallback pkg/util/termio.NewTerminal's callers use for a failed
// term.IsTerminal check.
func terminalWidth() int {
	w, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || w <= 0 {
		return defaultSnippetWidth
	}

	return w
}

// WriteText renders diags in §7's format: one
// "filename:line:col: severity[code]: message" line, a source snippet with
// a caret under the offending column, and an optional "hint:" line.
// sources maps each Diagnostic's File to its raw contents; a file missing
// from sources (or a span past its last line) renders without a snippet.
func WriteText(w io.Writer, diags []Diagnostic, sources map[string][]byte) error {
	width := terminalWidth()

	for _, d := range diags {
		if _, err := fmt.Fprintf(w, "%s:%d:%d: %s[%s]: %s\n",
			d.File, d.Span.Line, d.Span.Col, d.Severity, d.Code, d.Message); err != nil {
			return err
		}

		if line, ok := sourceLine(sources[d.File], d.Span.Line); ok {
			if err := writeSnippet(w, line, d.Span.Col, width); err != nil {
				return err
			}
		}

		if d.Hint != "" {
			if _, err := fmt.Fprintf(w, "  hint: %s\n", d.Hint); err != nil {
				return err
			}
		}
	}

	return nil
}

func sourceLine(source []byte, lineNo int) (string, bool) {
	if source == nil || lineNo < 1 {
		return "", false
	}

	lines := strings.Split(string(source), "\n")
	if lineNo > len(lines) {
		return "", false
	}

	return lines[lineNo-1], true
}

func writeSnippet(w io.Writer, line string, col, width int) error {
	truncated := line
	if width > 0 && len(truncated) > width {
		truncated = truncated[:width]
	}

	if _, err := fmt.Fprintf(w, "  %s\n", truncated); err != nil {
		return err
	}

	pad := col - 1
	if pad < 0 {
		pad = 0
	}
	if pad > len(truncated) {
		pad = len(truncated)
	}

	_, err := fmt.Fprintf(w, "  %s^\n", strings.Repeat(" ", pad))

	return err
}
