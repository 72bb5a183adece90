package diagnostics

import (
	"bytes"
	"strings"
	"testing"

	"github.com/lumen-lang/lumen/pkg/lexer"
	"github.com/lumen-lang/lumen/pkg/parser"
	"github.com/lumen-lang/lumen/pkg/resolver"
	"github.com/lumen-lang/lumen/pkg/span"
)

func TestCodeLexFallsBackToLexError(t *testing.T) {
	_, lexErr := lexer.New("\x00", 1, 1).Tokenize()
	ce := NewLex(lexErr)
	if got := ce.Code(); got != "E0001" {
		t.Errorf("Code() = %q, want E0001", got)
	}
}

func TestCodeParseEmptySliceFallback(t *testing.T) {
	ce := NewParse(nil)
	if got := ce.Code(); got != "E0010" {
		t.Errorf("Code() on empty Parse = %q, want E0010", got)
	}
}

func TestCodeMultipleReturnsFirst(t *testing.T) {
	lower := NewLower(nil)
	resolve := NewResolve(nil)
	ce := NewMultiple([]*CompileError{lower, resolve})
	if got := ce.Code(); got != "E0500" {
		t.Errorf("Code() on Multiple[Lower, Resolve] = %q, want E0500 (first wins)", got)
	}
}

func TestNewMultipleCollapsesSingleElement(t *testing.T) {
	resolve := NewResolve(nil)
	ce := NewMultiple([]*CompileError{resolve})
	if ce.Stage != StageResolve {
		t.Errorf("NewMultiple([single]) should collapse to that element, got Stage %q", ce.Stage)
	}
}

func TestTypestateAndSessionCodes(t *testing.T) {
	if got := NewTypestate("bad state").Code(); got != "E0600" {
		t.Errorf("Typestate code = %q, want E0600", got)
	}
	if got := NewSession("bad session").Code(); got != "E0700" {
		t.Errorf("Session code = %q, want E0700", got)
	}
}

func TestDiagnosticsFromResolveIncludesSuggestionHint(t *testing.T) {
	ce := NewResolve([]*resolver.Error{
		resolverErrUndefinedCell(t, "fooo", []string{"foo"}),
	})

	diags := ce.Diagnostics("main.lm")
	if len(diags) != 1 {
		t.Fatalf("expected 1 diagnostic, got %d", len(diags))
	}
	if !strings.Contains(diags[0].Hint, "foo") {
		t.Errorf("expected a suggestion hint, got %q", diags[0].Hint)
	}
	if diags[0].Code != "E0102" {
		t.Errorf("code = %q, want E0102", diags[0].Code)
	}
}

func TestWriteTextIncludesSnippetAndCaret(t *testing.T) {
	diags := []Diagnostic{
		{
			File:     "main.lm",
			Span:     span.New(0, 1, 2, 5),
			Severity: SeverityError,
			Code:     "E0201",
			Message:  "undefined variable \"x\"",
		},
	}
	sources := map[string][]byte{"main.lm": []byte("cell main\n    return x\nend\n")}

	var buf bytes.Buffer
	if err := WriteText(&buf, diags, sources); err != nil {
		t.Fatalf("WriteText: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "main.lm:2:5: error[E0201]: undefined variable \"x\"") {
		t.Errorf("missing header line, got:\n%s", out)
	}
	if !strings.Contains(out, "return x") {
		t.Errorf("missing source snippet, got:\n%s", out)
	}
	if !strings.Contains(out, "^") {
		t.Errorf("missing caret, got:\n%s", out)
	}
}

func TestWriteJUnitSchema(t *testing.T) {
	summary := NewSummary("lumen-check", 0.5, []FileResult{
		{File: "a.lm", Passed: true, DurationSecs: 0.1},
		{File: "b.lm", Passed: false, DurationSecs: 0.2, Diagnostics: []Diagnostic{
			{File: "b.lm", Span: span.New(0, 1, 3, 1), Severity: SeverityError, Code: "E0200", Message: "type mismatch"},
		}},
	})

	var buf bytes.Buffer
	if err := WriteJUnit(&buf, summary); err != nil {
		t.Fatalf("WriteJUnit: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"<testsuites", "<testsuite", "<testcase", "<failure"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in JUnit output:\n%s", want, out)
		}
	}
}

func TestWriteJSONSchema(t *testing.T) {
	summary := NewSummary("lumen-check", 0.3, []FileResult{
		{File: "a.lm", Passed: true, DurationSecs: 0.1},
		{File: "b.lm", Passed: false, DurationSecs: 0.2, Diagnostics: []Diagnostic{
			{File: "b.lm", Span: span.New(0, 1, 3, 1), Severity: SeverityError, Code: "E0200", Message: "type mismatch"},
		}},
	})

	var buf bytes.Buffer
	if err := WriteJSON(&buf, summary); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}

	out := buf.String()
	for _, want := range []string{`"suite"`, `"total"`, `"passed"`, `"failed"`, `"errors"`, `"warnings"`, `"duration_secs"`, `"results"`, `"diagnostics"`} {
		if !strings.Contains(out, want) {
			t.Errorf("missing field %q in JSON output:\n%s", want, out)
		}
	}
	if summary.Errors != 1 || summary.Warnings != 0 || summary.Passed != 1 || summary.Failed != 1 {
		t.Errorf("unexpected tallies: %+v", summary)
	}
}

func TestParseErrorDiagnosticsPreserveOrder(t *testing.T) {
	toks := []lexer.Token{}
	_, errs := parser.Parse(toks)
	if len(errs) == 0 {
		t.Skip("empty token stream produced no parse errors; nothing to assert order over")
	}

	ce := NewParse(errs)
	diags := ce.Diagnostics("empty.lm")
	if len(diags) != len(errs) {
		t.Fatalf("expected %d diagnostics, got %d", len(errs), len(diags))
	}
}

// resolverErrUndefinedCell constructs a resolver.Error the same shape the
// resolver's own errUndefinedCell would, without exporting a constructor
// from that package purely for this test.
func resolverErrUndefinedCell(t *testing.T, name string, suggestions []string) *resolver.Error {
	t.Helper()
	return &resolver.Error{Kind: "UndefinedCell", Code: "E0102", Suggestions: suggestions}
}
