package codes

import (
	"testing"

	"github.com/lumen-lang/lumen/pkg/constraint"
	"github.com/lumen-lang/lumen/pkg/lexer"
	"github.com/lumen-lang/lumen/pkg/lower"
	"github.com/lumen-lang/lumen/pkg/ownership"
	"github.com/lumen-lang/lumen/pkg/parser"
	"github.com/lumen-lang/lumen/pkg/resolver"
	"github.com/lumen-lang/lumen/pkg/typecheck"
)

func TestCodeOfLex(t *testing.T) {
	_, err := lexer.New("\x00", 1, 1).Tokenize()
	if err == nil {
		t.Fatal("expected a lex error from a bare NUL byte")
	}
	if got := CodeOf(err); got != "E0001" {
		t.Errorf("CodeOf(lex UnexpectedChar) = %q, want E0001", got)
	}
}

func TestCodeOfParser(t *testing.T) {
	// Exercising the real lexer/parser pipeline for every Kind this package
	// maps would duplicate those packages' own fixtures; CodeOf is tested
	// directly against constructed Error values instead, the same way the
	// per-type helpers are below.
	e := &parser.Error{Kind: "UnexpectedToken"}
	if got := CodeOf(e); got != "E0010" {
		t.Errorf("CodeOf(parser UnexpectedToken) = %q, want E0010", got)
	}

	e2 := &parser.Error{Kind: "MixedIndentation"}
	if got := CodeOf(e2); got != "E0017" {
		t.Errorf("CodeOf(parser MixedIndentation) = %q, want E0017", got)
	}
}

func TestCodeOfResolver(t *testing.T) {
	e := &resolver.Error{Kind: "CircularImport", Code: "E0121"}
	if got := CodeOf(e); got != "E0121" {
		t.Errorf("CodeOf(resolver CircularImport) = %q, want E0121", got)
	}
}

func TestCodeOfTypecheck(t *testing.T) {
	e := &typecheck.Error{Kind: "Mismatch", Code: "E0200"}
	if got := CodeOf(e); got != "E0200" {
		t.Errorf("CodeOf(typecheck Mismatch) = %q, want E0200", got)
	}
}

func TestCodeOfConstraint(t *testing.T) {
	e := &constraint.Error{Kind: "Invalid", Code: "E0300"}
	if got := CodeOf(e); got != "E0300" {
		t.Errorf("CodeOf(constraint Invalid) = %q, want E0300", got)
	}
}

func TestCodeOfOwnership(t *testing.T) {
	e := &ownership.Error{Kind: "UseAfterMove", Code: "E0400"}
	if got := CodeOf(e); got != "E0400" {
		t.Errorf("CodeOf(ownership UseAfterMove) = %q, want E0400", got)
	}
}

func TestCodeOfLower(t *testing.T) {
	e := &lower.Error{Code: "E0500"}
	if got := CodeOf(e); got != "E0500" {
		t.Errorf("CodeOf(lower) = %q, want E0500", got)
	}
}

func TestCodeOfUnknownErrorType(t *testing.T) {
	if got := CodeOf(plainError("boom")); got != "" {
		t.Errorf("CodeOf(plain error) = %q, want empty string", got)
	}
}

type plainError string

func (e plainError) Error() string { return string(e) }

func TestDocKnownCode(t *testing.T) {
	doc := Doc("E0200")
	if !contains(doc, "type") {
		t.Errorf("Doc(E0200) = %q, expected it to mention type", doc)
	}
}

func TestDocUnknownCode(t *testing.T) {
	if got := Doc("E9999"); got != "Unknown error code." {
		t.Errorf("Doc(E9999) = %q, want %q", got, "Unknown error code.")
	}
}

func TestAllNonEmptyAndDocumented(t *testing.T) {
	entries := All()
	if len(entries) < 40 {
		t.Fatalf("expected at least 40 registered codes, got %d", len(entries))
	}
	for _, e := range entries {
		if e.Doc == "Unknown error code." {
			t.Errorf("code %s has no documentation", e.Code)
		}
	}
}

func contains(s, substr string) bool {
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return true
		}
	}
	return false
}
